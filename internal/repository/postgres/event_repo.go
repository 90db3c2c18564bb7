package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventsnap/internal/domain"
)

const eventColumns = `id, name, slug, start_date, end_date, status, region, url,
		budget, target_customers, expected_roi, requester_email,
		tags, meeting_types, attendee_types, address, timezone,
		latitude, longitude, password, authorized_user_ids,
		description, booth_location, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var startNull, endNull sql.NullTime
	var latNull, lngNull sql.NullFloat64
	var passwordNull sql.NullString
	err := row.Scan(
		&e.ID, &e.Name, &e.Slug, &startNull, &endNull, &e.Status, &e.Region, &e.URL,
		&e.Budget, &e.TargetCustomers, &e.ExpectedROI, &e.RequesterEmail,
		pq.Array(&e.Tags), pq.Array(&e.MeetingTypes), pq.Array(&e.AttendeeTypes),
		&e.Address, &e.Timezone, &latNull, &lngNull, &passwordNull,
		pq.Array(&e.AuthorizedUserIDs), &e.Description, &e.BoothLocation,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startNull.Valid {
		e.StartDate = &startNull.Time
	}
	if endNull.Valid {
		e.EndDate = &endNull.Time
	}
	if latNull.Valid {
		e.Latitude = &latNull.Float64
	}
	if lngNull.Valid {
		e.Longitude = &lngNull.Float64
	}
	if passwordNull.Valid {
		e.Password = &passwordNull.String
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, name, slug, start_date, end_date, status, region, url,
			budget, target_customers, expected_roi, requester_email,
			tags, meeting_types, attendee_types, address, timezone,
			latitude, longitude, password, authorized_user_ids,
			description, booth_location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Name, e.Slug, e.StartDate, e.EndDate, e.Status, e.Region, e.URL,
		e.Budget, e.TargetCustomers, e.ExpectedROI, e.RequesterEmail,
		pq.Array(e.Tags), pq.Array(e.MeetingTypes), pq.Array(e.AttendeeTypes),
		e.Address, e.Timezone, e.Latitude, e.Longitude, e.Password,
		pq.Array(e.AuthorizedUserIDs), e.Description, e.BoothLocation,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE slug = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events ORDER BY created_at DESC`, eventColumns)
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	add := func(col string, v interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, v)
		n++
	}
	if patch.Name.Set {
		add("name", stringArg(patch.Name))
	}
	if patch.Slug.Set {
		add("slug", stringArg(patch.Slug))
	}
	if patch.StartDate.Set {
		add("start_date", nullableArg(patch.StartDate))
	}
	if patch.EndDate.Set {
		add("end_date", nullableArg(patch.EndDate))
	}
	if patch.Status.Set {
		status := domain.EventStatusPipeline
		if !patch.Status.Null {
			status = patch.Status.Value
		}
		add("status", status)
	}
	if patch.Region.Set {
		add("region", stringArg(patch.Region))
	}
	if patch.URL.Set {
		add("url", stringArg(patch.URL))
	}
	if patch.Budget.Set {
		add("budget", floatArg(patch.Budget))
	}
	if patch.TargetCustomers.Set {
		add("target_customers", stringArg(patch.TargetCustomers))
	}
	if patch.ExpectedROI.Set {
		add("expected_roi", stringArg(patch.ExpectedROI))
	}
	if patch.RequesterEmail.Set {
		add("requester_email", stringArg(patch.RequesterEmail))
	}
	if patch.Tags.Set {
		add("tags", textArrayArg(patch.Tags))
	}
	if patch.MeetingTypes.Set {
		add("meeting_types", textArrayArg(patch.MeetingTypes))
	}
	if patch.AttendeeTypes.Set {
		add("attendee_types", textArrayArg(patch.AttendeeTypes))
	}
	if patch.Address.Set {
		add("address", stringArg(patch.Address))
	}
	if patch.Timezone.Set {
		add("timezone", stringArg(patch.Timezone))
	}
	if patch.Latitude.Set {
		add("latitude", nullableArg(patch.Latitude))
	}
	if patch.Longitude.Set {
		add("longitude", nullableArg(patch.Longitude))
	}
	if patch.Password.Set {
		add("password", nullableArg(patch.Password))
	}
	if patch.AuthorizedUserIDs.Set {
		add("authorized_user_ids", textArrayArg(patch.AuthorizedUserIDs))
	}
	if patch.Description.Set {
		add("description", stringArg(patch.Description))
	}
	if patch.BoothLocation.Set {
		add("booth_location", stringArg(patch.BoothLocation))
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, eventID)
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
