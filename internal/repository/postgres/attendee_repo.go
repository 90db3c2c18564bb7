package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventsnap/internal/domain"
)

const attendeeColumns = `id, name, email, title, company, company_description,
		bio, linkedin, image_url, is_external, type, created_at, updated_at`

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{
		DB: db,
	}
}

func scanAttendee(row rowScanner) (*domain.Attendee, error) {
	a := &domain.Attendee{}
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.Title, &a.Company, &a.CompanyDescription,
		&a.Bio, &a.Linkedin, &a.ImageURL, &a.IsExternal, &a.Type,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	query := `
		INSERT INTO attendees (id, name, email, title, company, company_description,
			bio, linkedin, image_url, is_external, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.DB.ExecContext(ctx, query,
		a.ID, a.Name, strings.ToLower(strings.TrimSpace(a.Email)), a.Title,
		a.Company, a.CompanyDescription, a.Bio, a.Linkedin, a.ImageURL,
		a.IsExternal, a.Type, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *attendeeRepository) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendees WHERE id = $1`, attendeeColumns)
	a, err := scanAttendee(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Attendee, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendees WHERE email = $1`, attendeeColumns)
	a, err := scanAttendee(r.DB.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) Update(ctx context.Context, attendeeID string, patch domain.AttendeePatch) (*domain.Attendee, error) {
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
	if patch.Email.Set {
		add("email", strings.ToLower(strings.TrimSpace(stringArg(patch.Email))))
	}
	if patch.Title.Set {
		add("title", stringArg(patch.Title))
	}
	if patch.Company.Set {
		add("company", stringArg(patch.Company))
	}
	if patch.CompanyDescription.Set {
		add("company_description", stringArg(patch.CompanyDescription))
	}
	if patch.Bio.Set {
		add("bio", stringArg(patch.Bio))
	}
	if patch.Linkedin.Set {
		add("linkedin", stringArg(patch.Linkedin))
	}
	if patch.ImageURL.Set {
		add("image_url", stringArg(patch.ImageURL))
	}
	if patch.IsExternal.Set {
		add("is_external", boolArg(patch.IsExternal))
	}
	if patch.Type.Set {
		add("type", stringArg(patch.Type))
	}
	if n == 1 {
		return r.GetByID(ctx, attendeeID)
	}
	args = append(args, attendeeID)
	query := fmt.Sprintf(`
		UPDATE attendees SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, attendeeColumns)
	a, err := scanAttendee(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) ListByEventID(ctx context.Context, eventID string, offset, limit int) ([]*domain.Attendee, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM attendees a
		INNER JOIN event_attendees ea ON ea.attendee_id = a.id
		WHERE ea.event_id = $1
		ORDER BY a.name, a.id
	`, qualifyColumns("a", attendeeColumns))
	args := []interface{}{eventID}
	if limit > 0 {
		query += ` OFFSET $2 LIMIT $3`
		args = append(args, offset, limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	attendees := make([]*domain.Attendee, 0)
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

func (r *attendeeRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_attendees WHERE event_id = $1`, eventID).Scan(&count)
	return count, err
}

func (r *attendeeRepository) ListForEventGraph(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	// Union of attendees linked to the event directly and attendees linked to
	// any of its meetings; an attendee may appear on a meeting without an
	// event link after historical imports.
	query := fmt.Sprintf(`
		SELECT %s FROM attendees a
		WHERE a.id IN (
			SELECT attendee_id FROM event_attendees WHERE event_id = $1
			UNION
			SELECT ma.attendee_id FROM meeting_attendees ma
			INNER JOIN meetings m ON m.id = ma.meeting_id
			WHERE m.event_id = $1
		)
		ORDER BY a.id
	`, qualifyColumns("a", attendeeColumns))
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	attendees := make([]*domain.Attendee, 0)
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

func (r *attendeeRepository) LinkToEvent(ctx context.Context, eventID, attendeeID string) error {
	query := `
		INSERT INTO event_attendees (event_id, attendee_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, attendee_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, eventID, attendeeID)
	return err
}

func (r *attendeeRepository) UnlinkFromEvent(ctx context.Context, eventID, attendeeID string) error {
	query := `DELETE FROM event_attendees WHERE event_id = $1 AND attendee_id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, attendeeID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *attendeeRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM attendees WHERE id = $1`
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

// qualifyColumns prefixes each column in a comma-separated list with the
// given table alias.
func qualifyColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
