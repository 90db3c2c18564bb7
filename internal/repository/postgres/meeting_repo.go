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

const meetingColumns = `id, event_id, title, purpose, other_details, date,
		start_time, end_time, status, room_id, location, tags, meeting_type,
		sequence, is_approved, calendar_invite_sent, requester_email,
		created_by, created_at, updated_at`

type meetingRepository struct {
	DB *sql.DB
}

func NewMeetingRepository(db *sql.DB) domain.MeetingRepository {
	return &meetingRepository{
		DB: db,
	}
}

func scanMeeting(row rowScanner) (*domain.Meeting, error) {
	m := &domain.Meeting{}
	var dateNull sql.NullTime
	var startNull, endNull, roomNull sql.NullString
	err := row.Scan(
		&m.ID, &m.EventID, &m.Title, &m.Purpose, &m.OtherDetails, &dateNull,
		&startNull, &endNull, &m.Status, &roomNull, &m.Location, pq.Array(&m.Tags),
		&m.MeetingType, &m.Sequence, &m.IsApproved, &m.CalendarInviteSent,
		&m.RequesterEmail, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dateNull.Valid {
		m.Date = &dateNull.Time
	}
	if startNull.Valid {
		m.StartTime = &startNull.String
	}
	if endNull.Valid {
		m.EndTime = &endNull.String
	}
	if roomNull.Valid {
		m.RoomID = &roomNull.String
	}
	m.AttendeeIDs = []string{}
	return m, nil
}

func (r *meetingRepository) Create(ctx context.Context, m *domain.Meeting) error {
	query := `
		INSERT INTO meetings (id, event_id, title, purpose, other_details, date,
			start_time, end_time, status, room_id, location, tags, meeting_type,
			sequence, is_approved, calendar_invite_sent, requester_email,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20)
	`
	_, err := r.DB.ExecContext(ctx, query,
		m.ID, m.EventID, m.Title, m.Purpose, m.OtherDetails, m.Date,
		m.StartTime, m.EndTime, m.Status, m.RoomID, m.Location, pq.Array(m.Tags),
		m.MeetingType, m.Sequence, m.IsApproved, m.CalendarInviteSent,
		m.RequesterEmail, m.CreatedBy, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (r *meetingRepository) GetByID(ctx context.Context, id string) (*domain.Meeting, error) {
	query := fmt.Sprintf(`SELECT %s FROM meetings WHERE id = $1`, meetingColumns)
	m, err := scanMeeting(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	ids, err := r.ListAttendeeIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	m.AttendeeIDs = ids
	return m, nil
}

func (r *meetingRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Meeting, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM meetings
		WHERE event_id = $1
		ORDER BY date NULLS LAST, sequence, id
	`, meetingColumns)
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	meetings := make([]*domain.Meeting, 0)
	var meetingIDs []string
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
		meetingIDs = append(meetingIDs, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(meetingIDs) == 0 {
		return meetings, nil
	}
	attRows, err := r.DB.QueryContext(ctx, `
		SELECT meeting_id, attendee_id FROM meeting_attendees
		WHERE meeting_id = ANY($1)
		ORDER BY attendee_id
	`, pq.Array(meetingIDs))
	if err != nil {
		return nil, err
	}
	defer attRows.Close()
	byMeeting := make(map[string][]string)
	for attRows.Next() {
		var meetingID, attendeeID string
		if err := attRows.Scan(&meetingID, &attendeeID); err != nil {
			return nil, err
		}
		byMeeting[meetingID] = append(byMeeting[meetingID], attendeeID)
	}
	if err := attRows.Err(); err != nil {
		return nil, err
	}
	for _, m := range meetings {
		if ids := byMeeting[m.ID]; ids != nil {
			m.AttendeeIDs = ids
		}
	}
	return meetings, nil
}

func (r *meetingRepository) Update(ctx context.Context, meetingID string, patch domain.MeetingPatch) (*domain.Meeting, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	add := func(col string, v interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, v)
		n++
	}
	if patch.Title.Set {
		add("title", stringArg(patch.Title))
	}
	if patch.Purpose.Set {
		add("purpose", stringArg(patch.Purpose))
	}
	if patch.OtherDetails.Set {
		add("other_details", stringArg(patch.OtherDetails))
	}
	if patch.Date.Set {
		add("date", nullableArg(patch.Date))
	}
	if patch.StartTime.Set {
		add("start_time", nullableArg(patch.StartTime))
	}
	if patch.EndTime.Set {
		add("end_time", nullableArg(patch.EndTime))
	}
	if patch.Status.Set {
		status := domain.MeetingStatusPipeline
		if !patch.Status.Null {
			status = patch.Status.Value
		}
		add("status", status)
	}
	if patch.RoomID.Set {
		add("room_id", nullableArg(patch.RoomID))
	}
	if patch.Location.Set {
		add("location", stringArg(patch.Location))
	}
	if patch.Tags.Set {
		add("tags", textArrayArg(patch.Tags))
	}
	if patch.MeetingType.Set {
		add("meeting_type", stringArg(patch.MeetingType))
	}
	if patch.Sequence.Set {
		add("sequence", intArg(patch.Sequence))
	}
	if patch.IsApproved.Set {
		add("is_approved", boolArg(patch.IsApproved))
	}
	if patch.CalendarInviteSent.Set {
		add("calendar_invite_sent", boolArg(patch.CalendarInviteSent))
	}
	if patch.RequesterEmail.Set {
		add("requester_email", stringArg(patch.RequesterEmail))
	}
	if patch.CreatedBy.Set {
		add("created_by", stringArg(patch.CreatedBy))
	}
	if n == 1 {
		return r.GetByID(ctx, meetingID)
	}
	args = append(args, meetingID)
	query := fmt.Sprintf(`
		UPDATE meetings SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, meetingColumns)
	m, err := scanMeeting(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	ids, err := r.ListAttendeeIDs(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	m.AttendeeIDs = ids
	return m, nil
}

func (r *meetingRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM meetings WHERE id = $1`
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

func (r *meetingRepository) ReplaceAttendees(ctx context.Context, meetingID string, ids []string) error {
	// Replace the edge set wholesale (handles removals as well as additions).
	// One transaction: a failed insert must not leave the meeting with its
	// previous edges already deleted.
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM meeting_attendees WHERE meeting_id = $1`, meetingID); err != nil {
		return err
	}
	for _, attendeeID := range ids {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO meeting_attendees (meeting_id, attendee_id)
			VALUES ($1, $2)
			ON CONFLICT (meeting_id, attendee_id) DO NOTHING
		`, meetingID, attendeeID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *meetingRepository) ListAttendeeIDs(ctx context.Context, meetingID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT attendee_id FROM meeting_attendees
		WHERE meeting_id = $1
		ORDER BY attendee_id
	`, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
