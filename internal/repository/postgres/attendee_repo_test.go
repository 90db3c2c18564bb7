package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventsnap/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var attendeeColumnList = []string{
	"id", "name", "email", "title", "company", "company_description",
	"bio", "linkedin", "image_url", "is_external", "type", "created_at", "updated_at",
}

func attendeeRow(id, name, email string) []driverValue {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []driverValue{id, name, email, "", "", "", "", "", "", false, "", now, now}
}

func TestAttendeeRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes email before lookup", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, email`).
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows(attendeeColumnList).AddRow(attendeeRow("att-1", "Ann", "a@x.com")...))

		repo := NewAttendeeRepository(db)
		attendee, err := repo.GetByEmail(ctx, "  A@X.COM ")
		require.NoError(t, err)
		require.Equal(t, "att-1", attendee.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, email`).
			WithArgs("missing@x.com").
			WillReturnError(sql.ErrNoRows)

		repo := NewAttendeeRepository(db)
		_, err = repo.GetByEmail(ctx, "missing@x.com")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAttendeeRepository_LinkToEvent(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Linking twice is idempotent via ON CONFLICT DO NOTHING.
	mock.ExpectExec(`INSERT INTO event_attendees`).
		WithArgs("ev-1", "att-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO event_attendees`).
		WithArgs("ev-1", "att-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAttendeeRepository(db)
	require.NoError(t, repo.LinkToEvent(ctx, "ev-1", "att-1"))
	require.NoError(t, repo.LinkToEvent(ctx, "ev-1", "att-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendeeRepository_UnlinkFromEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("removes only the event edge", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM event_attendees WHERE event_id = \$1 AND attendee_id = \$2`).
			WithArgs("ev-1", "att-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewAttendeeRepository(db)
		require.NoError(t, repo.UnlinkFromEvent(ctx, "ev-1", "att-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not linked", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM event_attendees`).
			WithArgs("ev-1", "att-9").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewAttendeeRepository(db)
		require.ErrorIs(t, repo.UnlinkFromEvent(ctx, "ev-1", "att-9"), domain.ErrNotFound)
	})
}

func TestAttendeeRepository_Delete(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM attendees WHERE id = \$1`).
		WithArgs("att-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewAttendeeRepository(db)
	require.NoError(t, repo.Delete(ctx, "att-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendeeRepository_ListForEventGraph(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT a.id, a.name, a.email`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(attendeeColumnList).
			AddRow(attendeeRow("att-1", "Ann", "a@x.com")...).
			AddRow(attendeeRow("att-2", "Bob", "b@x.com")...))

	repo := NewAttendeeRepository(db)
	attendees, err := repo.ListForEventGraph(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, attendees, 2)
	require.Equal(t, "att-1", attendees[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendeeRepository_Update(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`UPDATE attendees SET updated_at = NOW\(\), title = \$1`).
		WithArgs("VP Sales", "att-1").
		WillReturnRows(sqlmock.NewRows(attendeeColumnList).AddRow(attendeeRow("att-1", "Ann", "a@x.com")...))

	repo := NewAttendeeRepository(db)
	patch := domain.AttendeePatch{Title: domain.NewField("VP Sales")}
	_, err = repo.Update(ctx, "att-1", patch)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
