package postgres

import (
	"context"
	"database/sql"
	"testing"

	"eventsnap/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceRepository_ResetEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes children in order inside one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM meetings WHERE event_id = \$1`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM attendees a`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM event_attendees WHERE event_id = \$1`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM rooms WHERE event_id = \$1`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewMaintenanceRepository(db)
		require.NoError(t, repo.ResetEvent(ctx, "ev-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mid-reset failure rolls everything back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM meetings WHERE event_id = \$1`).
			WithArgs("ev-1").
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		repo := NewMaintenanceRepository(db)
		require.Error(t, repo.ResetEvent(ctx, "ev-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMaintenanceRepository_AcquireEventLock(t *testing.T) {
	ctx := context.Background()

	t.Run("acquires and releases", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT pg_try_advisory_lock`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
		mock.ExpectExec(`SELECT pg_advisory_unlock`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewMaintenanceRepository(db)
		release, err := repo.AcquireEventLock(ctx, "ev-1")
		require.NoError(t, err)
		require.NoError(t, release())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("held lock reports busy", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT pg_try_advisory_lock`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

		repo := NewMaintenanceRepository(db)
		_, err = repo.AcquireEventLock(ctx, "ev-1")
		require.ErrorIs(t, err, domain.ErrEventBusy)
	})
}
