package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"eventsnap/internal/domain"
)

type maintenanceRepository struct {
	DB *sql.DB
}

func NewMaintenanceRepository(db *sql.DB) domain.MaintenanceRepository {
	return &maintenanceRepository{
		DB: db,
	}
}

// ResetEvent wipes the event's child data in one transaction: meetings first
// (their attendee edges cascade), then attendee rows owned only by this event,
// then the remaining event links, then rooms. The event row is untouched. A
// failure anywhere rolls the whole thing back.
func (r *maintenanceRepository) ResetEvent(ctx context.Context, eventID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset transaction: %w", err)
	}
	defer tx.Rollback()

	// Serializes against concurrent imports/resets of the same event; released
	// automatically at commit or rollback.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, eventID); err != nil {
		return fmt.Errorf("acquire event lock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM meetings WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("delete meetings: %w", err)
	}

	// Attendees linked only to this event are deleted outright; attendees
	// shared with another event (or another event's meetings) are merely
	// unlinked below.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM attendees a
		USING event_attendees ea
		WHERE ea.attendee_id = a.id
		  AND ea.event_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM event_attendees other
			WHERE other.attendee_id = a.id AND other.event_id <> $1
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM meeting_attendees ma
			INNER JOIN meetings m ON m.id = ma.meeting_id
			WHERE ma.attendee_id = a.id AND m.event_id <> $1
		  )
	`, eventID); err != nil {
		return fmt.Errorf("delete owned attendees: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_attendees WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("delete attendee links: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("delete rooms: %w", err)
	}

	return tx.Commit()
}

// AcquireEventLock takes a session-scoped advisory lock on a pinned
// connection so an import holds the lock across its many statements. The
// returned release func unlocks and returns the connection to the pool.
func (r *maintenanceRepository) AcquireEventLock(ctx context.Context, eventID string) (func() error, error) {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	var locked bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, eventID).Scan(&locked); err != nil {
		conn.Close()
		return nil, fmt.Errorf("acquire event lock: %w", err)
	}
	if !locked {
		conn.Close()
		return nil, domain.ErrEventBusy
	}
	release := func() error {
		// Unlock on a fresh context: the caller's context may already be done.
		_, err := conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, eventID)
		if cerr := conn.Close(); err == nil {
			err = cerr
		}
		return err
	}
	return release, nil
}
