package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventsnap/internal/domain"
)

const roomColumns = `id, event_id, name, capacity, created_at, updated_at`

type roomRepository struct {
	DB *sql.DB
}

func NewRoomRepository(db *sql.DB) domain.RoomRepository {
	return &roomRepository{
		DB: db,
	}
}

func scanRoom(row rowScanner) (*domain.Room, error) {
	room := &domain.Room{}
	if err := row.Scan(&room.ID, &room.EventID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt); err != nil {
		return nil, err
	}
	return room, nil
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (id, event_id, name, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query, room.ID, room.EventID, room.Name, room.Capacity, room.CreatedAt, room.UpdatedAt)
	return err
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms WHERE id = $1`, roomColumns)
	room, err := scanRoom(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

func (r *roomRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Room, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rooms
		WHERE event_id = $1
		ORDER BY name, id
	`, roomColumns)
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *roomRepository) Update(ctx context.Context, roomID string, patch domain.RoomPatch) (*domain.Room, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if patch.Name.Set {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", n))
		args = append(args, stringArg(patch.Name))
		n++
	}
	if patch.Capacity.Set {
		setClauses = append(setClauses, fmt.Sprintf("capacity = $%d", n))
		args = append(args, intArg(patch.Capacity))
		n++
	}
	if n == 1 {
		return r.GetByID(ctx, roomID)
	}
	args = append(args, roomID)
	query := fmt.Sprintf(`
		UPDATE rooms SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, roomColumns)
	room, err := scanRoom(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

func (r *roomRepository) Delete(ctx context.Context, id string) error {
	// meetings referencing the room keep running with room_id set NULL by the
	// foreign key; the rows themselves are never deleted here.
	query := `DELETE FROM rooms WHERE id = $1`
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
