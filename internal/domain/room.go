package domain

import (
	"context"
	"time"
)

// Room is an event-scoped resource. Deleting a room never deletes meetings
// that reference it; their room reference is cleared instead.
type Room struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoomPatch is a field-level patch for Room.
type RoomPatch struct {
	Name     Field[string]
	Capacity Field[int]
}

// IsEmpty reports whether no field of the patch is set.
func (p RoomPatch) IsEmpty() bool {
	return !(p.Name.Set || p.Capacity.Set)
}

// RoomRepository defines storage operations for rooms.
type RoomRepository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Room, error)
	Update(ctx context.Context, roomID string, patch RoomPatch) (*Room, error)
	Delete(ctx context.Context, id string) error
}

// RoomService defines room-facing operations.
type RoomService interface {
	CreateRoom(ctx context.Context, room *Room) error
	ListByEvent(ctx context.Context, eventID string) ([]*Room, error)
	UpdateRoom(ctx context.Context, roomID string, patch RoomPatch) (*Room, error)
	DeleteRoom(ctx context.Context, roomID string) error
}
