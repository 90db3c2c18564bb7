package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventsnap/internal/domain"
)

type roomService struct {
	eventRepo      domain.EventRepository
	roomRepo       domain.RoomRepository
	contextTimeout time.Duration
}

func NewRoomService(eventRepo domain.EventRepository, roomRepo domain.RoomRepository, timeout time.Duration) domain.RoomService {
	return &roomService{
		eventRepo:      eventRepo,
		roomRepo:       roomRepo,
		contextTimeout: timeout,
	}
}

func (s *roomService) CreateRoom(ctx context.Context, room *domain.Room) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if room.Name == "" {
		return fmt.Errorf("%w: room name is required", domain.ErrInvalidInput)
	}
	if room.Capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", domain.ErrInvalidInput)
	}
	if _, err := s.eventRepo.GetByID(ctx, room.EventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	room.CreatedAt = time.Now()
	room.UpdatedAt = time.Now()
	return s.roomRepo.Create(ctx, room)
}

func (s *roomService) ListByEvent(ctx context.Context, eventID string) ([]*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rooms, err := s.roomRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	if rooms == nil {
		rooms = []*domain.Room{}
	}
	return rooms, nil
}

func (s *roomService) UpdateRoom(ctx context.Context, roomID string, patch domain.RoomPatch) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	updated, err := s.roomRepo.Update(ctx, roomID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update room: %w", err)
	}
	return updated, nil
}

// DeleteRoom removes the room. Meetings that referenced it survive with
// their room reference cleared, so a scheduling change never destroys the
// meetings themselves.
func (s *roomService) DeleteRoom(ctx context.Context, roomID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.roomRepo.Delete(ctx, roomID)
}
