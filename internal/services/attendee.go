package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventsnap/internal/domain"
)

type attendeeService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	contextTimeout time.Duration
}

// NewAttendeeService creates an AttendeeService with the given repositories.
func NewAttendeeService(eventRepo domain.EventRepository, attendeeRepo domain.AttendeeRepository, timeout time.Duration) domain.AttendeeService {
	return &attendeeService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		contextTimeout: timeout,
	}
}

func (s *attendeeService) CreateForEvent(ctx context.Context, eventID string, attendee *domain.Attendee) (*domain.Attendee, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("get event: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(attendee.Email))
	if email == "" {
		return nil, false, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	// Email is the dedup key: the same person added to a second event links
	// the existing row instead of creating a duplicate.
	if existing, err := s.attendeeRepo.GetByEmail(ctx, email); err == nil {
		if err := s.attendeeRepo.LinkToEvent(ctx, eventID, existing.ID); err != nil {
			return nil, false, fmt.Errorf("link attendee: %w", err)
		}
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get attendee by email: %w", err)
	}

	if attendee.ID == "" {
		attendee.ID = uuid.NewString()
	}
	attendee.Email = email
	attendee.CreatedAt = time.Now()
	attendee.UpdatedAt = time.Now()
	if err := s.attendeeRepo.Create(ctx, attendee); err != nil {
		return nil, false, fmt.Errorf("create attendee: %w", err)
	}
	if err := s.attendeeRepo.LinkToEvent(ctx, eventID, attendee.ID); err != nil {
		return nil, false, fmt.Errorf("link attendee: %w", err)
	}
	return attendee, true, nil
}

func (s *attendeeService) GetAttendee(ctx context.Context, attendeeID string) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.attendeeRepo.GetByID(ctx, attendeeID)
}

func (s *attendeeService) UpdateAttendee(ctx context.Context, attendeeID string, patch domain.AttendeePatch) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	updated, err := s.attendeeRepo.Update(ctx, attendeeID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update attendee: %w", err)
	}
	return updated, nil
}

func (s *attendeeService) ListByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Attendee, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	total, err := s.attendeeRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, 0, fmt.Errorf("count attendees: %w", err)
	}
	attendees, err := s.attendeeRepo.ListByEventID(ctx, eventID, params.Offset(), params.PageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendees: %w", err)
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}
	return attendees, total, nil
}

// UnlinkFromEvent removes the event edge only. The attendee row and its
// memberships in other events are untouched; this must never be confused
// with DeleteSystemWide.
func (s *attendeeService) UnlinkFromEvent(ctx context.Context, eventID, attendeeID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.attendeeRepo.UnlinkFromEvent(ctx, eventID, attendeeID)
}

func (s *attendeeService) DeleteSystemWide(ctx context.Context, attendeeID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.attendeeRepo.Delete(ctx, attendeeID)
}
