package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventsnap/internal/domain"
)

var slugStripRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// DeriveSlug builds a URL slug from the event name plus a short id-derived
// suffix, so two events with the same name never collide.
func DeriveSlug(name, id string) string {
	base := strings.Trim(slugStripRegexp.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if base == "" {
		base = "event"
	}
	suffix := strings.ReplaceAll(id, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return base + "-" + suffix
}

type eventService struct {
	eventRepo      domain.EventRepository
	hasher         domain.PasswordHasher
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, hasher domain.PasswordHasher, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		hasher:         hasher,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, viewerPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.Name == "" {
		return fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Slug == "" {
		event.Slug = DeriveSlug(event.Name, event.ID)
	}
	if event.Status == "" {
		event.Status = domain.EventStatusPipeline
	} else if !domain.ValidEventStatus(event.Status) {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, event.Status)
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}
	if event.MeetingTypes == nil {
		event.MeetingTypes = []string{}
	}
	if event.AttendeeTypes == nil {
		event.AttendeeTypes = []string{}
	}
	if event.AuthorizedUserIDs == nil {
		event.AuthorizedUserIDs = []string{}
	}
	if viewerPassword != "" {
		hash, err := s.hasher.Hash(viewerPassword)
		if err != nil {
			return fmt.Errorf("hash viewer password: %w", err)
		}
		event.Password = &hash
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.GetByID(ctx, eventID)
}

func (s *eventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.GetBySlug(ctx, slug)
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.List(ctx)
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, userID string, isRoot bool, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.CanWrite(userID, isRoot) {
		return nil, domain.ErrForbidden
	}
	// The patch carries the cleartext viewer password from the settings form;
	// only the hash is stored.
	if patch.Password.Set && !patch.Password.Null && patch.Password.Value != "" {
		hash, err := s.hasher.Hash(patch.Password.Value)
		if err != nil {
			return nil, fmt.Errorf("hash viewer password: %w", err)
		}
		patch.Password = domain.NewField(hash)
	}
	updated, err := s.eventRepo.Update(ctx, eventID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, userID string, isRoot bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !event.CanWrite(userID, isRoot) {
		return domain.ErrForbidden
	}
	return s.eventRepo.Delete(ctx, eventID)
}

func (s *eventService) CheckViewerPassword(ctx context.Context, eventID, password string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("get event: %w", err)
	}
	if event.Password == nil || *event.Password == "" {
		return true, nil
	}
	return s.hasher.Verify(*event.Password, password), nil
}
