package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventsnap/internal/domain"
)

type meetingService struct {
	eventRepo      domain.EventRepository
	roomRepo       domain.RoomRepository
	meetingRepo    domain.MeetingRepository
	attendeeRepo   domain.AttendeeRepository
	emailService   domain.EmailService
	contextTimeout time.Duration
}

func NewMeetingService(
	eventRepo domain.EventRepository,
	roomRepo domain.RoomRepository,
	meetingRepo domain.MeetingRepository,
	attendeeRepo domain.AttendeeRepository,
	emailService domain.EmailService,
	timeout time.Duration,
) domain.MeetingService {
	return &meetingService{
		eventRepo:      eventRepo,
		roomRepo:       roomRepo,
		meetingRepo:    meetingRepo,
		attendeeRepo:   attendeeRepo,
		emailService:   emailService,
		contextTimeout: timeout,
	}
}

func (s *meetingService) CreateMeeting(ctx context.Context, meeting *domain.Meeting) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, meeting.EventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}
	if meeting.Status == "" {
		meeting.Status = domain.MeetingStatusPipeline
	} else {
		meeting.Status = domain.NormalizeMeetingStatus(string(meeting.Status))
	}
	if meeting.Tags == nil {
		meeting.Tags = []string{}
	}
	if err := s.checkCompleted(meeting.Status, meeting.Title, meeting.Date, meeting.RoomID, meeting.AttendeeIDs); err != nil {
		return err
	}
	meeting.CreatedAt = time.Now()
	meeting.UpdatedAt = time.Now()
	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}
	if len(meeting.AttendeeIDs) > 0 {
		if err := s.meetingRepo.ReplaceAttendees(ctx, meeting.ID, meeting.AttendeeIDs); err != nil {
			return fmt.Errorf("set meeting attendees: %w", err)
		}
	}
	return nil
}

func (s *meetingService) GetMeeting(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.meetingRepo.GetByID(ctx, meetingID)
}

func (s *meetingService) ListByEvent(ctx context.Context, eventID string) ([]*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	meetings, err := s.meetingRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	if meetings == nil {
		meetings = []*domain.Meeting{}
	}
	return meetings, nil
}

func (s *meetingService) UpdateMeeting(ctx context.Context, meetingID string, patch domain.MeetingPatch) (*domain.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get meeting: %w", err)
	}

	// Completion is a business rule enforced here at the edge, not by the
	// import path: bulk-restored historical data may violate it.
	status := existing.Status
	if patch.Status.Set && !patch.Status.Null {
		status = patch.Status.Value
	}
	if status == domain.MeetingStatusCompleted {
		title := existing.Title
		if patch.Title.Set {
			title = patch.Title.Value
		}
		date := existing.Date
		if patch.Date.Set {
			date = patch.Date.Ptr()
		}
		roomID := existing.RoomID
		if patch.RoomID.Set {
			roomID = patch.RoomID.Ptr()
		}
		attendees := existing.AttendeeIDs
		if patch.AttendeeIDs.Set {
			attendees = patch.AttendeeIDs.Value
		}
		if err := s.checkCompleted(status, title, date, roomID, attendees); err != nil {
			return nil, err
		}
	}

	updated, err := s.meetingRepo.Update(ctx, meetingID, patch)
	if err != nil {
		return nil, fmt.Errorf("update meeting: %w", err)
	}
	if patch.AttendeeIDs.Set {
		ids := []string{}
		if !patch.AttendeeIDs.Null {
			ids = patch.AttendeeIDs.Value
		}
		if err := s.meetingRepo.ReplaceAttendees(ctx, meetingID, ids); err != nil {
			return nil, fmt.Errorf("replace meeting attendees: %w", err)
		}
		updated.AttendeeIDs = ids
	}
	return updated, nil
}

func (s *meetingService) checkCompleted(status domain.MeetingStatus, title string, date *time.Time, roomID *string, attendeeIDs []string) error {
	if status != domain.MeetingStatusCompleted {
		return nil
	}
	if title == "" || date == nil || roomID == nil || len(attendeeIDs) == 0 {
		return fmt.Errorf("%w: a completed meeting needs a title, date, room and at least one attendee", domain.ErrInvalidInput)
	}
	return nil
}

func (s *meetingService) DeleteMeeting(ctx context.Context, meetingID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.meetingRepo.Delete(ctx, meetingID)
}

func (s *meetingService) SendCalendarInvite(ctx context.Context, meetingID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get meeting: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, meeting.EventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}

	invite := &domain.CalendarInvite{
		MeetingTitle: meeting.Title,
		EventName:    event.Name,
		Location:     meeting.Location,
	}
	if meeting.Date != nil {
		invite.Date = meeting.Date.Format(dateLayout)
	}
	if meeting.StartTime != nil {
		invite.StartTime = *meeting.StartTime
	}
	if meeting.EndTime != nil {
		invite.EndTime = *meeting.EndTime
	}
	if meeting.RoomID != nil {
		if room, err := s.roomRepo.GetByID(ctx, *meeting.RoomID); err == nil {
			invite.Location = room.Name
		}
	}
	for _, attendeeID := range meeting.AttendeeIDs {
		attendee, err := s.attendeeRepo.GetByID(ctx, attendeeID)
		if err != nil || attendee.Email == "" {
			continue
		}
		invite.Recipients = append(invite.Recipients, attendee.Email)
	}
	if len(invite.Recipients) == 0 {
		return fmt.Errorf("%w: meeting has no attendees with an email address", domain.ErrInvalidInput)
	}

	if err := s.emailService.SendCalendarInvite(ctx, invite); err != nil {
		return fmt.Errorf("send calendar invite: %w", err)
	}
	if _, err := s.meetingRepo.Update(ctx, meetingID, domain.MeetingPatch{
		CalendarInviteSent: domain.NewField(true),
	}); err != nil {
		return fmt.Errorf("mark invite sent: %w", err)
	}
	return nil
}
