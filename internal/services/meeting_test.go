package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventsnap/internal/domain"
)

func newTestMeetingService(store *memStore, email domain.EmailService) domain.MeetingService {
	return NewMeetingService(
		&mockEventRepository{store: store},
		&mockRoomRepository{store: store},
		&mockMeetingRepository{store: store},
		&mockAttendeeRepository{store: store},
		email,
		2*time.Second,
	)
}

func TestMeetingService_CreateMeeting(t *testing.T) {
	store := newMemStore()
	seedEvent(store, "e1", "Summit")
	seedAttendee(store, "a1", "Alice", "a@x.com")
	svc := newTestMeetingService(store, &mockEmailService{})

	meeting := &domain.Meeting{EventID: "e1", Title: "Kickoff", AttendeeIDs: []string{"a1"}}
	if err := svc.CreateMeeting(context.Background(), meeting); err != nil {
		t.Fatalf("create: %v", err)
	}
	if meeting.ID == "" {
		t.Fatal("expected generated id")
	}
	if meeting.Status != domain.MeetingStatusPipeline {
		t.Fatalf("expected default PIPELINE status, got %q", meeting.Status)
	}
	if got := store.meetingAttendees[meeting.ID]; len(got) != 1 || got[0] != "a1" {
		t.Fatalf("expected attendee edge persisted, got %v", got)
	}

	if err := svc.CreateMeeting(context.Background(), &domain.Meeting{EventID: "missing", Title: "X"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown event, got %v", err)
	}
}

func TestMeetingService_CompletedNeedsFullSchedule(t *testing.T) {
	store := newMemStore()
	seedEvent(store, "e1", "Summit")
	seedRoom(store, "r1", "e1", "Hall A", 10)
	seedAttendee(store, "a1", "Alice", "a@x.com")
	m := seedMeeting(store, "m1", "e1", "Kickoff", domain.MeetingStatusCommitted)
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	m.Date = &date
	store.meetingAttendees["m1"] = []string{"a1"}

	svc := newTestMeetingService(store, &mockEmailService{})

	// No room yet: completing must be rejected.
	patch := domain.MeetingPatch{Status: domain.NewField(domain.MeetingStatusCompleted)}
	if _, err := svc.UpdateMeeting(context.Background(), "m1", patch); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without a room, got %v", err)
	}
	if m.Status != domain.MeetingStatusCommitted {
		t.Fatalf("rejected update must not write, got %q", m.Status)
	}

	// Assigning the room in the same patch satisfies the rule.
	patch.RoomID = domain.NewField("r1")
	updated, err := svc.UpdateMeeting(context.Background(), "m1", patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.MeetingStatusCompleted {
		t.Fatalf("expected COMPLETED, got %q", updated.Status)
	}
}

func TestMeetingService_UpdateMeeting_ReplacesAttendees(t *testing.T) {
	store := newMemStore()
	seedEvent(store, "e1", "Summit")
	seedAttendee(store, "a1", "Alice", "a@x.com")
	seedAttendee(store, "a2", "Bob", "b@x.com")
	seedMeeting(store, "m1", "e1", "Kickoff", domain.MeetingStatusPipeline)
	store.meetingAttendees["m1"] = []string{"a1"}

	svc := newTestMeetingService(store, &mockEmailService{})

	patch := domain.MeetingPatch{AttendeeIDs: domain.NewField([]string{"a2"})}
	updated, err := svc.UpdateMeeting(context.Background(), "m1", patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.AttendeeIDs) != 1 || updated.AttendeeIDs[0] != "a2" {
		t.Fatalf("expected attendee set replaced, got %v", updated.AttendeeIDs)
	}
	if got := store.meetingAttendees["m1"]; len(got) != 1 || got[0] != "a2" {
		t.Fatalf("expected persisted edge set [a2], got %v", got)
	}
}

func TestMeetingService_SendCalendarInvite(t *testing.T) {
	store := newMemStore()
	seedEvent(store, "e1", "Summit")
	seedRoom(store, "r1", "e1", "Hall A", 10)
	seedAttendee(store, "a1", "Alice", "a@x.com")
	seedAttendee(store, "a2", "No Email", "")
	m := seedMeeting(store, "m1", "e1", "Kickoff", domain.MeetingStatusCommitted)
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	start, end := "09:00", "10:00"
	roomID := "r1"
	m.Date = &date
	m.StartTime = &start
	m.EndTime = &end
	m.RoomID = &roomID
	store.meetingAttendees["m1"] = []string{"a1", "a2"}

	email := &mockEmailService{}
	svc := newTestMeetingService(store, email)

	if err := svc.SendCalendarInvite(context.Background(), "m1"); err != nil {
		t.Fatalf("send invite: %v", err)
	}
	if len(email.invites) != 1 {
		t.Fatalf("expected 1 invite sent, got %d", len(email.invites))
	}
	invite := email.invites[0]
	if invite.MeetingTitle != "Kickoff" || invite.EventName != "Summit" {
		t.Fatalf("unexpected invite contents: %+v", invite)
	}
	if invite.Location != "Hall A" {
		t.Fatalf("expected room name as location, got %q", invite.Location)
	}
	if len(invite.Recipients) != 1 || invite.Recipients[0] != "a@x.com" {
		t.Fatalf("attendees without an email must be skipped, got %v", invite.Recipients)
	}
	if !m.CalendarInviteSent {
		t.Fatal("expected calendarInviteSent flag set after sending")
	}
}

func TestMeetingService_SendCalendarInvite_NoRecipients(t *testing.T) {
	store := newMemStore()
	seedEvent(store, "e1", "Summit")
	seedMeeting(store, "m1", "e1", "Kickoff", domain.MeetingStatusPipeline)

	email := &mockEmailService{}
	svc := newTestMeetingService(store, email)

	if err := svc.SendCalendarInvite(context.Background(), "m1"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput with no recipients, got %v", err)
	}
	if len(email.invites) != 0 {
		t.Fatal("nothing must be sent without recipients")
	}
	if store.meetings["m1"].CalendarInviteSent {
		t.Fatal("flag must stay unset when nothing was sent")
	}
}
