package domain

import (
	"context"
	"time"
)

// MeetingStatus is the lifecycle status of a meeting. This is the canonical
// vocabulary; the legacy "STARTED" value is read as COMMITTED on import.
type MeetingStatus string

const (
	MeetingStatusPipeline  MeetingStatus = "PIPELINE"
	MeetingStatusCommitted MeetingStatus = "COMMITTED"
	MeetingStatusCompleted MeetingStatus = "COMPLETED"
	MeetingStatusCanceled  MeetingStatus = "CANCELED"
)

// NormalizeMeetingStatus maps any accepted status spelling onto the canonical
// vocabulary. Unknown values fall back to PIPELINE.
func NormalizeMeetingStatus(s string) MeetingStatus {
	switch MeetingStatus(s) {
	case MeetingStatusPipeline, MeetingStatusCommitted, MeetingStatusCompleted, MeetingStatusCanceled:
		return MeetingStatus(s)
	}
	if s == "STARTED" {
		return MeetingStatusCommitted
	}
	return MeetingStatusPipeline
}

// Meeting is an event-scoped schedulable unit. Date and times are nullable:
// a meeting may exist without a concrete schedule while still in PIPELINE.
// RoomID and Location are mutually exclusive in intent: Location is free text
// used when the meeting happens off-room.
type Meeting struct {
	ID                 string        `json:"id"`
	EventID            string        `json:"eventId"`
	Title              string        `json:"title"`
	Purpose            string        `json:"purpose"`
	OtherDetails       string        `json:"otherDetails"`
	Date               *time.Time    `json:"date"`
	StartTime          *string       `json:"startTime"`
	EndTime            *string       `json:"endTime"`
	Status             MeetingStatus `json:"status"`
	RoomID             *string       `json:"roomId"`
	Location           string        `json:"location"`
	Tags               []string      `json:"tags"`
	MeetingType        string        `json:"meetingType"`
	Sequence           int           `json:"sequence"`
	IsApproved         bool          `json:"isApproved"`
	CalendarInviteSent bool          `json:"calendarInviteSent"`
	RequesterEmail     string        `json:"requesterEmail"`
	CreatedBy          string        `json:"createdBy"`
	AttendeeIDs        []string      `json:"attendees"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// MeetingPatch is a field-level patch for Meeting. AttendeeIDs replaces the
// meeting's attendee set wholesale when set.
type MeetingPatch struct {
	Title              Field[string]
	Purpose            Field[string]
	OtherDetails       Field[string]
	Date               Field[time.Time]
	StartTime          Field[string]
	EndTime            Field[string]
	Status             Field[MeetingStatus]
	RoomID             Field[string]
	Location           Field[string]
	Tags               Field[[]string]
	MeetingType        Field[string]
	Sequence           Field[int]
	IsApproved         Field[bool]
	CalendarInviteSent Field[bool]
	RequesterEmail     Field[string]
	CreatedBy          Field[string]
	AttendeeIDs        Field[[]string]
}

// IsEmpty reports whether no field of the patch is set.
func (p MeetingPatch) IsEmpty() bool {
	return !(p.Title.Set || p.Purpose.Set || p.OtherDetails.Set || p.Date.Set ||
		p.StartTime.Set || p.EndTime.Set || p.Status.Set || p.RoomID.Set ||
		p.Location.Set || p.Tags.Set || p.MeetingType.Set || p.Sequence.Set ||
		p.IsApproved.Set || p.CalendarInviteSent.Set || p.RequesterEmail.Set ||
		p.CreatedBy.Set || p.AttendeeIDs.Set)
}

// MeetingRepository defines storage operations for meetings and their
// attendee edges.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *Meeting) error
	GetByID(ctx context.Context, id string) (*Meeting, error)
	// ListByEventID returns meetings ordered by date, sequence and id, with
	// AttendeeIDs populated.
	ListByEventID(ctx context.Context, eventID string) ([]*Meeting, error)
	Update(ctx context.Context, meetingID string, patch MeetingPatch) (*Meeting, error)
	Delete(ctx context.Context, id string) error
	// ReplaceAttendees sets the meeting's attendee edge set to exactly ids:
	// attendees absent from ids are removed from the meeting.
	ReplaceAttendees(ctx context.Context, meetingID string, ids []string) error
	ListAttendeeIDs(ctx context.Context, meetingID string) ([]string, error)
}

// MeetingService defines meeting-facing operations.
type MeetingService interface {
	CreateMeeting(ctx context.Context, meeting *Meeting) error
	GetMeeting(ctx context.Context, meetingID string) (*Meeting, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Meeting, error)
	UpdateMeeting(ctx context.Context, meetingID string, patch MeetingPatch) (*Meeting, error)
	DeleteMeeting(ctx context.Context, meetingID string) error
	// SendCalendarInvite emails the meeting invite to its attendees and marks
	// the meeting accordingly.
	SendCalendarInvite(ctx context.Context, meetingID string) error
}
