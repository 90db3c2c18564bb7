package domain

import (
	"context"
	"slices"
	"time"
)

// EventStatus is the lifecycle status of an event.
type EventStatus string

const (
	EventStatusPipeline  EventStatus = "PIPELINE"
	EventStatusCommitted EventStatus = "COMMITTED"
	EventStatusOccurred  EventStatus = "OCCURRED"
	EventStatusCanceled  EventStatus = "CANCELED"
)

// ValidEventStatus reports whether s is one of the known event statuses.
func ValidEventStatus(s EventStatus) bool {
	switch s {
	case EventStatusPipeline, EventStatusCommitted, EventStatusOccurred, EventStatusCanceled:
		return true
	}
	return false
}

// Event is the root aggregate. It owns its rooms and meetings exclusively;
// attendees are shared across events through a many-to-many link.
type Event struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Slug              string      `json:"slug"`
	StartDate         *time.Time  `json:"startDate"`
	EndDate           *time.Time  `json:"endDate"`
	Status            EventStatus `json:"status"`
	Region            string      `json:"region"`
	URL               string      `json:"url"`
	Budget            float64     `json:"budget"`
	TargetCustomers   string      `json:"targetCustomers"`
	ExpectedROI       string      `json:"expectedRoi"`
	RequesterEmail    string      `json:"requesterEmail"`
	Tags              []string    `json:"tags"`
	MeetingTypes      []string    `json:"meetingTypes"`
	AttendeeTypes     []string    `json:"attendeeTypes"`
	Address           string      `json:"address"`
	Timezone          string      `json:"timezone"`
	Latitude          *float64    `json:"latitude"`
	Longitude         *float64    `json:"longitude"`
	Password          *string     `json:"-"`
	AuthorizedUserIDs []string    `json:"authorizedUserIds"`
	Description       string      `json:"description"`
	BoothLocation     string      `json:"boothLocation"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// CanWrite reports whether userID may mutate this event. Root users may
// always write; everyone else must appear in the authorized user list.
func (e *Event) CanWrite(userID string, isRoot bool) bool {
	if isRoot {
		return true
	}
	return slices.Contains(e.AuthorizedUserIDs, userID)
}

// EventPatch is a field-level patch for Event. Only set fields are applied;
// a set-null field clears the column (NULL for nullable columns, the zero
// value otherwise). Password carries an already-hashed value.
type EventPatch struct {
	Name              Field[string]
	Slug              Field[string]
	StartDate         Field[time.Time]
	EndDate           Field[time.Time]
	Status            Field[EventStatus]
	Region            Field[string]
	URL               Field[string]
	Budget            Field[float64]
	TargetCustomers   Field[string]
	ExpectedROI       Field[string]
	RequesterEmail    Field[string]
	Tags              Field[[]string]
	MeetingTypes      Field[[]string]
	AttendeeTypes     Field[[]string]
	Address           Field[string]
	Timezone          Field[string]
	Latitude          Field[float64]
	Longitude         Field[float64]
	Password          Field[string]
	AuthorizedUserIDs Field[[]string]
	Description       Field[string]
	BoothLocation     Field[string]
}

// IsEmpty reports whether no field of the patch is set.
func (p EventPatch) IsEmpty() bool {
	return !(p.Name.Set || p.Slug.Set || p.StartDate.Set || p.EndDate.Set ||
		p.Status.Set || p.Region.Set || p.URL.Set || p.Budget.Set ||
		p.TargetCustomers.Set || p.ExpectedROI.Set || p.RequesterEmail.Set ||
		p.Tags.Set || p.MeetingTypes.Set || p.AttendeeTypes.Set ||
		p.Address.Set || p.Timezone.Set || p.Latitude.Set || p.Longitude.Set ||
		p.Password.Set || p.AuthorizedUserIDs.Set || p.Description.Set ||
		p.BoothLocation.Set)
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, eventID string, patch EventPatch) (*Event, error)
	// Delete removes the event row; owned rooms, meetings and event-attendee
	// links go with it via foreign-key cascade. Shared attendee rows survive.
	Delete(ctx context.Context, id string) error
}

// EventService defines event-facing operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event, viewerPassword string) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, userID string, isRoot bool, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, userID string, isRoot bool) error
	// CheckViewerPassword verifies the event's viewer password. Events without
	// a password accept any input.
	CheckViewerPassword(ctx context.Context, eventID, password string) (bool, error)
}
