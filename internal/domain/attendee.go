package domain

import (
	"context"
	"time"
)

// Attendee is a person profile shared across events. Email is the natural
// dedup key: creating an attendee with an existing email links the existing
// row to the target event instead of creating a duplicate.
type Attendee struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Title              string    `json:"title"`
	Company            string    `json:"company"`
	CompanyDescription string    `json:"companyDescription"`
	Bio                string    `json:"bio"`
	Linkedin           string    `json:"linkedin"`
	ImageURL           string    `json:"imageUrl"`
	IsExternal         bool      `json:"isExternal"`
	Type               string    `json:"type"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// AttendeePatch is a field-level patch for Attendee.
type AttendeePatch struct {
	Name               Field[string]
	Email              Field[string]
	Title              Field[string]
	Company            Field[string]
	CompanyDescription Field[string]
	Bio                Field[string]
	Linkedin           Field[string]
	ImageURL           Field[string]
	IsExternal         Field[bool]
	Type               Field[string]
}

// IsEmpty reports whether no field of the patch is set.
func (p AttendeePatch) IsEmpty() bool {
	return !(p.Name.Set || p.Email.Set || p.Title.Set || p.Company.Set ||
		p.CompanyDescription.Set || p.Bio.Set || p.Linkedin.Set ||
		p.ImageURL.Set || p.IsExternal.Set || p.Type.Set)
}

// AttendeeRepository defines storage operations for attendees and their
// event links. Unlink removes one event edge only; Delete removes the row
// and cascades through every event and meeting link.
type AttendeeRepository interface {
	Create(ctx context.Context, attendee *Attendee) error
	GetByID(ctx context.Context, id string) (*Attendee, error)
	GetByEmail(ctx context.Context, email string) (*Attendee, error)
	Update(ctx context.Context, attendeeID string, patch AttendeePatch) (*Attendee, error)
	// ListByEventID returns attendees linked directly to the event, ordered by
	// name, with offset/limit paging. A limit of 0 means no limit.
	ListByEventID(ctx context.Context, eventID string, offset, limit int) ([]*Attendee, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	// ListForEventGraph returns every attendee linked to the event directly or
	// to any of its meetings, deduped, ordered by id.
	ListForEventGraph(ctx context.Context, eventID string) ([]*Attendee, error)
	// LinkToEvent is additive and idempotent: linking never unlinks the
	// attendee from events not named by the caller.
	LinkToEvent(ctx context.Context, eventID, attendeeID string) error
	UnlinkFromEvent(ctx context.Context, eventID, attendeeID string) error
	Delete(ctx context.Context, id string) error
}

// AttendeeService defines attendee-facing operations.
type AttendeeService interface {
	// CreateForEvent creates the attendee and links it to the event. If an
	// attendee with the same email already exists, the existing row is linked
	// instead and returned with created == false.
	CreateForEvent(ctx context.Context, eventID string, attendee *Attendee) (*Attendee, bool, error)
	GetAttendee(ctx context.Context, attendeeID string) (*Attendee, error)
	UpdateAttendee(ctx context.Context, attendeeID string, patch AttendeePatch) (*Attendee, error)
	ListByEvent(ctx context.Context, eventID string, params PaginationParams) ([]*Attendee, int, error)
	// UnlinkFromEvent removes the event edge only; the attendee stays visible
	// under every other event it is linked to.
	UnlinkFromEvent(ctx context.Context, eventID, attendeeID string) error
	// DeleteSystemWide removes the attendee row entirely, cascading removal
	// from all events and meetings.
	DeleteSystemWide(ctx context.Context, attendeeID string) error
}
