package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotVersion is the document format emitted by the exporter. Importers
// dispatch on the document contents, not this tag, so older exports without a
// version still load (see the legacy detection rules on SnapshotDocument).
const SnapshotVersion = "2.1"

// AttendeeRefList is a meeting's attendee reference list. The normalized
// format encodes entries as bare id strings; legacy exports used embedded
// objects. Both decode to a plain id list, and a mixed list is handled per
// entry.
type AttendeeRefList []string

func (l *AttendeeRefList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		var id string
		if err := json.Unmarshal(entry, &id); err == nil {
			out = append(out, id)
			continue
		}
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil {
			return fmt.Errorf("attendee reference is neither an id nor an object: %w", err)
		}
		out = append(out, obj.ID)
	}
	*l = out
	return nil
}

// EventRecord is the event portion of a snapshot. Field members keep the
// absent / null / value distinction so the same record type backs both full
// imports and targeted PATCH requests. Dates and times travel as strings in
// the document. The embedded Attendees/Rooms/Meetings slices appear in legacy
// exports that nested full child records under the event, and in system
// documents, where rooms and meetings nest per bundle and Attendees holds
// id-only references into the global pool carrying the event's membership.
type EventRecord struct {
	ID                string          `json:"id,omitempty"`
	Name              Field[string]   `json:"name,omitzero"`
	Slug              Field[string]   `json:"slug,omitzero"`
	StartDate         Field[string]   `json:"startDate,omitzero"`
	EndDate           Field[string]   `json:"endDate,omitzero"`
	Status            Field[string]   `json:"status,omitzero"`
	Region            Field[string]   `json:"region,omitzero"`
	URL               Field[string]   `json:"url,omitzero"`
	Budget            Field[float64]  `json:"budget,omitzero"`
	TargetCustomers   Field[string]   `json:"targetCustomers,omitzero"`
	ExpectedROI       Field[string]   `json:"expectedRoi,omitzero"`
	RequesterEmail    Field[string]   `json:"requesterEmail,omitzero"`
	Tags              Field[[]string] `json:"tags,omitzero"`
	MeetingTypes      Field[[]string] `json:"meetingTypes,omitzero"`
	AttendeeTypes     Field[[]string] `json:"attendeeTypes,omitzero"`
	Address           Field[string]   `json:"address,omitzero"`
	Timezone          Field[string]   `json:"timezone,omitzero"`
	Latitude          Field[float64]  `json:"latitude,omitzero"`
	Longitude         Field[float64]  `json:"longitude,omitzero"`
	Password          Field[string]   `json:"password,omitzero"`
	AuthorizedUserIDs Field[[]string] `json:"authorizedUserIds,omitzero"`
	Description       Field[string]   `json:"description,omitzero"`
	BoothLocation     Field[string]   `json:"boothLocation,omitzero"`

	Attendees []AttendeeRecord `json:"attendees,omitempty"`
	Rooms     []RoomRecord     `json:"rooms,omitempty"`
	Meetings  []MeetingRecord  `json:"meetings,omitempty"`
}

// AttendeeRecord is one attendee in a snapshot.
type AttendeeRecord struct {
	ID                 string        `json:"id,omitempty"`
	Name               Field[string] `json:"name,omitzero"`
	Email              Field[string] `json:"email,omitzero"`
	Title              Field[string] `json:"title,omitzero"`
	Company            Field[string] `json:"company,omitzero"`
	CompanyDescription Field[string] `json:"companyDescription,omitzero"`
	Bio                Field[string] `json:"bio,omitzero"`
	Linkedin           Field[string] `json:"linkedin,omitzero"`
	ImageURL           Field[string] `json:"imageUrl,omitzero"`
	IsExternal         Field[bool]   `json:"isExternal,omitzero"`
	Type               Field[string] `json:"type,omitzero"`
}

// RoomRecord is one room in a snapshot.
type RoomRecord struct {
	ID       string        `json:"id,omitempty"`
	Name     Field[string] `json:"name,omitzero"`
	Capacity Field[int]    `json:"capacity,omitzero"`
}

// MeetingRecord is one meeting in a snapshot.
type MeetingRecord struct {
	ID                 string                 `json:"id,omitempty"`
	Title              Field[string]          `json:"title,omitzero"`
	Purpose            Field[string]          `json:"purpose,omitzero"`
	OtherDetails       Field[string]          `json:"otherDetails,omitzero"`
	Date               Field[string]          `json:"date,omitzero"`
	StartTime          Field[string]          `json:"startTime,omitzero"`
	EndTime            Field[string]          `json:"endTime,omitzero"`
	Status             Field[string]          `json:"status,omitzero"`
	RoomID             Field[string]          `json:"roomId,omitzero"`
	Location           Field[string]          `json:"location,omitzero"`
	Tags               Field[[]string]        `json:"tags,omitzero"`
	MeetingType        Field[string]          `json:"meetingType,omitzero"`
	Sequence           Field[int]             `json:"sequence,omitzero"`
	IsApproved         Field[bool]            `json:"isApproved,omitzero"`
	CalendarInviteSent Field[bool]            `json:"calendarInviteSent,omitzero"`
	RequesterEmail     Field[string]          `json:"requesterEmail,omitzero"`
	CreatedBy          Field[string]          `json:"createdBy,omitzero"`
	Attendees          Field[AttendeeRefList] `json:"attendees,omitzero"`
}

// SnapshotDocument is a portable export of one event's object graph, or, in
// the system-wide variant, of every event plus the global attendee pool.
type SnapshotDocument struct {
	Version    string           `json:"version,omitempty"`
	ExportedAt time.Time        `json:"exportedAt,omitzero"`
	Event      *EventRecord     `json:"event,omitempty"`
	Attendees  []AttendeeRecord `json:"attendees,omitempty"`
	Rooms      []RoomRecord     `json:"rooms,omitempty"`
	Meetings   []MeetingRecord  `json:"meetings,omitempty"`

	// System-wide variant only.
	Events         []EventRecord   `json:"events,omitempty"`
	SystemSettings json.RawMessage `json:"systemSettings,omitempty"`
}

// HasAttendeePool reports whether the document carries the top-level global
// attendee pool of the normalized format. When it does not, the importer
// falls back to the attendees embedded under the event record. The decision
// is made once per import, never per record.
func (d *SnapshotDocument) HasAttendeePool() bool {
	return d.Attendees != nil
}

// ImportResult summarizes one import run. Skipped records are recoverable
// per-record failures; each one adds a warning the caller can surface.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings"`
}

// SnapshotService is the synchronization engine: export, merge-import, reset
// and delete over an event's object graph.
type SnapshotService interface {
	Export(ctx context.Context, eventID string) (*SnapshotDocument, error)
	ExportSystem(ctx context.Context) (*SnapshotDocument, error)
	// Import merges doc into the event. It fails fast on a scope mismatch or
	// when the caller may not write the event, and isolates per-record
	// failures; re-importing the same document is a no-op state-wise.
	Import(ctx context.Context, eventID, userID string, isRoot bool, doc *SnapshotDocument) (*ImportResult, error)
	// ImportSystem accepts a document with an events array and imports each
	// bundle with the same engine, creating events that do not exist yet.
	ImportSystem(ctx context.Context, doc *SnapshotDocument) (*ImportResult, error)
	// Reset wipes the event's child data in one transaction; the event row
	// itself is untouched. All-or-nothing, and gated on write permission like
	// Import.
	Reset(ctx context.Context, eventID, userID string, isRoot bool) error
	Delete(ctx context.Context, eventID string) error
}

// MaintenanceRepository covers the operations that need a transaction or an
// advisory lock rather than per-row statements.
type MaintenanceRepository interface {
	// ResetEvent deletes the event's meetings, attendee links (and attendee
	// rows owned only by this event), then rooms, atomically.
	ResetEvent(ctx context.Context, eventID string) error
	// AcquireEventLock takes the per-event advisory lock used to serialize
	// imports and resets. It returns ErrEventBusy when the lock is held, and
	// otherwise a release func the caller must invoke when done.
	AcquireEventLock(ctx context.Context, eventID string) (func() error, error)
}
