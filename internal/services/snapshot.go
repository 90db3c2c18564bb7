package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventsnap/internal/domain"
	"eventsnap/monitoring"
)

const dateLayout = "2006-01-02"

type snapshotService struct {
	eventRepo       domain.EventRepository
	roomRepo        domain.RoomRepository
	attendeeRepo    domain.AttendeeRepository
	meetingRepo     domain.MeetingRepository
	maintenanceRepo domain.MaintenanceRepository
	geocoder        domain.Geocoder
	logger          *slog.Logger
	contextTimeout  time.Duration
}

func NewSnapshotService(
	eventRepo domain.EventRepository,
	roomRepo domain.RoomRepository,
	attendeeRepo domain.AttendeeRepository,
	meetingRepo domain.MeetingRepository,
	maintenanceRepo domain.MaintenanceRepository,
	geocoder domain.Geocoder,
	logger *slog.Logger,
	timeout time.Duration,
) domain.SnapshotService {
	return &snapshotService{
		eventRepo:       eventRepo,
		roomRepo:        roomRepo,
		attendeeRepo:    attendeeRepo,
		meetingRepo:     meetingRepo,
		maintenanceRepo: maintenanceRepo,
		geocoder:        geocoder,
		logger:          logger,
		contextTimeout:  timeout,
	}
}

func (s *snapshotService) Export(ctx context.Context, eventID string) (*domain.SnapshotDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	start := time.Now()
	event, attendees, rooms, meetings, err := s.exportEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	doc := &domain.SnapshotDocument{
		Version:    domain.SnapshotVersion,
		ExportedAt: time.Now().UTC(),
		Event:      event,
		Attendees:  attendees,
		Rooms:      rooms,
		Meetings:   meetings,
	}
	monitoring.ObserveExportDuration(time.Since(start))
	return doc, nil
}

func (s *snapshotService) ExportSystem(ctx context.Context) (*domain.SnapshotDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	start := time.Now()
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	doc := &domain.SnapshotDocument{
		Version:    domain.SnapshotVersion,
		ExportedAt: time.Now().UTC(),
		Events:     make([]domain.EventRecord, 0, len(events)),
		Attendees:  make([]domain.AttendeeRecord, 0),
	}
	seen := make(map[string]struct{})
	for _, event := range events {
		record, attendees, rooms, meetings, err := s.exportEvent(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		record.Rooms = rooms
		record.Meetings = meetings
		// Membership travels per bundle as id references; the pool carries
		// each attendee's field data exactly once.
		record.Attendees = make([]domain.AttendeeRecord, 0, len(attendees))
		for _, a := range attendees {
			record.Attendees = append(record.Attendees, domain.AttendeeRecord{ID: a.ID})
			if _, ok := seen[a.ID]; ok {
				continue
			}
			seen[a.ID] = struct{}{}
			doc.Attendees = append(doc.Attendees, a)
		}
		doc.Events = append(doc.Events, *record)
	}
	monitoring.ObserveExportDuration(time.Since(start))
	return doc, nil
}

func (s *snapshotService) exportEvent(ctx context.Context, eventID string) (*domain.EventRecord, []domain.AttendeeRecord, []domain.RoomRecord, []domain.MeetingRecord, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, nil, domain.ErrNotFound
		}
		return nil, nil, nil, nil, fmt.Errorf("get event: %w", err)
	}
	rooms, err := s.roomRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("list rooms: %w", err)
	}
	meetings, err := s.meetingRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("list meetings: %w", err)
	}
	attendees, err := s.attendeeRepo.ListForEventGraph(ctx, eventID)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("list attendees: %w", err)
	}

	roomRecords := make([]domain.RoomRecord, 0, len(rooms))
	for _, room := range rooms {
		roomRecords = append(roomRecords, roomToRecord(room))
	}
	// Meetings carry attendee id arrays and attendees carry no meeting
	// back-references, so no child record is ever embedded twice.
	meetingRecords := make([]domain.MeetingRecord, 0, len(meetings))
	for _, meeting := range meetings {
		meetingRecords = append(meetingRecords, meetingToRecord(meeting))
	}
	attendeeRecords := make([]domain.AttendeeRecord, 0, len(attendees))
	for _, attendee := range attendees {
		attendeeRecords = append(attendeeRecords, attendeeToRecord(attendee))
	}
	record := eventToRecord(event)
	return &record, attendeeRecords, roomRecords, meetingRecords, nil
}

// Import merges doc into the event identified by eventID. The scope,
// permission and lock checks run before any write; after that each record is
// processed independently so one malformed record cannot lose the rest of the
// batch.
func (s *snapshotService) Import(ctx context.Context, eventID, userID string, isRoot bool, doc *domain.SnapshotDocument) (*domain.ImportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}
	if doc.Event != nil && doc.Event.ID != "" && doc.Event.ID != eventID {
		return nil, domain.ErrScopeMismatch
	}
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

	release, err := s.maintenanceRepo.AcquireEventLock(ctx, eventID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(); err != nil {
			s.logger.Warn("failed to release event lock", "event_id", eventID, "err", err)
		}
	}()

	start := time.Now()
	result := &domain.ImportResult{Warnings: []string{}}
	s.importBundle(ctx, eventID, doc.Event, doc, make(map[string]string), result)
	monitoring.ObserveImportDuration(time.Since(start))
	return result, nil
}

func (s *snapshotService) ImportSystem(ctx context.Context, doc *domain.SnapshotDocument) (*domain.ImportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if doc == nil || doc.Events == nil {
		return nil, fmt.Errorf("%w: document has no events array", domain.ErrInvalidInput)
	}
	if len(doc.SystemSettings) > 0 {
		// Settings travel with system exports but have no backing store here.
		s.logger.Info("system settings present in document, not applied")
	}

	start := time.Now()
	result := &domain.ImportResult{Warnings: []string{}}

	// The global pool carries each attendee's field data once; it says nothing
	// about membership, so pool records are written without event links. The
	// links come from the per-bundle reference lists below.
	resolved := make(map[string]string, len(doc.Attendees))
	for i := range doc.Attendees {
		record := &doc.Attendees[i]
		id, err := s.upsertAttendeeRecord(ctx, record)
		if err != nil {
			s.logger.Warn("skipping pooled attendee record", "attendee_id", record.ID, "err", err)
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("attendee %s: %v", record.ID, err))
			monitoring.RecordImportRecord("attendee", "skipped")
			continue
		}
		if record.ID != "" && id != record.ID {
			resolved[record.ID] = id
		}
		result.Imported++
		monitoring.RecordImportRecord("attendee", "imported")
	}

	for i := range doc.Events {
		record := &doc.Events[i]
		eventID, err := s.ensureEvent(ctx, record)
		if err != nil {
			s.logger.Warn("skipping event bundle", "event_id", record.ID, "err", err)
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("event %s: %v", record.ID, err))
			monitoring.RecordImportRecord("event", "skipped")
			continue
		}
		release, err := s.maintenanceRepo.AcquireEventLock(ctx, eventID)
		if err != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("event %s: %v", eventID, err))
			monitoring.RecordImportRecord("event", "skipped")
			continue
		}
		// The per-event bundle nests rooms and meetings under the event
		// record; its attendee list holds the event's own membership, as id
		// references when the document carries a pool.
		bundle := &domain.SnapshotDocument{
			Attendees: record.Attendees,
			Rooms:     record.Rooms,
			Meetings:  record.Meetings,
		}
		s.importBundle(ctx, eventID, record, bundle, resolved, result)
		if err := release(); err != nil {
			s.logger.Warn("failed to release event lock", "event_id", eventID, "err", err)
		}
	}
	monitoring.ObserveImportDuration(time.Since(start))
	return result, nil
}

// ensureEvent resolves the target event for a system-import bundle, creating
// it when it does not exist yet.
func (s *snapshotService) ensureEvent(ctx context.Context, record *domain.EventRecord) (string, error) {
	if record.ID != "" {
		if _, err := s.eventRepo.GetByID(ctx, record.ID); err == nil {
			return record.ID, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("get event: %w", err)
		}
	}
	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}
	name := record.Name.Value
	if !record.Name.Set || record.Name.Null || name == "" {
		name = "Imported event"
	}
	slug := record.Slug.Value
	if !record.Slug.Set || record.Slug.Null || slug == "" {
		slug = DeriveSlug(name, id)
	}
	now := time.Now()
	event := &domain.Event{
		ID:                id,
		Name:              name,
		Slug:              slug,
		Status:            domain.EventStatusPipeline,
		Tags:              []string{},
		MeetingTypes:      []string{},
		AttendeeTypes:     []string{},
		AuthorizedUserIDs: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return "", fmt.Errorf("create event: %w", err)
	}
	return id, nil
}

// importBundle runs the record-sequential merge: event patch first, then
// rooms, then attendees, then meetings, so every referenced row exists before
// the rows that point at it. resolved maps document attendee ids onto the row
// ids they landed on (they differ when email dedup matched an existing row);
// the attendee pass extends it and the meeting pass translates reference
// lists through it.
func (s *snapshotService) importBundle(ctx context.Context, eventID string, eventRecord *domain.EventRecord, doc *domain.SnapshotDocument, resolved map[string]string, result *domain.ImportResult) {
	if eventRecord != nil {
		if err := s.applyEventRecord(ctx, eventID, eventRecord); err != nil {
			s.logger.Warn("event record not applied", "event_id", eventID, "err", err)
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("event %s: %v", eventID, err))
			monitoring.RecordImportRecord("event", "skipped")
		} else {
			result.Imported++
			monitoring.RecordImportRecord("event", "imported")
		}
	}

	rooms := doc.Rooms
	if rooms == nil && eventRecord != nil {
		rooms = eventRecord.Rooms
	}
	for i := range rooms {
		if err := s.upsertRoom(ctx, eventID, &rooms[i]); err != nil {
			s.logger.Warn("skipping room record", "event_id", eventID, "room_id", rooms[i].ID, "err", err)
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("room %s: %v", rooms[i].ID, err))
			monitoring.RecordImportRecord("room", "skipped")
			continue
		}
		result.Imported++
		monitoring.RecordImportRecord("room", "imported")
	}

	// Legacy exports have no global attendee pool; their attendees live
	// embedded under the event record. Decided once per import.
	attendees := doc.Attendees
	if !doc.HasAttendeePool() && eventRecord != nil {
		attendees = eventRecord.Attendees
	}
	for i := range attendees {
		record := &attendees[i]
		if id, ok := resolved[record.ID]; ok {
			record.ID = id
		}
		id, err := s.upsertAttendee(ctx, eventID, record)
		if err != nil {
			s.logger.Warn("skipping attendee record", "event_id", eventID, "attendee_id", record.ID, "err", err)
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("attendee %s: %v", record.ID, err))
			monitoring.RecordImportRecord("attendee", "skipped")
			continue
		}
		if record.ID != "" && id != record.ID {
			resolved[record.ID] = id
		}
		result.Imported++
		monitoring.RecordImportRecord("attendee", "imported")
	}

	meetings := doc.Meetings
	if meetings == nil && eventRecord != nil {
		meetings = eventRecord.Meetings
	}
	for i := range meetings {
		if err := s.upsertMeeting(ctx, eventID, &meetings[i], resolved); err != nil {
			s.logger.Warn("skipping meeting record", "event_id", eventID, "meeting_id", meetings[i].ID, "err", err)
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("meeting %s: %v", meetings[i].ID, err))
			monitoring.RecordImportRecord("meeting", "skipped")
			continue
		}
		result.Imported++
		monitoring.RecordImportRecord("meeting", "imported")
	}
}

func (s *snapshotService) applyEventRecord(ctx context.Context, eventID string, record *domain.EventRecord) error {
	patch, err := EventPatchFromRecord(record)
	if err != nil {
		return err
	}
	s.enrichCoordinates(ctx, record, &patch)
	if patch.IsEmpty() {
		return nil
	}
	if _, err := s.eventRepo.Update(ctx, eventID, patch); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// enrichCoordinates backfills latitude/longitude from the geocoder when the
// payload carries an address but no coordinates. Best effort: any failure
// leaves the patch as it was.
func (s *snapshotService) enrichCoordinates(ctx context.Context, record *domain.EventRecord, patch *domain.EventPatch) {
	if s.geocoder == nil {
		return
	}
	address := record.Address.Value
	if !record.Address.Set || record.Address.Null || address == "" {
		return
	}
	hasLat := record.Latitude.Set && !record.Latitude.Null
	hasLng := record.Longitude.Set && !record.Longitude.Null
	if hasLat && hasLng {
		return
	}
	coords, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		monitoring.RecordGeocode("error")
		s.logger.Warn("geocode failed, importing without coordinates", "address", address, "err", err)
		return
	}
	if coords == nil {
		monitoring.RecordGeocode("miss")
		return
	}
	monitoring.RecordGeocode("hit")
	patch.Latitude = domain.NewField(coords.Latitude)
	patch.Longitude = domain.NewField(coords.Longitude)
}

func (s *snapshotService) upsertRoom(ctx context.Context, eventID string, record *domain.RoomRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	existing, err := s.roomRepo.GetByID(ctx, record.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get room: %w", err)
	}
	if err == nil {
		if existing.EventID != eventID {
			return fmt.Errorf("room belongs to event %s", existing.EventID)
		}
		patch := RoomPatchFromRecord(record)
		if patch.IsEmpty() {
			return nil
		}
		if _, err := s.roomRepo.Update(ctx, record.ID, patch); err != nil {
			return fmt.Errorf("update room: %w", err)
		}
		return nil
	}
	now := time.Now()
	room := &domain.Room{
		ID:        record.ID,
		EventID:   eventID,
		Name:      valueOr(record.Name, ""),
		Capacity:  valueOr(record.Capacity, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// upsertAttendee writes the attendee row and links it to the event. Linking
// is additive across events.
func (s *snapshotService) upsertAttendee(ctx context.Context, eventID string, record *domain.AttendeeRecord) (string, error) {
	id, err := s.upsertAttendeeRecord(ctx, record)
	if err != nil {
		return "", err
	}
	if err := s.attendeeRepo.LinkToEvent(ctx, eventID, id); err != nil {
		return "", fmt.Errorf("link attendee: %w", err)
	}
	return id, nil
}

// upsertAttendeeRecord creates or patches the attendee row without touching
// event membership, returning the id the record landed on. Email is the
// natural dedup key: when the id is unknown but the email matches an existing
// row, that row is patched instead of a duplicate being created.
func (s *snapshotService) upsertAttendeeRecord(ctx context.Context, record *domain.AttendeeRecord) (string, error) {
	patch := AttendeePatchFromRecord(record)

	if record.ID != "" {
		_, err := s.attendeeRepo.GetByID(ctx, record.ID)
		if err == nil {
			return record.ID, s.patchAttendee(ctx, record.ID, patch)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("get attendee: %w", err)
		}
	}

	email := strings.ToLower(strings.TrimSpace(valueOr(record.Email, "")))
	if email != "" {
		existing, err := s.attendeeRepo.GetByEmail(ctx, email)
		if err == nil {
			return existing.ID, s.patchAttendee(ctx, existing.ID, patch)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("get attendee by email: %w", err)
		}
	}

	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	attendee := &domain.Attendee{
		ID:                 id,
		Name:               valueOr(record.Name, ""),
		Email:              email,
		Title:              valueOr(record.Title, ""),
		Company:            valueOr(record.Company, ""),
		CompanyDescription: valueOr(record.CompanyDescription, ""),
		Bio:                valueOr(record.Bio, ""),
		Linkedin:           valueOr(record.Linkedin, ""),
		ImageURL:           valueOr(record.ImageURL, ""),
		IsExternal:         valueOr(record.IsExternal, false),
		Type:               valueOr(record.Type, ""),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.attendeeRepo.Create(ctx, attendee); err != nil {
		return "", fmt.Errorf("create attendee: %w", err)
	}
	return id, nil
}

func (s *snapshotService) patchAttendee(ctx context.Context, attendeeID string, patch domain.AttendeePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if _, err := s.attendeeRepo.Update(ctx, attendeeID, patch); err != nil {
		return fmt.Errorf("update attendee: %w", err)
	}
	return nil
}

func (s *snapshotService) upsertMeeting(ctx context.Context, eventID string, record *domain.MeetingRecord, resolved map[string]string) error {
	patch, err := MeetingPatchFromRecord(record)
	if err != nil {
		return err
	}
	// A room reference pointing into another event would silently cross
	// scopes; drop it rather than the whole record.
	if patch.RoomID.Set && !patch.RoomID.Null {
		room, err := s.roomRepo.GetByID(ctx, patch.RoomID.Value)
		if err != nil || room.EventID != eventID {
			patch.RoomID = domain.NullField[string]()
		}
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	existing, err := s.meetingRepo.GetByID(ctx, record.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get meeting: %w", err)
	}
	if err == nil {
		if existing.EventID != eventID {
			return fmt.Errorf("meeting belongs to event %s", existing.EventID)
		}
		if !patch.IsEmpty() {
			if _, err := s.meetingRepo.Update(ctx, record.ID, patch); err != nil {
				return fmt.Errorf("update meeting: %w", err)
			}
		}
	} else {
		now := time.Now()
		meeting := &domain.Meeting{
			ID:                 record.ID,
			EventID:            eventID,
			Title:              valueOr(record.Title, ""),
			Purpose:            valueOr(record.Purpose, ""),
			OtherDetails:       valueOr(record.OtherDetails, ""),
			Date:               patch.Date.Ptr(),
			StartTime:          patch.StartTime.Ptr(),
			EndTime:            patch.EndTime.Ptr(),
			Status:             domain.MeetingStatusPipeline,
			RoomID:             patch.RoomID.Ptr(),
			Location:           valueOr(record.Location, ""),
			Tags:               valueOr(record.Tags, []string{}),
			MeetingType:        valueOr(record.MeetingType, ""),
			Sequence:           valueOr(record.Sequence, 0),
			IsApproved:         valueOr(record.IsApproved, false),
			CalendarInviteSent: valueOr(record.CalendarInviteSent, false),
			RequesterEmail:     valueOr(record.RequesterEmail, ""),
			CreatedBy:          valueOr(record.CreatedBy, ""),
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if patch.Status.Set && !patch.Status.Null {
			meeting.Status = patch.Status.Value
		}
		if err := s.meetingRepo.Create(ctx, meeting); err != nil {
			return fmt.Errorf("create meeting: %w", err)
		}
	}

	// Replace, not merge: an attendee missing from the payload list is
	// removed from the meeting. An absent key leaves the edge set untouched.
	// References follow the attendee pass's id resolution, so a reference to
	// a record that was email-deduped lands on the surviving row.
	if record.Attendees.Set {
		ids := []string{}
		if !record.Attendees.Null {
			for _, id := range record.Attendees.Value {
				if mapped, ok := resolved[id]; ok {
					id = mapped
				}
				ids = append(ids, id)
			}
		}
		if err := s.meetingRepo.ReplaceAttendees(ctx, record.ID, ids); err != nil {
			return fmt.Errorf("replace meeting attendees: %w", err)
		}
	}
	return nil
}

func (s *snapshotService) Reset(ctx context.Context, eventID, userID string, isRoot bool) error {
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
	if err := s.maintenanceRepo.ResetEvent(ctx, eventID); err != nil {
		monitoring.RecordReset("error")
		return fmt.Errorf("reset event: %w", err)
	}
	monitoring.RecordReset("ok")
	return nil
}

func (s *snapshotService) Delete(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
