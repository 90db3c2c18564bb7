package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"eventsnap/internal/domain"
)

// memStore is shared backing state for the mock repositories, so one test can
// wire every repository against the same data and observe cross-entity
// effects (links, cascades, resets) the way the real database would show them.
type memStore struct {
	events           map[string]*domain.Event
	attendees        map[string]*domain.Attendee
	rooms            map[string]*domain.Room
	meetings         map[string]*domain.Meeting
	eventAttendees   map[string]map[string]bool
	meetingAttendees map[string][]string
	locked           map[string]bool
	resetEvents      []string
}

func newMemStore() *memStore {
	return &memStore{
		events:           map[string]*domain.Event{},
		attendees:        map[string]*domain.Attendee{},
		rooms:            map[string]*domain.Room{},
		meetings:         map[string]*domain.Meeting{},
		eventAttendees:   map[string]map[string]bool{},
		meetingAttendees: map[string][]string{},
		locked:           map[string]bool{},
	}
}

func (s *memStore) link(eventID, attendeeID string) {
	if s.eventAttendees[eventID] == nil {
		s.eventAttendees[eventID] = map[string]bool{}
	}
	s.eventAttendees[eventID][attendeeID] = true
}

func applyField[T any](f domain.Field[T], dst *T) {
	if !f.Set {
		return
	}
	if f.Null {
		var zero T
		*dst = zero
		return
	}
	*dst = f.Value
}

func applyNullable[T any](f domain.Field[T], dst **T) {
	if !f.Set {
		return
	}
	if f.Null {
		*dst = nil
		return
	}
	v := f.Value
	*dst = &v
}

type mockEventRepository struct {
	store *memStore
	err   error
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.store.events {
		if existing.Slug == event.Slug {
			return domain.ErrDuplicateSlug
		}
	}
	copied := *event
	m.store.events[event.ID] = &copied
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.store.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (m *mockEventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	for _, ev := range m.store.events {
		if ev.Slug == slug {
			return ev, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockEventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Event, 0, len(m.store.events))
	for _, ev := range m.store.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockEventRepository) Update(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.store.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	applyField(patch.Name, &ev.Name)
	applyField(patch.Slug, &ev.Slug)
	applyNullable(patch.StartDate, &ev.StartDate)
	applyNullable(patch.EndDate, &ev.EndDate)
	applyField(patch.Status, &ev.Status)
	applyField(patch.Region, &ev.Region)
	applyField(patch.URL, &ev.URL)
	applyField(patch.Budget, &ev.Budget)
	applyField(patch.TargetCustomers, &ev.TargetCustomers)
	applyField(patch.ExpectedROI, &ev.ExpectedROI)
	applyField(patch.RequesterEmail, &ev.RequesterEmail)
	applyField(patch.Tags, &ev.Tags)
	applyField(patch.MeetingTypes, &ev.MeetingTypes)
	applyField(patch.AttendeeTypes, &ev.AttendeeTypes)
	applyField(patch.Address, &ev.Address)
	applyField(patch.Timezone, &ev.Timezone)
	applyNullable(patch.Latitude, &ev.Latitude)
	applyNullable(patch.Longitude, &ev.Longitude)
	applyNullable(patch.Password, &ev.Password)
	applyField(patch.AuthorizedUserIDs, &ev.AuthorizedUserIDs)
	applyField(patch.Description, &ev.Description)
	applyField(patch.BoothLocation, &ev.BoothLocation)
	ev.UpdatedAt = time.Now()
	return ev, nil
}

func (m *mockEventRepository) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.store.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store.events, id)
	// Foreign-key cascades: owned rooms, meetings and event links go with the
	// event; attendee rows survive.
	for roomID, room := range m.store.rooms {
		if room.EventID == id {
			delete(m.store.rooms, roomID)
		}
	}
	for meetingID, meeting := range m.store.meetings {
		if meeting.EventID == id {
			delete(m.store.meetings, meetingID)
			delete(m.store.meetingAttendees, meetingID)
		}
	}
	delete(m.store.eventAttendees, id)
	return nil
}

type mockAttendeeRepository struct {
	store *memStore
	err   error
}

func (m *mockAttendeeRepository) Create(ctx context.Context, attendee *domain.Attendee) error {
	if m.err != nil {
		return m.err
	}
	copied := *attendee
	m.store.attendees[attendee.ID] = &copied
	return nil
}

func (m *mockAttendeeRepository) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.store.attendees[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (m *mockAttendeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Attendee, error) {
	if m.err != nil {
		return nil, m.err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range m.store.attendees {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockAttendeeRepository) Update(ctx context.Context, attendeeID string, patch domain.AttendeePatch) (*domain.Attendee, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.store.attendees[attendeeID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	applyField(patch.Name, &a.Name)
	applyField(patch.Email, &a.Email)
	applyField(patch.Title, &a.Title)
	applyField(patch.Company, &a.Company)
	applyField(patch.CompanyDescription, &a.CompanyDescription)
	applyField(patch.Bio, &a.Bio)
	applyField(patch.Linkedin, &a.Linkedin)
	applyField(patch.ImageURL, &a.ImageURL)
	applyField(patch.IsExternal, &a.IsExternal)
	applyField(patch.Type, &a.Type)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.UpdatedAt = time.Now()
	return a, nil
}

func (m *mockAttendeeRepository) ListByEventID(ctx context.Context, eventID string, offset, limit int) ([]*domain.Attendee, error) {
	out := []*domain.Attendee{}
	for id := range m.store.eventAttendees[eventID] {
		out = append(out, m.store.attendees[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockAttendeeRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	return len(m.store.eventAttendees[eventID]), nil
}

func (m *mockAttendeeRepository) ListForEventGraph(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := map[string]bool{}
	for id := range m.store.eventAttendees[eventID] {
		ids[id] = true
	}
	for meetingID, meeting := range m.store.meetings {
		if meeting.EventID != eventID {
			continue
		}
		for _, id := range m.store.meetingAttendees[meetingID] {
			ids[id] = true
		}
	}
	out := []*domain.Attendee{}
	for id := range ids {
		if a, ok := m.store.attendees[id]; ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockAttendeeRepository) LinkToEvent(ctx context.Context, eventID, attendeeID string) error {
	if m.err != nil {
		return m.err
	}
	m.store.link(eventID, attendeeID)
	return nil
}

func (m *mockAttendeeRepository) UnlinkFromEvent(ctx context.Context, eventID, attendeeID string) error {
	if !m.store.eventAttendees[eventID][attendeeID] {
		return domain.ErrNotFound
	}
	delete(m.store.eventAttendees[eventID], attendeeID)
	return nil
}

func (m *mockAttendeeRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.store.attendees[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store.attendees, id)
	for _, links := range m.store.eventAttendees {
		delete(links, id)
	}
	for meetingID, ids := range m.store.meetingAttendees {
		kept := []string{}
		for _, aid := range ids {
			if aid != id {
				kept = append(kept, aid)
			}
		}
		m.store.meetingAttendees[meetingID] = kept
	}
	return nil
}

type mockRoomRepository struct {
	store *memStore
	err   error
}

func (m *mockRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if m.err != nil {
		return m.err
	}
	copied := *room
	m.store.rooms[room.ID] = &copied
	return nil
}

func (m *mockRoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.store.rooms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockRoomRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Room, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []*domain.Room{}
	for _, r := range m.store.rooms {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRoomRepository) Update(ctx context.Context, roomID string, patch domain.RoomPatch) (*domain.Room, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.store.rooms[roomID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	applyField(patch.Name, &r.Name)
	applyField(patch.Capacity, &r.Capacity)
	r.UpdatedAt = time.Now()
	return r, nil
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.store.rooms[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store.rooms, id)
	for _, meeting := range m.store.meetings {
		if meeting.RoomID != nil && *meeting.RoomID == id {
			meeting.RoomID = nil
		}
	}
	return nil
}

type mockMeetingRepository struct {
	store *memStore
	err   error
}

func (m *mockMeetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	if m.err != nil {
		return m.err
	}
	copied := *meeting
	m.store.meetings[meeting.ID] = &copied
	return nil
}

func (m *mockMeetingRepository) GetByID(ctx context.Context, id string) (*domain.Meeting, error) {
	if m.err != nil {
		return nil, m.err
	}
	mt, ok := m.store.meetings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	mt.AttendeeIDs = append([]string{}, m.store.meetingAttendees[id]...)
	return mt, nil
}

func (m *mockMeetingRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Meeting, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []*domain.Meeting{}
	for id, mt := range m.store.meetings {
		if mt.EventID != eventID {
			continue
		}
		mt.AttendeeIDs = append([]string{}, m.store.meetingAttendees[id]...)
		out = append(out, mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockMeetingRepository) Update(ctx context.Context, meetingID string, patch domain.MeetingPatch) (*domain.Meeting, error) {
	if m.err != nil {
		return nil, m.err
	}
	mt, ok := m.store.meetings[meetingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	applyField(patch.Title, &mt.Title)
	applyField(patch.Purpose, &mt.Purpose)
	applyField(patch.OtherDetails, &mt.OtherDetails)
	applyNullable(patch.Date, &mt.Date)
	applyNullable(patch.StartTime, &mt.StartTime)
	applyNullable(patch.EndTime, &mt.EndTime)
	applyField(patch.Status, &mt.Status)
	applyNullable(patch.RoomID, &mt.RoomID)
	applyField(patch.Location, &mt.Location)
	applyField(patch.Tags, &mt.Tags)
	applyField(patch.MeetingType, &mt.MeetingType)
	applyField(patch.Sequence, &mt.Sequence)
	applyField(patch.IsApproved, &mt.IsApproved)
	applyField(patch.CalendarInviteSent, &mt.CalendarInviteSent)
	applyField(patch.RequesterEmail, &mt.RequesterEmail)
	applyField(patch.CreatedBy, &mt.CreatedBy)
	mt.UpdatedAt = time.Now()
	mt.AttendeeIDs = append([]string{}, m.store.meetingAttendees[meetingID]...)
	return mt, nil
}

func (m *mockMeetingRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.store.meetings[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store.meetings, id)
	delete(m.store.meetingAttendees, id)
	return nil
}

func (m *mockMeetingRepository) ReplaceAttendees(ctx context.Context, meetingID string, ids []string) error {
	if m.err != nil {
		return m.err
	}
	m.store.meetingAttendees[meetingID] = append([]string{}, ids...)
	return nil
}

func (m *mockMeetingRepository) ListAttendeeIDs(ctx context.Context, meetingID string) ([]string, error) {
	return append([]string{}, m.store.meetingAttendees[meetingID]...), nil
}

type mockMaintenanceRepository struct {
	store    *memStore
	resetErr error
	lockErr  error
}

func (m *mockMaintenanceRepository) ResetEvent(ctx context.Context, eventID string) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.store.resetEvents = append(m.store.resetEvents, eventID)
	for meetingID, meeting := range m.store.meetings {
		if meeting.EventID == eventID {
			delete(m.store.meetings, meetingID)
			delete(m.store.meetingAttendees, meetingID)
		}
	}
	// Attendees linked only to this event go; shared ones survive the reset.
	for attendeeID := range m.store.eventAttendees[eventID] {
		shared := false
		for otherEvent, links := range m.store.eventAttendees {
			if otherEvent != eventID && links[attendeeID] {
				shared = true
			}
		}
		for meetingID, ids := range m.store.meetingAttendees {
			meeting := m.store.meetings[meetingID]
			if meeting == nil || meeting.EventID == eventID {
				continue
			}
			for _, id := range ids {
				if id == attendeeID {
					shared = true
				}
			}
		}
		if !shared {
			delete(m.store.attendees, attendeeID)
		}
	}
	delete(m.store.eventAttendees, eventID)
	for roomID, room := range m.store.rooms {
		if room.EventID == eventID {
			delete(m.store.rooms, roomID)
		}
	}
	return nil
}

func (m *mockMaintenanceRepository) AcquireEventLock(ctx context.Context, eventID string) (func() error, error) {
	if m.lockErr != nil {
		return nil, m.lockErr
	}
	if m.store.locked[eventID] {
		return nil, domain.ErrEventBusy
	}
	m.store.locked[eventID] = true
	return func() error {
		m.store.locked[eventID] = false
		return nil
	}, nil
}

type mockGeocoder struct {
	coords map[string]*domain.Coordinates
	err    error
	calls  int
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (*domain.Coordinates, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.coords[address], nil
}

type mockHasher struct{}

func (mockHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (mockHasher) Verify(hash, password string) bool    { return hash == "hashed:"+password }

type mockEmailService struct {
	invites []*domain.CalendarInvite
	err     error
}

func (m *mockEmailService) SendCalendarInvite(ctx context.Context, invite *domain.CalendarInvite) error {
	if m.err != nil {
		return m.err
	}
	m.invites = append(m.invites, invite)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestSnapshotService wires a snapshot service over a fresh store with all
// mocks sharing that store.
func newTestSnapshotService(store *memStore) domain.SnapshotService {
	return NewSnapshotService(
		&mockEventRepository{store: store},
		&mockRoomRepository{store: store},
		&mockAttendeeRepository{store: store},
		&mockMeetingRepository{store: store},
		&mockMaintenanceRepository{store: store},
		nil,
		testLogger(),
		2*time.Second,
	)
}
