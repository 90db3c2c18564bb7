package services

import (
	"fmt"
	"time"

	"eventsnap/internal/domain"
)

// valueOr returns the field value, or fallback when the field is unset or null.
func valueOr[T any](f domain.Field[T], fallback T) T {
	if !f.Set || f.Null {
		return fallback
	}
	return f.Value
}

// parseDate accepts the date spellings found in snapshots: plain dates from
// the current exporter and full timestamps from older ones.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// dateField converts a string date field into a time field, preserving the
// absent / null distinction.
func dateField(f domain.Field[string]) (domain.Field[time.Time], error) {
	if !f.Set {
		return domain.Field[time.Time]{}, nil
	}
	if f.Null || f.Value == "" {
		return domain.NullField[time.Time](), nil
	}
	t, err := parseDate(f.Value)
	if err != nil {
		return domain.Field[time.Time]{}, err
	}
	return domain.NewField(t), nil
}

// EventPatchFromRecord converts a snapshot event record into a field-level
// patch. The same conversion backs both snapshot imports and PATCH requests.
func EventPatchFromRecord(record *domain.EventRecord) (domain.EventPatch, error) {
	startDate, err := dateField(record.StartDate)
	if err != nil {
		return domain.EventPatch{}, fmt.Errorf("startDate: %w", err)
	}
	endDate, err := dateField(record.EndDate)
	if err != nil {
		return domain.EventPatch{}, fmt.Errorf("endDate: %w", err)
	}
	var status domain.Field[domain.EventStatus]
	if record.Status.Set {
		if record.Status.Null {
			status = domain.NullField[domain.EventStatus]()
		} else if s := domain.EventStatus(record.Status.Value); domain.ValidEventStatus(s) {
			status = domain.NewField(s)
		} else {
			return domain.EventPatch{}, fmt.Errorf("unknown event status %q", record.Status.Value)
		}
	}
	return domain.EventPatch{
		Name:              record.Name,
		Slug:              record.Slug,
		StartDate:         startDate,
		EndDate:           endDate,
		Status:            status,
		Region:            record.Region,
		URL:               record.URL,
		Budget:            record.Budget,
		TargetCustomers:   record.TargetCustomers,
		ExpectedROI:       record.ExpectedROI,
		RequesterEmail:    record.RequesterEmail,
		Tags:              record.Tags,
		MeetingTypes:      record.MeetingTypes,
		AttendeeTypes:     record.AttendeeTypes,
		Address:           record.Address,
		Timezone:          record.Timezone,
		Latitude:          record.Latitude,
		Longitude:         record.Longitude,
		Password:          record.Password,
		AuthorizedUserIDs: record.AuthorizedUserIDs,
		Description:       record.Description,
		BoothLocation:     record.BoothLocation,
	}, nil
}

// MeetingPatchFromRecord converts a snapshot meeting record into a
// field-level patch, normalizing legacy status spellings.
func MeetingPatchFromRecord(record *domain.MeetingRecord) (domain.MeetingPatch, error) {
	date, err := dateField(record.Date)
	if err != nil {
		return domain.MeetingPatch{}, fmt.Errorf("date: %w", err)
	}
	var status domain.Field[domain.MeetingStatus]
	if record.Status.Set {
		if record.Status.Null {
			status = domain.NullField[domain.MeetingStatus]()
		} else {
			status = domain.NewField(domain.NormalizeMeetingStatus(record.Status.Value))
		}
	}
	return domain.MeetingPatch{
		Title:              record.Title,
		Purpose:            record.Purpose,
		OtherDetails:       record.OtherDetails,
		Date:               date,
		StartTime:          record.StartTime,
		EndTime:            record.EndTime,
		Status:             status,
		RoomID:             record.RoomID,
		Location:           record.Location,
		Tags:               record.Tags,
		MeetingType:        record.MeetingType,
		Sequence:           record.Sequence,
		IsApproved:         record.IsApproved,
		CalendarInviteSent: record.CalendarInviteSent,
		RequesterEmail:     record.RequesterEmail,
		CreatedBy:          record.CreatedBy,
		AttendeeIDs: domain.Field[[]string]{
			Set:   record.Attendees.Set,
			Null:  record.Attendees.Null,
			Value: record.Attendees.Value,
		},
	}, nil
}

// AttendeePatchFromRecord converts a snapshot attendee record into a
// field-level patch.
func AttendeePatchFromRecord(record *domain.AttendeeRecord) domain.AttendeePatch {
	return domain.AttendeePatch{
		Name:               record.Name,
		Email:              record.Email,
		Title:              record.Title,
		Company:            record.Company,
		CompanyDescription: record.CompanyDescription,
		Bio:                record.Bio,
		Linkedin:           record.Linkedin,
		ImageURL:           record.ImageURL,
		IsExternal:         record.IsExternal,
		Type:               record.Type,
	}
}

// RoomPatchFromRecord converts a snapshot room record into a field-level patch.
func RoomPatchFromRecord(record *domain.RoomRecord) domain.RoomPatch {
	return domain.RoomPatch{Name: record.Name, Capacity: record.Capacity}
}

func eventToRecord(e *domain.Event) domain.EventRecord {
	record := domain.EventRecord{
		ID:                e.ID,
		Name:              domain.NewField(e.Name),
		Slug:              domain.NewField(e.Slug),
		Status:            domain.NewField(string(e.Status)),
		Region:            domain.NewField(e.Region),
		URL:               domain.NewField(e.URL),
		Budget:            domain.NewField(e.Budget),
		TargetCustomers:   domain.NewField(e.TargetCustomers),
		ExpectedROI:       domain.NewField(e.ExpectedROI),
		RequesterEmail:    domain.NewField(e.RequesterEmail),
		Tags:              domain.NewField(emptyIfNil(e.Tags)),
		MeetingTypes:      domain.NewField(emptyIfNil(e.MeetingTypes)),
		AttendeeTypes:     domain.NewField(emptyIfNil(e.AttendeeTypes)),
		Address:           domain.NewField(e.Address),
		Timezone:          domain.NewField(e.Timezone),
		AuthorizedUserIDs: domain.NewField(emptyIfNil(e.AuthorizedUserIDs)),
		Description:       domain.NewField(e.Description),
		BoothLocation:     domain.NewField(e.BoothLocation),
	}
	if e.StartDate != nil {
		record.StartDate = domain.NewField(e.StartDate.Format(dateLayout))
	}
	if e.EndDate != nil {
		record.EndDate = domain.NewField(e.EndDate.Format(dateLayout))
	}
	if e.Latitude != nil {
		record.Latitude = domain.NewField(*e.Latitude)
	}
	if e.Longitude != nil {
		record.Longitude = domain.NewField(*e.Longitude)
	}
	// The stored hash, not a cleartext password, so a restore round-trips
	// viewer access without ever exporting the secret itself.
	if e.Password != nil {
		record.Password = domain.NewField(*e.Password)
	}
	return record
}

func attendeeToRecord(a *domain.Attendee) domain.AttendeeRecord {
	return domain.AttendeeRecord{
		ID:                 a.ID,
		Name:               domain.NewField(a.Name),
		Email:              domain.NewField(a.Email),
		Title:              domain.NewField(a.Title),
		Company:            domain.NewField(a.Company),
		CompanyDescription: domain.NewField(a.CompanyDescription),
		Bio:                domain.NewField(a.Bio),
		Linkedin:           domain.NewField(a.Linkedin),
		ImageURL:           domain.NewField(a.ImageURL),
		IsExternal:         domain.NewField(a.IsExternal),
		Type:               domain.NewField(a.Type),
	}
}

func roomToRecord(r *domain.Room) domain.RoomRecord {
	return domain.RoomRecord{
		ID:       r.ID,
		Name:     domain.NewField(r.Name),
		Capacity: domain.NewField(r.Capacity),
	}
}

func meetingToRecord(m *domain.Meeting) domain.MeetingRecord {
	record := domain.MeetingRecord{
		ID:                 m.ID,
		Title:              domain.NewField(m.Title),
		Purpose:            domain.NewField(m.Purpose),
		OtherDetails:       domain.NewField(m.OtherDetails),
		Status:             domain.NewField(string(m.Status)),
		Location:           domain.NewField(m.Location),
		Tags:               domain.NewField(emptyIfNil(m.Tags)),
		MeetingType:        domain.NewField(m.MeetingType),
		Sequence:           domain.NewField(m.Sequence),
		IsApproved:         domain.NewField(m.IsApproved),
		CalendarInviteSent: domain.NewField(m.CalendarInviteSent),
		RequesterEmail:     domain.NewField(m.RequesterEmail),
		CreatedBy:          domain.NewField(m.CreatedBy),
		Attendees:          domain.NewField(domain.AttendeeRefList(emptyIfNil(m.AttendeeIDs))),
	}
	if m.Date != nil {
		record.Date = domain.NewField(m.Date.Format(dateLayout))
	}
	if m.StartTime != nil {
		record.StartTime = domain.NewField(*m.StartTime)
	}
	if m.EndTime != nil {
		record.EndTime = domain.NewField(*m.EndTime)
	}
	if m.RoomID != nil {
		record.RoomID = domain.NewField(*m.RoomID)
	}
	return record
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
