package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"eventsnap/internal/delivery/http/helpers"
	"eventsnap/internal/delivery/http/middleware"
	"eventsnap/internal/domain"
	"eventsnap/internal/services"
)

// MeetingController serves meeting CRUD and calendar-invite delivery.
type MeetingController struct {
	Logger  *slog.Logger
	Service domain.MeetingService
}

func NewMeetingController(logger *slog.Logger, svc domain.MeetingService) *MeetingController {
	return &MeetingController{Logger: logger, Service: svc}
}

// CreateMeetingRequest is the request body for POST /events/{eventID}/meetings.
type CreateMeetingRequest struct {
	Title          string     `json:"title"`
	Purpose        string     `json:"purpose"`
	OtherDetails   string     `json:"otherDetails"`
	Date           *time.Time `json:"date"`
	StartTime      *string    `json:"startTime"`
	EndTime        *string    `json:"endTime"`
	Status         string     `json:"status"`
	RoomID         *string    `json:"roomId"`
	Location       string     `json:"location"`
	Tags           []string   `json:"tags"`
	MeetingType    string     `json:"meetingType"`
	RequesterEmail string     `json:"requesterEmail"`
	AttendeeIDs    []string   `json:"attendees"`
}

// Validate implements Validator.
func (c CreateMeetingRequest) Validate() []string {
	var errs []string
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	return errs
}

// CreateMeeting godoc
// @Summary Create a meeting in an event
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param meeting body CreateMeetingRequest true "Meeting data"
// @Success 201 {object} helpers.APIResponse "data contains the created meeting"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/meetings [post]
func (c *MeetingController) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !helpers.ValidID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	var req CreateMeetingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	meeting := &domain.Meeting{
		EventID:        eventID,
		Title:          req.Title,
		Purpose:        req.Purpose,
		OtherDetails:   req.OtherDetails,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Status:         domain.MeetingStatus(req.Status),
		RoomID:         req.RoomID,
		Location:       req.Location,
		Tags:           req.Tags,
		MeetingType:    req.MeetingType,
		RequesterEmail: req.RequesterEmail,
		CreatedBy:      userID,
		AttendeeIDs:    req.AttendeeIDs,
	}
	if err := c.Service.CreateMeeting(r.Context(), meeting); err != nil {
		c.Logger.ErrorContext(r.Context(), "create meeting failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, meeting)
}

// GetMeeting godoc
// @Summary Get a meeting by its ID
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param meetingID path string true "Meeting ID"
// @Success 200 {object} helpers.APIResponse "data contains the meeting"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /meetings/{meetingID} [get]
func (c *MeetingController) GetMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingID")
	if !helpers.ValidID(meetingID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid meeting id")
		return
	}
	meeting, err := c.Service.GetMeeting(r.Context(), meetingID)
	if err != nil {
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, meeting)
}

// ListByEvent godoc
// @Summary List an event's meetings
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the meeting list"
// @Router /events/{eventID}/meetings [get]
func (c *MeetingController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !helpers.ValidID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	meetings, err := c.Service.ListByEvent(r.Context(), eventID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list meetings failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, meetings)
}

// UpdateMeeting godoc
// @Summary Patch a meeting
// @Description Applies a field-level patch; absent keys are untouched, null
// @Description clears. The attendees key, when present, replaces the meeting's
// @Description attendee set wholesale.
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param meetingID path string true "Meeting ID"
// @Param patch body domain.MeetingRecord true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated meeting"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /meetings/{meetingID} [patch]
func (c *MeetingController) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingID")
	if !helpers.ValidID(meetingID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid meeting id")
		return
	}
	var record domain.MeetingRecord
	if !helpers.DecodeAndValidate(w, r, &record) {
		return
	}
	patch, err := services.MeetingPatchFromRecord(&record)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	meeting, err := c.Service.UpdateMeeting(r.Context(), meetingID, patch)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "update meeting failed", "meeting_id", meetingID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, meeting)
}

// DeleteMeeting godoc
// @Summary Delete a meeting
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param meetingID path string true "Meeting ID"
// @Success 204 "no content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /meetings/{meetingID} [delete]
func (c *MeetingController) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingID")
	if !helpers.ValidID(meetingID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid meeting id")
		return
	}
	if err := c.Service.DeleteMeeting(r.Context(), meetingID); err != nil {
		helpers.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendCalendarInvite godoc
// @Summary Send the meeting's calendar invite
// @Description Emails the invite to every attendee with an email address and
// @Description marks the meeting as sent.
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param meetingID path string true "Meeting ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /meetings/{meetingID}/send-invite [post]
func (c *MeetingController) SendCalendarInvite(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingID")
	if !helpers.ValidID(meetingID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid meeting id")
		return
	}
	if err := c.Service.SendCalendarInvite(r.Context(), meetingID); err != nil {
		c.Logger.ErrorContext(r.Context(), "send calendar invite failed", "meeting_id", meetingID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "sent"})
}
