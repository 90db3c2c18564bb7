package controllers

import (
	"log/slog"
	"net/http"
	"regexp"

	"eventsnap/internal/delivery/http/helpers"
	"eventsnap/internal/domain"
	"eventsnap/internal/services"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// AttendeeController serves the attendee surface. Attendees are shared
// profiles: create links or creates, the event-scoped delete only unlinks.
type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{Logger: logger, Service: svc}
}

// CreateAttendeeRequest is the request body for POST /events/{eventID}/attendees.
type CreateAttendeeRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	Bio        string `json:"bio"`
	Linkedin   string `json:"linkedin"`
	IsExternal bool   `json:"isExternal"`
	Type       string `json:"type"`
}

// Validate implements Validator.
func (c CreateAttendeeRequest) Validate() []string {
	var errs []string
	if c.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(c.Email) {
		errs = append(errs, "email is not valid")
	}
	return errs
}

// AttendeeListResponse is the data payload for the paginated attendee list.
type AttendeeListResponse struct {
	Attendees  []*domain.Attendee     `json:"attendees"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// CreateForEvent godoc
// @Summary Add an attendee to an event
// @Description Creates the attendee and links it to the event. If a profile with the same email exists anywhere in the system, that profile is linked instead and returned with 200 rather than 201.
// @Tags attendees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param attendee body CreateAttendeeRequest true "Attendee data"
// @Success 201 {object} helpers.APIResponse "data contains the created attendee"
// @Success 200 {object} helpers.APIResponse "data contains the existing attendee that was linked"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/attendees [post]
func (c *AttendeeController) CreateForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !helpers.ValidID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	var req CreateAttendeeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	attendee := &domain.Attendee{
		Name:       req.Name,
		Email:      req.Email,
		Title:      req.Title,
		Company:    req.Company,
		Bio:        req.Bio,
		Linkedin:   req.Linkedin,
		IsExternal: req.IsExternal,
		Type:       req.Type,
	}
	result, created, err := c.Service.CreateForEvent(r.Context(), eventID, attendee)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "create attendee failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	helpers.WriteJSONSuccess(w, status, result)
}

// ListByEvent godoc
// @Summary List an event's attendees
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains attendees plus pagination meta"
// @Router /events/{eventID}/attendees [get]
func (c *AttendeeController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !helpers.ValidID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	params := helpers.ParsePagination(r)
	attendees, total, err := c.Service.ListByEvent(r.Context(), eventID, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list attendees failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AttendeeListResponse{
		Attendees:  attendees,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// UpdateAttendee godoc
// @Summary Patch an attendee profile
// @Description Applies a field-level patch to the shared profile. The change is visible in every event the attendee is linked to.
// @Tags attendees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID"
// @Param patch body domain.AttendeeRecord true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated attendee"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /attendees/{attendeeID} [patch]
func (c *AttendeeController) UpdateAttendee(w http.ResponseWriter, r *http.Request) {
	attendeeID := r.PathValue("attendeeID")
	if !helpers.ValidID(attendeeID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid attendee id")
		return
	}
	var record domain.AttendeeRecord
	if !helpers.DecodeAndValidate(w, r, &record) {
		return
	}
	attendee, err := c.Service.UpdateAttendee(r.Context(), attendeeID, services.AttendeePatchFromRecord(&record))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "update attendee failed", "attendee_id", attendeeID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendee)
}

// UnlinkFromEvent godoc
// @Summary Remove an attendee from an event
// @Description Removes the event link only. The profile and its memberships in other events are untouched.
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param attendeeID path string true "Attendee ID"
// @Success 204 "no content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (not linked)"
// @Router /events/{eventID}/attendees/{attendeeID} [delete]
func (c *AttendeeController) UnlinkFromEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	attendeeID := r.PathValue("attendeeID")
	if !helpers.ValidID(eventID) || !helpers.ValidID(attendeeID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid id")
		return
	}
	if err := c.Service.UnlinkFromEvent(r.Context(), eventID, attendeeID); err != nil {
		helpers.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSystemWide godoc
// @Summary Delete an attendee profile everywhere
// @Description Removes the profile and all of its event and meeting memberships. Root only.
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID"
// @Success 204 "no content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /attendees/{attendeeID} [delete]
func (c *AttendeeController) DeleteSystemWide(w http.ResponseWriter, r *http.Request) {
	attendeeID := r.PathValue("attendeeID")
	if !helpers.ValidID(attendeeID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid attendee id")
		return
	}
	if err := c.Service.DeleteSystemWide(r.Context(), attendeeID); err != nil {
		helpers.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
