package controllers

import (
	"log/slog"
	"net/http"

	"eventsnap/internal/delivery/http/helpers"
	"eventsnap/internal/domain"
	"eventsnap/internal/services"
)

// RoomController serves room CRUD within an event.
type RoomController struct {
	Logger  *slog.Logger
	Service domain.RoomService
}

func NewRoomController(logger *slog.Logger, svc domain.RoomService) *RoomController {
	return &RoomController{Logger: logger, Service: svc}
}

// CreateRoomRequest is the request body for POST /events/{eventID}/rooms.
type CreateRoomRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// Validate implements Validator.
func (c CreateRoomRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	if c.Capacity < 0 {
		errs = append(errs, "capacity must not be negative")
	}
	return errs
}

// CreateRoom godoc
// @Summary Create a room in an event
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param room body CreateRoomRequest true "Room data"
// @Success 201 {object} helpers.APIResponse "data contains the created room"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rooms [post]
func (c *RoomController) CreateRoom(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !helpers.ValidID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	var req CreateRoomRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	room := &domain.Room{EventID: eventID, Name: req.Name, Capacity: req.Capacity}
	if err := c.Service.CreateRoom(r.Context(), room); err != nil {
		c.Logger.ErrorContext(r.Context(), "create room failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, room)
}

// ListByEvent godoc
// @Summary List an event's rooms
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the room list"
// @Router /events/{eventID}/rooms [get]
func (c *RoomController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !helpers.ValidID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	rooms, err := c.Service.ListByEvent(r.Context(), eventID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list rooms failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rooms)
}

// UpdateRoom godoc
// @Summary Patch a room
// @Description Applies a field-level patch; absent keys are untouched.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param roomID path string true "Room ID"
// @Param patch body domain.RoomRecord true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated room"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /rooms/{roomID} [patch]
func (c *RoomController) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	if !helpers.ValidID(roomID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid room id")
		return
	}
	var record domain.RoomRecord
	if !helpers.DecodeAndValidate(w, r, &record) {
		return
	}
	room, err := c.Service.UpdateRoom(r.Context(), roomID, services.RoomPatchFromRecord(&record))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "update room failed", "room_id", roomID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, room)
}

// DeleteRoom godoc
// @Summary Delete a room
// @Description Meetings that referenced the room keep existing with their room reference cleared.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param roomID path string true "Room ID"
// @Success 204 "no content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /rooms/{roomID} [delete]
func (c *RoomController) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	if !helpers.ValidID(roomID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid room id")
		return
	}
	if err := c.Service.DeleteRoom(r.Context(), roomID); err != nil {
		helpers.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
