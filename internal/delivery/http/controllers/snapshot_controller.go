package controllers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"eventsnap/internal/delivery/http/helpers"
	"eventsnap/internal/delivery/http/middleware"
	"eventsnap/internal/domain"
)

// SnapshotController serves the export / import / reset surface of the
// synchronization engine.
type SnapshotController struct {
	Logger  *slog.Logger
	Service domain.SnapshotService
}

func NewSnapshotController(logger *slog.Logger, svc domain.SnapshotService) *SnapshotController {
	return &SnapshotController{Logger: logger, Service: svc}
}

// ImportResultSuccessResponse is the success envelope for import endpoints.
type ImportResultSuccessResponse struct {
	Data  *domain.ImportResult `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ExportEvent godoc
// @Summary Export an event snapshot
// @Description Returns the event's full object graph (event, attendees, rooms, meetings) as a portable snapshot document. The response body is the document itself, not the API envelope, so it can be re-imported as-is.
// @Tags snapshots
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} domain.SnapshotDocument
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/export [get]
func (c *SnapshotController) ExportEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !helpers.ValidID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	doc, err := c.Service.Export(r.Context(), eventID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "export failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "event-"+eventID+".json"))
	_ = json.NewEncoder(w).Encode(doc)
}

// ImportEvent godoc
// @Summary Import a snapshot into an event
// @Description Merges a snapshot document into the target event. Records are upserted by id (attendees also by email); fields absent from the payload are left untouched, explicit nulls clear. A document whose event id names a different event is rejected whole.
// @Tags snapshots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param document body domain.SnapshotDocument true "Snapshot document"
// @Success 200 {object} controllers.ImportResultSuccessResponse "data contains imported/skipped counts and warnings"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (scope mismatch or event busy)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/import [post]
func (c *SnapshotController) ImportEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !helpers.ValidID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "not authenticated")
		return
	}
	var doc domain.SnapshotDocument
	if !helpers.DecodeAndValidate(w, r, &doc) {
		return
	}
	result, err := c.Service.Import(r.Context(), eventID, userID, middleware.IsRootFromContext(r.Context()), &doc)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "import failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ResetEvent godoc
// @Summary Reset an event
// @Description Deletes all of the event's meetings, attendee links (and attendee rows owned only by this event) and rooms in one transaction. The event row itself survives.
// @Tags snapshots
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 204 "no content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/reset [post]
func (c *SnapshotController) ResetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !helpers.ValidID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "not authenticated")
		return
	}
	if err := c.Service.Reset(r.Context(), eventID, userID, middleware.IsRootFromContext(r.Context())); err != nil {
		c.Logger.ErrorContext(r.Context(), "reset failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportSystem godoc
// @Summary Export a system-wide snapshot
// @Description Returns every event with its rooms and meetings nested, plus the global attendee pool. Root only.
// @Tags snapshots
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.SnapshotDocument
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /system/export [get]
func (c *SnapshotController) ExportSystem(w http.ResponseWriter, r *http.Request) {
	doc, err := c.Service.ExportSystem(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "system export failed", "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="system.json"`)
	_ = json.NewEncoder(w).Encode(doc)
}

// ImportSystem godoc
// @Summary Import a system-wide snapshot
// @Description Imports each event bundle from a system document, creating events that do not exist yet. Root only.
// @Tags snapshots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param document body domain.SnapshotDocument true "System snapshot document with an events array"
// @Success 200 {object} controllers.ImportResultSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /system/import [post]
func (c *SnapshotController) ImportSystem(w http.ResponseWriter, r *http.Request) {
	var doc domain.SnapshotDocument
	if !helpers.DecodeAndValidate(w, r, &doc) {
		return
	}
	result, err := c.Service.ImportSystem(r.Context(), &doc)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "system import failed", "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
