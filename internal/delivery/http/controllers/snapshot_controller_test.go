package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventsnap/internal/delivery/http/helpers"
	"eventsnap/internal/delivery/http/middleware"
	"eventsnap/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeSnapshotService implements domain.SnapshotService for handler tests.
type fakeSnapshotService struct {
	exportResult       *domain.SnapshotDocument
	exportErr          error
	exportSystemResult *domain.SnapshotDocument
	exportSystemErr    error
	importResult       *domain.ImportResult
	importErr          error
	importSystemResult *domain.ImportResult
	importSystemErr    error
	resetErr           error
	deleteErr          error

	lastExportEventID string
	lastImportEventID string
	lastImportUserID  string
	lastImportIsRoot  bool
	lastImportDoc     *domain.SnapshotDocument
	lastResetEventID  string
	lastResetUserID   string
	importSystemDoc   *domain.SnapshotDocument
}

func (f *fakeSnapshotService) Export(ctx context.Context, eventID string) (*domain.SnapshotDocument, error) {
	f.lastExportEventID = eventID
	return f.exportResult, f.exportErr
}

func (f *fakeSnapshotService) ExportSystem(ctx context.Context) (*domain.SnapshotDocument, error) {
	return f.exportSystemResult, f.exportSystemErr
}

func (f *fakeSnapshotService) Import(ctx context.Context, eventID, userID string, isRoot bool, doc *domain.SnapshotDocument) (*domain.ImportResult, error) {
	f.lastImportEventID = eventID
	f.lastImportUserID = userID
	f.lastImportIsRoot = isRoot
	f.lastImportDoc = doc
	return f.importResult, f.importErr
}

func (f *fakeSnapshotService) ImportSystem(ctx context.Context, doc *domain.SnapshotDocument) (*domain.ImportResult, error) {
	f.importSystemDoc = doc
	return f.importSystemResult, f.importSystemErr
}

func (f *fakeSnapshotService) Reset(ctx context.Context, eventID, userID string, isRoot bool) error {
	f.lastResetEventID = eventID
	f.lastResetUserID = userID
	return f.resetErr
}

func (f *fakeSnapshotService) Delete(ctx context.Context, eventID string) error {
	return f.deleteErr
}

func pathRequest(method, path string, body io.Reader, vars map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, body)
	for k, v := range vars {
		req.SetPathValue(k, v)
	}
	return req
}

// authedRequest is pathRequest with an authenticated identity on the context,
// as RequireAuth would leave it.
func authedRequest(method, path string, body io.Reader, vars map[string]string, userID string, isRoot bool) *http.Request {
	req := pathRequest(method, path, body, vars)
	return req.WithContext(middleware.SetIdentity(req.Context(), userID, isRoot))
}

func TestSnapshotController_ExportEvent(t *testing.T) {
	svc := &fakeSnapshotService{
		exportResult: &domain.SnapshotDocument{
			Version: domain.SnapshotVersion,
			Event:   &domain.EventRecord{ID: "ev-1", Name: domain.NewField("Summit")},
		},
	}
	ctrl := NewSnapshotController(testLogger, svc)

	rec := httptest.NewRecorder()
	ctrl.ExportEvent(rec, pathRequest(http.MethodGet, "/events/ev-1/export", nil, map[string]string{"eventID": "ev-1"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ev-1", svc.lastExportEventID)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "event-ev-1.json")

	// The body is the raw document, not the API envelope, so the file
	// re-imports unchanged.
	var doc domain.SnapshotDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.NotNil(t, doc.Event)
	assert.Equal(t, "ev-1", doc.Event.ID)
	assert.Equal(t, domain.SnapshotVersion, doc.Version)
}

func TestSnapshotController_ExportEvent_NotFound(t *testing.T) {
	svc := &fakeSnapshotService{exportErr: domain.ErrNotFound}
	ctrl := NewSnapshotController(testLogger, svc)

	rec := httptest.NewRecorder()
	ctrl.ExportEvent(rec, pathRequest(http.MethodGet, "/events/missing/export", nil, map[string]string{"eventID": "missing"}))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp helpers.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, helpers.ErrCodeNotFound, resp.Error.Code)
}

func TestSnapshotController_ImportEvent(t *testing.T) {
	svc := &fakeSnapshotService{
		importResult: &domain.ImportResult{Imported: 4, Skipped: 1, Warnings: []string{"meeting m9: belongs to another event"}},
	}
	ctrl := NewSnapshotController(testLogger, svc)

	body := strings.NewReader(`{"version":"2.1","event":{"id":"ev-1","name":"Summit"},"attendees":[],"rooms":[],"meetings":[]}`)
	rec := httptest.NewRecorder()
	ctrl.ImportEvent(rec, authedRequest(http.MethodPost, "/events/ev-1/import", body, map[string]string{"eventID": "ev-1"}, "user-1", false))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ev-1", svc.lastImportEventID)
	assert.Equal(t, "user-1", svc.lastImportUserID)
	assert.False(t, svc.lastImportIsRoot)
	require.NotNil(t, svc.lastImportDoc)
	assert.Equal(t, "ev-1", svc.lastImportDoc.Event.ID)

	var resp struct {
		Data domain.ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Data.Imported)
	assert.Equal(t, 1, resp.Data.Skipped)
	assert.Len(t, resp.Data.Warnings, 1)
}

func TestSnapshotController_ImportEvent_ScopeMismatch(t *testing.T) {
	svc := &fakeSnapshotService{importErr: domain.ErrScopeMismatch}
	ctrl := NewSnapshotController(testLogger, svc)

	body := strings.NewReader(`{"event":{"id":"ev-other"}}`)
	rec := httptest.NewRecorder()
	ctrl.ImportEvent(rec, authedRequest(http.MethodPost, "/events/ev-1/import", body, map[string]string{"eventID": "ev-1"}, "user-1", false))

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSnapshotController_ImportEvent_Forbidden(t *testing.T) {
	svc := &fakeSnapshotService{importErr: domain.ErrForbidden}
	ctrl := NewSnapshotController(testLogger, svc)

	body := strings.NewReader(`{"event":{"id":"ev-1"}}`)
	rec := httptest.NewRecorder()
	ctrl.ImportEvent(rec, authedRequest(http.MethodPost, "/events/ev-1/import", body, map[string]string{"eventID": "ev-1"}, "stranger", false))

	require.Equal(t, http.StatusForbidden, rec.Code)
	var resp helpers.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, helpers.ErrCodeForbidden, resp.Error.Code)
}

func TestSnapshotController_ImportEvent_Unauthenticated(t *testing.T) {
	svc := &fakeSnapshotService{}
	ctrl := NewSnapshotController(testLogger, svc)

	body := strings.NewReader(`{"event":{"id":"ev-1"}}`)
	rec := httptest.NewRecorder()
	ctrl.ImportEvent(rec, pathRequest(http.MethodPost, "/events/ev-1/import", body, map[string]string{"eventID": "ev-1"}))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.lastImportEventID)
}

func TestSnapshotController_ImportEvent_BadJSON(t *testing.T) {
	svc := &fakeSnapshotService{}
	ctrl := NewSnapshotController(testLogger, svc)

	rec := httptest.NewRecorder()
	ctrl.ImportEvent(rec, authedRequest(http.MethodPost, "/events/ev-1/import", strings.NewReader("{nope"), map[string]string{"eventID": "ev-1"}, "user-1", false))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.lastImportEventID)
}

func TestSnapshotController_ImportEvent_UnknownKeysAccepted(t *testing.T) {
	svc := &fakeSnapshotService{importResult: &domain.ImportResult{Imported: 1}}
	ctrl := NewSnapshotController(testLogger, svc)

	// Documents from newer exporters may carry keys this version does not know.
	body := strings.NewReader(`{"event":{"id":"ev-1"},"futureSection":{"x":1}}`)
	rec := httptest.NewRecorder()
	ctrl.ImportEvent(rec, authedRequest(http.MethodPost, "/events/ev-1/import", body, map[string]string{"eventID": "ev-1"}, "user-1", false))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSnapshotController_ImportEvent_EventBusy(t *testing.T) {
	svc := &fakeSnapshotService{importErr: domain.ErrEventBusy}
	ctrl := NewSnapshotController(testLogger, svc)

	body := strings.NewReader(`{"event":{"id":"ev-1"}}`)
	rec := httptest.NewRecorder()
	ctrl.ImportEvent(rec, authedRequest(http.MethodPost, "/events/ev-1/import", body, map[string]string{"eventID": "ev-1"}, "user-1", false))

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSnapshotController_ResetEvent(t *testing.T) {
	svc := &fakeSnapshotService{}
	ctrl := NewSnapshotController(testLogger, svc)

	rec := httptest.NewRecorder()
	ctrl.ResetEvent(rec, authedRequest(http.MethodPost, "/events/ev-1/reset", nil, map[string]string{"eventID": "ev-1"}, "user-1", false))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ev-1", svc.lastResetEventID)
	assert.Equal(t, "user-1", svc.lastResetUserID)
}

func TestSnapshotController_ResetEvent_Forbidden(t *testing.T) {
	svc := &fakeSnapshotService{resetErr: domain.ErrForbidden}
	ctrl := NewSnapshotController(testLogger, svc)

	rec := httptest.NewRecorder()
	ctrl.ResetEvent(rec, authedRequest(http.MethodPost, "/events/ev-1/reset", nil, map[string]string{"eventID": "ev-1"}, "stranger", false))

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSnapshotController_ResetEvent_InvalidID(t *testing.T) {
	svc := &fakeSnapshotService{}
	ctrl := NewSnapshotController(testLogger, svc)

	rec := httptest.NewRecorder()
	ctrl.ResetEvent(rec, pathRequest(http.MethodPost, "/events/x/reset", nil, map[string]string{"eventID": "not valid!"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.lastResetEventID)
}

func TestSnapshotController_ExportSystem(t *testing.T) {
	svc := &fakeSnapshotService{
		exportSystemResult: &domain.SnapshotDocument{
			Version: domain.SnapshotVersion,
			Events:  []domain.EventRecord{{ID: "ev-1"}, {ID: "ev-2"}},
		},
	}
	ctrl := NewSnapshotController(testLogger, svc)

	rec := httptest.NewRecorder()
	ctrl.ExportSystem(rec, httptest.NewRequest(http.MethodGet, "/system/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "system.json")
	var doc domain.SnapshotDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Len(t, doc.Events, 2)
}

func TestSnapshotController_ImportSystem(t *testing.T) {
	svc := &fakeSnapshotService{importSystemResult: &domain.ImportResult{Imported: 7}}
	ctrl := NewSnapshotController(testLogger, svc)

	body := bytes.NewReader([]byte(`{"events":[{"id":"ev-1"}],"systemSettings":{"theme":"dark"}}`))
	rec := httptest.NewRecorder()
	ctrl.ImportSystem(rec, httptest.NewRequest(http.MethodPost, "/system/import", body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.importSystemDoc)
	assert.Len(t, svc.importSystemDoc.Events, 1)
}

func TestSnapshotController_ImportSystem_MissingEvents(t *testing.T) {
	svc := &fakeSnapshotService{importSystemErr: domain.ErrInvalidInput}
	ctrl := NewSnapshotController(testLogger, svc)

	rec := httptest.NewRecorder()
	ctrl.ImportSystem(rec, httptest.NewRequest(http.MethodPost, "/system/import", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
