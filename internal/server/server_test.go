package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rescuelink/internal/lifecycle"
	"rescuelink/internal/service"
	"rescuelink/internal/store"
	"rescuelink/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	handler http.Handler
	path    string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	path := filepath.Join(t.TempDir(), "data.json")
	rs := store.NewRecordStore(store.NewFileBackend(path), nil, logger, 3)

	cfg := &types.Config{ServerPort: 0, AllowedOrigins: []string{"*"}}
	svc := New(cfg, logger,
		service.NewReportService(rs, lifecycle.NewMachine(true), logger),
		service.NewContactService(rs, logger),
	)

	return &testAPI{handler: svc.Handler(), path: path}
}

func (a *testAPI) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a *testAPI) submit(t *testing.T, body map[string]any) *types.Report {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/reports", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*types.Report](t, rec)
}

func TestHome(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Disaster Alert API is running...", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = api.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSubmitThenList(t *testing.T) {
	api := newTestAPI(t)

	created := api.submit(t, map[string]any{"type": "Fire", "location": "A"})
	assert.Equal(t, types.ReportStatusPending, created.Status)
	assert.Equal(t, types.MissionStatusNone, created.MissionStatus)
	assert.NotEmpty(t, created.ID)

	rec := api.do(t, http.MethodGet, "/api/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]*types.Report](t, rec)
	require.NotEmpty(t, list)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestSubmitIgnoresServerAssignedFields(t *testing.T) {
	api := newTestAPI(t)

	created := api.submit(t, map[string]any{
		"id":         "mine",
		"type":       "Flood",
		"status":     "Approved",
		"severity":   "Low",
		"approvedAt": "2024-01-01T00:00:00Z",
	})

	assert.NotEqual(t, "mine", created.ID)
	assert.Equal(t, types.ReportStatusPending, created.Status)
	assert.Nil(t, created.Severity)
	assert.Nil(t, created.ApprovedAt)
	assert.Equal(t, types.UnknownLocation, created.Location)
}

func TestApproveWithSeverity(t *testing.T) {
	api := newTestAPI(t)
	created := api.submit(t, map[string]any{"type": "Fire", "location": "A"})

	rec := api.do(t, http.MethodPatch, "/api/reports/"+created.ID, map[string]any{
		"status":   "Approved",
		"severity": "Critical",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[types.ReportUpdatedResponse](t, rec)
	assert.Equal(t, "Report updated", resp.Message)
	require.NotNil(t, resp.Report)
	assert.Equal(t, types.ReportStatusApproved, resp.Report.Status)
	require.NotNil(t, resp.Report.Severity)
	assert.Equal(t, types.SeverityCritical, *resp.Report.Severity)
	assert.NotNil(t, resp.Report.ApprovedAt)
}

func TestRejectDefaultsReason(t *testing.T) {
	api := newTestAPI(t)
	created := api.submit(t, map[string]any{"type": "Fire"})

	rec := api.do(t, http.MethodPatch, "/api/reports/"+created.ID, map[string]any{"status": "Rejected"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[types.ReportUpdatedResponse](t, rec)
	assert.Equal(t, types.ReportStatusRejected, resp.Report.Status)
	require.NotNil(t, resp.Report.RejectionReason)
	assert.Equal(t, types.DefaultRejectionReason, *resp.Report.RejectionReason)
	assert.NotNil(t, resp.Report.RejectedAt)
}

func TestMissionLifecycle(t *testing.T) {
	api := newTestAPI(t)
	created := api.submit(t, map[string]any{"type": "Fire"})

	steps := []map[string]any{
		{"status": "Approved"},
		{"missionStatus": "Active"},
		{"missionStatus": "Completed"},
	}
	for _, body := range steps {
		rec := api.do(t, http.MethodPatch, "/api/reports/"+created.ID, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := api.do(t, http.MethodGet, "/api/reports/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[*types.Report](t, rec)
	assert.Equal(t, types.MissionStatusCompleted, got.MissionStatus)
	assert.NotNil(t, got.AcceptedAt)
	assert.NotNil(t, got.CompletedAt)

	rec = api.do(t, http.MethodGet, "/api/reports/views", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	views := decode[types.Views](t, rec)
	assert.Equal(t, 1, views.Total)
	require.Len(t, views.Completed, 1)
	assert.Equal(t, created.ID, views.Completed[0].ID)
	assert.Empty(t, views.Pending)
}

func TestPatchUnknownReport(t *testing.T) {
	api := newTestAPI(t)
	api.submit(t, map[string]any{"type": "Fire"})

	before, err := os.ReadFile(api.path)
	require.NoError(t, err)

	rec := api.do(t, http.MethodPatch, "/api/reports/unknown-id", map[string]any{"status": "Approved"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Report not found"}`, rec.Body.String())

	after, err := os.ReadFile(api.path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	rec = api.do(t, http.MethodGet, "/api/reports/unknown-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPatchOutOfOrderIsConflict(t *testing.T) {
	api := newTestAPI(t)
	created := api.submit(t, map[string]any{"type": "Fire"})

	rec := api.do(t, http.MethodPatch, "/api/reports/"+created.ID, map[string]any{"missionStatus": "Completed"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	msg := decode[messageResponse](t, rec)
	assert.Contains(t, msg.Message, "Pending")
}

func TestPatchBadInput(t *testing.T) {
	api := newTestAPI(t)
	created := api.submit(t, map[string]any{"type": "Fire"})

	rec := api.do(t, http.MethodPatch, "/api/reports/"+created.ID, map[string]any{"status": "Escalated"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPatch, "/api/reports/"+created.ID, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/reports", `{"description":"`+strings.Repeat("x", maxBodyBytes)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestListFilters(t *testing.T) {
	api := newTestAPI(t)

	sos := api.submit(t, map[string]any{"type": "Medical Emergency", "isEmergencySOS": true})
	plain := api.submit(t, map[string]any{"type": "Flood"})

	rec := api.do(t, http.MethodPatch, "/api/reports/"+plain.ID, map[string]any{"status": "Approved"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/reports?sos=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]*types.Report](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, sos.ID, list[0].ID)

	rec = api.do(t, http.MethodGet, "/api/reports?status=Approved", nil)
	list = decode[[]*types.Report](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, plain.ID, list[0].ID)

	rec = api.do(t, http.MethodGet, "/api/reports?status=Escalated", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContacts(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/contacts", map[string]any{
		"name":        "Ama",
		"phone":       "0244000000",
		"relation":    "Sister",
		"isEmergency": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[*types.Contact](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.IsEmergency)

	rec = api.do(t, http.MethodGet, "/api/contacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]*types.Contact](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Ama", list[0].Name)
}

func TestTrailingSlashRedirect(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/reports/", nil)
	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/api/reports", rec.Header().Get("Location"))
}
