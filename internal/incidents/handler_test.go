package incidents

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bissquit/incidentlog/internal/domain"
	"github.com/bissquit/incidentlog/internal/pkg/httputil"
	"github.com/bissquit/incidentlog/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFixture struct {
	t         *testing.T
	repo      *mockRepository
	router    http.Handler
	validator *testutil.OpenAPIValidator
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	repo := newMockRepository()
	r := chi.NewRouter()
	NewHandler(NewService(repo)).RegisterRoutes(r)

	return &handlerFixture{
		t:         t,
		repo:      repo,
		router:    r,
		validator: testutil.NewOpenAPIValidator(t),
	}
}

// do serves the request and checks the response against the API document.
func (f *handlerFixture) do(method, path, body string) *http.Response {
	f.t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	resp := rec.Result()
	f.validator.ValidateResponse(f.t, req, resp)
	return resp
}

func decodeIncident(t *testing.T, resp *http.Response) domain.Incident {
	t.Helper()
	var incident domain.Incident
	testutil.DecodeJSON(t, resp, &incident)
	return incident
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body httputil.ErrorResponse
	testutil.DecodeJSON(t, resp, &body)
	return body.Error
}

func TestHandler_CreateIncident(t *testing.T) {
	f := newHandlerFixture(t)

	resp := f.do(http.MethodPost, "/incidents", `{"title":"T","description":"D","severity":"Medium"}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	incident := decodeIncident(t, resp)
	assert.NotEmpty(t, incident.ID)
	assert.Equal(t, "T", incident.Title)
	assert.Equal(t, "D", incident.Description)
	assert.Equal(t, domain.SeverityMedium, incident.Severity)
	assert.WithinDuration(t, time.Now(), incident.ReportedAt, time.Minute)
}

func TestHandler_CreateIncident_ExplicitReportedAt(t *testing.T) {
	f := newHandlerFixture(t)

	resp := f.do(http.MethodPost, "/incidents",
		`{"title":"T","description":"D","severity":"High","reported_at":"2024-05-01T10:30:00+02:00"}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	incident := decodeIncident(t, resp)
	assert.True(t, incident.ReportedAt.Equal(time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)))
}

func TestHandler_CreateIncident_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "missing description and severity",
			body:    `{"title":"T"}`,
			message: MessageMissingFields,
		},
		{
			name:    "empty object",
			body:    `{}`,
			message: MessageMissingFields,
		},
		{
			name:    "empty body",
			body:    "",
			message: MessageMissingFields,
		},
		{
			name:    "whitespace body",
			body:    "  \n",
			message: MessageMissingFields,
		},
		{
			name:    "unknown severity",
			body:    `{"title":"T","description":"D","severity":"Critical"}`,
			message: MessageInvalidInput,
		},
		{
			name:    "lowercase severity",
			body:    `{"title":"T","description":"D","severity":"high"}`,
			message: MessageInvalidInput,
		},
		{
			name:    "malformed json",
			body:    `{"title":`,
			message: MessageInvalidInput,
		},
		{
			name:    "wrong field type",
			body:    `{"title":1,"description":"D","severity":"Low"}`,
			message: MessageInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)

			resp := f.do(http.MethodPost, "/incidents", tt.body)

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.message, decodeError(t, resp))
			assert.Zero(t, f.repo.createCalls)
		})
	}
}

func TestHandler_CreateIncident_StoreRejection(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.createErr = ErrInvalidInput

	resp := f.do(http.MethodPost, "/incidents", `{"title":"T","description":"D","severity":"Low"}`)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, MessageInvalidInput, decodeError(t, resp))
}

func TestHandler_CreateIncident_StoreFailure(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.createErr = errors.New("connection reset by peer")

	resp := f.do(http.MethodPost, "/incidents", `{"title":"T","description":"D","severity":"Low"}`)

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, httputil.InternalErrorMessage, decodeError(t, resp))
}

func TestHandler_ListIncidents_Empty(t *testing.T) {
	f := newHandlerFixture(t)

	resp := f.do(http.MethodGet, "/incidents", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, testutil.ReadBody(t, resp))
}

func TestHandler_ListIncidents_ContainsCreated(t *testing.T) {
	f := newHandlerFixture(t)

	created := decodeIncident(t, f.do(http.MethodPost, "/incidents", `{"title":"T","description":"D","severity":"Low"}`))

	resp := f.do(http.MethodGet, "/incidents", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []domain.Incident
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestHandler_ListIncidents_StoreFailure(t *testing.T) {
	f := newHandlerFixture(t)
	f.repo.listErr = errors.New("connection refused")

	resp := f.do(http.MethodGet, "/incidents", "")

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, httputil.InternalErrorMessage, decodeError(t, resp))
}

func TestHandler_GetIncident(t *testing.T) {
	f := newHandlerFixture(t)
	created := decodeIncident(t, f.do(http.MethodPost, "/incidents", `{"title":"T","description":"D","severity":"High"}`))

	resp := f.do(http.MethodGet, "/incidents/"+created.ID, "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeIncident(t, resp)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, created.Severity, fetched.Severity)
	assert.True(t, created.ReportedAt.Equal(fetched.ReportedAt))
}

func TestHandler_GetIncident_Errors(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		status  int
		message string
	}{
		{name: "malformed id", id: "not-an-id", status: http.StatusBadRequest, message: MessageInvalidID},
		{name: "numeric id", id: "12345", status: http.StatusBadRequest, message: MessageInvalidID},
		{name: "unknown id", id: uuid.NewString(), status: http.StatusNotFound, message: MessageNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)

			resp := f.do(http.MethodGet, "/incidents/"+tt.id, "")

			require.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.message, decodeError(t, resp))
		})
	}
}

func TestHandler_DeleteIncident(t *testing.T) {
	f := newHandlerFixture(t)
	created := decodeIncident(t, f.do(http.MethodPost, "/incidents", `{"title":"T","description":"D","severity":"Low"}`))

	resp := f.do(http.MethodDelete, "/incidents/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, testutil.ReadBody(t, resp))

	resp = f.do(http.MethodGet, "/incidents/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, MessageNotFound, decodeError(t, resp))

	resp = f.do(http.MethodDelete, "/incidents/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, MessageNotFound, decodeError(t, resp))
}

func TestHandler_DeleteIncident_MalformedID(t *testing.T) {
	f := newHandlerFixture(t)

	resp := f.do(http.MethodDelete, "/incidents/abc", "")

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, MessageInvalidID, decodeError(t, resp))
	assert.Zero(t, f.repo.deleteCalls)
}

func TestHandler_DeleteIncident_LeavesOthers(t *testing.T) {
	f := newHandlerFixture(t)
	first := decodeIncident(t, f.do(http.MethodPost, "/incidents", `{"title":"A","description":"D","severity":"Low"}`))
	second := decodeIncident(t, f.do(http.MethodPost, "/incidents", `{"title":"B","description":"D","severity":"High"}`))

	resp := f.do(http.MethodDelete, "/incidents/"+first.ID, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(http.MethodGet, "/incidents", "")
	var list []domain.Incident
	testutil.DecodeJSON(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}
