package attendance

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asistencia-backend/internal/platform/auth"
	"asistencia-backend/internal/platform/evidence"
)

type testEnv struct {
	r        *gin.Engine
	dir      string
	empID    int64
	empTok   string
	adminTok string
	store    *Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := newTestDB(t)
	dir := t.TempDir()
	svc := NewService(conn, evidence.NewLocalStore(dir, "/uploads"), Options{MaxUploadBytes: 1 << 20, MaxPhotoPx: 64})

	tokens := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	empID := seedEmployee(t, conn, "Lucía", "lucia")
	adminID := seedEmployee(t, conn, "Jefa", "jefa")
	empTok, err := tokens.Issue(auth.Employee{ID: empID, Name: "Lucía", Role: auth.RoleEmployee})
	require.NoError(t, err)
	adminTok, err := tokens.Issue(auth.Employee{ID: adminID, Name: "Jefa", Role: auth.RoleAdmin})
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("/api", auth.RequireAuth(tokens))
	RegisterRoutes(api, svc)
	RegisterReportRoutes(api.Group("", auth.RequireRole(auth.RoleAdmin)), svc)

	return &testEnv{r: r, dir: dir, empID: empID, empTok: empTok, adminTok: adminTok, store: NewStore(conn)}
}

func (e *testEnv) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func punchRequest(t *testing.T, kind string, photo []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("kind", kind))
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", "selfie.png")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/punches", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPunchAndStateHandlers(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/state", nil), env.empTok)
	require.Equal(t, http.StatusOK, w.Code)
	var st StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, CheckedOut, st.State)

	w = env.do(punchRequest(t, "in", pngBytes(t, 100, 20)), env.empTok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ev EventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))
	assert.Equal(t, env.empID, ev.EmployeeID)
	assert.Equal(t, CheckIn, ev.Kind)
	require.True(t, strings.HasPrefix(ev.EvidenceRef, "/uploads/"))
	_, err := os.Stat(filepath.Join(env.dir, strings.TrimPrefix(ev.EvidenceRef, "/uploads/")))
	assert.NoError(t, err)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/state", nil), env.empTok)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, CheckedIn, st.State)
	require.NotNil(t, st.LastEvent)
	assert.Equal(t, ev.EventID, st.LastEvent.EventID)
}

func TestPunchHandlerRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(punchRequest(t, "lunch", pngBytes(t, 4, 4)), env.empTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(punchRequest(t, "out", nil), env.empTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(punchRequest(t, "out", []byte("not an image")), env.empTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body errorDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeInvalidArgument, body.Error.Code)

	w = env.do(punchRequest(t, "in", pngBytes(t, 4, 4)), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(httptest.NewRequest(http.MethodGet, "/api/reports/daily?date=today", nil), env.empTok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMonthlyReportHandler(t *testing.T) {
	env := newTestEnv(t)
	d := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mustAppend(t, env.store, env.empID, CheckIn, d.Add(9*time.Hour))
	mustAppend(t, env.store, env.empID, CheckOut, d.Add(17*time.Hour))

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/reports/monthly?employee_id=1&year=2024&month=3", nil), env.adminTok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res MonthlyReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Periods, 1)
	assert.Equal(t, int64(28800), res.Periods[0].DurationSeconds)
	assert.Equal(t, int64(28800), res.TotalSeconds)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/reports/monthly?employee_id=1&year=2024&month=13", nil), env.adminTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDailyReportHandler(t *testing.T) {
	env := newTestEnv(t)
	d := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mustAppend(t, env.store, env.empID, CheckIn, d.Add(9*time.Hour))

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/reports/daily?date=2024-03-04", nil), env.adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	var res DailyReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Events, 1)
	assert.Equal(t, "Lucía", res.Events[0].EmployeeName)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/reports/daily", nil), env.adminTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandler(t *testing.T) {
	env := newTestEnv(t)
	d := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mustAppend(t, env.store, env.empID, CheckIn, d.Add(9*time.Hour))

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/reports/monthly/export?employee_id=1&year=2024&month=3", nil), env.adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "informe-2024-3-empleado-1.csv")
	assert.Equal(t, "name,timestamp,kind\nLucía,2024-03-04T09:00:00Z,in\n", w.Body.String())

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/reports/monthly/export?employee_id=1&year=2024&month=4&view=periods", nil), env.adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "name,date,start,end,duration_seconds\n", w.Body.String())

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/reports/monthly/export?employee_id=99&year=2024&month=3", nil), env.adminTok)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
