package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/officer"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/jwt"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/sse"
	"github.com/cmlabs-edu/eduops-backend/internal/repository/memory"
	accountsvc "github.com/cmlabs-edu/eduops-backend/internal/service/account"
	attendancesvc "github.com/cmlabs-edu/eduops-backend/internal/service/attendance"
	leavesvc "github.com/cmlabs-edu/eduops-backend/internal/service/leave"
	payrollsvc "github.com/cmlabs-edu/eduops-backend/internal/service/payroll"
	recruitmentsvc "github.com/cmlabs-edu/eduops-backend/internal/service/recruitment"
	timetablesvc "github.com/cmlabs-edu/eduops-backend/internal/service/timetable"
	"github.com/go-chi/httplog/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testInstitution = "0190a1b2-0000-7000-8000-00000000000a"
	officerAsha     = "0190a1b2-0000-7000-8000-0000000000a1"
	officerBala     = "0190a1b2-0000-7000-8000-0000000000b2"
)

func strPtr(s string) *string { return &s }

type noopEmail struct{}

func (noopEmail) SendPasswordReset(context.Context, string, string, string, string) error {
	return nil
}

type apiEnv struct {
	router http.Handler
	jwt    jwt.Service
	hub    *sse.Hub
}

func newAPIEnv(t *testing.T) apiEnv {
	t.Helper()
	ctx := context.Background()

	tx := memory.NewTransactor()
	officers := memory.NewOfficerRepository()
	assignments := memory.NewAssignmentRepository()
	periods := memory.NewPeriodRepository()
	attendanceRepo := memory.NewAttendanceRepository()
	hub := sse.NewHub()
	jwtService := jwt.NewJWTService("test-secret", "15m")

	for _, o := range []officer.Officer{
		{ID: officerAsha, FullName: "Asha Rao", Email: strPtr("asha@example.com"), Position: "trainer", Status: officer.StatusActive, InstitutionIDs: []string{testInstitution}},
		{ID: officerBala, FullName: "Bala Iyer", Position: "trainer", Status: officer.StatusActive, InstitutionIDs: []string{testInstitution}},
	} {
		_, err := officers.Create(ctx, o)
		require.NoError(t, err)
	}
	_, err := periods.Create(ctx, timetable.Period{ID: "p1", InstitutionID: testInstitution, Label: "Period 1", StartTime: "09:00", EndTime: "09:45", DisplayOrder: 1})
	require.NoError(t, err)
	_, err = assignments.Create(ctx, timetable.Assignment{ID: "a1", InstitutionID: testInstitution, ClassID: "c1", ClassName: "Grade 6A", Subject: "Robotics", Day: "Monday", PeriodID: "p1", TeacherID: strPtr(officerAsha)})
	require.NoError(t, err)

	substitutes := timetablesvc.NewSubstituteService(officers, assignments, periods)
	handlers := Handlers{
		Account: NewAccountHandler(accountsvc.NewAccountService(tx, memory.NewUserRepository(), memory.NewPasswordResetRepository(), noopEmail{}, jwtService, accountsvc.Config{ResetURL: "https://app.example.com/reset"})),
		Leave:       NewLeaveHandler(leavesvc.NewLeaveService(tx, memory.NewLeaveApplicationRepository(), officers, substitutes, hub)),
		Substitute:  NewSubstituteHandler(substitutes),
		Attendance:  NewAttendanceHandler(attendancesvc.NewAttendanceService(attendanceRepo, officers)),
		Payroll:     NewPayrollHandler(payrollsvc.NewPayrollService(tx, memory.NewPayrollRepository(), officers, attendanceRepo, nil)),
		Recruitment: NewRecruitmentHandler(recruitmentsvc.NewRecruitmentService(tx, memory.NewJobPostingRepository())),
		Events:      NewEventsHandler(hub, time.Second),
	}

	cfg := RouterConfig{AppName: "eduops-test", Version: "test", Env: "test", AllowedOrigins: []string{"*"}}
	return apiEnv{router: NewRouter(cfg, jwtService, handlers), jwt: jwtService, hub: hub}
}

func (e apiEnv) token(t *testing.T, p access.Principal) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(p)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		TotalItems int64 `json:"total_items"`
	} `json:"meta"`
}

func (e apiEnv) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

var (
	ashaPrincipal = access.Principal{UserID: "u-asha", Role: access.RoleOfficer, InstitutionID: strPtr(testInstitution), OfficerID: strPtr(officerAsha)}
	managerP      = access.Principal{UserID: "u-manager", Role: access.RoleManager}
	agmP          = access.Principal{UserID: "u-agm", Role: access.RoleAGM}
	ceoP          = access.Principal{UserID: "u-ceo", Role: access.RoleCEO}
	adminP        = access.Principal{UserID: "u-admin", Role: access.RoleInstitutionAdmin, InstitutionID: strPtr(testInstitution)}
	superAdminP   = access.Principal{UserID: "u-root", Role: access.RoleSuperAdmin}
)

func leaveBody() map[string]interface{} {
	return map[string]interface{}{
		"officer_id":     officerAsha,
		"officer_name":   "Asha Rao",
		"applicant_type": "innovation_officer",
		"institution_id": testInstitution,
		"start_date":     "2024-06-03",
		"end_date":       "2024-06-04",
		"leave_type":     "sick",
		"reason":         "Fever",
	}
}

type leaveResp struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	ApprovalStage string `json:"approval_stage"`
	Version       int    `json:"version"`
	AffectedSlots []struct {
		SlotID string `json:"slot_id"`
	} `json:"affected_slots"`
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// ===== AUTHENTICATION TESTS =====

func TestRouter_RequiresToken(t *testing.T) {
	api := newAPIEnv(t)

	code, body := api.do(t, http.MethodGet, "/api/v1/leave-applications", "", nil)

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, body.Success)
}

func TestRouter_RejectsForgedToken(t *testing.T) {
	api := newAPIEnv(t)
	forged, _, err := jwt.NewJWTService("other-secret", "15m").GenerateAccessToken(ashaPrincipal)
	require.NoError(t, err)

	code, _ := api.do(t, http.MethodGet, "/api/v1/leave-applications", forged, nil)

	assert.Equal(t, http.StatusUnauthorized, code)
}

// ===== CAPABILITY TESTS =====

func TestRouter_CapabilityGates(t *testing.T) {
	api := newAPIEnv(t)

	tests := []struct {
		name      string
		principal access.Principal
		method    string
		path      string
		body      interface{}
		want      int
	}{
		{"officer cannot generate payroll", ashaPrincipal, http.MethodPost, "/api/v1/payroll/generate", map[string]interface{}{}, http.StatusForbidden},
		{"officer cannot approve", ashaPrincipal, http.MethodPost, "/api/v1/leave-applications/x/approve", nil, http.StatusForbidden},
		{"institution admin cannot create institution admins", adminP, http.MethodPost, "/api/v1/admin/institution-admins", map[string]interface{}{}, http.StatusForbidden},
		{"manager cannot create job postings", managerP, http.MethodPost, "/api/v1/recruitment/job-postings", map[string]interface{}{}, http.StatusForbidden},
		{"officer cannot mark attendance", ashaPrincipal, http.MethodPost, "/api/v1/attendance/mark", map[string]interface{}{}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := api.do(t, tt.method, tt.path, api.token(t, tt.principal), tt.body)
			assert.Equal(t, tt.want, code)
			require.NotNil(t, body.Error)
			assert.Equal(t, "FORBIDDEN", body.Error.Code)
		})
	}
}

func TestRouter_ExplicitGrantOpensRoute(t *testing.T) {
	api := newAPIEnv(t)
	granted := managerP
	granted.AllowedFeatures = []access.Feature{access.FeatureRecruitmentManage}

	code, body := api.do(t, http.MethodPost, "/api/v1/recruitment/job-postings", api.token(t, granted), map[string]interface{}{
		"title":           "Robotics Trainer",
		"department":      "Innovation",
		"employment_type": "full_time",
		"description":     "Teach robotics",
	})

	require.Equal(t, http.StatusCreated, code, body.Error)
	posting := decodeData[struct {
		Stages []struct {
			Name string `json:"name"`
		} `json:"stages"`
	}](t, body)
	assert.Len(t, posting.Stages, 4)
}

// ===== LEAVE FLOW TESTS =====

func TestRouter_LeaveApprovalChain(t *testing.T) {
	api := newAPIEnv(t)

	code, body := api.do(t, http.MethodPost, "/api/v1/leave-applications", api.token(t, ashaPrincipal), leaveBody())
	require.Equal(t, http.StatusCreated, code)
	app := decodeData[leaveResp](t, body)
	assert.Equal(t, "manager_pending", app.ApprovalStage)

	// AGM cannot act before the manager
	code, _ = api.do(t, http.MethodPost, "/api/v1/leave-applications/"+app.ID+"/approve", api.token(t, agmP), nil)
	assert.Equal(t, http.StatusForbidden, code)

	for _, p := range []access.Principal{managerP, agmP, ceoP} {
		code, body = api.do(t, http.MethodPost, "/api/v1/leave-applications/"+app.ID+"/approve", api.token(t, p), map[string]interface{}{"comments": "ok"})
		require.Equal(t, http.StatusOK, code, body.Error)
	}

	app = decodeData[leaveResp](t, body)
	assert.Equal(t, "approved", app.Status)
	require.Len(t, app.AffectedSlots, 1)
	assert.Equal(t, "a1:2024-06-03", app.AffectedSlots[0].SlotID)

	// Cancellation is refused after approval
	code, _ = api.do(t, http.MethodPost, "/api/v1/leave-applications/"+app.ID+"/cancel", api.token(t, ashaPrincipal), nil)
	assert.Equal(t, http.StatusConflict, code)

	// Substitute assignment by the institution admin
	code, body = api.do(t, http.MethodPost, "/api/v1/leave-applications/"+app.ID+"/substitutes", api.token(t, adminP), map[string]interface{}{
		"slot_id":               "a1:2024-06-03",
		"substitute_officer_id": officerBala,
	})
	require.Equal(t, http.StatusOK, code, body.Error)

	code, body = api.do(t, http.MethodGet, "/api/v1/leave-applications/"+app.ID+"/compose-notice", api.token(t, adminP), nil)
	require.Equal(t, http.StatusOK, code, body.Error)
	notice := decodeData[struct {
		To         string `json:"to"`
		ComposeURL string `json:"compose_url"`
	}](t, body)
	assert.Equal(t, "asha@example.com", notice.To)
	assert.True(t, strings.HasPrefix(notice.ComposeURL, "https://mail.google.com/mail/"))
}

func TestRouter_RejectRequiresReason(t *testing.T) {
	api := newAPIEnv(t)
	_, body := api.do(t, http.MethodPost, "/api/v1/leave-applications", api.token(t, ashaPrincipal), leaveBody())
	app := decodeData[leaveResp](t, body)

	code, body := api.do(t, http.MethodPost, "/api/v1/leave-applications/"+app.ID+"/reject", api.token(t, managerP), map[string]interface{}{"reason": ""})

	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, body.Error)
	assert.Contains(t, body.Error.Details, "reason")
}

func TestRouter_StaleVersionConflicts(t *testing.T) {
	api := newAPIEnv(t)
	_, body := api.do(t, http.MethodPost, "/api/v1/leave-applications", api.token(t, ashaPrincipal), leaveBody())
	app := decodeData[leaveResp](t, body)

	code, _ := api.do(t, http.MethodPost, "/api/v1/leave-applications/"+app.ID+"/approve", api.token(t, managerP), map[string]interface{}{"version": app.Version + 5})

	assert.Equal(t, http.StatusConflict, code)
}

func TestRouter_MalformedBody(t *testing.T) {
	api := newAPIEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leave-applications", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+api.token(t, ashaPrincipal))
	rec := httptest.NewRecorder()

	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ListIsScopedToCaller(t *testing.T) {
	api := newAPIEnv(t)
	api.do(t, http.MethodPost, "/api/v1/leave-applications", api.token(t, ashaPrincipal), leaveBody())

	bala := access.Principal{UserID: "u-bala", Role: access.RoleOfficer, InstitutionID: strPtr(testInstitution), OfficerID: strPtr(officerBala)}
	code, body := api.do(t, http.MethodGet, "/api/v1/leave-applications", api.token(t, bala), nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, "[]", string(body.Data))

	code, body = api.do(t, http.MethodGet, "/api/v1/leave-applications?status=pending", api.token(t, managerP), nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, body.Meta)
	assert.Equal(t, int64(1), body.Meta.TotalItems)
}

// ===== SUBSTITUTE TESTS =====

func TestRouter_AvailableSubstitutes(t *testing.T) {
	api := newAPIEnv(t)

	code, body := api.do(t, http.MethodGet, "/api/v1/substitutes/available?day=Monday&period_id=p1&exclude_officer_id="+officerAsha, api.token(t, adminP), nil)

	require.Equal(t, http.StatusOK, code, body.Error)
	candidates := decodeData[[]struct {
		OfficerID string `json:"officer_id"`
	}](t, body)
	require.Len(t, candidates, 1)
	assert.Equal(t, officerBala, candidates[0].OfficerID)
}

func TestRouter_AvailableSubstitutes_OtherInstitution(t *testing.T) {
	api := newAPIEnv(t)

	code, _ := api.do(t, http.MethodGet, "/api/v1/substitutes/available?institution_id=elsewhere&day=Monday&period_id=p1", api.token(t, adminP), nil)

	assert.Equal(t, http.StatusForbidden, code)
}

// ===== ACCOUNT TESTS =====

func TestRouter_CreateAdminThenLogin(t *testing.T) {
	api := newAPIEnv(t)

	code, body := api.do(t, http.MethodPost, "/api/v1/admin/institution-admins", api.token(t, superAdminP), map[string]interface{}{
		"email":          "head@school.example.com",
		"full_name":      "Head Admin",
		"password":       "s3cret-pass",
		"institution_id": testInstitution,
	})
	require.Equal(t, http.StatusCreated, code, body.Error)

	code, body = api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "head@school.example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, code, body.Error)
	login := decodeData[struct {
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
	}](t, body)
	assert.Equal(t, "institution_admin", login.Role)

	// The issued token opens institution admin routes
	code, _ = api.do(t, http.MethodGet, "/api/v1/substitutes/available?day=Monday&period_id=p1", login.AccessToken, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_LoginWrongPassword(t *testing.T) {
	api := newAPIEnv(t)

	code, _ := api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "nobody@example.com",
		"password": "whatever1",
	})

	assert.Equal(t, http.StatusUnauthorized, code)
}

// ===== ATTENDANCE TESTS =====

func TestRouter_CheckInTwice(t *testing.T) {
	api := newAPIEnv(t)
	token := api.token(t, ashaPrincipal)

	code, _ := api.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = api.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, nil)
	assert.Equal(t, http.StatusConflict, code)
}

// ===== EVENTS TESTS =====

func TestTopicsFor(t *testing.T) {
	topics, ok := topicsFor(ashaPrincipal, "")
	require.True(t, ok)
	assert.Equal(t, []string{sse.OfficerTopic(officerAsha)}, topics)

	_, ok = topicsFor(ashaPrincipal, testInstitution)
	assert.False(t, ok)

	topics, ok = topicsFor(adminP, "")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{sse.OfficerTopic("u-admin"), sse.InstitutionTopic(testInstitution)}, topics)

	_, ok = topicsFor(adminP, "elsewhere")
	assert.False(t, ok)

	topics, ok = topicsFor(managerP, "")
	require.True(t, ok)
	assert.Contains(t, topics, sse.AllTopic)

	topics, ok = topicsFor(managerP, testInstitution)
	require.True(t, ok)
	assert.Contains(t, topics, sse.InstitutionTopic(testInstitution))
	assert.NotContains(t, topics, sse.AllTopic)
}

func TestRouter_EventStreamDeliversLeaveUpdates(t *testing.T) {
	api := newAPIEnv(t)
	server := httptest.NewServer(api.router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// EventSource clients pass the token as a query parameter
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/events?jwt="+api.token(t, adminP), nil)
	require.NoError(t, err)
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool {
		return api.hub.SubscriberCount(sse.InstitutionTopic(testInstitution)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	code, _ := api.do(t, http.MethodPost, "/api/v1/leave-applications", api.token(t, ashaPrincipal), leaveBody())
	require.Equal(t, http.StatusCreated, code)

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ") {
			break
		}
	}
	assert.Equal(t, "event: "+leavesvc.EventLeaveApplicationUpdated+"\n", line)

	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(data, "data: {"))
	assert.Contains(t, data, officerAsha)
}

func TestRouter_EventStreamHidesColleaguesLeave(t *testing.T) {
	api := newAPIEnv(t)
	server := httptest.NewServer(api.router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bala := access.Principal{UserID: "u-bala", Role: access.RoleOfficer, InstitutionID: strPtr(testInstitution), OfficerID: strPtr(officerBala)}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+api.token(t, bala))
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	_, err = reader.ReadString('\n')
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return api.hub.SubscriberCount(sse.OfficerTopic(officerBala)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, api.hub.SubscriberCount(sse.InstitutionTopic(testInstitution)))

	code, _ := api.do(t, http.MethodPost, "/api/v1/leave-applications", api.token(t, ashaPrincipal), leaveBody())
	require.Equal(t, http.StatusCreated, code)

	own := leaveBody()
	own["officer_id"], own["officer_name"], own["reason"] = officerBala, "Bala Iyer", "Wedding"
	code, _ = api.do(t, http.MethodPost, "/api/v1/leave-applications", api.token(t, bala), own)
	require.Equal(t, http.StatusCreated, code)

	// Events arrive in publish order, so the first data frame would be
	// Asha's if it leaked.
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			assert.Contains(t, line, officerBala)
			assert.NotContains(t, line, "Fever")
			break
		}
	}
}

func TestRequestLogger_RedactsQueryToken(t *testing.T) {
	var buf bytes.Buffer
	cfg := RouterConfig{AppName: "eduops-test", LogLevel: slog.LevelInfo}
	handler := httplog.RequestLogger(newRequestLogger(&buf, cfg), &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events?institution_id=inst-1&jwt=eyJhbGciOi.secret.sig", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.NotContains(t, out, "eyJhbGciOi")
	assert.Contains(t, out, "jwt=REDACTED")
	assert.Contains(t, out, "institution_id=inst-1")
}
