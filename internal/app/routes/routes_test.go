package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appAuth "github.com/ribat/admissions/internal/app/auth"
	"github.com/ribat/admissions/internal/app/controllers"
	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/app/repositories"
	"github.com/ribat/admissions/internal/app/routes"
	"github.com/ribat/admissions/internal/app/services"
	"github.com/ribat/admissions/internal/middleware"
	"github.com/ribat/admissions/internal/pkg/auth"
	"github.com/ribat/admissions/internal/pkg/logger"
	"github.com/ribat/admissions/internal/pkg/websocket"
	"github.com/ribat/admissions/internal/seed"
)

type testServer struct {
	router *gin.Engine
	jwt    *auth.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	lgr := logger.Nop()

	repos := repositories.NewMemoryRepositories()
	require.NoError(t, seed.CreateDefaultData(ctx, repos, seed.Options{SampleApplications: true}, lgr))

	slot, err := repositories.NewFileSessionSlot(t.TempDir())
	require.NoError(t, err)

	jwt := auth.NewJWTService(auth.JWTConfig{SecretKey: "routes-test", AccessTokenExp: time.Hour, TokenIssuer: "admissions-test"})
	authz, err := appAuth.NewAuthorizationService()
	require.NoError(t, err)

	hub := websocket.NewHub(lgr)
	go hub.Run()
	t.Cleanup(hub.Stop)

	admissions := services.NewAdmissionService(repos.Applications, lgr, services.WithPublisher(hub))
	sessions := services.NewSessionService(repos.Identities, slot, jwt, lgr)

	router := gin.New()
	routes.SetupRouter(router, routes.Controllers{
		Auth:         controllers.NewAuthController(sessions, lgr),
		Applications: controllers.NewApplicationController(admissions, lgr),
		Catalog:      controllers.NewCatalogController(),
		Dashboard:    websocket.NewHandler(hub, admissions, lgr),
	}, middleware.NewAuthMiddleware(jwt, authz, lgr))

	return &testServer{router: router, jwt: jwt}
}

func (s *testServer) token(t *testing.T, role models.Role) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(&models.Identity{ID: "staff-" + string(role), Email: string(role) + "@madrasa.pk", Role: role})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
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
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func admissionForm() map[string]interface{} {
	return map[string]interface{}{
		"fullName":          "Bilal Ahmad",
		"fatherName":        "Ahmad Khan",
		"dateOfBirth":       "2013-02-02",
		"gender":            "male",
		"address":           "Main Bazaar, Timergara, Dir Lower",
		"phoneNumber":       "0345-1112223",
		"previousEducation": "Primary",
		"classApplyingFor":  "tajweed",
		"academicYear":      "2025-2026",
	}
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/catalog", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dars-e-Nizami (Aalim)")

	rec = s.do(t, http.MethodPost, "/api/v1/admissions", "", admissionForm())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var app models.Application
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &app))
	assert.Equal(t, models.StatusPending, app.Status)
	assert.NotEmpty(t, app.ID)

	form := admissionForm()
	form["phoneNumber"] = "12"
	rec = s.do(t, http.MethodPost, "/api/v1/admissions", "", form)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "Please enter a valid phone number", env.Error.Message)
	assert.Equal(t, "Please enter a valid phone number", env.Error.Details["phoneNumber"])
}

func TestStaffRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/applications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/applications", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/applications", s.token(t, models.RoleStudent), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListApplications(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, models.RoleTeacher)

	rec := s.do(t, http.MethodGet, "/api/v1/applications?status=pending&size=1", teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page struct {
		Items      []models.Application `json:"items"`
		Pagination struct {
			TotalItems int64 `json:"totalItems"`
			TotalPages int   `json:"totalPages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "4", page.Items[0].ID)
	assert.Equal(t, int64(2), page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	rec = s.do(t, http.MethodGet, "/api/v1/applications?status=archived", teacher, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/applications/stats", teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.Stats
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &stats))
	assert.Equal(t, models.Stats{TotalStudents: 4, PendingAdmissions: 2, ApprovedStudents: 2}, stats)

	rec = s.do(t, http.MethodGet, "/api/v1/applications/missing", teacher, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewWorkflow(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, models.RoleAdmin)

	rec := s.do(t, http.MethodPost, "/api/v1/applications/2/approve", admin, map[string]string{"rollNumber": "N-002", "section": "C"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var approved models.Application
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &approved))
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, "N-002", *approved.RollNumber)

	rec = s.do(t, http.MethodPost, "/api/v1/applications/2/reject", admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/applications/4/approve", admin, map[string]string{"rollNumber": "", "section": "A"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Roll number is required", decode(t, rec).Error.Message)

	rec = s.do(t, http.MethodPut, "/api/v1/applications/4", admin, map[string]string{"address": "New address, Chakdara"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/v1/applications/4", admin, map[string]string{"expectedUpdatedAt": "2024-06-15T00:00:00Z", "fullName": "Zaid"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTeachersCannotDecideOrExport(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, models.RoleTeacher)

	tests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPost, "/api/v1/applications/2/approve", map[string]string{"rollNumber": "N-002", "section": "C"}},
		{http.MethodPost, "/api/v1/applications/2/reject", nil},
		{http.MethodPut, "/api/v1/applications/2", map[string]string{"address": "New address, Chakdara"}},
		{http.MethodGet, "/api/v1/applications/export", nil},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, teacher, tt.body)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}

	// nothing changed behind the refusals
	rec := s.do(t, http.MethodGet, "/api/v1/applications/2", teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var app models.Application
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &app))
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Equal(t, "تمرگرہ، دیر لوئر", app.Address)
}

func TestDeleteIsAdminOnly(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodDelete, "/api/v1/applications/1", s.token(t, models.RoleTeacher), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := s.token(t, models.RoleAdmin)
	rec = s.do(t, http.MethodDelete, "/api/v1/applications/1", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/applications/1", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// deleting again is not an error
	rec = s.do(t, http.MethodDelete, "/api/v1/applications/1", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExport(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/applications/export?status=approved", s.token(t, models.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="students-export.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(rec.Body.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, services.CSVHeader, lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",approved,H-001,A"))
	assert.True(t, strings.HasSuffix(lines[2], ",approved,D-015,B"))
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "teacher@madrasa.pk", "password": "short"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, services.MsgInvalidCredentials, decode(t, rec).Error.Message)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "teacher@madrasa.pk", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
		Identity struct {
			Role      string `json:"role"`
			IsTeacher bool   `json:"isTeacher"`
		} `json:"identity"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &login))
	assert.Equal(t, "teacher", login.Identity.Role)
	assert.True(t, login.Identity.IsTeacher)

	// the issued token opens the staff routes
	rec = s.do(t, http.MethodGet, "/api/v1/applications/stats", login.Token.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
