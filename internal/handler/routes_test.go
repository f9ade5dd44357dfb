package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	"github.com/noah-isme/alumni-mentorship-api/internal/service"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
)

type tokenTable map[string]*models.JWTClaims

func (t tokenTable) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type auditSink struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (a *auditSink) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, log)
	return nil
}

func newTestEngine(audit *auditSink) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	Routes{
		Registrations: NewRegistrationHandler(&registrationServiceMock{
			outcome:       &dto.SubmissionOutcome{Status: models.VerificationManualReview},
			approveResult: &dto.ApprovalResult{ApplicationID: "app-1"},
		}),
		Mentorships: NewMentorshipHandler(&mentorshipServiceMock{}),
		Sessions:    NewSessionHandler(&sessionServiceMock{}),
		Mentors:     NewMentorHandler(&mentorServiceMock{}),
		Metrics:     NewMetricsHandler(service.NewMetricsService(), nil),
		Tokens: tokenTable{
			"admin":  adminClaims,
			"alumni": menteeClaims,
		},
		AdminRole: "Admin",
		Audit:     audit,
	}.Register(engine, "/api/v1")
	return engine
}

func call(engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRoutesPublicAndProbes(t *testing.T) {
	engine := newTestEngine(&auditSink{})

	assert.Equal(t, http.StatusAccepted, call(engine, http.MethodPost, "/api/v1/registrations", "", `{"email":"a@b.co"}`).Code)
	assert.Equal(t, http.StatusOK, call(engine, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, call(engine, http.MethodGet, "/ready", "", "").Code)
	assert.Equal(t, http.StatusOK, call(engine, http.MethodGet, "/metrics", "", "").Code)
}

func TestRoutesRequireAuthentication(t *testing.T) {
	engine := newTestEngine(&auditSink{})

	assert.Equal(t, http.StatusUnauthorized, call(engine, http.MethodGet, "/api/v1/mentors", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(engine, http.MethodGet, "/api/v1/mentorship-requests", "bogus", "").Code)
	assert.Equal(t, http.StatusOK, call(engine, http.MethodGet, "/api/v1/mentors", "alumni", "").Code)
	assert.Equal(t, http.StatusOK, call(engine, http.MethodGet, "/api/v1/mentorship-requests/req-1/sessions", "alumni", "").Code)
}

func TestRoutesAdminDecisionsAreRestrictedAndAudited(t *testing.T) {
	audit := &auditSink{}
	engine := newTestEngine(audit)

	assert.Equal(t, http.StatusForbidden, call(engine, http.MethodPut, "/api/v1/registrations/app-1/approve", "alumni", "").Code)
	assert.Equal(t, http.StatusForbidden, call(engine, http.MethodGet, "/api/v1/registrations", "alumni", "").Code)
	assert.Equal(t, http.StatusForbidden, call(engine, http.MethodPut, "/api/v1/mentors/mp-1/approve", "alumni", "").Code)
	assert.Empty(t, audit.entries)

	require.Equal(t, http.StatusOK, call(engine, http.MethodPut, "/api/v1/registrations/app-1/approve", "admin", "").Code)
	require.Equal(t, http.StatusOK, call(engine, http.MethodPut, "/api/v1/mentors/mp-1/approve", "admin", "").Code)
	require.Equal(t, http.StatusOK, call(engine, http.MethodGet, "/api/v1/registrations", "admin", "").Code)

	require.Len(t, audit.entries, 2)
	assert.Equal(t, "registration_application", audit.entries[0].Resource)
	assert.Equal(t, "mentor_profile", audit.entries[1].Resource)
	require.NotNil(t, audit.entries[1].ResourceID)
	assert.Equal(t, "mp-1", *audit.entries[1].ResourceID)

	assert.Equal(t, http.StatusOK, call(engine, http.MethodGet, "/api/v1/metrics/summary", "admin", "").Code)
}
