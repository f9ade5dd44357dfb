package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	"github.com/noah-isme/alumni-mentorship-api/internal/service"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type memoryAudit struct {
	mu   sync.Mutex
	logs []*models.AuditLog
	err  error
}

func (m *memoryAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return m.err
}

var validTokens = stubValidator{
	"admin-token":  {UserID: "admin-1", Roles: []string{"Admin"}},
	"alumni-token": {UserID: "alumni-1", Roles: []string{"alumni"}},
}

func protectedRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, claims.UserID)
	})
	router.GET("/resource/:id", handlers...)
	return router
}

func serve(router *gin.Engine, token string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource/42", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware(t *testing.T) {
	router := protectedRouter(JWT(validTokens))

	rec := serve(router, "Bearer alumni-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alumni-1", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Bearer nope").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Bearer ").Code)
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	router := protectedRouter(OptionalJWT(validTokens))

	assert.Equal(t, "anonymous", serve(router, "").Body.String())
	assert.Equal(t, "anonymous", serve(router, "Bearer nope").Body.String())
	assert.Equal(t, "admin-1", serve(router, "bearer admin-token").Body.String())
}

func TestRequireRoles(t *testing.T) {
	router := protectedRouter(JWT(validTokens), RequireRoles("Admin"))

	assert.Equal(t, http.StatusOK, serve(router, "Bearer admin-token").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, "Bearer alumni-token").Code)

	withoutAuth := protectedRouter(RequireRoles("Admin"))
	assert.Equal(t, http.StatusUnauthorized, serve(withoutAuth, "").Code)

	caseInsensitive := protectedRouter(JWT(validTokens), RequireRoles("ALUMNI", "Student"))
	assert.Equal(t, http.StatusOK, serve(caseInsensitive, "Bearer alumni-token").Code)
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	audit := &memoryAudit{}
	router := protectedRouter(JWT(validTokens), Audit(audit, nil, models.AuditActionAdminRequest, "registration"))

	require.Equal(t, http.StatusOK, serve(router, "Bearer admin-token").Code)
	require.Len(t, audit.logs, 1)
	entry := audit.logs[0]
	assert.Equal(t, models.AuditActionAdminRequest, entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "admin-1", *entry.UserID)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "42", *entry.ResourceID)
	assert.Contains(t, string(entry.NewValues), `"status":200`)

	serve(router, "Bearer nope")
	assert.Len(t, audit.logs, 1, "failed requests are not audited")

	audit.err = errors.New("db down")
	assert.Equal(t, http.StatusOK, serve(router, "Bearer admin-token").Code)
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/resource/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(router, "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)

	body := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(body, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, body.Body.String(), `path="/resource/:id"`)
	assert.Contains(t, body.Body.String(), `path="unmatched"`)
}
