package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	"github.com/noah-isme/alumni-mentorship-api/internal/service"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
)

type mentorServiceMock struct {
	lastQuery  dto.MentorQuery
	applyErr   error
	activeSeen *bool
}

func (m *mentorServiceMock) Apply(ctx context.Context, req dto.ApplyMentorRequest, actor *models.JWTClaims) (*models.MentorProfile, error) {
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	return &models.MentorProfile{ID: "mp-1", AccountID: actor.UserID, ExpertiseAreas: req.ExpertiseAreas}, nil
}

func (m *mentorServiceMock) Approve(ctx context.Context, id string, actor *models.JWTClaims) (*models.MentorProfile, error) {
	return &models.MentorProfile{ID: id, IsApproved: true}, nil
}

func (m *mentorServiceMock) SetActive(ctx context.Context, id string, req dto.SetMentorActiveRequest, actor *models.JWTClaims) (*models.MentorProfile, error) {
	m.activeSeen = req.Active
	return &models.MentorProfile{ID: id, IsActive: *req.Active}, nil
}

func (m *mentorServiceMock) Get(ctx context.Context, id string) (*dto.MentorDetail, error) {
	return &dto.MentorDetail{MentorProfile: models.MentorProfile{ID: id}, CurrentMentees: 2, CanAccept: true}, nil
}

func (m *mentorServiceMock) ListAvailable(ctx context.Context, query dto.MentorQuery) ([]models.MentorProfile, error) {
	m.lastQuery = query
	return []models.MentorProfile{}, nil
}

func TestMentorHandlerList(t *testing.T) {
	mockSvc := &mentorServiceMock{}
	handler := NewMentorHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/mentors?expertise=golang", "", menteeClaims)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "golang", mockSvc.lastQuery.Expertise)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestMentorHandlerApplyAndGet(t *testing.T) {
	mockSvc := &mentorServiceMock{}
	handler := NewMentorHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/mentors", `{"expertise_areas":["go"]}`, menteeClaims)
	handler.Apply(c)
	require.Equal(t, http.StatusCreated, w.Code)

	mockSvc.applyErr = appErrors.Clone(appErrors.ErrConflict, "mentor profile already exists")
	c, w = newTestContext(http.MethodPost, "/mentors", `{"expertise_areas":["go"]}`, menteeClaims)
	handler.Apply(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	c, w = newTestContext(http.MethodGet, "/mentors/mp-1", "", menteeClaims, gin.Param{Key: "id", Value: "mp-1"})
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"current_mentees":2`)
	assert.Contains(t, w.Body.String(), `"can_accept":true`)
}

func TestMentorHandlerSetActiveAndApprove(t *testing.T) {
	mockSvc := &mentorServiceMock{}
	handler := NewMentorHandler(mockSvc)
	id := gin.Param{Key: "id", Value: "mp-1"}

	c, w := newTestContext(http.MethodPut, "/mentors/mp-1/active", `{"active":false}`, menteeClaims, id)
	handler.SetActive(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.activeSeen)
	assert.False(t, *mockSvc.activeSeen)

	c, w = newTestContext(http.MethodPut, "/mentors/mp-1/approve", "", adminClaims, id)
	handler.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_approved":true`)
}

func TestMetricsHandlerReady(t *testing.T) {
	healthy := PingerFunc(func(ctx context.Context) error { return nil })
	broken := PingerFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	handler := NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{"postgres": healthy})
	c, w := newTestContext(http.MethodGet, "/ready", "", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)

	handler = NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{"postgres": healthy, "redis": broken})
	c, w = newTestContext(http.MethodGet, "/ready", "", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerSummaryAndPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordApplication(models.VerificationAutoApproved)
	handler := NewMetricsHandler(metrics, nil)

	c, w := newTestContext(http.MethodGet, "/metrics/summary", "", adminClaims)
	handler.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"auto_approvals":1`)

	c, w = newTestContext(http.MethodGet, "/metrics", "", nil)
	handler.Prometheus(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodGet, "/metrics", "", nil)
	NewMetricsHandler(nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
