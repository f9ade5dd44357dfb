package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
)

type mentorshipServiceMock struct {
	createErr    error
	statusErr    error
	lastQuery    dto.MentorshipQuery
	lastStatus   dto.UpdateMentorshipStatusRequest
	lastID       string
	progressSeen *int
}

func (m *mentorshipServiceMock) Create(ctx context.Context, req dto.CreateMentorshipRequest, actor *models.JWTClaims) (*models.MentorshipRequest, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.MentorshipRequest{ID: "req-1", MentorID: req.MentorID, MenteeID: actor.UserID, Status: models.MentorshipPending}, nil
}

func (m *mentorshipServiceMock) UpdateStatus(ctx context.Context, id string, req dto.UpdateMentorshipStatusRequest, actor *models.JWTClaims) (*models.MentorshipRequest, error) {
	m.lastID = id
	m.lastStatus = req
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return &models.MentorshipRequest{ID: id, Status: req.Status}, nil
}

func (m *mentorshipServiceMock) UpdateProgress(ctx context.Context, id string, req dto.UpdateProgressRequest, actor *models.JWTClaims) (*models.MentorshipRequest, error) {
	m.progressSeen = req.ProgressPercentage
	return &models.MentorshipRequest{ID: id, Status: models.MentorshipAccepted}, nil
}

func (m *mentorshipServiceMock) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.MentorshipRequest, error) {
	return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "not a participant")
}

func (m *mentorshipServiceMock) List(ctx context.Context, query dto.MentorshipQuery, actor *models.JWTClaims) ([]models.MentorshipRequest, error) {
	m.lastQuery = query
	return nil, nil
}

type sessionServiceMock struct {
	addErr       error
	cancelReason string
	completeReq  dto.CompleteSessionRequest
}

func (m *sessionServiceMock) AddSession(ctx context.Context, mentorshipID string, req dto.CreateSessionRequest, actor *models.JWTClaims) (*models.MentorshipSession, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	return &models.MentorshipSession{ID: "ses-1", MentorshipID: mentorshipID}, nil
}

func (m *sessionServiceMock) CompleteSession(ctx context.Context, sessionID string, req dto.CompleteSessionRequest, actor *models.JWTClaims) (*models.MentorshipSession, error) {
	m.completeReq = req
	return &models.MentorshipSession{ID: sessionID, Completed: true}, nil
}

func (m *sessionServiceMock) CancelSession(ctx context.Context, sessionID string, req dto.CancelSessionRequest, actor *models.JWTClaims) (*models.MentorshipSession, error) {
	m.cancelReason = req.Reason
	return &models.MentorshipSession{ID: sessionID, Cancelled: true}, nil
}

func (m *sessionServiceMock) ListSessions(ctx context.Context, mentorshipID string, actor *models.JWTClaims) ([]models.MentorshipSession, error) {
	return []models.MentorshipSession{{ID: "ses-1", MentorshipID: mentorshipID}}, nil
}

var menteeClaims = &models.JWTClaims{UserID: "mentee-1", Roles: []string{"ApprovedAlumni"}}

func TestMentorshipHandlerCreate(t *testing.T) {
	mockSvc := &mentorshipServiceMock{}
	handler := NewMentorshipHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/mentorship-requests", `{"mentor_id":"m-1","goals":"grow"}`, menteeClaims)
	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	mockSvc.createErr = appErrors.Clone(appErrors.ErrMentorUnavailable, "mentor is not accepting mentees")
	c, w = newTestContext(http.MethodPost, "/mentorship-requests", `{"mentor_id":"m-1","goals":"grow"}`, menteeClaims)
	handler.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "MENTOR_UNAVAILABLE")
}

func TestMentorshipHandlerListParsesQuery(t *testing.T) {
	mockSvc := &mentorshipServiceMock{}
	handler := NewMentorshipHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/mentorship-requests?as=mentor&status=Pending,accepted&status=completed&limit=10", "", menteeClaims)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mentor", mockSvc.lastQuery.As)
	assert.Equal(t, []models.MentorshipStatus{models.MentorshipPending, models.MentorshipAccepted, models.MentorshipCompleted}, mockSvc.lastQuery.Status)
	assert.Equal(t, 10, mockSvc.lastQuery.Limit)
}

func TestMentorshipHandlerUpdateStatus(t *testing.T) {
	mockSvc := &mentorshipServiceMock{}
	handler := NewMentorshipHandler(mockSvc)
	id := gin.Param{Key: "id", Value: "req-1"}

	c, w := newTestContext(http.MethodPut, "/mentorship-requests/req-1/status", `{"status":"accepted","mentor_response":"welcome"}`, menteeClaims, id)
	handler.UpdateStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", mockSvc.lastID)
	assert.Equal(t, "welcome", mockSvc.lastStatus.MentorResponse)

	mockSvc.statusErr = appErrors.Clone(appErrors.ErrCapacityExceeded, "mentor has reached maximum capacity")
	c, w = newTestContext(http.MethodPut, "/mentorship-requests/req-1/status", `{"status":"accepted"}`, menteeClaims, id)
	handler.UpdateStatus(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CAPACITY_EXCEEDED")

	c, w = newTestContext(http.MethodPut, "/mentorship-requests/req-1/status", `not-json`, menteeClaims, id)
	handler.UpdateStatus(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMentorshipHandlerGetAndProgress(t *testing.T) {
	mockSvc := &mentorshipServiceMock{}
	handler := NewMentorshipHandler(mockSvc)
	id := gin.Param{Key: "id", Value: "req-1"}

	c, w := newTestContext(http.MethodGet, "/mentorship-requests/req-1", "", menteeClaims, id)
	handler.Get(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = newTestContext(http.MethodPut, "/mentorship-requests/req-1/progress", `{"progress_percentage":40}`, menteeClaims, id)
	handler.UpdateProgress(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.progressSeen)
	assert.Equal(t, 40, *mockSvc.progressSeen)
}

func TestSessionHandlerEndpoints(t *testing.T) {
	mockSvc := &sessionServiceMock{}
	handler := NewSessionHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/mentorship-requests/req-1/sessions", `{"session_date":"2026-07-01T10:00:00Z"}`, menteeClaims, gin.Param{Key: "id", Value: "req-1"})
	handler.AddSession(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"mentorship_id":"req-1"`)

	c, w = newTestContext(http.MethodGet, "/mentorship-requests/req-1/sessions", "", menteeClaims, gin.Param{Key: "id", Value: "req-1"})
	handler.ListSessions(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodPut, "/sessions/ses-1/complete", "", menteeClaims, gin.Param{Key: "id", Value: "ses-1"})
	handler.Complete(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodPut, "/sessions/ses-1/complete", `{"notes":"good"}`, menteeClaims, gin.Param{Key: "id", Value: "ses-1"})
	handler.Complete(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "good", mockSvc.completeReq.Notes)

	c, w = newTestContext(http.MethodPut, "/sessions/ses-1/cancel", `{"reason":"sick"}`, menteeClaims, gin.Param{Key: "id", Value: "ses-1"})
	handler.Cancel(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sick", mockSvc.cancelReason)
}

func TestSessionHandlerInvalidState(t *testing.T) {
	handler := NewSessionHandler(&sessionServiceMock{addErr: appErrors.Clone(appErrors.ErrInvalidState, "mentorship is not active")})

	c, w := newTestContext(http.MethodPost, "/mentorship-requests/req-1/sessions", `{"session_date":"2026-07-01T10:00:00Z"}`, menteeClaims, gin.Param{Key: "id", Value: "req-1"})
	handler.AddSession(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
