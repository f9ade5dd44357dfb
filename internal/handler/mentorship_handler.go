package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
	"github.com/noah-isme/alumni-mentorship-api/pkg/response"
)

type mentorshipService interface {
	Create(ctx context.Context, req dto.CreateMentorshipRequest, actor *models.JWTClaims) (*models.MentorshipRequest, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateMentorshipStatusRequest, actor *models.JWTClaims) (*models.MentorshipRequest, error)
	UpdateProgress(ctx context.Context, id string, req dto.UpdateProgressRequest, actor *models.JWTClaims) (*models.MentorshipRequest, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.MentorshipRequest, error)
	List(ctx context.Context, query dto.MentorshipQuery, actor *models.JWTClaims) ([]models.MentorshipRequest, error)
}

// MentorshipHandler exposes the mentorship request lifecycle.
type MentorshipHandler struct {
	service mentorshipService
}

// NewMentorshipHandler builds a mentorship handler.
func NewMentorshipHandler(service mentorshipService) *MentorshipHandler {
	return &MentorshipHandler{service: service}
}

// Create godoc
// @Summary Request a mentor
// @Tags Mentorships
// @Accept json
// @Produce json
// @Param payload body dto.CreateMentorshipRequest true "Mentorship request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /mentorship-requests [post]
func (h *MentorshipHandler) Create(c *gin.Context) {
	var req dto.CreateMentorshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mentorship payload"))
		return
	}
	created, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List godoc
// @Summary List my mentorship requests
// @Tags Mentorships
// @Produce json
// @Param as query string false "mentee or mentor"
// @Param status query string false "Comma separated statuses"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /mentorship-requests [get]
func (h *MentorshipHandler) List(c *gin.Context) {
	query := dto.MentorshipQuery{
		As:     c.Query("as"),
		Status: parseStatuses(c.QueryArray("status")),
		Limit:  parseQueryInt(c, "limit", 0),
		Offset: parseQueryInt(c, "offset", 0),
	}
	items, err := h.service.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get a mentorship request
// @Tags Mentorships
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentorship-requests/{id} [get]
func (h *MentorshipHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// UpdateStatus godoc
// @Summary Accept, reject, complete or cancel a mentorship
// @Tags Mentorships
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateMentorshipStatusRequest true "Transition"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /mentorship-requests/{id}/status [put]
func (h *MentorshipHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateMentorshipStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	updated, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// UpdateProgress godoc
// @Summary Record mentorship progress
// @Tags Mentorships
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateProgressRequest true "Progress"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /mentorship-requests/{id}/progress [put]
func (h *MentorshipHandler) UpdateProgress(c *gin.Context) {
	var req dto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid progress payload"))
		return
	}
	updated, err := h.service.UpdateProgress(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// parseStatuses accepts both repeated and comma separated status parameters.
func parseStatuses(raw []string) []models.MentorshipStatus {
	var statuses []models.MentorshipStatus
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				statuses = append(statuses, models.MentorshipStatus(strings.ToLower(part)))
			}
		}
	}
	return statuses
}
