package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
	"github.com/noah-isme/alumni-mentorship-api/pkg/response"
)

type mentorService interface {
	Apply(ctx context.Context, req dto.ApplyMentorRequest, actor *models.JWTClaims) (*models.MentorProfile, error)
	Approve(ctx context.Context, id string, actor *models.JWTClaims) (*models.MentorProfile, error)
	SetActive(ctx context.Context, id string, req dto.SetMentorActiveRequest, actor *models.JWTClaims) (*models.MentorProfile, error)
	Get(ctx context.Context, id string) (*dto.MentorDetail, error)
	ListAvailable(ctx context.Context, query dto.MentorQuery) ([]models.MentorProfile, error)
}

// MentorHandler exposes the mentor directory.
type MentorHandler struct {
	service mentorService
}

// NewMentorHandler builds a mentor handler.
func NewMentorHandler(service mentorService) *MentorHandler {
	return &MentorHandler{service: service}
}

// List godoc
// @Summary List available mentors
// @Tags Mentors
// @Produce json
// @Param expertise query string false "Expertise area"
// @Success 200 {object} response.Envelope
// @Router /mentors [get]
func (h *MentorHandler) List(c *gin.Context) {
	mentors, err := h.service.ListAvailable(c.Request.Context(), dto.MentorQuery{Expertise: c.Query("expertise")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentors, nil)
}

// Get godoc
// @Summary Get a mentor profile with current load
// @Tags Mentors
// @Produce json
// @Param id path string true "Mentor profile ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/{id} [get]
func (h *MentorHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

// Apply godoc
// @Summary Apply to become a mentor
// @Tags Mentors
// @Accept json
// @Produce json
// @Param payload body dto.ApplyMentorRequest true "Mentor profile"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /mentors [post]
func (h *MentorHandler) Apply(c *gin.Context) {
	var req dto.ApplyMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mentor payload"))
		return
	}
	profile, err := h.service.Apply(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// Approve godoc
// @Summary Approve a mentor profile
// @Tags Mentors
// @Produce json
// @Param id path string true "Mentor profile ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /mentors/{id}/approve [put]
func (h *MentorHandler) Approve(c *gin.Context) {
	profile, err := h.service.Approve(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}

// SetActive godoc
// @Summary Pause or resume mentoring
// @Tags Mentors
// @Accept json
// @Produce json
// @Param id path string true "Mentor profile ID"
// @Param payload body dto.SetMentorActiveRequest true "Active flag"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /mentors/{id}/active [put]
func (h *MentorHandler) SetActive(c *gin.Context) {
	var req dto.SetMentorActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mentor status payload"))
		return
	}
	profile, err := h.service.SetActive(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}
