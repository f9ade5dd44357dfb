package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	"github.com/noah-isme/alumni-mentorship-api/internal/repository"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
	"github.com/noah-isme/alumni-mentorship-api/pkg/events"
)

const (
	mentorshipResource       = "mentorship_request"
	defaultDurationMonths    = 3
	defaultMentorshipListCap = 50
)

type mentorshipStore interface {
	Create(ctx context.Context, req *models.MentorshipRequest, guard repository.CreateGuard) error
	Transition(ctx context.Context, id string, fn repository.TransitionFunc) (*models.MentorshipRequest, error)
	UpdateProgress(ctx context.Context, id string, progress int) error
	GetByID(ctx context.Context, id string) (*models.MentorshipRequest, error)
	List(ctx context.Context, filter models.MentorshipFilter) ([]models.MentorshipRequest, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// MentorshipServiceOption configures the service.
type MentorshipServiceOption func(*MentorshipService)

// WithMentorshipAudit sets the audit trail writer.
func WithMentorshipAudit(audit auditLogger) MentorshipServiceOption {
	return func(s *MentorshipService) {
		s.effects.audit = audit
	}
}

// WithMentorshipEvents sets the event emitter.
func WithMentorshipEvents(emitter eventEmitter) MentorshipServiceOption {
	return func(s *MentorshipService) {
		s.effects.events = emitter
	}
}

// WithMentorshipMetrics sets the metrics sink.
func WithMentorshipMetrics(metrics *MetricsService) MentorshipServiceOption {
	return func(s *MentorshipService) {
		s.metrics = metrics
	}
}

// WithMentorshipCache sets the cache whose mentor directory entries go stale on capacity changes.
func WithMentorshipCache(cache cacheInvalidator) MentorshipServiceOption {
	return func(s *MentorshipService) {
		s.cache = cache
	}
}

// WithMentorshipClock overrides the transition clock.
func WithMentorshipClock(now func() time.Time) MentorshipServiceOption {
	return func(s *MentorshipService) {
		if now != nil {
			s.now = now
		}
	}
}

// MentorshipService runs the mentorship request lifecycle.
type MentorshipService struct {
	store     mentorshipStore
	validator *validator.Validate
	metrics   *MetricsService
	cache     cacheInvalidator
	effects   sideEffects
	now       func() time.Time
	logger    *zap.Logger
}

// NewMentorshipService constructs the service.
func NewMentorshipService(store mentorshipStore, validate *validator.Validate, logger *zap.Logger, opts ...MentorshipServiceOption) *MentorshipService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &MentorshipService{
		store:     store,
		validator: validate,
		now:       time.Now,
		logger:    logger,
		effects:   sideEffects{logger: logger, source: "mentorship-service"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create files a pending request from the actor to a mentor with free capacity.
func (s *MentorshipService) Create(ctx context.Context, req dto.CreateMentorshipRequest, actor *models.JWTClaims) (*models.MentorshipRequest, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	req.Goals = strings.TrimSpace(req.Goals)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mentorship request payload")
	}
	if strings.EqualFold(req.MentorID, actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot request mentorship from yourself")
	}

	entity := &models.MentorshipRequest{
		MenteeID:               actor.UserID,
		MentorID:               req.MentorID,
		Goals:                  req.Goals,
		DurationMonths:         req.DurationMonths,
		PreferredCommunication: req.PreferredCommunication,
	}
	if entity.DurationMonths == 0 {
		entity.DurationMonths = defaultDurationMonths
	}
	if entity.PreferredCommunication == "" {
		entity.PreferredCommunication = models.CommunicationMixed
	}

	guard := func(mentor *models.MentorProfile, accepted int) error {
		if mentor == nil {
			return appErrors.ErrMentorNotFound
		}
		if !CanAccept(mentor, accepted) {
			return appErrors.Clone(appErrors.ErrMentorUnavailable, "mentor is not accepting new mentees").
				WithDetails(map[string]interface{}{
					"capacity":       mentor.MentoringCapacity,
					"accepted_count": accepted,
					"is_approved":    mentor.IsApproved,
					"is_active":      mentor.IsActive,
				})
		}
		return nil
	}

	if err := s.store.Create(ctx, entity, guard); err != nil {
		var appErr *appErrors.Error
		switch {
		case errors.As(err, &appErr):
			return nil, appErr
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.ErrMentorNotFound
		case errors.Is(err, repository.ErrOpenRequestExists):
			return nil, appErrors.Clone(appErrors.ErrConflict, "an open mentorship request already exists for this mentor")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mentorship request")
	}

	s.effects.emitAudit(ctx, actor.UserID, models.AuditActionMentorshipRequest, mentorshipResource, entity.ID, nil, entity)
	s.effects.emitEvent(ctx, events.TypeMentorshipRequested, entity.ID, entity)
	s.logger.Info("mentorship requested", zap.String("request_id", entity.ID), zap.String("mentor_id", entity.MentorID))
	return entity, nil
}

// UpdateStatus applies a lifecycle transition under a lock on the request and its mentor.
func (s *MentorshipService) UpdateStatus(ctx context.Context, id string, req dto.UpdateMentorshipStatusRequest, actor *models.JWTClaims) (*models.MentorshipRequest, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status update payload")
	}

	var from models.MentorshipStatus
	updated, err := s.store.Transition(ctx, id, func(current models.MentorshipRequest, mentor *models.MentorProfile, accepted int) (*models.MentorshipRequest, error) {
		from = current.Status
		return ApplyTransition(current, actor.UserID, req, mentor, accepted, s.now())
	})
	if err != nil {
		return nil, s.transitionError(err, from, req.Status)
	}

	s.metrics.RecordTransition(from, updated.Status, TransitionResultOK)
	if from == models.MentorshipAccepted || updated.Status == models.MentorshipAccepted {
		s.invalidateDirectory(ctx)
	}
	s.effects.emitAudit(ctx, actor.UserID, models.AuditActionMentorshipTransition, mentorshipResource, updated.ID,
		map[string]interface{}{"status": from},
		map[string]interface{}{"status": updated.Status})
	s.effects.emitEvent(ctx, events.TypeMentorshipStatusChanged, updated.ID, map[string]interface{}{
		"request_id": updated.ID,
		"mentee_id":  updated.MenteeID,
		"mentor_id":  updated.MentorID,
		"from":       from,
		"to":         updated.Status,
		"actor_id":   actor.UserID,
	})
	return updated, nil
}

func (s *MentorshipService) transitionError(err error, from, to models.MentorshipStatus) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "mentorship request not found")
	}
	if errors.Is(err, repository.ErrCapacityReached) {
		s.metrics.RecordTransition(from, to, TransitionResultCapacity)
		return appErrors.Clone(appErrors.ErrCapacityExceeded, "mentor cannot accept more mentees").
			WithDetails(map[string]interface{}{"current_status": from})
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		result := TransitionResultRejected
		if errors.Is(appErr, appErrors.ErrCapacityExceeded) {
			result = TransitionResultCapacity
		}
		s.metrics.RecordTransition(from, to, result)
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update mentorship status")
}

// UpdateProgress records progress on an accepted request. Either party may report it.
func (s *MentorshipService) UpdateProgress(ctx context.Context, id string, req dto.UpdateProgressRequest, actor *models.JWTClaims) (*models.MentorshipRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}
	current, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if current.Status != models.MentorshipAccepted {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "progress can only be recorded on accepted requests").
			WithDetails(map[string]interface{}{"current_status": current.Status})
	}
	if err := s.store.UpdateProgress(ctx, id, *req.ProgressPercentage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "request is no longer accepted")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update progress")
	}
	current.ProgressPercentage = *req.ProgressPercentage
	return current, nil
}

// Get returns a request visible to the actor.
func (s *MentorshipService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.MentorshipRequest, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentorship request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentorship request")
	}
	if !req.IsParticipant(actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "only the mentee or mentor can view this request")
	}
	return req, nil
}

// List returns the actor's requests as mentee, mentor or both.
func (s *MentorshipService) List(ctx context.Context, query dto.MentorshipQuery, actor *models.JWTClaims) ([]models.MentorshipRequest, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mentorship query")
	}
	for _, status := range query.Status {
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status "+string(status))
		}
	}
	filter := models.MentorshipFilter{Status: query.Status, Limit: query.Limit, Offset: query.Offset}
	if filter.Limit <= 0 {
		filter.Limit = defaultMentorshipListCap
	}
	switch query.As {
	case "mentee":
		filter.MenteeID = actor.UserID
	case "mentor":
		filter.MentorID = actor.UserID
	default:
		filter.AccountID = actor.UserID
	}
	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentorship requests")
	}
	return items, nil
}

func (s *MentorshipService) invalidateDirectory(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, mentorDirectoryPattern); err != nil {
		s.logger.Warn("failed to invalidate mentor directory", zap.Error(err))
	}
}
