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
	"github.com/noah-isme/alumni-mentorship-api/pkg/config"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
	"github.com/noah-isme/alumni-mentorship-api/pkg/events"
)

const (
	mentorResource         = "mentor_profile"
	mentorDirectoryPattern = "mentors:*"
	defaultMentorCapacity  = 5
)

type mentorStore interface {
	Create(ctx context.Context, profile *models.MentorProfile) error
	GetByID(ctx context.Context, id string) (*models.MentorProfile, error)
	ListAvailable(ctx context.Context, expertise string) ([]models.MentorProfile, error)
	Approve(ctx context.Context, id string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	CountAccepted(ctx context.Context, mentorAccountID string) (int, error)
}

// MentorServiceOption configures the service.
type MentorServiceOption func(*MentorService)

// WithMentorAudit sets the audit trail writer.
func WithMentorAudit(audit auditLogger) MentorServiceOption {
	return func(s *MentorService) {
		s.effects.audit = audit
	}
}

// WithMentorEvents sets the event emitter.
func WithMentorEvents(emitter eventEmitter) MentorServiceOption {
	return func(s *MentorService) {
		s.effects.events = emitter
	}
}

// MentorService manages mentor profiles and the cached directory of available mentors.
type MentorService struct {
	store     mentorStore
	tracker   *CapacityTracker
	cache     *CacheService
	cfg       config.MentorshipConfig
	validator *validator.Validate
	effects   sideEffects
	logger    *zap.Logger
}

// NewMentorService constructs the service. cache may be nil.
func NewMentorService(store mentorStore, cache *CacheService, cfg config.MentorshipConfig, validate *validator.Validate, logger *zap.Logger, opts ...MentorServiceOption) *MentorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultCapacity <= 0 {
		cfg.DefaultCapacity = defaultMentorCapacity
	}
	svc := &MentorService{
		store:     store,
		tracker:   NewCapacityTracker(store),
		cache:     cache,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		effects:   sideEffects{logger: logger, source: "mentor-service"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Apply creates the actor's mentor profile pending approval.
func (s *MentorService) Apply(ctx context.Context, req dto.ApplyMentorRequest, actor *models.JWTClaims) (*models.MentorProfile, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mentor application")
	}
	if err := req.Availability.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability")
	}

	capacity := s.cfg.DefaultCapacity
	if req.MentoringCapacity != nil {
		capacity = *req.MentoringCapacity
	}
	profile := &models.MentorProfile{
		AccountID:         actor.UserID,
		ExpertiseAreas:    models.NewTagSet(req.ExpertiseAreas...),
		YearsExperience:   req.YearsExperience,
		CurrentCompany:    strings.TrimSpace(req.CurrentCompany),
		CurrentPosition:   strings.TrimSpace(req.CurrentPosition),
		MentoringCapacity: capacity,
		Availability:      req.Availability,
		Bio:               strings.TrimSpace(req.Bio),
		LinkedInURL:       req.LinkedInURL,
		GithubURL:         req.GithubURL,
		PortfolioURL:      req.PortfolioURL,
		IsActive:          true,
	}
	if err := s.store.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrMentorProfileExists) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "mentor profile already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mentor profile")
	}
	s.effects.emitAudit(ctx, actor.UserID, models.AuditActionMentorApply, mentorResource, profile.ID, nil, profile)
	return profile, nil
}

// Approve admits a mentor profile into the directory.
func (s *MentorService) Approve(ctx context.Context, id string, actor *models.JWTClaims) (*models.MentorProfile, error) {
	profile, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.IsApproved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "mentor profile already approved")
	}
	now := time.Now().UTC()
	if err := s.store.Approve(ctx, id, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "mentor profile already approved")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve mentor profile")
	}
	profile.IsApproved = true
	profile.ApprovalDate = &now
	profile.RejectionReason = nil
	profile.UpdatedAt = now

	s.invalidate(ctx)
	s.effects.emitAudit(ctx, actorID(actor), models.AuditActionMentorApprove, mentorResource, profile.ID,
		map[string]interface{}{"is_approved": false},
		map[string]interface{}{"is_approved": true})
	s.effects.emitEvent(ctx, events.TypeMentorApproved, profile.ID, map[string]string{"profile_id": profile.ID, "account_id": profile.AccountID})
	return profile, nil
}

// SetActive lets a mentor pause or resume taking new mentees. Only the owner may toggle it.
func (s *MentorService) SetActive(ctx context.Context, id string, req dto.SetMentorActiveRequest, actor *models.JWTClaims) (*models.MentorProfile, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "active flag is required")
	}
	profile, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.AccountID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "only the mentor can change availability")
	}
	now := time.Now().UTC()
	if err := s.store.SetActive(ctx, id, *req.Active, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update mentor profile")
	}
	before := profile.IsActive
	profile.IsActive = *req.Active
	profile.UpdatedAt = now

	s.invalidate(ctx)
	s.effects.emitAudit(ctx, actor.UserID, models.AuditActionMentorStatus, mentorResource, profile.ID,
		map[string]interface{}{"is_active": before},
		map[string]interface{}{"is_active": profile.IsActive})
	return profile, nil
}

// Get returns a profile with its live mentee count.
func (s *MentorService) Get(ctx context.Context, id string) (*dto.MentorDetail, error) {
	profile, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.tracker.CurrentMenteeCount(ctx, profile.AccountID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count mentees")
	}
	return &dto.MentorDetail{
		MentorProfile:  *profile,
		CurrentMentees: count,
		CanAccept:      CanAccept(profile, count),
	}, nil
}

// ListAvailable returns approved, active mentors, served from cache when possible.
func (s *MentorService) ListAvailable(ctx context.Context, query dto.MentorQuery) ([]models.MentorProfile, error) {
	expertise := strings.TrimSpace(query.Expertise)
	key := CacheKey("mentors", "available", expertise)
	if expertise == "" {
		key = CacheKey("mentors", "available", "all")
	}

	var cached []models.MentorProfile
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	profiles, err := s.store.ListAvailable(ctx, expertise)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentors")
	}
	if profiles == nil {
		profiles = []models.MentorProfile{}
	}
	_ = s.cache.Set(ctx, key, profiles, s.cfg.CacheTTL)
	return profiles, nil
}

func (s *MentorService) load(ctx context.Context, id string) (*models.MentorProfile, error) {
	profile, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor profile")
	}
	return profile, nil
}

func (s *MentorService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, mentorDirectoryPattern)
}
