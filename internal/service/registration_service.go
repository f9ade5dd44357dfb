package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	"github.com/noah-isme/alumni-mentorship-api/internal/repository"
	"github.com/noah-isme/alumni-mentorship-api/pkg/config"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
	"github.com/noah-isme/alumni-mentorship-api/pkg/events"
)

// DefaultAlumniBiography is the profile description written on manual approval.
const DefaultAlumniBiography = "As an esteemed graduate of our university, this alumnus embodies the values of excellence, integrity, and lifelong learning. " +
	"Through dedication to academic pursuits and active engagement in extracurricular activities, they have developed a strong foundation for personal and professional growth. " +
	"Their commitment to innovation, leadership, and service is evident in their ongoing contributions to their chosen field and broader community. " +
	"As part of our vibrant alumni network, they continue to foster meaningful connections, support fellow graduates, and inspire future generations. " +
	"We are proud to recognize their achievements and celebrate their ongoing journey as a valued member of our alumni family."

const registrationResource = "registration"

type accountStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Provision(ctx context.Context, params repository.ProvisionParams) (*repository.ProvisionResult, error)
}

type registrationStore interface {
	GetByID(ctx context.Context, id string) (*models.RegistrationApplication, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.RegistrationApplication, error)
	File(ctx context.Context, app *models.RegistrationApplication, verification *models.VerificationScore) error
	Reject(ctx context.Context, id, reason, decidedBy string) error
}

type verificationStore interface {
	LatestByEmail(ctx context.Context, email string) (*models.VerificationScore, error)
	Record(ctx context.Context, score *models.VerificationScore) error
}

// PasswordHasher turns the placeholder credential into a stored hash.
type PasswordHasher func(password string) (string, error)

// BcryptHasher returns a PasswordHasher using the given bcrypt cost.
func BcryptHasher(cost int) PasswordHasher {
	return func(password string) (string, error) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return "", err
		}
		return string(hash), nil
	}
}

// RegistrationServiceOption configures the service.
type RegistrationServiceOption func(*RegistrationService)

// WithRegistrationAudit sets the audit trail writer.
func WithRegistrationAudit(audit auditLogger) RegistrationServiceOption {
	return func(s *RegistrationService) {
		s.effects.audit = audit
	}
}

// WithRegistrationEvents sets the event emitter.
func WithRegistrationEvents(emitter eventEmitter) RegistrationServiceOption {
	return func(s *RegistrationService) {
		s.effects.events = emitter
	}
}

// WithRegistrationMetrics sets the metrics sink.
func WithRegistrationMetrics(metrics *MetricsService) RegistrationServiceOption {
	return func(s *RegistrationService) {
		s.metrics = metrics
	}
}

// WithPasswordHasher overrides the bcrypt hasher, mainly for tests.
func WithPasswordHasher(hasher PasswordHasher) RegistrationServiceOption {
	return func(s *RegistrationService) {
		if hasher != nil {
			s.hasher = hasher
		}
	}
}

// RegistrationService turns alumni submissions into accounts, either immediately when
// the verification score clears the threshold or after an administrator approves.
type RegistrationService struct {
	accounts      accountStore
	applications  registrationStore
	verifications verificationStore
	scorer        *VerificationScorer
	roles         config.RolesConfig
	validator     *validator.Validate
	hasher        PasswordHasher
	metrics       *MetricsService
	effects       sideEffects
	logger        *zap.Logger
}

// NewRegistrationService constructs the service.
func NewRegistrationService(
	accounts accountStore,
	applications registrationStore,
	verifications verificationStore,
	scorer *VerificationScorer,
	roles config.RolesConfig,
	validate *validator.Validate,
	logger *zap.Logger,
	opts ...RegistrationServiceOption,
) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if roles.ApprovedAlumni == "" {
		roles.ApprovedAlumni = roles.Alumni
	}
	svc := &RegistrationService{
		accounts:      accounts,
		applications:  applications,
		verifications: verifications,
		scorer:        scorer,
		roles:         roles,
		validator:     validate,
		hasher:        BcryptHasher(bcrypt.DefaultCost),
		logger:        logger,
		effects:       sideEffects{logger: logger, source: "registration-service"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Submit scores a submission and either provisions the account at once or files it for review.
func (s *RegistrationService) Submit(ctx context.Context, req dto.SubmitRegistrationRequest) (*dto.SubmissionOutcome, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	exists, err := s.accounts.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing account")
	}
	if exists {
		return nil, appErrors.ErrDuplicateAccount
	}

	app := req.ToApplication()
	breakdown := s.scorer.Calculate(app)
	threshold := s.scorer.Threshold()
	s.metrics.ObserveVerificationScore(breakdown.Total)

	submission, err := json.Marshal(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot submission")
	}
	record := &models.VerificationScore{
		Email:                 app.Email,
		StudentID:             app.StudentID,
		GraduationYear:        app.GraduationYear,
		Department:            app.Department,
		LinkedInProfile:       app.LinkedInURL,
		AutoApprovalThreshold: threshold,
		Submission:            submission,
	}
	record.ApplyBreakdown(breakdown)

	if IsAutoApprovable(breakdown.Total, threshold) {
		return s.autoApprove(ctx, app, record)
	}
	return s.file(ctx, app, record)
}

func (s *RegistrationService) autoApprove(ctx context.Context, app *models.RegistrationApplication, record *models.VerificationScore) (*dto.SubmissionOutcome, error) {
	account, err := s.newAccount(app)
	if err != nil {
		return nil, err
	}
	record.Status = models.VerificationAutoApproved
	result, err := s.accounts.Provision(ctx, repository.ProvisionParams{
		Account:      account,
		Profile:      models.ProfileFromApplication(app),
		RoleName:     s.roles.Alumni,
		Verification: record,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			s.keepLostScore(ctx, record)
			return nil, appErrors.ErrDuplicateAccount
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to provision account")
	}
	if result.Role == nil {
		s.logger.Warn("alumni role missing, account created without role", zap.String("role", s.roles.Alumni), zap.String("account_id", result.Account.ID))
	}

	s.metrics.RecordApplication(models.VerificationAutoApproved)
	outcome := &dto.SubmissionOutcome{
		Status:    models.VerificationAutoApproved,
		Score:     record.Breakdown(),
		Threshold: record.AutoApprovalThreshold,
		AccountID: result.Account.ID,
	}
	s.effects.emitAudit(ctx, result.Account.ID, models.AuditActionRegistrationAutoApprove, registrationResource, result.Account.ID, nil, outcome)
	s.effects.emitEvent(ctx, events.TypeRegistrationAutoApproved, result.Account.ID, outcome)
	s.logger.Info("registration auto-approved", zap.String("account_id", result.Account.ID), zap.Int("score", outcome.Score.Total))
	return outcome, nil
}

// keepLostScore stores the score of a submission that lost the account race.
// The record stays pending with no account behind it.
func (s *RegistrationService) keepLostScore(ctx context.Context, record *models.VerificationScore) {
	record.ID = ""
	record.Status = models.VerificationPending
	if err := s.verifications.Record(ctx, record); err != nil {
		s.logger.Warn("failed to store verification score", zap.String("email", record.Email), zap.Error(err))
	}
}

func (s *RegistrationService) file(ctx context.Context, app *models.RegistrationApplication, record *models.VerificationScore) (*dto.SubmissionOutcome, error) {
	record.Status = models.VerificationManualReview
	if err := s.applications.File(ctx, app, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to file registration")
	}

	s.metrics.RecordApplication(models.VerificationManualReview)
	outcome := &dto.SubmissionOutcome{
		Status:        models.VerificationManualReview,
		Score:         record.Breakdown(),
		Threshold:     record.AutoApprovalThreshold,
		ApplicationID: app.ID,
	}
	s.effects.emitAudit(ctx, "", models.AuditActionRegistrationFile, registrationResource, app.ID, nil, outcome)
	s.effects.emitEvent(ctx, events.TypeRegistrationFiled, app.ID, outcome)
	return outcome, nil
}

// Approve admits a filed application: account, role, profile and decision commit together.
func (s *RegistrationService) Approve(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ApprovalResult, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.accounts.ExistsByEmail(ctx, app.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing account")
	}
	if exists {
		return nil, appErrors.ErrAlreadyExists
	}
	if app.Decided() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application already decided")
	}

	account, err := s.newAccount(app)
	if err != nil {
		return nil, err
	}
	profile := models.ProfileFromApplication(app)
	profile.Description = DefaultAlumniBiography

	result, err := s.accounts.Provision(ctx, repository.ProvisionParams{
		Account:       account,
		Profile:       profile,
		RoleName:      s.roles.ApprovedAlumni,
		RequireRole:   true,
		ApplicationID: app.ID,
		DecidedBy:     actorID(actor),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRoleNotFound):
			return nil, appErrors.Clone(appErrors.ErrRoleMissing, "role "+s.roles.ApprovedAlumni+" is not configured")
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, appErrors.ErrAlreadyExists
		case errors.Is(err, repository.ErrAlreadyDecided):
			return nil, appErrors.Clone(appErrors.ErrConflict, "application already decided")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve registration")
	}

	s.metrics.RecordApplication(models.VerificationApproved)
	roleName := s.roles.ApprovedAlumni
	if result.Role != nil {
		roleName = result.Role.Name
	}
	approval := &dto.ApprovalResult{Account: result.Account, Role: roleName, ApplicationID: app.ID}
	s.effects.emitAudit(ctx, actorID(actor), models.AuditActionRegistrationApprove, registrationResource, app.ID,
		map[string]interface{}{"is_approved": nil},
		map[string]interface{}{"is_approved": true, "account_id": result.Account.ID})
	s.effects.emitEvent(ctx, events.TypeRegistrationApproved, app.ID, approval)
	return approval, nil
}

// Reject declines a filed application without touching accounts.
func (s *RegistrationService) Reject(ctx context.Context, id string, req dto.RejectRegistrationRequest, actor *models.JWTClaims) (*models.RegistrationApplication, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rejection reason is required")
	}
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Decided() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application already decided")
	}
	if err := s.applications.Reject(ctx, id, req.Reason, actorID(actor)); err != nil {
		if errors.Is(err, repository.ErrAlreadyDecided) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application already decided")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject registration")
	}

	now := time.Now().UTC()
	rejected := false
	app.IsApproved = &rejected
	app.RejectionReason = &req.Reason
	app.DecidedBy = optionalString(actorID(actor))
	app.DecidedAt = &now
	s.metrics.RecordApplication(models.VerificationRejected)
	s.effects.emitAudit(ctx, actorID(actor), models.AuditActionRegistrationReject, registrationResource, app.ID,
		map[string]interface{}{"is_approved": nil},
		map[string]interface{}{"is_approved": false, "reason": req.Reason})
	s.effects.emitEvent(ctx, events.TypeRegistrationRejected, app.ID, map[string]string{"application_id": app.ID, "reason": req.Reason})
	return app, nil
}

// Get returns a filed application.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.RegistrationApplication, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return app, nil
}

// ListPending returns the manual review queue.
func (s *RegistrationService) ListPending(ctx context.Context, query dto.RegistrationQuery) ([]models.RegistrationApplication, error) {
	apps, err := s.applications.ListPending(ctx, query.Limit, query.Offset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return apps, nil
}

// GetVerification returns the latest verification record for an email.
func (s *RegistrationService) GetVerification(ctx context.Context, email string) (*models.VerificationScore, error) {
	score, err := s.verifications.LatestByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "verification not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load verification")
	}
	return score, nil
}

// newAccount builds an active account whose password is an unguessable placeholder;
// credentials are issued by the identity provider.
func (s *RegistrationService) newAccount(app *models.RegistrationApplication) (*models.Account, error) {
	hash, err := s.hasher(uuid.NewString())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash credential")
	}
	email := strings.ToLower(strings.TrimSpace(app.Email))
	return &models.Account{
		Username:     email,
		Email:        email,
		PasswordHash: hash,
		FirstName:    app.FirstName,
		LastName:     app.LastName,
		Active:       true,
	}, nil
}

func actorID(actor *models.JWTClaims) string {
	if actor == nil {
		return ""
	}
	return actor.UserID
}
