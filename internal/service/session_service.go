package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
	"github.com/noah-isme/alumni-mentorship-api/pkg/events"
)

const (
	sessionResource        = "mentorship_session"
	defaultSessionDuration = 60
)

type sessionStore interface {
	Create(ctx context.Context, session *models.MentorshipSession) error
	GetByID(ctx context.Context, id string) (*models.MentorshipSession, error)
	ListByMentorship(ctx context.Context, mentorshipID string) ([]models.MentorshipSession, error)
	Complete(ctx context.Context, id, notes string, actionItems models.TagSet) error
	Cancel(ctx context.Context, id, reason string) error
}

type mentorshipReader interface {
	GetByID(ctx context.Context, id string) (*models.MentorshipRequest, error)
}

// SessionServiceOption configures the service.
type SessionServiceOption func(*SessionService)

// WithSessionAudit sets the audit trail writer.
func WithSessionAudit(audit auditLogger) SessionServiceOption {
	return func(s *SessionService) {
		s.effects.audit = audit
	}
}

// WithSessionEvents sets the event emitter.
func WithSessionEvents(emitter eventEmitter) SessionServiceOption {
	return func(s *SessionService) {
		s.effects.events = emitter
	}
}

// SessionService keeps the ledger of meetings held under a mentorship.
type SessionService struct {
	sessions    sessionStore
	mentorships mentorshipReader
	validator   *validator.Validate
	effects     sideEffects
	logger      *zap.Logger
}

// NewSessionService constructs the service.
func NewSessionService(sessions sessionStore, mentorships mentorshipReader, validate *validator.Validate, logger *zap.Logger, opts ...SessionServiceOption) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &SessionService{
		sessions:    sessions,
		mentorships: mentorships,
		validator:   validate,
		logger:      logger,
		effects:     sideEffects{logger: logger, source: "session-service"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// AddSession schedules a session on an accepted or completed mentorship.
func (s *SessionService) AddSession(ctx context.Context, mentorshipID string, req dto.CreateSessionRequest, actor *models.JWTClaims) (*models.MentorshipSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	mentorship, err := s.participantMentorship(ctx, mentorshipID, actor)
	if err != nil {
		return nil, err
	}
	if !sessionsAllowed(mentorship.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "sessions can only be added to accepted or completed mentorships").
			WithDetails(map[string]interface{}{"current_status": mentorship.Status})
	}

	session := &models.MentorshipSession{
		MentorshipID:    mentorship.ID,
		SessionDate:     req.SessionDate.UTC(),
		DurationMinutes: req.DurationMinutes,
		SessionType:     req.SessionType,
		Agenda:          strings.TrimSpace(req.Agenda),
		ActionItems:     req.ActionItems,
		MeetingLink:     strings.TrimSpace(req.MeetingLink),
		Location:        strings.TrimSpace(req.Location),
	}
	if session.DurationMinutes == 0 {
		session.DurationMinutes = defaultSessionDuration
	}
	if session.SessionType == "" {
		session.SessionType = models.SessionVideoCall
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "mentorship is no longer open for sessions")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	s.effects.emitAudit(ctx, actor.UserID, models.AuditActionSessionCreate, sessionResource, session.ID, nil, session)
	s.effects.emitEvent(ctx, events.TypeMentorshipSessionAdded, mentorship.ID, session)
	return session, nil
}

// CompleteSession closes an open session with notes.
func (s *SessionService) CompleteSession(ctx context.Context, sessionID string, req dto.CompleteSessionRequest, actor *models.JWTClaims) (*models.MentorshipSession, error) {
	session, err := s.openSession(ctx, sessionID, actor)
	if err != nil {
		return nil, err
	}
	notes := strings.TrimSpace(req.Notes)
	items := req.ActionItems
	if items == nil {
		items = session.ActionItems
	}
	if err := s.sessions.Complete(ctx, session.ID, notes, items); err != nil {
		return nil, closeSessionError(err, "complete")
	}
	before := *session
	session.Completed = true
	session.Notes = notes
	session.ActionItems = items
	s.effects.emitAudit(ctx, actor.UserID, models.AuditActionSessionUpdate, sessionResource, session.ID,
		map[string]interface{}{"completed": before.Completed},
		map[string]interface{}{"completed": true})
	return session, nil
}

// CancelSession cancels an open session; the reason is mandatory.
func (s *SessionService) CancelSession(ctx context.Context, sessionID string, req dto.CancelSessionRequest, actor *models.JWTClaims) (*models.MentorshipSession, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cancellation reason is required")
	}
	session, err := s.openSession(ctx, sessionID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Cancel(ctx, session.ID, req.Reason); err != nil {
		return nil, closeSessionError(err, "cancel")
	}
	session.Cancelled = true
	session.CancellationReason = req.Reason
	s.effects.emitAudit(ctx, actor.UserID, models.AuditActionSessionUpdate, sessionResource, session.ID,
		map[string]interface{}{"cancelled": false},
		map[string]interface{}{"cancelled": true, "reason": req.Reason})
	return session, nil
}

// ListSessions returns the sessions of a mentorship visible to the actor.
func (s *SessionService) ListSessions(ctx context.Context, mentorshipID string, actor *models.JWTClaims) ([]models.MentorshipSession, error) {
	if _, err := s.participantMentorship(ctx, mentorshipID, actor); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByMentorship(ctx, mentorshipID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

func (s *SessionService) participantMentorship(ctx context.Context, mentorshipID string, actor *models.JWTClaims) (*models.MentorshipRequest, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	mentorship, err := s.mentorships.GetByID(ctx, mentorshipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentorship request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentorship request")
	}
	if !mentorship.IsParticipant(actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "only the mentee or mentor can manage sessions")
	}
	return mentorship, nil
}

func (s *SessionService) openSession(ctx context.Context, sessionID string, actor *models.JWTClaims) (*models.MentorshipSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if _, err := s.participantMentorship(ctx, session.MentorshipID, actor); err != nil {
		return nil, err
	}
	if session.Completed || session.Cancelled {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "session is already closed").
			WithDetails(map[string]interface{}{"completed": session.Completed, "cancelled": session.Cancelled})
	}
	return session, nil
}

func closeSessionError(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrInvalidState, "session is already closed")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+op+" session")
}

func sessionsAllowed(status models.MentorshipStatus) bool {
	return status == models.MentorshipAccepted || status == models.MentorshipCompleted
}
