package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

const sessionColumns = `id, mentorship_id, session_date, duration_minutes, session_type, agenda, notes, action_items,
completed, cancelled, cancellation_reason, meeting_link, location, created_at, updated_at`

// SessionRepository persists mentorship sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session only while its mentorship is accepted or completed.
// sql.ErrNoRows means the mentorship was not in one of those states.
func (r *SessionRepository) Create(ctx context.Context, session *models.MentorshipSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	const query = `INSERT INTO mentorship_sessions
(id, mentorship_id, session_date, duration_minutes, session_type, agenda, notes, action_items,
 completed, cancelled, cancellation_reason, meeting_link, location, created_at, updated_at)
SELECT :id, :mentorship_id, :session_date, :duration_minutes, :session_type, :agenda, :notes, :action_items,
 FALSE, FALSE, '', :meeting_link, :location, :created_at, :updated_at
WHERE EXISTS (SELECT 1 FROM mentorship_requests WHERE id = :mentorship_id AND status IN ('accepted', 'completed'))`
	result, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("create mentorship session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("create mentorship session rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetByID fetches a session by identifier.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.MentorshipSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM mentorship_sessions WHERE id = $1`
	var session models.MentorshipSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get mentorship session: %w", err)
	}
	return &session, nil
}

// ListByMentorship returns the sessions of a mentorship, latest first.
func (r *SessionRepository) ListByMentorship(ctx context.Context, mentorshipID string) ([]models.MentorshipSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM mentorship_sessions WHERE mentorship_id = $1 ORDER BY session_date DESC`
	var sessions []models.MentorshipSession
	if err := r.db.SelectContext(ctx, &sessions, query, mentorshipID); err != nil {
		return nil, fmt.Errorf("list mentorship sessions: %w", err)
	}
	return sessions, nil
}

// Complete marks an open session completed. sql.ErrNoRows means it was already closed.
func (r *SessionRepository) Complete(ctx context.Context, id, notes string, actionItems models.TagSet) error {
	const query = `UPDATE mentorship_sessions SET completed = TRUE, notes = $2, action_items = $3, updated_at = $4
WHERE id = $1 AND completed = FALSE AND cancelled = FALSE`
	return r.closeSession(ctx, "complete", query, id, notes, actionItems, time.Now().UTC())
}

// Cancel marks an open session cancelled. sql.ErrNoRows means it was already closed.
func (r *SessionRepository) Cancel(ctx context.Context, id, reason string) error {
	const query = `UPDATE mentorship_sessions SET cancelled = TRUE, cancellation_reason = $2, updated_at = $3
WHERE id = $1 AND completed = FALSE AND cancelled = FALSE`
	return r.closeSession(ctx, "cancel", query, id, reason, time.Now().UTC())
}

func (r *SessionRepository) closeSession(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s mentorship session: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s mentorship session rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
