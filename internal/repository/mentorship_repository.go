package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	"github.com/noah-isme/alumni-mentorship-api/pkg/database"
)

const mentorshipColumns = `id, mentee_id, mentor_id, goals, duration_months, preferred_communication, status,
requested_at, responded_at, started_at, completed_at, mentor_response, rejection_reason, progress_percentage,
mentee_rating, mentor_rating, mentee_feedback, mentor_feedback, updated_at`

const (
	openPairConstraint = "mentorship_requests_open_pair_idx"
	capacityConstraint = "mentor_capacity"
)

// CreateGuard decides whether a new request may be filed against the locked mentor.
type CreateGuard func(mentor *models.MentorProfile, accepted int) error

// TransitionFunc computes the next state of a locked request. mentor is nil when the
// mentor has no profile. Returning an error aborts the transaction.
type TransitionFunc func(current models.MentorshipRequest, mentor *models.MentorProfile, accepted int) (*models.MentorshipRequest, error)

// MentorshipRepository persists mentorship requests under mentor row locks.
type MentorshipRepository struct {
	db *sqlx.DB
	tx *database.TxRunner
}

// NewMentorshipRepository constructs the repository. A nil runner uses the defaults.
func NewMentorshipRepository(db *sqlx.DB, runner *database.TxRunner) *MentorshipRepository {
	if runner == nil {
		runner = database.NewTxRunner(db)
	}
	return &MentorshipRepository{db: db, tx: runner}
}

// Create locks the mentor profile, runs guard with the live accepted count and inserts
// the request. A missing mentor profile yields sql.ErrNoRows.
func (r *MentorshipRepository) Create(ctx context.Context, req *models.MentorshipRequest, guard CreateGuard) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.Status = models.MentorshipPending
	req.RequestedAt = now
	req.UpdatedAt = now

	return r.tx.Run(ctx, func(tx *sqlx.Tx) error {
		mentor, err := lockMentorByAccount(ctx, tx, req.MentorID)
		if err != nil {
			return err
		}
		accepted, err := countAccepted(ctx, tx, req.MentorID)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(mentor, accepted); err != nil {
				return err
			}
		}

		const openQuery = `SELECT EXISTS(SELECT 1 FROM mentorship_requests WHERE mentee_id = $1 AND mentor_id = $2 AND status IN ('pending', 'accepted'))`
		var open bool
		if err := tx.GetContext(ctx, &open, openQuery, req.MenteeID, req.MentorID); err != nil {
			return fmt.Errorf("check open mentorship: %w", err)
		}
		if open {
			return ErrOpenRequestExists
		}

		const insert = `INSERT INTO mentorship_requests
(id, mentee_id, mentor_id, goals, duration_months, preferred_communication, status, requested_at, updated_at)
VALUES (:id, :mentee_id, :mentor_id, :goals, :duration_months, :preferred_communication, :status, :requested_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, req); err != nil {
			if database.IsUniqueViolation(err, openPairConstraint) {
				return ErrOpenRequestExists
			}
			return fmt.Errorf("create mentorship request: %w", err)
		}
		return nil
	})
}

// Transition locks the request and its mentor profile, applies fn and persists the result.
// Completing a request also refreshes the mentor's totals and average rating.
func (r *MentorshipRepository) Transition(ctx context.Context, id string, fn TransitionFunc) (*models.MentorshipRequest, error) {
	var updated *models.MentorshipRequest
	err := r.tx.Run(ctx, func(tx *sqlx.Tx) error {
		var current models.MentorshipRequest
		lockQuery := `SELECT ` + mentorshipColumns + ` FROM mentorship_requests WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &current, lockQuery, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return fmt.Errorf("lock mentorship request: %w", err)
		}

		mentor, err := lockMentorByAccount(ctx, tx, current.MentorID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		accepted, err := countAccepted(ctx, tx, current.MentorID)
		if err != nil {
			return err
		}

		next, err := fn(current, mentor, accepted)
		if err != nil {
			return err
		}
		next.UpdatedAt = time.Now().UTC()

		const update = `UPDATE mentorship_requests SET
status = :status, responded_at = :responded_at, started_at = :started_at, completed_at = :completed_at,
mentor_response = :mentor_response, rejection_reason = :rejection_reason, progress_percentage = :progress_percentage,
mentee_rating = :mentee_rating, mentor_rating = :mentor_rating, mentee_feedback = :mentee_feedback,
mentor_feedback = :mentor_feedback, updated_at = :updated_at
WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, update, next); err != nil {
			if database.IsCheckViolation(err, capacityConstraint) {
				return ErrCapacityReached
			}
			return fmt.Errorf("update mentorship request: %w", err)
		}

		if next.Status == models.MentorshipCompleted && current.Status != models.MentorshipCompleted {
			const stats = `UPDATE mentor_profiles SET
total_mentorships = total_mentorships + 1,
average_rating = COALESCE((SELECT ROUND(AVG(mentee_rating)::numeric, 2) FROM mentorship_requests
    WHERE mentor_id = $1 AND status = 'completed' AND mentee_rating IS NOT NULL), 0),
updated_at = $2
WHERE account_id = $1`
			if _, err := tx.ExecContext(ctx, stats, current.MentorID, next.UpdatedAt); err != nil {
				return fmt.Errorf("update mentor stats: %w", err)
			}
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateProgress sets the progress of an accepted request. sql.ErrNoRows means the
// request is missing or no longer accepted.
func (r *MentorshipRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	const query = `UPDATE mentorship_requests SET progress_percentage = $2, updated_at = $3 WHERE id = $1 AND status = 'accepted'`
	result, err := r.db.ExecContext(ctx, query, id, progress, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update mentorship progress: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update mentorship progress rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *MentorshipRepository) GetByID(ctx context.Context, id string) (*models.MentorshipRequest, error) {
	query := `SELECT ` + mentorshipColumns + ` FROM mentorship_requests WHERE id = $1`
	var req models.MentorshipRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get mentorship request: %w", err)
	}
	return &req, nil
}

// List returns requests matching the filter, newest first.
func (r *MentorshipRepository) List(ctx context.Context, filter models.MentorshipFilter) ([]models.MentorshipRequest, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT ` + mentorshipColumns + ` FROM mentorship_requests`)

	conditions := make([]string, 0, 4)
	if filter.MenteeID != "" {
		args = append(args, filter.MenteeID)
		conditions = append(conditions, fmt.Sprintf("mentee_id = $%d", len(args)))
	}
	if filter.MentorID != "" {
		args = append(args, filter.MentorID)
		conditions = append(conditions, fmt.Sprintf("mentor_id = $%d", len(args)))
	}
	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		conditions = append(conditions, fmt.Sprintf("(mentee_id = $%d OR mentor_id = $%d)", len(args), len(args)))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY requested_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.MentorshipRequest
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list mentorship requests: %w", err)
	}
	return requests, nil
}
