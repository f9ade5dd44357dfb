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

const verificationColumns = `id, email, student_id, graduation_year, department, linkedin_profile,
student_id_score, graduation_year_score, linkedin_score, document_score, total_score,
verification_status, auto_approval_threshold, application_id, submission, created_at, updated_at`

// VerificationRepository reads verification scoring records.
type VerificationRepository struct {
	db *sqlx.DB
}

// NewVerificationRepository constructs the repository.
func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// LatestByEmail returns the most recent record for an email, ignoring case.
func (r *VerificationRepository) LatestByEmail(ctx context.Context, email string) (*models.VerificationScore, error) {
	query := `SELECT ` + verificationColumns + ` FROM verification_scores WHERE LOWER(email) = LOWER($1) ORDER BY created_at DESC LIMIT 1`
	var score models.VerificationScore
	if err := r.db.GetContext(ctx, &score, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("latest verification: %w", err)
	}
	score.ApplyBreakdown(score.Breakdown())
	return &score, nil
}

// GetByApplication returns the record linked to a filed application.
func (r *VerificationRepository) GetByApplication(ctx context.Context, applicationID string) (*models.VerificationScore, error) {
	query := `SELECT ` + verificationColumns + ` FROM verification_scores WHERE application_id = $1 ORDER BY created_at DESC LIMIT 1`
	var score models.VerificationScore
	if err := r.db.GetContext(ctx, &score, query, applicationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("verification by application: %w", err)
	}
	score.ApplyBreakdown(score.Breakdown())
	return &score, nil
}

// Record stores a scoring record outside any provisioning transaction.
func (r *VerificationRepository) Record(ctx context.Context, score *models.VerificationScore) error {
	return insertVerification(ctx, r.db, score)
}

// insertVerification writes a record, recomputing the total from the sub-scores.
func insertVerification(ctx context.Context, ext sqlx.ExtContext, score *models.VerificationScore) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	score.CreatedAt = now
	score.UpdatedAt = now
	score.ApplyBreakdown(score.Breakdown())
	const query = `INSERT INTO verification_scores
(id, email, student_id, graduation_year, department, linkedin_profile,
 student_id_score, graduation_year_score, linkedin_score, document_score, total_score,
 verification_status, auto_approval_threshold, application_id, submission, created_at, updated_at)
VALUES (:id, :email, :student_id, :graduation_year, :department, :linkedin_profile,
 :student_id_score, :graduation_year_score, :linkedin_score, :document_score, :total_score,
 :verification_status, :auto_approval_threshold, :application_id, :submission, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, ext, query, score); err != nil {
		return fmt.Errorf("insert verification score: %w", err)
	}
	return nil
}

// advanceVerificationByApplication moves linked records from one status to the next.
// Applications filed before scoring existed have no record, so zero rows is not an error.
func advanceVerificationByApplication(ctx context.Context, tx *sqlx.Tx, applicationID string, from, to models.VerificationStatus, at time.Time) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("verification status %s cannot move to %s", from, to)
	}
	const query = `UPDATE verification_scores SET verification_status = $3, updated_at = $4 WHERE application_id = $1 AND verification_status = $2`
	if _, err := tx.ExecContext(ctx, query, applicationID, from, to, at); err != nil {
		return fmt.Errorf("advance verification status: %w", err)
	}
	return nil
}
