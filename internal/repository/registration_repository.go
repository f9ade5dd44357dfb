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
	"github.com/noah-isme/alumni-mentorship-api/pkg/database"
)

const registrationColumns = `id, first_name, last_name, email, phone, address, graduation_year, batch, department, student_id,
current_company, current_position, experience, skills, interests, achievements,
facebook_url, twitter_url, linkedin_url, instagram_url, has_cv, has_proof_document,
is_approved, rejection_reason, decided_by, decided_at, created_at, updated_at`

// RegistrationRepository persists alumni registration applications.
type RegistrationRepository struct {
	db *sqlx.DB
	tx *database.TxRunner
}

// NewRegistrationRepository constructs the repository. A nil runner uses the defaults.
func NewRegistrationRepository(db *sqlx.DB, runner *database.TxRunner) *RegistrationRepository {
	if runner == nil {
		runner = database.NewTxRunner(db)
	}
	return &RegistrationRepository{db: db, tx: runner}
}

// GetByID fetches an application by identifier.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*models.RegistrationApplication, error) {
	query := `SELECT ` + registrationColumns + ` FROM registration_requests WHERE id = $1`
	var app models.RegistrationApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return &app, nil
}

// ListPending returns undecided applications, oldest first.
func (r *RegistrationRepository) ListPending(ctx context.Context, limit, offset int) ([]models.RegistrationApplication, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + registrationColumns + ` FROM registration_requests WHERE is_approved IS NULL ORDER BY created_at ASC LIMIT $1 OFFSET $2`
	var apps []models.RegistrationApplication
	if err := r.db.SelectContext(ctx, &apps, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list pending registrations: %w", err)
	}
	return apps, nil
}

// File stores a new undecided application together with its verification record.
func (r *RegistrationRepository) File(ctx context.Context, app *models.RegistrationApplication, verification *models.VerificationScore) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	app.IsApproved = nil
	if verification != nil {
		verification.ApplicationID = &app.ID
	}

	return r.tx.Run(ctx, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO registration_requests
(id, first_name, last_name, email, phone, address, graduation_year, batch, department, student_id,
 current_company, current_position, experience, skills, interests, achievements,
 facebook_url, twitter_url, linkedin_url, instagram_url, has_cv, has_proof_document, created_at, updated_at)
VALUES (:id, :first_name, :last_name, :email, :phone, :address, :graduation_year, :batch, :department, :student_id,
 :current_company, :current_position, :experience, :skills, :interests, :achievements,
 :facebook_url, :twitter_url, :linkedin_url, :instagram_url, :has_cv, :has_proof_document, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, app); err != nil {
			return fmt.Errorf("insert registration: %w", err)
		}
		if verification == nil {
			return nil
		}
		return insertVerification(ctx, tx, verification)
	})
}

// Reject records a rejection and moves the linked verification record to rejected.
func (r *RegistrationRepository) Reject(ctx context.Context, id, reason, decidedBy string) error {
	now := time.Now().UTC()
	return r.tx.Run(ctx, func(tx *sqlx.Tx) error {
		if err := decideApplication(ctx, tx, id, false, &reason, decidedBy, now); err != nil {
			return err
		}
		return advanceVerificationByApplication(ctx, tx, id, models.VerificationManualReview, models.VerificationRejected, now)
	})
}

// decideApplication sets the decision only while the application is still undecided.
func decideApplication(ctx context.Context, tx *sqlx.Tx, id string, approved bool, reason *string, decidedBy string, at time.Time) error {
	const query = `UPDATE registration_requests
SET is_approved = $2, rejection_reason = $3, decided_by = $4, decided_at = $5, updated_at = $5
WHERE id = $1 AND is_approved IS NULL`
	result, err := tx.ExecContext(ctx, query, id, approved, reason, nullableString(decidedBy), at)
	if err != nil {
		return fmt.Errorf("decide registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("decide registration rows: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyDecided
	}
	return nil
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
