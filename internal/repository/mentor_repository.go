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

const mentorColumns = `id, account_id, expertise_areas, years_experience, current_company, current_position,
mentoring_capacity, availability, bio, linkedin_url, github_url, portfolio_url, is_approved, is_active,
approval_date, rejection_reason, average_rating, total_mentorships, created_at, updated_at`

const mentorAccountConstraint = "mentor_profiles_account_id_key"

// MentorRepository persists mentor profiles.
type MentorRepository struct {
	db *sqlx.DB
}

// NewMentorRepository constructs the repository.
func NewMentorRepository(db *sqlx.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// Create inserts a mentor profile; one profile per account.
func (r *MentorRepository) Create(ctx context.Context, profile *models.MentorProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	const query = `INSERT INTO mentor_profiles
(id, account_id, expertise_areas, years_experience, current_company, current_position, mentoring_capacity,
 availability, bio, linkedin_url, github_url, portfolio_url, is_approved, is_active, created_at, updated_at)
VALUES (:id, :account_id, :expertise_areas, :years_experience, :current_company, :current_position, :mentoring_capacity,
 :availability, :bio, :linkedin_url, :github_url, :portfolio_url, :is_approved, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		if database.IsUniqueViolation(err, mentorAccountConstraint) {
			return ErrMentorProfileExists
		}
		return fmt.Errorf("create mentor profile: %w", err)
	}
	return nil
}

// GetByID fetches a profile by its identifier.
func (r *MentorRepository) GetByID(ctx context.Context, id string) (*models.MentorProfile, error) {
	return r.getOne(ctx, "id", id)
}

func (r *MentorRepository) getOne(ctx context.Context, column, value string) (*models.MentorProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM mentor_profiles WHERE %s = $1`, mentorColumns, column)
	var profile models.MentorProfile
	if err := r.db.GetContext(ctx, &profile, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get mentor profile: %w", err)
	}
	return &profile, nil
}

// ListAvailable returns approved, active mentors, optionally filtered by an expertise area.
func (r *MentorRepository) ListAvailable(ctx context.Context, expertise string) ([]models.MentorProfile, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 1)
	builder.WriteString(`SELECT ` + mentorColumns + ` FROM mentor_profiles WHERE is_approved = TRUE AND is_active = TRUE`)
	if expertise = strings.TrimSpace(expertise); expertise != "" {
		args = append(args, expertise)
		builder.WriteString(` AND EXISTS (SELECT 1 FROM unnest(expertise_areas) AS area WHERE LOWER(area) = LOWER($1))`)
	}
	builder.WriteString(` ORDER BY average_rating DESC, created_at ASC`)

	var profiles []models.MentorProfile
	if err := r.db.SelectContext(ctx, &profiles, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list available mentors: %w", err)
	}
	return profiles, nil
}

// Approve marks an unapproved profile approved.
func (r *MentorRepository) Approve(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE mentor_profiles SET is_approved = TRUE, approval_date = $2, rejection_reason = NULL, updated_at = $2 WHERE id = $1 AND is_approved = FALSE`
	return r.execOne(ctx, "approve mentor profile", query, id, at)
}

// SetActive toggles whether the mentor accepts new mentees.
func (r *MentorRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	const query = `UPDATE mentor_profiles SET is_active = $2, updated_at = $3 WHERE id = $1`
	return r.execOne(ctx, "set mentor active", query, id, active, at)
}

// CountAccepted returns the mentor's accepted request count outside any lock.
func (r *MentorRepository) CountAccepted(ctx context.Context, mentorAccountID string) (int, error) {
	return countAccepted(ctx, r.db, mentorAccountID)
}

func (r *MentorRepository) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func lockMentorByAccount(ctx context.Context, tx *sqlx.Tx, accountID string) (*models.MentorProfile, error) {
	query := `SELECT ` + mentorColumns + ` FROM mentor_profiles WHERE account_id = $1 FOR UPDATE`
	var profile models.MentorProfile
	if err := tx.GetContext(ctx, &profile, query, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock mentor profile: %w", err)
	}
	return &profile, nil
}

func countAccepted(ctx context.Context, q sqlx.QueryerContext, mentorAccountID string) (int, error) {
	const query = `SELECT COUNT(*) FROM mentorship_requests WHERE mentor_id = $1 AND status = 'accepted'`
	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, mentorAccountID); err != nil {
		return 0, fmt.Errorf("count accepted mentorships: %w", err)
	}
	return count, nil
}
