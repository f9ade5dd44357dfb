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

const (
	accountEmailConstraint    = "accounts_email_key"
	accountUsernameConstraint = "accounts_username_key"
)

// AccountRepository stores accounts, their role set and alumni profiles.
type AccountRepository struct {
	db *sqlx.DB
	tx *database.TxRunner
}

// NewAccountRepository constructs the repository. A nil runner uses the defaults.
func NewAccountRepository(db *sqlx.DB, runner *database.TxRunner) *AccountRepository {
	if runner == nil {
		runner = database.NewTxRunner(db)
	}
	return &AccountRepository{db: db, tx: runner}
}

// ExistsByEmail reports whether an account is registered for email, ignoring case.
func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM accounts WHERE LOWER(email) = LOWER($1))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check account email: %w", err)
	}
	return exists, nil
}

// ProvisionParams describes everything created when an alumnus is admitted.
type ProvisionParams struct {
	Account *models.Account
	Profile *models.AlumniProfile
	// RoleName is assigned when it resolves; RequireRole turns a missing role into ErrRoleNotFound.
	RoleName    string
	RequireRole bool
	// ApplicationID marks a filed application approved and moves its verification record to approved.
	ApplicationID string
	DecidedBy     string
	// Verification is inserted as-is when ApplicationID is empty.
	Verification *models.VerificationScore
}

// ProvisionResult reports what was persisted.
type ProvisionResult struct {
	Account *models.Account
	Role    *models.Role
}

// Provision creates the account, its role, its profile and the decision records in one transaction.
func (r *AccountRepository) Provision(ctx context.Context, params ProvisionParams) (*ProvisionResult, error) {
	if params.Account == nil || params.Profile == nil {
		return nil, fmt.Errorf("provision account: account and profile are required")
	}
	now := time.Now().UTC()
	account := params.Account
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Username == "" {
		account.Username = account.Email
	}
	account.CreatedAt = now
	account.UpdatedAt = now
	profile := params.Profile
	profile.AccountID = account.ID
	profile.CreatedAt = now
	profile.UpdatedAt = now

	var role *models.Role
	err := r.tx.Run(ctx, func(tx *sqlx.Tx) error {
		role = nil
		const insertAccount = `INSERT INTO accounts (id, username, email, password_hash, first_name, last_name, active, created_at, updated_at)
VALUES (:id, :username, :email, :password_hash, :first_name, :last_name, :active, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insertAccount, account); err != nil {
			if database.IsUniqueViolation(err, accountEmailConstraint, accountUsernameConstraint) {
				return ErrEmailTaken
			}
			return fmt.Errorf("insert account: %w", err)
		}

		if params.RoleName != "" {
			found, err := findRoleByName(ctx, tx, params.RoleName)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				if params.RequireRole {
					return ErrRoleNotFound
				}
			case err != nil:
				return err
			default:
				const assign = `INSERT INTO account_roles (account_id, role_id, granted_at) VALUES ($1, $2, $3)`
				if _, err := tx.ExecContext(ctx, assign, account.ID, found.ID, now); err != nil {
					return fmt.Errorf("assign role: %w", err)
				}
				role = found
			}
		}

		const insertProfile = `INSERT INTO alumni_profiles
(account_id, first_name, last_name, email, phone, address, graduation_year, batch, department, student_id,
 current_company, current_position, experience, skills, interests, achievements,
 facebook_url, twitter_url, linkedin_url, instagram_url, description, created_at, updated_at)
VALUES (:account_id, :first_name, :last_name, :email, :phone, :address, :graduation_year, :batch, :department, :student_id,
 :current_company, :current_position, :experience, :skills, :interests, :achievements,
 :facebook_url, :twitter_url, :linkedin_url, :instagram_url, :description, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insertProfile, profile); err != nil {
			return fmt.Errorf("insert alumni profile: %w", err)
		}

		if params.ApplicationID != "" {
			if err := decideApplication(ctx, tx, params.ApplicationID, true, nil, params.DecidedBy, now); err != nil {
				return err
			}
			return advanceVerificationByApplication(ctx, tx, params.ApplicationID, models.VerificationManualReview, models.VerificationApproved, now)
		}
		if params.Verification != nil {
			return insertVerification(ctx, tx, params.Verification)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ProvisionResult{Account: account, Role: role}, nil
}

func findRoleByName(ctx context.Context, q sqlx.QueryerContext, name string) (*models.Role, error) {
	const query = `SELECT id, name, description, created_at FROM roles WHERE LOWER(name) = LOWER($1)`
	var role models.Role
	if err := sqlx.GetContext(ctx, q, &role, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find role %s: %w", name, err)
	}
	return &role, nil
}
