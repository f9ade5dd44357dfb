package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

var registrationColumnNames = []string{
	"id", "first_name", "last_name", "email", "phone", "address", "graduation_year", "batch", "department", "student_id",
	"current_company", "current_position", "experience", "skills", "interests", "achievements",
	"facebook_url", "twitter_url", "linkedin_url", "instagram_url", "has_cv", "has_proof_document",
	"is_approved", "rejection_reason", "decided_by", "decided_at", "created_at", "updated_at",
}

func registrationRow(rows *sqlmock.Rows, id string, approved interface{}) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "Asha", "Rao", "asha@example.com", "", "", 2022, "2018", "TC", "VIPS/TC/2018/123",
		"", "", 2, "{Go,SQL}", "{}", "",
		"", "", "", "", true, false,
		approved, nil, nil, nil, now, now)
}

func TestRegistrationRepositoryFileLinksVerification(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()

	app := &models.RegistrationApplication{FirstName: "Asha", LastName: "Rao", Email: "asha@example.com", GraduationYear: 2010}
	score := &models.VerificationScore{Email: app.Email, StudentIDScore: 1, GraduationYearScore: 1, Status: models.VerificationManualReview}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registration_requests")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO verification_scores")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := NewRegistrationRepository(db, noRetryRunner(db))
	require.NoError(t, repo.File(context.Background(), app, score))
	require.NotEmpty(t, app.ID)
	require.NotNil(t, score.ApplicationID)
	assert.Equal(t, app.ID, *score.ApplicationID)
	assert.Equal(t, 2, score.TotalScore)
	assert.Nil(t, app.IsApproved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryFileRollsBackOnScoreFailure(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registration_requests")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO verification_scores")).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	repo := NewRegistrationRepository(db, noRetryRunner(db))
	err := repo.File(context.Background(), &models.RegistrationApplication{Email: "a@example.com"}, &models.VerificationScore{})
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryGetAndListPending(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM registration_requests WHERE id = $1")).
		WithArgs("app-1").
		WillReturnRows(registrationRow(sqlmock.NewRows(registrationColumnNames), "app-1", nil))

	app, err := repo.GetByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.False(t, app.Decided())
	assert.Equal(t, models.TagSet{"Go", "SQL"}, app.Skills)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_approved IS NULL ORDER BY created_at ASC LIMIT $1 OFFSET $2")).
		WithArgs(50, 0).
		WillReturnRows(registrationRow(sqlmock.NewRows(registrationColumnNames), "app-2", nil))

	list, err := repo.ListPending(context.Background(), 0, -1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "app-2", list[0].ID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM registration_requests WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(registrationColumnNames))
	_, err = repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryReject(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()

	repo := NewRegistrationRepository(db, noRetryRunner(db))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE registration_requests")).
		WithArgs("app-1", false, "incomplete", "admin-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE verification_scores")).
		WithArgs("app-1", models.VerificationManualReview, models.VerificationRejected, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Reject(context.Background(), "app-1", "incomplete", "admin-1"))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE registration_requests")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	err := repo.Reject(context.Background(), "app-1", "again", "admin-1")
	require.ErrorIs(t, err, ErrAlreadyDecided)
	require.NoError(t, mock.ExpectationsWereMet())
}
