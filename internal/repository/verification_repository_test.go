package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

func verificationRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "email", "student_id", "graduation_year", "department", "linkedin_profile",
		"student_id_score", "graduation_year_score", "linkedin_score", "document_score", "total_score",
		"verification_status", "auto_approval_threshold", "application_id", "submission", "created_at", "updated_at"}).
		AddRow("ver-1", "jane@example.com", "VIPS/TC/2019/001", 2019, "Computer Science", "https://linkedin.com/in/jane",
			3, 2, 1, 1, 99, "manual_review", 5, "app-1", []byte(`{}`), now, now)
}

func TestVerificationRepositoryLatestByEmail(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM verification_scores WHERE LOWER(email) = LOWER($1) ORDER BY created_at DESC LIMIT 1")).
		WithArgs("Jane@Example.com").
		WillReturnRows(verificationRows())

	score, err := NewVerificationRepository(db).LatestByEmail(context.Background(), "Jane@Example.com")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationManualReview, score.Status)
	assert.Equal(t, 7, score.TotalScore, "total is recomputed from the sub-scores")
	require.NotNil(t, score.ApplicationID)
	assert.Equal(t, "app-1", *score.ApplicationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepositoryNotFound(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()

	repo := NewVerificationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM verification_scores WHERE application_id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err := repo.GetByApplication(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("FROM verification_scores WHERE LOWER(email)")).
		WillReturnError(errors.New("connection reset"))
	_, err = repo.LatestByEmail(context.Background(), "x@example.com")
	require.Error(t, err)
	assert.False(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepositoryRecord(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO verification_scores")).WillReturnResult(sqlmock.NewResult(1, 1))
	score := &models.VerificationScore{
		Email:          "race@example.com",
		StudentIDScore: 2,
		DocumentScore:  2,
		TotalScore:     99,
		Status:         models.VerificationPending,
	}
	require.NoError(t, NewVerificationRepository(db).Record(context.Background(), score))
	assert.NotEmpty(t, score.ID)
	assert.Equal(t, 4, score.TotalScore)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceVerificationRejectsBackwardMove(t *testing.T) {
	err := advanceVerificationByApplication(context.Background(), nil, "app-1", models.VerificationApproved, models.VerificationManualReview, time.Now())
	require.Error(t, err)
}

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).WillReturnResult(sqlmock.NewResult(1, 1))
	entry := &models.AuditLog{Action: models.AuditActionMentorApprove, Resource: "mentor_profile"}
	require.NoError(t, NewAuditRepository(db).CreateAuditLog(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
