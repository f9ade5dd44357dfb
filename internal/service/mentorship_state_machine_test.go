package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
)

const (
	menteeID = "11111111-1111-1111-1111-111111111111"
	mentorID = "22222222-2222-2222-2222-222222222222"
	outsider = "33333333-3333-3333-3333-333333333333"
)

func openMentor(capacity int) *models.MentorProfile {
	return &models.MentorProfile{ID: "mp-1", AccountID: mentorID, MentoringCapacity: capacity, IsApproved: true, IsActive: true}
}

func requestIn(status models.MentorshipStatus) models.MentorshipRequest {
	return models.MentorshipRequest{ID: "req-1", MenteeID: menteeID, MentorID: mentorID, Status: status}
}

func TestApplyTransitionTable(t *testing.T) {
	now := fixedClock()
	cases := []struct {
		name    string
		from    models.MentorshipStatus
		to      models.MentorshipStatus
		actor   string
		wantErr *appErrors.Error
	}{
		{"mentor accepts", models.MentorshipPending, models.MentorshipAccepted, mentorID, nil},
		{"mentee cannot accept", models.MentorshipPending, models.MentorshipAccepted, menteeID, appErrors.ErrPermissionDenied},
		{"mentor rejects", models.MentorshipPending, models.MentorshipRejected, mentorID, nil},
		{"mentee cannot reject", models.MentorshipPending, models.MentorshipRejected, menteeID, appErrors.ErrPermissionDenied},
		{"mentee cancels pending", models.MentorshipPending, models.MentorshipCancelled, menteeID, nil},
		{"mentor cancels accepted", models.MentorshipAccepted, models.MentorshipCancelled, mentorID, nil},
		{"mentee completes", models.MentorshipAccepted, models.MentorshipCompleted, menteeID, nil},
		{"mentor completes", models.MentorshipAccepted, models.MentorshipCompleted, mentorID, nil},
		{"pending cannot complete", models.MentorshipPending, models.MentorshipCompleted, mentorID, appErrors.ErrInvalidTransition},
		{"accepted cannot accept", models.MentorshipAccepted, models.MentorshipAccepted, mentorID, appErrors.ErrInvalidTransition},
		{"accepted cannot reject", models.MentorshipAccepted, models.MentorshipRejected, mentorID, appErrors.ErrInvalidTransition},
		{"rejected is terminal", models.MentorshipRejected, models.MentorshipAccepted, mentorID, appErrors.ErrInvalidTransition},
		{"completed is terminal", models.MentorshipCompleted, models.MentorshipCancelled, menteeID, appErrors.ErrInvalidTransition},
		{"cancelled is terminal", models.MentorshipCancelled, models.MentorshipAccepted, mentorID, appErrors.ErrInvalidTransition},
		{"outsider denied", models.MentorshipPending, models.MentorshipCancelled, outsider, appErrors.ErrPermissionDenied},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := ApplyTransition(requestIn(tc.from), tc.actor, dto.UpdateMentorshipStatusRequest{Status: tc.to}, openMentor(3), 0, now)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr), err.Error())
				assert.Nil(t, next)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, next.Status)
			if tc.from == models.MentorshipPending {
				assert.NotNil(t, next.RespondedAt)
			}
		})
	}
}

func TestApplyTransitionAcceptStampsTimes(t *testing.T) {
	now := fixedClock()
	next, err := ApplyTransition(requestIn(models.MentorshipPending), mentorID,
		dto.UpdateMentorshipStatusRequest{Status: models.MentorshipAccepted, MentorResponse: "happy to help"}, openMentor(1), 0, now)
	require.NoError(t, err)
	require.NotNil(t, next.RespondedAt)
	require.NotNil(t, next.StartedAt)
	assert.True(t, next.RespondedAt.Equal(now))
	assert.True(t, next.StartedAt.Equal(now))
	assert.Equal(t, "happy to help", next.MentorResponse)
	assert.Nil(t, next.CompletedAt)
}

func TestApplyTransitionCapacityExceeded(t *testing.T) {
	_, err := ApplyTransition(requestIn(models.MentorshipPending), mentorID,
		dto.UpdateMentorshipStatusRequest{Status: models.MentorshipAccepted}, openMentor(2), 2, fixedClock())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErr.Code)
	assert.Equal(t, models.MentorshipPending, appErr.Details["current_status"])
	assert.Equal(t, 2, appErr.Details["capacity"])
	assert.Equal(t, 2, appErr.Details["accepted_count"])
}

func TestApplyTransitionAcceptRequiresActiveApprovedMentor(t *testing.T) {
	inactive := openMentor(5)
	inactive.IsActive = false
	_, err := ApplyTransition(requestIn(models.MentorshipPending), mentorID,
		dto.UpdateMentorshipStatusRequest{Status: models.MentorshipAccepted}, inactive, 0, fixedClock())
	assert.True(t, errors.Is(err, appErrors.ErrCapacityExceeded))

	_, err = ApplyTransition(requestIn(models.MentorshipPending), mentorID,
		dto.UpdateMentorshipStatusRequest{Status: models.MentorshipAccepted}, nil, 0, fixedClock())
	assert.True(t, errors.Is(err, appErrors.ErrCapacityExceeded))
}

func TestApplyTransitionRejectRecordsReason(t *testing.T) {
	next, err := ApplyTransition(requestIn(models.MentorshipPending), mentorID,
		dto.UpdateMentorshipStatusRequest{Status: models.MentorshipRejected, RejectionReason: "fully booked"}, openMentor(0), 0, fixedClock())
	require.NoError(t, err)
	assert.Equal(t, "fully booked", next.RejectionReason)
	assert.NotNil(t, next.RespondedAt)
	assert.Nil(t, next.StartedAt)
}

func TestApplyTransitionCompleteKeepsProgressAndStoresRatings(t *testing.T) {
	current := requestIn(models.MentorshipAccepted)
	started := fixedClock().Add(-72 * time.Hour)
	current.RespondedAt = &started
	current.StartedAt = &started
	current.ProgressPercentage = 40

	menteeRating, mentorRating := 5, 4
	next, err := ApplyTransition(current, menteeID, dto.UpdateMentorshipStatusRequest{
		Status:         models.MentorshipCompleted,
		MenteeRating:   &menteeRating,
		MentorRating:   &mentorRating,
		MenteeFeedback: "great",
	}, openMentor(1), 1, fixedClock())
	require.NoError(t, err)
	require.NotNil(t, next.CompletedAt)
	assert.Equal(t, 40, next.ProgressPercentage)
	assert.Equal(t, 5, *next.MenteeRating)
	assert.Equal(t, 4, *next.MentorRating)
	assert.Equal(t, "great", next.MenteeFeedback)
	assert.True(t, next.StartedAt.Equal(started))

	menteeRating = 1
	assert.Equal(t, 5, *next.MenteeRating)
}

func TestApplyTransitionCancelPendingStampsResponse(t *testing.T) {
	next, err := ApplyTransition(requestIn(models.MentorshipPending), menteeID,
		dto.UpdateMentorshipStatusRequest{Status: models.MentorshipCancelled}, openMentor(1), 0, fixedClock())
	require.NoError(t, err)
	assert.NotNil(t, next.RespondedAt)
	assert.Nil(t, next.StartedAt)
}

func TestApplyTransitionDoesNotMutateInput(t *testing.T) {
	current := requestIn(models.MentorshipPending)
	_, err := ApplyTransition(current, mentorID, dto.UpdateMentorshipStatusRequest{Status: models.MentorshipAccepted}, openMentor(1), 0, fixedClock())
	require.NoError(t, err)
	assert.Equal(t, models.MentorshipPending, current.Status)
	assert.Nil(t, current.RespondedAt)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.MentorshipPending, models.MentorshipAccepted))
	assert.True(t, CanTransition(models.MentorshipAccepted, models.MentorshipCompleted))
	assert.False(t, CanTransition(models.MentorshipCompleted, models.MentorshipAccepted))
	assert.False(t, CanTransition(models.MentorshipPending, models.MentorshipPending))
}
