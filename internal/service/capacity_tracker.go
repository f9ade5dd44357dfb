package service

import (
	"context"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

type acceptedCounter interface {
	CountAccepted(ctx context.Context, mentorAccountID string) (int, error)
}

// CapacityTracker answers how many mentees a mentor currently has and whether one more fits.
// Decisions that change state use counts taken inside the locking transaction; this
// tracker's own count is for display only.
type CapacityTracker struct {
	counter acceptedCounter
}

// NewCapacityTracker constructs the tracker.
func NewCapacityTracker(counter acceptedCounter) *CapacityTracker {
	return &CapacityTracker{counter: counter}
}

// CurrentMenteeCount returns the number of accepted requests for the mentor account.
func (t *CapacityTracker) CurrentMenteeCount(ctx context.Context, mentorAccountID string) (int, error) {
	return t.counter.CountAccepted(ctx, mentorAccountID)
}

// CanAccept reports whether an approved, active mentor has room for another mentee.
func CanAccept(profile *models.MentorProfile, currentMentees int) bool {
	if profile == nil {
		return false
	}
	return profile.IsApproved && profile.IsActive && currentMentees < profile.MentoringCapacity
}
