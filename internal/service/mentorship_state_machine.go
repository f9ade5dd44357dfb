package service

import (
	"time"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
)

type transitionRule struct {
	mentorOnly   bool
	requiresSlot bool
}

var mentorshipTransitions = map[models.MentorshipStatus]map[models.MentorshipStatus]transitionRule{
	models.MentorshipPending: {
		models.MentorshipAccepted:  {mentorOnly: true, requiresSlot: true},
		models.MentorshipRejected:  {mentorOnly: true},
		models.MentorshipCancelled: {},
	},
	models.MentorshipAccepted: {
		models.MentorshipCompleted: {},
		models.MentorshipCancelled: {},
	},
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
func CanTransition(from, to models.MentorshipStatus) bool {
	_, ok := mentorshipTransitions[from][to]
	return ok
}

// ApplyTransition computes the next state of a mentorship request. It never touches
// storage: mentor and accepted must come from the caller's locking transaction.
func ApplyTransition(current models.MentorshipRequest, actorID string, req dto.UpdateMentorshipStatusRequest, mentor *models.MentorProfile, accepted int, now time.Time) (*models.MentorshipRequest, error) {
	if !current.IsParticipant(actorID) {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "only the mentee or mentor can update this request")
	}

	rule, ok := mentorshipTransitions[current.Status][req.Status]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "cannot move request from "+string(current.Status)+" to "+string(req.Status)).
			WithDetails(map[string]interface{}{
				"current_status":   current.Status,
				"requested_status": req.Status,
			})
	}
	if rule.mentorOnly && actorID != current.MentorID {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "only the mentor can "+verbFor(req.Status)+" this request")
	}
	if rule.requiresSlot && !CanAccept(mentor, accepted) {
		details := map[string]interface{}{
			"current_status": current.Status,
			"accepted_count": accepted,
		}
		if mentor != nil {
			details["capacity"] = mentor.MentoringCapacity
		}
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "mentor cannot accept more mentees").WithDetails(details)
	}

	next := current
	at := now.UTC()
	next.Status = req.Status

	switch req.Status {
	case models.MentorshipAccepted:
		next.RespondedAt = &at
		if next.StartedAt == nil {
			next.StartedAt = &at
		}
		next.MentorResponse = req.MentorResponse
	case models.MentorshipRejected:
		next.RespondedAt = &at
		next.RejectionReason = req.RejectionReason
		if req.MentorResponse != "" {
			next.MentorResponse = req.MentorResponse
		}
	case models.MentorshipCompleted:
		next.CompletedAt = &at
		if req.MenteeRating != nil {
			rating := *req.MenteeRating
			next.MenteeRating = &rating
		}
		if req.MentorRating != nil {
			rating := *req.MentorRating
			next.MentorRating = &rating
		}
		if req.MenteeFeedback != "" {
			next.MenteeFeedback = req.MenteeFeedback
		}
		if req.MentorFeedback != "" {
			next.MentorFeedback = req.MentorFeedback
		}
	case models.MentorshipCancelled:
		if next.RespondedAt == nil {
			next.RespondedAt = &at
		}
	}
	return &next, nil
}

func verbFor(status models.MentorshipStatus) string {
	switch status {
	case models.MentorshipAccepted:
		return "accept"
	case models.MentorshipRejected:
		return "reject"
	default:
		return "update"
	}
}
