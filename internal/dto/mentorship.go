package dto

import (
	"time"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

// CreateMentorshipRequest is submitted by a mentee.
type CreateMentorshipRequest struct {
	MentorID               string                         `json:"mentor_id" validate:"required,uuid"`
	Goals                  string                         `json:"goals" validate:"required,max=2000"`
	DurationMonths         int                            `json:"duration_months" validate:"omitempty,min=1,max=24"`
	PreferredCommunication models.CommunicationPreference `json:"preferred_communication" validate:"omitempty,oneof=video_calls messaging in_person mixed"`
}

// UpdateMentorshipStatusRequest moves a request through its lifecycle.
type UpdateMentorshipStatusRequest struct {
	Status          models.MentorshipStatus `json:"status" validate:"required,oneof=accepted rejected completed cancelled"`
	MentorResponse  string                  `json:"mentor_response" validate:"omitempty,max=2000"`
	RejectionReason string                  `json:"rejection_reason" validate:"omitempty,max=2000"`
	MenteeRating    *int                    `json:"mentee_rating" validate:"omitempty,min=1,max=5"`
	MentorRating    *int                    `json:"mentor_rating" validate:"omitempty,min=1,max=5"`
	MenteeFeedback  string                  `json:"mentee_feedback"`
	MentorFeedback  string                  `json:"mentor_feedback"`
}

// UpdateProgressRequest records how far an accepted mentorship has come.
type UpdateProgressRequest struct {
	ProgressPercentage *int `json:"progress_percentage" validate:"required,min=0,max=100"`
}

// MentorshipQuery scopes the caller's request listing.
type MentorshipQuery struct {
	// As is mentee, mentor or empty for both.
	As     string                    `validate:"omitempty,oneof=mentee mentor"`
	Status []models.MentorshipStatus
	Limit  int
	Offset int
}

// CreateSessionRequest schedules a mentorship session.
type CreateSessionRequest struct {
	SessionDate     time.Time          `json:"session_date" validate:"required"`
	DurationMinutes int                `json:"duration_minutes" validate:"omitempty,min=1,max=480"`
	SessionType     models.SessionType `json:"session_type" validate:"omitempty,oneof=video_call phone_call in_person messaging email"`
	Agenda          string             `json:"agenda"`
	MeetingLink     string             `json:"meeting_link" validate:"omitempty,url"`
	Location        string             `json:"location" validate:"omitempty,max=200"`
	ActionItems     models.TagSet      `json:"action_items"`
}

// CompleteSessionRequest closes a session with optional notes.
type CompleteSessionRequest struct {
	Notes       string        `json:"notes"`
	ActionItems models.TagSet `json:"action_items"`
}

// CancelSessionRequest cancels a session; a reason is mandatory.
type CancelSessionRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}
