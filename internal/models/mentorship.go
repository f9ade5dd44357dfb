package models

import "time"

// MentorProfile describes an account offering mentorship.
type MentorProfile struct {
	ID                string       `db:"id" json:"id"`
	AccountID         string       `db:"account_id" json:"account_id"`
	ExpertiseAreas    TagSet       `db:"expertise_areas" json:"expertise_areas"`
	YearsExperience   int          `db:"years_experience" json:"years_experience"`
	CurrentCompany    string       `db:"current_company" json:"current_company"`
	CurrentPosition   string       `db:"current_position" json:"current_position"`
	MentoringCapacity int          `db:"mentoring_capacity" json:"mentoring_capacity"`
	Availability      Availability `db:"availability" json:"availability"`
	Bio               string       `db:"bio" json:"bio"`
	LinkedInURL       string       `db:"linkedin_url" json:"linkedin_url"`
	GithubURL         string       `db:"github_url" json:"github_url"`
	PortfolioURL      string       `db:"portfolio_url" json:"portfolio_url"`
	IsApproved        bool         `db:"is_approved" json:"is_approved"`
	IsActive          bool         `db:"is_active" json:"is_active"`
	ApprovalDate      *time.Time   `db:"approval_date" json:"approval_date,omitempty"`
	RejectionReason   *string      `db:"rejection_reason" json:"rejection_reason,omitempty"`
	AverageRating     float64      `db:"average_rating" json:"average_rating"`
	TotalMentorships  int          `db:"total_mentorships" json:"total_mentorships"`
	CreatedAt         time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at" json:"updated_at"`
}

// MentorshipStatus is the lifecycle state of a mentorship request.
type MentorshipStatus string

const (
	MentorshipPending   MentorshipStatus = "pending"
	MentorshipAccepted  MentorshipStatus = "accepted"
	MentorshipRejected  MentorshipStatus = "rejected"
	MentorshipCompleted MentorshipStatus = "completed"
	MentorshipCancelled MentorshipStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s MentorshipStatus) Valid() bool {
	switch s {
	case MentorshipPending, MentorshipAccepted, MentorshipRejected, MentorshipCompleted, MentorshipCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s MentorshipStatus) Terminal() bool {
	return s == MentorshipRejected || s == MentorshipCompleted || s == MentorshipCancelled
}

// CommunicationPreference is how mentor and mentee prefer to meet.
type CommunicationPreference string

const (
	CommunicationVideoCalls CommunicationPreference = "video_calls"
	CommunicationMessaging  CommunicationPreference = "messaging"
	CommunicationInPerson   CommunicationPreference = "in_person"
	CommunicationMixed      CommunicationPreference = "mixed"
)

// MentorshipRequest links a mentee to a mentor account.
type MentorshipRequest struct {
	ID                     string                  `db:"id" json:"id"`
	MenteeID               string                  `db:"mentee_id" json:"mentee_id"`
	MentorID               string                  `db:"mentor_id" json:"mentor_id"`
	Goals                  string                  `db:"goals" json:"goals"`
	DurationMonths         int                     `db:"duration_months" json:"duration_months"`
	PreferredCommunication CommunicationPreference `db:"preferred_communication" json:"preferred_communication"`
	Status                 MentorshipStatus        `db:"status" json:"status"`
	RequestedAt            time.Time               `db:"requested_at" json:"requested_at"`
	RespondedAt            *time.Time              `db:"responded_at" json:"responded_at,omitempty"`
	StartedAt              *time.Time              `db:"started_at" json:"started_at,omitempty"`
	CompletedAt            *time.Time              `db:"completed_at" json:"completed_at,omitempty"`
	MentorResponse         string                  `db:"mentor_response" json:"mentor_response"`
	RejectionReason        string                  `db:"rejection_reason" json:"rejection_reason"`
	ProgressPercentage     int                     `db:"progress_percentage" json:"progress_percentage"`
	MenteeRating           *int                    `db:"mentee_rating" json:"mentee_rating,omitempty"`
	MentorRating           *int                    `db:"mentor_rating" json:"mentor_rating,omitempty"`
	MenteeFeedback         string                  `db:"mentee_feedback" json:"mentee_feedback"`
	MentorFeedback         string                  `db:"mentor_feedback" json:"mentor_feedback"`
	UpdatedAt              time.Time               `db:"updated_at" json:"updated_at"`
}

// IsParticipant reports whether accountID is the mentee or the mentor.
func (r *MentorshipRequest) IsParticipant(accountID string) bool {
	return r != nil && accountID != "" && (r.MenteeID == accountID || r.MentorID == accountID)
}

// MentorshipFilter scopes request listings.
type MentorshipFilter struct {
	MenteeID string
	MentorID string
	// AccountID matches requests where the account is either party.
	AccountID string
	Status    []MentorshipStatus
	Limit     int
	Offset    int
}

// SessionType is the medium of a mentorship session.
type SessionType string

const (
	SessionVideoCall SessionType = "video_call"
	SessionPhoneCall SessionType = "phone_call"
	SessionInPerson  SessionType = "in_person"
	SessionMessaging SessionType = "messaging"
	SessionEmail     SessionType = "email"
)

// MentorshipSession is a scheduled meeting under a mentorship.
type MentorshipSession struct {
	ID                 string      `db:"id" json:"id"`
	MentorshipID       string      `db:"mentorship_id" json:"mentorship_id"`
	SessionDate        time.Time   `db:"session_date" json:"session_date"`
	DurationMinutes    int         `db:"duration_minutes" json:"duration_minutes"`
	SessionType        SessionType `db:"session_type" json:"session_type"`
	Agenda             string      `db:"agenda" json:"agenda"`
	Notes              string      `db:"notes" json:"notes"`
	ActionItems        TagSet      `db:"action_items" json:"action_items"`
	Completed          bool        `db:"completed" json:"completed"`
	Cancelled          bool        `db:"cancelled" json:"cancelled"`
	CancellationReason string      `db:"cancellation_reason" json:"cancellation_reason"`
	MeetingLink        string      `db:"meeting_link" json:"meeting_link"`
	Location           string      `db:"location" json:"location"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at" json:"updated_at"`
}
