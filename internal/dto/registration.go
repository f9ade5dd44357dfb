package dto

import "github.com/noah-isme/alumni-mentorship-api/internal/models"

// SubmitRegistrationRequest is the alumni sign-up payload.
// Document fields only record presence; uploads are handled elsewhere.
type SubmitRegistrationRequest struct {
	FirstName        string        `json:"first_name" validate:"required,max=100"`
	LastName         string        `json:"last_name" validate:"required,max=100"`
	Email            string        `json:"email" validate:"required,email"`
	Phone            string        `json:"phone" validate:"omitempty,max=20"`
	Address          string        `json:"address"`
	GraduationYear   int           `json:"graduation_year" validate:"required,min=1900,max=2100"`
	Batch            string        `json:"batch" validate:"omitempty,max=20"`
	Department       string        `json:"department" validate:"required,max=100"`
	StudentID        string        `json:"student_id" validate:"omitempty,max=50"`
	CurrentCompany   string        `json:"current_company" validate:"omitempty,max=200"`
	CurrentPosition  string        `json:"current_position" validate:"omitempty,max=200"`
	Experience       int           `json:"experience" validate:"min=0"`
	Skills           models.TagSet `json:"skills"`
	Interests        models.TagSet `json:"interests"`
	Achievements     string        `json:"achievements"`
	FacebookURL      string        `json:"facebook_url" validate:"omitempty,url"`
	TwitterURL       string        `json:"twitter_url" validate:"omitempty,url"`
	LinkedInURL      string        `json:"linkedin_url" validate:"omitempty,url"`
	InstagramURL     string        `json:"instagram_url" validate:"omitempty,url"`
	HasCV            bool          `json:"has_cv"`
	HasProofDocument bool          `json:"has_proof_document"`
}

// ToApplication maps the payload onto an unsaved application.
func (r SubmitRegistrationRequest) ToApplication() *models.RegistrationApplication {
	return &models.RegistrationApplication{
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
		GraduationYear:   r.GraduationYear,
		Batch:            r.Batch,
		Department:       r.Department,
		StudentID:        r.StudentID,
		CurrentCompany:   r.CurrentCompany,
		CurrentPosition:  r.CurrentPosition,
		Experience:       r.Experience,
		Skills:           models.NewTagSet(r.Skills...),
		Interests:        models.NewTagSet(r.Interests...),
		Achievements:     r.Achievements,
		FacebookURL:      r.FacebookURL,
		TwitterURL:       r.TwitterURL,
		LinkedInURL:      r.LinkedInURL,
		InstagramURL:     r.InstagramURL,
		HasCV:            r.HasCV,
		HasProofDocument: r.HasProofDocument,
	}
}

// RejectRegistrationRequest carries the administrator's reason.
type RejectRegistrationRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// SubmissionOutcome is returned after a registration is scored.
type SubmissionOutcome struct {
	Status        models.VerificationStatus `json:"status"`
	Score         models.ScoreBreakdown     `json:"score"`
	Threshold     int                       `json:"threshold"`
	AccountID     string                    `json:"account_id,omitempty"`
	ApplicationID string                    `json:"application_id,omitempty"`
}

// ApprovalResult describes the account created for an approved application.
type ApprovalResult struct {
	Account       *models.Account `json:"account"`
	Role          string          `json:"role"`
	ApplicationID string          `json:"application_id"`
}

// RegistrationQuery paginates the manual review queue.
type RegistrationQuery struct {
	Limit  int
	Offset int
}
