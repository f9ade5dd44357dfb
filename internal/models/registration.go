package models

import "time"

// RegistrationApplication is an alumni sign-up awaiting administrator review.
// IsApproved is nil until a decision is made.
type RegistrationApplication struct {
	ID               string     `db:"id" json:"id"`
	FirstName        string     `db:"first_name" json:"first_name"`
	LastName         string     `db:"last_name" json:"last_name"`
	Email            string     `db:"email" json:"email"`
	Phone            string     `db:"phone" json:"phone"`
	Address          string     `db:"address" json:"address"`
	GraduationYear   int        `db:"graduation_year" json:"graduation_year"`
	Batch            string     `db:"batch" json:"batch"`
	Department       string     `db:"department" json:"department"`
	StudentID        string     `db:"student_id" json:"student_id"`
	CurrentCompany   string     `db:"current_company" json:"current_company"`
	CurrentPosition  string     `db:"current_position" json:"current_position"`
	Experience       int        `db:"experience" json:"experience"`
	Skills           TagSet     `db:"skills" json:"skills"`
	Interests        TagSet     `db:"interests" json:"interests"`
	Achievements     string     `db:"achievements" json:"achievements"`
	FacebookURL      string     `db:"facebook_url" json:"facebook_url"`
	TwitterURL       string     `db:"twitter_url" json:"twitter_url"`
	LinkedInURL      string     `db:"linkedin_url" json:"linkedin_url"`
	InstagramURL     string     `db:"instagram_url" json:"instagram_url"`
	HasCV            bool       `db:"has_cv" json:"has_cv"`
	HasProofDocument bool       `db:"has_proof_document" json:"has_proof_document"`
	IsApproved       *bool      `db:"is_approved" json:"is_approved"`
	RejectionReason  *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	DecidedBy        *string    `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt        *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Decided reports whether the application was approved or rejected.
func (a *RegistrationApplication) Decided() bool {
	return a != nil && a.IsApproved != nil
}

// AlumniProfile holds the alumni details copied from a registration.
type AlumniProfile struct {
	AccountID       string    `db:"account_id" json:"account_id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	Email           string    `db:"email" json:"email"`
	Phone           string    `db:"phone" json:"phone"`
	Address         string    `db:"address" json:"address"`
	GraduationYear  int       `db:"graduation_year" json:"graduation_year"`
	Batch           string    `db:"batch" json:"batch"`
	Department      string    `db:"department" json:"department"`
	StudentID       string    `db:"student_id" json:"student_id"`
	CurrentCompany  string    `db:"current_company" json:"current_company"`
	CurrentPosition string    `db:"current_position" json:"current_position"`
	Experience      int       `db:"experience" json:"experience"`
	Skills          TagSet    `db:"skills" json:"skills"`
	Interests       TagSet    `db:"interests" json:"interests"`
	Achievements    string    `db:"achievements" json:"achievements"`
	FacebookURL     string    `db:"facebook_url" json:"facebook_url"`
	TwitterURL      string    `db:"twitter_url" json:"twitter_url"`
	LinkedInURL     string    `db:"linkedin_url" json:"linkedin_url"`
	InstagramURL    string    `db:"instagram_url" json:"instagram_url"`
	Description     string    `db:"description" json:"description"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ProfileFromApplication copies every submitted field 1:1 onto a profile.
func ProfileFromApplication(app *RegistrationApplication) *AlumniProfile {
	return &AlumniProfile{
		FirstName:       app.FirstName,
		LastName:        app.LastName,
		Email:           app.Email,
		Phone:           app.Phone,
		Address:         app.Address,
		GraduationYear:  app.GraduationYear,
		Batch:           app.Batch,
		Department:      app.Department,
		StudentID:       app.StudentID,
		CurrentCompany:  app.CurrentCompany,
		CurrentPosition: app.CurrentPosition,
		Experience:      app.Experience,
		Skills:          append(TagSet(nil), app.Skills...),
		Interests:       append(TagSet(nil), app.Interests...),
		Achievements:    app.Achievements,
		FacebookURL:     app.FacebookURL,
		TwitterURL:      app.TwitterURL,
		LinkedInURL:     app.LinkedInURL,
		InstagramURL:    app.InstagramURL,
	}
}
