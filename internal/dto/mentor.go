package dto

import "github.com/noah-isme/alumni-mentorship-api/internal/models"

// ApplyMentorRequest creates the caller's mentor profile.
type ApplyMentorRequest struct {
	ExpertiseAreas    models.TagSet       `json:"expertise_areas" validate:"required,min=1"`
	YearsExperience   int                 `json:"years_experience" validate:"min=0,max=80"`
	CurrentCompany    string              `json:"current_company" validate:"omitempty,max=200"`
	CurrentPosition   string              `json:"current_position" validate:"omitempty,max=200"`
	MentoringCapacity *int                `json:"mentoring_capacity" validate:"omitempty,min=0,max=50"`
	Availability      models.Availability `json:"availability"`
	Bio               string              `json:"bio"`
	LinkedInURL       string              `json:"linkedin_url" validate:"omitempty,url"`
	GithubURL         string              `json:"github_url" validate:"omitempty,url"`
	PortfolioURL      string              `json:"portfolio_url" validate:"omitempty,url"`
}

// SetMentorActiveRequest toggles whether a mentor takes new mentees.
type SetMentorActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// MentorQuery filters the mentor directory.
type MentorQuery struct {
	Expertise string
}

// MentorDetail is a profile with its live capacity figures.
type MentorDetail struct {
	models.MentorProfile
	CurrentMentees int  `json:"current_mentees"`
	CanAccept      bool `json:"can_accept"`
}
