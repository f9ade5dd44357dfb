package models

import "time"

// VerificationStatus tracks the outcome of alumni verification.
type VerificationStatus string

const (
	VerificationPending      VerificationStatus = "pending"
	VerificationAutoApproved VerificationStatus = "auto_approved"
	VerificationManualReview VerificationStatus = "manual_review"
	VerificationApproved     VerificationStatus = "approved"
	VerificationRejected     VerificationStatus = "rejected"
)

var verificationTransitions = map[VerificationStatus][]VerificationStatus{
	VerificationPending:      {VerificationAutoApproved, VerificationManualReview},
	VerificationManualReview: {VerificationApproved, VerificationRejected},
}

// CanTransitionTo reports whether moving to next keeps the status monotonic.
func (s VerificationStatus) CanTransitionTo(next VerificationStatus) bool {
	for _, allowed := range verificationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ScoreBreakdown holds the four verification sub-scores and their sum.
type ScoreBreakdown struct {
	StudentID      int `json:"student_id_score"`
	GraduationYear int `json:"graduation_year_score"`
	LinkedIn       int `json:"linkedin_score"`
	Documents      int `json:"document_score"`
	Total          int `json:"total_score"`
}

// VerificationScore is the persisted scoring record for one submission.
type VerificationScore struct {
	ID                    string             `db:"id" json:"id"`
	Email                 string             `db:"email" json:"email"`
	StudentID             string             `db:"student_id" json:"student_id"`
	GraduationYear        int                `db:"graduation_year" json:"graduation_year"`
	Department            string             `db:"department" json:"department"`
	LinkedInProfile       string             `db:"linkedin_profile" json:"linkedin_profile"`
	StudentIDScore        int                `db:"student_id_score" json:"student_id_score"`
	GraduationYearScore   int                `db:"graduation_year_score" json:"graduation_year_score"`
	LinkedInScore         int                `db:"linkedin_score" json:"linkedin_score"`
	DocumentScore         int                `db:"document_score" json:"document_score"`
	TotalScore            int                `db:"total_score" json:"total_score"`
	Status                VerificationStatus `db:"verification_status" json:"verification_status"`
	AutoApprovalThreshold int                `db:"auto_approval_threshold" json:"auto_approval_threshold"`
	ApplicationID         *string            `db:"application_id" json:"application_id,omitempty"`
	Submission            []byte             `db:"submission" json:"-"`
	CreatedAt             time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time          `db:"updated_at" json:"updated_at"`
}

// ApplyBreakdown copies sub-scores and recomputes the total from them.
func (v *VerificationScore) ApplyBreakdown(b ScoreBreakdown) {
	v.StudentIDScore = b.StudentID
	v.GraduationYearScore = b.GraduationYear
	v.LinkedInScore = b.LinkedIn
	v.DocumentScore = b.Documents
	v.TotalScore = v.StudentIDScore + v.GraduationYearScore + v.LinkedInScore + v.DocumentScore
}

// Breakdown returns the sub-scores with a freshly computed total.
func (v *VerificationScore) Breakdown() ScoreBreakdown {
	b := ScoreBreakdown{
		StudentID:      v.StudentIDScore,
		GraduationYear: v.GraduationYearScore,
		LinkedIn:       v.LinkedInScore,
		Documents:      v.DocumentScore,
	}
	b.Total = b.StudentID + b.GraduationYear + b.LinkedIn + b.Documents
	return b
}
