package service

import (
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

// DefaultAutoApprovalThreshold is used when configuration leaves the threshold unset.
const DefaultAutoApprovalThreshold = 5

// VerificationScorer combines the sub-scores into a breakdown and decides auto-approval.
type VerificationScorer struct {
	rules     *ScoreRules
	threshold int
}

// NewVerificationScorer constructs a scorer; non-positive thresholds fall back to the default.
func NewVerificationScorer(rules *ScoreRules, threshold int) *VerificationScorer {
	if threshold <= 0 {
		threshold = DefaultAutoApprovalThreshold
	}
	return &VerificationScorer{rules: rules, threshold: threshold}
}

// Threshold returns the global auto-approval threshold.
func (s *VerificationScorer) Threshold() int {
	return s.threshold
}

// Calculate scores an application. Total is always the sum of the four sub-scores.
func (s *VerificationScorer) Calculate(app *models.RegistrationApplication) models.ScoreBreakdown {
	b := models.ScoreBreakdown{
		StudentID:      s.rules.StudentIDScore(app.StudentID),
		GraduationYear: s.rules.GraduationYearScore(app.GraduationYear),
		LinkedIn:       s.rules.LinkedInScore(app.LinkedInURL),
		Documents:      s.rules.DocumentScore(app.HasCV, app.HasProofDocument),
	}
	b.Total = b.StudentID + b.GraduationYear + b.LinkedIn + b.Documents
	return b
}

// IsAutoApprovable reports whether total meets threshold.
func IsAutoApprovable(total, threshold int) bool {
	return total >= threshold
}
