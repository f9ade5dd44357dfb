package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	"github.com/noah-isme/alumni-mentorship-api/pkg/config"
)

func fixedClock() time.Time {
	return time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func newTestRules() *ScoreRules {
	return NewScoreRules(config.VerificationConfig{}, fixedClock)
}

func TestStudentIDScore(t *testing.T) {
	rules := newTestRules()
	cases := map[string]int{
		"VIPS/TC/2021/123":  2,
		"vips/tc/2019/0456": 2,
		"VIPS-2021-77":      1,
		"vips tc 9":         1,
		"VIPS/TC/ABCD/123":  1,
		"VIPS":              0,
		"ABC/TC/2021/123":   0,
		"":                  0,
	}
	for id, want := range cases {
		assert.Equal(t, want, rules.StudentIDScore(id), id)
	}
}

func TestStudentIDScoreUsesConfiguredCodes(t *testing.T) {
	rules := NewScoreRules(config.VerificationConfig{OrganizationCode: "gu", DepartmentCode: "cse"}, fixedClock)
	assert.Equal(t, 2, rules.StudentIDScore("GU/CSE/2020/001"))
	assert.Equal(t, 0, rules.StudentIDScore("VIPS/TC/2020/001"))
}

func TestGraduationYearScore(t *testing.T) {
	rules := newTestRules()
	assert.Equal(t, 2, rules.GraduationYearScore(2026))
	assert.Equal(t, 2, rules.GraduationYearScore(2021))
	assert.Equal(t, 1, rules.GraduationYearScore(2020))
	assert.Equal(t, 1, rules.GraduationYearScore(2000))
	assert.Equal(t, 0, rules.GraduationYearScore(1999))
	assert.Equal(t, 0, rules.GraduationYearScore(2027))
}

func TestLinkedInScore(t *testing.T) {
	rules := newTestRules()
	assert.Equal(t, 2, rules.LinkedInScore("https://www.linkedin.com/in/jane-VIPS"))
	assert.Equal(t, 2, rules.LinkedInScore("https://linkedin.com/in/vivekananda-alum"))
	assert.Equal(t, 1, rules.LinkedInScore("https://linkedin.com/in/jane"))
	assert.Equal(t, 0, rules.LinkedInScore("https://github.com/vips"))
	assert.Equal(t, 0, rules.LinkedInScore(""))
}

func TestDocumentScore(t *testing.T) {
	rules := newTestRules()
	assert.Equal(t, 0, rules.DocumentScore(false, false))
	assert.Equal(t, 1, rules.DocumentScore(true, false))
	assert.Equal(t, 1, rules.DocumentScore(false, true))
	assert.Equal(t, 2, rules.DocumentScore(true, true))
}

func TestCalculateTotalIsSumOfParts(t *testing.T) {
	scorer := NewVerificationScorer(newTestRules(), 0)
	assert.Equal(t, DefaultAutoApprovalThreshold, scorer.Threshold())

	apps := []*models.RegistrationApplication{
		{StudentID: "VIPS/TC/2021/123", GraduationYear: 2022, LinkedInURL: "https://linkedin.com/in/jane-vips", HasCV: true, HasProofDocument: true},
		{StudentID: "VIPS-7", GraduationYear: 2010, LinkedInURL: "https://linkedin.com/in/john"},
		{StudentID: "unknown", GraduationYear: 1980},
	}
	wantTotals := []int{8, 3, 0}
	for i, app := range apps {
		b := scorer.Calculate(app)
		assert.Equal(t, b.StudentID+b.GraduationYear+b.LinkedIn+b.Documents, b.Total)
		assert.Equal(t, wantTotals[i], b.Total)
		for _, part := range []int{b.StudentID, b.GraduationYear, b.LinkedIn, b.Documents} {
			assert.GreaterOrEqual(t, part, 0)
			assert.LessOrEqual(t, part, 2)
		}
	}
}

func TestIsAutoApprovableThresholdEdge(t *testing.T) {
	assert.True(t, IsAutoApprovable(5, 5))
	assert.False(t, IsAutoApprovable(4, 5))
	assert.True(t, IsAutoApprovable(8, 5))
}

func TestScoreRulesWithOrganizationCode(t *testing.T) {
	rules := NewScoreRules(config.VerificationConfig{OrganizationCode: "ORG"}, fixedClock)
	assert.Equal(t, 2, rules.StudentIDScore("ORG/TC/2022/045"))
	assert.Equal(t, 1, rules.StudentIDScore("ORG123 random"))
	assert.Equal(t, 0, rules.StudentIDScore("nothing"))

	assert.Equal(t, 1, rules.GraduationYearScore(fixedClock().Year()-10))

	scorer := NewVerificationScorer(rules, 5)
	b := scorer.Calculate(&models.RegistrationApplication{
		StudentID:        "ORG/TC/2022/045",
		GraduationYear:   2022,
		LinkedInURL:      "https://linkedin.com/in/jane-vips",
		HasCV:            true,
		HasProofDocument: true,
	})
	assert.Equal(t, models.ScoreBreakdown{StudentID: 2, GraduationYear: 2, LinkedIn: 2, Documents: 2, Total: 8}, b)
	assert.True(t, IsAutoApprovable(b.Total, scorer.Threshold()))
}

func TestIsAutoApprovableIsMonotonic(t *testing.T) {
	for threshold := 0; threshold <= 8; threshold++ {
		for total := 0; total < 8; total++ {
			if IsAutoApprovable(total, threshold) {
				assert.True(t, IsAutoApprovable(total+1, threshold), "total %d threshold %d", total, threshold)
			}
		}
	}
}
