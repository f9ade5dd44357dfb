package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/noah-isme/alumni-mentorship-api/pkg/config"
)

const (
	defaultOrganizationCode  = "VIPS"
	defaultDepartmentCode    = "TC"
	defaultMinGraduationYear = 2000
	defaultRecentYearsWindow = 5
)

// ScoreRules holds the four pure sub-score functions used for alumni verification.
// Every sub-score is in [0, 2].
type ScoreRules struct {
	studentIDPattern *regexp.Regexp
	orgToken         string
	institutions     []string
	minYear          int
	recentWindow     int
	now              func() time.Time
}

// NewScoreRules builds rules from configuration. now defaults to time.Now.
func NewScoreRules(cfg config.VerificationConfig, now func() time.Time) *ScoreRules {
	org := strings.ToUpper(strings.TrimSpace(cfg.OrganizationCode))
	if org == "" {
		org = defaultOrganizationCode
	}
	dept := strings.ToUpper(strings.TrimSpace(cfg.DepartmentCode))
	if dept == "" {
		dept = defaultDepartmentCode
	}
	institutions := make([]string, 0, len(cfg.InstitutionNames))
	for _, name := range cfg.InstitutionNames {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			institutions = append(institutions, name)
		}
	}
	if len(institutions) == 0 {
		institutions = []string{"vips", "vivekananda"}
	}
	minYear := cfg.MinGraduationYear
	if minYear <= 0 {
		minYear = defaultMinGraduationYear
	}
	window := cfg.RecentYearsWindow
	if window <= 0 {
		window = defaultRecentYearsWindow
	}
	if now == nil {
		now = time.Now
	}
	pattern := fmt.Sprintf(`^%s/%s/\d{4}/\d{3,4}$`, regexp.QuoteMeta(org), regexp.QuoteMeta(dept))
	return &ScoreRules{
		studentIDPattern: regexp.MustCompile(pattern),
		orgToken:         org,
		institutions:     institutions,
		minYear:          minYear,
		recentWindow:     window,
		now:              now,
	}
}

// StudentIDScore returns 2 for the canonical ORG/DEPT/YYYY/NNN format, 1 when the
// identifier mentions the organisation and contains a digit, otherwise 0.
func (r *ScoreRules) StudentIDScore(studentID string) int {
	upper := strings.ToUpper(strings.TrimSpace(studentID))
	if upper == "" {
		return 0
	}
	if r.studentIDPattern.MatchString(upper) {
		return 2
	}
	if strings.Contains(upper, r.orgToken) && strings.IndexFunc(upper, unicode.IsDigit) >= 0 {
		return 1
	}
	return 0
}

// GraduationYearScore returns 2 for recent graduates, 1 for older ones and 0 for
// years outside [minYear, current year].
func (r *ScoreRules) GraduationYearScore(year int) int {
	current := r.now().Year()
	if year < r.minYear || year > current {
		return 0
	}
	if current-year <= r.recentWindow {
		return 2
	}
	return 1
}

// LinkedInScore returns 1 for a LinkedIn URL and 2 when it also names the institution.
func (r *ScoreRules) LinkedInScore(profileURL string) int {
	lower := strings.ToLower(profileURL)
	if !strings.Contains(lower, "linkedin.com") {
		return 0
	}
	for _, name := range r.institutions {
		if strings.Contains(lower, name) {
			return 2
		}
	}
	return 1
}

// DocumentScore adds one point per supplied document.
func (r *ScoreRules) DocumentScore(hasCV, hasProof bool) int {
	score := 0
	if hasCV {
		score++
	}
	if hasProof {
		score++
	}
	return score
}
