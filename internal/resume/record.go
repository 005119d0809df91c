// Package resume holds the structured resume record and the deterministic
// rule-based field extractor used when AI providers cannot produce one.
package resume

import "strings"

// Sentinel values signal "field not found". They are real values, never
// null/absence, so downstream consumers do not special-case missing fields.
const (
	NameNotFound       = "Name not found"
	EmailNotFound      = "Email not found"
	PhoneNotFound      = "Phone not found"
	SkillsNotFound     = "Skills not found"
	ExperienceNotFound = "Experience not found"
	EducationNotFound  = "Education not found"
	SummaryNotFound    = "Summary not found"
)

// Entry length ceilings shared by both parsing paths.
const (
	maxEntryLength   = 200
	maxSummaryLength = 300
)

// Record is the normalized extraction target with exactly seven fields.
type Record struct {
	Name       string   `json:"name" mapstructure:"name"`
	Email      string   `json:"email" mapstructure:"email"`
	Phone      string   `json:"phone" mapstructure:"phone"`
	Skills     []string `json:"skills" mapstructure:"skills"`
	Experience []string `json:"experience" mapstructure:"experience"`
	Education  []string `json:"education" mapstructure:"education"`
	Summary    string   `json:"summary" mapstructure:"summary"`
}

// EmptyRecord returns a record with every field at its sentinel value.
func EmptyRecord() Record {
	return Record{
		Name:       NameNotFound,
		Email:      EmailNotFound,
		Phone:      PhoneNotFound,
		Skills:     []string{SkillsNotFound},
		Experience: []string{ExperienceNotFound},
		Education:  []string{EducationNotFound},
		Summary:    SummaryNotFound,
	}
}

// Clamp truncates free-text entries to their documented maximum lengths and
// fills empty fields with sentinels so the record is always fully populated.
func (r *Record) Clamp() {
	if strings.TrimSpace(r.Name) == "" {
		r.Name = NameNotFound
	}
	if strings.TrimSpace(r.Email) == "" {
		r.Email = EmailNotFound
	}
	if strings.TrimSpace(r.Phone) == "" {
		r.Phone = PhoneNotFound
	}

	if len(r.Skills) == 0 {
		r.Skills = []string{SkillsNotFound}
	}
	r.Experience = clampEntries(r.Experience, ExperienceNotFound)
	r.Education = clampEntries(r.Education, EducationNotFound)

	r.Summary = truncate(r.Summary, maxSummaryLength)
	if strings.TrimSpace(r.Summary) == "" {
		r.Summary = SummaryNotFound
	}
}

func clampEntries(entries []string, sentinel string) []string {
	if len(entries) == 0 {
		return []string{sentinel}
	}
	clamped := make([]string, 0, len(entries))
	for _, entry := range entries {
		clamped = append(clamped, truncate(entry, maxEntryLength))
	}
	return clamped
}

// truncate limits by runes, not bytes, so multi-byte text is never cut
// mid-character.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
