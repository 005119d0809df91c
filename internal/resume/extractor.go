package resume

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nameLineRe = regexp.MustCompile(`^[A-Za-z\s.]+$`)
	emailRe    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Tried in order; the first pattern with any match wins.
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),
		regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.]?\d{4}`),
		regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{3,4}[-.\s]?\d{3,4}[-.\s]?\d{3,4}`),
	}

	// Section captures are lazy and stop at a blank line, the next
	// capitalized line (skills) or a sibling section header. Flags are
	// scoped so the capitalized-line terminator stays case-sensitive.
	skillSectionRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i:technical skills?)[:\-\s]+((?s:.*?))(?:\n\s*\n|\n[A-Z]|\z)`),
		regexp.MustCompile(`(?i:skills?)[:\-\s]+((?s:.*?))(?:\n\s*\n|\n[A-Z]|\z)`),
		regexp.MustCompile(`(?i:technologies?)[:\-\s]+((?s:.*?))(?:\n\s*\n|\n[A-Z]|\z)`),
	}
	skillSplitRe = regexp.MustCompile(`[,;•\n]`)

	experienceSectionRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i:work experience)[:\-\s]+((?s:.*?))(?:\n\s*\n|\n(?i:education)|\n(?i:skills)|\z)`),
		regexp.MustCompile(`(?i:experience)[:\-\s]+((?s:.*?))(?:\n\s*\n|\n(?i:education)|\n(?i:skills)|\z)`),
		regexp.MustCompile(`(?i:employment)[:\-\s]+((?s:.*?))(?:\n\s*\n|\n(?i:education)|\n(?i:skills)|\z)`),
	}
	educationSectionRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i:education)[:\-\s]+((?s:.*?))(?:\n\s*\n|\n(?i:experience)|\n(?i:skills)|\z)`),
		regexp.MustCompile(`(?i:academic)[:\-\s]+((?s:.*?))(?:\n\s*\n|\n(?i:experience)|\n(?i:skills)|\z)`),
		regexp.MustCompile(`(?i:qualifications?)[:\-\s]+((?s:.*?))(?:\n\s*\n|\n(?i:experience)|\n(?i:skills)|\z)`),
	}
)

// skillKeywords is the fixed list matched case-insensitively against the
// whole document, title-cased on output.
var skillKeywords = []string{
	"python", "java", "javascript", "react", "node.js", "sql", "html", "css",
	"machine learning", "data science", "aws", "docker", "kubernetes",
	"git", "linux", "windows", "excel", "powerpoint", "word",
	"project management", "agile", "scrum", "leadership", "communication",
}

var summaryLabels = []string{"summary", "objective", "profile", "about"}

// FieldExtractor performs deterministic rule-based extraction of resume
// fields from raw text. It makes no network calls; running it twice on the
// same input yields identical output.
type FieldExtractor struct{}

// NewFieldExtractor creates the fallback extractor.
func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{}
}

// Extract builds a fully-populated record from raw text. Each field is
// extracted independently: a failure in one field degrades that field to its
// sentinel without affecting the others.
func (e *FieldExtractor) Extract(text string) Record {
	var record Record

	if v, err := e.extractName(text); err == nil {
		record.Name = v
	}
	if v, err := e.extractEmail(text); err == nil {
		record.Email = v
	}
	if v, err := e.extractPhone(text); err == nil {
		record.Phone = v
	}
	if v, err := e.extractSkills(text); err == nil {
		record.Skills = v
	}
	if v, err := e.extractExperience(text); err == nil {
		record.Experience = v
	}
	if v, err := e.extractEducation(text); err == nil {
		record.Education = v
	}
	if v, err := e.extractSummary(text); err == nil {
		record.Summary = v
	}

	record.Clamp()
	return record
}

// extractName scans only the first five lines and accepts the first one that
// looks like a person's name.
func (e *FieldExtractor) extractName(text string) (string, error) {
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < 3 || len(line) > 49 {
			continue
		}
		if nameLineRe.MatchString(line) && len(strings.Fields(line)) >= 2 {
			return line, nil
		}
	}

	return "", errors.New("no name-like line in header")
}

func (e *FieldExtractor) extractEmail(text string) (string, error) {
	if match := emailRe.FindString(text); match != "" {
		return match, nil
	}
	return "", errors.New("no email match")
}

func (e *FieldExtractor) extractPhone(text string) (string, error) {
	for _, re := range phoneRes {
		if match := re.FindString(text); match != "" {
			return match, nil
		}
	}
	return "", errors.New("no phone match")
}

// extractSkills unions keyword hits with items parsed out of a labeled
// skills section. Deduplicated in first-seen order.
func (e *FieldExtractor) extractSkills(text string) ([]string, error) {
	titleCaser := cases.Title(language.English)
	lowered := strings.ToLower(text)

	var found []string
	seen := make(map[string]bool)
	add := func(skill string) {
		skill = titleCaser.String(strings.TrimSpace(skill))
		if skill == "" || seen[skill] {
			return
		}
		seen[skill] = true
		found = append(found, skill)
	}

	for _, keyword := range skillKeywords {
		if strings.Contains(lowered, keyword) {
			add(keyword)
		}
	}

	for _, re := range skillSectionRes {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			for _, item := range skillSplitRe.Split(match[1], -1) {
				item = strings.TrimSpace(item)
				if len(item) > 1 && len(item) < 30 {
					add(item)
				}
			}
		}
	}

	if len(found) == 0 {
		return nil, errors.New("no skills found")
	}
	return found, nil
}

func (e *FieldExtractor) extractExperience(text string) ([]string, error) {
	entries := extractSectionEntries(text, experienceSectionRes, 10)
	if len(entries) == 0 {
		return nil, errors.New("no experience section")
	}
	return entries, nil
}

func (e *FieldExtractor) extractEducation(text string) ([]string, error) {
	entries := extractSectionEntries(text, educationSectionRes, 5)
	if len(entries) == 0 {
		return nil, errors.New("no education section")
	}
	return entries, nil
}

func extractSectionEntries(text string, sections []*regexp.Regexp, minLength int) []string {
	var entries []string
	for _, re := range sections {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			for _, entry := range splitAtCapitalizedLines(match[1]) {
				entry = strings.TrimSpace(entry)
				if len(entry) > minLength {
					entries = append(entries, truncate(entry, maxEntryLength))
				}
			}
		}
	}
	return entries
}

// splitAtCapitalizedLines cuts a section body into entries at newlines that
// begin a new capitalized line; continuation lines stay with their entry.
func splitAtCapitalizedLines(block string) []string {
	var entries []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			entries = append(entries, strings.Join(current, "\n"))
			current = nil
		}
	}

	for _, line := range strings.Split(block, "\n") {
		trimmedLeft := strings.TrimLeft(line, " \t")
		if trimmedLeft != "" && unicode.IsUpper([]rune(trimmedLeft)[0]) {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return entries
}

// extractSummary prefers an explicit labeled section and falls back to the
// first reasonably sized paragraph.
func (e *FieldExtractor) extractSummary(text string) (string, error) {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		lower := strings.ToLower(strings.TrimSpace(line))
		if !strings.Contains(lower, ":") {
			continue
		}
		for _, label := range summaryLabels {
			if !strings.Contains(lower, label) {
				continue
			}
			var collected []string
			for j := i + 1; j < len(lines) && j <= i+4; j++ {
				candidate := strings.TrimSpace(lines[j])
				if candidate == "" || isAllUpper(candidate) {
					break
				}
				collected = append(collected, candidate)
			}
			if len(collected) > 0 {
				return truncate(strings.Join(collected, " "), maxSummaryLength), nil
			}
		}
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if len(paragraph) > 50 && len(paragraph) < 500 {
			return truncate(paragraph, maxSummaryLength), nil
		}
	}

	return "", errors.New("no summary candidate")
}

// isAllUpper reports whether the string has letters and all of them are
// uppercase, the usual shape of a section heading.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
