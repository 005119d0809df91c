package resume

import (
	"reflect"
	"strings"
	"testing"
)

const sampleResume = "John Smith\njohn.smith@example.com\n555-123-4567\n\nSkills: Python, SQL, Leadership\n\nEducation: BS Computer Science, MIT, 2020"

func TestExtractSampleResume(t *testing.T) {
	t.Parallel()

	record := NewFieldExtractor().Extract(sampleResume)

	if record.Name != "John Smith" {
		t.Fatalf("unexpected name: %q", record.Name)
	}
	if record.Email != "john.smith@example.com" {
		t.Fatalf("unexpected email: %q", record.Email)
	}
	if record.Phone != "555-123-4567" {
		t.Fatalf("unexpected phone: %q", record.Phone)
	}

	for _, skill := range []string{"Python", "Sql", "Leadership"} {
		if !containsString(record.Skills, skill) {
			t.Fatalf("expected skill %q in %v", skill, record.Skills)
		}
	}

	foundEducation := false
	for _, entry := range record.Education {
		if strings.Contains(entry, "BS Computer Science") {
			foundEducation = true
		}
	}
	if !foundEducation {
		t.Fatalf("expected education entry mentioning BS Computer Science, got %v", record.Education)
	}

	if !reflect.DeepEqual(record.Experience, []string{ExperienceNotFound}) {
		t.Fatalf("expected experience sentinel, got %v", record.Experience)
	}
}

func TestExtractEmptyInputReturnsSentinels(t *testing.T) {
	t.Parallel()

	record := NewFieldExtractor().Extract("")

	if !reflect.DeepEqual(record, EmptyRecord()) {
		t.Fatalf("expected all-sentinel record, got %+v", record)
	}
}

func TestExtractDeterministic(t *testing.T) {
	t.Parallel()

	extractor := NewFieldExtractor()

	first := extractor.Extract(sampleResume)
	second := extractor.Extract(sampleResume)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("extraction must be deterministic\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestExtractName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "first header line",
			input:  "Jane A. Doe\nSoftware Engineer",
			expect: "Jane A. Doe",
		},
		{
			name:   "skips single token lines",
			input:  "Resume\nJane Doe",
			expect: "Jane Doe",
		},
		{
			name:   "skips lines with digits",
			input:  "555-123-4567\nJane Doe",
			expect: "Jane Doe",
		},
		{
			name:   "ignores names past the fifth line",
			input:  "1\n2\n3\n4\n5\nJane Doe",
			expect: NameNotFound,
		},
		{
			name:   "rejects overly long lines",
			input:  strings.Repeat("Aa ", 20),
			expect: NameNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			record := NewFieldExtractor().Extract(tt.input)
			if record.Name != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, record.Name)
			}
		})
	}
}

func TestExtractPhonePatternOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"dashed", "call 555-123-4567 today", "555-123-4567"},
		{"dotted", "call 555.123.4567 today", "555.123.4567"},
		{"parenthesized", "call (555) 123-4567 today", "(555) 123-4567"},
		{"international", "call +44 7911 123 456 today", "+44 7911 123 456"},
		{"none", "no digits here", PhoneNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			record := NewFieldExtractor().Extract(tt.input)
			if record.Phone != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, record.Phone)
			}
		})
	}
}

func TestExtractSkillsDedupFirstSeen(t *testing.T) {
	t.Parallel()

	input := "I write python services.\n\nSkills: Python, Docker; Kubernetes"

	record := NewFieldExtractor().Extract(input)

	count := 0
	for _, skill := range record.Skills {
		if skill == "Python" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected Python deduplicated once, got %v", record.Skills)
	}
	for _, skill := range []string{"Docker", "Kubernetes"} {
		if !containsString(record.Skills, skill) {
			t.Fatalf("expected %q in %v", skill, record.Skills)
		}
	}
}

func TestExtractSkillsLengthFilter(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 35)
	record := NewFieldExtractor().Extract("Skills: a, " + long + ", Terraform")

	if containsString(record.Skills, "A") {
		t.Fatalf("single-character skill should be filtered: %v", record.Skills)
	}
	for _, skill := range record.Skills {
		if len(skill) >= 30 {
			t.Fatalf("overlong skill kept: %q", skill)
		}
	}
	if !containsString(record.Skills, "Terraform") {
		t.Fatalf("expected Terraform in %v", record.Skills)
	}
}

func TestExtractExperienceEntries(t *testing.T) {
	t.Parallel()

	input := "Jane Doe\n\nExperience:\nAcme Corp - Senior Engineer\nbuilt data pipelines\nGlobex - Engineer\nshipped internal tools\n\nEducation: BS Physics, 2015"

	record := NewFieldExtractor().Extract(input)

	if len(record.Experience) != 2 {
		t.Fatalf("expected 2 entries, got %v", record.Experience)
	}
	if !strings.HasPrefix(record.Experience[0], "Acme Corp") {
		t.Fatalf("unexpected first entry: %q", record.Experience[0])
	}
	if !strings.Contains(record.Experience[0], "built data pipelines") {
		t.Fatalf("continuation line should stay with its entry: %q", record.Experience[0])
	}
	if !strings.HasPrefix(record.Experience[1], "Globex") {
		t.Fatalf("unexpected second entry: %q", record.Experience[1])
	}
}

func TestExtractExperienceTruncatesLongEntries(t *testing.T) {
	t.Parallel()

	entry := "Acme " + strings.Repeat("a", 300)
	record := NewFieldExtractor().Extract("Experience:\n" + entry)

	if len(record.Experience[0]) != 200 {
		t.Fatalf("expected entry truncated to 200, got %d", len(record.Experience[0]))
	}
}

func TestExtractSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "labeled section",
			input:  "Jane Doe\nSummary:\nSeasoned engineer with a decade of experience.\nFocus on reliability.\n\nSkills: Go",
			expect: "Seasoned engineer with a decade of experience. Focus on reliability.",
		},
		{
			name:   "label stops at all caps line",
			input:  "Objective:\nBuild great things.\nEXPERIENCE\nnot part of summary",
			expect: "Build great things.",
		},
		{
			name:   "first paragraph fallback",
			input:  "An engineer who has spent ten years building distributed systems at scale.\n\nmore text",
			expect: "An engineer who has spent ten years building distributed systems at scale.",
		},
		{
			name:   "nothing suitable",
			input:  "short",
			expect: SummaryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			record := NewFieldExtractor().Extract(tt.input)
			if record.Summary != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, record.Summary)
			}
		})
	}
}

func containsString(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
