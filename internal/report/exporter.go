// Package report renders a parse result as a plain-text report and dumps it
// as JSON for downstream tooling.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spigell/resume-insight/internal/parsing"
)

const defaultTitle = "Resume Analysis Report"

var timeNow = time.Now

// Text renders the result as a sectioned report.
func Text(result *parsing.ParseResult, title string) string {
	if title == "" {
		title = defaultTitle
	}

	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "%s\n%s\n%s\n", rule, title, rule)
	fmt.Fprintf(&b, "Generated: %s\n\n", timeNow().Format("2006-01-02 15:04:05"))

	writeSection(&b, "Name", result.Record.Name)
	writeSection(&b, "Email", result.Record.Email)
	writeSection(&b, "Phone", result.Record.Phone)
	writeListSection(&b, "Skills", result.Record.Skills)
	writeListSection(&b, "Experience", result.Record.Experience)
	writeListSection(&b, "Education", result.Record.Education)
	writeSection(&b, "Summary", result.Record.Summary)
	writeSection(&b, "Method", result.Method)

	if result.Provider != "" {
		writeSection(&b, "Provider", result.Provider)
	}
	if result.Error != "" {
		writeSection(&b, "Error", result.Error)
	}

	return b.String()
}

func writeSection(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "%s:\n%s\n%s\n\n", name, strings.Repeat("-", 40), value)
}

func writeListSection(b *strings.Builder, name string, items []string) {
	fmt.Fprintf(b, "%s:\n%s\n", name, strings.Repeat("-", 40))
	for _, item := range items {
		fmt.Fprintf(b, "• %s\n", item)
	}
	b.WriteString("\n")
}

// SaveText writes the text report to a temp file and returns its path.
func SaveText(result *parsing.ParseResult, title string) (string, error) {
	file, err := os.CreateTemp("", "resume_report_*.txt")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := file.WriteString(Text(result, title)); err != nil {
		return "", err
	}

	return file.Name(), nil
}

// DumpJSON writes the result as indented JSON to a temp file and returns its
// path.
func DumpJSON(result *parsing.ParseResult) (string, error) {
	file, err := os.CreateTemp("", "resume_result_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return "", err
	}

	return file.Name(), nil
}
