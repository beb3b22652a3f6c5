package ai

import (
	"fmt"
	"strings"
)

// ParseError means the model never produced parseable JSON. Callers can show
// Raw to the user instead of a generic failure.
type ParseError struct {
	Attempts int
	Err      error
	Raw      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse resume JSON after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// buildTailorContent builds the user message for resume tailoring.
// Shared across all AI providers.
func buildTailorContent(profileJSON []byte, jobDescription string) string {
	var b strings.Builder
	b.WriteString("Job Description:\n")
	b.WriteString(jobDescription)
	b.WriteString("\n\nUser Profile:\n")
	b.Write(profileJSON)
	return b.String()
}
