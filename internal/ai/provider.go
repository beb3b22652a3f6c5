// Package ai abstracts the LLM backends used for resume tailoring.
package ai

import "context"

// TailoredResume is the model's rewrite of the profile against one job
// description. Only items relevant to the job survive.
type TailoredResume struct {
	Name       string       `json:"name"`
	Title      string       `json:"title"`
	Summary    string       `json:"summary,omitempty"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Projects   []Project    `json:"projects"`
}

// Experience is one employment entry in a tailored resume.
type Experience struct {
	Company    string   `json:"company"`
	Role       string   `json:"role"`
	Period     string   `json:"period"`
	Highlights []string `json:"highlights"`
}

// Project is one project entry in a tailored resume.
type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Stack       []string `json:"stack,omitempty"`
}

// Provider defines the interface for resume tailoring backends.
type Provider interface {
	Name() string
	TailorResume(ctx context.Context, profileJSON []byte, jobDescription string) (*TailoredResume, error)

	// Usage tracking.
	GetUsage() *Usage
	ResetUsage()
}

// Usage tracks token consumption across calls.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
