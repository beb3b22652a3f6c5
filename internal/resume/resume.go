// Package resume tailors the embedded profile against a job description
// using an LLM provider. The profile is static data; the prompt is fixed.
package resume

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"

	"github.com/dsarkar/galleria/internal/ai"
)

//go:embed profile.json
var profileJSON []byte

// ErrMissingJobDescription is returned when no job description is supplied.
var ErrMissingJobDescription = errors.New("missing job description")

// Service rewrites the embedded profile for a specific job description.
type Service struct {
	provider ai.Provider
}

func NewService(provider ai.Provider) *Service {
	return &Service{provider: provider}
}

// Profile returns the embedded profile as raw JSON.
func Profile() []byte {
	return profileJSON
}

// Tailor asks the provider to rewrite the profile against jobDescription.
func (s *Service) Tailor(ctx context.Context, jobDescription string) (*ai.TailoredResume, error) {
	if jobDescription == "" {
		return nil, ErrMissingJobDescription
	}
	return s.provider.TailorResume(ctx, profileJSON, jobDescription)
}

func init() {
	// The embedded profile must stay valid JSON; fail loudly if an edit broke it.
	if !json.Valid(profileJSON) {
		panic("embedded profile.json is not valid JSON")
	}
}
