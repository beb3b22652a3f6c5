package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dsarkar/galleria/internal/ai"
	"github.com/dsarkar/galleria/internal/resume"
)

// ResumeService tailors the embedded profile to a job description.
// Satisfied by resume.Service.
type ResumeService interface {
	Tailor(ctx context.Context, jobDescription string) (*ai.TailoredResume, error)
}

// TailorHandler handles the resume tailoring endpoint.
type TailorHandler struct {
	service ResumeService
}

// NewTailorHandler creates a new tailor handler. A nil service means no AI
// provider is configured; the endpoint then fails with 500.
func NewTailorHandler(service ResumeService) *TailorHandler {
	return &TailorHandler{service: service}
}

type tailorRequest struct {
	JobDescription string `json:"jobDescription"`
}

type tailorResponse struct {
	Resume *ai.TailoredResume `json:"resume"`
}

// Tailor returns the embedded profile rewritten for the submitted job
// description.
func (h *TailorHandler) Tailor(w http.ResponseWriter, r *http.Request) {
	var req tailorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if h.service == nil {
		respondError(w, http.StatusInternalServerError, "resume tailoring not configured")
		return
	}

	tailored, err := h.service.Tailor(r.Context(), req.JobDescription)
	if err != nil {
		if errors.Is(err, resume.ErrMissingJobDescription) {
			respondError(w, http.StatusBadRequest, "Missing job description")
			return
		}
		var parseErr *ai.ParseError
		if errors.As(err, &parseErr) {
			log.Printf("Tailoring produced unparseable output after %d attempts", parseErr.Attempts)
			respondJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "could not generate tailored resume",
				"raw":   parseErr.Raw,
			})
			return
		}
		log.Printf("Tailoring failed: %v", err)
		respondError(w, http.StatusInternalServerError, "could not generate tailored resume")
		return
	}

	respondJSON(w, http.StatusOK, tailorResponse{Resume: tailored})
}
