package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/fest-portal/services"
)

type CandidateHandler struct {
	candidateService services.CandidateService
}

func NewCandidateHandler(candidateService services.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidateService: candidateService}
}

func (h *CandidateHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.candidateService.ListCandidates(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"candidates": candidates}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CandidateHandler) GetCandidateByID(w http.ResponseWriter, r *http.Request) {
	candidateID, err := getIDFromURL(r, "candidateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	candidate, err := h.candidateService.GetCandidateByID(r.Context(), candidateID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"candidate": candidate}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CandidateHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCandidateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	candidate, err := h.candidateService.CreateCandidate(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/api/admin/candidates/%d", candidate.ID))
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"candidate": candidate}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CandidateHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, err := getIDFromURL(r, "candidateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateCandidateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	candidate, err := h.candidateService.UpdateCandidate(r.Context(), candidateID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"candidate": candidate}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CandidateHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, err := getIDFromURL(r, "candidateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.candidateService.DeleteCandidate(r.Context(), candidateID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CandidateHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	candidateID, err := getIDFromURL(r, "candidateID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, contentType, err := readPhoto(w, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	candidate, err := h.candidateService.UploadPhoto(r.Context(), candidateID, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"candidate": candidate}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
