package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"dceo-backend/internal/middleware"
	"dceo-backend/internal/models"
	"dceo-backend/internal/services"
	"dceo-backend/internal/structure"
)

type StructureHandler struct {
	refinement *services.RefinementService
}

func NewStructureHandler(refinement *services.RefinementService) *StructureHandler {
	return &StructureHandler{refinement: refinement}
}

// View returns the latest structure version with its parsed tree and the
// full version history.
func (h *StructureHandler) View(w http.ResponseWriter, r *http.Request) {
	engineerID := middleware.GetEngineerID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	view, err := h.refinement.View(r.Context(), engineerID, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *StructureHandler) ApplyGuidelines(w http.ResponseWriter, r *http.Request) {
	engineerID := middleware.GetEngineerID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req models.GuidelinesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	version, err := h.refinement.ApplyGuidelines(r.Context(), engineerID, sessionID, req.Feedback)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"version": version,
		"tree":    structure.Parse(version.StructureText),
	})
}

func (h *StructureHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	engineerID := middleware.GetEngineerID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	version, err := h.refinement.Confirm(r.Context(), engineerID, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version": version,
		"message": "Structure confirmed",
	})
}
