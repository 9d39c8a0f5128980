package handlers

import (
	"encoding/json"
	"net/http"

	"dceo-backend/internal/middleware"
	"dceo-backend/internal/models"
	"dceo-backend/internal/services"
)

type KnowledgeHandler struct {
	knowledge *services.KnowledgeService
}

func NewKnowledgeHandler(knowledge *services.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge}
}

func (h *KnowledgeHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": models.KnowledgeCategories})
}

// Question serves a random question from the requested category.
func (h *KnowledgeHandler) Question(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	question, err := h.knowledge.Question(r.Context(), category)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (h *KnowledgeHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	engineerID := middleware.GetEngineerID(r.Context())

	var req models.SubmitKnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	response, err := h.knowledge.SubmitResponse(r.Context(), engineerID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, response)
}
