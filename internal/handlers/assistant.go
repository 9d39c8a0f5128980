package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"dceo-backend/internal/gateway"
	"dceo-backend/internal/middleware"
	"dceo-backend/internal/models"
)

// AssistantHandler exposes plain one-off questions to the assistant, outside
// of any interview session.
type AssistantHandler struct {
	gateway gateway.Client
}

func NewAssistantHandler(gw gateway.Client) *AssistantHandler {
	return &AssistantHandler{gateway: gw}
}

func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	engineerID := middleware.GetEngineerID(r.Context())

	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"message": "Message must not be empty"}, r))
		return
	}

	resp, err := h.gateway.Ask(r.Context(), gateway.Request{
		Message:    strings.TrimSpace(req.Message),
		EngineerID: engineerID.String(),
	})
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResp("GATEWAY_ERROR", "Assistant is unavailable. Please try again.", r))
		return
	}

	writeJSON(w, http.StatusOK, models.AskResponse{
		Reply:   resp.Response,
		Sources: resp.Sources,
		Source:  resp.Source,
	})
}
