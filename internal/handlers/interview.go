package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"dceo-backend/internal/middleware"
	"dceo-backend/internal/models"
	"dceo-backend/internal/services"
)

type InterviewHandler struct {
	interviews *services.InterviewService
}

func NewInterviewHandler(interviews *services.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews}
}

// Topics lists the fixed interview topics for the start screen.
func (h *InterviewHandler) Topics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"topics": models.InterviewTopics})
}

func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	engineerID := middleware.GetEngineerID(r.Context())

	var req models.StartInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, msg, err := h.interviews.Start(r.Context(), engineerID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session": session,
		"message": msg,
	})
}

func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	engineerID := middleware.GetEngineerID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	session, messages, err := h.interviews.Get(r.Context(), engineerID, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session":  session,
		"messages": messages,
	})
}

// Current returns the engineer's most recent session so the client can
// resume after a reload.
func (h *InterviewHandler) Current(w http.ResponseWriter, r *http.Request) {
	engineerID := middleware.GetEngineerID(r.Context())

	session, messages, err := h.interviews.Current(r.Context(), engineerID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session":  session,
		"messages": messages,
	})
}

func (h *InterviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	engineerID := middleware.GetEngineerID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	result, err := h.interviews.SubmitAnswer(r.Context(), engineerID, sessionID, req.Text)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *InterviewHandler) Reset(w http.ResponseWriter, r *http.Request) {
	engineerID := middleware.GetEngineerID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	if err := h.interviews.Reset(r.Context(), engineerID, sessionID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Interview reset"})
}
