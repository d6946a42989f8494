// Package handlers implements the HTTP handlers for the daybrief API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/daybrief/daybrief/internal/api/middleware"
	"github.com/daybrief/daybrief/internal/briefing"
	"github.com/daybrief/daybrief/pkg/models"
	"github.com/jomei/notionapi"
	"github.com/rs/zerolog/log"
)

// BriefingService is the slice of the briefing pipeline the handlers need.
type BriefingService interface {
	DailySummary(ctx context.Context, identity *models.Identity, accessToken string) *briefing.Summary
	Chat(ctx context.Context, identity *models.Identity, accessToken, message string, history []models.ConversationMessage) (string, error)
}

// Handlers holds all handler dependencies.
type Handlers struct {
	Briefing BriefingService
}

// New creates a new Handlers instance.
func New(svc BriefingService) *Handlers {
	return &Handlers{Briefing: svc}
}

// DailySummary generates the executive summary for the authenticated user.
// Partial provider failures surface as warnings in a 200 response, never as
// an error status.
func (h *Handlers) DailySummary(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summary := h.Briefing.DailySummary(r.Context(), identity, middleware.GetAccessToken(r.Context()))

	events := summary.Events
	if events == nil {
		events = []*gcal.Event{}
	}
	tasks := []notionapi.Page{}
	for _, group := range summary.TaskGroups {
		tasks = append(tasks, group.Tasks...)
	}

	respondJSON(w, http.StatusOK, models.DailySummaryResponse{
		Summary:  summary.Text,
		Warnings: summary.Warnings,
		RawData: models.RawData{
			Events: events,
			Tasks:  tasks,
		},
	})
}

// Chat answers one conversational message grounded in the user's context.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := h.Briefing.Chat(r.Context(), identity, middleware.GetAccessToken(r.Context()), req.Message, req.History)
	if err != nil {
		log.Error().Str("user", identity.Email).Err(err).Msg("Chat generation failed")
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respondJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
