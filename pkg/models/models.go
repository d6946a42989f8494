// Package models defines the shared data types for the daybrief service:
// the authenticated identity, the raw context bundle, the compact
// prompt-ready projections and the API request/response payloads.
package models

import (
	"time"

	"github.com/jomei/notionapi"
	gcal "google.golang.org/api/calendar/v3"
)

// ── Identity ────────────────────────────────────────────────

// Identity represents a verified Google user.
// Produced by a token verifier, consumed by the briefing service and handlers.
// It is immutable for the lifetime of one request and never persisted.
type Identity struct {
	// Email is the primary cache key for the user's context bundle.
	Email string `json:"email"`

	// Name is the display name used to address the user in prompts.
	Name string `json:"name"`

	// Picture is the avatar URL.
	Picture string `json:"picture,omitempty"`

	// HostedDomain is the Google Workspace domain claim (empty for
	// personal accounts). Checked against ALLOWED_DOMAIN when configured.
	HostedDomain string `json:"hd,omitempty"`

	// Subject is the stable Google user id.
	Subject string `json:"sub,omitempty"`

	Issuer    string    `json:"iss,omitempty"`
	Audience  string    `json:"aud,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`

	// Verifier identifies which verifier in the chain produced this identity
	// ("idtoken" or "accesstoken").
	Verifier string `json:"-"`
}

// Label returns the name to address the user by, falling back to the email.
func (i *Identity) Label() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}

// ── Context bundle ──────────────────────────────────────────

// DatabaseGroup is the per-database unit of the Notion fan-out: the database
// id, its resolved display title and the first page of pending tasks.
type DatabaseGroup struct {
	ID    string           `json:"id"`
	Title string           `json:"title"`
	Tasks []notionapi.Page `json:"tasks"`
}

// ContextBundle is the combined (events, task groups) snapshot assembled per
// user. It is the unit stored in the context cache.
type ContextBundle struct {
	Events     []*gcal.Event   `json:"events"`
	TaskGroups []DatabaseGroup `json:"taskGroups"`
}

// ── Prompt projections ──────────────────────────────────────

// FormattedEvent is the compact projection of a calendar event included in
// prompts. Optional fields are omitted entirely to keep the serialized
// context small.
type FormattedEvent struct {
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location,omitempty"`
}

// FormattedTask is the compact projection of a Notion page.
type FormattedTask struct {
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	Priority  string   `json:"priority,omitempty"`
	DueDate   string   `json:"dueDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
	Project   string   `json:"project,omitempty"`
}

// FormattedTaskGroup groups formatted tasks under their database title.
type FormattedTaskGroup struct {
	DBTitle string          `json:"dbTitle"`
	Tasks   []FormattedTask `json:"tasks"`
}

// ── Conversation ────────────────────────────────────────────

// Conversation roles. The wire format follows the Gemini convention of
// "user" and "model" turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ConversationMessage is one turn of a chat transcript. The transcript is
// owned by the caller; the server never stores it.
type ConversationMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ── API payloads ────────────────────────────────────────────

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message string                `json:"message"`
	History []ConversationMessage `json:"history"`
}

// ChatResponse is the success body of POST /api/v1/chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// RawData echoes the raw provider payloads alongside the generated summary.
// Tasks are flattened across database groups for front-end compatibility.
type RawData struct {
	Events []*gcal.Event    `json:"events"`
	Tasks  []notionapi.Page `json:"tasks"`
}

// DailySummaryResponse is the body of POST /api/v1/daily-summary.
type DailySummaryResponse struct {
	Summary  string   `json:"summary"`
	Warnings []string `json:"warnings,omitempty"`
	RawData  RawData  `json:"rawData"`
}
