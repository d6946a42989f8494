// Package gemini generates the daily briefing and chat replies through the
// Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/daybrief/daybrief/pkg/models"
)

// ErrNoAPIKey is returned when no Gemini API key is configured. Callers keep
// the response usable by substituting a fixed message for the summary.
var ErrNoAPIKey = errors.New("gemini api key not configured")

// ackMessage is the fixed model turn acknowledging the injected context.
const ackMessage = "Entendido. Tengo acceso a tu contexto. ¿En qué puedo ayudarte?"

// Generator issues completion and chat requests against one Gemini model.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates the generator. An empty API key yields a disabled
// generator whose calls return ErrNoAPIKey.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	g := &Generator{model: model}
	if apiKey == "" {
		return g, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// Enabled reports whether an API key is configured.
func (g *Generator) Enabled() bool { return g.client != nil }

// DailySummary produces the executive day summary in a single completion
// request. The full reply is awaited and returned as one unit.
func (g *Generator) DailySummary(ctx context.Context, userName string, events []models.FormattedEvent, groups []models.FormattedTaskGroup) (string, error) {
	if g.client == nil {
		return "", ErrNoAPIKey
	}

	prompt := buildSummaryPrompt(userName, events, groups, time.Now())
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return responseText(resp), nil
}

// ChatReply answers one user message grounded in the formatted context. The
// context preamble and the fixed acknowledgement are injected as the first
// two turns, followed by the caller's transcript, then the new message.
func (g *Generator) ChatReply(ctx context.Context, userName string, events []models.FormattedEvent, groups []models.FormattedTaskGroup, history []models.ConversationMessage, message string) (string, error) {
	if g.client == nil {
		return "", ErrNoAPIKey
	}

	chat, err := g.client.Chats.Create(ctx, g.model, nil, buildChatHistory(userName, events, groups, history, time.Now()))
	if err != nil {
		return "", fmt.Errorf("create gemini chat: %w", err)
	}
	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("gemini chat failed: %w", err)
	}
	return responseText(resp), nil
}

func buildSummaryPrompt(userName string, events []models.FormattedEvent, groups []models.FormattedTaskGroup, now time.Time) string {
	return fmt.Sprintf(`Eres el asistente ejecutivo de %s.
Fecha y hora actual: %s, %s

EVENTOS DE HOY (Google Calendar):
%s

TAREAS Y PROYECTOS ACTIVOS (Notion, agrupados por base de datos):
%s

Genera un resumen ejecutivo del día en español que incluya:
1. Resumen general del día (2-3 frases).
2. Top 3 prioridades **personales**. Separa claramente entre "Eventos de Agenda" y "Entregas de Proyectos".
3. Alertas de conflictos o agenda apretada.
4. Estimación de carga de trabajo restante.

Nota: El campo "assignees" indica los responsables. Si tu nombre (%q) aparece, es tu responsabilidad directa. Si no, es del equipo.
Usa un tono profesional pero cercano.
Identifica claramente de qué Base de Datos proviene cada tarea en tu resumen (ej. "En el proyecto X...").
`, userName, spanishDate(now), now.Format("15:04"), indentedJSON(events), indentedJSON(groups), userName)
}

func buildChatHistory(userName string, events []models.FormattedEvent, groups []models.FormattedTaskGroup, history []models.ConversationMessage, now time.Time) []*genai.Content {
	systemContext := fmt.Sprintf(`Contexto del usuario (%s):
- Fecha: %s, %s
- Eventos hoy: %s
- Tareas y Proyectos (agrupados por DB): %s

Eres un asistente útil y conciso. Responde preguntas sobre la agenda y tareas.
Si preguntan por un proyecto específico, busca en el grupo correspondiente.
`, userName, spanishDate(now), now.Format("15:04"), compactJSON(events), compactJSON(groups))

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: systemContext}}},
		{Role: "model", Parts: []*genai.Part{{Text: ackMessage}}},
	}
	for _, m := range history {
		role := "user"
		if m.Role == models.RoleModel {
			role = "model"
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: m.Text}}})
	}
	return contents
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text
}

func indentedJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

var spanishWeekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var spanishMonths = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// spanishDate renders e.g. "lunes, 1 de septiembre de 2025".
func spanishDate(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d",
		spanishWeekdays[t.Weekday()], t.Day(), spanishMonths[t.Month()-1], t.Year())
}
