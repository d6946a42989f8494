// Package briefing assembles the per-user context bundle and produces the
// daily summary and chat replies.
//
// Control flow per request: cache lookup → on miss, calendar and Notion
// fetches run concurrently (fan-out/fan-in) → cache store → formatting →
// generation. Authentication failures abort upstream of this package; every
// data-source failure here degrades to an empty contribution plus a warning.
package briefing

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/daybrief/daybrief/internal/cache"
	"github.com/daybrief/daybrief/internal/format"
	"github.com/daybrief/daybrief/internal/gemini"
	"github.com/daybrief/daybrief/pkg/models"
)

var tracer = otel.Tracer("daybrief")

// Event window selection for the calendar branch.
type Window int

const (
	// WindowToday spans local midnight to midnight.
	WindowToday Window = iota
	// WindowUpcoming spans the rolling next 24 hours.
	WindowUpcoming
)

// User-facing degradation messages.
const (
	calendarWarning  = "No se pudieron obtener los eventos del calendario"
	noSummaryMessage = "No hay datos disponibles para generar el resumen."

	summaryUnavailableWarning = "El generador de resúmenes no está configurado"
	summaryFailedWarning      = "La generación del resumen falló"
)

// CalendarFetcher retrieves the user's events for one of the two windows.
type CalendarFetcher interface {
	TodayEvents(ctx context.Context, accessToken string) ([]*gcal.Event, error)
	UpcomingEvents(ctx context.Context, accessToken string) ([]*gcal.Event, error)
}

// TaskFetcher retrieves pending tasks grouped per database, already degraded
// per database on failure.
type TaskFetcher interface {
	PendingTasks(ctx context.Context, databaseIDs []string) ([]models.DatabaseGroup, []string)
}

// Generator produces the summary text and chat replies.
type Generator interface {
	DailySummary(ctx context.Context, userName string, events []models.FormattedEvent, groups []models.FormattedTaskGroup) (string, error)
	ChatReply(ctx context.Context, userName string, events []models.FormattedEvent, groups []models.FormattedTaskGroup, history []models.ConversationMessage, message string) (string, error)
}

// Summary is the full result of the daily-summary pipeline.
type Summary struct {
	Text       string
	Warnings   []string
	Events     []*gcal.Event
	TaskGroups []models.DatabaseGroup
}

// Service wires the fetchers, the cache and the generator.
type Service struct {
	calendar    CalendarFetcher
	tasks       TaskFetcher
	generator   Generator
	cache       *cache.ContextCache
	databaseIDs []string
}

// NewService creates the briefing service.
func NewService(cal CalendarFetcher, tasks TaskFetcher, gen Generator, c *cache.ContextCache, databaseIDs []string) *Service {
	return &Service{calendar: cal, tasks: tasks, generator: gen, cache: c, databaseIDs: databaseIDs}
}

// Context returns the cached bundle for the identity or assembles a fresh
// one. Warnings describe degraded sources of a fresh assembly; a cache hit
// reports none.
func (s *Service) Context(ctx context.Context, identity *models.Identity, accessToken string, window Window) (models.ContextBundle, []string) {
	if bundle, ok := s.cache.Get(identity.Email); ok {
		log.Debug().Str("user", identity.Email).Msg("Context cache hit")
		return bundle, nil
	}

	ctx, span := tracer.Start(ctx, "briefing.assemble")
	span.SetAttributes(attribute.Int("daybrief.databases", len(s.databaseIDs)))
	defer span.End()

	var (
		bundle       models.ContextBundle
		calendarErr  error
		taskWarnings []string
	)

	// The two branches write disjoint variables and join on the WaitGroup;
	// each one degrades on its own without cancelling the sibling.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if window == WindowUpcoming {
			bundle.Events, calendarErr = s.calendar.UpcomingEvents(ctx, accessToken)
		} else {
			bundle.Events, calendarErr = s.calendar.TodayEvents(ctx, accessToken)
		}
	}()
	go func() {
		defer wg.Done()
		bundle.TaskGroups, taskWarnings = s.tasks.PendingTasks(ctx, s.databaseIDs)
	}()
	wg.Wait()

	var warnings []string
	if calendarErr != nil {
		log.Warn().Str("user", identity.Email).Err(calendarErr).Msg("Calendar fetch degraded")
		bundle.Events = []*gcal.Event{}
		warnings = append(warnings, calendarWarning)
	}
	warnings = append(warnings, taskWarnings...)

	s.cache.Set(identity.Email, bundle)
	return bundle, warnings
}

// DailySummary runs the whole pipeline for the summary endpoint. Generation
// failures do not fail the request: the summary text degrades to a fixed
// message and the cause joins the warnings.
func (s *Service) DailySummary(ctx context.Context, identity *models.Identity, accessToken string) *Summary {
	bundle, warnings := s.Context(ctx, identity, accessToken, WindowToday)

	events := format.Events(bundle.Events)
	groups := format.TaskGroups(bundle.TaskGroups)

	text, err := s.generator.DailySummary(ctx, identity.Label(), events, groups)
	if err != nil {
		if errors.Is(err, gemini.ErrNoAPIKey) {
			warnings = append(warnings, summaryUnavailableWarning)
		} else {
			log.Error().Str("user", identity.Email).Err(err).Msg("Summary generation failed")
			warnings = append(warnings, summaryFailedWarning)
		}
		text = noSummaryMessage
	}

	return &Summary{
		Text:       text,
		Warnings:   warnings,
		Events:     bundle.Events,
		TaskGroups: bundle.TaskGroups,
	}
}

// Chat answers one chat message grounded in the upcoming-window context.
// Unlike the summary, a generation failure here is returned to the caller.
func (s *Service) Chat(ctx context.Context, identity *models.Identity, accessToken, message string, history []models.ConversationMessage) (string, error) {
	bundle, _ := s.Context(ctx, identity, accessToken, WindowUpcoming)

	events := format.Events(bundle.Events)
	groups := format.TaskGroups(bundle.TaskGroups)

	return s.generator.ChatReply(ctx, identity.Label(), events, groups, history, message)
}
