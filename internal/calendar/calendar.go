// Package calendar fetches Google Calendar events for the authenticated user.
package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const primaryCalendar = "primary"

// Fetcher retrieves a bounded window of events from the user's primary
// calendar using the caller's access token. A service is built per request
// because every request carries a different user credential.
type Fetcher struct {
	// extra client options, used by tests to point at a fake endpoint
	opts []option.ClientOption
}

// NewFetcher creates a calendar fetcher.
func NewFetcher(opts ...option.ClientOption) *Fetcher {
	return &Fetcher{opts: opts}
}

// TodayEvents returns events between local midnight and the next midnight,
// pinning the request to the server's timezone so "today" matches the clock
// the user sees.
func (f *Fetcher) TodayEvents(ctx context.Context, accessToken string) ([]*gcal.Event, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24 * time.Hour)
	return f.list(ctx, accessToken, start, end, now.Location().String())
}

// UpcomingEvents returns events in the rolling 24 hours from now. Used by
// chat, where "what's next" matters more than calendar-day boundaries.
func (f *Fetcher) UpcomingEvents(ctx context.Context, accessToken string) ([]*gcal.Event, error) {
	now := time.Now()
	return f.list(ctx, accessToken, now, now.Add(24*time.Hour), "")
}

func (f *Fetcher) list(ctx context.Context, accessToken string, timeMin, timeMax time.Time, timezone string) ([]*gcal.Event, error) {
	svc, err := f.service(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	call := svc.Events.List(primaryCalendar).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		OrderBy("startTime").
		Context(ctx)
	if timezone != "" {
		call = call.TimeZone(timezone)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return events.Items, nil
}

func (f *Fetcher) service(ctx context.Context, accessToken string) (*gcal.Service, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	opts := append([]option.ClientOption{option.WithTokenSource(src)}, f.opts...)
	return gcal.NewService(ctx, opts...)
}
