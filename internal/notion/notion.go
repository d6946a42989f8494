// Package notion fetches pending tasks from one or more Notion databases.
//
// Databases are queried concurrently, one goroutine per database, and each
// branch recovers from its own failure: a failing database contributes a
// group with an empty task list instead of aborting the batch. The returned
// group order always matches the input id order.
package notion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog/log"

	"github.com/daybrief/daybrief/pkg/models"
)

const (
	statusProperty = "Status"
	doneStatus     = "Done"
	dueProperty    = "Date"

	// Only the first page is fetched. The briefing targets at most a few
	// dozen pending tasks per database; paginating further would bloat the
	// prompt without improving the summary.
	pageSize = 50

	unknownDatabaseTitle = "Base de Datos desconocida"
	untitledDatabase     = "Sin título"
)

// Fetcher queries Notion databases for pending tasks.
type Fetcher struct {
	client  *notionapi.Client
	enabled bool
}

// NewFetcher creates a Notion fetcher. An empty integration token disables
// it: PendingTasks then returns no groups at all.
func NewFetcher(token string, opts ...notionapi.ClientOption) *Fetcher {
	return &Fetcher{
		client:  notionapi.NewClient(notionapi.Token(token), opts...),
		enabled: token != "",
	}
}

// Enabled reports whether the fetcher has an integration token.
func (f *Fetcher) Enabled() bool { return f.enabled }

// PendingTasks fans out one query per database id and fans back in, returning
// one group per id in input order plus a warning per degraded database.
func (f *Fetcher) PendingTasks(ctx context.Context, databaseIDs []string) ([]models.DatabaseGroup, []string) {
	if !f.enabled || len(databaseIDs) == 0 {
		return []models.DatabaseGroup{}, nil
	}

	groups := make([]models.DatabaseGroup, len(databaseIDs))
	perDB := make([]string, len(databaseIDs))

	var wg sync.WaitGroup
	for i, id := range databaseIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			groups[i], perDB[i] = f.fetchDatabase(ctx, id)
		}(i, id)
	}
	wg.Wait()

	var warnings []string
	for _, w := range perDB {
		if w != "" {
			warnings = append(warnings, w)
		}
	}
	return groups, warnings
}

// fetchDatabase resolves the database title (best-effort) and queries its
// pending tasks. It never fails: a degraded group plus a warning comes back
// instead.
func (f *Fetcher) fetchDatabase(ctx context.Context, id string) (models.DatabaseGroup, string) {
	group := models.DatabaseGroup{ID: id, Title: unknownDatabaseTitle, Tasks: []notionapi.Page{}}

	db, err := f.client.Database.Get(ctx, notionapi.DatabaseID(id))
	if err != nil {
		log.Warn().Str("database", id).Err(err).Msg("Notion database metadata lookup failed")
	} else {
		group.Title = untitledDatabase
		if len(db.Title) > 0 && db.Title[0].PlainText != "" {
			group.Title = db.Title[0].PlainText
		}
	}

	resp, err := f.client.Database.Query(ctx, notionapi.DatabaseID(id), &notionapi.DatabaseQueryRequest{
		Filter:   pendingFilter(time.Now()),
		PageSize: pageSize,
	})
	if err != nil {
		log.Warn().Str("database", id).Err(err).Msg("Notion query failed")
		return group, fmt.Sprintf("No se pudieron obtener las tareas de %q", group.Title)
	}

	group.Tasks = resp.Results
	return group, ""
}

// pendingFilter matches tasks that are not done and are either already due
// or have no due date at all.
func pendingFilter(now time.Time) notionapi.Filter {
	today := notionapi.Date(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()))
	return notionapi.AndCompoundFilter{
		notionapi.PropertyFilter{
			Property: statusProperty,
			Status:   &notionapi.StatusFilterCondition{DoesNotEqual: doneStatus},
		},
		notionapi.OrCompoundFilter{
			notionapi.PropertyFilter{
				Property: dueProperty,
				Date:     &notionapi.DateFilterCondition{OnOrBefore: &today},
			},
			notionapi.PropertyFilter{
				Property: dueProperty,
				Date:     &notionapi.DateFilterCondition{IsEmpty: true},
			},
		},
	}
}
