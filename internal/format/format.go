// Package format reduces raw provider payloads to compact structures for
// prompt inclusion. All functions are pure: no I/O, deterministic output for
// identical input. Optional fields that cannot be resolved are left at their
// zero value and omitted from the serialized JSON, keeping the prompt small.
package format

import (
	"sort"
	"time"

	"github.com/jomei/notionapi"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/daybrief/daybrief/pkg/models"
)

const (
	untitled          = "Sin título"
	noStatus          = "Sin estado"
	relatedProjectTag = "(Proyecto relacionado)"

	statusProperty   = "Status"
	priorityProperty = "Priority"
)

// Property names consulted by fixed name where the type alone is ambiguous.
var (
	projectProperties = []string{"Projects Database", "Project"}
	dueProperties     = []string{"Due Date", "Date"}
)

// Events projects calendar events for prompting, preferring the precise
// date-time over the all-day date.
func Events(events []*gcal.Event) []models.FormattedEvent {
	out := make([]models.FormattedEvent, 0, len(events))
	for _, ev := range events {
		fe := models.FormattedEvent{Title: untitled, Location: ev.Location}
		if ev.Summary != "" {
			fe.Title = ev.Summary
		}
		if ev.Start != nil {
			fe.Start = firstNonEmpty(ev.Start.DateTime, ev.Start.Date)
		}
		if ev.End != nil {
			fe.End = firstNonEmpty(ev.End.DateTime, ev.End.Date)
		}
		out = append(out, fe)
	}
	return out
}

// TaskGroups projects every database group for prompting.
func TaskGroups(groups []models.DatabaseGroup) []models.FormattedTaskGroup {
	out := make([]models.FormattedTaskGroup, 0, len(groups))
	for _, g := range groups {
		fg := models.FormattedTaskGroup{DBTitle: g.Title, Tasks: make([]models.FormattedTask, 0, len(g.Tasks))}
		for _, page := range g.Tasks {
			fg.Tasks = append(fg.Tasks, Task(page))
		}
		out = append(out, fg)
	}
	return out
}

// Task projects one Notion page. The title and assignees are located by
// property type, since property names vary per database; status, priority,
// project and dates fall back to the well-known names above.
func Task(page notionapi.Page) models.FormattedTask {
	task := models.FormattedTask{Title: untitled, Status: noStatus}

	// Scan in sorted name order so output is stable regardless of map order.
	names := make([]string, 0, len(page.Properties))
	for name := range page.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var assignees []string
	for _, name := range names {
		switch p := page.Properties[name].(type) {
		case *notionapi.TitleProperty:
			if len(p.Title) > 0 && p.Title[0].PlainText != "" {
				task.Title = p.Title[0].PlainText
			}
		case *notionapi.PeopleProperty:
			for _, person := range p.People {
				if person.Name != "" {
					assignees = append(assignees, person.Name)
				}
			}
		}
	}
	task.Assignees = assignees

	if p, ok := page.Properties[statusProperty].(*notionapi.StatusProperty); ok && p.Status.Name != "" {
		task.Status = p.Status.Name
	}
	if p, ok := page.Properties[priorityProperty].(*notionapi.SelectProperty); ok {
		task.Priority = p.Select.Name
	}

	for _, name := range projectProperties {
		if prop, ok := page.Properties[name]; ok {
			task.Project = projectLabel(prop)
			break
		}
	}

	for _, name := range dueProperties {
		if p, ok := page.Properties[name].(*notionapi.DateProperty); ok && p.Date != nil {
			if p.Date.Start != nil {
				task.DueDate = dateString(p.Date.Start)
			}
			if p.Date.End != nil {
				task.EndDate = dateString(p.Date.End)
			}
			break
		}
	}

	return task
}

// projectLabel resolves the three shapes a project reference can take: a
// direct select label, a relation (ids only, so a placeholder label), or a
// rollup whose first computed value is unwrapped when it is itself a title
// or text run.
func projectLabel(prop notionapi.Property) string {
	switch p := prop.(type) {
	case *notionapi.SelectProperty:
		return p.Select.Name
	case *notionapi.RelationProperty:
		if len(p.Relation) > 0 {
			return relatedProjectTag
		}
	case *notionapi.RollupProperty:
		if p.Rollup.Type != "array" || len(p.Rollup.Array) == 0 {
			return ""
		}
		switch first := p.Rollup.Array[0].(type) {
		case *notionapi.TitleProperty:
			if len(first.Title) > 0 {
				return first.Title[0].PlainText
			}
		case *notionapi.RichTextProperty:
			if len(first.RichText) > 0 {
				return first.RichText[0].PlainText
			}
		}
	}
	return ""
}

// dateString renders a Notion date as a bare day when it carries no clock
// component, matching how Notion serializes all-day dates.
func dateString(d *notionapi.Date) string {
	t := time.Time(*d)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
