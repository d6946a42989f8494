package format_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/daybrief/daybrief/internal/format"
	"github.com/daybrief/daybrief/pkg/models"
)

func title(text string) *notionapi.TitleProperty {
	return &notionapi.TitleProperty{
		Type:  "title",
		Title: []notionapi.RichText{{PlainText: text}},
	}
}

func date(y int, m time.Month, d int) *notionapi.Date {
	nd := notionapi.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	return &nd
}

func TestEvents(t *testing.T) {
	events := []*gcal.Event{
		{
			Summary:  "Reunión semanal",
			Location: "Sala 3",
			Start:    &gcal.EventDateTime{DateTime: "2024-05-01T10:00:00+02:00"},
			End:      &gcal.EventDateTime{DateTime: "2024-05-01T11:00:00+02:00"},
		},
		{
			// All-day event without title: date is used, title defaulted.
			Start: &gcal.EventDateTime{Date: "2024-05-02"},
			End:   &gcal.EventDateTime{Date: "2024-05-03"},
		},
	}

	got := format.Events(events)
	require.Len(t, got, 2)

	assert.Equal(t, models.FormattedEvent{
		Title:    "Reunión semanal",
		Start:    "2024-05-01T10:00:00+02:00",
		End:      "2024-05-01T11:00:00+02:00",
		Location: "Sala 3",
	}, got[0])

	assert.Equal(t, "Sin título", got[1].Title)
	assert.Equal(t, "2024-05-02", got[1].Start)
	assert.Empty(t, got[1].Location)
}

func TestEventsPreferDateTimeOverDate(t *testing.T) {
	got := format.Events([]*gcal.Event{{
		Summary: "Híbrido",
		Start:   &gcal.EventDateTime{DateTime: "2024-05-01T09:00:00Z", Date: "2024-05-01"},
		End:     &gcal.EventDateTime{DateTime: "2024-05-01T10:00:00Z", Date: "2024-05-01"},
	}})
	require.Len(t, got, 1)
	assert.Equal(t, "2024-05-01T09:00:00Z", got[0].Start)
}

// The canonical projection: a page with title, status, priority and due date
// formats to exactly those fields, with no assignees or project keys in the
// serialized output.
func TestTaskCanonicalExample(t *testing.T) {
	page := notionapi.Page{
		Properties: notionapi.Properties{
			"Name":     title("Enviar informe"),
			"Status":   &notionapi.StatusProperty{Type: "status", Status: notionapi.Status{Name: "In Progress"}},
			"Priority": &notionapi.SelectProperty{Type: "select", Select: notionapi.Option{Name: "High"}},
			"Due Date": &notionapi.DateProperty{Type: "date", Date: &notionapi.DateObject{Start: date(2024, time.May, 1)}},
		},
	}

	got := format.Task(page)

	assert.Equal(t, "Enviar informe", got.Title)
	assert.Equal(t, "In Progress", got.Status)
	assert.Equal(t, "High", got.Priority)
	assert.Equal(t, "2024-05-01", got.DueDate)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	var asMap map[string]any
	require.NoError(t, json.Unmarshal(raw, &asMap))
	assert.NotContains(t, asMap, "assignees")
	assert.NotContains(t, asMap, "project")
	assert.NotContains(t, asMap, "endDate")
}

func TestTaskDefaults(t *testing.T) {
	got := format.Task(notionapi.Page{Properties: notionapi.Properties{}})

	assert.Equal(t, "Sin título", got.Title)
	assert.Equal(t, "Sin estado", got.Status)
	assert.Empty(t, got.Priority)
	assert.Empty(t, got.DueDate)
}

func TestTaskTitleFoundByType(t *testing.T) {
	// The title property is named "Tarea", not "Name": it must still be
	// found because lookup dispatches on the property type.
	page := notionapi.Page{
		Properties: notionapi.Properties{
			"Tarea": title("Preparar demo"),
		},
	}
	assert.Equal(t, "Preparar demo", format.Task(page).Title)
}

func TestTaskAssigneesAcrossPeopleProperties(t *testing.T) {
	page := notionapi.Page{
		Properties: notionapi.Properties{
			"Name": title("Revisar contrato"),
			"Owner": &notionapi.PeopleProperty{
				Type:   "people",
				People: []notionapi.User{{Name: "Alice"}},
			},
			"Reviewers": &notionapi.PeopleProperty{
				Type:   "people",
				People: []notionapi.User{{Name: "Bob"}, {Name: "Carol"}},
			},
		},
	}

	got := format.Task(page)
	// Property names scan in sorted order, so the result is deterministic.
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, got.Assignees)
}

func TestTaskProjectShapes(t *testing.T) {
	tests := []struct {
		name string
		prop notionapi.Property
		want string
	}{
		{
			"select label",
			&notionapi.SelectProperty{Type: "select", Select: notionapi.Option{Name: "Atlas"}},
			"Atlas",
		},
		{
			"relation placeholder",
			&notionapi.RelationProperty{Type: "relation", Relation: []notionapi.Relation{{ID: "rel-1"}}},
			"(Proyecto relacionado)",
		},
		{
			"empty relation",
			&notionapi.RelationProperty{Type: "relation"},
			"",
		},
		{
			"rollup title",
			&notionapi.RollupProperty{Type: "rollup", Rollup: notionapi.Rollup{
				Type:  "array",
				Array: notionapi.PropertyArray{title("Atlas")},
			}},
			"Atlas",
		},
		{
			"rollup rich text",
			&notionapi.RollupProperty{Type: "rollup", Rollup: notionapi.Rollup{
				Type: "array",
				Array: notionapi.PropertyArray{&notionapi.RichTextProperty{
					Type:     "rich_text",
					RichText: []notionapi.RichText{{PlainText: "Atlas"}},
				}},
			}},
			"Atlas",
		},
		{
			"rollup number ignored",
			&notionapi.RollupProperty{Type: "rollup", Rollup: notionapi.Rollup{Type: "number", Number: 4}},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := notionapi.Page{
				Properties: notionapi.Properties{
					"Name":    title("Tarea"),
					"Project": tt.prop,
				},
			}
			assert.Equal(t, tt.want, format.Task(page).Project)
		})
	}
}

func TestTaskDueDateFallbackName(t *testing.T) {
	page := notionapi.Page{
		Properties: notionapi.Properties{
			"Name": title("Tarea"),
			"Date": &notionapi.DateProperty{Type: "date", Date: &notionapi.DateObject{
				Start: date(2024, time.May, 1),
				End:   date(2024, time.May, 3),
			}},
		},
	}

	got := format.Task(page)
	assert.Equal(t, "2024-05-01", got.DueDate)
	assert.Equal(t, "2024-05-03", got.EndDate)
}

func TestTaskGroupsKeepTitles(t *testing.T) {
	groups := []models.DatabaseGroup{
		{ID: "a", Title: "Proyectos", Tasks: []notionapi.Page{{Properties: notionapi.Properties{"Name": title("T1")}}}},
		{ID: "b", Title: "Personal", Tasks: []notionapi.Page{}},
	}

	got := format.TaskGroups(groups)
	require.Len(t, got, 2)
	assert.Equal(t, "Proyectos", got[0].DBTitle)
	require.Len(t, got[0].Tasks, 1)
	assert.Equal(t, "T1", got[0].Tasks[0].Title)
	assert.Empty(t, got[1].Tasks)
}

// Formatting is deterministic: two runs over the same input agree.
func TestTaskDeterminism(t *testing.T) {
	page := notionapi.Page{
		Properties: notionapi.Properties{
			"Name":   title("Tarea"),
			"Team":   &notionapi.PeopleProperty{Type: "people", People: []notionapi.User{{Name: "Dana"}}},
			"Extras": &notionapi.PeopleProperty{Type: "people", People: []notionapi.User{{Name: "Eve"}}},
		},
	}

	first := format.Task(page)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, format.Task(page))
	}
}
