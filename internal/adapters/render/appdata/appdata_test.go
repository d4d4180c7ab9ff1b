package appdata

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/hnglance/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []domain.Record {
	updated := time.Date(2026, 2, 14, 12, 30, 0, 0, time.UTC)

	return []domain.Record{
		{
			ID: 42,
			Info: domain.StoryInfo{
				ID:          42,
				Descendants: 17,
				Score:       256,
				Time:        1771070400,
				Title:       "Go generics <3",
				Type:        domain.StoryType,
			},
			PageSummary:       "  Generics are useful when <b>used</b> well.\n",
			DiscussionSummary: "People disagree.",
			UpdatedAt:         updated,
		},
		{
			ID:                7,
			Info:              domain.StoryInfo{ID: 7, Score: 3, Title: "Ask HN", Type: domain.StoryType},
			DiscussionSummary: "One reply.",
			UpdatedAt:         updated,
		},
	}
}

func TestExporterBuild(t *testing.T) {
	t.Parallel()

	doc := NewExporter(Config{Executable: "/usr/bin/hnglance"}).Build(sampleRecords())

	assert.Equal(t, AppName, doc.Name)
	assert.Equal(t, "/usr/bin/hnglance", doc.Path)
	assert.True(t, doc.Stateful)
	assert.Equal(t, []Schedule{{Cron: DefaultCron}}, doc.Schedule)
	require.Len(t, doc.Items, 2)

	first := doc.Items[0]
	assert.Equal(t, "42", first.ID)
	assert.Equal(t, "2026-02-14T12:30:00Z", first.Updated)
	assert.Equal(t, "Go generics <3", first.Data.Title)
	assert.Equal(t, "Sat Feb 14 2026, 256 votes, 17 comments", first.Data.Subtitle)
	assert.Equal(t, "<pre>Generics are useful when used well.\n\nFrom the comments:\nPeople disagree.</pre>", first.Data.Detail)

	second := doc.Items[1]
	assert.Equal(t, "unknown date, 3 votes, 0 comments", second.Data.Subtitle)
	assert.Equal(t, "<pre>From the comments:\nOne reply.</pre>", second.Data.Detail)
}

func TestExporterExportWritesJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "apps", "hackernews.json")
	exporter := NewExporter(Config{Path: path, Cron: "*/30 * * * *"})

	require.NoError(t, exporter.Export(context.Background(), sampleRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, exporter.Build(sampleRecords()), doc)
	assert.Equal(t, "*/30 * * * *", doc.Schedule[0].Cron)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExporterExportRequiresPath(t *testing.T) {
	t.Parallel()

	err := NewExporter(Config{}).Export(context.Background(), nil)
	require.Error(t, err)
}
