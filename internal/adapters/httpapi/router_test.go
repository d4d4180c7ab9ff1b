package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/hnglance/internal/adapters/schedule"
	"github.com/bnema/hnglance/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecords struct {
	records []domain.Record
	err     error
}

func (s stubRecords) Records(context.Context) ([]domain.Record, error) {
	return s.records, s.err
}

type stubStatus struct {
	status schedule.Status
}

func (s stubStatus) Status() schedule.Status {
	return s.status
}

func testRecords() []domain.Record {
	updated := time.Date(2026, 2, 14, 12, 30, 0, 0, time.UTC)
	return []domain.Record{
		{
			ID:          1,
			Info:        domain.StoryInfo{ID: 1, Title: "First", URL: "https://example.com/1", Score: 10, Descendants: 2, Time: 1771070400, Type: domain.StoryType},
			PageSummary: "About one.",
			UpdatedAt:   updated,
		},
		{
			ID:        2,
			Info:      domain.StoryInfo{ID: 2, Title: "Second", Type: domain.StoryType},
			UpdatedAt: updated,
		},
	}
}

func serve(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealth(t *testing.T) {
	t.Parallel()

	rec := serve(t, NewRouter(stubRecords{}, nil, zerolog.Nop()), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouterItems(t *testing.T) {
	t.Parallel()

	rec := serve(t, NewRouter(stubRecords{records: testRecords()}, nil, zerolog.Nop()), "/items")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var items []ItemView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, NewItemView(testRecords()[0]), items[0])
	assert.Equal(t, "Second", items[1].Title)
}

func TestRouterOmitsUnknownTimes(t *testing.T) {
	t.Parallel()

	rec := serve(t, NewRouter(stubRecords{records: testRecords()}, nil, zerolog.Nop()), "/items")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw, 2)
	assert.Contains(t, raw[0], "posted_at")
	assert.NotContains(t, raw[1], "posted_at")

	rec = serve(t, NewRouter(stubRecords{}, stubStatus{status: schedule.Status{Schedule: "@hourly"}}, zerolog.Nop()), "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.NotContains(t, status, "last_start")
	assert.NotContains(t, status, "next")
}

func TestRouterItem(t *testing.T) {
	t.Parallel()

	router := NewRouter(stubRecords{records: testRecords()}, nil, zerolog.Nop())

	tests := []struct {
		path   string
		status int
	}{
		{path: "/items/1", status: http.StatusOK},
		{path: "/items/3", status: http.StatusNotFound},
		{path: "/items/abc", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		rec := serve(t, router, tt.path)
		assert.Equal(t, tt.status, rec.Code, tt.path)
	}

	var item ItemView
	require.NoError(t, json.Unmarshal(serve(t, router, "/items/1").Body.Bytes(), &item))
	assert.Equal(t, "About one.", item.PageSummary)
	assert.Equal(t, time.Unix(1771070400, 0).UTC(), item.PostedAt)
}

func TestRouterItemsSnapshotError(t *testing.T) {
	t.Parallel()

	rec := serve(t, NewRouter(stubRecords{err: errors.New("corrupt")}, nil, zerolog.Nop()), "/items")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"snapshot unavailable"}`, rec.Body.String())
}

func TestRouterStatus(t *testing.T) {
	t.Parallel()

	rec := serve(t, NewRouter(stubRecords{}, nil, zerolog.Nop()), "/status")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	status := schedule.Status{Schedule: "0 */3 * * *", Runs: 4, Failures: 1}
	rec = serve(t, NewRouter(stubRecords{}, stubStatus{status: status}, zerolog.Nop()), "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var got schedule.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 4, got.Runs)
	assert.Equal(t, "0 */3 * * *", got.Schedule)
}
