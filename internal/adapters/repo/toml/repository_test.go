package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/hnglance/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, statePath string) *SnapshotRepository {
	t.Helper()

	config := viper.New()
	config.Set("state.path", statePath)

	repo, err := NewSnapshotRepository(config)
	require.NoError(t, err)
	return repo
}

func sampleSnapshot() domain.Snapshot {
	updated := time.Date(2026, 2, 14, 11, 0, 0, 123456789, time.UTC)

	return domain.Snapshot{
		Records: []domain.Record{
			{
				ID: 42,
				Info: domain.StoryInfo{
					ID:          42,
					By:          "dang",
					Descendants: 3,
					Kids:        []domain.ItemID{43, 44},
					Score:       128,
					Time:        1771070400,
					Title:       `Ask HN: "quotes" and \backslashes`,
					Type:        domain.StoryType,
					URL:         "https://example.com/post",
				},
				Page:              "# Heading\n\nBody with \"\"\" triple quotes",
				Discussion:        "first\n\nsecond",
				PageSummary:       "A page.",
				DiscussionSummary: "People agree.",
				UpdatedAt:         updated,
			},
			{
				ID:                7,
				Info:              domain.StoryInfo{ID: 7, By: "pg", Title: "Text post", Type: domain.StoryType},
				Discussion:        "only comments",
				DiscussionSummary: "Short.",
				UpdatedAt:         updated.Add(time.Hour),
			},
		},
		Suppressed: map[domain.ItemID]time.Time{
			42: time.Unix(1771070400, 0).UTC(),
			99: updated.Add(-48 * time.Hour),
		},
	}
}

func TestSnapshotRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "hackernews.toml"))
	snapshot := sampleSnapshot()

	require.NoError(t, repo.Save(context.Background(), snapshot))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshot, got)
}

func TestSnapshotRepositoryInvalidUTF8StillLoads(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "hackernews.toml"))
	snapshot := domain.Snapshot{
		Records: []domain.Record{{
			ID:                5,
			Info:              domain.StoryInfo{ID: 5, Title: "caf\xe9", Type: domain.StoryType},
			Page:              "caf\xc3",
			Discussion:        "cr\xe8me br\xfbl\xe9e",
			PageSummary:       "ok",
			DiscussionSummary: "\xff",
			UpdatedAt:         time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC),
		}},
		Suppressed: map[domain.ItemID]time.Time{},
	}

	require.NoError(t, repo.Save(context.Background(), snapshot))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	record := got.Records[0]
	assert.Equal(t, "caf\uFFFD", record.Info.Title)
	assert.Equal(t, "caf\uFFFD", record.Page)
	assert.Equal(t, "cr\uFFFDme br\uFFFDl\uFFFDe", record.Discussion)
	assert.Equal(t, "ok", record.PageSummary)
	assert.Equal(t, "\uFFFD", record.DiscussionSummary)
}

func TestSnapshotRepositorySaveTightensExistingFileMode(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "hackernews.toml")
	require.NoError(t, os.WriteFile(statePath, []byte("version = 1\n"), 0o644))
	repo := newTestRepository(t, statePath)

	require.NoError(t, repo.Save(context.Background(), sampleSnapshot()))

	info, err := os.Stat(statePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSnapshotRepositoryMissingFileReturnsEmptySnapshot(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "missing", "hackernews.toml"))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Records)
	assert.NotNil(t, got.Suppressed)
}

func TestSnapshotRepositorySaveCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	repo, err := NewSnapshotRepository(viper.New())
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), domain.NewSnapshot()))

	statePath := filepath.Join(homeDir, ".local", "state", "hnglance", "hackernews.toml")
	assert.Equal(t, statePath, repo.Path())
	info, err := os.Stat(statePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSnapshotRepositoryCorruptFileReturnsCorruptError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
		contains string
	}{
		{name: "malformed", contents: "records = [", contains: "decode snapshot file"},
		{name: "future version", contents: "version = 999\n", contains: "unsupported snapshot schema version"},
		{name: "bad suppressed id", contents: "version = 1\n\n[suppressed]\nabc = \"2026-02-14T11:00:00Z\"\n", contains: "suppressed entry"},
		{name: "bad timestamp", contents: "version = 1\n\n[[records]]\nid = 1\nupdated_at = \"yesterday\"\n", contains: "record 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			statePath := filepath.Join(t.TempDir(), "hackernews.toml")
			require.NoError(t, os.WriteFile(statePath, []byte(tt.contents), 0o600))
			repo := newTestRepository(t, statePath)

			_, err := repo.Load(context.Background())
			require.ErrorIs(t, err, domain.ErrSnapshotCorrupt)
			assert.ErrorContains(t, err, tt.contains)
		})
	}
}

func TestSnapshotRepositoryFailedRenameKeepsPreviousFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	statePath := filepath.Join(dir, "hackernews.toml")
	repo := newTestRepository(t, statePath)

	require.NoError(t, repo.Save(context.Background(), sampleSnapshot()))
	before, err := os.ReadFile(statePath)
	require.NoError(t, err)

	repo.rename = func(string, string) error {
		return errors.New("interrupted")
	}
	err = repo.Save(context.Background(), domain.NewSnapshot())
	require.Error(t, err)
	assert.ErrorContains(t, err, "replace snapshot file")

	after, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hackernews.toml", entries[0].Name())
}

func TestSnapshotRepositorySaveCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "hackernews.toml")
	repo := newTestRepository(t, statePath)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Save(ctx, sampleSnapshot())
	require.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(statePath)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestSnapshotRepositoryConcurrentSavesAcrossInstancesLeaveValidFile(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "hackernews.toml")
	repoA := newTestRepository(t, statePath)
	repoB := newTestRepository(t, statePath)

	const perRepoWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perRepoWrites*2)
	var wg sync.WaitGroup
	wg.Add(2)

	write := func(repo *SnapshotRepository, id domain.ItemID) {
		defer wg.Done()
		<-start
		for i := 0; i < perRepoWrites; i++ {
			snapshot := domain.NewSnapshot()
			snapshot.Records = []domain.Record{{ID: id, Info: domain.StoryInfo{ID: id, Type: domain.StoryType}}}
			errCh <- repo.Save(context.Background(), snapshot)
		}
	}
	go write(repoA, 1)
	go write(repoB, 2)

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	got, err := repoA.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
}

func TestSnapshotRepositorySerializedTOMLLayout(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "hackernews.toml")
	repo := newTestRepository(t, statePath)

	require.NoError(t, repo.Save(context.Background(), sampleSnapshot()))

	data, err := os.ReadFile(statePath)
	require.NoError(t, err)
	contents := string(data)
	assert.Contains(t, contents, "version = 1")
	assert.Contains(t, contents, "[[records]]")
	assert.Contains(t, contents, "[records.info]")
	assert.Contains(t, contents, "[suppressed]")
	assert.True(t, strings.Contains(contents, "2026-02-14T11:00:00.123456789Z"))
}
