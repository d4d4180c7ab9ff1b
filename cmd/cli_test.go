package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/hnglance/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontPage = `<html><body><table>
<tr class="athing submission" id="101"><td class="title">Hello</td></tr>
<tr class="athing submission" id="102"><td class="title">World</td></tr>
</table></body></html>`

type fakeHN struct {
	server     *httptest.Server
	itemCalls  atomic.Int64
	frontCalls atomic.Int64
}

func newFakeHN(t *testing.T) *fakeHN {
	t.Helper()

	hn := &fakeHN{}
	posted := time.Now().Add(-time.Hour).Unix()

	mux := http.NewServeMux()
	mux.HandleFunc("/front", func(w http.ResponseWriter, _ *http.Request) {
		hn.frontCalls.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, frontPage)
	})
	mux.HandleFunc("/v0/item/", func(w http.ResponseWriter, r *http.Request) {
		hn.itemCalls.Add(1)
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v0/item/"), ".json")
		title := map[string]string{"101": "Show HN: A tiny cache", "102": "Go 2 is out"}[id]
		if title == "" {
			_, _ = fmt.Fprint(w, "null")
			return
		}
		_, _ = fmt.Fprintf(w,
			`{"id":%s,"by":"alice","descendants":3,"score":42,"time":%d,"title":%q,"type":"story","url":"%s/page/%s"}`,
			id, posted, title, hn.server.URL, id)
	})
	mux.HandleFunc("/item", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<div class="commtext c00">Nice work.</div>`)
	})
	mux.HandleFunc("/page/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprint(w, "Article body.")
	})

	hn.server = httptest.NewServer(mux)
	t.Cleanup(hn.server.Close)
	return hn
}

func setupEnv(t *testing.T, hn *fakeHN) {
	t.Helper()

	t.Setenv("HNGLANCE_HACKERNEWS_API_URL", hn.server.URL+"/v0")
	t.Setenv("HNGLANCE_HACKERNEWS_WEB_URL", hn.server.URL)
	t.Setenv("HNGLANCE_SUMMARIZER_PROVIDER", "none")
	t.Setenv("HNGLANCE_RETRY_BASE_DELAY", "0s")
	t.Setenv("HNGLANCE_LOG_LEVEL", "error")
}

func TestVersionPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestVersionIgnoresInvalidConfig(t *testing.T) {
	t.Setenv("HNGLANCE_SOURCES", "bogus")

	_, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
}

func TestListWithEmptyCache(t *testing.T) {
	setupEnv(t, newFakeHN(t))

	stdout, _, err := executeCLI(t, t.TempDir(), "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stories: 0")
	assert.Contains(t, stdout, "No cached stories")
}

func TestRefreshThenList(t *testing.T) {
	hn := newFakeHN(t)
	setupEnv(t, hn)
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "refresh")
	require.NoError(t, err)
	assert.Contains(t, stdout, "refresh run finished: 2 candidates")
	assert.Contains(t, stdout, "2 created")
	assert.Contains(t, stdout, "2 stories cached")

	statePath := filepath.Join(home, ".local/state/hnglance/hackernews.toml")
	state, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Contains(t, string(state), "Show HN: A tiny cache")
	assert.Contains(t, string(state), "Article body.")

	stdout, _, err = executeCLI(t, home, "list", "--brief")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stories: 2")
	assert.Contains(t, stdout, "Show HN: A tiny cache")
	assert.Contains(t, stdout, "Go 2 is out")

	stdout, _, err = executeCLI(t, home, "list", "--json")
	require.NoError(t, err)
	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &items))
	require.Len(t, items, 2)
	assert.EqualValues(t, 101, items[0]["id"])
	assert.EqualValues(t, 42, items[0]["score"])
}

func TestRefreshSecondRunKeepsUnchangedStories(t *testing.T) {
	hn := newFakeHN(t)
	setupEnv(t, hn)
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "refresh")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "refresh", "--json")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "refresh", report["mode"])
	assert.EqualValues(t, 2, report["unchanged"])
	assert.EqualValues(t, 0, report["created"])
	assert.EqualValues(t, 2, report["records"])
}

func TestRefreshRewriteOnlySkipsNetwork(t *testing.T) {
	hn := newFakeHN(t)
	setupEnv(t, hn)
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "refresh")
	require.NoError(t, err)
	frontCalls := hn.frontCalls.Load()
	itemCalls := hn.itemCalls.Load()

	stdout, _, err := executeCLI(t, home, "refresh", "--rewrite-only")
	require.NoError(t, err)
	assert.Contains(t, stdout, "rewrite run finished")
	assert.Equal(t, frontCalls, hn.frontCalls.Load())
	assert.Equal(t, itemCalls, hn.itemCalls.Load())
}

func TestRefreshRejectsConflictingModes(t *testing.T) {
	setupEnv(t, newFakeHN(t))

	_, _, err := executeCLI(t, t.TempDir(), "refresh", "--resummarize", "--rewrite-only")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestRefreshWithProgressSpinner(t *testing.T) {
	setupEnv(t, newFakeHN(t))

	stdout, _, err := executeCLI(t, t.TempDir(), "refresh", "--progress")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 created")
}

func TestRefreshExportsAppData(t *testing.T) {
	setupEnv(t, newFakeHN(t))
	home := t.TempDir()
	output := filepath.Join(home, "glance", "hackernews.json")
	t.Setenv("HNGLANCE_OUTPUT_APPDATA", output)

	_, _, err := executeCLI(t, home, "refresh")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Hacker News", doc["name"])
	assert.Equal(t, true, doc["stateful"])
	assert.Len(t, doc["items"], 2)
}

func TestRefreshFailsWhenNoSourceResponds(t *testing.T) {
	hn := newFakeHN(t)
	setupEnv(t, hn)
	t.Setenv("HNGLANCE_HACKERNEWS_WEB_URL", hn.server.URL+"/missing")

	_, _, err := executeCLI(t, t.TempDir(), "refresh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidate source succeeded")
}

func TestInvalidConfigIsReported(t *testing.T) {
	setupEnv(t, newFakeHN(t))
	t.Setenv("HNGLANCE_SOURCES", "newest")

	_, _, err := executeCLI(t, t.TempDir(), "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown source "newest"`)
}

func TestConfigFlagOverridesDefaults(t *testing.T) {
	setupEnv(t, newFakeHN(t))
	home := t.TempDir()
	statePath := filepath.Join(home, "custom", "state.toml")
	configPath := filepath.Join(home, "hnglance.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf("[state]\npath = %q\n", statePath)), 0o600))

	_, _, err := executeCLI(t, home, "--config", configPath, "refresh")
	require.NoError(t, err)
	assert.FileExists(t, statePath)
}

func TestInvalidLogLevelFlag(t *testing.T) {
	setupEnv(t, newFakeHN(t))

	_, _, err := executeCLI(t, t.TempDir(), "--log-level", "loud", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestResolveAPIKeysFromSecretsDir(t *testing.T) {
	// no pass binary on PATH, so the file backend answers
	t.Setenv("PATH", t.TempDir())
	secretsDir := filepath.Join(t.TempDir(), "secrets")
	require.NoError(t, os.MkdirAll(filepath.Join(secretsDir, "hnglance"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, "hnglance", "gemini_api_key"), []byte("gm-secret\n"), 0o600))

	cfg := config.Config{SecretsDir: secretsDir}
	cfg.Summarizer.Provider = config.ProviderGemini
	cfg.Summarizer.Gemini.APIKeySecret = "hnglance/gemini_api_key"

	require.NoError(t, resolveAPIKeys(context.Background(), &cfg))
	assert.Equal(t, "gm-secret", cfg.Summarizer.Gemini.APIKey)

	cfg.Summarizer.Gemini = config.ProviderConfig{APIKeySecret: "hnglance/missing"}
	err := resolveAPIKeys(context.Background(), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve secret")
}

func TestListDoesNotNeedSummarizerCredentials(t *testing.T) {
	setupEnv(t, newFakeHN(t))
	t.Setenv("HNGLANCE_SUMMARIZER_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	stdout, _, err := executeCLI(t, t.TempDir(), "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stories: 0")

	_, _, err = executeCLI(t, t.TempDir(), "refresh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing api key")
}
