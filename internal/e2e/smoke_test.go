package e2e

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	server := newHackerNewsServer(t)

	env := []string{
		"HNGLANCE_HACKERNEWS_API_URL=" + server.URL + "/v0",
		"HNGLANCE_HACKERNEWS_WEB_URL=" + server.URL,
		"HNGLANCE_SUMMARIZER_PROVIDER=none",
		"HNGLANCE_RETRY_BASE_DELAY=0s",
	}

	stdout, stderr, err := runHNGlance(t, binaryPath, home, env, "refresh")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "1 created")

	stdout, stderr, err = runHNGlance(t, binaryPath, home, env, "list", "--brief")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Smoke test story")

	stdout, stderr, err = runHNGlance(t, binaryPath, home, env, "version")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.NotEmpty(t, stdout)
}

func newHackerNewsServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/front", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<table><tr class="athing" id="7"><td>Smoke test story</td></tr></table>`)
	})
	mux.HandleFunc("/v0/item/7.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `{"id":7,"by":"bob","score":3,"time":%d,"title":"Smoke test story","type":"story"}`,
			time.Now().Add(-time.Hour).Unix())
	})
	mux.HandleFunc("/item", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<span class="commtext">First!</span>`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "hnglance-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/hnglance")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build hnglance binary: %s", string(output))
	return binaryPath
}

func runHNGlance(t *testing.T, binaryPath, home string, env []string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(append(os.Environ(), "HOME="+home), env...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
