package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/frontpage/internal/storage"
	"github.com/pders01/frontpage/internal/topstories"
)

const techResponse = `{
  "status": "OK",
  "section": "technology",
  "last_updated": "2024-01-10T09:00:00-05:00",
  "num_results": 2,
  "results": [
    {"section": "technology", "title": "Older Chip News", "abstract": "a",
     "url": "https://www.nytimes.com/2024/01/08/technology/chips.html",
     "uri": "nyt://article/1", "byline": "By Ada Lovelace",
     "published_date": "2024-01-08T10:00:00-05:00", "des_facet": "", "multimedia": null},
    {"section": "technology", "title": "Newer AI News", "abstract": "b",
     "url": "https://www.nytimes.com/2024/01/09/technology/ai.html",
     "uri": "nyt://article/2", "byline": "By Alan Turing",
     "published_date": "2024-01-09T10:00:00-05:00", "des_facet": ["Artificial Intelligence"]}
  ]
}`

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	configPath, dbPath, sourceName, quiet = "", "", "", false
	storiesSort, storiesLimit, storiesJSON = "", 0, false
	showWidth, showStyle, showRaw = 100, "", false
	historyLimit = 20

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// writeConfig writes a config pointing at baseURL with its own database.
func writeConfig(t *testing.T, baseURL, key string) string {
	t.Helper()
	for _, name := range []string{"FRONTPAGE_API_KEY", "NYT_API_KEY", "NEXT_PUBLIC_NYT_API_KEY"} {
		t.Setenv(name, "")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf(`[api]
key = %q
base_url = %q

[database]
path = %q

[log]
level = "off"
`, key, baseURL, filepath.Join(dir, "state.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)

	assert.Contains(t, out, "frontpage dev")
	assert.Contains(t, out, "Top Stories Reader")
	assert.Contains(t, out, "github.com/pders01/frontpage")
}

func TestGenerateConfigCommand(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "frontpage", "config.toml")

	out, err := execute(t, "", "generate-config", configFile)
	require.NoError(t, err)

	assert.FileExists(t, configFile)
	assert.Contains(t, out, "Generated default configuration at: "+configFile)

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_section")
}

func TestSectionsCommand(t *testing.T) {
	out, err := execute(t, "", "sections")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(topstories.Sections()))
	assert.Contains(t, out, "technology")
	assert.Contains(t, out, "NY Region")
}

func TestStoriesCommand(t *testing.T) {
	var paths []string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api-key"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, techResponse)
	})
	cfgPath := writeConfig(t, srv.URL, "test-key")

	t.Run("json newest first with limit", func(t *testing.T) {
		out, err := execute(t, "", "stories", "technology", "--config", cfgPath, "--sort", "newest", "--limit", "1", "--json")
		require.NoError(t, err)

		var result topstories.FetchResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "technology", result.Section)
		require.Len(t, result.Results, 1)
		assert.Equal(t, "Newer AI News", result.Results[0].Title)
		assert.Equal(t, topstories.Facet{"Artificial Intelligence"}, result.Results[0].DesFacet)
	})

	t.Run("text as published", func(t *testing.T) {
		out, err := execute(t, "", "stories", "technology", "--config", cfgPath)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(out, "Technology"))
		assert.Less(t, strings.Index(out, "Older Chip News"), strings.Index(out, "Newer AI News"))
		assert.Contains(t, out, "Ada Lovelace")
		assert.NotContains(t, out, "By Ada")
	})

	assert.Equal(t, "/technology.json", paths[0])
}

func TestStoriesCommandErrors(t *testing.T) {
	t.Run("api status", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"status":"ERROR","results":[]}`)
		})
		_, err := execute(t, "", "stories", "--config", writeConfig(t, srv.URL, "test-key"))

		var statusErr *topstories.APIStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, "ERROR", statusErr.Status)
	})

	t.Run("missing key makes no request", func(t *testing.T) {
		calls := 0
		srv := newServer(t, func(http.ResponseWriter, *http.Request) { calls++ })
		_, err := execute(t, "", "stories", "--config", writeConfig(t, srv.URL, ""))

		var cfgErr *topstories.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.ErrorIs(t, err, topstories.ErrMissingAPIKey)
		assert.Zero(t, calls)
	})

	t.Run("bad sort", func(t *testing.T) {
		_, err := execute(t, "", "stories", "--config", writeConfig(t, "http://127.0.0.1:1", "k"), "--sort", "sideways")
		assert.ErrorContains(t, err, "unknown sort mode")
	})

	t.Run("invalid source", func(t *testing.T) {
		_, err := execute(t, "", "stories", "--config", writeConfig(t, "http://127.0.0.1:1", "k"), "--source", "carrier-pigeon")
		assert.ErrorContains(t, err, "invalid configuration")
	})
}

func TestShowCommand(t *testing.T) {
	story := &topstories.Story{
		Section:       "science",
		Title:         "Rover Finds Water on Mars",
		Abstract:      "Scientists announced the discovery.",
		URL:           "https://www.nytimes.com/2024/01/10/science/mars-water.html",
		Byline:        "By Jane Doe",
		Kicker:        "Space",
		PublishedDate: topstories.ParseTimestamp("2024-01-10T10:00:00-05:00"),
	}
	data, err := topstories.Encode(story)
	require.NoError(t, err)
	cfgPath := writeConfig(t, "http://127.0.0.1:1", "k")

	t.Run("file rendered", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "story.json")
		require.NoError(t, os.WriteFile(file, data, 0o600))

		out, err := execute(t, "", "show", file, "--config", cfgPath, "--style", "notty", "--width", "80")
		require.NoError(t, err)
		assert.Contains(t, out, "Rover Finds Water on Mars")
		assert.Contains(t, out, "Jane Doe")
		assert.Contains(t, out, "Read full article")
	})

	t.Run("stdin raw", func(t *testing.T) {
		out, err := execute(t, string(data), "show", "-", "--config", cfgPath, "--raw")
		require.NoError(t, err)
		assert.Contains(t, out, "# Rover Finds Water on Mars")
		assert.Contains(t, out, "**SPACE**")
		assert.Contains(t, out, "not available here")
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := execute(t, `{"title": `, "show", "--config", cfgPath)
		var parseErr *topstories.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestHistoryCommand(t *testing.T) {
	cfgPath := writeConfig(t, "http://127.0.0.1:1", "k")
	db := filepath.Join(t.TempDir(), "history.db")

	out, err := execute(t, "", "history", "--config", cfgPath, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No stories read yet.")

	store, err := storage.NewStore(db, 0)
	require.NoError(t, err)
	require.NoError(t, store.MarkRead(&storage.ReadMark{Key: "nyt://article/1", Section: "world", Title: "Summit Ends"}))
	require.NoError(t, store.Close())

	out, err = execute(t, "", "history", "--config", cfgPath, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Summit Ends")
	assert.Contains(t, out, "World")
	assert.Contains(t, out, "just now")
}
