package topstories

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pders01/frontpage/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const technologyResponse = `{
  "status": "OK",
  "copyright": "Copyright (c) 2024 The New York Times Company. All Rights Reserved.",
  "section": "technology",
  "last_updated": "2024-01-02T01:00:00Z",
  "num_results": 1,
  "results": [
    {
      "section": "technology",
      "subsection": "",
      "title": "X",
      "abstract": "Something happened.",
      "url": "https://www.nytimes.com/2024/01/02/technology/x.html",
      "uri": "nyt://article/1",
      "byline": "By A Reporter",
      "item_type": "Article",
      "updated_date": "2024-01-02T00:30:00-05:00",
      "created_date": "2024-01-01T23:00:00-05:00",
      "published_date": "2024-01-02T00:00:00Z",
      "material_type_facet": "",
      "kicker": "",
      "des_facet": ["Computers and the Internet"],
      "org_facet": "",
      "per_facet": [],
      "geo_facet": "",
      "multimedia": [
        {
          "url": "https://static01.nyt.com/images/x.jpg",
          "format": "Super Jumbo",
          "height": 1365,
          "width": 2048,
          "type": "image",
          "subtype": "photo",
          "caption": "A caption.",
          "copyright": "A Photographer"
        }
      ],
      "short_url": "https://nyti.ms/abc"
    }
  ]
}`

func testClient(baseURL string) *Client {
	cfg := config.TestConfig()
	cfg.API.BaseURL = baseURL
	return NewClient(cfg)
}

func TestClientTopStories(t *testing.T) {
	var gotPath, gotKey, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api-key")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(technologyResponse))
	}))
	defer server.Close()

	result, err := testClient(server.URL).TopStories(context.Background(), "Technology")
	require.NoError(t, err)

	assert.Equal(t, "/technology.json", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "frontpage-test/1.0", gotUA)

	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, 1, result.NumResults)
	assert.Equal(t, "2024-01-02T01:00:00Z", result.LastUpdated.Raw)
	require.Len(t, result.Results, 1)

	story := result.Results[0]
	assert.Equal(t, "X", story.Title)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), story.PublishedDate.Time.UTC())
	assert.Equal(t, Facet{"Computers and the Internet"}, story.DesFacet)
	assert.Nil(t, story.OrgFacet)
	assert.Empty(t, story.PerFacet)
	require.Len(t, story.Multimedia, 1)
	assert.Equal(t, 2048, story.Multimedia[0].Width)
}

func TestClientDefaultsToHome(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"status":"OK","num_results":0,"results":[]}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).TopStories(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "/home.json", gotPath)
}

func TestClientMissingKeyMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	cfg := config.TestConfig()
	cfg.API.BaseURL = server.URL
	cfg.API.Key = ""

	result, err := NewClient(cfg).TopStories(context.Background(), "world")
	assert.Nil(t, result)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Equal(t, "api.key", cfgErr.Setting)
	assert.Zero(t, calls.Load(), "no request may be issued without a key")
}

func TestClientRejectsInvalidSection(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	_, err := testClient(server.URL).TopStories(context.Background(), "../admin")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "section", cfgErr.Setting)
	assert.Zero(t, calls.Load())
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "api status error",
			status: http.StatusOK,
			body:   `{"status":"ERROR","errors":["bad section"],"results":[]}`,
			check: func(t *testing.T, err error) {
				var statusErr *APIStatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, "ERROR", statusErr.Status)
			},
		},
		{
			name:   "missing status",
			status: http.StatusOK,
			body:   `{"results":[]}`,
			check: func(t *testing.T, err error) {
				var statusErr *APIStatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Empty(t, statusErr.Status)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `oops`,
			check: func(t *testing.T, err error) {
				var tErr *TransportError
				require.ErrorAs(t, err, &tErr)
				assert.Equal(t, http.StatusInternalServerError, tErr.StatusCode)
				assert.Equal(t, "HTTP error: 500 Internal Server Error", tErr.Error())
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"fault":{"faultstring":"Invalid ApiKey"}}`,
			check: func(t *testing.T, err error) {
				var tErr *TransportError
				require.ErrorAs(t, err, &tErr)
				assert.Equal(t, http.StatusUnauthorized, tErr.StatusCode)
			},
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `{"status":"OK","results":[`,
			check: func(t *testing.T, err error) {
				var pErr *ParseError
				require.ErrorAs(t, err, &pErr)
			},
		},
		{
			name:   "html instead of json",
			status: http.StatusOK,
			body:   `<html><body>maintenance</body></html>`,
			check: func(t *testing.T, err error) {
				var pErr *ParseError
				require.ErrorAs(t, err, &pErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			result, err := testClient(server.URL).TopStories(context.Background(), "world")
			assert.Nil(t, result)
			require.Error(t, err)
			assert.NotContains(t, err.Error(), "test-key")
			tt.check(t, err)
		})
	}
}

func TestClientTransportErrorHidesKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	_, err := testClient(baseURL).TopStories(context.Background(), "world")

	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Zero(t, tErr.StatusCode)
	assert.NotContains(t, err.Error(), "test-key")
	assert.Contains(t, err.Error(), "/world.json")
}

func TestClientHonorsContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := testClient(server.URL).TopStories(ctx, "world")
		errCh <- err
	}()

	cancel()
	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
		assert.Equal(t, "request cancelled", Describe(err))
	case <-time.After(5 * time.Second):
		t.Fatal("request was not cancelled")
	}
}

func TestNewSource(t *testing.T) {
	cfg := config.TestConfig()
	assert.IsType(t, &Client{}, NewSource(cfg))

	cfg.API.Source = config.SourceRSS
	assert.IsType(t, &FeedClient{}, NewSource(cfg))
}
