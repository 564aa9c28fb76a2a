package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"prabandam/scraper/internal/config"

	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.ScraperConfig {
	return config.ScraperConfig{
		BaseURL:       baseURL,
		BuildID:       "test-build",
		Timeout:       5,
		MaxRetries:    3,
		RetryWait:     0,
		RetryStatuses: []int{429, 500, 502, 503, 504},
		MaxWorkers:    5,
	}
}

func TestDataURL(t *testing.T) {
	url := DataURL("https://www.uveda.org", "abc123", "/divya-prabandam")
	require.Equal(t, "https://www.uveda.org/_next/data/abc123/divya-prabandam.json", url)

	// normalization makes the leading slash optional
	require.Equal(t, url, DataURL("https://www.uveda.org", "abc123", "divya-prabandam"))
}

func TestFetchJSONRetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer server.Close()

	c := NewUvedaClient(testConfig(server.URL), nil)
	payload := c.FetchJSON(context.Background(), server.URL+"/data.json")

	require.Equal(t, map[string]interface{}{"ok": true}, payload)
	require.Equal(t, int32(3), hits.Load())
}

func TestFetchJSONExhaustedRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewUvedaClient(testConfig(server.URL), nil)
	payload := c.FetchJSON(context.Background(), server.URL+"/data.json")

	require.Empty(t, payload)
	// initial attempt plus the configured retries
	require.Equal(t, int32(4), hits.Load())
}

func TestFetchJSONNonRetryableStatus(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewUvedaClient(testConfig(server.URL), nil)
	payload := c.FetchJSON(context.Background(), server.URL+"/missing.json")

	require.Empty(t, payload)
	require.Equal(t, int32(1), hits.Load())
}

func TestFetchJSONNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer server.Close()

	c := NewUvedaClient(testConfig(server.URL), nil)
	require.Empty(t, c.FetchJSON(context.Background(), server.URL+"/data.json"))
}

func TestFetchJSONNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	cfg := testConfig(url)
	cfg.MaxRetries = 0
	c := NewUvedaClient(cfg, nil)
	require.Empty(t, c.FetchJSON(context.Background(), url+"/data.json"))
}

func TestResolveBuildID(t *testing.T) {
	var requestedPath atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath.Store(r.URL.Path)
		fmt.Fprint(w, `<html><body>
			<script id="__NEXT_DATA__" type="application/json">{"buildId":"df6mzA8-discovered","props":{}}</script>
		</body></html>`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.BuildID = ""
	c := NewUvedaClient(cfg, nil)

	require.NoError(t, c.ResolveBuildID(context.Background()))
	require.Equal(t, ContentRoot, requestedPath.Load())
	require.Equal(t,
		server.URL+"/_next/data/df6mzA8-discovered/divya-prabandam.json",
		c.BuildURL(ContentRoot))
}

func TestResolveBuildIDConfigured(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	c := NewUvedaClient(testConfig(server.URL), nil)

	require.NoError(t, c.ResolveBuildID(context.Background()))
	require.Zero(t, hits.Load())
}

func TestResolveBuildIDMissingPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>no next data here</body></html>`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.BuildID = ""
	c := NewUvedaClient(cfg, nil)

	require.Error(t, c.ResolveBuildID(context.Background()))
}

func TestDiscoverLeafURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pageProps": {"descendants_list": [
			["prabandam", "thiruppavai", "taniyan"],
			["prabandam", "thiruppavai", "verse-1"],
			["prabandam", "thiruppavai", "verse-2"]
		]}}`)
	}))
	defer server.Close()

	c := NewUvedaClient(testConfig(server.URL), nil)
	urls := c.DiscoverLeafURLs(context.Background(), server.URL+"/prabandam.json")

	require.Equal(t, []string{
		server.URL + "/_next/data/test-build/divya-prabandam/prabandam/thiruppavai/verse-1.json",
		server.URL + "/_next/data/test-build/divya-prabandam/prabandam/thiruppavai/verse-2.json",
	}, urls)
}

func TestDiscoverLeafURLsNoPageProps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"other": true}`)
	}))
	defer server.Close()

	c := NewUvedaClient(testConfig(server.URL), nil)
	require.Empty(t, c.DiscoverLeafURLs(context.Background(), server.URL+"/prabandam.json"))
}

func TestExtractPaasuram(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pageProps": {
			"number_full": "1",
			"pasuram_ta_c": "தமிழ்",
			"scriptures": ["a", "b"]
		}}`)
	}))
	defer server.Close()

	c := NewUvedaClient(testConfig(server.URL), nil)
	record, ok := c.ExtractPaasuram(context.Background(), server.URL+"/verse.json")

	require.True(t, ok)
	require.Equal(t, "1", record.Number)
	require.Equal(t, "தமிழ்", record.Tamil)
	require.Equal(t, "a,b", record.Scriptures)
}

func TestExtractPaasuramNoPageProps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	c := NewUvedaClient(testConfig(server.URL), nil)
	_, ok := c.ExtractPaasuram(context.Background(), server.URL+"/verse.json")
	require.False(t, ok)
}
