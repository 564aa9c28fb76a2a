package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"prabandam/scraper/internal/config"
	"prabandam/scraper/internal/domain"
	"prabandam/scraper/internal/proxy"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// UvedaClient fetches the source site's server-rendered JSON endpoints.
type UvedaClient interface {
	// ResolveBuildID ensures the client holds a usable Next.js build ID,
	// discovering one from the site when none was configured.
	ResolveBuildID(ctx context.Context) error
	// BuildURL maps a logical content path to its data endpoint URL.
	BuildURL(path string) string
	// FetchJSON GETs a URL and decodes its JSON body. Any failure is
	// logged and yields an empty map; it never returns an error.
	FetchJSON(ctx context.Context, url string) map[string]interface{}
	// FindURLPaths collects every url_path_clean string in a payload.
	FindURLPaths(v interface{}) []string
	// DiscoverLeafURLs resolves a prabandam page to its paasuram URLs.
	DiscoverLeafURLs(ctx context.Context, prabandamURL string) []string
	// ExtractPaasuram fetches a leaf page and projects it onto the record
	// schema. ok is false when the payload is empty or has no pageProps.
	ExtractPaasuram(ctx context.Context, url string) (record domain.Paasuram, ok bool)
}

type uvedaClient struct {
	rl            ratelimit.Limiter
	config        config.ScraperConfig
	baseURL       string
	buildID       string
	retryStatuses map[int]bool
	httpClient    *resty.Client
	parser        *structureParser
	proxySupplier proxy.ProxySupplier
}

func NewUvedaClient(cfg config.ScraperConfig, proxySupplier proxy.ProxySupplier) UvedaClient {
	retryStatuses := make(map[int]bool, len(cfg.RetryStatuses))
	for _, status := range cfg.RetryStatuses {
		retryStatuses[status] = true
	}

	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(time.Duration(cfg.RetryWait)*time.Second).
		SetRetryMaxWaitTime(30*time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36").
		SetHeader("Accept", "application/json,text/html;q=0.9,*/*;q=0.8").
		AddRetryConditions(func(res *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return retryStatuses[res.StatusCode()]
		})

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &uvedaClient{
		rl:            rl,
		config:        cfg,
		baseURL:       cfg.BaseURL,
		buildID:       cfg.BuildID,
		retryStatuses: retryStatuses,
		httpClient:    client,
		parser:        newStructureParser(),
		proxySupplier: proxySupplier,
	}
}

// DataURL maps a logical content path to the Next.js data endpoint serving
// it. The path is normalized to a leading slash first.
func DataURL(baseURL, buildID, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + "/_next/data/" + buildID + path + ".json"
}

func (c *uvedaClient) BuildURL(path string) string {
	return DataURL(c.baseURL, c.buildID, path)
}

func (c *uvedaClient) ResolveBuildID(ctx context.Context) error {
	if c.buildID != "" {
		return nil
	}

	url := c.baseURL + ContentRoot
	log.Infof("🔎 No build ID configured, discovering from %s", url)

	c.rl.Take()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("HTTP error fetching %s: %d %s", url, resp.StatusCode(), resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}

	raw := doc.Find("script#__NEXT_DATA__").First().Text()
	if raw == "" {
		return fmt.Errorf("no __NEXT_DATA__ payload at %s", url)
	}

	var nextData struct {
		BuildID string `json:"buildId"`
	}
	if err := json.Unmarshal([]byte(raw), &nextData); err != nil {
		return fmt.Errorf("failed to decode __NEXT_DATA__ payload: %w", err)
	}
	if nextData.BuildID == "" {
		return fmt.Errorf("__NEXT_DATA__ payload at %s carries no buildId", url)
	}

	c.buildID = nextData.BuildID
	log.Infof("✅ Discovered build ID: %s", c.buildID)
	return nil
}

func (c *uvedaClient) FetchJSON(ctx context.Context, url string) map[string]interface{} {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		log.Warnf("⚠️ Failed to fetch %s: %v", url, err)
		return map[string]interface{}{}
	}
	if resp.IsError() {
		log.Warnf("⚠️ HTTP error fetching %s: %d %s", url, resp.StatusCode(), resp.Status())
		return map[string]interface{}{}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(resp.Bytes(), &payload); err != nil {
		log.Warnf("⚠️ Non-JSON body from %s: %v", url, err)
		return map[string]interface{}{}
	}

	return payload
}

func (c *uvedaClient) FindURLPaths(v interface{}) []string {
	return c.parser.FindURLPaths(v)
}

func (c *uvedaClient) DiscoverLeafURLs(ctx context.Context, prabandamURL string) []string {
	data := c.FetchJSON(ctx, prabandamURL)

	props, ok := data[pagePropsKey].(map[string]interface{})
	if !ok {
		log.Debugf("No pageProps in prabandam payload at %s", prabandamURL)
		return nil
	}

	descendants, ok := props["descendants_list"].([]interface{})
	if !ok || len(descendants) == 0 {
		log.Debugf("No descendants list at %s", prabandamURL)
		return nil
	}

	paths := c.parser.LeafPaths(descendants)
	urls := make([]string, 0, len(paths))
	for _, path := range paths {
		urls = append(urls, c.BuildURL(path))
	}

	log.Debugf("Found %d leaf pages under %s", len(urls), prabandamURL)
	return urls
}

func (c *uvedaClient) ExtractPaasuram(ctx context.Context, url string) (domain.Paasuram, bool) {
	data := c.FetchJSON(ctx, url)

	props, ok := data[pagePropsKey].(map[string]interface{})
	if !ok {
		log.Debugf("No pageProps in paasuram payload at %s", url)
		return domain.Paasuram{}, false
	}

	return domain.ProjectPaasuram(props), true
}
