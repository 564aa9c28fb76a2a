package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// ProxySupplier hands out proxy URLs in round-robin order. An empty pool
// yields empty strings, which callers treat as "connect directly".
type ProxySupplier interface {
	Get() string
}

type proxySupplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewProxySupplier validates the configured proxies against the source site
// and keeps only the working ones.
func NewProxySupplier(ctx context.Context, proxies []string, testURL string) (ProxySupplier, error) {
	if len(proxies) == 0 {
		return &proxySupplier{}, nil
	}

	log.Infof("🔄 Testing %d configured proxies...", len(proxies))

	valid := make([]string, 0, len(proxies))
	for _, proxyURL := range proxies {
		if isProxyValid(ctx, proxyURL, testURL) {
			log.Infof("✅ Proxy %s is working", proxyURL)
			valid = append(valid, proxyURL)
		} else {
			log.Infof("❌ Proxy %s is not working, skipping", proxyURL)
		}
	}

	log.Infof("✅ Proxy pool ready: %d of %d proxies usable", len(valid), len(proxies))

	return &proxySupplier{proxies: valid}, nil
}

func (p *proxySupplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxy := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)

	return proxy
}

func isProxyValid(ctx context.Context, proxyURL, testURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetProxy(proxyURL)

	resp, err := client.R().
		SetContext(ctx).
		Get(testURL)
	if err != nil {
		log.Debugf("Proxy test failed for %s: %v", proxyURL, err)
		return false
	}

	return !resp.IsError()
}
