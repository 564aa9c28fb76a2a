package client

import (
	"sort"
	"strings"

	"prabandam/scraper/internal/domain"

	log "github.com/sirupsen/logrus"
)

const (
	// ContentRoot is the logical path of the corpus index page.
	ContentRoot = "/divya-prabandam"

	urlPathKey   = "url_path_clean"
	pagePropsKey = "pageProps"
)

// excludedMarkers flag descendant paths that are invocations or commentary
// variants rather than verses.
var excludedMarkers = []string{"taniyan", "advanced"}

type structureParser struct{}

func newStructureParser() *structureParser {
	return &structureParser{}
}

// FindURLPaths walks an arbitrary decoded JSON value and collects every
// string stored under the url_path_clean key, at any depth. The walk is
// pre-order; object keys are visited in sorted order since Go maps carry no
// insertion order. A matched key's value is never descended into.
func (p *structureParser) FindURLPaths(v interface{}) []string {
	var paths []string
	p.walk(v, &paths)
	return paths
}

func (p *structureParser) walk(v interface{}, paths *[]string) {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == urlPathKey {
				if s, ok := t[k].(string); ok {
					*paths = append(*paths, s)
				}
				continue
			}
			p.walk(t[k], paths)
		}
	case []interface{}:
		for _, item := range t {
			p.walk(item, paths)
		}
	}
}

// LeafPaths filters a prabandam's descendants list down to the content paths
// at its deepest level. The leaf depth is taken from the last entry (its
// length minus the leading category marker); entries whose path contains an
// excluded marker are dropped even at matching depth. Order is preserved.
func (p *structureParser) LeafPaths(descendants []interface{}) []string {
	if len(descendants) == 0 {
		return nil
	}

	last, ok := descendants[len(descendants)-1].([]interface{})
	if !ok {
		log.Warnf("⚠️ Descendants list ends with a non-array entry, cannot compute leaf depth")
		return nil
	}
	leafDepth := len(last) - 1

	var paths []string
	for _, raw := range descendants {
		entry, ok := raw.([]interface{})
		if !ok {
			log.Warnf("⚠️ Skipping non-array descendant entry: %v", raw)
			continue
		}

		parts := make([]string, 0, len(entry))
		for _, part := range entry {
			if s := domain.Stringify(part); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			continue
		}

		path := ContentRoot + "/" + strings.Join(parts, "/")
		if containsExcludedMarker(path) {
			continue
		}
		if len(entry)-1 != leafDepth {
			continue
		}

		paths = append(paths, path)
	}

	return paths
}

func containsExcludedMarker(path string) bool {
	for _, marker := range excludedMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}
