package logo

import (
	"net/url"
	"strings"
)

var harvestKeywords = []string{"brand", "media", "press", "logo", "asset", "download", "kit"}

// HarvestLinks returns absolute http(s) URLs of anchors whose href or text
// mentions a brand or media keyword. Results are deduplicated by PageKey and
// keep document order.
func HarvestLinks(doc Document, base *url.URL) []string {
	var (
		out  []string
		seen = make(map[string]struct{})
	)
	for _, el := range doc.Find("a[href]") {
		href := attrTrim(el, "href")
		if !mentionsBrandKeyword(href) && !mentionsBrandKeyword(el.Text()) {
			continue
		}
		abs, ok := resolveAgainst(base, href)
		if !ok || isDataURI(abs) {
			continue
		}
		abs = stripFragment(abs)
		key := PageKey(abs)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, abs)
	}
	return out
}

func mentionsBrandKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range harvestKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func stripFragment(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
