package logo

import (
	"net/url"
	"strconv"
	"strings"
)

// headerSelector matches the containers treated as a page header or
// navigation region.
const headerSelector = `header, nav, [role="banner"], [role="navigation"], ` +
	`.header, .site-header, .navbar, .masthead, #header, #masthead`

var lazySrcAttrs = []string{"data-src", "data-lazy-src", "data-original", "data-lazy"}

// Extractor produces candidates from one HTML surface of a page.
type Extractor func(doc Document, base *url.URL) []Candidate

// DefaultExtractors returns the four extraction strategies in the order
// their candidates are accumulated.
func DefaultExtractors() []Extractor {
	return []Extractor{
		ExtractImageTags,
		ExtractOpenGraph,
		ExtractFavicons,
		ExtractLinkedSVGs,
	}
}

// ExtractImageTags emits one candidate per <img> element. The reference is
// taken from src, then a lazy-load attribute, then the first srcset entry.
func ExtractImageTags(doc Document, base *url.URL) []Candidate {
	var out []Candidate
	for _, el := range doc.Find("img") {
		abs, ok := resolveAgainst(base, imageRef(el))
		if !ok {
			continue
		}
		format := DetectFormat(abs)
		inHeader := el.HasAncestor(headerSelector)
		alt, _ := el.Attr("alt")
		out = append(out, Candidate{
			URL:         abs,
			Format:      format,
			Source:      imageSource(format, inHeader),
			Width:       attrInt(el, "width"),
			Height:      attrInt(el, "height"),
			Alt:         strings.TrimSpace(alt),
			Hint:        elementHint(el),
			FoundOnPage: pageString(base),
		})
	}
	return out
}

func imageSource(format Format, inHeader bool) Source {
	switch {
	case format == FormatSVG && inHeader:
		return SourceImgSVGHeader
	case format == FormatSVG:
		return SourceImgSVG
	case inHeader:
		return SourceImgTagHeader
	default:
		return SourceImgTag
	}
}

// imageRef picks the best reference for an <img>. A data: placeholder in
// src yields to a lazy-load attribute when one is present.
func imageRef(el Element) string {
	src := attrTrim(el, "src")
	if src != "" && !isDataURI(src) {
		return src
	}
	for _, attr := range lazySrcAttrs {
		if v := attrTrim(el, attr); v != "" {
			return v
		}
	}
	for _, attr := range []string{"srcset", "data-srcset"} {
		if v := firstSrcsetURL(attrTrim(el, attr)); v != "" {
			return v
		}
	}
	return src
}

func firstSrcsetURL(srcset string) string {
	if srcset == "" {
		return ""
	}
	first := strings.TrimSpace(strings.Split(srcset, ",")[0])
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func elementHint(el Element) string {
	class, _ := el.Attr("class")
	id, _ := el.Attr("id")
	return strings.ToLower(strings.TrimSpace(class + " " + id))
}

var ogImageSelectors = []string{
	`meta[property="og:image"]`,
	`meta[property="og:image:url"]`,
	`meta[property="og:image:secure_url"]`,
	`meta[name="og:image"]`,
}

// ExtractOpenGraph emits at most one candidate from the page's og:image.
func ExtractOpenGraph(doc Document, base *url.URL) []Candidate {
	for _, sel := range ogImageSelectors {
		for _, el := range doc.Find(sel) {
			abs, ok := resolveAgainst(base, attrTrim(el, "content"))
			if !ok {
				continue
			}
			return []Candidate{{
				URL:         abs,
				Format:      DetectFormat(abs),
				Source:      SourceOGImage,
				Width:       metaInt(doc, `meta[property="og:image:width"]`),
				Height:      metaInt(doc, `meta[property="og:image:height"]`),
				FoundOnPage: pageString(base),
			}}
		}
	}
	return nil
}

func metaInt(doc Document, selector string) int {
	for _, el := range doc.Find(selector) {
		if n := parseLeadingInt(attrTrim(el, "content")); n > 0 {
			return n
		}
	}
	return 0
}

// ExtractFavicons emits a candidate for every icon and apple-touch-icon link.
func ExtractFavicons(doc Document, base *url.URL) []Candidate {
	var out []Candidate
	for _, el := range doc.Find("link[rel][href]") {
		rel := strings.Fields(strings.ToLower(attrTrim(el, "rel")))
		isIcon, isApple := classifyRel(rel)
		if !isIcon {
			continue
		}
		abs, ok := resolveAgainst(base, attrTrim(el, "href"))
		if !ok {
			continue
		}
		source := SourceFavicon
		if isApple {
			source = SourceAppleTouchIcon
		}
		w, h := ParseSizes(attrTrim(el, "sizes"))
		out = append(out, Candidate{
			URL:         abs,
			Format:      DetectFormat(abs),
			Source:      source,
			Width:       w,
			Height:      h,
			FoundOnPage: pageString(base),
		})
	}
	return out
}

func classifyRel(tokens []string) (isIcon, isApple bool) {
	for _, tok := range tokens {
		switch tok {
		case "icon":
			isIcon = true
		case "apple-touch-icon", "apple-touch-icon-precomposed":
			isIcon = true
			isApple = true
		}
	}
	return isIcon, isApple
}

// ParseSizes reads a link sizes attribute. "WxH" gives both dimensions, a
// bare "W" means a square icon. When several sizes are listed the largest
// wins; "any" and malformed entries are ignored.
func ParseSizes(sizes string) (width, height int) {
	for _, entry := range strings.Fields(strings.ToLower(sizes)) {
		w, h := parseSizeEntry(entry)
		if w > width {
			width, height = w, h
		}
	}
	return width, height
}

func parseSizeEntry(entry string) (int, int) {
	wRaw, hRaw, found := strings.Cut(entry, "x")
	w, err := strconv.Atoi(wRaw)
	if err != nil || w <= 0 {
		return 0, 0
	}
	if !found {
		return w, w
	}
	h, err := strconv.Atoi(hRaw)
	if err != nil || h <= 0 {
		return 0, 0
	}
	return w, h
}

// ExtractLinkedSVGs emits candidates for anchors that point at SVG files,
// including brand or logo links whose target resolves to an .svg.
func ExtractLinkedSVGs(doc Document, base *url.URL) []Candidate {
	var out []Candidate
	for _, el := range doc.Find("a[href]") {
		href := attrTrim(el, "href")
		lower := strings.ToLower(href)
		if !strings.HasSuffix(stripQuery(lower), ".svg") &&
			!strings.Contains(lower, "logo") && !strings.Contains(lower, "brand") {
			continue
		}
		abs, ok := resolveAgainst(base, href)
		if !ok || isDataURI(abs) {
			continue
		}
		u, err := url.Parse(abs)
		if err != nil || !hasSVGSuffix(u) {
			continue
		}
		out = append(out, Candidate{
			URL:         abs,
			Format:      FormatSVG,
			Source:      SourceLinkedSVG,
			Alt:         el.Text(),
			FoundOnPage: pageString(base),
		})
	}
	return out
}

func stripQuery(s string) string {
	if idx := strings.IndexAny(s, "?#"); idx >= 0 {
		return s[:idx]
	}
	return s
}

func attrTrim(el Element, name string) string {
	v, _ := el.Attr(name)
	return strings.TrimSpace(v)
}

func attrInt(el Element, name string) int {
	return parseLeadingInt(attrTrim(el, name))
}

// parseLeadingInt parses the digits at the start of s, so "120px" is 120.
func parseLeadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func pageString(base *url.URL) string {
	if base == nil {
		return ""
	}
	return base.String()
}
