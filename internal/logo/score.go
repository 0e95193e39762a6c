package logo

import (
	"strings"
	"unicode"
)

var formatWeights = map[Format]float64{
	FormatSVG:  100,
	FormatPNG:  50,
	FormatWebP: 45,
	FormatJPEG: 30,
	FormatGIF:  20,
}

var sourceWeights = map[Source]float64{
	SourceImgSVGHeader:   25,
	SourceImgTagHeader:   20,
	SourceLinkedSVG:      15,
	SourceImgSVG:         12,
	SourceAppleTouchIcon: 12,
	SourceOGImage:        10,
	SourceImgTag:         5,
	SourceFavicon:        3,
}

const (
	logoKeywordBonus    = 20
	brandKeywordBonus   = 15
	companyKeywordBonus = 10
	tinyWidthPenalty    = 20
	dataURIPenalty      = 30
	tinyWidthThreshold  = 32
)

// Score computes a candidate's heuristic quality. It performs no I/O and
// depends only on the candidate and the company name.
func Score(c Candidate, companyName string) float64 {
	score := formatWeights[c.Format]

	if c.Width > 0 {
		score += float64(c.Width) / 100
		if c.Width >= 256 {
			score += 10
		}
		if c.Width >= 512 {
			score += 10
		}
		if c.Width < tinyWidthThreshold {
			score -= tinyWidthPenalty
		}
	}

	score += sourceWeights[c.Source]

	text := keywordText(c)
	if strings.Contains(text, "logo") {
		score += logoKeywordBonus
	}
	if strings.Contains(text, "brand") {
		score += brandKeywordBonus
	}
	if matchesCompany(text, companyName) {
		score += companyKeywordBonus
	}

	if c.IsDataURI() && c.Format != FormatSVG {
		score -= dataURIPenalty
	}
	return score
}

// keywordText is the lower-cased text searched for keywords. Data URIs only
// contribute their MIME header, not the encoded payload.
func keywordText(c Candidate) string {
	u := c.URL
	if isDataURI(u) {
		if idx := strings.Index(u, ","); idx >= 0 {
			u = u[:idx]
		}
	}
	return strings.ToLower(u + " " + c.Alt + " " + c.Hint)
}

func matchesCompany(text, companyName string) bool {
	name := strings.ToLower(strings.TrimSpace(companyName))
	if name == "" {
		return false
	}
	if strings.Contains(text, name) {
		return true
	}
	compactName := compact(name)
	if len(compactName) < 2 || compactName == name {
		return false
	}
	return strings.Contains(compact(text), compactName)
}

func compact(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
