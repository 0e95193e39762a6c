package logo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreHeaderSVGWithKeywords(t *testing.T) {
	t.Parallel()

	c := Candidate{
		URL:    "https://acme.com/logo.svg",
		Format: FormatSVG,
		Source: SourceImgSVGHeader,
		Alt:    "Acme logo",
	}
	assert.InDelta(t, 155.0, Score(c, "Acme"), 0.0001)
}

func TestScoreComponents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		c       Candidate
		company string
		want    float64
	}{
		{
			name: "plain png img",
			c:    Candidate{URL: "https://x.com/a.png", Format: FormatPNG, Source: SourceImgTag},
			want: 55,
		},
		{
			name: "unknown favicon",
			c:    Candidate{URL: "https://x.com/favicon", Format: FormatUnknown, Source: SourceFavicon},
			want: 3,
		},
		{
			name: "large webp og image",
			c:    Candidate{URL: "https://x.com/share.webp", Format: FormatWebP, Source: SourceOGImage, Width: 600},
			want: 45 + 6 + 10 + 10 + 10,
		},
		{
			name: "brand keyword in url",
			c:    Candidate{URL: "https://x.com/brand/mark.jpg", Format: FormatJPEG, Source: SourceImgTag},
			want: 30 + 5 + 15,
		},
		{
			name:    "company in hint",
			c:       Candidate{URL: "https://x.com/a.gif", Format: FormatGIF, Source: SourceImgTag, Hint: "globex-mark"},
			company: "Globex",
			want:    20 + 5 + 10,
		},
		{
			name:    "company matched in compact form",
			c:       Candidate{URL: "https://x.com/bigco-inc.png", Format: FormatPNG, Source: SourceImgTag},
			company: "BigCo, Inc.",
			want:    50 + 5 + 10,
		},
		{
			name:    "keywords are case-insensitive",
			c:       Candidate{URL: "https://x.com/LOGO.PNG", Format: FormatPNG, Source: SourceImgTag, Alt: "ACME"},
			company: "acme",
			want:    50 + 5 + 20 + 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Score(tt.c, tt.company), 0.0001)
		})
	}
}

func TestScoreHeaderSVGBeatsTinyFavicon(t *testing.T) {
	t.Parallel()

	svg := Candidate{URL: "https://x.com/mark.svg", Format: FormatSVG, Source: SourceImgSVGHeader}
	favicon := Candidate{URL: "https://x.com/favicon.png", Format: FormatPNG, Source: SourceFavicon, Width: 16, Height: 16}
	assert.Greater(t, Score(svg, ""), Score(favicon, ""))
}

func TestScoreDataURIPenalty(t *testing.T) {
	t.Parallel()

	remote := Candidate{URL: "https://x.com/a.png", Format: FormatPNG, Source: SourceImgTag}
	inline := Candidate{URL: "data:image/png;base64,bG9nbw==", Format: FormatPNG, Source: SourceImgTag}
	assert.InDelta(t, 30.0, Score(remote, "")-Score(inline, ""), 0.0001)

	inlineSVG := Candidate{URL: "data:image/svg+xml;utf8,<svg/>", Format: FormatSVG, Source: SourceImgTag}
	remoteSVG := Candidate{URL: "https://x.com/a.svg", Format: FormatSVG, Source: SourceImgTag}
	assert.InDelta(t, Score(remoteSVG, ""), Score(inlineSVG, ""), 0.0001)
}

func TestScoreDataURIPayloadIgnoredForKeywords(t *testing.T) {
	t.Parallel()

	// base64 of "logo brand".
	inline := Candidate{URL: "data:image/png;base64,bG9nbyBicmFuZA==logo", Format: FormatPNG, Source: SourceImgTag}
	assert.InDelta(t, 50+5-30, Score(inline, ""), 0.0001)
}

func TestScoreTinyWidthPenalty(t *testing.T) {
	t.Parallel()

	base := Candidate{URL: "https://x.com/a.png", Format: FormatPNG, Source: SourceImgTag}
	tiny := base
	tiny.Width = 20
	unknown := base

	// Relative to an unknown width, a 20px image gains its linear size term
	// and loses the tiny-image penalty.
	assert.InDelta(t, Score(unknown, "")+0.2-20, Score(tiny, ""), 0.0001)

	large := base
	large.Width = 256
	assert.InDelta(t, 20+2.56-0.2+10, Score(large, "")-Score(tiny, ""), 0.0001)

	edge := base
	edge.Width = 32
	assert.InDelta(t, Score(unknown, "")+0.32, Score(edge, ""), 0.0001)
}

func TestScoreIsPure(t *testing.T) {
	t.Parallel()

	c := Candidate{URL: "https://x.com/logo.svg", Format: FormatSVG, Source: SourceLinkedSVG, Alt: "Logo"}
	first := Score(c, "X Corp")
	for range 5 {
		assert.Equal(t, first, Score(c, "X Corp"))
	}
	assert.Zero(t, c.Score)
}
