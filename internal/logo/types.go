package logo

import "net/url"

// Format identifies the image encoding of a candidate.
type Format string

// Recognized candidate formats.
const (
	FormatSVG     Format = "svg"
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatGIF     Format = "gif"
	FormatWebP    Format = "webp"
	FormatICO     Format = "ico"
	FormatUnknown Format = "unknown"
)

// Known reports whether f is a recognized image format.
func (f Format) Known() bool {
	switch f {
	case FormatSVG, FormatPNG, FormatJPEG, FormatGIF, FormatWebP, FormatICO:
		return true
	default:
		return false
	}
}

// Source names the HTML construct that produced a candidate.
type Source string

// Candidate sources. The *_header variants were found inside a header or
// navigation region of the page.
const (
	SourceImgTag         Source = "img_tag"
	SourceImgTagHeader   Source = "img_tag_header"
	SourceImgSVG         Source = "img_svg"
	SourceImgSVGHeader   Source = "img_svg_header"
	SourceOGImage        Source = "og_image"
	SourceFavicon        Source = "favicon"
	SourceAppleTouchIcon Source = "apple_touch_icon"
	SourceLinkedSVG      Source = "linked_svg"
)

// Candidate is a possible logo image discovered on a page but not yet
// downloaded. URL is always absolute or a data: URI.
type Candidate struct {
	URL         string  `json:"url"`
	Format      Format  `json:"format"`
	Source      Source  `json:"source"`
	Score       float64 `json:"score"`
	Width       int     `json:"width,omitempty"`
	Height      int     `json:"height,omitempty"`
	Alt         string  `json:"alt,omitempty"`
	Hint        string  `json:"hint,omitempty"`
	FoundOnPage string  `json:"found_on_page,omitempty"`
}

// IsDataURI reports whether the candidate is an inline data: URI.
func (c Candidate) IsDataURI() bool {
	return isDataURI(c.URL)
}

// DiscoveredLogo is the validated result of a discovery run. Exactly one of
// SVGData and ImageData is populated.
type DiscoveredLogo struct {
	SourceURL    string  `json:"source_url"`
	Format       Format  `json:"format"`
	Source       Source  `json:"source"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	QualityScore float64 `json:"quality_score"`
	ContentType  string  `json:"content_type"`
	IsSVG        bool    `json:"is_svg"`
	SVGData      []byte  `json:"-"`
	ImageData    []byte  `json:"-"`
}

// Data returns whichever byte payload is populated.
func (d *DiscoveredLogo) Data() []byte {
	if d == nil {
		return nil
	}
	if d.IsSVG {
		return d.SVGData
	}
	return d.ImageData
}

// Page is a fetched and parsed HTML document. BaseURL is the final URL after
// redirects and is what relative references resolve against.
type Page struct {
	URL     string
	BaseURL *url.URL
	Doc     Document
}
