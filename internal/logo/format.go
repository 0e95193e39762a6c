package logo

import (
	"net/url"
	"path"
	"strings"
)

var suffixFormats = []struct {
	suffix string
	format Format
}{
	{".svg", FormatSVG},
	{".png", FormatPNG},
	{".jpg", FormatJPEG},
	{".jpeg", FormatJPEG},
	{".gif", FormatGIF},
	{".webp", FormatWebP},
	{".ico", FormatICO},
}

// DetectFormat infers a candidate's format from a data: MIME prefix or, for
// regular URLs, from the path suffix.
func DetectFormat(rawURL string) Format {
	trimmed := strings.TrimSpace(rawURL)
	if isDataURI(trimmed) {
		return formatFromDataURI(trimmed)
	}
	p := trimmed
	if u, err := url.Parse(trimmed); err == nil {
		p = u.Path
	} else if idx := strings.IndexAny(p, "?#"); idx >= 0 {
		p = p[:idx]
	}
	p = strings.ToLower(p)
	for _, sf := range suffixFormats {
		if strings.HasSuffix(p, sf.suffix) {
			return sf.format
		}
	}
	return FormatUnknown
}

func formatFromDataURI(raw string) Format {
	lower := strings.ToLower(raw)
	const prefix = "data:image/"
	if !strings.HasPrefix(lower, prefix) {
		return FormatUnknown
	}
	subtype := lower[len(prefix):]
	if idx := strings.IndexAny(subtype, ";,"); idx >= 0 {
		subtype = subtype[:idx]
	}
	return formatFromSubtype(subtype)
}

// FormatFromContentType maps an HTTP Content-Type header to a Format.
func FormatFromContentType(contentType string) Format {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if strings.Contains(ct, "svg") {
		return FormatSVG
	}
	subtype, ok := strings.CutPrefix(ct, "image/")
	if !ok {
		return FormatUnknown
	}
	return formatFromSubtype(subtype)
}

func formatFromSubtype(subtype string) Format {
	switch subtype {
	case "svg+xml", "svg":
		return FormatSVG
	case "png", "x-png", "apng":
		return FormatPNG
	case "jpeg", "jpg", "pjpeg":
		return FormatJPEG
	case "gif":
		return FormatGIF
	case "webp":
		return FormatWebP
	case "x-icon", "vnd.microsoft.icon", "ico":
		return FormatICO
	default:
		return FormatUnknown
	}
}

// ContentType returns the canonical MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	case FormatWebP:
		return "image/webp"
	case FormatICO:
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension (with dot) for a format.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatUnknown, "":
		return ".bin"
	default:
		return "." + string(f)
	}
}

func isDataURI(raw string) bool {
	return len(raw) >= 5 && strings.EqualFold(raw[:5], "data:")
}

func hasSVGSuffix(u *url.URL) bool {
	return strings.EqualFold(path.Ext(u.Path), ".svg")
}
