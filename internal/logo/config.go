package logo

import (
	"fmt"
	"time"
)

// Defaults applied by Config.withDefaults.
const (
	DefaultMaxPages        = 5
	DefaultPageTimeout     = 30 * time.Second
	DefaultDownloadTimeout = 30 * time.Second
	DefaultUserAgent       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
)

// DefaultCommonPaths are conventional brand and media locations appended to
// the crawl frontier after the homepage.
var DefaultCommonPaths = []string{
	"/brand",
	"/brand-assets",
	"/media",
	"/media-kit",
	"/press",
	"/press-kit",
	"/about",
	"/about-us",
	"/assets",
	"/logos",
}

// Config controls a Discoverer.
type Config struct {
	// MaxPages bounds the non-homepage pages visited per discovery.
	MaxPages        int
	CommonPaths     []string
	UserAgent       string
	AcceptLanguage  string
	PageTimeout     time.Duration
	DownloadTimeout time.Duration
}

// Validate rejects impossible settings. Zero values mean "use the default",
// so a MaxPages of 0 crawls DefaultMaxPages pages.
func (c Config) Validate() error {
	if c.MaxPages < 0 {
		return fmt.Errorf("max pages must be >= 0")
	}
	if c.PageTimeout < 0 || c.DownloadTimeout < 0 {
		return fmt.Errorf("timeouts must be >= 0")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MaxPages == 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.CommonPaths == nil {
		c.CommonPaths = DefaultCommonPaths
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.AcceptLanguage == "" {
		c.AcceptLanguage = DefaultAcceptLanguage
	}
	if c.PageTimeout == 0 {
		c.PageTimeout = DefaultPageTimeout
	}
	if c.DownloadTimeout == 0 {
		c.DownloadTimeout = DefaultDownloadTimeout
	}
	return c
}
