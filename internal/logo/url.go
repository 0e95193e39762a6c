package logo

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// NormalizeWebsite turns user input such as "acme.com/about?x=1" into the
// site's base URL ("https://acme.com"). Path, query, fragment and userinfo
// are dropped.
func NormalizeWebsite(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidWebsite)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + strings.TrimPrefix(trimmed, "//")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebsite, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidWebsite, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || strings.ContainsAny(host, " \t") {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidWebsite)
	}
	if port := u.Port(); port != "" {
		host = host + ":" + port
	}
	return &url.URL{Scheme: u.Scheme, Host: host}, nil
}

// ResolveURL resolves ref against base. Absolute references are returned
// unchanged; data: URIs pass through. The second result is false when ref
// cannot be turned into an http(s) or data: URL.
func ResolveURL(base, ref string) (string, bool) {
	b, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", false
	}
	return resolveAgainst(b, ref)
}

func resolveAgainst(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return "", false
	}
	if isDataURI(ref) {
		return ref, true
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if r.Scheme != "" {
		if !isHTTPScheme(r.Scheme) || r.Host == "" {
			return "", false
		}
		return ref, true
	}
	if base == nil {
		return "", false
	}
	resolved := base.ResolveReference(r)
	if !isHTTPScheme(resolved.Scheme) || resolved.Host == "" {
		return "", false
	}
	return resolved.String(), true
}

// PageKey is the single identity used for "same page" decisions: scheme and
// host are lower-cased, default ports and fragments dropped, query
// parameters sorted, and a trailing slash trimmed.
func PageKey(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}
	u.Fragment = ""
	u.RawFragment = ""
	if u.RawQuery != "" {
		u.RawQuery = u.Query().Encode()
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String()
}

// sameSite reports whether u lives on the website rooted at base: both hosts
// share a registrable domain (eTLD+1). IP addresses and hosts without a
// public suffix fall back to the base host and its sub-domains.
func sameSite(base, u *url.URL) bool {
	if base == nil || u == nil {
		return false
	}
	baseHost := strings.ToLower(base.Hostname())
	host := strings.ToLower(u.Hostname())
	if host == "" || baseHost == "" {
		return false
	}
	if net.ParseIP(baseHost) != nil || net.ParseIP(host) != nil {
		return host == baseHost
	}
	baseSite, err := publicsuffix.EffectiveTLDPlusOne(baseHost)
	if err != nil {
		root := strings.TrimPrefix(baseHost, "www.")
		return host == root || strings.HasSuffix(host, "."+root)
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	return err == nil && site == baseSite
}

func isHTTPScheme(scheme string) bool {
	return strings.EqualFold(scheme, "http") || strings.EqualFold(scheme, "https")
}
