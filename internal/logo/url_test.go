package logo

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWebsite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "acme.com", want: "https://acme.com"},
		{in: "  ACME.com/about?x=1#top ", want: "https://acme.com"},
		{in: "http://www.acme.com/", want: "http://www.acme.com"},
		{in: "https://user:pw@acme.com:8443/path", want: "https://acme.com:8443"},
		{in: "//cdn.acme.com", want: "https://cdn.acme.com"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			u, err := NormalizeWebsite(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestNormalizeWebsiteRejectsInvalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "ftp://acme.com", "https://", "http://exa mple.com"} {
		_, err := NormalizeWebsite(in)
		assert.ErrorIs(t, err, ErrInvalidWebsite, in)
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	const base = "https://acme.com/about/"
	tests := []struct {
		name string
		ref  string
		want string
		ok   bool
	}{
		{name: "absolute unchanged", ref: "https://cdn.other.com/x.png?v=1", want: "https://cdn.other.com/x.png?v=1", ok: true},
		{name: "root relative", ref: "/logo.svg", want: "https://acme.com/logo.svg", ok: true},
		{name: "path relative", ref: "img/logo.png", want: "https://acme.com/about/img/logo.png", ok: true},
		{name: "parent relative", ref: "../logo.png", want: "https://acme.com/logo.png", ok: true},
		{name: "protocol relative", ref: "//cdn.acme.com/l.png", want: "https://cdn.acme.com/l.png", ok: true},
		{name: "data uri", ref: "data:image/png;base64,AAAA", want: "data:image/png;base64,AAAA", ok: true},
		{name: "empty", ref: "  "},
		{name: "fragment only", ref: "#top"},
		{name: "javascript", ref: "javascript:void(0)"},
		{name: "mailto", ref: "mailto:a@b.c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveURL(base, tt.ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveURLAbsoluteIgnoresBase(t *testing.T) {
	t.Parallel()

	for _, base := range []string{"https://a.com", "http://b.org/x/y", "https://c.net/?q=1"} {
		got, ok := ResolveURL(base, "https://acme.com/logo.png")
		require.True(t, ok)
		assert.Equal(t, "https://acme.com/logo.png", got)
	}
}

func TestPageKey(t *testing.T) {
	t.Parallel()

	same := [][]string{
		{"https://acme.com", "https://acme.com/", "HTTPS://ACME.com:443/#top"},
		{"https://acme.com/brand", "https://acme.com/brand/", "https://acme.com/brand#kit"},
		{"http://acme.com:80/a?b=2&a=1", "http://acme.com/a?a=1&b=2"},
	}
	for _, group := range same {
		for _, raw := range group[1:] {
			assert.Equal(t, PageKey(group[0]), PageKey(raw), raw)
		}
	}
	assert.NotEqual(t, PageKey("https://acme.com/brand"), PageKey("https://acme.com/Brand"))
	assert.NotEqual(t, PageKey("http://acme.com"), PageKey("https://acme.com"))
}

func TestSameSite(t *testing.T) {
	t.Parallel()

	base := &url.URL{Scheme: "https", Host: "www.acme.com"}
	for raw, want := range map[string]bool{
		"https://www.acme.com/brand": true,
		"https://acme.com/press":     true,
		"https://media.acme.com/kit": true,
		"https://notacme.com/brand":  false,
		"https://acme.com.evil.io/x": false,
		"https://twitter.com/acme":   false,
	} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, want, sameSite(base, u), raw)
	}
}

func TestSameSiteRegistrableDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		link string
		want bool
	}{
		{base: "https://shop.acme.co.uk", link: "https://brand.acme.co.uk/kit", want: true},
		{base: "https://shop.acme.co.uk", link: "https://other.co.uk/", want: false},
		{base: "https://acme.github.io", link: "https://globex.github.io/", want: false},
		{base: "http://127.0.0.1:8080", link: "http://127.0.0.1:8080/brand", want: true},
		{base: "http://127.0.0.1:8080", link: "http://10.0.0.1/brand", want: false},
		{base: "http://localhost:3000", link: "http://localhost:3000/press", want: true},
		{base: "http://localhost:3000", link: "http://example.com/press", want: false},
	}
	for _, tt := range tests {
		base, err := url.Parse(tt.base)
		require.NoError(t, err)
		u, err := url.Parse(tt.link)
		require.NoError(t, err)
		assert.Equal(t, tt.want, sameSite(base, u), "%s -> %s", tt.base, tt.link)
	}
}
