package goquerydoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<html><head>
<meta property="og:image" content="/og.png">
</head><body>
<header><nav><a href="/"><img src="/logo.svg" alt="Acme" class="site-logo"></a></nav></header>
<main><p>  Hello
   world </p><img src="/hero.jpg"></main>
</body></html>`

func TestParseAndFind(t *testing.T) {
	t.Parallel()

	doc, err := NewParser().Parse([]byte(sample))
	require.NoError(t, err)

	imgs := doc.Find("img")
	require.Len(t, imgs, 2)

	src, ok := imgs[0].Attr("src")
	assert.True(t, ok)
	assert.Equal(t, "/logo.svg", src)

	_, ok = imgs[1].Attr("alt")
	assert.False(t, ok)

	metas := doc.Find(`meta[property="og:image"]`)
	require.Len(t, metas, 1)
	content, _ := metas[0].Attr("content")
	assert.Equal(t, "/og.png", content)
}

func TestElementText(t *testing.T) {
	t.Parallel()

	doc, err := NewParser().Parse([]byte(sample))
	require.NoError(t, err)

	paragraphs := doc.Find("p")
	require.Len(t, paragraphs, 1)
	assert.Equal(t, "Hello world", paragraphs[0].Text())
}

func TestHasAncestor(t *testing.T) {
	t.Parallel()

	doc, err := NewParser().Parse([]byte(sample))
	require.NoError(t, err)

	imgs := doc.Find("img")
	require.Len(t, imgs, 2)
	assert.True(t, imgs[0].HasAncestor("header, nav"))
	assert.False(t, imgs[1].HasAncestor("header, nav"))
	assert.True(t, imgs[1].HasAncestor("main"))
}

func TestFindWithNoMatches(t *testing.T) {
	t.Parallel()

	doc, err := NewParser().Parse([]byte("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, doc.Find("img"))
}
