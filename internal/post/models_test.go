package post

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	cases := map[string][]string{
		"":                {},
		"a, b ,":          {"a", "b"},
		" go ,, go,rust ": {"go", "go", "rust"},
		",,,":             {},
		"single":          {"single"},
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTags(in), "input %q", in)
	}
}

func TestRawTagTokensKeepsUserInput(t *testing.T) {
	assert.Equal(t, []string{"a", " b ", ""}, RawTagTokens("a, b ,"))
	assert.Equal(t, []string{""}, RawTagTokens(""))
}

func TestDraftSnapshot(t *testing.T) {
	d := &Draft{Title: "Hi", TagsInput: "a, b ,", Content: "<p>x</p>"}
	require.True(t, d.IsNew())

	now := time.UnixMilli(1700000000123)
	p := d.Snapshot("post_1", true, now)
	assert.Equal(t, "post_1", p.ID)
	assert.Equal(t, []string{"a", "b"}, p.Tags)
	assert.Equal(t, "<p>x</p>", p.ContentHTML)
	assert.True(t, p.Published)
	assert.Equal(t, int64(1700000000123), p.UpdatedAt)
	assert.Equal(t, now, p.UpdatedTime())
	// the draft itself keeps no identity until the caller assigns it
	assert.True(t, d.IsNew())
}

func TestDraftFromPostAndClear(t *testing.T) {
	p := &Post{ID: "post_9", Title: "T", Tags: []string{"x", "y"}, ContentHTML: "<p>c</p>"}
	d := DraftFromPost(p)
	assert.Equal(t, "x, y", d.TagsInput)
	assert.False(t, d.IsNew())

	d.Clear()
	assert.Empty(t, d.Title)
	assert.Empty(t, d.TagsInput)
	assert.Empty(t, d.Content)
	assert.Equal(t, "post_9", d.ID)

	assert.True(t, d.TogglePreview())
	assert.False(t, d.TogglePreview())
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "(Untitled)", (&Post{}).DisplayTitle())
	assert.Equal(t, "Hello", (&Post{Title: "Hello"}).DisplayTitle())
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id, err := NewID()
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(id, "post_"))
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestImageHelpers(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	uri := ImageDataURI(png)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	assert.True(t, IsImageDataURI(uri))

	content := `<p>a<img src="x.png"></p><p><img alt="b" src="y"></p>`
	assert.Equal(t, []string{`<img src="x.png">`, `<img alt="b" src="y">`}, ImageTags(content))
	assert.Empty(t, ImageTags("<p>none</p>"))
}

func TestInsertImage(t *testing.T) {
	d := &Draft{Content: "<p>one</p><p>two</p>"}
	d.InsertImage(10, "data:image/png;base64,AA==")
	assert.Equal(t, `<p>one</p><p><img src="data:image/png;base64,AA=="></p><p>two</p>`, d.Content)

	// an offset inside a tag moves past it
	d = &Draft{Content: "<p>one</p>"}
	d.InsertImage(1, "data:image/gif;base64,R0=")
	assert.Equal(t, `<p><p><img src="data:image/gif;base64,R0="></p>one</p>`, d.Content)

	d = &Draft{}
	d.InsertImage(99, "data:image/gif;base64,R0=")
	assert.Equal(t, `<p><img src="data:image/gif;base64,R0="></p>`, d.Content)
}
