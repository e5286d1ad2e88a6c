package export

import (
	"regexp"
	"strings"

	"github.com/gogotex/blogdraft/internal/post"
)

// fallbackName is used when the title is empty.
const fallbackName = "post"

var whitespaceRe = regexp.MustCompile(`\s+`)

// Source is the read-only view of a post handed to the encoders.
type Source struct {
	Title string
	// TagsInput is the raw comma separated tag text as typed.
	TagsInput string
	// Content is the editor's HTML, possibly with data URI images.
	Content string
}

// FromDraft exports the open draft exactly as typed.
func FromDraft(d *post.Draft) Source {
	return Source{Title: d.Title, TagsInput: d.TagsInput, Content: d.Content}
}

// FromPost exports a stored post. The raw tag text is rebuilt the same way
// the editor does when it hydrates a post.
func FromPost(p *post.Post) Source {
	return Source{Title: p.Title, TagsInput: strings.Join(p.Tags, ", "), Content: p.ContentHTML}
}

// Tags is the normalized tag view used for display lines.
func (s Source) Tags() []string {
	return post.NormalizeTags(s.TagsInput)
}

// RawTags is the unfiltered comma split used by the structured-data export.
func (s Source) RawTags() []string {
	return post.RawTagTokens(s.TagsInput)
}

// Filename derives the download name: whitespace runs in the title become
// a single underscore, and an empty title falls back to "post".
func Filename(title string, f Format) string {
	name := whitespaceRe.ReplaceAllString(title, "_")
	if title == "" {
		name = fallbackName
	}
	return name + f.Extension()
}
