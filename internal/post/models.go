package post

import (
	"strings"
	"time"
)

// Post is the persisted blog post record. The JSON field names are the
// on-disk layout of the stored collection and must stay stable.
type Post struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	ContentHTML string   `json:"contentHtml"`
	Published   bool     `json:"published"`
	// UpdatedAt is milliseconds since the Unix epoch.
	UpdatedAt int64 `json:"updatedAt"`
}

// DisplayTitle returns the title used by the list view.
func (p *Post) DisplayTitle() string {
	if p.Title == "" {
		return "(Untitled)"
	}
	return p.Title
}

// UpdatedTime converts UpdatedAt to a time.Time.
func (p *Post) UpdatedTime() time.Time {
	return time.UnixMilli(p.UpdatedAt)
}

// Draft is the in-memory post being edited. It has no persisted identity
// until its first successful save: ID stays empty until then.
type Draft struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title"`
	TagsInput string `json:"tags"`
	Content   string `json:"content"`
	Published bool   `json:"published"`

	// Preview is the editor's preview/edit toggle. Posts never carry it.
	Preview bool `json:"preview"`
}

// NewDraft returns an empty draft in the "new post" state.
func NewDraft() *Draft {
	return &Draft{}
}

// DraftFromPost hydrates an editor draft from a stored post.
func DraftFromPost(p *Post) *Draft {
	return &Draft{
		ID:        p.ID,
		Title:     p.Title,
		TagsInput: strings.Join(p.Tags, ", "),
		Content:   p.ContentHTML,
		Published: p.Published,
	}
}

// IsNew reports whether the draft has never been saved.
func (d *Draft) IsNew() bool {
	return d.ID == ""
}

// Tags returns the normalized tag view of the raw tags input.
func (d *Draft) Tags() []string {
	return NormalizeTags(d.TagsInput)
}

// Clear empties the editable fields. Identity is kept so a cleared
// existing post still saves over itself.
func (d *Draft) Clear() {
	d.Title = ""
	d.TagsInput = ""
	d.Content = ""
}

// TogglePreview flips between the editor and the rendered preview.
func (d *Draft) TogglePreview() bool {
	d.Preview = !d.Preview
	return d.Preview
}

// Snapshot builds the record committed by a save. id and now are supplied
// by the caller so identity is only minted at save time.
func (d *Draft) Snapshot(id string, published bool, now time.Time) *Post {
	return &Post{
		ID:          id,
		Title:       d.Title,
		Tags:        d.Tags(),
		ContentHTML: d.Content,
		Published:   published,
		UpdatedAt:   now.UnixMilli(),
	}
}
