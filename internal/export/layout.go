package export

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const layoutRootID = "post-content"

// Layout is the off-screen render surface a fixed-layout export paints
// from. It holds the same block the preview shows, preceded by a title
// heading and a tag line.
type Layout struct {
	doc *goquery.Document
}

// BuildLayout constructs the container and fills it the way the preview
// does: content is parsed as a fragment inside the container, so stray
// closing tags in the content cannot escape it.
func BuildLayout(src Source) (*Layout, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="` + layoutRootID + `"></div>`))
	if err != nil {
		return nil, err
	}
	root := doc.Find("#" + layoutRootID)
	root.AppendHtml("<h1>" + html.EscapeString(src.Title) + "</h1>")
	root.AppendHtml("<p><strong>Tags:</strong> " + html.EscapeString(strings.Join(src.Tags(), ", ")) + "</p>")
	root.AppendHtml(src.Content)
	return &Layout{doc: doc}, nil
}

// Root returns the container element.
func (l *Layout) Root() *goquery.Selection {
	return l.doc.Find("#" + layoutRootID).First()
}

// Title returns the rendered heading text.
func (l *Layout) Title() string {
	return l.Root().Children().First().Text()
}

// ImageSources lists the src of every image in the container.
func (l *Layout) ImageSources() []string {
	var out []string
	l.Root().Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			out = append(out, src)
		}
	})
	return out
}

// HTML returns the container's inner markup.
func (l *Layout) HTML() (string, error) {
	return l.Root().Html()
}
