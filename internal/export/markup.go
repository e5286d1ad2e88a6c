package export

import (
	"bytes"
	"html/template"
	"strings"
)

var markupTmpl = template.Must(template.New("post").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<p><strong>Tags:</strong> {{.Tags}}</p>
{{.Content}}
</body>
</html>
`))

// MarkupEncoder wraps the content in a standalone HTML page. Title and tags
// are escaped; content is embedded verbatim.
type MarkupEncoder struct{}

func (MarkupEncoder) Encode(src Source) ([]byte, error) {
	var buf bytes.Buffer
	err := markupTmpl.Execute(&buf, struct {
		Title   string
		Tags    string
		Content template.HTML
	}{
		Title:   src.Title,
		Tags:    strings.Join(src.Tags(), ", "),
		Content: template.HTML(src.Content),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
