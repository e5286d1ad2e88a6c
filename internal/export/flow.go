package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"html"
	"regexp"
	"strings"
)

var (
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	entityRe = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)
)

// StripTags removes everything between '<' and '>' and decodes entities.
// It is a delimiter scan, not a parser: a stray '<' without a closing '>'
// is left in the text. Entities that decode to '<' or '>' stay encoded so
// the result never gains markup delimiters.
func StripTags(content string) string {
	text := tagRe.ReplaceAllString(content, "")
	return entityRe.ReplaceAllStringFunc(text, func(ent string) string {
		dec := html.UnescapeString(ent)
		if strings.ContainsAny(dec, "<>") {
			return ent
		}
		return dec
	})
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

// headingStyle is the style id of the title paragraph.
const headingStyle = "Heading1"

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>
<w:style w:type="paragraph" w:styleId="` + headingStyle + `"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>` +
	`<w:pPr><w:keepNext/><w:spacing w:after="240"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="36"/></w:rPr></w:style>
</w:styles>`

// flowParagraph is one block of the flow document.
type flowParagraph struct {
	Text    string
	Heading bool
}

// FlowDocumentEncoder builds a minimal WordprocessingML package with three
// paragraphs: the title in the Heading1 style, the tag line and the
// plain-text content. Images
// and rich formatting are not carried over.
type FlowDocumentEncoder struct{}

func (FlowDocumentEncoder) Encode(src Source) ([]byte, error) {
	paras := []flowParagraph{
		{Text: src.Title, Heading: true},
		{Text: "Tags: " + strings.Join(src.Tags(), ", ")},
		{Text: StripTags(src.Content)},
	}

	var doc bytes.Buffer
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paras {
		if err := writeParagraph(&doc, p); err != nil {
			return nil, err
		}
	}
	doc.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="567" w:right="567" w:bottom="567" w:left="567" w:header="0" w:footer="0" w:gutter="0"/></w:sectPr>`)
	doc.WriteString(`</w:body></w:document>`)

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(relsXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/document.xml", doc.Bytes()},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(part.data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// writeParagraph emits one <w:p>. Newlines in the text become line breaks
// inside the same paragraph.
func writeParagraph(buf *bytes.Buffer, p flowParagraph) error {
	buf.WriteString("<w:p>")
	if p.Heading {
		buf.WriteString(`<w:pPr><w:pStyle w:val="` + headingStyle + `"/></w:pPr>`)
	}
	buf.WriteString("<w:r>")
	for i, line := range strings.Split(p.Text, "\n") {
		if i > 0 {
			buf.WriteString("<w:br/>")
		}
		buf.WriteString(`<w:t xml:space="preserve">`)
		if err := xml.EscapeText(buf, []byte(line)); err != nil {
			return err
		}
		buf.WriteString("</w:t>")
	}
	buf.WriteString("</w:r></w:p>")
	return nil
}
