package export

import (
	"bytes"
	"encoding/json"
)

// structuredDoc is the structured-data payload. Tags are the raw tokens,
// empty entries included.
type structuredDoc struct {
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
}

// StructuredDataEncoder writes indented JSON.
type StructuredDataEncoder struct{}

func (StructuredDataEncoder) Encode(src Source) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	// keep markup readable in the file
	enc.SetEscapeHTML(false)
	if err := enc.Encode(structuredDoc{Title: src.Title, Tags: src.RawTags(), Content: src.Content}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
