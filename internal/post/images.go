package post

import (
	"encoding/base64"
	"html"
	"net/http"
	"regexp"
	"strings"
)

var imgTagRe = regexp.MustCompile(`<img[^>]+>`)

// ImageTags returns every <img> tag in content, in document order.
func ImageTags(content string) []string {
	return imgTagRe.FindAllString(content, -1)
}

// ImageDataURI encodes raw image bytes as a data URI suitable for inline
// embedding. The MIME type is sniffed from the bytes.
func ImageDataURI(data []byte) string {
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsImageDataURI reports whether s is a data URI carrying an image.
func IsImageDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}

// InsertImage splices an image paragraph into the content at offset. The
// offset is clamped to the content and moved forward past any tag it falls
// inside of, so the markup stays well formed.
func (d *Draft) InsertImage(offset int, dataURI string) {
	tag := `<p><img src="` + html.EscapeString(dataURI) + `"></p>`
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Content) {
		offset = len(d.Content)
	}
	if open := strings.LastIndexByte(d.Content[:offset], '<'); open >= 0 {
		if strings.LastIndexByte(d.Content[:offset], '>') < open {
			if end := strings.IndexByte(d.Content[offset:], '>'); end >= 0 {
				offset += end + 1
			} else {
				offset = len(d.Content)
			}
		}
	}
	d.Content = d.Content[:offset] + tag + d.Content[offset:]
}
