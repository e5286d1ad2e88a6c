package storage

import (
	"fmt"
	"path"
	"strings"
)

// maxNameAttempts bounds the search for a free file name.
const maxNameAttempts = 1000

// numberedName returns name for n == 0, otherwise the browser-download
// style variant "title (n).ext".
func numberedName(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	if ext == name {
		ext = ""
	}
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)
}
