package fileserver

import (
	"path/filepath"
	"strings"
)

var mimeTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".txt":  "text/plain",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// MimeType maps the extension of path to a content type. Extensions are
// matched case-insensitively; anything outside the table is unsupported.
func MimeType(path string) (string, bool) {
	t, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]
	return t, ok
}
