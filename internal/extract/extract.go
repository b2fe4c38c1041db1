// Package extract turns uploaded document bytes into plain text for
// chunking. Binary storage of the upload itself is owned by the upstream
// document manager; only the extracted text flows into the pipeline.
package extract

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"
)

// Text extracts plain text from document bytes based on the declared
// content type. Unknown types are treated as UTF-8 text.
func Text(data []byte, contentType string) (string, error) {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	switch strings.ToLower(mediaType) {
	case "application/pdf":
		return extractPDF(data)
	default:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("content type %q is not valid UTF-8 text", contentType)
		}
		return string(data), nil
	}
}
