package enums

import (
	"path"
	"strings"
)

type FileKind string

const (
	FileKindImage FileKind = "image"
	FileKindVideo FileKind = "video"
	FileKindFile  FileKind = "file"
)

// FileKindFor derives the display kind from a filename extension.
// Anything unrecognized renders as a generic attachment.
func FileKindFor(filename string) FileKind {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(strings.TrimSpace(filename)), "."))
	switch ext {
	case "jpg", "jpeg", "png", "gif", "webp":
		return FileKindImage
	case "mp4", "mov", "webm", "avi":
		return FileKindVideo
	default:
		return FileKindFile
	}
}
