package constants

import "strings"

// Evidence formats routed to different text extraction paths.
const (
	IMAGE = "IMAGE"
	PDF   = "PDF"
	DOCX  = "DOCX"
	HTML  = "HTML"
	TEXT  = "TEXT"
)

// ImageExtensions holds the screenshot formats sent through OCR.
var ImageExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "tif": {}, "tiff": {}, "bmp": {}, "webp": {},
}

// TextExtensions holds text-like exports read directly (gpresult dumps,
// registry exports, AV logs and similar).
var TextExtensions = map[string]struct{}{
	"txt": {}, "log": {}, "reg": {}, "csv": {}, "ini": {}, "json": {}, "xml": {},
}

// HTMLExtensions holds markup files stripped to visible text.
var HTMLExtensions = map[string]struct{}{
	"htm": {}, "html": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to an evidence format.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) string {
	ext = NormalizeExt(ext)
	switch {
	case ext == "pdf":
		return PDF
	case ext == "docx":
		return DOCX
	default:
		if _, ok := ImageExtensions[ext]; ok {
			return IMAGE
		}
		if _, ok := HTMLExtensions[ext]; ok {
			return HTML
		}
		if _, ok := TextExtensions[ext]; ok {
			return TEXT
		}
		return ""
	}
}

// IsSupportedExt reports whether the extension maps to any evidence format.
func IsSupportedExt(ext string) bool {
	return MapExtToFormat(ext) != ""
}
