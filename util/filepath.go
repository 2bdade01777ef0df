package util

import (
	"path/filepath"
	"strings"
)

var (
	// archiveExts may be followed by one of compressionExts.
	archiveExts     = []string{".tar", ".cpio"}
	compressionExts = []string{".gz", ".bz2", ".lz", ".xz", ".zst"}
)

func hasExt(exts []string, ext string) bool {
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}

	return false
}

// StemAndExt is a variant of filepath.Ext that keeps compound archive extensions together while also returning the
// stem.
//
// For example, `filepath.Ext("file.tar.gz")` would return ".gz", but `StemAndExt("file.tar.gz")` would return
// ".tar.gz" for the extension, "file" for the stem. Both `/` and `\` are treated as separators so that S3 keys work
// on every platform.
func StemAndExt(path string) (stem, ext string) {
	if i := strings.LastIndexAny(path, `/\`); i != -1 {
		path = path[i+1:]
	}

	ext = filepath.Ext(path)
	if ext == path {
		// dotfiles such as ".arscan" have no extension.
		return path, ""
	}

	stem = strings.TrimSuffix(path, ext)
	if hasExt(compressionExts, ext) {
		if inner := filepath.Ext(stem); inner != stem && hasExt(archiveExts, inner) {
			stem, ext = strings.TrimSuffix(stem, inner), inner+ext
		}
	}

	return stem, ext
}
