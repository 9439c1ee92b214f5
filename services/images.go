package services

import (
	"os"
	"path/filepath"
)

// ImageRef is a resolved dish image: a local file or a remote URL, never both.
type ImageRef struct {
	Path string
	URL  string
}

func (r ImageRef) IsLocal() bool {
	return r.Path != ""
}

// ImageResolver resolves catalog image references. It never fails: anything it
// cannot find becomes the placeholder.
type ImageResolver struct {
	Dir         string
	Placeholder string
}

// Resolve tries ref as a path, then ref under Dir, then falls back to the placeholder.
func (r ImageResolver) Resolve(ref string) ImageRef {
	if ref == "" {
		return ImageRef{URL: r.Placeholder}
	}
	if isRegularFile(ref) {
		return ImageRef{Path: ref}
	}
	if r.Dir != "" {
		p := filepath.Join(r.Dir, ref)
		if isRegularFile(p) {
			return ImageRef{Path: p}
		}
	}
	return ImageRef{URL: r.Placeholder}
}

func isRegularFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}
