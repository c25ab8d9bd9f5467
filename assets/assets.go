// Package assets tracks the scripts, styles and images a page touches during
// rendering. Registration is pure bookkeeping: nothing is copied or
// transformed until the orchestrator's merge phase, which runs once per
// unique build path across the whole build.
package assets

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Kind discriminates asset types. Images are the only kind whose content
// must be inspectable at registration time.
type Kind string

const (
	KindScript Kind = "script"
	KindStyle  Kind = "style"
	KindImage  Kind = "image"
)

// ImageOptions configures an image transform. The zero value means "copy
// verbatim". The actual transformation is performed by an external
// collaborator; the ledger only needs options to be part of the identity of
// the output file.
type ImageOptions struct {
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Format  string `json:"format,omitempty"`
	Quality int    `json:"quality,omitempty"`
}

// IsZero reports whether no transform is requested.
func (o ImageOptions) IsZero() bool {
	return o == ImageOptions{}
}

// encode produces a stable textual form of the options for hashing and for
// persistence in the incremental cache.
func (o ImageOptions) encode() string {
	if o.IsZero() {
		return ""
	}
	return fmt.Sprintf("w=%d;h=%d;f=%s;q=%d", o.Width, o.Height, o.Format, o.Quality)
}

// Record is one registered asset. Identical (source, kind, options) tuples
// always carry the identical BuildPath, across pages and across builds with
// unchanged content.
type Record struct {
	SourcePath string       `json:"source_path"`
	Kind       Kind         `json:"kind"`
	BuildPath  string       `json:"build_path"` // relative to the output root, slash-separated
	Options    ImageOptions `json:"options,omitempty"`
}

// URL returns the site-absolute URL of the asset.
func (r Record) URL() string {
	return "/" + r.BuildPath
}

// buildPath computes the content-addressed output path for an asset:
// assetsDir/<stem>.<hash>.<ext>. The hash covers the file content, the
// canonicalized source path, the kind and the encoded options, so changing
// any of them yields a different output file.
func buildPath(assetsDir, sourcePath string, kind Kind, opts ImageOptions) (string, error) {
	canonical, err := filepath.Abs(sourcePath)
	if err != nil {
		canonical = sourcePath
	}

	h := xxhash.New()
	content, readErr := os.ReadFile(sourcePath)
	if readErr == nil {
		_, _ = h.Write(content)
	}
	_, _ = h.Write([]byte(canonical))
	_, _ = h.Write([]byte(kind))
	_, _ = h.Write([]byte(opts.encode()))
	sum := fmt.Sprintf("%08x", h.Sum64())[:8]

	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if opts.Format != "" {
		ext = "." + opts.Format
	}

	name := fmt.Sprintf("%s.%s%s", stem, sum, ext)
	return path.Join(filepath.ToSlash(assetsDir), name), readErr
}
