package content

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownOptions configures the bundled Markdown glob loader.
type MarkdownOptions struct {
	// AllowRawHTML passes raw HTML in Markdown bodies through to the output.
	AllowRawHTML bool
	// IDFunc derives an entry id from the matched file path. Defaults to a
	// slug of the file stem.
	IDFunc func(relPath string) string
}

// NewMarkdownSource returns a Source that loads every file matching the
// glob pattern as one entry: YAML frontmatter becomes the entry data, the
// body renders to HTML lazily via goldmark.
func NewMarkdownSource(name, pattern string, opts MarkdownOptions) *StaticSource {
	return NewStaticSource(name, func() ([]*Entry, error) {
		return loadMarkdownGlob(pattern, opts)
	})
}

func loadMarkdownGlob(pattern string, opts MarkdownOptions) ([]*Entry, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)

	idFunc := opts.IDFunc
	if idFunc == nil {
		idFunc = defaultEntryID
	}

	renderOpts := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM),
	}
	if opts.AllowRawHTML {
		renderOpts = append(renderOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	md := goldmark.New(renderOpts...)

	entries := make([]*Entry, 0, len(matches))
	for _, match := range matches {
		raw, err := os.ReadFile(match)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", match, err)
		}

		var data map[string]any
		body, err := frontmatter.Parse(bytes.NewReader(raw), &data)
		if err != nil {
			return nil, fmt.Errorf("parsing frontmatter of %q: %w", match, err)
		}
		if data == nil {
			data = map[string]any{}
		}

		entry := NewEntry(idFunc(match), data, body, raw, func(body []byte) ([]byte, error) {
			var buf bytes.Buffer
			if err := md.Convert(body, &buf); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		})
		entries = append(entries, entry)
	}
	return entries, nil
}

// defaultEntryID slugifies the file stem: "content/My Första Post.md"
// becomes "my-forsta-post".
func defaultEntryID(p string) string {
	base := filepath.Base(p)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return Slugify(stem)
}
