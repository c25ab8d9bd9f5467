// Package content holds the named, queryable collections of structured
// entries that render code reads from. The engine only specifies the Source
// contract; loaders (the bundled Markdown glob loader, or custom ones)
// decide how entries are produced.
package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"github.com/sitesmith/sitesmith/errs"
)

// Entry is one item of a content source, e.g. one parsed Markdown file.
// Entries are shared read-only across all pages within a build.
type Entry struct {
	// ID uniquely identifies the entry within its source.
	ID string
	// Data is the entry's structured metadata (typically frontmatter).
	Data map[string]any
	// Body is the raw entry body, before any rendering.
	Body []byte
	// Hash fingerprints the entry's full raw content. Used by the
	// incremental cache to detect per-entry changes.
	Hash string

	renderFn   func([]byte) ([]byte, error)
	renderOnce sync.Once
	rendered   []byte
	renderErr  error
}

// Render produces the entry's HTML, lazily and at most once. Entries without
// a render function return the raw body.
func (e *Entry) Render() ([]byte, error) {
	e.renderOnce.Do(func() {
		if e.renderFn == nil {
			e.rendered = e.Body
			return
		}
		e.rendered, e.renderErr = e.renderFn(e.Body)
	})
	return e.rendered, e.renderErr
}

// DataAs decodes the entry's metadata into a typed struct. Decode failures
// name the offending field and expected type.
func DataAs[T any](e *Entry) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, errs.ParamConversion(fmt.Sprintf("%T", out), err)
	}
	if err := dec.Decode(e.Data); err != nil {
		return out, errs.ParamConversion(fmt.Sprintf("%T", out), err)
	}
	return out, nil
}

// HashBytes fingerprints raw entry content. Sixteen hex chars is plenty for
// change detection while keeping cache rows readable.
func HashBytes(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:16]
}

// Source is a named collection of entries. Init must run before any lookup;
// the registry enforces this.
type Source interface {
	// Name identifies the source in the registry.
	Name() string
	// Init loads the entries. Called exactly once per build by the registry.
	Init() error
	// Initialized reports whether Init has completed successfully.
	Initialized() bool
	// Entries returns all entries in a stable order.
	Entries() []*Entry
	// Entry returns the entry with the given id, if present. O(1).
	Entry(id string) (*Entry, bool)
	// Hash fingerprints the whole source (all entry ids and hashes).
	Hash() string
}

// StaticSource is an in-memory Source, useful for custom loaders and tests.
type StaticSource struct {
	name    string
	load    func() ([]*Entry, error)
	entries []*Entry
	index   map[string]int
	hash    string
	inited  bool
}

// NewStaticSource creates a source whose entries are produced by load at
// Init time.
func NewStaticSource(name string, load func() ([]*Entry, error)) *StaticSource {
	return &StaticSource{name: name, load: load}
}

// NewEntry constructs an entry with an optional lazy render function,
// computing the content hash from the raw input.
func NewEntry(id string, data map[string]any, body, raw []byte, render func([]byte) ([]byte, error)) *Entry {
	return &Entry{
		ID:       id,
		Data:     data,
		Body:     body,
		Hash:     HashBytes(raw),
		renderFn: render,
	}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Init() error {
	entries, err := s.load()
	if err != nil {
		return err
	}
	s.entries = entries
	s.index = make(map[string]int, len(entries))
	for i, e := range entries {
		s.index[e.ID] = i
	}
	s.hash = sourceHash(entries)
	s.inited = true
	return nil
}

func (s *StaticSource) Initialized() bool { return s.inited }

func (s *StaticSource) Entries() []*Entry { return s.entries }

func (s *StaticSource) Entry(id string) (*Entry, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.entries[i], true
}

func (s *StaticSource) Hash() string { return s.hash }

// sourceHash aggregates entry ids and hashes into one source fingerprint.
func sourceHash(entries []*Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.ID+"|"+e.Hash)
	}
	sort.Strings(lines)
	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
