package assets

import (
	"fmt"

	"github.com/sitesmith/sitesmith/errs"
)

// Ledger is the per-page asset set. One ledger is constructed per resolved
// page and starts empty; the orchestrator merges it into the build-wide
// deduplicated set after the page's render returns.
type Ledger struct {
	assetsDir string
	records   map[string]Record
	order     []string

	includedScripts []Record
	includedStyles  []Record
}

// NewLedger creates an empty ledger. assetsDir is the build-relative
// directory asset output paths are placed under.
func NewLedger(assetsDir string) *Ledger {
	return &Ledger{
		assetsDir: assetsDir,
		records:   make(map[string]Record),
	}
}

func (l *Ledger) add(sourcePath string, kind Kind, opts ImageOptions) (Record, error) {
	key := fmt.Sprintf("%s|%s|%s", sourcePath, kind, opts.encode())
	if rec, ok := l.records[key]; ok {
		return rec, nil
	}

	bp, readErr := buildPath(l.assetsDir, sourcePath, kind, opts)
	if readErr != nil && kind == KindImage {
		// Images must be readable at registration time; scripts and styles
		// are only inspected at copy time.
		return Record{}, errs.AssetRead(sourcePath, readErr)
	}

	rec := Record{SourcePath: sourcePath, Kind: kind, BuildPath: bp, Options: opts}
	l.records[key] = rec
	l.order = append(l.order, key)
	return rec, nil
}

// AddScript registers a script file and returns its record.
func (l *Ledger) AddScript(sourcePath string) (Record, error) {
	return l.add(sourcePath, KindScript, ImageOptions{})
}

// AddStyle registers a stylesheet and returns its record.
func (l *Ledger) AddStyle(sourcePath string) (Record, error) {
	return l.add(sourcePath, KindStyle, ImageOptions{})
}

// AddImage registers an image with no transform.
func (l *Ledger) AddImage(sourcePath string) (Record, error) {
	return l.add(sourcePath, KindImage, ImageOptions{})
}

// AddImageWithOptions registers an image with transform options. Distinct
// options yield a distinct build path for the same source file.
func (l *Ledger) AddImageWithOptions(sourcePath string, opts ImageOptions) (Record, error) {
	return l.add(sourcePath, KindImage, opts)
}

// IncludeScript registers a script and queues it for injection into the
// rendered page's <head>.
func (l *Ledger) IncludeScript(sourcePath string) (Record, error) {
	rec, err := l.add(sourcePath, KindScript, ImageOptions{})
	if err != nil {
		return Record{}, err
	}
	l.includedScripts = append(l.includedScripts, rec)
	return rec, nil
}

// IncludeStyle registers a stylesheet and queues it for <head> injection.
func (l *Ledger) IncludeStyle(sourcePath string) (Record, error) {
	rec, err := l.add(sourcePath, KindStyle, ImageOptions{})
	if err != nil {
		return Record{}, err
	}
	l.includedStyles = append(l.includedStyles, rec)
	return rec, nil
}

// Records returns all registered assets in registration order.
func (l *Ledger) Records() []Record {
	out := make([]Record, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.records[key])
	}
	return out
}

// IncludedScripts returns scripts queued for head injection, in order.
func (l *Ledger) IncludedScripts() []Record { return l.includedScripts }

// IncludedStyles returns styles queued for head injection, in order.
func (l *Ledger) IncludedStyles() []Record { return l.includedStyles }

// Len returns the number of distinct registered assets.
func (l *Ledger) Len() int { return len(l.records) }
