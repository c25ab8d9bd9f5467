package incremental

import (
	"log/slog"

	"github.com/sitesmith/sitesmith/content"
)

// Checker answers should-rebuild questions for one build. It is constructed
// once the current structural stamp is known; a nil Checker (or one whose
// stamp mismatched) rebuilds everything.
type Checker struct {
	store      *Store
	stamp      string
	stampMatch bool
	reg        *content.Registry
}

// NewChecker prepares the checker, comparing the stored structural stamp
// with the current one exactly once. Checks are pure reads and safe to run
// concurrently per page.
func NewChecker(store *Store, stamp string, reg *content.Registry) *Checker {
	c := &Checker{store: store, stamp: stamp, reg: reg}
	if store == nil {
		return c
	}
	prev, err := store.StructuralStamp()
	if err != nil {
		slog.Warn("cannot read structural stamp, rebuilding everything", "error", err)
		return c
	}
	c.stampMatch = prev == stamp && stamp != ""
	if !c.stampMatch {
		slog.Debug("structural stamp changed, rebuilding everything", "previous", prev, "current", stamp)
	}
	return c
}

// ShouldRebuild reports whether the page at filePath must re-render, and
// returns the previous record when it can be reused instead. A page is
// skipped only when a record exists, the structural stamp matches, and
// every recorded dependency fingerprints identically today.
func (c *Checker) ShouldRebuild(filePath string) (bool, *PageRecord) {
	if c == nil || c.store == nil || !c.stampMatch {
		return true, nil
	}

	rec, found, err := c.store.Lookup(filePath)
	if err != nil {
		slog.Warn("cache lookup failed, re-rendering page", "file", filePath, "error", err)
		return true, nil
	}
	if !found {
		return true, nil
	}

	current, ok := CurrentFingerprint(c.stamp, rec.Deps, c.reg)
	if !ok || current != rec.Fingerprint {
		return true, nil
	}
	return false, rec
}
