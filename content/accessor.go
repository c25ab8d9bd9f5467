package content

import (
	"sort"

	"github.com/sitesmith/sitesmith/errs"
)

// ReadRecord is one content dependency observed during a page's render:
// either a single entry (EntryID set) or a whole-source iteration
// (EntryID == "*"). The incremental cache fingerprints pages from these.
type ReadRecord struct {
	Source  string `json:"source"`
	EntryID string `json:"entry_id"`
	Hash    string `json:"hash"`
}

// Accessor wraps the shared registry for one page, recording which entries
// the page reads. One accessor is constructed per resolved page.
type Accessor struct {
	reg   *Registry
	reads map[string]ReadRecord
}

// NewAccessor creates a per-page accessor over the shared registry.
func NewAccessor(reg *Registry) *Accessor {
	return &Accessor{reg: reg, reads: make(map[string]ReadRecord)}
}

// Source returns a read-tracking view of the named source.
func (a *Accessor) Source(name string) (*SourceView, error) {
	s, err := a.reg.Source(name)
	if err != nil {
		return nil, err
	}
	return &SourceView{src: s, acc: a}, nil
}

// Reads returns the recorded dependencies, sorted for determinism.
func (a *Accessor) Reads() []ReadRecord {
	out := make([]ReadRecord, 0, len(a.reads))
	for _, r := range a.reads {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].EntryID < out[j].EntryID
	})
	return out
}

func (a *Accessor) record(source, entryID, hash string) {
	a.reads[source+"\x00"+entryID] = ReadRecord{Source: source, EntryID: entryID, Hash: hash}
}

// SourceView is an Accessor-scoped handle on one source.
type SourceView struct {
	src Source
	acc *Accessor
}

// Name returns the underlying source name.
func (v *SourceView) Name() string { return v.src.Name() }

// Entry looks up one entry by id, recording a per-entry dependency.
func (v *SourceView) Entry(id string) (*Entry, error) {
	e, ok := v.src.Entry(id)
	if !ok {
		return nil, errs.EntryNotFound(v.src.Name(), id)
	}
	v.acc.record(v.src.Name(), e.ID, e.Hash)
	return e, nil
}

// Entries returns all entries, recording a whole-source dependency. Any
// entry added, removed or changed in the source invalidates the page.
func (v *SourceView) Entries() []*Entry {
	v.acc.record(v.src.Name(), "*", v.src.Hash())
	return v.src.Entries()
}

// Len returns the entry count without recording a dependency on contents.
func (v *SourceView) Len() int { return len(v.src.Entries()) }
