package build

import (
	"github.com/sitesmith/sitesmith/assets"
	"github.com/sitesmith/sitesmith/content"
	"github.com/sitesmith/sitesmith/incremental"
	"github.com/sitesmith/sitesmith/routes"
)

// ResolvedPage is one concrete output unit derived from a route plus
// parameters and variant. It lives only for the duration of one build.
type ResolvedPage struct {
	Route    routes.Route
	Pattern  string
	Kind     routes.Kind
	Variant  string // empty for the base route
	URL      string
	FilePath string // relative to the output directory
	Params   routes.Params
	Props    any
	Endpoint bool

	// EnumReads are the content reads observed while enumerating the page's
	// route. They count as dependencies of every page the enumeration
	// produced: a changed dataset changes the page list.
	EnumReads []content.ReadRecord
}

// describe names the page for duplicate-route errors.
func (p *ResolvedPage) describe() string {
	if p.Variant == "" {
		return "route " + p.Pattern
	}
	return "route " + p.Pattern + " (variant " + p.Variant + ")"
}

// pendingRecord is a cache record awaiting persistence after the build's
// write phase succeeds.
type pendingRecord struct {
	record *incremental.PageRecord
}

// State carries mutable build state across stages.
type State struct {
	Options Options
	Routes  []routes.Route
	Content *content.Registry
	Report  *Report

	resolved []*ResolvedPage

	// outputs holds rendered (or reused) page bytes keyed by file path.
	outputs map[string][]byte
	// writeOrder preserves deterministic page write order.
	writeOrder []string

	// assetSet is the build-wide deduplicated asset set, keyed by build
	// path. Entries are immutable once inserted; the merge stage performs
	// one copy/transform per key.
	assetSet   map[string]assets.Record
	assetOrder []string

	checker *incremental.Checker
	cache   *incremental.Store
	pending []pendingRecord
}

func newState(opts Options, rts []routes.Route, reg *content.Registry, report *Report) *State {
	return &State{
		Options:  opts,
		Routes:   rts,
		Content:  reg,
		Report:   report,
		outputs:  make(map[string][]byte),
		assetSet: make(map[string]assets.Record),
	}
}

// mergeAssets folds a page's asset records into the build-wide set.
// Identical (source, kind, options) tuples share a build path, so the set
// union is all that is needed.
func (st *State) mergeAssets(records []assets.Record) {
	for _, rec := range records {
		if _, ok := st.assetSet[rec.BuildPath]; ok {
			continue
		}
		st.assetSet[rec.BuildPath] = rec
		st.assetOrder = append(st.assetOrder, rec.BuildPath)
	}
}

func (st *State) addOutput(filePath string, data []byte) {
	st.outputs[filePath] = data
	st.writeOrder = append(st.writeOrder, filePath)
}
