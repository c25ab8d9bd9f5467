// Package incremental persists per-page dependency fingerprints between
// builds and decides which pages must be re-rendered.
package incremental

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"github.com/sitesmith/sitesmith/content"
)

// Dep is one recorded dependency of a rendered page: a content entry, a
// whole content source (ID == "*"), or an asset source file.
type Dep struct {
	Kind   string `json:"kind"` // "content" or "asset"
	Source string `json:"source,omitempty"`
	ID     string `json:"id,omitempty"`
	Path   string `json:"path,omitempty"`
	Hash   string `json:"hash"`
}

const (
	depContent = "content"
	depAsset   = "asset"
)

func (d Dep) line() string {
	if d.Kind == depContent {
		return fmt.Sprintf("content|%s|%s|%s", d.Source, d.ID, d.Hash)
	}
	return fmt.Sprintf("asset|%s|%s", d.Path, d.Hash)
}

// ContentDeps converts the read records of a page's content accessor.
func ContentDeps(reads []content.ReadRecord) []Dep {
	deps := make([]Dep, 0, len(reads))
	for _, r := range reads {
		deps = append(deps, Dep{Kind: depContent, Source: r.Source, ID: r.EntryID, Hash: r.Hash})
	}
	return deps
}

// AssetDep fingerprints an asset source file by mtime and size. A missing
// file still produces a dep (with a sentinel hash) so its later appearance
// invalidates the page.
func AssetDep(path string) Dep {
	info, err := os.Stat(path)
	if err != nil {
		return Dep{Kind: depAsset, Path: path, Hash: "missing"}
	}
	return Dep{Kind: depAsset, Path: path, Hash: fmt.Sprintf("%d|%d", info.ModTime().UnixNano(), info.Size())}
}

// Fingerprint hashes the structural stamp plus the sorted dependency lines
// into the page's build fingerprint.
func Fingerprint(stamp string, deps []Dep) string {
	lines := make([]string, 0, len(deps))
	for _, d := range deps {
		lines = append(lines, d.line())
	}
	sort.Strings(lines)

	h := sha256.New()
	h.Write([]byte(stamp))
	h.Write([]byte{'\n'})
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CurrentFingerprint re-evaluates a stored dependency list against the
// current content registry and filesystem, producing the fingerprint those
// dependencies would have now. ok is false when a dependency can no longer
// be evaluated (source or entry gone), which always forces a rebuild.
func CurrentFingerprint(stamp string, deps []Dep, reg *content.Registry) (fp string, ok bool) {
	current := make([]Dep, 0, len(deps))
	for _, d := range deps {
		switch d.Kind {
		case depContent:
			src, err := reg.Source(d.Source)
			if err != nil {
				return "", false
			}
			if d.ID == "*" {
				current = append(current, Dep{Kind: depContent, Source: d.Source, ID: "*", Hash: src.Hash()})
				continue
			}
			entry, found := src.Entry(d.ID)
			if !found {
				return "", false
			}
			current = append(current, Dep{Kind: depContent, Source: d.Source, ID: d.ID, Hash: entry.Hash})
		case depAsset:
			current = append(current, AssetDep(d.Path))
		default:
			return "", false
		}
	}
	return Fingerprint(stamp, current), true
}
