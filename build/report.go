package build

import (
	"encoding/json"
	"time"
)

// PageOutput records one produced page.
type PageOutput struct {
	Route    string            `json:"route"`
	URL      string            `json:"url"`
	FilePath string            `json:"file_path"`
	Variant  string            `json:"variant,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Reused   bool              `json:"reused,omitempty"`
}

// StaticOutput records one file copied verbatim from the static directory.
type StaticOutput struct {
	FilePath     string `json:"file_path"`
	OriginalPath string `json:"original_path"`
}

// Report summarizes a completed build.
type Report struct {
	BuildID   string        `json:"build_id"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`

	Pages       []PageOutput   `json:"pages"`
	Assets      []string       `json:"assets"`
	StaticFiles []StaticOutput `json:"static_files"`

	RenderedPages int `json:"rendered_pages"`
	SkippedPages  int `json:"skipped_pages"`

	StageDurations map[StageName]time.Duration `json:"stage_durations"`
	Warnings       []string                    `json:"warnings,omitempty"`
}

func newReport(buildID string) *Report {
	return &Report{
		BuildID:        buildID,
		StartedAt:      time.Now(),
		StageDurations: make(map[StageName]time.Duration),
	}
}

// PageCount returns the total number of pages in the output.
func (r *Report) PageCount() int { return len(r.Pages) }

// AssetCount returns the number of unique processed assets.
func (r *Report) AssetCount() int { return len(r.Assets) }

// ToJSON serializes the report for persistence or tooling.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
