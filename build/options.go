package build

import (
	"github.com/sitesmith/sitesmith/assets"
	"github.com/sitesmith/sitesmith/metrics"
)

// ImageTransformer performs one image copy/transform from src to dst. The
// actual processing engine is an external collaborator; the default
// transformer copies the file verbatim and ignores the options.
type ImageTransformer func(src, dst string, opts assets.ImageOptions) error

// Options configures one build invocation.
type Options struct {
	// OutputDir is the root every page file path is relative to.
	OutputDir string
	// AssetsDir is the output-relative directory for hashed assets.
	AssetsDir string
	// StaticDir is copied verbatim into the output when it exists.
	StaticDir string
	// BaseURL, when set, enables canonical URLs on page contexts.
	BaseURL string
	// CleanOutput moves the previous output aside and removes it before
	// writing. Skipping the clean trades staleness risk for speed.
	CleanOutput bool
	// Dev marks a development build; the flag is copied into every page
	// context so render code can skip slow work.
	Dev bool

	// Incremental enables fingerprint-based page reuse.
	Incremental bool
	// CachePath locates the incremental cache database.
	CachePath string
	// StructuralStamp changes whenever the compiled page code changes.
	// Detection is the caller's responsibility (the CLI stamps from the
	// executable); any mismatch with the cached stamp forces a full
	// rebuild.
	StructuralStamp string

	// Metrics receives stage and build observations. Nil means none.
	Metrics metrics.Recorder
	// TransformImage handles image assets registered with options.
	TransformImage ImageTransformer
}

// Defaults returns options suitable for most projects.
func Defaults() Options {
	return Options{
		OutputDir:   "dist",
		AssetsDir:   "_assets",
		StaticDir:   "static",
		CleanOutput: true,
		CachePath:   ".sitesmith-cache.db",
	}
}

func (o *Options) normalize() {
	if o.OutputDir == "" {
		o.OutputDir = "dist"
	}
	if o.AssetsDir == "" {
		o.AssetsDir = "_assets"
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NoopRecorder{}
	}
	if o.TransformImage == nil {
		o.TransformImage = copyTransformer
	}
}
