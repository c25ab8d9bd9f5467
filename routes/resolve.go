package routes

import (
	"path/filepath"
	"strings"

	"github.com/sitesmith/sitesmith/errs"
)

// substitute replaces every placeholder with its parameter value. A nil
// value (optional parameter left unset) elides the placeholder entirely; a
// key missing from the map is a malformed template.
func substitute(pattern string, defs []ParamDef, params Params) (string, error) {
	if len(defs) == 0 {
		return unescape(pattern), nil
	}

	out := pattern
	// defs are sorted by descending index, so byte-offset replacement is safe.
	for _, def := range defs {
		value, ok := params[def.Key]
		if !ok {
			return "", errs.MalformedTemplate(pattern, def.Key)
		}
		replacement := ""
		if value != nil {
			replacement = *value
		}
		out = out[:def.Index] + replacement + out[def.Index+def.Length:]
	}
	return unescape(out), nil
}

// splitSegments collapses any run of separators produced by elided optional
// parameters: empty segments simply disappear.
func splitSegments(resolved string) []string {
	parts := strings.Split(resolved, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// BuildURL resolves a pattern into the page's canonical site-absolute URL.
// Non-endpoint URLs always carry a trailing slash.
func BuildURL(pattern string, defs []ParamDef, params Params, endpoint bool) (string, error) {
	resolved, err := substitute(pattern, defs, params)
	if err != nil {
		return "", err
	}

	url := "/" + strings.Join(splitSegments(resolved), "/")
	if !endpoint && !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url, nil
}

// BuildFilePath resolves a pattern into the page's output path, relative to
// the output directory. Non-endpoints become directory indexes.
func BuildFilePath(pattern string, defs []ParamDef, params Params, endpoint bool) (string, error) {
	resolved, err := substitute(pattern, defs, params)
	if err != nil {
		return "", err
	}

	segments := splitSegments(resolved)
	if !endpoint {
		segments = append(segments, "index.html")
	}
	return filepath.Join(segments...), nil
}
