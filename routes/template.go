// Package routes defines the page types users implement and the resolution
// machinery that turns a route pattern plus parameters into a canonical URL
// and output file path.
package routes

import (
	"path"
	"strings"
)

// ParamDef locates one [name] placeholder inside a route pattern.
type ParamDef struct {
	Key    string
	Index  int
	Length int
}

// ExtractParams finds every unescaped [name] placeholder in a pattern.
// Brackets can be escaped with a backslash to appear literally. Results are
// sorted by descending index so in-place replacement never shifts the
// indices of placeholders yet to be substituted.
func ExtractParams(pattern string) []ParamDef {
	var defs []ParamDef
	start := 0

	for {
		rel := strings.IndexByte(pattern[start:], '[')
		if rel < 0 {
			break
		}
		abs := start + rel

		// An odd number of preceding backslashes escapes the bracket.
		backslashes := 0
		for i := abs - 1; i >= 0 && pattern[i] == '\\'; i-- {
			backslashes++
		}
		if backslashes%2 == 1 {
			start = abs + 1
			continue
		}

		end := strings.IndexByte(pattern[abs+1:], ']')
		if end < 0 {
			break
		}
		endAbs := abs + 1 + end

		defs = append(defs, ParamDef{
			Key:    pattern[abs+1 : endAbs],
			Index:  abs,
			Length: endAbs - abs + 1,
		})
		start = endAbs + 1
	}

	// Descending by index.
	for i, j := 0, len(defs)-1; i < j; i, j = i+1, j-1 {
		defs[i], defs[j] = defs[j], defs[i]
	}
	return defs
}

// IsEndpoint reports whether a pattern addresses an explicit file rather
// than a directory index: the final segment of the template (not the
// resolved value) carries a file extension.
func IsEndpoint(pattern string) bool {
	last := pattern
	if i := strings.LastIndexByte(pattern, '/'); i >= 0 {
		last = pattern[i+1:]
	}
	return path.Ext(last) != ""
}

// unescape turns escaped brackets back into literals for output paths.
func unescape(s string) string {
	s = strings.ReplaceAll(s, `\[`, "[")
	return strings.ReplaceAll(s, `\]`, "]")
}
