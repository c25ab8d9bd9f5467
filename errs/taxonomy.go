package errs

import "fmt"

// MalformedTemplate reports a route pattern that references a required
// parameter absent from the supplied parameter map.
func MalformedTemplate(pattern, param string) *Error {
	return New(CategoryRouting, fmt.Sprintf("route %q is missing parameter %q", pattern, param)).
		WithContext("pattern", pattern).
		WithContext("param", param)
}

// DuplicateRoute reports two page resolutions colliding on the same output
// file path. The contributor strings identify both sides (route pattern plus
// variant id, if any).
func DuplicateRoute(filePath, first, second string) *Error {
	return New(CategoryRouting, fmt.Sprintf("output path %q produced by both %s and %s", filePath, first, second)).
		WithContext("file_path", filePath).
		WithContext("first", first).
		WithContext("second", second)
}

// SourceNotInitialized reports a content lookup before Registry.InitAll.
func SourceNotInitialized(source string) *Error {
	return New(CategoryContent, fmt.Sprintf("content source %q queried before initialization", source)).
		WithContext("source", source)
}

// SourceNotFound reports a lookup of an unregistered content source.
func SourceNotFound(source string) *Error {
	return New(CategoryContent, fmt.Sprintf("content source %q not registered", source)).
		WithContext("source", source)
}

// EntryNotFound reports a missing entry id within a content source.
func EntryNotFound(source, id string) *Error {
	return New(CategoryContent, fmt.Sprintf("entry %q not found in content source %q", id, source)).
		WithContext("source", source).
		WithContext("id", id)
}

// ParamConversion reports a typed params/props decode failure. The cause
// names the offending field and expected type.
func ParamConversion(target string, cause error) *Error {
	return Wrap(cause, CategoryParams, fmt.Sprintf("cannot decode parameters into %s", target)).
		WithContext("target", target)
}

// AssetRead reports an unreadable asset source file.
func AssetRead(path string, cause error) *Error {
	return Wrap(cause, CategoryAsset, fmt.Sprintf("cannot read asset %q", path)).
		WithContext("path", path)
}

// Render wraps a failure from user render code with the page's URL and
// variant so the failing page can be located.
func Render(url, variant string, cause error) *Error {
	e := Wrap(cause, CategoryRender, fmt.Sprintf("render failed for %s", url)).
		WithContext("url", url)
	if variant != "" {
		e.Message = fmt.Sprintf("render failed for %s (variant %s)", url, variant)
		e.WithContext("variant", variant)
	}
	return e
}

// WriteFailed reports a filesystem failure while writing build output.
func WriteFailed(path string, cause error) *Error {
	return Wrap(cause, CategoryWrite, fmt.Sprintf("cannot write %q", path)).
		WithContext("path", path)
}

// CacheCorrupt reports an unusable incremental cache. Always a warning: the
// build degrades to a full rebuild instead of failing.
func CacheCorrupt(path string, cause error) *Error {
	e := Warning(CategoryCache, fmt.Sprintf("incremental cache %q unusable, rebuilding everything", path)).
		WithContext("path", path)
	e.Cause = cause
	return e
}
