package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	plain := New(CategoryRouting, "bad pattern")
	assert.Equal(t, "routing (fatal): bad pattern", plain.Error())

	wrapped := Wrap(errors.New("eof"), CategoryContent, "loading posts")
	assert.Equal(t, "content (fatal): loading posts: eof", wrapped.Error())
}

func TestUnwrapChain(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, CategoryAsset, "copy failed")

	assert.ErrorIs(t, err, cause)

	var e *Error
	require.ErrorAs(t, fmt.Errorf("outer: %w", err), &e)
	assert.Equal(t, CategoryAsset, e.Category)
}

func TestIsCategory(t *testing.T) {
	err := EntryNotFound("posts", "missing")
	assert.True(t, IsCategory(err, CategoryContent))
	assert.False(t, IsCategory(err, CategoryRouting))
	assert.False(t, IsCategory(errors.New("plain"), CategoryContent))
}

func TestGetCategoryDefaultsToRender(t *testing.T) {
	assert.Equal(t, CategoryRender, GetCategory(errors.New("user code panic")))
	assert.Equal(t, CategoryCache, GetCategory(CacheCorrupt("x.db", errors.New("bad magic"))))
}

func TestWithContext(t *testing.T) {
	err := New(CategoryWrite, "disk full").
		WithContext("path", "dist/index.html").
		WithContext("free_bytes", 0)

	assert.Equal(t, "dist/index.html", err.Context["path"])
	assert.Equal(t, 0, err.Context["free_bytes"])
}

func TestSeverities(t *testing.T) {
	assert.Equal(t, SeverityWarning, CacheCorrupt("x.db", nil).Severity)
	assert.Equal(t, SeverityFatal, Render("/page/", "sv", errors.New("boom")).Severity)
}
