package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesmith/sitesmith/assets"
	"github.com/sitesmith/sitesmith/content"
)

func newTestContext(t *testing.T, props any, path, baseURL string) *PageContext {
	t.Helper()
	reg, err := content.NewRegistry()
	require.NoError(t, err)
	require.NoError(t, reg.InitAll())
	return NewPageContext(Params{}, props, content.NewAccessor(reg), assets.NewLedger("_assets"), path, baseURL, "", false)
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		path    string
		want    string
	}{
		{"no base url", "", "/articles/hello/", ""},
		{"joined", "https://example.com", "/articles/hello/", "https://example.com/articles/hello/"},
		{"trailing slash on base is trimmed", "https://example.com/", "/about/", "https://example.com/about/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t, nil, tt.path, tt.baseURL)
			assert.Equal(t, tt.want, ctx.CanonicalURL())
		})
	}
}

func TestPropsAs(t *testing.T) {
	type articleProps struct {
		Title string
		Rank  int
	}

	t.Run("typed props assert directly", func(t *testing.T) {
		ctx := newTestContext(t, articleProps{Title: "hello", Rank: 2}, "/", "")
		got, err := PropsAs[articleProps](ctx)
		require.NoError(t, err)
		assert.Equal(t, articleProps{Title: "hello", Rank: 2}, got)
	})

	t.Run("map props decode field by field", func(t *testing.T) {
		ctx := newTestContext(t, map[string]any{"Title": "hello", "Rank": 2}, "/", "")
		got, err := PropsAs[articleProps](ctx)
		require.NoError(t, err)
		assert.Equal(t, articleProps{Title: "hello", Rank: 2}, got)
	})
}
