package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesmith/sitesmith/errs"
)

type plainRoute struct{ pattern string }

func (r *plainRoute) Pattern() string { return r.pattern }
func (r *plainRoute) Render(*PageContext) (RenderResult, error) {
	return Text("<html></html>"), nil
}

type localizedRoute struct {
	pattern  string
	variants []Variant
}

func (r *localizedRoute) Pattern() string     { return r.pattern }
func (r *localizedRoute) Variants() []Variant { return r.variants }
func (r *localizedRoute) Render(*PageContext) (RenderResult, error) {
	return Text("<html></html>"), nil
}

func TestExpandVariants(t *testing.T) {
	t.Run("plain route expands to its base only", func(t *testing.T) {
		exps, err := ExpandVariants(&plainRoute{pattern: "/about"})
		require.NoError(t, err)
		require.Len(t, exps, 1)
		assert.Equal(t, Expansion{Pattern: "/about"}, exps[0])
	})

	t.Run("base comes first, then variants in declaration order", func(t *testing.T) {
		r := &localizedRoute{
			pattern: "/about",
			variants: []Variant{
				{ID: "sv", Prefix: "/sv"},
				{ID: "fr", Path: "/fr/a-propos"},
			},
		}
		exps, err := ExpandVariants(r)
		require.NoError(t, err)
		require.Len(t, exps, 3)
		assert.Equal(t, Expansion{Pattern: "/about"}, exps[0])
		assert.Equal(t, Expansion{Variant: "sv", Pattern: "/sv/about"}, exps[1])
		assert.Equal(t, Expansion{Variant: "fr", Pattern: "/fr/a-propos"}, exps[2])
	})

	t.Run("variant-only route has no base expansion", func(t *testing.T) {
		r := &localizedRoute{
			pattern: "",
			variants: []Variant{
				{ID: "en", Path: "/en/about"},
				{ID: "sv", Path: "/sv/om"},
			},
		}
		exps, err := ExpandVariants(r)
		require.NoError(t, err)
		require.Len(t, exps, 2)
		assert.Equal(t, "en", exps[0].Variant)
	})

	t.Run("colliding patterns name both contributors", func(t *testing.T) {
		r := &localizedRoute{
			pattern:  "/about",
			variants: []Variant{{ID: "en", Path: "/about"}},
		}
		_, err := ExpandVariants(r)
		require.Error(t, err)
		assert.True(t, errs.IsCategory(err, errs.CategoryRouting))
		assert.Contains(t, err.Error(), `route "/about"`)
		assert.Contains(t, err.Error(), "variant en")
	})

	t.Run("empty pattern without variants is an error", func(t *testing.T) {
		_, err := ExpandVariants(&plainRoute{pattern: ""})
		require.Error(t, err)
	})

	t.Run("variant with both path and prefix is rejected", func(t *testing.T) {
		r := &localizedRoute{
			pattern:  "/about",
			variants: []Variant{{ID: "sv", Path: "/sv/om", Prefix: "/sv"}},
		}
		_, err := ExpandVariants(r)
		require.Error(t, err)
	})

	t.Run("variant with empty id is rejected", func(t *testing.T) {
		r := &localizedRoute{
			pattern:  "/about",
			variants: []Variant{{Prefix: "/sv"}},
		}
		_, err := ExpandVariants(r)
		require.Error(t, err)
	})
}

func TestKindOf(t *testing.T) {
	t.Run("no params is static", func(t *testing.T) {
		assert.Equal(t, KindStatic, KindOf(&plainRoute{pattern: "/about"}))
	})

	t.Run("base params make it dynamic", func(t *testing.T) {
		assert.Equal(t, KindDynamic, KindOf(&plainRoute{pattern: "/articles/[slug]"}))
	})

	t.Run("variant-only params make it dynamic", func(t *testing.T) {
		r := &localizedRoute{
			pattern:  "/about",
			variants: []Variant{{ID: "sv", Path: "/sv/[page]"}},
		}
		assert.Equal(t, KindDynamic, KindOf(r))
	})
}
