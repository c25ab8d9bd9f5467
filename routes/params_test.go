package routes

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesmith/sitesmith/errs"
)

func TestParamsStrings(t *testing.T) {
	p := Params{"slug": V("hello"), "lang": nil}
	flat := p.Strings()
	assert.Equal(t, map[string]string{"slug": "hello"}, flat)
}

func TestDecodeParams(t *testing.T) {
	type articleParams struct {
		Slug string `mapstructure:"slug"`
		Page int    `mapstructure:"page"`
	}

	t.Run("weak typing parses numbers from strings", func(t *testing.T) {
		var out articleParams
		err := DecodeParams(Params{"slug": V("hello"), "page": V("3")}, &out)
		require.NoError(t, err)
		assert.Equal(t, articleParams{Slug: "hello", Page: 3}, out)
	})

	t.Run("unparseable value is a params error", func(t *testing.T) {
		var out articleParams
		err := DecodeParams(Params{"slug": V("hello"), "page": V("three")}, &out)
		require.Error(t, err)
		assert.True(t, errs.IsCategory(err, errs.CategoryParams))
	})

	t.Run("unset optional param leaves zero value", func(t *testing.T) {
		var out articleParams
		err := DecodeParams(Params{"slug": V("hello"), "page": nil}, &out)
		require.NoError(t, err)
		assert.Zero(t, out.Page)
	})
}

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	pages := Paginate(items, 2, func(page int) Params {
		if page == 0 {
			return Params{"page": nil}
		}
		return Params{"page": V(strconv.Itoa(page))}
	})

	require.Len(t, pages, 3)

	first, ok := pages[0].Props.(PaginationPage[string])
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, first.Items)
	assert.Equal(t, 5, first.TotalItems)
	assert.Equal(t, 3, first.TotalPages)
	assert.False(t, first.HasPrev)
	assert.True(t, first.HasNext)

	last, ok := pages[2].Props.(PaginationPage[string])
	require.True(t, ok)
	assert.Equal(t, []string{"e"}, last.Items)
	assert.True(t, last.HasPrev)
	assert.False(t, last.HasNext)
	assert.Equal(t, 4, last.StartIndex)
	assert.Equal(t, 5, last.EndIndex)
}

func TestPaginateEmpty(t *testing.T) {
	assert.Nil(t, Paginate([]int(nil), 10, func(int) Params { return Params{} }))
	assert.Nil(t, Paginate([]int{1, 2}, 0, func(int) Params { return Params{} }))
}
