package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesmith/sitesmith/assets"
	"github.com/sitesmith/sitesmith/content"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)

	rec := &PageRecord{
		FilePath:    "articles/hello/index.html",
		URL:         "/articles/hello/",
		Fingerprint: "fp1",
		Deps: []Dep{
			{Kind: "content", Source: "posts", ID: "hello", Hash: "h1"},
			{Kind: "asset", Path: "styles/main.css", Hash: "123|456"},
		},
		Output: []byte("<html>hello</html>"),
		Assets: []assets.Record{
			{SourcePath: "styles/main.css", Kind: assets.KindStyle, BuildPath: "_assets/main.abcd1234.css"},
		},
	}
	require.NoError(t, s.Save("build-1", rec))

	got, found, err := s.Lookup("articles/hello/index.html")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.URL, got.URL)
	assert.Equal(t, rec.Fingerprint, got.Fingerprint)
	assert.Equal(t, rec.Deps, got.Deps)
	assert.Equal(t, rec.Output, got.Output)
	assert.Equal(t, rec.Assets, got.Assets)
}

func TestStoreLookupMissing(t *testing.T) {
	s := openTestStore(t)
	_, found, err := s.Lookup("nope.html")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreUpsert(t *testing.T) {
	s := openTestStore(t)

	rec := &PageRecord{FilePath: "index.html", URL: "/", Fingerprint: "v1", Output: []byte("a")}
	require.NoError(t, s.Save("b1", rec))

	rec.Fingerprint = "v2"
	rec.Output = []byte("b")
	require.NoError(t, s.Save("b2", rec))

	got, found, err := s.Lookup("index.html")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v2", got.Fingerprint)
	assert.Equal(t, []byte("b"), got.Output)
}

func TestStoreStructuralStamp(t *testing.T) {
	s := openTestStore(t)

	stamp, err := s.StructuralStamp()
	require.NoError(t, err)
	assert.Empty(t, stamp)

	require.NoError(t, s.SetStructuralStamp("abc"))
	stamp, err = s.StructuralStamp()
	require.NoError(t, err)
	assert.Equal(t, "abc", stamp)
}

func TestStorePrune(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("b1", &PageRecord{FilePath: "keep.html", URL: "/keep/", Fingerprint: "f", Output: []byte("k")}))
	require.NoError(t, s.Save("b1", &PageRecord{FilePath: "drop.html", URL: "/drop/", Fingerprint: "f", Output: []byte("d")}))

	require.NoError(t, s.Prune(map[string]struct{}{"keep.html": {}}))

	_, found, err := s.Lookup("keep.html")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = s.Lookup("drop.html")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCheckerNilStoreRebuildsEverything(t *testing.T) {
	c := NewChecker(nil, "stamp", nil)
	rebuild, rec := c.ShouldRebuild("index.html")
	assert.True(t, rebuild)
	assert.Nil(t, rec)
}

func TestCheckerStampMismatchRebuildsEverything(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SetStructuralStamp("old"))
	require.NoError(t, s.Save("b1", &PageRecord{FilePath: "index.html", URL: "/", Fingerprint: "f", Output: []byte("x")}))

	c := NewChecker(s, "new", nil)
	rebuild, _ := c.ShouldRebuild("index.html")
	assert.True(t, rebuild)
}

func TestCheckerSkipsUnchangedPage(t *testing.T) {
	entry := content.NewEntry("hello", nil, []byte("body"), []byte("body"), nil)
	reg, err := content.NewRegistry(content.NewStaticSource("posts", func() ([]*content.Entry, error) {
		return []*content.Entry{entry}, nil
	}))
	require.NoError(t, err)
	require.NoError(t, reg.InitAll())

	s := openTestStore(t)
	require.NoError(t, s.SetStructuralStamp("stamp"))

	deps := []Dep{{Kind: "content", Source: "posts", ID: "hello", Hash: entry.Hash}}
	require.NoError(t, s.Save("b1", &PageRecord{
		FilePath:    "index.html",
		URL:         "/",
		Fingerprint: Fingerprint("stamp", deps),
		Deps:        deps,
		Output:      []byte("cached"),
	}))

	c := NewChecker(s, "stamp", reg)

	rebuild, rec := c.ShouldRebuild("index.html")
	require.False(t, rebuild)
	require.NotNil(t, rec)
	assert.Equal(t, []byte("cached"), rec.Output)

	t.Run("changed dep forces rebuild", func(t *testing.T) {
		stale := []Dep{{Kind: "content", Source: "posts", ID: "hello", Hash: "stale"}}
		require.NoError(t, s.Save("b1", &PageRecord{
			FilePath:    "index.html",
			URL:         "/",
			Fingerprint: Fingerprint("stamp", stale),
			Deps:        stale,
			Output:      []byte("cached"),
		}))
		rebuild, _ := c.ShouldRebuild("index.html")
		assert.True(t, rebuild)
	})
}
