package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticMaps map[string]string

func (m staticMaps) Slug(name string) (string, bool) {
	s, ok := m[name]
	return s, ok
}

// fakeGeocoder はコールバックで応答を決める
type fakeGeocoder struct {
	calls atomic.Int32
	fn    func(lat, lng float64) (*Address, error)
}

func (f *fakeGeocoder) ReverseLookup(ctx context.Context, lat, lng float64) (*Address, error) {
	f.calls.Add(1)
	return f.fn(lat, lng)
}

func catalogServer(t *testing.T, hits *atomic.Int32, bodies map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		slug := strings.TrimPrefix(r.URL.Path, "/")
		body, ok := bodies[slug]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCatalogFetchesOnce(t *testing.T) {
	var hits atomic.Int32
	srv := catalogServer(t, &hits, map[string]string{
		"world": `{"ready":true,"locations":[{"lat":1,"lng":2},{"lat":3,"lng":4,"heading":90}]}`,
	})
	c := NewCatalog(srv.URL+"/", staticMaps{"World": "world"}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locs, err := c.Locations(context.Background(), "World")
			assert.NoError(t, err)
			assert.Len(t, locs, 2)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 2, c.Cached("World"))

	locs, err := c.Locations(context.Background(), "World")
	require.NoError(t, err)
	require.NotNil(t, locs[1].Heading)
	assert.Equal(t, 90.0, *locs[1].Heading)
}

func TestCatalogCancelledCallerDoesNotFailOthers(t *testing.T) {
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		fmt.Fprint(w, `{"ready":true,"locations":[{"lat":1,"lng":2}]}`)
	}))
	t.Cleanup(srv.Close)
	c := NewCatalog(srv.URL+"/", staticMaps{"World": "world"}, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Locations(ctxA, "World")
		errA <- err
	}()
	<-arrived

	type result struct {
		locs []Location
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		locs, err := c.Locations(context.Background(), "World")
		resB <- result{locs, err}
	}()

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(release)
	select {
	case r := <-resB:
		require.NoError(t, r.err)
		assert.Len(t, r.locs, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, 1, c.Cached("World"))
}

func TestCatalogErrors(t *testing.T) {
	var hits atomic.Int32
	srv := catalogServer(t, &hits, map[string]string{
		"empty":   `{"ready":true,"locations":[]}`,
		"pending": `{"ready":false,"locations":[{"lat":1,"lng":1}]}`,
	})
	c := NewCatalog(srv.URL+"/", staticMaps{"Empty": "empty", "Pending": "pending", "Gone": "gone"}, nil)
	ctx := context.Background()

	_, err := c.Locations(ctx, "Nowhere")
	var unknown *UnknownMapError
	assert.ErrorAs(t, err, &unknown)

	for _, name := range []string{"Empty", "Pending", "Gone"} {
		_, err := c.Locations(ctx, name)
		var notReady *MapNotReadyError
		assert.ErrorAs(t, err, &notReady, name)
		assert.True(t, IsUserError(err))
	}
	assert.Equal(t, 0, c.Cached("Empty"))
}

func TestCatalogDeleteAt(t *testing.T) {
	var hits atomic.Int32
	srv := catalogServer(t, &hits, map[string]string{
		"m": `{"ready":true,"locations":[{"lat":1,"lng":1},{"lat":2,"lng":2},{"lat":3,"lng":3}]}`,
	})
	c := NewCatalog(srv.URL+"/", staticMaps{"M": "m"}, nil)
	locs, err := c.Locations(context.Background(), "M")
	require.NoError(t, err)

	assert.False(t, c.DeleteAt("M", 10, Location{Lat: 9, Lng: 9}))
	assert.False(t, c.DeleteAt("M", -1, Location{Lat: 9, Lng: 9}))
	assert.Equal(t, 3, c.Cached("M"))

	// 古いインデックスでも値で探して消す
	require.True(t, c.DeleteAt("M", 0, locs[0]))
	require.True(t, c.DeleteAt("M", 2, locs[2]))
	assert.False(t, c.DeleteAt("M", 0, locs[0]))

	rest, err := c.Locations(context.Background(), "M")
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.True(t, rest[0].Same(locs[1]))

	// スナップショットは後の削除の影響を受けない
	assert.Len(t, locs, 3)
}

func TestNominatimReverseLookup(t *testing.T) {
	var got url.Values
	var ua, lang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		ua = r.Header.Get("User-Agent")
		lang = r.Header.Get("Accept-Language")
		fmt.Fprint(w, `{"address":{"country":"France","county":"Finistère","state":"Brittany"}}`)
	}))
	defer srv.Close()

	n := NewNominatim(srv.URL, nil)
	addr, err := n.ReverseLookup(context.Background(), 48.1, -4.2)
	require.NoError(t, err)

	assert.Equal(t, "France", addr.Country)
	assert.Equal(t, "Brittany", addr.Subdivision)
	assert.Equal(t, "5", got.Get("zoom"))
	assert.Equal(t, "1", got.Get("addressdetails"))
	assert.Equal(t, "48.1", got.Get("lat"))
	assert.Equal(t, "-4.2", got.Get("lon"))
	assert.Equal(t, "GeoBot/1.0", ua)
	assert.Equal(t, "en", lang)
}

func TestNominatimNoSubdivision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"address":{}}`)
	}))
	defer srv.Close()

	addr, err := NewNominatim(srv.URL, nil).ReverseLookup(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, addr.Country)
	assert.Equal(t, "Unknown subdivision", addr.Subdivision)
}

func TestResolverTerritoryRewrite(t *testing.T) {
	g := &fakeGeocoder{fn: func(lat, lng float64) (*Address, error) {
		if lat > 10 {
			return &Address{Country: "United States", Subdivision: "Guam"}, nil
		}
		return &Address{Country: "United States", Subdivision: "California"}, nil
	}}
	r := NewResolver(g, nil)
	ctx := context.Background()

	guam, err := r.ResolveCountry(ctx, 13.4, 144.7)
	require.NoError(t, err)
	assert.Equal(t, "guam", guam.Country)

	ca, err := r.ResolveCountry(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "united states", ca.Country)
	assert.Equal(t, "California", ca.Subdivision)
}

func TestResolverCachesAndIsIdempotent(t *testing.T) {
	g := &fakeGeocoder{fn: func(lat, lng float64) (*Address, error) {
		return &Address{Country: "Japan", Subdivision: "Tokyo"}, nil
	}}
	r := NewResolver(g, nil)
	ctx := context.Background()

	first, err := r.ResolveCountry(ctx, 35.6895001, 139.6917)
	require.NoError(t, err)
	second, err := r.ResolveCountry(ctx, 35.6895004, 139.6917)
	require.NoError(t, err)

	assert.Equal(t, int32(1), g.calls.Load())
	assert.Same(t, first, second)
	assert.Equal(t, "japan", second.Country)
	assert.Equal(t, 1, r.CacheSize())
}

func TestResolverNoCountryNotCached(t *testing.T) {
	g := &fakeGeocoder{fn: func(lat, lng float64) (*Address, error) {
		return &Address{Subdivision: "Unknown subdivision"}, nil
	}}
	r := NewResolver(g, nil)

	info, err := r.ResolveCountry(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.False(t, r.Cached(context.Background(), 0, 0))
}

func TestResolverTransportFailureIsPartial(t *testing.T) {
	g := &fakeGeocoder{fn: func(lat, lng float64) (*Address, error) {
		return nil, errors.New("connection reset")
	}}
	r := NewResolver(g, nil)

	info, err := r.ResolveCountry(context.Background(), 5, 5)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.True(t, info.Partial)
	assert.Empty(t, info.Country)
	assert.Equal(t, 0, r.CacheSize())
}

func TestPreloadEvictsUnresolvable(t *testing.T) {
	var hits atomic.Int32
	srv := catalogServer(t, &hits, map[string]string{
		"a": `{"ready":true,"locations":[{"lat":1,"lng":1},{"lat":0,"lng":0},{"lat":2,"lng":2},{"lat":0,"lng":0.5}]}`,
	})
	c := NewCatalog(srv.URL+"/", staticMaps{"A": "a", "B": "missing"}, nil)
	g := &fakeGeocoder{fn: func(lat, lng float64) (*Address, error) {
		if lat == 0 {
			return &Address{}, nil
		}
		return &Address{Country: "Kenya"}, nil
	}}
	r := NewResolver(g, nil)

	stats, err := Preload(context.Background(), c, r, []string{"A", "B"})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 4, stats[0].Total)
	assert.Equal(t, 2, stats[0].Resolved)
	assert.Equal(t, 2, stats[0].Evicted)
	assert.Equal(t, 2, c.Cached("A"))
	assert.Equal(t, 2, r.CacheSize())
}

func TestNormalizeCountry(t *testing.T) {
	cases := map[string]string{
		"USA":                      "united states",
		"  Deutschland ":           "germany",
		"holland":                  "netherlands",
		"Czech Republic":           "czechia",
		"Republic of South Africa": "south africa",
		"korea":                    "south korea",
	}
	for in, want := range cases {
		got, ok := NormalizeCountry(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := NormalizeCountry("")
	assert.False(t, ok)
	_, ok = NormalizeCountry("atlantis")
	assert.False(t, ok)
}

func TestNormalizeCountryPrefersLongestKey(t *testing.T) {
	// 長い名前の中に含まれるキーを拾う
	got, ok := NormalizeCountry("federal republic of nigeria")
	require.True(t, ok)
	assert.Equal(t, "nigeria", got)
}

func TestCheckGuess(t *testing.T) {
	assert.True(t, CheckGuess("France", "france"))
	assert.True(t, CheckGuess("uk", "united kingdom"))
	assert.True(t, CheckGuess("Britain", "united kingdom"))
	assert.True(t, CheckGuess("usvi", "us virgin islands"))
	assert.False(t, CheckGuess("spain", "portugal"))
	assert.False(t, CheckGuess("", "france"))
	assert.False(t, CheckGuess("france", ""))

	// 似た名前の別の国を取り違えない
	assert.True(t, CheckGuess("dominica", "Dominica"))
	assert.False(t, CheckGuess("dr", "Dominica"))
	assert.False(t, CheckGuess("dominican republic", "Dominica"))
	assert.True(t, CheckGuess("dr", "Dominican Republic"))
	assert.False(t, CheckGuess("nigeria", "Niger"))
	assert.False(t, CheckGuess("niger", "Nigeria"))
}

func TestNormalizeCountryWholeWords(t *testing.T) {
	key, ok := NormalizeCountry("Commonwealth of Dominica")
	require.True(t, ok)
	assert.Equal(t, "dominica", key)

	key, ok = NormalizeCountry("Republic of the Niger")
	require.True(t, ok)
	assert.Equal(t, "niger", key)

	key, ok = NormalizeCountry("Federal Republic of Nigeria")
	require.True(t, ok)
	assert.Equal(t, "nigeria", key)

	// 単語の途中には一致しない
	_, ok = NormalizeCountry("Nigerien")
	assert.False(t, ok)
}

func TestFlag(t *testing.T) {
	c, ok := LookupCountry("japan")
	require.True(t, ok)
	assert.Equal(t, "🇯🇵", c.Flag())
	assert.Empty(t, Country{Code: "X"}.Flag())
}

func TestEmbedURL(t *testing.T) {
	heading := 120.5
	u, err := url.Parse(EmbedURL(Location{Lat: 48.85, Lng: 2.35, Heading: &heading}))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "www.worldguessr.com", u.Host)
	assert.Equal(t, "/svEmbed", u.Path)
	assert.Equal(t, "true", q.Get("nm"))
	assert.Equal(t, "false", q.Get("npz"))
	assert.Equal(t, "false", q.Get("showRoadLabels"))
	assert.Equal(t, "false", q.Get("showAnswer"))
	assert.Equal(t, "48.85", q.Get("lat"))
	assert.Equal(t, "2.35", q.Get("long"))
	assert.Equal(t, "120.5", q.Get("heading"))
	assert.False(t, q.Has("pitch"))
	assert.False(t, q.Has("zoom"))
}

func TestCoordKey(t *testing.T) {
	assert.Equal(t, "1.000000,-2.123457", CoordKey(1, -2.1234567))
}
