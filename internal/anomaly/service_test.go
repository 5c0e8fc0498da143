package anomaly

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ta346/greenzone-web/internal/geo"
)

type stubStore struct {
	samples []Sample
	err     error
	series  string
}

func (s *stubStore) Samples(_ context.Context, _, _, series string) ([]Sample, error) {
	s.series = series
	return s.samples, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// cellSeries builds one cell's yearly series.
func cellSeries(lon, lat float64, pasture bool, values map[int]float64) []Sample {
	out := make([]Sample, 0, len(values))
	for year, v := range values {
		out = append(out, Sample{Lon: lon, Lat: lat, Year: year, Value: v, Pasture: pasture})
	}
	return out
}

func TestMapDataComputesZScore(t *testing.T) {
	// One cell, values 2017..2021 = 0.2, 0.4, 0.6, 0.4, 0.4 (mean 0.4).
	store := &stubStore{samples: cellSeries(103, 47, true, map[int]float64{
		2017: 0.2, 2018: 0.4, 2019: 0.6, 2020: 0.4, 2021: 0.4,
	})}
	svc := NewService(store, nil, Config{}, discardLogger())

	fc, err := svc.MapData(context.Background(), Query{
		Province: "Tuv", Soum: "Zuunmod", Index: "NDVI", Year: "2019",
	})
	require.NoError(t, err)
	require.Equal(t, "ndvi", store.series)
	require.Len(t, fc.Features, 1)

	z, ok := fc.Features[0].ZScore()
	require.True(t, ok)
	// mean 0.4, population stddev of [0.2 0.4 0.6 0.4 0.4] = sqrt(0.016).
	want := (0.6 - 0.4) / math.Sqrt(0.016)
	require.InDelta(t, want, z, 1e-9)
}

func TestMapDataSAVISelectsMsaviSeries(t *testing.T) {
	store := &stubStore{samples: cellSeries(103, 47, true, map[int]float64{2017: 0.1, 2018: 0.2, 2019: 0.3})}
	svc := NewService(store, nil, Config{}, discardLogger())

	_, err := svc.MapData(context.Background(), Query{Province: "P", Soum: "S", Index: "SAVI", Year: "2018"})
	require.NoError(t, err)
	require.Equal(t, "msavi", store.series)
}

func TestMapDataGrazingOnlyMasksNonPasture(t *testing.T) {
	samples := append(
		cellSeries(103, 47, true, map[int]float64{2017: 0.2, 2018: 0.3, 2019: 0.4}),
		cellSeries(104, 47, false, map[int]float64{2017: 0.2, 2018: 0.3, 2019: 0.4})...,
	)
	store := &stubStore{samples: samples}
	svc := NewService(store, nil, Config{}, discardLogger())

	fc, err := svc.MapData(context.Background(), Query{Province: "P", Soum: "S", Index: "NDVI", Year: "2018", GrazingOnly: true})
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	lon, _, ok := fc.Features[0].Point()
	require.True(t, ok)
	require.Equal(t, 103.0, lon)

	fc, err = svc.MapData(context.Background(), Query{Province: "P", Soum: "S", Index: "NDVI", Year: "2018"})
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
}

func TestMapDataSkipsFlatAndIncompleteCells(t *testing.T) {
	samples := append(
		// flat series: stddev 0
		cellSeries(103, 47, true, map[int]float64{2017: 0.5, 2018: 0.5, 2019: 0.5}),
		// missing selected year
		cellSeries(104, 47, true, map[int]float64{2017: 0.2, 2019: 0.4})...,
	)
	store := &stubStore{samples: samples}
	svc := NewService(store, nil, Config{}, discardLogger())

	fc, err := svc.MapData(context.Background(), Query{Province: "P", Soum: "S", Index: "NDVI", Year: "2018"})
	require.NoError(t, err)
	require.Empty(t, fc.Features)
}

func TestMapDataValidation(t *testing.T) {
	store := &stubStore{samples: cellSeries(103, 47, true, map[int]float64{2017: 0.1, 2018: 0.2})}
	svc := NewService(store, nil, Config{}, discardLogger())

	_, err := svc.MapData(context.Background(), Query{Province: "P", Soum: "S", Index: "NDWI", Year: "2018"})
	require.Error(t, err)

	_, err = svc.MapData(context.Background(), Query{Province: "P", Soum: "S", Index: "NDVI", Year: "not-a-year"})
	require.Error(t, err)
}

func TestMapDataUnknownRegion(t *testing.T) {
	svc := NewService(&stubStore{}, nil, Config{}, discardLogger())
	_, err := svc.MapData(context.Background(), Query{Province: "Atlantis", Soum: "Nowhere", Index: "NDVI", Year: "2020"})
	require.Error(t, err)
}

type recordingCache struct {
	data map[string]*geo.FeatureCollection
	sets int
	gets int
}

func (c *recordingCache) Get(_ context.Context, key string) (*geo.FeatureCollection, bool, error) {
	c.gets++
	fc, ok := c.data[key]
	return fc, ok, nil
}

func (c *recordingCache) Set(_ context.Context, key string, fc *geo.FeatureCollection, _ time.Duration) error {
	c.sets++
	c.data[key] = fc
	return nil
}

func TestMapDataUsesCache(t *testing.T) {
	store := &stubStore{samples: cellSeries(103, 47, true, map[int]float64{2017: 0.2, 2018: 0.3, 2019: 0.4})}
	cache := &recordingCache{data: map[string]*geo.FeatureCollection{}}
	svc := NewService(store, cache, Config{CacheTTL: time.Minute}, discardLogger())

	q := Query{Province: "P", Soum: "S", Index: "NDVI", Year: "2018"}
	first, err := svc.MapData(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	second, err := svc.MapData(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets, "cache hit must not recompute")
	require.Equal(t, first, second)

	// A different year is a different cache key.
	_, err = svc.MapData(context.Background(), Query{Province: "P", Soum: "S", Index: "NDVI", Year: "2019"})
	require.NoError(t, err)
	require.Equal(t, 2, cache.sets)
}

func TestZScoresFeatureOrderDeterministic(t *testing.T) {
	samples := append(
		cellSeries(104, 48, true, map[int]float64{2017: 0.1, 2018: 0.2, 2019: 0.5}),
		append(
			cellSeries(103, 47, true, map[int]float64{2017: 0.1, 2018: 0.2, 2019: 0.5}),
			cellSeries(104, 47, true, map[int]float64{2017: 0.1, 2018: 0.2, 2019: 0.5})...,
		)...,
	)
	fc := zScores(samples, 2019, false)
	require.Len(t, fc.Features, 3)
	var got [][2]float64
	for _, f := range fc.Features {
		lon, lat, ok := f.Point()
		require.True(t, ok)
		got = append(got, [2]float64{lon, lat})
	}
	require.Equal(t, [][2]float64{{103, 47}, {104, 47}, {104, 48}}, got)
}
