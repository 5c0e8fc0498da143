package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ta346/greenzone-web/internal/region"
)

func TestMemoryAddAndLookup(t *testing.T) {
	m := NewMemory()
	m.Add(Row{Province: "Tuv", Soum: "Zuunmod", Series: "ndvi", Year: 2020, Lon: 106.9, Lat: 47.7, Value: 0.42, Pasture: true})

	samples, err := m.Samples(context.Background(), "Tuv", "Zuunmod", "ndvi")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	require.Equal(t, 2020, samples[0].Year)
	require.Equal(t, 0.42, samples[0].Value)

	// Different series, no data.
	samples, err = m.Samples(context.Background(), "Tuv", "Zuunmod", "evi")
	require.NoError(t, err)
	require.Empty(t, samples)
}

func TestLoadDatasetSkipsInvalidLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	content := `{"province":"Tuv","soum":"Zuunmod","series":"ndvi","year":2019,"lon":106.9,"lat":47.7,"value":0.4,"pasture":true}
not json at all
{"province":"Tuv","soum":"Zuunmod","series":"ndvi","year":2020,"lon":106.9,"lat":47.7,"value":0.5,"pasture":true}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m := NewMemory()
	loaded, err := m.LoadDataset(path)
	require.NoError(t, err)
	require.Equal(t, 2, loaded)

	samples, err := m.Samples(context.Background(), "Tuv", "Zuunmod", "ndvi")
	require.NoError(t, err)
	require.Len(t, samples, 2)
}

func TestLoadDatasetMissingFile(t *testing.T) {
	m := NewMemory()
	_, err := m.LoadDataset(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
}

func TestSyntheticIsDeterministicAndComplete(t *testing.T) {
	regions := region.MustLoad()
	a := NewSynthetic(regions)
	b := NewSynthetic(regions)

	province := regions.Provinces()[0]
	soum := regions.Soums(province)[0]

	sa, err := a.Samples(context.Background(), province, soum, "ndvi")
	require.NoError(t, err)
	sb, err := b.Samples(context.Background(), province, soum, "ndvi")
	require.NoError(t, err)
	require.NotEmpty(t, sa)
	require.Equal(t, sa, sb, "synthetic dataset must be deterministic")

	// Every region has data for every series.
	for _, series := range []string{"ndvi", "evi", "msavi"} {
		s, err := a.Samples(context.Background(), province, soum, series)
		require.NoError(t, err)
		require.NotEmpty(t, s, "series %s", series)
	}

	// Every cell covers the full year window.
	years := map[int]bool{}
	for _, s := range sa {
		years[s.Year] = true
	}
	for y := syntheticFirstYear; y <= syntheticLastYear; y++ {
		require.True(t, years[y], "year %d missing", y)
	}
}
