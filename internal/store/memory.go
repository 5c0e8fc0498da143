// Package store provides the sample repositories behind the anomaly service:
// an in-memory store for datasets shipped as JSON lines (or generated
// synthetically for local runs) and a Postgres-backed one.
package store

import (
	"bufio"
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"os"

	"github.com/ta346/greenzone-web/internal/anomaly"
	"github.com/ta346/greenzone-web/internal/jsonutil"
	"github.com/ta346/greenzone-web/internal/region"
)

// Row mirrors one dataset line.
type Row struct {
	Province string  `json:"province"`
	Soum     string  `json:"soum"`
	Series   string  `json:"series"`
	Year     int     `json:"year"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	Value    float64 `json:"value"`
	Pasture  bool    `json:"pasture"`
}

type regionKey struct {
	province, soum, series string
}

// Memory keeps all samples in process. Read-only after loading.
type Memory struct {
	samples map[regionKey][]anomaly.Sample
}

// NewMemory builds an empty store.
func NewMemory() *Memory {
	return &Memory{samples: make(map[regionKey][]anomaly.Sample)}
}

// Add inserts one row.
func (m *Memory) Add(r Row) {
	k := regionKey{province: r.Province, soum: r.Soum, series: r.Series}
	m.samples[k] = append(m.samples[k], anomaly.Sample{
		Lon:     r.Lon,
		Lat:     r.Lat,
		Year:    r.Year,
		Value:   r.Value,
		Pasture: r.Pasture,
	})
}

// LoadDataset reads a JSON-lines dataset file. Invalid lines are skipped;
// the number of loaded rows is returned.
func (m *Memory) LoadDataset(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	loaded := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var row Row
		if !jsonutil.UnmarshalLineSafe(scanner.Text(), &row) {
			continue
		}
		m.Add(row)
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return loaded, fmt.Errorf("read dataset: %w", err)
	}
	return loaded, nil
}

// Samples implements anomaly.SampleStore.
func (m *Memory) Samples(_ context.Context, province, soum, series string) ([]anomaly.Sample, error) {
	return m.samples[regionKey{province: province, soum: soum, series: series}], nil
}

// Synthetic years match the archive window of the real datasets.
const (
	syntheticFirstYear = 2017
	syntheticLastYear  = 2023
)

// NewSynthetic builds a deterministic in-memory dataset covering every
// region in the index, for running the server without real exports. The same
// region always yields the same grid and values.
func NewSynthetic(regions *region.Index) *Memory {
	m := NewMemory()
	for _, province := range regions.Provinces() {
		for _, soum := range regions.Soums(province) {
			for _, series := range []string{"ndvi", "evi", "msavi"} {
				seedSyntheticRegion(m, province, soum, series)
			}
		}
	}
	return m
}

func seedSyntheticRegion(m *Memory, province, soum, series string) {
	h := fnv.New64a()
	h.Write([]byte(province + "/" + soum + "/" + series))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	// Region center somewhere over Mongolia.
	centerLon := 90.0 + rng.Float64()*27.0
	centerLat := 43.0 + rng.Float64()*7.0

	const gridW, gridH = 8, 6
	for gy := 0; gy < gridH; gy++ {
		for gx := 0; gx < gridW; gx++ {
			lon := centerLon + float64(gx)*0.01
			lat := centerLat + float64(gy)*0.01
			pasture := rng.Float64() < 0.7
			base := 0.25 + rng.Float64()*0.35
			for year := syntheticFirstYear; year <= syntheticLastYear; year++ {
				season := 0.05 * math.Sin(float64(year-syntheticFirstYear))
				noise := (rng.Float64() - 0.5) * 0.1
				m.Add(Row{
					Province: province,
					Soum:     soum,
					Series:   series,
					Year:     year,
					Lon:      lon,
					Lat:      lat,
					Value:    base + season + noise,
					Pasture:  pasture,
				})
			}
		}
	}
}
