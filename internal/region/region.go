// Package region supplies the static filter option data: the province to soum
// index and the vegetation index and year option lists. Pure data, loaded once
// and read-only afterwards.
package region

import (
	_ "embed"

	"github.com/ta346/greenzone-web/internal/jsonutil"
)

//go:embed provinces.json
var provincesAsset []byte

// entry mirrors one element of the embedded asset. A slice (not a map) so the
// province order of the asset is preserved.
type entry struct {
	Province string   `json:"province"`
	Soums    []string `json:"soums"`
}

// Index is the read-only province to soum mapping.
type Index struct {
	order []string
	soums map[string][]string
}

// Load parses the embedded province asset into an Index.
func Load() (*Index, error) {
	entries, err := jsonutil.UnmarshalArray[entry](provincesAsset, "region asset")
	if err != nil {
		return nil, err
	}
	idx := &Index{
		order: make([]string, 0, len(entries)),
		soums: make(map[string][]string, len(entries)),
	}
	for _, e := range entries {
		idx.order = append(idx.order, e.Province)
		idx.soums[e.Province] = e.Soums
	}
	return idx, nil
}

// MustLoad is Load for composition roots where a broken embedded asset is a
// programming error.
func MustLoad() *Index {
	idx, err := Load()
	if err != nil {
		panic(err)
	}
	return idx
}

// Provinces returns province names in asset order.
func (i *Index) Provinces() []string {
	out := make([]string, len(i.order))
	copy(out, i.order)
	return out
}

// Soums returns the ordered soum list for a province, nil for an unknown one.
func (i *Index) Soums(province string) []string {
	soums, ok := i.soums[province]
	if !ok {
		return nil
	}
	out := make([]string, len(soums))
	copy(out, soums)
	return out
}

// Has reports whether soum belongs to province.
func (i *Index) Has(province, soum string) bool {
	for _, s := range i.soums[province] {
		if s == soum {
			return true
		}
	}
	return false
}

// VegetationIndices returns the selectable index names. "SAVI" is kept as the
// display name even though the stored series is msavi.
func VegetationIndices() []string {
	return []string{"NDVI", "EVI", "SAVI"}
}

// Years returns the selectable years, matching the composite window of the
// source archive.
func Years() []string {
	return []string{"2017", "2018", "2019", "2020", "2021", "2022", "2023"}
}
