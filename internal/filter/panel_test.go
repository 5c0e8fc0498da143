package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubRegions struct {
	order []string
	soums map[string][]string
}

func (s stubRegions) Provinces() []string     { return s.order }
func (s stubRegions) Soums(p string) []string { return s.soums[p] }

func testRegions() stubRegions {
	return stubRegions{
		order: []string{"P1", "P2", "P3"},
		soums: map[string][]string{
			"P1": {"S1", "S2"},
			"P2": {"T1", "T2", "T3"},
			"P3": {},
		},
	}
}

func newTestPanel() *Panel {
	return NewPanel(testRegions(), []string{"NDVI", "EVI", "SAVI"}, []string{"2023", "2022"})
}

func TestPanelDefaults(t *testing.T) {
	p := newTestPanel()

	require.Equal(t, Selection{
		Province:        "P1",
		Soum:            "S1",
		VegetationIndex: "NDVI",
		Year:            "2023",
		GrazingOnly:     false,
	}, p.Selection())
	require.Equal(t, UIState{Expanded: true, ActiveAction: ActionNone}, p.UI())
}

func TestChooseProvinceResetsSoumToFirst(t *testing.T) {
	regions := testRegions()
	p := NewPanel(regions, []string{"NDVI"}, []string{"2023"})

	for _, province := range regions.Provinces() {
		p.ChooseProvince(province)
		sel := p.Selection()
		require.Equal(t, province, sel.Province)
		soums := regions.Soums(province)
		if len(soums) == 0 {
			require.Empty(t, sel.Soum, "province without soums must leave soum unset")
		} else {
			require.Equal(t, soums[0], sel.Soum)
		}
	}
}

func TestChooseProvinceAfterExplicitSoum(t *testing.T) {
	p := newTestPanel()
	p.ChooseSoum("S2")
	require.Equal(t, "S2", p.Selection().Soum)

	// Switching provinces discards the explicit soum choice.
	p.ChooseProvince("P2")
	require.Equal(t, "T1", p.Selection().Soum)
}

func TestToggleExpandIdempotentUnderDoubleApplication(t *testing.T) {
	p := newTestPanel()
	before := p.Selection()

	p.ToggleExpand()
	require.False(t, p.UI().Expanded)
	p.ToggleExpand()
	require.True(t, p.UI().Expanded)
	require.Equal(t, before, p.Selection(), "ToggleExpand must not mutate the selection")
}

func TestApplyLayerAndViewGraphMutuallyExclusive(t *testing.T) {
	p := newTestPanel()

	p.ApplyLayer()
	require.Equal(t, ActionLayer, p.UI().ActiveAction)

	p.ViewGraph()
	require.Equal(t, ActionGraph, p.UI().ActiveAction)

	p.ApplyLayer()
	require.Equal(t, ActionLayer, p.UI().ActiveAction)
}

func TestApplyLayerSnapshotsSelection(t *testing.T) {
	p := newTestPanel()
	p.ChooseProvince("P1")
	p.ChooseSoum("S1")
	p.ChooseIndex("NDVI")
	p.ChooseYear("2023")
	p.ToggleGrazingOnly()

	query := p.ApplyLayer()
	require.Equal(t, QueryPayload{
		SelectedProvince:        "P1",
		SelectedSoum:            "S1",
		SelectedVegetationIndex: "NDVI",
		SelectedYear:            "2023",
		GrazingOnly:             true,
	}, query)

	// Applying must not itself change the selection.
	require.Equal(t, "P1", p.Selection().Province)
	require.True(t, p.Selection().GrazingOnly)
}

func TestQueryPayloadWireNames(t *testing.T) {
	body, err := json.Marshal(QueryPayload{
		SelectedProvince:        "P1",
		SelectedSoum:            "S1",
		SelectedVegetationIndex: "NDVI",
		SelectedYear:            "2023",
		GrazingOnly:             true,
	})
	require.NoError(t, err)
	require.JSONEq(t, `{
		"selectedProvince": "P1",
		"selectedSoum": "S1",
		"selectedVegetationIndex": "NDVI",
		"selectedYear": "2023",
		"grazingOnly": true
	}`, string(body))
}

func TestToggleGrazingOnly(t *testing.T) {
	p := newTestPanel()
	require.False(t, p.Selection().GrazingOnly)
	p.ToggleGrazingOnly()
	require.True(t, p.Selection().GrazingOnly)
	p.ToggleGrazingOnly()
	require.False(t, p.Selection().GrazingOnly)
}

func TestPanelWithEmptyOptionLists(t *testing.T) {
	p := NewPanel(stubRegions{}, nil, nil)
	sel := p.Selection()
	require.Empty(t, sel.Province)
	require.Empty(t, sel.Soum)
	require.Empty(t, sel.VegetationIndex)
	require.Empty(t, sel.Year)
}
