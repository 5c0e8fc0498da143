// Package filter owns the dashboard's selection state machine: which
// province, soum, vegetation index and year are chosen, the grazing-only
// flag, and the sidebar UI flags. All transitions are synchronous and happen
// on user interaction; the panel never performs I/O itself.
package filter

// RegionIndex abstracts the province to soum mapping the panel derives soum
// options from.
type RegionIndex interface {
	Provinces() []string
	Soums(province string) []string
}

// ActiveAction marks which of the two action buttons is visually active.
// At most one is active at a time.
type ActiveAction int

const (
	ActionNone ActiveAction = iota
	ActionLayer
	ActionGraph
)

func (a ActiveAction) String() string {
	switch a {
	case ActionLayer:
		return "layer"
	case ActionGraph:
		return "graph"
	default:
		return "none"
	}
}

// Selection is the current filter choice. Invariant: Soum belongs to
// RegionIndex[Province] whenever that province has any soums.
type Selection struct {
	Province        string
	Soum            string
	VegetationIndex string
	Year            string
	GrazingOnly     bool
}

// UIState holds the presentational flags of the sidebar.
type UIState struct {
	Expanded     bool
	ActiveAction ActiveAction
}

// QueryPayload is the wire snapshot of a Selection, shaped for the anomaly
// endpoint's request body.
type QueryPayload struct {
	SelectedProvince        string `json:"selectedProvince"`
	SelectedSoum            string `json:"selectedSoum"`
	SelectedVegetationIndex string `json:"selectedVegetationIndex"`
	SelectedYear            string `json:"selectedYear"`
	GrazingOnly             bool   `json:"grazingOnly"`
}

// Panel is the filter sidebar's state: Selection ⊗ UIState. Transitions are
// plain methods; there is no hidden state beyond these two values.
type Panel struct {
	regions RegionIndex
	sel     Selection
	ui      UIState
}

// NewPanel builds a panel with the documented defaults: first province, its
// first soum, first vegetation index, first year, grazing-only off, sidebar
// expanded, no active action.
func NewPanel(regions RegionIndex, indices, years []string) *Panel {
	p := &Panel{
		regions: regions,
		ui:      UIState{Expanded: true, ActiveAction: ActionNone},
	}
	if provinces := regions.Provinces(); len(provinces) > 0 {
		p.sel.Province = provinces[0]
		if soums := regions.Soums(p.sel.Province); len(soums) > 0 {
			p.sel.Soum = soums[0]
		}
	}
	if len(indices) > 0 {
		p.sel.VegetationIndex = indices[0]
	}
	if len(years) > 0 {
		p.sel.Year = years[0]
	}
	return p
}

// Selection returns the current selection snapshot.
func (p *Panel) Selection() Selection {
	return p.sel
}

// UI returns the current UI flags.
func (p *Panel) UI() UIState {
	return p.ui
}

// SoumOptions returns the soum list derived from the chosen province.
func (p *Panel) SoumOptions() []string {
	return p.regions.Soums(p.sel.Province)
}

// ToggleExpand flips the sidebar's expanded flag. Selection and any
// outstanding query are untouched.
func (p *Panel) ToggleExpand() {
	p.ui.Expanded = !p.ui.Expanded
}

// ChooseProvince sets the province and resets the soum to the first entry of
// the new province's list, keeping the membership invariant. A province with
// no soums leaves the soum empty.
func (p *Panel) ChooseProvince(province string) {
	p.sel.Province = province
	soums := p.regions.Soums(province)
	if len(soums) > 0 {
		p.sel.Soum = soums[0]
	} else {
		p.sel.Soum = ""
	}
}

// ChooseSoum sets the soum verbatim.
func (p *Panel) ChooseSoum(soum string) {
	p.sel.Soum = soum
}

// ChooseIndex sets the vegetation index verbatim.
func (p *Panel) ChooseIndex(index string) {
	p.sel.VegetationIndex = index
}

// ChooseYear sets the year verbatim.
func (p *Panel) ChooseYear(year string) {
	p.sel.Year = year
}

// ToggleGrazingOnly flips the grazing-only flag.
func (p *Panel) ToggleGrazingOnly() {
	p.sel.GrazingOnly = !p.sel.GrazingOnly
}

// ApplyLayer marks the layer action active and returns the query snapshot for
// dispatch. The selection itself is not mutated.
func (p *Panel) ApplyLayer() QueryPayload {
	p.ui.ActiveAction = ActionLayer
	return p.Query()
}

// ViewGraph marks the graph action active. A time-series fetch is a reserved
// extension point; no query is issued today.
func (p *Panel) ViewGraph() {
	p.ui.ActiveAction = ActionGraph
}

// Query snapshots the current selection without touching UI state.
func (p *Panel) Query() QueryPayload {
	return QueryPayload{
		SelectedProvince:        p.sel.Province,
		SelectedSoum:            p.sel.Soum,
		SelectedVegetationIndex: p.sel.VegetationIndex,
		SelectedYear:            p.sel.Year,
		GrazingOnly:             p.sel.GrazingOnly,
	}
}
