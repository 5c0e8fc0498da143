package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ta346/greenzone-web/internal/geo"
)

// GraphView summarizes the applied layer as a z-score distribution. It reads
// whatever payload the map currently shows; it never issues its own query.
type GraphView struct {
	payload *geo.FeatureCollection
}

// Ensure GraphView implements View.
var _ View = (*GraphView)(nil)

// NewGraphView builds a graph over the currently applied payload (may be nil).
func NewGraphView(payload *geo.FeatureCollection) *GraphView {
	return &GraphView{payload: payload}
}

// Init implements View.
func (g *GraphView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (g *GraphView) Update(msg tea.Msg) (View, tea.Cmd) {
	return g, nil
}

// View implements View.
func (g *GraphView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render("Anomaly distribution"))
	b.WriteString("\n\n")
	if g.payload == nil || len(g.payload.Features) == 0 {
		b.WriteString(Styles.Empty.Render("no layer applied yet"))
		b.WriteString("\n\n")
		b.WriteString(Styles.Hint.Render("esc close"))
		return Styles.Box.Render(b.String())
	}

	labels := []string{"z ≤ -1.5", "-1.5 .. -0.5", "-0.5 .. 0.5", "0.5 .. 1.5", "z ≥ 1.5"}
	samples := []float64{-2, -1, 0, 1, 2}
	counts := g.bucketCounts()
	max := 1
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	for i, label := range labels {
		bar := strings.Repeat("█", counts[i]*30/max)
		b.WriteString(fmt.Sprintf("%-13s %s %d\n",
			Styles.Normal.Render(label),
			anomalyStyle(samples[i]).Render(bar),
			counts[i]))
	}
	b.WriteString("\n")
	b.WriteString(Styles.Hint.Render("esc close"))
	return Styles.Box.Render(b.String())
}

func (g *GraphView) bucketCounts() [5]int {
	var counts [5]int
	for _, f := range g.payload.Features {
		z, ok := f.ZScore()
		if !ok {
			continue
		}
		switch {
		case z <= -1.5:
			counts[0]++
		case z <= -0.5:
			counts[1]++
		case z < 0.5:
			counts[2]++
		case z < 1.5:
			counts[3]++
		default:
			counts[4]++
		}
	}
	return counts
}
