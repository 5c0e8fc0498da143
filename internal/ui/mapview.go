package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ta346/greenzone-web/internal/filter"
	"github.com/ta346/greenzone-web/internal/geo"
)

// MapView renders the anomaly point layer on a braille canvas. The canvas is
// rebuilt from scratch whenever a new payload is applied; the generation
// counter makes that remount observable to tests.
type MapView struct {
	width  int
	height int

	payload    *geo.FeatureCollection
	query      filter.QueryPayload
	generation uint64
	lastErr    error
}

// Ensure MapView implements View.
var _ View = (*MapView)(nil)

// NewMapView creates an empty map view showing the base canvas.
func NewMapView() *MapView {
	return &MapView{width: 80, height: 24}
}

// SetPayload replaces the displayed layer and bumps the generation counter.
// The caller is responsible for fencing; only payloads that won the fence
// reach this method.
func (m *MapView) SetPayload(query filter.QueryPayload, fc *geo.FeatureCollection) {
	m.payload = fc
	m.query = query
	m.generation++
	m.lastErr = nil
}

// SetError records a failed fetch. The previously applied payload stays on
// screen; only the status annotation changes.
func (m *MapView) SetError(err error) {
	m.lastErr = err
}

// Payload returns the currently applied collection (nil before the first
// successful apply).
func (m *MapView) Payload() *geo.FeatureCollection {
	return m.payload
}

// Generation returns how many times the layer has been remounted.
func (m *MapView) Generation() uint64 {
	return m.generation
}

// Init implements View.
func (m *MapView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *MapView) Update(msg tea.Msg) (View, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
	}
	return m, nil
}

// View implements View.
func (m *MapView) View() string {
	w, h := m.canvasSize()
	var body string
	if m.payload == nil || len(m.payload.Features) == 0 {
		body = m.renderBase(w, h)
	} else {
		body = m.renderLayer(w, h)
	}
	return Styles.Box.Render(m.title() + "\n" + body + "\n" + m.legend())
}

func (m *MapView) title() string {
	if m.payload == nil {
		return Styles.Title.Render("Vegetation anomaly") + " " +
			Styles.Hint.Render("apply a layer to load data")
	}
	label := fmt.Sprintf("%s / %s  %s %s",
		m.query.SelectedProvince, m.query.SelectedSoum,
		m.query.SelectedVegetationIndex, m.query.SelectedYear)
	if m.query.GrazingOnly {
		label += "  (pasture)"
	}
	out := Styles.Title.Render("Vegetation anomaly") + "  " + Styles.Normal.Render(label)
	if m.lastErr != nil {
		out += "  " + Styles.TitleWarning.Render("fetch failed, showing last data")
	}
	return out
}

func (m *MapView) canvasSize() (int, int) {
	w := m.width - 8
	if w < 20 {
		w = 20
	}
	h := m.height - 8
	if h < 8 {
		h = 8
	}
	return w, h
}

// renderBase draws the empty canvas with a sparse grid so the panel reads as
// a map surface before any layer is applied.
func (m *MapView) renderBase(w, h int) string {
	lines := make([]string, h)
	for y := 0; y < h; y++ {
		row := make([]rune, w)
		for x := 0; x < w; x++ {
			if x%10 == 0 && y%4 == 0 {
				row[x] = '·'
			} else {
				row[x] = ' '
			}
		}
		lines[y] = Styles.Muted.Render(string(row))
	}
	return strings.Join(lines, "\n")
}

func (m *MapView) renderLayer(w, h int) string {
	bounds := m.payload.Bounds()
	buf := newBrailleBuf(w, h)
	for _, f := range m.payload.Features {
		lon, lat, ok := f.Point()
		if !ok {
			continue
		}
		z, ok := f.ZScore()
		if !ok {
			continue
		}
		mx, my, ok := microXY(lon, lat, bounds, w, h)
		if !ok {
			continue
		}
		buf.setPixel(mx, my, z)
	}
	return buf.render()
}

func (m *MapView) legend() string {
	parts := []string{
		anomalyStyle(-2).Render("⣿ z≤-1.5"),
		anomalyStyle(-1).Render("⣿ -1.5..-0.5"),
		anomalyStyle(0).Render("⣿ ±0.5"),
		anomalyStyle(1).Render("⣿ 0.5..1.5"),
		anomalyStyle(2).Render("⣿ z≥1.5"),
	}
	return Styles.Hint.Render("z-score  ") + strings.Join(parts, "  ")
}

// microXY maps lon/lat into a 2x4 microgrid per cell for braille rendering.
// Degenerate boxes (a single point) collapse to the canvas center.
func microXY(lon, lat float64, b geo.BBox, w, h int) (int, int, bool) {
	if w < 1 || h < 1 {
		return 0, 0, false
	}
	spanX := b.MaxLon - b.MinLon
	spanY := b.MaxLat - b.MinLat
	nx, ny := 0.5, 0.5
	if spanX > 0 {
		nx = (lon - b.MinLon) / spanX
	}
	if spanY > 0 {
		ny = (lat - b.MinLat) / spanY
	}
	wMic := w * 2
	hMic := h * 4
	sx := int(nx * float64(wMic-1))
	sy := int((1.0 - ny) * float64(hMic-1))
	return sx, sy, true
}

// brailleBuf accumulates micro-pixels as per-cell 8-bit masks and keeps the
// strongest anomaly seen in each cell for coloring.
type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell bit mask
	z    [][]float64
	set  [][]bool
}

func newBrailleBuf(w, h int) *brailleBuf {
	b := &brailleBuf{w: w, h: h}
	b.m = make([][]uint8, h)
	b.z = make([][]float64, h)
	b.set = make([][]bool, h)
	for i := 0; i < h; i++ {
		b.m[i] = make([]uint8, w)
		b.z[i] = make([]float64, w)
		b.set[i] = make([]bool, w)
	}
	return b
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell).
func (b *brailleBuf) setPixel(mx, my int, z float64) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	var bit uint8
	if rx == 0 {
		switch ry {
		case 0:
			bit = 0x01
		case 1:
			bit = 0x02
		case 2:
			bit = 0x04
		case 3:
			bit = 0x40
		}
	} else {
		switch ry {
		case 0:
			bit = 0x08
		case 1:
			bit = 0x10
		case 2:
			bit = 0x20
		case 3:
			bit = 0x80
		}
	}
	b.m[cy][cx] |= bit
	if !b.set[cy][cx] || abs64(z) > abs64(b.z[cy][cx]) {
		b.z[cy][cx] = z
		b.set[cy][cx] = true
	}
}

func (b *brailleBuf) render() string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		var row strings.Builder
		for x := 0; x < b.w; x++ {
			mask := b.m[y][x]
			if mask == 0 {
				row.WriteByte(' ')
				continue
			}
			cell := string(rune(0x2800 + int(mask)))
			row.WriteString(anomalyStyle(b.z[y][x]).Render(cell))
		}
		out[y] = row.String()
	}
	return strings.Join(out, "\n")
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
