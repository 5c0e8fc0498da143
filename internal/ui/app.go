package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ta346/greenzone-web/internal/dispatch"
	"github.com/ta346/greenzone-web/internal/filter"
)

// Focus panel IDs.
const (
	focusSidebar = "sidebar"
	focusMap     = "map"
)

// AppModel is the root model: filter sidebar on the left, anomaly map on the
// right, with an optional graph overlay replacing the map panel.
type AppModel struct {
	Sidebar    *SidebarView
	Map        *MapView
	Graph      *GraphView // non-nil while the graph overlay is open
	Focus      *FocusManager
	KeyHandler *KeyHandler
	Dispatcher *dispatch.Dispatcher

	status string
	width  int
}

// NewApp wires the views, focus order and keybinds.
func NewApp(regions filter.RegionIndex, indices, years []string, d *dispatch.Dispatcher) *AppModel {
	m := &AppModel{
		Sidebar:    NewSidebarView(regions, indices, years),
		Map:        NewMapView(),
		Focus:      &FocusManager{Current: focusSidebar, Order: []string{focusSidebar, focusMap}},
		Dispatcher: d,
		status:     "ready",
	}

	reg := NewKeybindRegistry()
	reg.BindWithDesc("SPC a", func() tea.Msg { return ApplyLayerMsg{} }, "Apply layer")
	reg.BindWithDesc("SPC g", func() tea.Msg { return ViewGraphMsg{} }, "View graph")
	reg.BindWithDesc("SPC f", func() tea.Msg { return ToggleSidebarMsg{} }, "Toggle filters")
	reg.BindWithDesc("SPC q", tea.Quit, "Quit")
	reg.Bind("a", func() tea.Msg { return ApplyLayerMsg{} })
	reg.Bind("g", func() tea.Msg { return ViewGraphMsg{} })
	m.KeyHandler = NewKeyHandler(reg)

	return m
}

// Adapter returns the tea.Model wrapper for tea.NewProgram.
func (m *AppModel) Adapter() tea.Model {
	return &appModelAdapter{m}
}

// Ensure AppModel can be used as tea.Model via adapter.
var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter wraps AppModel to implement tea.Model.
type appModelAdapter struct {
	*AppModel
}

// Init implements tea.Model.
func (a *appModelAdapter) Init() tea.Cmd {
	return tea.Batch(a.Sidebar.Init(), a.Map.Init())
}

// Update implements tea.Model.
func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		v, _ := a.Map.Update(msg)
		a.Map = v.(*MapView)
		return a, nil

	case ApplyLayerMsg:
		query := a.Sidebar.Panel().ApplyLayer()
		seq := a.Dispatcher.Next()
		a.status = fmt.Sprintf("loading %s %s…", query.SelectedVegetationIndex, query.SelectedYear)
		return a, a.dispatchCmd(seq, query)

	case ViewGraphMsg:
		a.Sidebar.Panel().ViewGraph()
		a.Graph = NewGraphView(a.Map.Payload())
		return a, nil

	case DismissGraphMsg:
		a.Graph = nil
		return a, nil

	case ToggleSidebarMsg:
		v, cmd := a.Sidebar.Update(msg)
		a.Sidebar = v.(*SidebarView)
		return a, cmd

	case QueryResultMsg:
		return a.applyResult(msg.Result)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

// applyResult runs the result through the dispatcher's fence. Stale and
// failed results never clear what is on screen.
func (a *appModelAdapter) applyResult(r dispatch.Result) (tea.Model, tea.Cmd) {
	if a.Dispatcher.TryApply(r) {
		a.Map.SetPayload(r.Query, r.Payload)
		a.status = fmt.Sprintf("%d points", len(r.Payload.Features))
		return a, nil
	}
	if r.Err != nil {
		a.Map.SetError(r.Err)
		a.status = "fetch failed"
	}
	return a, nil
}

func (a *appModelAdapter) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := msg.String()

	if s == "ctrl+c" {
		return a, tea.Quit
	}

	// Esc closes the graph overlay before anything else sees it.
	if s == "esc" && a.Graph != nil && !a.KeyHandler.LeaderWaiting {
		a.Graph = nil
		return a, nil
	}

	// Keybind system (leader key, SPC-prefixed commands)
	if consumed, keyCmd := a.KeyHandler.Handle(msg); consumed {
		return a, keyCmd
	}

	switch s {
	case "q":
		return a, tea.Quit
	case "tab":
		a.Focus.Next()
		a.Sidebar.SetFocused(a.Focus.Current == focusSidebar)
		return a, nil
	}

	if a.Focus.Current == focusSidebar {
		v, cmd := a.Sidebar.Update(msg)
		a.Sidebar = v.(*SidebarView)
		return a, cmd
	}
	v, cmd := a.Map.Update(msg)
	a.Map = v.(*MapView)
	return a, cmd
}

// dispatchCmd runs one fetch off the update loop and reports back.
func (a *appModelAdapter) dispatchCmd(seq uint64, query filter.QueryPayload) tea.Cmd {
	d := a.Dispatcher
	return func() tea.Msg {
		return QueryResultMsg{Result: d.Dispatch(context.Background(), seq, query)}
	}
}

// View implements tea.Model.
func (a *appModelAdapter) View() string {
	right := a.Map.View()
	if a.Graph != nil {
		right = a.Graph.View()
	}
	header := " " + Styles.Title.Render("GreenZone") + " " +
		Styles.Muted.Render("rangeland vegetation anomaly")
	base := header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, a.Sidebar.View(), right)
	base += "\n " + Styles.Status.Render(a.status) +
		"  " + Styles.Hint.Render("tab focus · a apply · g graph · SPC commands · q quit")
	if a.KeyHandler.LeaderWaiting {
		base += "\n" + RenderKeybindHelp(a.KeyHandler)
	}
	return base
}
