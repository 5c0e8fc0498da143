package ui

import (
	"github.com/ta346/greenzone-web/internal/dispatch"
)

// ApplyLayerMsg is sent when the user applies the current filters as a map
// layer (SPC a or 'a' in the sidebar).
type ApplyLayerMsg struct{}

// ViewGraphMsg is sent when the user opens the graph panel for the current
// selection (SPC g or 'g' in the sidebar).
type ViewGraphMsg struct{}

// DismissGraphMsg closes the graph panel (Esc).
type DismissGraphMsg struct{}

// ToggleSidebarMsg collapses or expands the filter sidebar.
type ToggleSidebarMsg struct{}

// QueryResultMsg carries the outcome of one dispatched anomaly query back
// into the update loop. The dispatcher's fence decides whether the payload
// may replace the displayed one.
type QueryResultMsg struct {
	Result dispatch.Result
}
