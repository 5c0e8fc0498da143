package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ta346/greenzone-web/internal/filter"
)

// sidebarField identifies one row of the filter sidebar.
type sidebarField int

const (
	fieldProvince sidebarField = iota
	fieldSoum
	fieldIndex
	fieldYear
	fieldGrazing
	fieldCount
)

func (f sidebarField) label() string {
	switch f {
	case fieldProvince:
		return "Province"
	case fieldSoum:
		return "Soum"
	case fieldIndex:
		return "Index"
	case fieldYear:
		return "Year"
	case fieldGrazing:
		return "Grazing only"
	default:
		return ""
	}
}

// SidebarView is the filter sidebar: one selector per filter dimension plus
// the grazing-only toggle and the two action rows. It owns the filter panel
// and keeps the soum selector's options in sync with the chosen province.
type SidebarView struct {
	panel   *filter.Panel
	focused bool
	field   sidebarField

	province *filter.Selector
	soum     *filter.Selector
	index    *filter.Selector
	year     *filter.Selector
}

// Ensure SidebarView implements View.
var _ View = (*SidebarView)(nil)

// NewSidebarView builds the sidebar over a region index and the fixed
// vegetation index and year option lists.
func NewSidebarView(regions filter.RegionIndex, indices, years []string) *SidebarView {
	s := &SidebarView{
		panel:   filter.NewPanel(regions, indices, years),
		focused: true,
	}
	s.province = filter.NewSelector(regions.Provinces(), func(v string) {
		// ChooseProvince resets the soum to the new province's first entry;
		// SetOptions resets the selector the same way, so the two stay in sync
		// even when the old soum name exists in the new province too.
		s.panel.ChooseProvince(v)
		s.soum.SetOptions(s.panel.SoumOptions())
	})
	s.soum = filter.NewSelector(s.panel.SoumOptions(), func(v string) {
		s.panel.ChooseSoum(v)
	})
	s.index = filter.NewSelector(indices, func(v string) {
		s.panel.ChooseIndex(v)
	})
	s.year = filter.NewSelector(years, func(v string) {
		s.panel.ChooseYear(v)
	})
	return s
}

// Panel exposes the selection state machine (status line, dispatch).
func (s *SidebarView) Panel() *filter.Panel {
	return s.panel
}

// SetFocused marks whether the sidebar receives navigation keys.
func (s *SidebarView) SetFocused(focused bool) {
	s.focused = focused
}

// Field returns the currently highlighted row.
func (s *SidebarView) Field() sidebarField {
	return s.field
}

// Init implements View.
func (s *SidebarView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (s *SidebarView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case ToggleSidebarMsg:
		s.panel.ToggleExpand()
		return s, nil
	case tea.KeyMsg:
		if !s.focused || !s.panel.UI().Expanded {
			return s, nil
		}
		switch msg.String() {
		case "j", "down":
			if s.field < fieldCount-1 {
				s.field++
			}
		case "k", "up":
			if s.field > 0 {
				s.field--
			}
		case "h", "left":
			if sel := s.selectorFor(s.field); sel != nil {
				sel.Prev()
			}
		case "l", "right":
			if sel := s.selectorFor(s.field); sel != nil {
				sel.Next()
			}
		case "enter":
			if s.field == fieldGrazing {
				s.panel.ToggleGrazingOnly()
			}
		}
	}
	return s, nil
}

// selectorFor returns the selector backing a field, or nil for the toggle row.
func (s *SidebarView) selectorFor(f sidebarField) *filter.Selector {
	switch f {
	case fieldProvince:
		return s.province
	case fieldSoum:
		return s.soum
	case fieldIndex:
		return s.index
	case fieldYear:
		return s.year
	default:
		return nil
	}
}

// View implements View.
func (s *SidebarView) View() string {
	if !s.panel.UI().Expanded {
		return Styles.BoxCompact.Render(Styles.Hint.Render("filters (tab)"))
	}

	var b strings.Builder
	b.WriteString(Styles.Title.Render("Filters"))
	b.WriteString("\n\n")

	for f := fieldProvince; f < fieldCount; f++ {
		b.WriteString(s.renderField(f))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.renderAction("a", "Apply layer", filter.ActionLayer))
	b.WriteString("\n")
	b.WriteString(s.renderAction("g", "View graph", filter.ActionGraph))

	return Styles.BoxCompact.Render(b.String())
}

func (s *SidebarView) renderField(f sidebarField) string {
	var value string
	if f == fieldGrazing {
		value = "off"
		if s.panel.Selection().GrazingOnly {
			value = "on"
		}
	} else if v, ok := s.selectorFor(f).Value(); ok {
		value = v
	} else {
		return fmt.Sprintf("%-13s %s", f.label(), Styles.Empty.Render("no options"))
	}

	line := fmt.Sprintf("%-13s ‹ %s ›", f.label(), value)
	if s.focused && f == s.field {
		return Styles.Selected.Render(line)
	}
	return Styles.Normal.Render(line)
}

func (s *SidebarView) renderAction(key, label string, action filter.ActiveAction) string {
	line := fmt.Sprintf("[%s] %s", key, label)
	if s.panel.UI().ActiveAction == action {
		return Styles.Status.Render(line + " ●")
	}
	return Styles.Muted.Render(line)
}
