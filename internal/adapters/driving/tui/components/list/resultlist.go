// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// ResultList displays one page of search hits in a navigable list.
type ResultList struct {
	hits     []domain.Hit
	offset   int
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.hits) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.hits)+2)
	header := fmt.Sprintf("Results %d-%d", r.offset+1, r.offset+len(r.hits))
	lines = append(lines, r.styles.Subtitle.Render(header), "")

	// Each hit takes two lines plus a blank separator.
	visible := max((r.height-2)/3, 1)
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.hits))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderHit(i, r.hits[i]))
	}
	return strings.Join(lines, "\n")
}

func (r *ResultList) renderHit(index int, hit domain.Hit) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	label := fmt.Sprintf("%s%d. %s", indicator, r.offset+index+1, Label(hit))
	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(label)
	} else {
		titleLine = r.styles.Normal.Render(label)
	}
	titleLine += "  " + r.styles.Kind.Render(string(hit.Kind())) +
		"  " + r.styles.Muted.Render(hit.Archive())

	snippet := r.styles.RenderHighlights(hit.Text(), hit.Ranges(), max(r.width-6, 20))
	return titleLine + "\n    " + snippet + "\n"
}

// Label names the part of the archive a hit points at.
func Label(hit domain.Hit) string {
	switch h := hit.(type) {
	case *domain.BlockHit:
		return "paragraph " + h.BlockID
	case *domain.FieldHit:
		return "field " + h.FieldName
	case *domain.AnnotationHit:
		return "annotation on " + h.TargetKind + ":" + h.TargetRef
	case *domain.AttachmentHit:
		return "attachment " + h.DisplayName
	default:
		return string(hit.Kind())
	}
}

// SetPage replaces the list with one page of hits starting at offset.
func (r *ResultList) SetPage(hits []domain.Hit, offset int) {
	r.hits = hits
	r.offset = offset
	r.selected = 0
}

// Hits returns the current hits.
func (r *ResultList) Hits() []domain.Hit {
	return r.hits
}

// Offset returns the position of the first hit in the full result set.
func (r *ResultList) Offset() int {
	return r.offset
}

// Selected returns the index of the selected hit.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.hits) {
		r.selected = index
	}
}

// SelectedHit returns the selected hit, or nil if the list is empty.
func (r *ResultList) SelectedHit() domain.Hit {
	if r.selected < 0 || r.selected >= len(r.hits) {
		return nil
	}
	return r.hits[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.hits)-1 {
		r.selected++
	}
}

// SetDimensions sets the list dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Clear removes all hits.
func (r *ResultList) Clear() {
	r.hits = nil
	r.offset = 0
	r.selected = 0
}
