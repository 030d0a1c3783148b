// Package archive provides the archive detail view for the TUI.
//
// The view opens on the archive a search hit belongs to and scrolls to the
// paragraph the hit points at, with the matched spans highlighted.
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/archivevault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
)

// ErrNoArchiveService indicates that no archive service was provided.
var ErrNoArchiveService = errors.New("archive service is required")

// reserved is the number of lines taken by the header and footer.
const reserved = 4

// View is the archive detail view.
type View struct {
	styles         *styles.Styles
	keymap         *keymap.KeyMap
	archiveService driving.ArchiveService
	ctx            context.Context
	loc            *time.Location

	viewport viewport.Model
	hit      domain.Hit
	detail   *domain.ArchiveDetail
	blocks   []domain.Block
	// targetLine is the content line of the paragraph the hit points at, or -1.
	targetLine int

	width   int
	height  int
	loading bool
	err     error
}

// NewView creates a new archive view.
func NewView(s *styles.Styles, km *keymap.KeyMap, archiveService driving.ArchiveService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:         s,
		keymap:         km,
		archiveService: archiveService,
		ctx:            context.Background(),
		loc:            time.FixedZone("", domain.DefaultUTCOffsetHours*3600),
		viewport:       viewport.New(80, 20),
		targetLine:     -1,
		width:          80,
		height:         24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithLocation sets the zone archive dates are shown in.
func (v *View) WithLocation(loc *time.Location) *View {
	if loc != nil {
		v.loc = loc
	}
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open shows the archive hit belongs to and returns the command loading it.
func (v *View) Open(hit domain.Hit) tea.Cmd {
	v.hit = hit
	v.detail = nil
	v.blocks = nil
	v.err = nil
	v.loading = true
	v.targetLine = -1
	v.viewport.SetContent("")
	v.viewport.GotoTop()

	svc, ctx, id := v.archiveService, v.ctx, hit.Archive()
	return func() tea.Msg {
		if svc == nil {
			return messages.ArchiveLoaded{ArchiveID: id, Err: ErrNoArchiveService}
		}
		detail, err := svc.Get(ctx, id)
		if err != nil {
			return messages.ArchiveLoaded{ArchiveID: id, Err: err}
		}
		blocks, err := svc.Blocks(ctx, id)
		return messages.ArchiveLoaded{ArchiveID: id, Detail: detail, Blocks: blocks, Err: err}
	}
}

// Update handles messages for the archive view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ArchiveLoaded:
		if v.hit == nil || msg.ArchiveID != v.hit.Archive() {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.detail = msg.Detail
			v.blocks = msg.Blocks
		}
		v.render()
		return v, nil

	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Back):
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSearch} }
		case msg.String() == "q":
			return v, func() tea.Msg { return messages.Quit{} }
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// render rebuilds the viewport content and scrolls to the target paragraph.
func (v *View) render() {
	if v.detail == nil {
		v.viewport.SetContent("")
		return
	}

	v.targetLine = -1
	lines := v.contentLines()
	v.viewport.SetContent(strings.Join(lines, "\n"))
	if v.targetLine >= 0 {
		// Keep a little context above the paragraph.
		v.viewport.SetYOffset(max(v.targetLine-2, 0))
	}
}

func (v *View) contentLines() []string {
	d := v.detail
	a := d.Archive
	var lines []string
	add := func(s ...string) {
		for _, part := range s {
			lines = append(lines, strings.Split(part, "\n")...)
		}
	}

	add(v.styles.Title.Render(a.OriginalName))
	add(v.styles.Muted.Render(fmt.Sprintf("%s  %s  imported %s",
		a.ID,
		a.ArchiveTime(v.loc).Format(domain.DayLayout),
		time.Unix(a.ImportedAt, 0).In(v.loc).Format("2006-01-02 15:04"))))
	if a.Status != domain.ArchiveCompleted {
		status := string(a.Status)
		if a.Error != "" {
			status += ": " + a.Error
		}
		add(v.styles.Warning.Render(status))
	}
	add("")

	if doc := d.MainDocument; doc != nil {
		add(v.field("Instruction no", doc.InstructionNo, domain.FieldInstructionNo))
		add(v.field("Title", doc.Title, domain.FieldTitle))
		add(v.field("Issued at", doc.IssuedAt, domain.FieldIssuedAt))
		add("")
	}

	target, ranges := v.target()
	add(v.styles.Subtitle.Render(fmt.Sprintf("Paragraphs (%d)", len(v.blocks))))
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	for _, b := range v.blocks {
		if b.ID == target {
			v.targetLine = len(lines)
			text := v.styles.RenderHighlights(b.Text, ranges, 0)
			add(v.styles.Selected.Render("▶ "+b.ID), wrap.Render(text))
			continue
		}
		add(v.styles.Muted.Render("  "+b.ID), wrap.Render(b.Text))
	}
	add("")

	add(v.styles.Subtitle.Render(fmt.Sprintf("Attachments (%d)", len(d.Attachments))))
	for _, att := range d.Attachments {
		line := fmt.Sprintf("  %s  %s  %d bytes  %s", att.DisplayName, att.FileType, att.SizeBytes, att.VirtualPath)
		if h, ok := v.hit.(*domain.AttachmentHit); ok && h.FileID == att.ID {
			v.targetLine = len(lines)
			line = v.styles.Selected.Render(line)
		}
		add(line)
	}
	add("")

	add(v.styles.Subtitle.Render(fmt.Sprintf("Annotations (%d)", len(d.Annotations))))
	for _, ann := range d.Annotations {
		line := fmt.Sprintf("  %s:%s  %s", ann.TargetKind, ann.TargetRef, ann.Content)
		if h, ok := v.hit.(*domain.AnnotationHit); ok && h.AnnotationID == ann.ID {
			line = fmt.Sprintf("  %s:%s  %s", ann.TargetKind, ann.TargetRef,
				v.styles.RenderHighlights(ann.Content, h.Highlights, 0))
		}
		add(line)
	}
	return lines
}

func (v *View) field(label, value, name string) string {
	if h, ok := v.hit.(*domain.FieldHit); ok && h.FieldName == name {
		value = v.styles.RenderHighlights(value, h.Highlights, 0)
	}
	return fmt.Sprintf("%-15s %s", label+":", value)
}

// target returns the paragraph a hit points at and the spans to highlight in it.
func (v *View) target() (string, []domain.Range) {
	switch h := v.hit.(type) {
	case *domain.BlockHit:
		return h.BlockID, h.Highlights
	case *domain.FieldHit:
		return h.BestBlockID, h.BestBlockHighlights
	case *domain.AnnotationHit:
		if h.TargetKind == string(domain.HitBlock) {
			return h.TargetRef, nil
		}
	}
	return "", nil
}

// View renders the archive view.
func (v *View) View() string {
	var b strings.Builder

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading archive..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	default:
		b.WriteString(v.viewport.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll  esc back  q quit", v.viewport.ScrollPercent()*100)))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height-reserved, 1)
	v.render()
}

// Detail returns the loaded archive.
func (v *View) Detail() *domain.ArchiveDetail {
	return v.detail
}

// Hit returns the hit the view was opened with.
func (v *View) Hit() domain.Hit {
	return v.hit
}

// TargetLine returns the content line of the paragraph the hit points at, or -1.
func (v *View) TargetLine() int {
	return v.targetLine
}

// Loading reports whether the archive is still being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the load error, if any.
func (v *View) Err() error {
	return v.err
}
