package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/wishboard/internal/render"
	"github.com/rshade/wishboard/internal/widget"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	minCardWidth  = 20
	borderPadding = 4
)

// View is the input to RenderText.
type View struct {
	Snapshot widget.Snapshot
	// Err is the widget's last error; it selects the error message.
	Err   error
	Width int
}

// RenderText renders one page of wishes with its page indicator for a
// terminal. Messages come from r so they follow the configured locale.
func RenderText(r *render.Renderer, v View) string {
	width := v.Width
	if width <= 0 {
		width = defaultWidth
	}
	snap := v.Snapshot

	sections := []string{TitleStyle.Render(r.Message(render.MsgTitle))}

	switch {
	case snap.State == widget.StateError && len(snap.Page) == 0:
		key := render.MsgTransport
		if errors.Is(v.Err, widget.ErrMalformed) {
			key = render.MsgMalformed
		}
		sections = append(sections, ErrorStyle.Render(r.Message(key)))
	case snap.State == widget.StateUninitialized || (snap.State == widget.StateLoading && len(snap.Page) == 0):
		sections = append(sections, SubtleStyle.Render(r.Message(render.MsgLoading)))
	case len(snap.Page) == 0:
		sections = append(sections, SubtleStyle.Render(r.Message(render.MsgEmpty)))
	default:
		cardWidth := max(minCardWidth, width-borderPadding)
		for _, w := range snap.Page {
			body := lipgloss.JoinVertical(lipgloss.Left,
				NameStyle.Render(w.Name),
				MessageStyle.Render(w.Message),
			)
			sections = append(sections, CardStyle.Width(cardWidth).Render(body))
		}
	}

	if footer := renderPager(r, snap); footer != "" {
		sections = append(sections, footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderPager renders "‹ 1 [2] 3 ›  Page 2 of 3", or "" for a single page.
func renderPager(r *render.Renderer, snap widget.Snapshot) string {
	meta := snap.Meta
	if meta.TotalPages <= 1 {
		return ""
	}

	var b strings.Builder
	if meta.HasPrevious {
		b.WriteString(PageStyle.Render("‹"))
	} else {
		b.WriteString(DisabledStyle.Render("‹"))
	}
	for _, n := range snap.PageLinks {
		if n == meta.CurrentPage {
			b.WriteString(ActivePageStyle.Render(strconv.Itoa(n)))
			continue
		}
		b.WriteString(PageStyle.Render(strconv.Itoa(n)))
	}
	if meta.HasNext {
		b.WriteString(PageStyle.Render("›"))
	} else {
		b.WriteString(DisabledStyle.Render("›"))
	}
	b.WriteString("  ")
	b.WriteString(SubtleStyle.Render(r.Message(render.MsgPageOf, meta.CurrentPage, meta.TotalPages)))
	return b.String()
}
