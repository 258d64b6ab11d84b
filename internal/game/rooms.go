package game

import (
	"fmt"
	"strings"

	"Kilnworld/internal/world"
)

// ShowRoom describes the session's room to it. Callers hold the lock of the
// room's world.
func (h *Hub) ShowRoom(s *Session) {
	r := s.Room()
	if r == nil {
		h.ShowLobby(s)
		return
	}
	var b strings.Builder
	b.WriteString("\r\n\r\n" + Style(r.Name, AnsiBold, AnsiCyan))
	if desc := strings.TrimSpace(r.Description); desc != "" {
		b.WriteString("\r\n" + Style(WrapText(desc, s.Width), AnsiItalic, AnsiDim))
	}
	b.WriteString("\r\nExits: " + ExitList(r))
	if items := VisibleItems(r); len(items) > 0 {
		names := make([]string, len(items))
		for i, it := range items {
			names[i] = HighlightItem(it.Name)
		}
		b.WriteString("\r\nYou notice: " + strings.Join(names, ", "))
	}
	if others := h.Occupants(r, s); len(others) > 0 {
		names := make([]string, len(others))
		for i, o := range others {
			names[i] = HighlightName(o.User.Name)
		}
		b.WriteString("\r\nAlso here: " + strings.Join(names, ", "))
	}
	s.Send(Ansi(b.String()))
}

// ShowLobby lists the worlds a lobby session can enter and the lobby verbs.
func (h *Hub) ShowLobby(s *Session) {
	var b strings.Builder
	worlds := h.Worlds()
	if len(worlds) == 0 {
		b.WriteString("\r\nThere are no worlds on this server yet.")
	} else {
		b.WriteString("\r\nType the number of the world you want to visit.")
		for i, w := range worlds {
			creator := "nobody"
			if w.Creator != nil {
				creator = w.Creator.Name
			}
			fmt.Fprintf(&b, "\r\n%d. %-36s (%d) by %s", i, w.Name, h.ConnectedCount(w), HighlightName(creator))
		}
	}
	b.WriteString("\r\n\r\n + to create a new world.")
	b.WriteString("\r\n * to deploy your own copy of a public world.")
	b.WriteString("\r\n - to delete one of your worlds.")
	b.WriteString("\r\n > to import a world.")
	s.Send(Ansi(b.String()))
}

// ExitList renders the visible exits of r in room order.
func ExitList(r *world.Room) string {
	var names []string
	for _, e := range r.Exits {
		if !e.Hidden() {
			names = append(names, HighlightExit(e.Name))
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// VisibleItems returns the items of r that are not hidden.
func VisibleItems(r *world.Room) []*world.Item {
	var out []*world.Item
	for _, it := range r.Items {
		if it.Visible {
			out = append(out, it)
		}
	}
	return out
}

// WrapText breaks text into lines of at most width columns, keeping
// paragraph breaks. Widths below 20 are raised to 20.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	width = max(width, 20)
	paragraphs := strings.Split(text, "\n")
	for i, p := range paragraphs {
		paragraphs[i] = wrapLine(p, width)
	}
	return strings.Join(paragraphs, "\r\n")
}

func wrapLine(line string, width int) string {
	var lines []string
	var current []rune
	for _, word := range strings.Fields(line) {
		w := []rune(word)
		for len(w) > width {
			if len(current) > 0 {
				lines = append(lines, string(current))
				current = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(w) == 0:
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) > width:
			lines = append(lines, string(current))
			current = w
		default:
			current = append(append(current, ' '), w...)
		}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return strings.Join(lines, "\r\n")
}
