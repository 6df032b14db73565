package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type helpModel struct {
	keys  keyMap
	width int
}

func newHelpModel() helpModel {
	return helpModel{
		keys:  defaultKeyMap(),
		width: 80,
	}
}

func (m *helpModel) SetWidth(width int) {
	m.width = width
}

func (m helpModel) View(t Theme) string {
	var b strings.Builder

	b.WriteString(t.TopBarTitle.Render("chatbubble help"))
	b.WriteString("\n\n")

	b.WriteString(t.TopBarBadge.Render("keys"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  send message\n", t.RoleYou.Render("enter")))
	b.WriteString(fmt.Sprintf("  %s  scroll transcript\n", t.RoleYou.Render("up/down, pgup/pgdn")))
	b.WriteString(fmt.Sprintf("  %s  jump to latest (re-pin)\n", t.RoleYou.Render("end")))
	b.WriteString(fmt.Sprintf("  %s  toggle this help\n", t.RoleYou.Render("f1")))
	b.WriteString(fmt.Sprintf("  %s  quit\n", t.RoleYou.Render("ctrl+c")))

	b.WriteString("\n")
	b.WriteString(t.TopBarBadge.Render("behavior"))
	b.WriteString("\n")
	b.WriteString(t.Guidance.Render("  Scrolling up unpins the view; new messages then wait"))
	b.WriteString("\n")
	b.WriteString(t.Guidance.Render("  behind an unread badge until you jump back down."))
	b.WriteString("\n")
	b.WriteString(t.Guidance.Render("  Sending always re-pins."))
	b.WriteString("\n")

	b.WriteString("\n")
	b.WriteString(t.Footer.Render("f1 close | enter send | end jump to latest"))

	return b.String()
}

type keyMap struct {
	Quit       key.Binding
	Enter      key.Binding
	Help       key.Binding
	JumpLatest key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send message"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1", "alt+h"),
			key.WithHelp("f1", "help"),
		),
		JumpLatest: key.NewBinding(
			key.WithKeys("end", "alt+j"),
			key.WithHelp("end", "jump to latest"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("up", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
	}
}
