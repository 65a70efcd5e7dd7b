package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PlayPause     key.Binding
	OffsetUp      key.Binding
	OffsetDown    key.Binding
	OffsetUpBig   key.Binding
	OffsetDownBig key.Binding
	ResetOffset   key.Binding
	Up            key.Binding
	Down          key.Binding
	Seek          key.Binding
	Follow        key.Binding
	EditTitle     key.Binding
	ResetAll      key.Binding
	ToggleHeader  key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		OffsetUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "offset +"),
		),
		OffsetDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "offset -"),
		),
		OffsetUpBig: key.NewBinding(
			key.WithKeys("]", "right"),
			key.WithHelp("]", "offset ++"),
		),
		OffsetDownBig: key.NewBinding(
			key.WithKeys("[", "left"),
			key.WithHelp("[", "offset --"),
		),
		ResetOffset: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "reset offset"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "select prev"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "select next"),
		),
		Seek: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "jump to line"),
		),
		Follow: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "follow"),
		),
		EditTitle: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit title"),
		),
		ResetAll: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset all"),
		),
		ToggleHeader: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "header"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.OffsetUp, k.OffsetDown, k.Seek, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Up, k.Down, k.Seek, k.Follow},
		{k.OffsetUp, k.OffsetDown, k.OffsetUpBig, k.OffsetDownBig, k.ResetOffset},
		{k.EditTitle, k.ToggleHeader, k.ResetAll, k.Help, k.Quit},
	}
}
