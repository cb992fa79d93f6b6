package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PickDrop  key.Binding
	Mine      key.Binding
	Reviews   key.Binding
	Status    key.Binding
	Dept      key.Binding
	Density   key.Binding
	QuickEdit key.Binding
	Bulk      key.Binding
	SelectAll key.Binding
	Back      key.Binding
	Forward   key.Binding
	Enter     key.Binding
	New       key.Binding
	Refresh   key.Binding
	SwitchTab key.Binding
	Quit      key.Binding
	Digits    []key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("l", "right"),
	),
	PickDrop: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pick up / drop"),
	),
	Mine: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "my tasks"),
	),
	Reviews: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "my reviews"),
	),
	Status: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "status filter"),
	),
	Dept: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "department"),
	),
	Density: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "density"),
	),
	QuickEdit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "quick edit"),
	),
	Bulk: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "bulk"),
	),
	SelectAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "select all"),
	),
	Back: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "back"),
	),
	Forward: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "forward"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "detail"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new task"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r", "ctrl+r"),
		key.WithHelp("r", "refresh"),
	),
	SwitchTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "board/list"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Digits: []key.Binding{
		key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "not started")),
		key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "in progress")),
		key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "review")),
		key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "blocked")),
		key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "complete")),
	},
}
