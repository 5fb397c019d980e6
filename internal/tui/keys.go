package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings of every view. Views pick the subset they use.
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding

	// Tabs
	TabDashboard key.Binding
	TabProjects  key.Binding
	TabTemplates key.Binding
	TabResources key.Binding

	// Catalogs
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Refresh  key.Binding
	NextPane key.Binding
	PrevItem key.Binding
	NextItem key.Binding

	// Estimate editing
	MoreDays  key.Binding
	LessDays  key.Binding
	Resource  key.Binding
	MinDown   key.Binding
	MinUp     key.Binding
	MaxDown   key.Binding
	MaxUp     key.Binding
	Approve   key.Binding
	AddTask   key.Binding
	RemoveRow key.Binding
	Save      key.Binding
}

func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		TabDashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1-4", "tabs"),
		),
		TabProjects: key.NewBinding(
			key.WithKeys("2"),
		),
		TabTemplates: key.NewBinding(
			key.WithKeys("3"),
		),
		TabResources: key.NewBinding(
			key.WithKeys("4"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "reload"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "roles/resources"),
		),
		PrevItem: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/l", "template"),
		),
		NextItem: key.NewBinding(
			key.WithKeys("l", "right"),
		),
		MoreDays: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+/-", "days"),
		),
		LessDays: key.NewBinding(
			key.WithKeys("-", "_"),
		),
		Resource: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resource"),
		),
		MinDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[/]", "min margin"),
		),
		MinUp: key.NewBinding(
			key.WithKeys("]"),
		),
		MaxDown: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{/}", "max margin"),
		),
		MaxUp: key.NewBinding(
			key.WithKeys("}"),
		),
		Approve: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "approve"),
		),
		AddTask: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "add task"),
		),
		RemoveRow: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove task"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
	}
}

// projectsHelp implements help.KeyMap for the projects view.
type projectsHelp struct{ k *KeyMap }

func (h projectsHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Enter, h.k.New, h.k.Delete, h.k.Refresh, h.k.TabDashboard, h.k.Quit}
}

func (h projectsHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// estimateHelp implements help.KeyMap for the estimate view.
type estimateHelp struct{ k *KeyMap }

func (h estimateHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.MoreDays, h.k.Resource, h.k.MinDown, h.k.MaxDown, h.k.Approve, h.k.Save, h.k.Back}
}

func (h estimateHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Up, h.k.Down, h.k.MoreDays, h.k.Resource},
		{h.k.MinDown, h.k.MaxDown, h.k.Approve},
		{h.k.AddTask, h.k.RemoveRow, h.k.Save, h.k.Back},
	}
}

type dashboardHelp struct{ k *KeyMap }

func (h dashboardHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Up, h.k.Down, h.k.Enter, h.k.Refresh, h.k.TabDashboard, h.k.Quit}
}

func (h dashboardHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

type templatesHelp struct{ k *KeyMap }

func (h templatesHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.PrevItem, h.k.AddTask, h.k.Edit, h.k.RemoveRow, h.k.Refresh, h.k.TabDashboard, h.k.Quit}
}

func (h templatesHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Up, h.k.Down, h.k.PrevItem},
		{h.k.AddTask, h.k.Edit, h.k.RemoveRow},
		{h.k.Refresh, h.k.TabDashboard, h.k.Quit},
	}
}

type resourcesHelp struct{ k *KeyMap }

func (h resourcesHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.NextPane, h.k.New, h.k.Edit, h.k.Delete, h.k.Refresh, h.k.TabDashboard, h.k.Quit}
}

func (h resourcesHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
