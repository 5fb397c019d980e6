package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the estimator UI.
type Theme struct {
	Name string

	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary lipgloss.Color
	Accent  lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border    lipgloss.Color
	Selection lipgloss.Color
}

var Nord = Theme{
	Name: "Nord",

	Foreground:    lipgloss.Color("#d8dee9"),
	ForegroundDim: lipgloss.Color("#616e88"),

	Primary: lipgloss.Color("#88c0d0"),
	Accent:  lipgloss.Color("#b48ead"),

	Success: lipgloss.Color("#a3be8c"),
	Warning: lipgloss.Color("#ebcb8b"),
	Error:   lipgloss.Color("#bf616a"),

	Border:    lipgloss.Color("#434c5e"),
	Selection: lipgloss.Color("#3b4252"),
}

// Current holds the active theme
var Current = Nord

type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	Tab       lipgloss.Style
	TabActive lipgloss.Style
	Stat      lipgloss.Style

	Header      lipgloss.Style
	Row         lipgloss.Style
	RowSelected lipgloss.Style

	Totals lipgloss.Style
	Label  lipgloss.Style
	Price  lipgloss.Style

	StatusDraft    lipgloss.Style
	StatusReview   lipgloss.Style
	StatusApproved lipgloss.Style

	Dirty lipgloss.Style
	Error lipgloss.Style
	Help  lipgloss.Style
}

func NewStyles() *Styles {
	t := Current

	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Tab: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		TabActive: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Bold(true).
			Padding(0, 1),

		Stat: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2).
			MarginRight(1),

		Header: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),

		Row: lipgloss.NewStyle().
			Foreground(t.Foreground),

		RowSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Bold(true),

		Totals: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		Label: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Width(14),

		Price: lipgloss.NewStyle().
			Foreground(t.Success).
			Bold(true),

		StatusDraft: lipgloss.NewStyle().
			Foreground(t.Warning),

		StatusReview: lipgloss.NewStyle().
			Foreground(t.Accent),

		StatusApproved: lipgloss.NewStyle().
			Foreground(t.Success).
			Bold(true),

		Dirty: lipgloss.NewStyle().
			Foreground(t.Warning),

		Error: lipgloss.NewStyle().
			Foreground(t.Error),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			MarginTop(1),
	}
}

func (s *Styles) Status(status string) string {
	switch status {
	case "approved":
		return s.StatusApproved.Render(status)
	case "in_review":
		return s.StatusReview.Render(status)
	default:
		return s.StatusDraft.Render(status)
	}
}
