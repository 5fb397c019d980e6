package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kadro/pricing-estimator/internal/estimate"
	"github.com/kadro/pricing-estimator/internal/models"
)

type dashboardLoadedMsg struct {
	dash models.Dashboard
	// estimates holds the server's live estimate per recent project id.
	estimates map[int]estimate.Estimate
}

// DashboardView shows the catalog counts and the most recent projects
// priced with their live estimate.
type DashboardView struct {
	api    API
	keys   *KeyMap
	styles *Styles
	help   help.Model

	dash      models.Dashboard
	estimates map[int]estimate.Estimate
	cursor    int
	loaded    bool
	err       error
	width     int
}

func NewDashboardView(api API, keys *KeyMap, s *Styles) *DashboardView {
	return &DashboardView{
		api:    api,
		keys:   keys,
		styles: s,
		help:   help.New(),
	}
}

func (v *DashboardView) Init() tea.Cmd {
	return v.load
}

func (v *DashboardView) load() tea.Msg {
	msg, err := withTimeout(func(ctx context.Context) (dashboardLoadedMsg, error) {
		dash, err := v.api.Dashboard(ctx)
		if err != nil {
			return dashboardLoadedMsg{}, err
		}
		estimates := make(map[int]estimate.Estimate, len(dash.RecentProjects))
		for _, p := range dash.RecentProjects {
			est, err := v.api.GetEstimate(ctx, p.ID)
			if err != nil {
				return dashboardLoadedMsg{}, fmt.Errorf("estimating %q: %w", p.Name, err)
			}
			estimates[p.ID] = est
		}
		return dashboardLoadedMsg{dash: dash, estimates: estimates}, nil
	})
	if err != nil {
		return errMsg{err}
	}
	return msg
}

func (v *DashboardView) capturing() bool { return false }

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.help.Width = msg.Width

	case dashboardLoadedMsg:
		v.dash = msg.dash
		v.estimates = msg.estimates
		v.loaded = true
		v.err = nil
		if v.cursor >= len(v.dash.RecentProjects) {
			v.cursor = max(len(v.dash.RecentProjects)-1, 0)
		}

	case errMsg:
		v.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.dash.RecentProjects)-1 {
				v.cursor++
			}
		case key.Matches(msg, v.keys.Refresh):
			return v, v.load
		case key.Matches(msg, v.keys.Enter):
			if v.cursor < len(v.dash.RecentProjects) {
				return v, v.open(v.dash.RecentProjects[v.cursor].ID)
			}
		}
	}
	return v, nil
}

// open fetches the current copy of the project before editing it, the
// dashboard snapshot may be stale.
func (v *DashboardView) open(id int) tea.Cmd {
	return func() tea.Msg {
		project, err := withTimeout(func(ctx context.Context) (models.Project, error) {
			return v.api.GetProject(ctx, id)
		})
		if err != nil {
			return errMsg{err}
		}
		return SelectedProject{Project: project}
	}
}

const recentRowFormat = "%-28s %-14s %-10s %-28s %-14s"

func (v *DashboardView) View() string {
	if !v.loaded && v.err == nil {
		return v.styles.TitleMuted.Render("Loading dashboard...")
	}

	stat := func(label string, n int) string {
		return v.styles.Stat.Render(lipgloss.JoinVertical(lipgloss.Left,
			v.styles.TitleMuted.Render(label),
			v.styles.Title.Render(strconv.Itoa(n)),
		))
	}
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Total Projects", v.dash.TotalProjects),
		stat("Resources", v.dash.TotalResources),
		stat("Templates", v.dash.TotalTemplates),
	)

	sections := []string{v.styles.Title.Render("Dashboard"), "", stats, "", v.styles.Title.Render("Recent Projects")}

	if len(v.dash.RecentProjects) == 0 {
		sections = append(sections, v.styles.TitleMuted.Render("No projects yet. Create one from the projects tab."))
	} else {
		rows := []string{v.styles.Header.Render(fmt.Sprintf(recentRowFormat,
			"Project", "Platform", "Status", "Price range", "Created"))}
		for i, p := range v.dash.RecentProjects {
			minPrice, maxPrice := p.MinPrice, p.MaxPrice
			if est, ok := v.estimates[p.ID]; ok {
				minPrice, maxPrice = est.MinPrice, est.MaxPrice
			}
			line := fmt.Sprintf(recentRowFormat,
				truncate(p.Name, 28),
				truncate(p.Platform, 14),
				p.Status,
				formatWholeMoney(minPrice)+" to "+formatWholeMoney(maxPrice),
				p.CreatedAt.Format("Jan 2, 2006"),
			)
			if i == v.cursor {
				rows = append(rows, v.styles.RowSelected.Render(line))
			} else {
				rows = append(rows, v.styles.Row.Render(line))
			}
		}
		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	}
	sections = append(sections, v.styles.Help.Render(v.help.View(dashboardHelp{v.keys})))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
