// Package tui is the terminal front end of the estimator. It reads and
// edits the catalogs over the REST API, recomputes estimates locally on
// every edit and saves projects back with their computed totals.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kadro/pricing-estimator/internal/estimate"
	"github.com/kadro/pricing-estimator/internal/models"
)

// API is the part of the REST client the UI needs.
type API interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
	CreateRole(ctx context.Context, r models.Role) (models.Role, error)
	UpdateRole(ctx context.Context, r models.Role) (models.Role, error)
	DeleteRole(ctx context.Context, id int) error

	ListResources(ctx context.Context) ([]models.Resource, error)
	CreateResource(ctx context.Context, r models.Resource) (models.Resource, error)
	UpdateResource(ctx context.Context, r models.Resource) (models.Resource, error)
	DeleteResource(ctx context.Context, id int) error

	ListTemplates(ctx context.Context) ([]models.Template, error)
	UpdateTemplate(ctx context.Context, t models.Template) (models.Template, error)
	InstantiateTemplate(ctx context.Context, templateID int, name string) (models.Project, error)

	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id int) (models.Project, error)
	CreateProject(ctx context.Context, p models.Project) (models.Project, error)
	UpdateProject(ctx context.Context, p models.Project) (models.Project, error)
	DeleteProject(ctx context.Context, id int) error
	GetEstimate(ctx context.Context, projectID int) (estimate.Estimate, error)

	Dashboard(ctx context.Context) (models.Dashboard, error)
}

const requestTimeout = 10 * time.Second

type View int

const (
	ViewDashboard View = iota
	ViewProjects
	ViewTemplates
	ViewResources
	ViewEstimate
)

var tabNames = []string{"Dashboard", "Projects", "Templates", "Resources"}

type SelectedProject struct {
	Project models.Project
}

type BackToProjects struct{}

type errMsg struct {
	err error
}

// tabView is a top level screen. While it is capturing input, keys that
// would switch tabs or quit go to the view instead.
type tabView interface {
	tea.Model
	capturing() bool
}

type App struct {
	api         API
	keys        *KeyMap
	styles      *Styles
	currentView View
	dashboard   *DashboardView
	projectList *ProjectListView
	templates   *TemplatesView
	resources   *ResourcesView
	estimate    *EstimateView
	width       int
	height      int
}

func NewApp(api API) *App {
	keys := DefaultKeyMap()
	s := NewStyles()
	return &App{
		api:         api,
		keys:        keys,
		styles:      s,
		currentView: ViewDashboard,
		dashboard:   NewDashboardView(api, keys, s),
		projectList: NewProjectListView(api, keys, s),
		templates:   NewTemplatesView(api, keys, s),
		resources:   NewResourcesView(api, keys, s),
	}
}

func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

func (a *App) tab() tabView {
	switch a.currentView {
	case ViewDashboard:
		return a.dashboard
	case ViewProjects:
		return a.projectList
	case ViewTemplates:
		return a.templates
	case ViewResources:
		return a.resources
	}
	return nil
}

// switchTab shows another screen and reloads it, catalogs may have changed
// elsewhere.
func (a *App) switchTab(v View) tea.Cmd {
	a.currentView = v
	a.estimate = nil
	return a.tab().Init()
}

func (a *App) openProject(project models.Project) tea.Cmd {
	a.currentView = ViewEstimate
	a.estimate = NewEstimateView(a.api, a.keys, a.styles, project)

	return tea.Batch(
		a.estimate.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Tab views persist, keep their sizes current. The tab bar takes
		// two lines.
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-2, 0)}
		a.dashboard.Update(inner)
		a.projectList.Update(inner)
		a.templates.Update(inner)
		a.resources.Update(inner)
		if a.estimate != nil {
			a.estimate.Update(msg)
		}
		return a, nil

	case SelectedProject:
		return a, a.openProject(msg.Project)

	case BackToProjects:
		return a, a.switchTab(ViewProjects)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if tab := a.tab(); tab != nil && !tab.capturing() {
			switch {
			case key.Matches(msg, a.keys.Quit):
				return a, tea.Quit
			case key.Matches(msg, a.keys.TabDashboard):
				return a, a.switchTab(ViewDashboard)
			case key.Matches(msg, a.keys.TabProjects):
				return a, a.switchTab(ViewProjects)
			case key.Matches(msg, a.keys.TabTemplates):
				return a, a.switchTab(ViewTemplates)
			case key.Matches(msg, a.keys.TabResources):
				return a, a.switchTab(ViewResources)
			}
		}
	}

	var cmd tea.Cmd
	if a.currentView == ViewEstimate {
		_, cmd = a.estimate.Update(msg)
	} else {
		_, cmd = a.tab().Update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	if a.currentView == ViewEstimate && a.estimate != nil {
		return a.estimate.View()
	}

	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if View(i) == a.currentView {
			tabs[i] = a.styles.TabActive.Render(label)
		} else {
			tabs[i] = a.styles.Tab.Render(label)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
		a.tab().View(),
	)
}

// Run starts the program on the terminal's alternate screen.
func Run(api API) error {
	_, err := tea.NewProgram(NewApp(api), tea.WithAltScreen()).Run()
	return err
}

func withTimeout[T any](fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return fn(ctx)
}

// liveEstimate is the engine run the views share.
func liveEstimate(p models.Project, ix *estimate.Index) estimate.Estimate {
	return estimate.Compute(p.Tasks, p.MinMargin, p.MaxMargin, ix)
}
