package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/kadro/pricing-estimator/internal/models"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string { return i.project.Name }
func (i projectItem) Description() string {
	return fmt.Sprintf("%s · %s · %s", i.project.Platform, i.project.Status, formatMoney(i.project.MaxPrice))
}
func (i projectItem) FilterValue() string { return i.project.Name }

type projectsLoadedMsg struct {
	projects  []models.Project
	templates []models.Template
}

type projectDeletedMsg struct{}

// blankTemplate is the template choice that starts a project with no tasks.
const blankTemplate = 0

type ProjectListView struct {
	api    API
	list   list.Model
	help   help.Model
	keys   *KeyMap
	styles *Styles
	width  int
	height int
	loaded bool

	templates []models.Template

	form           *huh.Form
	formName       string
	formTemplateID int

	confirmingDelete bool
	deleteTarget     models.Project

	err error
}

func NewProjectListView(api API, keys *KeyMap, s *Styles) *ProjectListView {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(Current.Primary).
		BorderForeground(Current.Primary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(Current.ForegroundDim).
		BorderForeground(Current.Primary)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.Styles.Title = s.Title
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return &ProjectListView{
		api:    api,
		list:   l,
		help:   help.New(),
		keys:   keys,
		styles: s,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

func (v *ProjectListView) loadProjects() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	projects, err := v.api.ListProjects(ctx)
	if err != nil {
		return errMsg{err}
	}
	templates, err := v.api.ListTemplates(ctx)
	if err != nil {
		return errMsg{err}
	}
	return projectsLoadedMsg{projects: projects, templates: templates}
}

func (v *ProjectListView) capturing() bool {
	return v.form != nil || v.confirmingDelete || v.list.FilterState() == list.Filtering
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if v.form != nil {
		return v.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.list.SetSize(msg.Width-2, msg.Height-4)
		return v, nil

	case projectsLoadedMsg:
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		v.templates = msg.templates
		v.loaded = true
		v.err = nil
		return v, v.list.SetItems(items)

	case projectDeletedMsg:
		return v, v.loadProjects

	case errMsg:
		v.err = msg.err
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Refresh):
			return v, v.loadProjects
		case key.Matches(msg, v.keys.New):
			return v, v.openForm()
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTarget = item.project
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTarget.ID
		return v, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			if err := v.api.DeleteProject(ctx, id); err != nil {
				return errMsg{err}
			}
			return projectDeletedMsg{}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *ProjectListView) openForm() tea.Cmd {
	v.formName = ""
	v.formTemplateID = blankTemplate

	options := make([]huh.Option[int], 0, len(v.templates)+1)
	for _, t := range v.templates {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%d tasks)", t.Name, len(t.Tasks)), t.ID))
	}
	options = append(options, huh.NewOption("Blank project", blankTemplate))
	if len(v.templates) > 0 {
		v.formTemplateID = v.templates[0].ID
	}

	v.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Placeholder("Acme storefront").
				Value(&v.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewSelect[int]().
				Title("Template").
				Options(options...).
				Value(&v.formTemplateID),
		),
	).WithWidth(max(v.width-4, 40))

	return v.form.Init()
}

func (v *ProjectListView) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, v.keys.Back) {
		v.form = nil
		return v, nil
	}

	mdl, cmd := v.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		v.form = f
	}

	switch v.form.State {
	case huh.StateCompleted:
		v.form = nil
		return v, v.createProject(strings.TrimSpace(v.formName), v.formTemplateID)
	case huh.StateAborted:
		v.form = nil
		return v, nil
	}
	return v, cmd
}

// createProject instantiates the template on the server, or creates an
// empty draft for blankTemplate, and opens the new project.
func (v *ProjectListView) createProject(name string, templateID int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var project models.Project
		var err error
		if templateID == blankTemplate {
			project, err = v.api.CreateProject(ctx, models.Project{
				Name:   name,
				Status: models.ProjectStatusDraft,
				Tasks:  []models.Task{},
			})
		} else {
			project, err = v.api.InstantiateTemplate(ctx, templateID, name)
		}
		if err != nil {
			return errMsg{err}
		}
		return SelectedProject{Project: project}
	}
}

func (v *ProjectListView) View() string {
	if v.form != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			v.styles.Title.Render("New project"),
			"",
			v.form.View(),
		)
	}

	var b strings.Builder
	if !v.loaded && v.err == nil {
		b.WriteString(v.styles.TitleMuted.Render("Loading projects..."))
	} else {
		b.WriteString(v.list.View())
	}

	if v.confirmingDelete {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Delete %q? (y/n)", v.deleteTarget.Name)))
	}
	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(v.help.View(projectsHelp{v.keys})))
	return b.String()
}
