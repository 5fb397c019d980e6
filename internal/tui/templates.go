package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/kadro/pricing-estimator/internal/estimate"
	"github.com/kadro/pricing-estimator/internal/models"
)

type templatesLoadedMsg struct {
	templates []models.Template
	roles     []models.Role
}

type templateSavedMsg struct {
	template models.Template
}

// TemplatesView edits the task list of one template at a time. Every change
// writes the whole template back to the server.
type TemplatesView struct {
	api    API
	keys   *KeyMap
	styles *Styles
	help   help.Model

	templates []models.Template
	roles     []models.Role
	ix        *estimate.Index
	current   int
	cursor    int
	loaded    bool
	err       error
	width     int

	form       *huh.Form
	editingID  int
	formDesc   string
	formDays   string
	formRoleID int
}

func NewTemplatesView(api API, keys *KeyMap, s *Styles) *TemplatesView {
	return &TemplatesView{
		api:    api,
		keys:   keys,
		styles: s,
		help:   help.New(),
		ix:     estimate.NewIndex(nil, nil),
	}
}

func (v *TemplatesView) Init() tea.Cmd {
	return v.load
}

func (v *TemplatesView) load() tea.Msg {
	msg, err := withTimeout(func(ctx context.Context) (templatesLoadedMsg, error) {
		templates, err := v.api.ListTemplates(ctx)
		if err != nil {
			return templatesLoadedMsg{}, err
		}
		roles, err := v.api.ListRoles(ctx)
		if err != nil {
			return templatesLoadedMsg{}, err
		}
		return templatesLoadedMsg{templates: templates, roles: roles}, nil
	})
	if err != nil {
		return errMsg{err}
	}
	return msg
}

func (v *TemplatesView) capturing() bool { return v.form != nil }

// Template is the template being edited, if any are loaded.
func (v *TemplatesView) Template() (models.Template, bool) {
	if v.current >= len(v.templates) {
		return models.Template{}, false
	}
	return v.templates[v.current], true
}

func (v *TemplatesView) Totals() estimate.Estimate {
	tmpl, _ := v.Template()
	return estimate.TemplateTotals(tmpl, v.roles)
}

func (v *TemplatesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if v.form != nil {
		return v.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.help.Width = msg.Width

	case templatesLoadedMsg:
		v.templates = msg.templates
		v.roles = msg.roles
		v.ix = estimate.NewIndex(msg.roles, nil)
		v.loaded = true
		v.err = nil
		v.current = min(v.current, max(len(v.templates)-1, 0))
		v.clampCursor()

	case templateSavedMsg:
		if i := slices.IndexFunc(v.templates, func(t models.Template) bool { return t.ID == msg.template.ID }); i >= 0 {
			v.templates[i] = msg.template
		}
		v.clampCursor()

	case errMsg:
		v.err = msg.err

	case tea.KeyMsg:
		v.err = nil

		switch {
		case key.Matches(msg, v.keys.PrevItem):
			if v.current > 0 {
				v.current--
				v.cursor = 0
			}
		case key.Matches(msg, v.keys.NextItem):
			if v.current < len(v.templates)-1 {
				v.current++
				v.cursor = 0
			}
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, v.keys.Down):
			if tmpl, ok := v.Template(); ok && v.cursor < len(tmpl.Tasks)-1 {
				v.cursor++
			}
		case key.Matches(msg, v.keys.Refresh):
			return v, v.load
		case key.Matches(msg, v.keys.AddTask):
			return v, v.openForm(false)
		case key.Matches(msg, v.keys.Edit):
			return v, v.openForm(true)
		case key.Matches(msg, v.keys.RemoveRow):
			return v, v.removeTask()
		}
	}
	return v, nil
}

func (v *TemplatesView) clampCursor() {
	tmpl, _ := v.Template()
	v.cursor = min(v.cursor, max(len(tmpl.Tasks)-1, 0))
}

// saveTasks stores the template with a replacement task list.
func (v *TemplatesView) saveTasks(tasks []models.TaskDef) tea.Cmd {
	tmpl, ok := v.Template()
	if !ok {
		return nil
	}
	tmpl.Tasks = tasks

	return func() tea.Msg {
		saved, err := withTimeout(func(ctx context.Context) (models.Template, error) {
			return v.api.UpdateTemplate(ctx, tmpl)
		})
		if err != nil {
			return errMsg{err}
		}
		return templateSavedMsg{template: saved}
	}
}

func (v *TemplatesView) addTask(description string, days float64, roleID int) tea.Cmd {
	tmpl, ok := v.Template()
	if !ok {
		return nil
	}
	tasks := append(slices.Clone(tmpl.Tasks), models.TaskDef{
		ID:           estimate.NextTemplateTaskID(tmpl.Tasks),
		Description:  description,
		EstimateDays: days,
		RoleID:       roleID,
	})
	v.cursor = len(tasks) - 1
	return v.saveTasks(tasks)
}

func (v *TemplatesView) editTask(id int, description string, days float64, roleID int) tea.Cmd {
	tmpl, ok := v.Template()
	if !ok {
		return nil
	}
	tasks := slices.Clone(tmpl.Tasks)
	i := slices.IndexFunc(tasks, func(t models.TaskDef) bool { return t.ID == id })
	if i < 0 {
		return nil
	}
	tasks[i].Description = description
	tasks[i].EstimateDays = days
	tasks[i].RoleID = roleID
	return v.saveTasks(tasks)
}

func (v *TemplatesView) removeTask() tea.Cmd {
	tmpl, ok := v.Template()
	if !ok || v.cursor >= len(tmpl.Tasks) {
		return nil
	}
	tasks := slices.Delete(slices.Clone(tmpl.Tasks), v.cursor, v.cursor+1)
	return v.saveTasks(tasks)
}

func (v *TemplatesView) openForm(edit bool) tea.Cmd {
	tmpl, ok := v.Template()
	if !ok {
		v.err = errors.New("no templates loaded")
		return nil
	}
	if len(v.roles) == 0 {
		v.err = errors.New("roles are not loaded yet")
		return nil
	}

	v.editingID = 0
	v.formDesc = ""
	v.formDays = "1"
	v.formRoleID = v.roles[0].ID
	if edit {
		if v.cursor >= len(tmpl.Tasks) {
			return nil
		}
		t := tmpl.Tasks[v.cursor]
		v.editingID = t.ID
		v.formDesc = t.Description
		v.formDays = strconv.FormatFloat(t.EstimateDays, 'f', -1, 64)
		v.formRoleID = t.RoleID
	}

	options := make([]huh.Option[int], len(v.roles))
	for i, r := range v.roles {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s/h)", r.Name, formatWholeMoney(r.DefaultRate)), r.ID)
	}

	v.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task description").
				Value(&v.formDesc).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("description is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Estimate (days)").
				Value(&v.formDays).
				Validate(func(s string) error {
					d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || d < 0 {
						return errors.New("enter a number of days")
					}
					return nil
				}),
			huh.NewSelect[int]().
				Title("Role").
				Options(options...).
				Value(&v.formRoleID),
		),
	).WithWidth(max(v.width-4, 40))

	return v.form.Init()
}

func (v *TemplatesView) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		days, _ := strconv.ParseFloat(strings.TrimSpace(v.formDays), 64)
		desc := strings.TrimSpace(v.formDesc)
		if v.editingID != 0 {
			return v, v.editTask(v.editingID, desc, days, v.formRoleID)
		}
		return v, v.addTask(desc, days, v.formRoleID)
	case huh.StateAborted:
		v.form = nil
		return v, nil
	}
	return v, cmd
}

const templateRowFormat = "%-36s %6s %7s %-22s"

func (v *TemplatesView) View() string {
	tmpl, ok := v.Template()

	if v.form != nil {
		title := "Add task to " + tmpl.Name
		if v.editingID != 0 {
			title = "Edit task in " + tmpl.Name
		}
		return lipgloss.JoinVertical(lipgloss.Left, v.styles.Title.Render(title), "", v.form.View())
	}
	if !v.loaded && v.err == nil {
		return v.styles.TitleMuted.Render("Loading templates...")
	}

	tabs := make([]string, len(v.templates))
	for i, t := range v.templates {
		if i == v.current {
			tabs[i] = v.styles.TabActive.Render(t.Name)
		} else {
			tabs[i] = v.styles.Tab.Render(t.Name)
		}
	}

	sections := []string{v.styles.Title.Render("Templates"), lipgloss.JoinHorizontal(lipgloss.Top, tabs...), ""}

	switch {
	case !ok:
		sections = append(sections, v.styles.TitleMuted.Render("No templates."))
	case len(tmpl.Tasks) == 0:
		sections = append(sections, v.styles.TitleMuted.Render("No tasks. Press t to add one."))
	default:
		rows := []string{v.styles.Header.Render(fmt.Sprintf(templateRowFormat, "Task", "Days", "Hours", "Role"))}
		for i, t := range tmpl.Tasks {
			line := fmt.Sprintf(templateRowFormat,
				truncate(t.Description, 36),
				formatDays(t.EstimateDays),
				formatDays(t.EstimateDays*estimate.HoursPerDay),
				truncate(v.ix.RoleName(t.RoleID), 22),
			)
			if i == v.cursor {
				rows = append(rows, v.styles.RowSelected.Render(line))
			} else {
				rows = append(rows, v.styles.Row.Render(line))
			}
		}
		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	if ok {
		totals := v.Totals()
		line := func(label, value string) string {
			return v.styles.Label.Render(label) + value
		}
		sections = append(sections, "", v.styles.Totals.Render(lipgloss.JoinVertical(lipgloss.Left,
			line("Total days", formatDays(totals.TotalDays)),
			line("Total hours", formatDays(totals.TotalHours)),
			line("Total cost", v.styles.Price.Render(formatWholeMoney(totals.TotalCost))),
		)))
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	}
	sections = append(sections, v.styles.Help.Render(v.help.View(templatesHelp{v.keys})))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
