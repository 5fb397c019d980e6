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

const (
	dayStep    = 0.5
	marginStep = 5.0
)

type ratesLoadedMsg struct {
	roles     []models.Role
	resources []models.Resource
}

// projectSavedMsg carries the server's copy and the view's edit count at
// the time the save was issued.
type projectSavedMsg struct {
	project models.Project
	edits   int
}

// EstimateView edits one project's tasks and margins. Totals are
// recomputed from the loaded roles and resources on every render.
type EstimateView struct {
	api     API
	keys    *KeyMap
	styles  *Styles
	help    help.Model
	project models.Project
	roles   []models.Role
	ix      *estimate.Index
	cursor  int
	edits   int
	dirty   bool
	saving  bool
	notice  string
	err     error
	width   int
	height  int

	form       *huh.Form
	formDesc   string
	formDays   string
	formRoleID int
}

func NewEstimateView(api API, keys *KeyMap, s *Styles, project models.Project) *EstimateView {
	return &EstimateView{
		api:     api,
		keys:    keys,
		styles:  s,
		help:    help.New(),
		project: project,
		ix:      estimate.NewIndex(nil, nil),
	}
}

func (v *EstimateView) Init() tea.Cmd {
	return v.loadRates
}

func (v *EstimateView) loadRates() tea.Msg {
	rates, err := withTimeout(func(ctx context.Context) (ratesLoadedMsg, error) {
		roles, err := v.api.ListRoles(ctx)
		if err != nil {
			return ratesLoadedMsg{}, err
		}
		resources, err := v.api.ListResources(ctx)
		if err != nil {
			return ratesLoadedMsg{}, err
		}
		return ratesLoadedMsg{roles: roles, resources: resources}, nil
	})
	if err != nil {
		return errMsg{err}
	}
	return rates
}

// Estimate is the live estimate of the project as currently edited.
func (v *EstimateView) Estimate() estimate.Estimate {
	return liveEstimate(v.project, v.ix)
}

func (v *EstimateView) Project() models.Project {
	return v.project
}

func (v *EstimateView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if v.form != nil {
		return v.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.help.Width = msg.Width
		return v, nil

	case ratesLoadedMsg:
		v.roles = msg.roles
		v.ix = estimate.NewIndex(msg.roles, msg.resources)
		return v, nil

	case projectSavedMsg:
		// Keep edits made while the request was in flight; only the
		// server-owned fields come back.
		v.project.CreatedAt = msg.project.CreatedAt
		v.project.UpdatedAt = msg.project.UpdatedAt
		v.project.TotalCost = msg.project.TotalCost
		v.project.MinPrice = msg.project.MinPrice
		v.project.MaxPrice = msg.project.MaxPrice
		v.saving = false
		v.dirty = v.edits != msg.edits
		v.notice = "Saved"
		return v, nil

	case errMsg:
		v.saving = false
		v.err = msg.err
		return v, nil

	case tea.KeyMsg:
		v.notice = ""
		v.err = nil

		switch {
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToProjects{} }
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.project.Tasks)-1 {
				v.cursor++
			}
		case key.Matches(msg, v.keys.MoreDays):
			v.adjustDays(dayStep)
		case key.Matches(msg, v.keys.LessDays):
			v.adjustDays(-dayStep)
		case key.Matches(msg, v.keys.Resource):
			v.cycleResource()
		case key.Matches(msg, v.keys.MinDown):
			v.adjustMinMargin(-marginStep)
		case key.Matches(msg, v.keys.MinUp):
			v.adjustMinMargin(marginStep)
		case key.Matches(msg, v.keys.MaxDown):
			v.adjustMaxMargin(-marginStep)
		case key.Matches(msg, v.keys.MaxUp):
			v.adjustMaxMargin(marginStep)
		case key.Matches(msg, v.keys.Approve):
			return v, v.toggleApproved()
		case key.Matches(msg, v.keys.AddTask):
			return v, v.openForm()
		case key.Matches(msg, v.keys.RemoveRow):
			v.removeTask()
		case key.Matches(msg, v.keys.Save):
			return v, v.save()
		}
	}
	return v, nil
}

func (v *EstimateView) selected() *models.Task {
	if v.cursor < 0 || v.cursor >= len(v.project.Tasks) {
		return nil
	}
	return &v.project.Tasks[v.cursor]
}

// adjustDays moves the selected task's estimate by delta days, never below
// zero.
func (v *EstimateView) adjustDays(delta float64) {
	t := v.selected()
	if t == nil {
		return
	}
	t.EstimateDays = max(t.EstimateDays+delta, 0)
	v.touch()
}

// cycleResource steps the selected task through the resources holding its
// role and then back to unassigned.
func (v *EstimateView) cycleResource() {
	t := v.selected()
	if t == nil {
		return
	}

	options := v.ix.AssignableResources(t.RoleID)
	pos := -1
	if t.ResourceID != nil {
		pos = slices.IndexFunc(options, func(r models.Resource) bool { return r.ID == *t.ResourceID })
	}

	next := pos + 1
	if next >= len(options) {
		t.ResourceID = nil
	} else {
		id := options[next].ID
		t.ResourceID = &id
	}
	v.touch()
}

func (v *EstimateView) adjustMinMargin(delta float64) {
	m := max(v.Estimate().MinMargin+delta, 0)
	v.project.MinMargin = &m
	v.touch()
}

func (v *EstimateView) adjustMaxMargin(delta float64) {
	m := max(v.Estimate().MaxMargin+delta, 0)
	v.project.MaxMargin = &m
	v.touch()
}

// toggleApproved flips the status and saves right away, pending edits
// included.
func (v *EstimateView) toggleApproved() tea.Cmd {
	if v.project.Status == models.ProjectStatusApproved {
		v.project.Status = models.ProjectStatusDraft
	} else {
		v.project.Status = models.ProjectStatusApproved
	}
	v.touch()
	return v.save()
}

func (v *EstimateView) touch() {
	v.edits++
	v.dirty = true
}

func (v *EstimateView) addTask(description string, days float64, roleID int) {
	v.project.Tasks = append(v.project.Tasks, models.Task{
		ID:           estimate.NextTaskID(v.project.Tasks),
		Description:  description,
		EstimateDays: days,
		RoleID:       roleID,
	})
	v.cursor = len(v.project.Tasks) - 1
	v.touch()
}

func (v *EstimateView) removeTask() {
	if v.selected() == nil {
		return
	}
	v.project.Tasks = slices.Delete(v.project.Tasks, v.cursor, v.cursor+1)
	if v.cursor >= len(v.project.Tasks) {
		v.cursor = max(len(v.project.Tasks)-1, 0)
	}
	v.touch()
}

// save stores the project with its totals refreshed from the live estimate.
func (v *EstimateView) save() tea.Cmd {
	project := v.project
	project.Tasks = slices.Clone(v.project.Tasks)
	estimate.ApplyEstimate(&project, v.Estimate())
	v.saving = true
	edits := v.edits

	return func() tea.Msg {
		saved, err := withTimeout(func(ctx context.Context) (models.Project, error) {
			return v.api.UpdateProject(ctx, project)
		})
		if err != nil {
			return errMsg{err}
		}
		return projectSavedMsg{project: saved, edits: edits}
	}
}

func (v *EstimateView) openForm() tea.Cmd {
	if len(v.roles) == 0 {
		v.err = errors.New("roles are not loaded yet")
		return nil
	}

	v.formDesc = ""
	v.formDays = "1"
	v.formRoleID = v.roles[0].ID
	if t := v.selected(); t != nil {
		v.formRoleID = t.RoleID
	}

	options := make([]huh.Option[int], len(v.roles))
	for i, r := range v.roles {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s/h)", r.Name, formatMoney(r.DefaultRate)), r.ID)
	}

	v.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Description").
				Value(&v.formDesc).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("description is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Days").
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

func (v *EstimateView) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		v.addTask(strings.TrimSpace(v.formDesc), days, v.formRoleID)
		return v, nil
	case huh.StateAborted:
		v.form = nil
		return v, nil
	}
	return v, cmd
}

func (v *EstimateView) View() string {
	if v.form != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			v.styles.Title.Render("Add task to "+v.project.Name),
			"",
			v.form.View(),
		)
	}

	title := v.styles.Title.Render(v.project.Name)
	meta := v.styles.TitleMuted.Render(v.project.Platform) + "  " + v.styles.Status(string(v.project.Status))
	if v.dirty {
		meta += "  " + v.styles.Dirty.Render("● unsaved")
	}

	sections := []string{title, meta, "", v.renderTasks(), "", v.renderTotals()}

	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.saving:
		sections = append(sections, v.styles.TitleMuted.Render("Saving..."))
	case v.notice != "":
		sections = append(sections, v.styles.Price.Render(v.notice))
	}
	sections = append(sections, v.styles.Help.Render(v.help.View(estimateHelp{v.keys})))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

const taskRowFormat = "%-32s %-20s %-18s %6s %9s %12s"

func (v *EstimateView) renderTasks() string {
	if len(v.project.Tasks) == 0 {
		return v.styles.TitleMuted.Render("No tasks. Press t to add one.")
	}

	rows := []string{v.styles.Header.Render(fmt.Sprintf(taskRowFormat,
		"Task", "Role", "Resource", "Days", "Rate", "Cost"))}

	for i, t := range v.project.Tasks {
		rate := v.ix.HourlyRate(t)
		line := fmt.Sprintf(taskRowFormat,
			truncate(t.Description, 32),
			truncate(v.ix.RoleName(t.RoleID), 20),
			truncate(v.ix.ResourceName(t.ResourceID), 18),
			formatDays(t.EstimateDays),
			formatMoney(rate),
			formatMoney(t.EstimateDays*estimate.HoursPerDay*rate),
		)
		if i == v.cursor {
			rows = append(rows, v.styles.RowSelected.Render(line))
		} else {
			rows = append(rows, v.styles.Row.Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *EstimateView) renderTotals() string {
	est := v.Estimate()
	line := func(label, value string) string {
		return v.styles.Label.Render(label) + value
	}

	return v.styles.Totals.Render(lipgloss.JoinVertical(lipgloss.Left,
		line("Total days", formatDays(est.TotalDays)),
		line("Total hours", formatDays(est.TotalHours)),
		line("Total cost", formatMoney(est.TotalCost)),
		line("Min margin", formatPercent(est.MinMargin)),
		line("Max margin", formatPercent(est.MaxMargin)),
		line("Price range", v.styles.Price.Render(formatMoney(est.MinPrice)+" to "+formatMoney(est.MaxPrice))),
	))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
