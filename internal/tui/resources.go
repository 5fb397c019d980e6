package tui

import (
	"context"
	"errors"
	"fmt"
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

type pane int

const (
	paneRoles pane = iota
	paneResources
)

type staffLoadedMsg struct {
	roles     []models.Role
	resources []models.Resource
}

type staffChangedMsg struct{}

// ResourcesView manages the role catalog and the people assigned to roles.
type ResourcesView struct {
	api    API
	keys   *KeyMap
	styles *Styles
	help   help.Model

	roles     []models.Role
	resources []models.Resource
	ix        *estimate.Index
	pane      pane
	cursor    [2]int
	loaded    bool
	err       error
	width     int

	form       *huh.Form
	editingID  int
	formName   string
	formRate   string
	formRoleID int

	confirmingDelete bool
}

func NewResourcesView(api API, keys *KeyMap, s *Styles) *ResourcesView {
	return &ResourcesView{
		api:    api,
		keys:   keys,
		styles: s,
		help:   help.New(),
		ix:     estimate.NewIndex(nil, nil),
	}
}

func (v *ResourcesView) Init() tea.Cmd {
	return v.load
}

func (v *ResourcesView) load() tea.Msg {
	msg, err := withTimeout(func(ctx context.Context) (staffLoadedMsg, error) {
		roles, err := v.api.ListRoles(ctx)
		if err != nil {
			return staffLoadedMsg{}, err
		}
		resources, err := v.api.ListResources(ctx)
		if err != nil {
			return staffLoadedMsg{}, err
		}
		return staffLoadedMsg{roles: roles, resources: resources}, nil
	})
	if err != nil {
		return errMsg{err}
	}
	return msg
}

func (v *ResourcesView) capturing() bool {
	return v.form != nil || v.confirmingDelete
}

func (v *ResourcesView) rows() int {
	if v.pane == paneRoles {
		return len(v.roles)
	}
	return len(v.resources)
}

func (v *ResourcesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if v.form != nil {
		return v.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.help.Width = msg.Width

	case staffLoadedMsg:
		v.roles = msg.roles
		v.resources = msg.resources
		v.ix = estimate.NewIndex(msg.roles, msg.resources)
		v.loaded = true
		v.err = nil
		v.cursor[paneRoles] = min(v.cursor[paneRoles], max(len(v.roles)-1, 0))
		v.cursor[paneResources] = min(v.cursor[paneResources], max(len(v.resources)-1, 0))

	case staffChangedMsg:
		return v, v.load

	case errMsg:
		v.err = msg.err

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		v.err = nil

		switch {
		case key.Matches(msg, v.keys.NextPane):
			v.pane = 1 - v.pane
		case key.Matches(msg, v.keys.Up):
			if v.cursor[v.pane] > 0 {
				v.cursor[v.pane]--
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor[v.pane] < v.rows()-1 {
				v.cursor[v.pane]++
			}
		case key.Matches(msg, v.keys.Refresh):
			return v, v.load
		case key.Matches(msg, v.keys.New):
			return v, v.openForm(false)
		case key.Matches(msg, v.keys.Edit):
			return v, v.openForm(true)
		case key.Matches(msg, v.keys.Delete):
			if v.rows() > 0 {
				v.confirmingDelete = true
			}
		}
	}
	return v, nil
}

func (v *ResourcesView) selectedRole() (models.Role, bool) {
	i := v.cursor[paneRoles]
	if i >= len(v.roles) {
		return models.Role{}, false
	}
	return v.roles[i], true
}

func (v *ResourcesView) selectedResource() (models.Resource, bool) {
	i := v.cursor[paneResources]
	if i >= len(v.resources) {
		return models.Resource{}, false
	}
	return v.resources[i], true
}

func (v *ResourcesView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, v.deleteSelected()
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *ResourcesView) deleteSelected() tea.Cmd {
	var del func(ctx context.Context) error
	switch v.pane {
	case paneRoles:
		r, ok := v.selectedRole()
		if !ok {
			return nil
		}
		del = func(ctx context.Context) error { return v.api.DeleteRole(ctx, r.ID) }
	case paneResources:
		r, ok := v.selectedResource()
		if !ok {
			return nil
		}
		del = func(ctx context.Context) error { return v.api.DeleteResource(ctx, r.ID) }
	}
	return v.change(del)
}

// change runs one write against the server and reloads both catalogs.
func (v *ResourcesView) change(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		_, err := withTimeout(func(ctx context.Context) (struct{}, error) {
			return struct{}{}, fn(ctx)
		})
		if err != nil {
			return errMsg{err}
		}
		return staffChangedMsg{}
	}
}

func (v *ResourcesView) saveRole(r models.Role) tea.Cmd {
	return v.change(func(ctx context.Context) error {
		var err error
		if r.ID == 0 {
			_, err = v.api.CreateRole(ctx, r)
		} else {
			_, err = v.api.UpdateRole(ctx, r)
		}
		return err
	})
}

func (v *ResourcesView) saveResource(r models.Resource) tea.Cmd {
	return v.change(func(ctx context.Context) error {
		var err error
		if r.ID == 0 {
			_, err = v.api.CreateResource(ctx, r)
		} else {
			_, err = v.api.UpdateResource(ctx, r)
		}
		return err
	})
}

func validateRate(s string) error {
	r, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || r < 0 {
		return errors.New("enter an hourly rate")
	}
	return nil
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("name is required")
	}
	return nil
}

// openForm starts the role or resource form of the active pane, filled
// from the selected row when editing.
func (v *ResourcesView) openForm(edit bool) tea.Cmd {
	v.editingID = 0
	v.formName = ""
	v.formRate = ""

	var fields []huh.Field
	switch v.pane {
	case paneRoles:
		if edit {
			r, ok := v.selectedRole()
			if !ok {
				return nil
			}
			v.editingID = r.ID
			v.formName = r.Name
			v.formRate = strconv.FormatFloat(r.DefaultRate, 'f', -1, 64)
		}
		fields = []huh.Field{
			huh.NewInput().Title("Role name").Value(&v.formName).Validate(validateName),
			huh.NewInput().Title("Default rate (per hour)").Value(&v.formRate).Validate(validateRate),
		}

	case paneResources:
		if len(v.roles) == 0 {
			v.err = errors.New("add a role before adding resources")
			return nil
		}
		v.formRoleID = v.roles[0].ID
		if edit {
			r, ok := v.selectedResource()
			if !ok {
				return nil
			}
			v.editingID = r.ID
			v.formName = r.Name
			v.formRoleID = r.RoleID
			v.formRate = strconv.FormatFloat(r.LoadedRate, 'f', -1, 64)
		}
		options := make([]huh.Option[int], len(v.roles))
		for i, r := range v.roles {
			options[i] = huh.NewOption(r.Name, r.ID)
		}
		fields = []huh.Field{
			huh.NewInput().Title("Name").Value(&v.formName).Validate(validateName),
			huh.NewSelect[int]().Title("Role").Options(options...).Value(&v.formRoleID),
			huh.NewInput().Title("Loaded rate (per hour)").Value(&v.formRate).Validate(validateRate),
		}
	}

	v.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(max(v.width-4, 40))
	return v.form.Init()
}

func (v *ResourcesView) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		return v, v.submitForm()
	case huh.StateAborted:
		v.form = nil
		return v, nil
	}
	return v, cmd
}

func (v *ResourcesView) submitForm() tea.Cmd {
	rate, _ := strconv.ParseFloat(strings.TrimSpace(v.formRate), 64)
	name := strings.TrimSpace(v.formName)

	if v.pane == paneRoles {
		return v.saveRole(models.Role{ID: v.editingID, Name: name, DefaultRate: rate})
	}
	return v.saveResource(models.Resource{ID: v.editingID, Name: name, RoleID: v.formRoleID, LoadedRate: rate})
}

const staffRowFormat = "%-26s %-22s %14s"

func (v *ResourcesView) View() string {
	if v.form != nil {
		what := "role"
		if v.pane == paneResources {
			what = "resource"
		}
		title := "New " + what
		if v.editingID != 0 {
			title = "Edit " + what
		}
		return lipgloss.JoinVertical(lipgloss.Left, v.styles.Title.Render(title), "", v.form.View())
	}
	if !v.loaded && v.err == nil {
		return v.styles.TitleMuted.Render("Loading roles and resources...")
	}

	roleRows := make([][3]string, len(v.roles))
	for i, r := range v.roles {
		roleRows[i] = [3]string{r.Name, "", formatWholeMoney(r.DefaultRate) + "/hour"}
	}
	resRows := make([][3]string, len(v.resources))
	for i, r := range v.resources {
		resRows[i] = [3]string{r.Name, v.ix.RoleName(r.RoleID), formatWholeMoney(r.LoadedRate) + "/hour"}
	}

	sections := []string{
		v.renderPane(paneRoles, "Roles", [3]string{"Role", "", "Default rate"}, roleRows,
			"No roles yet. Press n to add one."),
		"",
		v.renderPane(paneResources, "Resources", [3]string{"Name", "Role", "Loaded rate"}, resRows,
			"No resources yet. Add your first team member to get started!"),
	}

	if v.confirmingDelete {
		name := ""
		if v.pane == paneRoles {
			r, _ := v.selectedRole()
			name = r.Name
		} else {
			r, _ := v.selectedResource()
			name = r.Name
		}
		sections = append(sections, v.styles.Error.Render(fmt.Sprintf("Delete %q? (y/n)", name)))
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	}
	sections = append(sections, v.styles.Help.Render(v.help.View(resourcesHelp{v.keys})))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *ResourcesView) renderPane(p pane, title string, header [3]string, rows [][3]string, empty string) string {
	titleStyle := v.styles.TitleMuted
	if v.pane == p {
		titleStyle = v.styles.Title
	}
	out := []string{titleStyle.Render(title)}

	if len(rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(out, v.styles.TitleMuted.Render(empty))...)
	}

	out = append(out, v.styles.Header.Render(fmt.Sprintf(staffRowFormat, header[0], header[1], header[2])))
	for i, r := range rows {
		line := fmt.Sprintf(staffRowFormat, truncate(r[0], 26), truncate(r[1], 22), r[2])
		if v.pane == p && i == v.cursor[p] {
			out = append(out, v.styles.RowSelected.Render(line))
		} else {
			out = append(out, v.styles.Row.Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}
