package estimate

import (
	"github.com/kadro/pricing-estimator/internal/models"
)

// NextID applies the catalog id rule: one more than the largest id present,
// or 1 for an empty collection. Ids freed by deleting the largest entry are
// handed out again.
func NextID(ids []int) int {
	if len(ids) == 0 {
		return 1
	}
	highest := ids[0]
	for _, id := range ids[1:] {
		highest = max(highest, id)
	}
	return highest + 1
}

func NextTaskID(tasks []models.Task) int {
	ids := make([]int, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return NextID(ids)
}

// NextTemplateTaskID numbers a new task within one template.
func NextTemplateTaskID(tasks []models.TaskDef) int {
	ids := make([]int, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return NextID(ids)
}

// TemplateTotals prices a template at the roles' default rates. Tasks whose
// role is gone still count toward the days but add no cost.
func TemplateTotals(tmpl models.Template, roles []models.Role) Estimate {
	return Compute(InstantiateTasks(tmpl), nil, nil, NewIndex(roles, nil))
}

// InstantiateTasks copies a template's tasks into a fresh project task list
// numbered from 1 with no resource assigned.
func InstantiateTasks(tmpl models.Template) []models.Task {
	tasks := make([]models.Task, len(tmpl.Tasks))
	for i, def := range tmpl.Tasks {
		tasks[i] = models.Task{
			ID:           i + 1,
			Description:  def.Description,
			EstimateDays: def.EstimateDays,
			RoleID:       def.RoleID,
		}
	}
	return tasks
}

// NewProjectFromTemplate builds an unsaved draft project from a template
// snapshot with the default margins.
func NewProjectFromTemplate(name string, tmpl models.Template) models.Project {
	templateID := tmpl.ID
	minMargin, maxMargin := DefaultMinMargin, DefaultMaxMargin
	return models.Project{
		Name:       name,
		Platform:   tmpl.Platform,
		TemplateID: &templateID,
		Status:     models.ProjectStatusDraft,
		Tasks:      InstantiateTasks(tmpl),
		MinMargin:  &minMargin,
		MaxMargin:  &maxMargin,
	}
}
