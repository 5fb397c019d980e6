// Package estimate computes project cost and price ranges from a task list
// and the role/resource catalogs. Everything here is pure: no I/O, no
// errors, and dangling references resolve to a zero rate.
package estimate

import (
	"github.com/kadro/pricing-estimator/internal/models"
)

const (
	HoursPerDay      = 8
	DefaultMinMargin = 30.0
	DefaultMaxMargin = 40.0
)

type Estimate struct {
	TotalCost  float64 `json:"totalCost"`
	TotalDays  float64 `json:"totalDays"`
	TotalHours float64 `json:"totalHours"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
	MinMargin  float64 `json:"minMargin"`
	MaxMargin  float64 `json:"maxMargin"`
}

// Index resolves role and resource references by id. When a catalog holds
// duplicate ids the first entry wins.
type Index struct {
	roles     map[int]models.Role
	resources map[int]models.Resource
	resList   []models.Resource
}

func NewIndex(roles []models.Role, resources []models.Resource) *Index {
	ix := &Index{
		roles:     make(map[int]models.Role, len(roles)),
		resources: make(map[int]models.Resource, len(resources)),
		resList:   resources,
	}
	for _, r := range roles {
		if _, ok := ix.roles[r.ID]; !ok {
			ix.roles[r.ID] = r
		}
	}
	for _, r := range resources {
		if _, ok := ix.resources[r.ID]; !ok {
			ix.resources[r.ID] = r
		}
	}
	return ix
}

func (ix *Index) Role(id int) (models.Role, bool) {
	r, ok := ix.roles[id]
	return r, ok
}

func (ix *Index) Resource(id int) (models.Resource, bool) {
	r, ok := ix.resources[id]
	return r, ok
}

// RoleName returns "Unknown" for ids that no longer resolve.
func (ix *Index) RoleName(id int) string {
	if r, ok := ix.roles[id]; ok {
		return r.Name
	}
	return "Unknown"
}

func (ix *Index) ResourceName(id *int) string {
	if id == nil {
		return ""
	}
	if r, ok := ix.resources[*id]; ok {
		return r.Name
	}
	return ""
}

// AssignableResources lists the resources that may be put on a task of the
// given role, in catalog order.
func (ix *Index) AssignableResources(roleID int) []models.Resource {
	var out []models.Resource
	for _, r := range ix.resList {
		if r.RoleID == roleID {
			out = append(out, r)
		}
	}
	return out
}

// HourlyRate returns the assigned resource's loaded rate, else the role's
// default rate, else 0.
func (ix *Index) HourlyRate(task models.Task) float64 {
	if task.ResourceID != nil {
		if r, ok := ix.resources[*task.ResourceID]; ok {
			return r.LoadedRate
		}
	}
	if r, ok := ix.roles[task.RoleID]; ok {
		return r.DefaultRate
	}
	return 0
}

func ResolveHourlyRate(task models.Task, roles []models.Role, resources []models.Resource) float64 {
	return NewIndex(roles, resources).HourlyRate(task)
}

// Compute totals the task list. Nil margins fall back to the defaults; an
// explicit zero margin is honored.
func Compute(tasks []models.Task, minMargin, maxMargin *float64, ix *Index) Estimate {
	est := Estimate{
		MinMargin: marginOr(minMargin, DefaultMinMargin),
		MaxMargin: marginOr(maxMargin, DefaultMaxMargin),
	}
	for _, t := range tasks {
		est.TotalDays += t.EstimateDays
		est.TotalCost += t.EstimateDays * HoursPerDay * ix.HourlyRate(t)
	}
	est.TotalHours = est.TotalDays * HoursPerDay
	est.MinPrice = est.TotalCost * (1 + est.MinMargin/100)
	est.MaxPrice = est.TotalCost * (1 + est.MaxMargin/100)
	return est
}

func ComputeProject(p models.Project, roles []models.Role, resources []models.Resource) Estimate {
	return Compute(p.Tasks, p.MinMargin, p.MaxMargin, NewIndex(roles, resources))
}

// ApplyEstimate copies the computed totals onto the project's cached fields.
func ApplyEstimate(p *models.Project, est Estimate) {
	p.TotalCost = est.TotalCost
	p.MinPrice = est.MinPrice
	p.MaxPrice = est.MaxPrice
}

func marginOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
