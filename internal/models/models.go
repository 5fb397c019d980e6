package models

import (
	"time"
)

type ProjectStatus string

const (
	ProjectStatusDraft    ProjectStatus = "draft"
	ProjectStatusInReview ProjectStatus = "in_review"
	ProjectStatusApproved ProjectStatus = "approved"
)

// Role is a labor category with a default hourly rate.
type Role struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	DefaultRate float64 `json:"defaultRate"`
}

// Resource is a staff member assigned to a role. LoadedRate overrides the
// role's default rate on any task the resource is assigned to.
type Resource struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	RoleID     int     `json:"roleId"`
	LoadedRate float64 `json:"loadedRate"`
}

// TaskDef is a template task. Its ID is scoped to the owning template.
type TaskDef struct {
	ID           int     `json:"id"`
	Description  string  `json:"description"`
	EstimateDays float64 `json:"estimateDays"`
	RoleID       int     `json:"roleId"`
}

type Template struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Platform string    `json:"platform"`
	Tasks    []TaskDef `json:"tasks"`
}

// Task is a project task. Its ID is scoped to the owning project.
type Task struct {
	ID           int     `json:"id"`
	Description  string  `json:"description"`
	EstimateDays float64 `json:"estimateDays"`
	RoleID       int     `json:"roleId"`
	ResourceID   *int    `json:"resourceId"`
}

// Project is an estimate instantiated from a template. TotalCost, MinPrice
// and MaxPrice are cached results of the last computation and may be stale
// until the project is recalculated.
type Project struct {
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	Platform   string        `json:"platform"`
	TemplateID *int          `json:"templateId,omitempty"`
	Status     ProjectStatus `json:"status"`
	Tasks      []Task        `json:"tasks"`
	MinMargin  *float64      `json:"minMargin,omitempty"`
	MaxMargin  *float64      `json:"maxMargin,omitempty"`
	TotalCost  float64       `json:"totalCost"`
	MinPrice   float64       `json:"minPrice"`
	MaxPrice   float64       `json:"maxPrice"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  *time.Time    `json:"updatedAt,omitempty"`
}

// Dashboard summarizes the catalogs for the landing page.
type Dashboard struct {
	TotalProjects  int       `json:"totalProjects"`
	TotalResources int       `json:"totalResources"`
	TotalTemplates int       `json:"totalTemplates"`
	RecentProjects []Project `json:"recentProjects"`
}
