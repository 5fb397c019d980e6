// Package catalog holds the roles, resources, templates and projects
// collections and persists each of them as a whole document.
package catalog

import (
	"context"
	"log"
	"slices"
	"time"

	"github.com/kadro/pricing-estimator/internal/estimate"
	"github.com/kadro/pricing-estimator/internal/models"
	"github.com/kadro/pricing-estimator/internal/storage"
)

const (
	RolesCollection     = "roles"
	ResourcesCollection = "resources"
	TemplatesCollection = "templates"
	ProjectsCollection  = "projects"
)

type Catalog struct {
	Roles     *Collection[models.Role]
	Resources *Collection[models.Resource]
	Templates *Collection[models.Template]
	Projects  *Collection[models.Project]
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used for createdAt/updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Open loads every collection from backend. Collections with no stored
// document are seeded with the default content and written immediately.
func Open(ctx context.Context, backend storage.Backend, opts ...Option) (*Catalog, error) {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Catalog{
		Roles: &Collection[models.Role]{
			name: RolesCollection, backend: backend, now: o.now,
			id:    func(r *models.Role) int { return r.ID },
			setID: func(r *models.Role, id int) { r.ID = id },
		},
		Resources: &Collection[models.Resource]{
			name: ResourcesCollection, backend: backend, now: o.now,
			id:    func(r *models.Resource) int { return r.ID },
			setID: func(r *models.Resource, id int) { r.ID = id },
		},
		Templates: &Collection[models.Template]{
			name: TemplatesCollection, backend: backend, now: o.now,
			id:    func(t *models.Template) int { return t.ID },
			setID: func(t *models.Template, id int) { t.ID = id },
		},
		Projects: &Collection[models.Project]{
			name: ProjectsCollection, backend: backend, now: o.now,
			id:    func(p *models.Project) int { return p.ID },
			setID: func(p *models.Project, id int) { p.ID = id },
			onCreate: func(p *models.Project, at time.Time) {
				p.CreatedAt = at
				if p.Status == "" {
					p.Status = models.ProjectStatusDraft
				}
			},
			onUpdate: func(p *models.Project, at time.Time) {
				p.UpdatedAt = &at
			},
			stamped: []string{"createdAt", "updatedAt"},
		},
	}

	if err := openCollection(ctx, c.Roles, DefaultRoles()); err != nil {
		return nil, err
	}
	if err := openCollection(ctx, c.Resources, []models.Resource{}); err != nil {
		return nil, err
	}
	if err := openCollection(ctx, c.Templates, DefaultTemplates()); err != nil {
		return nil, err
	}
	if err := openCollection(ctx, c.Projects, []models.Project{}); err != nil {
		return nil, err
	}
	return c, nil
}

func openCollection[T any](ctx context.Context, c *Collection[T], defaults []T) error {
	ok, err := c.load(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	log.Printf("Seeding %s with %d default entries", c.name, len(defaults))
	return c.seed(ctx, defaults)
}

// Index snapshots the roles and resources for rate resolution.
func (c *Catalog) Index() *estimate.Index {
	return estimate.NewIndex(c.Roles.List(), c.Resources.List())
}

// Estimate runs the engine against the current catalogs.
func (c *Catalog) Estimate(p models.Project) estimate.Estimate {
	return estimate.Compute(p.Tasks, p.MinMargin, p.MaxMargin, c.Index())
}

// Recalculate recomputes a stored project's cached totals and saves them.
func (c *Catalog) Recalculate(ctx context.Context, id int) (models.Project, error) {
	ix := c.Index()
	return c.Projects.Modify(ctx, id, func(p *models.Project) error {
		estimate.ApplyEstimate(p, estimate.Compute(p.Tasks, p.MinMargin, p.MaxMargin, ix))
		return nil
	})
}

// Instantiate creates a draft project from the template with the given id,
// with its totals already computed.
func (c *Catalog) Instantiate(ctx context.Context, templateID int, name string) (models.Project, error) {
	tmpl, err := c.Templates.Get(templateID)
	if err != nil {
		return models.Project{}, err
	}
	p := estimate.NewProjectFromTemplate(name, tmpl)
	estimate.ApplyEstimate(&p, c.Estimate(p))
	return c.Projects.Create(ctx, p)
}

// Dashboard counts the catalogs and returns the five most recently created
// projects, newest first.
func (c *Catalog) Dashboard() models.Dashboard {
	projects := c.Projects.List()
	recent := projects[max(len(projects)-5, 0):]
	recent = slices.Clone(recent)
	slices.Reverse(recent)

	return models.Dashboard{
		TotalProjects:  len(projects),
		TotalResources: c.Resources.Len(),
		TotalTemplates: c.Templates.Len(),
		RecentProjects: recent,
	}
}
