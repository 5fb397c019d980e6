package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kadro/pricing-estimator/internal/models"
	"github.com/kadro/pricing-estimator/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func setupTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()

	dir := t.TempDir()
	backend, err := storage.NewFileStorage(dir)
	require.NoError(t, err)

	c, err := Open(context.Background(), backend, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return c, dir
}

// flakyBackend fails every Save while failing is set.
type flakyBackend struct {
	storage.Backend
	mu      sync.Mutex
	failing bool
}

func (b *flakyBackend) setFailing(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing = v
}

func (b *flakyBackend) Save(ctx context.Context, name string, data []byte) error {
	b.mu.Lock()
	failing := b.failing
	b.mu.Unlock()
	if failing {
		return errors.New("disk full")
	}
	return b.Backend.Save(ctx, name, data)
}

func TestOpenSeedsDefaults(t *testing.T) {
	c, dir := setupTestCatalog(t)

	roles := c.Roles.List()
	require.Len(t, roles, 8)
	assert.Equal(t, "Developer", roles[0].Name)
	assert.Equal(t, 85.0, roles[0].DefaultRate)
	assert.Equal(t, "Executive", roles[7].Name)

	templates := c.Templates.List()
	require.Len(t, templates, 3)
	assert.Equal(t, "Shopify", templates[0].Platform)
	assert.Len(t, templates[2].Tasks, 11)

	assert.Empty(t, c.Resources.List())
	assert.Empty(t, c.Projects.List())

	for _, name := range []string{"roles", "resources", "templates", "projects"} {
		_, err := os.Stat(filepath.Join(dir, name+".json"))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "resources.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestOpenKeepsStoredCollections(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, backend.Save(context.Background(), "roles", []byte(`[{"id":5,"name":"Solo","defaultRate":42}]`)))

	c, err := Open(context.Background(), backend)
	require.NoError(t, err)

	roles := c.Roles.List()
	require.Len(t, roles, 1)
	assert.Equal(t, models.Role{ID: 5, Name: "Solo", DefaultRate: 42}, roles[0])
	assert.Len(t, c.Templates.List(), 3)
}

func TestOpenRejectsCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, backend.Save(context.Background(), "projects", []byte(`{not json`)))

	_, err = Open(context.Background(), backend)
	assert.Error(t, err)
}

func TestCollectionCRUD(t *testing.T) {
	c, dir := setupTestCatalog(t)
	ctx := context.Background()

	t.Run("CreateAssignsNextID", func(t *testing.T) {
		role, err := c.Roles.CreateJSON(ctx, []byte(`{"id":77,"name":"Analyst","defaultRate":65}`))
		require.NoError(t, err)
		assert.Equal(t, 9, role.ID)
		assert.Equal(t, "Analyst", role.Name)

		stored, err := c.Roles.Get(9)
		require.NoError(t, err)
		assert.Equal(t, role, stored)
	})

	t.Run("CreatePersistsWholeCollection", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "roles.json"))
		require.NoError(t, err)

		var roles []models.Role
		require.NoError(t, json.Unmarshal(data, &roles))
		assert.Len(t, roles, 9)
		assert.Equal(t, "Analyst", roles[8].Name)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := c.Roles.Get(404)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateMergesPresentFields", func(t *testing.T) {
		role, err := c.Roles.Update(ctx, 9, []byte(`{"defaultRate":70}`))
		require.NoError(t, err)
		assert.Equal(t, "Analyst", role.Name)
		assert.Equal(t, 70.0, role.DefaultRate)
	})

	t.Run("UpdateIgnoresBodyID", func(t *testing.T) {
		role, err := c.Roles.Update(ctx, 9, []byte(`{"id":1234,"name":"Senior Analyst"}`))
		require.NoError(t, err)
		assert.Equal(t, 9, role.ID)
		assert.Equal(t, "Senior Analyst", role.Name)

		_, err = c.Roles.Get(1234)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateIgnoresNonIntegerBodyID", func(t *testing.T) {
		for _, body := range []string{
			`{"id":"9","name":"Lead Analyst"}`,
			`{"id":null,"name":"Lead Analyst"}`,
			`{"id":{"nested":true},"name":"Lead Analyst"}`,
			`{"id":9.5,"name":"Lead Analyst"}`,
		} {
			role, err := c.Roles.Update(ctx, 9, []byte(body))
			require.NoError(t, err, body)
			assert.Equal(t, 9, role.ID)
			assert.Equal(t, "Lead Analyst", role.Name)
		}
		assert.Equal(t, 9, c.Roles.Len())
	})

	t.Run("CreateIgnoresNonIntegerBodyID", func(t *testing.T) {
		resource, err := c.Resources.CreateJSON(ctx, []byte(`{"id":"new","name":"Dana","roleId":1,"loadedRate":90}`))
		require.NoError(t, err)
		assert.Equal(t, 1, resource.ID)
		assert.Equal(t, "Dana", resource.Name)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		_, err := c.Roles.Update(ctx, 404, []byte(`{"name":"x"}`))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateRejectsWrongTypes", func(t *testing.T) {
		_, err := c.Roles.Update(ctx, 9, []byte(`{"defaultRate":"lots"}`))
		assert.ErrorIs(t, err, ErrInvalidPayload)

		role, err := c.Roles.Get(9)
		require.NoError(t, err)
		assert.Equal(t, 70.0, role.DefaultRate)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		require.NoError(t, c.Roles.Delete(ctx, 9))
		require.NoError(t, c.Roles.Delete(ctx, 9))
		assert.Len(t, c.Roles.List(), 8)
	})
}

func TestIDReuseAfterDelete(t *testing.T) {
	c, _ := setupTestCatalog(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		r, err := c.Resources.Create(ctx, models.Resource{Name: fmt.Sprintf("Person %d", i), RoleID: 1})
		require.NoError(t, err)
		assert.Equal(t, i, r.ID)
	}

	require.NoError(t, c.Resources.Delete(ctx, 3))
	r, err := c.Resources.Create(ctx, models.Resource{Name: "Replacement", RoleID: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, r.ID)

	require.NoError(t, c.Resources.Delete(ctx, 1))
	r, err = c.Resources.Create(ctx, models.Resource{Name: "Another", RoleID: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, r.ID)

	ids := []int{}
	for _, res := range c.Resources.List() {
		ids = append(ids, res.ID)
	}
	assert.Equal(t, []int{2, 3, 4}, ids)
}

func TestProjectTimestamps(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.NewFileStorage(dir)
	require.NoError(t, err)

	now := fixedNow
	c, err := Open(context.Background(), backend, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	ctx := context.Background()

	p, err := c.Projects.CreateJSON(ctx, []byte(`{"name":"Acme","tasks":[]}`))
	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(p.CreatedAt))
	assert.Nil(t, p.UpdatedAt)
	assert.Equal(t, models.ProjectStatusDraft, p.Status)

	now = fixedNow.Add(time.Hour)
	p, err = c.Projects.Update(ctx, p.ID, []byte(`{"status":"approved"}`))
	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(p.CreatedAt))
	require.NotNil(t, p.UpdatedAt)
	assert.True(t, fixedNow.Add(time.Hour).Equal(*p.UpdatedAt))
	assert.Equal(t, models.ProjectStatusApproved, p.Status)
	assert.Equal(t, "Acme", p.Name)
}

func TestProjectIgnoresStampedFields(t *testing.T) {
	c, _ := setupTestCatalog(t)
	ctx := context.Background()

	p, err := c.Projects.CreateJSON(ctx, []byte(`{"name":"Acme","createdAt":"last week","updatedAt":42}`))
	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(p.CreatedAt))
	assert.Nil(t, p.UpdatedAt)

	p, err = c.Projects.Update(ctx, p.ID, []byte(`{"id":"x","updatedAt":"yesterday","createdAt":"1999-01-01T00:00:00Z","name":"Acme Shop"}`))
	require.NoError(t, err)
	assert.Equal(t, "Acme Shop", p.Name)
	assert.True(t, fixedNow.Equal(p.CreatedAt))
	require.NotNil(t, p.UpdatedAt)
	assert.True(t, fixedNow.Equal(*p.UpdatedAt))
}

func TestProjectUpdateReplacesTasksShallowly(t *testing.T) {
	c, _ := setupTestCatalog(t)
	ctx := context.Background()

	p, err := c.Instantiate(ctx, 1, "Shop")
	require.NoError(t, err)
	require.Len(t, p.Tasks, 9)

	p, err = c.Projects.Update(ctx, p.ID, []byte(`{"tasks":[{"id":1,"description":"Only","estimateDays":1,"roleId":1,"resourceId":null}]}`))
	require.NoError(t, err)
	require.Len(t, p.Tasks, 1)
	assert.Equal(t, "Only", p.Tasks[0].Description)
	assert.Equal(t, "Shopify", p.Platform)
	require.NotNil(t, p.MinMargin)
	assert.Equal(t, 30.0, *p.MinMargin)
}

func TestWriteFailureLeavesStateUnchanged(t *testing.T) {
	inner, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	backend := &flakyBackend{Backend: inner}

	c, err := Open(context.Background(), backend)
	require.NoError(t, err)
	ctx := context.Background()

	backend.setFailing(true)

	_, err = c.Roles.CreateJSON(ctx, []byte(`{"name":"Ghost"}`))
	assert.Error(t, err)
	assert.Len(t, c.Roles.List(), 8)

	_, err = c.Roles.Update(ctx, 1, []byte(`{"defaultRate":1}`))
	assert.Error(t, err)
	role, err := c.Roles.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 85.0, role.DefaultRate)

	assert.Error(t, c.Roles.Delete(ctx, 1))
	assert.Len(t, c.Roles.List(), 8)

	backend.setFailing(false)
	created, err := c.Roles.CreateJSON(ctx, []byte(`{"name":"Real"}`))
	require.NoError(t, err)
	assert.Equal(t, 9, created.ID)
}

func TestConcurrentCreatesDoNotLoseUpdates(t *testing.T) {
	c, dir := setupTestCatalog(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Resources.Create(ctx, models.Resource{Name: fmt.Sprintf("R%d", i), RoleID: 1})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	resources := c.Resources.List()
	require.Len(t, resources, 20)
	seen := map[int]bool{}
	for _, r := range resources {
		assert.False(t, seen[r.ID], "duplicate id %d", r.ID)
		seen[r.ID] = true
	}

	data, err := os.ReadFile(filepath.Join(dir, "resources.json"))
	require.NoError(t, err)
	var stored []models.Resource
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Len(t, stored, 20)
}

func TestInstantiateAndRecalculate(t *testing.T) {
	c, _ := setupTestCatalog(t)
	ctx := context.Background()

	p, err := c.Instantiate(ctx, 1, "Acme Shopify")
	require.NoError(t, err)
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, "Shopify", p.Platform)
	require.NotNil(t, p.TemplateID)
	assert.Equal(t, 1, *p.TemplateID)
	assert.Equal(t, 24160.0, p.TotalCost)
	for i, task := range p.Tasks {
		assert.Equal(t, i+1, task.ID)
		assert.Nil(t, task.ResourceID)
	}

	_, err = c.Instantiate(ctx, 99, "Nope")
	assert.ErrorIs(t, err, ErrNotFound)

	// A pricier developer makes the cached totals stale until recalculated.
	_, err = c.Roles.Update(ctx, 1, []byte(`{"defaultRate":100}`))
	require.NoError(t, err)

	stored, err := c.Projects.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 24160.0, stored.TotalCost)
	assert.Equal(t, 24160.0+10*8*15.0, c.Estimate(stored).TotalCost)

	recalculated, err := c.Recalculate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 24160.0+10*8*15.0, recalculated.TotalCost)
	assert.InDelta(t, recalculated.TotalCost*1.3, recalculated.MinPrice, 1e-6)
	assert.InDelta(t, recalculated.TotalCost*1.4, recalculated.MaxPrice, 1e-6)

	_, err = c.Recalculate(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDashboard(t *testing.T) {
	c, _ := setupTestCatalog(t)
	ctx := context.Background()

	empty := c.Dashboard()
	assert.Zero(t, empty.TotalProjects)
	assert.Equal(t, 3, empty.TotalTemplates)
	assert.NotNil(t, empty.RecentProjects)
	assert.Empty(t, empty.RecentProjects)

	for i := 1; i <= 7; i++ {
		_, err := c.Projects.Create(ctx, models.Project{Name: fmt.Sprintf("P%d", i)})
		require.NoError(t, err)
	}
	_, err := c.Resources.Create(ctx, models.Resource{Name: "Ana", RoleID: 1})
	require.NoError(t, err)

	d := c.Dashboard()
	assert.Equal(t, 7, d.TotalProjects)
	assert.Equal(t, 1, d.TotalResources)
	assert.Equal(t, 3, d.TotalTemplates)
	require.Len(t, d.RecentProjects, 5)
	assert.Equal(t, "P7", d.RecentProjects[0].Name)
	assert.Equal(t, "P3", d.RecentProjects[4].Name)
}
