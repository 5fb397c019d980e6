package estimate

import (
	"testing"

	"github.com/kadro/pricing-estimator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func testRoles() []models.Role {
	return []models.Role{
		{ID: 1, Name: "Developer", DefaultRate: 85},
		{ID: 4, Name: "Designer", DefaultRate: 75},
	}
}

func testResources() []models.Resource {
	return []models.Resource{
		{ID: 1, Name: "Ana", RoleID: 1, LoadedRate: 120},
		{ID: 2, Name: "Ben", RoleID: 4, LoadedRate: 60},
		{ID: 3, Name: "Cleo", RoleID: 1, LoadedRate: 95},
	}
}

func TestResolveHourlyRate(t *testing.T) {
	roles, resources := testRoles(), testResources()

	t.Run("ResourceOverridesRole", func(t *testing.T) {
		task := models.Task{RoleID: 1, ResourceID: intPtr(1)}
		assert.Equal(t, 120.0, ResolveHourlyRate(task, roles, resources))
	})

	t.Run("ResourceWinsEvenWhenCheaper", func(t *testing.T) {
		task := models.Task{RoleID: 4, ResourceID: intPtr(2)}
		assert.Equal(t, 60.0, ResolveHourlyRate(task, roles, resources))
	})

	t.Run("FallsBackToRoleDefault", func(t *testing.T) {
		task := models.Task{RoleID: 4}
		assert.Equal(t, 75.0, ResolveHourlyRate(task, roles, resources))
	})

	t.Run("DanglingResourceFallsBackToRole", func(t *testing.T) {
		task := models.Task{RoleID: 1, ResourceID: intPtr(99)}
		assert.Equal(t, 85.0, ResolveHourlyRate(task, roles, resources))
	})

	t.Run("NothingResolves", func(t *testing.T) {
		task := models.Task{RoleID: 42, ResourceID: intPtr(99)}
		assert.Equal(t, 0.0, ResolveHourlyRate(task, roles, resources))
	})

	t.Run("EmptyCatalogs", func(t *testing.T) {
		task := models.Task{RoleID: 1, ResourceID: intPtr(1)}
		assert.Equal(t, 0.0, ResolveHourlyRate(task, nil, nil))
	})
}

func TestComputeEndToEnd(t *testing.T) {
	project := models.Project{
		Tasks: []models.Task{
			{ID: 1, Description: "Build feature", EstimateDays: 2, RoleID: 1},
		},
	}

	est := ComputeProject(project, []models.Role{{ID: 1, Name: "Developer", DefaultRate: 85}}, nil)

	assert.Equal(t, 2.0, est.TotalDays)
	assert.Equal(t, 16.0, est.TotalHours)
	assert.Equal(t, 1360.0, est.TotalCost)
	assert.InDelta(t, 1768.0, est.MinPrice, 1e-9)
	assert.InDelta(t, 1904.0, est.MaxPrice, 1e-9)
	assert.Equal(t, DefaultMinMargin, est.MinMargin)
	assert.Equal(t, DefaultMaxMargin, est.MaxMargin)
}

func TestComputeEmptyProject(t *testing.T) {
	margins := []struct {
		name     string
		min, max *float64
	}{
		{"Defaults", nil, nil},
		{"Zero", floatPtr(0), floatPtr(0)},
		{"Custom", floatPtr(15), floatPtr(90)},
	}

	for _, m := range margins {
		t.Run(m.name, func(t *testing.T) {
			est := Compute(nil, m.min, m.max, NewIndex(testRoles(), testResources()))
			assert.Zero(t, est.TotalDays)
			assert.Zero(t, est.TotalHours)
			assert.Zero(t, est.TotalCost)
			assert.Zero(t, est.MinPrice)
			assert.Zero(t, est.MaxPrice)
		})
	}
}

func TestComputeMargins(t *testing.T) {
	ix := NewIndex(testRoles(), testResources())
	tasks := []models.Task{
		{ID: 1, EstimateDays: 3, RoleID: 1},
		{ID: 2, EstimateDays: 1.5, RoleID: 4, ResourceID: intPtr(2)},
	}
	cost := 3*8*85.0 + 1.5*8*60.0

	t.Run("ExplicitZeroIsHonored", func(t *testing.T) {
		est := Compute(tasks, floatPtr(0), floatPtr(0), ix)
		assert.Equal(t, cost, est.TotalCost)
		assert.Equal(t, cost, est.MinPrice)
		assert.Equal(t, cost, est.MaxPrice)
	})

	t.Run("Custom", func(t *testing.T) {
		est := Compute(tasks, floatPtr(10), floatPtr(25), ix)
		assert.InDelta(t, cost*1.10, est.MinPrice, 1e-9)
		assert.InDelta(t, cost*1.25, est.MaxPrice, 1e-9)
	})

	t.Run("MinAboveMaxIsNotCorrected", func(t *testing.T) {
		est := Compute(tasks, floatPtr(50), floatPtr(20), ix)
		assert.Greater(t, est.MinPrice, est.MaxPrice)
	})

	t.Run("OnlyOneMarginSet", func(t *testing.T) {
		est := Compute(tasks, nil, floatPtr(5), ix)
		assert.Equal(t, DefaultMinMargin, est.MinMargin)
		assert.Equal(t, 5.0, est.MaxMargin)
	})
}

func TestComputeLinearCost(t *testing.T) {
	ix := NewIndex(testRoles(), testResources())
	tasks := []models.Task{
		{ID: 1, EstimateDays: 2.5, RoleID: 1, ResourceID: intPtr(3)},
		{ID: 2, EstimateDays: 4, RoleID: 4},
		{ID: 3, EstimateDays: 0.25, RoleID: 77},
	}

	var expected float64
	for _, task := range tasks {
		expected += task.EstimateDays * HoursPerDay * ix.HourlyRate(task)
	}
	base := Compute(tasks, nil, nil, ix)
	assert.Equal(t, expected, base.TotalCost)

	doubled := make([]models.Task, len(tasks))
	for i, task := range tasks {
		task.EstimateDays *= 2
		doubled[i] = task
	}
	assert.Equal(t, 2*base.TotalCost, Compute(doubled, nil, nil, ix).TotalCost)
}

func TestComputeDanglingReferences(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, EstimateDays: 2, RoleID: 999, ResourceID: intPtr(999)},
		{ID: 2, EstimateDays: 1, RoleID: 1},
	}

	est := Compute(tasks, nil, nil, NewIndex(testRoles(), nil))
	assert.Equal(t, 3.0, est.TotalDays)
	assert.Equal(t, 24.0, est.TotalHours)
	assert.Equal(t, 8*85.0, est.TotalCost)
}

func TestComputeNegativeDaysSubtract(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, EstimateDays: 3, RoleID: 1},
		{ID: 2, EstimateDays: -1, RoleID: 1},
	}

	est := Compute(tasks, nil, nil, NewIndex(testRoles(), nil))
	assert.Equal(t, 2.0, est.TotalDays)
	assert.Equal(t, 2*8*85.0, est.TotalCost)
}

func TestApplyEstimate(t *testing.T) {
	project := models.Project{
		Tasks:     []models.Task{{ID: 1, EstimateDays: 2, RoleID: 1}},
		TotalCost: 1,
		MinPrice:  2,
		MaxPrice:  3,
	}

	ApplyEstimate(&project, ComputeProject(project, testRoles(), nil))
	assert.Equal(t, 1360.0, project.TotalCost)
	assert.InDelta(t, 1768.0, project.MinPrice, 1e-9)
	assert.InDelta(t, 1904.0, project.MaxPrice, 1e-9)
}

func TestIndexLabels(t *testing.T) {
	ix := NewIndex(testRoles(), testResources())

	assert.Equal(t, "Developer", ix.RoleName(1))
	assert.Equal(t, "Unknown", ix.RoleName(12))
	assert.Equal(t, "Ana", ix.ResourceName(intPtr(1)))
	assert.Equal(t, "", ix.ResourceName(intPtr(12)))
	assert.Equal(t, "", ix.ResourceName(nil))

	assignable := ix.AssignableResources(1)
	require.Len(t, assignable, 2)
	assert.Equal(t, "Ana", assignable[0].Name)
	assert.Equal(t, "Cleo", assignable[1].Name)
	assert.Empty(t, ix.AssignableResources(3))
}

func TestIndexDuplicateIDsFirstWins(t *testing.T) {
	roles := []models.Role{
		{ID: 1, Name: "First", DefaultRate: 10},
		{ID: 1, Name: "Second", DefaultRate: 20},
	}
	ix := NewIndex(roles, nil)
	assert.Equal(t, 10.0, ix.HourlyRate(models.Task{RoleID: 1}))
	assert.Equal(t, "First", ix.RoleName(1))
}
