package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kadro/pricing-estimator/internal/catalog"
)

// ProjectHandler serves the estimate-specific routes layered on top of the
// plain project CRUD.
type ProjectHandler struct {
	catalog *catalog.Catalog
}

func NewProjectHandler(c *catalog.Catalog) *ProjectHandler {
	return &ProjectHandler{catalog: c}
}

// GetEstimate recomputes the stored project against the current roles and
// resources. The project's cached totals are ignored.
func (h *ProjectHandler) GetEstimate(c *gin.Context) {
	id, ok := parseID(c, "Project")
	if !ok {
		return
	}

	project, err := h.catalog.Projects.Get(id)
	if err != nil {
		respondError(c, "Project", "estimate", err)
		return
	}
	c.JSON(http.StatusOK, h.catalog.Estimate(project))
}

func (h *ProjectHandler) Recalculate(c *gin.Context) {
	id, ok := parseID(c, "Project")
	if !ok {
		return
	}

	project, err := h.catalog.Recalculate(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Project", "recalculate", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Instantiate(c *gin.Context) {
	id, ok := parseID(c, "Template")
	if !ok {
		return
	}

	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.catalog.Instantiate(c.Request.Context(), id, input.Name)
	if err != nil {
		respondError(c, "Template", "instantiate", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Dashboard())
}
