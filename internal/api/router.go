package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kadro/pricing-estimator/internal/catalog"
)

const RequestIDHeader = "X-Request-ID"

// SetupRouter builds the API engine. When staticDir is set, unknown GET
// routes outside /api are served from it with index.html as the fallback.
func SetupRouter(c *catalog.Catalog, staticDir string) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false

	router.Use(RequestID())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	projectHandler := NewProjectHandler(c)

	api := router.Group("/api")
	{
		registerCollection(api.Group("/roles"), c.Roles, "Role")
		registerCollection(api.Group("/resources"), c.Resources, "Resource")

		templates := api.Group("/templates")
		registerCollection(templates, c.Templates, "Template")
		templates.POST("/:id/instantiate", projectHandler.Instantiate)

		projects := api.Group("/projects")
		registerCollection(projects, c.Projects, "Project")
		projects.GET("/:id/estimate", projectHandler.GetEstimate)
		projects.POST("/:id/recalculate", projectHandler.Recalculate)

		api.GET("/dashboard", projectHandler.Dashboard)
	}

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status": "healthy",
		})
	})

	if staticDir != "" {
		router.NoRoute(clientApp(staticDir))
	}

	return router
}

// RequestID tags every request with an id, reusing one supplied by the
// caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func clientApp(dir string) gin.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || path == "/api" || strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		target := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(target); err == nil && !info.IsDir() {
			files.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	}
}
