package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kadro/pricing-estimator/internal/catalog"
)

// collectionHandler serves the list/get/create/update/delete routes of one
// catalog collection.
type collectionHandler[T any] struct {
	items *catalog.Collection[T]
	label string
}

func registerCollection[T any](group *gin.RouterGroup, items *catalog.Collection[T], label string) {
	h := collectionHandler[T]{items: items, label: label}
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

func (h collectionHandler[T]) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.items.List())
}

func (h collectionHandler[T]) Get(c *gin.Context) {
	id, ok := parseID(c, h.label)
	if !ok {
		return
	}

	item, err := h.items.Get(id)
	if err != nil {
		respondError(c, h.label, "get", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h collectionHandler[T]) Create(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	item, err := h.items.CreateJSON(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.label, "create", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h collectionHandler[T]) Update(c *gin.Context) {
	id, ok := parseID(c, h.label)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}

	item, err := h.items.Update(c.Request.Context(), id, body)
	if err != nil {
		respondError(c, h.label, "update", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h collectionHandler[T]) Delete(c *gin.Context) {
	id, ok := parseID(c, h.label)
	if !ok {
		return
	}

	if err := h.items.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.label, "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func parseID(c *gin.Context, label string) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s ID", label)})
		return 0, false
	}
	return id, true
}

// readBody returns the raw JSON body. An empty body reads as an empty
// object.
func readBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return nil, false
	}
	if len(body) == 0 {
		return []byte("{}"), true
	}
	return body, true
}

func respondError(c *gin.Context, label, action string, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": label + " not found"})
	case errors.Is(err, catalog.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Failed to %s %s: %v", action, label, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to %s %s", action, label)})
	}
}
