package handlers

import (
	"GoodDental/middlewares"
	"GoodDental/models"
	"GoodDental/store"
	"net/http"

	"github.com/gin-gonic/gin"
)

// EntityHandler serves the CRUD routes of one store.
type EntityHandler[T any, PT interface {
	*T
	models.Entity
}] struct {
	name     string
	store    *store.Store[T]
	validate func(T) error
}

// NewEntityHandler builds the handler. validate may be nil.
func NewEntityHandler[T any, PT interface {
	*T
	models.Entity
}](name string, s *store.Store[T], validate func(T) error) *EntityHandler[T, PT] {
	return &EntityHandler[T, PT]{name: name, store: s, validate: validate}
}

// List returns the whole collection, or the records matching ?q=.
func (h *EntityHandler[T, PT]) List(c *gin.Context) {
	if term := c.Query("q"); term != "" {
		middlewares.RespondJSON(c, h.store.Search(term), http.StatusOK)
		return
	}
	middlewares.RespondJSON(c, h.store.Items(), http.StatusOK)
}

func (h *EntityHandler[T, PT]) Get(c *gin.Context) {
	item, ok := h.store.Get(c.Param("id"))
	if !ok {
		middlewares.HttpError(c, h.name+" not found", http.StatusNotFound, store.ErrNotLoaded)
		return
	}
	middlewares.RespondJSON(c, item, http.StatusOK)
}

func (h *EntityHandler[T, PT]) Create(c *gin.Context) {
	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	// id and timestamps are assigned by the repository
	*PT(&item).Meta() = models.Base{}

	if h.validate != nil {
		if err := h.validate(item); err != nil {
			middlewares.RespondError(c, "Invalid "+h.name, err)
			return
		}
	}

	created, err := h.store.Create(c.Request.Context(), item)
	if err != nil {
		middlewares.RespondError(c, "Failed to create "+h.name, err)
		return
	}
	middlewares.RespondJSON(c, created, http.StatusCreated)
}

// Update replaces the editable fields of a record. The id, creation time and
// active flag of the stored record are kept.
func (h *EntityHandler[T, PT]) Update(c *gin.Context) {
	existing, ok := h.store.Get(c.Param("id"))
	if !ok {
		middlewares.HttpError(c, h.name+" not found", http.StatusNotFound, store.ErrNotLoaded)
		return
	}

	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	*PT(&item).Meta() = *PT(&existing).Meta()

	if h.validate != nil {
		if err := h.validate(item); err != nil {
			middlewares.RespondError(c, "Invalid "+h.name, err)
			return
		}
	}

	updated, err := h.store.Update(c.Request.Context(), item)
	if err != nil {
		middlewares.RespondError(c, "Failed to update "+h.name, err)
		return
	}
	middlewares.RespondJSON(c, updated, http.StatusOK)
}

func (h *EntityHandler[T, PT]) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middlewares.RespondError(c, "Failed to delete "+h.name, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EntityHandler[T, PT]) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *EntityHandler[T, PT]) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *EntityHandler[T, PT]) setActive(c *gin.Context, active bool) {
	var (
		item T
		err  error
	)
	if active {
		item, err = h.store.Activate(c.Request.Context(), c.Param("id"))
	} else {
		item, err = h.store.Deactivate(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		middlewares.RespondError(c, "Failed to update "+h.name, err)
		return
	}
	middlewares.RespondJSON(c, item, http.StatusOK)
}

// Register adds the read routes, and the write routes unless readOnly.
func (h *EntityHandler[T, PT]) Register(group gin.IRoutes, readOnly bool) {
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	if readOnly {
		return
	}
	group.POST("", h.Create)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	group.POST("/:id/deactivate", h.Deactivate)
	group.POST("/:id/activate", h.Activate)
}
