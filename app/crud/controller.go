// Package crud serves a crud.Resource over gin. Every handler scopes the
// resource to the authenticated user.
package crud

import (
	"net/http"

	"lumo/task-api/app/respond"
	"lumo/task-api/internal/crud"
	"lumo/task-api/internal/store"

	"github.com/gin-gonic/gin"
)

type Controller[T store.Record] struct {
	Resource *crud.Resource[T]

	// OwnerField is the column holding the owner's user ID.
	OwnerField string
}

func New[T store.Record](r *crud.Resource[T], ownerField string) *Controller[T] {
	return &Controller[T]{Resource: r, OwnerField: ownerField}
}

func (ctl *Controller[T]) scope(c *gin.Context) store.Filter {
	return store.Filter{ctl.OwnerField: c.MustGet("userID").(string)}
}

// Read handles GET /<resource>/:id.
func (ctl *Controller[T]) Read(c *gin.Context) {
	v, err := ctl.Resource.ReadOne(c.Request.Context(), c.Param("id"), ctl.scope(c))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}

// List handles GET /<resource>.
func (ctl *Controller[T]) List(c *gin.Context) {
	out, err := ctl.Resource.ListAll(c.Request.Context(), ctl.scope(c))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /<resource>/:id.
func (ctl *Controller[T]) Delete(c *gin.Context) {
	if err := ctl.Resource.Delete(c.Request.Context(), c.Param("id"), ctl.scope(c)); err != nil {
		respond.Error(c, err)
		return
	}

	respond.Message(c, http.StatusOK, ctl.Resource.Name+" deleted successfully")
}
