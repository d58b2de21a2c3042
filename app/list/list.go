package list

import (
	"net/http"

	"lumo/task-api/app/respond"
	"lumo/task-api/internal"
	"lumo/task-api/internal/apperr"

	"github.com/gin-gonic/gin"
)

type createBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	User        string `json:"user"`
}

func ListCreate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data createBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	if data.User != "" && data.User != userID {
		respond.Error(c, apperr.Validation("User does not match the authenticated user",
			apperr.FieldViolation{Field: "user", Rule: "self"}))
		return
	}

	l, err := d.Lists.Create(c.Request.Context(), userID, data.Title, data.Description)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, l)
}

// ListFetch returns every list of the user named in the path, which must be
// the caller.
func ListFetch(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	if c.Param("userId") != userID {
		respond.Error(c, apperr.NotFound("User not found"))
		return
	}

	lists, err := d.Lists.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, lists)
}

func ListTasks(c *gin.Context, d *internal.Deps) {
	tasks, err := d.Lists.Tasks(c.Request.Context(), c.MustGet("userID").(string), c.Param("listId"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}
