package task

import (
	"errors"
	"io"
	"net/http"

	"lumo/task-api/app/respond"
	"lumo/task-api/internal"
	"lumo/task-api/internal/apperr"
	"lumo/task-api/internal/service"

	"github.com/gin-gonic/gin"
)

type createBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`
	User        string `json:"user"`
	List        string `json:"list"`
}

type updateBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	DueDate     *string `json:"dueDate"`
	List        *string `json:"list"`
}

type deleteBody struct {
	User string `json:"user"`
}

func errUserMismatch() error {
	return apperr.Validation("User does not match the authenticated user",
		apperr.FieldViolation{Field: "user", Rule: "self"})
}

func TaskCreate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data createBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	if data.User != "" && data.User != userID {
		respond.Error(c, errUserMismatch())
		return
	}

	t, err := d.Tasks.Create(c.Request.Context(), userID, service.TaskInput{
		Title:       data.Title,
		Description: data.Description,
		Status:      data.Status,
		DueDate:     data.DueDate,
		ListID:      data.List,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

func TaskUpdate(c *gin.Context, d *internal.Deps) {
	var data updateBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	t, err := d.Tasks.Update(c.Request.Context(), c.MustGet("userID").(string), c.Param("id"), service.TaskPatch{
		Title:       data.Title,
		Description: data.Description,
		Status:      data.Status,
		DueDate:     data.DueDate,
		ListID:      data.List,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// TaskDeleteGuard rejects a delete whose optional body names another user.
// The delete itself is done by the generic controller.
func TaskDeleteGuard(c *gin.Context) {
	var data deleteBody
	if err := c.ShouldBindJSON(&data); err != nil && !errors.Is(err, io.EOF) {
		respond.BadBody(c, err)
		return
	}

	if data.User != "" && data.User != c.MustGet("userID").(string) {
		respond.Error(c, errUserMismatch())
		return
	}

	c.Next()
}
