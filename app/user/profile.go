package user

import (
	"net/http"

	"lumo/task-api/app/respond"
	"lumo/task-api/internal"
	"lumo/task-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type updateBody struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Age       *int    `json:"age"`
}

func UserFetch(c *gin.Context, d *internal.Deps) {
	u, err := d.Accounts.Profile(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

func UserUpdate(c *gin.Context, d *internal.Deps) {
	var data updateBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	u, err := d.Accounts.UpdateProfile(c.Request.Context(), c.GetString("userID"), c.Param("id"), service.ProfilePatch{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Age:       data.Age,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

func UserDelete(c *gin.Context, d *internal.Deps) {
	userID := c.GetString("userID")

	if err := d.Accounts.DeleteAccount(c.Request.Context(), userID, c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}

	zap.L().Info("User deleted", zap.String("userID", userID), zap.String("requestID", c.GetString("requestID")))

	respond.Message(c, http.StatusOK, "User deleted successfully")
}
