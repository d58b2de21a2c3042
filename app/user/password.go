package user

import (
	"net/http"

	"lumo/task-api/app/respond"
	"lumo/task-api/internal"

	"github.com/gin-gonic/gin"
)

type forgotBody struct {
	Email string `json:"email"`
}

type resetBody struct {
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// UserForgotPassword mails a reset link to the account's address.
func UserForgotPassword(c *gin.Context, d *internal.Deps) {
	var data forgotBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	if err := d.Accounts.RequestPasswordReset(c.Request.Context(), data.Email); err != nil {
		respond.Error(c, err)
		return
	}

	respond.Message(c, http.StatusOK, "Password reset link sent to your email")
}

// UserResetPassword sets a new password using the token from the reset link.
func UserResetPassword(c *gin.Context, d *internal.Deps) {
	var data resetBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	err := d.Accounts.ConfirmPasswordReset(c.Request.Context(), c.Param("token"), data.NewPassword, data.ConfirmPassword)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.Message(c, http.StatusOK, "Password has been reset successfully")
}
