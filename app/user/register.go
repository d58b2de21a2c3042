package user

import (
	"encoding/json"
	"net/http"

	"lumo/task-api/app/respond"
	"lumo/task-api/internal"
	"lumo/task-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	FirstName       string      `json:"firstName"`
	LastName        string      `json:"lastName"`
	Age             json.Number `json:"age"`
	Email           string      `json:"email"`
	Password        string      `json:"password"`
	ConfirmPassword string      `json:"confirmPassword"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	var data registerBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BadBody(c, err)
		return
	}

	u, err := d.Accounts.Register(c.Request.Context(), service.RegisterInput{
		FirstName:       data.FirstName,
		LastName:        data.LastName,
		Age:             data.Age,
		Email:           data.Email,
		Password:        data.Password,
		ConfirmPassword: data.ConfirmPassword,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	zap.L().Info("User registered", zap.String("userID", u.ID), zap.String("requestID", c.GetString("requestID")))

	c.JSON(http.StatusCreated, gin.H{
		"id": u.ID,
	})
}
