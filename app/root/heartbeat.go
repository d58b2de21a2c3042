// Package root has the endpoints that don't belong to any resource.
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat is used by load balancers and uptime checks.
func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Validate answers 200 for any request that got through the JWT middleware.
func Validate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"userID": c.GetString("userID"),
	})
}
