// Package app wires Lumo's HTTP endpoints
package app

import (
	"net/http"
	"time"

	"lumo/task-api/app/crud"
	"lumo/task-api/app/list"
	"lumo/task-api/app/root"
	"lumo/task-api/app/task"
	"lumo/task-api/app/user"
	"lumo/task-api/internal"
	"lumo/task-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxBodySize = 1 << 20

type RouterOptions struct {
	CORS []string

	// Limiter throttles every API request. Nil disables limiting.
	Limiter *middleware.RateLimiter

	// CacheStore backs the profile response cache. Nil disables caching.
	CacheStore persist.CacheStore
	CacheTTL   time.Duration
}

func NewRouter(d *internal.Deps, o RouterOptions) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     o.CORS,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true

	jwt := middleware.NewJWTMiddleware(d.Signer, d.Accounts.UserExists)
	self := middleware.SelfOnly("id")

	profileCache, dropCached := noCache, noCache
	if o.CacheStore != nil {
		profileCache = cache.CacheByRequestPath(o.CacheStore, o.CacheTTL)
		dropCached = invalidate(o.CacheStore)
	}

	api := router.Group("/api/v1", middleware.BodySizeLimiter(maxBodySize))
	if o.Limiter != nil {
		api.Use(o.Limiter.Handler())
	}

	{
		// HEAD /api/v1/heartbeat		-> Used to check if the server is alive
		api.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/v1/validate			-> Validates a JWT token
		api.GET("/validate", jwt, root.Validate)
	}

	users := api.Group("/users")
	{
		// POST /api/v1/users			-> Registers a new user
		users.POST("", func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/v1/users/login		-> Logs in a user and returns a JWT token
		users.POST("/login", func(c *gin.Context) { user.UserLogin(c, d) })

		// POST /api/v1/users/forgot-password	-> Mails a password reset link
		users.POST("/forgot-password", func(c *gin.Context) { user.UserForgotPassword(c, d) })

		// POST /api/v1/users/reset-password/:token	-> Sets a new password
		users.POST("/reset-password/:token", func(c *gin.Context) { user.UserResetPassword(c, d) })

		// GET /api/v1/users/:id		-> Returns the caller's own account
		users.GET("/:id", jwt, self, profileCache, func(c *gin.Context) { user.UserFetch(c, d) })

		// PUT /api/v1/users/:id		-> Updates the caller's profile
		users.PUT("/:id", jwt, self, dropCached, func(c *gin.Context) { user.UserUpdate(c, d) })

		// DELETE /api/v1/users/:id		-> Deletes the caller's account with its lists and tasks
		users.DELETE("/:id", jwt, self, dropCached, func(c *gin.Context) { user.UserDelete(c, d) })
	}

	lists := api.Group("/lists", jwt)
	{
		// POST /api/v1/lists			-> Creates a list
		lists.POST("", func(c *gin.Context) { list.ListCreate(c, d) })

		// GET /api/v1/lists/list_tasks/:listId	-> Returns the tasks of a list
		lists.GET("/list_tasks/:listId", func(c *gin.Context) { list.ListTasks(c, d) })

		// GET /api/v1/lists/:userId		-> Returns every list of the caller
		lists.GET("/:userId", func(c *gin.Context) { list.ListFetch(c, d) })
	}

	tasks := api.Group("/tasks", jwt)
	taskCtl := crud.New(d.Tasks.Resource(), "user_id")
	{
		// GET /api/v1/tasks			-> Returns every task of the caller
		tasks.GET("", taskCtl.List)

		// GET /api/v1/tasks/:id		-> Returns one task
		tasks.GET("/:id", taskCtl.Read)

		// POST /api/v1/tasks			-> Creates a task in one of the caller's lists
		tasks.POST("", func(c *gin.Context) { task.TaskCreate(c, d) })

		// PATCH /api/v1/tasks/:id		-> Partially updates a task
		tasks.PATCH("/:id", func(c *gin.Context) { task.TaskUpdate(c, d) })

		// DELETE /api/v1/tasks/:id		-> Deletes a task
		tasks.DELETE("/:id", task.TaskDeleteGuard, taskCtl.Delete)
	}

	return router
}

func noCache(c *gin.Context) { c.Next() }

// invalidate drops the cached GET response for the request path once a
// write to it succeeded. The cache ignores query strings, so one delete
// covers every variant.
func invalidate(s persist.CacheStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < http.StatusMultipleChoices {
			if err := s.Delete(c.Request.URL.Path); err != nil {
				zap.L().Warn("Failed to drop cached response", zap.String("path", c.Request.URL.Path), zap.Error(err))
			}
		}
	}
}
