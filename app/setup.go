package app

import (
	"context"
	"fmt"
	"strings"

	"lumo/task-api/db"
	"lumo/task-api/internal"
	"lumo/task-api/internal/model"
	"lumo/task-api/internal/service"
	"lumo/task-api/internal/store"
	"lumo/task-api/pkg/middleware"
	"lumo/task-api/pkg/security"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is a fully wired server. Close releases the storage connection.
type App struct {
	Router *gin.Engine
	Deps   *internal.Deps

	closers []func(context.Context) error
}

func (a *App) Close(ctx context.Context) {
	for _, c := range a.closers {
		if err := c(ctx); err != nil {
			zap.L().Warn("Failed to close resource", zap.Error(err))
		}
	}
}

type stores struct {
	users store.Store[model.User]
	lists store.Store[model.List]
	tasks store.Store[model.Task]
}

// New builds the application from the loaded configuration. Background
// workers stop when ctx is cancelled.
func New(ctx context.Context) (*App, error) {
	a := &App{}

	s, err := a.openStorage(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	signer := security.NewJWTSigner(viper.GetString("jwt.secret"))

	lists := service.NewLists(s.lists, s.tasks)
	tasks := service.NewTasks(s.tasks, lists)
	accounts := service.NewAccounts(s.users, lists, tasks, security.New(), signer, newMailer(), service.AccountOptions{
		FrontendURL:      viper.GetString("frontend.base_url"),
		AccessTTL:        viper.GetDuration("jwt.access_ttl"),
		ResetTTL:         viper.GetDuration("reset.ttl"),
		DefaultListTitle: viper.GetString("lists.default_title"),
		PasswordPolicy:   viper.GetBool("security.password_policy"),
	})

	a.Deps = &internal.Deps{
		Accounts: accounts,
		Lists:    lists,
		Tasks:    tasks,
		Signer:   signer,
	}

	rateLimit := viper.GetInt("security.rate_limit")
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})
	go limiter.Run(ctx)

	a.Router = NewRouter(a.Deps, RouterOptions{
		CORS:       origins(viper.GetStringSlice("host.cors")),
		Limiter:    limiter,
		CacheStore: a.newCacheStore(),
		CacheTTL:   viper.GetDuration("cache.ttl"),
	})

	// Expired tokens are useless already, so a rare sweep is enough
	service.ResetTokenCleanup(ctx, viper.GetDuration("reset.sweep_interval"), s.users)

	return a, nil
}

func (a *App) openStorage(ctx context.Context) (*stores, error) {
	driver := viper.GetString("storage.driver")

	if driver == "mongo" {
		client, mdb, err := db.OpenMongo(ctx, viper.GetString("storage.mongo_uri"), viper.GetString("storage.mongo_database"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)

		zap.L().Info("Connected to MongoDB", zap.String("database", mdb.Name()))

		return &stores{
			users: store.NewMongo[model.User](mdb.Collection(db.UsersCollection)),
			lists: store.NewMongo[model.List](mdb.Collection(db.ListsCollection)),
			tasks: store.NewMongo[model.Task](mdb.Collection(db.TasksCollection)),
		}, nil
	}

	var (
		gdb *gorm.DB
		err error
	)

	switch driver {
	case "postgres":
		gdb, err = db.OpenPostgres(viper.GetString("storage.postgres_dsn"))
	default:
		gdb, err = db.OpenSQLite(viper.GetString("storage.sqlite_path"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })

	zap.L().Info("Connected to database", zap.String("driver", driver))

	return &stores{
		users: store.NewGorm[model.User](gdb),
		lists: store.NewGorm[model.List](gdb),
		tasks: store.NewGorm[model.Task](gdb),
	}, nil
}

func newMailer() service.Mailer {
	sender := viper.GetString("mail.sender")

	switch viper.GetString("mail.provider") {
	case "smtp":
		return service.NewSMTPMailer(
			viper.GetString("mail.host"),
			viper.GetInt("mail.port"),
			viper.GetString("mail.username"),
			viper.GetString("mail.password"),
			sender,
		)
	case "postmark":
		return service.NewPostmarkMailer(
			viper.GetString("mail.postmark_server_token"),
			viper.GetString("mail.postmark_account_token"),
			sender,
		)
	default:
		zap.L().Warn("Mail provider is log, mail bodies with reset links are only written to the debug log")
		return service.LogMailer{}
	}
}

// newCacheStore picks Redis when an address is configured and falls back to
// process memory otherwise. A zero TTL turns caching off.
func (a *App) newCacheStore() persist.CacheStore {
	ttl := viper.GetDuration("cache.ttl")
	if ttl <= 0 {
		return nil
	}

	if addr := viper.GetString("cache.redis_addr"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })

		return persist.NewRedisStore(client)
	}

	return persist.NewMemoryStore(ttl)
}

// origins accepts both a list and a single comma separated string.
func origins(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, o := range strings.Split(r, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}

	return out
}
