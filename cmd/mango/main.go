package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mango/migrations"
	"github.com/dmitrymomot/mango/modules/account"
	"github.com/dmitrymomot/mango/pkg/clientip"
	"github.com/dmitrymomot/mango/pkg/config"
	"github.com/dmitrymomot/mango/pkg/environment"
	"github.com/dmitrymomot/mango/pkg/httpserver"
	"github.com/dmitrymomot/mango/pkg/jwt"
	"github.com/dmitrymomot/mango/pkg/logger"
	"github.com/dmitrymomot/mango/pkg/pg"
	"github.com/dmitrymomot/mango/pkg/ratelimiter"
	"github.com/dmitrymomot/mango/pkg/rbac"
	"github.com/dmitrymomot/mango/pkg/redis"
	"github.com/dmitrymomot/mango/pkg/requestid"
	"github.com/dmitrymomot/mango/pkg/session"
	"github.com/dmitrymomot/mango/pkg/storage"
	"github.com/dmitrymomot/mango/svc/user"
)

const (
	userStorePostgres = "postgres"
	userStoreMemory   = "memory"
)

var errStoreMismatch = errors.New("mango: the postgres session store needs USER_STORE=postgres")

type appConfig struct {
	Name      string `env:"APP_NAME" envDefault:"mango"`
	Env       string `env:"APP_ENV" envDefault:"development"`
	UserStore string `env:"USER_STORE" envDefault:"postgres"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "mango: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg     appConfig
		logCfg     logger.Config
		sessionCfg session.Config
		rbacCfg    rbac.Config
		httpCfg    httpserver.Config
		storageCfg storage.Config
		limitCfg   ratelimiter.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&appCfg) },
		func() error { return config.Load(&logCfg) },
		func() error { return config.Load(&sessionCfg) },
		func() error { return config.Load(&rbacCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&storageCfg) },
		func() error { return config.Load(&limitCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	env := environment.Parse(appCfg.Env)
	log := logger.New(
		logger.WithEnvironment(env, appCfg.Name),
		logger.WithConfig(logCfg),
		logger.WithContextExtractors(requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			session.LoggerExtractor(),
		),
	)
	slog.SetDefault(log)

	if sessionCfg.Store == session.StorePostgres && appCfg.UserStore != userStorePostgres {
		return errStoreMismatch
	}

	checks := make(map[string]httpserver.Check)

	var pool *pgxpool.Pool
	if appCfg.UserStore == userStorePostgres {
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return err
		}
		var err error
		if pool, err = pg.Connect(ctx, pgCfg); err != nil {
			return err
		}
		defer pool.Close()

		if pgCfg.AutoMigrate {
			if err := pg.Migrate(ctx, pool, migrations.FS, pgCfg, log); err != nil {
				return err
			}
		}
		checks["postgres"] = pg.Healthcheck(pool)
	}

	var redisClient *goredis.Client
	needRedis := sessionCfg.Store == session.StoreRedis ||
		(limitCfg.Enabled && limitCfg.Store == ratelimiter.StoreRedis)
	if needRedis {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		var err error
		if redisClient, err = redis.Connect(ctx, redisCfg); err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		checks["redis"] = redis.Healthcheck(redisClient)
	}

	var users user.Storage
	switch appCfg.UserStore {
	case userStorePostgres:
		users = user.NewPostgresStorage(pool)
	case userStoreMemory:
		users = user.NewMemoryStorage()
	default:
		return fmt.Errorf("mango: unknown USER_STORE %q", appCfg.UserStore)
	}

	var sessions session.Store
	switch sessionCfg.Store {
	case session.StorePostgres:
		sessions = session.NewPostgresStore(pool)
	case session.StoreRedis:
		sessions = session.NewRedisStore(redisClient, users,
			session.WithRedisPrefix(sessionCfg.RedisPrefix),
			session.WithRedisKeyTTL(sessionCfg.TokenTTL(env)+sessionCfg.Grace()),
		)
	case session.StoreMemory:
		sessions = session.NewMemoryStore(users)
	default:
		return fmt.Errorf("mango: unknown SESSION_STORE %q", sessionCfg.Store)
	}

	signer, err := jwt.NewFromString(sessionCfg.Secret)
	if err != nil {
		return err
	}
	issuer := session.NewIssuer(signer, sessions, sessionCfg.TokenTTL(env), session.WithIssuerLogger(log))
	verifier := session.NewVerifier(signer, sessions, issuer, sessionCfg.Grace(), session.WithVerifierLogger(log))

	authorizer, err := rbac.NewFromConfig(ctx, rbacCfg)
	if err != nil {
		return err
	}

	files, err := storage.New(ctx, storageCfg)
	if err != nil {
		return err
	}

	var limiter *ratelimiter.Bucket
	if limitCfg.Enabled {
		var store ratelimiter.Store
		switch limitCfg.Store {
		case ratelimiter.StoreRedis:
			store = ratelimiter.NewRedisStore(redisClient, limitCfg.RedisPrefix)
		case ratelimiter.StoreMemory:
			mem := ratelimiter.NewMemoryStore()
			defer mem.Close()
			store = mem
		default:
			return fmt.Errorf("mango: unknown RATELIMIT_STORE %q", limitCfg.Store)
		}
		if limiter, err = ratelimiter.NewBucket(store, limitCfg); err != nil {
			return err
		}
	}

	svc := user.NewService(users, issuer, sessions, files, authorizer, user.WithLogger(log))

	router, err := account.Router(account.RouterOptions{
		Users:           svc,
		Verifier:        verifier,
		Authorizer:      authorizer,
		RefreshHeader:   sessionCfg.RefreshHeader,
		LoginLimiter:    limiter,
		ReadinessChecks: checks,
		Logger:          log,
	})
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "starting mango",
		logger.Component("main"),
		slog.String("env", env.String()),
		slog.String("user_store", appCfg.UserStore),
		slog.String("session_store", sessionCfg.Store),
		slog.String("storage_driver", storageCfg.Driver),
		slog.Bool("login_throttling", limitCfg.Enabled),
		slog.Duration("token_ttl", sessionCfg.TokenTTL(env)),
	)

	return httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log)).Run(ctx, router)
}
