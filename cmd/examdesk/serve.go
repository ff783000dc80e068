package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/examdesk"
	"github.com/dmitrymomot/examdesk/internal/auth"
	"github.com/dmitrymomot/examdesk/internal/catalog"
	"github.com/dmitrymomot/examdesk/internal/config"
	"github.com/dmitrymomot/examdesk/internal/handlers"
	"github.com/dmitrymomot/examdesk/internal/keyquestion"
	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/internal/roles"
	"github.com/dmitrymomot/examdesk/internal/routes"
	"github.com/dmitrymomot/examdesk/internal/tasks"
	"github.com/dmitrymomot/examdesk/locales"
	"github.com/dmitrymomot/examdesk/middlewares"
	"github.com/dmitrymomot/examdesk/pkg/cache"
	"github.com/dmitrymomot/examdesk/pkg/cookie"
	"github.com/dmitrymomot/examdesk/pkg/db"
	"github.com/dmitrymomot/examdesk/pkg/i18n"
	"github.com/dmitrymomot/examdesk/pkg/job"
	"github.com/dmitrymomot/examdesk/pkg/logger"
	"github.com/dmitrymomot/examdesk/pkg/mailer"
	"github.com/dmitrymomot/examdesk/pkg/mailer/resend"
	"github.com/dmitrymomot/examdesk/pkg/redis"
	"github.com/dmitrymomot/examdesk/pkg/session"
	"github.com/dmitrymomot/examdesk/static"
)

func newServeCommand(configPath *string) *cobra.Command {
	var migrateFirst bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the job workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrateFirst bool) error {
	log := logger.New(cfg.LoggerConfig(),
		middlewares.RequestIDExtractor(),
		examdesk.IdentityExtractor(),
	)

	var release cleanups
	defer release.run()

	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	release.add(pool.Close)
	if migrateFirst {
		if err := migrate(ctx, pool, cfg, db.Up, log); err != nil {
			return err
		}
	}

	var rdb goredis.UniversalClient
	if cfg.Redis.Enabled() {
		if rdb, err = redis.Open(ctx, cfg.Redis); err != nil {
			return err
		}
		release.add(func() { _ = rdb.Close() })
	}

	bundle, err := locales.Bundle(i18n.WithDefaultLanguage(cfg.I18n.DefaultLanguage))
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	sessions := sessionStore(cfg, pool, rdb)

	var sender mailer.Sender = mailer.LogSender{Logger: log}
	if cfg.Mailer.Resend.APIKey != "" {
		sender = resend.New(cfg.Mailer.Resend)
	}
	mail := mailer.New(sender, mailer.NewRenderer(tasks.Templates()), cfg.Mailer.FallbackSubject)

	var (
		jobs     *job.Manager
		enqueuer keyquestion.Enqueuer
	)
	if cfg.Jobs.Enabled {
		bg := tasks.New(mail, sessions, tasks.WithLogger(log))
		jobs, err = job.NewManager(pool, append(bg.Options(),
			job.WithLogger(log),
			job.WithMaxWorkers(cfg.Jobs.MaxWorkers),
		)...)
		if err != nil {
			return err
		}
		enqueuer = jobs
	}

	store := repository.NewStore(pool)
	tx := repository.NewTransactor(pool)

	catalogSvc := catalog.NewService(store.Exams, subjectCache(cfg, rdb), cfg.Cache.SubjectsTTL)
	pages := handlers.NewPages(catalogSvc, bundle.Languages())

	jar := cookie.New(cookie.WithSecure(cfg.Session.SecureCookie))

	readiness := []examdesk.HealthOption{examdesk.WithReadinessCheck("postgres", db.Healthcheck(pool))}
	if rdb != nil {
		readiness = append(readiness, examdesk.WithReadinessCheck("redis", redis.Healthcheck(rdb)))
	}

	opts := []examdesk.Option{
		examdesk.WithLogger(log),
		examdesk.WithRoutes(routes.Table),
		examdesk.WithCookieJar(jar),
		examdesk.WithSession(sessions,
			examdesk.WithSessionCookieName(cfg.Session.CookieName),
			examdesk.WithSessionTTL(cfg.Session.TTL),
			examdesk.WithSessionCookieJar(jar),
		),
		examdesk.WithMiddleware(
			middlewares.Recover(),
			middlewares.RequestID(),
			middlewares.I18n(bundle),
			middlewares.CSRF(),
			middlewares.Timeout(cfg.Server.RequestTimeout),
		),
		examdesk.WithErrorHandler(pages.ErrorHandler()),
		examdesk.WithNotFoundHandler(pages.NotFound),
		examdesk.WithStaticFiles("/static/", staticFiles(cfg), "."),
		examdesk.WithHealthChecks(readiness...),
		examdesk.WithHandlers(
			handlers.NewHome(pages, bundle),
			handlers.NewAuth(pages, auth.NewService(auth.NewPostgres(store))),
			handlers.NewCatalog(pages, catalogSvc),
			handlers.NewProfile(pages, catalogSvc),
			handlers.NewKeyQuestion(pages, catalogSvc,
				keyquestion.NewService(keyquestion.NewPostgres(store, tx, enqueuer))),
			handlers.NewRoles(pages, roles.NewService(roles.NewPostgres(store, tx))),
		),
	}
	if jobs != nil {
		opts = append(opts, examdesk.WithJobs(jobs))
	}

	runOpts := []examdesk.RunOption{
		examdesk.WithContext(ctx),
		examdesk.ShutdownTimeout(cfg.Server.ShutdownTimeout),
		examdesk.ShutdownHook(db.Shutdown(pool)),
	}
	if rdb != nil {
		runOpts = append(runOpts, examdesk.ShutdownHook(redis.Shutdown(rdb)))
	}

	// From here the shutdown hooks close the pool and redis.
	release = nil

	log.InfoContext(ctx, "starting server",
		slog.String("addr", cfg.Server.Addr),
		slog.String("session_store", cfg.Session.Store),
		slog.Bool("jobs", jobs != nil),
	)
	return examdesk.New(opts...).Run(cfg.Server.Addr, runOpts...)
}

// cleanups releases, in reverse order, what serve opened before the
// server took ownership.
type cleanups []func()

func (c *cleanups) add(fn func()) { *c = append(*c, fn) }

func (c *cleanups) run() {
	for i := len(*c) - 1; i >= 0; i-- {
		(*c)[i]()
	}
	*c = nil
}

func sessionStore(cfg *config.Config, pool *pgxpool.Pool, rdb goredis.UniversalClient) session.Store {
	switch cfg.Session.Store {
	case "redis":
		return session.NewRedisStore(rdb, cfg.Session.RedisPrefix)
	case "memory":
		return session.NewMemoryStore()
	default:
		return session.NewPostgresStore(pool)
	}
}

func subjectCache(cfg *config.Config, rdb goredis.UniversalClient) cache.Cache[[]repository.SubjectSummary] {
	if rdb != nil {
		return cache.NewRedis[[]repository.SubjectSummary](rdb, cfg.Cache.RedisPrefix)
	}
	return cache.NewMemory[[]repository.SubjectSummary]()
}

func staticFiles(cfg *config.Config) fs.FS {
	if cfg.Server.StaticDir != "" {
		return os.DirFS(cfg.Server.StaticDir)
	}
	return static.FS
}
