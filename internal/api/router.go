package api

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/forkintheroad/fitr-admin/internal/admin"
	"github.com/forkintheroad/fitr-admin/internal/alert"
	"github.com/forkintheroad/fitr-admin/internal/api/docs"
	"github.com/forkintheroad/fitr-admin/internal/api/handler"
	adminHandler "github.com/forkintheroad/fitr-admin/internal/api/handler/admin"
	"github.com/forkintheroad/fitr-admin/internal/api/middleware"
	"github.com/forkintheroad/fitr-admin/internal/audit"
	"github.com/forkintheroad/fitr-admin/internal/cache"
	"github.com/forkintheroad/fitr-admin/internal/config"
	"github.com/forkintheroad/fitr-admin/internal/metrics"
	"github.com/forkintheroad/fitr-admin/internal/monitor"
	"github.com/forkintheroad/fitr-admin/internal/notify"
	"github.com/forkintheroad/fitr-admin/internal/ratelimit"
	"github.com/forkintheroad/fitr-admin/internal/settings"
	"github.com/forkintheroad/fitr-admin/internal/usage"
	"github.com/forkintheroad/fitr-admin/internal/ws"
)

type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	Sender  notify.Sender
	Sampler monitor.Sampler
	Metrics *metrics.Collectors
	Version string
	// DisableWorkers skips the monitor and cost loops and both janitors.
	DisableWorkers bool
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
	wsHub       *ws.Hub
	notifier    *alert.Notifier
	cancelBG    context.CancelFunc
	background  sync.WaitGroup
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Fork In The Road Admin API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	var (
		m       *metrics.Collectors
		db      handler.Pinger
		version string
		origins = "*"
	)
	if r.deps != nil {
		m = r.deps.Metrics
		version = r.deps.Version
		if r.deps.DB != nil {
			db = r.deps.DB
		}
		if r.deps.Config != nil && r.deps.Config.CORSOrigins != "" {
			origins = r.deps.Config.CORSOrigins
		}
	}

	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger, m))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	healthHandler := handler.NewHealthHandler(db, version)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if m != nil {
		r.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// Only configure admin routes if dependencies were provided
	if r.deps == nil || r.deps.Config == nil {
		return
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	r.cancelBG = cancel

	// Initialize WebSocket Hub
	r.wsHub = ws.NewHub()
	r.goBackground(func() { r.wsHub.Run(bgCtx) })

	cfg := r.deps.Config
	auditLogger := audit.NewSlogLogger(r.logger)

	settingsService := settings.NewService(r.settingsStore(), auditLogger, r.wsHub, r.logger)

	sender := r.deps.Sender
	if sender == nil {
		sender = notify.NewLogSender(r.logger)
	}
	r.notifier = alert.NewNotifier(sender, settingsService, cfg.AlertEmailRecipients, auditLogger, m, r.logger)

	alertService := alert.NewService(r.alertRepository(), r.logger,
		alert.WithDispatcher(r.notifier),
		alert.WithAudit(auditLogger),
		alert.WithBroadcaster(r.wsHub),
		alert.WithMetrics(m),
	)

	usageOpts := []usage.Option{usage.WithMetrics(m)}
	var usageRepo *usage.Repository
	var pgCache *cache.PGCache
	var quotaCounter *ratelimit.Counter
	if r.deps.DB != nil {
		usageRepo = usage.NewRepository(r.deps.DB)
		pgCache = cache.NewPGCache(r.deps.DB)
		quotaCounter = ratelimit.NewCounter(r.deps.DB)
		usageOpts = append(usageOpts, usage.WithCache(usage.NewCacheAdapter(pgCache), cfg.AnalyticsCacheTTL))
	}

	if !r.deps.DisableWorkers {
		cooldown := alert.NewCooldown(cfg.AlertCooldown)

		sampler := r.deps.Sampler
		if sampler == nil {
			sampler = monitor.NewHostSampler("/")
		}
		monitorWorker := monitor.NewWorker(sampler, alertService, settingsService, cooldown, m, r.logger, cfg.MonitorInterval)
		r.goBackground(func() { monitorWorker.Run(bgCtx) })

		if usageRepo != nil {
			costWorker := usage.NewWorker(usageRepo, alertService, settingsService, cooldown, r.logger, cfg.CostCheckInterval)
			r.goBackground(func() { costWorker.Run(bgCtx) })

			janitor := cache.NewJanitor(pgCache, 0, r.logger.With("table", "analytics_cache"))
			r.goBackground(func() { janitor.Run(bgCtx) })

			quotaJanitor := cache.NewJanitor(quotaCounter, 0, r.logger.With("table", "rate_limit_counters"))
			r.goBackground(func() { quotaJanitor.Run(bgCtx) })
		}
	}

	authDeps := middleware.AdminAuthDependencies{
		JWTService: admin.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		Logger:     r.logger,
	}

	// Rate limiting per admin, driven by the current settings
	r.rateLimiter = middleware.NewRateLimiter(middleware.SettingsRateLimiterConfig(settingsService))
	limits := []fiber.Handler{r.rateLimiter.Handler()}
	if quotaCounter != nil {
		// Hourly and daily quotas are shared across instances through Postgres
		limits = append(limits, middleware.Quota(quotaCounter, settingsService, r.logger))
	}

	adminGroup := r.app.Group("/api/admin")

	// Analytics reports auth failures as 500, so the handler checks identity itself
	if usageRepo != nil {
		usageService := usage.NewService(usageRepo, r.logger, usageOpts...)
		analyticsHandler := adminHandler.NewAnalyticsHandler(usageService, r.logger)
		chain := append([]fiber.Handler{middleware.OptionalAdminAuth(authDeps)}, limits...)
		adminGroup.Get("/analytics/usage", append(chain, analyticsHandler.Usage)...)
	}

	// WebSocket endpoint
	adminGroup.Get("/ws", middleware.AdminAuth(authDeps), ws.UpgradeMiddleware(), ws.Handler(r.wsHub))

	guard := append([]fiber.Handler{middleware.AdminAuth(authDeps)}, limits...)
	r.setupAdminRoutes(adminGroup, guard, alertService, settingsService)
}

func (r *Router) setupAdminRoutes(adminGroup fiber.Router, guard []fiber.Handler, alertService *alert.Service, settingsService *settings.Service) {
	alertsHandler := adminHandler.NewAlertsHandler(alertService, r.logger)
	settingsHandler := adminHandler.NewSettingsHandler(settingsService)
	performanceHandler := adminHandler.NewPerformanceHandler()

	var systemService *admin.Service
	if r.deps.DB != nil {
		systemService = admin.NewService(r.deps.DB, r.deps.Version, r.logger)
	} else {
		systemService = admin.NewServiceWithDB(nil, r.deps.Version, r.logger)
	}
	systemHandler := adminHandler.NewSystemHandler(systemService, r.logger)

	// Alerts routes
	alerts := adminGroup.Group("/alerts", guard...)
	alerts.Get("", alertsHandler.List)
	alerts.Post("", alertsHandler.Create)
	alerts.Put("", alertsHandler.Update)
	alerts.Delete("", alertsHandler.Delete)

	// Settings routes
	settingsGroup := adminGroup.Group("/settings", guard...)
	settingsGroup.Get("", settingsHandler.Get)
	settingsGroup.Put("", settingsHandler.Update)
	settingsGroup.Post("", settingsHandler.Reset)

	// Performance routes
	adminGroup.Group("/performance", guard...).Post("/compare", performanceHandler.Compare)

	// System routes
	system := adminGroup.Group("/system", guard...)
	system.Get("/health", systemHandler.GetSystemHealth)
	system.Get("/metrics", systemHandler.GetSystemMetrics)
}

func (r *Router) alertRepository() alert.Repository {
	if r.deps.Config.AlertStore == "postgres" && r.deps.DB != nil {
		return alert.NewPGRepository(r.deps.DB)
	}
	return alert.NewMemoryRepository()
}

func (r *Router) settingsStore() settings.Store {
	if r.deps.Config.SettingsStore == "postgres" && r.deps.DB != nil {
		return settings.NewPGStore(r.deps.DB)
	}
	return settings.NewMemoryStore()
}

func (r *Router) goBackground(fn func()) {
	r.background.Add(1)
	go func() {
		defer r.background.Done()
		fn()
	}()
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown stops the HTTP server, then the background loops, then waits for
// in-flight alert emails up to ctx's deadline.
func (r *Router) Shutdown(ctx context.Context) error {
	err := r.app.ShutdownWithContext(ctx)

	// Stop hub, workers and janitor
	if r.cancelBG != nil {
		r.cancelBG()
	}

	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	done := make(chan struct{})
	go func() {
		r.background.Wait()
		if r.notifier != nil {
			r.notifier.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn("shutdown deadline reached before background work finished")
	}

	return err
}
