package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading_academy_backend/internal/config"
	"trading_academy_backend/internal/controller"
	"trading_academy_backend/internal/repository"
	"trading_academy_backend/internal/service"
	"trading_academy_backend/pkg/configwatcher"
	"trading_academy_backend/pkg/database"
	"trading_academy_backend/pkg/logger"
	"trading_academy_backend/pkg/monitoring"
	"trading_academy_backend/pkg/security"
	"trading_academy_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	Redis  *redis.Client

	services        *services
	configCallbacks []func(*config.Config)
	tracer          *sdktrace.TracerProvider
	ready           chan struct{}
	ctx             context.Context
	cancel          context.CancelFunc
}

type repositories struct {
	course   *repository.CourseRepository
	session  repository.SessionRepository
	waitlist *repository.WaitlistRepository
}

type services struct {
	course    *service.CourseService
	viewer    *service.ViewerService
	auth      *service.AuthService
	dashboard *service.DashboardService
	waitlist  *service.WaitlistService
}

type controllers struct {
	auth      *controller.AuthController
	course    *controller.CourseController
	viewer    *controller.ViewerController
	dashboard *controller.DashboardController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// Ready is closed once the initial catalog load has finished.
func (a *App) Ready() <-chan struct{} {
	return a.ready
}

func (a *App) initRepositories(cfg *config.Config, rdb *redis.Client) *repositories {
	var sessions repository.SessionRepository
	if rdb != nil {
		sessions = repository.NewRedisSessionRepository(rdb, cfg.Session.KeyPrefix)
	} else {
		sessions = repository.NewMemorySessionRepository()
	}

	return &repositories{
		course:   repository.NewCourseRepository(),
		session:  sessions,
		waitlist: repository.NewWaitlistRepository(),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) (*services, error) {
	s := &services{}

	s.course = service.NewCourseService(repos.course, cfg)
	s.viewer = service.NewViewerService(s.course)

	auth, err := service.NewAuthService(repos.session, s.viewer, cfg)
	if err != nil {
		return nil, err
	}
	s.auth = auth

	s.waitlist = service.NewWaitlistService(repos.waitlist)
	s.dashboard = service.NewDashboardService(s.course, repos.waitlist)

	return s, nil
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		course:    controller.NewCourseController(s.course),
		viewer:    controller.NewViewerController(s.viewer),
		dashboard: controller.NewDashboardController(s.dashboard, s.waitlist),
		health:    controller.NewHealthController(a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, cfg.RateLimitWindow()))

	// Distributed tracing
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// loadCatalog simulates the initial catalog fetch in the background.
func (a *App) loadCatalog() {
	defer close(a.ready)
	if a.Config.NoSeed || !a.Config.Catalog.Seed {
		return
	}
	if err := a.services.course.LoadCatalog(a.ctx, repository.SeedCourses()); err != nil {
		logger.Log.Error("Failed to load course catalog", zap.Error(err))
	}
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	var rdb *redis.Client
	if cfg.Session.Store == "redis" {
		var err error
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, err
		}
	}

	app, err := assemble(cfg, rdb)
	if err != nil {
		return nil, err
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	return app, nil
}

func assemble(cfg *config.Config, rdb *redis.Client) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		Redis:  rdb,
		ready:  make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}

	repos := app.initRepositories(cfg, rdb)
	services, err := app.initServices(repos, cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	app.services = services
	controllers := app.initControllers(services)

	// Metrics
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, services)

	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetMode(c.Server.Mode)
	})
	app.RegisterConfigCallback(func(c *config.Config) {
		services.course.SetLatency(c.Catalog.SimulatedLatency)
	})

	go app.loadCatalog()

	return app, nil
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) watchConfig() {
	if a.Config.ConfigPath == "" {
		return
	}
	go func() {
		if err := configwatcher.Watch(a.ctx, a.Config.ConfigPath, time.Second, a.applyConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

// Close releases background workers, the tracer and the Redis client.
func (a *App) Close() {
	a.cancel()

	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Error("Failed to close redis", zap.Error(err))
		}
	}
}

func (a *App) Run() error {
	defer a.Close()

	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.watchConfig()

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for an interrupt, then shut down gracefully with a 5 second timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	logger.Log.Info("Server exiting")
	return nil
}
