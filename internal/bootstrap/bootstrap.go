package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/studentdesk/internal/app/api"
	appControllers "github.com/yigit/studentdesk/internal/app/controllers"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/notify"
	appRoutes "github.com/yigit/studentdesk/internal/app/routes"
	appServices "github.com/yigit/studentdesk/internal/app/services"
	"github.com/yigit/studentdesk/internal/app/store"
	"github.com/yigit/studentdesk/internal/config"
	"github.com/yigit/studentdesk/internal/devapi"
	appMiddleware "github.com/yigit/studentdesk/internal/middleware"
	"github.com/yigit/studentdesk/internal/pkg/filestorage"
	"github.com/yigit/studentdesk/internal/pkg/helpers"
	"github.com/yigit/studentdesk/internal/pkg/logger"
	"github.com/yigit/studentdesk/internal/pkg/websocket"
	"github.com/yigit/studentdesk/internal/seed"
)

// SessionProfile is the identity shown by the session view
var SessionProfile = models.Profile{Name: "User", Role: "Administrator", LoggedIn: true}

// Dependencies holds everything one desk session needs
type Dependencies struct {
	Client        *api.Client
	Store         *store.Store
	Notifications *notify.Channel
	Hub           *websocket.Hub

	StudentService appServices.StudentService
	CourseService  appServices.CourseService

	Controllers appRoutes.Controllers
	Logger      zerolog.Logger

	cancel context.CancelFunc
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		l := logger.Get()
		l.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// BuildDependencies creates the API client, the session state and the view
// services and controllers. Nothing is started until Start is called.
func BuildDependencies(cfg *config.Config, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr}

	deps.Client = api.NewClient(cfg.APIBaseURL(), api.WithLogger(logger.Component("api")))
	deps.Store = store.New(deps.Client, store.WithLogger(logger.Component("store")))
	deps.Notifications = notify.NewChannel(
		notify.WithLogger(logger.Component("notify")),
		notify.WithDefaultDuration(helpers.ParseDuration(cfg.Notifications.DefaultDuration, models.DefaultNotificationDuration)),
	)
	deps.Hub = websocket.NewHub(logger.Component("ws"))

	deps.StudentService = appServices.NewStudentService(deps.Store, deps.Notifications, lgr)
	deps.CourseService = appServices.NewCourseService(deps.Store, deps.Client, deps.Notifications, lgr)

	deps.Controllers = appRoutes.Controllers{
		Student:      appControllers.NewStudentController(deps.StudentService),
		Course:       appControllers.NewCourseController(deps.CourseService),
		Notification: appControllers.NewNotificationController(deps.Notifications),
		Session:      appControllers.NewSessionController(SessionProfile),
		WebSocket:    websocket.NewHandler(deps.Hub, lgr),
	}

	return deps
}

// Start runs the hub, relays store and notification events to it and kicks
// off the initial course and student loads.
func (d *Dependencies) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)

	go d.Hub.Run(ctx)
	go websocket.Relay(ctx, d.Hub, websocket.TypeChange, d.Store.Subscribe(),
		func(c store.Change) string { return string(c.Action) })
	go websocket.Relay(ctx, d.Hub, websocket.TypeNotification, d.Notifications.Subscribe(),
		func(e notify.Event) string { return string(e.Type) })

	go func() {
		if err := d.Store.Init(ctx); err != nil {
			d.Logger.Warn().Err(err).Msg("Initial load finished with errors")
		}
	}()
}

// Close tears the session down; results of in-flight requests are discarded
func (d *Dependencies) Close() {
	d.Store.Close()
	d.Notifications.Close()
	if d.cancel != nil {
		d.cancel()
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	setGinMode(cfg, lgr)

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router, deps.Controllers)
	return router
}

// DevAPI is the reference backend with its storage
type DevAPI struct {
	Repository *devapi.Repository
	Router     *gin.Engine
}

// BuildDevAPI creates the in-memory reference backend, seeds its courses and
// returns its router.
func BuildDevAPI(cfg *config.Config, lgr zerolog.Logger) (*DevAPI, error) {
	setGinMode(cfg, lgr)

	storageBaseURL := "http://localhost:" + cfg.DevAPI.Port + devapi.UploadsPath
	storage, err := filestorage.NewLocalStorage(cfg.DevAPI.StoragePath, storageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	repo := devapi.NewRepository()
	if err := seed.CreateDefaultCourses(repo, cfg.DevAPI.SeedFile, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default courses, proceeding anyway...")
	}

	handler := devapi.NewHandler(repo, storage, lgr)
	return &DevAPI{
		Repository: repo,
		Router:     devapi.NewRouter(handler, cfg.DevAPI.StoragePath, lgr),
	}, nil
}

// ShutdownTimeout returns the configured graceful shutdown timeout
func ShutdownTimeout(cfg *config.Config) time.Duration {
	return helpers.ParseDuration(cfg.Server.ShutdownTimeout, 5*time.Second)
}

func setGinMode(cfg *config.Config, lgr zerolog.Logger) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Debug().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
	}
}
