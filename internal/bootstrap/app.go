package bootstrap

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/sheetexport/internal/config"
	"github.com/locvowork/sheetexport/internal/database"
	"github.com/locvowork/sheetexport/internal/handler"
	"github.com/locvowork/sheetexport/internal/logger"
	"github.com/locvowork/sheetexport/internal/service"
	"github.com/locvowork/sheetexport/internal/source"
)

type App struct {
	Echo    *echo.Echo
	Clients source.Clients
	Service *service.ExportService

	closers []func() error
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

// Setup loads configuration, starts logging, connects the configured data
// backends and builds the export service. envFiles default to ".env".
func (a *App) Setup(ctx context.Context, envFiles ...string) error {
	if err := config.LoadEnvConfig(envFiles...); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	opts, err := cfg.ExportOptions()
	if err != nil {
		return fmt.Errorf("invalid export settings: %w", err)
	}

	if err := a.connectBackends(ctx); err != nil {
		a.Close()
		return err
	}

	a.Service = service.NewExportService(opts, a.Clients)
	return nil
}

func (a *App) connectBackends(ctx context.Context) error {
	cfg := config.DefaultEnvConfig

	if cfg.DB_HOST != "" {
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:            cfg.DB_HOST,
			Port:            cfg.DB_PORT,
			User:            cfg.DB_USER,
			Password:        cfg.DB_PASSWORD,
			DBName:          cfg.DB_NAME,
			SSLMode:         cfg.DB_SSL_MODE,
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		a.Clients.DB = db
		a.closers = append(a.closers, db.Close)
		logger.InfoLog(ctx, "Database connection established successfully")
	}

	if cfg.ES_URL != "" {
		es, err := database.NewElasticClient(cfg.ES_URL)
		if err != nil {
			return err
		}
		a.Clients.Elastic = es
		a.closers = append(a.closers, func() error {
			es.Stop()
			return nil
		})
		logger.InfoLog(ctx, "Elasticsearch client ready at %s", cfg.ES_URL)
	}

	if cfg.DATASTORE_PROJECT_ID != "" {
		ds, err := database.NewDatastoreClient(ctx, cfg.DATASTORE_PROJECT_ID)
		if err != nil {
			return err
		}
		a.Clients.Datastore = ds
		a.closers = append(a.closers, ds.Close)
		logger.InfoLog(ctx, "Datastore client ready for project %s", cfg.DATASTORE_PROJECT_ID)
	}
	return nil
}

// Initialize prepares the HTTP server.
func (a *App) Initialize(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}

	exportHandler := handler.NewExportHandler(a.Service)

	a.RegisterMiddlewares()
	a.RegisterRoutes(exportHandler)
	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.RequestID())
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(handler.RequestLogger())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(exportHandler *handler.ExportHandler) {
	a.Echo.GET("/healthz", handler.HealthHandler)

	exportGroup := a.Echo.Group("/export")
	exportGroup.POST("", exportHandler.ExportFileHandler)
	exportGroup.POST("/preview", exportHandler.PreviewHandler)
}

// Close releases the backend connections.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *App) Run() error {
	defer a.Close()
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
