package api

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/ethanbaker/flagdash/pkg/sdk"
	"github.com/ethanbaker/flagdash/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	flags_module "github.com/ethanbaker/flagdash/internal/api/modules/flags"
	health_module "github.com/ethanbaker/flagdash/internal/api/modules/health"
)

// NewEngine builds the gin engine serving the flag API
func NewEngine(cfg *utils.Config, flagService *flags_module.FlagService) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.NoRoute(noRouteHandler)

	// Add trusted proxies
	if err := engine.SetTrustedProxies(nil); err != nil {
		panic(errors.WithStack(err))
	}

	engine.Use(AttachRequestID(), RequestLogger())

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.GetListWithDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Adding custom modules
	health_module.RegisterRoutes(engine)
	flags_module.RegisterRoutes(engine, flagService)

	return engine
}

// Start serves the API until SIGINT or SIGTERM is received
func Start(cfg *utils.Config) error {
	gin.SetMode(cfg.GetWithDefault("GIN_MODE", gin.ReleaseMode))

	flagService, err := flags_module.Init(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to initialize flags module")
	}
	defer flagService.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.GetWithDefault("API_PORT", "8080"),
		Handler:           NewEngine(cfg, flagService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("api server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "failed to start server")
	case <-ctx.Done():
	}

	log.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetDurationWithDefault("SHUTDOWN_TIMEOUT", 10*time.Second))
	defer cancel()

	return errors.Wrap(server.Shutdown(shutdownCtx), "failed to shut down server")
}

// noRouteHandler answers unknown routes with the error envelope
func noRouteHandler(c *gin.Context) {
	c.JSON(sdk.NewErrorResponse(http.StatusNotFound, sdk.CodeNotFound, "Route not found").AsGinResponse())
}
