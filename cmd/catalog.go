package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	authController "github.com/widyatma/catalog/internal/auth/controller"
	authService "github.com/widyatma/catalog/internal/auth/service"
	"github.com/widyatma/catalog/internal/config"
	"github.com/widyatma/catalog/internal/constants"
	inHttp "github.com/widyatma/catalog/internal/http"
	"github.com/widyatma/catalog/internal/infra"
	"github.com/widyatma/catalog/internal/log"
	"github.com/widyatma/catalog/internal/middleware"
	"github.com/widyatma/catalog/internal/otel"
	"github.com/widyatma/catalog/internal/ratelimit"
	"github.com/widyatma/catalog/internal/repository"
	"github.com/widyatma/catalog/internal/session"
	productController "github.com/widyatma/catalog/internal/product/controller"
	productService "github.com/widyatma/catalog/internal/product/service"
)

func RunCatalogServer(c context.Context) {
	c, span := otel.Tracer.Start(c, "RunCatalogServer")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppCatalogService).
		Str(log.KeyTag, "main RunCatalogServer").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppCatalogService)
	logger = logger.With().Any(log.KeyConfig, cfg).Logger()
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := otel.InitOtelSdk(c, constants.AppCatalogService, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("initialized otel sdk")
	defer func() {
		logger.Info().Msg("shutting down otel")
		if err := otel.ShutdownOtel(c, shutdownFuncs); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	logger.Info().Msg("initialized database")
	defer func() {
		logger := logger.With().Str(log.KeyProcess, "shutting down database connection").Logger()
		logger.Info().Msg("shutting down database connection")
		db.Close()
		logger.Info().Msg("shutdown database connection")
	}()

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	logger.Info().Msg("initialized cache")
	defer func() {
		logger := logger.With().Str(log.KeyProcess, "shutting down cache connection").Logger()
		logger.Info().Msg("shutting down cache connection")
		if err := cache.Close(); err != nil {
			err = fmt.Errorf("failed closing cache with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown cache connection")
	}()

	logger = logger.With().Str(log.KeyProcess, "initializing rate limiters").Logger()
	logger.Info().Msg("initializing rate limiters")
	c = logger.WithContext(c)
	readLimiter := ratelimit.NewLimiter(ratelimit.Read)
	writeLimiter := ratelimit.NewLimiter(ratelimit.Write)
	readLimiter.StartCleanup(c)
	writeLimiter.StartCleanup(c)
	logger.Info().Msg("initialized rate limiters")

	logger = logger.With().Str(log.KeyProcess, "initializing services").Logger()
	logger.Info().Msg("initializing services")
	queries := repository.New(db)
	products := productService.NewProductService(queries, cache)
	auth := authService.NewAuthService(cfg.Admin, cfg.Application.Env, session.Base64Codec{})
	logger.Info().Msg("initialized services")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.StrictSlash(true)
	router.Use(
		otelmux.Middleware(constants.AppCatalogService),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		inHttp.WriteJsonResponse(r.Context(), w, map[string]string{}, http.StatusOK,
			map[string]interface{}{"success": true, "message": "ok"})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "attaching controllers").Logger()
	logger.Info().Msg("attaching controllers")
	productController.AttachProductController(router, &products, readLimiter, writeLimiter, auth)
	authController.AttachAuthController(router, &auth)
	logger.Info().Msg("attached controllers")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	server := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("encounter error=%w while running server", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interruption signal shutting down")
	c = logger.WithContext(context.WithoutCancel(c))
	shutdownCtx, cancel := context.WithTimeout(c, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down server with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("server completely shutdown")
}
