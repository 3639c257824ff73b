package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"

	"animehub/internal/auth"
	"animehub/internal/catalog"
	"animehub/internal/logging"
	"animehub/internal/middleware"
	"animehub/internal/server"
	synchub "animehub/internal/sync"
	"animehub/pkg/config"
	"animehub/pkg/database"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(database.Config{
		Driver:       cfg.Database.Driver,
		Path:         cfg.Database.Path,
		DSN:          cfg.Database.DSN,
		LogLevel:     cfg.Database.LogLevel,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	}, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("open database")
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		logging.Fatal().Err(err).Msg("db migrate failed")
	}

	hub := synchub.NewHub()

	authSvc := auth.NewService(auth.NewRepo(db), auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTTTL,
	})
	authSvc.Cost = cfg.Auth.BcryptCost

	router := server.NewRouter(server.Deps{
		DB:      db,
		Auth:    authSvc,
		Catalog: catalog.NewService(db, hub),
		Hub:     hub,
	})

	httpSrv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: middleware.Wrap(router, middleware.Security{
			RateLimitRequests: cfg.Security.RateLimitRequests,
			RateLimitWindow:   cfg.Security.RateLimitWindow,
			CORSOrigins:       cfg.Security.CORSOrigins,
		}),
	}

	var tcpSrv *synchub.Server
	if cfg.Server.SyncAddr != "" {
		tcpSrv = synchub.NewServer(cfg.Server.SyncAddr, hub)
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	if tcpSrv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Run(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logging.Info().Str("addr", cfg.Server.Addr).Str("driver", cfg.Database.Driver).Msg("HTTP API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		logging.Error().Err(err).Msg("server error")
	}

	logging.Info().Msg("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("http shutdown error")
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			logging.Warn().Err(err).Msg("tcp shutdown error")
		}
	}
	hub.CloseAll()

	wg.Wait()
	logging.Info().Msg("servers stopped")
}
