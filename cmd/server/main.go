package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"student-qr/backend/config"
	"student-qr/backend/internal/api/handler"
	"student-qr/backend/internal/api/router"
	"student-qr/backend/internal/dto"
	"student-qr/backend/internal/repository"
	"student-qr/backend/internal/scheduler"
	"student-qr/backend/internal/service"
	"student-qr/backend/pkg/database"
	"student-qr/backend/pkg/jwt"
	applogger "student-qr/backend/pkg/logger"
	"student-qr/backend/pkg/qrcode"
	"student-qr/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to the config file (default ./config/config.yaml)")
	flag.Parse()

	// 1. load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	loc, _ := cfg.Calendar.Location() // checked by Validate
	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", loc.String()),
	)

	// 3. database
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	logger.Info("database connected")

	// 3.1 migrations
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations failed", zap.Error(err))
	}

	// 4. Redis is optional; without it tokens cannot be revoked and login is not rate limited
	var (
		blacklist   service.TokenBlacklist
		routerDeps  router.Deps
		redisClient *redis.Client
	)
	redisClient, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token blacklist and login rate limit disabled", zap.Error(err))
		redisClient = nil
	} else {
		blacklist = redisClient
		routerDeps = router.Deps{Blacklist: redisClient, RateLimiter: redisClient}
	}

	// 5. JWT, QR codes, binding tags
	jwtMgr := jwt.NewManager(&cfg.Auth)

	qrGen, err := qrcode.NewGenerator(cfg.QR.Directory, cfg.QR.Size)
	if err != nil {
		logger.Fatal("init qr code directory failed", zap.String("dir", cfg.QR.Directory), zap.Error(err))
	}

	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal("register validators failed", zap.Error(err))
	}

	// 6. wiring: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, qrGen, loc, logger)
	h := handler.NewHandler(svc, sqlDB)

	// 7. seed data
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if n, err := svc.Auth.SeedUsers(seedCtx); err != nil {
		logger.Error("seed users failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("default users created", zap.Int("count", n))
	}
	if cfg.Calendar.SeedOnStartup {
		if _, err := svc.Calendar.InitializeDefaults(seedCtx, 0); err != nil {
			logger.Error("seed calendar failed", zap.Error(err))
		}
	}
	seedCancel()

	// 8. daily auto-mark sweep
	sweep := scheduler.NewAutoMarkScheduler(svc.Calendar, loc, logger)
	if err := sweep.Start(cfg.Calendar.AutoMarkCron); err != nil {
		logger.Fatal("start auto-mark scheduler failed", zap.Error(err))
	}

	// 9. HTTP server with graceful shutdown
	engine := router.Setup(cfg, h, jwtMgr, routerDeps, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	sweep.Stop()

	if err := sqlDB.Close(); err != nil {
		logger.Error("close database failed", zap.Error(err))
	}

	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("server stopped")
}
