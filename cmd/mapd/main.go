package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"wanderer/internal/broadcast"
	"wanderer/internal/config"
	cronrunner "wanderer/internal/cron"
	"wanderer/internal/db"
	"wanderer/internal/handler"
	"wanderer/internal/logger"
	"wanderer/internal/pending"
	"wanderer/internal/platform"
	gormrepository "wanderer/internal/repository/gorm"
	"wanderer/internal/service"

	_ "wanderer/docs"
)

func main() {
	cfgPath := os.Getenv("WM_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("WM_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn.Gorm); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	settingsSvc := &service.SettingsService{Repo: store}
	if err := settingsSvc.EnsureDefaultSwitches(context.Background()); err != nil {
		logger.Warn("init default feature switches failed", zap.Error(err))
	}

	hub := broadcast.NewHub(logger)
	expirySvc := &service.SignatureExpiryService{
		Repo:   store,
		Config: cfg.Signatures,
		Hub:    hub,
		Logger: logger,
		Flags:  settingsSvc,
	}
	updateSvc := &service.SignatureUpdateService{
		Repo:   store,
		Config: cfg.Signatures,
		Hub:    hub,
		Logger: logger,
		Flags:  settingsSvc,
		Expiry: expirySvc,
	}
	tracker := &pending.Tracker{
		Delay:  cfg.Signatures.PendingDelay,
		Remove: updateSvc.RemoveNow,
		Logger: logger,
	}
	updateSvc.Tracker = tracker
	defer tracker.Stop()

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	platformClient := initPlatformClient(logger)
	engine.Use(platform.RequireBearerMiddleware())
	engine.Use(platform.InjectClientMiddleware(platformClient))
	engine.Use(platform.WriteAuditMiddleware(platformClient, logger))

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	platform.RegisterDocs(engine)

	systemsHandler := &handler.SystemsHandler{Repo: store}
	systemsHandler.Register(engine)
	signaturesHandler := &handler.SignaturesHandler{Repo: store, Svc: updateSvc}
	signaturesHandler.Register(engine)
	settingsHandler := &handler.SettingsHandler{Repo: store, Settings: settingsSvc}
	settingsHandler.Register(engine)
	wsHandler := &handler.WSHandler{Hub: hub, Logger: logger}
	wsHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseCtx := ctx
	if platformClient != nil {
		baseCtx = platform.WithClient(ctx, platformClient)
	}

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, baseCtx)
		_, err = cronRunner.Add(cfg.Cron.SignatureGC, func(ctx context.Context) {
			if err := expirySvc.RunOnceIfEnabled(ctx); err != nil {
				logger.Warn("signature gc failed", zap.Error(err))
				platform.LogBestEffortCtx(ctx, platform.GCFailedLog(err))
			}
		})
		if err != nil {
			logger.Warn("cron register signature gc failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func initPlatformClient(logger *zap.Logger) *platform.Client {
	base := strings.TrimSpace(os.Getenv("WANDERER_PLATFORM_BASE"))
	apiKey := strings.TrimSpace(os.Getenv("WANDERER_PLATFORM_KEY"))
	if base == "" || apiKey == "" {
		return nil
	}

	p := &platform.Client{BaseURL: base, APIKey: apiKey}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.Login(ctx); err != nil {
		if logger != nil {
			logger.Warn("platform login failed (audit logs disabled)", zap.Error(err))
		}
		return nil
	}
	if logger != nil {
		logger.Info("platform login ok")
	}
	return p
}
