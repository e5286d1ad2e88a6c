package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/blogdraft/internal/bootstrap"
	"github.com/gogotex/blogdraft/internal/config"
	"github.com/gogotex/blogdraft/internal/export"
	"github.com/gogotex/blogdraft/internal/post/handler"
	"github.com/gogotex/blogdraft/internal/post/repository"
	"github.com/gogotex/blogdraft/internal/post/service"
	"github.com/gogotex/blogdraft/pkg/logger"
	"github.com/gogotex/blogdraft/pkg/metrics"
	"github.com/gogotex/blogdraft/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: store=%s export=%s redis=%v", cfg.Store.Backend, cfg.Export.Backend, cfg.Redis.Host != "")

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	backends, err := bootstrap.Open(ctx, cfg, bootstrap.Options{FallbackToMemory: true})
	if err != nil {
		logger.Fatalf("failed to open backends: %v", err)
	}
	defer backends.Close()

	r := gin.New()

	// Lightweight CORS for the browser editor.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && backends.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(backends.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
		logger.Infof("rate limiter enabled: rps=%g burst=%d redis=%v", cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.UseRedis && backends.Redis != nil)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: the configured store must be the one in use, and Redis
	// must be up when the limiter depends on it
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"store":  backends.StoreBackend == cfg.Store.Backend,
			"export": backends.Saver != nil,
		}
		if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
			deps["redis"] = backends.Redis != nil
		}
		ready := true
		for _, ok := range deps {
			ready = ready && ok
		}
		uptime := time.Since(startTime).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})

	svc := service.New(repository.New(backends.Store, cfg.Store.Key))
	handler.RegisterPostRoutes(r, svc, export.NewPipeline(export.WithPDFFont(cfg.Export.PDFFont)), backends.Saver)
	handler.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("starting blogdraft service on %s (store=%s)", addr, backends.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
