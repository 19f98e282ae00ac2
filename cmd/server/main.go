package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-macro-dashboard/internal/advisor"
	"crypto-macro-dashboard/internal/bot"
	"crypto-macro-dashboard/internal/cache"
	"crypto-macro-dashboard/internal/config"
	"crypto-macro-dashboard/internal/handler"
	"crypto-macro-dashboard/internal/job"
	"crypto-macro-dashboard/internal/provider"
	"crypto-macro-dashboard/internal/repository"
	"crypto-macro-dashboard/internal/service"
	"crypto-macro-dashboard/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "crypto-macro-dashboard/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newDashboardSvcFunc    = service.NewDashboardService
	newRefreshPollerFunc   = job.NewRefreshPoller
	startPollerFunc        = func(p *job.RefreshPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newOpenAIClientFunc    = advisor.NewOpenAIClient
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Crypto Macro Dashboard API
// @version         1.0
// @description     Macro and on-chain data aggregation for the bitcoin cycle dashboard.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initRedisFunc(ctx, cfg.RedisURL)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Wire providers into the dashboard service
	dashboardSvc := newDashboardSvcFunc(
		tracer,
		provider.NewWorldBankProvider(tracer),
		provider.NewMarketCapProvider(tracer),
		provider.NewCoinMetricsProvider(tracer),
		provider.NewAHR999Provider(tracer),
		provider.NewFarsideFlowProvider(tracer),
		provider.NewTreasuryProvider(tracer),
		cache.Client,
		service.CacheTTLs{
			Flows:    cfg.FlowCacheTTL,
			Snapshot: cfg.SnapshotCacheTTL,
			Slow:     cfg.SlowCacheTTL,
		},
		cfg.MVRVStart,
		cfg.TreasuryTopN,
	)

	// Background cache warming (stopped by ctx cancel)
	if cfg.RefreshEnabled {
		poller := newRefreshPollerFunc(tracer, dashboardSvc, service.CacheTTLs{
			Flows:    cfg.FlowCacheTTL,
			Snapshot: cfg.SnapshotCacheTTL,
			Slow:     cfg.SlowCacheTTL,
		})
		startPollerFunc(poller, ctx)
	}

	// Advisor (optional)
	var advisorSvc *advisor.AdvisorService
	if cfg.OpenAIAPIKey != "" {
		convRepo := repository.NewConversationRepository(cache.Client, tracer, cfg.AdvisorMaxHistory*5)
		llmClient := newOpenAIClientFunc(cfg.OpenAIAPIKey)
		advisorSvc = advisor.NewAdvisorService(tracer, llmClient, dashboardSvc,
			convRepo, cfg.OpenAIModel, cfg.AdvisorMaxHistory)
		log.Println("Advisor service enabled")
	}

	// Start Telegram bot
	startTelegramBotFunc(cfg.TelegramBotToken, dashboardSvc, advisorSvc)

	// Create handlers and routes
	h := newHandlerFunc(tracer, dashboardSvc)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("crypto-macro-dashboard"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
