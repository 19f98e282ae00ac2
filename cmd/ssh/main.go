package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"crypto-macro-dashboard/internal/advisor"
	"crypto-macro-dashboard/internal/cache"
	"crypto-macro-dashboard/internal/config"
	"crypto-macro-dashboard/internal/provider"
	"crypto-macro-dashboard/internal/repository"
	"crypto-macro-dashboard/internal/service"
	"crypto-macro-dashboard/internal/tui"
	"crypto-macro-dashboard/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
)

var (
	loadEnvFunc           = godotenv.Load
	loadConfigFunc        = config.Load
	initRedisFunc         = cache.InitRedis
	initTracerFunc        = tracing.InitTracer
	newDashboardSvcFunc   = service.NewDashboardService
	newOpenAIClientFunc   = advisor.NewOpenAIClient
	newAdvisorServiceFunc = advisor.NewAdvisorService
	newWishServerFunc     = wish.NewServer
	setupSignalNotify     = ossignal.Notify
	waitForSignalFunc     = func(quit <-chan os.Signal) { <-quit }
)

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

	// Advisor (optional)
	var advisorSvc *advisor.AdvisorService
	if cfg.OpenAIAPIKey != "" {
		convRepo := repository.NewConversationRepository(cache.Client, tracer, cfg.AdvisorMaxHistory*5)
		llmClient := newOpenAIClientFunc(cfg.OpenAIAPIKey)
		advisorSvc = newAdvisorServiceFunc(tracer, llmClient, dashboardSvc,
			convRepo, cfg.OpenAIModel, cfg.AdvisorMaxHistory)
		log.Println("SSH advisor service enabled")
	}

	// Per-session advisor conversation IDs
	var sessionCounter atomic.Int64

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				var advisorQ tui.AdvisorQuerier
				if advisorSvc != nil {
					advisorQ = advisorSvc
				}

				svc := tui.Services{
					Dashboard: dashboardSvc,
					Advisor:   advisorQ,
					Username:  s.User(),
					SessionID: sessionCounter.Add(1),
				}

				model := tui.NewAppModel(svc)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}
