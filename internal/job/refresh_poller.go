package job

import (
	"context"
	"log"
	"time"

	"crypto-macro-dashboard/internal/domain"
	"crypto-macro-dashboard/internal/service"

	"go.opentelemetry.io/otel/trace"
)

// DashboardRefresher is the slice of the dashboard service the poller needs.
// Every getter caches its result, so calling it on the TTL cadence keeps the
// cache warm and pushes upstream latency out of the request path.
type DashboardRefresher interface {
	GetGlobalM2(ctx context.Context) ([]domain.M2Point, error)
	GetMarketCaps(ctx context.Context) (*domain.MarketCapSnapshot, error)
	GetMVRV(ctx context.Context, start time.Time) ([]domain.MVRVPoint, error)
	GetAHR999(ctx context.Context) ([]domain.AHRPoint, error)
	GetETFFlows(ctx context.Context, asset domain.FlowAsset) ([]domain.ETFFlowPoint, error)
	GetBTCTreasuries(ctx context.Context, topN int) ([]domain.BTCTreasuryRow, error)
	GetETHTreasuries(ctx context.Context, topN int) ([]domain.ETHTreasuryRow, error)
	GetSOLTreasuries(ctx context.Context, topN int) ([]domain.SOLTreasuryRow, error)
}

// RefreshPoller runs background goroutines that re-fetch each dashboard
// section on its cache cadence.
type RefreshPoller struct {
	tracer    trace.Tracer
	dashboard DashboardRefresher
	ttls      service.CacheTTLs
}

func NewRefreshPoller(tracer trace.Tracer, dashboard DashboardRefresher, ttls service.CacheTTLs) *RefreshPoller {
	if ttls.Flows <= 0 || ttls.Snapshot <= 0 || ttls.Slow <= 0 {
		ttls = service.DefaultCacheTTLs()
	}
	return &RefreshPoller{
		tracer:    tracer,
		dashboard: dashboard,
		ttls:      ttls,
	}
}

// Start launches one polling goroutine per cadence tier. Blocks until ctx is
// cancelled.
func (p *RefreshPoller) Start(ctx context.Context) {
	log.Println("Dashboard refresh poller starting...")

	// Tier 1: ETF flows, the fastest-moving sources.
	go p.pollLoop(ctx, "etf-flows", p.ttls.Flows, 0, p.refreshFlows)

	// Tier 2: market snapshot sources. Staggered so the initial burst does
	// not hit every upstream at once.
	go p.pollLoop(ctx, "snapshots", p.ttls.Snapshot, 10*time.Second, p.refreshSnapshots)

	// Tier 3: slow-moving series, annual M2 and the treasury tables.
	go p.pollLoop(ctx, "slow-series", p.ttls.Slow, 30*time.Second, p.refreshSlow)

	<-ctx.Done()
	log.Println("Dashboard refresh poller stopped")
}

func (p *RefreshPoller) pollLoop(ctx context.Context, name string, interval, delay time.Duration, fn func(context.Context) error) {
	if delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	// Run immediately on start
	if err := fn(ctx); err != nil {
		log.Printf("refresh %s initial run error: %v", name, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("refresh %s error: %v", name, err)
			}
		}
	}
}

func (p *RefreshPoller) refreshFlows(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "job.refresh-flows")
	defer span.End()

	var lastErr error
	for _, asset := range []domain.FlowAsset{domain.FlowAssetBTC, domain.FlowAssetETH} {
		if _, err := p.dashboard.GetETFFlows(ctx, asset); err != nil {
			log.Printf("flow refresh error for %s: %v", asset, err)
			lastErr = err
		}
	}
	return lastErr
}

func (p *RefreshPoller) refreshSnapshots(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "job.refresh-snapshots")
	defer span.End()

	var lastErr error
	if _, err := p.dashboard.GetMarketCaps(ctx); err != nil {
		log.Printf("market cap refresh error: %v", err)
		lastErr = err
	}
	if _, err := p.dashboard.GetMVRV(ctx, time.Time{}); err != nil {
		log.Printf("mvrv refresh error: %v", err)
		lastErr = err
	}
	if _, err := p.dashboard.GetAHR999(ctx); err != nil {
		log.Printf("ahr999 refresh error: %v", err)
		lastErr = err
	}
	return lastErr
}

func (p *RefreshPoller) refreshSlow(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "job.refresh-slow")
	defer span.End()

	var lastErr error
	if _, err := p.dashboard.GetGlobalM2(ctx); err != nil {
		log.Printf("m2 refresh error: %v", err)
		lastErr = err
	}
	if _, err := p.dashboard.GetBTCTreasuries(ctx, 0); err != nil {
		log.Printf("btc treasury refresh error: %v", err)
		lastErr = err
	}
	if _, err := p.dashboard.GetETHTreasuries(ctx, 0); err != nil {
		log.Printf("eth treasury refresh error: %v", err)
		lastErr = err
	}
	if _, err := p.dashboard.GetSOLTreasuries(ctx, 0); err != nil {
		log.Printf("sol treasury refresh error: %v", err)
		lastErr = err
	}
	return lastErr
}
