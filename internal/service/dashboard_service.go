package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"crypto-macro-dashboard/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// The fetch core never caches; every TTL here belongs to the serving layer
// and mirrors the upstream publication cadence: ETF flows update intraday,
// snapshots every half hour is plenty, M2 and treasury tables move slowly.
type CacheTTLs struct {
	Flows    time.Duration
	Snapshot time.Duration
	Slow     time.Duration
}

func DefaultCacheTTLs() CacheTTLs {
	return CacheTTLs{
		Flows:    15 * time.Minute,
		Snapshot: 30 * time.Minute,
		Slow:     time.Hour,
	}
}

type M2Fetcher interface {
	FetchGlobalM2(ctx context.Context) ([]domain.M2Point, error)
}

type MarketCapFetcher interface {
	FetchSnapshot(ctx context.Context) (*domain.MarketCapSnapshot, error)
}

type MVRVFetcher interface {
	FetchMVRVSeries(ctx context.Context, start time.Time) ([]domain.MVRVPoint, error)
}

type AHRFetcher interface {
	FetchSeries(ctx context.Context) ([]domain.AHRPoint, error)
}

type FlowFetcher interface {
	FetchFlows(ctx context.Context, asset domain.FlowAsset) ([]domain.ETFFlowPoint, error)
}

type TreasuryFetcher interface {
	FetchBTCTreasuries(ctx context.Context, topN int) ([]domain.BTCTreasuryRow, error)
	FetchETHTreasuries(ctx context.Context, topN int) ([]domain.ETHTreasuryRow, error)
	FetchSOLTreasuries(ctx context.Context, topN int) ([]domain.SOLTreasuryRow, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// DashboardService layers per-source caching and aggregate assembly on top
// of the one-shot fetch providers.
type DashboardService struct {
	tracer trace.Tracer

	m2         M2Fetcher
	marketCaps MarketCapFetcher
	mvrv       MVRVFetcher
	ahr        AHRFetcher
	flows      FlowFetcher
	treasuries TreasuryFetcher

	redis RedisClient
	ttls  CacheTTLs

	mvrvStart time.Time
	topN      int
}

func NewDashboardService(
	tracer trace.Tracer,
	m2 M2Fetcher,
	marketCaps MarketCapFetcher,
	mvrv MVRVFetcher,
	ahr AHRFetcher,
	flows FlowFetcher,
	treasuries TreasuryFetcher,
	redisClient RedisClient,
	ttls CacheTTLs,
	mvrvStart time.Time,
	topN int,
) *DashboardService {
	if ttls.Flows <= 0 || ttls.Snapshot <= 0 || ttls.Slow <= 0 {
		ttls = DefaultCacheTTLs()
	}
	if topN <= 0 {
		topN = domain.DefaultTreasuryTopN
	}
	if mvrvStart.IsZero() {
		mvrvStart = time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &DashboardService{
		tracer:     tracer,
		m2:         m2,
		marketCaps: marketCaps,
		mvrv:       mvrv,
		ahr:        ahr,
		flows:      flows,
		treasuries: treasuries,
		redis:      redisClient,
		ttls:       ttls,
		mvrvStart:  mvrvStart,
		topN:       topN,
	}
}

func (s *DashboardService) GetGlobalM2(ctx context.Context) ([]domain.M2Point, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.get-global-m2")
	defer span.End()

	return cachedFetch(ctx, s, "m2", s.ttls.Slow, func() ([]domain.M2Point, error) {
		return s.m2.FetchGlobalM2(ctx)
	})
}

func (s *DashboardService) GetMarketCaps(ctx context.Context) (*domain.MarketCapSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.get-market-caps")
	defer span.End()

	return cachedFetch(ctx, s, "marketcaps", s.ttls.Snapshot, func() (*domain.MarketCapSnapshot, error) {
		return s.marketCaps.FetchSnapshot(ctx)
	})
}

func (s *DashboardService) GetMVRV(ctx context.Context, start time.Time) ([]domain.MVRVPoint, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.get-mvrv")
	defer span.End()

	if start.IsZero() {
		start = s.mvrvStart
	}
	key := "mvrv:" + start.UTC().Format("2006-01-02")
	return cachedFetch(ctx, s, key, s.ttls.Snapshot, func() ([]domain.MVRVPoint, error) {
		return s.mvrv.FetchMVRVSeries(ctx, start)
	})
}

func (s *DashboardService) GetAHR999(ctx context.Context) ([]domain.AHRPoint, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.get-ahr999")
	defer span.End()

	return cachedFetch(ctx, s, "ahr999", s.ttls.Snapshot, func() ([]domain.AHRPoint, error) {
		return s.ahr.FetchSeries(ctx)
	})
}

func (s *DashboardService) GetETFFlows(ctx context.Context, asset domain.FlowAsset) ([]domain.ETFFlowPoint, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.get-etf-flows")
	defer span.End()

	key := "flows:" + string(asset)
	return cachedFetch(ctx, s, key, s.ttls.Flows, func() ([]domain.ETFFlowPoint, error) {
		return s.flows.FetchFlows(ctx, asset)
	})
}

func (s *DashboardService) GetBTCTreasuries(ctx context.Context, topN int) ([]domain.BTCTreasuryRow, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.get-btc-treasuries")
	defer span.End()

	topN = s.normalizeTopN(topN)
	key := fmt.Sprintf("treasury:btc:%d", topN)
	return cachedFetch(ctx, s, key, s.ttls.Slow, func() ([]domain.BTCTreasuryRow, error) {
		return s.treasuries.FetchBTCTreasuries(ctx, topN)
	})
}

func (s *DashboardService) GetETHTreasuries(ctx context.Context, topN int) ([]domain.ETHTreasuryRow, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.get-eth-treasuries")
	defer span.End()

	topN = s.normalizeTopN(topN)
	key := fmt.Sprintf("treasury:eth:%d", topN)
	return cachedFetch(ctx, s, key, s.ttls.Slow, func() ([]domain.ETHTreasuryRow, error) {
		return s.treasuries.FetchETHTreasuries(ctx, topN)
	})
}

func (s *DashboardService) GetSOLTreasuries(ctx context.Context, topN int) ([]domain.SOLTreasuryRow, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.get-sol-treasuries")
	defer span.End()

	topN = s.normalizeTopN(topN)
	key := fmt.Sprintf("treasury:sol:%d", topN)
	return cachedFetch(ctx, s, key, s.ttls.Slow, func() ([]domain.SOLTreasuryRow, error) {
		return s.treasuries.FetchSOLTreasuries(ctx, topN)
	})
}

func (s *DashboardService) normalizeTopN(topN int) int {
	if topN <= 0 {
		return s.topN
	}
	return topN
}

// BuildDashboard assembles every section in one shot, one goroutine per
// source. Each goroutine owns its own result and error slot, so a single
// failing upstream degrades only its own section.
func (s *DashboardService) BuildDashboard(ctx context.Context) *domain.Dashboard {
	ctx, span := s.tracer.Start(ctx, "dashboard.build")
	defer span.End()

	dash := &domain.Dashboard{
		GeneratedAt: time.Now().UTC(),
		Errors:      make(map[string]string),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	section := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				dash.Errors[name] = err.Error()
				mu.Unlock()
			}
		}()
	}

	section("m2", func() error {
		points, err := s.GetGlobalM2(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.M2 = points
		mu.Unlock()
		return nil
	})
	section("market_caps", func() error {
		snap, err := s.GetMarketCaps(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.MarketCaps = snap
		mu.Unlock()
		return nil
	})
	section("mvrv", func() error {
		points, err := s.GetMVRV(ctx, s.mvrvStart)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.MVRV = points
		mu.Unlock()
		return nil
	})
	section("ahr999", func() error {
		points, err := s.GetAHR999(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.AHR999 = points
		mu.Unlock()
		return nil
	})
	section("btc_etf_flows", func() error {
		points, err := s.GetETFFlows(ctx, domain.FlowAssetBTC)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.BTCFlows = points
		mu.Unlock()
		return nil
	})
	section("eth_etf_flows", func() error {
		points, err := s.GetETFFlows(ctx, domain.FlowAssetETH)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.ETHFlows = points
		mu.Unlock()
		return nil
	})
	section("btc_treasuries", func() error {
		rows, err := s.GetBTCTreasuries(ctx, 0)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.BTCTreasuries = rows
		mu.Unlock()
		return nil
	})
	section("eth_treasuries", func() error {
		rows, err := s.GetETHTreasuries(ctx, 0)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.ETHTreasuries = rows
		mu.Unlock()
		return nil
	})
	section("sol_treasuries", func() error {
		rows, err := s.GetSOLTreasuries(ctx, 0)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.SOLTreasuries = rows
		mu.Unlock()
		return nil
	})

	wg.Wait()
	return dash
}

// cachedFetch reads key from Redis, falling back to fetch and writing the
// result back with ttl. Cache errors are logged and never fail the call.
func cachedFetch[T any](ctx context.Context, s *DashboardService, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var zero T
	fullKey := "dashboard:" + key

	if s.redis != nil {
		data, err := s.redis.Get(ctx, fullKey).Bytes()
		if err == nil {
			var cached T
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			log.Printf("discarding undecodable cache entry %s", fullKey)
		} else if err != redis.Nil {
			log.Printf("redis cache read error for %s: %v", fullKey, err)
		}
	}

	result, err := fetch()
	if err != nil {
		return zero, err
	}

	if s.redis != nil {
		data, err := json.Marshal(result)
		if err == nil {
			if err := s.redis.Set(ctx, fullKey, data, ttl).Err(); err != nil {
				log.Printf("redis cache write error for %s: %v", fullKey, err)
			}
		}
	}
	return result, nil
}
