package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"crypto-macro-dashboard/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const coinMetricsBaseURL = "https://community-api.coinmetrics.io/v4"

// CoinMetricsProvider fetches daily BTC valuation metrics (market cap,
// realized cap, MVRV) from the CoinMetrics community API, following the
// pagination token until the series is exhausted.
type CoinMetricsProvider struct {
	fetcher *Fetcher
	baseURL string
	tracer  trace.Tracer
	now     func() time.Time
}

func NewCoinMetricsProvider(tracer trace.Tracer) *CoinMetricsProvider {
	return &CoinMetricsProvider{
		fetcher: NewFetcher(),
		baseURL: coinMetricsBaseURL,
		tracer:  tracer,
		now:     time.Now,
	}
}

type coinMetricsPage struct {
	Data []struct {
		Time          string `json:"time"`
		CapMrktCurUSD any    `json:"CapMrktCurUSD"`
		CapRealUSD    any    `json:"CapRealUSD"`
		CapMVRVCur    any    `json:"CapMVRVCur"`
	} `json:"data"`
	NextPageToken string `json:"next_page_token"`
}

// FetchMVRVSeries returns the daily MVRV series from start through today,
// sorted ascending by date. A malformed timestamp is a hard failure: it
// means the upstream schema drifted, not that one row is bad.
func (p *CoinMetricsProvider) FetchMVRVSeries(ctx context.Context, start time.Time) ([]domain.MVRVPoint, error) {
	_, span := p.tracer.Start(ctx, "coinmetrics.fetch-mvrv-series")
	defer span.End()

	baseURL := fmt.Sprintf(
		"%s/timeseries/asset-metrics?assets=btc&metrics=CapMrktCurUSD,CapRealUSD,CapMVRVCur"+
			"&frequency=1d&start_time=%s&end_time=%s",
		p.baseURL,
		start.UTC().Format("2006-01-02"),
		p.now().UTC().Format("2006-01-02"),
	)

	var points []domain.MVRVPoint
	nextToken := ""
	pages := 0
	for {
		url := baseURL
		if nextToken != "" {
			url += "&next_page_token=" + nextToken
		}

		var page coinMetricsPage
		if err := p.fetcher.GetJSON(ctx, url, &page); err != nil {
			return nil, err
		}
		pages++

		for _, row := range page.Data {
			ts, err := time.Parse(time.RFC3339, row.Time)
			if err != nil {
				return nil, &FetchError{URL: url, Reason: "invalid timestamp in CoinMetrics payload", Err: err}
			}
			marketCap, ok := toFloat(row.CapMrktCurUSD)
			if !ok {
				return nil, fetchErrorf(url, "non-numeric CapMrktCurUSD in CoinMetrics payload")
			}
			realizedCap, ok := toFloat(row.CapRealUSD)
			if !ok {
				return nil, fetchErrorf(url, "non-numeric CapRealUSD in CoinMetrics payload")
			}
			mvrv, ok := toFloat(row.CapMVRVCur)
			if !ok {
				return nil, fetchErrorf(url, "non-numeric CapMVRVCur in CoinMetrics payload")
			}

			day := ts.UTC()
			points = append(points, domain.MVRVPoint{
				Date:           time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
				MarketCapUSD:   marketCap,
				RealizedCapUSD: realizedCap,
				MVRV:           mvrv,
			})
		}

		nextToken = page.NextPageToken
		if nextToken == "" {
			break
		}
	}
	span.SetAttributes(attribute.Int("pages", pages), attribute.Int("rows", len(points)))

	if len(points) == 0 {
		return nil, fetchErrorf(baseURL, "CoinMetrics returned no data for MVRV")
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return dedupeMVRV(points), nil
}

// dedupeMVRV drops repeated dates after sorting, keeping the first
// occurrence, so the assembled series is strictly ascending.
func dedupeMVRV(points []domain.MVRVPoint) []domain.MVRVPoint {
	out := points[:0]
	for _, pt := range points {
		if len(out) > 0 && out[len(out)-1].Date.Equal(pt.Date) {
			continue
		}
		out = append(out, pt)
	}
	return out
}
