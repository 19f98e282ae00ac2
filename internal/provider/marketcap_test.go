package provider

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func marketCapTransport(t *testing.T, btcBody, goldBody string) http.RoundTripper {
	t.Helper()
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(req.URL.Path, "/simple/price"):
			return stubResponse(http.StatusOK, btcBody), nil
		case strings.Contains(req.URL.Path, "/dbXRates/USD"):
			return stubResponse(http.StatusOK, goldBody), nil
		default:
			t.Fatalf("unexpected path: %s", req.URL.Path)
			return nil, nil
		}
	})
}

func TestMarketCapFetchSnapshot(t *testing.T) {
	t.Parallel()

	p := NewMarketCapProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.cryptoAPIURL = "http://crypto"
	p.goldAPIURL = "http://gold"
	p.fetcher.client = &http.Client{Transport: marketCapTransport(t,
		`{"bitcoin":{"usd":60000,"usd_market_cap":1.2e12}}`,
		`{"items":[{"xauPrice":2000}]}`,
	)}

	snap, err := p.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.BTCPrice != 60000 || snap.BTCMarketCap != 1.2e12 {
		t.Fatalf("unexpected btc values: %+v", snap)
	}

	// 2000 * 205000 * 32150.7466 ≈ 1.3182e13
	wantGoldCap := 2000.0 * 205_000 * 32_150.7466
	if math.Abs(snap.GoldMarketCap-wantGoldCap) > 1 {
		t.Fatalf("expected gold cap %f, got %f", wantGoldCap, snap.GoldMarketCap)
	}
	upside := snap.GoldVsBTCUpside()
	if math.Abs(upside-10.98) > 0.01 {
		t.Fatalf("expected upside ~10.98, got %f", upside)
	}
	if ratio := snap.BTCVsGoldRatio(); math.Abs(ratio*upside-1) > 1e-9 {
		t.Fatalf("ratio and upside should be reciprocal, got %f and %f", ratio, upside)
	}
}

func TestMarketCapFetchSnapshotMissingBitcoin(t *testing.T) {
	t.Parallel()

	p := NewMarketCapProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.cryptoAPIURL = "http://crypto"
	p.goldAPIURL = "http://gold"
	p.fetcher.client = &http.Client{Transport: marketCapTransport(t,
		`{}`,
		`{"items":[{"xauPrice":2000}]}`,
	)}

	_, err := p.FetchSnapshot(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !strings.Contains(fe.Reason, "bitcoin") {
		t.Fatalf("unexpected reason: %q", fe.Reason)
	}
}

func TestMarketCapFetchSnapshotMissingGoldItems(t *testing.T) {
	t.Parallel()

	p := NewMarketCapProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.cryptoAPIURL = "http://crypto"
	p.goldAPIURL = "http://gold"
	p.fetcher.client = &http.Client{Transport: marketCapTransport(t,
		`{"bitcoin":{"usd":60000,"usd_market_cap":1.2e12}}`,
		`{"items":[]}`,
	)}

	_, err := p.FetchSnapshot(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}
