package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func newTestCoinMetricsProvider() *CoinMetricsProvider {
	p := NewCoinMetricsProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "http://example"
	p.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestCoinMetricsFetchMVRVSeriesPaginates(t *testing.T) {
	t.Parallel()

	p := newTestCoinMetricsProvider()
	p.fetcher.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/timeseries/asset-metrics") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("start_time") != "2013-01-01" || q.Get("end_time") != "2025-06-01" {
			t.Fatalf("unexpected time range: %s", req.URL.RawQuery)
		}
		var body string
		if q.Get("next_page_token") == "" {
			body = `{"data":[{"time":"2013-01-02T00:00:00.000000000Z","CapMrktCurUSD":"1.5e9","CapRealUSD":"1.0e9","CapMVRVCur":"1.5"}],"next_page_token":"abc"}`
		} else if q.Get("next_page_token") == "abc" {
			body = `{"data":[{"time":"2013-01-03T00:00:00.000000000Z","CapMrktCurUSD":2.0e9,"CapRealUSD":1.0e9,"CapMVRVCur":2.0}]}`
		} else {
			t.Fatalf("unexpected page token: %s", q.Get("next_page_token"))
		}
		return stubResponse(http.StatusOK, body), nil
	})}

	points, err := p.FetchMVRVSeries(context.Background(), time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points across pages, got %d", len(points))
	}
	if !points[0].Date.Before(points[1].Date) {
		t.Fatalf("expected ascending dates, got %+v", points)
	}
	if points[0].MVRV != 1.5 || points[1].MVRV != 2.0 {
		t.Fatalf("unexpected mvrv values: %+v", points)
	}
	if points[1].MarketCapUSD != 2.0e9 {
		t.Fatalf("numeric metric values should decode too, got %+v", points[1])
	}
}

func TestCoinMetricsMalformedTimestampIsHardFailure(t *testing.T) {
	t.Parallel()

	p := newTestCoinMetricsProvider()
	p.fetcher.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		body := `{"data":[{"time":"yesterday","CapMrktCurUSD":"1","CapRealUSD":"1","CapMVRVCur":"1"}]}`
		return stubResponse(http.StatusOK, body), nil
	})}

	_, err := p.FetchMVRVSeries(context.Background(), time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC))
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !strings.Contains(fe.Reason, "timestamp") {
		t.Fatalf("unexpected reason: %q", fe.Reason)
	}
}

func TestCoinMetricsEmptySeriesIsFailure(t *testing.T) {
	t.Parallel()

	p := newTestCoinMetricsProvider()
	p.fetcher.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return stubResponse(http.StatusOK, `{"data":[]}`), nil
	})}

	_, err := p.FetchMVRVSeries(context.Background(), time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC))
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError for empty series, got %v", err)
	}
}

func TestCoinMetricsNonNumericMetricIsFailure(t *testing.T) {
	t.Parallel()

	p := newTestCoinMetricsProvider()
	p.fetcher.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		body := `{"data":[{"time":"2013-01-02T00:00:00Z","CapMrktCurUSD":"???","CapRealUSD":"1","CapMVRVCur":"1"}]}`
		return stubResponse(http.StatusOK, body), nil
	})}

	_, err := p.FetchMVRVSeries(context.Background(), time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC))
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}
