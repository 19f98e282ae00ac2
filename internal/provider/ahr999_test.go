package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

const ahrSampleDoc = `var chart = {series:[{name:\"AHR999\",data:[0.42, 1.35,0.88],labels:["2024-01-01","2024-01-02","2024-01-03"]}]}`

func TestParseAHR999Document(t *testing.T) {
	points, err := parseAHR999Document(ahrSampleDoc, "http://example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0].Value != 0.42 || points[2].Value != 0.88 {
		t.Fatalf("unexpected values: %+v", points)
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Date.Before(points[i].Date) {
			t.Fatalf("dates not strictly ascending: %+v", points)
		}
	}
}

func TestParseAHR999DocumentCountMismatch(t *testing.T) {
	doc := `{name:\"AHR999\",data:[1,2,3],labels:["2024-01-01","2024-01-02"]}`
	_, err := parseAHR999Document(doc, "http://example")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !strings.Contains(fe.Reason, "mismatched") {
		t.Fatalf("unexpected reason: %q", fe.Reason)
	}
}

func TestParseAHR999DocumentMissingAnchor(t *testing.T) {
	_, err := parseAHR999Document(`{name:"OtherSeries",data:[1],labels:["2024-01-01"]}`, "http://example")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestParseAHR999DocumentMissingBlock(t *testing.T) {
	_, err := parseAHR999Document(`{name:\"AHR999\",labels:["2024-01-01"]}`, "http://example")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError for missing data block, got %v", err)
	}
}

func TestParseAHR999DocumentUnmatchedBracket(t *testing.T) {
	_, err := parseAHR999Document(`{name:\"AHR999\",data:[1,2 labels:`, "http://example")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError for unmatched bracket, got %v", err)
	}
}

func TestParseAHR999DocumentDropsBadDates(t *testing.T) {
	doc := `{name:\"AHR999\",data:[1.0,2.0,3.0],labels:["2024-01-01","not-a-date","2024-01-03"]}`
	points, err := parseAHR999Document(doc, "http://example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected bad-dated point dropped, got %+v", points)
	}
	if points[0].Value != 1.0 || points[1].Value != 3.0 {
		t.Fatalf("wrong points kept: %+v", points)
	}
}

func TestAHR999ProviderFetchSeries(t *testing.T) {
	t.Parallel()

	p := NewAHR999Provider(trace.NewNoopTracerProvider().Tracer("test"))
	p.pageURL = "http://example/ahr"
	p.fetcher.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return stubResponse(http.StatusOK, ahrSampleDoc), nil
	})}

	points, err := p.FetchSeries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
}
