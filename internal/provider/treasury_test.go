package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

const btcTreasurySample = `Digital Asset Treasuries
| Ticker | Name | Type | Country | Currency | Price | Day Change | Market Cap (m) | BTC Holdings |
|---|---|---|---|---|---|---|---|---|
| MSTR | Strategy | Public | US | USD | 350.0 | +1.2% | 90,000 | 640,000 |
| MARA | Marathon | Public | US | USD | 18.0 | (0.5%) | 6,000 | 50,000 |
| XXI | Twenty One | Public | US | USD | 12.0 | +0.1% | 4,000 | - |
| RIOT | Riot | Public | US | USD | 10.0 | +2.0% | 3,500 | 19,000 |
`

func newTestTreasuryProvider(t *testing.T, body string) *TreasuryProvider {
	t.Helper()
	p := NewTreasuryProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.fetcher.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return stubResponse(http.StatusOK, body), nil
	})}
	return p
}

func TestFetchBTCTreasuries(t *testing.T) {
	t.Parallel()

	p := newTestTreasuryProvider(t, btcTreasurySample)
	rows, err := p.FetchBTCTreasuries(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected top-3 cut, got %d rows", len(rows))
	}
	if rows[0].Ticker != "MSTR" || rows[0].Holdings != 640_000 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Holdings > rows[i-1].Holdings {
			t.Fatalf("rows not descending by holdings: %+v", rows)
		}
	}
	// The NaN-holding row (XXI) and the separator row rank below every
	// parseable row, so neither makes the cut.
	for _, r := range rows {
		if r.Ticker == "XXI" || r.Ticker == "---" {
			t.Fatalf("unranked row made the top-N cut: %+v", r)
		}
	}
}

func TestFetchBTCTreasuriesDefaultTopN(t *testing.T) {
	t.Parallel()

	p := newTestTreasuryProvider(t, btcTreasurySample)
	rows, err := p.FetchBTCTreasuries(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 4 data rows + 1 separator row, all within the default cut of 15.
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
}

func TestFetchBTCTreasuriesEmpty(t *testing.T) {
	t.Parallel()

	p := newTestTreasuryProvider(t, "no table here\n")
	_, err := p.FetchBTCTreasuries(context.Background(), 15)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !strings.Contains(fe.Reason, "no BTC treasury rows") {
		t.Fatalf("unexpected reason: %q", fe.Reason)
	}
}

func TestFetchETHTreasuries(t *testing.T) {
	t.Parallel()

	sample := `| Company Name | Ticker | Flag | ETH Held | Value (USD) | Last Update | Chart | Description |
| BitMine | BMNR | US | 2,650,900 ETH | $8.2b | 2025-08-20 | chart | Largest ETH treasury |
| SharpLink | SBET | US | 740,760 ETH | $2.3b | 2025-08-20 | chart | Gaming company |
`
	p := newTestTreasuryProvider(t, sample)
	rows, err := p.FetchETHTreasuries(context.Background(), 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Company != "BitMine" || rows[0].Held != 2_650_900 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].ValueUSD != "$2.3b" {
		t.Fatalf("identity columns should stay as text: %+v", rows[1])
	}
}

func TestFetchSOLTreasuriesStripsRankColumn(t *testing.T) {
	t.Parallel()

	sample := `| Company | Type | Change | SOL Held | Value (USD) | Share of Supply | Links | Extra |
| 1 | Forward Industries | DAT | +2% | 6,822,000 SOL | $1.4b | 1.12% | link |
| 2 | Upexi | DAT | - | 2,018,419 SOL | $0.4b | 0.33% | link |
`
	p := newTestTreasuryProvider(t, sample)
	rows, err := p.FetchSOLTreasuries(context.Background(), 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Company != "Forward Industries" || rows[0].Held != 6_822_000 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Held != 2_018_419 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestFetchSOLTreasuriesEmpty(t *testing.T) {
	t.Parallel()

	p := newTestTreasuryProvider(t, "| Company | only | a | header | row | here | x | y |\n")
	_, err := p.FetchSOLTreasuries(context.Background(), 15)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}
