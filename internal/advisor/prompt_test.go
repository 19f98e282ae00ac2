package advisor

import (
	"math"
	"strings"
	"testing"
	"time"

	"crypto-macro-dashboard/internal/domain"
)

func TestBuildSystemPromptIncludesContext(t *testing.T) {
	prompt := BuildSystemPrompt("BTC: $60000")
	if !strings.Contains(prompt, "BTC: $60000") {
		t.Fatal("expected market context in prompt")
	}
	if !strings.Contains(prompt, "macro analyst") {
		t.Fatal("expected philosophy in prompt")
	}
	if !strings.Contains(prompt, "LIVE MARKET DATA") {
		t.Fatal("expected data header in prompt")
	}
}

func TestFormatMarketContextFull(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := MarketContext{
		Caps: &domain.MarketCapSnapshot{
			BTCPrice:      60_000,
			BTCMarketCap:  1.2e12,
			GoldPrice:     2_000,
			GoldMarketCap: 1.2e13,
		},
		MVRV:    &domain.MVRVPoint{Date: date, MVRV: 2.35},
		AHR:     &domain.AHRPoint{Date: date, Value: 0.87},
		BTCFlow: &domain.ETFFlowPoint{Date: date, TotalFlow: 125.5},
		ETHFlow: &domain.ETFFlowPoint{Date: date, TotalFlow: -30.2},
	}

	out := FormatMarketContext(ctx)
	for _, want := range []string{
		"BTC: $60000 (market cap $1.20T)",
		"Gold: $2000/oz (market cap $12.00T)",
		"BTC is 10.0% of gold's market cap",
		"MVRV (2025-06-01): 2.35",
		"AHR999 (2025-06-01): 0.870",
		"BTC ETF net flow (2025-06-01): +125.5M USD",
		"ETH ETF net flow (2025-06-01): -30.2M USD",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in context, got:\n%s", want, out)
		}
	}
}

func TestFormatMarketContextSkipsNaNFlow(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := MarketContext{
		BTCFlow: &domain.ETFFlowPoint{Date: date, TotalFlow: domain.NullableFloat(math.NaN())},
	}
	out := FormatMarketContext(ctx)
	if strings.Contains(out, "BTC ETF net flow") {
		t.Fatalf("expected NaN flow skipped, got:\n%s", out)
	}
}

func TestFormatMarketContextEmpty(t *testing.T) {
	out := FormatMarketContext(MarketContext{})
	if out != "No market data currently available." {
		t.Fatalf("unexpected empty context output: %q", out)
	}
}
