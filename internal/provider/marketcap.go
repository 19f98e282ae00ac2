package provider

import (
	"context"

	"crypto-macro-dashboard/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	coinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	goldPriceBaseURL = "https://data-asg.goldprice.org"
)

// Gold market cap is derived from the spot price and a fixed above-ground
// supply estimate. Both constants are configuration, not data.
const (
	totalAboveGroundGoldTonnes = 205_000
	tonnesToTroyOz             = 32_150.7466
)

// MarketCapProvider combines the CoinGecko simple-price endpoint with the
// goldprice.org spot feed into one market-cap snapshot.
type MarketCapProvider struct {
	fetcher      *Fetcher
	cryptoAPIURL string
	goldAPIURL   string
	tracer       trace.Tracer
}

func NewMarketCapProvider(tracer trace.Tracer) *MarketCapProvider {
	return &MarketCapProvider{
		fetcher:      NewFetcher(),
		cryptoAPIURL: coinGeckoBaseURL,
		goldAPIURL:   goldPriceBaseURL,
		tracer:       tracer,
	}
}

// FetchSnapshot returns the latest BTC price/market cap and the gold price
// with its derived market cap.
func (p *MarketCapProvider) FetchSnapshot(ctx context.Context) (*domain.MarketCapSnapshot, error) {
	_, span := p.tracer.Start(ctx, "marketcap.fetch-snapshot")
	defer span.End()

	btcURL := p.cryptoAPIURL + "/simple/price?ids=bitcoin&vs_currencies=usd&include_market_cap=true"

	var btcPayload map[string]map[string]float64
	if err := p.fetcher.GetJSON(ctx, btcURL, &btcPayload); err != nil {
		return nil, err
	}
	btcData, ok := btcPayload["bitcoin"]
	if !ok || len(btcData) == 0 {
		return nil, fetchErrorf(btcURL, "CoinGecko response missing bitcoin data")
	}

	goldURL := p.goldAPIURL + "/dbXRates/USD"

	var goldPayload struct {
		Items []struct {
			XAUPrice float64 `json:"xauPrice"`
		} `json:"items"`
	}
	if err := p.fetcher.GetJSON(ctx, goldURL, &goldPayload); err != nil {
		return nil, err
	}
	if len(goldPayload.Items) == 0 {
		return nil, fetchErrorf(goldURL, "gold price feed missing items list")
	}

	// xauPrice is USD per troy ounce.
	goldPrice := goldPayload.Items[0].XAUPrice
	totalOz := float64(totalAboveGroundGoldTonnes) * tonnesToTroyOz

	return &domain.MarketCapSnapshot{
		BTCPrice:      btcData["usd"],
		BTCMarketCap:  btcData["usd_market_cap"],
		GoldPrice:     goldPrice,
		GoldMarketCap: goldPrice * totalOz,
	}, nil
}
