package domain

import (
	"encoding/json"
	"math"
	"time"
)

// NullableFloat is a float64 whose NaN value round-trips through JSON as
// null. The scraped tables legitimately produce NaN cells (an em-dash in a
// flow column), and encoding/json refuses plain NaN.
type NullableFloat float64

func (f NullableFloat) IsNaN() bool { return math.IsNaN(float64(f)) }

func (f NullableFloat) MarshalJSON() ([]byte, error) {
	if f.IsNaN() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

func (f *NullableFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NullableFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = NullableFloat(v)
	return nil
}

// MarketCapSnapshot holds the latest BTC and gold market capitalisation
// figures. Values are USD. A snapshot is immutable once constructed.
type MarketCapSnapshot struct {
	BTCPrice      float64 `json:"btc_price"`
	BTCMarketCap  float64 `json:"btc_market_cap"`
	GoldPrice     float64 `json:"gold_price"`
	GoldMarketCap float64 `json:"gold_market_cap"`
}

// BTCVsGoldRatio is BTC market cap over gold market cap. NaN when the gold
// market cap is zero.
func (s MarketCapSnapshot) BTCVsGoldRatio() float64 {
	if s.GoldMarketCap == 0 {
		return math.NaN()
	}
	return s.BTCMarketCap / s.GoldMarketCap
}

// GoldVsBTCUpside is gold market cap over BTC market cap. NaN when the BTC
// market cap is zero.
func (s MarketCapSnapshot) GoldVsBTCUpside() float64 {
	if s.BTCMarketCap == 0 {
		return math.NaN()
	}
	return s.GoldMarketCap / s.BTCMarketCap
}

// M2Point is one yearly observation of global broad money.
type M2Point struct {
	Year          int     `json:"year"`
	Value         float64 `json:"value"`
	ValueTrillion float64 `json:"value_trillion"`
}

// MVRVPoint is one daily observation of BTC on-chain valuation metrics.
type MVRVPoint struct {
	Date           time.Time `json:"date"`
	MarketCapUSD   float64   `json:"cap_market_usd"`
	RealizedCapUSD float64   `json:"cap_realized_usd"`
	MVRV           float64   `json:"mvrv_ratio"`
}

// AHRPoint is one daily observation of the AHR999 index.
type AHRPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"ahr"`
}

// ETFFlowPoint is one daily net flow total for a spot ETF complex.
// TotalFlow may be NaN when the upstream cell could not be decoded; such
// rows are retained so gaps stay visible.
type ETFFlowPoint struct {
	Date      time.Time     `json:"date"`
	TotalFlow NullableFloat `json:"total_flow"`
}

// FlowAsset selects which ETF flow table to fetch.
type FlowAsset string

const (
	FlowAssetBTC FlowAsset = "btc"
	FlowAssetETH FlowAsset = "eth"
)

// TreasuryAsset selects which corporate treasury table to fetch.
type TreasuryAsset string

const (
	TreasuryAssetBTC TreasuryAsset = "btc"
	TreasuryAssetETH TreasuryAsset = "eth"
	TreasuryAssetSOL TreasuryAsset = "sol"
)

// DefaultTreasuryTopN is the ranked-table cut applied when the caller does
// not ask for a specific size.
const DefaultTreasuryTopN = 15

// BTCTreasuryRow is one company in the BTC treasury table. Identity columns
// stay as upstream text; only the holding amount is decoded.
type BTCTreasuryRow struct {
	Ticker     string        `json:"ticker"`
	Name       string        `json:"name"`
	Type       string        `json:"type"`
	Country    string        `json:"country"`
	Currency   string        `json:"currency"`
	Price      string        `json:"price"`
	DayChange  string        `json:"day_change"`
	MarketCapM string        `json:"market_cap_m"`
	Holdings   NullableFloat `json:"btc_holdings"`
}

// ETHTreasuryRow is one institution in the ETH treasury table.
type ETHTreasuryRow struct {
	Company     string        `json:"company"`
	Ticker      string        `json:"ticker"`
	Flag        string        `json:"flag"`
	Held        NullableFloat `json:"eth_held"`
	ValueUSD    string        `json:"value_usd"`
	LastUpdate  string        `json:"last_update"`
	Chart       string        `json:"chart"`
	Description string        `json:"description"`
}

// SOLTreasuryRow is one institution in the SOL treasury table.
type SOLTreasuryRow struct {
	Company       string        `json:"company"`
	Type          string        `json:"type"`
	Change        string        `json:"change"`
	Held          NullableFloat `json:"sol_held"`
	ValueUSD      string        `json:"value_usd"`
	ShareOfSupply string        `json:"share_of_supply"`
	Links         string        `json:"links"`
}

// Dashboard aggregates every section in one shot. Each section carries its
// own error slot so one upstream failure never blanks the others.
type Dashboard struct {
	GeneratedAt time.Time `json:"generated_at"`

	M2         []M2Point          `json:"m2,omitempty"`
	MarketCaps *MarketCapSnapshot `json:"market_caps,omitempty"`
	MVRV       []MVRVPoint        `json:"mvrv,omitempty"`
	AHR999     []AHRPoint         `json:"ahr999,omitempty"`
	BTCFlows   []ETFFlowPoint     `json:"btc_etf_flows,omitempty"`
	ETHFlows   []ETFFlowPoint     `json:"eth_etf_flows,omitempty"`

	BTCTreasuries []BTCTreasuryRow `json:"btc_treasuries,omitempty"`
	ETHTreasuries []ETHTreasuryRow `json:"eth_treasuries,omitempty"`
	SOLTreasuries []SOLTreasuryRow `json:"sol_treasuries,omitempty"`

	Errors map[string]string `json:"errors,omitempty"`
}

type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
