package provider

import (
	"context"
	"math"
	"sort"

	"crypto-macro-dashboard/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Treasury table addresses, all read through the Markdown proxy.
const (
	btcTreasuryPath = "bitcoin-treasury-companies"
	ethTreasuryURL  = "https://ethereumtreasuries.net/"
	solTreasuryURL  = "https://www.coingecko.com/en/treasuries/solana"
)

// TreasuryProvider fetches the corporate treasury holding tables for BTC,
// ETH and SOL. The three feeds share the pipe-table shape but differ in
// column layout and header labels.
type TreasuryProvider struct {
	fetcher  *Fetcher
	proxyURL string
	btcURL   string
	ethURL   string
	solURL   string
	tracer   trace.Tracer
}

func NewTreasuryProvider(tracer trace.Tracer) *TreasuryProvider {
	return &TreasuryProvider{
		fetcher:  NewFetcher(),
		proxyURL: readProxyBaseURL,
		btcURL:   farsideBaseURL + "/" + btcTreasuryPath + "/",
		ethURL:   ethTreasuryURL,
		solURL:   solTreasuryURL,
		tracer:   tracer,
	}
}

func (p *TreasuryProvider) proxied(target string) string {
	return p.proxyURL + "/" + target
}

// FetchBTCTreasuries returns the top-N companies by BTC held.
func (p *TreasuryProvider) FetchBTCTreasuries(ctx context.Context, topN int) ([]domain.BTCTreasuryRow, error) {
	_, span := p.tracer.Start(ctx, "treasury.fetch-btc")
	defer span.End()
	span.SetAttributes(attribute.Int("top_n", topN))

	url := p.proxied(p.btcURL)
	text, err := p.fetcher.GetText(ctx, url)
	if err != nil {
		return nil, err
	}

	cells := scanPipeRows(text, pipeTableOptions{
		minColumns: 9,
		skipRow: func(c []string) bool {
			return c[0] == "Ticker" || c[0] == ""
		},
	})
	if len(cells) == 0 {
		return nil, fetchErrorf(url, "no BTC treasury rows parsed")
	}

	rows := make([]domain.BTCTreasuryRow, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, domain.BTCTreasuryRow{
			Ticker:     c[0],
			Name:       c[1],
			Type:       c[2],
			Country:    c[3],
			Currency:   c[4],
			Price:      c[5],
			DayChange:  c[6],
			MarketCapM: c[7],
			Holdings:   domain.NullableFloat(ParseLooseNumber(c[8])),
		})
	}
	rankDescending(rows, func(r domain.BTCTreasuryRow) float64 { return float64(r.Holdings) })
	return truncateTopN(rows, topN), nil
}

// FetchETHTreasuries returns the top-N institutions by ETH held.
func (p *TreasuryProvider) FetchETHTreasuries(ctx context.Context, topN int) ([]domain.ETHTreasuryRow, error) {
	_, span := p.tracer.Start(ctx, "treasury.fetch-eth")
	defer span.End()
	span.SetAttributes(attribute.Int("top_n", topN))

	url := p.proxied(p.ethURL)
	text, err := p.fetcher.GetText(ctx, url)
	if err != nil {
		return nil, err
	}

	cells := scanPipeRows(text, pipeTableOptions{
		minColumns: 8,
		skipRow: func(c []string) bool {
			return c[0] == "Company Name"
		},
	})
	if len(cells) == 0 {
		return nil, fetchErrorf(url, "no ETH treasury rows parsed")
	}

	rows := make([]domain.ETHTreasuryRow, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, domain.ETHTreasuryRow{
			Company:     c[0],
			Ticker:      c[1],
			Flag:        c[2],
			Held:        domain.NullableFloat(ParseLooseNumber(c[3])),
			ValueUSD:    c[4],
			LastUpdate:  c[5],
			Chart:       c[6],
			Description: c[7],
		})
	}
	rankDescending(rows, func(r domain.ETHTreasuryRow) float64 { return float64(r.Held) })
	return truncateTopN(rows, topN), nil
}

// FetchSOLTreasuries returns the top-N institutions by SOL held. This feed
// sometimes prepends a numeric rank column, which is detected and stripped.
func (p *TreasuryProvider) FetchSOLTreasuries(ctx context.Context, topN int) ([]domain.SOLTreasuryRow, error) {
	_, span := p.tracer.Start(ctx, "treasury.fetch-sol")
	defer span.End()
	span.SetAttributes(attribute.Int("top_n", topN))

	url := p.proxied(p.solURL)
	text, err := p.fetcher.GetText(ctx, url)
	if err != nil {
		return nil, err
	}

	cells := scanPipeRows(text, pipeTableOptions{
		minColumns: 8,
		skipRow: func(c []string) bool {
			return c[0] == "Company"
		},
		stripRank: true,
	})
	if len(cells) == 0 {
		return nil, fetchErrorf(url, "no SOL treasury table detected")
	}

	rows := make([]domain.SOLTreasuryRow, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, domain.SOLTreasuryRow{
			Company:       c[0],
			Type:          c[1],
			Change:        c[2],
			Held:          domain.NullableFloat(ParseLooseNumber(c[3])),
			ValueUSD:      c[4],
			ShareOfSupply: c[5],
			Links:         c[6],
		})
	}
	rankDescending(rows, func(r domain.SOLTreasuryRow) float64 { return float64(r.Held) })
	return truncateTopN(rows, topN), nil
}

// rankDescending sorts rows by their holding amount, largest first. NaN
// holdings sort last so they fall out of the top-N cut before any parseable
// row does.
func rankDescending[T any](rows []T, amount func(T) float64) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := amount(rows[i]), amount(rows[j])
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})
}

func truncateTopN[T any](rows []T, topN int) []T {
	if topN <= 0 {
		topN = domain.DefaultTreasuryTopN
	}
	if len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}
