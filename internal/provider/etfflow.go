package provider

import (
	"context"
	"regexp"
	"sort"
	"time"

	"crypto-macro-dashboard/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Farside publishes the daily spot-ETF flow tables as HTML; we read them
// through a Markdown-rendering proxy and parse the pipe table. The upstream
// addresses must stay exactly as-is.
const (
	readProxyBaseURL = "https://r.jina.ai"
	farsideBaseURL   = "https://farside.co.uk"
)

var flowDatePattern = regexp.MustCompile(`^\d{2} [A-Za-z]{3} \d{4}$`)

// FarsideFlowProvider fetches BTC and ETH spot-ETF daily net flows.
type FarsideFlowProvider struct {
	fetcher  *Fetcher
	proxyURL string
	siteURL  string
	tracer   trace.Tracer
}

func NewFarsideFlowProvider(tracer trace.Tracer) *FarsideFlowProvider {
	return &FarsideFlowProvider{
		fetcher:  NewFetcher(),
		proxyURL: readProxyBaseURL,
		siteURL:  farsideBaseURL,
		tracer:   tracer,
	}
}

// FetchFlows returns the daily net flow series for the given asset, sorted
// ascending by date. The flow value of a row may be NaN (an undecodable
// cell) and is retained; a row with an undecodable date is dropped.
func (p *FarsideFlowProvider) FetchFlows(ctx context.Context, asset domain.FlowAsset) ([]domain.ETFFlowPoint, error) {
	_, span := p.tracer.Start(ctx, "farside.fetch-flows")
	defer span.End()
	span.SetAttributes(attribute.String("asset", string(asset)))

	var path string
	switch asset {
	case domain.FlowAssetBTC:
		path = "btc"
	case domain.FlowAssetETH:
		path = "eth"
	default:
		return nil, fetchErrorf("", "unsupported ETF flow asset %q", asset)
	}

	url := p.proxiedURL(path)
	text, err := p.fetcher.GetText(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseDailyFlows(text, url)
}

func (p *FarsideFlowProvider) proxiedURL(path string) string {
	return p.proxyURL + "/" + p.siteURL + "/" + path + "/"
}

// parseDailyFlows scans the pipe table for rows whose first cell is a
// "DD Mon YYYY" date and takes the last cell as that day's net flow total.
func parseDailyFlows(text, url string) ([]domain.ETFFlowPoint, error) {
	rows := scanPipeRows(text, pipeTableOptions{
		minColumns: 2,
		skipRow: func(cells []string) bool {
			return !flowDatePattern.MatchString(cells[0])
		},
	})
	if len(rows) == 0 {
		return nil, fetchErrorf(url, "no daily ETF flow rows found in table")
	}

	points := make([]domain.ETFFlowPoint, 0, len(rows))
	for _, cells := range rows {
		date, err := time.Parse("02 Jan 2006", cells[0])
		if err != nil {
			continue
		}
		points = append(points, domain.ETFFlowPoint{
			Date:      date,
			TotalFlow: domain.NullableFloat(ParseLooseNumber(cells[len(cells)-1])),
		})
	}
	if len(points) == 0 {
		return nil, fetchErrorf(url, "no daily ETF flow rows found in table")
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	out := points[:0]
	for _, pt := range points {
		if len(out) > 0 && out[len(out)-1].Date.Equal(pt.Date) {
			continue
		}
		out = append(out, pt)
	}
	return out, nil
}
