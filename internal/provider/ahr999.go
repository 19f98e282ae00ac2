package provider

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"crypto-macro-dashboard/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const ahr999PageURL = "https://www.caizi.fun/trade/data/ahr"

// The AHR999 series is embedded in an inline chart script. We anchor on the
// series name and then read two flat bracketed lists positionally: the Nth
// value in "data" belongs to the Nth date in "labels".
const (
	ahr999Anchor = `name:\"AHR999`
	ahr999Data   = "data:["
	ahr999Labels = "labels:["
)

// AHR999Provider scrapes the AHR999 valuation index series from its host
// page's embedded script block.
type AHR999Provider struct {
	fetcher *Fetcher
	pageURL string
	tracer  trace.Tracer
}

func NewAHR999Provider(tracer trace.Tracer) *AHR999Provider {
	return &AHR999Provider{
		fetcher: NewFetcher(),
		pageURL: ahr999PageURL,
		tracer:  tracer,
	}
}

// FetchSeries returns the daily AHR999 series sorted ascending by date.
// Points whose date label does not parse are dropped; any structural
// problem with the script block is a fetch failure.
func (p *AHR999Provider) FetchSeries(ctx context.Context) ([]domain.AHRPoint, error) {
	_, span := p.tracer.Start(ctx, "ahr999.fetch-series")
	defer span.End()

	doc, err := p.fetcher.GetText(ctx, p.pageURL)
	if err != nil {
		return nil, err
	}
	return parseAHR999Document(doc, p.pageURL)
}

func parseAHR999Document(doc, url string) ([]domain.AHRPoint, error) {
	anchorIdx := strings.Index(doc, ahr999Anchor)
	if anchorIdx == -1 {
		return nil, fetchErrorf(url, "unable to locate AHR999 series in page")
	}

	rawValues, err := scanBracketList(doc, anchorIdx, ahr999Data, url)
	if err != nil {
		return nil, err
	}
	rawLabels, err := scanBracketList(doc, anchorIdx, ahr999Labels, url)
	if err != nil {
		return nil, err
	}
	if len(rawValues) != len(rawLabels) {
		return nil, fetchErrorf(url, "mismatched label/value counts in AHR999 data (%d vs %d)",
			len(rawValues), len(rawLabels))
	}

	points := make([]domain.AHRPoint, 0, len(rawValues))
	for i, raw := range rawValues {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fetchErrorf(url, "malformed AHR999 value %q", raw)
		}
		label := strings.Trim(rawLabels[i], `"`)
		date, err := time.Parse("2006-01-02", label)
		if err != nil {
			continue
		}
		points = append(points, domain.AHRPoint{Date: date, Value: value})
	}
	if len(points) == 0 {
		return nil, fetchErrorf(url, "AHR999 series has no dated points")
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return dedupeAHR(points), nil
}

// scanBracketList finds key after from and tokenizes the flat bracketed
// list that follows it, splitting on commas and trimming whitespace. Empty
// items are skipped. A missing key or closing bracket is a fetch failure.
func scanBracketList(doc string, from int, key, url string) ([]string, error) {
	start := strings.Index(doc[from:], key)
	if start == -1 {
		return nil, fetchErrorf(url, "missing %q block for AHR999", strings.TrimSuffix(key, "["))
	}
	start += from + len(key)

	end := -1
	for i := start; i < len(doc); i++ {
		if doc[i] == ']' {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, fetchErrorf(url, "malformed AHR999 script section: unmatched bracket")
	}

	var items []string
	for _, item := range strings.Split(doc[start:end], ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func dedupeAHR(points []domain.AHRPoint) []domain.AHRPoint {
	out := points[:0]
	for _, pt := range points {
		if len(out) > 0 && out[len(out)-1].Date.Equal(pt.Date) {
			continue
		}
		out = append(out, pt)
	}
	return out
}
