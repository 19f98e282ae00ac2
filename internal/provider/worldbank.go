package provider

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"crypto-macro-dashboard/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const worldBankBaseURL = "https://api.worldbank.org/v2"

// WorldBankProvider fetches global broad money (M2) from the World Bank
// indicator API.
type WorldBankProvider struct {
	fetcher *Fetcher
	baseURL string
	tracer  trace.Tracer
}

func NewWorldBankProvider(tracer trace.Tracer) *WorldBankProvider {
	return &WorldBankProvider{
		fetcher: NewFetcher(),
		baseURL: worldBankBaseURL,
		tracer:  tracer,
	}
}

// FetchGlobalM2 returns the yearly global broad money series, sorted
// ascending by year. Records missing a value or a year are skipped; an
// empty result is a fetch failure.
func (p *WorldBankProvider) FetchGlobalM2(ctx context.Context) ([]domain.M2Point, error) {
	_, span := p.tracer.Start(ctx, "worldbank.fetch-global-m2")
	defer span.End()

	url := p.baseURL + "/country/WLD/indicator/FM.LBL.BMNY.CN?format=json&per_page=600"

	// The indicator endpoint returns a two-element array: [metadata, records].
	var payload []json.RawMessage
	if err := p.fetcher.GetJSON(ctx, url, &payload); err != nil {
		return nil, err
	}
	if len(payload) < 2 {
		return nil, fetchErrorf(url, "World Bank payload missing records element")
	}

	var records []struct {
		Value any    `json:"value"`
		Date  string `json:"date"`
	}
	if err := json.Unmarshal(payload[1], &records); err != nil {
		return nil, &FetchError{URL: url, Reason: "undecodable World Bank records", Err: err}
	}

	points := make([]domain.M2Point, 0, len(records))
	for _, rec := range records {
		if rec.Value == nil || rec.Date == "" {
			continue
		}
		value, ok := toFloat(rec.Value)
		if !ok {
			continue
		}
		year, err := strconv.Atoi(rec.Date)
		if err != nil {
			continue
		}
		points = append(points, domain.M2Point{
			Year:          year,
			Value:         value,
			ValueTrillion: value / 1e12,
		})
	}
	if len(points) == 0 {
		return nil, fetchErrorf(url, "World Bank M2 dataset returned no usable data")
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Year < points[j].Year })
	return points, nil
}
