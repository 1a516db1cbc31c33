package marketdata

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/signalmaster/signal-engine/internal/types"
	"github.com/signalmaster/signal-engine/pkg/errors"
)

// PolygonProvider fetches recent aggregates from Polygon.io.
type PolygonProvider struct {
	client *polygon.Client
}

// NewPolygonProvider creates a PolygonProvider. The API key is required.
func NewPolygonProvider(apiKey string) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "polygon API key is required")
	}

	return &PolygonProvider{client: polygon.New(apiKey)}, nil
}

func (p *PolygonProvider) Name() ProviderType {
	return ProviderPolygon
}

// Fetch lists recent aggregates ending now, going back far enough to cover
// the requested bar count with headroom for market closures.
func (p *PolygonProvider) Fetch(ctx context.Context, symbol string, timeframe types.Timeframe, bars int) (types.MarketSnapshot, error) {
	if bars <= 0 {
		bars = DefaultBars
	}

	multiplier, timespan, err := polygonTimespan(timeframe)
	if err != nil {
		return types.MarketSnapshot{}, err
	}

	end := time.Now()
	// Triple the nominal span so weekends and holidays still leave enough
	// bars in the window.
	start := end.Add(-time.Duration(bars) * timeframe.BarDuration() * 3)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	iter := p.client.ListAggs(ctx, params)

	snapshot := types.MarketSnapshot{
		Symbol:    symbol,
		Timeframe: timeframe,
	}

	for iter.Next() {
		agg := iter.Item()
		snapshot.Closes = append(snapshot.Closes, agg.Close)
		snapshot.Highs = append(snapshot.Highs, agg.High)
		snapshot.Lows = append(snapshot.Lows, agg.Low)
	}

	if iter.Err() != nil {
		return types.MarketSnapshot{}, errors.Wrapf(iter.Err(), errors.ErrCodeMarketDataFetchFailed,
			"failed to list polygon aggregates for %s", symbol)
	}

	if snapshot.Bars() == 0 {
		return types.MarketSnapshot{}, errors.Newf(errors.ErrCodeMarketDataEmpty,
			"polygon returned no aggregates for %s %s", symbol, timeframe)
	}

	trimSnapshot(&snapshot, bars)
	snapshot.CurrentPrice = snapshot.Closes[snapshot.Bars()-1]

	return snapshot, nil
}

// polygonTimespan maps an engine timeframe to the Polygon multiplier and
// timespan pair.
func polygonTimespan(timeframe types.Timeframe) (int, models.Timespan, error) {
	switch timeframe {
	case types.Timeframe1Min:
		return 1, models.Minute, nil
	case types.Timeframe5Min:
		return 5, models.Minute, nil
	case types.Timeframe15Min:
		return 15, models.Minute, nil
	case types.Timeframe30Min:
		return 30, models.Minute, nil
	case types.Timeframe1Hour:
		return 1, models.Hour, nil
	case types.Timeframe4Hour:
		return 4, models.Hour, nil
	case types.Timeframe1Day:
		return 1, models.Day, nil
	default:
		return 0, "", errors.Newf(errors.ErrCodeInvalidTimeframe,
			"unsupported timeframe for polygon: %s", timeframe)
	}
}

// trimSnapshot keeps only the most recent bars entries.
func trimSnapshot(snapshot *types.MarketSnapshot, bars int) {
	if snapshot.Bars() <= bars {
		return
	}

	offset := snapshot.Bars() - bars
	snapshot.Closes = snapshot.Closes[offset:]
	snapshot.Highs = snapshot.Highs[offset:]
	snapshot.Lows = snapshot.Lows[offset:]
}
