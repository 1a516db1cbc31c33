package marketdata

import (
	"context"

	"github.com/signalmaster/signal-engine/internal/types"
	"github.com/signalmaster/signal-engine/pkg/errors"
)

// CandleReader reads previously backfilled candles, most recent last.
type CandleReader interface {
	ReadCandles(ctx context.Context, symbol string, timeframe types.Timeframe, limit int) ([]types.Candle, error)
}

// StoreProvider serves snapshots from locally stored candles. It is the
// offline counterpart of the remote providers: backfill once, evaluate
// without network access.
type StoreProvider struct {
	reader CandleReader
}

// NewStoreProvider creates a StoreProvider over the given reader.
func NewStoreProvider(reader CandleReader) *StoreProvider {
	return &StoreProvider{reader: reader}
}

func (p *StoreProvider) Name() ProviderType {
	return ProviderStore
}

func (p *StoreProvider) Fetch(ctx context.Context, symbol string, timeframe types.Timeframe, bars int) (types.MarketSnapshot, error) {
	if bars <= 0 {
		bars = DefaultBars
	}

	candles, err := p.reader.ReadCandles(ctx, symbol, timeframe, bars)
	if err != nil {
		return types.MarketSnapshot{}, errors.Wrapf(err, errors.ErrCodeMarketDataFetchFailed,
			"failed to read stored candles for %s %s", symbol, timeframe)
	}

	if len(candles) == 0 {
		return types.MarketSnapshot{}, errors.Newf(errors.ErrCodeMarketDataEmpty,
			"no stored candles for %s %s", symbol, timeframe)
	}

	snapshot := types.MarketSnapshot{
		Symbol:    symbol,
		Timeframe: timeframe,
		Closes:    make([]float64, 0, len(candles)),
		Highs:     make([]float64, 0, len(candles)),
		Lows:      make([]float64, 0, len(candles)),
	}

	for _, c := range candles {
		snapshot.Closes = append(snapshot.Closes, c.Close)
		snapshot.Highs = append(snapshot.Highs, c.High)
		snapshot.Lows = append(snapshot.Lows, c.Low)
	}

	snapshot.CurrentPrice = snapshot.Closes[snapshot.Bars()-1]

	return snapshot, nil
}
