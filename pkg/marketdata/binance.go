package marketdata

import (
	"context"
	"strconv"

	binance "github.com/adshao/go-binance/v2"

	"github.com/signalmaster/signal-engine/internal/types"
	"github.com/signalmaster/signal-engine/pkg/errors"
)

// BinanceProvider fetches recent klines from the Binance spot API. Public
// kline endpoints need no credentials.
type BinanceProvider struct {
	client *binance.Client
}

// NewBinanceProvider creates a BinanceProvider.
func NewBinanceProvider() *BinanceProvider {
	return &BinanceProvider{client: binance.NewClient("", "")}
}

func (p *BinanceProvider) Name() ProviderType {
	return ProviderBinance
}

// Fetch requests the most recent klines for the symbol.
// Binance intervals: 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func (p *BinanceProvider) Fetch(ctx context.Context, symbol string, timeframe types.Timeframe, bars int) (types.MarketSnapshot, error) {
	if bars <= 0 {
		bars = DefaultBars
	}

	interval, err := binanceInterval(timeframe)
	if err != nil {
		return types.MarketSnapshot{}, err
	}

	klines, err := p.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(bars).
		Do(ctx)
	if err != nil {
		return types.MarketSnapshot{}, errors.Wrapf(err, errors.ErrCodeMarketDataFetchFailed,
			"failed to fetch klines from Binance for %s", symbol)
	}

	if len(klines) == 0 {
		return types.MarketSnapshot{}, errors.Newf(errors.ErrCodeMarketDataEmpty,
			"binance returned no klines for %s %s", symbol, timeframe)
	}

	snapshot := types.MarketSnapshot{
		Symbol:    symbol,
		Timeframe: timeframe,
		Closes:    make([]float64, 0, len(klines)),
		Highs:     make([]float64, 0, len(klines)),
		Lows:      make([]float64, 0, len(klines)),
	}

	for _, k := range klines {
		closePrice, _ := strconv.ParseFloat(k.Close, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)

		snapshot.Closes = append(snapshot.Closes, closePrice)
		snapshot.Highs = append(snapshot.Highs, high)
		snapshot.Lows = append(snapshot.Lows, low)
	}

	snapshot.CurrentPrice = snapshot.Closes[snapshot.Bars()-1]

	return snapshot, nil
}

// binanceInterval converts an engine timeframe to a Binance interval string.
func binanceInterval(timeframe types.Timeframe) (string, error) {
	switch timeframe {
	case types.Timeframe1Min:
		return "1m", nil
	case types.Timeframe5Min:
		return "5m", nil
	case types.Timeframe15Min:
		return "15m", nil
	case types.Timeframe30Min:
		return "30m", nil
	case types.Timeframe1Hour:
		return "1h", nil
	case types.Timeframe4Hour:
		return "4h", nil
	case types.Timeframe1Day:
		return "1d", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe,
			"unsupported timeframe for Binance: %s", timeframe)
	}
}
