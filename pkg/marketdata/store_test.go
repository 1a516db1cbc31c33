package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/signalmaster/signal-engine/internal/types"
	"github.com/signalmaster/signal-engine/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type fakeCandleReader struct {
	candles []types.Candle
	err     error
}

func (r *fakeCandleReader) ReadCandles(_ context.Context, _ string, _ types.Timeframe, limit int) ([]types.Candle, error) {
	if r.err != nil {
		return nil, r.err
	}

	if len(r.candles) > limit {
		return r.candles[len(r.candles)-limit:], nil
	}

	return r.candles, nil
}

type StoreProviderTestSuite struct {
	suite.Suite
}

func (suite *StoreProviderTestSuite) TestFetchFromStoredCandles() {
	candles := make([]types.Candle, 30)
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	for i := range candles {
		price := 1.1 + float64(i)*0.001
		candles[i] = types.Candle{
			Symbol:    "EURUSD",
			Timeframe: types.Timeframe1Hour,
			Time:      base.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price * 1.001,
			Low:       price * 0.999,
			Close:     price,
			Volume:    1000,
		}
	}

	provider := NewStoreProvider(&fakeCandleReader{candles: candles})

	snapshot, err := provider.Fetch(context.Background(), "EURUSD", types.Timeframe1Hour, 20)
	suite.Require().NoError(err)
	suite.Equal(20, snapshot.Bars())
	suite.InDelta(candles[29].Close, snapshot.CurrentPrice, 1e-9)
}

func (suite *StoreProviderTestSuite) TestFetchEmptyStore() {
	provider := NewStoreProvider(&fakeCandleReader{})

	_, err := provider.Fetch(context.Background(), "EURUSD", types.Timeframe1Hour, 20)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataEmpty))
}

func (suite *StoreProviderTestSuite) TestFetchReadError() {
	provider := NewStoreProvider(&fakeCandleReader{
		err: errors.New(errors.ErrCodeQueryFailed, "boom"),
	})

	_, err := provider.Fetch(context.Background(), "EURUSD", types.Timeframe1Hour, 20)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
}

func TestStoreProviderTestSuite(t *testing.T) {
	suite.Run(t, new(StoreProviderTestSuite))
}
