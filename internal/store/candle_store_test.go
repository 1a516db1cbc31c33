package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/signalmaster/signal-engine/internal/logger"
	"github.com/signalmaster/signal-engine/internal/types"
)

type CandleStoreTestSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (suite *CandleStoreTestSuite) SetupTest() {
	store, err := NewStore(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.Require().NoError(store.Initialize())

	suite.store = store
	suite.ctx = context.Background()
}

func (suite *CandleStoreTestSuite) TearDownTest() {
	suite.Require().NoError(suite.store.Close())
}

func testCandles(n int) []types.Candle {
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]types.Candle, n)

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

	return candles
}

func (suite *CandleStoreTestSuite) TestWriteAndReadChronological() {
	suite.Require().NoError(suite.store.WriteCandles(suite.ctx, testCandles(10)))

	candles, err := suite.store.ReadCandles(suite.ctx, "EURUSD", types.Timeframe1Hour, 0)
	suite.Require().NoError(err)
	suite.Require().Len(candles, 10)

	for i := 1; i < len(candles); i++ {
		suite.True(candles[i].Time.After(candles[i-1].Time))
	}
}

func (suite *CandleStoreTestSuite) TestReadLimitKeepsMostRecent() {
	all := testCandles(10)
	suite.Require().NoError(suite.store.WriteCandles(suite.ctx, all))

	candles, err := suite.store.ReadCandles(suite.ctx, "EURUSD", types.Timeframe1Hour, 3)
	suite.Require().NoError(err)
	suite.Require().Len(candles, 3)
	suite.Equal(all[7].Time, candles[0].Time)
	suite.Equal(all[9].Time, candles[2].Time)
}

func (suite *CandleStoreTestSuite) TestRewriteReplacesBars() {
	candles := testCandles(5)
	suite.Require().NoError(suite.store.WriteCandles(suite.ctx, candles))

	candles[0].Close = 9.99
	suite.Require().NoError(suite.store.WriteCandles(suite.ctx, candles))

	loaded, err := suite.store.ReadCandles(suite.ctx, "EURUSD", types.Timeframe1Hour, 0)
	suite.Require().NoError(err)
	suite.Require().Len(loaded, 5)
	suite.InDelta(9.99, loaded[0].Close, 1e-9)
}

func (suite *CandleStoreTestSuite) TestReadOtherTimeframeEmpty() {
	suite.Require().NoError(suite.store.WriteCandles(suite.ctx, testCandles(5)))

	candles, err := suite.store.ReadCandles(suite.ctx, "EURUSD", types.Timeframe5Min, 0)
	suite.Require().NoError(err)
	suite.Empty(candles)
}

func TestCandleStoreTestSuite(t *testing.T) {
	suite.Run(t, new(CandleStoreTestSuite))
}
