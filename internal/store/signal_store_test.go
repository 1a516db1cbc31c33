package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/signalmaster/signal-engine/internal/logger"
	"github.com/signalmaster/signal-engine/internal/types"
	"github.com/signalmaster/signal-engine/pkg/errors"
)

func testSignal() types.Signal {
	now := time.Now().UTC().Truncate(time.Millisecond)

	return types.Signal{
		ID:            uuid.New().String(),
		Symbol:        "EURUSD",
		Type:          types.SignalTypeBuy,
		IndicatorID:   "ind-1",
		IndicatorName: "RSI reversal",
		Timeframe:     types.Timeframe1Hour,
		SenderType:    types.SenderIndicatorAuto,
		SenderID:      "mentor-1",
		Notes:         "BUY signal from RSI reversal",
		Values:        map[string]float64{"RSI": 28.12345},
		CreatedAt:     now,
		ExpiresAt:     now.Add(types.DefaultSignalTTL),
		Status:        types.SignalStatusActive,
	}
}

type SignalStoreTestSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (suite *SignalStoreTestSuite) SetupTest() {
	store, err := NewStore(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.Require().NoError(store.Initialize())

	suite.store = store
	suite.ctx = context.Background()
}

func (suite *SignalStoreTestSuite) TearDownTest() {
	suite.Require().NoError(suite.store.Close())
}

func (suite *SignalStoreTestSuite) TestInsertAndGetRoundTrip() {
	sig := testSignal()
	suite.Require().NoError(suite.store.InsertSignal(suite.ctx, sig))

	got, err := suite.store.GetSignal(suite.ctx, sig.ID)
	suite.Require().NoError(err)
	suite.Require().True(got.IsSome())

	loaded := got.Unwrap()
	suite.Equal(sig.Type, loaded.Type)
	suite.Equal(sig.SenderType, loaded.SenderType)
	suite.InDelta(28.12345, loaded.Values["RSI"], 1e-9)
}

func (suite *SignalStoreTestSuite) TestInboxFanOutAndListing() {
	sig := testSignal()
	suite.Require().NoError(suite.store.InsertSignal(suite.ctx, sig))

	entries := []types.InboxEntry{
		{ID: uuid.New().String(), SignalID: sig.ID, UserID: "user-1", ReceivedAt: sig.CreatedAt},
		{ID: uuid.New().String(), SignalID: sig.ID, UserID: "user-2", ReceivedAt: sig.CreatedAt},
	}
	suite.Require().NoError(suite.store.InsertInboxEntries(suite.ctx, entries))

	items, err := suite.store.ListInbox(suite.ctx, "user-1", 0)
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Equal(sig.ID, items[0].Signal.ID)
	suite.False(items[0].Entry.Read)

	items, err = suite.store.ListInbox(suite.ctx, "user-3", 0)
	suite.Require().NoError(err)
	suite.Empty(items)
}

func (suite *SignalStoreTestSuite) TestInboxOrderingAndLimit() {
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 3; i++ {
		sig := testSignal()
		sig.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		suite.Require().NoError(suite.store.InsertSignal(suite.ctx, sig))
		suite.Require().NoError(suite.store.InsertInboxEntries(suite.ctx, []types.InboxEntry{
			{ID: uuid.New().String(), SignalID: sig.ID, UserID: "user-1", ReceivedAt: sig.CreatedAt},
		}))
	}

	items, err := suite.store.ListInbox(suite.ctx, "user-1", 2)
	suite.Require().NoError(err)
	suite.Require().Len(items, 2)
	suite.True(items[0].Entry.ReceivedAt.After(items[1].Entry.ReceivedAt))
}

func (suite *SignalStoreTestSuite) TestMarkRead() {
	sig := testSignal()
	suite.Require().NoError(suite.store.InsertSignal(suite.ctx, sig))

	entry := types.InboxEntry{ID: uuid.New().String(), SignalID: sig.ID, UserID: "user-1", ReceivedAt: sig.CreatedAt}
	suite.Require().NoError(suite.store.InsertInboxEntries(suite.ctx, []types.InboxEntry{entry}))

	suite.Require().NoError(suite.store.MarkInboxRead(suite.ctx, entry.ID, "user-1"))

	items, err := suite.store.ListInbox(suite.ctx, "user-1", 0)
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.True(items[0].Entry.Read)
}

func (suite *SignalStoreTestSuite) TestMarkReadWrongUser() {
	sig := testSignal()
	suite.Require().NoError(suite.store.InsertSignal(suite.ctx, sig))

	entry := types.InboxEntry{ID: uuid.New().String(), SignalID: sig.ID, UserID: "user-1", ReceivedAt: sig.CreatedAt}
	suite.Require().NoError(suite.store.InsertInboxEntries(suite.ctx, []types.InboxEntry{entry}))

	err := suite.store.MarkInboxRead(suite.ctx, entry.ID, "user-2")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *SignalStoreTestSuite) TestCountUnreadSkipsExpired() {
	now := time.Now().UTC().Truncate(time.Millisecond)

	fresh := testSignal()
	suite.Require().NoError(suite.store.InsertSignal(suite.ctx, fresh))

	expired := testSignal()
	expired.CreatedAt = now.Add(-48 * time.Hour)
	expired.ExpiresAt = now.Add(-24 * time.Hour)
	suite.Require().NoError(suite.store.InsertSignal(suite.ctx, expired))

	suite.Require().NoError(suite.store.InsertInboxEntries(suite.ctx, []types.InboxEntry{
		{ID: uuid.New().String(), SignalID: fresh.ID, UserID: "user-1", ReceivedAt: now},
		{ID: uuid.New().String(), SignalID: expired.ID, UserID: "user-1", ReceivedAt: expired.CreatedAt},
	}))

	count, err := suite.store.CountUnread(suite.ctx, "user-1", now)
	suite.Require().NoError(err)
	suite.Equal(1, count)
}

func (suite *SignalStoreTestSuite) TestPushTokenLifecycle() {
	now := time.Now().UTC()

	suite.Require().NoError(suite.store.UpsertPushToken(suite.ctx, "user-1", "ExponentPushToken[aaa]", now))
	suite.Require().NoError(suite.store.UpsertPushToken(suite.ctx, "user-1", "ExponentPushToken[aaa]", now.Add(time.Hour)))
	suite.Require().NoError(suite.store.UpsertPushToken(suite.ctx, "user-2", "ExponentPushToken[bbb]", now))

	tokens, err := suite.store.ListPushTokens(suite.ctx, []string{"user-1", "user-2"})
	suite.Require().NoError(err)
	suite.Len(tokens, 2)

	suite.Require().NoError(suite.store.DeletePushToken(suite.ctx, "user-1", "ExponentPushToken[aaa]"))

	tokens, err = suite.store.ListPushTokens(suite.ctx, []string{"user-1"})
	suite.Require().NoError(err)
	suite.Empty(tokens)

	tokens, err = suite.store.ListPushTokens(suite.ctx, nil)
	suite.Require().NoError(err)
	suite.Nil(tokens)
}

func TestSignalStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SignalStoreTestSuite))
}
