package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/signalmaster/signal-engine/internal/logger"
	"github.com/signalmaster/signal-engine/pkg/errors"
)

type ExpoNotifierTestSuite struct {
	suite.Suite
	requests [][]string
	server   *httptest.Server
	notifier *ExpoNotifier
}

func (suite *ExpoNotifierTestSuite) SetupTest() {
	suite.requests = nil
	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload expoPushRequest
		suite.Require().NoError(json.NewDecoder(r.Body).Decode(&payload))
		suite.requests = append(suite.requests, payload.To)
		w.WriteHeader(http.StatusOK)
	}))

	suite.notifier = &ExpoNotifier{
		client: &http.Client{Timeout: time.Second},
		url:    suite.server.URL,
		log:    logger.NewNopLogger(),
	}
}

func (suite *ExpoNotifierTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *ExpoNotifierTestSuite) TestSendFiltersInvalidTokens() {
	err := suite.notifier.Send(context.Background(), PushMessage{
		Tokens: []string{"ExponentPushToken[aaa]", "fcm-token", "ExponentPushToken[bbb]"},
		Title:  "BUY EURUSD",
		Body:   "RSI reversal fired",
	})
	suite.Require().NoError(err)

	suite.Require().Len(suite.requests, 1)
	suite.Equal([]string{"ExponentPushToken[aaa]", "ExponentPushToken[bbb]"}, suite.requests[0])
}

func (suite *ExpoNotifierTestSuite) TestSendNoValidTokensSkipsRequest() {
	err := suite.notifier.Send(context.Background(), PushMessage{
		Tokens: []string{"fcm-token"},
		Title:  "BUY EURUSD",
	})
	suite.Require().NoError(err)
	suite.Empty(suite.requests)
}

func (suite *ExpoNotifierTestSuite) TestSendBatchesAtLimit() {
	tokens := make([]string, 250)
	for i := range tokens {
		tokens[i] = "ExponentPushToken[x]"
	}

	err := suite.notifier.Send(context.Background(), PushMessage{Tokens: tokens, Title: "t"})
	suite.Require().NoError(err)

	suite.Require().Len(suite.requests, 3)
	suite.Len(suite.requests[0], 100)
	suite.Len(suite.requests[1], 100)
	suite.Len(suite.requests[2], 50)
}

func (suite *ExpoNotifierTestSuite) TestSendServerError() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := &ExpoNotifier{
		client: &http.Client{Timeout: time.Second},
		url:    server.URL,
		log:    logger.NewNopLogger(),
	}

	err := notifier.Send(context.Background(), PushMessage{
		Tokens: []string{"ExponentPushToken[aaa]"},
		Title:  "t",
	})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodePushDispatchFailed))
}

func (suite *ExpoNotifierTestSuite) TestLogNotifierNeverFails() {
	notifier := NewLogNotifier(logger.NewNopLogger())

	err := notifier.Send(context.Background(), PushMessage{
		Tokens: []string{"ExponentPushToken[aaa]"},
		Title:  "t",
	})
	suite.NoError(err)
}

func TestExpoNotifierTestSuite(t *testing.T) {
	suite.Run(t, new(ExpoNotifierTestSuite))
}
