package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TimeframeTestSuite struct {
	suite.Suite
}

func TestTimeframeSuite(t *testing.T) {
	suite.Run(t, new(TimeframeTestSuite))
}

func (suite *TimeframeTestSuite) TestParseTimeframeAliases() {
	suite.Equal(Timeframe1Min, ParseTimeframe("1m"))
	suite.Equal(Timeframe1Min, ParseTimeframe("1min"))
	suite.Equal(Timeframe5Min, ParseTimeframe("M5"))
	suite.Equal(Timeframe1Hour, ParseTimeframe("H1"))
	suite.Equal(Timeframe1Hour, ParseTimeframe("1H"))
	suite.Equal(Timeframe4Hour, ParseTimeframe("4h"))
	suite.Equal(Timeframe1Day, ParseTimeframe("D1"))
}

func (suite *TimeframeTestSuite) TestParseTimeframeUnknownPassesThrough() {
	suite.Equal(Timeframe("2h"), ParseTimeframe("2h"))
}

func (suite *TimeframeTestSuite) TestCheckIntervals() {
	suite.Equal(1*time.Minute, Timeframe1Min.CheckInterval())
	suite.Equal(5*time.Minute, Timeframe5Min.CheckInterval())
	suite.Equal(10*time.Minute, Timeframe15Min.CheckInterval())
	suite.Equal(20*time.Minute, Timeframe30Min.CheckInterval())
	suite.Equal(45*time.Minute, Timeframe1Hour.CheckInterval())
	suite.Equal(60*time.Minute, Timeframe4Hour.CheckInterval())
	suite.Equal(240*time.Minute, Timeframe1Day.CheckInterval())
}

func (suite *TimeframeTestSuite) TestUnknownTimeframeDefaultsTo5Minutes() {
	suite.Equal(5*time.Minute, Timeframe("2h").CheckInterval())
	suite.Equal(10*time.Minute, Timeframe("2h").Cooldown())
}

func (suite *TimeframeTestSuite) TestCooldownIsDoubleInterval() {
	suite.Equal(10*time.Minute, Timeframe5Min.Cooldown())
	suite.Equal(90*time.Minute, Timeframe1Hour.Cooldown())
}

type SubscriptionTestSuite struct {
	suite.Suite
}

func TestSubscriptionSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionTestSuite))
}

func (suite *SubscriptionTestSuite) TestDueForCheckNeverChecked() {
	sub := Subscription{Timeframe: Timeframe5Min}
	suite.True(sub.DueForCheck(time.Now()))
}

func (suite *SubscriptionTestSuite) TestDueForCheckRespectsInterval() {
	now := time.Now()

	recent := now.Add(-2 * time.Minute)
	sub := Subscription{Timeframe: Timeframe5Min, LastCheckTime: &recent}
	suite.False(sub.DueForCheck(now))

	stale := now.Add(-6 * time.Minute)
	sub.LastCheckTime = &stale
	suite.True(sub.DueForCheck(now))
}

func (suite *SubscriptionTestSuite) TestCooldownActive() {
	now := time.Now()

	sub := Subscription{Timeframe: Timeframe5Min}
	suite.False(sub.CooldownActive(now))

	recent := now.Add(-3 * time.Minute)
	sub.LastSignalTime = &recent
	suite.True(sub.CooldownActive(now))

	old := now.Add(-20 * time.Minute)
	sub.LastSignalTime = &old
	suite.False(sub.CooldownActive(now))
}

func (suite *SubscriptionTestSuite) TestSignalExpired() {
	now := time.Now()
	sig := Signal{ExpiresAt: now.Add(time.Hour)}
	suite.False(sig.Expired(now))
	suite.True(sig.Expired(now.Add(2 * time.Hour)))
}
