package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/signalmaster/signal-engine/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func (suite *ConfigTestSuite) writeConfig(content string) string {
	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *ConfigTestSuite) TestDefaultsAreValid() {
	cfg, err := LoadConfig("")
	suite.Require().NoError(err)

	suite.Equal(":8080", cfg.Server.Addr)
	suite.Equal(":memory:", cfg.Database.Path)
	suite.Equal("simulated", cfg.MarketData.Provider)
	suite.Equal(time.Minute, cfg.Worker.BaseTick)
	suite.False(cfg.Push.Enabled)
}

func (suite *ConfigTestSuite) TestFileOverridesDefaults() {
	path := suite.writeConfig(`
server:
  addr: ":9090"
database:
  path: /var/lib/signal-engine/data.db
market_data:
  provider: binance
worker:
  base_tick: 30s
  bars: 200
push:
  enabled: true
`)

	cfg, err := LoadConfig(path)
	suite.Require().NoError(err)

	suite.Equal(":9090", cfg.Server.Addr)
	suite.Equal("/var/lib/signal-engine/data.db", cfg.Database.Path)
	suite.Equal("binance", cfg.MarketData.Provider)
	suite.Equal(30*time.Second, cfg.Worker.BaseTick)
	suite.Equal(200, cfg.Worker.Bars)
	suite.True(cfg.Push.Enabled)

	// Untouched fields keep their defaults.
	suite.Equal(500*time.Millisecond, cfg.Worker.SubscriptionDelay)
}

func (suite *ConfigTestSuite) TestUnknownProviderRejected() {
	path := suite.writeConfig(`
market_data:
  provider: alpaca
`)

	_, err := LoadConfig(path)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func (suite *ConfigTestSuite) TestPolygonRequiresAPIKey() {
	path := suite.writeConfig(`
market_data:
  provider: polygon
`)

	_, err := LoadConfig(path)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfig))

	path = suite.writeConfig(`
market_data:
  provider: polygon
  polygon_api_key: test-key
`)

	cfg, err := LoadConfig(path)
	suite.Require().NoError(err)
	suite.Equal("test-key", cfg.MarketData.PolygonAPIKey)
}

func (suite *ConfigTestSuite) TestTooFewBarsRejected() {
	path := suite.writeConfig(`
worker:
  bars: 5
`)

	_, err := LoadConfig(path)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func (suite *ConfigTestSuite) TestMissingFile() {
	_, err := LoadConfig("/nonexistent/config.yaml")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
