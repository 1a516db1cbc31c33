package marketdata

import (
	"testing"

	"github.com/signalmaster/signal-engine/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type FactoryTestSuite struct {
	suite.Suite
}

func (suite *FactoryTestSuite) TestNewSimulated() {
	provider, err := NewProvider(ProviderSimulated, FactoryConfig{})
	suite.Require().NoError(err)
	suite.Equal(ProviderSimulated, provider.Name())
}

func (suite *FactoryTestSuite) TestNewBinance() {
	provider, err := NewProvider(ProviderBinance, FactoryConfig{})
	suite.Require().NoError(err)
	suite.Equal(ProviderBinance, provider.Name())
}

func (suite *FactoryTestSuite) TestNewPolygonRequiresKey() {
	_, err := NewProvider(ProviderPolygon, FactoryConfig{})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfig))

	provider, err := NewProvider(ProviderPolygon, FactoryConfig{PolygonAPIKey: "test-key"})
	suite.Require().NoError(err)
	suite.Equal(ProviderPolygon, provider.Name())
}

func (suite *FactoryTestSuite) TestNewStoreRequiresReader() {
	_, err := NewProvider(ProviderStore, FactoryConfig{})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfig))

	provider, err := NewProvider(ProviderStore, FactoryConfig{CandleReader: &fakeCandleReader{}})
	suite.Require().NoError(err)
	suite.Equal(ProviderStore, provider.Name())
}

func (suite *FactoryTestSuite) TestUnsupportedProvider() {
	_, err := NewProvider("alpaca", FactoryConfig{})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedProvider))
}

func (suite *FactoryTestSuite) TestRegistryMetadata() {
	suite.Len(SupportedProviders(), 4)

	info, ok := GetProviderInfo("polygon")
	suite.True(ok)
	suite.True(info.RequiresAuth)

	_, ok = GetProviderInfo("alpaca")
	suite.False(ok)
}

func TestFactoryTestSuite(t *testing.T) {
	suite.Run(t, new(FactoryTestSuite))
}
