package marketdata

import (
	"github.com/signalmaster/signal-engine/pkg/errors"
)

// FactoryConfig carries the settings providers need at construction time.
type FactoryConfig struct {
	// PolygonAPIKey is required when the polygon provider is selected.
	PolygonAPIKey string

	// CandleReader is required when the store provider is selected.
	CandleReader CandleReader
}

// NewProvider constructs the provider named by providerType.
func NewProvider(providerType ProviderType, cfg FactoryConfig) (Provider, error) {
	switch providerType {
	case ProviderSimulated:
		return NewSimulatedProvider(), nil
	case ProviderPolygon:
		return NewPolygonProvider(cfg.PolygonAPIKey)
	case ProviderBinance:
		return NewBinanceProvider(), nil
	case ProviderStore:
		if cfg.CandleReader == nil {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "store provider requires a candle reader")
		}

		return NewStoreProvider(cfg.CandleReader), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedProvider, "unsupported provider: %s", providerType)
	}
}
