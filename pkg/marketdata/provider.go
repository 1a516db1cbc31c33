// Package marketdata fetches recent OHLCV history for a symbol/timeframe
// pair and exposes it as a snapshot the evaluator can consume.
package marketdata

import (
	"context"

	"github.com/signalmaster/signal-engine/internal/types"
)

// ProviderType identifies a market data source.
type ProviderType string

const (
	ProviderSimulated ProviderType = "simulated"
	ProviderPolygon   ProviderType = "polygon"
	ProviderBinance   ProviderType = "binance"
	ProviderStore     ProviderType = "store"
)

// DefaultBars is the number of bars fetched when the caller does not ask
// for a specific depth.
const DefaultBars = 100

// Provider fetches the most recent bars for a symbol on a timeframe. The
// returned snapshot orders bars oldest first and sets CurrentPrice to the
// latest close.
type Provider interface {
	// Fetch returns up to bars recent candles. Fewer bars than requested is
	// not an error; an empty snapshot is.
	Fetch(ctx context.Context, symbol string, timeframe types.Timeframe, bars int) (types.MarketSnapshot, error)

	// Name reports the provider type for logging and registry lookups.
	Name() ProviderType
}

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderSimulated: {
		Name:         string(ProviderSimulated),
		DisplayName:  "Simulated",
		Description:  "Deterministic synthetic OHLCV data for development and tests",
		RequiresAuth: false,
	},
	ProviderPolygon: {
		Name:         string(ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "US stock market data provider with real-time and historical OHLCV data",
		RequiresAuth: true,
	},
	ProviderBinance: {
		Name:         string(ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange with extensive market data for crypto trading pairs",
		RequiresAuth: false,
	},
	ProviderStore: {
		Name:         string(ProviderStore),
		DisplayName:  "Local store",
		Description:  "Candles previously backfilled into the local database",
		RequiresAuth: false,
	},
}

// SupportedProviders returns the names of all registered providers.
func SupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(name string) (ProviderInfo, bool) {
	info, exists := providerRegistry[ProviderType(name)]

	return info, exists
}
