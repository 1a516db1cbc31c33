package types

import "time"

// SignalType is the direction of an emitted signal.
type SignalType string

const (
	// SignalTypeBuy is a signal that tells subscribers to buy.
	SignalTypeBuy SignalType = "BUY"
	// SignalTypeSell is a signal that tells subscribers to sell.
	SignalTypeSell SignalType = "SELL"
	// SignalTypeNone means no verdict; nothing is emitted.
	SignalTypeNone SignalType = "NONE"
)

// SenderType records which path emitted a signal.
type SenderType string

const (
	// SenderIndicatorAuto marks signals produced by the background worker
	// from indicator condition evaluation.
	SenderIndicatorAuto SenderType = "indicator_auto"
	// SenderMentorManual marks signals force-emitted by a mentor override,
	// bypassing condition evaluation entirely.
	SenderMentorManual SenderType = "mentor_manual_override"
)

// SignalStatus is the stored lifecycle state of a signal. Expiry is not a
// stored transition: it is computed at read time from ExpiresAt.
type SignalStatus string

const (
	SignalStatusActive SignalStatus = "active"
)

// DefaultSignalTTL is the expiry window for worker-generated signals.
const DefaultSignalTTL = 24 * time.Hour

// Signal is an immutable emitted BUY/SELL event. Once created it is never
// mutated; readers derive the expired state by comparing ExpiresAt to now.
type Signal struct {
	// ID is the unique identifier of the signal.
	ID string `json:"id"`
	// Symbol is the instrument the signal applies to.
	Symbol string `json:"symbol"`
	// Type is BUY or SELL.
	Type SignalType `json:"signal_type"`
	// IndicatorID is the originating indicator.
	IndicatorID string `json:"indicator_id"`
	// IndicatorName is denormalized for display and notifications.
	IndicatorName string `json:"indicator_name"`
	// SubscriptionID is the subscription that triggered the signal, empty
	// for manual sends that target every subscriber at once.
	SubscriptionID string `json:"subscription_id,omitempty"`
	// Timeframe is the candle granularity the signal was evaluated on.
	Timeframe Timeframe `json:"timeframe"`
	// SenderType records the emission path (worker vs. manual override).
	SenderType SenderType `json:"sender_type"`
	// SenderID is the mentor that owns the originating indicator.
	SenderID string `json:"sender_id"`
	// Notes is a human-readable description of why the signal fired.
	Notes string `json:"notes"`
	// Values holds the indicator values at emission time, rounded for
	// display. Empty for manual overrides.
	Values map[string]float64 `json:"values,omitempty"`
	// CreatedAt is the emission time.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is when the signal stops being actionable.
	ExpiresAt time.Time `json:"expires_at"`
	// Status is the stored lifecycle state.
	Status SignalStatus `json:"status"`
}

// Expired reports whether the signal has passed its expiry at the given
// instant.
func (s Signal) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// InboxEntry is the fan-out artifact: one row per subscriber per signal.
// Entries are never deleted; they form the user's signal history.
type InboxEntry struct {
	// ID is the unique identifier of the entry.
	ID string `json:"id"`
	// SignalID references the fanned-out signal.
	SignalID string `json:"signal_id"`
	// UserID is the recipient.
	UserID string `json:"user_id"`
	// Read is flipped by the mark-read action and never unset.
	Read bool `json:"read"`
	// ReceivedAt is when the fan-out materialized this entry.
	ReceivedAt time.Time `json:"received_at"`
}
