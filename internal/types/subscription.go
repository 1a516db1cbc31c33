package types

import "time"

// SubscriptionStatus is the soft-deactivation flag of a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
	// SubscriptionStatusDetached marks subscriptions whose indicator was
	// deleted by its mentor.
	SubscriptionStatusDetached SubscriptionStatus = "detached"
)

// Subscription binds one user to one indicator for a chosen symbol and
// timeframe. At most one active subscription may exist per
// (user, indicator, symbol) tuple.
//
// LastCheckTime and LastSignalTime are the worker's per-subscription state
// machine: the former paces evaluation cadence, the latter enforces the
// signal cooldown.
type Subscription struct {
	// ID is the unique identifier of the subscription.
	ID string `json:"id"`
	// UserID is the subscribing user.
	UserID string `json:"user_id"`
	// MentorID is the mentor owning the indicator, denormalized for
	// fan-out attribution.
	MentorID string `json:"mentor_id"`
	// IndicatorID references the subscribed indicator.
	IndicatorID string `json:"indicator_id"`
	// IndicatorName is denormalized for display.
	IndicatorName string `json:"indicator_name"`
	// Symbol is the user's chosen instrument.
	Symbol string `json:"symbol"`
	// Timeframe is the user's chosen candle granularity.
	Timeframe Timeframe `json:"timeframe"`
	// Status is the soft-deactivation flag.
	Status SubscriptionStatus `json:"status"`
	// SubscribedAt is the creation time.
	SubscribedAt time.Time `json:"subscribed_at"`
	// UnsubscribedAt is set on soft deactivation.
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
	// LastCheckTime is when the worker last evaluated this subscription,
	// nil before the first check.
	LastCheckTime *time.Time `json:"last_check_time,omitempty"`
	// LastSignalTime is when the last signal was emitted, nil if none.
	LastSignalTime *time.Time `json:"last_signal_time,omitempty"`
	// LastSignalType is the direction of the last emitted signal.
	LastSignalType SignalType `json:"last_signal_type"`
	// TotalSignalsReceived counts signals emitted on this subscription.
	TotalSignalsReceived int `json:"total_signals_received"`
}

// DueForCheck reports whether the timeframe's monitoring interval has
// elapsed since the last check. A never-checked subscription is always due.
func (s Subscription) DueForCheck(now time.Time) bool {
	if s.LastCheckTime == nil {
		return true
	}

	return now.Sub(*s.LastCheckTime) >= s.Timeframe.CheckInterval()
}

// CooldownActive reports whether the subscription is still inside the
// post-signal cooldown window at the given instant.
func (s Subscription) CooldownActive(now time.Time) bool {
	if s.LastSignalTime == nil {
		return false
	}

	return now.Sub(*s.LastSignalTime) <= s.Timeframe.Cooldown()
}
