package errors

// ErrorCode is a typed error code identifying the failure category.
type ErrorCode int

const (
	// ErrCodeUnknown is the zero-value code for untyped errors.
	ErrCodeUnknown ErrorCode = 0

	// Validation errors (100-199).
	ErrCodeInvalidParameter ErrorCode = 100
	ErrCodeInvalidConfig    ErrorCode = 101
	ErrCodeInvalidSignal    ErrorCode = 102
	ErrCodeInvalidTimeframe ErrorCode = 103

	// Data/Resource errors (200-299).
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeQueryFailed           ErrorCode = 201
	ErrCodeStoreInitFailed       ErrorCode = 202
	ErrCodeDuplicateSubscription ErrorCode = 203

	// Indicator errors (300-399).
	ErrCodeIndicatorNotFound   ErrorCode = 300
	ErrCodeIndicatorNotRunning ErrorCode = 301

	// Market data errors (400-499).
	ErrCodeMarketDataFetchFailed ErrorCode = 400
	ErrCodeMarketDataEmpty       ErrorCode = 401
	ErrCodeUnsupportedProvider   ErrorCode = 402

	// Worker errors (500-599).
	ErrCodeWorkerCycleFailed ErrorCode = 500

	// Notification errors (600-699).
	ErrCodePushDispatchFailed ErrorCode = 600
)
