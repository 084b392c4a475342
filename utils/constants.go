package utils

import "time"

// ContextKey is the type used for values attached to request contexts.
type ContextKey string

// Request context keys
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Reconciliation constants
const (
	// MismatchThreshold is the absolute payout delta (in currency units) above
	// which a settlement is flagged. A delta of exactly this value is not flagged.
	MismatchThreshold = 10.0

	// MaxFlattenedSlabs is the number of slab column triples supported by the
	// flattened import layout (slab1_* .. slab5_*).
	MaxFlattenedSlabs = 5

	// MoneyScale is the decimal scale applied to monetary outputs at the API boundary.
	MoneyScale = 2
)

// Tax rate bounds
const (
	MaxGSTPercent = 28.0
	MaxTCSPercent = 5.0
)

// Token and cache time constants
const (
	// AccessTokenTTL is the time-to-live for dashboard access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
