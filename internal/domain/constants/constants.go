package constants

import "time"

// Rule store constants
const (
	// DefaultRulesCacheTTL how long a rule snapshot stays fresh before
	// a background refresh is attempted
	DefaultRulesCacheTTL = 5 * time.Minute
)

// Session constants
const (
	// MaxUtteranceHistory raw utterances kept per session (objection context)
	MaxUtteranceHistory = 10

	// DefaultSessionIdleTTL idle time after which a session is torn down
	DefaultSessionIdleTTL = 2 * time.Hour

	// DefaultSilenceThreshold idle time after which the silence nudge is sent
	DefaultSilenceThreshold = 15 * time.Minute
)

// Listings API constants
const (
	// DefaultListingsLimit listings shown per search page
	DefaultListingsLimit = 3

	// ListingsRequestTimeout timeout for one search call
	ListingsRequestTimeout = 30 * time.Second
)

// Extraction bounds recovered from production traffic: numbers outside
// these ranges are never treated as a value for the given filter.
const (
	MinPriceValue = 1000

	MinRooms = 1
	MaxRooms = 7

	MinArea = 15
	MaxArea = 500

	MinFloor = 1
	MaxFloor = 50

	MinFloorsTotal = 1
	MaxFloorsTotal = 30
)
