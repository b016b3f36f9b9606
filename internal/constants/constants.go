package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	StaticDataTimeout  = 15 * time.Second
	RequestTimeout     = 30 * time.Second
	ScrapeTimeout      = 60 * time.Second
)

const (
	APIMaxRetries     = 2
	APIRetryFallback  = 1 * time.Second
	APIRetryAfterCap  = 10 * time.Second
	DefaultMatchCount = 10
	MaxMatchCount     = 20
	MatchFetchDelay   = 120 * time.Millisecond
	RecentMatchCount  = 1
)

const (
	NavigationTimeout   = 20 * time.Second
	ReadyTimeout        = 15 * time.Second
	EvaluateTimeout     = 5 * time.Second
	BuildSignalTimeout  = 15 * time.Second
	BuildSignalPoll     = 250 * time.Millisecond
	BuildSignalMinIcons = 10
	ProfileSettleDelay  = 2 * time.Second
	BuildSettleDelay    = 1 * time.Second
	ScrollSteps         = 12
	ScrollStepDelay     = 150 * time.Millisecond
	ScrollStepPixels    = 400
	EvaluateAttempts    = 3
	EvaluateBackoff     = 1500 * time.Millisecond
)

const (
	// accounts at or above this level are assumed to have played ranked
	RankedLevelThreshold = 30
	MinItemID            = 1000
	MinFallbackIconID    = 1000
)

const (
	ShutdownTimeout = 5 * time.Second
)
