package pool

import "os"

// StrategyFromEnv reads CANDIDATE_POOL_STRATEGY, defaulting to
// DefaultStrategy when unset or unrecognized.
func StrategyFromEnv() Strategy {
	switch Strategy(os.Getenv("CANDIDATE_POOL_STRATEGY")) {
	case StrategyRankingOnly:
		return StrategyRankingOnly
	case StrategyHybridBM25:
		return StrategyHybridBM25
	case StrategyHybridRandom:
		return StrategyHybridRandom
	case StrategyMultiSource:
		return StrategyMultiSource
	default:
		return DefaultStrategy
	}
}
