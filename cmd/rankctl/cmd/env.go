package cmd

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultWorkers      = 4
	defaultTrialTimeout = 30 * time.Second
	defaultStudyTimeout = 5 * time.Minute
	defaultLLMModel     = "llama3.2:1b"
)

func envIsTrue(name string) bool {
	v := os.Getenv(name)
	return v == "1" || v == "true" || v == "TRUE"
}

// workersFromEnv reads WORKERS, the benchmark worker pool size for
// `bench pool`/`bench evaluate`, defaulting to defaultWorkers.
func workersFromEnv() int {
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultWorkers
}

func trialTimeoutFromEnv() time.Duration {
	return durationFromEnv("TRIAL_TIMEOUT", defaultTrialTimeout)
}

func studyTimeoutFromEnv() time.Duration {
	return durationFromEnv("STUDY_TIMEOUT", defaultStudyTimeout)
}

func durationFromEnv(name string, fallback time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func llmModelFromEnv() string {
	if v := os.Getenv("LLM_MODEL"); v != "" {
		return v
	}
	return defaultLLMModel
}
