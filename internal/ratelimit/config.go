package ratelimit

import (
	"os"
	"strconv"
	"time"
)

// LoadConfig loads rate limiting configuration from environment variables.
// Scoring is far more expensive per call than a turn, so its defaults are
// much tighter.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled: true,
		Classes: map[OpClass]ClassConfig{
			OpInterviewTurn: {
				Limit:  getEnvInt("RATE_LIMIT_TURN_LIMIT", 120),
				Window: getEnvDuration("RATE_LIMIT_TURN_WINDOW", time.Minute),
				Burst:  getEnvInt("RATE_LIMIT_TURN_BURST", 20),
			},
			OpScoring: {
				Limit:  getEnvInt("RATE_LIMIT_SCORING_LIMIT", 30),
				Window: getEnvDuration("RATE_LIMIT_SCORING_WINDOW", time.Hour),
				Burst:  getEnvInt("RATE_LIMIT_SCORING_BURST", 5),
			},
			OpResumeParse: {
				Limit:  getEnvInt("RATE_LIMIT_RESUME_LIMIT", 60),
				Window: getEnvDuration("RATE_LIMIT_RESUME_WINDOW", time.Hour),
				Burst:  getEnvInt("RATE_LIMIT_RESUME_BURST", 10),
			},
			OpTranscriptIngest: {
				Limit:  getEnvInt("RATE_LIMIT_INGEST_LIMIT", 600),
				Window: getEnvDuration("RATE_LIMIT_INGEST_WINDOW", time.Minute),
				Burst:  getEnvInt("RATE_LIMIT_INGEST_BURST", 100),
			},
		},
	}
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
