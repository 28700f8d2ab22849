package resilience

import (
	"time"
)

// FromWriteConfig converts spreadsheet write settings to a RetryConfig.
// A maxAttempts of zero or less keeps attempts unlimited.
func FromWriteConfig(maxAttempts int, unit time.Duration) RetryConfig {
	cfg := WriteRetryConfig(unit)
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	return cfg
}
