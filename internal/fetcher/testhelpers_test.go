package fetcher

import (
	"context"
	"os"
	"time"

	"github.com/sells-group/misinfo-cli/internal/resilience"
)

// writeTestFile is a helper that writes data to a file path.
func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func newTestFetcher() *HTTPFetcher {
	retry := resilience.DefaultRetryConfig()
	retry.Sleep = noSleep
	return NewHTTPFetcher(HTTPOptions{
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
		Retry:     retry,
		Rate:      1000,
		Burst:     100,
	})
}
