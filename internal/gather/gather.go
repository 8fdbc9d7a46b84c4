// Package gather collects daily price history from the KIS open API and
// persists it in the store's CSV format plus a Parquet archive.
package gather

import "context"

// Gatherer is the interface for all data gathering processes.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run executes one gathering pass. It respects ctx cancellation.
	Run(ctx context.Context) error
}
