// Package metrics provides constants used across metric definitions.
package metrics

// Label value constants used for metric labels.
const (
	// LabelSuccess is the outcome label for successful operations.
	LabelSuccess = "success"
	// LabelError is the outcome label for failed operations.
	LabelError = "error"
)

// Histogram bucket configuration constants.
// These define the base values and factors for exponential bucket generation.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms (1ms to ~4s range).
	BucketStart1ms = 0.001
	// BucketStart100ms is the starting bucket for 100ms histograms (100ms to ~100s range).
	BucketStart100ms = 0.1
	// BucketStart1s is the starting bucket for 1s histograms (1s to ~17 minutes range).
	BucketStart1s = 1.0

	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2

	// BucketCount10 defines 10 exponential buckets.
	BucketCount10 = 10
	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
)

// outcome maps a success flag to its label value.
func outcome(success bool) string {
	if success {
		return LabelSuccess
	}
	return LabelError
}
