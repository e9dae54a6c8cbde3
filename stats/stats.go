package stats

// Metrics is a group of related stats that are
// presented together
type Metrics map[string]interface{}

// Collector is implemented by types that report
// statistics on their activity
type Collector interface {
	// Name uniquely identifies the collector
	Name() string

	// Stats returns the current view of the collector's
	// statistics
	Stats() Metrics
}

// IntAverage calculates the average of a slice of int64
func IntAverage(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}

	var total int64
	for _, v := range values {
		total += v
	}

	return float64(total) / float64(len(values))
}
