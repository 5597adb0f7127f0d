package domain

import "time"

// Metric is a single named, timestamped numeric observation. Metrics are
// immutable once recorded.
type Metric struct {
	Name      string
	Value     float64
	Unit      string
	Timestamp time.Time
	Tags      map[string]string
}
