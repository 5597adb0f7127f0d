package domain

import (
	"fmt"
	"math"
	"time"
)

// Severity grades alerts from informational to critical.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// Valid reports whether the severity belongs to the enumerated set.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

// Comparator selects how a rule compares an observed value to its threshold.
type Comparator string

const (
	CompareGreater        Comparator = ">"
	CompareGreaterOrEqual Comparator = ">="
	CompareLess           Comparator = "<"
	CompareLessOrEqual    Comparator = "<="
	CompareEqual          Comparator = "=="
)

// Apply evaluates the comparator against the observed value.
func (c Comparator) Apply(value, threshold float64) bool {
	switch c {
	case CompareGreater:
		return value > threshold
	case CompareGreaterOrEqual:
		return value >= threshold
	case CompareLess:
		return value < threshold
	case CompareLessOrEqual:
		return value <= threshold
	case CompareEqual:
		return value == threshold
	}
	return false
}

// Valid reports whether the comparator belongs to the enumerated set.
func (c Comparator) Valid() bool {
	switch c {
	case CompareGreater, CompareGreaterOrEqual, CompareLess, CompareLessOrEqual, CompareEqual:
		return true
	}
	return false
}

// AlertRule is a standing threshold condition over the latest value of a
// named metric. Immutable after creation.
type AlertRule struct {
	ID         string
	MetricName string
	Comparator Comparator
	Threshold  float64
	Severity   Severity
}

// Validate checks the structural constraints enforced at add time.
func (r AlertRule) Validate() error {
	if r.MetricName == "" {
		return fmt.Errorf("metric name is required")
	}
	if !r.Comparator.Valid() {
		return fmt.Errorf("comparator %q is not supported", r.Comparator)
	}
	if math.IsNaN(r.Threshold) || math.IsInf(r.Threshold, 0) {
		return fmt.Errorf("threshold must be finite")
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("severity %q is not supported", r.Severity)
	}
	return nil
}

// AlertSourceBehavior marks alerts raised by the behavior risk scorer rather
// than a threshold rule.
const AlertSourceBehavior = "behavior"

// Alert is an emitted alarm. Acknowledged moves one way, false to true.
type Alert struct {
	ID           string
	RuleID       string
	Source       string
	Severity     Severity
	Message      string
	CreatedAt    time.Time
	Acknowledged bool
}

// AlertFilter narrows an alert query. Nil fields match everything.
type AlertFilter struct {
	Severity     *Severity
	Acknowledged *bool
	Since        *time.Time
}

// Matches reports whether the alert satisfies every set filter field.
func (f AlertFilter) Matches(a Alert) bool {
	if f.Severity != nil && a.Severity != *f.Severity {
		return false
	}
	if f.Acknowledged != nil && a.Acknowledged != *f.Acknowledged {
		return false
	}
	if f.Since != nil && a.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}
