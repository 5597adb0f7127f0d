package domain

import "time"

// SessionContext carries the external signals the risk scorer folds into an
// assessment. Provided by a context provider collaborator; the scorer never
// fabricates these.
type SessionContext struct {
	Location          string
	Device            string
	HistoricalPattern string
	LocationAnomaly   bool
	DeviceAnomaly     bool
}

// RiskAssessment is a scored judgment of how anomalous a session's recent
// behavior is. Score is clamped to [0,1]; contributing factors are ordered
// by the weight they added.
type RiskAssessment struct {
	SessionID           string
	Score               float64
	ContributingFactors []string
	Timestamp           time.Time
}
