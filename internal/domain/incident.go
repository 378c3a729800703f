package domain

import "time"

// Severity represents the impact classification of an incident.
type Severity string

// Incident severities.
const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Severities lists every accepted severity in ascending order.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

// IsValid checks if the severity is valid.
func (s Severity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// Incident represents a logged report of a problem.
type Incident struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	ReportedAt  time.Time `json:"reported_at"`
}
