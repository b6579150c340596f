package threadpaint

import "time"

// HealthStatus is the health state of the painter or one of its parts.
type HealthStatus string

const (
	// HealthOK means the component works normally.
	HealthOK HealthStatus = "ok"
	// HealthDegraded means the component works with recent errors or is idle.
	HealthDegraded HealthStatus = "degraded"
	// HealthUnhealthy means the component is not working.
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck is the result of Painter.Health.
type HealthCheck struct {
	Status     HealthStatus
	Timestamp  time.Time
	Uptime     time.Duration
	Components map[string]ComponentHealth
	Message    string
}

// ComponentHealth is the health of one part of the painter.
type ComponentHealth struct {
	Status      HealthStatus
	Message     string
	LastUpdated time.Time
}

// IsHealthy returns true if the overall status is HealthOK.
func (h HealthCheck) IsHealthy() bool { return h.Status == HealthOK }

// IsDegraded returns true if the overall status is HealthDegraded.
func (h HealthCheck) IsDegraded() bool { return h.Status == HealthDegraded }

// IsUnhealthy returns true if the overall status is HealthUnhealthy.
func (h HealthCheck) IsUnhealthy() bool { return h.Status == HealthUnhealthy }

// worst returns the more severe of a and b.
func worst(a, b HealthStatus) HealthStatus {
	rank := func(s HealthStatus) int {
		switch s {
		case HealthUnhealthy:
			return 2
		case HealthDegraded:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
