package domain

// HealthStatus is the outcome of one doctor check.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

// Symbol is the one-character marker printed in front of a check.
func (s HealthStatus) Symbol() string {
	switch s {
	case HealthOK:
		return "✓"
	case HealthWarn:
		return "!"
	default:
		return "✗"
	}
}

// HealthCheck is one line of the doctor report: the subsystem checked and
// what was found.
type HealthCheck struct {
	Name    string
	Status  HealthStatus
	Details string
}

// HealthReport is the full doctor run in check order.
type HealthReport struct {
	Checks []HealthCheck
}

// Count returns how many checks ended with status.
func (r HealthReport) Count(status HealthStatus) int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == status {
			n++
		}
	}
	return n
}

// Healthy reports whether no check failed. Warnings do not count.
func (r HealthReport) Healthy() bool {
	return r.Count(HealthError) == 0
}
