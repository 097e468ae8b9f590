package questsearch

import (
	"context"

	healthuc "github.com/kailas-cloud/questsearch/internal/usecase/health"
)

// HealthStatus represents the aggregated store health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}

// Ready reports whether searches can be served.
func (h HealthStatus) Ready() bool { return h.Status == string(healthuc.Healthy) }

// Health checks the store and the collection index.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
