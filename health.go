package aurora

import "github.com/etnz/aurora/date"

// HealthCheck is the backend liveness report.
type HealthCheck struct {
	Status          string         `json:"status"`
	Service         string         `json:"service"`
	Timestamp       date.Timestamp `json:"timestamp"`
	Version         string         `json:"version"`
	Environment     string         `json:"environment"`
	Database        string         `json:"database"`
	DatabaseURLType string         `json:"database_url_type"`
}

// CheckStatus is the status of one dependency in a detailed health check.
type CheckStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// DetailedHealthCheck reports the status of each backend dependency.
type DetailedHealthCheck struct {
	Status    string                 `json:"status"`
	Timestamp date.Timestamp         `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// Healthy reports whether the backend declares itself healthy.
func (h HealthCheck) Healthy() bool { return h.Status == "healthy" || h.Status == "ok" }
