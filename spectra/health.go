package spectra

import (
	"context"
	"net/http"

	"github.com/etnz/aurora"
)

// Health returns the backend liveness report. It needs no session.
func (c *Client) Health(ctx context.Context) (*aurora.HealthCheck, error) {
	var h aurora.HealthCheck
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: PathHealth, Anonymous: true}, &h)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// DetailedHealth returns the status of every backend dependency.
func (c *Client) DetailedHealth(ctx context.Context) (*aurora.DetailedHealthCheck, error) {
	var h aurora.DetailedHealthCheck
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: PathHealthDetailed, Anonymous: true}, &h)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
