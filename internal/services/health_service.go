package services

import (
	"context"
	"fmt"
	"time"

	"datadeck/internal/inventory"
)

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	BuildTime    string `json:"build_time,omitempty"`
	UptimeSecs   int64  `json:"uptime_seconds"`
	OpenDatasets int    `json:"open_datasets"`
}

// VersionInfo is the payload of the version endpoint.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time,omitempty"`
}

// HealthService reports liveness, readiness and build information.
type HealthService struct {
	version   string
	buildTime string
	startedAt time.Time
	store     inventory.Store
	datasets  *DatasetService
}

// NewHealthService creates a health service.
func NewHealthService(version, buildTime string, store inventory.Store, datasets *DatasetService) *HealthService {
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		startedAt: time.Now(),
		store:     store,
		datasets:  datasets,
	}
}

// Health returns the liveness snapshot.
func (s *HealthService) Health(context.Context) HealthStatus {
	open := 0
	if s.datasets != nil {
		open = s.datasets.Count()
	}
	return HealthStatus{
		Status:       "healthy",
		Version:      s.version,
		BuildTime:    s.buildTime,
		UptimeSecs:   int64(time.Since(s.startedAt).Seconds()),
		OpenDatasets: open,
	}
}

// Ready reports whether the product store answers queries.
func (s *HealthService) Ready(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("product store not configured")
	}
	if _, err := s.store.List(ctx); err != nil {
		return fmt.Errorf("product store not ready: %w", err)
	}
	return nil
}

// Version returns build information.
func (s *HealthService) Version() VersionInfo {
	return VersionInfo{Version: s.version, BuildTime: s.buildTime}
}
