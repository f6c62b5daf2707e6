package api

import (
	"fmt"
	"log/slog"
	"time"

	influxdb_client "github.com/influxdata/influxdb1-client/v2"
)

const metricsWriteTimeout = 5 * time.Second

// MetricsSink exports detection latency and outcome as InfluxDB line-protocol
// points. It is optional: a nil sink silently no-ops, so the worker loop
// doesn't need a feature flag to skip it.
type MetricsSink struct {
	client influxdb_client.Client
	db     string
	logger *slog.Logger
}

// NewMetricsSink dials an InfluxDB HTTP endpoint. addr is empty to disable
// metrics export entirely.
func NewMetricsSink(addr, db string, logger *slog.Logger) (*MetricsSink, error) {
	if addr == "" {
		return nil, nil
	}

	c, err := influxdb_client.NewHTTPClient(influxdb_client.HTTPConfig{
		Addr:    addr,
		Timeout: metricsWriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("api: failed to create influxdb client: %w", err)
	}

	return &MetricsSink{client: c, db: db, logger: logger}, nil
}

// Close releases the underlying HTTP client.
func (m *MetricsSink) Close() error {
	if m == nil {
		return nil
	}
	return m.client.Close()
}

// RecordDetection writes one point describing a completed detection task.
func (m *MetricsSink) RecordDetection(task *DetectionTask, latency time.Duration) {
	if m == nil {
		return
	}

	tags := map[string]string{
		"protocol": task.Protocol,
		"status":   task.Status,
	}
	if task.Service != "" {
		tags["service"] = task.Service
	}

	fields := map[string]interface{}{
		"latency_ms": float64(latency) / float64(time.Millisecond),
		"matched":    task.Service != "",
	}

	pt, err := influxdb_client.NewPoint("detection", tags, fields, time.Now())
	if err != nil {
		m.logger.Error("metrics: failed to build point", "error", err)
		return
	}

	bp, err := influxdb_client.NewBatchPoints(influxdb_client.BatchPointsConfig{
		Database:  m.db,
		Precision: "ms",
	})
	if err != nil {
		m.logger.Error("metrics: failed to build batch", "error", err)
		return
	}
	bp.AddPoint(pt)

	if err := m.client.Write(bp); err != nil {
		m.logger.Error("metrics: write failed", "error", err)
	}
}
