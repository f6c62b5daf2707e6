package api

import (
	"time"
)

// DetectionTask represents a single service-detection job managed by the
// API service. It is narrower than the teacher's ScanTask — one target, one
// protocol — matching the engine's single-endpoint Detect contract rather
// than a multi-host port-range scan.
type DetectionTask struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Host        string     `json:"host"`
	Port        uint16     `json:"port"`
	Protocol    string     `json:"protocol"`
	Service     string     `json:"service,omitempty"`
	Banner      string     `json:"banner,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// CreateDetectionRequest is the payload for POST /detections.
type CreateDetectionRequest struct {
	Host     string `json:"host" binding:"required" example:"scanme.nmap.org"`
	Port     uint16 `json:"port" binding:"required" example:"80"`
	Protocol string `json:"protocol" binding:"required,oneof=tcp udp" example:"tcp"`
}

// ErrorResponse is the typed JSON body returned for every 4xx/5xx from the
// detection API, in place of the teacher's ad hoc gin.H maps.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DetectionAcceptedResponse is returned by a successful POST /detections.
type DetectionAcceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
