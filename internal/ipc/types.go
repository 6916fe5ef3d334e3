package ipc

import (
	"time"

	"github.com/matjam/vidpaper/internal/metrics"
	"github.com/matjam/vidpaper/internal/types"
)

// Session is the running playback the control socket reports on.
type Session interface {
	SessionID() string
	StartedAt() time.Time
	Backend() types.Backend
	Input() string
	Output() string
	Snapshot() *metrics.Snapshot
	Stop()
}

type StatusResponse struct {
	Version       string            `json:"version"`
	SessionID     string            `json:"session_id"`
	PID           int               `json:"pid"`
	Backend       string            `json:"backend"`
	Source        string            `json:"source"`
	Output        *string           `json:"output"`
	StartedUnixMS int64             `json:"started_unix_ms"`
	Socket        string            `json:"socket"`
	Config        string            `json:"config"`
	Snapshot      *metrics.Snapshot `json:"snapshot"`
}

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
