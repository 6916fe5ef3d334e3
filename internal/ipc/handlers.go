package ipc

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/matjam/vidpaper"
	"github.com/spf13/viper"
)

// GET /status
func statusHandler(s Session, socket string) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := StatusResponse{
			Version:       vidpaper.VersionString(),
			SessionID:     s.SessionID(),
			PID:           os.Getpid(),
			Backend:       string(s.Backend()),
			Source:        s.Input(),
			StartedUnixMS: s.StartedAt().UnixMilli(),
			Socket:        socket,
			Config:        viper.ConfigFileUsed(),
			Snapshot:      s.Snapshot(),
		}
		if out := s.Output(); out != "" {
			resp.Output = &out
		}
		return c.JSONPretty(http.StatusOK, resp, "  ")
	}
}

// POST /stop
func stopHandler(s Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.Stop()
		return c.JSON(http.StatusOK, Response{Status: "ok", Message: "stopping"})
	}
}
