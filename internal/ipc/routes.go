package ipc

import (
	"github.com/labstack/echo/v4"
	"github.com/matjam/vidpaper/internal/metrics"
)

func RegisterRoutes(e *echo.Echo, session Session, socket string) {
	exporter := metrics.NewExporter(session.Snapshot)

	e.GET("/status", statusHandler(session, socket))
	e.GET("/metrics", echo.WrapHandler(exporter.Handler()))
	e.POST("/stop", stopHandler(session))
}
