// Package ipc serves the control socket of a running playback and provides
// the client used by the status and stop commands.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/matjam/vidpaper"
	"github.com/matjam/vidpaper/internal/middleware"
)

var logger = log.WithPrefix("ipc")

// SocketPath is the control socket of the instance drawing on output, or on
// every output when output is empty.
func SocketPath(output string) string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, strings.TrimSpace(output))
	if name == "" {
		name = "all"
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.sock", vidpaper.AppName, name))
}

type Server struct {
	echo *echo.Echo
	path string
}

// Listen binds the control socket at path, replacing a stale socket file.
func Listen(path string, session Session) (*Server, error) {
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listening on control socket: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Listener = listener

	e.Use(middleware.CharmLog())

	RegisterRoutes(e, session, path)

	return &Server{echo: e, path: path}, nil
}

// Serve blocks until Close.
func (s *Server) Serve() {
	logger.Debugf("control socket listening on %s", s.path)
	server := new(http.Server)
	if err := s.echo.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("socket server error: %v", err)
	}
}

func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.echo.Shutdown(ctx)
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
		err = rmErr
	}
	return err
}
