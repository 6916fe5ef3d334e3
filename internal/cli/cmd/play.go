package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/matjam/vidpaper/internal/cli/cmd/utils"
	"github.com/matjam/vidpaper/internal/config"
	"github.com/matjam/vidpaper/internal/ipc"
	"github.com/matjam/vidpaper/internal/player"
	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <source>",
		Short: "Play a video as the desktop background",
		Long: `Plays a file path or URI until it ends (without --loop) or the process is
stopped. "blank", "none" and "blank://" draw a black background.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if unmute, _ := cmd.Flags().GetBool("unmute"); unmute {
				viper.Set(config.KeyMute, false)
			}
			if noSocket, _ := cmd.Flags().GetBool("no-control-socket"); noSocket {
				viper.Set(config.KeyControlSocket, false)
			}

			settings, err := config.Resolve(viper.GetViper(), os.Getenv)
			if err != nil {
				return err
			}

			if background, _ := cmd.Flags().GetBool("background"); background || daemon.WasReborn() {
				dctx := &daemon.Context{WorkDir: "/", Umask: 027, Args: os.Args}
				child, err := dctx.Reborn()
				if err != nil {
					return fmt.Errorf("failed to start in background: %w", err)
				}
				if child != nil {
					log.Infof("vidpaper started in background with PID %d", child.Pid)
					return nil
				}
				defer dctx.Release()

				if err := utils.SetupRotatingLogger(utils.StateDir()); err != nil {
					log.Warnf("failed to configure log rotation: %v", err)
				}
			}

			return play(cmd.Context(), args[0], settings)
		},
	}

	flags := cmd.Flags()
	flags.Bool("loop", true, "Restart the video when it ends")
	flags.String("output", "", "Output connector to draw on (default every output)")
	flags.Bool("mute", true, "Silence the audio track")
	flags.Bool("unmute", false, "Play the audio track")
	flags.String("metrics-file", "", "Write frame-rate telemetry to this file")
	flags.BoolP("background", "b", false, "Run as a daemon")
	flags.Bool("no-control-socket", false, "Do not serve the control socket")

	viper.BindPFlag(config.KeyLoop, flags.Lookup("loop"))
	viper.BindPFlag(config.KeyOutput, flags.Lookup("output"))
	viper.BindPFlag(config.KeyMute, flags.Lookup("mute"))
	viper.BindPFlag(config.KeyMetricsFile, flags.Lookup("metrics-file"))

	return cmd
}

func play(parent context.Context, source string, settings config.Settings) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Infof("play started in PID: %d", os.Getpid())

	session, err := player.New(player.Options{
		Input:       source,
		Loop:        settings.Loop,
		Output:      settings.Output,
		Mute:        settings.Mute,
		MetricsFile: utils.CanonicalPath(settings.MetricsFile),
		Backend:     settings.Backend,
		Scale:       settings.ScaleMode,
		Dmabuf:      settings.Dmabuf,
	})
	if err != nil {
		return err
	}

	if settings.ControlSocket {
		path := ipc.SocketPath(settings.Output)
		if running(path) {
			return errors.New("vidpaper is already playing on " + path)
		}

		srv, err := ipc.Listen(path, session)
		if err != nil {
			log.Warnf("control socket disabled: %v", err)
		} else {
			go srv.Serve()
			defer srv.Close()
		}
	}

	if err := session.Play(ctx); err != nil {
		return err
	}
	log.Infof("vidpaper exited")
	return nil
}

func running(path string) bool {
	client := ipc.NewClient(path)
	defer client.Close()
	_, err := client.Status()
	return err == nil
}
