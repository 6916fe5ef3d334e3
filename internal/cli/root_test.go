package cli

import (
	"testing"
)

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"play", "status", "stop", "metrics", "version", "genman"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			if err != nil {
				t.Fatal(err)
			}
			if cmd.Name() != name {
				t.Errorf("Find(%q) returned %q", name, cmd.Name())
			}
		})
	}
}

func TestPlayFlags(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"play"})
	if err != nil {
		t.Fatal(err)
	}
	for _, flag := range []string{"loop", "output", "mute", "unmute", "metrics-file", "background", "no-control-socket"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("play has no --%s flag", flag)
		}
	}
	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("play accepted a missing source")
	}
}
