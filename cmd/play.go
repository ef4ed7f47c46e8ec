package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/globeplay/internal/contract"
	"github.com/huangsam/globeplay/internal/outwriter"
	"github.com/spf13/cobra"
)

// playCmd steps the globe through frames in the terminal.
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play frames by year or day until the max date or Ctrl-C.",
	Long: `Step the date cursor from --date towards --max-date, one --unit at a time.

Each frame is fetched and decoded before it is committed. Frames that fail to load
are still committed so playback never stalls on a missing frame.

Ctrl-C pauses playback; the frame already in flight may still be committed.

Examples:
  # Play yearly frames of a high-emission scenario
  globeplay play --scenario ssp585 --date 2020-01-01 --max-date 2030-01-01

  # Play daily frames for one month
  globeplay play --unit day --date 2030-06-01 --max-date 2030-06-30`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runPlay(); err != nil {
			contract.LogFatal("Cannot run playback", err)
		}
	},
}

func runPlay() error {
	s, err := newSession(os.Stdout, printCommit)
	if err != nil {
		return err
	}
	defer func() { _ = s.ctrl.Close() }()

	fmt.Printf("🌍 globeplay: %s %s %s from %s to %s by %s\n",
		cfg.Selection.Variable, cfg.Selection.Model, cfg.Selection.Scenario,
		cfg.Date.Format("2006-01-02"), cfg.MaxDate.Format("2006-01-02"), cfg.Unit)

	if err := s.ctrl.Toggle(cfg.Unit); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		s.ctrl.Wait(cfg.Unit)
		close(done)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-done:
	case <-sigs:
		fmt.Println("⏸  Pausing...")
		if err := s.ctrl.Pause(cfg.Unit); err != nil {
			return err
		}
		<-done
	}

	return outwriter.NewOutWriter().WriteSession(s.ctrl.Snapshot(), cfg)
}
