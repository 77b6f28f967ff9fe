package app

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"

	"github.com/llehouerou/cadence/internal/audiosession"
	"github.com/llehouerou/cadence/internal/beepengine"
	"github.com/llehouerou/cadence/internal/config"
	"github.com/llehouerou/cadence/internal/logger"
	"github.com/llehouerou/cadence/internal/notify"
	"github.com/llehouerou/cadence/internal/state"
	"github.com/llehouerou/cadence/internal/stderr"
)

// Run loads the configuration, wires the player stack, plays args (or the
// saved queue) and blocks until the user quits.
func Run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	logFile := cfg.Log.File
	if cfg.Log.Output == "file" {
		if logFile, err = cfg.Log.LogFile(); err != nil {
			return err
		}
	}
	log, logCloser, err := logger.Init(logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
		File:   logFile,
	})
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer logCloser.Close()

	// ALSA writes to fd 2 once the device opens.
	var stderrLines <-chan string
	if cfg.Log.Output != "stderr" {
		capture, err := stderr.Start()
		if err != nil {
			log.Warn().Err(err).Msg("stderr capture unavailable")
		} else {
			defer capture.Stop()
			stderrLines = capture.Lines()
		}
	}

	session := audiosession.New(audiosession.Config{
		SampleRate:   cfg.Player.SampleRate,
		BufferMillis: cfg.Player.BufferMillis,
	}, audiosession.WithLogger(logger.Component(log, "audio")))
	defer session.Deactivate()

	var store state.Interface
	if cfg.State.Persist {
		var mgr *state.Manager
		if cfg.State.Path != "" {
			mgr, err = state.OpenPath(cfg.State.Path, state.WithLogger(logger.Component(log, "state")))
		} else {
			mgr, err = state.Open(state.WithLogger(logger.Component(log, "state")))
		}
		if err != nil {
			return errors.Wrap(err, "open state")
		}
		store = mgr
	}

	factory := beepengine.Factory(session, cfg.Player.Frequency(), logger.Component(log, "engine"))
	svc, err := NewServices(cfg, factory, store, log)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	if cfg.Remote.Enabled {
		if err := svc.AttachMPRIS(); err != nil {
			log.Warn().Err(err).Msg("remote control unavailable")
		}
	}

	if cfg.Remote.Notify {
		n, err := notify.New()
		if err != nil {
			log.Warn().Err(err).Msg("notifications unavailable")
		} else {
			svc.AttachNotifier(n)
		}
	}

	banner, err := svc.LoadQueue(args)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewModel(svc, banner, stderrLines), tea.WithAltScreen(), tea.WithOutput(os.Stdout))
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "run ui")
	}
	return nil
}
