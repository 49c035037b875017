package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reel/internal/app"
	"github.com/llehouerou/reel/internal/config"
	"github.com/llehouerou/reel/internal/errmsg"
	"github.com/llehouerou/reel/internal/icons"
	"github.com/llehouerou/reel/internal/logging"
	"github.com/llehouerou/reel/internal/notify"
	"github.com/llehouerou/reel/internal/playback"
	"github.com/llehouerou/reel/internal/player"
	"github.com/llehouerou/reel/internal/stderr"
)

type PlayParams struct {
	Config string `short:"c" long:"config" optional:"true" help:"Config file to load after the default locations"`
	Source string `short:"s" long:"source" optional:"true" help:"Source to select instead of the saved one"`
}

func PlayCmd() *cobra.Command {
	return boa.CmdT[PlayParams]{
		Use:         "play",
		Short:       "Open the player",
		Long:        "Open the interactive player. Playback resumes from the saved state unless --source is given.",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *PlayParams, cmd *cobra.Command, args []string) {
			if err := runPlay(params); err != nil {
				fmt.Fprintf(os.Stderr, "reel: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

// session bundles what runPlay builds so it can be torn down in order.
type session struct {
	log   *logrus.Logger
	store playback.Store
	mgr   *playback.Manager
	ctrl  *playback.Controller
	close []func() error
}

func (s *session) shutdown() {
	if err := s.ctrl.OnPause(); err != nil {
		s.log.WithError(err).Warn("Pause on exit failed")
	}
	if err := s.mgr.Close(); err != nil {
		s.log.WithError(err).Warn("Closing playback manager failed")
	}
	for i := len(s.close) - 1; i >= 0; i-- {
		if err := s.close[i](); err != nil {
			s.log.WithError(err).Warn("Shutdown step failed")
		}
	}
}

// newSession wires config, logging, persistence and playback together.
// source, when set, replaces the restored source.
func newSession(cfg *config.Config, source string) (*session, error) {
	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		return nil, errors.New(errmsg.Format(errmsg.OpLogInit, err))
	}
	s := &session{log: logger, close: []func() error{logCloser.Close}}
	icons.Init(cfg.Icons)

	cat, err := cfg.BuildCatalog()
	if err != nil {
		s.closeAll()
		return nil, errors.New(errmsg.Format(errmsg.OpCatalogBuild, err))
	}

	if cfg.PersistState() {
		store, err := openStore(cfg.State.Path)
		if err != nil {
			logger.WithError(err).Warn("State store unavailable, playback will not be remembered")
		} else {
			s.store = store
			s.close = append(s.close, store.Close)
		}
	}

	initial := playback.RestoreState(s.store, cat, cfg.InitialState(cat))
	if source != "" {
		id, err := cat.ParseSourceID(source)
		if err != nil {
			s.closeAll()
			return nil, errors.New(errmsg.Format(errmsg.OpSourceSelect, err))
		}
		if id != initial.Source {
			initial = initial.WithSource(id)
		}
	}

	factory := player.NewFactory(player.Opener{AssetRoot: cfg.AssetRoot}, logger)
	s.mgr = playback.NewManager(cat, factory, playback.WithLogger(logger))

	var opts []playback.ControllerOption
	if s.store != nil {
		opts = append(opts, playback.WithStore(s.store))
	}
	s.ctrl = playback.NewController(s.mgr, initial, opts...)

	logger.WithFields(logrus.Fields{
		"source":   initial.Source,
		"position": initial.Position,
		"sources":  cat.Len(),
	}).Info("Player initialized")
	return s, nil
}

func (s *session) closeAll() {
	for i := len(s.close) - 1; i >= 0; i-- {
		_ = s.close[i]()
	}
}

// watchConfig forwards reloads of the layered configuration until ctx is
// done. explicit is the --config value the program was started with.
func watchConfig(ctx context.Context, explicit string, log logrus.FieldLogger) <-chan app.ConfigUpdate {
	ch := make(chan app.ConfigUpdate, 1)
	err := config.Watch(ctx, explicit, func(cfg *config.Config, err error) {
		select {
		case ch <- app.ConfigUpdate{Config: cfg, Err: err}:
		default:
			log.Debug("Config update dropped, previous one still pending")
		}
	})
	if err != nil {
		log.WithError(err).Warn("Config watch unavailable")
		return nil
	}
	return ch
}

func runPlay(params *PlayParams) error {
	cfg, err := loadConfig(params.Config)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	s, err := newSession(cfg, params.Source)
	if err != nil {
		return err
	}
	defer s.shutdown()

	if err := stderr.Start(s.log); err != nil {
		s.log.WithError(err).Warn("Stderr capture unavailable")
	}
	defer stderr.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := app.Deps{
		Controller:    s.ctrl,
		Manager:       s.mgr,
		Log:           s.log,
		ConfigUpdates: watchConfig(ctx, params.Config, s.log),
	}
	if cfg.NotifyEnabled() {
		if n, err := notify.New(); err != nil {
			s.log.WithError(err).Warn("Desktop notifications unavailable")
		} else {
			deps.Notifier = n
		}
	}
	m := app.New(deps)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
