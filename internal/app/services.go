package app

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/config"
	"github.com/llehouerou/cadence/internal/engine"
	"github.com/llehouerou/cadence/internal/logger"
	"github.com/llehouerou/cadence/internal/mpris"
	"github.com/llehouerou/cadence/internal/notify"
	"github.com/llehouerou/cadence/internal/nowplaying"
	"github.com/llehouerou/cadence/internal/playback"
	"github.com/llehouerou/cadence/internal/player"
	"github.com/llehouerou/cadence/internal/remote"
	"github.com/llehouerou/cadence/internal/state"
)

// Services is the wired player stack.
type Services struct {
	Queue      *playback.QueuedPlayer
	Remote     *remote.Controller
	NowPlaying *nowplaying.Publisher

	log       zerolog.Logger
	store     state.Interface
	persister *Persister
	mpris     *mpris.Adapter
}

// NewServices builds the queued player on factory. store may be nil, in
// which case nothing is persisted.
func NewServices(cfg *config.Config, factory engine.Factory, store state.Interface, log zerolog.Logger) (*Services, error) {
	p, err := player.New(factory,
		player.WithLogger(logger.Component(log, "player")),
		player.WithVolume(cfg.Player.Volume),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create player")
	}
	qp := playback.New(p,
		playback.WithLogger(logger.Component(log, "queue")),
		playback.WithAutoAdvance(cfg.Player.AutoAdvance),
	)

	ctl := remote.NewController(qp,
		remote.WithLogger(logger.Component(log, "remote")),
		remote.WithSkipInterval(cfg.Remote.SkipInterval()),
	)
	if len(cfg.Remote.Commands) > 0 {
		kinds := make([]remote.Kind, 0, len(cfg.Remote.Commands))
		for _, name := range cfg.Remote.Commands {
			k, err := remote.ParseKind(name)
			if err != nil {
				qp.Close()
				return nil, err
			}
			kinds = append(kinds, k)
		}
		ctl.Enable(kinds...)
	}

	s := &Services{
		Queue:      qp,
		Remote:     ctl,
		NowPlaying: nowplaying.Attach(qp, nil, nowplaying.WithLogger(logger.Component(log, "nowplaying"))),
		log:        log,
		store:      store,
	}
	return s, nil
}

// AttachMPRIS exposes the player on the session bus.
func (s *Services) AttachMPRIS() error {
	a, err := mpris.New(s.Remote, s.Queue, mpris.WithLogger(logger.Component(s.log, "mpris")))
	if err != nil {
		return errors.Wrap(err, "start mpris")
	}
	s.mpris = a
	s.NowPlaying.AddSink(a)
	return nil
}

// AttachNotifier announces track changes through n.
func (s *Services) AttachNotifier(n notify.Notifier) {
	s.NowPlaying.AddSink(notify.NewTrackNotifier(n, logger.Component(s.log, "notify")))
}

// LoadQueue fills the queue from args, or restores the saved queue when
// args is empty. It returns a line describing what was loaded.
func (s *Services) LoadQueue(args []string) (string, error) {
	if len(args) > 0 {
		items, err := ItemsFromArgs(args)
		if err != nil {
			return "", err
		}
		if len(items) == 0 {
			return "", errors.New("nothing to play")
		}
		if err := s.Queue.AddItems(items, true); err != nil {
			return "", err
		}
		s.startPersister()
		return fmt.Sprintf("Queued %d %s", len(items), plural(len(items), "item")), nil
	}

	banner := "Queue is empty"
	if s.store != nil {
		saved, err := s.store.GetQueue()
		if err != nil {
			s.log.Warn().Err(err).Msg("read saved queue")
		} else if saved != nil {
			banner = s.restore(*saved)
		}
	}
	s.startPersister()
	return banner, nil
}

func (s *Services) restore(saved state.QueueState) string {
	items, index := saved.AudioItems()
	if len(items) == 0 {
		return "Queue is empty"
	}
	s.Queue.SetVolume(saved.Volume)
	if err := s.Queue.Restore(items, index, saved.Position, false); err != nil {
		s.log.Warn().Err(err).Msg("restore queue")
		return "Could not restore the saved queue"
	}
	return fmt.Sprintf("Restored %d %s from %s",
		len(items), plural(len(items), "item"), humanize.Time(saved.SavedAt))
}

func (s *Services) startPersister() {
	if s.store != nil {
		s.persister = NewPersister(s.Queue, s.store, logger.Component(s.log, "persist"))
	}
}

// Close saves the queue and releases everything.
func (s *Services) Close() error {
	if s.persister != nil {
		s.persister.Flush()
	}
	s.NowPlaying.Close()
	var errs error
	if s.mpris != nil {
		errs = errors.CombineErrors(errs, s.mpris.Close())
	}
	errs = errors.CombineErrors(errs, s.Queue.Close())
	if s.store != nil {
		errs = errors.CombineErrors(errs, s.store.Close())
	}
	return errs
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
