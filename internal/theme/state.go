package theme

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/caredesk/caredesk/internal/logging"
)

// Store persists the mode preference across restarts.
//
// Load reports false when nothing usable is stored, including when the
// underlying read fails. Save errors are logged by State and never surfaced.
type Store interface {
	Load(ctx context.Context) (Mode, bool)
	Save(ctx context.Context, mode Mode) error
}

// Snapshot is a consistent view of the theme state.
type Snapshot struct {
	Mode       Mode
	Appearance Appearance
	Effective  Effective
	Palette    Palette
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *State) {
		s.logger = logger
	}
}

// WithDefaultMode sets the mode used until (or unless) a saved mode loads.
func WithDefaultMode(mode Mode) Option {
	return func(s *State) {
		if mode.Valid() {
			s.mode = mode
		}
	}
}

// State owns the application's theme. One instance is created at the
// composition root; screens hold a reference and subscribe to changes.
type State struct {
	store  Store
	logger zerolog.Logger

	mu         sync.RWMutex
	mode       Mode
	appearance Appearance
	explicit   bool // SetMode was called; a late Load must not override it
	subs       map[int]func(Snapshot)
	nextSubID  int

	started bool
	pending sync.WaitGroup
}

// NewState creates the theme state in system mode. A nil store disables
// persistence.
func NewState(store Store, appearance Appearance, opts ...Option) *State {
	if store == nil {
		store = nopStore{}
	}
	if appearance == "" {
		appearance = AppearanceUnknown
	}
	s := &State{
		store:      store,
		logger:     logging.Component("theme"),
		mode:       ModeSystem,
		appearance: appearance,
		subs:       make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the persisted mode in the background. Until it resolves the
// state keeps its default mode. Calling Start more than once is a no-op.
func (s *State) Start(ctx context.Context) {
	s.mustBeInScope()

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		mode, ok := s.store.Load(ctx)
		if !ok {
			s.logger.Debug().Msg("no saved theme mode")
			return
		}
		if !mode.Valid() {
			s.logger.Warn().Str("mode", string(mode)).Msg("ignoring invalid saved theme mode")
			return
		}

		s.mu.Lock()
		if s.explicit {
			s.mu.Unlock()
			s.logger.Debug().Str("mode", string(mode)).Msg("saved theme mode superseded by explicit selection")
			return
		}
		s.mode = mode
		snap, subs := s.snapshotLocked(), s.subscribersLocked()
		s.mu.Unlock()

		s.logger.Debug().Str("mode", string(mode)).Msg("loaded saved theme mode")
		notify(subs, snap)
	}()
}

// SetMode switches the mode. Subscribers are notified before SetMode
// returns; the new value is then persisted in the background. Concurrent
// saves are not ordered, so the last write to complete is what survives a
// restart.
func (s *State) SetMode(mode Mode) error {
	s.mustBeInScope()
	if !mode.Valid() {
		return ErrInvalidMode
	}

	s.mu.Lock()
	s.mode = mode
	s.explicit = true
	snap, subs := s.snapshotLocked(), s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.store.Save(context.Background(), mode); err != nil {
			s.logger.Warn().Err(err).Str("mode", string(mode)).Msg("failed to persist theme mode")
		}
	}()
	return nil
}

// SetAppearance records a platform appearance change. Subscribers are
// notified synchronously, without debounce, when the value changes.
func (s *State) SetAppearance(appearance Appearance) {
	s.mustBeInScope()
	if appearance == "" {
		appearance = AppearanceUnknown
	}

	s.mu.Lock()
	if s.appearance == appearance {
		s.mu.Unlock()
		return
	}
	s.appearance = appearance
	snap, subs := s.snapshotLocked(), s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// Subscribe registers fn to receive every change. The returned function
// removes the subscription.
func (s *State) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mustBeInScope()
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Snapshot returns the current mode, appearance, effective theme and palette.
func (s *State) Snapshot() Snapshot {
	s.mustBeInScope()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Mode returns the selected mode.
func (s *State) Mode() Mode {
	return s.Snapshot().Mode
}

// Effective returns the resolved theme.
func (s *State) Effective() Effective {
	return s.Snapshot().Effective
}

// Palette returns the palette for the resolved theme.
func (s *State) Palette() Palette {
	return s.Snapshot().Palette
}

// Wait blocks until the initial load and every in-flight save finish.
func (s *State) Wait() {
	s.mustBeInScope()
	s.pending.Wait()
}

func (s *State) snapshotLocked() Snapshot {
	effective := Resolve(s.mode, s.appearance)
	return Snapshot{
		Mode:       s.mode,
		Appearance: s.appearance,
		Effective:  effective,
		Palette:    PaletteFor(effective),
	}
}

func (s *State) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, id := range slices.Sorted(maps.Keys(s.subs)) {
		subs = append(subs, s.subs[id])
	}
	return subs
}

func (s *State) mustBeInScope() {
	if s == nil {
		panic(ErrNoState)
	}
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

type nopStore struct{}

func (nopStore) Load(context.Context) (Mode, bool) { return "", false }
func (nopStore) Save(context.Context, Mode) error { return nil }
