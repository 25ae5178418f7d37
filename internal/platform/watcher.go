package platform

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/caredesk/caredesk/internal/logging"
	"github.com/caredesk/caredesk/internal/theme"
)

// DefaultPollInterval is used when the watcher is given no interval.
const DefaultPollInterval = 5 * time.Second

// Sink receives appearance changes; *theme.State implements it.
type Sink interface {
	SetAppearance(theme.Appearance)
}

// Watcher polls the platform appearance and forwards changes.
type Watcher struct {
	detect   DetectFunc
	interval time.Duration
	sink     Sink
	logger   zerolog.Logger
}

// NewWatcher creates a watcher. A nil detect uses Poll.
func NewWatcher(sink Sink, detect DetectFunc, interval time.Duration) *Watcher {
	if detect == nil {
		detect = Poll
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{
		detect:   detect,
		interval: interval,
		sink:     sink,
		logger:   logging.Component("platform"),
	}
}

// Run polls until ctx is cancelled. Unknown readings are ignored so a
// transient detection failure does not flip the theme.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := theme.AppearanceUnknown
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := w.detect()
			if current == theme.AppearanceUnknown || current == last {
				continue
			}
			w.logger.Debug().Str("from", string(last)).Str("to", string(current)).Msg("platform appearance changed")
			last = current
			w.sink.SetAppearance(current)
		}
	}
}
