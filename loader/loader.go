// Package loader drives the one-shot catalog load behind the catalog view.
//
// A Loader is always in exactly one of three phases: loading, loaded or
// failed. A failure is reported as soon as the source returns, so callers
// never see a loading phase that cannot end.
package loader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-equipment-catalog/catalog"
	"github.com/aluiziolira/go-equipment-catalog/feed"
	"github.com/aluiziolira/go-equipment-catalog/models"
)

// Phase is the lifecycle phase of a Loader.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the loader state.
type Snapshot struct {
	Phase    Phase
	Catalog  *models.Catalog // set when loaded
	Reason   string          // error label when failed
	Err      error
	LoadedAt time.Time
	Attempts int
}

// Loader loads a catalog from a Source and tracks the outcome.
type Loader struct {
	src catalog.Source
	now func() time.Time

	startOnce sync.Once

	mu      sync.Mutex
	state   Snapshot
	running bool
	changed chan struct{}
}

// New returns a loader in the loading phase. Nothing is fetched until Start.
func New(src catalog.Source) *Loader {
	return &Loader{
		src:     src,
		now:     time.Now,
		state:   Snapshot{Phase: PhaseLoading},
		changed: make(chan struct{}),
	}
}

// Start issues the initial load in the background. Later calls do nothing.
func (l *Loader) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		l.mu.Lock()
		l.running = true
		l.mu.Unlock()
		go l.load(ctx, false)
	})
}

// Retry restarts loading after a failure. It reports false in any other phase.
func (l *Loader) Retry(ctx context.Context) bool {
	l.mu.Lock()
	if l.state.Phase != PhaseFailed || l.running {
		l.mu.Unlock()
		return false
	}
	l.running = true
	l.setLocked(Snapshot{Phase: PhaseLoading, Attempts: l.state.Attempts})
	l.mu.Unlock()

	go l.load(ctx, false)
	return true
}

// Refresh reloads a loaded catalog in place. A failed refresh keeps the
// current data. It reports whether a refresh was started.
func (l *Loader) Refresh(ctx context.Context) bool {
	l.mu.Lock()
	if l.state.Phase != PhaseLoaded || l.running {
		l.mu.Unlock()
		return false
	}
	l.running = true
	l.mu.Unlock()

	go l.load(ctx, true)
	return true
}

// Snapshot returns the current state.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Wait blocks until the loader leaves the loading phase or ctx is done, and
// returns the latest state either way.
func (l *Loader) Wait(ctx context.Context) Snapshot {
	for {
		l.mu.Lock()
		state := l.state
		changed := l.changed
		l.mu.Unlock()

		if state.Phase != PhaseLoading {
			return state
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return l.Snapshot()
		}
	}
}

func (l *Loader) load(ctx context.Context, refresh bool) {
	loaded, err := l.src.Catalog(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = false
	attempts := l.state.Attempts + 1

	if err == nil && loaded == nil {
		err = feed.ErrMalformed{Err: errNilCatalog}
	}

	if err != nil {
		reason := feed.ErrorLabel(err)
		if refresh {
			slog.Warn("catalog refresh failed, keeping current data",
				slog.String("reason", reason),
				slog.Any("error", err),
			)
			l.state.Attempts = attempts
			return
		}
		slog.Error("catalog load failed",
			slog.String("reason", reason),
			slog.Any("error", err),
		)
		l.setLocked(Snapshot{Phase: PhaseFailed, Reason: reason, Err: err, Attempts: attempts})
		return
	}

	slog.Info("catalog loaded",
		slog.Int("massagers", len(loaded.Massagers)),
		slog.Int("injectors", len(loaded.Injectors)),
		slog.Bool("refresh", refresh),
	)
	l.setLocked(Snapshot{Phase: PhaseLoaded, Catalog: loaded, LoadedAt: l.now(), Attempts: attempts})
}

// setLocked swaps the state and wakes every Wait caller.
func (l *Loader) setLocked(s Snapshot) {
	l.state = s
	close(l.changed)
	l.changed = make(chan struct{})
}
