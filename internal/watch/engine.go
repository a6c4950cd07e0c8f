package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

type State int

const (
	StateIdle State = iota
	StateWatching
	StateRebuilding
)

const defaultDebounce = 250 * time.Millisecond

// RebuildFunc executes one rebuild. A nil sources slice means a full
// rebuild across every tracked source.
type RebuildFunc func(ctx context.Context, sources []string) error

// Engine subscribes to filesystem change events for a session, classifies
// and debounces them, and executes rebuilds through a single-flight queue:
// at most one rebuild in flight, at most one pending with coalesced scope.
// A failing rebuild is logged and the engine returns to watching; only
// setup failures are fatal.
type Engine struct {
	session  *Session
	rebuild  RebuildFunc
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	state   State
	pending *scope
	cancel  context.CancelFunc
	wake    chan struct{}
	wg      sync.WaitGroup
}

func NewEngine(session *Session, rebuild RebuildFunc, logger *slog.Logger, debounce time.Duration) *Engine {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Engine{
		session:  session,
		rebuild:  rebuild,
		logger:   logger,
		debounce: debounce,
		wake:     make(chan struct{}, 1),
	}
}

// Start subscribes to every watched directory and launches the ingest and
// rebuild loops. The provided context controls their lifetime.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.cancel != nil {
		e.mu.Unlock()
		return fmt.Errorf("engine already started")
	}
	ctx, e.cancel = context.WithCancel(ctx)
	e.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	for _, dir := range e.session.Dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	e.setState(StateWatching)
	e.logger.Info("watching",
		"dirs", len(e.session.Dirs),
		"sources", len(e.session.Sources),
		"config", e.session.ConfigPath,
	)

	e.wg.Add(2)
	go e.ingest(ctx, watcher)
	go e.run(ctx)

	return nil
}

// Stop cancels the session and waits for both loops to drain. An in-flight
// rebuild is not interrupted mid-composition; it observes the canceled
// context at its next collaborator call.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Unlock()

	e.wg.Wait()
	e.setState(StateIdle)
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// ingest consumes raw watcher events, drops irrelevant ones, and collapses
// each burst into a single scope on a trailing debounce window. Event
// delivery never blocks on a running rebuild.
func (e *Engine) ingest(ctx context.Context, watcher *fsnotify.Watcher) {
	defer e.wg.Done()
	defer watcher.Close()

	var burst *scope
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			kind := e.session.Classify(event.Name)
			if kind == Irrelevant {
				continue
			}
			if burst == nil {
				burst = newScope()
			}
			burst.add(kind, event.Name)

			if timer == nil {
				timer = time.NewTimer(e.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(e.debounce)
			}

		case <-fire:
			e.enqueue(burst)
			burst, timer, fire = nil, nil, nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Warn("watch backend error", "err", err)
		}
	}
}

// enqueue merges a classified scope into the pending slot and wakes the
// rebuild loop. Merging rather than queuing keeps overlapping triggers
// from ever producing concurrent rebuilds over the same artifact paths.
func (e *Engine) enqueue(sc *scope) {
	e.mu.Lock()
	if e.pending == nil {
		e.pending = sc
	} else {
		e.pending.merge(sc)
	}
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.wake:
		}

		for {
			e.mu.Lock()
			sc := e.pending
			e.pending = nil
			e.mu.Unlock()
			if sc == nil {
				break
			}

			e.execute(ctx, sc)

			if ctx.Err() != nil {
				return
			}
		}
	}
}

func (e *Engine) execute(ctx context.Context, sc *scope) {
	e.setState(StateRebuilding)
	defer e.setState(StateWatching)

	trigger := uuid.New().String()
	sources := sc.sourceList()
	e.logger.Info("rebuilding", "trigger", trigger, "full", sc.full, "sources", len(sources))

	start := time.Now()
	if err := e.rebuild(ctx, sources); err != nil {
		if ctx.Err() == nil {
			e.logger.Error("rebuild failed", "trigger", trigger, "err", err)
		}
		return
	}
	e.logger.Info("rebuild complete", "trigger", trigger, "elapsed", time.Since(start).Round(time.Millisecond))
}
