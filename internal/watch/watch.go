package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/keshon/fsnap/internal/fs"
	"github.com/keshon/fsnap/internal/snapshot"
)

// Config configures a directory watch.
type Config struct {
	Root     string
	Debounce time.Duration // quiet period before a rescan; 0 means 250ms
	Buffer   int           // event channel capacity; 0 means 16
}

// Event carries the snapshot after a rescan and the changeset since
// the previous one.
type Event struct {
	Snapshot *snapshot.Snapshot
	Changes  *snapshot.Changeset
}

// Watcher keeps a snapshot of a tree current by debouncing fsnotify
// events into full rescans. Rescanning instead of patching per event
// keeps the snapshot honest across the platform quirks of file
// notification; the previous snapshot makes each rescan cheap through
// the fingerprint-reuse fast path.
type Watcher struct {
	cfg    Config
	fsys   fs.FS
	fsw    *fsnotify.Watcher
	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.RWMutex
	current *snapshot.Snapshot
}

func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 250 * time.Millisecond
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 16
	}

	fsys := fs.NewOSFS()
	initial, err := snapshot.Scan(fsys, cfg.Root, snapshot.ScanOptions{})
	if err != nil {
		return nil, fmt.Errorf("initial scan %q: %w", cfg.Root, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		cfg:     cfg,
		fsys:    fsys,
		fsw:     fsw,
		events:  make(chan Event, cfg.Buffer),
		done:    make(chan struct{}),
		current: initial,
	}
	if err := w.watchTree(); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start launches the debounce loop. Stop must be called to release
// the underlying watches.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Events delivers one Event per debounced batch of changes. Slow
// consumers drop batches rather than block the loop; the next event
// carries the cumulative diff anyway.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Current returns the latest snapshot.
func (w *Watcher) Current() *snapshot.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) Stop() {
	close(w.done)
	w.wg.Wait()
	w.fsw.Close()
	close(w.events)
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.cfg.Debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Warning: watch %q: %v\n", w.cfg.Root, err)

		case <-fire:
			timer = nil
			fire = nil
			w.rescan()
		}
	}
}

func (w *Watcher) rescan() {
	prev := w.Current()
	snap, err := snapshot.Scan(w.fsys, w.cfg.Root, snapshot.ScanOptions{Previous: prev})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: rescan %q: %v\n", w.cfg.Root, err)
		return
	}

	cs := snapshot.Diff(prev, snap)
	if len(cs.Changes) == 0 {
		return
	}

	w.mu.Lock()
	w.current = snap
	w.mu.Unlock()

	// new directories need watches of their own; stale ones were
	// dropped by the kernel when they vanished
	if err := w.watchTree(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: watch %q: %v\n", w.cfg.Root, err)
	}

	select {
	case w.events <- Event{Snapshot: snap, Changes: cs}:
	default:
	}
}

// watchTree (re)adds the root and every directory below it. Adding an
// already-watched directory is a no-op for fsnotify.
func (w *Watcher) watchTree() error {
	if err := w.fsw.Add(w.cfg.Root); err != nil {
		return err
	}
	for p, st := range w.Current().Entries {
		if st.Kind != snapshot.Dir {
			continue
		}
		full := filepath.Join(w.cfg.Root, filepath.FromSlash(p))
		if err := w.fsw.Add(full); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: watch %q: %v\n", full, err)
		}
	}
	return nil
}
