package progress

import (
	"fmt"
	"sync"
	"time"
)

// Sink receives byte counts as work completes. A nil Sink is valid and
// discards updates; callers pass one tracker's Sink through an entire
// scan or apply run so there is no process-wide progress state.
type Sink func(n int64)

func (s Sink) Add(n int64) {
	if s != nil {
		s(n)
	}
}

type ProgressTracker struct {
	total     int64
	current   int64
	message   string
	mu        sync.Mutex
	startTime time.Time
	done      chan bool
}

func NewProgress(total int64, message string) *ProgressTracker {
	p := &ProgressTracker{
		total:     total,
		message:   message,
		startTime: time.Now(),
		done:      make(chan bool),
	}
	go p.render()
	return p
}

func (p *ProgressTracker) render() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	frame := 0

	for {
		select {
		case <-p.done:
			p.mu.Lock()
			elapsed := time.Since(p.startTime)
			fmt.Printf("\r✓ %s (%s, %s)          \n",
				p.message, humanBytes(p.current), elapsed.Round(time.Millisecond))
			p.mu.Unlock()
			return

		case <-ticker.C:
			p.mu.Lock()
			if p.total > 0 {
				percent := float64(p.current) / float64(p.total) * 100
				fmt.Printf("\r%s %s [%s/%s] %.0f%%  ",
					spinner[frame%len(spinner)],
					p.message,
					humanBytes(p.current),
					humanBytes(p.total),
					percent)
			} else {
				fmt.Printf("\r%s %s [%s]  ",
					spinner[frame%len(spinner)],
					p.message,
					humanBytes(p.current))
			}
			p.mu.Unlock()
			frame++
		}
	}
}

// Sink returns a callback that advances this tracker.
func (p *ProgressTracker) Sink() Sink {
	return func(n int64) { p.Add(n) }
}

func (p *ProgressTracker) Add(n int64) {
	p.mu.Lock()
	p.current += n
	p.mu.Unlock()
}

func (p *ProgressTracker) SetCurrent(n int64) {
	p.mu.Lock()
	p.current = n
	p.mu.Unlock()
}

func (p *ProgressTracker) Finish() {
	close(p.done)
	time.Sleep(1 * time.Millisecond)
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGT"[exp])
}
