package worker

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Progress reports a render on one status line: frames done, the span of
// animation time they cover and where they are going.
type Progress struct {
	mu      sync.Mutex
	out     io.Writer
	now     func() time.Time
	started time.Time

	total  int
	done   int
	failed int

	fps  int
	sink string

	enabled bool
}

// Stats is a point-in-time view of a render.
type Stats struct {
	Total  int
	Done   int
	Failed int

	Wall time.Duration // since NewProgress
	Clip time.Duration // animation time of the frames rendered so far
	Full time.Duration // animation time of all frames
}

// Rendered is the number of frames that succeeded.
func (s Stats) Rendered() int { return s.Done - s.Failed }

// Speed is animation seconds rendered per wall second. Above 1 the render
// runs faster than realtime.
func (s Stats) Speed() float64 {
	if s.Wall <= 0 {
		return 0
	}
	return s.Clip.Seconds() / s.Wall.Seconds()
}

// ETA extrapolates the remaining wall time from the frames done so far.
func (s Stats) ETA() time.Duration {
	if s.Done == 0 || s.Done >= s.Total {
		return 0
	}
	return time.Duration(int64(s.Wall) * int64(s.Total-s.Done) / int64(s.Done))
}

// NewProgress tracks total frames of an animation played at fps and
// written to sink (for example "png ./frames"). Nothing is printed unless
// enabled is set.
func NewProgress(total, fps int, sink string, enabled bool) *Progress {
	return &Progress{
		out:     os.Stderr,
		now:     time.Now,
		started: time.Now(),
		total:   total,
		fps:     fps,
		sink:    sink,
		enabled: enabled,
	}
}

// Callback feeds pool completions into the tracker.
func (p *Progress) Callback() ProgressFunc {
	return func(completed, total, failed int) {
		p.mu.Lock()
		p.done, p.total, p.failed = completed, total, failed
		p.mu.Unlock()

		if p.enabled {
			fmt.Fprintf(p.out, "\r%s   ", p.Line())
		}
	}
}

// Stats returns the current counters.
func (p *Progress) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{
		Total:  p.total,
		Done:   p.done,
		Failed: p.failed,
		Wall:   p.now().Sub(p.started),
	}
	if p.fps > 0 {
		s.Clip = clipTime(s.Rendered(), p.fps)
		s.Full = clipTime(p.total, p.fps)
	}
	return s
}

// Line formats the live status line.
func (p *Progress) Line() string {
	s := p.Stats()
	pct := 0.0
	if s.Total > 0 {
		pct = 100 * float64(s.Done) / float64(s.Total)
	}

	line := fmt.Sprintf("%3.0f%% frame %d/%d", pct, s.Done, s.Total)
	if s.Failed > 0 {
		line += fmt.Sprintf(" (%d failed)", s.Failed)
	}
	line += fmt.Sprintf(" | clip %s/%s | %.2fx realtime", s.Clip.Round(10*time.Millisecond), s.Full.Round(10*time.Millisecond), s.Speed())
	if eta := s.ETA(); eta > 0 {
		line += " | eta " + eta.Round(time.Second).String()
	}
	return line + " -> " + p.sink
}

// Done ends the status line.
func (p *Progress) Done() {
	if p.enabled {
		fmt.Fprintf(p.out, "\r%s\n", p.Line())
	}
}

// Summary describes the finished render for the log.
func (p *Progress) Summary() string {
	s := p.Stats()
	return fmt.Sprintf("Rendered %s of animation (%d/%d frames, %d failed) to %s in %s, %.2fx realtime",
		s.Clip.Round(10*time.Millisecond), s.Rendered(), s.Total, s.Failed, p.sink, s.Wall.Round(100*time.Millisecond), s.Speed())
}

func clipTime(frames, fps int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(fps)
}
