package engine

import "github.com/harlowe/gaugeline/internal/config"

// Labels maps published label names to resolved frames. A label has no
// frame until its owning row commits; anchors that reference it earlier
// either abort (offset requested) or fall back to frame zero (bare
// reference).
type Labels struct {
	frames map[string]int
}

func newLabels() *Labels {
	return &Labels{frames: make(map[string]int)}
}

// Publish records a label at its committed frame. Re-publishing moves the
// label; later references see the newest frame.
func (l *Labels) Publish(name string, frame int) {
	if name == "" {
		return
	}
	l.frames[name] = frame
}

// Resolve returns the label's frame, if committed.
func (l *Labels) Resolve(name string) (int, bool) {
	frame, ok := l.frames[name]
	return frame, ok
}

// effectiveOffset applies the configured sign policy to a label offset.
//
// Scripts authored against a countdown display use "+" to mean earlier in
// real time, so the offset inverts. The sign-forward toggle overrides that:
// when set, "+" always means later regardless of display.
func effectiveOffset(offset int, cfg config.Config) int {
	if cfg.SignForward {
		return offset
	}
	if cfg.CountdownTimes {
		return -offset
	}
	return offset
}
