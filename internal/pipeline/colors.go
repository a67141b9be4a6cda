package pipeline

import (
	"sync"
)

// DefaultPalette is the fixed set of colors handed out to tracked people.
// Chosen for contrast against video frames and against each other.
var DefaultPalette = []string{
	"#FF6B6B", // red
	"#4ECDC4", // teal
	"#FFD93D", // yellow
	"#6BCB77", // green
	"#4D96FF", // blue
	"#FF9F45", // orange
	"#B983FF", // purple
	"#F473B9", // pink
	"#00C2A8", // sea green
	"#C34A36", // brick
	"#845EC2", // violet
	"#D5CABD", // sand
}

// DefaultTrackColor is used for tracks that carry no global id yet.
const DefaultTrackColor = "#9E9E9E"

// ColorRegistry assigns a stable color per global id from a fixed palette,
// cycling round-robin with wraparound. Instances are caller-owned; there is
// no package-level registry.
type ColorRegistry struct {
	mu       sync.Mutex
	palette  []string
	assigned map[string]string
	cursor   int
}

// NewColorRegistry builds a registry over the given palette, falling back
// to DefaultPalette when nil or empty.
func NewColorRegistry(palette []string) *ColorRegistry {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &ColorRegistry{
		palette:  palette,
		assigned: make(map[string]string),
	}
}

// ColorFor returns the color assigned to id, assigning the next round-robin
// palette entry on first sight. Two distinct live ids get distinct colors
// as long as the live-id count does not exceed the palette size; beyond
// that, collisions are possible by design.
func (r *ColorRegistry) ColorFor(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if color, ok := r.assigned[id]; ok {
		return color
	}
	color := r.palette[r.cursor%len(r.palette)]
	r.cursor++
	r.assigned[id] = color
	return color
}

// Release removes the assignment for id. A released id that reappears gets
// the next round-robin color, not its old one; color reuse after release is
// intentionally not guaranteed.
func (r *ColorRegistry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assigned, id)
}

// Clear resets all assignments and the round-robin cursor. Used when
// switching scenes.
func (r *ColorRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assigned = make(map[string]string)
	r.cursor = 0
}

// Len returns the number of live assignments.
func (r *ColorRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.assigned)
}
