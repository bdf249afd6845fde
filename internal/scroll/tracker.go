// Package scroll maps the document scroll position to the navigation
// section that should be highlighted, and performs in-page navigation.
package scroll

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DefaultOffset compensates for the sticky header height, in CSS pixels.
const DefaultOffset = 80

// Epsilon nudges the probe past a section boundary so that scrolling
// exactly to a section's top selects that section.
const Epsilon = 1

// Section is one navigation entry. ID matches the element id of the
// rendered section.
type Section struct {
	ID    string
	Label string
}

// Href returns the in-page anchor for the section.
func (s Section) Href() string { return "#" + s.ID }

// DefaultSections is the landing page navigation, in document order.
var DefaultSections = []Section{
	{ID: "uvod", Label: "Úvod"},
	{ID: "o-mne", Label: "O mně"},
	{ID: "dovednosti", Label: "Dovednosti"},
	{ID: "portfolio", Label: "Portfolio"},
	{ID: "sluzby", Label: "Služby"},
	{ID: "reference", Label: "Reference"},
	{ID: "kontakt", Label: "Kontakt"},
}

// Rect is the document-relative vertical extent of a rendered element.
type Rect struct {
	Top    float64
	Height float64
}

// Contains reports whether y falls in [Top, Top+Height).
func (r Rect) Contains(y float64) bool {
	return y >= r.Top && y < r.Top+r.Height
}

// Layout measures rendered elements. ok is false when the element is
// missing or not yet laid out.
type Layout interface {
	Measure(id string) (r Rect, ok bool)
}

// EventSource delivers scroll offsets. Subscribe returns the func that
// removes the handler.
type EventSource interface {
	Subscribe(handler func(scrollY float64)) (unsubscribe func())
}

// ErrNoSections is returned when a tracker is built without sections.
var ErrNoSections = errors.New("scroll: at least one section is required")

// Resolve returns the ID of the active section for scrollY. Every section
// is tested and the last one containing the probe wins; with no match the
// first section is returned. sections must not be empty.
func Resolve(sections []Section, layout Layout, offset, scrollY float64) string {
	active := sections[0].ID
	if layout == nil {
		return active
	}
	probe := scrollY + offset + Epsilon
	for _, s := range sections {
		r, ok := layout.Measure(s.ID)
		if !ok {
			continue
		}
		if r.Contains(probe) {
			active = s.ID
		}
	}
	return active
}

// Tracker owns the active section state.
type Tracker struct {
	sections []Section
	layout   Layout
	offset   float64
	logger   *zap.Logger

	mu     sync.RWMutex
	active string
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithOffset overrides DefaultOffset.
func WithOffset(offset float64) Option {
	return func(t *Tracker) { t.offset = offset }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker validates sections and returns a tracker whose active
// section is the first one.
func NewTracker(sections []Section, layout Layout, opts ...Option) (*Tracker, error) {
	if len(sections) == 0 {
		return nil, ErrNoSections
	}
	seen := make(map[string]bool, len(sections))
	for _, s := range sections {
		if s.ID == "" {
			return nil, fmt.Errorf("scroll: section %q has an empty id", s.Label)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("scroll: duplicate section id %q", s.ID)
		}
		seen[s.ID] = true
	}

	t := &Tracker{
		sections: append([]Section(nil), sections...),
		layout:   layout,
		offset:   DefaultOffset,
		logger:   zap.NewNop(),
		active:   sections[0].ID,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Sections returns the tracked sections in document order.
func (t *Tracker) Sections() []Section {
	return append([]Section(nil), t.sections...)
}

// Offset returns the sticky header compensation in use.
func (t *Tracker) Offset() float64 { return t.offset }

// Active returns the current active section ID.
func (t *Tracker) Active() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// Update recomputes the active section for scrollY against the live
// layout and stores it.
func (t *Tracker) Update(scrollY float64) string {
	id := Resolve(t.sections, t.layout, t.offset, scrollY)

	t.mu.Lock()
	changed := t.active != id
	t.active = id
	t.mu.Unlock()

	if changed {
		t.logger.Debug("active section changed", zap.String("section", id), zap.Float64("scroll_y", scrollY))
	}
	return id
}

// Mount subscribes the tracker to src. The returned release func
// unsubscribes and may be called any number of times.
func (t *Tracker) Mount(src EventSource) (release func()) {
	unsubscribe := src.Subscribe(func(y float64) { t.Update(y) })
	t.logger.Debug("scroll tracker mounted")

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			t.logger.Debug("scroll tracker unmounted")
		})
	}
}

// Run mounts the tracker and blocks until ctx is done. The subscription
// is released on every return path.
func (t *Tracker) Run(ctx context.Context, src EventSource) error {
	release := t.Mount(src)
	defer release()

	<-ctx.Done()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}
