// Package navaudit drives a rendered portfolio page in a headless browser
// and checks the in-page section highlighter and anchor navigation against
// the scroll package.
package navaudit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/jvesely/portfolio/internal/scroll"
)

var (
	// ErrNoHighlighter is returned when the page does not run the section
	// highlighter script.
	ErrNoHighlighter = errors.New("navaudit: page has no section highlighter")
	// ErrNoLink is returned when a navigation link is missing.
	ErrNoLink = errors.New("navaudit: navigation link not found")
)

// PageState is what the in-page highlighter reports about itself.
type PageState struct {
	Sections []string
	Offset   float64
	Epsilon  float64
	Active   string
}

// Target is a rendered page that can be measured, scrolled and clicked.
type Target interface {
	scroll.Layout
	scroll.Scroller
	ScrollY(ctx context.Context) (float64, error)
	MaxScroll(ctx context.Context) (float64, error)
	State(ctx context.Context) (PageState, error)
	ClickAnchor(ctx context.Context, href string) error
}

// Options configures an audit.
type Options struct {
	Sections []scroll.Section
	Offset   float64
	// Step is the scroll distance between samples.
	Step float64
	// Tolerance is the allowed distance between the expected and actual
	// landing position of a navigation click.
	Tolerance float64
	Logger    *zap.Logger
}

func (o *Options) defaults() {
	if len(o.Sections) == 0 {
		o.Sections = scroll.DefaultSections
	}
	if o.Step <= 0 {
		o.Step = 120
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 2
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Mismatch is a scroll position where the page highlighted a different
// section than the tracker resolves.
type Mismatch struct {
	ScrollY float64 `json:"scroll_y"`
	Want    string  `json:"want"`
	Got     string  `json:"got"`
}

// NavCheck is the outcome of clicking one navigation link.
type NavCheck struct {
	Section string  `json:"section"`
	Href    string  `json:"href"`
	Target  float64 `json:"target"`
	Landed  float64 `json:"landed"`
	Active  string  `json:"active"`
	Problem string  `json:"problem,omitempty"`
}

// OK reports whether the click landed where expected.
func (c NavCheck) OK() bool { return c.Problem == "" }

// Report is the result of an audit.
type Report struct {
	Samples    int        `json:"samples"`
	Drift      []string   `json:"drift,omitempty"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
	Nav        []NavCheck `json:"nav"`
}

// OK reports whether the audit found no problems.
func (r *Report) OK() bool {
	if len(r.Drift) > 0 || len(r.Mismatches) > 0 {
		return false
	}
	for _, c := range r.Nav {
		if !c.OK() {
			return false
		}
	}
	return true
}

// Audit compares the page's configuration with opts, samples the whole
// scroll range and then clicks every navigation link.
func Audit(ctx context.Context, page Target, opts Options) (*Report, error) {
	opts.defaults()
	log := opts.Logger
	report := &Report{}

	state, err := page.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading page state: %w", err)
	}
	report.Drift = drift(state, opts)

	maxY, err := page.MaxScroll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading scroll height: %w", err)
	}

	for _, y := range samples(maxY, opts.Step) {
		if err := page.ScrollTo(ctx, y); err != nil {
			return nil, err
		}
		actual, err := page.ScrollY(ctx)
		if err != nil {
			return nil, err
		}
		st, err := page.State(ctx)
		if err != nil {
			return nil, err
		}
		report.Samples++

		want := scroll.Resolve(opts.Sections, page, opts.Offset, actual)
		if st.Active != want {
			log.Debug("highlight mismatch", zap.Float64("scroll_y", actual), zap.String("want", want), zap.String("got", st.Active))
			report.Mismatches = append(report.Mismatches, Mismatch{ScrollY: actual, Want: want, Got: st.Active})
		}
	}

	nav := scroll.NewNavigator(page, page, nil, opts.Offset)
	for _, s := range opts.Sections {
		check, err := checkLink(ctx, page, nav, s, maxY, opts)
		if err != nil {
			return nil, err
		}
		if !check.OK() {
			log.Debug("navigation problem", zap.String("section", s.ID), zap.String("problem", check.Problem))
		}
		report.Nav = append(report.Nav, check)
	}
	return report, nil
}

func checkLink(ctx context.Context, page Target, nav *scroll.Navigator, s scroll.Section, maxY float64, opts Options) (NavCheck, error) {
	check := NavCheck{Section: s.ID, Href: s.Href()}

	target, ok := nav.Target(check.Href)
	if !ok {
		check.Problem = "section is not rendered"
		return check, nil
	}
	// The browser cannot scroll past the end of the document.
	check.Target = math.Min(target, maxY)

	if err := page.ScrollTo(ctx, 0); err != nil {
		return check, err
	}
	if err := page.ClickAnchor(ctx, check.Href); err != nil {
		if errors.Is(err, ErrNoLink) {
			check.Problem = "no navigation link"
			return check, nil
		}
		return check, err
	}

	landed, err := page.ScrollY(ctx)
	if err != nil {
		return check, err
	}
	st, err := page.State(ctx)
	if err != nil {
		return check, err
	}
	check.Landed, check.Active = landed, st.Active

	switch {
	case math.Abs(landed-check.Target) > opts.Tolerance:
		check.Problem = fmt.Sprintf("landed at %.0f, expected %.0f", landed, check.Target)
	case st.Active != scroll.Resolve(opts.Sections, page, opts.Offset, landed):
		check.Problem = fmt.Sprintf("highlighted %q after navigation", st.Active)
	}
	return check, nil
}

func drift(st PageState, opts Options) []string {
	var out []string
	ids := make([]string, len(opts.Sections))
	for i, s := range opts.Sections {
		ids[i] = s.ID
	}
	if !slices.Equal(ids, st.Sections) {
		out = append(out, fmt.Sprintf("sections: page %v, expected %v", st.Sections, ids))
	}
	if st.Offset != opts.Offset {
		out = append(out, fmt.Sprintf("offset: page %g, expected %g", st.Offset, opts.Offset))
	}
	if st.Epsilon != scroll.Epsilon {
		out = append(out, fmt.Sprintf("epsilon: page %g, expected %g", st.Epsilon, float64(scroll.Epsilon)))
	}
	return out
}

// samples returns 0, step, 2*step, ... and always ends at maxY.
func samples(maxY, step float64) []float64 {
	var ys []float64
	for y := 0.0; y < maxY; y += step {
		ys = append(ys, y)
	}
	return append(ys, maxY)
}

// Follow mounts a tracker on src and calls onChange each time the active
// section changes, until ctx is done.
func Follow(ctx context.Context, src scroll.EventSource, layout scroll.Layout, opts Options, onChange func(id string, scrollY float64)) error {
	opts.defaults()
	tracker, err := scroll.NewTracker(opts.Sections, layout, scroll.WithOffset(opts.Offset), scroll.WithLogger(opts.Logger))
	if err != nil {
		return err
	}

	var mu sync.Mutex
	last := tracker.Active()
	onChange(last, 0)

	notify := subscribeFunc(func(handler func(float64)) func() {
		return src.Subscribe(func(y float64) {
			handler(y)
			mu.Lock()
			defer mu.Unlock()
			if id := tracker.Active(); id != last {
				last = id
				onChange(id, y)
			}
		})
	})
	return tracker.Run(ctx, notify)
}

type subscribeFunc func(handler func(float64)) func()

func (f subscribeFunc) Subscribe(handler func(float64)) func() { return f(handler) }
