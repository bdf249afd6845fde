package scroll

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLayout is a fixed layout keyed by element id.
type fakeLayout map[string]Rect

func (l fakeLayout) Measure(id string) (Rect, bool) {
	r, ok := l[id]
	return r, ok
}

// pageLayout stacks DefaultSections 500px apart, 500px tall each.
func pageLayout() fakeLayout {
	l := fakeLayout{}
	for i, s := range DefaultSections {
		l[s.ID] = Rect{Top: float64(i * 500), Height: 500}
	}
	return l
}

type fakeSource struct {
	mu       sync.Mutex
	handlers map[int]func(float64)
	next     int
	unsubs   int
}

func newFakeSource() *fakeSource {
	return &fakeSource{handlers: map[int]func(float64){}}
}

func (s *fakeSource) Subscribe(h func(float64)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.handlers[id] = h
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
		s.unsubs++
	}
}

func (s *fakeSource) emit(y float64) {
	s.mu.Lock()
	hs := make([]func(float64), 0, len(s.handlers))
	for _, h := range s.handlers {
		hs = append(hs, h)
	}
	s.mu.Unlock()
	for _, h := range hs {
		h(y)
	}
}

func (s *fakeSource) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

func TestNewTrackerValidation(t *testing.T) {
	_, err := NewTracker(nil, pageLayout())
	require.ErrorIs(t, err, ErrNoSections)

	_, err = NewTracker([]Section{{ID: "a"}, {ID: "a"}}, pageLayout())
	require.Error(t, err)

	_, err = NewTracker([]Section{{Label: "nameless"}}, pageLayout())
	require.Error(t, err)
}

func TestInitialActiveIsFirstSection(t *testing.T) {
	tr, err := NewTracker(DefaultSections, pageLayout())
	require.NoError(t, err)
	assert.Equal(t, "uvod", tr.Active())
	assert.Equal(t, float64(DefaultOffset), tr.Offset())

	sections := tr.Sections()
	require.Len(t, sections, len(DefaultSections))
	sections[0].ID = "changed"
	assert.Equal(t, "uvod", tr.Sections()[0].ID)
}

func TestUpdateSelectsContainingSection(t *testing.T) {
	tr, err := NewTracker(DefaultSections, pageLayout(), WithOffset(80))
	require.NoError(t, err)

	tests := []struct {
		scrollY float64
		want    string
	}{
		{0, "uvod"},
		// probe = 418 + 80 + 1 = 499, still inside the first section.
		{418, "uvod"},
		// probe = 419 + 80 + 1 = 500, first pixel of the second section.
		{419, "o-mne"},
		{1420, "portfolio"},
		{2920, "kontakt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tr.Update(tt.scrollY), "scrollY=%v", tt.scrollY)
		assert.Equal(t, tt.want, tr.Active())
	}
}

func TestUpdateFallsBackToFirstSection(t *testing.T) {
	tr, err := NewTracker(DefaultSections, pageLayout())
	require.NoError(t, err)

	tr.Update(1000)
	require.Equal(t, "dovednosti", tr.Active())

	// Past the end of the page nothing matches.
	assert.Equal(t, "uvod", tr.Update(10_000))
}

func TestOverlappingSectionsLastMatchWins(t *testing.T) {
	sections := []Section{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	layout := fakeLayout{
		"a": {Top: 0, Height: 1000},
		"b": {Top: 200, Height: 300},
		"c": {Top: 2000, Height: 100},
	}
	tr, err := NewTracker(sections, layout, WithOffset(0))
	require.NoError(t, err)

	assert.Equal(t, "b", tr.Update(250))
	assert.Equal(t, "a", tr.Update(600))
}

func TestMissingElementsAreNonMatching(t *testing.T) {
	layout := pageLayout()
	delete(layout, "o-mne")
	tr, err := NewTracker(DefaultSections, layout, WithOffset(0))
	require.NoError(t, err)

	assert.Equal(t, "uvod", tr.Update(600))
	assert.Equal(t, "dovednosti", tr.Update(1100))
}

func TestUpdateWithoutLayout(t *testing.T) {
	tr, err := NewTracker(DefaultSections, nil)
	require.NoError(t, err)
	assert.Equal(t, "uvod", tr.Update(1234))
}

func TestUpdateIsIdempotent(t *testing.T) {
	tr, err := NewTracker(DefaultSections, pageLayout())
	require.NoError(t, err)

	for y := 0.0; y < 4000; y += 37 {
		first := tr.Update(y)
		assert.Equal(t, first, tr.Update(y), "scrollY=%v", y)
	}
}

func TestResolveMatchesTrackerForAllOffsets(t *testing.T) {
	layout := pageLayout()
	tr, err := NewTracker(DefaultSections, layout, WithOffset(64))
	require.NoError(t, err)

	for y := -100.0; y < 4000; y += 13 {
		want := DefaultSections[0].ID
		probe := y + 64 + Epsilon
		for _, s := range DefaultSections {
			if layout[s.ID].Contains(probe) {
				want = s.ID
			}
		}
		assert.Equal(t, want, tr.Update(y), "scrollY=%v", y)
	}
}

func TestMountFollowsEventsUntilReleased(t *testing.T) {
	src := newFakeSource()
	tr, err := NewTracker(DefaultSections, pageLayout())
	require.NoError(t, err)

	release := tr.Mount(src)
	require.Equal(t, 1, src.subscribers())

	src.emit(1500)
	assert.Equal(t, "portfolio", tr.Active())

	release()
	release()
	assert.Equal(t, 0, src.subscribers())
	assert.Equal(t, 1, src.unsubs)

	src.emit(0)
	assert.Equal(t, "portfolio", tr.Active(), "events after release must be ignored")
}

func TestRunReleasesOnCancel(t *testing.T) {
	src := newFakeSource()
	tr, err := NewTracker(DefaultSections, pageLayout())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx, src) }()

	require.Eventually(t, func() bool { return src.subscribers() == 1 }, time.Second, time.Millisecond)
	src.emit(2000)
	assert.Equal(t, "sluzby", tr.Active())

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, src.subscribers())
}

func TestRunReleasesOnDeadline(t *testing.T) {
	src := newFakeSource()
	tr, err := NewTracker(DefaultSections, pageLayout())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err = tr.Run(ctx, src)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, src.subscribers())
}
