package scroll

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingScroller struct {
	targets []float64
	err     error
}

func (s *recordingScroller) ScrollTo(_ context.Context, y float64) error {
	s.targets = append(s.targets, y)
	return s.err
}

func TestNavigateToContactClosesMenu(t *testing.T) {
	layout := pageLayout()
	scroller := &recordingScroller{}
	menu := &Menu{}
	menu.Toggle()
	require.True(t, menu.Open())

	nav := NewNavigator(layout, scroller, menu, DefaultOffset)
	handled, err := nav.Navigate(context.Background(), "#kontakt")
	require.NoError(t, err)
	assert.True(t, handled)

	require.Len(t, scroller.targets, 1)
	assert.Equal(t, layout["kontakt"].Top-DefaultOffset, scroller.targets[0])
	assert.False(t, menu.Open())
}

func TestNavigateWithClosedMenu(t *testing.T) {
	scroller := &recordingScroller{}
	menu := &Menu{}

	nav := NewNavigator(pageLayout(), scroller, menu, 50)
	handled, err := nav.Navigate(context.Background(), "/#sluzby")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []float64{1950}, scroller.targets)
	assert.False(t, menu.Open())
}

func TestNavigateClampsAtTop(t *testing.T) {
	scroller := &recordingScroller{}
	nav := NewNavigator(pageLayout(), scroller, nil, DefaultOffset)

	handled, err := nav.Navigate(context.Background(), "#uvod")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []float64{0}, scroller.targets)
}

func TestNavigateIgnoresNonAnchors(t *testing.T) {
	scroller := &recordingScroller{}
	menu := &Menu{}
	menu.Toggle()
	nav := NewNavigator(pageLayout(), scroller, menu, DefaultOffset)

	for _, href := range []string{"/projekty/eshop", "https://example.com/#kontakt", "#", ""} {
		handled, err := nav.Navigate(context.Background(), href)
		require.NoError(t, err)
		assert.False(t, handled, href)
	}
	assert.Empty(t, scroller.targets)
	assert.True(t, menu.Open(), "menu stays open when the click is not intercepted")
}

func TestNavigateMissingTarget(t *testing.T) {
	scroller := &recordingScroller{}
	nav := NewNavigator(fakeLayout{}, scroller, nil, DefaultOffset)

	handled, err := nav.Navigate(context.Background(), "#kontakt")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, scroller.targets)
}

func TestNavigateScrollError(t *testing.T) {
	scroller := &recordingScroller{err: errors.New("page closed")}
	menu := &Menu{}
	menu.Toggle()
	nav := NewNavigator(pageLayout(), scroller, menu, DefaultOffset)

	handled, err := nav.Navigate(context.Background(), "#kontakt")
	require.Error(t, err)
	assert.True(t, handled)
	assert.False(t, menu.Open())
}

func TestNavigateWithoutLayout(t *testing.T) {
	scroller := &recordingScroller{}
	menu := &Menu{}
	menu.Toggle()
	nav := NewNavigator(nil, scroller, menu, DefaultOffset)

	_, ok := nav.Target("#kontakt")
	assert.False(t, ok)

	handled, err := nav.Navigate(context.Background(), "#kontakt")
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, scroller.targets)
	assert.True(t, menu.Open())
}

func TestSectionHref(t *testing.T) {
	assert.Equal(t, "#o-mne", DefaultSections[1].Href())
}
