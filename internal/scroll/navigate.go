package scroll

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Scroller animates the document to a vertical position.
type Scroller interface {
	ScrollTo(ctx context.Context, y float64) error
}

// Menu is the mobile navigation menu state.
type Menu struct {
	mu   sync.Mutex
	open bool
}

// Open reports whether the menu is shown.
func (m *Menu) Open() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Toggle flips the menu and returns the new state.
func (m *Menu) Toggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = !m.open
	return m.open
}

// Close hides the menu.
func (m *Menu) Close() {
	m.mu.Lock()
	m.open = false
	m.mu.Unlock()
}

// Navigator intercepts clicks on in-page anchors and replaces the default
// jump with an animated scroll that leaves room for the sticky header.
type Navigator struct {
	layout   Layout
	scroller Scroller
	menu     *Menu
	offset   float64
}

// NewNavigator returns a Navigator. menu may be nil when there is no
// mobile menu to close.
func NewNavigator(layout Layout, scroller Scroller, menu *Menu, offset float64) *Navigator {
	return &Navigator{layout: layout, scroller: scroller, menu: menu, offset: offset}
}

// Target returns the scroll position for an in-page href. ok is false when
// href is not an anchor or its element is missing (or there is no layout).
func (n *Navigator) Target(href string) (y float64, ok bool) {
	id, isAnchor := anchorID(href)
	if !isAnchor || n.layout == nil {
		return 0, false
	}
	r, found := n.layout.Measure(id)
	if !found {
		return 0, false
	}
	return max(0, r.Top-n.offset), true
}

// Navigate handles a click on href. handled is false when the default
// browser navigation should proceed. An intercepted click always closes
// the menu, even when scrolling fails.
func (n *Navigator) Navigate(ctx context.Context, href string) (handled bool, err error) {
	y, ok := n.Target(href)
	if !ok {
		return false, nil
	}
	if n.menu != nil {
		defer n.menu.Close()
	}
	if err := n.scroller.ScrollTo(ctx, y); err != nil {
		return true, fmt.Errorf("scrolling to %s: %w", href, err)
	}
	return true, nil
}

// anchorID extracts the fragment of an in-page link ("#kontakt" or
// "/#kontakt").
func anchorID(href string) (string, bool) {
	rest, found := strings.CutPrefix(href, "#")
	if !found {
		rest, found = strings.CutPrefix(href, "/#")
	}
	if !found || rest == "" {
		return "", false
	}
	return rest, true
}
