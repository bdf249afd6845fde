package navaudit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"github.com/jvesely/portfolio/internal/scroll"
)

// BrowserConfig configures the headless browser.
type BrowserConfig struct {
	// RemoteURL is the DevTools websocket URL of a running Chrome. Empty
	// launches a local one.
	RemoteURL string
	// Bin overrides the Chrome binary the launcher would pick.
	Bin      string
	Headless bool
	Width    int
	Height   int
	Logger   *zap.Logger
}

func (c *BrowserConfig) defaults() {
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 800
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Browser is a connected Chrome instance.
type Browser struct {
	cfg     BrowserConfig
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// Launch starts (or connects to) Chrome.
func Launch(ctx context.Context, cfg BrowserConfig) (*Browser, error) {
	cfg.defaults()

	wsURL := cfg.RemoteURL
	var l *launcher.Launcher
	if wsURL == "" {
		l = launcher.New().Headless(cfg.Headless)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("navaudit: launch chrome: %w", err)
		}
		wsURL = u
		cfg.Logger.Debug("launched local chrome", zap.String("url", wsURL))
	} else {
		cfg.Logger.Debug("connecting to remote chrome", zap.String("url", wsURL))
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("navaudit: connect: %w", err)
	}
	return &Browser{cfg: cfg, browser: b, lnch: l}, nil
}

// Close shuts the browser down.
func (b *Browser) Close() error {
	err := b.browser.Close()
	if b.lnch != nil {
		b.lnch.Kill()
		b.lnch.Cleanup()
	}
	return err
}

// Open navigates a new tab to pageURL and waits for it to load.
func (b *Browser) Open(ctx context.Context, pageURL string) (*Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("navaudit: create tab: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             b.cfg.Width,
		Height:            b.cfg.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		page.Close()
		return nil, fmt.Errorf("navaudit: viewport: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("navaudit: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		b.cfg.Logger.Warn("wait load", zap.String("url", pageURL), zap.Error(err))
	}

	return &Page{page: page, ctx: ctx, logger: b.cfg.Logger, url: pageURL}, nil
}

// Page adapts a browser tab to the scroll interfaces.
type Page struct {
	page   *rod.Page
	ctx    context.Context
	logger *zap.Logger
	url    string

	mu       sync.Mutex
	bindings int
}

var (
	_ scroll.Layout      = (*Page)(nil)
	_ scroll.Scroller    = (*Page)(nil)
	_ scroll.EventSource = (*Page)(nil)
	_ Target             = (*Page)(nil)
)

// URL returns the address the page was opened at.
func (p *Page) URL() string { return p.url }

// Close closes the tab.
func (p *Page) Close() error { return p.page.Close() }

func (p *Page) eval(ctx context.Context, js string, args ...interface{}) (gson.JSON, error) {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return gson.JSON{}, err
	}
	return res.Value, nil
}

const measureJS = `(id) => {
	const el = document.getElementById(id);
	if (!el) return null;
	const r = el.getBoundingClientRect();
	if (r.width === 0 && r.height === 0) return null;
	return { top: r.top + window.scrollY, height: r.height };
}`

// Measure reads the live document-relative extent of the element.
func (p *Page) Measure(id string) (scroll.Rect, bool) {
	v, err := p.eval(p.ctx, measureJS, id)
	if err != nil {
		p.logger.Debug("measure", zap.String("id", id), zap.Error(err))
		return scroll.Rect{}, false
	}
	return decodeRect(v)
}

func decodeRect(v gson.JSON) (scroll.Rect, bool) {
	if v.Nil() {
		return scroll.Rect{}, false
	}
	return scroll.Rect{Top: v.Get("top").Num(), Height: v.Get("height").Num()}, true
}

// settleJS resolves once scrollY has stopped changing for a few frames.
const settleJS = `() => new Promise((resolve) => {
	let last = -1, still = 0, frames = 0;
	const tick = () => {
		const y = window.scrollY;
		still = y === last ? still + 1 : 0;
		last = y;
		if (still >= 3 || ++frames > 240) { resolve(y); return; }
		requestAnimationFrame(tick);
	};
	requestAnimationFrame(tick);
})`

// ScrollTo smooth-scrolls to y and waits for the animation to finish.
func (p *Page) ScrollTo(ctx context.Context, y float64) error {
	if _, err := p.eval(ctx, `(y) => window.scrollTo({ top: y, behavior: 'smooth' })`, y); err != nil {
		return fmt.Errorf("scroll to %.0f: %w", y, err)
	}
	_, err := p.eval(ctx, settleJS)
	return err
}

// ScrollY returns the settled scroll position.
func (p *Page) ScrollY(ctx context.Context) (float64, error) {
	v, err := p.eval(ctx, settleJS)
	if err != nil {
		return 0, err
	}
	return v.Num(), nil
}

// MaxScroll returns the largest reachable scroll position.
func (p *Page) MaxScroll(ctx context.Context) (float64, error) {
	v, err := p.eval(ctx, `() => Math.max(0, document.documentElement.scrollHeight - window.innerHeight)`)
	if err != nil {
		return 0, err
	}
	return v.Num(), nil
}

// State reads the configuration and highlighted section of the in-page
// script.
func (p *Page) State(ctx context.Context) (PageState, error) {
	v, err := p.eval(ctx, `() => {
		const nav = window.portfolioNav;
		if (!nav) return null;
		return { sections: nav.sections, offset: nav.offset, epsilon: nav.epsilon, active: nav.active() };
	}`)
	if err != nil {
		return PageState{}, err
	}
	if v.Nil() {
		return PageState{}, ErrNoHighlighter
	}
	st := PageState{
		Offset:  v.Get("offset").Num(),
		Epsilon: v.Get("epsilon").Num(),
		Active:  v.Get("active").Str(),
	}
	for _, s := range v.Get("sections").Arr() {
		st.Sections = append(st.Sections, s.Str())
	}
	return st, nil
}

// ClickAnchor clicks the navigation link for href and waits for the
// resulting scroll to settle.
func (p *Page) ClickAnchor(ctx context.Context, href string) error {
	v, err := p.eval(ctx, `(href) => {
		const a = Array.from(document.querySelectorAll('[data-scroll-nav] a[href]'))
			.find((el) => el.getAttribute('href') === href);
		if (!a) return false;
		a.click();
		return true;
	}`, href)
	if err != nil {
		return err
	}
	if !v.Bool() {
		return fmt.Errorf("%w: %s", ErrNoLink, href)
	}
	_, err = p.eval(ctx, settleJS)
	return err
}

// Subscribe exposes a Go binding to the page and calls handler with
// window.scrollY on every scroll event.
func (p *Page) Subscribe(handler func(scrollY float64)) (unsubscribe func()) {
	p.mu.Lock()
	p.bindings++
	name := fmt.Sprintf("__portfolioAuditScroll%d", p.bindings)
	p.mu.Unlock()

	stop, err := p.page.Expose(name, func(v gson.JSON) (interface{}, error) {
		handler(v.Num())
		return nil, nil
	})
	if err != nil {
		p.logger.Error("expose scroll binding", zap.Error(err))
		return func() {}
	}

	const attach = `(name) => {
		const fn = () => window[name](window.scrollY);
		window[name + 'Listener'] = fn;
		window.addEventListener('scroll', fn, { passive: true });
	}`
	if _, err := p.eval(p.ctx, attach, name); err != nil {
		p.logger.Error("attach scroll listener", zap.Error(err))
	}

	return func() {
		const detach = `(name) => {
			const fn = window[name + 'Listener'];
			if (fn) window.removeEventListener('scroll', fn);
			delete window[name + 'Listener'];
		}`
		// The page context may already be gone during shutdown.
		if _, err := p.eval(context.Background(), detach, name); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Debug("detach scroll listener", zap.Error(err))
		}
		if err := stop(); err != nil {
			p.logger.Debug("remove scroll binding", zap.Error(err))
		}
	}
}
