// Package theme holds the visitor's colour scheme preference for the
// whole document.
package theme

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jvesely/portfolio/internal/redirect"
)

// Theme is a colour scheme preference.
type Theme string

const (
	Light  Theme = "light"
	Dark   Theme = "dark"
	System Theme = "system"
)

// Default is used until the visitor picks a theme.
const Default = System

// CookieName is the cookie the preference persists in.
const CookieName = "theme"

const cookieMaxAge = 365 * 24 * time.Hour

// Parse validates a theme name.
func Parse(s string) (Theme, bool) {
	switch t := Theme(s); t {
	case Light, Dark, System:
		return t, true
	}
	return "", false
}

// Toggled returns the theme the header toggle switches to: dark goes to
// light, anything else goes to dark.
func (t Theme) Toggled() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Persister stores a theme choice.
type Persister interface {
	Persist(Theme) error
}

// Provider carries the current theme and its setter.
type Provider struct {
	current Theme
	store   Persister
}

// NewProvider returns a provider initialised to t.
func NewProvider(t Theme, store Persister) *Provider {
	if _, ok := Parse(string(t)); !ok {
		t = Default
	}
	return &Provider{current: t, store: store}
}

// Theme returns the current theme.
func (p *Provider) Theme() Theme { return p.current }

// Set changes and persists the theme.
func (p *Provider) Set(t Theme) error {
	if _, ok := Parse(string(t)); !ok {
		return errors.New("theme: unknown theme " + string(t))
	}
	p.current = t
	if p.store == nil {
		return nil
	}
	return p.store.Persist(t)
}

// Toggle switches between dark and light.
func (p *Provider) Toggle() (Theme, error) {
	next := p.current.Toggled()
	return next, p.Set(next)
}

// HTMLClass returns the class applied to the root element; empty for
// system so the CSS media query decides.
func (p *Provider) HTMLClass() string {
	if p.current == System {
		return ""
	}
	return string(p.current)
}

type cookiePersister struct {
	w      http.ResponseWriter
	secure bool
}

func (c cookiePersister) Persist(t Theme) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     CookieName,
		Value:    string(t),
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

type ctxKey struct{}

// WithProvider returns a context carrying p.
func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the provider of the request, or a non-persisting
// provider with the default theme.
func FromContext(ctx context.Context) *Provider {
	if p, ok := ctx.Value(ctxKey{}).(*Provider); ok {
		return p
	}
	return NewProvider(Default, nil)
}

// Middleware initialises the provider from the theme cookie once per
// request and injects it into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := Default
		if c, err := r.Cookie(CookieName); err == nil {
			if parsed, ok := Parse(c.Value); ok {
				t = parsed
			}
		}
		p := NewProvider(t, cookiePersister{w: w, secure: r.TLS != nil})
		next.ServeHTTP(w, r.WithContext(WithProvider(r.Context(), p)))
	})
}

// RegisterRoutes mounts the theme setter endpoints. They expect Middleware
// to run first.
func RegisterRoutes(r chi.Router, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r.Post("/theme", func(w http.ResponseWriter, r *http.Request) {
		t, ok := Parse(r.PostFormValue("theme"))
		if !ok {
			http.Error(w, "unknown theme", http.StatusBadRequest)
			return
		}
		if err := FromContext(r.Context()).Set(t); err != nil {
			logger.Warn("theme not persisted", zap.Error(err))
		}
		redirect.Back(w, r)
	})
	r.Post("/theme/toggle", func(w http.ResponseWriter, r *http.Request) {
		if _, err := FromContext(r.Context()).Toggle(); err != nil {
			logger.Warn("theme not persisted", zap.Error(err))
		}
		redirect.Back(w, r)
	})
}

