package theme

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type memPersister struct{ saved []Theme }

func (m *memPersister) Persist(t Theme) error {
	m.saved = append(m.saved, t)
	return nil
}

func TestParse(t *testing.T) {
	for _, name := range []string{"light", "dark", "system"} {
		if _, ok := Parse(name); !ok {
			t.Errorf("Parse(%q) rejected", name)
		}
	}
	if _, ok := Parse("sepia"); ok {
		t.Error("Parse accepted unknown theme")
	}
}

func TestToggle(t *testing.T) {
	tests := []struct {
		from, want Theme
	}{
		{Dark, Light},
		{Light, Dark},
		{System, Dark},
	}
	for _, tt := range tests {
		store := &memPersister{}
		p := NewProvider(tt.from, store)
		got, err := p.Toggle()
		if err != nil {
			t.Fatalf("Toggle: %v", err)
		}
		if got != tt.want || p.Theme() != tt.want {
			t.Errorf("Toggle from %s = %s, want %s", tt.from, got, tt.want)
		}
		if len(store.saved) != 1 || store.saved[0] != tt.want {
			t.Errorf("expected %s persisted once, got %v", tt.want, store.saved)
		}
	}
}

func TestProviderRejectsUnknown(t *testing.T) {
	p := NewProvider("neon", nil)
	if p.Theme() != Default {
		t.Errorf("expected default theme, got %s", p.Theme())
	}
	if err := p.Set("neon"); err == nil {
		t.Error("expected error for unknown theme")
	}
}

func TestHTMLClass(t *testing.T) {
	if c := NewProvider(System, nil).HTMLClass(); c != "" {
		t.Errorf("system class = %q", c)
	}
	if c := NewProvider(Dark, nil).HTMLClass(); c != "dark" {
		t.Errorf("dark class = %q", c)
	}
}

func TestFromContextDefault(t *testing.T) {
	if got := FromContext(context.Background()).Theme(); got != Default {
		t.Errorf("got %s, want %s", got, Default)
	}
}

func TestMiddlewareReadsCookie(t *testing.T) {
	var seen Theme
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context()).Theme()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "dark"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != Dark {
		t.Errorf("expected dark, got %s", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "bogus"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != Default {
		t.Errorf("expected default for bad cookie, got %s", seen)
	}
}

func TestRoutes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	RegisterRoutes(r, nil)

	req := httptest.NewRequest(http.MethodPost, "/theme/toggle", strings.NewReader(url.Values{"return": {"/projekty/x"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "dark"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/projekty/x" {
		t.Errorf("unexpected redirect %q", loc)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "light" {
		t.Errorf("expected light cookie, got %v", cookies)
	}

	req = httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader("theme=purple"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader("theme=system&return=//evil"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("unexpected redirect %q", loc)
	}
}
