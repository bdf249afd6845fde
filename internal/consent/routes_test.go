package consent

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newRouter() chi.Router {
	r := chi.NewRouter()
	RegisterRoutes(r, nil)
	return r
}

func consentCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == StorageKey {
			return c
		}
	}
	return nil
}

func decodeCookie(t *testing.T, c *http.Cookie) Record {
	t.Helper()
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		t.Fatalf("decoding cookie: %v", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return rec
}

func postForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoute_Accept(t *testing.T) {
	w := postForm(newRouter(), "/consent/accept", url.Values{"return": {"/projekty/eshop"}})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/projekty/eshop" {
		t.Errorf("unexpected redirect %q", loc)
	}
	c := consentCookie(t, w.Result())
	if c == nil {
		t.Fatal("expected consent cookie")
	}
	if rec := decodeCookie(t, c); rec != (Record{Necessary: true, Analytics: true, Marketing: true}) {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestRoute_Reject(t *testing.T) {
	w := postForm(newRouter(), "/consent/reject", nil)
	c := consentCookie(t, w.Result())
	if c == nil {
		t.Fatal("expected consent cookie")
	}
	if rec := decodeCookie(t, c); rec != (Record{Necessary: true}) {
		t.Errorf("unexpected record %+v", rec)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("unexpected redirect %q", loc)
	}
}

func TestRoute_SaveCustom(t *testing.T) {
	w := postForm(newRouter(), "/consent/save", url.Values{"marketing": {"on"}})
	c := consentCookie(t, w.Result())
	if c == nil {
		t.Fatal("expected consent cookie")
	}
	if rec := decodeCookie(t, c); rec != (Record{Necessary: true, Analytics: false, Marketing: true}) {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestRoute_ResolvedVisitorIsNotRewritten(t *testing.T) {
	r := newRouter()
	first := consentCookie(t, postForm(r, "/consent/reject", nil).Result())

	w := postForm(r, "/consent/accept", nil, first)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if c := consentCookie(t, w.Result()); c != nil {
		t.Error("resolved consent must not be written again")
	}
}

func TestRoute_RejectsForeignRedirects(t *testing.T) {
	for _, target := range []string{"https://evil.example", "//evil.example", "/\\evil", "relative"} {
		w := postForm(newRouter(), "/consent/reject", url.Values{"return": {target}})
		if loc := w.Header().Get("Location"); loc != "/" {
			t.Errorf("return %q redirected to %q", target, loc)
		}
	}
}

func TestRoute_Status(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/consent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["state"] != "prompting" || body["banner"] != true {
		t.Errorf("unexpected status %v", body)
	}

	c := consentCookie(t, postForm(r, "/consent/accept", nil).Result())
	req = httptest.NewRequest(http.MethodGet, "/api/consent", nil)
	req.AddCookie(c)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resolved statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resolved); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resolved.Banner || resolved.Record == nil || !resolved.Record.Marketing {
		t.Errorf("unexpected resolved status %+v", resolved)
	}
}

func TestViewFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?cookies=settings", nil)
	v := ViewFor(httptest.NewRecorder(), req, nil)
	if !v.Banner || !v.Settings {
		t.Errorf("expected banner and settings, got %+v", v)
	}
	if v.Draft != DefaultDraft {
		t.Errorf("expected default draft, got %+v", v.Draft)
	}
	if v.Return != "/" {
		t.Errorf("unexpected return %q", v.Return)
	}

	c := consentCookie(t, postForm(newRouter(), "/consent/accept", nil).Result())
	req = httptest.NewRequest(http.MethodGet, "/?cookies=settings", nil)
	req.AddCookie(c)
	v = ViewFor(httptest.NewRecorder(), req, nil)
	if v.Banner || v.Settings {
		t.Errorf("resolved visitor must not see consent UI, got %+v", v)
	}
}
