package redirect

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestLocalPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/", "/"},
		{"/projekty/eshop?cookies=settings", "/projekty/eshop?cookies=settings"},
		{"", "/"},
		{"projekty", "/"},
		{"https://evil.example", "/"},
		{"//evil.example", "/"},
		{"/\\evil.example", "/"},
	}
	for _, tt := range tests {
		if got := LocalPath(tt.in); got != tt.want {
			t.Errorf("LocalPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBack(t *testing.T) {
	for in, want := range map[string]string{"/#kontakt": "/#kontakt", "//evil.example": "/"} {
		form := url.Values{ReturnField: {in}}
		req := httptest.NewRequest(http.MethodPost, "/theme", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		Back(w, req)

		if w.Code != http.StatusSeeOther {
			t.Fatalf("status = %d", w.Code)
		}
		if loc := w.Header().Get("Location"); loc != want {
			t.Errorf("return %q: Location = %q, want %q", in, loc, want)
		}
	}
}
