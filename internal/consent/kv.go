package consent

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// KV is the persisted key-value store backing a Store.
type KV interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
}

// MemoryKV is a KV held in memory.
type MemoryKV struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: map[string]string{}}
}

func (kv *MemoryKV) Get(key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *MemoryKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = value
	return nil
}

// Delete clears key, as a visitor clearing site data would.
func (kv *MemoryKV) Delete(key string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.m, key)
}

// CookieMaxAge is how long the consent cookie lives.
const CookieMaxAge = 365 * 24 * time.Hour

// CookieKV stores values in browser cookies named after the key. Values
// are base64url encoded since JSON is not a valid cookie value.
type CookieKV struct {
	r      *http.Request
	w      http.ResponseWriter
	secure bool
}

// NewCookieKV binds a KV to one request/response pair.
func NewCookieKV(w http.ResponseWriter, r *http.Request) *CookieKV {
	return &CookieKV{r: r, w: w, secure: r.TLS != nil}
}

func (kv *CookieKV) Get(key string) (string, bool, error) {
	c, err := kv.r.Cookie(key)
	if errors.Is(err, http.ErrNoCookie) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return "", false, fmt.Errorf("decoding cookie %s: %w", key, err)
	}
	return string(raw), true, nil
}

func (kv *CookieKV) Set(key, value string) error {
	http.SetCookie(kv.w, &http.Cookie{
		Name:     key,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(value)),
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   kv.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
