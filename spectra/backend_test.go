package spectra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// backend is a fake Spectra API recording what it receives.
type backend struct {
	*httptest.Server
	mux *http.ServeMux

	mu      sync.Mutex
	calls   map[string]int    // by path
	auth    map[string]string // last Authorization header by path
	refresh func(w http.ResponseWriter, rt string)
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		mux:   http.NewServeMux(),
		calls: make(map[string]int),
		auth:  make(map[string]string),
	}
	b.refresh = func(w http.ResponseWriter, rt string) {
		writeJSON(w, http.StatusOK, TokenPair{AccessToken: "fresh", RefreshToken: "r2", TokenType: "bearer"})
	}
	b.mux.HandleFunc("POST /api/v1/users/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		b.refresh(w, body.RefreshToken)
	})
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.URL.Path]++
		b.auth[r.URL.Path] = r.Header.Get("Authorization")
		b.mu.Unlock()
		b.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *backend) lastAuth(path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.auth[path]
}

// protect serves path with payload to requests bearing token, 401 otherwise.
func (b *backend) protect(path, token string, payload any) {
	b.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		writeJSON(w, http.StatusOK, payload)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// newTestClient returns a client on b with the given tokens already stored.
func newTestClient(t *testing.T, b *backend, token, refresh string, opts ...Option) (*Client, *MemoryStore) {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore()
	if token != "" {
		store.Set(ctx, KeySessionToken, token)
	}
	if refresh != "" {
		store.Set(ctx, KeyRefreshToken, refresh)
	}
	c, err := New(ctx, b.URL+"/", append([]Option{WithTokenStore(store)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c, store
}

func stored(t *testing.T, s TokenStore, key string) string {
	t.Helper()
	v, err := s.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("store.Get(%q) error: %v", key, err)
	}
	return v
}

func decodeBody(r *http.Request, v any) {
	json.NewDecoder(r.Body).Decode(v)
}
