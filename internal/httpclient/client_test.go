package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/everstacklabs/modelprices/internal/cache"
)

func TestGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != UserAgent {
			t.Errorf("User-Agent = %q, want %q", ua, UserAgent)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(WithRateLimit(100))
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("body = %q", resp.Body)
	}
	if resp.FromCache {
		t.Error("response should not come from cache")
	}
}

func TestGetNon2xxIsStatusError(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusMultipleChoices} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			w.Write([]byte("nope"))
		}))

		_, err := New().Get(context.Background(), srv.URL)
		srv.Close()

		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("status %d: expected *StatusError, got %v", code, err)
		}
		if se.StatusCode != code {
			t.Errorf("StatusCode = %d, want %d", se.StatusCode, code)
		}
	}
}

func TestGetConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := New(WithTimeout(2*time.Second)).Get(context.Background(), url); err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestGetTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	if _, err := New(WithTimeout(50*time.Millisecond)).Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestGetServesFreshCacheWithoutRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(`{"n":1}`))
	}))
	defer srv.Close()

	fc, err := cache.New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	c := New(WithCache(fc))

	if _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatal(err)
	}
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.FromCache {
		t.Error("second response should come from cache")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

func TestGetRevalidatesStaleCache(t *testing.T) {
	var conditional atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(`{"n":1}`))
	}))
	defer srv.Close()

	fc, err := cache.New(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	c := New(WithCache(fc))

	if _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if conditional.Load() != 1 {
		t.Error("expected one conditional request")
	}
	if !resp.FromCache || string(resp.Body) != `{"n":1}` {
		t.Errorf("expected cached body after 304, got %q (fromCache=%v)", resp.Body, resp.FromCache)
	}
}

func TestGetDoesNotCacheFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	fc, err := cache.New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(WithCache(fc)).Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error")
	}
	if entry, _ := fc.Lookup(srv.URL); entry != nil {
		t.Error("failed response must not be cached")
	}
}
