package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("hello"))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.Error(w, "gone", http.StatusGone)
		}
	}))
	defer srv.Close()

	data, err := Fetch(context.Background(), srv.URL+"/ok", FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Fetch() = %q, want hello", data)
	}
	if !strings.HasPrefix(gotUA, UserAgentName+"/") {
		t.Errorf("User-Agent = %q", gotUA)
	}

	if _, err := Fetch(context.Background(), srv.URL+"/missing", FetchOptions{}); err == nil {
		t.Error("expected error for non-200 status")
	}

	if _, err := Fetch(context.Background(), srv.URL+"/big", FetchOptions{MaxBytes: 10}); err == nil {
		t.Error("expected error for oversized body")
	}
}
