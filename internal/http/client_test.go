package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestGetJSON(t *testing.T) {
	var gotLang, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"name":"sunrise","count":2}`))
	}))
	defer server.Close()

	var payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	client := NewClient()
	err := client.GetJSON(context.Background(), server.URL, map[string]string{
		"Accept-Language": "ja-JP,en;q=0.9",
	}, &payload)
	if err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}

	if payload.Name != "sunrise" || payload.Count != 2 {
		t.Errorf("decoded payload = %+v", payload)
	}
	if gotLang != "ja-JP,en;q=0.9" {
		t.Errorf("Accept-Language = %q, want %q", gotLang, "ja-JP,en;q=0.9")
	}
	if gotUA == "" {
		t.Error("expected a User-Agent header")
	}
}

func TestGetJSONNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var payload struct{}
	err := NewClient().GetJSON(context.Background(), server.URL, nil, &payload)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestDownloadFile(t *testing.T) {
	content := make([]byte, 200*1024)
	for i := range content {
		content[i] = byte(i % 251)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.Write(content)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "image.jpg")
	var finalWritten, finalTotal int64
	err := NewClient().DownloadFile(context.Background(), server.URL, dest, func(written, total int64) {
		finalWritten, finalTotal = written, total
	})
	if err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}
	if len(got) != len(content) {
		t.Errorf("downloaded %d bytes, want %d", len(got), len(content))
	}
	if finalWritten != int64(len(content)) {
		t.Errorf("final progress written = %d, want %d", finalWritten, len(content))
	}
	if finalTotal != int64(len(content)) {
		t.Errorf("final progress total = %d, want %d", finalTotal, len(content))
	}
}

func TestDownloadFileEmptyBodyRemovesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 OK with no body.
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "empty.jpg")
	err := NewClient().DownloadFile(context.Background(), server.URL, dest, nil)
	if err == nil {
		t.Fatal("expected error for zero-byte download")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("partial file was not removed: stat error = %v", statErr)
	}
}

func TestDownloadFileCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, copyBufferSize))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	dest := filepath.Join(t.TempDir(), "cancelled.jpg")

	done := make(chan error, 1)
	go func() {
		done <- NewClient().DownloadFile(ctx, server.URL, dest, nil)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("DownloadFile() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("download did not observe cancellation")
	}

	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("partial file was not removed: stat error = %v", statErr)
	}
}

func TestClientTimeouts(t *testing.T) {
	if got := NewClient().httpClient.Timeout; got != 30*time.Second {
		t.Errorf("NewClient() timeout = %v, want 30s", got)
	}
	// Transfer clients rely on context cancellation, not a wall clock.
	if got := NewClientWithTimeout(0).httpClient.Timeout; got != 0 {
		t.Errorf("NewClientWithTimeout(0) timeout = %v, want 0", got)
	}
}
