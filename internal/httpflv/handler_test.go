package httpflv

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"driftcast/internal/pubsub"
)

func TestHTTPFLVHandlerNotFound(t *testing.T) {
	dir := pubsub.NewDirectory()
	handler := NewHandler(dir)

	req := httptest.NewRequest("GET", "/live/nonexistent.flv", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHTTPFLVHandlerNoPublisher(t *testing.T) {
	dir := pubsub.NewDirectory()
	handler := NewHandler(dir)

	dir.GetOrCreate(pubsub.NewName("live", "test"))

	req := httptest.NewRequest("GET", "/live/test.flv", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 (no publisher), got %d", w.Code)
	}
}

func TestHTTPFLVHandlerWithPublisher(t *testing.T) {
	dir := pubsub.NewDirectory()
	handler := NewHandler(dir)

	pub := dir.GetOrCreate(pubsub.NewName("live", "test"))
	pub.AttachPublisher(1)

	req := httptest.NewRequest("GET", "/live/test.flv", nil)
	w := httptest.NewRecorder()

	done := make(chan bool, 1)
	go func() {
		handler.ServeHTTP(w, req)
		done <- true
	}()

	time.Sleep(200 * time.Millisecond)

	if ct := w.Header().Get("Content-Type"); ct != "video/x-flv" {
		t.Errorf("expected video/x-flv, got %s", ct)
	}
	body := w.Body.Bytes()
	if !bytes.HasPrefix(body, []byte("FLV")) {
		t.Errorf("response does not start with FLV signature: %v", body[:min(3, len(body))])
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
