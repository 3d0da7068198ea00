package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecognizeSendsEncodedImage(t *testing.T) {
	var captured recognizeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/recognize" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"text":"Invoice from Acme","language":"english"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	result, err := client.Recognize(context.Background(), "scan.png", []byte{0x89, 0x50})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if captured.Filename != "scan.png" {
		t.Fatalf("filename = %q, want scan.png", captured.Filename)
	}
	if captured.Image != base64.StdEncoding.EncodeToString([]byte{0x89, 0x50}) {
		t.Fatalf("unexpected image payload %q", captured.Image)
	}
	if result.Text != "Invoice from Acme" || result.Language != "english" {
		t.Fatalf("result = %+v", result)
	}
}

func TestRecognizeIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine warming up", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Recognize(context.Background(), "scan.png", []byte("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "engine warming up") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
