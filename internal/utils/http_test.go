package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type echoResponse struct {
	Message string `json:"message"`
}

func TestDoPostSync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"message": "ok"}`))
	}))
	defer server.Close()

	out, err := DoPostSync[echoResponse](context.Background(), server.Client(), server.URL, "key", map[string]string{"in": "x"})
	if err != nil {
		t.Fatalf("DoPostSync: %v", err)
	}
	if out.Message != "ok" {
		t.Errorf("message = %q, want ok", out.Message)
	}
}

func TestDoPostSyncNoAPIKeySkipsHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("authorization = %q, want empty", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	if _, err := DoPostSync[echoResponse](context.Background(), nil, server.URL, "", nil); err != nil {
		t.Fatalf("DoPostSync: %v", err)
	}
}

func TestDoPostSyncErrorStatusIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := DoPostSync[echoResponse](context.Background(), nil, server.URL, "", nil)
	if err == nil {
		t.Fatal("DoPostSync succeeded on a 500")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q does not include the response body", err)
	}
}

func TestDoPostSyncInvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	if _, err := DoPostSync[echoResponse](context.Background(), nil, server.URL, "", nil); err == nil {
		t.Error("DoPostSync parsed an invalid response")
	}
}
