package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_GETJoinsBaseURLAndSendsDefaultHeaders(t *testing.T) {
	var gotPath, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClientWithVersion("test").BaseURL(server.URL)

	resp, err := client.GET("/v1/vision").Send()
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/v1/vision" {
		t.Errorf("path = %q", gotPath)
	}
	if gotUA != "deskflow/test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got status %d", resp.StatusCode)
	}
}

func TestClient_POSTBodySetsContentTypeAndReturnsBody(t *testing.T) {
	var gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	defer server.Close()

	client := NewClient().BaseURL(server.URL)
	resp, err := client.POST("/items").JSON(map[string]string{"name": "a"}).Send()
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody == "" {
		t.Errorf("expected a request body to reach the server")
	}
	if resp.String() != "created" {
		t.Errorf("response body = %q", resp.String())
	}
}

func TestClient_AuthBearerSetsAuthorizationHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient().BaseURL(server.URL).Auth(Bearer("secret-key"))
	if _, err := client.GET("/ping").Send(); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestClient_RetriesOnServerErrorThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient().BaseURL(server.URL).Retry(&RetryConfig{
		MaxAttempts: 3,
		Backoff:     &ExponentialBackoff{BaseDelay: time.Millisecond},
		RetryIf:     DefaultRetryCondition,
	})

	resp, err := client.GET("/flaky").Send()
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if resp.RetryCount() != 2 {
		t.Errorf("RetryCount = %d, want 2", resp.RetryCount())
	}
}

func TestClient_ContextCancellationAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	client := NewClient().BaseURL(server.URL)
	_, err := client.GET("/slow").Context(ctx).Retry(&RetryConfig{MaxAttempts: 1}).Send()
	if err == nil {
		t.Fatalf("expected a context-deadline error")
	}
}

func TestExponentialBackoff_Doubles(t *testing.T) {
	b := &ExponentialBackoff{BaseDelay: 10 * time.Millisecond}
	if d := b.NextDelay(0); d != 10*time.Millisecond {
		t.Errorf("attempt 0 = %v", d)
	}
	if d := b.NextDelay(2); d != 40*time.Millisecond {
		t.Errorf("attempt 2 = %v", d)
	}
}
