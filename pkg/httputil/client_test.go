package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wonny/warroom/pkg/config"
	"github.com/wonny/warroom/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:      "test",
		LogLevel: "error",
		Yahoo: config.YahooConfig{
			Timeout:    5 * time.Second,
			MaxRetries: 3,
		},
	}
}

func TestNew(t *testing.T) {
	client := New(testConfig(), logger.NewNop())
	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.httpClient.Timeout != 5*time.Second {
		t.Errorf("Expected timeout=5s, got %v", client.httpClient.Timeout)
	}

	if client.retryConfig.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries=3, got %d", client.retryConfig.MaxRetries)
	}

	if !client.retryConfig.Enabled {
		t.Error("Expected retry to be enabled")
	}
}

func TestNew_RetrySettingsFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Yahoo.RetryDelay = 2 * time.Second
	client := New(cfg, logger.NewNop())

	if client.retryConfig.InitialDelay != 2*time.Second {
		t.Errorf("Expected InitialDelay=2s, got %v", client.retryConfig.InitialDelay)
	}

	cfg.Yahoo.MaxRetries = 0
	if New(cfg, logger.NewNop()).retryConfig.Enabled {
		t.Error("Expected retry to be disabled with zero retries")
	}

	cfg.Yahoo.RetryDelay = 0
	if d := New(cfg, logger.NewNop()).retryConfig.InitialDelay; d != 500*time.Millisecond {
		t.Errorf("Expected default InitialDelay=500ms, got %v", d)
	}
}

func TestWithCookieJar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if c, err := r.Cookie("session"); err != nil || c.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := New(testConfig(), logger.NewNop()).WithCookieJar()
	jar := client.httpClient.Jar
	if client.WithCookieJar().httpClient.Jar != jar {
		t.Error("Expected the existing jar to be kept")
	}

	_, _, err := client.GetBytes(context.Background(), server.URL+"/login")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected 404 StatusError, got %v", err)
	}

	body, _, err := client.GetBytes(context.Background(), server.URL+"/data")
	if err != nil {
		t.Fatalf("Expected cookie to be sent back, got %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("Expected body ok, got %q", body)
	}
}

func TestGetSetsUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("Expected User-Agent header")
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	resp, err := New(testConfig(), logger.NewNop()).Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GET request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","count":2}`))
	}))
	defer server.Close()

	var out struct {
		Status string `json:"status"`
		Count  int    `json:"count"`
	}
	if err := New(testConfig(), logger.NewNop()).GetJSON(context.Background(), server.URL, &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}

	if out.Status != "ok" || out.Count != 2 {
		t.Errorf("Unexpected payload: %+v", out)
	}
}

func TestGetJSONStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var out map[string]interface{}
	err := New(testConfig(), logger.NewNop()).GetJSON(context.Background(), server.URL, &out)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", statusErr.StatusCode)
	}
}

func TestRetryOn5xxAnd429(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&attempts, 1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		}
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Yahoo.RetryDelay = 10 * time.Millisecond
	client := New(cfg, logger.NewNop())

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Request failed after retries: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Yahoo.MaxRetries = 5
	cfg.Yahoo.RetryDelay = time.Second
	client := New(cfg, logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Get(ctx, server.URL)
	if err == nil {
		t.Fatal("Expected error after context deadline")
	}
	if time.Since(start) > 900*time.Millisecond {
		t.Errorf("Expected retry loop to stop at deadline, took %v", time.Since(start))
	}
}

func TestWithLimit(t *testing.T) {
	client := New(testConfig(), logger.NewNop()).WithLimit(5)
	if client.limiter == nil {
		t.Fatal("Expected limiter to be installed")
	}
	if client.limiter.Burst() != 5 {
		t.Errorf("Expected burst 5, got %d", client.limiter.Burst())
	}

	if New(testConfig(), logger.NewNop()).WithLimit(0).limiter != nil {
		t.Error("Expected no limiter for non-positive rate")
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			if got := IsRetryableError(tt.statusCode); got != tt.want {
				t.Errorf("IsRetryableError(%d) = %v, want %v", tt.statusCode, got, tt.want)
			}
		})
	}
}
