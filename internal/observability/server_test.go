package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func startServer(t *testing.T, ready ReadinessChecker) *Server {
	t.Helper()
	server := NewServer("127.0.0.1:0", ready)
	if _, err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("failed to GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestServer_Metrics(t *testing.T) {
	server := startServer(t, func() bool { return true })

	metrics := server.Metrics()
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
	metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
	metrics.SessionsIssuedTotal.WithLabelValues("memory").Inc()
	metrics.ResetTokensIssuedTotal.Inc()
	metrics.RequestsTotal.WithLabelValues("/api/v1/auth/login", "200").Inc()

	status, body := get(t, "http://"+server.Addr()+"/metrics")
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	// Prometheus exposition format with both standard and custom metrics.
	for _, want := range []string{
		"# HELP",
		"# TYPE",
		"go_",
		"process_",
		`gatewarden_login_attempts_total{outcome="failure"} 2`,
		`gatewarden_login_attempts_total{outcome="success"} 1`,
		`gatewarden_sessions_issued_total{backend="memory"} 1`,
		"gatewarden_reset_tokens_issued_total 1",
		`gatewarden_requests_total{route="/api/v1/auth/login",status="200"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestServer_Liveness(t *testing.T) {
	server := startServer(t, nil)

	status, body := get(t, "http://"+server.Addr()+"/healthz/liveness")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}
	if strings.TrimSpace(body) != "ok" {
		t.Errorf("expected body 'ok', got %q", body)
	}
}

func TestServer_Readiness(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		server := startServer(t, func() bool { return true })
		status, _ := get(t, "http://"+server.Addr()+"/healthz/readiness")
		if status != http.StatusOK {
			t.Errorf("expected status 200, got %d", status)
		}
	})

	t.Run("not ready", func(t *testing.T) {
		server := startServer(t, func() bool { return false })
		status, body := get(t, "http://"+server.Addr()+"/healthz/readiness")
		if status != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", status)
		}
		if strings.TrimSpace(body) != "not ready" {
			t.Errorf("expected body 'not ready', got %q", body)
		}
	})

	t.Run("nil checker defaults to ready", func(t *testing.T) {
		server := startServer(t, nil)
		status, _ := get(t, "http://"+server.Addr()+"/healthz/readiness")
		if status != http.StatusOK {
			t.Errorf("expected status 200 with nil checker, got %d", status)
		}
	})
}

func TestServer_DoubleStartFails(t *testing.T) {
	server := startServer(t, nil)
	if _, err := server.Start(); err == nil {
		t.Error("expected error on double start, got nil")
	}
}

func TestServer_StopWithoutStart(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		t.Errorf("stop without start should not error: %v", err)
	}
}

func TestServer_ErrorChannelClosesOnShutdown(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil)

	errCh, err := server.Start()
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		t.Fatalf("failed to stop server: %v", err)
	}

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			t.Errorf("unexpected error on normal shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("timeout waiting for error channel to close")
	}
}
