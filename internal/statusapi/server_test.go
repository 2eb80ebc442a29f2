package statusapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/clawlink/clawlink/internal/gateway"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestStatusReportsDisconnected(t *testing.T) {
	client := gateway.New(gateway.Options{Logger: testLogger()})
	defer client.Close()
	srv := NewServer(client, "test", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var st Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.State != "disconnected" || st.Connected {
		t.Errorf("unexpected status: %+v", st)
	}
	if st.Version != "test" {
		t.Errorf("expected version test, got %s", st.Version)
	}
}

func TestShutdownStopsListener(t *testing.T) {
	client := gateway.New(gateway.Options{Logger: testLogger()})
	defer client.Close()
	srv := NewServer(client, "test", testLogger())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe("127.0.0.1:0") }()

	// Let the listener bind before shutting down.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe returned %v after shutdown, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ListenAndServe did not return after Shutdown")
	}
}

func TestShutdownWithoutListenIsNoop(t *testing.T) {
	client := gateway.New(gateway.Options{Logger: testLogger()})
	defer client.Close()
	srv := NewServer(client, "test", testLogger())

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown without listen: %v", err)
	}
}

func TestHealthzUnavailableWhileDisconnected(t *testing.T) {
	client := gateway.New(gateway.Options{Logger: testLogger()})
	defer client.Close()
	srv := NewServer(client, "test", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 while disconnected, got %d", rec.Code)
	}
}
