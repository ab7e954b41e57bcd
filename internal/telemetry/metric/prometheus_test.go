package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}
	if r.CommandsTotal == nil {
		t.Error("CommandsTotal is nil")
	}
	if r.CommandDuration == nil {
		t.Error("CommandDuration is nil")
	}
	if r.ConnectionsActive == nil {
		t.Error("ConnectionsActive is nil")
	}
	if r.KeysExpired == nil {
		t.Error("KeysExpired is nil")
	}
}

func TestRegistry_HandlerServesRuntimeMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRegistry().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"go_goroutines", "process_"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition lacks %s metrics", want)
		}
	}
}

func TestCommandMetrics(t *testing.T) {
	r := NewRegistry()

	r.ObserveCommand("get", "ok", time.Millisecond)
	r.ObserveCommand("get", "ok", 2*time.Millisecond)
	r.ObserveCommand("set", "invalid_expiry", 0)

	if got := testutil.ToFloat64(r.CommandsTotal.WithLabelValues("get", "ok")); got != 2 {
		t.Errorf("commands_total{get,ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.CommandsTotal.WithLabelValues("set", "invalid_expiry")); got != 1 {
		t.Errorf("commands_total{set,invalid_expiry} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.CommandDuration); got != 2 {
		t.Errorf("command_duration_seconds series = %d, want 2", got)
	}
}

func TestConnectionMetrics(t *testing.T) {
	r := NewRegistry()

	r.ConnectionOpened()
	r.ConnectionOpened()
	r.ConnectionClosed()

	if got := testutil.ToFloat64(r.ConnectionsActive); got != 1 {
		t.Errorf("connections_active = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.ConnectionsTotal); got != 2 {
		t.Errorf("connections_total = %v, want 2", got)
	}
}

func TestErrorAndExpiryMetrics(t *testing.T) {
	r := NewRegistry()

	r.ProtocolError()
	r.OnExpired("a")
	r.OnExpired("b")

	if got := testutil.ToFloat64(r.ProtocolErrors); got != 1 {
		t.Errorf("protocol_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.KeysExpired); got != 2 {
		t.Errorf("keys_expired_total = %v, want 2", got)
	}
}

func TestRegistry_HandlerExposesNamespace(t *testing.T) {
	r := NewRegistry()
	r.ObserveCommand("ping", "ok", time.Microsecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{
		`tinykv_commands_total{command="ping",result="ok"} 1`,
		"tinykv_command_duration_seconds_bucket",
		"tinykv_connections_active",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %q in metrics output", name)
		}
	}
}
