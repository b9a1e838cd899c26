package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentLedger, Output: &buf})

	l.Info("debt computed", FieldClientID, 7)
	l.Debug("hidden")
	l.WithComponent(ComponentSettlement).Warn("item rejected")

	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "client_id=7") {
		t.Fatalf("missing fields: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record written at info level: %s", out)
	}
	if !strings.Contains(out, "component=settlement") {
		t.Fatalf("component override missing: %s", out)
	}
}

func TestLogFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf})

	f := NewFields().
		WithOperation(OpRegister).
		WithPayment(3, 11, decimal.RequireFromString("70"), "fifo").
		WithItem(5, "work").
		WithError(errors.New("boom"), ErrorTypeDatabase).
		WithRequestID("")
	l.LogFields(context.Background(), slog.LevelError, "payment failed", f)

	out := buf.String()
	for _, want := range []string{"component=http", "operation=register", "amount=70.00", "policy=fifo", "item_type=work", "error=boom", "error_type=database_error"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
	if strings.Contains(out, "request_id") {
		t.Errorf("empty request id should be omitted: %s", out)
	}
}

func TestMiddlewareStoresRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	h := Middleware(func(context.Context) string { return "req_42" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	out := buf.String()
	if !strings.Contains(out, "request_id=req_42") || !strings.Contains(out, "component=http") {
		t.Fatalf("request logger fields missing: %s", out)
	}

	if got := FromContext(context.Background()).Component(); got != ComponentApp {
		t.Fatalf("fallback component = %q", got)
	}
}
