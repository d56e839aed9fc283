package obsx

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/testingx"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name: "valid options",
			opts: Options{ServiceName: "argconf", ServiceVersion: "1.0.0"},
		},
		{
			name:    "missing service name",
			opts:    Options{ServiceVersion: "1.0.0"},
			wantErr: true,
		},
		{
			name: "with resource attributes",
			opts: Options{
				ServiceName:   "argconf",
				ResourceAttrs: map[string]string{"environment": "test"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(context.Background(), tt.opts)
			if tt.wantErr {
				testingx.AssertCode(t, err, errors.CodeInvalidArgument)
				return
			}
			testingx.AssertNoError(t, err)
			if provider.MeterProvider() == nil {
				t.Fatal("MeterProvider() is nil")
			}
			testingx.AssertNoError(t, provider.Shutdown(context.Background()))
		})
	}
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	return rec.Body.String()
}

func TestPrometheusHandler(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Options{ServiceName: "argconf"})
	testingx.AssertNoError(t, err)
	defer provider.Shutdown(ctx)

	counter, err := provider.Meter("test").Int64Counter("config_reloads")
	testingx.AssertNoError(t, err)
	counter.Add(ctx, 2)

	body := scrape(t, provider.PrometheusHandler())
	if !strings.Contains(body, "config_reloads") {
		t.Errorf("counter missing from scrape:\n%s", body)
	}
}

func TestEnableRuntimeMetrics(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Options{ServiceName: "argconf"})
	testingx.AssertNoError(t, err)
	defer provider.Shutdown(ctx)

	testingx.AssertNoError(t, provider.EnableRuntimeMetrics())

	body := scrape(t, provider.PrometheusHandler())
	if !strings.Contains(body, "process_runtime_go_goroutines") {
		t.Errorf("runtime gauge missing from scrape:\n%s", body)
	}
}

func TestServeListener(t *testing.T) {
	provider, err := NewProvider(context.Background(), Options{
		ServiceName:     "argconf",
		ShutdownTimeout: time.Second,
	})
	testingx.AssertNoError(t, err)
	defer provider.Shutdown(context.Background())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	testingx.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	logger := testingx.NewMockLogger(t)
	done := make(chan error, 1)
	go func() { done <- provider.ServeListener(ctx, ln, logger) }()

	base := "http://" + ln.Addr().String()
	resp, err := http.Get(base + "/healthz")
	testingx.AssertNoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok\n" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(base + "/metrics")
	testingx.AssertNoError(t, err)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		testingx.AssertNoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	logger.AssertLogged("INFO", "stopping metrics server")
}

func TestServe_Errors(t *testing.T) {
	provider, err := NewProvider(context.Background(), Options{ServiceName: "argconf"})
	testingx.AssertNoError(t, err)
	defer provider.Shutdown(context.Background())

	err = provider.Serve(context.Background(), ":0", nil)
	testingx.AssertCode(t, err, errors.CodeInvalidArgument)

	err = provider.Serve(context.Background(), "256.0.0.1:bad", testingx.NewMockLogger(t))
	testingx.AssertCode(t, err, errors.CodeUnavailable)
}
