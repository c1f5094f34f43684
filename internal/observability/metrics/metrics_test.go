package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHTTPRequestCountsServerErrors(t *testing.T) {
	before := testutil.ToFloat64(httpErrors.WithLabelValues("process", "POST"))

	ObserveHTTPRequest("process", "POST", 200, 10*time.Millisecond)
	ObserveHTTPRequest("process", "POST", 500, 20*time.Millisecond)

	if got := testutil.ToFloat64(httpRequests.WithLabelValues("process", "POST", "500")); got < 1 {
		t.Fatalf("expected 500 request counted, got %v", got)
	}
	if got := testutil.ToFloat64(httpErrors.WithLabelValues("process", "POST")); got != before+1 {
		t.Fatalf("expected one more error, got %v (before %v)", got, before)
	}
}

func TestObserveProcessAndOracle(t *testing.T) {
	ObserveProcess("hex-to-rgb", "tool", "success")
	ObserveProcess("hex-to-rgb", "tool", "success")
	if got := testutil.ToFloat64(processTotal.WithLabelValues("hex-to-rgb", "tool", "success")); got != 2 {
		t.Fatalf("unexpected process count: %v", got)
	}

	ObserveOracle("timeout", time.Second)
	if got := testutil.ToFloat64(oracleTotal.WithLabelValues("timeout")); got != 1 {
		t.Fatalf("unexpected oracle count: %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveRateLimited()
	ObserveHTTPRequest("list", "GET", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, name := range []string{
		"webtool_http_requests_total",
		"webtool_http_request_duration_seconds_bucket",
		"webtool_http_rate_limited_total",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("expected %s in exposition output", name)
		}
	}
}

func TestStartServerRequiresAddress(t *testing.T) {
	if err := StartServer(context.Background(), "", ""); err == nil {
		t.Fatalf("expected error for empty address")
	}
}
