package feed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/aluiziolira/go-equipment-catalog/config"
	"github.com/aluiziolira/go-equipment-catalog/metrics"
	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const feedURL = "http://feed.test/catalog.xml"

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.FeedURL = feedURL
	cfg.Timeout = 2 * time.Second
	cfg.RetryBackoff = time.Millisecond
	cfg.RetryBackoffMax = 5 * time.Millisecond
	return cfg
}

func newTestFetcher(cfg *config.Config) (*Fetcher, *httpmock.MockTransport, *metrics.Metrics) {
	m := metrics.New()
	f := NewFetcher(cfg, m)
	transport := httpmock.NewMockTransport()
	f.WithTransport(transport)
	return f, transport, m
}

func TestFetchSuccess(t *testing.T) {
	f, transport, _ := newTestFetcher(testConfig())
	resp := httpmock.NewStringResponse(http.StatusOK, "<yml_catalog/>")
	resp.Header.Set("Content-Type", "application/xml; charset=windows-1251")
	transport.RegisterResponder(http.MethodGet, feedURL, httpmock.ResponderFromResponse(resp))

	got, err := f.Fetch(context.Background(), feedURL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(got.Body) != "<yml_catalog/>" {
		t.Fatalf("body=%q", got.Body)
	}
	if !got.Transcoded() {
		t.Fatalf("windows-1251 content type should be reported as transcoded")
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2
	f, transport, m := newTestFetcher(cfg)

	calls := 0
	transport.RegisterResponder(http.MethodGet, feedURL, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return httpmock.NewStringResponse(http.StatusBadGateway, "upstream down"), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, "ok"), nil
	})

	if _, err := f.Fetch(context.Background(), feedURL); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d, want 3", calls)
	}
	if got := testutil.ToFloat64(m.FetchRetries); got != 2 {
		t.Fatalf("retries metric=%v, want 2", got)
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 3
	f, transport, _ := newTestFetcher(cfg)
	transport.RegisterResponder(http.MethodGet, feedURL, httpmock.NewStringResponder(http.StatusNotFound, ""))

	_, err := f.Fetch(context.Background(), feedURL)
	if got := ErrorLabel(err); got != "not_found" {
		t.Fatalf("label=%q, want not_found (err=%v)", got, err)
	}
	if n := transport.GetTotalCallCount(); n != 1 {
		t.Fatalf("calls=%d, want 1", n)
	}
}

func TestFetchStatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{status: http.StatusTooManyRequests, expected: "rate_limited"},
		{status: http.StatusForbidden, expected: "forbidden"},
		{status: http.StatusNotFound, expected: "not_found"},
		{status: http.StatusInternalServerError, expected: "bad_status"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			cfg := testConfig()
			cfg.MaxRetries = 0
			f, transport, m := newTestFetcher(cfg)
			transport.RegisterResponder(http.MethodGet, feedURL, httpmock.NewStringResponder(tt.status, ""))

			_, err := f.Fetch(context.Background(), feedURL)
			if got := ErrorLabel(err); got != tt.expected {
				t.Fatalf("label=%q, want %q", got, tt.expected)
			}
			if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues(tt.expected)); got != 1 {
				t.Fatalf("error metric=%v, want 1", got)
			}
		})
	}
}

func TestFetchConnectionError(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 1
	f, transport, _ := newTestFetcher(cfg)
	transport.RegisterResponder(http.MethodGet, feedURL,
		httpmock.NewErrorResponder(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}))

	_, err := f.Fetch(context.Background(), feedURL)
	if got := ErrorLabel(err); got != "connection" {
		t.Fatalf("label=%q, want connection (err=%v)", got, err)
	}
	if n := transport.GetTotalCallCount(); n != 2 {
		t.Fatalf("calls=%d, want 2", n)
	}
}

func TestFetchEmptyBodyIsMalformed(t *testing.T) {
	f, transport, _ := newTestFetcher(testConfig())
	transport.RegisterResponder(http.MethodGet, feedURL, httpmock.NewStringResponder(http.StatusOK, ""))

	_, err := f.Fetch(context.Background(), feedURL)
	if got := ErrorLabel(err); got != "malformed" {
		t.Fatalf("label=%q, want malformed", got)
	}
}

func TestFetchCanceledContext(t *testing.T) {
	f, transport, _ := newTestFetcher(testConfig())
	transport.RegisterResponder(http.MethodGet, feedURL, httpmock.NewStringResponder(http.StatusOK, "ok"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, feedURL); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n := transport.GetTotalCallCount(); n != 0 {
		t.Fatalf("no request should be issued, got %d", n)
	}
}

func TestBackoffCapped(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RetryBackoff = 200 * time.Millisecond
	cfg.RetryBackoffMax = 500 * time.Millisecond
	f := NewFetcher(cfg, nil)

	if got := f.backoff(1); got != 200*time.Millisecond {
		t.Fatalf("first backoff=%v, want 200ms", got)
	}
	if got := f.backoff(4); got > cfg.RetryBackoffMax {
		t.Fatalf("delay %v exceeds max %v", got, cfg.RetryBackoffMax)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   string
	}{
		{name: "nil", err: nil, statusCode: 0, expected: "unknown"},
		{name: "context timeout", err: context.DeadlineExceeded, statusCode: 0, expected: "timeout"},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, statusCode: 0, expected: "timeout"},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, statusCode: 0, expected: "connection"},
		{name: "forbidden", err: nil, statusCode: http.StatusForbidden, expected: "forbidden"},
		{name: "not found", err: nil, statusCode: http.StatusNotFound, expected: "not_found"},
		{name: "rate limited", err: nil, statusCode: http.StatusTooManyRequests, expected: "rate_limited"},
		{name: "server error", err: nil, statusCode: http.StatusServiceUnavailable, expected: "bad_status"},
		{name: "other", err: errors.New("some other error"), statusCode: 0, expected: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorLabel(classifyError(tt.err, tt.statusCode)); got != tt.expected {
				t.Fatalf("classifyError(%v, %d) = %q, want %q", tt.err, tt.statusCode, got, tt.expected)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(ErrBadStatus{StatusCode: http.StatusBadGateway, Err: errors.New("x")}) {
		t.Fatalf("5xx should be retryable")
	}
	if Retryable(ErrBadStatus{StatusCode: http.StatusBadRequest, Err: errors.New("x")}) {
		t.Fatalf("4xx should not be retryable")
	}
	if Retryable(ErrMalformed{Err: errors.New("x")}) {
		t.Fatalf("malformed bodies should not be retryable")
	}
	if !Retryable(ErrTimeout{Err: context.DeadlineExceeded}) {
		t.Fatalf("timeouts should be retryable")
	}
}
