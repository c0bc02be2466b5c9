// Package feed fetches upstream documents with retries and error classification.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aluiziolira/go-equipment-catalog/config"
	"github.com/aluiziolira/go-equipment-catalog/metrics"
	"github.com/gocolly/colly/v2"
)

// Response is a successfully fetched upstream document.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Transcoded reports whether the collector already converted the body to
// UTF-8 because the response declared a non UTF-8 charset.
func (r *Response) Transcoded() bool {
	ct := strings.ToLower(r.ContentType)
	if !strings.Contains(ct, "charset") {
		return false
	}
	return !strings.Contains(ct, "utf-8") && !strings.Contains(ct, "utf8")
}

// Fetcher issues GET requests through a colly collector.
type Fetcher struct {
	cfg       *config.Config
	transport http.RoundTripper
	metrics   *metrics.Metrics
}

// NewFetcher builds a fetcher configured from cfg.
func NewFetcher(cfg *config.Config, m *metrics.Metrics) *Fetcher {
	return &Fetcher{
		cfg: cfg,
		transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        16,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		metrics: m,
	}
}

// WithTransport replaces the underlying round tripper.
func (f *Fetcher) WithTransport(rt http.RoundTripper) {
	f.transport = rt
}

// Fetch GETs target, retrying retryable failures with capped backoff.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, classifyError(err, 0)
		}

		resp, err := f.fetchOnce(ctx, target)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt >= f.cfg.MaxRetries || !Retryable(err) {
			return nil, err
		}

		f.metrics.IncRetries()
		delay := f.backoff(attempt + 1)
		slog.Debug("scheduling fetch retry",
			slog.String("url", target),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context, target string) (*Response, error) {
	collector := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.MaxBodySize = f.cfg.MaxBodyBytes
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.WithTransport(contextTransport{ctx: ctx, base: f.transport})

	var (
		resp     *Response
		fetchErr error
	)

	collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		f.metrics.IncRequest("started")
	})

	collector.OnResponse(func(r *colly.Response) {
		if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
			f.metrics.ObserveDuration(time.Since(start))
		}
		f.metrics.IncRequest("completed")
		contentType := ""
		if r.Headers != nil {
			contentType = r.Headers.Get("Content-Type")
		}
		resp = &Response{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: contentType,
			Body:        r.Body,
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = classifyError(err, statusCode)
		category := ErrorLabel(fetchErr)
		f.metrics.IncRequest("failed")
		f.metrics.IncError(category)
		slog.Warn("upstream request error",
			slog.String("url", target),
			slog.Int("status", statusCode),
			slog.String("category", category),
			slog.Any("error", err),
		)
	})

	if err := collector.Visit(target); err != nil && fetchErr == nil {
		fetchErr = classifyError(err, 0)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if resp == nil {
		return nil, ErrMalformed{Err: errors.New("no response received")}
	}
	if len(resp.Body) == 0 {
		return nil, ErrMalformed{Err: fmt.Errorf("empty body from %s", target)}
	}
	return resp, nil
}

func (f *Fetcher) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := f.cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := f.cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

// contextTransport binds every outgoing request to ctx so cancelling the
// caller aborts the collector's in-flight request.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
