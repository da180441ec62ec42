package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Distinguishes why a forward timed out. Callers use this to pick a
// retry strategy: a platform cut means a background poll will pick the
// result up, a slow upstream means it will not.
type TimeoutKind int

const (
	TimeoutNone TimeoutKind = iota
	TimeoutPlatform
	TimeoutUpstreamSlow
)

const (
	platformTimeoutMessage = "Timeout: the platform cut the connection before the upstream replied. Polling will pick up the result."
	upstreamTimeoutMessage = "Timeout: the upstream took too long to respond."
	outboundContentType    = "application/json"
)

// Outcome of a single forward attempt. On timeout the result is
// synthesized (504 with a JSON error body) rather than propagated as an
// error, so the caller always has something parseable to return.
type Result struct {
	StatusCode  int
	Body        []byte
	ContentType string
	Timeout     TimeoutKind
}

// Performs the network call to the upstream webhook. One attempt per
// inbound request, no retries.
type Forwarder struct {
	client       *http.Client
	timeout      time.Duration
	platformMode bool
}

func New(timeout time.Duration, platformMode bool) *Forwarder {
	return NewWithClient(&http.Client{}, timeout, platformMode)
}

// NewWithClient allows injecting the HTTP client, mainly for tests.
func NewWithClient(client *http.Client, timeout time.Duration, platformMode bool) *Forwarder {
	return &Forwarder{
		client:       client,
		timeout:      timeout,
		platformMode: platformMode,
	}
}

func (f *Forwarder) Timeout() time.Duration {
	return f.timeout
}

// Forward sends body to target and returns the upstream's status and raw
// body verbatim. The deadline also cancels the underlying connection, so
// nothing outlives the handler.
func (f *Forwarder) Forward(ctx context.Context, target, method string, header http.Header, body []byte) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var reqBody io.Reader
	if method != http.MethodGet && method != http.MethodHead && len(body) > 0 {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}

	req.Header = sanitizeHeader(header)
	req.Header.Set("Content-Type", outboundContentType)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			log.Printf("upstream timed out after %v: %s", time.Since(start), target)
			return f.timeoutResult(), nil
		}
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			log.Printf("upstream body read timed out after %v: %s", time.Since(start), target)
			return f.timeoutResult(), nil
		}
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		Body:        raw,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (f *Forwarder) timeoutResult() *Result {
	kind := TimeoutUpstreamSlow
	message := upstreamTimeoutMessage
	if f.platformMode {
		kind = TimeoutPlatform
		message = platformTimeoutMessage
	}

	body, _ := json.Marshal(map[string]string{"error": message})

	return &Result{
		StatusCode:  http.StatusGatewayTimeout,
		Body:        body,
		ContentType: outboundContentType,
		Timeout:     kind,
	}
}

// Drops hop-by-hop and identity-revealing headers before forwarding.
// Content-Type is dropped here and forced to JSON by the caller path,
// because the upstream only accepts JSON.
func sanitizeHeader(header http.Header) http.Header {
	out := make(http.Header, len(header))
	for name, values := range header {
		switch http.CanonicalHeaderKey(name) {
		case "Host", "Origin", "Referer", "Content-Length", "Content-Type":
			continue
		}
		for _, value := range values {
			out.Add(name, value)
		}
	}
	return out
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
