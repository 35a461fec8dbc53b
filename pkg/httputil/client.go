// Package httputil provides shared HTTP clients with connection pooling
// and safe response handling for the Aman service. Two call classes exist:
// live page fetches (untrusted, redirect-following) and judgment API calls.
package httputil

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// MaxPageSize is the maximum HTML body read from a fetched page.
// Pages past this size are truncated, not rejected - the field and form
// signals this service cares about live near the top of the document.
const MaxPageSize = 2 * 1024 * 1024 // 2MB

// MaxJudgeResponseSize limits judgment API responses. The judge returns a
// small JSON object; anything larger indicates a broken or hostile endpoint.
const MaxJudgeResponseSize = 1 * 1024 * 1024 // 1MB

// BrowserUserAgent is sent on page fetches so that pages serving
// bot-detection stubs reveal the same content a victim would see.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Shared transport with connection pooling, safe for concurrent use.
var sharedTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

var (
	pageClient  *http.Client
	judgeClient *http.Client
	clientOnce  sync.Once
)

func initClients() {
	// Page fetches follow redirects (the final URL is itself a signal) but
	// never more than 10 hops. The per-fetch deadline comes from the request
	// context, so no Timeout is set here.
	pageClient = &http.Client{
		Transport: sharedTransport,
	}
	judgeClient = &http.Client{
		Timeout:   30 * time.Second,
		Transport: sharedTransport,
	}
}

// PageClient returns the shared client for live page fetches.
// Callers must bound each fetch with a context deadline.
func PageClient() *http.Client {
	clientOnce.Do(initClients)
	return pageClient
}

// JudgeClient returns the shared client for judgment API calls (30s timeout).
func JudgeClient() *http.Client {
	clientOnce.Do(initClients)
	return judgeClient
}

// ReadResponseBody safely reads an HTTP response body with a size limit.
// This prevents memory exhaustion from malicious or compromised servers.
func ReadResponseBody(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// DrainAndClose properly drains and closes an HTTP response body.
// This ensures connection reuse in the pool.
func DrainAndClose(body io.ReadCloser) {
	if body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxPageSize))
		_ = body.Close()
	}
}
