// Package proxy forwards an allowed request to the upstream backend,
// stripping hop-by-hop headers and injecting the forwarding headers
// spec.md's decision pipeline requires.
package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// hopByHopHeaders are stripped in both directions per RFC 7230 §6.1; host
// is stripped separately since Go rewrites it from the request URL anyway.
var hopByHopHeaders = map[string]struct{}{
	"connection":          {},
	"keep-alive":          {},
	"proxy-authenticate":  {},
	"proxy-authorization": {},
	"te":                  {},
	"trailers":            {},
	"transfer-encoding":   {},
	"upgrade":             {},
}

// responseStripHeaders are additionally removed from the upstream response
// before relaying it, since the client already decompressed the body and
// the framework computes a correct Content-Length for the relayed body.
var responseStripHeaders = map[string]struct{}{
	"content-encoding": {},
	"content-length":   {},
}

var sharedClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	},
	// CheckRedirect left nil: the default policy follows redirects.
}

// Forwarder issues the upstream request for an allowed inbound request.
type Forwarder struct {
	backendBase string
	client      *http.Client
}

func New(backendBase string) *Forwarder {
	return &Forwarder{
		backendBase: strings.TrimRight(backendBase, "/"),
		client:      sharedClient,
	}
}

// Response is the relayed upstream response: status, headers with
// hop-by-hop and framing headers already stripped, and the raw body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Forward builds the upstream URL from path and rawQuery, copies non
// hop-by-hop headers, injects X-Forwarded-For/X-Real-IP/X-Forwarded-Host,
// and issues the request with the original method and body.
func (f *Forwarder) Forward(ctx context.Context, method, path, rawQuery string, header http.Header, body []byte, clientIP, originalHost string) (*Response, error) {
	upstreamURL := f.backendBase + path
	if rawQuery != "" {
		upstreamURL += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, upstreamURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("proxy: build upstream request: %w", err)
	}

	copyHeaders(req.Header, header)
	// Accept-Encoding is left to the transport, so it negotiates gzip itself
	// and returns a decompressed body.
	req.Header.Del("Accept-Encoding")
	req.Header.Set("X-Forwarded-For", clientIP)
	req.Header.Set("X-Real-IP", clientIP)
	req.Header.Set("X-Forwarded-Host", originalHost)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy: upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("proxy: read upstream response: %w", err)
	}

	relayed := http.Header{}
	copyHeaders(relayed, resp.Header)
	for name := range responseStripHeaders {
		relayed.Del(name)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     relayed,
		Body:       respBody,
	}, nil
}

// copyHeaders copies src into dst, skipping hop-by-hop headers and Host.
func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		lower := strings.ToLower(name)
		if lower == "host" {
			continue
		}
		if _, hop := hopByHopHeaders[lower]; hop {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}
