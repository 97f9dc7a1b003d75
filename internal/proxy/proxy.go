// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyport Authors

// Package proxy forwards API requests the agent cannot answer locally
// to the remote backend, relaying streaming responses chunk by chunk.
package proxy

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/internal/utils"
)

// LicenseKeyFunc returns the active license key, if any. The proxy
// injects it as a bearer token on every forwarded request.
type LicenseKeyFunc func() (string, bool)

// Config holds the forwarder settings.
type Config struct {
	// BaseURL is the remote backend origin, e.g. https://api.keyport.app.
	BaseURL string
}

// Forwarder relays requests to the remote backend.
type Forwarder struct {
	upstream   *url.URL
	licenseKey LicenseKeyFunc
	client     *http.Client
	log        *logger.Logger
}

// NewForwarder builds a Forwarder for the given remote origin.
//
// The underlying client carries no overall timeout: streamed chat
// responses stay open for as long as the model keeps producing tokens.
// Cancellation rides on the incoming request context instead, so a
// client disconnect tears down the upstream call.
func NewForwarder(cfg Config, licenseKey LicenseKeyFunc, log *logger.Logger) (*Forwarder, error) {
	upstream, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote base URL: %w", err)
	}
	if upstream.Scheme == "" || upstream.Host == "" {
		return nil, fmt.Errorf("remote base URL %q is missing scheme or host", cfg.BaseURL)
	}

	return &Forwarder{
		upstream:   upstream,
		licenseKey: licenseKey,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost:   4,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		log: log,
	}, nil
}

// ServeHTTP forwards the request to the remote backend.
func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	target := *f.upstream
	target.Path = singleJoiningSlash(f.upstream.Path, r.URL.Path)
	target.RawQuery = r.URL.RawQuery

	upstreamReq, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		f.log.Error().Err(err).Str("path", r.URL.Path).Msg("build upstream request")
		utils.WriteJSONError(w, "failed to build upstream request", "proxy_error", http.StatusInternalServerError)
		return
	}

	for key, values := range r.Header {
		if isHopByHopHeader(key) {
			continue
		}
		for _, value := range values {
			upstreamReq.Header.Add(key, value)
		}
	}

	if key, ok := f.licenseKey(); ok {
		upstreamReq.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := f.client.Do(upstreamReq)
	if err != nil {
		f.log.Warn().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("remote backend unreachable")
		utils.WriteJSONError(w, "remote backend unreachable", "remote_unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		if isHopByHopHeader(key) {
			continue
		}
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		f.relayStream(w, resp)
	} else {
		w.WriteHeader(resp.StatusCode)
		written, _ := io.Copy(w, resp.Body)
		f.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", resp.StatusCode).
			Int64("bytes", written).
			Dur("duration", time.Since(started)).
			Msg("forwarded request")
	}
}

// relayStream copies an SSE response chunk by chunk, flushing after
// every read so tokens reach the UI as the backend emits them.
func (f *Forwarder) relayStream(w http.ResponseWriter, resp *http.Response) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		f.log.Error().Msg("response writer does not support streaming")
		utils.WriteJSONError(w, "streaming not supported", "proxy_error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(resp.StatusCode)
	flusher.Flush()

	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				// client gone, the deferred Close cancels the upstream read
				f.log.Debug().Err(writeErr).Msg("client disconnected during stream")
				return
			}
			flusher.Flush()
		}
		if err != nil {
			if err != io.EOF {
				f.log.Warn().Err(err).Msg("upstream stream interrupted")
			}
			return
		}
	}
}

var hopByHopHeaders = map[string]bool{
	"connection":          true,
	"keep-alive":          true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"te":                  true,
	"trailer":             true,
	"transfer-encoding":   true,
	"upgrade":             true,
}

func isHopByHopHeader(name string) bool {
	return hopByHopHeaders[strings.ToLower(name)]
}

func singleJoiningSlash(a, b string) string {
	aSlash := strings.HasSuffix(a, "/")
	bSlash := strings.HasPrefix(b, "/")
	switch {
	case aSlash && bSlash:
		return a + b[1:]
	case !aSlash && !bSlash:
		return a + "/" + b
	}
	return a + b
}
