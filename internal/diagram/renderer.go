package diagram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"learnify-go/internal/constants"
	"learnify-go/internal/monitoring"
)

// Renderer turns diagram source into SVG. A non-nil error means the source
// was rejected or the renderer was unreachable.
type Renderer interface {
	Render(ctx context.Context, source string) ([]byte, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, source string) ([]byte, error)

func (f RendererFunc) Render(ctx context.Context, source string) ([]byte, error) {
	return f(ctx, source)
}

// ErrRendererUnavailable marks transport failures, as opposed to syntax errors.
var ErrRendererUnavailable = errors.New("diagram renderer unavailable")

// RenderError is a syntax error reported by the renderer.
type RenderError struct {
	Status  int
	Message string
}

func (e *RenderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("render failed (%d): %s", e.Status, e.Message)
	}
	return "render failed: " + e.Message
}

// HTTPRenderer talks to a Kroki-compatible service: POST {BaseURL}/mermaid/svg
// with the plain source as body.
type HTTPRenderer struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPRenderer builds a renderer with a pooled transport.
func NewHTTPRenderer(baseURL string, timeout time.Duration) *HTTPRenderer {
	if timeout <= 0 {
		timeout = constants.RenderTimeout
	}
	tc := constants.GetRendererTransportConfig()
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   tc.DialTimeout,
			KeepAlive: tc.KeepAlive,
		}).DialContext,
		MaxIdleConns:          tc.MaxIdleConns,
		MaxIdleConnsPerHost:   tc.MaxIdleConnsPerHost,
		IdleConnTimeout:       tc.IdleConnTimeout,
		TLSHandshakeTimeout:   tc.TLSHandshakeTimeout,
		ResponseHeaderTimeout: tc.ResponseHeader,
	}
	return &HTTPRenderer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Transport: transport, Timeout: timeout},
	}
}

func (r *HTTPRenderer) Render(ctx context.Context, source string) ([]byte, error) {
	start := time.Now()
	svg, err := r.render(ctx, source)
	result := "ok"
	if err != nil {
		result = "error"
	}
	monitoring.DiagramRenderDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return svg, err
}

func (r *HTTPRenderer) render(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/mermaid/svg", strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "image/svg+xml")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendererUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxRenderedSVGBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrRendererUnavailable, err)
	}
	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrRendererUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, &RenderError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if !bytes.Contains(body, []byte("<svg")) {
		return nil, &RenderError{Status: resp.StatusCode, Message: "renderer returned no svg"}
	}
	return body, nil
}
