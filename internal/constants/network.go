package constants

import "time"

// HTTP client pool settings for the diagram renderer
const (
	RendererMaxIdleConns        = 64
	RendererMaxIdleConnsPerHost = 16
	RendererIdleConnTimeout     = 90 * time.Second

	DefaultDialTimeout           = 10 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultResponseHeaderTimeout = 30 * time.Second
	DefaultKeepAlive             = 30 * time.Second
)

// TransportConfig describes the renderer HTTP transport.
type TransportConfig struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	DialTimeout         time.Duration
	TLSHandshakeTimeout time.Duration
	ResponseHeader      time.Duration
	KeepAlive           time.Duration
}

// GetRendererTransportConfig returns the transport used to reach the renderer.
func GetRendererTransportConfig() TransportConfig {
	return TransportConfig{
		MaxIdleConns:        RendererMaxIdleConns,
		MaxIdleConnsPerHost: RendererMaxIdleConnsPerHost,
		IdleConnTimeout:     RendererIdleConnTimeout,
		DialTimeout:         DefaultDialTimeout,
		TLSHandshakeTimeout: DefaultTLSHandshakeTimeout,
		ResponseHeader:      DefaultResponseHeaderTimeout,
		KeepAlive:           DefaultKeepAlive,
	}
}
