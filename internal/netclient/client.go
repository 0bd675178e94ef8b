package netclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// maxRedirects bounds redirect chains on the retail site.
const maxRedirects = 10

// Factory creates per-request HTTP clients.
type Factory struct {
	// proxyAddress is the SOCKS5 proxy in "host:port" form, empty for direct.
	proxyAddress string

	// dialer routes connections through the proxy. Nil for direct connections.
	dialer proxy.ContextDialer

	// headers are added to every request unless the request already sets them.
	headers map[string]string
}

// Option configures a Factory.
type Option func(*Factory)

// WithProxy routes all connections through the SOCKS5 proxy at address.
// An empty address keeps direct connections.
func WithProxy(address string) Option {
	return func(f *Factory) {
		f.proxyAddress = address
	}
}

// WithHeaders sets default headers injected into every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Factory) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// NewFactory validates the options and returns a Factory.
func NewFactory(opts ...Option) (*Factory, error) {
	f := &Factory{headers: make(map[string]string)}
	for _, opt := range opts {
		opt(f)
	}

	if f.proxyAddress == "" {
		return f, nil
	}
	if !isValidProxyAddress(f.proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	d, err := proxy.SOCKS5("tcp", f.proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("SOCKS5 dialer for %s does not support contexts", f.proxyAddress)
	}
	f.dialer = cd

	return f, nil
}

// ProxyAddress returns the configured proxy, or "" for direct connections.
func (f *Factory) ProxyAddress() string {
	return f.proxyAddress
}

// New returns a client whose requests time out after timeout.
// The client does not pool connections; call CloseIdleConnections when done.
func (f *Factory) New(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DisableKeepAlives:     true,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	if f.dialer != nil {
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return f.dialer.DialContext(ctx, network, addr)
		}
	}

	var rt http.RoundTripper = transport
	if len(f.headers) > 0 {
		rt = &headerInjectingTransport{base: transport, headers: f.headers}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// headerInjectingTransport fills in default headers the request left unset.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, value := range t.headers {
		if clone.Header.Get(key) == "" {
			clone.Header.Set(key, value)
		}
	}
	return t.base.RoundTrip(clone)
}

// isValidProxyAddress checks for "host:port" with a port in 1-65535.
// IPv6 hosts must be bracketed, as in "[::1]:9050".
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
