package grader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultAuthTimeout  = 10 * time.Second
	defaultFetchTimeout = 25 * time.Second
)

// Options configures a Client. Proxies maps an outbound scheme ("http",
// "https") to the proxy URL the host routes external calls through.
type Options struct {
	Proxies      map[string]string
	AuthTimeout  time.Duration
	FetchTimeout time.Duration
	Logger       zerolog.Logger
}

// Client performs the authenticated fetch against an external grader. One
// fetch makes at most two sequential outbound calls: the optional token
// exchange, then the grader invocation. Both are bounded by their own timeout
// and neither is retried.
type Client struct {
	authClient  *http.Client
	fetchClient *http.Client
	logger      zerolog.Logger
}

// NewClient builds a grader client honoring the configured proxies and
// timeouts.
func NewClient(opts Options) *Client {
	authTimeout := opts.AuthTimeout
	if authTimeout <= 0 {
		authTimeout = defaultAuthTimeout
	}

	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}

	transport := proxyTransport(opts.Proxies)

	return &Client{
		authClient:  &http.Client{Timeout: authTimeout, Transport: transport},
		fetchClient: &http.Client{Timeout: fetchTimeout, Transport: transport},
		logger:      opts.Logger.With().Str("component", "grader_client").Logger(),
	}
}

// Fetch runs the full outbound sequence for one grade request: endpoint
// validation, the optional token exchange, the grader call, and response
// normalization. Validation failures short-circuit with zero network calls.
func (c *Client) Fetch(ctx context.Context, cfg Config, identity Identity) (Normalized, error) {
	if !IsValidURL(cfg.GraderEndpoint) {
		return Normalized{}, ErrGraderEndpointInvalid
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	if cfg.AuthenticationEndpoint != "" {
		if !IsValidURL(cfg.AuthenticationEndpoint) {
			return Normalized{}, ErrAuthEndpointInvalid
		}

		token, err := c.exchangeToken(ctx, cfg)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", cfg.AuthenticationEndpoint).Msg("token exchange failed")
			return Normalized{}, fmt.Errorf("%w: %v", ErrAuthExchangeFailed, err)
		}

		headers.Set("Authorization", "Bearer "+token)
		if cfg.APIKey != "" {
			headers.Set("x-api-key", cfg.APIKey)
		}
	}

	req, err := c.buildGraderRequest(ctx, cfg, identity)
	if err != nil {
		return Normalized{}, fmt.Errorf("%w: %v", ErrGraderUnreachable, err)
	}
	req.Header = headers

	resp, err := c.fetchClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", cfg.GraderEndpoint).Msg("grader call failed")
		return Normalized{}, fmt.Errorf("%w: %v", ErrGraderUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Normalized{}, fmt.Errorf("%w: %v", ErrGraderUnreachable, err)
	}

	return ParseResponse(resp.StatusCode, body)
}

// buildGraderRequest attaches the identification query for GET calls. A POST
// carries headers only; the upstream contract defines no request body for it.
func (c *Client) buildGraderRequest(ctx context.Context, cfg Config, identity Identity) (*http.Request, error) {
	if cfg.HTTPMethod == "post" {
		return http.NewRequestWithContext(ctx, http.MethodPost, cfg.GraderEndpoint, nil)
	}

	endpoint, err := url.Parse(cfg.GraderEndpoint)
	if err != nil {
		return nil, err
	}

	query := endpoint.Query()
	for key, vals := range BuildQuery(cfg, identity) {
		for _, val := range vals {
			query.Set(key, val)
		}
	}
	endpoint.RawQuery = query.Encode()

	return http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
}

func proxyTransport(proxies map[string]string) *http.Transport {
	transport := &http.Transport{}
	if len(proxies) == 0 {
		return transport
	}

	parsed := map[string]*url.URL{}
	for scheme, raw := range proxies {
		if proxyURL, err := url.Parse(raw); err == nil {
			parsed[scheme] = proxyURL
		}
	}

	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		if proxyURL, ok := parsed[req.URL.Scheme]; ok {
			return proxyURL, nil
		}
		return nil, nil
	}

	return transport
}
