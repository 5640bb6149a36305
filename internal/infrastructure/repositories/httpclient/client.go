package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 50
	defaultBurst     = 20
	maxResponseSize  = 64 << 20
)

// Credentials authenticate against a registry. A token takes precedence over
// username and password.
type Credentials struct {
	Token    string
	Username string
	Password string
}

// IsZero reports whether no credential is set.
func (c Credentials) IsZero() bool {
	return c.Token == "" && c.Username == "" && c.Password == ""
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Headers     map[string]string
	Credentials Credentials
	Timeout     time.Duration
	Attempts    int
	Delay       time.Duration
	RateLimit   rate.Limit
	Burst       int
	Transport   http.RoundTripper
}

// Client is the HTTP client shared by the registry repositories. It applies
// default headers, authentication, rate limiting and retries.
type Client struct {
	http     *http.Client
	headers  map[string]string
	basic    *Credentials
	limiter  *rate.Limiter
	attempts int
	delay    time.Duration
}

// Response is a fully read HTTP response body.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	var basic *Credentials
	switch {
	case opts.Credentials.Token != "":
		//nolint:exhaustruct // expiry and refresh token are irrelevant for static tokens
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: opts.Credentials.Token,
				TokenType:   "Bearer",
			}),
			Base: transport,
		}
	case opts.Credentials.Username != "" || opts.Credentials.Password != "":
		creds := opts.Credentials
		basic = &creds
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	limit := opts.RateLimit
	if limit == 0 {
		limit = defaultRateLimit
	}
	burst := opts.Burst
	if burst == 0 {
		burst = defaultBurst
	}
	attempts := opts.Attempts
	if attempts == 0 {
		attempts = defaultAttempts
	}
	delay := opts.Delay
	if delay == 0 {
		delay = defaultDelay
	}

	headers := map[string]string{"User-Agent": entities.UserAgent()}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &Client{
		http:     &http.Client{Timeout: timeout, Transport: transport},
		headers:  headers,
		basic:    basic,
		limiter:  rate.NewLimiter(limit, burst),
		attempts: attempts,
		delay:    delay,
	}
}

// Get performs a GET request with retries and returns the successful response.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, nil, headers)
}

// GetJSON performs a GET request and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, v any) error {
	resp, err := c.Get(ctx, url, headers)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

// PostJSON sends payload as JSON and decodes the JSON response into v.
func (c *Client) PostJSON(ctx context.Context, url string, payload, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, url, body, map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return err
	}
	if err = json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

func (c *Client) do(
	ctx context.Context,
	method, url string,
	body []byte,
	headers map[string]string,
) (*Response, error) {
	var result *Response
	err := Retry(ctx, c.attempts, c.delay, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		resp, err := c.once(ctx, method, url, body, headers)
		if err != nil {
			return err
		}
		result = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) once(
	ctx context.Context,
	method, url string,
	body []byte,
	headers map[string]string,
) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("invalid request %s %s: %w", method, url, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if c.basic != nil {
		req.SetBasicAuth(c.basic.Username, c.basic.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", entities.ErrRegistryUnavailable, err)}
	}
	defer resp.Body.Close()

	if statusErr := checkStatus(resp.StatusCode, url); statusErr != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, statusErr
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: reading body: %v", entities.ErrRegistryUnavailable, err)}
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
