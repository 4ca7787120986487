// Package api executes authenticated requests against the management API.
//
// Every request targets /terminus.php and is addressed by a realm, the UUID
// of an object in that realm, and an optional path below it. Callers own
// caching; this package only talks to the network.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/textproto"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/terminus/internal/errors"
	"github.com/rileyhilliard/terminus/internal/logger"
)

// Endpoint is the script every request is sent to.
const Endpoint = "/terminus.php"

// DefaultTimeout bounds a request when the config does not.
const DefaultTimeout = 30 * time.Second

// Executor runs one request. The resolver and the dispatcher depend on
// this rather than on *Client so tests can substitute a fake.
type Executor interface {
	Execute(ctx context.Context, session *Session, spec RequestSpec) (*Response, error)
}

// Config holds what a Client needs to reach the API.
type Config struct {
	Host    string
	Port    int
	Timeout time.Duration

	// InsecureSkipVerify disables certificate checks. Hosts containing
	// "onebox" always skip verification.
	InsecureSkipVerify bool

	// Transport overrides the HTTP transport (tests use the httptest
	// server's client transport).
	Transport http.RoundTripper

	Logger logger.Logger
}

// Client executes RequestSpecs. The underlying *http.Client is created on
// first use and reused for later calls in the same process.
type Client struct {
	cfg        Config
	log        logger.Logger
	httpClient *http.Client
}

// NewClient creates a client for the configured host.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Port == 0 {
		cfg.Port = 443
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewEnvLogger("[api]")
	}
	return &Client{cfg: cfg, log: log}
}

// skipVerify reports whether TLS verification is off for this host.
func (c *Client) skipVerify() bool {
	return c.cfg.InsecureSkipVerify || strings.Contains(c.cfg.Host, "onebox")
}

// handle returns the shared HTTP client, building it if needed.
func (c *Client) handle() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}

	transport := c.cfg.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if c.skipVerify() {
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // onebox/dev hosts only
		}
		transport = t
	}

	c.httpClient = &http.Client{
		Timeout:   c.cfg.Timeout,
		Transport: transport,
	}
	return c.httpClient
}

// reset drops the shared HTTP client after a transport failure. The next
// call builds a fresh one.
func (c *Client) reset() {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
}

// URL builds the request URL for spec:
//
//	https://{host}:{port}/terminus.php?{realm}={uuid}[&path={path}][&{query}]
//
// The GET payload, if any, is encoded with sorted keys so the same spec
// always yields the same URL.
func (c *Client) URL(spec RequestSpec) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "https://%s:%d%s?%s=%s",
		c.cfg.Host, c.cfg.Port, Endpoint,
		url.QueryEscape(string(spec.Realm)), url.QueryEscape(spec.UUID))

	if spec.Path != "" {
		b.WriteString("&path=")
		b.WriteString(url.QueryEscape(spec.Path))
	}

	if spec.Method == MethodGet && spec.Payload != nil {
		query, err := EncodeQuery(spec.Payload)
		if err != nil {
			return "", err
		}
		if query != "" {
			b.WriteString("&")
			b.WriteString(query)
		}
	}
	return b.String(), nil
}

// Execute sends spec with the session cookie and classifies the outcome.
//
// Transport failures come back as CONNECTION errors. HTTP statuses of 400
// and above come back as REQUEST_FAILED, with the stale-session sentinel
// refined to SESSION_EXPIRED. In both HTTP cases the Response is returned
// alongside the error for diagnostics.
func (c *Client) Execute(ctx context.Context, session *Session, spec RequestSpec) (*Response, error) {
	if !session.Valid() {
		return nil, errors.NotAuthenticated()
	}
	if spec.Method == "" {
		spec.Method = MethodGet
	}
	if err := spec.validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid request")
	}

	target, err := c.URL(spec)
	if err != nil {
		return nil, errors.Wrap(err, "Could not encode request parameters")
	}

	body, err := encodeBody(spec)
	if err != nil {
		return nil, errors.Wrap(err, "Could not encode request payload")
	}

	// Only 100 Continue blocks go into the raw exchange. splitExchange
	// skips no other interim block.
	var interims []interim
	trace := &httptrace.ClientTrace{
		Got1xxResponse: func(code int, header textproto.MIMEHeader) error {
			if code == http.StatusContinue {
				interims = append(interims, interim{code: code, header: header})
			}
			return nil
		},
	}
	ctx = httptrace.WithClientTrace(ctx, trace)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, string(spec.Method), target, reader)
	if err != nil {
		return nil, errors.Wrap(err, "Could not build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = int64(len(body))
	}
	req.Header.Set("Cookie", session.Token)

	c.log.Debug("%s %s", spec.Method, target)

	httpResp, err := c.handle().Do(req)
	if err != nil {
		c.reset()
		c.log.Debug("connection error: %v", err)
		return nil, errors.WrapWithCode(err, errors.ErrConnection,
			"CONNECTION ERROR: could not reach "+c.cfg.Host,
			"Check your network connection and the configured API host")
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.reset()
		return nil, errors.WrapWithCode(err, errors.ErrConnection,
			"CONNECTION ERROR: response was cut short", "")
	}

	resp := parseResponse(httpResp.StatusCode, rawExchange(httpResp, interims, raw))
	if resp.Status > 399 {
		c.log.Debug("request failed: %s returned %d", spec, resp.Status)
		return resp, classify(resp)
	}
	return resp, nil
}

// StatusError carries the HTTP status and body of a failed request.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, body)
}

// classify maps a failed response to an error. SESSION_EXPIRED wraps the
// REQUEST_FAILED error so IsCode matches both.
func classify(resp *Response) error {
	failed := errors.WrapWithCode(&StatusError{Status: resp.Status, Body: resp.Body},
		errors.ErrRequestFailed, "Request failed", "")

	if resp.Status == http.StatusForbidden && resp.Body == SessionNotFoundBody {
		return errors.WrapWithCode(failed, errors.ErrSessionExpired,
			"Session expired",
			"Log in again to refresh your session")
	}
	return failed
}

// encodeBody returns the JSON body for POST, PUT and DELETE requests: the
// payload wrapped under a "data" key. GET requests and empty payloads have
// no body.
func encodeBody(spec RequestSpec) ([]byte, error) {
	if !spec.Method.sendsBody() || spec.Payload == nil {
		return nil, nil
	}
	return json.Marshal(map[string]any{"data": spec.Payload})
}

// EncodeQuery renders a GET payload as a query string with sorted keys.
// Booleans encode as 1 and 0, the form the API has always accepted.
func EncodeQuery(payload any) (string, error) {
	switch p := payload.(type) {
	case nil:
		return "", nil
	case url.Values:
		return p.Encode(), nil
	case map[string]string:
		values := url.Values{}
		for k, v := range p {
			values.Set(k, v)
		}
		return values.Encode(), nil
	case map[string]any:
		values := url.Values{}
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s, err := queryScalar(p[k])
			if err != nil {
				return "", fmt.Errorf("query parameter %q: %w", k, err)
			}
			values.Set(k, s)
		}
		return values.Encode(), nil
	default:
		return "", fmt.Errorf("unsupported query payload type %T", payload)
	}
}

func queryScalar(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
