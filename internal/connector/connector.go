// Package connector implements the authenticated request pipeline behind
// the resource graph: transport configuration, default and auth headers,
// response caching, the session/basic authentication state machine, and
// the single 401 re-authentication retry.
package connector

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/openrack-io/redfish-client/internal/constants"
	"github.com/openrack-io/redfish-client/pkg/redfish"
)

// Connector implements redfish.Connector. One instance serves one caller
// with one in-flight request at a time; the cache and auth headers are
// mutable state owned exclusively by it.
type Connector struct {
	baseURL string
	client  *retryablehttp.Client
	cache   redfish.Cache

	defaultHeaders map[string]string
	authHeaders    map[string]string

	auth      redfish.AuthInfo
	sessionID string

	logger    redfish.Logger
	debug     bool
	userAgent string
}

// New creates a connector for the service at baseURL.
func New(baseURL string, opts ...Option) *Connector {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = constants.DefaultRetryMax
	client.RetryWaitMin = constants.DefaultRetryWaitMin
	client.RetryWaitMax = constants.DefaultRetryWaitMax
	client.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	connector := &Connector{
		baseURL: baseURL,
		client:  client,
		cache:   redfish.NewMemoryCache(0),
		defaultHeaders: map[string]string{
			"Accept":        constants.HeaderAccept,
			"OData-Version": constants.HeaderODataVersion,
		},
		authHeaders: map[string]string{},
	}

	for _, opt := range opts {
		opt(connector)
	}

	return connector
}

// Get issues a GET through the pipeline.
func (c *Connector) Get(ctx context.Context, path string) (*redfish.Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil)
}

// Post issues a POST through the pipeline.
func (c *Connector) Post(ctx context.Context, path string, payload interface{}) (*redfish.Response, error) {
	return c.Request(ctx, http.MethodPost, path, payload)
}

// Patch issues a PATCH through the pipeline.
func (c *Connector) Patch(ctx context.Context, path string, payload interface{}) (*redfish.Response, error) {
	return c.Request(ctx, http.MethodPatch, path, payload)
}

// Delete issues a DELETE through the pipeline.
func (c *Connector) Delete(ctx context.Context, path string) (*redfish.Response, error) {
	return c.Request(ctx, http.MethodDelete, path, nil)
}

// Request runs the full pipeline: cache consult for GETs, header union,
// transport, at most one login-and-retry on 401, and cache store for 200
// GETs. Any HTTP status is returned as a Response; only transport failures
// are errors.
func (c *Connector) Request(ctx context.Context, method, path string, payload interface{}) (*redfish.Response, error) {
	if method == http.MethodGet {
		cached, err := c.cache.Get(ctx, path)
		if err == nil {
			return cached, nil
		}
	}

	resp, err := c.perform(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	// One re-authentication attempt, one retry. A 401 on the retried
	// request surfaces to the caller as-is.
	if resp.Status == http.StatusUnauthorized && c.auth.Username != "" {
		err = c.Login(ctx)
		if err != nil {
			return nil, err
		}

		resp, err = c.perform(ctx, method, path, payload)
		if err != nil {
			return nil, err
		}
	}

	if method == http.MethodGet && resp.Status == http.StatusOK {
		_ = c.cache.Set(ctx, path, resp)
	}

	return resp, nil
}

// Reset evicts one cache entry, or the whole cache when path is empty.
func (c *Connector) Reset(ctx context.Context, path string) error {
	if path == "" {
		err := c.cache.Clear(ctx)
		if err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}

		return nil
	}

	err := c.cache.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("evicting cache entry: %w", err)
	}

	return nil
}

// SetAuthInfo stores credentials and selects the auth mode. No I/O occurs
// until Login.
func (c *Connector) SetAuthInfo(info redfish.AuthInfo) {
	c.auth = info
}

// Login establishes authentication: a server-tracked session when a session
// path is configured, per-request basic credentials otherwise. It talks to
// the transport directly, bypassing cache and the 401 retry, so a failing
// login can never recurse into another login.
func (c *Connector) Login(ctx context.Context) error {
	delete(c.authHeaders, "Authorization")
	delete(c.authHeaders, constants.HeaderSessionToken)

	if c.auth.SessionPath != "" {
		return c.sessionLogin(ctx)
	}

	return c.basicLogin(ctx)
}

// Logout deletes any held session and unconditionally removes both auth
// headers. Like Login it bypasses the 401 retry, so logout can never
// trigger a login/logout cycle.
func (c *Connector) Logout(ctx context.Context) error {
	var err error

	if c.sessionID != "" {
		_, err = c.perform(ctx, http.MethodDelete, c.sessionID, nil)
		c.sessionID = ""
	}

	delete(c.authHeaders, "Authorization")
	delete(c.authHeaders, constants.HeaderSessionToken)

	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	return nil
}

// Stream opens a long-lived GET carrying the current headers and returns
// the raw body for event-stream consumption. The shared client's overall
// timeout would sever the stream, so the request goes straight to the
// transport; cancellation is the context's job.
func (c *Connector) Stream(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building stream request: %w", err)
	}

	for name, value := range c.headers() {
		req.Header.Set(name, value)
	}

	req.Header.Set("Accept", "text/event-stream")

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	streamClient := &http.Client{Transport: c.client.HTTPClient.Transport}

	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()

		return nil, fmt.Errorf("%w: stream returned %d", redfish.ErrResourceNotFound, resp.StatusCode)
	}

	return resp.Body, nil
}

// AddHeader sets a default header on all subsequent requests.
func (c *Connector) AddHeader(name, value string) {
	c.defaultHeaders[name] = value
}

// RemoveHeader removes a default header.
func (c *Connector) RemoveHeader(name string) {
	delete(c.defaultHeaders, name)
}

// sessionLogin exchanges credentials for a session token. Success is 201;
// the token arrives in a response header and the session's own id is found
// in the body or, failing that, the Location header.
func (c *Connector) sessionLogin(ctx context.Context) error {
	payload := map[string]string{
		"UserName": c.auth.Username,
		"Password": c.auth.Password,
	}

	resp, err := c.perform(ctx, http.MethodPost, c.auth.SessionPath, payload)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	if resp.Status != http.StatusCreated {
		return fmt.Errorf("%w: session create returned %d", redfish.ErrInvalidCredentials, resp.Status)
	}

	token := resp.Header(constants.HeaderSessionToken)
	if token == "" {
		return redfish.ErrNoSessionToken
	}

	c.authHeaders[constants.HeaderSessionToken] = token
	c.sessionID = sessionObjectID(resp)

	return nil
}

// basicLogin adds the encoded credential header and validates it with a
// probe GET. Anything but 200 removes the header just added and fails.
func (c *Connector) basicLogin(ctx context.Context) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(c.auth.Username + ":" + c.auth.Password))
	c.authHeaders["Authorization"] = "Basic " + encoded

	resp, err := c.perform(ctx, http.MethodGet, c.auth.AuthTestPath, nil)
	if err != nil {
		delete(c.authHeaders, "Authorization")

		return fmt.Errorf("probing credentials: %w", err)
	}

	if resp.Status != http.StatusOK {
		delete(c.authHeaders, "Authorization")

		return fmt.Errorf("%w: probe returned %d", redfish.ErrInvalidCredentials, resp.Status)
	}

	return nil
}

// perform issues one request directly through the transport: no cache, no
// 401 retry. Login, logout, and the basic-auth probe rely on this to avoid
// recursive re-authentication.
func (c *Connector) perform(ctx context.Context, method, path string, payload interface{}) (*redfish.Response, error) {
	var (
		rawBody     interface{}
		contentType string
	)

	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding payload: %w", err)
		}

		rawBody = body
		contentType = constants.HeaderContentTypeJSON
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, rawBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	for name, value := range c.headers() {
		req.Header.Set(name, value)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": method,
			"path":   path,
		})
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method": method,
			"path":   path,
			"status": httpResp.StatusCode,
		})
	}

	return redfish.NewResponse(httpResp.StatusCode, flattenHeaders(httpResp.Header), respBody), nil
}

// headers is the union of default and auth headers for one request.
func (c *Connector) headers() map[string]string {
	merged := make(map[string]string, len(c.defaultHeaders)+len(c.authHeaders))

	for name, value := range c.defaultHeaders {
		merged[name] = value
	}

	for name, value := range c.authHeaders {
		merged[name] = value
	}

	return merged
}

// sessionObjectID pulls the new session's own id out of the create
// response: the body's id field when present, the Location header path
// otherwise.
func sessionObjectID(resp *redfish.Response) string {
	var body map[string]interface{}

	if json.Unmarshal(resp.Body, &body) == nil {
		if id, ok := body[redfish.ODataIDKey].(string); ok && id != "" {
			return id
		}
	}

	location := resp.Header("Location")
	if location == "" {
		return ""
	}

	parsed, err := url.Parse(location)
	if err != nil {
		return ""
	}

	id := parsed.Path
	if parsed.RawQuery != "" {
		id += "?" + parsed.RawQuery
	}

	return id
}

func flattenHeaders(headers http.Header) map[string]string {
	flat := make(map[string]string, len(headers))

	for name, values := range headers {
		if len(values) > 0 {
			flat[name] = values[0]
		}
	}

	return flat
}
