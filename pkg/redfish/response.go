package redfish

import (
	"net/http"
	"net/textproto"
	"net/url"
)

// Response wraps one completed HTTP exchange. It is immutable: the connector
// creates it once per exchange and callers only read it.
type Response struct {
	// Status is the HTTP status code.
	Status int
	// Headers holds response headers keyed by canonical MIME case, so
	// lookups are effectively case-insensitive.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// Record is the plain serializable form of a Response, used to hand an
// asynchronous operation's handle across process boundaries (and by the
// NATS KV cache backend).
type Record struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body,omitempty"`
}

// NewResponse builds a Response with headers normalized to canonical case.
func NewResponse(status int, headers map[string]string, body []byte) *Response {
	normalized := make(map[string]string, len(headers))
	for name, value := range headers {
		normalized[textproto.CanonicalMIMEHeaderKey(name)] = value
	}

	return &Response{
		Status:  status,
		Headers: normalized,
		Body:    body,
	}
}

// Header returns the value of the named header, matching case-insensitively.
func (r *Response) Header(name string) string {
	return r.Headers[textproto.CanonicalMIMEHeaderKey(name)]
}

// Done reports whether the operation behind this response has finished.
// Services signal an operation still in progress with 202 Accepted.
func (r *Response) Done() bool {
	return r.Status != http.StatusAccepted
}

// Monitor returns the address to poll for an in-progress operation: the
// path and query of the Location header, with scheme and host discarded so
// absolute and relative redirect targets behave the same. The second return
// is false for completed responses or when no monitor is advertised.
func (r *Response) Monitor() (string, bool) {
	if r.Done() {
		return "", false
	}

	location := r.Header("Location")
	if location == "" {
		return "", false
	}

	parsed, err := url.Parse(location)
	if err != nil {
		return "", false
	}

	monitor := parsed.Path
	if parsed.RawQuery != "" {
		monitor += "?" + parsed.RawQuery
	}

	if monitor == "" {
		return "", false
	}

	return monitor, true
}

// ToRecord converts the response to its serializable record form.
func (r *Response) ToRecord() Record {
	return Record{
		Status:  r.Status,
		Headers: r.Headers,
		Body:    r.Body,
	}
}

// FromRecord rebuilds a Response from its record form.
func FromRecord(record Record) *Response {
	return NewResponse(record.Status, record.Headers, record.Body)
}
