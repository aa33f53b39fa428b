package redfish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openrack-io/redfish-client/internal/constants"
)

// ODataIDKey is the service-defined identifier field. A JSON object
// consisting solely of this key is a cross-reference: it stands in for a
// resource fetchable at that address.
const ODataIDKey = "@odata.id"

// Resource wraps a JSON sub-tree of the service's document graph. Field
// values materialize lazily: inline objects wrap without network access,
// cross-references fetch through the shared connector, arrays apply the
// rule element-wise. Resources are rebuilt on every access; repeated
// resolution of the same cross-reference is absorbed by the connector-level
// response cache, not by a per-Resource identity map.
type Resource struct {
	conn    Connector
	raw     map[string]interface{}
	headers map[string]string

	strict      bool
	waitRetries int
	waitDelay   time.Duration
}

// ResourceOption configures a Resource at construction. Options propagate
// to every Resource materialized from it.
type ResourceOption func(*Resource)

// WithStrictNavigation selects the navigation policy: strict mode returns
// ErrMissingKey/ErrIndexOutOfRange for invalid access, tolerant mode (the
// default) returns an absent value.
func WithStrictNavigation(strict bool) ResourceOption {
	return func(r *Resource) {
		r.strict = strict
	}
}

// WithWaitDefaults sets the default monitor poll budget and delay used by
// Wait.
func WithWaitDefaults(retries int, delay time.Duration) ResourceOption {
	return func(r *Resource) {
		if retries > 0 {
			r.waitRetries = retries
		}

		if delay > 0 {
			r.waitDelay = delay
		}
	}
}

// NewResourceFromData wraps an inline JSON object. No network access occurs.
func NewResourceFromData(conn Connector, data map[string]interface{}, opts ...ResourceOption) *Resource {
	resource := &Resource{
		conn:        conn,
		raw:         data,
		headers:     map[string]string{},
		waitRetries: constants.DefaultWaitRetries,
		waitDelay:   constants.DefaultWaitDelay,
	}

	for _, opt := range opts {
		opt(resource)
	}

	return resource
}

// NewResourceFromID fetches the resource at id and wraps its body. Only a
// 200 response is accepted; anything else yields a NotFoundError.
//
// An id may carry a fragment ("base#/a/0/b"): the fragment is a
// slash-separated path into the fetched body, numeric segments indexing
// arrays and other segments indexing object fields, and only the addressed
// sub-tree becomes the resource's content. The full id, fragment included,
// is written back into the content's id field so re-navigation round-trips.
func NewResourceFromID(ctx context.Context, conn Connector, id string, opts ...ResourceOption) (*Resource, error) {
	base, fragment := splitFragment(id)

	resp, err := conn.Get(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", base, err)
	}

	if resp.Status != http.StatusOK {
		return nil, &NotFoundError{ID: id, Status: resp.Status}
	}

	var body map[string]interface{}

	err = json.Unmarshal(resp.Body, &body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", base, err)
	}

	raw := body
	if fragment != "" {
		raw, err = resolveFragment(body, fragment)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", id, err)
		}
	}

	raw[ODataIDKey] = id

	resource := NewResourceFromData(conn, raw, opts...)
	resource.headers = resp.Headers

	return resource, nil
}

// Raw returns the wrapped JSON object.
func (r *Resource) Raw() map[string]interface{} {
	return r.raw
}

// Headers returns the response headers of the fetch that produced this
// resource, empty for inline data.
func (r *Resource) Headers() map[string]string {
	return r.headers
}

// ID returns the resource's own id, or "" for pure-data resources.
func (r *Resource) ID() string {
	id, _ := r.raw[ODataIDKey].(string)

	return id
}

// Field looks up key and materializes its value: a *Resource for objects
// (fetched first when the object is a cross-reference), a slice with the
// same rule applied element-wise for arrays, the literal otherwise. A
// missing key returns nil in tolerant mode and ErrMissingKey in strict
// mode.
func (r *Resource) Field(ctx context.Context, key string) (interface{}, error) {
	value, ok := r.raw[key]
	if !ok {
		if r.strict {
			return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
		}

		return nil, nil
	}

	return r.materialize(ctx, value)
}

// String returns the raw string value under key, or "" when absent or not
// a string. It never fetches.
func (r *Resource) String(key string) string {
	value, _ := r.raw[key].(string)

	return value
}

// Dig follows a path of keys, short-circuiting on the first absent value.
// Numeric keys index into arrays produced along the way.
func (r *Resource) Dig(ctx context.Context, keys ...string) (interface{}, error) {
	var current interface{} = r

	for _, key := range keys {
		switch node := current.(type) {
		case *Resource:
			value, err := node.Field(ctx, key)
			if err != nil {
				return nil, err
			}

			if value == nil {
				return nil, nil
			}

			current = value

		case []interface{}:
			index, err := strconv.Atoi(key)
			if err != nil || index < 0 || index >= len(node) {
				if r.strict {
					return nil, fmt.Errorf("%w: %s", ErrIndexOutOfRange, key)
				}

				return nil, nil
			}

			current = node[index]

		default:
			if r.strict {
				return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
			}

			return nil, nil
		}
	}

	return current, nil
}

// RequestOptions select the target and payload of a request verb issued
// from a resource. A nil options value targets the resource's own id.
type RequestOptions struct {
	// Field names the raw key holding the target address. Defaults to the
	// id field.
	Field string
	// Path is an explicit target address and takes precedence over Field.
	Path string
	// Payload is JSON-encoded into the request body when non-nil.
	Payload interface{}
}

// Get issues a GET against the resolved target.
func (r *Resource) Get(ctx context.Context, opts *RequestOptions) (*Response, error) {
	target, err := r.resolveTarget(opts)
	if err != nil {
		return nil, err
	}

	resp, err := r.conn.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", target, err)
	}

	return resp, nil
}

// Post issues a POST against the resolved target.
func (r *Resource) Post(ctx context.Context, opts *RequestOptions) (*Response, error) {
	target, err := r.resolveTarget(opts)
	if err != nil {
		return nil, err
	}

	resp, err := r.conn.Post(ctx, target, payloadOf(opts))
	if err != nil {
		return nil, fmt.Errorf("posting to %s: %w", target, err)
	}

	return resp, nil
}

// Patch issues a PATCH against the resolved target.
func (r *Resource) Patch(ctx context.Context, opts *RequestOptions) (*Response, error) {
	target, err := r.resolveTarget(opts)
	if err != nil {
		return nil, err
	}

	resp, err := r.conn.Patch(ctx, target, payloadOf(opts))
	if err != nil {
		return nil, fmt.Errorf("patching %s: %w", target, err)
	}

	return resp, nil
}

// Delete issues a DELETE against the resolved target.
func (r *Resource) Delete(ctx context.Context, opts *RequestOptions) (*Response, error) {
	target, err := r.resolveTarget(opts)
	if err != nil {
		return nil, err
	}

	resp, err := r.conn.Delete(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("deleting %s: %w", target, err)
	}

	return resp, nil
}

// Wait polls an asynchronous operation with the resource's default budget.
// See WaitWith.
func (r *Resource) Wait(ctx context.Context, resp *Response) (*Response, error) {
	return r.WaitWith(ctx, resp, r.waitRetries, r.waitDelay)
}

// WaitWith returns resp unchanged, with no I/O, when the operation already
// completed, so callers never branch on synchronicity. Otherwise it polls
// the monitor address up to retries times, pausing delay between polls, and
// returns the first completed response. Exhausting the budget yields
// ErrAsyncTimeout; the caller may re-poll with a fresh budget.
func (r *Resource) WaitWith(ctx context.Context, resp *Response, retries int, delay time.Duration) (*Response, error) {
	if resp.Done() {
		return resp, nil
	}

	monitor, ok := resp.Monitor()
	if !ok {
		return nil, ErrNoMonitor
	}

	for attempt := 0; attempt < retries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", monitor, ctx.Err())
		case <-time.After(delay):
		}

		polled, err := r.conn.Get(ctx, monitor)
		if err != nil {
			return nil, fmt.Errorf("polling %s: %w", monitor, err)
		}

		if polled.Done() {
			return polled, nil
		}

		if next, ok := polled.Monitor(); ok {
			monitor = next
		}
	}

	return nil, fmt.Errorf("%w: %s still running after %d polls", ErrAsyncTimeout, monitor, retries)
}

// Refresh evicts the connector's cache entry for this resource's id and
// re-fetches, replacing content and headers in place so existing references
// observe fresh data. Resources without a network id are left untouched.
func (r *Resource) Refresh(ctx context.Context) error {
	id := r.ID()
	if id == "" {
		return nil
	}

	base, _ := splitFragment(id)

	err := r.conn.Reset(ctx, base)
	if err != nil {
		return fmt.Errorf("evicting %s: %w", base, err)
	}

	fresh, err := NewResourceFromID(ctx, r.conn, id)
	if err != nil {
		return fmt.Errorf("refreshing %s: %w", id, err)
	}

	r.raw = fresh.raw
	r.headers = fresh.headers

	return nil
}

// materialize applies the lazy wrapping rule to one raw value.
func (r *Resource) materialize(ctx context.Context, value interface{}) (interface{}, error) {
	switch typed := value.(type) {
	case map[string]interface{}:
		if id, ok := crossReference(typed); ok {
			return NewResourceFromID(ctx, r.conn, id, r.options()...)
		}

		return NewResourceFromData(r.conn, typed, r.options()...), nil

	case []interface{}:
		materialized := make([]interface{}, len(typed))

		for i, element := range typed {
			wrapped, err := r.materialize(ctx, element)
			if err != nil {
				return nil, err
			}

			materialized[i] = wrapped
		}

		return materialized, nil

	default:
		return value, nil
	}
}

func (r *Resource) options() []ResourceOption {
	return []ResourceOption{
		WithStrictNavigation(r.strict),
		WithWaitDefaults(r.waitRetries, r.waitDelay),
	}
}

func (r *Resource) resolveTarget(opts *RequestOptions) (string, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	if opts.Path != "" {
		return opts.Path, nil
	}

	field := opts.Field
	if field == "" {
		field = ODataIDKey
	}

	target, _ := r.raw[field].(string)
	if target == "" {
		return "", fmt.Errorf("%w: field %q", ErrNoAddressableID, field)
	}

	return target, nil
}

func payloadOf(opts *RequestOptions) interface{} {
	if opts == nil {
		return nil
	}

	return opts.Payload
}

// crossReference reports whether an object consists solely of an id field.
func crossReference(data map[string]interface{}) (string, bool) {
	if len(data) != 1 {
		return "", false
	}

	id, ok := data[ODataIDKey].(string)

	return id, ok
}

// splitFragment separates "base#fragment" ids.
func splitFragment(id string) (string, string) {
	base, fragment, _ := strings.Cut(id, "#")

	return base, fragment
}

// resolveFragment walks a slash-separated path into body. The addressed
// sub-tree must itself be an object, since the full id is written back into
// it afterwards.
func resolveFragment(body map[string]interface{}, fragment string) (map[string]interface{}, error) {
	segments := strings.Split(strings.Trim(fragment, "/"), "/")
	if len(segments) > constants.MaxFragmentDepth {
		return nil, fmt.Errorf("%w: %d segments exceeds depth limit", ErrFragmentNotFound, len(segments))
	}

	var current interface{} = body

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		switch node := current.(type) {
		case map[string]interface{}:
			value, ok := node[segment]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrFragmentNotFound, segment)
			}

			current = value

		case []interface{}:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, fmt.Errorf("%w: %s", ErrFragmentNotFound, segment)
			}

			current = node[index]

		default:
			return nil, fmt.Errorf("%w: %s", ErrFragmentNotFound, segment)
		}
	}

	object, ok := current.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: fragment does not address an object", ErrFragmentNotFound)
	}

	return object, nil
}
