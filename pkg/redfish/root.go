package redfish

import (
	"context"
	"fmt"
	"sort"
)

// Root is the service root resource. It is an ordinary Resource that
// additionally orchestrates login and logout against the connector and
// offers a safe find-by-id entry point.
type Root struct {
	*Resource
}

// NewRoot wraps a fetched service root resource.
func NewRoot(resource *Resource) *Root {
	return &Root{Resource: resource}
}

// Login authenticates the connector. When the service root advertises a
// session collection (Links.Sessions), a server-tracked session is created;
// otherwise basic authentication is validated against the first networked
// sibling resource, which serves as the probe target.
func (r *Root) Login(ctx context.Context, username, password string) error {
	info := AuthInfo{
		Username:     username,
		Password:     password,
		AuthTestPath: r.authTestPath(),
		SessionPath:  r.sessionPath(),
	}

	r.conn.SetAuthInfo(info)

	err := r.conn.Login(ctx)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	return nil
}

// Logout tears down the connector's authentication state.
func (r *Root) Logout(ctx context.Context) error {
	err := r.conn.Logout(ctx)
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}

	return nil
}

// Fetch constructs the resource at id, propagating a NotFoundError when the
// service does not answer with success.
func (r *Root) Fetch(ctx context.Context, id string) (*Resource, error) {
	return NewResourceFromID(ctx, r.conn, id, r.options()...)
}

// Find is the non-failing variant of Fetch: a missing resource yields
// (nil, nil) instead of an error.
func (r *Root) Find(ctx context.Context, id string) (*Resource, error) {
	resource, err := r.Fetch(ctx, id)
	if IsNotFound(err) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return resource, nil
}

// sessionPath reads the session collection reference out of the raw root
// document. Navigating via Field would fetch the cross-reference, so the
// raw maps are inspected directly.
func (r *Root) sessionPath() string {
	links, ok := r.raw["Links"].(map[string]interface{})
	if !ok {
		return ""
	}

	sessions, ok := links["Sessions"].(map[string]interface{})
	if !ok {
		return ""
	}

	path, _ := sessions[ODataIDKey].(string)

	return path
}

// authTestPath picks the id of the first root field carrying an id: any
// networked sibling resource will do as a basic-auth probe. Keys are walked
// in sorted order so the choice is deterministic.
func (r *Root) authTestPath() string {
	keys := make([]string, 0, len(r.raw))
	for key := range r.raw {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		value, ok := r.raw[key].(map[string]interface{})
		if !ok {
			continue
		}

		if id, ok := value[ODataIDKey].(string); ok && id != "" {
			return id
		}
	}

	return ""
}
