package redfish

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Static errors for err113 compliance.
var (
	ErrNATSBucketRequired = errors.New("NATS bucket name is required")
)

// NATSKVConfig configures the NATS JetStream KV cache backend.
type NATSKVConfig struct {
	// URL is the NATS server URL (e.g. nats://localhost:4222).
	URL string

	// Bucket is the KV bucket name. Created if it does not exist.
	Bucket string

	// TTL is the entry time-to-live applied at bucket creation. Zero means
	// entries never expire.
	TTL time.Duration

	// CredsFile is an optional NATS credentials file.
	CredsFile string
}

// NATSKVCache stores responses in a NATS JetStream key-value bucket so a
// cache can be shared across processes. Responses cross the wire in their
// Record form.
type NATSKVCache struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSKVCache connects to NATS and binds (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config.Bucket == "" {
		return nil, ErrNATSBucketRequired
	}

	var opts []nats.Option
	if config.CredsFile != "" {
		opts = append(opts, nats.UserCredentials(config.CredsFile))
	}

	url := config.URL
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("getting JetStream context: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: config.Bucket,
			TTL:    config.TTL,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("binding KV bucket: %w", err)
	}

	return &NATSKVCache{conn: conn, kv: kv}, nil
}

// Get retrieves and decodes a cached response record.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*Response, error) {
	entry, err := c.kv.Get(encodeCacheKey(key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}

	if err != nil {
		return nil, fmt.Errorf("getting cache entry: %w", err)
	}

	var record Record

	err = json.Unmarshal(entry.Value(), &record)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}

	return FromRecord(record), nil
}

// Set stores a response record.
func (c *NATSKVCache) Set(ctx context.Context, key string, resp *Response) error {
	data, err := json.Marshal(resp.ToRecord())
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	_, err = c.kv.Put(encodeCacheKey(key), data)
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}

	return nil
}

// Delete removes an entry. Absent keys are a no-op.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Purge(encodeCacheKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting cache entry: %w", err)
	}

	return nil
}

// Clear removes all entries from the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("listing cache keys: %w", err)
	}

	for _, key := range keys {
		err = c.kv.Purge(key)
		if err != nil {
			return fmt.Errorf("purging cache entry: %w", err)
		}
	}

	return nil
}

// Has checks whether a key is present.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.kv.Get(encodeCacheKey(key))

	return err == nil
}

// Close drains the underlying NATS connection.
func (c *NATSKVCache) Close() {
	c.conn.Close()
}

// encodeCacheKey maps an arbitrary request path (slashes, query strings) to
// the restricted KV key character set.
func encodeCacheKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}
