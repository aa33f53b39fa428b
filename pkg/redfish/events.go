package redfish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openrack-io/redfish-client/internal/sse"
)

// StreamEvents subscribes to the event stream at address and fans events
// out on the returned channel. Each frame's data is a JSON object carrying
// an Events array; every array element becomes one inline Resource. The
// channel closes when the stream ends, errors, or ctx is cancelled.
func (r *Resource) StreamEvents(ctx context.Context, address string) (<-chan *Resource, error) {
	body, err := r.conn.Stream(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", address, err)
	}

	events := make(chan *Resource)

	go func() {
		defer close(events)
		defer func() { _ = body.Close() }()

		reader := sse.NewReader(body)

		for {
			frame, err := reader.Next()
			if err != nil {
				return
			}

			for _, record := range eventRecords(frame.Data) {
				select {
				case events <- NewResourceFromData(r.conn, record, r.options()...):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

// eventRecords extracts the Events array elements from one frame payload.
// Malformed frames are dropped rather than terminating the stream.
func eventRecords(data string) []map[string]interface{} {
	var payload map[string]interface{}

	err := json.Unmarshal([]byte(data), &payload)
	if err != nil {
		return nil
	}

	list, ok := payload["Events"].([]interface{})
	if !ok {
		return nil
	}

	records := make([]map[string]interface{}, 0, len(list))

	for _, element := range list {
		record, ok := element.(map[string]interface{})
		if !ok {
			continue
		}

		records = append(records, record)
	}

	return records
}
