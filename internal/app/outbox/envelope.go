package outbox

import (
	"encoding/json"
	"fmt"
)

// DefaultSource is the CloudEvents source attribute of this service.
const DefaultSource = "app://rentcar"

// Envelope wraps a record in a CloudEvents 1.0 JSON document. The event id is
// the record id so consumers can deduplicate redeliveries.
func Envelope(rec EventRecord, source string) ([]byte, map[string]string, error) {
	if source == "" {
		source = DefaultSource
	}
	data := map[string]any{}
	if err := json.Unmarshal(rec.Payload, &data); err != nil {
		return nil, nil, fmt.Errorf("outbox: payload of %s is not a json object: %w", rec.Name, err)
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              rec.ID,
		"type":            rec.Name + ".v1",
		"source":          source,
		"subject":         rec.Aggregate,
		"time":            rec.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := rec.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}
