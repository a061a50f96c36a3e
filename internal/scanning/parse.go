package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchemaJSON only constrains field types. Presence and value checks
// belong to the record validator, which runs on every payload regardless.
const payloadSchemaJSON = `{
  "type": "object",
  "properties": {
    "vendor":   {"type": ["string", "null"]},
    "amount":   {"type": ["number", "null"]},
    "tax":      {"type": ["number", "null"]},
    "currency": {"type": ["string", "null"]},
    "category": {"type": ["string", "null"]},
    "date":     {"type": ["string", "null"]}
  }
}`

var payloadSchema = jsonschema.MustCompileString("receipt-payload.json", payloadSchemaJSON)

// dateLayouts are the alternative layouts models tend to return despite the prompt.
var dateLayouts = []string{
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// stripCodeFence removes a surrounding markdown code block if present
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// parseReceiptJSON parses the JSON response from a model into ReceiptData
func parseReceiptJSON(text string) (*ReceiptData, error) {
	text = stripCodeFence(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}
	if err := payloadSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("response does not match payload schema: %w", err)
	}

	var data ReceiptData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	data.Vendor = strings.TrimSpace(data.Vendor)
	data.Currency = strings.ToUpper(strings.TrimSpace(data.Currency))
	data.Category = strings.TrimSpace(data.Category)
	data.Date = normalizeDate(data.Date)

	return &data, nil
}

// normalizeDate rewrites recognizable dates as YYYY-MM-DD. Anything else is
// returned trimmed but otherwise untouched.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if _, err := time.Parse(time.DateOnly, raw); err == nil {
		return raw
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d.Format(time.DateOnly)
		}
	}
	return raw
}
