package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrNotObject is returned when a response holds valid JSON that is not an object.
var ErrNotObject = errors.New("payload is not a JSON object")

// CleanJSONResponse removes markdown code fences and trims the response down to
// the outermost JSON object when one is present.
func CleanJSONResponse(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```JSON", "")
	response = strings.ReplaceAll(response, "```", "")

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		response = response[start : end+1]
	}

	return strings.TrimSpace(response)
}

// ParseJSONObject parses a model response into a generic field map.
// Numbers are kept as float64 as encoding/json does for interface values.
func ParseJSONObject(response string) (map[string]any, error) {
	cleaned := CleanJSONResponse(response)

	var value any
	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON object")
	}

	fields, ok := value.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return fields, nil
}

// Remarshal converts a generic field map into a typed value by round-tripping
// through JSON.
func Remarshal(fields map[string]any, target interface{}) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
