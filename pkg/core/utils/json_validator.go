package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common JSON damage in hand-edited or truncated
// metadata files.
// Supported repairs:
// - Missing quotes around keys
// - Single quotes instead of double quotes
// - Unclosed arrays/objects
// - Trailing commas
// - Comments in JSON
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// ParseHJSONToStruct parses Human-friendly JSON (Hjson) directly into v.
// Hjson supports comments, unquoted keys and strings, and optional commas.
func ParseHJSONToStruct(hjsonData []byte, v interface{}) error {
	if err := hjson.Unmarshal(hjsonData, v); err != nil {
		return fmt.Errorf("HJSON_UNMARSHAL_ERROR: %v", err)
	}
	return nil
}

// SmartParse decodes data into v, trying progressively more lenient parsers:
// 1. Standard JSON
// 2. JSON repair
// 3. Hjson
// It reports whether the input needed anything beyond the standard parser.
func SmartParse(data []byte, v interface{}) (lenient bool, err error) {
	firstErr := json.Unmarshal(data, v)
	if firstErr == nil {
		return false, nil
	}

	if repaired, err := RepairJSON(string(data)); err == nil {
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return true, nil
		}
	}

	if err := ParseHJSONToStruct(data, v); err == nil {
		return true, nil
	}

	return false, fmt.Errorf("SMART_PARSE_FAILED: %w", firstErr)
}
