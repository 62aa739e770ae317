package utils

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrUnparseable is returned by SmartParse when no strategy produced a value
// that decodes into the target.
var ErrUnparseable = errors.New("input is not JSON, repairable JSON or Hjson")

// RepairJSON fixes common hand-editing mistakes: unquoted keys, single
// quotes, trailing commas, comments and unclosed brackets.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("failed to repair JSON: %w", err)
	}
	return repaired, nil
}

// ParseHJSON converts Hjson (comments, unquoted strings, optional commas) to
// standard JSON. Object keys keep their source order at every depth.
func ParseHJSON(input string) (string, error) {
	// A Node tree keeps objects as OrderedMaps whatever the root type is.
	var root hjson.Node
	if err := hjson.Unmarshal([]byte(input), &root); err != nil {
		return "", fmt.Errorf("failed to parse Hjson: %w", err)
	}
	out, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("failed to re-encode Hjson as JSON: %w", err)
	}
	return string(out), nil
}

// SmartParse decodes input into target, trying strict JSON first, then Hjson,
// then repaired JSON. It returns the JSON text that decoded.
//
// Strict JSON and Hjson both keep object key order, which statement tables
// in object form depend on. Hjson already accepts comments and trailing
// commas, so json-repair only sees input neither can read (unclosed
// brackets, stray text). Its output is rebuilt from a map and the key order
// of objects is lost.
func SmartParse(input string, target interface{}) (string, error) {
	if err := json.Unmarshal([]byte(input), target); err == nil {
		return input, nil
	}

	if converted, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(converted), target); err == nil {
			return converted, nil
		}
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), target); err == nil {
			return repaired, nil
		}
	}

	return "", ErrUnparseable
}
