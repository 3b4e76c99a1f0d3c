package store

import (
	"encoding/json"
	"fmt"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
)

// marshalNames converts a name list to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	data, err := ir.MarshalCanonical(names)
	if err != nil {
		return "", fmt.Errorf("marshal names: %w", err)
	}
	return string(data), nil
}

// unmarshalNames parses a JSON TEXT name list.
// Empty text is an empty list.
func unmarshalNames(text string) ([]string, error) {
	if text == "" {
		return []string{}, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(text), &names); err != nil {
		return nil, fmt.Errorf("unmarshal names: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
