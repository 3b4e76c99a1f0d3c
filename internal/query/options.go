package query

import (
	"fmt"
	"maps"
	"sort"
)

// Declared option keys.
const (
	// OptLastCommentTimestamp makes item queries aggregate the most recent
	// comment update per item. Used by syndication feeds.
	OptLastCommentTimestamp = "last-comment-timestamp"

	// OptIncludeItem makes comment queries return the commented item's data.
	OptIncludeItem = "include-item"
)

// OptionBag stores per-builder options over a table of declared defaults.
// Each builder owns its bag; bags are never shared.
type OptionBag struct {
	defaults map[string]any
	values   map[string]any
}

// NewOptionBag creates a bag with the given declared defaults.
func NewOptionBag(defaults map[string]any) *OptionBag {
	return &OptionBag{
		defaults: maps.Clone(defaults),
		values:   map[string]any{},
	}
}

// Set stores an override for key.
func (o *OptionBag) Set(key string, value any) {
	o.values[key] = value
}

// Enable sets key to true.
func (o *OptionBag) Enable(key string) {
	o.Set(key, true)
}

// SetAll merges options into the bag. A string enables that single key; a
// map is merged; nil is a no-op. Any other type is an INVALID_ARGUMENT.
func (o *OptionBag) SetAll(opts any) error {
	switch v := opts.(type) {
	case nil:
	case string:
		o.Enable(v)
	case map[string]any:
		maps.Copy(o.values, v)
	case map[string]bool:
		for k, b := range v {
			o.values[k] = b
		}
	default:
		return invalidArgument("SetOptions", "invalid options value of type %T", opts)
	}
	return nil
}

// Get returns the override for key, else its declared default.
func (o *OptionBag) Get(key string) (any, error) {
	if v, ok := o.values[key]; ok {
		return v, nil
	}
	if v, ok := o.defaults[key]; ok {
		return v, nil
	}
	return nil, &Error{Code: ErrCodeUnknownOption, Op: "GetOption", Message: fmt.Sprintf("option %q is not declared", key)}
}

// Bool returns a boolean option. Non-boolean values are INVALID_ARGUMENT.
func (o *OptionBag) Bool(key string) (bool, error) {
	v, err := o.Get(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, invalidArgument("GetOption", "option %q holds %T, not bool", key, v)
	}
	return b, nil
}

// Keys returns the declared and overridden keys in sorted order.
func (o *OptionBag) Keys() []string {
	seen := maps.Clone(o.defaults)
	maps.Copy(seen, o.values)
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
