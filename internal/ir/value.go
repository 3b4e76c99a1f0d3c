package ir

import (
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"
)

// IRValue is a sealed interface representing constrained value types.
// Only IRNull, IRString, IRInt, IRBool, IRArray and IRObject implement it.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRNull represents an SQL NULL read back from the executor.
// Descriptor literals never use it.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString represents a string value.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer value. Always int64.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents an ordered list of values.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject maps column or key names to values. Result rows are IRObjects.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// String returns the value under key as a string, converting integers.
// Missing keys and NULLs return "".
func (obj IRObject) String(key string) string {
	switch v := obj[key].(type) {
	case IRString:
		return string(v)
	case IRInt:
		return strconv.FormatInt(int64(v), 10)
	case IRBool:
		return strconv.FormatBool(bool(v))
	default:
		return ""
	}
}

// Int returns the value under key as an int64.
// Strings holding decimal integers are converted (SQLite may return either).
func (obj IRObject) Int(key string) (int64, bool) {
	switch v := obj[key].(type) {
	case IRInt:
		return int64(v), true
	case IRString:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	case IRBool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings compares UTF-8 bytes, which differs for astral runes.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// FromSQL converts a value scanned by database/sql into an IRValue.
// Byte slices become strings; floats are rejected.
func FromSQL(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case int64:
		return IRInt(val), nil
	case int:
		return IRInt(val), nil
	case bool:
		return IRBool(val), nil
	case string:
		return IRString(val), nil
	case []byte:
		return IRString(string(val)), nil
	case float64:
		// Aggregates over integer columns sometimes come back as floats.
		if val == float64(int64(val)) {
			return IRInt(int64(val)), nil
		}
		return nil, fmt.Errorf("non-integral float %v not representable", val)
	default:
		return nil, fmt.Errorf("unsupported SQL value type %T", v)
	}
}

// ToParam converts an IRValue to a database/sql parameter.
func ToParam(v IRValue) (any, error) {
	switch val := v.(type) {
	case IRString:
		return string(val), nil
	case IRInt:
		return int64(val), nil
	case IRBool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case IRNull:
		return nil, nil
	default:
		return nil, fmt.Errorf("%T cannot be used as SQL parameter", v)
	}
}
