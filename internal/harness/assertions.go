package harness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the compiled SQL to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	SQL      string // Compiled statement for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.SQL != "" {
		fmt.Fprintf(&buf, "\nSQL:\n  %s\n", e.SQL)
	}
	return buf.String()
}

// assertSQLContains checks that the compiled statement contains the text.
func assertSQLContains(result *Result, assertion Assertion) error {
	if strings.Contains(result.SQL, assertion.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertSQLContains,
		Expected: fmt.Sprintf("SQL containing %q", assertion.Text),
		Actual:   "not found",
		SQL:      result.SQL,
	}
}

// assertTableJoined checks that the descriptor declares the table, by key
// (alias) or by name.
func assertTableJoined(result *Result, assertion Assertion) error {
	if d := result.Descriptor(); d != nil {
		for _, t := range d.Tables {
			if t.Key() == assertion.Table || t.Name == assertion.Table {
				return nil
			}
		}
	}
	return &AssertionError{
		Type:     AssertTableJoined,
		Expected: fmt.Sprintf("table %s in descriptor", assertion.Table),
		Actual:   fmt.Sprintf("tables %v", result.Tables),
		SQL:      result.SQL,
	}
}

// assertRowField checks one column of the row with the given id.
func assertRowField(result *Result, assertion Assertion) error {
	row, ok := result.row(assertion.ID)
	if !ok {
		return &AssertionError{
			Type:     AssertRowField,
			Expected: fmt.Sprintf("row with %s = %d", result.idColumn, assertion.ID),
			Actual:   fmt.Sprintf("ids %v", result.IDs),
			SQL:      result.SQL,
		}
	}

	actual, present := row[assertion.Field]
	if !present {
		return &AssertionError{
			Type:     AssertRowField,
			Expected: fmt.Sprintf("field %s in row %d", assertion.Field, assertion.ID),
			Actual:   fmt.Sprintf("fields %v", row.SortedKeys()),
			SQL:      result.SQL,
		}
	}

	if !fieldEqual(assertion.Value, actual) {
		return &AssertionError{
			Type:     AssertRowField,
			Expected: fmt.Sprintf("row %d %s = %v", assertion.ID, assertion.Field, assertion.Value),
			Actual:   fmt.Sprintf("%v", actual),
			SQL:      result.SQL,
		}
	}
	return nil
}

// fieldEqual compares a YAML-parsed expected value with a scanned column.
// SQLite may return integers for boolean columns and strings for
// timestamps, so comparison falls back to the decimal string form.
func fieldEqual(expected any, actual ir.IRValue) bool {
	switch e := expected.(type) {
	case string:
		obj := ir.IRObject{"v": actual}
		return obj.String("v") == e
	case int:
		return intEqual(int64(e), actual)
	case int64:
		return intEqual(e, actual)
	case bool:
		if b, ok := actual.(ir.IRBool); ok {
			return bool(b) == e
		}
		want := int64(0)
		if e {
			want = 1
		}
		return intEqual(want, actual)
	default:
		return false
	}
}

func intEqual(expected int64, actual ir.IRValue) bool {
	switch a := actual.(type) {
	case ir.IRInt:
		return int64(a) == expected
	case ir.IRString:
		return string(a) == strconv.FormatInt(expected, 10)
	default:
		return false
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertSQLContains:
			err = assertSQLContains(result, assertion)
		case AssertTableJoined:
			err = assertTableJoined(result, assertion)
		case AssertRowField:
			err = assertRowField(result, assertion)
		default:
			err = fmt.Errorf("unknown assertion type: %s", assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion %d (%s): %v", i, assertion.Type, err))
		}
	}
	return errors
}
