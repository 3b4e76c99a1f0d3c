package queryir

import (
	"fmt"
	"strings"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
)

// Predicate is a row condition.
//
// This is a sealed interface - only types in this package implement it.
// The marker method returns the canonical map form used in fingerprints.
type Predicate interface {
	canonical() map[string]any
	fmt.Stringer
}

// Equals matches rows whose column equals a literal.
//
//	<column> = <value>
type Equals struct {
	Column string
	Value  ir.IRValue
}

func (p Equals) canonical() map[string]any {
	return map[string]any{"op": "eq", "column": p.Column, "value": p.Value}
}

func (p Equals) String() string { return fmt.Sprintf("%s = %s", p.Column, literal(p.Value)) }

// NotEquals matches rows whose column differs from a literal.
//
//	<column> <> <value>
type NotEquals struct {
	Column string
	Value  ir.IRValue
}

func (p NotEquals) canonical() map[string]any {
	return map[string]any{"op": "ne", "column": p.Column, "value": p.Value}
}

func (p NotEquals) String() string { return fmt.Sprintf("%s <> %s", p.Column, literal(p.Value)) }

// CompareOp is an ordering operator.
type CompareOp string

const (
	OpGreaterEqual CompareOp = ">="
	OpLess         CompareOp = "<"
)

// Compare matches rows whose column orders against a literal.
// Timestamps compare as zero-padded strings.
type Compare struct {
	Column string
	Op     CompareOp
	Value  ir.IRValue
}

func (p Compare) canonical() map[string]any {
	return map[string]any{"op": string(p.Op), "column": p.Column, "value": p.Value}
}

func (p Compare) String() string {
	return fmt.Sprintf("%s %s %s", p.Column, p.Op, literal(p.Value))
}

// HasPrefix matches rows whose column starts with Prefix.
//
//	<column> LIKE '<prefix>%'
type HasPrefix struct {
	Column string
	Prefix string
}

func (p HasPrefix) canonical() map[string]any {
	return map[string]any{"op": "prefix", "column": p.Column, "value": p.Prefix}
}

func (p HasPrefix) String() string {
	return fmt.Sprintf("%s LIKE %s", p.Column, literal(ir.IRString(p.Prefix+"%")))
}

// ColumnEquals relates two columns; used for join clauses.
type ColumnEquals struct {
	Left  string
	Right string
}

func (p ColumnEquals) canonical() map[string]any {
	return map[string]any{"op": "col_eq", "left": p.Left, "right": p.Right}
}

func (p ColumnEquals) String() string { return p.Left + " = " + p.Right }

// False matches no row. Builders append it when the filter state is known
// to be unsatisfiable.
type False struct{}

func (False) canonical() map[string]any { return map[string]any{"op": "false"} }

func (False) String() string { return "0 = 1" }

// literal renders a value for display only. Executors must bind values as
// parameters instead.
func literal(v ir.IRValue) string {
	switch val := v.(type) {
	case ir.IRString:
		return "'" + strings.ReplaceAll(string(val), "'", "''") + "'"
	case ir.IRInt:
		return fmt.Sprintf("%d", val)
	case ir.IRBool:
		if val {
			return "1"
		}
		return "0"
	case nil, ir.IRNull:
		return "NULL"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Columns returns the column references a predicate reads.
func Columns(p Predicate) []string {
	switch pred := p.(type) {
	case Equals:
		return []string{pred.Column}
	case NotEquals:
		return []string{pred.Column}
	case Compare:
		return []string{pred.Column}
	case HasPrefix:
		return []string{pred.Column}
	case ColumnEquals:
		return []string{pred.Left, pred.Right}
	default:
		return nil
	}
}

// splitQualified splits "key.column" references.
func splitQualified(ref string) (key, column string, ok bool) {
	key, column, ok = strings.Cut(ref, ".")
	if !ok || key == "" || column == "" || !isIdent(key) || !isIdent(column) {
		return "", "", false
	}
	return key, column, true
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
