package queryir

import (
	"errors"
	"fmt"
	"regexp"
)

// qualifiedRef finds "key.column" references inside field expressions such
// as "MAX(c.wlc_updated)".
var qualifiedRef = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)\b`)

// Validate checks the descriptor invariants and returns every violation
// joined into one error, or nil.
//
// Validate is a pure function with no side effects.
func Validate(d *Descriptor) error {
	if d == nil {
		return errors.New("nil descriptor")
	}
	v := &validator{keys: map[string]bool{}}
	v.validateTables(d.Tables)
	v.validateJoins(d)
	v.validateFields(d.Fields)
	for i, p := range d.Conds {
		v.validatePredicate(fmt.Sprintf("conds[%d]", i), p)
	}
	for i, col := range d.Options.GroupBy {
		v.checkRef(fmt.Sprintf("group_by[%d]", i), col)
	}
	for i, col := range d.Options.OrderBy {
		v.checkRef(fmt.Sprintf("order_by[%d]", i), col)
	}
	return errors.Join(v.errs...)
}

// validator accumulates violations during traversal.
type validator struct {
	keys  map[string]bool
	first string
	errs  []error
}

func (v *validator) addError(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) validateTables(tables []Table) {
	if len(tables) == 0 {
		v.addError("descriptor has no tables")
		return
	}
	v.first = tables[0].Key()
	for i, t := range tables {
		if t.Name == "" {
			v.addError("tables[%d]: empty table name", i)
			continue
		}
		if v.keys[t.Key()] {
			v.addError("tables[%d]: duplicate table key %q", i, t.Key())
		}
		v.keys[t.Key()] = true
	}
}

func (v *validator) validateJoins(d *Descriptor) {
	for key, j := range d.Joins {
		switch {
		case !v.keys[key]:
			v.addError("join %q: table not in table set", key)
		case key == v.first:
			v.addError("join %q: the first table cannot be joined", key)
		}
		if j.Kind != InnerJoin && j.Kind != LeftJoin {
			v.addError("join %q: unknown join kind %q", key, j.Kind)
		}
		if j.On == nil {
			v.addError("join %q: missing join condition", key)
			continue
		}
		v.validatePredicate(fmt.Sprintf("join %q", key), j.On)
	}
}

func (v *validator) validateFields(fields []Field) {
	if len(fields) == 0 {
		v.addError("descriptor selects no fields")
	}
	for i, f := range fields {
		if f.Expr == "" {
			v.addError("fields[%d]: empty expression", i)
			continue
		}
		for _, m := range qualifiedRef.FindAllStringSubmatch(f.Expr, -1) {
			if !v.keys[m[1]] {
				v.addError("fields[%d]: %q references unknown table %q", i, f.Expr, m[1])
			}
		}
	}
}

func (v *validator) validatePredicate(where string, p Predicate) {
	if p == nil {
		v.addError("%s: nil predicate", where)
		return
	}
	switch pred := p.(type) {
	case Equals:
		v.requireValue(where, pred.Column, pred.Value == nil)
	case NotEquals:
		v.requireValue(where, pred.Column, pred.Value == nil)
	case Compare:
		v.requireValue(where, pred.Column, pred.Value == nil)
		if pred.Op != OpGreaterEqual && pred.Op != OpLess {
			v.addError("%s: unknown comparison operator %q", where, pred.Op)
		}
	case HasPrefix:
		v.requireValue(where, pred.Column, false)
	case ColumnEquals, False:
	default:
		v.addError("%s: unknown predicate type %T", where, p)
	}
	for _, col := range Columns(p) {
		v.checkRef(where, col)
	}
}

func (v *validator) requireValue(where, column string, missing bool) {
	if column == "" {
		v.addError("%s: empty column", where)
	}
	if missing {
		v.addError("%s: missing value for column %q", where, column)
	}
}

func (v *validator) checkRef(where, ref string) {
	if key, _, ok := splitQualified(ref); ok && !v.keys[key] {
		v.addError("%s: %q references unknown table %q", where, ref, key)
	}
}
