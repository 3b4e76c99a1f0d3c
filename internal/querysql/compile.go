package querysql

import (
	"fmt"
	"strings"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
	"github.com/jravasi/mediawiki-wikilog/internal/queryir"
)

// likeEscape is the escape character used in LIKE patterns.
const likeEscape = `\`

// SQLCompiler compiles query descriptors to parameterized SQL for SQLite.
//
// CRITICAL: ALL queries include ORDER BY for deterministic results.
// CRITICAL: All values are parameterized (never interpolated).
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a descriptor to parameterized SQL.
// Returns (sql, params, error) tuple.
//
// The descriptor is validated first. Tables after the first are joined in
// table order using their join clause; tables without one are CROSS JOINed
// and constrained by the WHERE clause.
func (c *SQLCompiler) Compile(d *queryir.Descriptor) (string, []any, error) {
	if d == nil {
		return "", nil, fmt.Errorf("cannot compile nil descriptor")
	}
	if err := queryir.Validate(d); err != nil {
		return "", nil, fmt.Errorf("invalid descriptor: %w", err)
	}

	var b strings.Builder
	var params []any

	b.WriteString("SELECT ")
	b.WriteString(c.compileFields(d.Fields))

	b.WriteString(" FROM ")
	b.WriteString(tableRef(d.Tables[0]))
	for _, t := range d.Tables[1:] {
		j, ok := d.Joins[t.Key()]
		if !ok {
			b.WriteString(" CROSS JOIN ")
			b.WriteString(tableRef(t))
			continue
		}
		onSQL, onParams, err := c.compilePredicate(j.On)
		if err != nil {
			return "", nil, fmt.Errorf("compile join %q: %w", t.Key(), err)
		}
		fmt.Fprintf(&b, " %s %s ON %s", j.Kind, tableRef(t), onSQL)
		params = append(params, onParams...)
	}

	if len(d.Conds) > 0 {
		parts := make([]string, 0, len(d.Conds))
		for i, p := range d.Conds {
			sql, condParams, err := c.compilePredicate(p)
			if err != nil {
				return "", nil, fmt.Errorf("compile conds[%d]: %w", i, err)
			}
			parts = append(parts, sql)
			params = append(params, condParams...)
		}
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(parts, " AND "))
	}

	if len(d.Options.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(d.Options.GroupBy, ", "))
	}

	// MANDATORY: Always add ORDER BY
	b.WriteString(" ORDER BY ")
	b.WriteString(c.stableOrderKey(d))

	return b.String(), params, nil
}

// compileFields renders the SELECT list in field order.
func (c *SQLCompiler) compileFields(fields []queryir.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}

// stableOrderKey returns the ORDER BY clause for a descriptor.
// Explicit OrderBy wins; otherwise the first field, which is the entity key
// for both item and comment descriptors.
func (c *SQLCompiler) stableOrderKey(d *queryir.Descriptor) string {
	if len(d.Options.OrderBy) > 0 {
		return strings.Join(d.Options.OrderBy, ", ")
	}
	return d.Fields[0].Expr + " ASC"
}

// compilePredicate compiles a predicate to a SQL fragment.
// Returns (sql, params, error).
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return compileBinary(pred.Column, "=", pred.Value)
	case queryir.NotEquals:
		return compileBinary(pred.Column, "<>", pred.Value)
	case queryir.Compare:
		return compileBinary(pred.Column, string(pred.Op), pred.Value)
	case queryir.HasPrefix:
		pattern := escapeLike(pred.Prefix) + "%"
		return fmt.Sprintf("%s LIKE ? ESCAPE '%s'", pred.Column, likeEscape), []any{pattern}, nil
	case queryir.ColumnEquals:
		return fmt.Sprintf("%s = %s", pred.Left, pred.Right), nil, nil
	case queryir.False:
		return "0 = 1", nil, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileBinary compiles "column op ?".
// CRITICAL: Value is NEVER interpolated - always parameterized.
func compileBinary(column, op string, v ir.IRValue) (string, []any, error) {
	param, err := ir.ToParam(v)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}
	return fmt.Sprintf("%s %s ?", column, op), []any{param}, nil
}

func tableRef(t queryir.Table) string {
	if t.Alias != "" {
		return t.Name + " AS " + t.Alias
	}
	return t.Name
}

// escapeLike escapes LIKE wildcards so the prefix matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}
