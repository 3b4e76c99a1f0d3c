package queryir

import (
	"fmt"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
)

// Table is an entry of the descriptor's table set.
type Table struct {
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
}

// Key is the name other clauses use to refer to the table.
func (t Table) Key() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// Field is a selected expression with an optional output name.
type Field struct {
	Expr string `json:"expr"`
	As   string `json:"as,omitempty"`
}

// Name is the column name the field appears under in result rows.
func (f Field) Name() string {
	if f.As != "" {
		return f.As
	}
	if _, col, ok := splitQualified(f.Expr); ok {
		return col
	}
	return f.Expr
}

// String renders "expr" or "expr AS name".
func (f Field) String() string {
	if f.As != "" {
		return f.Expr + " AS " + f.As
	}
	return f.Expr
}

// JoinKind selects inner or outer join semantics.
type JoinKind string

const (
	InnerJoin JoinKind = "JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
)

// Join is the join clause attached to a table key.
type Join struct {
	Kind JoinKind  `json:"kind"`
	On   Predicate `json:"-"`
}

// Options carries clauses that shape the result set without filtering it.
type Options struct {
	GroupBy []string `json:"group_by,omitempty"`
	OrderBy []string `json:"order_by,omitempty"`
}

// Hints describe executor capabilities that change how builders shape a
// descriptor. They never change which rows match.
type Hints struct {
	// ImplicitGroupBy reports whether the backend accepts non-aggregated
	// columns that are functionally dependent on the GROUP BY key.
	ImplicitGroupBy bool
}

// Descriptor is the compiled form of a filter state.
//
// Semantics:
//
//	SELECT <Fields> FROM <Tables joined per Joins> WHERE <Conds AND-ed>
//	GROUP BY <Options.GroupBy>
type Descriptor struct {
	Tables  []Table
	Fields  []Field
	Conds   []Predicate
	Options Options
	Joins   map[string]Join
}

// NewDescriptor creates an empty descriptor.
func NewDescriptor() *Descriptor {
	return &Descriptor{Joins: map[string]Join{}}
}

// HasTable reports whether a table with the given key is present.
func (d *Descriptor) HasTable(key string) bool {
	for _, t := range d.Tables {
		if t.Key() == key {
			return true
		}
	}
	return false
}

// AddTable appends t unless a table with the same key is already present.
func (d *Descriptor) AddTable(t Table) {
	if !d.HasTable(t.Key()) {
		d.Tables = append(d.Tables, t)
	}
}

// AddJoin adds t to the table set with the given join clause. A later join
// on the same key replaces the earlier clause.
func (d *Descriptor) AddJoin(t Table, kind JoinKind, on Predicate) {
	d.AddTable(t)
	if d.Joins == nil {
		d.Joins = map[string]Join{}
	}
	d.Joins[t.Key()] = Join{Kind: kind, On: on}
}

// AddFields appends fields in order.
func (d *Descriptor) AddFields(fields ...Field) {
	d.Fields = append(d.Fields, fields...)
}

// Where appends conditions.
func (d *Descriptor) Where(preds ...Predicate) {
	d.Conds = append(d.Conds, preds...)
}

// CanonicalMap converts the descriptor to the map form accepted by
// ir.MarshalCanonical, for embedding in larger canonical documents.
func (d *Descriptor) CanonicalMap() map[string]any {
	tables := make([]any, len(d.Tables))
	for i, t := range d.Tables {
		m := map[string]any{"name": t.Name}
		if t.Alias != "" {
			m["alias"] = t.Alias
		}
		tables[i] = m
	}

	fields := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = f.String()
	}

	conds := make([]any, len(d.Conds))
	for i, p := range d.Conds {
		conds[i] = canonicalPredicate(p)
	}

	joins := make(map[string]any, len(d.Joins))
	for key, j := range d.Joins {
		joins[key] = map[string]any{
			"kind": string(j.Kind),
			"on":   canonicalPredicate(j.On),
		}
	}

	options := map[string]any{}
	if len(d.Options.GroupBy) > 0 {
		options["group_by"] = d.Options.GroupBy
	}
	if len(d.Options.OrderBy) > 0 {
		options["order_by"] = d.Options.OrderBy
	}

	return map[string]any{
		"tables":  tables,
		"fields":  fields,
		"conds":   conds,
		"options": options,
		"joins":   joins,
	}
}

// Canonical renders the descriptor as canonical JSON.
func (d *Descriptor) Canonical() ([]byte, error) {
	return ir.MarshalCanonical(d.CanonicalMap())
}

// Fingerprint returns a stable hash of the descriptor.
func (d *Descriptor) Fingerprint() (string, error) {
	return ir.Fingerprint(ir.DomainDescriptor, d.CanonicalMap())
}

// String renders a compact human-readable form, mainly for logs and CLI output.
func (d *Descriptor) String() string {
	return fmt.Sprintf("tables=%d fields=%d conds=%d joins=%d group_by=%v",
		len(d.Tables), len(d.Fields), len(d.Conds), len(d.Joins), d.Options.GroupBy)
}

func canonicalPredicate(p Predicate) any {
	if p == nil {
		return nil
	}
	return p.canonical()
}
