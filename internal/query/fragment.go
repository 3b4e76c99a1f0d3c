package query

import (
	"github.com/jravasi/mediawiki-wikilog/internal/ir"
	"github.com/jravasi/mediawiki-wikilog/internal/queryir"
	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

// wildcardKey is the title key of a namespace-wide scope ("Blog:*").
const wildcardKey = "*"

// fragment is one immutable filter clause: an optional joined table plus
// the conditions it contributes.
type fragment struct {
	join  *queryir.Table
	kind  queryir.JoinKind
	on    queryir.Predicate
	conds []queryir.Predicate
}

func where(conds ...queryir.Predicate) fragment {
	return fragment{conds: conds}
}

func joinWhere(t queryir.Table, kind queryir.JoinKind, on queryir.Predicate, conds ...queryir.Predicate) fragment {
	return fragment{join: &t, kind: kind, on: on, conds: conds}
}

// fold applies fragments to d in order.
func fold(d *queryir.Descriptor, frags []fragment) {
	for _, f := range frags {
		if f.join != nil {
			d.AddJoin(*f.join, f.kind, f.on)
		}
		d.Where(f.conds...)
	}
}

// wikilogScope restricts items to the wikilog t. A title without a page id
// is matched by name against the wikilog page (w).
func wikilogScope(t wiki.Title) fragment {
	if t.Exists() {
		return where(queryir.Equals{Column: "wlp_parent", Value: ir.IRInt(t.ArticleID)})
	}
	return joinWhere(
		queryir.Table{Name: tablePage, Alias: "w"}, queryir.LeftJoin,
		queryir.ColumnEquals{Left: "w.page_id", Right: "wlp_parent"},
		queryir.Equals{Column: "w.page_namespace", Value: ir.IRInt(int64(t.Namespace))},
		queryir.Equals{Column: "w.page_title", Value: ir.IRString(t.DBKey)},
	)
}

// dateWindow restricts column to the half-open interval of date.
func dateWindow(column string, date *DateSpec) fragment {
	conds := []queryir.Predicate{
		queryir.Compare{Column: column, Op: queryir.OpGreaterEqual, Value: ir.IRString(date.Start)},
	}
	if date.Bounded() {
		conds = append(conds, queryir.Compare{Column: column, Op: queryir.OpLess, Value: ir.IRString(date.End)})
	}
	return where(conds...)
}
