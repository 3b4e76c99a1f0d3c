package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
	"github.com/jravasi/mediawiki-wikilog/internal/query"
	"github.com/jravasi/mediawiki-wikilog/internal/queryir"
	"github.com/jravasi/mediawiki-wikilog/internal/querysql"
)

// QueryResult is the output of the items and comments commands.
type QueryResult struct {
	Kind        string          `json:"kind"` // "items" | "comments"
	Params      string          `json:"params"`
	Fingerprint string          `json:"fingerprint"`
	Descriptor  json.RawMessage `json:"descriptor"`
	SQL         string          `json:"sql"`
	Args        []any           `json:"args"`
	Executed    bool            `json:"executed"`
	Rows        []ir.IRObject   `json:"rows,omitempty"`

	columns []string
}

// Row columns shown in text mode.
var (
	itemColumns    = []string{"wlp_page", "wlp_title", "wlp_pubdate", "wlp_publish"}
	commentColumns = []string{"wlc_id", "wlc_thread", "wlc_user_text", "wlc_status", "wlc_timestamp"}
)

// compiler is implemented by query.ItemQuery and query.CommentQuery.
type compiler interface {
	Compile(hints queryir.Hints) (*queryir.Descriptor, error)
	DefaultQuery() *query.Params
}

// buildResult compiles q and, when the session has a database, executes it.
func buildResult(ctx context.Context, sess *session, kind string, q compiler, formatter *OutputFormatter) (*QueryResult, error) {
	d, err := q.Compile(sess.hints)
	if err != nil {
		return nil, fail(formatter, ExitCommandError, ErrCodeCompile, "compiling descriptor", err)
	}
	canonical, err := d.Canonical()
	if err != nil {
		return nil, fail(formatter, ExitCommandError, ErrCodeCompile, "encoding descriptor", err)
	}
	fingerprint, err := d.Fingerprint()
	if err != nil {
		return nil, fail(formatter, ExitCommandError, ErrCodeCompile, "fingerprinting descriptor", err)
	}
	sql, args, err := querysql.NewSQLCompiler().Compile(d)
	if err != nil {
		return nil, fail(formatter, ExitCommandError, ErrCodeCompile, "compiling SQL", err)
	}
	if args == nil {
		args = []any{}
	}

	res := &QueryResult{
		Kind:        kind,
		Params:      q.DefaultQuery().Encode(),
		Fingerprint: fingerprint,
		Descriptor:  canonical,
		SQL:         sql,
		Args:        args,
		columns:     itemColumns,
	}
	if kind == "comments" {
		res.columns = commentColumns
	}
	formatter.VerboseLog("Descriptor %s", d)

	if sess.store == nil {
		return res, nil
	}
	seq, err := sess.store.Select(ctx, d)
	if err != nil {
		return nil, fail(formatter, ExitFailure, ErrCodeExecute, "executing query", err)
	}
	rows, err := queryir.Collect(seq)
	if err != nil {
		return nil, fail(formatter, ExitFailure, ErrCodeExecute, "reading rows", err)
	}
	res.Executed = true
	res.Rows = rows
	return res, nil
}

// WriteText implements TextWriter.
func (r *QueryResult) WriteText(w io.Writer) error {
	heading(w, "Parameters")
	if r.Params == "" {
		fmt.Fprintln(w, "  (none)")
	} else {
		fmt.Fprintf(w, "  ?%s\n", r.Params)
	}

	heading(w, "Descriptor")
	fmt.Fprintf(w, "  %s\n", r.Descriptor)
	fmt.Fprintf(w, "  fingerprint %s\n", r.Fingerprint)

	heading(w, "SQL")
	fmt.Fprintf(w, "  %s\n", r.SQL)
	fmt.Fprintf(w, "  args %v\n", r.Args)

	if !r.Executed {
		return nil
	}
	heading(w, fmt.Sprintf("Rows (%d)", len(r.Rows)))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, col := range r.columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)
	for _, row := range r.Rows {
		for i, col := range r.columns {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, row.String(col))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
