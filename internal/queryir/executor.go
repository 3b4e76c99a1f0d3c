package queryir

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
)

// ErrRowsConsumed is yielded when a RowSeq is ranged over a second time.
var ErrRowsConsumed = errors.New("row sequence already consumed")

// RowSeq is a finite, one-shot sequence of result rows. Rows are keyed by
// field name (Field.Name). Iteration stops at the first error.
type RowSeq = iter.Seq2[ir.IRObject, error]

// Executor runs descriptors. Implementations own dialect, join order and
// index usage; the descriptor only fixes which rows match.
type Executor interface {
	Hints() Hints
	Select(ctx context.Context, d *Descriptor) (RowSeq, error)
}

// OnceRows wraps seq so that only the first range over it yields rows.
// Later ranges yield a single ErrRowsConsumed.
func OnceRows(seq RowSeq) RowSeq {
	var used atomic.Bool
	return func(yield func(ir.IRObject, error) bool) {
		if used.Swap(true) {
			yield(nil, ErrRowsConsumed)
			return
		}
		seq(yield)
	}
}

// Collect drains seq into a slice.
func Collect(seq RowSeq) ([]ir.IRObject, error) {
	var rows []ir.IRObject
	for row, err := range seq {
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
