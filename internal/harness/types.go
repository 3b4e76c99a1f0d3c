package harness

import (
	"github.com/jravasi/mediawiki-wikilog/internal/ir"
	"github.com/jravasi/mediawiki-wikilog/internal/queryir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: the expectation and every assertion
	// held.
	Pass bool `json:"pass"`

	// Params is the encoded DefaultQuery of the rebuilt filter.
	Params string `json:"params"`

	// IDs are the matched ids in result order.
	IDs []int64 `json:"ids"`

	// Tables lists the descriptor's table keys in declaration order.
	Tables []string `json:"tables"`

	// SQL is the compiled statement.
	SQL string `json:"sql"`

	// Rows are the executed result rows.
	Rows []ir.IRObject `json:"rows,omitempty"`

	// Err is the error the filter was rejected with, if any.
	Err error `json:"-"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	descriptor *queryir.Descriptor
	idColumn   string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		IDs:    []int64{},
		Tables: []string{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Descriptor returns the compiled descriptor; nil when the filter was
// rejected.
func (r *Result) Descriptor() *queryir.Descriptor {
	return r.descriptor
}

// row returns the row with the given item or comment id.
func (r *Result) row(id int64) (ir.IRObject, bool) {
	for _, row := range r.Rows {
		if v, ok := row.Int(r.idColumn); ok && v == id {
			return row, true
		}
	}
	return nil, false
}
