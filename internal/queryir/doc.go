// Package queryir provides the backend-agnostic query descriptor produced by
// the wikilog query builders.
//
// The Descriptor is the abstraction boundary between filter compilation and
// query execution:
//
//	[ItemQuery / CommentQuery] → [Descriptor] → [Executor (SQL, ...)]
//
// A Descriptor lists the tables to read (an ordered set, each optionally
// aliased), the fields to return, the conditions every returned row must
// satisfy (a logical AND), grouping options and the join clause of every
// table after the first. Table and column names are data, not structure:
// the executor decides how to render them.
//
// SEALED PREDICATES:
//
// Predicate is a sealed interface using the marker method pattern. Only types
// in this package implement it, so executors can switch exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:       // column = value
//	case NotEquals:    // column <> value
//	case Compare:      // column >= value, column < value
//	case HasPrefix:    // column LIKE 'prefix%'
//	case ColumnEquals: // left = right (join keys)
//	case False:        // matches nothing
//	}
//
// INVARIANTS (checked by Validate):
//   - table keys (alias, else name) are unique
//   - every join key names a table other than the first
//   - every qualified reference "key.column" names a table
//   - predicates are non-nil and literal values are set
//
// Descriptors are deterministic: the same filter state yields byte-identical
// canonical JSON, which Fingerprint hashes.
package queryir
