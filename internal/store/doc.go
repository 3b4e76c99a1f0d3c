// Package store is the SQLite reference executor for wikilog query
// descriptors.
//
// It holds the tables the descriptors name:
//   - page: Pages of wikilogs, items and comments
//   - categorylinks: Item category membership
//   - wikilog_wikilogs: Wikilog front pages
//   - wikilog_posts: Wikilog items with publication state
//   - wikilog_authors, wikilog_tags: Item authors and tags
//   - wikilog_comments: Comments with thread path and moderation status
//
// # Executor Contract
//
// Select compiles a descriptor with querysql and streams rows as a one-shot
// queryir.RowSeq. The query runs when the sequence is first ranged over,
// and the connection is released when iteration stops.
//
// SQLite accepts non-aggregated columns that depend on the GROUP BY key,
// so Hints reports ImplicitGroupBy.
//
// The store also implements wiki.Lookup, mapping titles to page ids.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
