// Package harness runs filter scenarios end to end against a seeded store.
//
// A scenario names a fixture, a listing kind and the request parameters of
// one filter. The harness loads the fixture into a fresh in-memory SQLite
// store, rebuilds the query with query.ParseItemQuery or
// query.ParseCommentQuery, compiles it with the store's hints and executes
// it. The matched row ids, the reproduced parameters and any assertions are
// then checked against the scenario's expectations.
//
// # Scenario Format
//
//	name: items_by_author
//	description: "Published items of one author"
//	fixture: ../fixtures/blog.yaml
//	kind: items
//	clock: "2024-03-15"
//	params:
//	  wikilog: "Blog:Main"
//	  author: Alice
//	options:
//	  last-comment-timestamp: true
//	expect:
//	  ids: [11, 13]
//	  params: "wikilog=Blog%3AMain&author=Alice"
//	assertions:
//	  - type: table_joined
//	    table: wikilog_authors
//	  - type: row_field
//	    id: 11
//	    field: wlp_title
//	    value: "Main/First_post"
//
// The fixture path is relative to the scenario file. A scenario that
// expects the filter to be rejected sets expect.error to a substring of the
// error message instead of expect.ids.
//
// # Fixture Format
//
//	enable_tags: true
//	namespaces: {Blog: 100}
//	wikilogs:
//	  - {id: 10, title: "Blog:Main"}
//	items:
//	  - {id: 11, title: "Blog:Main/First_post", wikilog: 10, publish: true,
//	     pubdate: "20240105120000", authors: [Alice], tags: [go]}
//	comments:
//	  - {id: 1, item: 11, thread: "00000001", user: Bob, status: OK,
//	     timestamp: "20240106100000", page: "Blog_talk:Main/First_post/c1", page_id: 111}
//
// # Assertion Types
//
//   - sql_contains: the compiled SQL contains text
//   - table_joined: the descriptor joins table (by name or alias)
//   - row_field: the row with id has field equal to value
//
// # Golden Snapshots
//
// RunWithGolden compares the scenario outcome against
// testdata/golden/{name}.golden, written as canonical JSON. Regenerate with:
//
//	go test ./internal/harness -update
package harness
