package query

import "github.com/jravasi/mediawiki-wikilog/internal/queryir"

// Table and column names of the wikilog storage schema.
const (
	tablePosts    = "wikilog_posts"
	tableComments = "wikilog_comments"
	tableAuthors  = "wikilog_authors"
	tableTags     = "wikilog_tags"
	tableCatLinks = "categorylinks"
	tablePage     = "page"

	// LastCommentField is the result column added by the
	// last-comment-timestamp option.
	LastCommentField = "_wlp_last_comment_timestamp"
)

// itemTables adds the item base tables: posts plus the wikilog page (w)
// and the item page (p).
func itemTables(d *queryir.Descriptor) {
	d.AddTable(queryir.Table{Name: tablePosts})
	itemPageJoins(d)
}

// itemPageJoins joins the pages of an item already in d.
func itemPageJoins(d *queryir.Descriptor) {
	d.AddJoin(queryir.Table{Name: tablePage, Alias: "w"}, queryir.LeftJoin,
		queryir.ColumnEquals{Left: "w.page_id", Right: "wlp_parent"})
	d.AddJoin(queryir.Table{Name: tablePage, Alias: "p"}, queryir.LeftJoin,
		queryir.ColumnEquals{Left: "p.page_id", Right: "wlp_page"})
}

// ItemFields lists the columns every item row carries.
func ItemFields() []queryir.Field {
	return []queryir.Field{
		{Expr: "wlp_page"},
		{Expr: "wlp_parent"},
		{Expr: "w.page_namespace", As: "wlw_namespace"},
		{Expr: "w.page_title", As: "wlw_title"},
		{Expr: "p.page_namespace", As: "wlp_namespace"},
		{Expr: "p.page_title", As: "wlp_title"},
		{Expr: "p.page_latest", As: "wlp_latest"},
		{Expr: "wlp_publish"},
		{Expr: "wlp_pubdate"},
		{Expr: "wlp_updated"},
		{Expr: "wlp_authors"},
		{Expr: "wlp_tags"},
		{Expr: "wlp_num_comments"},
	}
}

// itemGroupBy lists the item field expressions for backends that require
// every selected column in GROUP BY.
func itemGroupBy() []string {
	fields := ItemFields()
	exprs := make([]string, len(fields))
	for i, f := range fields {
		exprs[i] = f.Expr
	}
	return exprs
}

// commentTables adds the comment base tables: comments plus the comment
// page (c).
func commentTables(d *queryir.Descriptor) {
	d.AddTable(queryir.Table{Name: tableComments})
	d.AddJoin(queryir.Table{Name: tablePage, Alias: "c"}, queryir.LeftJoin,
		queryir.ColumnEquals{Left: "c.page_id", Right: "wlc_comment_page"})
}

// CommentFields lists the columns every comment row carries.
func CommentFields() []queryir.Field {
	return []queryir.Field{
		{Expr: "wlc_id"},
		{Expr: "wlc_parent"},
		{Expr: "wlc_thread"},
		{Expr: "wlc_post"},
		{Expr: "wlc_user"},
		{Expr: "wlc_user_text"},
		{Expr: "wlc_anon_name"},
		{Expr: "wlc_status"},
		{Expr: "wlc_timestamp"},
		{Expr: "wlc_updated"},
		{Expr: "wlc_comment_page"},
		{Expr: "c.page_namespace", As: "wlc_page_namespace"},
		{Expr: "c.page_title", As: "wlc_page_title"},
		{Expr: "c.page_latest", As: "wlc_page_latest"},
	}
}

var postsJoin = queryir.ColumnEquals{Left: "wlp_page", Right: "wlc_post"}
