package query

import (
	"fmt"
	"log/slog"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
	"github.com/jravasi/mediawiki-wikilog/internal/queryir"
	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

// PubStatus filters items by publication state.
type PubStatus int

const (
	PubAll PubStatus = iota
	PubPublished
	PubDrafts
)

// ParsePubStatus maps a "show" keyword to a status. Unrecognized text,
// including "", means PubPublished.
func ParsePubStatus(text string) PubStatus {
	switch text {
	case "all", "any":
		return PubAll
	case "draft", "drafts":
		return PubDrafts
	default:
		return PubPublished
	}
}

func (s PubStatus) String() string {
	switch s {
	case PubAll:
		return "all"
	case PubDrafts:
		return "drafts"
	default:
		return "published"
	}
}

// ItemQuery builds queries for wikilog items (articles).
//
// Setters may be called in any order; each overwrites its slot. Compile and
// DefaultQuery read the state without changing it.
type ItemQuery struct {
	env  Env
	opts *OptionBag

	wikilog   *wiki.Title
	ns        int
	hasNS     bool
	pubStatus PubStatus
	category  *wiki.Title
	author    string
	tag       string
	date      *DateSpec
	empty     bool

	// A listing constructed without a wikilog is global and must carry the
	// wikilog parameter in its links.
	needWikilogParam bool
}

// NewItemQuery creates an item query. A nil wikilog makes a global listing.
func NewItemQuery(env Env, wikilog *wiki.Title) *ItemQuery {
	q := &ItemQuery{
		env:              env,
		opts:             NewOptionBag(map[string]any{OptLastCommentTimestamp: false}),
		pubStatus:        PubPublished,
		needWikilogParam: wikilog == nil,
	}
	q.SetWikilog(wikilog)
	return q
}

// SetWikilog restricts the query to items of one wikilog. Nil clears it.
func (q *ItemQuery) SetWikilog(t *wiki.Title) {
	if t == nil {
		q.wikilog = nil
		return
	}
	c := *t
	q.wikilog = &c
}

// SetNamespace restricts the query to items in namespace ns. A wikilog set
// with SetWikilog takes precedence.
func (q *ItemQuery) SetNamespace(ns int) {
	q.ns = ns
	q.hasNS = true
}

// ClearNamespace removes the namespace restriction.
func (q *ItemQuery) ClearNamespace() {
	q.ns = 0
	q.hasNS = false
}

// SetPubStatus sets the publication status filter.
func (q *ItemQuery) SetPubStatus(s PubStatus) {
	switch s {
	case PubAll, PubPublished, PubDrafts:
		q.pubStatus = s
	default:
		q.pubStatus = PubPublished
	}
}

// SetPubStatusText sets the publication status from a "show" keyword.
func (q *ItemQuery) SetPubStatusText(text string) {
	q.pubStatus = ParsePubStatus(text)
}

// SetCategory restricts the query to items in category t.
func (q *ItemQuery) SetCategory(t wiki.Title) {
	q.category = &t
}

// SetCategoryText resolves text to a category. Text that is not a valid
// title leaves the filter unchanged.
func (q *ItemQuery) SetCategoryText(text string) {
	t, err := resolveCategory(text)
	if err != nil {
		slog.Debug("category filter dropped", "text", text, "error", err)
		return
	}
	q.SetCategory(t)
}

// SetAuthor restricts the query to items by the named author. The name
// must already be canonical; "" clears the filter.
func (q *ItemQuery) SetAuthor(name string) {
	q.author = name
}

// SetAuthorText resolves text to a canonical user name. Invalid names leave
// the filter unchanged.
func (q *ItemQuery) SetAuthorText(text string) {
	name, err := resolveAuthor(text)
	if err != nil {
		slog.Debug("author filter dropped", "text", text, "error", err)
		return
	}
	q.author = name
}

// SetTag restricts the query to items carrying tag. No-op when tags are
// disabled.
func (q *ItemQuery) SetTag(tag string) {
	if !q.env.EnableTags {
		slog.Debug("tag filter ignored: tags disabled", "tag", tag)
		return
	}
	q.tag = tag
}

// SetDate restricts the query to items published within the given partial
// date. Absent or invalid dates leave the filter unchanged.
func (q *ItemQuery) SetDate(year, month, day int) {
	if d, ok := ResolveDate(year, month, day, q.env.now()); ok {
		q.date = d
	}
}

// SetOption overrides a query option.
func (q *ItemQuery) SetOption(key string, value any) {
	q.opts.Set(key, value)
}

// SetOptions merges options; see OptionBag.SetAll.
func (q *ItemQuery) SetOptions(opts any) error {
	return q.opts.SetAll(opts)
}

// Option reads a query option.
func (q *ItemQuery) Option(key string) (any, error) {
	return q.opts.Get(key)
}

// IncludeLastCommentTimestamp toggles the per-item last comment aggregate.
func (q *ItemQuery) IncludeLastCommentTimestamp(on bool) {
	q.opts.Set(OptLastCommentTimestamp, on)
}

// SetEmpty forces the query to match nothing.
func (q *ItemQuery) SetEmpty(empty bool) {
	q.empty = empty
}

// Accessors.

func (q *ItemQuery) Wikilog() *wiki.Title {
	if q.wikilog == nil {
		return nil
	}
	c := *q.wikilog
	return &c
}

func (q *ItemQuery) Namespace() (int, bool) { return q.ns, q.hasNS }
func (q *ItemQuery) PubStatus() PubStatus { return q.pubStatus }
func (q *ItemQuery) Author() string { return q.author }
func (q *ItemQuery) Tag() string { return q.tag }
func (q *ItemQuery) Empty() bool { return q.empty }
func (q *ItemQuery) NeedsWikilogParam() bool { return q.needWikilogParam }

func (q *ItemQuery) Category() *wiki.Title {
	if q.category == nil {
		return nil
	}
	c := *q.category
	return &c
}

func (q *ItemQuery) Date() *DateSpec {
	if q.date == nil {
		return nil
	}
	d := *q.date
	return &d
}

// IsSingleWikilog reports whether the query returns items of a single
// wikilog.
func (q *ItemQuery) IsSingleWikilog() bool {
	return q.wikilog != nil
}

// fragments lists the filter clauses in condition order.
func (q *ItemQuery) fragments() []fragment {
	frags := []fragment{
		where(queryir.Equals{Column: "p.page_is_redirect", Value: ir.IRInt(0)}),
	}
	if q.empty {
		frags = append(frags, where(queryir.False{}))
	}

	switch {
	case q.wikilog != nil:
		frags = append(frags, wikilogScope(*q.wikilog))
	case q.hasNS:
		frags = append(frags, where(queryir.Equals{Column: "p.page_namespace", Value: ir.IRInt(int64(q.ns))}))
	}

	switch q.pubStatus {
	case PubPublished:
		frags = append(frags, where(queryir.Equals{Column: "wlp_publish", Value: ir.IRInt(1)}))
	case PubDrafts:
		frags = append(frags, where(queryir.Equals{Column: "wlp_publish", Value: ir.IRInt(0)}))
	}

	if q.category != nil {
		frags = append(frags, joinWhere(
			queryir.Table{Name: tableCatLinks}, queryir.InnerJoin,
			queryir.ColumnEquals{Left: "wlp_page", Right: "cl_from"},
			queryir.Equals{Column: "cl_to", Value: ir.IRString(q.category.DBKey)},
		))
	}
	if q.author != "" {
		frags = append(frags, joinWhere(
			queryir.Table{Name: tableAuthors}, queryir.InnerJoin,
			queryir.ColumnEquals{Left: "wlp_page", Right: "wla_page"},
			queryir.Equals{Column: "wla_author_text", Value: ir.IRString(q.author)},
		))
	}
	if q.tag != "" {
		frags = append(frags, joinWhere(
			queryir.Table{Name: tableTags}, queryir.InnerJoin,
			queryir.ColumnEquals{Left: "wlp_page", Right: "wlt_page"},
			queryir.Equals{Column: "wlt_tag", Value: ir.IRString(q.tag)},
		))
	}
	if q.date != nil {
		frags = append(frags, dateWindow("wlp_pubdate", q.date))
	}
	return frags
}

// Compile builds the item descriptor. Each call returns a new descriptor.
func (q *ItemQuery) Compile(hints queryir.Hints) (*queryir.Descriptor, error) {
	withLast, err := q.opts.Bool(OptLastCommentTimestamp)
	if err != nil {
		return nil, fmt.Errorf("compile item query: %w", err)
	}

	d := queryir.NewDescriptor()
	itemTables(d)
	d.AddFields(ItemFields()...)
	fold(d, q.fragments())

	if withLast {
		d.AddJoin(queryir.Table{Name: tableComments}, queryir.LeftJoin, postsJoin)
		d.AddFields(queryir.Field{Expr: "MAX(wlc_updated)", As: LastCommentField})
		if hints.ImplicitGroupBy {
			d.Options.GroupBy = []string{"wlp_page"}
		} else {
			d.Options.GroupBy = itemGroupBy()
		}
	}

	if err := queryir.Validate(d); err != nil {
		return nil, fmt.Errorf("compile item query: %w", err)
	}
	return d, nil
}

// DefaultQuery returns the request parameters that reproduce this filter
// state, in link order.
func (q *ItemQuery) DefaultQuery() *Params {
	ns := q.env.namespaces()
	p := NewParams()

	switch {
	case q.needWikilogParam && q.wikilog != nil:
		p.Set(ParamWikilog, ns.PrefixedDBKey(*q.wikilog))
	case q.hasNS:
		p.Set(ParamWikilog, ns.PrefixedDBKey(wiki.MakeTitle(q.ns, wildcardKey)))
	}

	if q.pubStatus != PubPublished {
		p.Set(ParamShow, q.pubStatus.String())
	}
	if q.category != nil {
		p.Set(ParamCategory, q.category.DBKey)
	}
	if q.author != "" {
		p.Set(ParamAuthor, q.author)
	}
	if q.tag != "" {
		p.Set(ParamTag, q.tag)
	}
	setDateParams(p, q.date)
	return p
}

func resolveCategory(text string) (wiki.Title, error) {
	t, ok := wiki.MakeTitleSafe(wiki.NSCategory, text)
	if !ok {
		return wiki.Title{}, unresolved("SetCategory", "%q is not a valid category name", text)
	}
	return t, nil
}

func resolveAuthor(text string) (string, error) {
	t, ok := wiki.MakeTitleSafe(wiki.NSUser, text)
	if !ok {
		return "", unresolved("SetAuthor", "%q is not a valid user name", text)
	}
	name, ok := wiki.CanonicalUserName(t.Text())
	if !ok {
		return "", unresolved("SetAuthor", "%q is not a valid user name", text)
	}
	return name, nil
}
