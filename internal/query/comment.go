package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
	"github.com/jravasi/mediawiki-wikilog/internal/queryir"
	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

// ModStatus filters comments by moderation state.
type ModStatus string

const (
	ModAll        ModStatus = "all"
	ModAccepted   ModStatus = "accepted"
	ModPending    ModStatus = "pending"
	ModNotDeleted ModStatus = "notdeleted"
	ModNotPending ModStatus = "notpending"
)

// ModStatuses lists the valid moderation statuses.
var ModStatuses = []ModStatus{ModAll, ModAccepted, ModPending, ModNotDeleted, ModNotPending}

// ParseModStatus validates a moderation status keyword. "" means ModAll.
func ParseModStatus(text string) (ModStatus, error) {
	if text == "" {
		return ModAll, nil
	}
	for _, s := range ModStatuses {
		if string(s) == text {
			return s, nil
		}
	}
	return "", invalidArgument("SetModStatus", "invalid moderation status %q", text)
}

// Comment status column values.
const (
	statusOK      = "OK"
	statusPending = "PENDING"
	statusDeleted = "DELETED"
)

// Ref is a reference a comment query can be scoped from: PageRef, InfoRef
// or ItemRef.
type Ref interface {
	isRef()
}

// PageRef scopes by page title: a wikilog page, an item, or their talk pages.
type PageRef struct{ Title wiki.Title }

// InfoRef scopes by parsed wikilog info.
type InfoRef struct{ Info *wiki.Info }

// ItemRef scopes to a loaded item.
type ItemRef struct{ Item *wiki.Item }

func (PageRef) isRef() {}
func (InfoRef) isRef() {}
func (ItemRef) isRef() {}

// CommentQuery builds queries for wikilog comments.
//
// Scope precedence is item, then wikilog, then namespace. The thread filter
// only applies together with an item.
type CommentQuery struct {
	env  Env
	opts *OptionBag

	modStatus ModStatus
	ns        int
	hasNS     bool
	wikilog   *wiki.Title
	item      *wiki.Item
	thread    string
	author    string
	date      *DateSpec
	empty     bool

	// missingScope is a scope reference that matched nothing, kept under
	// missingParam for DefaultQuery.
	missingScope string
	missingParam string
}

// NewCommentQuery creates a comment query over all comments.
func NewCommentQuery(env Env) *CommentQuery {
	return &CommentQuery{
		env:       env,
		opts:      NewOptionBag(map[string]any{OptIncludeItem: false}),
		modStatus: ModAll,
	}
}

// SetModStatus sets the moderation filter. Unknown statuses are rejected.
func (q *CommentQuery) SetModStatus(s ModStatus) error {
	status, err := ParseModStatus(string(s))
	if err != nil {
		return err
	}
	q.modStatus = status
	return nil
}

// SetModStatusText sets the moderation filter from a "show" keyword.
func (q *CommentQuery) SetModStatusText(text string) error {
	return q.SetModStatus(ModStatus(text))
}

// SetNamespace restricts the query to comments on items in namespace ns.
func (q *CommentQuery) SetNamespace(ns int) {
	q.ns = ns
	q.hasNS = true
}

// SetWikilog restricts the query to comments on items of one wikilog.
func (q *CommentQuery) SetWikilog(t *wiki.Title) {
	if t == nil {
		q.wikilog = nil
		return
	}
	c := *t
	q.wikilog = &c
}

// SetItem restricts the query to comments on one item.
func (q *CommentQuery) SetItem(item *wiki.Item) {
	if item == nil {
		q.item = nil
		return
	}
	c := *item
	q.item = &c
}

// SetThread restricts the query to replies below a thread path such as
// "0001/0003".
func (q *CommentQuery) SetThread(path string) {
	q.thread = path
}

// SetThreadPath is SetThread with the path given as segments.
func (q *CommentQuery) SetThreadPath(segments ...string) {
	q.thread = strings.Join(segments, "/")
}

// SetAuthor restricts the query to comments by the named user. The name
// must already be canonical; "" clears the filter.
func (q *CommentQuery) SetAuthor(name string) {
	q.author = name
}

// SetAuthorText resolves text to a canonical user name. Invalid names leave
// the filter unchanged.
func (q *CommentQuery) SetAuthorText(text string) {
	name, err := resolveAuthor(text)
	if err != nil {
		slog.Debug("author filter dropped", "text", text, "error", err)
		return
	}
	q.author = name
}

// SetDate restricts the query to comments posted within the partial date.
func (q *CommentQuery) SetDate(year, month, day int) {
	if d, ok := ResolveDate(year, month, day, q.env.now()); ok {
		q.date = d
	}
}

// SetOption overrides a query option.
func (q *CommentQuery) SetOption(key string, value any) {
	q.opts.Set(key, value)
}

// SetOptions merges options; see OptionBag.SetAll.
func (q *CommentQuery) SetOptions(opts any) error {
	return q.opts.SetAll(opts)
}

// Option reads a query option.
func (q *CommentQuery) Option(key string) (any, error) {
	return q.opts.Get(key)
}

// IncludeItem toggles returning the commented item's fields with each row.
func (q *CommentQuery) IncludeItem(on bool) {
	q.opts.Set(OptIncludeItem, on)
}

// SetEmpty forces the query to match nothing.
func (q *CommentQuery) SetEmpty(empty bool) {
	q.empty = empty
}

// setUnresolved forces the query empty while remembering the scope
// reference that failed to resolve.
func (q *CommentQuery) setUnresolved(param, text string) {
	q.empty = true
	q.missingScope = text
	q.missingParam = param
}

// SetFrom scopes the query from a page, wikilog info or item. Pages are
// parsed into wikilog info; info naming an item is loaded through the
// environment's Lookup.
func (q *CommentQuery) SetFrom(ctx context.Context, ref Ref) error {
	switch r := ref.(type) {
	case PageRef:
		info, ok := q.env.namespaces().NewInfo(r.Title)
		if !ok {
			return invalidArgument("SetFrom", "not a valid wikilog reference: %s", q.env.namespaces().PrefixedDBKey(r.Title))
		}
		return q.SetFrom(ctx, InfoRef{Info: info})

	case InfoRef:
		if r.Info == nil {
			return invalidArgument("SetFrom", "not a valid wikilog reference: nil info")
		}
		if r.Info.IsItem() {
			item, err := wiki.ItemFromInfo(ctx, q.env.Lookup, r.Info)
			if err != nil {
				return &Error{Code: ErrCodeInvalidArgument, Op: "SetFrom", Message: err.Error(), Err: err}
			}
			return q.SetFrom(ctx, ItemRef{Item: item})
		}
		t, err := q.resolvePage(ctx, r.Info.Title)
		if err != nil {
			return err
		}
		q.SetWikilog(&t)
		return nil

	case ItemRef:
		if r.Item == nil {
			return invalidArgument("SetFrom", "not a valid wikilog reference: nil item")
		}
		q.SetItem(r.Item)
		return nil

	default:
		return invalidArgument("SetFrom", "not a valid wikilog reference: %T", ref)
	}
}

// resolvePage fills in the page id of t when it is missing. Without a
// Lookup the title stays unresolved and is matched by name.
func (q *CommentQuery) resolvePage(ctx context.Context, t wiki.Title) (wiki.Title, error) {
	if t.Exists() {
		return t, nil
	}
	if q.env.Lookup == nil {
		slog.Debug("no lookup, wikilog matched by title", "wikilog", t.DBKey)
		return t, nil
	}
	id, err := q.env.Lookup.PageID(ctx, t)
	if err != nil {
		if errors.Is(err, wiki.ErrNotFound) {
			return t, &Error{Code: ErrCodeInvalidArgument, Op: "SetFrom", Message: fmt.Sprintf("wikilog %s does not exist", t.DBKey), Err: err}
		}
		return t, fmt.Errorf("resolve wikilog %s: %w", t.DBKey, err)
	}
	return t.WithID(id), nil
}

// Accessors.

func (q *CommentQuery) ModStatus() ModStatus { return q.modStatus }
func (q *CommentQuery) Namespace() (int, bool) { return q.ns, q.hasNS }
func (q *CommentQuery) Thread() string { return q.thread }
func (q *CommentQuery) Author() string { return q.author }
func (q *CommentQuery) Empty() bool { return q.empty }

func (q *CommentQuery) Wikilog() *wiki.Title {
	if q.wikilog == nil {
		return nil
	}
	c := *q.wikilog
	return &c
}

func (q *CommentQuery) Item() *wiki.Item {
	if q.item == nil {
		return nil
	}
	c := *q.item
	return &c
}

func (q *CommentQuery) Date() *DateSpec {
	if q.date == nil {
		return nil
	}
	d := *q.date
	return &d
}

// fragments lists the filter clauses in condition order.
func (q *CommentQuery) fragments() (frags []fragment) {
	if q.empty {
		frags = append(frags, where(queryir.False{}))
	}

	switch q.modStatus {
	case ModAccepted:
		frags = append(frags, where(queryir.Equals{Column: "wlc_status", Value: ir.IRString(statusOK)}))
	case ModPending:
		frags = append(frags, where(queryir.Equals{Column: "wlc_status", Value: ir.IRString(statusPending)}))
	case ModNotDeleted:
		frags = append(frags, where(queryir.NotEquals{Column: "wlc_status", Value: ir.IRString(statusDeleted)}))
	case ModNotPending:
		frags = append(frags, where(queryir.NotEquals{Column: "wlc_status", Value: ir.IRString(statusPending)}))
	}

	switch {
	case q.item != nil:
		frags = append(frags, where(queryir.Equals{Column: "wlc_post", Value: ir.IRInt(q.item.ID)}))
		if q.thread != "" {
			frags = append(frags, where(queryir.HasPrefix{Column: "wlc_thread", Prefix: q.thread + "/"}))
		}
	case q.wikilog != nil:
		frags = append(frags,
			joinWhere(queryir.Table{Name: tablePosts}, queryir.InnerJoin, postsJoin),
			wikilogScope(*q.wikilog))
	case q.hasNS:
		frags = append(frags, where(queryir.Equals{Column: "c.page_namespace", Value: ir.IRInt(int64(q.ns))}))
	}

	if q.author != "" {
		frags = append(frags, where(queryir.Equals{Column: "wlc_user_text", Value: ir.IRString(q.author)}))
	}
	if q.date != nil {
		frags = append(frags, dateWindow("wlc_timestamp", q.date))
	}
	return frags
}

// Compile builds the comment descriptor. Each call returns a new descriptor.
func (q *CommentQuery) Compile(hints queryir.Hints) (*queryir.Descriptor, error) {
	withItem, err := q.opts.Bool(OptIncludeItem)
	if err != nil {
		return nil, fmt.Errorf("compile comment query: %w", err)
	}

	d := queryir.NewDescriptor()
	commentTables(d)
	d.AddFields(CommentFields()...)
	fold(d, q.fragments())

	if withItem {
		d.AddJoin(queryir.Table{Name: tablePosts}, queryir.InnerJoin, postsJoin)
		itemPageJoins(d)
		d.AddFields(ItemFields()...)
	}

	if err := queryir.Validate(d); err != nil {
		return nil, fmt.Errorf("compile comment query: %w", err)
	}
	return d, nil
}

// DefaultQuery returns the request parameters that reproduce this filter
// state, in link order.
func (q *CommentQuery) DefaultQuery() *Params {
	ns := q.env.namespaces()
	p := NewParams()

	switch {
	case q.item != nil:
		p.Set(ParamItem, ns.PrefixedDBKey(q.item.Title))
		if q.thread != "" {
			p.Set(ParamThread, q.thread)
		}
	case q.wikilog != nil:
		p.Set(ParamWikilog, ns.PrefixedDBKey(*q.wikilog))
	case q.hasNS:
		p.Set(ParamWikilog, ns.PrefixedDBKey(wiki.MakeTitle(q.ns, wildcardKey)))
	case q.empty && q.missingScope != "":
		p.Set(q.missingParam, q.missingScope)
		if q.missingParam == ParamItem && q.thread != "" {
			p.Set(ParamThread, q.thread)
		}
	}

	if q.modStatus != ModAll {
		p.Set(ParamShow, string(q.modStatus))
	}
	if q.author != "" {
		p.Set(ParamAuthor, q.author)
	}
	setDateParams(p, q.date)
	return p
}
