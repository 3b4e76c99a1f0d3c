package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

// ParseItemQuery rebuilds an item query from request parameters, the
// inverse of ItemQuery.DefaultQuery. A wikilog parameter naming a page
// that does not exist yields a forced-empty query.
func ParseItemQuery(ctx context.Context, env Env, v url.Values) (*ItemQuery, error) {
	q := NewItemQuery(env, nil)

	if scope := v.Get(ParamWikilog); scope != "" {
		if ns, ok := parseWildcard(env.namespaces(), scope); ok {
			q.SetNamespace(ns)
		} else {
			t, found, err := resolveWikilog(ctx, env, scope)
			if err != nil {
				return nil, err
			}
			if !found {
				slog.Debug("unknown wikilog, query forced empty", "wikilog", scope)
				q.SetEmpty(true)
			}
			if t.DBKey != "" {
				q.SetWikilog(&t)
			}
		}
	}

	if _, ok := v[ParamShow]; ok {
		q.SetPubStatusText(v.Get(ParamShow))
	}
	if c := v.Get(ParamCategory); c != "" {
		q.SetCategoryText(c)
	}
	if a := v.Get(ParamAuthor); a != "" {
		q.SetAuthorText(a)
	}
	if tag := v.Get(ParamTag); tag != "" {
		q.SetTag(tag)
	}
	q.SetDate(atoi(v.Get(ParamYear)), atoi(v.Get(ParamMonth)), atoi(v.Get(ParamDay)))
	return q, nil
}

// ParseCommentQuery rebuilds a comment query from request parameters, the
// inverse of CommentQuery.DefaultQuery. An invalid "show" value is an
// error; an item or wikilog that does not exist forces the query empty.
func ParseCommentQuery(ctx context.Context, env Env, v url.Values) (*CommentQuery, error) {
	q := NewCommentQuery(env)
	ns := env.namespaces()

	switch {
	case v.Get(ParamItem) != "":
		if err := setFromText(ctx, q, ParamItem, v.Get(ParamItem)); err != nil {
			return nil, err
		}
		if thread := v.Get(ParamThread); thread != "" {
			q.SetThread(thread)
		}
	case v.Get(ParamWikilog) != "":
		scope := v.Get(ParamWikilog)
		if id, ok := parseWildcard(ns, scope); ok {
			q.SetNamespace(id)
		} else if err := setFromText(ctx, q, ParamWikilog, scope); err != nil {
			return nil, err
		}
	}

	if err := q.SetModStatusText(v.Get(ParamShow)); err != nil {
		return nil, err
	}
	if a := v.Get(ParamAuthor); a != "" {
		q.SetAuthorText(a)
	}
	q.SetDate(atoi(v.Get(ParamYear)), atoi(v.Get(ParamMonth)), atoi(v.Get(ParamDay)))
	return q, nil
}

// setFromText scopes q from a prefixed title. References that do not name
// an existing wikilog page or item make the query empty; the reference is
// kept under param so DefaultQuery still links to the empty scope.
func setFromText(ctx context.Context, q *CommentQuery, param, text string) error {
	ns := q.env.namespaces()
	t, ok := ns.ParseTitle(text)
	if !ok {
		slog.Debug("invalid scope title, query forced empty", "title", text)
		q.setUnresolved(param, text)
		return nil
	}
	err := q.SetFrom(ctx, PageRef{Title: t})
	if IsInvalidArgument(err) {
		slog.Debug("unresolved scope, query forced empty", "title", text, "error", err)
		q.setUnresolved(param, ns.PrefixedDBKey(t))
		return nil
	}
	return err
}

// resolveWikilog parses and resolves a wikilog title. found is false when
// the title is invalid, names an item or a page outside wikilog
// namespaces, or is unknown to Lookup. Talk pages resolve to their
// wikilog.
func resolveWikilog(ctx context.Context, env Env, text string) (t wiki.Title, found bool, err error) {
	ns := env.namespaces()
	t, ok := ns.ParseTitle(text)
	if !ok {
		return t, false, nil
	}
	info, ok := ns.NewInfo(t)
	if !ok || info.IsItem() {
		return t, false, nil
	}
	t = info.Title
	if env.Lookup == nil {
		slog.Debug("no lookup, wikilog matched by title", "wikilog", text)
		return t, true, nil
	}
	id, err := env.Lookup.PageID(ctx, t)
	if errors.Is(err, wiki.ErrNotFound) {
		return t, false, nil
	}
	if err != nil {
		return t, false, fmt.Errorf("resolve wikilog %s: %w", text, err)
	}
	return t.WithID(id), true, nil
}

// parseWildcard recognizes "Namespace:*" scopes.
func parseWildcard(ns *wiki.Namespaces, text string) (int, bool) {
	prefix, rest, found := strings.Cut(text, ":")
	if !found || rest != wildcardKey {
		return 0, false
	}
	return ns.ID(prefix)
}

// atoi parses a date component; non-numeric text is absent.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
