package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jravasi/mediawiki-wikilog/internal/ir"
	"github.com/jravasi/mediawiki-wikilog/internal/queryir"
	"github.com/jravasi/mediawiki-wikilog/internal/querysql"
	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

// Hints implements queryir.Executor. SQLite resolves non-aggregated
// columns against the GROUP BY key.
func (s *Store) Hints() queryir.Hints {
	return queryir.Hints{ImplicitGroupBy: true}
}

// Select implements queryir.Executor.
//
// The descriptor is compiled immediately, so invalid descriptors fail here.
// The query itself runs on the first range over the returned sequence;
// a second range yields queryir.ErrRowsConsumed.
func (s *Store) Select(ctx context.Context, d *queryir.Descriptor) (queryir.RowSeq, error) {
	query, params, err := querysql.NewSQLCompiler().Compile(d)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	return queryir.OnceRows(func(yield func(ir.IRObject, error) bool) {
		slog.Debug("executing descriptor", "sql", query, "params", len(params))

		rows, err := s.db.QueryContext(ctx, query, params...)
		if err != nil {
			yield(nil, fmt.Errorf("select: %w", err))
			return
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			yield(nil, fmt.Errorf("select columns: %w", err))
			return
		}

		for rows.Next() {
			row, err := scanObject(rows, cols)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(row, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("iterate rows: %w", err))
		}
	}), nil
}

// scanObject reads the current row into an IRObject keyed by column name.
func scanObject(rows *sql.Rows, cols []string) (ir.IRObject, error) {
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	obj := make(ir.IRObject, len(cols))
	for i, col := range cols {
		v, err := ir.FromSQL(values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		obj[col] = v
	}
	return obj, nil
}

// PageID implements wiki.Lookup.
// Returns wiki.ErrNotFound if no page has the title.
func (s *Store) PageID(ctx context.Context, t wiki.Title) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT page_id FROM page
		WHERE page_namespace = ? AND page_title = ?
	`, t.Namespace, t.DBKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, wiki.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("page id %s: %w", t.DBKey, err)
	}
	return id, nil
}

// ItemByTitle implements wiki.Lookup.
// Returns wiki.ErrNotFound if the title is not a stored item.
func (s *Store) ItemByTitle(ctx context.Context, t wiki.Title) (*wiki.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT wlp_page, wlp_parent, wlp_title, wlp_publish, wlp_pubdate, wlp_authors, wlp_tags,
		       p.page_namespace, p.page_title,
		       COALESCE(w.page_namespace, 0), COALESCE(w.page_title, '')
		FROM wikilog_posts
		JOIN page AS p ON p.page_id = wlp_page
		LEFT JOIN page AS w ON w.page_id = wlp_parent
		WHERE p.page_namespace = ? AND p.page_title = ?
	`, t.Namespace, t.DBKey)

	var item wiki.Item
	var publish, parentNS int
	var authorsJSON, tagsJSON, parentKey string
	err := row.Scan(
		&item.ID, &item.Parent, &item.Name, &publish, &item.PubDate, &authorsJSON, &tagsJSON,
		&item.Title.Namespace, &item.Title.DBKey,
		&parentNS, &parentKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wiki.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", t.DBKey, err)
	}

	item.Publish = publish != 0
	item.Title.ArticleID = item.ID
	if parentKey != "" {
		item.ParentTitle = wiki.MakeTitle(parentNS, parentKey).WithID(item.Parent)
	}
	if item.Authors, err = unmarshalNames(authorsJSON); err != nil {
		return nil, fmt.Errorf("item %s: %w", t.DBKey, err)
	}
	if item.Tags, err = unmarshalNames(tagsJSON); err != nil {
		return nil, fmt.Errorf("item %s: %w", t.DBKey, err)
	}
	return &item, nil
}

// Compile-time interface checks.
var (
	_ queryir.Executor = (*Store)(nil)
	_ wiki.Lookup      = (*Store)(nil)
)
