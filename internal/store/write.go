package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

// Page is a row of the page table.
type Page struct {
	Title      wiki.Title
	IsRedirect bool
	Latest     int64
}

// ItemRecord is a wikilog item with the rows that hang off it.
type ItemRecord struct {
	Item       wiki.Item
	Updated    string
	Categories []string
	IsRedirect bool
}

// CommentRecord is a row of wikilog_comments. Page is the comment's own
// page; nil for comments without one.
type CommentRecord struct {
	ID        int64
	Parent    int64
	Thread    string
	Post      int64
	User      int64
	UserText  string
	AnonName  string
	Status    string
	Timestamp string
	Updated   string
	Page      *wiki.Title
}

// PutPage inserts or replaces a page row. Title.ArticleID is the page id.
func (s *Store) PutPage(ctx context.Context, p Page) error {
	return s.inTx(ctx, "put page", func(tx *sql.Tx) error {
		return putPage(ctx, tx, p)
	})
}

// PutWikilog stores a wikilog front page.
func (s *Store) PutWikilog(ctx context.Context, t wiki.Title, subtitle string) error {
	return s.inTx(ctx, "put wikilog", func(tx *sql.Tx) error {
		if err := putPage(ctx, tx, Page{Title: t}); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO wikilog_wikilogs (wlw_page, wlw_subtitle)
			VALUES (?, ?)
			ON CONFLICT(wlw_page) DO UPDATE SET wlw_subtitle = excluded.wlw_subtitle
		`, t.ArticleID, subtitle)
		return err
	})
}

// PutItem stores an item, its page, and its authors, tags and categories.
// Existing author, tag and category rows of the item are replaced.
//
// The serialized wlp_authors and wlp_tags columns use canonical JSON.
func (s *Store) PutItem(ctx context.Context, rec ItemRecord) error {
	item := rec.Item
	if item.ID == 0 {
		return fmt.Errorf("put item %s: missing page id", item.Title.DBKey)
	}
	authorsJSON, err := marshalNames(item.Authors)
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	tagsJSON, err := marshalNames(item.Tags)
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}

	return s.inTx(ctx, "put item", func(tx *sql.Tx) error {
		if err := putPage(ctx, tx, Page{Title: item.Title.WithID(item.ID), IsRedirect: rec.IsRedirect}); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO wikilog_posts
			(wlp_page, wlp_parent, wlp_title, wlp_publish, wlp_pubdate, wlp_updated, wlp_authors, wlp_tags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(wlp_page) DO UPDATE SET
				wlp_parent = excluded.wlp_parent,
				wlp_title = excluded.wlp_title,
				wlp_publish = excluded.wlp_publish,
				wlp_pubdate = excluded.wlp_pubdate,
				wlp_updated = excluded.wlp_updated,
				wlp_authors = excluded.wlp_authors,
				wlp_tags = excluded.wlp_tags
		`,
			item.ID,
			item.Parent,
			item.Name,
			boolToInt(item.Publish),
			item.PubDate,
			rec.Updated,
			authorsJSON,
			tagsJSON,
		)
		if err != nil {
			return err
		}

		if err := replaceRows(ctx, tx, "wikilog_authors", "wla_page", "wla_author_text", item.ID, item.Authors); err != nil {
			return err
		}
		if err := replaceRows(ctx, tx, "wikilog_tags", "wlt_page", "wlt_tag", item.ID, item.Tags); err != nil {
			return err
		}
		return replaceRows(ctx, tx, "categorylinks", "cl_from", "cl_to", item.ID, rec.Categories)
	})
}

// PutComment stores a comment and its page, then refreshes the item's
// accepted comment count.
func (s *Store) PutComment(ctx context.Context, rec CommentRecord) error {
	status := rec.Status
	if status == "" {
		status = "OK"
	}
	updated := rec.Updated
	if updated == "" {
		updated = rec.Timestamp
	}

	return s.inTx(ctx, "put comment", func(tx *sql.Tx) error {
		var commentPage any
		if rec.Page != nil {
			if err := putPage(ctx, tx, Page{Title: *rec.Page}); err != nil {
				return err
			}
			commentPage = rec.Page.ArticleID
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO wikilog_comments
			(wlc_id, wlc_parent, wlc_thread, wlc_post, wlc_user, wlc_user_text, wlc_anon_name,
			 wlc_status, wlc_timestamp, wlc_updated, wlc_comment_page)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(wlc_id) DO UPDATE SET
				wlc_status = excluded.wlc_status,
				wlc_updated = excluded.wlc_updated
		`,
			rec.ID,
			nullInt(rec.Parent),
			rec.Thread,
			rec.Post,
			rec.User,
			rec.UserText,
			nullString(rec.AnonName),
			status,
			rec.Timestamp,
			updated,
			commentPage,
		)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE wikilog_posts
			SET wlp_num_comments = (
				SELECT COUNT(*) FROM wikilog_comments
				WHERE wlc_post = ? AND wlc_status = 'OK'
			)
			WHERE wlp_page = ?
		`, rec.Post, rec.Post)
		return err
	})
}

// inTx runs fn in a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func putPage(ctx context.Context, tx *sql.Tx, p Page) error {
	if p.Title.ArticleID == 0 {
		return fmt.Errorf("page %s: missing page id", p.Title.DBKey)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO page (page_id, page_namespace, page_title, page_is_redirect, page_latest)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(page_id) DO UPDATE SET
			page_namespace = excluded.page_namespace,
			page_title = excluded.page_title,
			page_is_redirect = excluded.page_is_redirect,
			page_latest = excluded.page_latest
	`,
		p.Title.ArticleID,
		p.Title.Namespace,
		p.Title.DBKey,
		boolToInt(p.IsRedirect),
		p.Latest,
	)
	if err != nil {
		return fmt.Errorf("page %s: %w", p.Title.DBKey, err)
	}
	return nil
}

// replaceRows replaces the (key, value) rows of one page in a link table.
// Table and column names are constants of this package.
func replaceRows(ctx context.Context, tx *sql.Tx, table, keyCol, valueCol string, key int64, values []string) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, keyCol), key); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	insert := fmt.Sprintf("INSERT OR IGNORE INTO %s (%s, %s) VALUES (?, ?)", table, keyCol, valueCol)
	for _, v := range values {
		if _, err := tx.ExecContext(ctx, insert, key, v); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullInt(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
