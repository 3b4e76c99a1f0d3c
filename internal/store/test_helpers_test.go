package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

const (
	nsBlog     = 100
	nsBlogTalk = 101
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mainTitle() wiki.Title  { return wiki.MakeTitle(nsBlog, "Main").WithID(10) }
func otherTitle() wiki.Title { return wiki.MakeTitle(nsBlog, "Other").WithID(20) }

// createTestItem builds an item record under the given wikilog.
func createTestItem(id int64, wikilog wiki.Title, sub, pubdate string, publish bool, authors, tags, categories []string) ItemRecord {
	return ItemRecord{
		Item: wiki.Item{
			ID:          id,
			Name:        sub,
			Title:       wiki.MakeTitle(wikilog.Namespace, wikilog.DBKey+"/"+sub),
			Parent:      wikilog.ArticleID,
			ParentTitle: wikilog,
			Publish:     publish,
			PubDate:     pubdate,
			Authors:     authors,
			Tags:        tags,
		},
		Updated:    pubdate,
		Categories: categories,
	}
}

func commentPage(id int64, key string) *wiki.Title {
	t := wiki.MakeTitle(nsBlogTalk, key).WithID(id)
	return &t
}

// seedStore loads two wikilogs with four items and four comments:
//
//	Blog:Main   10  items 11 (published 2024-01-05, Alice, tag go, category News)
//	                      12 (draft 2024-02-10, Bob)
//	                      13 (published 2024-03-01, Alice+Bob, tag sql)
//	Blog:Other  20  item  21 (published 2023-12-20, Carol)
//
//	comment 1 on 11  OK       Bob    2024-01-06  thread 00000001
//	comment 2 on 11  PENDING  Alice  2024-01-07  thread 00000001/00000002
//	comment 3 on 11  DELETED  Carol  2024-01-08  thread 00000003 (no page)
//	comment 4 on 21  OK       Alice  2023-12-21  thread 00000004
func seedStore(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	for _, w := range []wiki.Title{mainTitle(), otherTitle()} {
		if err := s.PutWikilog(ctx, w, ""); err != nil {
			t.Fatalf("PutWikilog(%s) failed: %v", w.DBKey, err)
		}
	}

	items := []ItemRecord{
		createTestItem(11, mainTitle(), "First_post", "20240105120000", true, []string{"Alice"}, []string{"go"}, []string{"News"}),
		createTestItem(12, mainTitle(), "Draft", "20240210090000", false, []string{"Bob"}, nil, nil),
		createTestItem(13, mainTitle(), "Second_post", "20240301080000", true, []string{"Alice", "Bob"}, []string{"sql"}, nil),
		createTestItem(21, otherTitle(), "Hello", "20231220100000", true, []string{"Carol"}, nil, nil),
	}
	for _, rec := range items {
		if err := s.PutItem(ctx, rec); err != nil {
			t.Fatalf("PutItem(%d) failed: %v", rec.Item.ID, err)
		}
	}

	comments := []CommentRecord{
		{ID: 1, Thread: "00000001", Post: 11, UserText: "Bob", Status: "OK",
			Timestamp: "20240106100000", Page: commentPage(111, "Main/First_post/c000001")},
		{ID: 2, Parent: 1, Thread: "00000001/00000002", Post: 11, UserText: "Alice", Status: "PENDING",
			Timestamp: "20240107100000", Page: commentPage(112, "Main/First_post/c000002")},
		{ID: 3, Thread: "00000003", Post: 11, UserText: "Carol", Status: "DELETED",
			Timestamp: "20240108100000"},
		{ID: 4, Thread: "00000004", Post: 21, UserText: "Alice", Status: "OK",
			Timestamp: "20231221100000", Page: commentPage(211, "Other/Hello/c000004")},
	}
	for _, rec := range comments {
		if err := s.PutComment(ctx, rec); err != nil {
			t.Fatalf("PutComment(%d) failed: %v", rec.ID, err)
		}
	}
}
