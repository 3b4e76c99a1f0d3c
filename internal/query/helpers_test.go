package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jravasi/mediawiki-wikilog/internal/queryir"
	"github.com/jravasi/mediawiki-wikilog/internal/testutil"
	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

const nsBlog = 100

// testEnv builds an environment with the Blog wikilog namespace, the
// wikilog Blog:Main (page 10) and its item Blog:Main/First_post (page 11).
// The clock is pinned to 2024-03-15.
func testEnv(t *testing.T) Env {
	t.Helper()
	ns := wiki.NewNamespaces()
	require.NoError(t, ns.AddWikilog(nsBlog, "Blog"))

	lookup := wiki.NewMemoryLookup()
	main := lookup.AddPage(wiki.MakeTitle(nsBlog, "Main").WithID(10))
	lookup.AddItem(&wiki.Item{
		ID:          11,
		Name:        "First post",
		Title:       wiki.MakeTitle(nsBlog, "Main/First_post"),
		Parent:      main.ArticleID,
		ParentTitle: main,
		Publish:     true,
		PubDate:     "20240105120000",
	})

	return Env{
		Namespaces: ns,
		EnableTags: true,
		Clock:      testutil.ClockAt(2024, time.March, 15),
		Lookup:     lookup,
	}
}

func mainWikilog() *wiki.Title {
	t := wiki.MakeTitle(nsBlog, "Main").WithID(10)
	return &t
}

func firstPost() *wiki.Item {
	return &wiki.Item{ID: 11, Name: "First post", Title: wiki.MakeTitle(nsBlog, "Main/First_post"), Parent: 10}
}

func condStrings(d *queryir.Descriptor) []string {
	out := make([]string, len(d.Conds))
	for i, p := range d.Conds {
		out[i] = p.String()
	}
	return out
}

func tableKeys(d *queryir.Descriptor) []string {
	out := make([]string, len(d.Tables))
	for i, tbl := range d.Tables {
		out[i] = tbl.Key()
	}
	return out
}

func hasCondOn(d *queryir.Descriptor, column string) bool {
	for _, p := range d.Conds {
		for _, c := range queryir.Columns(p) {
			if c == column {
				return true
			}
		}
	}
	return false
}

// isUnsatisfiable reports whether d carries a condition no row can meet.
func isUnsatisfiable(d *queryir.Descriptor) bool {
	for _, p := range d.Conds {
		if _, ok := p.(queryir.False); ok {
			return true
		}
	}
	return false
}
