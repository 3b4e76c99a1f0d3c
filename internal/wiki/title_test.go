package wiki

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNamespaces(t *testing.T) *Namespaces {
	t.Helper()
	ns := NewNamespaces()
	require.NoError(t, ns.AddWikilog(100, "Blog"))
	return ns
}

func TestMakeTitleSafe(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"simple", "Travel", "Travel", true},
		{"spaces become underscores", "road trips", "Road_trips", true},
		{"underscores collapse with spaces", "  road__ _trips ", "Road_trips", true},
		{"unicode first letter", "élan", "Élan", true},
		{"nfc", "Café", "Café", true},
		{"empty", "", "", false},
		{"blank", " _ ", "", false},
		{"illegal bracket", "a[b]", "", false},
		{"illegal hash", "a#b", "", false},
		{"relative path", "../x", "", false},
		{"control", "a\x00b", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, ok := MakeTitleSafe(NSCategory, tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, title.DBKey)
				assert.Equal(t, NSCategory, title.Namespace)
			}
		})
	}
}

func TestCanonicalUserName(t *testing.T) {
	name, ok := CanonicalUserName("jane_doe")
	require.True(t, ok)
	assert.Equal(t, "Jane doe", name)

	for _, bad := range []string{"", "a@b", "a/b", "Talk:x", "x|y"} {
		_, ok := CanonicalUserName(bad)
		assert.False(t, ok, "expected %q to be rejected", bad)
	}
}

func TestNamespaces_PrefixedAndParse(t *testing.T) {
	ns := testNamespaces(t)

	assert.Equal(t, "Blog:Main", ns.PrefixedDBKey(MakeTitle(100, "Main")))
	assert.Equal(t, "Blog_talk:Main/Post", ns.PrefixedDBKey(MakeTitle(101, "Main/Post")))
	assert.Equal(t, "Main_Page", ns.PrefixedDBKey(MakeTitle(NSMain, "Main_Page")))
	assert.Equal(t, "Blog:*", ns.PrefixedDBKey(MakeTitle(100, "*")))

	title, ok := ns.ParseTitle("blog:main")
	require.True(t, ok)
	assert.Equal(t, 100, title.Namespace)
	assert.Equal(t, "Main", title.DBKey)

	title, ok = ns.ParseTitle("Unknown:thing")
	require.True(t, ok)
	assert.Equal(t, NSMain, title.Namespace)
	assert.Equal(t, "Unknown:thing", title.DBKey)
}

func TestNamespaces_AddWikilogRejectsBadIDs(t *testing.T) {
	ns := NewNamespaces()
	assert.Error(t, ns.AddWikilog(101, "Odd"))
	assert.Error(t, ns.AddWikilog(4, "Low"))
	assert.Error(t, ns.AddWikilog(102, "User"))
	require.NoError(t, ns.AddWikilog(102, "News"))
	assert.True(t, ns.IsWikilog(102))
	assert.True(t, ns.IsWikilog(103))
	assert.False(t, ns.IsWikilog(NSUser))
	assert.Equal(t, []int{102}, ns.Wikilogs())
}

func TestNewInfo(t *testing.T) {
	ns := testNamespaces(t)

	t.Run("wikilog page", func(t *testing.T) {
		info, ok := ns.NewInfo(Title{Namespace: 100, DBKey: "Main", ArticleID: 7})
		require.True(t, ok)
		assert.False(t, info.IsItem())
		assert.Equal(t, "Main", info.Name)
		assert.Equal(t, int64(7), info.Title.ArticleID)
	})

	t.Run("item page", func(t *testing.T) {
		info, ok := ns.NewInfo(Title{Namespace: 100, DBKey: "Main/First_post", ArticleID: 9})
		require.True(t, ok)
		assert.True(t, info.IsItem())
		assert.Equal(t, "First post", info.ItemName)
		assert.Equal(t, "Main/First_post", info.ItemTitle.DBKey)
		assert.Equal(t, int64(9), info.ItemTitle.ArticleID)
		assert.Equal(t, int64(0), info.Title.ArticleID)
	})

	t.Run("comments page", func(t *testing.T) {
		info, ok := ns.NewInfo(Title{Namespace: 101, DBKey: "Main/First_post", ArticleID: 12})
		require.True(t, ok)
		assert.True(t, info.IsTalk())
		assert.Equal(t, 100, info.ItemTitle.Namespace)
		assert.Equal(t, int64(0), info.ItemTitle.ArticleID)
	})

	t.Run("not a wikilog namespace", func(t *testing.T) {
		_, ok := ns.NewInfo(Title{Namespace: NSMain, DBKey: "Main"})
		assert.False(t, ok)
	})
}

func TestMemoryLookup(t *testing.T) {
	ctx := context.Background()
	lookup := NewMemoryLookup()
	lookup.AddPage(Title{Namespace: 100, DBKey: "Main", ArticleID: 1})
	item := lookup.AddItem(&Item{ID: 2, Name: "Post", Title: MakeTitle(100, "Main/Post"), Parent: 1})

	id, err := lookup.PageID(ctx, MakeTitle(100, "Main"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := lookup.ItemByTitle(ctx, MakeTitle(100, "Main/Post"))
	require.NoError(t, err)
	assert.Same(t, item, got)

	_, err = lookup.ItemByTitle(ctx, MakeTitle(100, "Main"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = lookup.PageID(ctx, MakeTitle(100, "Missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}
