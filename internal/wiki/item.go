package wiki

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Lookup implementations for unknown pages.
var ErrNotFound = errors.New("page not found")

// Item is a wikilog article.
type Item struct {
	ID          int64
	Name        string
	Title       Title
	Parent      int64
	ParentTitle Title
	Publish     bool
	PubDate     string // 14-digit timestamp
	Authors     []string
	Tags        []string
}

// Lookup resolves titles against stored pages. The query builders use it
// when a reference must be turned into a page id; they never touch storage
// themselves.
type Lookup interface {
	// PageID returns the id of the page with title t.
	PageID(ctx context.Context, t Title) (int64, error)
	// ItemByTitle loads the wikilog item stored under t.
	ItemByTitle(ctx context.Context, t Title) (*Item, error)
}

// ItemFromInfo loads the item named by info. Info must denote an item.
func ItemFromInfo(ctx context.Context, lookup Lookup, info *Info) (*Item, error) {
	if info == nil || !info.IsItem() {
		return nil, fmt.Errorf("wikilog info does not denote an item")
	}
	if lookup == nil {
		return nil, fmt.Errorf("load item %s: no lookup configured", info.ItemTitle.DBKey)
	}
	item, err := lookup.ItemByTitle(ctx, info.ItemTitle)
	if err != nil {
		return nil, fmt.Errorf("load item %s: %w", info.ItemTitle.DBKey, err)
	}
	return item, nil
}

// MemoryLookup is an in-memory Lookup for tests and tools.
// Safe for concurrent use.
type MemoryLookup struct {
	mu    sync.RWMutex
	pages map[Title]int64
	items map[int64]*Item
}

// NewMemoryLookup creates an empty MemoryLookup.
func NewMemoryLookup() *MemoryLookup {
	return &MemoryLookup{
		pages: map[Title]int64{},
		items: map[int64]*Item{},
	}
}

// AddPage registers a page. t.ArticleID must be set.
func (m *MemoryLookup) AddPage(t Title) Title {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[MakeTitle(t.Namespace, t.DBKey)] = t.ArticleID
	return t
}

// AddItem registers an item and its page.
func (m *MemoryLookup) AddItem(item *Item) *Item {
	m.AddPage(item.Title.WithID(item.ID))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return item
}

// PageID implements Lookup.
func (m *MemoryLookup) PageID(_ context.Context, t Title) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.pages[MakeTitle(t.Namespace, t.DBKey)]
	if !ok {
		return 0, ErrNotFound
	}
	return id, nil
}

// ItemByTitle implements Lookup.
func (m *MemoryLookup) ItemByTitle(ctx context.Context, t Title) (*Item, error) {
	id, err := m.PageID(ctx, t)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return item, nil
}
