package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/jravasi/mediawiki-wikilog/internal/config"
	"github.com/jravasi/mediawiki-wikilog/internal/query"
	"github.com/jravasi/mediawiki-wikilog/internal/queryir"
	"github.com/jravasi/mediawiki-wikilog/internal/querysql"
	"github.com/jravasi/mediawiki-wikilog/internal/store"
	"github.com/jravasi/mediawiki-wikilog/internal/testutil"
	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

// DefaultClock is the date scenarios run at unless they set clock.
var DefaultClock = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

// filter is implemented by query.ItemQuery and query.CommentQuery.
type filter interface {
	SetOptions(opts any) error
	Compile(hints queryir.Hints) (*queryir.Descriptor, error)
	DefaultQuery() *query.Params
}

// Harness runs one scenario against its seeded store.
type Harness struct {
	store  *store.Store
	env    query.Env
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with a
// fixed clock so month-only filters are reproducible.
//
// Execution flow:
// 1. Create fresh in-memory database and seed the fixture
// 2. Rebuild the filter from the scenario's request parameters
// 3. Compile with the store's hints and execute
// 4. Check the expectation and assertions
func Run(scenario *Scenario) (*Result, error) {
	fixture, err := LoadFixture(scenario.Fixture)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	now := DefaultClock
	if scenario.Clock != "" {
		if now, err = time.Parse(clockLayout, scenario.Clock); err != nil {
			return nil, fmt.Errorf("invalid clock: %w", err)
		}
	}

	cfg := config.Default()
	if fixture.EnableTags != nil {
		cfg.EnableTags = *fixture.EnableTags
	}
	if fixture.Namespaces != nil {
		cfg.Namespaces = fixture.Namespaces
	}
	env, err := cfg.Env(st, testutil.NewFixedClock(now))
	if err != nil {
		return nil, fmt.Errorf("failed to build environment: %w", err)
	}

	h := &Harness{
		store:  st,
		env:    env,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()
	if err := h.seed(ctx, fixture); err != nil {
		return nil, fmt.Errorf("failed to seed fixture: %w", err)
	}

	result := NewResult()
	result.idColumn = "wlp_page"
	if scenario.Kind == KindComments {
		result.idColumn = "wlc_id"
	}

	if err := h.execute(ctx, scenario, result); err != nil {
		return nil, err
	}

	checkExpect(scenario.Expect, result)
	if result.Err == nil {
		for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
			result.AddError(errMsg)
		}
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"rows", len(result.IDs),
	)
	return result, nil
}

// execute rebuilds, compiles and runs the scenario's filter. Filter
// rejections are recorded in result.Err; only infrastructure failures are
// returned.
func (h *Harness) execute(ctx context.Context, scenario *Scenario, result *Result) error {
	values := url.Values{}
	for key, value := range scenario.Params {
		values.Set(key, value)
	}

	var (
		q   filter
		err error
	)
	switch scenario.Kind {
	case KindItems:
		q, err = query.ParseItemQuery(ctx, h.env, values)
	case KindComments:
		q, err = query.ParseCommentQuery(ctx, h.env, values)
	default:
		return fmt.Errorf("unknown kind %q", scenario.Kind)
	}
	if err != nil {
		result.Err = err
		return nil
	}

	if len(scenario.Options) > 0 {
		if err := q.SetOptions(scenario.Options); err != nil {
			result.Err = err
			return nil
		}
	}

	d, err := q.Compile(h.store.Hints())
	if err != nil {
		result.Err = err
		return nil
	}
	result.descriptor = d
	result.Params = q.DefaultQuery().Encode()
	for _, t := range d.Tables {
		result.Tables = append(result.Tables, t.Key())
	}

	sql, _, err := querysql.NewSQLCompiler().Compile(d)
	if err != nil {
		return fmt.Errorf("failed to compile SQL: %w", err)
	}
	result.SQL = sql

	rows, err := h.store.Select(ctx, d)
	if err != nil {
		return fmt.Errorf("failed to select: %w", err)
	}
	result.Rows, err = queryir.Collect(rows)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}
	for _, row := range result.Rows {
		id, ok := row.Int(result.idColumn)
		if !ok {
			return fmt.Errorf("row without %s", result.idColumn)
		}
		result.IDs = append(result.IDs, id)
	}
	return nil
}

// checkExpect compares the outcome with the scenario's expectation.
func checkExpect(expect Expect, result *Result) {
	if expect.Error != "" {
		switch {
		case result.Err == nil:
			result.AddError(fmt.Sprintf("expected error containing %q, filter was accepted", expect.Error))
		case !strings.Contains(result.Err.Error(), expect.Error):
			result.AddError(fmt.Sprintf("expected error containing %q, got %q", expect.Error, result.Err.Error()))
		}
		return
	}
	if result.Err != nil {
		result.AddError(fmt.Sprintf("filter rejected: %v", result.Err))
		return
	}

	want := expect.IDs
	if want == nil {
		want = []int64{}
	}
	if !slices.Equal(want, result.IDs) {
		result.AddError(fmt.Sprintf("ids: expected %v, got %v", want, result.IDs))
	}
	if expect.Params != nil && *expect.Params != result.Params {
		result.AddError(fmt.Sprintf("params: expected %q, got %q", *expect.Params, result.Params))
	}
}

// seed writes the fixture's wikilogs, items and comments.
func (h *Harness) seed(ctx context.Context, f *Fixture) error {
	for i, w := range f.Wikilogs {
		t, err := h.parseTitle(w.Title)
		if err != nil {
			return fmt.Errorf("wikilogs[%d]: %w", i, err)
		}
		if err := h.store.PutWikilog(ctx, t.WithID(w.ID), w.Subtitle); err != nil {
			return fmt.Errorf("wikilogs[%d]: %w", i, err)
		}
	}

	for i, fi := range f.Items {
		t, err := h.parseTitle(fi.Title)
		if err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		_, name, ok := t.BaseKey()
		if !ok {
			return fmt.Errorf("items[%d]: %s is not a subpage of a wikilog", i, fi.Title)
		}
		updated := fi.Updated
		if updated == "" {
			updated = fi.PubDate
		}
		rec := store.ItemRecord{
			Item: wiki.Item{
				ID:      fi.ID,
				Name:    name,
				Title:   t,
				Parent:  fi.Wikilog,
				Publish: fi.Publish,
				PubDate: fi.PubDate,
				Authors: fi.Authors,
				Tags:    fi.Tags,
			},
			Updated:    updated,
			Categories: fi.Categories,
			IsRedirect: fi.Redirect,
		}
		if err := h.store.PutItem(ctx, rec); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
	}

	for i, fc := range f.Comments {
		rec := store.CommentRecord{
			ID:        fc.ID,
			Parent:    fc.Parent,
			Thread:    fc.Thread,
			Post:      fc.Item,
			UserText:  fc.User,
			Status:    fc.Status,
			Timestamp: fc.Timestamp,
			Updated:   fc.Updated,
		}
		if fc.Page != "" {
			t, err := h.parseTitle(fc.Page)
			if err != nil {
				return fmt.Errorf("comments[%d]: %w", i, err)
			}
			t = t.WithID(fc.PageID)
			rec.Page = &t
		}
		if err := h.store.PutComment(ctx, rec); err != nil {
			return fmt.Errorf("comments[%d]: %w", i, err)
		}
	}

	h.logger.Info("fixture seeded",
		"wikilogs", len(f.Wikilogs),
		"items", len(f.Items),
		"comments", len(f.Comments),
	)
	return nil
}

func (h *Harness) parseTitle(text string) (wiki.Title, error) {
	t, ok := h.env.Namespaces.ParseTitle(text)
	if !ok {
		return wiki.Title{}, fmt.Errorf("invalid title %q", text)
	}
	return t, nil
}
