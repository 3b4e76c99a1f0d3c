package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jravasi/mediawiki-wikilog/internal/store"
	"github.com/jravasi/mediawiki-wikilog/internal/testutil"
	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

const testConfig = "/cfg/wikilog.cue"

// newTestFs returns a memory filesystem holding a configuration that
// declares the Blog wikilog namespace (100).
func newTestFs(t *testing.T) afero.Fs {
	t.Helper()
	t.Setenv("WIKILOG_CONFIG", "")
	t.Setenv("WIKILOG_DB", "")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testConfig, []byte("namespaces: {Blog: 100}\n"), 0o644))
	return fs
}

// runCLI executes the root command and returns stdout.
func runCLI(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	opts := &RootOptions{
		Fs:      fs,
		WorkDir: "/work",
		Trace:   testutil.NewFixedTraceGenerator("trace-test"),
		Clock:   testutil.ClockAt(2024, time.March, 15),
	}
	cmd := NewRootCommandWith(opts)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// seedDatabase writes a database with the wikilog Blog:Main (10), two
// published items (11, 13), a draft (12) and two comments on item 11.
// SQLite opens the file on disk; fs gets an empty entry at the same path
// so the existence check through the CLI filesystem passes.
func seedDatabase(t *testing.T, fs afero.Fs) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wiki.db")
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, nil, 0o644))
	s, err := store.Open(path)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	main := wiki.MakeTitle(100, "Main").WithID(10)
	require.NoError(t, s.PutWikilog(ctx, main, ""))

	items := []wiki.Item{
		{ID: 11, Name: "First_post", Publish: true, PubDate: "20240105120000", Authors: []string{"Alice"}},
		{ID: 12, Name: "Draft", PubDate: "20240210090000", Authors: []string{"Bob"}},
		{ID: 13, Name: "Second_post", Publish: true, PubDate: "20240301080000", Authors: []string{"Bob"}},
	}
	for _, item := range items {
		item.Title = wiki.MakeTitle(100, "Main/"+item.Name)
		item.Parent = main.ArticleID
		require.NoError(t, s.PutItem(ctx, store.ItemRecord{Item: item, Updated: item.PubDate}))
	}

	require.NoError(t, s.PutComment(ctx, store.CommentRecord{
		ID: 1, Thread: "00000001", Post: 11, UserText: "Bob", Status: "OK", Timestamp: "20240106100000",
	}))
	require.NoError(t, s.PutComment(ctx, store.CommentRecord{
		ID: 2, Parent: 1, Thread: "00000001/00000002", Post: 11, UserText: "Alice", Status: "PENDING", Timestamp: "20240107100000",
	}))
	return path
}

// jsonResult mirrors QueryResult with generic rows.
type jsonResult struct {
	Status string `json:"status"`
	Data   struct {
		Kind        string           `json:"kind"`
		Params      string           `json:"params"`
		Fingerprint string           `json:"fingerprint"`
		Descriptor  json.RawMessage  `json:"descriptor"`
		SQL         string           `json:"sql"`
		Args        []any            `json:"args"`
		Executed    bool             `json:"executed"`
		Rows        []map[string]any `json:"rows"`
	} `json:"data"`
	Error   *CLIError `json:"error"`
	TraceID string    `json:"trace_id"`
}

func decodeJSON(t *testing.T, out string) jsonResult {
	t.Helper()
	var res jsonResult
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res
}

func rowIDs(rows []map[string]any, key string) []int {
	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		if f, ok := row[key].(float64); ok {
			ids = append(ids, int(f))
		}
	}
	return ids
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "wikilog", cmd.Use)
	assert.Contains(t, cmd.Long, "descriptor")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, cmdName := range []string{"items", "comments"} {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestItemsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	itemsCmd, _, err := cmd.Find([]string{"items"})
	require.NoError(t, err)

	for _, name := range []string{"query", "wikilog", "show", "category", "author", "tag", "year", "month", "day", "last-comment-timestamp"} {
		assert.NotNil(t, itemsCmd.Flags().Lookup(name), "items --%s", name)
	}
	assert.Equal(t, "q", itemsCmd.Flags().Lookup("query").Shorthand)
}

func TestCommentsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	commentsCmd, _, err := cmd.Find([]string{"comments"})
	require.NoError(t, err)

	for _, name := range []string{"query", "wikilog", "item", "show", "thread", "author", "year", "month", "day", "include-item"} {
		assert.NotNil(t, commentsCmd.Flags().Lookup(name), "comments --%s", name)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := runCLI(t, newTestFs(t), "--format", "yaml", "items", "--config", testConfig)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
