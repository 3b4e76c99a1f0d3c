package cli

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItems_TextWithoutDatabase(t *testing.T) {
	out, err := runCLI(t, newTestFs(t),
		"items", "--config", testConfig, "--wikilog", "Blog:*", "--show", "drafts", "--year", "2024")
	require.NoError(t, err)

	assert.Contains(t, out, "?wikilog=Blog%3A%2A&show=drafts&year=2024")
	assert.Contains(t, out, "p.page_namespace = ?")
	assert.Contains(t, out, "wlp_publish = ?")
	assert.Contains(t, out, "wlp_pubdate >= ? AND wlp_pubdate < ?")
	assert.NotContains(t, out, "Rows")
}

func TestItems_JSONWithoutDatabase(t *testing.T) {
	out, err := runCLI(t, newTestFs(t),
		"--format", "json", "items", "--config", testConfig, "--author", "Alice", "--last-comment-timestamp")
	require.NoError(t, err)

	res := decodeJSON(t, out)
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, "trace-test", res.TraceID)
	assert.Equal(t, "items", res.Data.Kind)
	assert.Equal(t, "author=Alice", res.Data.Params)
	assert.False(t, res.Data.Executed)
	assert.Len(t, res.Data.Fingerprint, 64)
	assert.Contains(t, res.Data.SQL, "MAX(wlc_updated) AS _wlp_last_comment_timestamp")
	// Without a database the portable GROUP BY lists every item column.
	assert.Contains(t, res.Data.SQL, "GROUP BY wlp_page, wlp_parent, w.page_namespace")
	assert.Contains(t, string(res.Data.Descriptor), `"wikilog_authors"`)
}

func TestItems_QueryFlagOverride(t *testing.T) {
	out, err := runCLI(t, newTestFs(t),
		"--format", "json", "items", "--config", testConfig, "--query", "wikilog=Blog:*&show=all&tag=go", "--show", "drafts")
	require.NoError(t, err)

	res := decodeJSON(t, out)
	assert.Equal(t, "wikilog=Blog%3A%2A&show=drafts&tag=go", res.Data.Params)
}

func TestItems_ExecutesAgainstDatabase(t *testing.T) {
	fs := newTestFs(t)
	db := seedDatabase(t, fs)

	out, err := runCLI(t, fs,
		"--format", "json", "items", "--config", testConfig, "--db", db, "--wikilog", "Blog:Main", "--show", "all")
	require.NoError(t, err)

	res := decodeJSON(t, out)
	assert.True(t, res.Data.Executed)
	assert.Equal(t, []int{11, 12, 13}, rowIDs(res.Data.Rows, "wlp_page"))
	assert.Contains(t, res.Data.Params, "wikilog=Blog%3AMain")
}

func TestItems_TextRows(t *testing.T) {
	fs := newTestFs(t)
	db := seedDatabase(t, fs)

	out, err := runCLI(t, fs,
		"items", "--config", testConfig, "--db", db, "--wikilog", "Blog:Main", "--month", "3", "--year", "2024")
	require.NoError(t, err)

	assert.Contains(t, out, "Rows (1)")
	assert.Contains(t, out, "Main/Second_post")
	assert.NotContains(t, out, "Main/First_post")
}

func TestItems_UnknownWikilogIsEmpty(t *testing.T) {
	fs := newTestFs(t)
	db := seedDatabase(t, fs)

	out, err := runCLI(t, fs,
		"--format", "json", "items", "--config", testConfig, "--db", db, "--wikilog", "Blog:Nowhere")
	require.NoError(t, err)

	res := decodeJSON(t, out)
	assert.True(t, res.Data.Executed)
	assert.Empty(t, res.Data.Rows)
	assert.Contains(t, res.Data.SQL, "0 = 1")
}

func TestItems_DatabaseFromDotenv(t *testing.T) {
	fs := newTestFs(t)
	db := seedDatabase(t, fs)
	require.NoError(t, afero.WriteFile(fs, "/work/.env", []byte("WIKILOG_DB="+db+"\n"), 0o644))

	out, err := runCLI(t, fs, "--format", "json", "items", "--config", testConfig)
	require.NoError(t, err)

	res := decodeJSON(t, out)
	assert.True(t, res.Data.Executed)
	assert.Equal(t, []int{11, 13}, rowIDs(res.Data.Rows, "wlp_page"))
}

func TestItems_MissingDatabase(t *testing.T) {
	out, err := runCLI(t, newTestFs(t),
		"--format", "json", "items", "--config", testConfig, "--db", "/nonexistent/wiki.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	res := decodeJSON(t, out)
	assert.Equal(t, "error", res.Status)
	assert.Equal(t, ErrCodeDatabase, res.Error.Code)
}

func TestItems_DatabaseCheckedThroughFs(t *testing.T) {
	// The file exists on disk but not in the command's filesystem.
	db := seedDatabase(t, afero.NewMemMapFs())

	out, err := runCLI(t, newTestFs(t),
		"--format", "json", "items", "--config", testConfig, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	res := decodeJSON(t, out)
	assert.Equal(t, ErrCodeDatabase, res.Error.Code)
	assert.Contains(t, res.Error.Message, "database not found")
}

func TestItems_BadConfig(t *testing.T) {
	fs := newTestFs(t)
	require.NoError(t, afero.WriteFile(fs, "/cfg/bad.cue", []byte("enable_tags: \"maybe\"\n"), 0o644))

	out, err := runCLI(t, fs, "--format", "json", "items", "--config", "/cfg/bad.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeConfig, decodeJSON(t, out).Error.Code)
}

func TestItems_TagsDisabledByConfig(t *testing.T) {
	fs := newTestFs(t)
	require.NoError(t, afero.WriteFile(fs, "/cfg/notags.cue", []byte("enable_tags: false\nnamespaces: {Blog: 100}\n"), 0o644))

	out, err := runCLI(t, fs, "--format", "json", "items", "--config", "/cfg/notags.cue", "--tag", "go")
	require.NoError(t, err)

	res := decodeJSON(t, out)
	assert.Equal(t, "", res.Data.Params)
	assert.NotContains(t, res.Data.SQL, "wikilog_tags")
}
