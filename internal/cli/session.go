package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jravasi/mediawiki-wikilog/internal/config"
	"github.com/jravasi/mediawiki-wikilog/internal/query"
	"github.com/jravasi/mediawiki-wikilog/internal/queryir"
	"github.com/jravasi/mediawiki-wikilog/internal/store"
	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

// session is the resolved environment of one command run.
type session struct {
	cfg   *config.Config
	env   query.Env
	store *store.Store // nil when no database is configured
	hints queryir.Hints
}

func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// openSession resolves configuration and database locations from flags,
// environment and .env files, loads the configuration and opens the
// database if one is given.
func openSession(opts *RootOptions, cmd *cobra.Command, formatter *OutputFormatter) (*session, error) {
	v, err := config.NewViper(opts.Fs, opts.WorkDir)
	if err != nil {
		return nil, fail(formatter, ExitCommandError, ErrCodeConfig, "resolving configuration", err)
	}
	flags := cmd.Root().PersistentFlags()
	if err := v.BindPFlag(config.KeyConfig, flags.Lookup("config")); err != nil {
		return nil, fail(formatter, ExitCommandError, ErrCodeConfig, "binding --config", err)
	}
	if err := v.BindPFlag(config.KeyDatabase, flags.Lookup("db")); err != nil {
		return nil, fail(formatter, ExitCommandError, ErrCodeConfig, "binding --db", err)
	}

	cfg, err := config.Load(opts.Fs, v.GetString(config.KeyConfig))
	if err != nil {
		return nil, fail(formatter, ExitCommandError, ErrCodeConfig, "loading configuration", err)
	}
	if cfg.Path != "" {
		formatter.VerboseLog("Loaded configuration from %s", cfg.Path)
	}

	sess := &session{cfg: cfg}
	var lookup wiki.Lookup

	dbPath := v.GetString(config.KeyDatabase)
	if dbPath == "" {
		dbPath = cfg.Database
	}
	if dbPath != "" {
		// Open would create a missing file; a query needs existing data.
		exists, err := afero.Exists(opts.Fs, dbPath)
		if err != nil {
			return nil, fail(formatter, ExitCommandError, ErrCodeDatabase, "checking database", err)
		}
		if !exists {
			return nil, fail(formatter, ExitCommandError, ErrCodeDatabase,
				fmt.Sprintf("database not found: %s", dbPath), nil)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fail(formatter, ExitCommandError, ErrCodeDatabase, "opening database", err)
		}
		formatter.VerboseLog("Opened database %s", dbPath)
		sess.store = st
		sess.hints = st.Hints()
		lookup = st
	}

	sess.env, err = cfg.Env(lookup, opts.Clock)
	if err != nil {
		sess.Close()
		return nil, fail(formatter, ExitCommandError, ErrCodeConfig, "building query environment", err)
	}
	return sess, nil
}

// fail reports an error through the formatter and returns it as an
// ExitError. err may be nil.
func fail(formatter *OutputFormatter, exitCode int, errCode, message string, err error) error {
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	if outErr := formatter.Error(errCode, text, nil); outErr != nil {
		return outErr
	}
	if err != nil {
		return WrapExitError(exitCode, message, err)
	}
	return NewExitError(exitCode, message)
}
