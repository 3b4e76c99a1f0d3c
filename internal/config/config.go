package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/jravasi/mediawiki-wikilog/internal/query"
	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

//go:embed schema.cue
var schemaCUE string

// Config is the resolved wikilog configuration.
type Config struct {
	EnableTags bool           `json:"enable_tags"`
	Namespaces map[string]int `json:"namespaces"`
	Database   string         `json:"database"`

	// Path is the file the configuration was read from; empty for defaults.
	Path string `json:"-"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{EnableTags: true, Namespaces: map[string]int{}}
}

// DefaultPath returns ~/.config/wikilog/config.cue.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".config", "wikilog", "config.cue"), nil
}

// LoadError is a configuration error with its CUE source position.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads the configuration at path from fs.
//
// An empty path means DefaultPath, and a missing default file yields
// Default(). An explicit path must exist.
func Load(fs afero.Fs, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse validates a CUE document against the configuration schema.
// Unknown fields are rejected.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	doc := ctx.CompileBytes(data, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := Default()
	if err := v.Decode(cfg); err != nil {
		return nil, formatCUEError(err)
	}
	if cfg.Namespaces == nil {
		cfg.Namespaces = map[string]int{}
	}
	return cfg, nil
}

// Env builds the query environment for this configuration.
func (c *Config) Env(lookup wiki.Lookup, clock query.Clock) (query.Env, error) {
	ns := wiki.NewNamespaces()

	names := make([]string, 0, len(c.Namespaces))
	for name := range c.Namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ns.AddWikilog(c.Namespaces[name], name); err != nil {
			return query.Env{}, fmt.Errorf("config namespaces: %w", err)
		}
	}

	if clock == nil {
		clock = query.SystemClock{}
	}
	return query.Env{
		Namespaces: ns,
		EnableTags: c.EnableTags,
		Clock:      clock,
		Lookup:     lookup,
	}, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := "config"
	if path := first.Path(); len(path) > 0 {
		field = path[len(path)-1]
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		return &LoadError{Field: field, Message: first.Error(), Pos: positions[0]}
	}
	return &LoadError{Field: field, Message: first.Error()}
}
