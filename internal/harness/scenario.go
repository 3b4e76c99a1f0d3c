package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Listing kinds.
const (
	KindItems    = "items"
	KindComments = "comments"
)

// clockLayout is the date format of Scenario.Clock.
const clockLayout = "2006-01-02"

// Scenario defines one filter run and its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is the path of the fixture to seed. Relative paths are
	// resolved against the scenario file by LoadScenario.
	Fixture string `yaml:"fixture"`

	// Kind selects the listing: "items" or "comments".
	Kind string `yaml:"kind"`

	// Clock pins the current date (YYYY-MM-DD) for month-only filters.
	// Defaults to DefaultClock.
	Clock string `yaml:"clock,omitempty"`

	// Params are the request parameters of the filter.
	Params map[string]string `yaml:"params"`

	// Options are passed to SetOptions before compiling.
	Options map[string]any `yaml:"options,omitempty"`

	// Expect is the required outcome.
	Expect Expect `yaml:"expect"`

	// Assertions are extra checks on the compiled query and its rows.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect specifies the outcome of a scenario.
type Expect struct {
	// IDs are the matched page ids (items) or comment ids, in result order.
	IDs []int64 `yaml:"ids"`

	// Params, if set, is the encoded DefaultQuery of the rebuilt filter.
	Params *string `yaml:"params,omitempty"`

	// Error, if set, is a substring of the error the filter must fail with.
	Error string `yaml:"error,omitempty"`
}

// Assertion is an extra check on a scenario run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Text is the SQL fragment for sql_contains.
	Text string `yaml:"text,omitempty"`

	// Table is the table name or alias for table_joined.
	Table string `yaml:"table,omitempty"`

	// ID selects the row for row_field.
	ID int64 `yaml:"id,omitempty"`

	// Field and Value are the expected column and value for row_field.
	Field string `yaml:"field,omitempty"`
	Value any    `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertSQLContains = "sql_contains"
	AssertTableJoined = "table_joined"
	AssertRowField    = "row_field"
)

// Fixture is the wiki content a scenario runs against.
type Fixture struct {
	// EnableTags toggles tag filtering; true when omitted.
	EnableTags *bool `yaml:"enable_tags,omitempty"`

	// Namespaces maps wikilog namespace names to their ids.
	Namespaces map[string]int `yaml:"namespaces"`

	Wikilogs []FixtureWikilog `yaml:"wikilogs"`
	Items    []FixtureItem    `yaml:"items"`
	Comments []FixtureComment `yaml:"comments,omitempty"`
}

// FixtureWikilog is a wikilog front page.
type FixtureWikilog struct {
	ID       int64  `yaml:"id"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle,omitempty"`
}

// FixtureItem is a wikilog article. Title is the prefixed item title.
type FixtureItem struct {
	ID         int64    `yaml:"id"`
	Title      string   `yaml:"title"`
	Wikilog    int64    `yaml:"wikilog"`
	Publish    bool     `yaml:"publish"`
	PubDate    string   `yaml:"pubdate"`
	Updated    string   `yaml:"updated,omitempty"`
	Authors    []string `yaml:"authors,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	Categories []string `yaml:"categories,omitempty"`
	Redirect   bool     `yaml:"redirect,omitempty"`
}

// FixtureComment is a comment on an item. Page and PageID describe the
// comment's own page and are optional.
type FixtureComment struct {
	ID        int64  `yaml:"id"`
	Parent    int64  `yaml:"parent,omitempty"`
	Item      int64  `yaml:"item"`
	Thread    string `yaml:"thread"`
	User      string `yaml:"user"`
	Status    string `yaml:"status,omitempty"`
	Timestamp string `yaml:"timestamp"`
	Updated   string `yaml:"updated,omitempty"`
	Page      string `yaml:"page,omitempty"`
	PageID    int64  `yaml:"page_id,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file and resolves its
// fixture path against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	var scenario Scenario
	if err := decodeStrict(path, &scenario); err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}

	if scenario.Fixture != "" && !filepath.IsAbs(scenario.Fixture) {
		scenario.Fixture = filepath.Join(filepath.Dir(path), scenario.Fixture)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadFixture reads and parses a fixture YAML file.
func LoadFixture(path string) (*Fixture, error) {
	var fixture Fixture
	if err := decodeStrict(path, &fixture); err != nil {
		return nil, fmt.Errorf("failed to load fixture: %w", err)
	}
	if err := validateFixture(&fixture); err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", path, err)
	}
	return &fixture, nil
}

// decodeStrict parses YAML rejecting unknown fields, so a typo like
// "assertion:" for "assertions:" fails loudly.
func decodeStrict(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Fixture == "" {
		return fmt.Errorf("fixture is required")
	}
	if _, err := os.Stat(s.Fixture); os.IsNotExist(err) {
		return fmt.Errorf("fixture file not found: %s", s.Fixture)
	}

	switch s.Kind {
	case KindItems, KindComments:
	default:
		return fmt.Errorf("kind must be %q or %q, got %q", KindItems, KindComments, s.Kind)
	}

	if s.Clock != "" {
		if _, err := time.Parse(clockLayout, s.Clock); err != nil {
			return fmt.Errorf("clock must be YYYY-MM-DD: %w", err)
		}
	}

	if s.Expect.Error != "" && len(s.Expect.IDs) > 0 {
		return fmt.Errorf("expect: ids and error are mutually exclusive")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSQLContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for sql_contains", index)
		}
	case AssertTableJoined:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for table_joined", index)
		}
	case AssertRowField:
		if a.ID == 0 {
			return fmt.Errorf("assertions[%d]: id is required for row_field", index)
		}
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for row_field", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for row_field", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func validateFixture(f *Fixture) error {
	seen := map[int64]string{}
	claim := func(id int64, what string) error {
		if id <= 0 {
			return fmt.Errorf("%s: id must be positive", what)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("%s: page id %d already used by %s", what, id, prev)
		}
		seen[id] = what
		return nil
	}

	for i, w := range f.Wikilogs {
		if w.Title == "" {
			return fmt.Errorf("wikilogs[%d]: title is required", i)
		}
		if err := claim(w.ID, fmt.Sprintf("wikilogs[%d]", i)); err != nil {
			return err
		}
	}
	for i, item := range f.Items {
		if item.Title == "" {
			return fmt.Errorf("items[%d]: title is required", i)
		}
		if item.PubDate == "" {
			return fmt.Errorf("items[%d]: pubdate is required", i)
		}
		if err := claim(item.ID, fmt.Sprintf("items[%d]", i)); err != nil {
			return err
		}
	}
	for i, c := range f.Comments {
		if c.ID <= 0 {
			return fmt.Errorf("comments[%d]: id must be positive", i)
		}
		if c.Item == 0 {
			return fmt.Errorf("comments[%d]: item is required", i)
		}
		if (c.Page == "") != (c.PageID == 0) {
			return fmt.Errorf("comments[%d]: page and page_id go together", i)
		}
		if c.PageID != 0 {
			if err := claim(c.PageID, fmt.Sprintf("comments[%d].page", i)); err != nil {
				return err
			}
		}
	}
	return nil
}
