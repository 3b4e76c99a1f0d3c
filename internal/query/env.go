package query

import (
	"time"

	"github.com/jravasi/mediawiki-wikilog/internal/wiki"
)

// Clock supplies the current time for month-only date filters.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the UTC wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Env carries the site configuration and collaborators shared by builders.
// The zero value is usable: built-in namespaces only, tags disabled, system
// clock, no lookup.
//
// Without a Lookup, wikilog scopes carry no page id and compile to a match
// on the wikilog page's namespace and title; items cannot be loaded, so
// item scopes from titles force the query empty.
type Env struct {
	Namespaces *wiki.Namespaces
	EnableTags bool
	Clock      Clock
	Lookup     wiki.Lookup
}

func (e Env) namespaces() *wiki.Namespaces {
	if e.Namespaces == nil {
		return wiki.NewNamespaces()
	}
	return e.Namespaces
}

func (e Env) now() time.Time {
	if e.Clock == nil {
		return SystemClock{}.Now()
	}
	return e.Clock.Now()
}
