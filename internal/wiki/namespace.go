// Package wiki models the page identities the query builders filter on:
// namespaces, normalized titles, wikilog info parsed from a title, wikilog
// items, and the Lookup collaborator that maps titles to stored pages.
package wiki

import (
	"fmt"
	"sort"
	"strings"
)

// Built-in namespace ids.
const (
	NSMain         = 0
	NSTalk         = 1
	NSUser         = 2
	NSUserTalk     = 3
	NSCategory     = 14
	NSCategoryTalk = 15
)

// Namespaces maps namespace ids to canonical names and records which subject
// namespaces hold wikilogs. Talk namespaces are always subject|1.
type Namespaces struct {
	names   map[int]string
	byName  map[string]int
	wikilog map[int]bool
}

// NewNamespaces creates a registry with the built-in namespaces.
func NewNamespaces() *Namespaces {
	n := &Namespaces{
		names:   map[int]string{},
		byName:  map[string]int{},
		wikilog: map[int]bool{},
	}
	n.add(NSMain, "")
	n.add(NSTalk, "Talk")
	n.add(NSUser, "User")
	n.add(NSUserTalk, "User_talk")
	n.add(NSCategory, "Category")
	n.add(NSCategoryTalk, "Category_talk")
	return n
}

func (n *Namespaces) add(id int, name string) {
	n.names[id] = name
	n.byName[strings.ToLower(name)] = id
}

// AddWikilog registers a wikilog subject namespace and its talk namespace
// ("<name>_talk"). The id must be even and not a built-in.
func (n *Namespaces) AddWikilog(id int, name string) error {
	if id < 100 || id%2 != 0 {
		return fmt.Errorf("wikilog namespace %q: id %d must be an even custom id (>= 100)", name, id)
	}
	key, ok := normalizeKey(name)
	if !ok {
		return fmt.Errorf("wikilog namespace %q: invalid name", name)
	}
	if existing, taken := n.byName[strings.ToLower(key)]; taken && existing != id {
		return fmt.Errorf("wikilog namespace %q: name already used by namespace %d", name, existing)
	}
	n.add(id, key)
	n.add(id+1, key+"_talk")
	n.wikilog[id] = true
	return nil
}

// Name returns the canonical name of a namespace ("" for Main).
func (n *Namespaces) Name(id int) (string, bool) {
	name, ok := n.names[id]
	return name, ok
}

// ID looks a namespace up by name, case-insensitively; spaces and underscores
// are equivalent.
func (n *Namespaces) ID(name string) (int, bool) {
	id, ok := n.byName[strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))]
	return id, ok
}

// IsWikilog reports whether ns (subject or talk) is a wikilog namespace.
func (n *Namespaces) IsWikilog(ns int) bool {
	return n.wikilog[Subject(ns)]
}

// Wikilogs returns the wikilog subject namespaces in ascending order.
func (n *Namespaces) Wikilogs() []int {
	ids := make([]int, 0, len(n.wikilog))
	for id := range n.wikilog {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Subject returns the subject namespace of ns.
func Subject(ns int) int {
	if ns < 0 {
		return ns
	}
	return ns &^ 1
}

// Talk returns the talk namespace of ns.
func Talk(ns int) int {
	if ns < 0 {
		return ns
	}
	return ns | 1
}

// IsTalk reports whether ns is a talk namespace.
func IsTalk(ns int) bool {
	return ns >= 0 && ns%2 == 1
}
