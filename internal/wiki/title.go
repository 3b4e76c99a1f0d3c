package wiki

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// maxKeyBytes is the page_title column width.
const maxKeyBytes = 255

// illegalTitleChars may never appear in a page title.
const illegalTitleChars = "#<>[]|{}"

// Title identifies a page. DBKey is the normalized form stored in the
// page table (underscores for spaces, first letter upper-cased).
// ArticleID is zero when the page is not known to exist.
type Title struct {
	Namespace int    `json:"namespace"`
	DBKey     string `json:"db_key"`
	ArticleID int64  `json:"article_id,omitempty"`
}

// MakeTitle builds a Title without validating key. Used for wildcard
// scope markers such as "Blog:*".
func MakeTitle(ns int, key string) Title {
	return Title{Namespace: ns, DBKey: key}
}

// MakeTitleSafe normalizes text into a title in namespace ns.
// Returns false when text cannot form a valid title.
func MakeTitleSafe(ns int, text string) (Title, bool) {
	key, ok := normalizeKey(text)
	if !ok {
		return Title{}, false
	}
	return Title{Namespace: ns, DBKey: key}, true
}

// Text returns the title text with spaces instead of underscores.
func (t Title) Text() string {
	return strings.ReplaceAll(t.DBKey, "_", " ")
}

// Exists reports whether the title carries a page id.
func (t Title) Exists() bool {
	return t.ArticleID > 0
}

// WithID returns a copy of t carrying the given page id.
func (t Title) WithID(id int64) Title {
	t.ArticleID = id
	return t
}

// Equal compares namespace and key, ignoring ArticleID.
func (t Title) Equal(o Title) bool {
	return t.Namespace == o.Namespace && t.DBKey == o.DBKey
}

// BaseKey returns the DB key up to the first '/', and the remainder.
func (t Title) BaseKey() (base, sub string, hasSub bool) {
	return strings.Cut(t.DBKey, "/")
}

// PrefixedDBKey renders "Namespace:Key" ("Key" in the main namespace).
func (n *Namespaces) PrefixedDBKey(t Title) string {
	name, ok := n.Name(t.Namespace)
	if !ok || name == "" {
		return t.DBKey
	}
	return name + ":" + t.DBKey
}

// ParseTitle splits an optional namespace prefix off text and normalizes the
// rest. Unknown prefixes stay part of a main-namespace title.
func (n *Namespaces) ParseTitle(text string) (Title, bool) {
	if prefix, rest, found := strings.Cut(text, ":"); found {
		if ns, ok := n.ID(prefix); ok && ns != NSMain {
			return MakeTitleSafe(ns, rest)
		}
	}
	return MakeTitleSafe(NSMain, text)
}

// CanonicalUserName normalizes a user name the way author columns store it:
// spaces instead of underscores and an upper-cased first letter. Names
// containing '@', '/', ':' or '#' are not valid user names.
func CanonicalUserName(text string) (string, bool) {
	key, ok := normalizeKey(text)
	if !ok || strings.ContainsAny(key, "@/:") {
		return "", false
	}
	return strings.ReplaceAll(key, "_", " "), true
}

// normalizeKey applies title normalization and returns the DB key form.
func normalizeKey(text string) (string, bool) {
	s := norm.NFC.String(text)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" || len(s) > maxKeyBytes {
		return "", false
	}
	if strings.ContainsAny(s, illegalTitleChars) {
		return "", false
	}
	if s == "." || s == ".." || strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") {
		return "", false
	}
	for _, r := range s {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return "", false
		}
	}
	return strings.ReplaceAll(ucfirst(s), " ", "_"), true
}

func ucfirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
