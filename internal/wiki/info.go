package wiki

// Info describes where a page sits in the wikilog hierarchy: the wikilog it
// belongs to and, for article pages, the item. Info is derived from the
// title alone; nothing is looked up.
//
// "Blog:Main" is the wikilog Main; "Blog:Main/First_post" is the item
// First_post of wikilog Main; "Blog_talk:Main/First_post" is that item's
// comments page.
type Info struct {
	Name      string
	Title     Title
	ItemName  string
	ItemTitle Title
	talk      bool
}

// NewInfo parses t into wikilog info. Returns false when t is not in a
// wikilog namespace.
func (n *Namespaces) NewInfo(t Title) (*Info, bool) {
	if !n.IsWikilog(t.Namespace) || t.DBKey == "" {
		return nil, false
	}
	subject := Subject(t.Namespace)
	base, sub, hasSub := t.BaseKey()
	if base == "" {
		return nil, false
	}

	info := &Info{
		Name:  MakeTitle(subject, base).Text(),
		Title: MakeTitle(subject, base),
		talk:  IsTalk(t.Namespace),
	}
	if !info.talk && !hasSub {
		info.Title = info.Title.WithID(t.ArticleID)
	}
	if hasSub && sub != "" {
		info.ItemName = MakeTitle(subject, sub).Text()
		info.ItemTitle = MakeTitle(subject, base+"/"+sub)
		if !info.talk {
			info.ItemTitle = info.ItemTitle.WithID(t.ArticleID)
		}
	}
	return info, true
}

// IsItem reports whether the info denotes a wikilog item (or its comments).
func (i *Info) IsItem() bool {
	return i.ItemName != ""
}

// IsTalk reports whether the info was parsed from a talk (comments) page.
func (i *Info) IsTalk() bool {
	return i.talk
}
