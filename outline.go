// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"fmt"

	"github.com/RavuAlHemio/airfield-timezones/logger"
)

// DefaultMaxOutlineEntries bounds the top-level outline walk.
const DefaultMaxOutlineEntries = 65536

// DestinationKind tells how a bookmark names its target page.
type DestinationKind int

const (
	// NamedDestination targets go through the document's name tree.
	NamedDestination DestinationKind = iota
	// PageDestination targets reference a page object directly.
	PageDestination
)

func (k DestinationKind) String() string {
	switch k {
	case NamedDestination:
		return "named"
	case PageDestination:
		return "page"
	}
	return fmt.Sprintf("DestinationKind(%d)", int(k))
}

// BookmarkDestination is where a bookmark points: either a destination name
// or a page reference, as told by Kind.
type BookmarkDestination struct {
	Kind DestinationKind
	Name string
	Page ObjectID
}

// NamedDest returns a destination looked up by name.
func NamedDest(name string) BookmarkDestination {
	return BookmarkDestination{Kind: NamedDestination, Name: name}
}

// PageDest returns a destination that references a page object.
func PageDest(id ObjectID) BookmarkDestination {
	return BookmarkDestination{Kind: PageDestination, Page: id}
}

func (d BookmarkDestination) String() string {
	if d.Kind == PageDestination {
		return "page " + d.Page.String()
	}
	return fmt.Sprintf("name %q", d.Name)
}

// A Bookmark is a top-level outline entry with a usable destination.
// Index counts only such entries, in outline order.
type Bookmark struct {
	Index       int
	Title       string
	Destination BookmarkDestination
}

// TopLevelBookmarks walks the first level of the document outline. Entries
// without a title or without a destination this package understands are
// skipped. The walk fails with ErrOutlineTooLong if it revisits an entry or
// sees more than limit entries; limit <= 0 means DefaultMaxOutlineEntries.
func TopLevelBookmarks(r *Reader, limit int) ([]Bookmark, error) {
	if limit <= 0 {
		limit = DefaultMaxOutlineEntries
	}
	outlines := r.Trailer().Key("Root").Key("Outlines")
	if outlines.Kind() != Dict {
		logger.Debug("outline: document has no outline", true)
		return nil, nil
	}

	var (
		out     []Bookmark
		visited = make(map[ObjectID]bool)
		seen    int
	)
	node := outlines.Key("First")
	id, hasID := outlines.KeyRef("First")
	for node.Kind() == Dict {
		if seen++; seen > limit {
			return nil, fmt.Errorf("more than %d outline entries: %w", limit, ErrOutlineTooLong)
		}
		if hasID {
			if visited[id] {
				return nil, fmt.Errorf("outline entry %v visited twice: %w", id, ErrOutlineTooLong)
			}
			visited[id] = true
		}

		if dest, title, ok := bookmarkOf(node); ok {
			out = append(out, Bookmark{Index: len(out), Title: title, Destination: dest})
		}

		id, hasID = node.KeyRef("Next")
		node = node.Key("Next")
	}
	logger.Debug(fmt.Sprintf("outline: %d top-level bookmarks from %d entries", len(out), seen), true)
	return out, nil
}

// bookmarkOf reads the title and destination of one outline item.
func bookmarkOf(node Value) (BookmarkDestination, string, bool) {
	t := node.Key("Title")
	if t.Kind() != String {
		return BookmarkDestination{}, "", false
	}
	title := t.Text()

	if dest := node.Key("Dest"); !dest.IsNull() {
		d, ok := destinationOf(dest)
		if !ok {
			logger.Debug(fmt.Sprintf("outline: %q has unusable destination %v", title, dest))
		}
		return d, title, ok
	}

	action := node.Key("A")
	if action.Kind() != Dict {
		return BookmarkDestination{}, "", false
	}
	if s := action.Key("S").Name(); s != "GoTo" {
		logger.Debug(fmt.Sprintf("outline: alternative action for %q: %s", title, s))
		return BookmarkDestination{}, "", false
	}
	d, ok := destinationOf(action.Key("D"))
	if !ok {
		logger.Debug(fmt.Sprintf("outline: %q has unusable GoTo target %v", title, action.Key("D")))
	}
	return d, title, ok
}

// destinationOf interprets a destination value: a name or string names a
// destination, an explicit array starts with the target page reference.
func destinationOf(v Value) (BookmarkDestination, bool) {
	switch v.Kind() {
	case String:
		return NamedDest(v.Text()), true
	case Name:
		return NamedDest(v.Name()), true
	case Array:
		if id, ok := v.IndexRef(0); ok {
			return PageDest(id), true
		}
	}
	return BookmarkDestination{}, false
}
