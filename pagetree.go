// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"fmt"

	"github.com/RavuAlHemio/airfield-timezones/logger"
)

// maxTreeDepth bounds the page tree and the destination name tree.
const maxTreeDepth = 16

// CollectPageRefs returns the references of all page objects in document
// order.
func CollectPageRefs(r *Reader) ([]ObjectID, error) {
	root := r.Trailer().Key("Root").Key("Pages")
	if root.Kind() != Dict {
		return nil, fmt.Errorf("%w: catalog has no page tree", ErrMalformed)
	}
	var refs []ObjectID
	if err := collectPages(root, &refs, maxTreeDepth); err != nil {
		return nil, err
	}
	logger.Debug(fmt.Sprintf("pagetree: %d pages (declared %d)", len(refs), r.NumPage()), true)
	return refs, nil
}

func collectPages(node Value, refs *[]ObjectID, depth int) error {
	if depth == 0 {
		return fmt.Errorf("page tree: %w", ErrTreeTooDeep)
	}
	kids := node.Key("Kids")
	for i := 0; i < kids.Len(); i++ {
		kid := kids.Index(i)
		if kid.Kind() != Dict {
			logger.Debug(fmt.Sprintf("pagetree: kid %d is %v, skipping", i, kid.Kind()))
			continue
		}
		if isPagesNode(kid) {
			if err := collectPages(kid, refs, depth-1); err != nil {
				return err
			}
			continue
		}
		id, ok := kids.IndexRef(i)
		if !ok {
			logger.Debug(fmt.Sprintf("pagetree: page %d is a direct object, skipping", i))
			continue
		}
		*refs = append(*refs, id)
	}
	return nil
}

func isPagesNode(v Value) bool {
	switch v.Key("Type").Name() {
	case "Pages":
		return true
	case "Page":
		return false
	}
	return v.Key("Kids").Kind() == Array
}

// DestinationPages maps destination names to page indexes. Names come from
// the /Dests name tree under /Names, and from the older /Dests dictionary of
// the catalog; the name tree wins when both define a name. Destinations
// whose page is not in refs are left out.
func DestinationPages(r *Reader, refs []ObjectID) (map[string]int, error) {
	index := make(map[ObjectID]int, len(refs))
	for i, id := range refs {
		if _, dup := index[id]; !dup {
			index[id] = i
		}
	}
	out := make(map[string]int)
	catalog := r.Trailer().Key("Root")

	legacy := catalog.Key("Dests")
	for _, k := range legacy.Keys() {
		if i, ok := destPage(legacy.Key(k), index); ok {
			out[k] = i
		}
	}

	if tree := catalog.Key("Names").Key("Dests"); tree.Kind() == Dict {
		err := walkNameTree(tree, maxTreeDepth, func(key string, v Value) {
			if i, ok := destPage(v, index); ok {
				out[key] = i
			}
		})
		if err != nil {
			return nil, err
		}
	}
	logger.Debug(fmt.Sprintf("pagetree: %d named destinations", len(out)), true)
	return out, nil
}

// walkNameTree calls fn for every key/value pair of a name tree.
func walkNameTree(node Value, depth int, fn func(key string, v Value)) error {
	if depth == 0 {
		return fmt.Errorf("name tree: %w", ErrTreeTooDeep)
	}
	names := node.Key("Names")
	for i := 0; i+1 < names.Len(); i += 2 {
		key := names.Index(i)
		if key.Kind() != String {
			continue
		}
		fn(key.Text(), names.Index(i+1))
	}
	kids := node.Key("Kids")
	for i := 0; i < kids.Len(); i++ {
		if err := walkNameTree(kids.Index(i), depth-1, fn); err != nil {
			return err
		}
	}
	return nil
}

// destPage finds the page index of an explicit destination, which is either
// an array starting with the page or a dictionary holding it under /D.
func destPage(v Value, index map[ObjectID]int) (int, bool) {
	if v.Kind() == Dict {
		id, ok := v.Key("D").IndexRef(0)
		if !ok {
			return 0, false
		}
		i, ok := index[id]
		return i, ok
	}
	id, ok := v.IndexRef(0)
	if !ok {
		return 0, false
	}
	i, ok := index[id]
	return i, ok
}

// A Navigator resolves bookmark destinations to page indexes.
type Navigator struct {
	Pages []ObjectID
	Names map[string]int
}

// NewNavigator collects the page references and named destinations of r.
func NewNavigator(r *Reader) (*Navigator, error) {
	refs, err := CollectPageRefs(r)
	if err != nil {
		return nil, err
	}
	names, err := DestinationPages(r, refs)
	if err != nil {
		return nil, err
	}
	return &Navigator{Pages: refs, Names: names}, nil
}

// Resolve returns the zero-based page index dest points at.
func (n *Navigator) Resolve(dest BookmarkDestination) (int, bool) {
	switch dest.Kind {
	case NamedDestination:
		i, ok := n.Names[dest.Name]
		return i, ok
	case PageDestination:
		for i, id := range n.Pages {
			if id == dest.Page {
				return i, true
			}
		}
	}
	return 0, false
}
