// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectPageRefs_Order(t *testing.T) {
	b := newPDFBuilder()
	catalog := b.reserve()
	root := b.reserve()
	nodeA := b.reserve()
	nodeB := b.reserve()
	nodeC := b.reserve()
	p1 := b.add(fmt.Sprintf("<< /Type /Page /Parent %v >>", root))
	p2 := b.add(fmt.Sprintf("<< /Type /Page /Parent %v >>", nodeA))
	p3 := b.add(fmt.Sprintf("<< /Type /Page /Parent %v >>", nodeC))
	p4 := b.add(fmt.Sprintf("<< /Parent %v >>", nodeB))

	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %v >>", root))
	b.set(root, fmt.Sprintf("<< /Type /Pages /Kids [%v %v %v] /Count 4 >>", nodeA, p1, nodeB))
	b.set(nodeA, fmt.Sprintf("<< /Type /Pages /Kids [%v %v] /Count 2 >>", p2, nodeC))
	// no /Type: recognised by its /Kids
	b.set(nodeC, fmt.Sprintf("<< /Kids [%v] /Count 1 >>", p3))
	b.set(nodeB, fmt.Sprintf("<< /Type /Pages /Kids [%v 77 0 R] /Count 1 >>", p4))

	r := newTestReader(t, b.bytes(fmt.Sprintf("/Root %v", catalog)))
	got, err := CollectPageRefs(r)
	require.NoError(t, err)
	if diff := cmp.Diff([]ObjectID{p2, p3, p1, p4}, got); diff != "" {
		t.Errorf("page refs mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, r.NumPage())
}

// nestedPages builds a page tree of levels nested /Pages nodes above a
// single page.
func nestedPages(t *testing.T, levels int) (*Reader, ObjectID) {
	t.Helper()
	b := newPDFBuilder()
	catalog := b.reserve()
	nodes := make([]ObjectID, levels)
	for i := range nodes {
		nodes[i] = b.reserve()
	}
	page := b.add("<< /Type /Page >>")
	for i, id := range nodes {
		kid := page
		if i+1 < len(nodes) {
			kid = nodes[i+1]
		}
		b.set(id, fmt.Sprintf("<< /Type /Pages /Kids [%v] >>", kid))
	}
	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %v >>", nodes[0]))
	return newTestReader(t, b.bytes(fmt.Sprintf("/Root %v", catalog))), page
}

func TestCollectPageRefs_Depth(t *testing.T) {
	tests := []struct {
		levels  int
		wantErr bool
	}{
		{levels: 1},
		{levels: maxTreeDepth},
		{levels: maxTreeDepth + 1, wantErr: true},
		{levels: maxTreeDepth + 2, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("levels=%d", tt.levels), func(t *testing.T) {
			r, page := nestedPages(t, tt.levels)
			got, err := CollectPageRefs(r)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTreeTooDeep)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []ObjectID{page}, got)
		})
	}
}

func TestCollectPageRefs_NoTree(t *testing.T) {
	b := newPDFBuilder()
	b.add("<< /Type /Catalog >>")
	_, err := CollectPageRefs(newTestReader(t, b.bytes("/Root 1 0 R")))
	assert.ErrorIs(t, err, ErrMalformed)
}

func destinationsDoc(t *testing.T) (*Reader, []ObjectID) {
	t.Helper()
	b := newPDFBuilder()
	catalog := b.reserve()
	root := b.reserve()
	pages := make([]ObjectID, 4)
	var kids string
	for i := range pages {
		pages[i] = b.add(fmt.Sprintf("<< /Type /Page /Parent %v >>", root))
		kids += pages[i].String() + " "
	}
	b.set(root, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count 4 >>", kids))

	leaf := b.add(fmt.Sprintf("<< /Limits [(a) (c)] /Names [(a) [%v /Fit] (c) << /D [%v /Fit] >> (gone) [99 0 R /Fit]] >>", pages[2], pages[3]))
	tree := b.add(fmt.Sprintf("<< /Kids [%v] >>", leaf))
	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %v /Names << /Dests %v >> /Dests << /a [%v /Fit] /b << /D [%v /XYZ 0 0 0] >> >> >>",
		root, tree, pages[0], pages[1]))

	return newTestReader(t, b.bytes(fmt.Sprintf("/Root %v", catalog))), pages
}

func TestDestinationPages(t *testing.T) {
	r, pages := destinationsDoc(t)
	got, err := DestinationPages(r, pages)
	require.NoError(t, err)
	if diff := cmp.Diff(map[string]int{"a": 2, "b": 1, "c": 3}, got); diff != "" {
		t.Errorf("destinations mismatch (-want +got):\n%s", diff)
	}
}

func TestNavigator_Resolve(t *testing.T) {
	r, pages := destinationsDoc(t)
	nav, err := NewNavigator(r)
	require.NoError(t, err)
	assert.Equal(t, pages, nav.Pages)

	tests := []struct {
		dest   BookmarkDestination
		want   int
		wantOK bool
	}{
		{NamedDest("a"), 2, true},
		{NamedDest("b"), 1, true},
		{NamedDest("gone"), 0, false},
		{NamedDest("nope"), 0, false},
		{PageDest(pages[3]), 3, true},
		{PageDest(ObjectID{99, 0}), 0, false},
	}
	for _, tt := range tests {
		got, ok := nav.Resolve(tt.dest)
		assert.Equal(t, tt.wantOK, ok, "%v", tt.dest)
		assert.Equal(t, tt.want, got, "%v", tt.dest)
	}
}

func TestPage_Inheritance(t *testing.T) {
	r := newTestReader(t, supplement{pages: []string{textLine(1, 2, "x")}}.build())
	nav, err := NewNavigator(r)
	require.NoError(t, err)
	page := r.PageByRef(nav.Pages[0])

	assert.Equal(t, "WinAnsiEncoding", page.Font("F1").Key("Encoding").Name())
	assert.True(t, page.Font("F9").IsNull())

	data, err := page.Contents()
	require.NoError(t, err)
	assert.Equal(t, textLine(1, 2, "x"), string(data))
}

func TestPage_ContentsArray(t *testing.T) {
	b := newPDFBuilder()
	c1 := b.addStream("", []byte("BT (a) Tj"))
	c2 := b.addFlateStream("", []byte("ET"))
	page := b.add(fmt.Sprintf("<< /Type /Page /Contents [%v 42 %v] >>", c1, c2))
	r := newTestReader(t, b.bytes(""))

	p := r.PageByRef(page)
	data, err := p.Contents()
	require.NoError(t, err)
	assert.Equal(t, "BT (a) Tj\nET", string(data))

	ops, err := p.Operations()
	require.NoError(t, err)
	assert.Equal(t, []string{"BT", "Tj", "ET"}, operators(ops))
}
