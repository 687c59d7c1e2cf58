// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strings"
	"testing"

	"github.com/RavuAlHemio/airfield-timezones/fontenc"
)

// pdfBuilder writes small, well-formed PDF files for tests. Object bodies
// are PDF source text; offsets and the cross-reference table are computed
// when the file is assembled.
type pdfBuilder struct {
	version string
	objs    []string
}

func newPDFBuilder() *pdfBuilder {
	return &pdfBuilder{version: "1.7"}
}

func (b *pdfBuilder) reserve() ObjectID {
	b.objs = append(b.objs, "null")
	return ObjectID{ID: uint32(len(b.objs))}
}

func (b *pdfBuilder) set(id ObjectID, body string) {
	b.objs[id.ID-1] = body
}

func (b *pdfBuilder) add(body string) ObjectID {
	id := b.reserve()
	b.set(id, body)
	return id
}

func (b *pdfBuilder) addStream(entries string, data []byte) ObjectID {
	return b.add(streamBody(entries, data))
}

func (b *pdfBuilder) addFlateStream(entries string, data []byte) ObjectID {
	return b.addStream("/Filter /FlateDecode "+entries, deflate(data))
}

func streamBody(entries string, data []byte) string {
	return fmt.Sprintf("<< /Length %d %s >>\nstream\n%s\nendstream", len(data), entries, data)
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

// writeObjects writes the header and all objects and returns their offsets.
func (b *pdfBuilder) writeObjects(buf *bytes.Buffer) []int {
	fmt.Fprintf(buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", b.version)
	offsets := make([]int, len(b.objs))
	for i, body := range b.objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	return offsets
}

// bytes assembles the file with a classic xref table. trailer holds extra
// trailer entries such as "/Root 1 0 R".
func (b *pdfBuilder) bytes(trailer string) []byte {
	var buf bytes.Buffer
	offsets := b.writeObjects(&buf)
	xrefAt := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(b.objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d %s >>\nstartxref\n%d\n%%%%EOF\n", len(b.objs)+1, trailer, xrefAt)
	return buf.Bytes()
}

// xrefRow encodes one cross-reference stream entry with field widths 1 4 2.
func xrefRow(typ, f2, f3 int) []byte {
	return []byte{
		byte(typ),
		byte(f2 >> 24), byte(f2 >> 16), byte(f2 >> 8), byte(f2),
		byte(f3 >> 8), byte(f3),
	}
}

// bytesWithXrefStream assembles the file with a cross-reference stream.
// inStream maps object numbers to the object stream holding them and their
// index in it; those objects must have been reserved but are not written.
func (b *pdfBuilder) bytesWithXrefStream(trailer string, inStream map[uint32][2]int) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", b.version)
	offsets := make([]int, len(b.objs))
	for i, body := range b.objs {
		if _, ok := inStream[uint32(i+1)]; ok {
			continue
		}
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefID := len(b.objs) + 1
	xrefAt := buf.Len()
	var rows []byte
	rows = append(rows, xrefRow(0, 0, 65535)...)
	for i, off := range offsets {
		if loc, ok := inStream[uint32(i+1)]; ok {
			rows = append(rows, xrefRow(2, loc[0], loc[1])...)
			continue
		}
		rows = append(rows, xrefRow(1, off, 0)...)
	}
	rows = append(rows, xrefRow(1, xrefAt, 0)...)

	fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", xrefID,
		streamBody(fmt.Sprintf("/Type /XRef /Size %d /W [1 4 2] %s", xrefID+1, trailer), rows))
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefAt)
	return buf.Bytes()
}

func newTestReader(t *testing.T, b []byte) *Reader {
	t.Helper()
	r, err := NewReader(bytes.NewReader(b), int64(len(b)), fontenc.MustLoad())
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	return r
}

func errHas(err error, sub string) bool {
	return err != nil && strings.Contains(err.Error(), sub)
}

// pdfString writes s as a PDF literal string.
func pdfString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}

// testBookmark is a top-level outline entry pointing at a page index.
type testBookmark struct {
	title string
	page  int
}

// supplement describes a chart supplement shaped test document.
type supplement struct {
	pages     []string // content stream of each page
	bookmarks []testBookmark
	named     bool // bookmarks use named destinations through the name tree
}

// fontF1 is the font every supplement page can select with /F1.
const fontF1 = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"

func (s supplement) build() []byte {
	b := newPDFBuilder()
	catalog := b.reserve()
	pagesRoot := b.reserve()
	outlines := b.reserve()
	font := b.add(fontF1)

	pageIDs := make([]ObjectID, len(s.pages))
	var kids []string
	for i, content := range s.pages {
		contents := b.addStream("", []byte(content))
		pageIDs[i] = b.add(fmt.Sprintf("<< /Type /Page /Parent %v /MediaBox [0 0 612 792] /Contents %v >>", pagesRoot, contents))
		kids = append(kids, pageIDs[i].String())
	}
	b.set(pagesRoot, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /Resources << /Font << /F1 %v >> >> >>",
		strings.Join(kids, " "), len(s.pages), font))

	items := make([]ObjectID, len(s.bookmarks))
	for i := range items {
		items[i] = b.reserve()
	}
	var names []string
	for i, bm := range s.bookmarks {
		dest := fmt.Sprintf("[%v /Fit]", pageIDs[bm.page])
		if s.named {
			key := fmt.Sprintf("dest%d", i)
			names = append(names, fmt.Sprintf("(%s) %s", key, dest))
			dest = "(" + key + ")"
		}
		body := fmt.Sprintf("<< /Title %s /Parent %v /Dest %s", pdfString(bm.title), outlines, dest)
		if i+1 < len(items) {
			body += fmt.Sprintf(" /Next %v", items[i+1])
		}
		if i > 0 {
			body += fmt.Sprintf(" /Prev %v", items[i-1])
		}
		b.set(items[i], body+" >>")
	}

	if len(items) > 0 {
		b.set(outlines, fmt.Sprintf("<< /Type /Outlines /First %v /Last %v /Count %d >>", items[0], items[len(items)-1], len(items)))
	} else {
		b.set(outlines, "<< /Type /Outlines /Count 0 >>")
	}

	cat := fmt.Sprintf("<< /Type /Catalog /Pages %v /Outlines %v", pagesRoot, outlines)
	if s.named {
		tree := b.add(fmt.Sprintf("<< /Names [%s] >>", strings.Join(names, " ")))
		cat += fmt.Sprintf(" /Names << /Dests %v >>", tree)
	}
	b.set(catalog, cat+" >>")

	info := b.add("<< /Title (Chart Supplement South Central U.S.) /Producer (test) >>")
	return b.bytes(fmt.Sprintf("/Root %v /Info %v", catalog, info))
}

// textLine returns a content stream fragment that shows s at (x, y) in F1.
func textLine(x, y int, s string) string {
	return fmt.Sprintf("BT /F1 9 Tf 1 0 0 1 %d %d Tm %s Tj ET\n", x, y, pdfString(s))
}
