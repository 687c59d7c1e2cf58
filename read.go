// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package airtz reads FAA chart supplement PDFs, finds the
// "AIRPORT/FACILITY DIRECTORY" chapter through the document outline, replays
// the text drawn on each of its pages and maps every airport's ICAO code and
// UTC offset to an IANA time zone.
//
// # Document model
//
// A PDF is a graph of Values, each of which has one of the following Kinds:
//
//	Null, for the null object.
//	Integer, for an integer.
//	Real, for a floating-point number.
//	Bool, for a boolean value.
//	Name, for a name constant (as in /Helvetica).
//	String, for a string constant.
//	Dict, for a dictionary of name-value pairs.
//	Array, for an array of values.
//	Stream, for an opaque data stream and associated header dictionary.
//
// The accessors on Value (Int64, Float64, Bool, Name, and so on) return a
// view of the data as the given type, or a zero result when there is no
// appropriate view. This makes it possible to walk a document without error
// checks at every step. Structural damage found while resolving references
// panics with an error wrapping ErrMalformed; ExtractDocument converts such
// panics back into errors.
//
// # Extraction
//
// ExtractDocument runs the whole pipeline for one document. Processor runs
// it for many documents with bounded concurrency and prints results in order.
package airtz

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/RavuAlHemio/airfield-timezones/fontenc"
	"github.com/RavuAlHemio/airfield-timezones/logger"
)

// A Reader is a single PDF file open for reading. A Reader only issues
// ReadAt calls on the underlying file and keeps no caches, so it may be
// shared between goroutines.
type Reader struct {
	f          io.ReaderAt
	end        int64
	xref       []xref
	trailer    dict
	trailerptr ObjectID
	tables     *fontenc.Tables
}

type xref struct {
	ptr      ObjectID
	inStream bool
	stream   ObjectID
	offset   int64
}

// Open opens the named file. tables is used to decode PDFDocEncoding text
// strings; nil makes Text treat such strings as Latin-1.
// The returned file must be closed by the caller.
func Open(file string, tables *fontenc.Tables) (*os.File, *Reader, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	logger.Debug(fmt.Sprintf("document: file=%s opened (size=%d)", file, fi.Size()), true)
	reader, err := NewReader(f, fi.Size(), tables)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%s: %w", file, err)
	}
	return f, reader, nil
}

// NewReader opens a file for reading, using the data in f with the given total size.
func NewReader(f io.ReaderAt, size int64, tables *fontenc.Tables) (r *Reader, err error) {
	defer func() {
		if x := recover(); x != nil {
			r, err = nil, recoveredError(x)
		}
	}()

	if err := CheckHeader(f); err != nil {
		return nil, err
	}
	if err := ValidateEOFMarker(f, size); err != nil {
		return nil, err
	}
	startxref, err := FindStartXref(f, size)
	if err != nil {
		return nil, err
	}

	r = &Reader{f: f, end: size, tables: tables}
	b := newBuffer(io.NewSectionReader(r.f, startxref, r.end-startxref), startxref)
	table, trailerptr, trailer, err := readXref(r, b)
	if err != nil {
		return nil, err
	}
	r.xref = table
	r.trailer = trailer
	r.trailerptr = trailerptr

	if trailer[name("Encrypt")] != nil {
		return nil, ErrEncrypted
	}
	logger.Debug(fmt.Sprintf("xref: %d entries", len(table)), true)
	return r, nil
}

// recoveredError turns a value recovered from a reader panic into an error
// that wraps ErrMalformed.
func recoveredError(x interface{}) error {
	if err, ok := x.(error); ok {
		if errors.Is(err, ErrMalformed) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return fmt.Errorf("%w: %v", ErrMalformed, x)
}

func malformedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// CheckHeader validates the "%PDF-x.y" header near the start of the file.
// Versions 1.0 to 1.7 and 2.0 are accepted.
func CheckHeader(f io.ReaderAt) error {
	buf := make([]byte, 1024)
	n, err := f.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading header: %w", err)
	}
	if n == 0 {
		return malformedf("not a PDF file: empty")
	}
	buf = buf[:n]

	// some producers put a BOM or junk before the header
	p := bytes.Index(buf, []byte("%PDF-"))
	if p < 0 {
		return malformedf("not a PDF file: missing %%PDF- header")
	}
	line := buf[p:]
	if i := bytes.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	line = bytes.TrimRight(line, " \t\x00")

	var major, minor int
	if _, err := fmt.Sscanf(string(line), "%%PDF-%d.%d", &major, &minor); err != nil {
		return malformedf("not a PDF file: malformed version %q", line)
	}
	if !(major == 1 && minor >= 0 && minor <= 7) && !(major == 2 && minor == 0) {
		return malformedf("unsupported PDF version %d.%d", major, minor)
	}
	logger.Debug(fmt.Sprintf("header: PDF-%d.%d", major, minor), true)
	return nil
}

const endChunk = 1024

// tail returns up to endChunk bytes from the end of the file and the offset
// they start at.
func tail(f io.ReaderAt, size int64) ([]byte, int64, error) {
	start := size - endChunk
	if start < 0 {
		start = 0
	}
	buf := make([]byte, size-start)
	n, err := f.ReadAt(buf, start)
	if err != nil && err != io.EOF {
		return nil, 0, err
	}
	return buf[:n], start, nil
}

// ValidateEOFMarker checks that the file ends with "%%EOF", allowing
// trailing white space.
func ValidateEOFMarker(f io.ReaderAt, size int64) error {
	buf, _, err := tail(f, size)
	if err != nil {
		return fmt.Errorf("reading trailer: %w", err)
	}
	buf = bytes.TrimRight(buf, "\r\n\t\x00 ")
	if !bytes.HasSuffix(buf, []byte("%%EOF")) {
		return malformedf("not a PDF file: missing %%%%EOF")
	}
	return nil
}

// FindStartXref locates the last "startxref" keyword and returns the byte
// offset of the cross-reference section it points at.
func FindStartXref(f io.ReaderAt, size int64) (int64, error) {
	buf, start, err := tail(f, size)
	if err != nil {
		return 0, fmt.Errorf("reading trailer: %w", err)
	}
	i := findLastLine(buf, "startxref")
	if i < 0 {
		return 0, malformedf("missing final startxref")
	}
	pos := start + int64(i)
	b := newBuffer(io.NewSectionReader(f, pos, size-pos), pos)
	b.allowEOF = true

	if tok := b.readToken(); tok != keyword("startxref") {
		return 0, malformedf("missing startxref, found %v", tok)
	}
	startxref, ok := b.readToken().(int64)
	if !ok || startxref < 0 || startxref >= size {
		return 0, malformedf("startxref not followed by a valid offset")
	}
	logger.Debug(fmt.Sprintf("xref: startxref=%d", startxref), true)
	return startxref, nil
}

// findLastLine returns the index of the last occurrence of s in buf that is
// followed by white space ending in an end-of-line marker, or -1. Producers
// often leave blanks or NULs between the keyword and the newline.
func findLastLine(buf []byte, s string) int {
	bs := []byte(s)
	for end := len(buf); end > 0; {
		i := bytes.LastIndex(buf[:end], bs)
		if i < 0 {
			return -1
		}
		j := i + len(bs)
		k := j
		for k < len(buf) && isSpace(buf[k]) {
			k++
		}
		if k > j && bytes.ContainsAny(buf[j:k], "\r\n") {
			return i
		}
		end = i
	}
	return -1
}

// Trailer returns the file's trailer dictionary.
func (r *Reader) Trailer() Value {
	return Value{r, r.trailerptr, r.trailer}
}

func readXref(r *Reader, b *buffer) ([]xref, ObjectID, dict, error) {
	tok := b.readToken()
	if tok == keyword("xref") {
		logger.Debug("xref: table", true)
		return readXrefTable(r, b)
	}
	if _, ok := tok.(int64); ok {
		b.unreadToken(tok)
		logger.Debug("xref: stream", true)
		return readXrefStream(r, b)
	}
	return nil, ObjectID{}, nil, malformedf("cross-reference table not found: %v", tok)
}

func readXrefStream(r *Reader, b *buffer) ([]xref, ObjectID, dict, error) {
	strmptr, strm, err := parseXrefStreamObject(b)
	if err != nil {
		return nil, ObjectID{}, nil, err
	}
	size, err := xrefSize(strm)
	if err != nil {
		return nil, ObjectID{}, nil, err
	}
	table := make([]xref, size)
	table, err = readXrefStreamData(r, strm, table, size)
	if err != nil {
		return nil, ObjectID{}, nil, err
	}
	table, err = mergePrevXrefStreams(r, strm, table, size)
	if err != nil {
		return nil, ObjectID{}, nil, err
	}
	return table, strmptr, strm.hdr, nil
}

// parseXrefStreamObject reads one indirect object and checks that it is an
// /XRef stream.
func parseXrefStreamObject(b *buffer) (ObjectID, stream, error) {
	od, ok := b.readObject().(objdef)
	if !ok {
		return ObjectID{}, stream{}, malformedf("cross-reference stream object not found")
	}
	strm, ok := od.obj.(stream)
	if !ok {
		return ObjectID{}, stream{}, malformedf("cross-reference object %v is not a stream", od.ptr)
	}
	if strm.hdr["Type"] != name("XRef") {
		return ObjectID{}, stream{}, malformedf("cross-reference stream %v does not have type XRef", od.ptr)
	}
	return od.ptr, strm, nil
}

func xrefSize(strm stream) (int64, error) {
	size, ok := strm.hdr["Size"].(int64)
	if !ok || size < 0 {
		return 0, malformedf("cross-reference stream missing Size")
	}
	return size, nil
}

// mergePrevXrefStreams follows the /Prev chain of cross-reference streams.
// Entries already present win over older ones.
func mergePrevXrefStreams(r *Reader, cur stream, table []xref, maxSize int64) ([]xref, error) {
	seen := map[int64]bool{}
	for prevoff := cur.hdr["Prev"]; prevoff != nil; {
		off, ok := prevoff.(int64)
		if !ok || off < 0 || off >= r.end {
			return nil, malformedf("xref Prev is not a valid offset: %v", prevoff)
		}
		if seen[off] {
			return nil, malformedf("xref Prev chain loops at offset %d", off)
		}
		seen[off] = true
		logger.Debug(fmt.Sprintf("xref: following Prev stream at %d", off), true)

		b := newBuffer(io.NewSectionReader(r.f, off, r.end-off), off)
		_, prev, err := parseXrefStreamObject(b)
		if err != nil {
			return nil, err
		}
		psize, err := xrefSize(prev)
		if err != nil {
			return nil, err
		}
		if psize > maxSize {
			return nil, malformedf("xref Prev stream larger than last stream")
		}
		if table, err = readXrefStreamData(r, prev, table, psize); err != nil {
			return nil, err
		}
		prevoff = prev.hdr["Prev"]
	}
	return table, nil
}

func readXrefStreamData(r *Reader, strm stream, table []xref, size int64) ([]xref, error) {
	index, _ := strm.hdr["Index"].(array)
	if index == nil {
		index = array{int64(0), size}
	}
	if len(index)%2 != 0 {
		return nil, malformedf("invalid Index array %v", objfmt(index))
	}

	ww, ok := strm.hdr["W"].(array)
	if !ok || len(ww) < 3 {
		return nil, malformedf("xref stream missing W array")
	}
	var w []int
	for _, x := range ww {
		i, ok := x.(int64)
		if !ok || i < 0 || i > 8 {
			return nil, malformedf("invalid W array %v", objfmt(ww))
		}
		w = append(w, int(i))
	}

	v := Value{r, ObjectID{}, strm}
	buf := make([]byte, w[0]+w[1]+w[2])
	data := v.Reader()
	defer data.Close()

	for len(index) > 0 {
		start, ok1 := index[0].(int64)
		n, ok2 := index[1].(int64)
		if !ok1 || !ok2 || start < 0 || n < 0 {
			return nil, malformedf("malformed Index pair %v %v", objfmt(index[0]), objfmt(index[1]))
		}
		index = index[2:]
		for i := 0; i < int(n); i++ {
			if _, err := io.ReadFull(data, buf); err != nil {
				return nil, malformedf("reading xref stream: %v", err)
			}
			v1 := decodeInt(buf[0:w[0]])
			if w[0] == 0 {
				v1 = 1
			}
			v2 := decodeInt(buf[w[0] : w[0]+w[1]])
			v3 := decodeInt(buf[w[0]+w[1]:])
			x := int(start) + i
			table = ensureLen(table, x+1)
			if table[x].ptr != (ObjectID{}) {
				continue
			}
			switch v1 {
			case 0:
				table[x] = xref{ptr: ObjectID{0, 65535}}
			case 1:
				table[x] = xref{ptr: ObjectID{uint32(x), uint16(v3)}, offset: int64(v2)}
			case 2:
				table[x] = xref{ptr: ObjectID{uint32(x), 0}, inStream: true, stream: ObjectID{uint32(v2), 0}, offset: int64(v3)}
			default:
				logger.Debug(fmt.Sprintf("xref: ignoring entry %d of unknown type %d", x, v1))
			}
		}
	}
	return table, nil
}

func decodeInt(b []byte) int {
	x := 0
	for _, c := range b {
		x = x<<8 | int(c)
	}
	return x
}

func readXrefTable(r *Reader, b *buffer) ([]xref, ObjectID, dict, error) {
	table, trailer, err := parseXrefTableAndTrailer(b, nil)
	if err != nil {
		return nil, ObjectID{}, nil, err
	}

	// hybrid files: the stream listed in /XRefStm holds the compressed objects
	table, err = r.handleTrailerXRefStm(table, trailer)
	if err != nil {
		logger.Debug(fmt.Sprintf("xref: ignoring XRefStm: %v", err), true)
	}

	table, err = resolvePrevXrefTables(r, trailer, table)
	if err != nil {
		return nil, ObjectID{}, nil, err
	}

	size, ok := trailer[name("Size")].(int64)
	if !ok {
		return nil, ObjectID{}, nil, malformedf("trailer missing /Size")
	}
	if size < int64(len(table)) {
		table = table[:size]
	}
	return table, ObjectID{}, trailer, nil
}

// parseXrefTableAndTrailer reads one classic xref section and the trailer
// dictionary after it, adding entries not already in table.
func parseXrefTableAndTrailer(b *buffer, table []xref) ([]xref, dict, error) {
	table, err := readXrefTableData(b, table)
	if err != nil {
		return nil, nil, err
	}
	trailer, ok := b.readObject().(dict)
	if !ok {
		return nil, nil, malformedf("xref table not followed by trailer dictionary")
	}
	return table, trailer, nil
}

func resolvePrevXrefTables(r *Reader, trailer dict, table []xref) ([]xref, error) {
	seen := map[int64]bool{}
	for prevoff := trailer[name("Prev")]; prevoff != nil; {
		off, ok := prevoff.(int64)
		if !ok || off < 0 || off >= r.end {
			return nil, malformedf("xref Prev is not a valid offset: %v", prevoff)
		}
		if seen[off] {
			return nil, malformedf("xref Prev chain loops at offset %d", off)
		}
		seen[off] = true
		logger.Debug(fmt.Sprintf("xref: following Prev table at %d", off), true)

		b := newBuffer(io.NewSectionReader(r.f, off, r.end-off), off)
		if tok := b.readToken(); tok != keyword("xref") {
			return nil, malformedf("xref Prev does not point to xref")
		}
		var prev dict
		var err error
		table, prev, err = parseXrefTableAndTrailer(b, table)
		if err != nil {
			return nil, err
		}
		if table, err = r.handleTrailerXRefStm(table, prev); err != nil {
			logger.Debug(fmt.Sprintf("xref: ignoring XRefStm in Prev trailer: %v", err), true)
		}
		prevoff = prev[name("Prev")]
	}
	return table, nil
}

// ensureLen makes sure s has length at least n.
func ensureLen[T any](s []T, n int) []T {
	if n <= len(s) {
		return s
	}
	if cap(s) < n {
		ns := make([]T, n, n+n/4)
		copy(ns, s)
		return ns
	}
	return s[:n]
}

func readXrefTableData(b *buffer, table []xref) ([]xref, error) {
	for {
		tok := b.readToken()
		if tok == keyword("trailer") {
			break
		}
		start, ok1 := tok.(int64)
		count, ok2 := b.readToken().(int64)
		if !ok1 || !ok2 || start < 0 || count < 0 {
			return nil, malformedf("malformed xref table subsection header")
		}
		for i := 0; i < int(count); i++ {
			off, okOff := b.readToken().(int64)
			gen, okGen := b.readToken().(int64)
			alloc, okAlloc := b.readToken().(keyword)
			if !okOff || !okGen || !okAlloc {
				return nil, malformedf("malformed xref entry in subsection %d", start)
			}
			x := int(start) + i
			table = ensureLen(table, x+1)
			switch alloc {
			case "n":
				if table[x].ptr == (ObjectID{}) {
					table[x] = xref{ptr: ObjectID{uint32(x), uint16(gen)}, offset: off}
				}
			case "f":
			default:
				return nil, malformedf("malformed xref table: unexpected entry type %q", alloc)
			}
		}
	}
	return table, nil
}

// mergeXrefTables copies entries of src into dest where dest has no entry
// or a free one. Used entries of dest are kept.
func mergeXrefTables(dest, src []xref) []xref {
	dest = ensureLen(dest, len(src))
	for i, s := range src {
		if s.ptr == (ObjectID{}) {
			continue
		}
		if d := dest[i].ptr; d == (ObjectID{}) || d.Gen == 65535 {
			dest[i] = s
		}
	}
	return dest
}

var objHeader = regexp.MustCompile(`^\d+\s+\d+\s+obj\b`)

// isLikelyObjectAt reports whether an object header seems to start at off.
func (r *Reader) isLikelyObjectAt(off int64) bool {
	if off < 0 || off >= r.end {
		return false
	}
	buf := make([]byte, 64)
	n, err := r.f.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return false
	}
	return objHeader.Match(bytes.TrimLeft(buf[:n], " \t\r\n"))
}

// scanForObject searches window bytes either side of approx for the header
// of object id and returns its offset, or -1.
func (r *Reader) scanForObject(id ObjectID, approx, window int64) int64 {
	start := approx - window
	if start < 0 {
		start = 0
	}
	end := approx + window
	if end > r.end {
		end = r.end
	}
	if end <= start {
		return -1
	}
	buf := make([]byte, end-start)
	n, err := r.f.ReadAt(buf, start)
	if err != nil && err != io.EOF {
		return -1
	}
	re := regexp.MustCompile(fmt.Sprintf(`\b%d\s+%d\s+obj\b`, id.ID, id.Gen))
	loc := re.FindIndex(buf[:n])
	if loc == nil {
		return -1
	}
	return start + int64(loc[0])
}

// repairXrefOffsets fixes entries whose offset is slightly off, a common
// defect of hand-edited files. It returns the number of entries that point
// at no object even after the repair.
func (r *Reader) repairXrefOffsets(table []xref) (invalid int) {
	for i, ent := range table {
		if ent.ptr == (ObjectID{}) || ent.inStream || ent.offset == 0 {
			continue
		}
		if r.isLikelyObjectAt(ent.offset) {
			continue
		}
		if found := r.scanForObject(ent.ptr, ent.offset, 1024); found >= 0 {
			table[i].offset = found
			continue
		}
		invalid++
	}
	return invalid
}

// handleTrailerXRefStm merges the cross-reference stream named by the
// trailer's /XRefStm entry into table. A stream with too many dangling
// entries is rejected and table is returned unchanged.
func (r *Reader) handleTrailerXRefStm(table []xref, trailer dict) ([]xref, error) {
	xrefstm := trailer[name("XRefStm")]
	if xrefstm == nil {
		return table, nil
	}
	off, ok := xrefstm.(int64)
	if !ok || off < 0 || off >= r.end {
		return table, malformedf("XRefStm is not a valid offset: %v", xrefstm)
	}
	b := newBuffer(io.NewSectionReader(r.f, off, r.end-off), off)
	src, _, _, err := readXrefStream(r, b)
	if err != nil {
		return table, err
	}

	invalid, total := r.repairXrefOffsets(src), 0
	for _, e := range src {
		if e.ptr != (ObjectID{}) {
			total++
		}
	}
	if total > 0 && float64(invalid)/float64(total) > 0.30 {
		return table, malformedf("xref stream at %d has %d/%d dangling entries", off, invalid, total)
	}
	return mergeXrefTables(table, src), nil
}

// A Value is a single PDF value, such as an integer, dictionary, or array.
// The zero Value is a PDF null (Kind() == Null, IsNull() = true).
type Value struct {
	r    *Reader
	ptr  ObjectID
	data interface{}
}

// IsNull reports whether the value is a null. It is equivalent to Kind() == Null.
func (v Value) IsNull() bool {
	return v.data == nil
}

// A ValueKind specifies the kind of data underlying a Value.
type ValueKind int

// The PDF value kinds.
const (
	Null ValueKind = iota
	Bool
	Integer
	Real
	String
	Name
	Dict
	Array
	Stream
)

// Kind reports the kind of value underlying v.
func (v Value) Kind() ValueKind {
	switch v.data.(type) {
	default:
		return Null
	case bool:
		return Bool
	case int64:
		return Integer
	case float64:
		return Real
	case string:
		return String
	case name:
		return Name
	case dict:
		return Dict
	case array:
		return Array
	case stream:
		return Stream
	}
}

// String returns a textual representation of the value v.
// Note that String is not the accessor for values with Kind() == String.
// To access such values, see RawString and Text.
func (v Value) String() string {
	return objfmt(v.data)
}

func objfmt(x interface{}) string {
	switch x := x.(type) {
	default:
		return fmt.Sprint(x)
	case string:
		if isUTF16(x) {
			return strconv.Quote(utf16Decode(x))
		}
		return strconv.Quote(x)
	case name:
		return "/" + string(x)
	case dict:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		var buf strings.Builder
		buf.WriteString("<<")
		for i, k := range keys {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString("/" + k + " " + objfmt(x[name(k)]))
		}
		buf.WriteString(">>")
		return buf.String()
	case array:
		parts := make([]string, len(x))
		for i, elem := range x {
			parts[i] = objfmt(elem)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case stream:
		return fmt.Sprintf("%v@%d", objfmt(x.hdr), x.offset)
	case ObjectID:
		return x.String()
	case objdef:
		return fmt.Sprintf("{%d %d obj}%v", x.ptr.ID, x.ptr.Gen, objfmt(x.obj))
	}
}

// Bool returns v's boolean value.
// If v.Kind() != Bool, Bool returns false.
func (v Value) Bool() bool {
	x, _ := v.data.(bool)
	return x
}

// Int64 returns v's int64 value.
// If v.Kind() != Integer, Int64 returns 0.
func (v Value) Int64() int64 {
	x, _ := v.data.(int64)
	return x
}

// Float64 returns v's float64 value, converting from integer if necessary.
// If v.Kind() != Real and v.Kind() != Integer, Float64 returns 0.
func (v Value) Float64() float64 {
	switch x := v.data.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	}
	return 0
}

// RawString returns v's string value.
// If v.Kind() != String, RawString returns the empty string.
func (v Value) RawString() string {
	x, _ := v.data.(string)
	return x
}

// Name returns v's name value without the leading slash.
// If v.Kind() != Name, Name returns the empty string.
func (v Value) Name() string {
	x, _ := v.data.(name)
	return string(x)
}

func (v Value) dict() dict {
	switch x := v.data.(type) {
	case dict:
		return x
	case stream:
		return x.hdr
	}
	return nil
}

// Key returns the value associated with the given name key in the dictionary v.
// If v is a stream, Key applies to the stream's header dictionary.
// If v.Kind() != Dict and v.Kind() != Stream, Key returns a null Value.
func (v Value) Key(key string) Value {
	d := v.dict()
	if d == nil {
		return Value{}
	}
	return v.r.resolve(v.ptr, d[name(key)])
}

// KeyRef returns the object reference stored under key without resolving
// it. ok is false if the entry is missing or is a direct object.
func (v Value) KeyRef(key string) (id ObjectID, ok bool) {
	id, ok = v.dict()[name(key)].(ObjectID)
	return id, ok
}

// Keys returns a sorted list of the keys in the dictionary v.
// If v is a stream, Keys applies to the stream's header dictionary.
// If v.Kind() != Dict and v.Kind() != Stream, Keys returns nil.
func (v Value) Keys() []string {
	d := v.dict()
	if d == nil {
		return nil
	}
	keys := []string{} // not nil
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// Index returns the i'th element in the array v.
// If v.Kind() != Array or if i is outside the array bounds,
// Index returns a null Value.
func (v Value) Index(i int) Value {
	x, ok := v.data.(array)
	if !ok || i < 0 || i >= len(x) {
		return Value{}
	}
	return v.r.resolve(v.ptr, x[i])
}

// IndexRef returns the object reference stored at index i without resolving
// it. ok is false if v is not an array, i is out of range, or the element is
// a direct object.
func (v Value) IndexRef(i int) (id ObjectID, ok bool) {
	x, isArray := v.data.(array)
	if !isArray || i < 0 || i >= len(x) {
		return ObjectID{}, false
	}
	id, ok = x[i].(ObjectID)
	return id, ok
}

// Len returns the length of the array v.
// If v.Kind() != Array, Len returns 0.
func (v Value) Len() int {
	x, _ := v.data.(array)
	return len(x)
}

// Resolve loads the indirect object id.
// A missing or free object is a null Value.
func (r *Reader) Resolve(id ObjectID) Value {
	return r.resolve(ObjectID{}, id)
}

// resolve turns x into a Value, loading it from the file first if it is an
// object reference. Direct values never touch r, so content-stream operands
// can be wrapped with a nil Reader.
func (r *Reader) resolve(parent ObjectID, x interface{}) Value {
	if ptr, ok := x.(ObjectID); ok {
		if r == nil || ptr.ID >= uint32(len(r.xref)) {
			return Value{}
		}
		xr := r.xref[ptr.ID]
		if xr.ptr != ptr || !xr.inStream && xr.offset == 0 {
			return Value{}
		}
		if xr.inStream {
			x = r.loadFromObjectStream(parent, ptr, xr)
		} else {
			x = r.loadAt(ptr, xr.offset)
		}
		parent = ptr
	}

	switch x := x.(type) {
	case nil, bool, int64, float64, name, dict, array, stream, string:
		return Value{r, parent, x}
	default:
		panic(malformedf("unexpected value type %T in resolve", x))
	}
}

func (r *Reader) loadAt(ptr ObjectID, offset int64) object {
	b := newBuffer(io.NewSectionReader(r.f, offset, r.end-offset), offset)
	def, ok := b.readObject().(objdef)
	if !ok {
		panic(malformedf("loading %v: no object definition at offset %d", ptr, offset))
	}
	if def.ptr != ptr {
		panic(malformedf("loading %v: found %v", ptr, def.ptr))
	}
	return def.obj
}

// loadFromObjectStream finds ptr inside the object stream named by xr,
// following /Extends links.
func (r *Reader) loadFromObjectStream(parent, ptr ObjectID, xr xref) object {
	strm := r.resolve(parent, xr.stream)
	for hops := 0; hops < 32; hops++ {
		if strm.Kind() != Stream {
			panic(malformedf("object %v: container %v is not a stream", ptr, xr.stream))
		}
		if strm.Key("Type").Name() != "ObjStm" {
			panic(malformedf("object %v: container %v is not an object stream", ptr, xr.stream))
		}
		n := int(strm.Key("N").Int64())
		first := strm.Key("First").Int64()
		if first <= 0 {
			panic(malformedf("object stream %v: missing First", xr.stream))
		}
		rd := strm.Reader()
		b := newBuffer(rd, 0)
		b.allowEOF = true
		for i := 0; i < n; i++ {
			id, _ := b.readToken().(int64)
			off, _ := b.readToken().(int64)
			if uint32(id) == ptr.ID {
				b.seekForward(first + off)
				x := b.readObject()
				rd.Close()
				return x
			}
		}
		rd.Close()
		strm = strm.Key("Extends")
	}
	panic(malformedf("object %v not found in object stream %v", ptr, xr.stream))
}
