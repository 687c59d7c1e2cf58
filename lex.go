// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// A token is a PDF token in the input stream: one of
//
//	bool, int64, float64, nil, string, name, keyword, io.EOF
//
// Strings are the decoded bytes of literal and hex strings.
type token interface{}

// An object is a PDF syntax object: one of
//
//	bool, int64, float64, nil, string, name, dict, array, stream, ObjectID, objdef
type object interface{}

// A name is a PDF name without its leading slash.
type name string

// A keyword is a bare word such as obj, R or stream, or one of the
// delimiters << >> [ ].
type keyword string

type dict map[name]object

type array []object

type stream struct {
	hdr    dict
	ptr    ObjectID
	offset int64
}

// ObjectID is the identity of an indirect object.
type ObjectID struct {
	ID  uint32
	Gen uint16
}

func (id ObjectID) String() string { return fmt.Sprintf("%d %d R", id.ID, id.Gen) }

type objdef struct {
	ptr ObjectID
	obj object
}

// buffer reads tokens and objects from a section of the file.
// Syntax errors panic with an error value; the panics are recovered where a
// whole document is processed.
type buffer struct {
	r           io.Reader
	buf         []byte
	pos         int
	offset      int64 // file offset of buf[0]
	tmp         []byte
	unread      []token
	allowEOF    bool
	allowObjptr bool
	allowStream bool
	eof         bool
	objptr      ObjectID
}

func newBuffer(r io.Reader, offset int64) *buffer {
	return &buffer{
		r:           r,
		offset:      offset,
		buf:         make([]byte, 0, 4096),
		allowObjptr: true,
		allowStream: true,
	}
}

func (b *buffer) errorf(format string, args ...interface{}) {
	panic(fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...)))
}

// readOffset is the file offset of the next unread byte.
func (b *buffer) readOffset() int64 {
	return b.offset + int64(b.pos)
}

func (b *buffer) readByte() byte {
	if b.pos >= len(b.buf) {
		if !b.reload() {
			return '\n'
		}
	}
	c := b.buf[b.pos]
	b.pos++
	return c
}

func (b *buffer) unreadByte() {
	if b.pos > 0 {
		b.pos--
	}
}

func (b *buffer) reload() bool {
	b.offset += int64(len(b.buf))
	b.buf = b.buf[:cap(b.buf)]
	n, err := b.r.Read(b.buf)
	b.buf = b.buf[:n]
	b.pos = 0
	if n > 0 {
		return true
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	if err == io.EOF && b.allowEOF {
		b.eof = true
		return false
	}
	b.errorf("reading at offset %d: %v", b.offset, err)
	return false
}

// seekForward skips ahead to the given file offset.
func (b *buffer) seekForward(offset int64) {
	for b.offset+int64(len(b.buf)) <= offset {
		if !b.reload() {
			return
		}
	}
	b.pos = int(offset - b.offset)
}

func (b *buffer) unreadToken(t token) {
	b.unread = append(b.unread, t)
}

func (b *buffer) readToken() token {
	if n := len(b.unread); n > 0 {
		t := b.unread[n-1]
		b.unread = b.unread[:n-1]
		return t
	}

	c := b.readByte()
	for {
		if isSpace(c) {
			if b.eof {
				return io.EOF
			}
			c = b.readByte()
		} else if c == '%' {
			for c != '\r' && c != '\n' {
				c = b.readByte()
			}
		} else {
			break
		}
	}

	switch c {
	case '<':
		if b.readByte() == '<' {
			return keyword("<<")
		}
		b.unreadByte()
		return b.readHexString()
	case '>':
		if b.readByte() == '>' {
			return keyword(">>")
		}
		b.unreadByte()
		b.errorf("unexpected >")
	case '(':
		return b.readLiteralString()
	case '[', ']', '{', '}':
		return keyword(string(c))
	case '/':
		return b.readName()
	case ')':
		b.errorf("unexpected )")
	}
	b.unreadByte()
	return b.readKeyword()
}

func (b *buffer) readHexString() token {
	tmp := b.tmp[:0]
	hi := -1
	for {
		c := b.readByte()
		if c == '>' {
			break
		}
		if isSpace(c) {
			if b.eof {
				b.errorf("unterminated hex string")
			}
			continue
		}
		d := unhex(c)
		if d < 0 {
			b.errorf("malformed hex string: unexpected %q", c)
		}
		if hi < 0 {
			hi = d
			continue
		}
		tmp = append(tmp, byte(hi<<4|d))
		hi = -1
	}
	if hi >= 0 {
		// odd digit count: the missing digit is zero
		tmp = append(tmp, byte(hi<<4))
	}
	b.tmp = tmp
	return string(tmp)
}

func unhex(b byte) int {
	switch {
	case '0' <= b && b <= '9':
		return int(b) - '0'
	case 'a' <= b && b <= 'f':
		return int(b) - 'a' + 10
	case 'A' <= b && b <= 'F':
		return int(b) - 'A' + 10
	}
	return -1
}

func (b *buffer) readLiteralString() token {
	tmp := b.tmp[:0]
	depth := 1
Loop:
	for !b.eof {
		c := b.readByte()
		switch c {
		default:
			tmp = append(tmp, c)
		case '(':
			depth++
			tmp = append(tmp, c)
		case ')':
			if depth--; depth == 0 {
				break Loop
			}
			tmp = append(tmp, c)
		case '\r':
			// an unescaped end-of-line is read as a single newline
			if b.readByte() != '\n' {
				b.unreadByte()
			}
			tmp = append(tmp, '\n')
		case '\\':
			switch c = b.readByte(); c {
			default:
				// unknown escapes drop the backslash
				tmp = append(tmp, c)
			case 'n':
				tmp = append(tmp, '\n')
			case 'r':
				tmp = append(tmp, '\r')
			case 't':
				tmp = append(tmp, '\t')
			case 'b':
				tmp = append(tmp, '\b')
			case 'f':
				tmp = append(tmp, '\f')
			case '\r':
				if b.readByte() != '\n' {
					b.unreadByte()
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				x := int(c - '0')
				for i := 0; i < 2; i++ {
					c = b.readByte()
					if c < '0' || c > '7' {
						b.unreadByte()
						break
					}
					x = x*8 + int(c-'0')
				}
				tmp = append(tmp, byte(x))
			}
		}
	}
	b.tmp = tmp
	return string(tmp)
}

func (b *buffer) readName() token {
	tmp := b.tmp[:0]
	for {
		c := b.readByte()
		if isDelim(c) || isSpace(c) {
			b.unreadByte()
			break
		}
		tmp = append(tmp, c)
	}
	b.tmp = tmp
	s, ok := unescapeName(tmp)
	if !ok {
		b.errorf("malformed name")
	}
	return name(s)
}

// unescapeName decodes the #xx sequences of a name body.
func unescapeName(raw []byte) (string, bool) {
	if bytes.IndexByte(raw, '#') < 0 {
		return string(raw), true
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '#' {
			out = append(out, raw[i])
			continue
		}
		if i+2 >= len(raw) {
			return "", false
		}
		x := unhex(raw[i+1])<<4 | unhex(raw[i+2])
		if x < 0 {
			return "", false
		}
		out = append(out, byte(x))
		i += 2
	}
	return string(out), true
}

func (b *buffer) readKeyword() token {
	tmp := b.tmp[:0]
	for {
		c := b.readByte()
		if isDelim(c) || isSpace(c) {
			b.unreadByte()
			break
		}
		tmp = append(tmp, c)
	}
	b.tmp = tmp
	s := string(tmp)
	switch {
	case s == "true":
		return true
	case s == "false":
		return false
	case s == "null":
		return nil
	case isInteger(s):
		x, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			b.errorf("invalid integer %s", s)
		}
		return x
	case isReal(s):
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			b.errorf("invalid real %s", s)
		}
		return x
	}
	return keyword(s)
}

func isInteger(s string) bool {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if c < '0' || '9' < c {
			return false
		}
	}
	return true
}

func isReal(s string) bool {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if len(s) == 0 {
		return false
	}
	ndot, ndigit := 0, 0
	for _, c := range s {
		switch {
		case c == '.':
			ndot++
		case '0' <= c && c <= '9':
			ndigit++
		default:
			return false
		}
	}
	return ndot == 1 && ndigit > 0
}

// isSpace reports whether b is one of the six PDF white-space characters.
func isSpace(b byte) bool {
	switch b {
	case '\x00', '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(b byte) bool {
	switch b {
	case '<', '>', '(', ')', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (b *buffer) readObject() object {
	tok := b.readToken()
	if kw, ok := tok.(keyword); ok {
		switch kw {
		case "<<":
			return b.readDict()
		case "[":
			return b.readArray()
		}
		b.errorf("unexpected keyword %q parsing object", kw)
	}

	if !b.allowObjptr {
		return tok
	}

	if t1, ok := tok.(int64); ok && int64(uint32(t1)) == t1 {
		tok2 := b.readToken()
		if t2, ok := tok2.(int64); ok && int64(uint16(t2)) == t2 {
			tok3 := b.readToken()
			switch tok3 {
			case keyword("R"):
				return ObjectID{uint32(t1), uint16(t2)}
			case keyword("obj"):
				old := b.objptr
				b.objptr = ObjectID{uint32(t1), uint16(t2)}
				obj := b.readObject()
				if _, ok := obj.(stream); !ok {
					if tok4 := b.readToken(); tok4 != keyword("endobj") {
						b.errorf("missing endobj after indirect object definition")
					}
				}
				b.objptr = old
				return objdef{ObjectID{uint32(t1), uint16(t2)}, obj}
			}
			b.unreadToken(tok3)
		}
		b.unreadToken(tok2)
	}
	return tok
}

func (b *buffer) readArray() object {
	var x array
	for {
		tok := b.readToken()
		if tok == io.EOF {
			b.errorf("unexpected end of file in array")
		}
		if tok == keyword("]") {
			break
		}
		b.unreadToken(tok)
		x = append(x, b.readObject())
	}
	return x
}

func (b *buffer) readDict() object {
	x := make(dict)
	for {
		tok := b.readToken()
		if tok == io.EOF {
			b.errorf("unexpected end of file in dictionary")
		}
		if tok == keyword(">>") {
			break
		}
		n, ok := tok.(name)
		if !ok {
			b.errorf("unexpected non-name key %T(%v) parsing dictionary", tok, tok)
		}
		x[n] = b.readObject()
	}

	if !b.allowStream {
		return x
	}

	tok := b.readToken()
	if tok != keyword("stream") {
		b.unreadToken(tok)
		return x
	}

	switch b.readByte() {
	case '\r':
		if b.readByte() != '\n' {
			b.unreadByte()
		}
	case '\n':
	default:
		b.unreadByte()
	}

	return stream{x, b.objptr, b.readOffset()}
}
