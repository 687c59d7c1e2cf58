// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"bufio"
	"compress/zlib"
	"encoding/ascii85"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"

	"github.com/RavuAlHemio/airfield-timezones/logger"
)

type errorReadCloser struct {
	err error
}

func (e *errorReadCloser) Read([]byte) (int, error) {
	return 0, e.err
}

func (e *errorReadCloser) Close() error {
	return e.err
}

// filterChain closes every decoder of a stream when the stream is closed.
type filterChain struct {
	io.Reader
	closers []io.Closer
}

func (c *filterChain) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Reader returns the decoded data contained in the stream v.
// If v.Kind() != Stream, or a filter cannot be set up, Reader returns a
// ReadCloser that responds to all reads with an error wrapping ErrMalformed.
func (v Value) Reader() io.ReadCloser {
	x, ok := v.data.(stream)
	if !ok || v.r == nil {
		return &errorReadCloser{malformedf("stream not present")}
	}
	length := v.Key("Length").Int64()
	if length < 0 || x.offset+length > v.r.end {
		return &errorReadCloser{malformedf("stream %v: bad length %d", x.ptr, length)}
	}

	chain := &filterChain{Reader: io.NewSectionReader(v.r.f, x.offset, length)}
	filter := v.Key("Filter")
	param := v.Key("DecodeParms")
	var err error
	switch filter.Kind() {
	default:
		err = malformedf("stream %v: unsupported filter %v", x.ptr, filter)
	case Null:
	case Name:
		err = chain.apply(filter.Name(), param)
	case Array:
		for i := 0; i < filter.Len() && err == nil; i++ {
			// DecodeParms runs parallel to an array of filters
			p := param
			if param.Kind() == Array {
				p = param.Index(i)
			}
			err = chain.apply(filter.Index(i).Name(), p)
		}
	}
	if err != nil {
		chain.Close()
		logger.Debug(fmt.Sprintf("stream: %v", err), true)
		return &errorReadCloser{err}
	}
	return chain
}

func (c *filterChain) apply(filter string, param Value) error {
	switch filter {
	case "FlateDecode", "Fl":
		zr, err := zlib.NewReader(c.Reader)
		if err != nil {
			return malformedf("FlateDecode: %v", err)
		}
		c.closers = append(c.closers, zr)
		c.Reader = zr
		return c.predict(param)
	case "LZWDecode", "LZW":
		early := true
		if e := param.Key("EarlyChange"); e.Kind() == Integer {
			early = e.Int64() != 0
		}
		lr := lzw.NewReader(c.Reader, early)
		c.closers = append(c.closers, lr)
		c.Reader = lr
		return c.predict(param)
	case "ASCII85Decode", "A85":
		c.Reader = ascii85.NewDecoder(newASCII85Reader(c.Reader))
		return nil
	case "ASCIIHexDecode", "AHx":
		c.Reader = &hexReader{r: bufio.NewReader(c.Reader)}
		return nil
	}
	return malformedf("unknown filter %q", filter)
}

// predict wraps the chain in a predictor decoder if param asks for one.
func (c *filterChain) predict(param Value) error {
	pred := param.Key("Predictor")
	if pred.Kind() == Null || pred.Int64() == 1 {
		return nil
	}
	if p := pred.Int64(); p < 10 || p > 15 {
		return malformedf("unsupported predictor %d", p)
	}
	colors := intOr(param.Key("Colors"), 1)
	bpc := intOr(param.Key("BitsPerComponent"), 8)
	columns := intOr(param.Key("Columns"), 1)
	if colors < 1 || bpc < 1 || columns < 1 || colors*bpc*columns > 1<<24 {
		return malformedf("bad predictor parameters colors=%d bpc=%d columns=%d", colors, bpc, columns)
	}
	rowLen := (colors*bpc*columns + 7) / 8
	bpp := (colors*bpc + 7) / 8
	c.Reader = &pngReader{
		r:    c.Reader,
		bpp:  bpp,
		prev: make([]byte, rowLen),
		cur:  make([]byte, 1+rowLen),
	}
	return nil
}

func intOr(v Value, def int) int {
	if v.Kind() != Integer {
		return def
	}
	return int(v.Int64())
}

// pngReader undoes the PNG row filters (None, Sub, Up, Average, Paeth).
// Every row starts with its filter type byte.
type pngReader struct {
	r    io.Reader
	bpp  int
	prev []byte
	cur  []byte
	pend []byte
}

func (p *pngReader) Read(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		if len(p.pend) > 0 {
			m := copy(b, p.pend)
			n += m
			b = b[m:]
			p.pend = p.pend[m:]
			continue
		}
		if _, err := io.ReadFull(p.r, p.cur); err != nil {
			if err == io.ErrUnexpectedEOF {
				err = malformedf("truncated predictor row")
			}
			return n, err
		}
		row := p.cur[1:]
		if err := unfilterRow(p.cur[0], row, p.prev, p.bpp); err != nil {
			return n, err
		}
		copy(p.prev, row)
		p.pend = p.prev
	}
	return n, nil
}

func unfilterRow(kind byte, row, prev []byte, bpp int) error {
	switch kind {
	case 0:
	case 1:
		for i := bpp; i < len(row); i++ {
			row[i] += row[i-bpp]
		}
	case 2:
		for i := range row {
			row[i] += prev[i]
		}
	case 3:
		for i := range row {
			var left int
			if i >= bpp {
				left = int(row[i-bpp])
			}
			row[i] += byte((left + int(prev[i])) / 2)
		}
	case 4:
		for i := range row {
			var left, upLeft byte
			if i >= bpp {
				left, upLeft = row[i-bpp], prev[i-bpp]
			}
			row[i] += paeth(left, prev[i], upLeft)
		}
	default:
		return malformedf("unknown PNG row filter %d", kind)
	}
	return nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ascii85Reader passes the ASCII base-85 alphabet (and the z shorthand) on
// to the decoder. White space is dropped and "~>" ends the data.
type ascii85Reader struct {
	r    *bufio.Reader
	done bool
}

func newASCII85Reader(r io.Reader) io.Reader {
	return &ascii85Reader{r: bufio.NewReader(r)}
}

func (a *ascii85Reader) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) && !a.done {
		c, err := a.r.ReadByte()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}
		switch {
		case c == '~':
			a.done = true
		case isSpace(c):
		case '!' <= c && c <= 'u', c == 'z':
			b[n] = c
			n++
		default:
			return n, malformedf("ASCII85Decode: unexpected %q", c)
		}
	}
	if n == 0 && a.done {
		return 0, io.EOF
	}
	return n, nil
}

// hexReader decodes ASCIIHexDecode data up to the ">" marker.
type hexReader struct {
	r    *bufio.Reader
	done bool
}

func (h *hexReader) Read(b []byte) (int, error) {
	n := 0
	hi := -1
	for n < len(b) && !h.done {
		c, err := h.r.ReadByte()
		if err == io.EOF || c == '>' {
			h.done = true
			break
		}
		if err != nil {
			return n, err
		}
		if isSpace(c) {
			continue
		}
		d := unhex(c)
		if d < 0 {
			return n, malformedf("ASCIIHexDecode: unexpected %q", c)
		}
		if hi < 0 {
			hi = d
			continue
		}
		b[n] = byte(hi<<4 | d)
		n++
		hi = -1
	}
	if hi >= 0 {
		// a final odd digit is followed by an implied zero
		b[n] = byte(hi << 4)
		n++
	}
	if n == 0 && h.done {
		return 0, io.EOF
	}
	return n, nil
}
