// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"bytes"
	"fmt"
	"io"

	"github.com/RavuAlHemio/airfield-timezones/logger"
)

// A Page represent a single page in a PDF file.
// The methods interpret a Page dictionary stored in V.
type Page struct {
	V   Value
	Ref ObjectID
}

// PageByRef returns the page object with the given reference. If the object
// is missing, p.V.IsNull() is true.
func (r *Reader) PageByRef(id ObjectID) Page {
	return Page{V: r.Resolve(id), Ref: id}
}

// NumPage returns the page count declared by the page tree root.
// CollectPageRefs gives the authoritative list.
func (r *Reader) NumPage() int {
	return int(r.Trailer().Key("Root").Key("Pages").Key("Count").Int64())
}

// findInherited looks key up on the page and then on its ancestors.
func (p Page) findInherited(key string) Value {
	v := p.V
	for depth := 0; !v.IsNull() && depth <= maxTreeDepth; depth++ {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
		v = v.Key("Parent")
	}
	return Value{}
}

// Resources returns the resource dictionary of the page, which may be
// inherited from a parent node.
func (p Page) Resources() Value {
	return p.findInherited("Resources")
}

// Font returns the font resource with the given name, or a null Value.
func (p Page) Font(name string) Value {
	return p.Resources().Key("Font").Key(name)
}

// Contents returns the page's content stream data. An array of streams is
// joined with newlines so that tokens cannot run across the boundary.
func (p Page) Contents() ([]byte, error) {
	contents := p.V.Key("Contents")
	switch contents.Kind() {
	case Null:
		return nil, nil
	case Stream:
		return readStream(contents)
	case Array:
		var buf bytes.Buffer
		for i := 0; i < contents.Len(); i++ {
			part := contents.Index(i)
			if part.Kind() != Stream {
				logger.Debug(fmt.Sprintf("page %v: contents element %d is %v, skipping", p.Ref, i, part.Kind()))
				continue
			}
			data, err := readStream(part)
			if err != nil {
				return nil, err
			}
			if i > 0 {
				buf.WriteByte('\n')
			}
			buf.Write(data)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: page %v: contents is %v", ErrMalformed, p.Ref, contents)
}

func readStream(v Value) ([]byte, error) {
	rd := v.Reader()
	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("stream %v: %w", v.ptr, err)
	}
	return data, nil
}

// Operations decodes the page's content streams into operations.
func (p Page) Operations() ([]Operation, error) {
	data, err := p.Contents()
	if err != nil {
		return nil, err
	}
	ops, err := ParseOperations(data)
	if err != nil {
		return nil, fmt.Errorf("page %v: %w", p.Ref, err)
	}
	logger.Debug(fmt.Sprintf("page %v: %d operations in %d bytes", p.Ref, len(ops), len(data)), true)
	return ops, nil
}
