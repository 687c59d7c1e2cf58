// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"bytes"
	"fmt"

	tokenizer "github.com/benoitkugler/pstokenizer"

	"github.com/RavuAlHemio/airfield-timezones/logger"
)

// An Operation is one content-stream operator with the operands that
// preceded it.
type Operation struct {
	Operator string
	Args     []Value
}

// ParseOperations splits a content stream into operations. Inline images
// are removed first since their binary payload cannot be tokenized.
func ParseOperations(data []byte) ([]Operation, error) {
	tk := tokenizer.NewTokenizer(stripInlineImages(data))
	var (
		ops  []Operation
		args []Value
	)
	for {
		tok, err := tk.NextToken()
		if err != nil {
			return nil, fmt.Errorf("%w: content stream: %v", ErrMalformed, err)
		}
		if tok.Kind == tokenizer.EOF {
			break
		}
		if tok.Kind == tokenizer.Other {
			switch op := string(tok.Value); op {
			case "true", "false", "null":
				args = append(args, Value{data: keywordValue(op)})
			default:
				ops = append(ops, Operation{Operator: op, Args: args})
				args = nil
			}
			continue
		}
		obj, err := parseOperand(tk, tok)
		if err != nil {
			return nil, err
		}
		args = append(args, Value{data: obj})
	}
	if len(args) > 0 {
		logger.Debug(fmt.Sprintf("content: %d trailing operands without operator", len(args)))
	}
	return ops, nil
}

func keywordValue(s string) object {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return nil
}

// parseOperand converts tok, and for containers the tokens after it, into
// an object.
func parseOperand(tk *tokenizer.Tokenizer, tok tokenizer.Token) (object, error) {
	switch tok.Kind {
	case tokenizer.Integer:
		i, err := tok.Int()
		if err != nil {
			return nil, fmt.Errorf("%w: content stream: bad integer %q", ErrMalformed, tok.Value)
		}
		return int64(i), nil
	case tokenizer.Float:
		f, err := tok.Float()
		if err != nil {
			return nil, fmt.Errorf("%w: content stream: bad number %q", ErrMalformed, tok.Value)
		}
		return float64(f), nil
	case tokenizer.String, tokenizer.StringHex:
		return string(tok.Value), nil
	case tokenizer.Name:
		s, ok := unescapeName([]byte(tok.Value))
		if !ok {
			return nil, fmt.Errorf("%w: content stream: bad name %q", ErrMalformed, tok.Value)
		}
		return name(s), nil
	case tokenizer.Other:
		return keywordValue(string(tok.Value)), nil
	case tokenizer.StartArray:
		var arr array
		for {
			next, err := tk.NextToken()
			if err != nil {
				return nil, fmt.Errorf("%w: content stream: %v", ErrMalformed, err)
			}
			switch next.Kind {
			case tokenizer.EndArray:
				return arr, nil
			case tokenizer.EOF:
				return nil, fmt.Errorf("%w: content stream: unterminated array", ErrMalformed)
			}
			elem, err := parseOperand(tk, next)
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
	case tokenizer.StartDic:
		d := dict{}
		for {
			key, err := tk.NextToken()
			if err != nil {
				return nil, fmt.Errorf("%w: content stream: %v", ErrMalformed, err)
			}
			switch key.Kind {
			case tokenizer.EndDic:
				return d, nil
			case tokenizer.Name:
			default:
				return nil, fmt.Errorf("%w: content stream: dictionary key %q", ErrMalformed, key.Value)
			}
			next, err := tk.NextToken()
			if err != nil {
				return nil, fmt.Errorf("%w: content stream: %v", ErrMalformed, err)
			}
			val, err := parseOperand(tk, next)
			if err != nil {
				return nil, err
			}
			d[name(key.Value)] = val
		}
	case tokenizer.StartProc, tokenizer.EndProc:
		// only type 4 functions use braces; they carry no text
		return nil, nil
	}
	return nil, fmt.Errorf("%w: content stream: unexpected %q", ErrMalformed, tok.Value)
}

// stripInlineImages cuts every "BI ... ID <data> EI" sequence out of a
// content stream. The operators must stand alone between white space or
// delimiters; the image data runs up to the first white-space-framed EI.
func stripInlineImages(data []byte) []byte {
	if !bytes.Contains(data, []byte("BI")) {
		return data
	}
	var out []byte
	rest := data
	for {
		bi := findOperator(rest, "BI", 0)
		if bi < 0 {
			break
		}
		id := findOperator(rest, "ID", bi+2)
		if id < 0 {
			break
		}
		// a single white-space byte separates ID from the data
		start := id + 3
		ei := findImageEnd(rest, start)
		if ei < 0 {
			logger.Debug("content: inline image without EI, dropping remainder")
			out = append(out, rest[:bi]...)
			return out
		}
		out = append(out, rest[:bi]...)
		out = append(out, ' ')
		rest = rest[ei+2:]
	}
	if out == nil {
		return data
	}
	return append(out, rest...)
}

// findOperator returns the index of the first stand-alone occurrence of op
// at or after from, or -1.
func findOperator(data []byte, op string, from int) int {
	for i := from; i+len(op) <= len(data); {
		j := bytes.Index(data[i:], []byte(op))
		if j < 0 {
			return -1
		}
		j += i
		before := j == 0 || isSpace(data[j-1]) || isDelim(data[j-1])
		end := j + len(op)
		after := end == len(data) || isSpace(data[end]) || isDelim(data[end])
		if before && after {
			return j
		}
		i = j + 1
	}
	return -1
}

// findImageEnd returns the index of the "EI" closing inline image data that
// starts at from, or -1.
func findImageEnd(data []byte, from int) int {
	if from > len(data) {
		return -1
	}
	for i := from; i+2 <= len(data); {
		j := bytes.Index(data[i:], []byte("EI"))
		if j < 0 {
			return -1
		}
		j += i
		end := j + 2
		if j > 0 && isSpace(data[j-1]) && (end == len(data) || isSpace(data[end])) {
			return j
		}
		i = j + 1
	}
	return -1
}
