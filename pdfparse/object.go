// Package pdfparse turns PDF byte buffers into a pdfctx.Context: a
// tokenizer-backed recursive-descent object parser plus cross-reference
// table/stream reconstruction.
package pdfparse

import (
	"errors"
	"fmt"

	tkn "github.com/benoitkugler/pstokenizer"
	"github.com/jlmessenger/pdf-lib/pdfval"
)

var (
	errArrayNotTerminated = errors.New("pdfparse: unterminated array")
	errDictNotTerminated  = errors.New("pdfparse: unterminated dictionary")
	errDictKeyNotName     = errors.New("pdfparse: dictionary key is not a name")
	errUnexpectedEOF      = errors.New("pdfparse: unexpected end of buffer")
)

// ObjectParser wraps a token stream and assembles pdfval.Value trees
// from it. ContentStreamMode, when set, disallows indirect references
// (content streams never carry them) and accepts bare operator tokens.
type ObjectParser struct {
	tokens            *tkn.Tokenizer
	ContentStreamMode bool
}

// NewObjectParser creates a parser over data.
func NewObjectParser(data []byte) *ObjectParser {
	return NewObjectParserFromTokenizer(tkn.NewTokenizer(data))
}

// NewObjectParserFromTokenizer wraps an existing tokenizer, continuing
// from its current position; used when the caller has already consumed
// the "n g obj" header.
func NewObjectParserFromTokenizer(tokens *tkn.Tokenizer) *ObjectParser {
	return &ObjectParser{tokens: tokens}
}

// ParseValue parses exactly one PDF object starting at the current
// token position.
func (p *ObjectParser) ParseValue() (pdfval.Value, error) {
	tk, err := p.tokens.NextToken()
	if err != nil {
		return nil, err
	}

	switch tk.Kind {
	case tkn.EOF:
		return nil, errUnexpectedEOF
	case tkn.Name:
		return pdfval.DecodeName(tk.Value), nil
	case tkn.String:
		return pdfval.String{Bytes: append([]byte(nil), tk.Value...), Kind: pdfval.LiteralString}, nil
	case tkn.StringHex:
		return pdfval.String{Bytes: append([]byte(nil), tk.Value...), Kind: pdfval.HexString}, nil
	case tkn.StartArray:
		return p.parseArray()
	case tkn.StartDic:
		return p.parseDict()
	case tkn.Float:
		f, err := tk.Float()
		if err != nil {
			return nil, err
		}
		return pdfval.Real(f), nil
	case tkn.Other:
		return p.parseKeyword(tk.Value)
	case tkn.Integer:
		return p.parseIntegerOrRef(tk)
	default:
		return nil, fmt.Errorf("pdfparse: unexpected token %v", tk)
	}
}

func (p *ObjectParser) parseArray() (pdfval.Array, error) {
	var out pdfval.Array
	for {
		tk, err := p.tokens.PeekToken()
		if err != nil {
			return nil, err
		}
		switch tk.Kind {
		case tkn.EndArray:
			_, _ = p.tokens.NextToken()
			return out, nil
		case tkn.EOF:
			return nil, errArrayNotTerminated
		default:
			v, err := p.ParseValue()
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
}

func (p *ObjectParser) parseDict() (pdfval.Dict, error) {
	d := pdfval.NewDict()
	for {
		tk, err := p.tokens.PeekToken()
		if err != nil {
			return d, err
		}
		switch tk.Kind {
		case tkn.EndDic:
			_, _ = p.tokens.NextToken()
			return d, nil
		case tkn.EOF:
			return d, errDictNotTerminated
		case tkn.Name:
			key := pdfval.DecodeName(tk.Value)
			_, _ = p.tokens.NextToken()

			val, err := p.ParseValue()
			if err != nil {
				return d, err
			}
			// a null value is equivalent to an absent entry (7.3.7)
			if !pdfval.IsNull(val) {
				d.Set(key, val)
			}
		default:
			return d, errDictKeyNotName
		}
	}
}

func (p *ObjectParser) parseKeyword(raw []byte) (pdfval.Value, error) {
	switch string(raw) {
	case "null":
		return pdfval.Null{}, nil
	case "true":
		return pdfval.Bool(true), nil
	case "false":
		return pdfval.Bool(false), nil
	default:
		if p.ContentStreamMode {
			return pdfval.Name(raw), nil
		}
		return nil, fmt.Errorf("pdfparse: unexpected keyword %q", raw)
	}
}

// parseIntegerOrRef implements the 1-token lookahead needed to tell an
// integer apart from the start of "n g R".
func (p *ObjectParser) parseIntegerOrRef(first tkn.Token) (pdfval.Value, error) {
	n, err := first.Int()
	if err != nil {
		return nil, err
	}

	if p.ContentStreamMode {
		return pdfval.Int(n), nil
	}

	save := p.tokens.CurrentPosition()
	gen, genErr := p.tokens.NextToken()
	if genErr != nil || gen.Kind != tkn.Integer {
		p.tokens.SetPosition(save)
		return pdfval.Int(n), nil
	}
	g, err := gen.Int()
	if err != nil {
		p.tokens.SetPosition(save)
		return pdfval.Int(n), nil
	}

	kw, kwErr := p.tokens.NextToken()
	if kwErr != nil || !kw.IsOther("R") {
		p.tokens.SetPosition(save)
		return pdfval.Int(n), nil
	}

	return pdfval.Ref{Number: uint32(n), Generation: uint16(g)}, nil
}

// ParseObjectHeader consumes the "n g obj" header, returning n and g.
func ParseObjectHeader(t *tkn.Tokenizer) (number, generation int, err error) {
	tok, err := t.NextToken()
	if err != nil {
		return 0, 0, err
	}
	number, err = tok.Int()
	if err != nil || tok.Kind != tkn.Integer {
		return 0, 0, fmt.Errorf("pdfparse: expected object number")
	}

	tok, err = t.NextToken()
	if err != nil {
		return 0, 0, err
	}
	generation, err = tok.Int()
	if err != nil || tok.Kind != tkn.Integer {
		return 0, 0, fmt.Errorf("pdfparse: expected generation number")
	}

	tok, err = t.NextToken()
	if err != nil {
		return 0, 0, err
	}
	if !tok.IsOther("obj") {
		return 0, 0, fmt.Errorf("pdfparse: expected \"obj\" keyword, got %q", tok.Value)
	}
	return number, generation, nil
}
