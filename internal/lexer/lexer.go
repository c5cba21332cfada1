// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lexer turns C/C++ source bytes into a stream of preprocessing
// tokens with source/line attribution (spec.md §4.L). It never aborts on
// malformed input: unknown bytes become single-character Other tokens.
package lexer

import (
	"bytes"
	"iter"
	"regexp"
	"strings"

	"github.com/ned14/pcpp/internal/token"
)

var (
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
	// Preprocessing number: wider than a C integer/float literal, by design
	// (spec.md §4.L) — concrete value is parsed only inside the evaluator.
	reNumber       = regexp.MustCompile(`^\.?[0-9](?:[eEpP][-+]|\.|[A-Za-z0-9_]|'[0-9A-Za-z])*`)
	reContinueLine = regexp.MustCompile(`^\\[\t\v\f\r ]*\n`)
	reWhitespace   = regexp.MustCompile(`^[\t\v\f ]+`)
	reStringPrefix = regexp.MustCompile(`^(?:u8|[uUL])?"`)
	reCharPrefix   = regexp.MustCompile(`^[uUL]?'`)
)

// punctuators lists multi-character punctuators/operators longest-first so
// that greedy matching never mis-splits e.g. "<<=" into "<<" then "=".
var punctuators = []string{
	"%:%:", "<<=", ">>=", "...",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "::",
	"<:", ":>", "<%", "%>", "%:",
	"(", ")", "[", "]", "{", "}", ".", "&", "*", "+", "-", "~", "!",
	"/", "%", "<", ">", "^", "|", "?", ":", ";", "=", ",",
}

// Lexer is a cursor-driven scanner over a single translation unit's bytes.
// It is not safe for concurrent use (spec.md §5: single-threaded, not
// re-entrant).
type Lexer struct {
	file string
	data []byte
	pos  token.Pos
}

// New constructs a Lexer over src, attributing produced tokens to file.
func New(file string, src []byte) *Lexer {
	return &Lexer{file: file, data: src, pos: token.Pos{File: file, Line: 1, Column: 1}}
}

func (lx *Lexer) consume(kind token.Kind, length int) token.Token {
	text := string(lx.data[:length])
	tok := token.New(kind, text, lx.pos)
	lx.data = lx.data[length:]
	lx.pos = lx.pos.AdvancedBy(text)
	return tok
}

// NextToken returns the next token in the stream, or a Kind==EOF token once
// the input is exhausted.
func (lx *Lexer) NextToken() token.Token {
	if len(lx.data) == 0 {
		return token.New(token.EOF, "", lx.pos)
	}

	switch c := lx.data[0]; {
	case c == '\n':
		return lx.consume(token.Newline, 1)
	case c == '\t' || c == '\v' || c == '\f' || c == ' ':
		if m := reWhitespace.Find(lx.data); m != nil {
			return lx.consume(token.Whitespace, len(m))
		}
	case c == '\\':
		if m := reContinueLine.Find(lx.data); m != nil {
			return lx.consume(token.LineContinue, len(m))
		}
		return lx.consume(token.Other, 1)
	case c == '/':
		if bytes.HasPrefix(lx.data, []byte("//")) {
			end := bytes.IndexByte(lx.data, '\n')
			if end == -1 {
				end = len(lx.data)
			}
			return lx.consume(token.CommentLine, end)
		}
		if bytes.HasPrefix(lx.data, []byte("/*")) {
			if end := bytes.Index(lx.data, []byte("*/")); end >= 0 {
				return lx.consume(token.CommentBlock, end+2)
			}
			return lx.consume(token.Other, len(lx.data))
		}
	case c == '"' || isStringPrefixByte(lx.data):
		if m := reStringPrefix.Find(lx.data); m != nil {
			return lx.scanQuoted(len(m)-1, '"', token.String)
		}
	case c == '\'' || isCharPrefixByte(lx.data):
		if m := reCharPrefix.Find(lx.data); m != nil {
			return lx.scanQuoted(len(m)-1, '\'', token.Char)
		}
	case c == '#':
		if bytes.HasPrefix(lx.data, []byte("##")) {
			return lx.consume(token.HashHash, 2)
		}
		return lx.consume(token.Hash, 1)
	case isIdentStart(c):
		if m := reIdentifier.Find(lx.data); m != nil {
			return lx.consume(token.Identifier, len(m))
		}
	case c >= '0' && c <= '9':
		if m := reNumber.Find(lx.data); m != nil {
			return lx.consume(token.Number, len(m))
		}
	case c == '.':
		if m := reNumber.Find(lx.data); m != nil && len(m) > 1 {
			return lx.consume(token.Number, len(m))
		}
	}

	for _, p := range punctuators {
		if bytes.HasPrefix(lx.data, []byte(p)) {
			return lx.consume(token.Punct, len(p))
		}
	}
	return lx.consume(token.Other, 1)
}

// scanQuoted scans a string or character literal starting prefixLen bytes
// into lx.data (the prefix, e.g. "u8" or "L") followed by the quote byte.
// Embedded backslash-newline continuations are spliced out of the emitted
// token text (spec.md §4.L): "...\<newline>..." becomes "......", while the
// lexer's cursor still advances across the original bytes so that
// subsequent tokens keep correct line/column attribution.
func (lx *Lexer) scanQuoted(prefixLen int, quote byte, kind token.Kind) token.Token {
	i := prefixLen + 1 // skip prefix + opening quote
	for i < len(lx.data) {
		switch {
		case lx.data[i] == '\\' && i+1 < len(lx.data) && lx.data[i+1] == '\n':
			i += 2 // spliced below
		case lx.data[i] == '\\' && i+1 < len(lx.data):
			i += 2
		case lx.data[i] == quote:
			i++
			return lx.consumeSpliced(kind, i)
		case lx.data[i] == '\n':
			// Unterminated literal: stop before consuming the newline.
			return lx.consumeSpliced(kind, i)
		default:
			i++
		}
	}
	return lx.consumeSpliced(kind, i)
}

func (lx *Lexer) consumeSpliced(kind token.Kind, length int) token.Token {
	raw := string(lx.data[:length])
	text := strings.ReplaceAll(raw, "\\\n", "")
	tok := token.New(kind, text, lx.pos)
	lx.data = lx.data[length:]
	lx.pos = lx.pos.AdvancedBy(raw)
	return tok
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isStringPrefixByte(data []byte) bool {
	return reStringPrefix.Match(data)
}

func isCharPrefixByte(data []byte) bool {
	return reCharPrefix.Match(data)
}

// All yields every token in the stream, including a terminal EOF token.
func (lx *Lexer) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := lx.NextToken()
			if !yield(tok) {
				return
			}
			if tok.Kind == token.EOF {
				return
			}
		}
	}
}
