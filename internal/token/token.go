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

// Package token defines the preprocessing-token data model shared by the
// lexer, macro table, expander, evaluator, directive processor and writer.
package token

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind classifies a preprocessing token. It is a closed enum: every
// syntactic element the C99/C11 preprocessor operates on has exactly one
// Kind, including the '#' and '##' operators which only appear meaningfully
// inside a macro replacement list.
type Kind int

const (
	Identifier Kind = iota
	Number         // preprocessing number, wider than a C integer/float literal
	String         // "..."
	Char           // '...'
	Whitespace     // run of space/tab, never a newline
	Newline        // single '\n'
	LineContinue   // backslash, optional horizontal whitespace, newline
	CommentBlock   // /* ... */
	CommentLine    // // ... (to end of line)
	Punct          // any other punctuator/operator, e.g. "(" "==" "&&"
	Hash           // '#', both as a directive introducer and as the stringize operator
	HashHash       // '##'
	Other          // unrecognized single character; never aborts the stream
	EOF
)

func (k Kind) String() string {
	switch k {
	case Identifier:
		return "identifier"
	case Number:
		return "pp-number"
	case String:
		return "string"
	case Char:
		return "char"
	case Whitespace:
		return "whitespace"
	case Newline:
		return "newline"
	case LineContinue:
		return "line-continuation"
	case CommentBlock:
		return "block-comment"
	case CommentLine:
		return "line-comment"
	case Punct:
		return "punctuator"
	case Hash:
		return "#"
	case HashHash:
		return "##"
	case Other:
		return "other"
	case EOF:
		return "eof"
	default:
		return "unknown"
	}
}

// HideSet is the "expanded_from" set of macro names a token already
// participates in the expansion of (C99 6.10.3.4). It forbids recursive
// re-expansion of the same macro on the same token. Represented per-token
// rather than as a context stack, per the design note in spec.md §9: the
// per-token form is local and its union semantics are simplest to reason
// about at nested-expansion boundaries.
type HideSet map[string]struct{}

// Has reports whether name is already in the hide set.
func (h HideSet) Has(name string) bool {
	if h == nil {
		return false
	}
	_, ok := h[name]
	return ok
}

// With returns a new HideSet containing h's members plus name. h is never
// mutated; callers always receive a fresh set so that sibling expansions
// sharing the same origin token don't observe each other's additions.
func (h HideSet) With(name string) HideSet {
	out := make(HideSet, len(h)+1)
	for k := range h {
		out[k] = struct{}{}
	}
	out[name] = struct{}{}
	return out
}

// Union returns a new HideSet containing the members of both sets.
func (h HideSet) Union(other HideSet) HideSet {
	out := make(HideSet, len(h)+len(other))
	for k := range h {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Pos is a source location. Line and Column are 1-based, matching the
// teacher lexer's Cursor.
type Pos struct {
	File   string
	Line   int
	Column int
}

// AdvancedBy returns the position reached after consuming text, which is
// assumed to start at p. Newlines in text increment Line and reset Column;
// other runes increment Column. Mirrors the teacher lexer's Cursor.AdvancedBy.
func (p Pos) AdvancedBy(text string) Pos {
	newlines := strings.Count(text, "\n")
	tailBegin := 1 + strings.LastIndex(text, "\n")
	tailLen := utf8.RuneCountInString(text[tailBegin:])
	if newlines == 0 {
		p.Column += tailLen
		return p
	}
	p.Line += newlines
	p.Column = 1 + tailLen
	return p
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Token is a single preprocessing token, carrying enough provenance to
// satisfy the "token provenance" invariant of spec.md §8: its Pos always
// reports the location of the outermost invoking token, never the location
// inside a macro's replacement list.
type Token struct {
	Kind         Kind
	Text         string
	Pos          Pos
	ExpandedFrom HideSet
}

// New constructs a Token with a nil HideSet.
func New(kind Kind, text string, pos Pos) Token {
	return Token{Kind: kind, Text: text, Pos: pos}
}

// WithHideSet returns a copy of t tagged with the given HideSet.
func (t Token) WithHideSet(h HideSet) Token {
	t.ExpandedFrom = h
	return t
}

// WithPos returns a copy of t relocated to pos. Used when splicing a macro
// replacement list into the output: every produced token is retagged with
// the invoking token's position.
func (t Token) WithPos(pos Pos) Token {
	t.Pos = pos
	return t
}

// IsWhitespaceLike reports whether t contributes no visible text to the
// output stream: whitespace, comments and line continuations all collapse
// under the writer's whitespace rules (§4.W).
func (t Token) IsWhitespaceLike() bool {
	switch t.Kind {
	case Whitespace, CommentBlock, CommentLine, LineContinue:
		return true
	default:
		return false
	}
}

// IsIdent reports whether t is an identifier with the given text. Used
// pervasively by the expander and directive processor to match keywords
// and macro names without re-checking Kind at every call site.
func (t Token) IsIdent(name string) bool {
	return t.Kind == Identifier && t.Text == name
}
