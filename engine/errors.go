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

package engine

import (
	"fmt"

	"github.com/ned14/pcpp/internal/token"
)

// ErrKind classifies a preprocessing fault (spec.md §7). It is a closed
// enum: every error the engine can report belongs to exactly one kind.
type ErrKind int

const (
	// ErrLexical covers malformed numbers, unterminated literals and stray
	// characters.
	ErrLexical ErrKind = iota
	// ErrDirectiveSyntax covers malformed directives: bad #include,
	// misplaced #elif/#else/#endif, unterminated conditionals, bad #define
	// or #line.
	ErrDirectiveSyntax
	// ErrMacroSemantic covers wrong argument counts, '##' at a replacement
	// list's ends, duplicate parameter names.
	ErrMacroSemantic
	// ErrEvaluator covers #if expression syntax errors, division/modulo by
	// zero, and an unknown identifier the hooks refused to resolve.
	ErrEvaluator
	// ErrIO covers an include file not found or a file-open failure.
	ErrIO
	// ErrUser covers #error and #warning.
	ErrUser
)

func (k ErrKind) String() string {
	switch k {
	case ErrLexical:
		return "lexical"
	case ErrDirectiveSyntax:
		return "directive-syntax"
	case ErrMacroSemantic:
		return "macro-semantic"
	case ErrEvaluator:
		return "evaluator"
	case ErrIO:
		return "io"
	case ErrUser:
		return "user"
	default:
		return "unknown"
	}
}

// PPError wraps a single preprocessing fault with its kind and source
// location, so a caller can errors.As its way to the structured form
// instead of parsing a "file:line: msg" string back apart.
type PPError struct {
	Kind ErrKind
	Pos  token.Pos
	Err  error
}

func (e *PPError) Error() string {
	if e.Pos.File == "" && e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Err)
}

func (e *PPError) Unwrap() error { return e.Err }

func newPPError(kind ErrKind, pos token.Pos, msg string) *PPError {
	return &PPError{Kind: kind, Pos: pos, Err: fmt.Errorf("%s", msg)}
}
