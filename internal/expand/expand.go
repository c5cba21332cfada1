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

// Package expand implements the rescanning macro-expansion algorithm of
// spec.md §4.X: argument collection, stringize, token paste and
// self-reference inhibition via a per-token hide set.
package expand

import (
	"strconv"

	"github.com/ned14/pcpp/internal/macro"
	"github.com/ned14/pcpp/internal/token"
)

// ErrorReporter receives recoverable expansion errors (spec.md §7: the core
// never aborts; it reports and attempts to recover).
type ErrorReporter interface {
	OnError(pos token.Pos, msg string)
}

// Builtins supplies the values of the four always-present dynamic macros
// plus the optional __COUNTER__/__PCPP__ (spec.md §3, §4.X point 5).
type Builtins struct {
	// File returns the current translation unit's path as it should be
	// quoted for __FILE__, honoring any #line path override.
	File func() string
	Date string
	Time string
	// Counter is incremented and read for __COUNTER__. Only accessed when a
	// token is actually produced (spec.md §9 open question), which holds
	// automatically here since Expand is never invoked over skipped
	// conditional branches.
	Counter *int
	PCPPVersion string
}

// Options toggles behavior the spec calls out as non-standard or
// configurable.
type Options struct {
	// IdentifierAdjacencySpace enables the GCC/clang-compatible rule of
	// inserting a space between a function-like macro's expansion and an
	// immediately following identifier (spec.md §4.X point 4, §9).
	IdentifierAdjacencySpace bool
}

// Expander runs the rescanning algorithm against a macro table.
type Expander struct {
	Table    *macro.Table
	Builtins Builtins
	Options  Options
	Errors   ErrorReporter
}

// Expand fully macro-expands in, returning the resulting token list. expanding
// is the set of macro names currently being expanded higher up the call
// stack (empty at the top level); it participates in self-reference
// inhibition alongside each token's own ExpandedFrom hide set.
func (x *Expander) Expand(in []token.Token, expanding token.HideSet) []token.Token {
	out := make([]token.Token, 0, len(in))
	i := 0
	for i < len(in) {
		t := in[i]
		if t.Kind != token.Identifier {
			out = append(out, t)
			i++
			continue
		}
		if t.ExpandedFrom.Has(t.Text) || expanding.Has(t.Text) {
			out = append(out, t)
			i++
			continue
		}
		m, ok := x.Table.Lookup(t.Text)
		if !ok {
			out = append(out, t)
			i++
			continue
		}
		if m.Builtin != macro.NotBuiltin {
			out = append(out, x.expandBuiltin(m, t))
			i++
			continue
		}
		if !m.FuncLike {
			hideSet := t.ExpandedFrom.With(m.Name)
			body := x.build(m, nil, nil, t.Pos, hideSet)
			rescanned := x.Expand(body, expanding.With(m.Name))
			out = append(out, rescanned...)
			i++
			continue
		}

		j := i + 1
		for j < len(in) && in[j].IsWhitespaceLike() {
			j++
		}
		if j >= len(in) || in[j].Kind != token.Punct || in[j].Text != "(" {
			// Not followed by '(': not a macro invocation.
			out = append(out, t)
			i++
			continue
		}

		rawArgs, afterIdx, ok := collectArgs(in, j+1)
		if !ok {
			if x.Errors != nil {
				x.Errors.OnError(t.Pos, "unterminated function-like macro invocation of "+m.Name)
			}
			out = append(out, t)
			i++
			continue
		}
		args, ok := checkArity(m, rawArgs)
		if !ok {
			if x.Errors != nil {
				x.Errors.OnError(t.Pos, "wrong number of arguments to macro "+m.Name)
			}
			out = append(out, in[i:afterIdx]...)
			i = afterIdx
			continue
		}

		expandedArgs := make([][]token.Token, len(args))
		for k, a := range args {
			if usesOrdinary(m, k) {
				expandedArgs[k] = x.Expand(a, expanding)
			}
		}

		hideSet := t.ExpandedFrom.With(m.Name)
		body := x.build(m, args, expandedArgs, t.Pos, hideSet)
		rescanned := x.Expand(body, expanding.With(m.Name))

		if x.Options.IdentifierAdjacencySpace && afterIdx < len(in) && in[afterIdx].Kind == token.Identifier {
			rescanned = append(rescanned, token.New(token.Whitespace, " ", in[afterIdx].Pos))
		}
		out = append(out, rescanned...)
		i = afterIdx
	}
	return out
}

// usesOrdinary reports whether macro m's replacement plan ever substitutes
// parameter paramIdx in its fully-expanded ("ordinary") form, so callers can
// skip pre-expanding arguments that are only ever stringized or pasted.
func usesOrdinary(m *macro.Macro, paramIdx int) bool {
	for _, u := range m.Units {
		if u.Kind == macro.UnitParam && u.Param == paramIdx {
			return true
		}
	}
	return false
}

func (x *Expander) expandBuiltin(m *macro.Macro, t token.Token) token.Token {
	switch m.Builtin {
	case macro.BuiltinLine:
		return token.New(token.Number, strconv.Itoa(t.Pos.Line), t.Pos)
	case macro.BuiltinFile:
		path := t.Pos.File
		if x.Builtins.File != nil {
			path = x.Builtins.File()
		}
		return token.New(token.String, strconv.Quote(path), t.Pos)
	case macro.BuiltinDate:
		return token.New(token.String, `"`+x.Builtins.Date+`"`, t.Pos)
	case macro.BuiltinTime:
		return token.New(token.String, `"`+x.Builtins.Time+`"`, t.Pos)
	case macro.BuiltinCounter:
		n := 0
		if x.Builtins.Counter != nil {
			n = *x.Builtins.Counter
			*x.Builtins.Counter++
		}
		return token.New(token.Number, strconv.Itoa(n), t.Pos)
	case macro.BuiltinPCPP:
		v := x.Builtins.PCPPVersion
		if v == "" {
			v = "1"
		}
		return token.New(token.Number, v, t.Pos)
	default:
		return t
	}
}
