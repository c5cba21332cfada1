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

package expand

import (
	"github.com/ned14/pcpp/internal/macro"
	"github.com/ned14/pcpp/internal/token"
)

// collectArgs splits the tokens of a function-like macro invocation into its
// comma-separated argument groups, honoring nested parentheses. start points
// just past the invocation's opening '('. It returns the raw (unexpanded,
// un-merged) argument groups, the index just past the matching ')', and
// false if the invocation never closes before the input ends.
func collectArgs(in []token.Token, start int) (args [][]token.Token, afterIdx int, ok bool) {
	depth := 1
	var cur []token.Token
	i := start
	for i < len(in) {
		t := in[i]
		if t.Kind == token.Punct {
			switch t.Text {
			case "(":
				depth++
			case ")":
				depth--
				if depth == 0 {
					args = append(args, trimArg(cur))
					return args, i + 1, true
				}
			case ",":
				if depth == 1 {
					args = append(args, trimArg(cur))
					cur = nil
					i++
					continue
				}
			}
		}
		cur = append(cur, t)
		i++
	}
	return nil, i, false
}

// trimArg drops leading/trailing whitespace-like tokens from a collected
// argument; only internal whitespace is ever significant downstream (and
// only to stringize, which collapses it to a single space anyway).
func trimArg(toks []token.Token) []token.Token {
	i, j := 0, len(toks)
	for i < j && toks[i].IsWhitespaceLike() {
		i++
	}
	for j > i && toks[j-1].IsWhitespaceLike() {
		j--
	}
	return toks[i:j]
}

// checkArity validates the argument count collectArgs produced against m's
// declared parameters and, for a variadic macro, folds every group beyond
// the fixed parameters into a single __VA_ARGS__ group (spec.md §4.M).
func checkArity(m *macro.Macro, raw [][]token.Token) ([][]token.Token, bool) {
	arity := m.Arity()

	if arity == 0 && !m.Variadic {
		if len(raw) == 1 && len(raw[0]) == 0 {
			return nil, true
		}
		return raw, len(raw) == 0
	}

	if !m.Variadic {
		return raw, len(raw) == arity
	}

	fixed := arity - 1
	if len(raw) < fixed {
		return nil, false
	}
	if len(raw) == fixed {
		args := append(append([][]token.Token{}, raw[:fixed]...), []token.Token{})
		return args, true
	}

	var variadic []token.Token
	for i := fixed; i < len(raw); i++ {
		if i > fixed {
			variadic = append(variadic, token.New(token.Punct, ",", pos0(raw[i])))
		}
		variadic = append(variadic, raw[i]...)
	}
	args := append(append([][]token.Token{}, raw[:fixed]...), variadic)
	return args, true
}

func pos0(toks []token.Token) token.Pos {
	if len(toks) == 0 {
		return token.Pos{}
	}
	return toks[0].Pos
}
