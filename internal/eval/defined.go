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

package eval

import "github.com/ned14/pcpp/internal/token"

// FoldDefined replaces every `defined NAME` / `defined(NAME)` form in toks
// with a literal 1 or 0 token, per spec.md §4.E's "pre-pass" requirement:
// the operand of `defined` must never itself be macro-expanded, so this
// must run before (or folded together with) ordinary macro expansion of
// the rest of the #if/#elif line.
//
// isDefined resolves one operand name; its passthrough return mirrors the
// unknown-macro-in-defined hook's IgnoreAndPassThrough action (spec.md
// §4.H) — the caller should then treat the whole containing expression as
// partial, which FoldDefined signals back via its own partial return.
func FoldDefined(toks []token.Token, isDefined func(name string) (defined, passthrough bool)) (out []token.Token, partial bool) {
	out = make([]token.Token, 0, len(toks))
	i := 0
	for i < len(toks) {
		t := toks[i]
		if !t.IsIdent("defined") {
			out = append(out, t)
			i++
			continue
		}
		j := i + 1
		for j < len(toks) && toks[j].IsWhitespaceLike() {
			j++
		}
		paren := j < len(toks) && toks[j].Kind == token.Punct && toks[j].Text == "("
		if paren {
			j++
			for j < len(toks) && toks[j].IsWhitespaceLike() {
				j++
			}
		}
		if j >= len(toks) || toks[j].Kind != token.Identifier {
			out = append(out, t)
			i++
			continue
		}
		name := toks[j].Text
		end := j + 1
		if paren {
			for end < len(toks) && toks[end].IsWhitespaceLike() {
				end++
			}
			if end >= len(toks) || toks[end].Kind != token.Punct || toks[end].Text != ")" {
				out = append(out, t)
				i++
				continue
			}
			end++
		}
		defined, passthrough := isDefined(name)
		if passthrough {
			partial = true
		}
		v := "0"
		if defined {
			v = "1"
		}
		out = append(out, token.New(token.Number, v, t.Pos))
		i = end
	}
	return out, partial
}
