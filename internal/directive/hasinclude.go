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

package directive

import (
	"strings"

	"github.com/ned14/pcpp/internal/token"
)

// foldHasInclude replaces `__has_include(<path>)` / `__has_include("path")`
// / `__has_include_next(...)` forms with a literal 1/0 token, the same kind
// of pre-pass `defined` gets (spec.md §4.E: "an analogous pre-pass for
// __has_include(…) unless the caller has requested pass-through"). A form
// that doesn't parse is left untouched, so it surfaces as an ordinary
// (almost certainly unresolved) identifier to the evaluator.
func (p *Processor) foldHasInclude(fromFile string, toks []token.Token) []token.Token {
	if p.Includes == nil {
		return toks
	}
	out := make([]token.Token, 0, len(toks))
	i := 0
	for i < len(toks) {
		t := toks[i]
		if !(t.IsIdent("__has_include") || t.IsIdent("__has_include_next")) {
			out = append(out, t)
			i++
			continue
		}
		isNext := t.Text == "__has_include_next"
		j := skipWS(toks, i+1)
		if j >= len(toks) || toks[j].Kind != token.Punct || toks[j].Text != "(" {
			out = append(out, t)
			i++
			continue
		}
		j = skipWS(toks, j+1)
		path, isSystem, end, ok := parseHeaderName(toks, j)
		if !ok {
			out = append(out, t)
			i++
			continue
		}
		end = skipWS(toks, end)
		if end >= len(toks) || toks[end].Kind != token.Punct || toks[end].Text != ")" {
			out = append(out, t)
			i++
			continue
		}
		end++
		v := "0"
		if p.Includes.Exists(fromFile, isSystem, isNext, path) {
			v = "1"
		}
		out = append(out, token.New(token.Number, v, t.Pos))
		i = end
	}
	return out
}

// parseHeaderName reads a quoted or angle-bracketed header name starting at
// toks[i], returning the path text, whether it was angle-bracketed, and the
// index just past the closing delimiter.
func parseHeaderName(toks []token.Token, i int) (path string, isSystem bool, end int, ok bool) {
	if i >= len(toks) {
		return "", false, i, false
	}
	if toks[i].Kind == token.String {
		return strings.Trim(toks[i].Text, `"`), false, i + 1, true
	}
	if toks[i].Kind == token.Punct && toks[i].Text == "<" {
		var b strings.Builder
		k := i + 1
		for k < len(toks) && !(toks[k].Kind == token.Punct && toks[k].Text == ">") {
			b.WriteString(toks[k].Text)
			k++
		}
		if k >= len(toks) {
			return "", false, i, false
		}
		return b.String(), true, k + 1, true
	}
	return "", false, i, false
}
