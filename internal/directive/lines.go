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

import "github.com/ned14/pcpp/internal/token"

// directiveName reports whether line begins a preprocessor directive: its
// first non-whitespace, non-comment token is '#'. It returns the directive
// keyword token's index and the name itself (empty for a "null directive",
// a bare '#' line, which is legal and a no-op).
func directiveName(line []token.Token) (hashIdx int, nameIdx int, name string, isDirective bool) {
	i := 0
	for i < len(line) && line[i].IsWhitespaceLike() {
		i++
	}
	if i >= len(line) || line[i].Kind != token.Hash {
		return 0, 0, "", false
	}
	hashIdx = i
	j := i + 1
	for j < len(line) && line[j].IsWhitespaceLike() {
		j++
	}
	if j >= len(line) || line[j].Kind != token.Identifier {
		return hashIdx, j, "", true
	}
	return hashIdx, j, line[j].Text, true
}

func trimWS(toks []token.Token) []token.Token {
	i, j := 0, len(toks)
	for i < j && toks[i].IsWhitespaceLike() {
		i++
	}
	for j > i && toks[j-1].IsWhitespaceLike() {
		j--
	}
	return toks[i:j]
}

func skipWS(toks []token.Token, i int) int {
	for i < len(toks) && toks[i].IsWhitespaceLike() {
		i++
	}
	return i
}

func tokensText(toks []token.Token) string {
	s := ""
	for _, t := range toks {
		s += t.Text
	}
	return s
}
