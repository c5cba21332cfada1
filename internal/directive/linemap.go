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

// lineMap implements the `#line N ["FILE"]` override of spec.md §4.D: "sets
// a per-file override used by __LINE__ and __FILE__... the line itself is
// passed through rewritten to its effective form" — meaning the #line
// directive's own line still reports under the *old* mapping, and the
// override takes hold starting with the physically next line.
type lineMap struct {
	anchorPhysical  int
	anchorEffective int
	fileOverride    string
}

func newLineMap() *lineMap {
	return &lineMap{anchorPhysical: 1, anchorEffective: 1}
}

// remap translates p's physical (lexer-assigned) position into its current
// effective position.
func (m *lineMap) remap(p token.Pos) token.Pos {
	p.Line = m.anchorEffective + (p.Line - m.anchorPhysical)
	if m.fileOverride != "" {
		p.File = m.fileOverride
	}
	return p
}

// remapAll applies remap to every token of a line.
func (m *lineMap) remapAll(line []token.Token) []token.Token {
	out := make([]token.Token, len(line))
	for i, t := range line {
		out[i] = t.WithPos(m.remap(t.Pos))
	}
	return out
}

// setLine installs a new override effective from physicalNextLine onward.
// An empty file keeps the current file override (plain "#line N").
func (m *lineMap) setLine(physicalNextLine, effective int, file string) {
	m.anchorPhysical = physicalNextLine
	m.anchorEffective = effective
	if file != "" {
		m.fileOverride = file
	}
}
