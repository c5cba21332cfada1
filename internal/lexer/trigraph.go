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

package lexer

import "strings"

// trigraphTable is the C99 Table 6.10.3.1 trigraph-to-replacement mapping.
var trigraphTable = map[byte]byte{
	'=':  '#',
	'/':  '\\',
	'\'': '^',
	'(':  '[',
	')':  ']',
	'!':  '|',
	'<':  '{',
	'>':  '}',
	'-':  '~',
}

// ReplaceTrigraphs replaces each "??X" trigraph sequence in src with its
// single-character equivalent, preserving length-affecting positions by
// leaving everything else untouched. It must run before tokenization: once
// trigraphs are replaced, the lexer never needs to know they existed.
func ReplaceTrigraphs(src []byte) []byte {
	if !strings.Contains(string(src), "??") {
		return src
	}
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		if i+2 < len(src) && src[i] == '?' && src[i+1] == '?' {
			if repl, ok := trigraphTable[src[i+2]]; ok {
				out = append(out, repl)
				i += 2
				continue
			}
		}
		out = append(out, src[i])
	}
	return out
}
