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

import (
	"iter"

	"github.com/ned14/pcpp/internal/token"
)

// Splice removes line-continuation tokens from toks (spec.md §4.T): "when a
// line-continuation token is seen it is deleted ... while incrementing the
// source line of everything that follows." The increment happens for free
// here because the underlying Lexer's cursor already advanced across the
// backslash-newline bytes when it produced the LineContinue token; Splice
// only needs to drop the token itself so it never reaches the directive
// processor or expander.
func Splice(toks iter.Seq[token.Token]) iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for tok := range toks {
			if tok.Kind == token.LineContinue {
				continue
			}
			if !yield(tok) {
				return
			}
		}
	}
}
