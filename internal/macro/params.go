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

package macro

import (
	"fmt"

	"github.com/ned14/pcpp/internal/token"
)

// ParseParams parses the comma-separated token list found between a
// function-like macro's parentheses. A bare trailing "..." or a trailing
// "name..." marks the macro variadic (spec.md §4.M); the empty list "()"
// is permitted and yields a non-nil, zero-length params slice.
func ParseParams(tokens []token.Token) (params []string, variadic bool, err error) {
	params = []string{}
	var cur []token.Token
	flush := func() error {
		toks := trimWS(cur)
		cur = nil
		if len(toks) == 0 {
			return nil
		}
		if len(toks) == 1 && toks[0].Kind == token.Punct && toks[0].Text == "..." {
			variadic = true
			params = append(params, "__VA_ARGS__")
			return nil
		}
		if len(toks) == 2 && toks[0].Kind == token.Identifier && toks[1].Kind == token.Punct && toks[1].Text == "..." {
			variadic = true
			params = append(params, toks[0].Text)
			return nil
		}
		if len(toks) != 1 || toks[0].Kind != token.Identifier {
			return fmt.Errorf("invalid macro parameter %q", tokensText(toks))
		}
		params = append(params, toks[0].Text)
		return nil
	}
	for _, t := range tokens {
		if t.Kind == token.Punct && t.Text == "," {
			if err := flush(); err != nil {
				return nil, false, err
			}
			continue
		}
		cur = append(cur, t)
	}
	if err := flush(); err != nil {
		return nil, false, err
	}
	return params, variadic, nil
}

func trimWS(toks []token.Token) []token.Token {
	i, j := 0, len(toks)
	for i < j && toks[i].Kind == token.Whitespace {
		i++
	}
	for j > i && toks[j-1].Kind == token.Whitespace {
		j--
	}
	return toks[i:j]
}

func tokensText(toks []token.Token) string {
	s := ""
	for _, t := range toks {
		s += t.Text
	}
	return s
}
