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

// DefineObject constructs an object-like macro, trimming leading/trailing
// whitespace and comments from body before recording its replacement plan.
func DefineObject(name string, body []token.Token, pos token.Pos) (*Macro, error) {
	return define(name, nil, false, body, pos)
}

// DefineFunction constructs a function-like macro. params is the declared
// parameter list (may be empty but non-nil for "NAME()"); variadic marks a
// trailing "..." or "name..." parameter, addressable as __VA_ARGS__.
func DefineFunction(name string, params []string, variadic bool, body []token.Token, pos token.Pos) (*Macro, error) {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if seen[p] {
			return nil, fmt.Errorf("macro %q: duplicate parameter %q", name, p)
		}
		seen[p] = true
	}
	return define(name, params, variadic, body, pos)
}

func define(name string, params []string, variadic bool, body []token.Token, pos token.Pos) (*Macro, error) {
	m := &Macro{
		Name:     name,
		Params:   params,
		FuncLike: params != nil,
		Variadic: variadic,
		Pos:      pos,
	}
	norm := normalizeBody(body)
	units, err := buildUnits(m, norm)
	if err != nil {
		return nil, fmt.Errorf("macro %q: %w", name, err)
	}
	m.Units = units
	m.Body = norm
	return m, nil
}

// normalizeBody strips comments (replacing each with a single whitespace
// unit), collapses consecutive whitespace, and trims leading/trailing
// whitespace, matching spec.md §4.M's "trimming surrounding whitespace".
func normalizeBody(body []token.Token) []token.Token {
	var out []token.Token
	prevWasSpace := true // drop leading whitespace
	for _, t := range body {
		if t.Kind == token.CommentBlock || t.Kind == token.CommentLine {
			t = token.New(token.Whitespace, " ", t.Pos)
		}
		if t.Kind == token.Whitespace || t.Kind == token.Newline {
			if prevWasSpace {
				continue
			}
			out = append(out, token.New(token.Whitespace, " ", t.Pos))
			prevWasSpace = true
			continue
		}
		out = append(out, t)
		prevWasSpace = false
	}
	for len(out) > 0 && out[len(out)-1].Kind == token.Whitespace {
		out = out[:len(out)-1]
	}
	return out
}

func buildUnits(m *Macro, body []token.Token) ([]Unit, error) {
	units := make([]Unit, 0, len(body))
	i := 0
	for i < len(body) {
		tok := body[i]
		switch {
		case tok.Kind == token.HashHash:
			units = append(units, Unit{Kind: UnitPaste})
			i++
		case tok.Kind == token.Hash && m.FuncLike:
			j := i + 1
			for j < len(body) && body[j].Kind == token.Whitespace {
				j++
			}
			if j >= len(body) || body[j].Kind != token.Identifier {
				return nil, fmt.Errorf("'#' is not followed by a macro parameter")
			}
			pidx := m.ParamIndex(body[j].Text)
			if pidx < 0 {
				return nil, fmt.Errorf("'#' is not followed by a macro parameter")
			}
			units = append(units, Unit{Kind: UnitStringize, Param: pidx})
			i = j + 1
		case tok.Kind == token.Identifier && m.FuncLike && m.ParamIndex(tok.Text) >= 0:
			pidx := m.ParamIndex(tok.Text)
			if adjacentToPaste(body, i) {
				units = append(units, Unit{Kind: UnitParamRaw, Param: pidx})
			} else {
				units = append(units, Unit{Kind: UnitParam, Param: pidx})
			}
			i++
		default:
			units = append(units, Unit{Kind: UnitLiteral, Tok: tok})
			i++
		}
	}

	if len(units) > 0 && units[0].Kind == UnitPaste {
		return nil, fmt.Errorf("'##' cannot appear at the start of a replacement list")
	}
	if len(units) > 0 && units[len(units)-1].Kind == UnitPaste {
		return nil, fmt.Errorf("'##' cannot appear at the end of a replacement list")
	}

	units = stripWhitespaceAroundPaste(units)
	markVariadicCommaSwallow(units, m)
	return units, nil
}

// adjacentToPaste reports whether the token at index i in body is
// immediately preceded or followed by '##', ignoring intervening
// whitespace.
func adjacentToPaste(body []token.Token, i int) bool {
	j := i - 1
	for j >= 0 && body[j].Kind == token.Whitespace {
		j--
	}
	if j >= 0 && body[j].Kind == token.HashHash {
		return true
	}
	j = i + 1
	for j < len(body) && body[j].Kind == token.Whitespace {
		j++
	}
	return j < len(body) && body[j].Kind == token.HashHash
}

// stripWhitespaceAroundPaste removes whitespace literal units immediately
// adjacent to a UnitPaste, per spec.md §4.M: "the adjacent whitespace is
// removed from the replacement list during pre-scan".
func stripWhitespaceAroundPaste(units []Unit) []Unit {
	isWS := func(u Unit) bool { return u.Kind == UnitLiteral && u.Tok.Kind == token.Whitespace }
	out := make([]Unit, 0, len(units))
	for i, u := range units {
		if isWS(u) {
			nextIsPaste := i+1 < len(units) && units[i+1].Kind == UnitPaste
			prevIsPaste := len(out) > 0 && out[len(out)-1].Kind == UnitPaste
			if nextIsPaste || prevIsPaste {
				continue
			}
		}
		out = append(out, u)
	}
	return out
}

// markVariadicCommaSwallow finds ", ## __VA_ARGS__" groups (after whitespace
// stripping, the comma literal directly precedes a UnitPaste that directly
// precedes the variadic parameter reference) and retags the comma as
// UnitVariadicComma so the expander can elide it when the variadic argument
// is empty.
func markVariadicCommaSwallow(units []Unit, m *Macro) {
	if !m.Variadic || len(m.Params) == 0 {
		return
	}
	variadicIdx := len(m.Params) - 1
	for i := 0; i+2 < len(units); i++ {
		comma := units[i]
		paste := units[i+1]
		arg := units[i+2]
		if comma.Kind != UnitLiteral || comma.Tok.Kind != token.Punct || comma.Tok.Text != "," {
			continue
		}
		if paste.Kind != UnitPaste {
			continue
		}
		if (arg.Kind == UnitParam || arg.Kind == UnitParamRaw) && arg.Param == variadicIdx {
			units[i].Kind = UnitVariadicComma
		}
	}
}
