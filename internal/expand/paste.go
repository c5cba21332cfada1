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
	"strings"

	"github.com/ned14/pcpp/internal/lexer"
	"github.com/ned14/pcpp/internal/macro"
	"github.com/ned14/pcpp/internal/token"
)

// build instantiates m's replacement plan against args (raw, per-parameter
// token groups) and expandedArgs (the same groups pre-expanded, populated
// only where some unit substitutes the ordinary form), eliding a swallowed
// variadic comma group and applying every '##' paste, then retags every
// produced token with pos/hideSet: spec.md's location invariant is "the
// location of the invoking token, not the replacement list".
func (x *Expander) build(m *macro.Macro, args, expandedArgs [][]token.Token, pos token.Pos, hideSet token.HideSet) []token.Token {
	units := elideVariadicComma(m, args)

	var result []token.Token
	pasteNext := false
	for _, u := range units {
		if u.Kind == macro.UnitPaste {
			pasteNext = true
			continue
		}
		seg := x.unitTokens(u, args, expandedArgs, pos)
		if pasteNext && len(result) > 0 {
			result = pasteTokens(result, seg)
		} else {
			result = append(result, seg...)
		}
		pasteNext = false
	}

	for i := range result {
		result[i] = result[i].WithPos(pos).WithHideSet(hideSet)
	}
	return result
}

func (x *Expander) unitTokens(u macro.Unit, args, expandedArgs [][]token.Token, pos token.Pos) []token.Token {
	switch u.Kind {
	case macro.UnitLiteral, macro.UnitVariadicComma:
		return []token.Token{u.Tok}
	case macro.UnitParam:
		if u.Param < len(expandedArgs) {
			return expandedArgs[u.Param]
		}
		return nil
	case macro.UnitParamRaw:
		if u.Param < len(args) {
			return args[u.Param]
		}
		return nil
	case macro.UnitStringize:
		var arg []token.Token
		if u.Param < len(args) {
			arg = args[u.Param]
		}
		return []token.Token{stringize(arg, pos)}
	default:
		return nil
	}
}

// elideVariadicComma drops a UnitVariadicComma together with its following
// UnitPaste and variadic-parameter unit when the variadic argument supplied
// no tokens, implementing GNU's "Swallow Comma" extension for
// ", ## __VA_ARGS__" (spec.md §4.M, §8 scenario 3).
func elideVariadicComma(m *macro.Macro, args [][]token.Token) []macro.Unit {
	if !m.Variadic || len(m.Params) == 0 {
		return m.Units
	}
	variadicIdx := len(m.Params) - 1
	if variadicIdx >= len(args) || len(args[variadicIdx]) != 0 {
		return m.Units
	}
	units := m.Units
	out := make([]macro.Unit, 0, len(units))
	i := 0
	for i < len(units) {
		if units[i].Kind == macro.UnitVariadicComma && i+2 < len(units) &&
			units[i+1].Kind == macro.UnitPaste &&
			(units[i+2].Kind == macro.UnitParam || units[i+2].Kind == macro.UnitParamRaw) &&
			units[i+2].Param == variadicIdx {
			i += 3
			continue
		}
		out = append(out, units[i])
		i++
	}
	return out
}

// pasteTokens implements the '##' operator between two already-produced
// token sequences: the last token of left and the first token of right are
// concatenated and relexed. If the result is not a single valid token it is
// split back into the two original tokens (spec.md §4.X point 3.c). An
// empty operand contributes nothing and the other operand passes through
// unchanged.
func pasteTokens(left, right []token.Token) []token.Token {
	if len(left) == 0 {
		return right
	}
	if len(right) == 0 {
		return left
	}
	a, b := left[len(left)-1], right[0]
	combined := a.Text + b.Text

	lx := lexer.New("", []byte(combined))
	first := lx.NextToken()
	second := lx.NextToken()

	out := make([]token.Token, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	if second.Kind == token.EOF && first.Text == combined {
		out = append(out, token.New(first.Kind, combined, a.Pos))
	} else {
		out = append(out, a, b)
	}
	out = append(out, right[1:]...)
	return out
}

// stringize builds the string-literal token a '#' operator produces from an
// unexpanded argument: leading/trailing whitespace is dropped, internal
// whitespace runs collapse to a single space, and every '\' and '"' in the
// argument's own text is backslash-escaped (spec.md §4.X point 2).
func stringize(arg []token.Token, pos token.Pos) token.Token {
	var b strings.Builder
	b.WriteByte('"')
	pendingSpace := false
	wrote := false
	for _, t := range arg {
		if t.IsWhitespaceLike() {
			if wrote {
				pendingSpace = true
			}
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		wrote = true
		text := t.Text
		text = strings.ReplaceAll(text, `\`, `\\`)
		text = strings.ReplaceAll(text, `"`, `\"`)
		b.WriteString(text)
	}
	b.WriteByte('"')
	return token.New(token.String, b.String(), pos)
}
