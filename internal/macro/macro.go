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

// Package macro implements the macro table of spec.md §4.M: storage of
// object-like and function-like macro definitions together with the
// pre-computed patch list that drives the expander without having to
// re-derive stringize/paste/ordinary classification on every expansion.
package macro

import (
	"fmt"

	"github.com/ned14/pcpp/internal/token"
)

// UnitKind classifies one element of a macro's pre-computed replacement
// plan (spec.md §4.M "patches").
type UnitKind int

const (
	// UnitLiteral emits its Token verbatim.
	UnitLiteral UnitKind = iota
	// UnitParam substitutes the fully macro-expanded form of the argument at
	// Param (an "ordinary-expand" position).
	UnitParam
	// UnitParamRaw substitutes the unexpanded token sequence of the argument
	// at Param; used for operands adjacent to '#' or '##'.
	UnitParamRaw
	// UnitStringize replaces a "# param" pair with a single string-literal
	// token built from the unexpanded argument at Param.
	UnitStringize
	// UnitPaste marks a '##' boundary: the expander concatenates the last
	// token produced by the previous unit with the first token produced by
	// the next unit.
	UnitPaste
	// UnitVariadicComma is a literal comma immediately preceding a
	// "## __VA_ARGS__" pasting group; the expander elides it when the
	// variadic argument is empty (the "Swallow Comma" behavior).
	UnitVariadicComma
)

// Unit is one element of a Macro's replacement plan.
type Unit struct {
	Kind  UnitKind
	Tok   token.Token // valid for UnitLiteral and UnitVariadicComma
	Param int         // valid for UnitParam, UnitParamRaw, UnitStringize
}

// Macro is a single macro definition (spec.md §3 "Macro").
type Macro struct {
	Name       string
	Params     []string // nil for object-like macros; may be empty-but-non-nil for "NAME()"
	FuncLike   bool
	Variadic   bool
	Units      []Unit // pre-computed replacement plan
	Body       []token.Token
	Pos        token.Pos
	Builtin    Builtin
}

// Builtin identifies one of the dynamically-resolved macros of spec.md §3
// ("Four built-in macros are always present and resolve dynamically on
// read"). A Macro with Builtin == NotBuiltin is an ordinary definition.
type Builtin int

const (
	NotBuiltin Builtin = iota
	BuiltinFile
	BuiltinLine
	BuiltinDate
	BuiltinTime
	BuiltinCounter
	BuiltinPCPP
)

// ParamIndex returns the index of name among m.Params, honoring the
// variadic alias __VA_ARGS__ for the trailing accumulator parameter.
// Returns -1 if name is not a parameter of m.
func (m *Macro) ParamIndex(name string) int {
	for i, p := range m.Params {
		if p == name {
			return i
		}
	}
	if m.Variadic && name == "__VA_ARGS__" && len(m.Params) > 0 {
		return len(m.Params) - 1
	}
	return -1
}

// Arity is the number of declared parameters (the variadic accumulator
// counts as one parameter).
func (m *Macro) Arity() int {
	return len(m.Params)
}

func (m *Macro) String() string {
	if !m.FuncLike {
		return fmt.Sprintf("#define %s ...", m.Name)
	}
	return fmt.Sprintf("#define %s(%v) ...", m.Name, m.Params)
}
