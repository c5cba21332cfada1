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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ned14/pcpp/internal/lexer"
	"github.com/ned14/pcpp/internal/macro"
	"github.com/ned14/pcpp/internal/token"
)

// lex tokenizes src, dropping newline and line-continuation tokens and
// keeping every other token (whitespace included) as-is, matching how the
// directive processor would hand the expander an already-spliced line.
func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	lx := lexer.New("t.c", []byte(src))
	var out []token.Token
	for {
		tok := lx.NextToken()
		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind == token.Newline || tok.Kind == token.LineContinue {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func text(toks []token.Token) string {
	s := ""
	for _, t := range toks {
		s += t.Text
	}
	return s
}

func newExpander(table *macro.Table) *Expander {
	return &Expander{
		Table:   table,
		Options: Options{IdentifierAdjacencySpace: true},
	}
}

func TestExpand_ObjectLike(t *testing.T) {
	table := macro.NewTable(false, false)
	m, err := macro.DefineObject("FOO", lex(t, "1 + 2"), token.Pos{})
	require.NoError(t, err)
	table.Define(m)

	x := newExpander(table)
	out := x.Expand(lex(t, "FOO * 3"), nil)
	assert.Equal(t, "1 + 2 * 3", text(out))
}

func TestExpand_SelfReferenceNotReExpanded(t *testing.T) {
	// #define FOO FOO + 1 must not loop forever.
	table := macro.NewTable(false, false)
	m, err := macro.DefineObject("FOO", lex(t, "FOO + 1"), token.Pos{})
	require.NoError(t, err)
	table.Define(m)

	x := newExpander(table)
	out := x.Expand(lex(t, "FOO"), nil)
	assert.Equal(t, "FOO + 1", text(out))
}

func TestExpand_IndirectSelfReferenceNotReExpanded(t *testing.T) {
	// #define A B
	// #define B A
	table := macro.NewTable(false, false)
	a, err := macro.DefineObject("A", lex(t, "B"), token.Pos{})
	require.NoError(t, err)
	b, err := macro.DefineObject("B", lex(t, "A"), token.Pos{})
	require.NoError(t, err)
	table.Define(a)
	table.Define(b)

	x := newExpander(table)
	out := x.Expand(lex(t, "A"), nil)
	assert.Equal(t, "A", text(out))
}

func TestExpand_FunctionLikeOrdinaryArgument(t *testing.T) {
	// #define SQ(x) ((x) * (x))
	params, variadic, err := macro.ParseParams(lex(t, "x"))
	require.NoError(t, err)
	m, err := macro.DefineFunction("SQ", params, variadic, lex(t, "((x) * (x))"), token.Pos{})
	require.NoError(t, err)
	table := macro.NewTable(false, false)
	table.Define(m)

	x := newExpander(table)
	out := x.Expand(lex(t, "SQ(1+2)"), nil)
	assert.Equal(t, "((1+2) * (1+2))", text(out))
}

func TestExpand_NestedParensInArguments(t *testing.T) {
	params, variadic, err := macro.ParseParams(lex(t, "a, b"))
	require.NoError(t, err)
	m, err := macro.DefineFunction("ADD", params, variadic, lex(t, "a + b"), token.Pos{})
	require.NoError(t, err)
	table := macro.NewTable(false, false)
	table.Define(m)

	x := newExpander(table)
	out := x.Expand(lex(t, "ADD(f(1,2), 3)"), nil)
	assert.Equal(t, "f(1,2) + 3", text(out))
}

func TestExpand_StringizeAndPaste(t *testing.T) {
	// #define GLUE(a, b) a ## b
	// #define STR(x) #x
	// #define XSTR(x) STR(x)   -- the indirection forces x to be expanded
	// before it is stringized, unlike calling STR directly.
	params, variadic, err := macro.ParseParams(lex(t, "a, b"))
	require.NoError(t, err)
	glue, err := macro.DefineFunction("GLUE", params, variadic, lex(t, "a ## b"), token.Pos{})
	require.NoError(t, err)

	xparams, xvariadic, err := macro.ParseParams(lex(t, "x"))
	require.NoError(t, err)
	str, err := macro.DefineFunction("STR", xparams, xvariadic, lex(t, "#x"), token.Pos{})
	require.NoError(t, err)
	xstr, err := macro.DefineFunction("XSTR", xparams, xvariadic, lex(t, "STR(x)"), token.Pos{})
	require.NoError(t, err)

	table := macro.NewTable(false, false)
	table.Define(glue)
	table.Define(str)
	table.Define(xstr)

	x := newExpander(table)
	out := x.Expand(lex(t, "STR(GLUE(foo, bar))"), nil)
	assert.Equal(t, `"GLUE(foo, bar)"`, text(out))

	out = x.Expand(lex(t, "XSTR(GLUE(foo, bar))"), nil)
	assert.Equal(t, `"foobar"`, text(out))
}

func TestExpand_HashHashOnLiterals(t *testing.T) {
	// #define hash_hash # ## #
	m, err := macro.DefineObject("hash_hash", lex(t, "# ## #"), token.Pos{})
	require.NoError(t, err)
	table := macro.NewTable(false, false)
	table.Define(m)

	x := newExpander(table)
	out := x.Expand(lex(t, "hash_hash"), nil)
	require.Len(t, out, 1)
	assert.Equal(t, "##", out[0].Text)
}

func TestExpand_VariadicCommaSwallow(t *testing.T) {
	// #define LOG(fmt, ...) printf(fmt, ##__VA_ARGS__)
	params, variadic, err := macro.ParseParams(lex(t, "fmt, ..."))
	require.NoError(t, err)
	m, err := macro.DefineFunction("LOG", params, variadic, lex(t, `printf(fmt, ##__VA_ARGS__)`), token.Pos{})
	require.NoError(t, err)
	table := macro.NewTable(false, false)
	table.Define(m)

	x := newExpander(table)

	out := x.Expand(lex(t, `LOG("hi")`), nil)
	assert.Equal(t, `printf("hi")`, text(out))

	out = x.Expand(lex(t, `LOG("hi %d", 1)`), nil)
	assert.Equal(t, `printf("hi %d",1)`, text(out))
}

func TestExpand_ZeroArgInvocation(t *testing.T) {
	params, variadic, err := macro.ParseParams(nil)
	require.NoError(t, err)
	m, err := macro.DefineFunction("F", params, variadic, lex(t, "1"), token.Pos{})
	require.NoError(t, err)
	table := macro.NewTable(false, false)
	table.Define(m)

	x := newExpander(table)
	out := x.Expand(lex(t, "F()"), nil)
	assert.Equal(t, "1", text(out))
}

func TestExpand_WrongArityReportsErrorAndPassesThrough(t *testing.T) {
	params, variadic, err := macro.ParseParams(lex(t, "a, b"))
	require.NoError(t, err)
	m, err := macro.DefineFunction("F", params, variadic, lex(t, "a b"), token.Pos{})
	require.NoError(t, err)
	table := macro.NewTable(false, false)
	table.Define(m)

	var reported []string
	rec := recorderFunc(func(pos token.Pos, msg string) { reported = append(reported, msg) })
	x := &Expander{Table: table, Errors: rec}
	out := x.Expand(lex(t, "F(1)"), nil)
	assert.Equal(t, "F(1)", text(out))
	assert.Len(t, reported, 1)
}

func TestExpand_IdentifierAdjacencySpace(t *testing.T) {
	m, err := macro.DefineFunction("F", []string{}, false, lex(t, "x"), token.Pos{})
	require.NoError(t, err)
	table := macro.NewTable(false, false)
	table.Define(m)

	x := newExpander(table)
	out := x.Expand(lex(t, "F()y"), nil)
	assert.Equal(t, "x y", text(out))
}

func TestExpand_DynamicLineBuiltin(t *testing.T) {
	table := macro.NewTable(false, false)
	x := newExpander(table)
	toks := []token.Token{token.New(token.Identifier, "__LINE__", token.Pos{File: "a.c", Line: 42, Column: 1})}
	out := x.Expand(toks, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "42", out[0].Text)
}

type recorderFunc func(pos token.Pos, msg string)

func (f recorderFunc) OnError(pos token.Pos, msg string) { f(pos, msg) }
