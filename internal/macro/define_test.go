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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ned14/pcpp/internal/token"
)

func tok(kind token.Kind, text string) token.Token {
	return token.New(kind, text, token.Pos{Line: 1, Column: 1})
}

func TestDefineObject_TrimsWhitespace(t *testing.T) {
	body := []token.Token{tok(token.Whitespace, " "), tok(token.Number, "3"), tok(token.Whitespace, " ")}
	m, err := DefineObject("X", body, token.Pos{})
	require.NoError(t, err)
	require.Len(t, m.Units, 1)
	assert.Equal(t, UnitLiteral, m.Units[0].Kind)
	assert.Equal(t, "3", m.Units[0].Tok.Text)
}

func TestDefineFunction_DuplicateParam(t *testing.T) {
	_, err := DefineFunction("F", []string{"a", "a"}, false, nil, token.Pos{})
	assert.Error(t, err)
}

func TestDefineFunction_PasteAtEdgesIsError(t *testing.T) {
	body := []token.Token{tok(token.HashHash, "##"), tok(token.Identifier, "a")}
	_, err := DefineFunction("F", []string{"a"}, false, body, token.Pos{})
	assert.Error(t, err)

	body2 := []token.Token{tok(token.Identifier, "a"), tok(token.HashHash, "##")}
	_, err = DefineFunction("F", []string{"a"}, false, body2, token.Pos{})
	assert.Error(t, err)
}

func TestDefineFunction_StringizeRequiresParam(t *testing.T) {
	body := []token.Token{tok(token.Hash, "#"), tok(token.Number, "1")}
	_, err := DefineFunction("F", []string{"a"}, false, body, token.Pos{})
	assert.Error(t, err)

	body2 := []token.Token{tok(token.Hash, "#"), tok(token.Identifier, "a")}
	m, err := DefineFunction("F", []string{"a"}, false, body2, token.Pos{})
	require.NoError(t, err)
	require.Len(t, m.Units, 1)
	assert.Equal(t, UnitStringize, m.Units[0].Kind)
	assert.Equal(t, 0, m.Units[0].Param)
}

func TestDefineFunction_ParamAdjacentToPasteBecomesRaw(t *testing.T) {
	// #define F(a,b) a ## b
	body := []token.Token{
		tok(token.Identifier, "a"), tok(token.Whitespace, " "), tok(token.HashHash, "##"),
		tok(token.Whitespace, " "), tok(token.Identifier, "b"),
	}
	m, err := DefineFunction("F", []string{"a", "b"}, false, body, token.Pos{})
	require.NoError(t, err)
	require.Len(t, m.Units, 3)
	assert.Equal(t, UnitParamRaw, m.Units[0].Kind)
	assert.Equal(t, UnitPaste, m.Units[1].Kind)
	assert.Equal(t, UnitParamRaw, m.Units[2].Kind)
}

func TestDefineFunction_OrdinaryParamIsExpanded(t *testing.T) {
	body := []token.Token{tok(token.Identifier, "a")}
	m, err := DefineFunction("F", []string{"a"}, false, body, token.Pos{})
	require.NoError(t, err)
	require.Len(t, m.Units, 1)
	assert.Equal(t, UnitParam, m.Units[0].Kind)
}

func TestDefineFunction_VariadicCommaSwallow(t *testing.T) {
	// #define LOG(fmt, ...) printf(fmt, ##__VA_ARGS__)
	body := []token.Token{
		tok(token.Identifier, "printf"), tok(token.Punct, "("), tok(token.Identifier, "fmt"),
		tok(token.Punct, ","), tok(token.Whitespace, " "), tok(token.HashHash, "##"),
		tok(token.Identifier, "__VA_ARGS__"), tok(token.Punct, ")"),
	}
	m, err := DefineFunction("LOG", []string{"fmt", "__VA_ARGS__"}, true, body, token.Pos{})
	require.NoError(t, err)

	var kinds []UnitKind
	for _, u := range m.Units {
		kinds = append(kinds, u.Kind)
	}
	assert.Contains(t, kinds, UnitVariadicComma)
	assert.Contains(t, kinds, UnitPaste)
}

func TestParseParams(t *testing.T) {
	toks := []token.Token{
		tok(token.Identifier, "a"), tok(token.Punct, ","), tok(token.Whitespace, " "),
		tok(token.Identifier, "b"), tok(token.Punct, ","), tok(token.Whitespace, " "),
		tok(token.Punct, "..."),
	}
	params, variadic, err := ParseParams(toks)
	require.NoError(t, err)
	assert.True(t, variadic)
	assert.Equal(t, []string{"a", "b", "__VA_ARGS__"}, params)
}

func TestParseParams_Empty(t *testing.T) {
	params, variadic, err := ParseParams(nil)
	require.NoError(t, err)
	assert.False(t, variadic)
	assert.Len(t, params, 0)
}

func TestTable_DefineUndefLookup(t *testing.T) {
	table := NewTable(true, true)
	assert.True(t, table.IsDefined("__FILE__"))
	assert.True(t, table.IsDefined("__COUNTER__"))

	m, _ := DefineObject("X", []token.Token{tok(token.Number, "1")}, token.Pos{})
	table.Define(m)
	assert.True(t, table.IsDefined("X"))
	table.Undef("X")
	assert.False(t, table.IsDefined("X"))
	table.Undef("NEVER_DEFINED") // no-op
}
