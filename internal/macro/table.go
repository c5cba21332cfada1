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

import "github.com/ned14/pcpp/internal/token"

// Table maps macro names to their definitions (spec.md §3 "Macro table").
// Names are unique; redefinition replaces silently (callers that want a
// "compatible redefinition" diagnostic or a hook veto must check before
// calling Define). Four dynamic built-ins are always present; __COUNTER__
// and __PCPP__ are optional per spec.md §3.
type Table struct {
	macros map[string]*Macro
}

// NewTable constructs a Table with the built-in dynamic macros installed.
// enableCounter/enablePCPP gate __COUNTER__/__PCPP__, which spec.md marks
// optional.
func NewTable(enableCounter, enablePCPP bool) *Table {
	t := &Table{macros: make(map[string]*Macro)}
	t.macros["__FILE__"] = &Macro{Name: "__FILE__", Builtin: BuiltinFile}
	t.macros["__LINE__"] = &Macro{Name: "__LINE__", Builtin: BuiltinLine}
	t.macros["__DATE__"] = &Macro{Name: "__DATE__", Builtin: BuiltinDate}
	t.macros["__TIME__"] = &Macro{Name: "__TIME__", Builtin: BuiltinTime}
	if enableCounter {
		t.macros["__COUNTER__"] = &Macro{Name: "__COUNTER__", Builtin: BuiltinCounter}
	}
	if enablePCPP {
		t.macros["__PCPP__"] = &Macro{Name: "__PCPP__", Builtin: BuiltinPCPP}
	}
	return t
}

// Define installs m, replacing any prior definition of the same name.
func (t *Table) Define(m *Macro) {
	t.macros[m.Name] = m
}

// Undef removes name's definition, a no-op if it was not defined.
func (t *Table) Undef(name string) {
	delete(t.macros, name)
}

// Lookup returns name's Macro and whether it is currently defined.
func (t *Table) Lookup(name string) (*Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}

// IsDefined reports whether name currently has a definition.
func (t *Table) IsDefined(name string) bool {
	_, ok := t.macros[name]
	return ok
}

// DefineSimple installs an object-like macro whose value is exactly one
// pp-number or identifier token, as used for -D predefines and the
// "FOO=1" default of a bare -D (spec.md §6).
func DefineSimple(name, value string, pos token.Pos) *Macro {
	var body []token.Token
	if value != "" {
		kind := token.Identifier
		if len(value) > 0 && (value[0] >= '0' && value[0] <= '9') {
			kind = token.Number
		}
		body = []token.Token{token.New(kind, value, pos)}
	}
	m, err := DefineObject(name, body, pos)
	if err != nil {
		// DefineObject cannot fail for a single literal/identifier token body.
		panic(err)
	}
	return m
}
