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

package engine

import (
	"io"

	"golang.org/x/text/encoding"

	"github.com/ned14/pcpp/internal/hooks"
)

// Define is one -D NAME[=VAL] predefine. Val defaults to "1" when empty. The
// caller splits the argument at its first "="; Val is lexed as the macro
// body, so it may itself be several tokens' worth of text (spec.md §6).
type Define struct {
	Name string
	Val  string
}

// Config is engine-instance-local (spec.md §9 "Global state": the macro
// table, if-stack, include-once set and counter all belong to one engine,
// never to package-level state), mirroring the shape of the teacher's
// cppConfig (language/cpp/config.go) without its Gazelle config.Config/
// rule.File coupling.
type Config struct {
	// Defines lists -D predefines, applied in order before any input is
	// read.
	Defines []Define
	// Undefines lists -U names to remove from the built-in/predefined set
	// before input is read.
	Undefines []string
	// NeverDefine lists -N names: any later #define/#undef of one of these
	// is passed through unexecuted.
	NeverDefine []string
	// IncludePaths is the ordered list of -I search directories.
	IncludePaths []string
	// ExcludeGlobs skips any resolved include path matching one of these
	// doublestar patterns.
	ExcludeGlobs []string

	PassthruDefines         bool
	PassthruUnfoundIncludes bool
	PassthruUnknownExprs    bool
	PassthruComments        bool
	// PassthruIncludes, when non-empty, is a regular expression: any
	// #include whose path matches it is emitted verbatim in addition to
	// being processed.
	PassthruIncludes string

	DisableAutoPragmaOnce bool

	// LineDirectivePrefix is written before a line marker's number ("#line"
	// by default). Empty disables marker emission.
	LineDirectivePrefix string
	// HaveLineDirectivePrefix distinguishes "flag not given" (keep the
	// "#line" default) from "flag given with no value" (disable markers),
	// since both look like the empty string otherwise.
	HaveLineDirectivePrefix bool
	// Compress is the --compress N whitespace-aggression level: 0 leaves
	// blank-line reproduction alone, 1 enables the writer's aggressive
	// blank-line coalescing. Level 2 behaves exactly like level 1; the
	// expander's identifier-adjacency spacing is controlled only by
	// DisableIdentifierAdjacencySpace.
	Compress int

	// EnableCounter/EnablePCPP gate the optional __COUNTER__/__PCPP__
	// builtins (spec.md §3).
	EnableCounter bool
	EnablePCPP    bool

	// DisableIdentifierAdjacencySpace turns off the GCC/clang-compatible
	// rule of inserting a space between a function-like macro's expansion
	// and an immediately following identifier (spec.md §4.X point 4, §9:
	// "must be a toggleable behavior in the engine"). Left on by default,
	// matching spec.md's numbered algorithm steps rather than treating it
	// as opt-in.
	DisableIdentifierAdjacencySpace bool

	// InputEncoding/OutputEncoding resolve --assume-input-encoding and
	// --output-encoding; nil means UTF-8 (no transcoding).
	InputEncoding  encoding.Encoding
	OutputEncoding encoding.Encoding

	// Hooks lets a caller override any extension point (spec.md §4.H). Nil
	// installs hooks.DefaultHooks.
	Hooks hooks.Hooks

	// Debug sets internal/plog's debug level (--debug). Time (--time)
	// writes one timing summary line per translation unit to Stderr.
	Debug bool
	Time  bool
	// Stderr receives diagnostics (plog and, unless Hooks overrides it,
	// hooks.DefaultHooks.Stderr); nil means os.Stderr.
	Stderr io.Writer
}

func (c Config) blankLineThreshold() int {
	if c.Compress >= 1 {
		return 0
	}
	return 6
}

func (c Config) compressWriter() bool { return c.Compress >= 1 }
