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

// Package hooks defines the extension surface of spec.md §4.H: every
// behavior a host may want to override, exposed as a small interface with a
// default implementation. DefaultHooks matches the behavior spec.md labels
// "the default" at each hook site.
package hooks

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ned14/pcpp/internal/eval"
	"github.com/ned14/pcpp/internal/token"
)

// Action is the pass-through decision a hook may return instead of a
// concrete value, matching Python pcpp's Action/OutputDirective pair.
type Action int

const (
	// UseDefault asks the caller to apply its own built-in default instead
	// of a hook-supplied override.
	UseDefault Action = iota
	// IgnoreAndPassThrough aborts execution of the directive but copies it
	// to the output unchanged.
	IgnoreAndPassThrough
	// IgnoreAndRemove aborts execution of the directive and drops it from
	// the output.
	IgnoreAndRemove
)

// Hooks is the minimum extension set named in spec.md §4.H.
type Hooks interface {
	// OnError reports a preprocessing fault at pos.
	OnError(pos token.Pos, msg string)

	// OnFileOpen opens path for reading, honoring isSystemInclude (angle
	// brackets vs quotes) if the override wants to search differently.
	// Returning ok=false means "could not open"; the caller then falls
	// through to the next search-path candidate.
	OnFileOpen(pos token.Pos, isSystemInclude bool, path string) (content []byte, ok bool, err error)

	// OnIncludeNotFound is called once every search-path candidate for an
	// #include has failed.
	OnIncludeNotFound(pos token.Pos, isMalformed, isSystemInclude bool, curDir, path string) Action

	// OnUnknownMacroInDefined resolves `defined NAME` for an undefined
	// NAME. action == UseDefault means "defined ⇒ the returned bool";
	// IgnoreAndPassThrough means the containing #if/#elif becomes partial.
	OnUnknownMacroInDefined(name string) (defined bool, action Action)

	// OnUnknownMacroInExpr resolves a bare identifier encountered while
	// evaluating a #if/#elif expression. passthrough means the containing
	// expression becomes partial (the --passthru-unknown-exprs behavior).
	OnUnknownMacroInExpr(name string) (value eval.Value, passthrough bool)

	// OnUnknownMacroFunctionInExpr resolves a call-syntax form
	// `NAME(args...)` found in a #if/#elif expression where NAME is not
	// `defined` or `__has_include`. passthrough behaves as in
	// OnUnknownMacroInExpr.
	OnUnknownMacroFunctionInExpr(name string) (fn func(args []eval.Value) eval.Value, passthrough bool)

	// OnDirectiveHandle is consulted before define/undef/include/
	// include_next/pragma directives execute; the if-family never consults
	// it. UseDefault executes and removes the directive from the output
	// (except #define/#undef under --passthru-defines, which execute AND
	// are copied to the output, and a #pragma other than "once", which is
	// copied to the output).
	OnDirectiveHandle(directive string, ifPassthru bool) Action

	// OnDirectiveUnknown is consulted for a directive name the processor
	// does not itself implement (anything other than define, undef,
	// include, include_next, if, ifdef, ifndef, elif, else, endif, line,
	// pragma, error, warning).
	OnDirectiveUnknown(directive string, toks []token.Token, pos token.Pos, ifPassthru bool) Action

	// OnPotentialIncludeGuard is called at the end of a file that
	// auto-pragma-once detection found wrapped in a single
	// `#ifndef NAME` / `#if !defined(NAME)` guard, naming that macro, just
	// before the file is added to the include-once set. It is not called
	// for a file that did not qualify.
	OnPotentialIncludeGuard(name string)

	// OnComment is called for every comment token encountered. Returning
	// true keeps the comment in the output; false replaces it with
	// whitespace of the same shape (one space for a block comment, nothing
	// extra for a line comment, since a line comment already ends at the
	// newline).
	OnComment(tok token.Token) bool
}

// DefaultHooks implements Hooks with the behavior spec.md §7 and the
// original pcpp.PreprocessorHooks call "the default". Embed it and override
// individual methods to customize a subset of behavior.
type DefaultHooks struct {
	// Stderr receives OnError/#error/#warning text; nil means os.Stderr.
	Stderr io.Writer
	// ReturnCode counts #error occurrences and OnError calls, per spec.md
	// §7 ("exit code is the count of #error occurrences encountered").
	ReturnCode int
	// PassthruComments, when true, makes OnComment keep every comment.
	PassthruComments bool
}

func (h *DefaultHooks) stderr() io.Writer {
	if h.Stderr != nil {
		return h.Stderr
	}
	return os.Stderr
}

func (h *DefaultHooks) OnError(pos token.Pos, msg string) {
	fmt.Fprintf(h.stderr(), "%s: error: %s\n", pos.String(), msg)
	h.ReturnCode++
}

func (h *DefaultHooks) OnFileOpen(pos token.Pos, isSystemInclude bool, path string) ([]byte, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, nil
	}
	defer f.Close()
	data, err := io.ReadAll(bufio.NewReader(f))
	if err != nil {
		return nil, false, err
	}
	// Strip a UTF-8 BOM, matching on_file_open's "examines if it starts
	// with a BOM ... removes it".
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return data, true, nil
}

func (h *DefaultHooks) OnIncludeNotFound(pos token.Pos, isMalformed, isSystemInclude bool, curDir, path string) Action {
	if isMalformed {
		h.OnError(pos, fmt.Sprintf("malformed #include statement: %s", path))
	} else {
		h.OnError(pos, fmt.Sprintf("include file %q not found", path))
	}
	return IgnoreAndPassThrough
}

func (h *DefaultHooks) OnUnknownMacroInDefined(name string) (bool, Action) {
	return false, UseDefault
}

func (h *DefaultHooks) OnUnknownMacroInExpr(name string) (eval.Value, bool) {
	return eval.Int(0), false
}

func (h *DefaultHooks) OnUnknownMacroFunctionInExpr(name string) (func([]eval.Value) eval.Value, bool) {
	return func([]eval.Value) eval.Value { return eval.Int(0) }, false
}

func (h *DefaultHooks) OnDirectiveHandle(directive string, ifPassthru bool) Action {
	return UseDefault
}

func (h *DefaultHooks) OnDirectiveUnknown(directive string, toks []token.Token, pos token.Pos, ifPassthru bool) Action {
	text := joinText(toks)
	switch directive {
	case "error":
		fmt.Fprintf(h.stderr(), "%s: error: %s\n", pos.String(), text)
		h.ReturnCode++
		return IgnoreAndRemove
	case "warning":
		fmt.Fprintf(h.stderr(), "%s: warning: %s\n", pos.String(), text)
		return IgnoreAndRemove
	}
	return UseDefault
}

func (h *DefaultHooks) OnPotentialIncludeGuard(name string) {}

func (h *DefaultHooks) OnComment(tok token.Token) bool {
	return h.PassthruComments
}

func joinText(toks []token.Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return strings.TrimSpace(b.String())
}
