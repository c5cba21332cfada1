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

// Package plog is a small level-aware wrapper over the standard log
// package, matching the teacher's direct log.Printf/log.Fatalf style
// (language/cpp/config.go, language/internal/cc/parser/expr.go) rather than
// introducing a structured logging dependency the teacher never reaches
// for.
package plog

import (
	"io"
	"log"
	"os"
)

// Logger writes leveled diagnostics to a single underlying *log.Logger.
// Debugf is a no-op unless Debug is enabled, matching --debug's effect of
// raising the level to include trace lines.
type Logger struct {
	l     *log.Logger
	Debug bool
}

// New returns a Logger writing to out (os.Stderr if nil), with no
// timestamp prefix — the CLI owns when and how a line is tagged, matching
// the teacher's bare log.Printf calls.
func New(out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{l: log.New(out, "", 0)}
}

// Warnf logs a warning line.
func (p *Logger) Warnf(format string, args ...any) {
	p.l.Printf("warning: "+format, args...)
}

// Errorf logs an error line. It does not exit the process; callers that
// want fatal behavior on a preprocessing error go through the hook
// surface's ReturnCode instead (spec.md §7), not log.Fatal.
func (p *Logger) Errorf(format string, args ...any) {
	p.l.Printf("error: "+format, args...)
}

// Debugf logs a trace line only when Debug is set.
func (p *Logger) Debugf(format string, args ...any) {
	if !p.Debug {
		return
	}
	p.l.Printf("debug: "+format, args...)
}
