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

// pcpp is the thin command-line front-end over package engine (spec.md §6).
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ned14/pcpp/engine"
	"github.com/ned14/pcpp/internal/hooks"
	"github.com/ned14/pcpp/internal/ioenc"
)

var version = "0.1.0"

var (
	outputPath              string
	defineFlags             []string
	undefineFlags           []string
	neverDefineFlags        []string
	includePaths            []string
	passthruDefines         bool
	passthruUnfoundIncludes bool
	passthruUnknownExprs    bool
	passthruComments        bool
	passthruIncludes        string
	disableAutoPragmaOnce   bool
	lineDirective           string
	compressLevel           int
	inputEncodingName       string
	outputEncodingName      string
	debugFlag               bool
	timeFlag                bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.FParseErrWhitelist.UnknownFlags = true
	if err := rootCmd.Execute(); err != nil {
		if exitCode == 0 {
			exitCode = -1
		}
	}
	return exitCode
}

// exitCode carries the process exit code spec.md §6 specifies (the #error
// count, or a large negative number on internal error) out of RunE, which
// Cobra only lets return an error.
var exitCode int

// warnUnknownFlags implements spec.md §6's "unknown flags: warn and
// continue" — Cobra/pflag's FParseErrWhitelist.UnknownFlags lets parsing
// succeed, but silently drops what it didn't recognize, so the flags
// package doesn't surface them; we print one warning per unrecognized
// "--name" style argument ourselves.
func warnUnknownFlags(args []string, errOut io.Writer) {
	known := knownLongFlagNames()
	for _, a := range args {
		if !strings.HasPrefix(a, "--") {
			continue
		}
		name := strings.TrimPrefix(a, "--")
		if idx := strings.Index(name, "="); idx >= 0 {
			name = name[:idx]
		}
		if !known[name] {
			fmt.Fprintf(errOut, "pcpp: warning: unknown flag --%s, ignored\n", name)
		}
	}
}

func knownLongFlagNames() map[string]bool {
	return map[string]bool{
		"output": true, "define": true, "undefine": true, "never-define": true,
		"include": true, "passthru-defines": true, "passthru-unfound-includes": true,
		"passthru-unknown-exprs": true, "passthru-comments": true, "passthru-includes": true,
		"disable-auto-pragma-once": true, "line-directive": true, "compress": true,
		"assume-input-encoding": true, "output-encoding": true, "debug": true, "time": true,
		"version": true, "help": true,
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pcpp [files...]",
		Short:         "pcpp is a standards-conforming C99/C11 preprocessor",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.Flags()
	flags.StringVarP(&outputPath, "output", "o", "", "output path (default stdout)")
	flags.StringArrayVarP(&defineFlags, "define", "D", nil, "predefine macro NAME[=VAL]")
	flags.StringArrayVarP(&undefineFlags, "undefine", "U", nil, "pre-undefine macro NAME")
	flags.StringArrayVarP(&neverDefineFlags, "never-define", "N", nil, "never-define: pass #define/#undef of NAME through unexecuted")
	flags.StringArrayVarP(&includePaths, "include", "I", nil, "append user include path")
	flags.BoolVar(&passthruDefines, "passthru-defines", false, "emit #define/#undef verbatim even when executed")
	flags.BoolVar(&passthruUnfoundIncludes, "passthru-unfound-includes", false, "emit #include verbatim if the file cannot be found")
	flags.BoolVar(&passthruUnknownExprs, "passthru-unknown-exprs", false, "treat unknown identifiers in #if as partial rather than 0")
	flags.BoolVar(&passthruComments, "passthru-comments", false, "keep comments in the output")
	flags.StringVar(&passthruIncludes, "passthru-includes", "", "emit #include verbatim (and process it) for paths matching REGEX")
	flags.BoolVar(&disableAutoPragmaOnce, "disable-auto-pragma-once", false, "disable automatic include-guard detection")
	flags.StringVar(&lineDirective, "line-directive", "#line", "line-marker prefix; pass with no value to disable")
	flags.Lookup("line-directive").NoOptDefVal = ""
	flags.IntVar(&compressLevel, "compress", 0, "whitespace-aggression level (0, 1, 2)")
	flags.StringVar(&inputEncodingName, "assume-input-encoding", "", "input character encoding (default UTF-8)")
	flags.StringVar(&outputEncodingName, "output-encoding", "", "output character encoding (default UTF-8)")
	flags.BoolVar(&debugFlag, "debug", false, "set the logger's debug level; no trace file is written")
	flags.BoolVar(&timeFlag, "time", false, "emit a timing summary")

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		warnUnknownFlags(os.Args[1:], errOut)
		n, err := preprocessAll(args, errOut)
		exitCode = n
		return err
	}
	return rootCmd
}

// preprocessAll runs the preprocessing pipeline over the positional input
// files and returns the process exit code spec.md §6 specifies alongside any
// error Cobra should report.
func preprocessAll(args []string, errOut io.Writer) (int, error) {
	paths := args
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	cfg, err := buildConfig(errOut)
	if err != nil {
		return -1000000, err
	}

	results := make([][]byte, len(paths))
	errs := make([]error, len(paths))
	returnCodes := make([]int, len(paths))

	g, ctx := errgroup.WithContext(context.Background())
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			e := engine.NewEngine(cfg)
			out, err := e.Preprocess(ctx, p)
			if err != nil {
				errs[i] = err
				returnCodes[i] = e.ReturnCode()
				return nil
			}
			data, err := io.ReadAll(out)
			results[i] = data
			errs[i] = err
			returnCodes[i] = e.ReturnCode()
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	var internalErr error
	for i := range paths {
		total += returnCodes[i]
		if errs[i] != nil && internalErr == nil {
			internalErr = errs[i]
		}
	}
	if internalErr != nil {
		fmt.Fprintf(errOut, "pcpp: %v\n", internalErr)
		return -1000000, nil
	}

	sink, closeSink, err := openOutputSink()
	if err != nil {
		fmt.Fprintf(errOut, "pcpp: %v\n", err)
		return -1000000, nil
	}
	defer closeSink()

	for _, data := range results {
		if _, err := sink.Write(data); err != nil {
			fmt.Fprintf(errOut, "pcpp: %v\n", err)
			return -1000000, nil
		}
	}
	return total, nil
}

func openOutputSink() (io.Writer, func(), error) {
	if outputPath == "" || outputPath == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// buildConfig assembles engine.Config from the parsed flags.
func buildConfig(errOut io.Writer) (engine.Config, error) {
	var defines []engine.Define
	for _, d := range defineFlags {
		name, val := d, ""
		if idx := strings.IndexAny(d, "="); idx >= 0 {
			name, val = d[:idx], d[idx+1:]
		}
		defines = append(defines, engine.Define{Name: name, Val: val})
	}

	cfg := engine.Config{
		Defines:                 defines,
		Undefines:               undefineFlags,
		NeverDefine:             neverDefineFlags,
		IncludePaths:            includePaths,
		PassthruDefines:         passthruDefines,
		PassthruUnfoundIncludes: passthruUnfoundIncludes,
		PassthruUnknownExprs:    passthruUnknownExprs,
		PassthruComments:        passthruComments,
		PassthruIncludes:        passthruIncludes,
		DisableAutoPragmaOnce:   disableAutoPragmaOnce,
		LineDirectivePrefix:     lineDirective,
		HaveLineDirectivePrefix: true,
		Compress:                compressLevel,
		Debug:                   debugFlag,
		Time:                    timeFlag,
		Stderr:                  errOut,
		Hooks:                   &hooks.DefaultHooks{Stderr: errOut, PassthruComments: passthruComments},
	}

	if inputEncodingName != "" {
		enc, err := ioenc.Lookup(inputEncodingName)
		if err != nil {
			return cfg, err
		}
		cfg.InputEncoding = enc
	}
	if outputEncodingName != "" {
		enc, err := ioenc.Lookup(outputEncodingName)
		if err != nil {
			return cfg, err
		}
		cfg.OutputEncoding = enc
	}
	return cfg, nil
}
