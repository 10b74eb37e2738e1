// Copyright 2018 The CUE Authors
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

package main

import (
	"os"
	"strings"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"foundry.dev/bling/internal/build"
)

// compileFlags holds the compile subcommand's flag values.
type compileFlags struct {
	root    string
	ccPath  string
	arPath  string
	genPath string
	force   bool
	debug   bool
}

func addCompileFlags(flags *pflag.FlagSet, f *compileFlags) {
	flags.StringVar(&f.root, "root", ".", "workspace root that import paths resolve against")
	flags.BoolVar(&f.force, "force", false, "rebuild every package regardless of mtime")
	flags.StringVar(&f.ccPath, "cc", "", "path to the C compiler (default "+build.DefaultCCPath+")")
	flags.StringVar(&f.arPath, "ar", "", "path to the archiver (default "+build.DefaultARPath+")")
	flags.StringVar(&f.genPath, "gen", "", "output tree root (default "+build.DefaultGenPath+")")
	flags.BoolVar(&f.debug, "debug", false, "log at debug level and dump each checked package")
}

func newCompileCmd() *cobra.Command {
	var flags compileFlags
	cmd := &cobra.Command{
		Use:   "compile <path>",
		Short: "build a bling package and its transitive dependencies",
		Long: `compile builds the package at <path> and every package it imports,
transitively, emitting gen/<path>/<base>.h, gen/<path>/<base>.c, and
gen/<path>/<base>.a (or a linked executable in place of the .a when the
package's name is "main"). A package whose generated archive is already
newer than every one of its sources is skipped unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags.debug)
			defer logger.Sync()

			b := build.New(build.Options{
				Root:    flags.root,
				CCPath:  flags.ccPath,
				ARPath:  flags.arPath,
				GenPath: flags.genPath,
				Force:   flags.force,
				Logger:  logger,
			})

			var built int
			err := runRecovered(logger, func() error {
				var buildErr error
				built, buildErr = b.Build(args[0])
				return buildErr
			})
			if flags.debug {
				for _, pkg := range b.Packages() {
					pretty.Fprintf(cmd.OutOrStdout(), "%# v\n", pkg)
				}
			}
			if err != nil {
				return err
			}

			p := message.NewPrinter(getLang())
			p.Fprintf(cmd.OutOrStdout(), "built %d package(s)\n", built)
			return nil
		},
	}
	addCompileFlags(cmd.Flags(), &flags)
	return cmd
}

// getLang reports the locale to format "compile"'s summary line in,
// following LC_ALL/LANG the way CUE's own cmd/cue does.
func getLang() language.Tag {
	loc := os.Getenv("LC_ALL")
	if loc == "" {
		loc = os.Getenv("LANG")
	}
	loc = strings.Split(loc, ".")[0]
	return language.Make(loc)
}
