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

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"foundry.dev/bling/bling/errors"
)

// newRootCmd builds the blingc command tree. Each subcommand's RunE
// returns an error instead of calling os.Exit itself: Main's single
// cobra.Execute call is the one place a non-zero exit is decided, so
// tests can drive the tree without a child process.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blingc",
		Short:         "compile bling packages to C",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newCompileCmd())
	root.AddCommand(newEmitCmd())
	return root
}

// newLogger builds the zap.Logger shared by the build driver's per-package
// progress lines and the CLI's terminal error line. debug raises the level
// to Debug, additionally surfacing every external cc/ar invocation (see
// internal/build.Builder.run) and, on compile, a pretty-printed dump of
// each checked package.
func newLogger(debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(os.Stderr), level)
	return zap.New(core)
}

// runRecovered runs fn, converting a propagated *errors.Error panic into a
// structured Error-level log line plus a returned error. The scanner,
// parser, and checker already recover their own panics at their public
// entry points (ParseFile, Check), but bling/emitter, bling/cemitter, and
// bling/printer call errors.Bug directly with no local recovery, so this
// is the one remaining boundary that can see a raw panic reach the CLI.
// Any other panic value is re-raised: it is a compiler bug, not a source
// error, and should surface as a real crash with a stack trace rather than
// be swallowed here.
func runRecovered(logger *zap.Logger, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*errors.Error)
			if !ok {
				panic(r)
			}
			logger.Error(e.Error())
			err = e
		}
	}()
	return fn()
}
