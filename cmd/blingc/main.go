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

// Command blingc is the bling compiler's command-line front end: compile
// drives the build package (recursively checking and emitting a package
// and its dependencies, shelling out to a C compiler and archiver); emit
// runs the scan/parse/check/emit pipeline over a single file for quick
// inspection.
package main

import "os"

func main() {
	os.Exit(Main())
}

// Main runs the root command and returns the process exit code: 0 on
// success, 1 on any scan/parse/check/build failure. Every subcommand
// returns an error from RunE rather than calling os.Exit itself, so tests
// can invoke newRootCmd().Execute() directly and inspect the error.
func Main() int {
	if err := newRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}
