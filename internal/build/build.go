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

// Package build drives a compile from a package path on disk through to
// linked or archived output: it walks package directories, parses and
// type-checks them (recursively following imports), emits C, shells out to
// a C compiler and archiver, and skips any package whose output is already
// newer than its sources.
//
// It is the one package in this module that touches the filesystem or
// spawns subprocesses; bling/scanner, bling/parser, bling/types and
// bling/cemitter only ever consume in-memory arguments and panic through
// *errors.Error on failure, per the core compiler's fail-fast model. This
// package instead returns ordinary errors, the way CUE's own build/driver
// layer wraps its panicking core passes for a caller that needs to report
// multiple independent failures (see BuildAll) rather than crash on the
// first one.
package build

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"foundry.dev/bling/bling/ast"
	"foundry.dev/bling/bling/cemitter"
	"foundry.dev/bling/bling/emitter"
	"foundry.dev/bling/bling/errors"
	"foundry.dev/bling/bling/parser"
	"foundry.dev/bling/bling/token"
	"foundry.dev/bling/bling/types"
)

// Tool paths, matching the source compiler's build driver. Overridable
// through Options for a hermetic test environment or a cross-compiling
// toolchain.
const (
	DefaultCCPath  = "/usr/bin/cc"
	DefaultARPath  = "/usr/bin/ar"
	DefaultGenPath = "gen"
)

// ccFlags are the fixed positional flags the source compiler always passes
// to cc when compiling a single translation unit, verbatim.
var ccFlags = []string{"-fms-extensions", "-Wno-microsoft-anon-tag", "-g", "-I", "."}

// passthroughPackages compile directly from their own *.c/*.h sources with
// no bling front-end involvement: the small hand-written C runtime bling
// programs link against.
var passthroughPackages = map[string]bool{
	"bootstrap": true,
	"os":        true,
	"sys":       true,
}

// Options configures a Builder.
type Options struct {
	// Root is the filesystem directory that import paths are resolved
	// relative to (the workspace root containing both source package
	// directories and the generated gen/ tree).
	Root string

	// CCPath and ARPath locate the external compiler and archiver.
	CCPath, ARPath string

	// GenPath is the output tree root, "gen" by default.
	GenPath string

	// Force rebuilds every package regardless of mtime comparison.
	Force bool

	// Logger receives one Info line per package considered and one Debug
	// line per external command executed. A nil Logger uses zap.NewNop().
	Logger *zap.Logger
}

func (o *Options) ccPath() string {
	if o.CCPath != "" {
		return o.CCPath
	}
	return DefaultCCPath
}

func (o *Options) arPath() string {
	if o.ARPath != "" {
		return o.ARPath
	}
	return DefaultARPath
}

func (o *Options) genPath() string {
	if o.GenPath != "" {
		return o.GenPath
	}
	return DefaultGenPath
}

func (o *Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// pkg tracks one resolved package's build state, mirroring the source
// compiler's Package struct in bling/build/build.c: its checked types.Package,
// the generated artifact paths, its dependency set, and the mtimes used to
// decide whether it needs rebuilding.
type pkg struct {
	path string
	tp   *types.Package

	hPath, cPath, objPath, libPath string
	isCmd                          bool

	deps []*pkg

	libModTime time.Time
	srcModTime time.Time

	// rebuilt is true when this build actually recompiled the package
	// (as opposed to short-circuiting on a fresh archive).
	rebuilt bool
}

// Builder threads the shared FileSet and import registry through a
// recursive build the same way the source compiler's Builder does, plus a
// memo of already-built packages so a diamond dependency is only compiled
// once.
type Builder struct {
	opts Options
	fset *token.FileSet
	info *types.Info
	pkgs map[string]*pkg
}

// New returns a Builder ready to build packages under opts.Root.
func New(opts Options) *Builder {
	return &Builder{
		opts: opts,
		fset: token.NewFileSet(),
		info: types.NewInfo(),
		pkgs: make(map[string]*pkg),
	}
}

// Build compiles the package at path and every transitive dependency,
// producing gen/<path>/<base>.{h,c,o,a} (or a linked executable in place
// of the .a when the package's name is "main"), and returns the number of
// packages it actually rebuilt (as opposed to short-circuited by mtime).
func (b *Builder) Build(path string) (built int, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*errors.Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	// Count only packages rebuilt by this call; a package memoized from an
	// earlier Build on the same Builder must not be counted again.
	for _, p := range b.pkgs {
		p.rebuilt = false
	}
	if _, ok := b.pkgs["bootstrap"]; !ok {
		if _, buildErr := b.build("bootstrap"); buildErr != nil {
			return 0, buildErr
		}
	}
	if _, buildErr := b.build(path); buildErr != nil {
		return 0, buildErr
	}
	for _, p := range b.pkgs {
		if p.rebuilt {
			built++
		}
	}
	return built, nil
}

// load implements types.Loader: it reads every *.bling file under the
// package directory for path and parses them all against one shared
// *ast.Scope, satisfying the multi-file Package invariant section 3 of
// SPEC_FULL.md requires.
func (b *Builder) load(path string) ([]*ast.File, error) {
	dir := filepath.Join(b.opts.Root, path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("build: reading %s: %w", dir, err)
	}
	pkgScope := ast.NewScope(types.Universe())
	pkgScope.Pkg = filepath.Base(path)
	var files []*ast.File
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".bling") {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		src, readErr := os.ReadFile(full)
		if readErr != nil {
			return nil, fmt.Errorf("build: reading %s: %w", full, readErr)
		}
		f, parseErr := parser.ParseFile(b.fset, full, src, pkgScope)
		if parseErr != nil {
			return nil, parseErr
		}
		files = append(files, f)
	}
	return files, nil
}

func (b *Builder) build(path string) (*pkg, error) {
	if p, ok := b.pkgs[path]; ok {
		return p, nil
	}
	b.opts.logger().Info("building", zap.String("path", path))
	var p *pkg
	var err error
	if passthroughPackages[path] {
		p, err = b.buildCPackage(path)
	} else {
		p, err = b.buildBlingPackage(path)
	}
	if err != nil {
		return nil, err
	}
	b.pkgs[path] = p
	return p, nil
}

// newPkg checks path (loading its own files and recursively building every
// import) and fills in every artifact path and dependency mtime, matching
// build.c's newPackage.
func (b *Builder) newPkg(path string) (*pkg, error) {
	files, err := b.load(path)
	if err != nil {
		return nil, err
	}
	tp, checkErr := types.Check(&types.Config{}, path, b.fset, files, b.info, b.load)
	if checkErr != nil {
		return nil, checkErr
	}
	base := filepath.Base(path)
	genDir := filepath.Join(b.opts.genPath(), path)
	isCmd := tp.Name == "main"
	libPath := filepath.Join(genDir, base+".a")
	if isCmd {
		libPath = filepath.Join(genDir, base)
	}
	p := &pkg{
		path:       path,
		tp:         tp,
		hPath:      filepath.Join(genDir, base+".h"),
		cPath:      filepath.Join(genDir, base+".c"),
		objPath:    filepath.Join(genDir, base+".o"),
		libPath:    libPath,
		isCmd:      isCmd,
		libModTime: modTime(libPath),
		srcModTime: srcModTime(filepath.Join(b.opts.Root, path)),
	}
	for _, dep := range tp.Imports {
		depPkg, buildErr := b.build(dep.Path)
		if buildErr != nil {
			return nil, buildErr
		}
		p.deps = append(p.deps, depPkg)
		if p.srcModTime.Before(depPkg.srcModTime) {
			p.srcModTime = depPkg.srcModTime
		}
	}
	return p, nil
}

// modTime returns path's modification time, or the zero Time if it does
// not exist.
func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// srcModTime is the newest modification time among dir's *.bling files,
// used to decide whether a package's archive is stale.
func srcModTime(dir string) time.Time {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}
	}
	var newest time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".bling") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest
}

func needsRebuild(force bool, p *pkg) bool {
	return force || p.srcModTime.After(p.libModTime)
}

// genHeader writes pkg's generated header: a #pragma once guard, the
// bootstrap runtime header passthrough, one #include per direct
// dependency's header, then every typedef and function prototype the
// emitter produces, matching build.c's genHeader.
func (b *Builder) genHeader(p *pkg) error {
	var e emitter.Emitter
	e.EmitString("#pragma once\n")
	if raw, err := os.ReadFile(filepath.Join(b.opts.Root, "bootstrap", "bootstrap.h")); err == nil {
		e.EmitString(string(raw))
	}
	for _, dep := range p.deps {
		e.EmitString(fmt.Sprintf("#include %q\n", dep.hPath))
	}
	cemitter.EmitHeader(&e, p.tp)
	return writeFile(p.hPath, e.String())
}

// genBody writes pkg's generated C body: an #include of its own header
// followed by every function definition and package-level initializer,
// matching build.c's getCFile.
func (b *Builder) genBody(p *pkg) error {
	var e emitter.Emitter
	e.EmitString(fmt.Sprintf("#include %q\n", p.hPath))
	cemitter.EmitBody(&e, p.tp)
	return writeFile(p.cPath, e.String())
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("build: mkdir for %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// buildBlingPackage builds a package with .bling sources: check, emit
// header+body, compile to an object file, then archive (or link, for a
// main package) against its dependencies.
func (b *Builder) buildBlingPackage(path string) (*pkg, error) {
	p, err := b.newPkg(path)
	if err != nil {
		return nil, err
	}
	if !needsRebuild(b.opts.Force, p) {
		return p, nil
	}
	p.rebuilt = true
	if err := b.genHeader(p); err != nil {
		return nil, err
	}
	if err := b.genBody(p); err != nil {
		return nil, err
	}
	if err := b.genObj(p.objPath, p.cPath); err != nil {
		return nil, err
	}
	if p.isCmd {
		args := append([]string{"-o", p.libPath, p.objPath}, depLibs(p)...)
		if err := b.run(b.opts.ccPath(), args...); err != nil {
			return nil, err
		}
	} else {
		if err := b.run(b.opts.arPath(), "rsc", p.libPath, p.objPath); err != nil {
			return nil, err
		}
	}
	p.libModTime = modTime(p.libPath)
	return p, nil
}

// buildCPackage builds a passthrough C package (bootstrap/os/sys): no
// bling sources, so there is nothing to check or emit, only every *.c file
// in the directory to compile and archive. Multiple C files in the same
// package compile concurrently via an errgroup, since the external cc
// invocations are independent of one another and of the single-threaded
// compiler core (section 5 of SPEC_FULL.md only requires scan/parse/check
// to stay sequential).
func (b *Builder) buildCPackage(path string) (*pkg, error) {
	dir := filepath.Join(b.opts.Root, path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("build: reading %s: %w", dir, err)
	}
	base := filepath.Base(path)
	genDir := filepath.Join(b.opts.genPath(), path)
	libPath := filepath.Join(genDir, base+".a")
	p := &pkg{
		path:       path,
		hPath:      filepath.Join(genDir, base+".h"),
		libPath:    libPath,
		isCmd:      false,
		libModTime: modTime(libPath),
		srcModTime: srcModTime(dir),
	}

	var cFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".c") {
			cFiles = append(cFiles, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(cFiles)
	// srcModTime only sees *.bling files; a passthrough package's sources
	// are its *.c files.
	for _, src := range cFiles {
		if mt := modTime(src); mt.After(p.srcModTime) {
			p.srcModTime = mt
		}
	}

	if !needsRebuild(b.opts.Force, p) {
		return p, nil
	}
	p.rebuilt = true

	objPaths := make([]string, len(cFiles))
	g, _ := errgroup.WithContext(context.Background())
	for i, src := range cFiles {
		i, src := i, src
		g.Go(func() error {
			base := strings.TrimSuffix(filepath.Base(src), ".c")
			obj := filepath.Join(genDir, base+".o")
			if err := b.genObj(obj, src); err != nil {
				return err
			}
			objPaths[i] = obj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	args := append([]string{"rsc", p.libPath}, objPaths...)
	if err := b.run(b.opts.arPath(), args...); err != nil {
		return nil, err
	}
	p.libModTime = modTime(p.libPath)
	return p, nil
}

func depLibs(p *pkg) []string {
	libs := make([]string, len(p.deps))
	for i, dep := range p.deps {
		libs[i] = dep.libPath
	}
	return libs
}

// genObj invokes the C compiler with the source package's fixed flags,
// matching build.c's genObj.
func (b *Builder) genObj(dst, src string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("build: mkdir for %s: %w", dst, err)
	}
	args := append(append([]string{}, ccFlags...), "-c", "-o", dst, src)
	return b.run(b.opts.ccPath(), args...)
}

// run executes name with args, logging the invocation at debug level and
// returning the process's combined stdout and stderr alongside any
// non-zero exit.
func (b *Builder) run(name string, args ...string) error {
	b.opts.logger().Debug("exec", zap.String("cmd", name), zap.Strings("args", args))
	cmd := exec.Command(name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w\n%s", name, strings.Join(args, " "), err, out)
	}
	return nil
}

// BuildAll builds every path independently, aggregating every failure
// (rather than stopping at the first) with go.uber.org/multierr so a
// caller asked to build several unrelated roots in one invocation gets a
// complete picture of what failed.
func (b *Builder) BuildAll(paths []string) (built int, err error) {
	var total int
	for _, path := range paths {
		n, buildErr := b.Build(path)
		total += n
		err = multierr.Append(err, buildErr)
	}
	return total, err
}

// Packages returns the checked types.Package for every bling package built
// so far, ordered by import path, for a caller that wants to inspect the
// resolved tree (e.g. "blingc compile --debug"). Passthrough C packages
// (bootstrap/os/sys) have no types.Package and are omitted.
func (b *Builder) Packages() []*types.Package {
	paths := make([]string, 0, len(b.pkgs))
	for path := range b.pkgs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	out := make([]*types.Package, 0, len(paths))
	for _, path := range paths {
		if tp := b.pkgs[path].tp; tp != nil {
			out = append(out, tp)
		}
	}
	return out
}
