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

package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeFixture lays out a minimal workspace with a passthrough bootstrap
// package (so Build's unconditional bootstrap build succeeds) and one
// bling package at pkgDir/pkgDir.bling, returning the workspace root.
func writeFixture(t *testing.T, pkgName, src string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "bootstrap"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "bootstrap", "bootstrap.c"), []byte("void noop(void) {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "bootstrap", "bootstrap.h"), []byte("void noop(void);\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	pkgDir := filepath.Join(root, pkgName)
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, pkgName+".bling"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

// stubOptions returns Options pointed at /usr/bin/true for both the
// compiler and archiver, so Build exercises the whole check/emit/genObj
// pipeline without requiring a real C toolchain or producing real
// artifacts on disk.
func stubOptions(root string) Options {
	return Options{
		Root:    root,
		CCPath:  "true",
		ARPath:  "true",
		GenPath: filepath.Join(root, "gen"),
	}
}

// TestBuildHelloWorld is end-to-end scenario 1 of section 8 exercised
// through the build driver: compiling a "main" package emits a header and
// body whose body contains int main() and the print("hi") call.
func TestBuildHelloWorld(t *testing.T) {
	root := writeFixture(t, "main", `package (main);
func main() int {
	print("hi");
	return 0;
}`)
	b := New(stubOptions(root))
	built, err := b.Build("main")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built != 2 {
		t.Errorf("built = %d, want 2 (bootstrap + main)", built)
	}

	body, err := os.ReadFile(filepath.Join(root, "gen", "main", "main.c"))
	if err != nil {
		t.Fatalf("reading generated body: %v", err)
	}
	if !strings.Contains(string(body), "int main()") {
		t.Errorf("generated body %q does not contain %q", body, "int main()")
	}
	if !strings.Contains(string(body), `print("hi")`) {
		t.Errorf("generated body %q does not contain %q", body, `print("hi")`)
	}

	header, err := os.ReadFile(filepath.Join(root, "gen", "main", "main.h"))
	if err != nil {
		t.Fatalf("reading generated header: %v", err)
	}
	if !strings.Contains(string(header), "#pragma once") {
		t.Errorf("generated header %q does not contain %q", header, "#pragma once")
	}
}

// TestBuildCheckErrorPropagates checks that a checker failure (here, an
// unresolved identifier) surfaces as a returned error rather than a panic
// escaping Build, matching the error-handling boundary documented in the
// package comment.
func TestBuildCheckErrorPropagates(t *testing.T) {
	root := writeFixture(t, "broken", `package (broken);
func f() int {
	return x;
}`)
	b := New(stubOptions(root))
	if _, err := b.Build("broken"); err == nil {
		t.Fatal("expected an error for an unresolved identifier")
	}
}

// TestBuildAllAggregatesFailures checks that BuildAll keeps going after one
// path fails and reports every failure via multierr rather than stopping
// at the first.
func TestBuildAllAggregatesFailures(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "bootstrap"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "bootstrap", "bootstrap.c"), []byte("void noop(void) {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"good", "bad"} {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "good", "good.bling"), []byte(`package (good);
func f() int {
	return 0;
}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "bad", "bad.bling"), []byte(`package (bad);
func f() int {
	return y;
}`), 0o644); err != nil {
		t.Fatal(err)
	}

	b := New(stubOptions(root))
	_, err := b.BuildAll([]string{"good", "bad"})
	if err == nil {
		t.Fatal("expected BuildAll to report the bad package's failure")
	}

	pkgs := b.Packages()
	var sawGood bool
	for _, p := range pkgs {
		if p.Path == "good" {
			sawGood = true
		}
	}
	if !sawGood {
		t.Error("good package should still have built despite bad's failure")
	}
}

func TestNeedsRebuild(t *testing.T) {
	now := time.Now()
	older := now.Add(-time.Hour)
	cases := []struct {
		name   string
		force  bool
		src    time.Time
		lib    time.Time
		rebuld bool
	}{
		{"forced", true, older, now, true},
		{"src newer than lib", false, now, older, true},
		{"lib newer than src", false, older, now, false},
		{"never built", false, now, time.Time{}, true},
	}
	for _, c := range cases {
		p := &pkg{srcModTime: c.src, libModTime: c.lib}
		if got := needsRebuild(c.force, p); got != c.rebuld {
			t.Errorf("%s: needsRebuild = %v, want %v", c.name, got, c.rebuld)
		}
	}
}

func TestModTimeMissingFile(t *testing.T) {
	if got := modTime(filepath.Join(t.TempDir(), "does-not-exist")); !got.IsZero() {
		t.Errorf("modTime(missing) = %v, want zero", got)
	}
}

func TestSrcModTimeNewestWins(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-time.Hour)
	for i, name := range []string{"a.bling", "b.bling"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		mt := old
		if i == 1 {
			mt = time.Now()
		}
		if err := os.Chtimes(path, mt, mt); err != nil {
			t.Fatal(err)
		}
	}
	// A non-.bling file should be ignored even with a newer mtime.
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(other, future, future); err != nil {
		t.Fatal(err)
	}

	got := srcModTime(dir)
	if got.Before(time.Now().Add(-time.Minute)) {
		t.Errorf("srcModTime = %v, want close to now (from b.bling, not notes.txt)", got)
	}
}
