package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// capture redirects the command streams for the duration of the test.
// Tests using it must not run in parallel.
func capture(t *testing.T, input string) (out, errOut *bytes.Buffer) {
	t.Helper()

	oldOut, oldErr, oldIn := stdout, stderr, stdin
	out, errOut = new(bytes.Buffer), new(bytes.Buffer)
	stdout, stderr, stdin = out, errOut, strings.NewReader(input)

	t.Cleanup(func() { stdout, stderr, stdin = oldOut, oldErr, oldIn })

	return out, errOut
}

// writeFile creates a file named name in dir with the given content.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

// readSources opens paths and returns the name and content of each source.
func readSources(t *testing.T, paths []string) ([]string, []string) {
	t.Helper()

	srcs, err := openSources(paths)
	if err != nil {
		t.Fatalf("openSources(%q): %v", paths, err)
	}
	defer closeSources(srcs)

	var names, contents []string

	for _, src := range srcs {
		data, err := io.ReadAll(src)
		if err != nil {
			t.Fatal(err)
		}

		names = append(names, src.name)
		contents = append(contents, string(data))
	}

	return names, contents
}

func TestOpenSources_EmptyMeansStdin(t *testing.T) {
	capture(t, "from stdin")

	names, contents := readSources(t, nil)

	if diff := cmp.Diff([]string{stdinSource}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"from stdin"}, contents); diff != "" {
		t.Errorf("contents mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenSources_Order(t *testing.T) {
	capture(t, "in")

	dir := t.TempDir()
	a := writeFile(t, dir, "a.hbs", "A")
	b := writeFile(t, dir, "b.hbs", "B")

	names, contents := readSources(t, []string{"-", b, "-", a})

	if diff := cmp.Diff([]string{b, a, stdinSource}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"B", "A", "in"}, contents); diff != "" {
		t.Errorf("contents mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenSources_Duplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.hbs", "A")

	link := filepath.Join(dir, "link.hbs")
	if err := os.Symlink(a, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	rel, err := filepath.Rel(wd, a)
	if err != nil {
		t.Fatal(err)
	}

	names, _ := readSources(t, []string{a, rel, link, a})

	if diff := cmp.Diff([]string{a}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenSources_Nonexistent(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.hbs", "A")

	srcs, err := openSources([]string{a, filepath.Join(dir, "missing.hbs")})
	if !errors.Is(err, ErrOpenSource) {
		t.Fatalf("error = %v, want ErrOpenSource", err)
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped os.ErrNotExist", err)
	}

	if srcs != nil {
		t.Errorf("sources = %v, want nil", srcs)
	}
}
