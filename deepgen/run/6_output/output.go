// Package output writes generated code, or checks that the written copy is current.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/toejough/go-reorder"
)

// ErrStale is returned by Check when the file on disk differs from freshly
// generated code.
var ErrStale = errors.New("generated file is out of date")

// FileSystem reads and writes generated files.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// Check compares the file that WriteGeneratedCode would write with the one on disk
// and prints a unified diff to out when they differ.
func Check(
	code string, name string, pkgName string, getEnv func(string) string, fileSys FileSystem, out io.Writer,
) error {
	filename := Filename(name, pkgName, getEnv("GOFILE"))
	want := reordered(code, filename, out)

	got, err := fileSys.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStale, err)
	}

	if string(got) == want {
		_, _ = fmt.Fprintf(out, "%s is up to date.\n", filename)

		return nil
	}

	_, _ = fmt.Fprint(out, textdiff.Unified(filename, filename+" (generated)", string(got), want))

	return fmt.Errorf("%w: %s", ErrStale, filename)
}

// Filename returns generated_<name>.go, or generated_<name>_test.go when the
// package is an external test package or the go:generate line is in a test file.
func Filename(name string, pkgName string, goFile string) string {
	base := "generated_" + strings.TrimSuffix(strings.TrimSuffix(name, ".go"), "_test")

	if strings.HasSuffix(pkgName, "_test") || strings.HasSuffix(goFile, "_test.go") {
		return base + "_test.go"
	}

	return base + ".go"
}

// WriteGeneratedCode reorders code and writes it to Filename(name, ...).
func WriteGeneratedCode(
	code string, name string, pkgName string, getEnv func(string) string, fileSys FileSystem, out io.Writer,
) error {
	const generatedFilePermissions = 0o600

	filename := Filename(name, pkgName, getEnv("GOFILE"))

	err := fileSys.WriteFile(filename, []byte(reordered(code, filename, out)), generatedFilePermissions)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", filename, err)
	}

	_, _ = fmt.Fprintf(out, "%s written successfully.\n", filename)

	return nil
}

// reordered sorts code's declarations, falling back to code as is.
func reordered(code string, filename string, out io.Writer) (result string) {
	warn := func(reason any) {
		_, _ = fmt.Fprintf(out, "Warning: failed to reorder %s: %v\n", filename, reason)
		result = code
	}

	// reorder.Source panics inside the decorator on some input it cannot parse.
	defer func() {
		if r := recover(); r != nil {
			warn(r)
		}
	}()

	sorted, err := reorder.Source(code)
	if err != nil {
		warn(err)

		return code
	}

	return sorted
}
