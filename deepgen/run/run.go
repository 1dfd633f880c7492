// Package run implements the main logic for the deepgen tool in a testable way.
package run

import (
	"fmt"
	"go/token"
	"io"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/dave/dst"

	detect "github.com/toejough/deepmock/deepgen/run/3_detect"
	generate "github.com/toejough/deepmock/deepgen/run/5_generate"
	output "github.com/toejough/deepmock/deepgen/run/6_output"
)

// FileSystem reads and writes generated files.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// PackageLoader loads a package's files. "." is the package being generated into.
type PackageLoader interface {
	Load(importPath string) ([]*dst.File, *token.FileSet, error)
}

// Run executes the deepgen tool logic. It takes command-line arguments, an environment variable getter, a FileSystem
// for file operations, a PackageLoader for package operations and a writer for progress output. On success it writes
// (or, with --check, verifies) a Go source file implementing the named interface and every interface reachable from it
// through accessor methods.
func Run(args []string, getEnv func(string) string, fileSys FileSystem, pkgLoader PackageLoader, out io.Writer) error {
	info, err := getGeneratorCallInfo(args, getEnv)
	if err != nil {
		return err
	}

	localFiles, _, err := pkgLoader.Load(".")
	if err != nil {
		return fmt.Errorf("failed to load current package: %w", err)
	}

	opts := generate.Options{PkgName: info.pkgName, Name: info.name}
	files, filterPkg := localFiles, info.pkgName

	if info.pkgAlias != "" {
		opts.SourceAlias = info.pkgAlias

		opts.SourcePath, err = detect.ResolveImport(localFiles, info.pkgAlias, pkgLoader)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", info.interfaceName, err)
		}

		files, _, err = pkgLoader.Load(opts.SourcePath)
		if err != nil {
			return fmt.Errorf("failed to load package %q: %w", opts.SourcePath, err)
		}

		filterPkg = ""
	}

	shape, err := detect.Collect(files, info.localInterfaceName, filterPkg)
	if err != nil {
		return fmt.Errorf("failed to collect %s: %w", info.interfaceName, err)
	}

	if opts.PkgName == "" {
		opts.PkgName = shape.PkgName
	}

	code, err := generate.Code(shape, opts)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", info.interfaceName, err)
	}

	if info.check {
		return output.Check(code, info.name, opts.PkgName, getEnv, fileSys, out) //nolint:wrapcheck // already wrapped
	}

	return output.WriteGeneratedCode(code, info.name, opts.PkgName, getEnv, fileSys, out) //nolint:wrapcheck
}

// cliArgs defines the command-line arguments for the generator.
type cliArgs struct {
	Interface string `arg:"positional,required" help:"interface to implement (e.g. Services or pkg.Services)"`
	Name      string `arg:"--name"              help:"base name of the generated implementation (defaults to <Interface>Deep)"`
	Check     bool   `arg:"--check"             help:"fail if the generated file is missing or out of date instead of writing it"`
}

// generatorInfo holds information gathered for generation.
type generatorInfo struct {
	pkgName, pkgAlias, interfaceName, localInterfaceName, name string
	check                                                      bool
}

// getGeneratorCallInfo returns basic information about the current call to the generator.
func getGeneratorCallInfo(args []string, getEnv func(string) string) (generatorInfo, error) {
	parsed, err := parseArgs(args)
	if err != nil {
		return generatorInfo{}, err
	}

	pkgAlias, localName := detect.SplitQualified(parsed.Interface)

	name := parsed.Name
	if name == "" {
		name = localName + "Deep"
	}

	return generatorInfo{
		pkgName:            getEnv("GOPACKAGE"),
		pkgAlias:           pkgAlias,
		interfaceName:      parsed.Interface,
		localInterfaceName: localName,
		name:               name,
		check:              parsed.Check,
	}, nil
}

// parseArgs parses command-line arguments into cliArgs.
func parseArgs(args []string) (cliArgs, error) {
	var parsed cliArgs

	parser, err := arg.NewParser(arg.Config{Program: "deepgen"}, &parsed)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to create argument parser: %w", err)
	}

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	err = parser.Parse(cmdArgs)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return parsed, nil
}
