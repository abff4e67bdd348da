// Package main provides the CLI entry point for umlab, the Universal Machine
// test fixture generator.
//
// Usage:
//
//	umlab write                    # Write every built-in scenario to .
//	umlab write -d tests add halt  # Write selected scenarios to tests/
//	umlab list -catalog extra.csv  # Show built-in and catalog scenarios
//	umlab asm prog.uma             # Assemble text to prog.um
//	umlab disasm prog.um           # Disassemble a .um program
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/akhildatla/umlab/pkg/assembler"
	"github.com/akhildatla/umlab/pkg/catalog"
	"github.com/akhildatla/umlab/pkg/fixture"
	"github.com/akhildatla/umlab/pkg/repl"
	"github.com/akhildatla/umlab/pkg/scenario"
	"github.com/akhildatla/umlab/pkg/um"
)

// Version info set by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var errNoScenarios = errors.New("no scenarios selected: use -catalog or leave -builtin on")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		return printUsage(stdout)
	}

	cmd := args[0]

	switch cmd {
	case "write":
		return writeCommand(args[1:], stdout, stderr)
	case "list":
		return listCommand(args[1:], stdout, stderr)
	case "asm":
		return asmCommand(args[1:], stdout, stderr)
	case "disasm":
		return disasmCommand(args[1:], stdout, stderr)
	case "repl":
		return replCommand(args[1:], stdin, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "umlab version %s\n", version)
		if commit != "none" {
			fmt.Fprintf(stdout, "  commit: %s\n", commit)
		}
		if date != "unknown" {
			fmt.Fprintf(stdout, "  built:  %s\n", date)
		}
		return nil
	case "help", "-h", "--help":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parseArgs parses flags that may appear before or after positional
// arguments and returns the positional ones. Everything after "--" is
// positional.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if n := len(args) - len(rest); n > 0 && args[n-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// loadRegistry combines the built-in scenarios with those of an optional catalog.
func loadRegistry(catalogPath string, builtin bool) (*scenario.Registry, error) {
	var scs []scenario.Scenario
	if builtin {
		scs = append(scs, scenario.BuiltinScenarios()...)
	}
	if catalogPath != "" {
		loaded, err := catalog.Load(catalogPath)
		if err != nil {
			return nil, err
		}
		scs = append(scs, loaded...)
	}
	if len(scs) == 0 {
		return nil, errNoScenarios
	}
	return scenario.NewRegistry(scs...)
}

func writeCommand(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("write", stderr)
	dir := fs.String("d", ".", "output directory")
	catalogPath := fs.String("catalog", "", "scenario catalog (.csv, .json or .parquet)")
	builtin := fs.Bool("builtin", true, "include the built-in scenarios")
	manifest := fs.String("manifest", "", "write a run manifest (.csv, .json or .parquet)")
	quiet := fs.Bool("q", false, "do not print progress")

	names, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	reg, err := loadRegistry(*catalogPath, *builtin)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	w := &fixture.Writer{Dir: *dir, Out: stdout, Errs: stderr}
	if *quiet {
		w.Out = nil
	}

	results, runErr := w.Run(reg, names...)

	if *manifest != "" {
		if err := fixture.WriteManifest(*manifest, results); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
	}

	if runErr == nil {
		return nil
	}

	failed := 0
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		failed++
		if !errors.Is(r.Err, fixture.ErrUnknownScenario) {
			color.New(color.FgRed).Fprintf(stderr, "***** %v\n", r.Err)
		}
	}
	return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
}

func listCommand(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("list", stderr)
	catalogPath := fs.String("catalog", "", "scenario catalog (.csv, .json or .parquet)")
	builtin := fs.Bool("builtin", true, "include the built-in scenarios")

	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := loadRegistry(*catalogPath, *builtin)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Name", "Words", "Input", "Expected Output"})
	table.SetAutoWrapText(false)
	for _, sc := range reg.All() {
		words := "error"
		if s, err := sc.Program(); err == nil {
			words = strconv.Itoa(s.Len())
		}
		table.Append([]string{sc.Name, words, preview(sc.Input), preview(sc.Output)})
	}
	table.Render()
	return nil
}

// preview quotes text for a table cell, shortening long values.
func preview(text string) string {
	const limit = 24
	if text == "" {
		return "-"
	}
	if len(text) > limit {
		return strconv.Quote(text[:limit]) + "..."
	}
	return strconv.Quote(text)
}

func asmCommand(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("asm", stderr)
	output := fs.String("o", "", "output file (default: input with .um extension)")
	verbose := fs.Bool("v", false, "print the disassembly")

	files, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	if len(files) != 1 {
		return fmt.Errorf("usage: umlab asm <file.uma> [-o output.um]")
	}

	inputPath := files[0]
	outputPath := *output

	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		outputPath = strings.TrimSuffix(inputPath, ext) + fixture.ProgramExt
	}

	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	program, err := assembler.Assemble(string(source))
	if err != nil {
		return fmt.Errorf("assembling %s: %w", inputPath, err)
	}

	data, err := um.MarshalProgram(program)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("writing program: %w", err)
	}

	if *verbose {
		fmt.Fprint(stdout, um.Disassemble(program))
		fmt.Fprintf(stdout, "Output: %s (%d bytes)\n", outputPath, len(data))
	} else {
		fmt.Fprintf(stdout, "Assembled: %s\n", outputPath)
	}

	return nil
}

func disasmCommand(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("disasm", stderr)
	output := fs.String("o", "", "output file (default: stdout)")

	files, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	if len(files) != 1 {
		return fmt.Errorf("usage: umlab disasm <file.um> [-o output.txt]")
	}

	path := files[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}

	program, err := um.UnmarshalProgram(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	listing := um.Disassemble(program)

	if *output != "" {
		if err := os.WriteFile(*output, []byte(listing), 0644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Fprintf(stdout, "Disassembled to: %s\n", *output)
	} else {
		fmt.Fprint(stdout, listing)
	}

	return nil
}

func replCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("repl", stderr)

	if err := fs.Parse(args); err != nil {
		return err
	}

	r := repl.New()
	r.Start(stdin, stdout)
	return nil
}

func printUsage(out io.Writer) error {
	fmt.Fprintln(out, `umlab - Universal Machine unit test generator

Usage:
  umlab <command> [arguments]

Commands:
  write [names...]      Write <name>.um, <name>.0 and <name>.1 for each scenario
  list                  List the available scenarios
  asm <file.uma>        Assemble a text program to a .um binary
  disasm <file.um>      Disassemble a .um binary
  repl                  Start interactive assembler
  version               Print version information
  help                  Show this help message

Write Options:
  -d <dir>              Output directory (default: .)
  -catalog <file>       Add scenarios from a .csv, .json or .parquet catalog
  -builtin=false        Leave out the built-in scenarios
  -manifest <file>      Write a .csv, .json or .parquet manifest of the run
  -q                    Do not print progress

List Options:
  -catalog <file>       Add scenarios from a catalog
  -builtin=false        Leave out the built-in scenarios

Asm Options:
  -o <file>             Output file (default: input with .um extension)
  -v                    Print the disassembly

Disasm Options:
  -o <file>             Output file (default: stdout)

Examples:
  umlab write
  umlab write -d tests halt add load_prog
  umlab write -catalog extra.csv -manifest run.csv
  umlab asm -o hello.um hello.uma
  umlab disasm hello.um`)
	return nil
}
