// Package fixture writes UM test fixtures: for every scenario a big-endian
// program file <name>.um, its input <name>.0 and its expected output
// <name>.1. Empty input or output means the file must not exist, so a stale
// one from an earlier run is removed.
package fixture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/akhildatla/umlab/pkg/scenario"
	"github.com/akhildatla/umlab/pkg/um"
)

// File suffixes.
const (
	ProgramExt = ".um"
	InputExt   = ".0"
	OutputExt  = ".1"
)

var ErrUnknownScenario = errors.New("no such scenario")

var (
	writingColor = color.New(color.FgCyan)
	missingColor = color.New(color.FgRed, color.Bold)
)

// Result describes one attempted scenario.
type Result struct {
	Name   string
	Words  int
	Input  bool // <name>.0 written
	Output bool // <name>.1 written
	Err    error
}

// Bytes is the size of the program file.
func (r Result) Bytes() int { return r.Words * um.WordBytes }

// Writer generates fixture files into Dir.
type Writer struct {
	Dir string

	// Out receives "Writing test" lines, Errs receives unknown-name
	// reports. Either may be nil.
	Out  io.Writer
	Errs io.Writer

	// Create opens a file for writing. Defaults to os.Create.
	Create func(path string) (io.WriteCloser, error)
}

// NewWriter returns a Writer for dir that reports to stdout and stderr.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Out: os.Stdout, Errs: os.Stderr}
}

// Path returns the fixture path for name with the given suffix.
func (w *Writer) Path(name, ext string) string {
	return filepath.Join(w.Dir, name+ext)
}

// Run writes the named scenarios in order, or every scenario when names is
// empty. A failing or unknown scenario does not stop the run.
func (w *Writer) Run(reg *scenario.Registry, names ...string) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)

	record := func(r Result) {
		results = append(results, r)
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}

	if len(names) == 0 {
		for _, sc := range reg.All() {
			record(w.WriteScenario(sc))
		}
		return results, errors.Join(errs...)
	}

	for _, name := range names {
		sc, ok := reg.Lookup(name)
		if !ok {
			if w.Errs != nil {
				missingColor.Fprintf(w.Errs, "***** No test named %s *****\n", name)
			}
			record(Result{Name: name, Err: fmt.Errorf("%w: %s", ErrUnknownScenario, name)})
			continue
		}
		record(w.WriteScenario(sc))
	}
	return results, errors.Join(errs...)
}

// WriteScenario builds sc and writes its three fixture files. The program is
// built completely before any file is touched, so an encoding error leaves
// the directory unchanged. If writing <name>.um fails, the partial program and
// any <name>.0 and <name>.1 left by an earlier run are removed.
func (w *Writer) WriteScenario(sc scenario.Scenario) Result {
	res := Result{Name: sc.Name}

	if w.Out != nil {
		writingColor.Fprintf(w.Out, "***** Writing test '%s'.\n", sc.Name)
	}

	s, err := sc.Program()
	if err != nil {
		res.Err = err
		return res
	}

	if err := w.writeProgram(w.Path(sc.Name, ProgramExt), s); err != nil {
		for _, ext := range []string{InputExt, OutputExt} {
			if _, rerr := w.writeOrRemove(w.Path(sc.Name, ext), ""); rerr != nil {
				err = errors.Join(err, rerr)
			}
		}
		res.Err = fmt.Errorf("scenario %s: %w", sc.Name, err)
		return res
	}
	res.Words = s.Len()

	if res.Input, err = w.writeOrRemove(w.Path(sc.Name, InputExt), sc.Input); err != nil {
		res.Err = fmt.Errorf("scenario %s: %w", sc.Name, err)
		return res
	}
	if res.Output, err = w.writeOrRemove(w.Path(sc.Name, OutputExt), sc.Output); err != nil {
		res.Err = fmt.Errorf("scenario %s: %w", sc.Name, err)
		return res
	}
	return res
}

func (w *Writer) create(path string) (io.WriteCloser, error) {
	if w.Create != nil {
		return w.Create(path)
	}
	return os.Create(path)
}

// writeProgram removes the file again if anything goes wrong after creating it.
func (w *Writer) writeProgram(path string, s *um.Stream) (err error) {
	f, err := w.create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	return um.WriteProgram(f, s)
}

// writeOrRemove writes contents to path, or removes path when contents is
// empty. It reports whether the file now exists.
func (w *Writer) writeOrRemove(path, contents string) (bool, error) {
	if contents == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, err
		}
		return false, nil
	}

	f, err := w.create(path)
	if err != nil {
		return false, err
	}
	if _, err := io.WriteString(f, contents); err != nil {
		f.Close()
		return false, err
	}
	if err := f.Close(); err != nil {
		return false, err
	}
	return true, nil
}
