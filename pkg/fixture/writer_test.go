package fixture

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/akhildatla/umlab/internal/testutil"
	"github.com/akhildatla/umlab/pkg/bitpack"
	"github.com/akhildatla/umlab/pkg/scenario"
	"github.com/akhildatla/umlab/pkg/um"
)

func printB(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 'B'))
	s.Emit(um.Output(um.R1))
	s.Emit(um.Halt())
}

func newWriter(t *testing.T) (*Writer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errs bytes.Buffer
	return &Writer{Dir: t.TempDir(), Out: &out, Errs: &errs}, &out, &errs
}

func mustRegistry(t *testing.T, scs ...scenario.Scenario) *scenario.Registry {
	t.Helper()
	reg, err := scenario.NewRegistry(scs...)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return reg
}

func TestWriteScenario_Files(t *testing.T) {
	w, out, _ := newWriter(t)

	res := w.WriteScenario(scenario.Scenario{Name: "print-b", Output: "B", Build: printB})
	if res.Err != nil {
		t.Fatalf("WriteScenario failed: %v", res.Err)
	}

	want := Result{Name: "print-b", Words: 3, Input: false, Output: true}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if res.Bytes() != 12 {
		t.Errorf("expected 12 bytes, got %d", res.Bytes())
	}

	prog := testutil.ReadFile(t, w.Path("print-b", ProgramExt))
	wantProg := []byte{
		0xD2, 0x00, 0x00, 0x42,
		0xA0, 0x00, 0x00, 0x01,
		0x70, 0x00, 0x00, 0x00,
	}
	if !bytes.Equal(prog, wantProg) {
		t.Errorf("program bytes = % x, want % x", prog, wantProg)
	}

	if got := string(testutil.ReadFile(t, w.Path("print-b", OutputExt))); got != "B" {
		t.Errorf("expected output file %q, got %q", "B", got)
	}
	testutil.AssertMissing(t, w.Path("print-b", InputExt))

	if !strings.Contains(out.String(), "***** Writing test 'print-b'.") {
		t.Errorf("expected progress line, got %q", out.String())
	}
}

func TestWriteScenario_InputVerbatim(t *testing.T) {
	w, _, _ := newWriter(t)

	input := "line one\n\x00line two"
	res := w.WriteScenario(scenario.Scenario{Name: "in", Input: input, Build: printB})
	if res.Err != nil {
		t.Fatalf("WriteScenario failed: %v", res.Err)
	}
	if !res.Input || res.Output {
		t.Errorf("expected only input written, got %+v", res)
	}
	if got := string(testutil.ReadFile(t, w.Path("in", InputExt))); got != input {
		t.Errorf("expected input %q, got %q", input, got)
	}
}

func TestWriteScenario_RemovesStaleFiles(t *testing.T) {
	w, _, _ := newWriter(t)

	for _, ext := range []string{InputExt, OutputExt} {
		if err := os.WriteFile(w.Path("stale", ext), []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	res := w.WriteScenario(scenario.Scenario{Name: "stale", Build: printB})
	if res.Err != nil {
		t.Fatalf("WriteScenario failed: %v", res.Err)
	}
	testutil.AssertMissing(t, w.Path("stale", InputExt))
	testutil.AssertMissing(t, w.Path("stale", OutputExt))
}

func TestWriteScenario_EncodeErrorWritesNothing(t *testing.T) {
	w, _, _ := newWriter(t)

	bad := scenario.Scenario{
		Name:   "bad",
		Input:  "x",
		Output: "y",
		Build: func(s *um.Stream) {
			s.Emit(um.Halt())
			s.Emit(um.LoadValue(um.R1, 1<<25))
		},
	}
	res := w.WriteScenario(bad)
	if !errors.Is(res.Err, bitpack.ErrRange) {
		t.Fatalf("expected ErrRange, got %v", res.Err)
	}

	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty directory, found %d entries", len(entries))
	}
}

type failingFile struct {
	*os.File
}

func (f failingFile) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteScenario_WriteFailureRemovesProgram(t *testing.T) {
	w, _, _ := newWriter(t)
	w.Create = func(path string) (io.WriteCloser, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		return failingFile{f}, nil
	}

	for _, ext := range []string{InputExt, OutputExt} {
		if err := os.WriteFile(w.Path("full", ext), []byte("from an earlier run"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	res := w.WriteScenario(scenario.Scenario{Name: "full", Input: "x", Output: "B", Build: printB})
	if !errors.Is(res.Err, um.ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", res.Err)
	}
	if res.Words != 0 {
		t.Errorf("expected no words recorded, got %d", res.Words)
	}
	testutil.AssertMissing(t, w.Path("full", ProgramExt))
	testutil.AssertMissing(t, w.Path("full", InputExt))
	testutil.AssertMissing(t, w.Path("full", OutputExt))
}

func TestWriteScenario_MissingDirectory(t *testing.T) {
	w, _, _ := newWriter(t)
	w.Dir = filepath.Join(w.Dir, "does", "not", "exist")

	res := w.WriteScenario(scenario.Scenario{Name: "x", Build: printB})
	var pathErr *os.PathError
	if !errors.As(res.Err, &pathErr) {
		t.Errorf("expected *os.PathError, got %v", res.Err)
	}
}

func TestRun_AllInOrder(t *testing.T) {
	w, out, _ := newWriter(t)
	reg := mustRegistry(t,
		scenario.Scenario{Name: "first", Build: printB},
		scenario.Scenario{Name: "second", Build: printB},
	)

	results, err := w.Run(reg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 2 || results[0].Name != "first" || results[1].Name != "second" {
		t.Fatalf("unexpected results %+v", results)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 progress lines, got %q", out.String())
	}
	if !strings.Contains(lines[0], "first") || !strings.Contains(lines[1], "second") {
		t.Errorf("progress out of order: %q", lines)
	}
}

func TestRun_UnknownNameContinues(t *testing.T) {
	w, _, errs := newWriter(t)
	reg := mustRegistry(t,
		scenario.Scenario{Name: "a", Build: printB},
		scenario.Scenario{Name: "b", Build: printB},
	)

	results, err := w.Run(reg, "b", "nope", "a")
	if !errors.Is(err, ErrUnknownScenario) {
		t.Fatalf("expected ErrUnknownScenario, got %v", err)
	}

	var names []string
	for _, r := range results {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff([]string{"b", "nope", "a"}, names); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("known scenarios should succeed: %+v", results)
	}
	if !strings.Contains(errs.String(), "***** No test named nope *****") {
		t.Errorf("expected unknown-name report, got %q", errs.String())
	}
	if _, err := os.Stat(w.Path("a", ProgramExt)); err != nil {
		t.Errorf("scenario after unknown name not written: %v", err)
	}
}

func TestRun_FailureDoesNotStopOthers(t *testing.T) {
	w, _, _ := newWriter(t)
	reg := mustRegistry(t,
		scenario.Scenario{Name: "bad", Build: func(s *um.Stream) { s.Emit(um.Add(8, 0, 0)) }},
		scenario.Scenario{Name: "good", Build: printB},
	)

	results, err := w.Run(reg)
	if !errors.Is(err, bitpack.ErrRange) {
		t.Fatalf("expected ErrRange, got %v", err)
	}
	if results[1].Err != nil {
		t.Errorf("good scenario failed: %v", results[1].Err)
	}
	testutil.AssertMissing(t, w.Path("bad", ProgramExt))
	if words := testutil.ReadWords(t, w.Path("good", ProgramExt)); len(words) != 3 {
		t.Errorf("expected 3 words, got %d", len(words))
	}
}

func TestRun_Builtin(t *testing.T) {
	w, _, _ := newWriter(t)
	w.Out = nil

	results, err := w.Run(scenario.Builtin())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 32 {
		t.Fatalf("expected 32 results, got %d", len(results))
	}

	if got := testutil.ReadWords(t, w.Path("halt", ProgramExt)); !cmp.Equal(got, []uint32{0x70000000}) {
		t.Errorf("halt.um = %08x", got)
	}
	testutil.AssertMissing(t, w.Path("halt", InputExt))
	testutil.AssertMissing(t, w.Path("halt", OutputExt))

	for _, r := range results {
		info, err := os.Stat(w.Path(r.Name, ProgramExt))
		if err != nil {
			t.Errorf("%s: %v", r.Name, err)
			continue
		}
		if info.Size() != int64(r.Bytes()) {
			t.Errorf("%s: file size %d, result says %d", r.Name, info.Size(), r.Bytes())
		}
	}
}
