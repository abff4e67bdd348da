package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/akhildatla/umlab/pkg/assembler"
	"github.com/akhildatla/umlab/pkg/um"
)

const (
	prompt     = "um> "
	promptCont = "...> "
)

// REPL encodes UM assembly interactively, one line at a time, and
// accumulates the result into a program that can be listed or saved.
type REPL struct {
	program     *um.Stream
	history     []string
	multiline   strings.Builder
	inMultiline bool
	done        bool
}

// New creates a new REPL instance with an empty program.
func New() *REPL {
	return &REPL{
		program: um.NewStream(),
		history: []string{},
	}
}

// Program returns the instructions entered so far.
func (r *REPL) Program() *um.Stream {
	return r.program
}

// Start runs the loop until in is exhausted or the user quits.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "umlab REPL - Universal Machine assembler")
	fmt.Fprintln(out, "Type 'help' for available commands, 'quit' to exit")
	fmt.Fprintln(out)

	for !r.done {
		if r.inMultiline {
			fmt.Fprint(out, promptCont)
		} else {
			fmt.Fprint(out, prompt)
		}

		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		// A blank line ends multiline input
		if r.inMultiline {
			if line == "" {
				r.inMultiline = false
				input := r.multiline.String()
				r.multiline.Reset()
				r.eval(input, out)
			} else {
				r.multiline.WriteString(strings.TrimSuffix(line, "\\"))
				r.multiline.WriteString("\n")
			}
			continue
		}

		if handled := r.handleCommand(line, out); handled {
			continue
		}

		if strings.HasSuffix(line, "\\") {
			r.inMultiline = true
			r.multiline.WriteString(strings.TrimSuffix(line, "\\"))
			r.multiline.WriteString("\n")
			continue
		}

		r.eval(line, out)
	}
}

func (r *REPL) handleCommand(line string, out io.Writer) bool {
	trimmed := strings.TrimSpace(line)
	parts := strings.Fields(trimmed)

	if len(parts) == 0 {
		return true
	}

	switch parts[0] {
	case "quit", "exit", "q":
		fmt.Fprintln(out, "Goodbye!")
		r.done = true
		return true

	case "help", "h", "?":
		r.printHelp(out)
		return true

	case "list":
		r.listProgram(out)
		return true

	case "clear":
		r.program = um.NewStream()
		fmt.Fprintln(out, "Program cleared")
		return true

	case "history":
		for i, cmd := range r.history {
			fmt.Fprintf(out, "%3d: %s\n", i+1, cmd)
		}
		return true

	case "save":
		if len(parts) > 1 {
			r.save(parts[1], out)
		} else {
			fmt.Fprintln(out, "Usage: save <path.um>")
		}
		return true
	}

	return false
}

func (r *REPL) eval(input string, out io.Writer) {
	if strings.TrimSpace(input) == "" {
		return
	}

	r.history = append(r.history, input)

	start := r.program.Len()
	if err := assembler.AssembleInto(r.program, input); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	for i := start; i < r.program.Len(); i++ {
		inst := r.program.At(i)
		fmt.Fprintf(out, "=> 0x%08x  %s\n", uint32(inst), inst)
	}
}

func (r *REPL) listProgram(out io.Writer) {
	if r.program.Len() == 0 {
		fmt.Fprintln(out, "Program is empty")
		return
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "Word", "Instruction"})
	table.SetAutoWrapText(false)
	for i, inst := range r.program.All() {
		table.Append([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%08x", uint32(inst)),
			inst.String(),
		})
	}
	table.Render()
}

func (r *REPL) save(path string, out io.Writer) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	err = um.WriteProgram(f, r.program)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Wrote %d instructions (%d bytes) to %s\n",
		r.program.Len(), r.program.Len()*um.WordBytes, path)
}

func (r *REPL) printHelp(out io.Writer) {
	help := `
umlab REPL Commands:
  help, h, ?      Show this help message
  quit, exit, q   Exit the REPL
  list            Show the program entered so far
  clear           Discard the program
  history         Show input history
  save <path>     Write the program as a .um file

Examples:
  lv r1, 'B'
  out r1
  .rept 3 \
  add r1, r1, r2
  .endr

  halt

Tips:
  - End a line with \ for multiline input
  - Press Enter twice to assemble multiline input
`
	fmt.Fprint(out, help)
}
