package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/evaluator"
	"github.com/angel-lang/angel/internal/parser"
	"github.com/angel-lang/angel/internal/pipeline"
)

const replGreeting = `Angel interactive session. Commands: :gencpp :clear :undo :exit`

// entry is one accepted input together with the top-level names it
// bound, so :undo can roll it back.
type entry struct {
	source string
	names  []string
}

type repl struct {
	eval      *evaluator.Evaluator
	history   []entry
	sessionID string
	tty       bool
}

func runRepl() {
	r := &repl{
		eval:      evaluator.New(),
		sessionID: uuid.NewString(),
		tty:       isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
	if r.tty {
		fmt.Println(replGreeting)
	}

	scanner := bufio.NewScanner(os.Stdin)
	var block []string
	for {
		if r.tty {
			if len(block) > 0 {
				fmt.Print("... ")
			} else {
				fmt.Print(">>> ")
			}
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		if len(block) > 0 {
			// A blank line closes a multi-line block.
			if strings.TrimSpace(line) == "" {
				r.accept(strings.Join(block, "\n"))
				block = nil
			} else {
				block = append(block, line)
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, ":"):
			if !r.command(trimmed) {
				return
			}
		case strings.HasSuffix(trimmed, ":"):
			block = append(block, line)
		default:
			r.accept(line)
		}
	}
	if len(block) > 0 {
		r.accept(strings.Join(block, "\n"))
	}
}

// command runs a colon command and reports whether the session goes on.
func (r *repl) command(cmd string) bool {
	switch cmd {
	case ":exit", ":quit":
		return false
	case ":clear":
		r.eval = evaluator.New()
		r.history = nil
	case ":undo":
		r.undo()
	case ":gencpp":
		r.gencpp()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %s\n", cmd)
	}
	return true
}

func (r *repl) accept(source string) {
	program, derr := parser.Parse(source)
	if derr != nil {
		reportError(source, derr)
		return
	}
	value, derr := r.eval.Eval(program.Statements)
	if derr != nil {
		reportError(source, derr)
		return
	}
	r.history = append(r.history, entry{source: source, names: boundNames(program)})
	if value != nil {
		if _, void := value.(*evaluator.Void); !void {
			fmt.Println(value.Inspect())
		}
	}
}

// undo removes the last accepted input and the bindings it created.
// Mutations to older bindings are not reverted.
func (r *repl) undo() {
	if len(r.history) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to undo")
		return
	}
	last := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	for _, name := range last.names {
		r.eval.Env().Delete(name)
	}
}

// gencpp compiles the accumulated session through the full pipeline
// and writes the result to a per-session scratch file.
func (r *repl) gencpp() {
	if len(r.history) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to compile")
		return
	}
	var b strings.Builder
	for _, e := range r.history {
		b.WriteString(e.source)
		b.WriteString("\n")
	}
	source := b.String()

	outPath := filepath.Join(os.TempDir(), "angel-"+r.sessionID+".cpp")
	cpp, derr := pipeline.Compile(outPath, source)
	if derr != nil {
		reportError(source, derr)
		return
	}
	if err := os.WriteFile(outPath, []byte(cpp), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return
	}
	fmt.Println(outPath)
}

func boundNames(program *ast.Program) []string {
	var names []string
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.Decl:
			names = append(names, s.Name.Value)
		case *ast.FunctionDeclaration:
			names = append(names, s.Name.Value)
		case *ast.StructDeclaration:
			names = append(names, s.Name.Value)
		case *ast.AlgebraicDeclaration:
			names = append(names, s.Name.Value)
		}
	}
	return names
}
