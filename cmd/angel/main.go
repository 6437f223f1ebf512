package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/angel-lang/angel/internal/cache"
	"github.com/angel-lang/angel/internal/config"
	"github.com/angel-lang/angel/internal/diagnostics"
	"github.com/angel-lang/angel/internal/pipeline"
)

const usage = `Usage:
  angel build <file> [-o <out.cpp>]   compile a source file to C++
  angel repl                          start an interactive session
  angel help                          show this message
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		handleBuild(os.Args[2:])
	case "repl":
		runRepl()
	case "help", "-help", "--help":
		fmt.Print(usage)
	default:
		// Bare source file path works as a build shorthand.
		if isSourceFile(os.Args[1]) {
			handleBuild(os.Args[1:])
			return
		}
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func handleBuild(args []string) {
	var sourcePath, outPath string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "-o requires a path")
				os.Exit(1)
			}
			i++
			outPath = args[i]
		default:
			if sourcePath != "" {
				fmt.Fprintln(os.Stderr, "build takes a single source file")
				os.Exit(1)
			}
			sourcePath = args[i]
		}
	}
	if sourcePath == "" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	source := string(data)

	projectDir := filepath.Dir(sourcePath)
	project, err := config.LoadProject(projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if outPath == "" {
		outPath = project.Output
	}
	if outPath == "" {
		outPath = strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + ".cpp"
	}

	cpp, ok := lookupCached(project, projectDir, source)
	if !ok {
		var derr *diagnostics.Error
		cpp, derr = pipeline.Compile(sourcePath, source)
		if derr != nil {
			reportError(source, derr)
			os.Exit(1)
		}
		storeCached(project, projectDir, source, cpp)
	}

	if len(project.Includes) > 0 {
		cpp = withExtraIncludes(cpp, project.Includes)
	}
	if err := os.WriteFile(outPath, []byte(cpp), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func lookupCached(project *config.Project, dir, source string) (string, bool) {
	if !project.CacheEnabled() {
		return "", false
	}
	c, err := cache.Open(dir)
	if err != nil {
		return "", false
	}
	defer c.Close()
	cpp, err := c.Lookup(cache.Key(source))
	if err != nil || cpp == "" {
		return "", false
	}
	return cpp, true
}

func storeCached(project *config.Project, dir, source, cpp string) {
	if !project.CacheEnabled() {
		return
	}
	c, err := cache.Open(dir)
	if err != nil {
		return
	}
	defer c.Close()
	// Store failures are silent: the build already succeeded.
	_ = c.Store(cache.Key(source), cpp)
}

// withExtraIncludes prepends project-configured headers after any
// generated includes.
func withExtraIncludes(cpp string, includes []string) string {
	var extra strings.Builder
	for _, inc := range includes {
		extra.WriteString("#include " + inc + "\n")
	}
	lastInc := strings.LastIndex(cpp, "#include")
	if lastInc < 0 {
		return extra.String() + cpp
	}
	end := strings.IndexByte(cpp[lastInc:], '\n')
	if end < 0 {
		return extra.String() + cpp
	}
	cut := lastInc + end + 1
	return cpp[:cut] + extra.String() + cpp[cut:]
}

func reportError(source string, derr *diagnostics.Error) {
	if derr.Line > 0 && derr.SourceLine == "" {
		lines := strings.Split(source, "\n")
		if derr.Line <= len(lines) {
			derr.WithSource(lines[derr.Line-1])
		}
	}
	fmt.Fprintln(os.Stderr, derr.Render(useColor()))
}

func useColor() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
