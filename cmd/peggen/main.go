package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/peggen/internal/analyzer"
	"github.com/funvibe/peggen/internal/cache"
	"github.com/funvibe/peggen/internal/config"
	"github.com/funvibe/peggen/internal/emitter"
	"github.com/funvibe/peggen/internal/model"
	"github.com/funvibe/peggen/internal/monomorphize"
	"github.com/funvibe/peggen/internal/pipeline"
	"github.com/funvibe/peggen/internal/surface"
)

// options holds the parsed command line: peggen [-o out.go] [-pkg name]
// [-cache db] grammar.peg, read from os.Args by hand rather than through
// the flag package, for a small dependency-free startup path.
type options struct {
	outPath   string
	pkgName   string
	cachePath string
	grammar   string
}

func parseArgs(args []string) (options, error) {
	var o options
	var positional []string

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--out":
			if i+1 >= len(args) {
				return o, fmt.Errorf("%s requires a path", args[i])
			}
			i++
			o.outPath = args[i]
		case "-pkg", "--package":
			if i+1 >= len(args) {
				return o, fmt.Errorf("%s requires a name", args[i])
			}
			i++
			o.pkgName = args[i]
		case "-cache", "--cache":
			if i+1 >= len(args) {
				return o, fmt.Errorf("%s requires a path", args[i])
			}
			i++
			o.cachePath = args[i]
		default:
			if strings.HasPrefix(args[i], "-") {
				return o, fmt.Errorf("unknown flag: %s", args[i])
			}
			positional = append(positional, args[i])
		}
	}

	if len(positional) > 1 {
		return o, fmt.Errorf("expected at most one grammar file, got %d", len(positional))
	}
	if len(positional) == 1 {
		o.grammar = positional[0]
	}
	return o, nil
}

func readGrammar(path string) (string, error) {
	if path == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return "", fmt.Errorf("usage: peggen [-o out.go] [-pkg name] [-cache db] grammar%s, or pipe from stdin", config.SourceFileExt)
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// stderrIsTerminal gates ANSI coloring of compiler diagnostics on stderr
// actually being a terminal, so redirected/piped output stays plain text.
func stderrIsTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func reportErrors(errs []error, colorize bool) {
	red, reset := "", ""
	if colorize {
		red, reset = "\x1b[31m", "\x1b[0m"
	}
	fmt.Fprintln(os.Stderr, "compilation failed with errors:")
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "%s- %s%s\n", red, e.Error(), reset)
	}
}

// compile runs the full pipeline and returns the formatted Go source.
// filePath is the grammar's own path (empty for stdin input), used to
// resolve a `parent` grammar relative to the child's directory.
func compile(source, filePath, pkgName string) ([]byte, []error) {
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = filePath

	ctx = (&surface.LexerProcessor{}).Process(ctx)
	ctx = (&surface.ParserProcessor{}).Process(ctx)
	ctx = (&model.ConverterProcessor{}).Process(ctx)
	ctx = (&analyzer.AnalyzerProcessor{}).Process(ctx)
	ctx = (&monomorphize.MonomorphizeProcessor{}).Process(ctx)
	ctx = (&emitter.EmitterProcessor{PackageName: pkgName}).Process(ctx)

	if len(ctx.Errors) > 0 {
		errs := make([]error, len(ctx.Errors))
		for i, e := range ctx.Errors {
			errs[i] = e
		}
		return nil, errs
	}
	return ctx.Generated, nil
}

func outputPathFor(o options) string {
	if o.outPath != "" {
		return o.outPath
	}
	if o.grammar == "" {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(o.grammar), filepath.Ext(o.grammar))
	return base + ".go"
}

func run(args []string) int {
	o, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 1
	}

	source, err := readGrammar(o.grammar)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 1
	}
	if source == "" {
		return 0
	}

	runID := uuid.New()

	var bc *cache.Cache
	var cacheKey string
	if o.cachePath != "" {
		bc, err = cache.Open(o.cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache disabled: %s\n", err)
		} else {
			defer bc.Close()
			cacheKey = cache.Key(source, config.Version+"|pkg="+o.pkgName)
			if entry, ok, err := bc.Lookup(cacheKey); err == nil && ok {
				fmt.Fprintf(os.Stderr, "cache hit (%s old)\n", humanize.Time(entry.CreatedAt))
				return writeOutput(o, entry.Generated)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "compiling %s (run %s)\n", nonEmpty(o.grammar, "<stdin>"), runID)

	generated, errs := compile(source, o.grammar, o.pkgName)
	if len(errs) > 0 {
		reportErrors(errs, stderrIsTerminal())
		return 1
	}

	if bc != nil && cacheKey != "" {
		if err := bc.Store(cacheKey, []byte(source), generated); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write cache: %s\n", err)
		}
	}

	return writeOutput(o, generated)
}

func writeOutput(o options, generated []byte) int {
	outPath := outputPathFor(o)
	if outPath == "" {
		os.Stdout.Write(generated)
		return 0
	}
	if err := os.WriteFile(outPath, generated, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %s\n", outPath, err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%s)\n", outPath, humanize.Bytes(uint64(len(generated))))
	return 0
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "this is a bug. please report it.")
			os.Exit(1)
		}
	}()

	os.Exit(run(os.Args))
}
