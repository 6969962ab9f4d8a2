// Package main provides the CLI entrypoint for composer.
//
// composer merges type hierarchies into composite types:
//   - plan: shows the composite ancestor tree of catalogue types
//   - run: instantiates the composite and calls its members, printing the trace
//   - analyze: reads Go structs as types and plans their composition
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"class-composer/internal/config"
	"class-composer/internal/report"
)

const usageText = `usage: composer <command> [flags] [TYPE...]

commands:
  plan     -catalog FILE [-fanout a,b] [-strict] [-dump] [-v] TYPE...
  run      -catalog FILE [-args v1,v2] [-kw k=v,...] [-call m(args)]... TYPE...
  analyze  -pkg PATTERN [-fanout a,b] TYPE...

TYPE defaults to the roots listed in the catalogue's compose block.
Environment: COMPOSER_STRICT, COMPOSER_FANOUT, COMPOSER_MAX_DEPTH,
COMPOSER_LOG_LEVEL, COMPOSER_COLOR (auto, always, never).
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries what every command needs.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	out    *report.Printer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usageText)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	color := false
	if f, ok := stdout.(*os.File); ok {
		color = cfg.UseColor(f)
	}

	a := &app{
		cfg:    cfg,
		logger: cfg.Logger(stderr),
		out:    report.NewPrinter(stdout, color),
		stderr: stderr,
	}

	switch args[0] {
	case "plan":
		err = a.plan(args[1:])
	case "run":
		err = a.exec(args[1:])
	case "analyze":
		err = a.analyze(args[1:])
	case "help", "-h", "-help", "--help":
		_, _ = fmt.Fprint(stdout, usageText)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Error: unknown command %q\n\n%s", args[0], usageText)
		return 2
	}

	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case err != nil:
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	return fs
}
