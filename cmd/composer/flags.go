package main

import (
	"flag"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"class-composer/internal/adapt"
	"class-composer/internal/catalog"
	"class-composer/internal/compose"
)

// listFlag collects comma-separated values; the flag may be repeated.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(s string) error {
	if *l == nil {
		*l = listFlag{}
	}

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}

	return nil
}

// composeFlags are the composition flags shared by every command.
type composeFlags struct {
	fanOut   listFlag
	strict   bool
	maxDepth int
}

func (a *app) bindCompose(fs *flag.FlagSet) *composeFlags {
	cf := &composeFlags{}

	fs.Var(&cf.fanOut, "fanout", "comma-separated member names invoked on every contributor")
	fs.BoolVar(&cf.strict, "strict", a.cfg.Strict, "fail on fan-out targets with missing arguments instead of skipping them")
	fs.IntVar(&cf.maxDepth, "max-depth", a.cfg.MaxDepth, "ancestor depth limit")

	return cf
}

// options layers the composition options: flags set on the command line,
// then the catalogue's compose block, then the environment.
func (a *app) options(fs *flag.FlagSet, cf *composeFlags, def *catalog.ComposeDef) compose.Options {
	opts := a.cfg.Options(a.logger)

	if def != nil {
		if len(def.FanOut) > 0 {
			opts.FanOut = def.FanOut
		}

		if def.Strict != nil {
			opts.Strict = *def.Strict
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fanout":
			opts.FanOut = cf.fanOut
		case "strict":
			opts.Strict = cf.strict
		}
	})

	opts.MaxDepth = cf.maxDepth

	return opts
}

// parseValue reads a command-line value as a YAML scalar, so "1" is an int
// and "null" is nil. Anything YAML rejects stays a string.
func parseValue(s string) any {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}

	return v
}

func bundleOf(positional, named []string) (adapt.Bundle, error) {
	pos := make([]any, len(positional))
	for i, s := range positional {
		pos[i] = parseValue(s)
	}

	kw := make(map[string]any, len(named))

	for _, s := range named {
		k, v, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return adapt.Bundle{}, fmt.Errorf("named argument %q: want key=value", s)
		}

		kw[strings.TrimSpace(k)] = parseValue(v)
	}

	return adapt.NewBundle(pos, kw), nil
}

// callSpec is one -call flag: a member name and its arguments.
type callSpec struct {
	name   string
	bundle adapt.Bundle
}

// callFlag collects -call flags of the form "name" or "name(v1, k=v)".
type callFlag []callSpec

func (c *callFlag) String() string {
	names := make([]string, len(*c))
	for i, spec := range *c {
		names[i] = spec.name
	}

	return strings.Join(names, ",")
}

func (c *callFlag) Set(s string) error {
	spec, err := parseCall(s)
	if err != nil {
		return err
	}

	*c = append(*c, spec)

	return nil
}

func parseCall(s string) (callSpec, error) {
	name, rest, ok := strings.Cut(s, "(")
	name = strings.TrimSpace(name)

	if name == "" {
		return callSpec{}, fmt.Errorf("call %q: missing member name", s)
	}

	if !ok {
		return callSpec{name: name, bundle: adapt.Bundle{}}, nil
	}

	inner, ok := strings.CutSuffix(strings.TrimSpace(rest), ")")
	if !ok {
		return callSpec{}, fmt.Errorf("call %q: missing closing parenthesis", s)
	}

	var positional, named []string

	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)

		switch {
		case part == "":
		case strings.Contains(part, "="):
			named = append(named, part)
		default:
			positional = append(positional, part)
		}
	}

	b, err := bundleOf(positional, named)
	if err != nil {
		return callSpec{}, fmt.Errorf("call %q: %w", s, err)
	}

	return callSpec{name: name, bundle: b}, nil
}
