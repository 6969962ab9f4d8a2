package main

import (
	"errors"
	"fmt"

	"class-composer/internal/analyze"
	"class-composer/internal/catalog"
	"class-composer/internal/compose"
	"class-composer/internal/typenode"
)

func (a *app) loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return nil, errors.New("-catalog is required")
	}

	f, err := catalog.LoadFile(path)
	if err != nil {
		return nil, err
	}

	for _, w := range catalog.Validate(f).Warnings {
		a.logger.Warn("catalogue diagnostic", "code", w.Code, "detail", w.String())
	}

	return catalog.Build(f)
}

// roots returns the named catalogue types, or the catalogue's compose roots
// when no names are given.
func roots(cat *catalog.Catalog, names []string) ([]*typenode.TypeNode, error) {
	if len(names) == 0 && cat.File().Compose != nil {
		names = cat.File().Compose.Roots
	}

	if len(names) == 0 {
		return nil, errors.New("no types given and the catalogue has no compose roots")
	}

	return cat.Types(names...)
}

func (a *app) plan(args []string) error {
	fs := a.flagSet("plan")
	path := fs.String("catalog", "", "catalogue YAML file")
	dump := fs.Bool("dump", false, "dump the rank tree")
	verbose := fs.Bool("v", false, "also list info diagnostics")
	cf := a.bindCompose(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	cat, err := a.loadCatalog(*path)
	if err != nil {
		return err
	}

	nodes, err := roots(cat, fs.Args())
	if err != nil {
		return err
	}

	res, err := compose.NewComposer(a.options(fs, cf, cat.File().Compose)).Compose(nodes...)
	if err != nil {
		return err
	}

	if err := a.out.Plan(res); err != nil {
		return err
	}

	a.out.Diagnostics(res.Diagnostics, *verbose)

	if *dump {
		a.out.Dump(res.Rank)
	}

	return res.Diagnostics.Error()
}

func (a *app) exec(args []string) error {
	fs := a.flagSet("run")
	path := fs.String("catalog", "", "catalogue YAML file")

	var positional, named listFlag

	var calls callFlag

	fs.Var(&positional, "args", "comma-separated positional constructor arguments")
	fs.Var(&named, "kw", "comma-separated key=value constructor arguments")
	fs.Var(&calls, "call", "member to call after construction, as name or name(v1, k=v); repeatable")

	cf := a.bindCompose(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	bundle, err := bundleOf(positional, named)
	if err != nil {
		return err
	}

	cat, err := a.loadCatalog(*path)
	if err != nil {
		return err
	}

	nodes, err := roots(cat, fs.Args())
	if err != nil {
		return err
	}

	res, err := compose.NewComposer(a.options(fs, cf, cat.File().Compose)).Compose(nodes...)
	if err != nil {
		return err
	}

	a.out.Diagnostics(res.Diagnostics, false)

	obj, err := typenode.Instantiate(res.Type, bundle)
	if err == nil {
		err = a.call(obj, calls)
	}

	a.out.Trace(cat.Trace().Events())

	if err != nil {
		return err
	}

	return a.out.Attributes(obj.Attrs())
}

func (a *app) call(obj *typenode.Object, calls callFlag) error {
	for _, c := range calls {
		ret, err := obj.Call(c.name, c.bundle)
		if err != nil {
			return fmt.Errorf("call %s: %w", c.name, err)
		}

		a.out.Result(c.name, ret)
	}

	return nil
}

func (a *app) analyze(args []string) error {
	fs := a.flagSet("analyze")
	dir := fs.String("dir", "", "directory package patterns are resolved from")
	verbose := fs.Bool("v", false, "also list info diagnostics")

	var pkgs listFlag

	fs.Var(&pkgs, "pkg", "comma-separated package patterns; repeatable")

	cf := a.bindCompose(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if len(pkgs) == 0 {
		return errors.New("-pkg is required")
	}

	graph, err := analyze.NewAnalyzer().InDir(*dir).LoadPackages(pkgs...)
	if err != nil {
		return err
	}

	names := fs.Args()
	if len(names) == 0 {
		names = graph.Names()
	}

	infos := make([]*analyze.TypeInfo, len(names))
	for i, name := range names {
		if infos[i], err = graph.Find(name); err != nil {
			return err
		}
	}

	if err := a.out.Types(infos); err != nil {
		return err
	}

	if fs.NArg() < 2 {
		return nil
	}

	nodes := make([]*typenode.TypeNode, len(infos))
	for i, info := range infos {
		nodes[i] = info.Node
	}

	res, err := compose.NewComposer(a.options(fs, cf, nil)).Compose(nodes...)
	if err != nil {
		return err
	}

	if err := a.out.Plan(res); err != nil {
		return err
	}

	a.out.Diagnostics(res.Diagnostics, *verbose)

	return nil
}
