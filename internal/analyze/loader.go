package analyze

import (
	"errors"
	"fmt"
	"go/types"
	"reflect"
	"sort"
	"strconv"

	"golang.org/x/tools/go/packages"

	"class-composer/internal/signature"
	"class-composer/internal/typenode"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer loads Go packages and builds a type graph whose nodes can be
// composed like any other type.
type Analyzer struct {
	graph *TypeGraph
	cache map[*types.TypeName]*TypeInfo // Also breaks cycles through embedded pointers
	dir   string
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		graph: NewTypeGraph(),
		cache: make(map[*types.TypeName]*TypeInfo),
	}
}

// InDir sets the directory packages are resolved from. The default is the
// working directory.
func (a *Analyzer) InDir(dir string) *Analyzer {
	a.dir = dir
	return a
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./store", "class-composer/warehouse").
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// processPackage extracts the exported named structs of a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) {
	pkgInfo := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() {
			continue
		}

		if info := a.analyzeNamed(typeName); info != nil {
			pkgInfo.Types = append(pkgInfo.Types, info.ID)
		}
	}

	a.graph.Packages[pkg.PkgPath] = pkgInfo
}

// analyzeNamed builds the TypeInfo of a named, non-generic struct type and
// of every struct it embeds. It returns nil for anything else.
func (a *Analyzer) analyzeNamed(obj *types.TypeName) *TypeInfo {
	if cached, ok := a.cache[obj]; ok {
		return cached
	}

	named, ok := obj.Type().(*types.Named)
	if !ok || obj.IsAlias() || named.TypeParams().Len() > 0 {
		return nil
	}

	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil
	}

	info := &TypeInfo{
		ID:      TypeID{PkgPath: obj.Pkg().Path(), Name: obj.Name()},
		PkgName: obj.Pkg().Name(),
	}
	info.Node = typenode.New(info.Name())

	a.cache[obj] = info
	a.graph.Types[info.ID] = info

	a.analyzeStructFields(st, info)
	a.analyzeMethods(named, info)
	a.analyzeConstructor(named, info)

	return info
}

// analyzeStructFields turns embedded structs into bases and exported fields
// into value members.
func (a *Analyzer) analyzeStructFields(st *types.Struct, info *TypeInfo) {
	for i := range st.NumFields() {
		field := st.Field(i)

		fieldInfo := FieldInfo{
			Name:     field.Name(),
			Type:     TypeString(field.Type()),
			Tag:      reflect.StructTag(st.Tag(i)),
			Embedded: field.Embedded(),
			Index:    i,
		}

		if field.Embedded() {
			if base := a.embedded(field.Type()); base != nil {
				info.Embeds = append(info.Embeds, base.ID)
				info.Node.Bases = append(info.Node.Bases, base.Node)
				info.Fields = append(info.Fields, fieldInfo)

				continue
			}
		}

		if !field.Exported() {
			continue
		}

		info.Fields = append(info.Fields, fieldInfo)
		info.Node.Value(field.Name(), fieldInfo)
	}
}

func (a *Analyzer) embedded(t types.Type) *TypeInfo {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}

	named, ok := t.(*types.Named)
	if !ok || !named.Obj().Exported() {
		return nil
	}

	return a.analyzeNamed(named.Obj())
}

// analyzeMethods adds the exported methods declared on the type. Promoted
// methods are reached through the bases.
func (a *Analyzer) analyzeMethods(named *types.Named, info *TypeInfo) {
	for i := range named.NumMethods() {
		fn := named.Method(i)
		if !fn.Exported() {
			continue
		}

		m := methodInfo(fn.Name(), fn.Signature())

		if recv := fn.Signature().Recv(); recv != nil {
			_, m.PointerReceiver = recv.Type().(*types.Pointer)
		}

		info.Methods = append(info.Methods, m)
		info.Node.Define(m.Name, typenode.Member{Callable: m.Callable()})
	}

	sort.Slice(info.Methods, func(i, j int) bool {
		return info.Methods[i].Name < info.Methods[j].Name
	})
}

// analyzeConstructor looks for a package function New<Name> whose first
// result is the type or a pointer to it.
func (a *Analyzer) analyzeConstructor(named *types.Named, info *TypeInfo) {
	obj := named.Obj()

	fn, ok := obj.Pkg().Scope().Lookup("New" + obj.Name()).(*types.Func)
	if !ok {
		return
	}

	sig := fn.Signature()
	if sig.Results().Len() == 0 {
		return
	}

	res := sig.Results().At(0).Type()
	if ptr, ok := res.(*types.Pointer); ok {
		res = ptr.Elem()
	}

	if !types.Identical(res, named) {
		return
	}

	m := methodInfo(typenode.InitName, sig)
	info.Constructor = &m
	info.Node.Init = &typenode.Callable{Name: typenode.InitName, Owner: info.Node, Params: m.Params}
}

// methodInfo maps Go parameters onto the callable model: every parameter
// binds by name or position, and a variadic last parameter collects the
// remaining positionals. Unnamed parameters are called argN.
func methodInfo(name string, sig *types.Signature) MethodInfo {
	m := MethodInfo{Name: name}

	params := sig.Params()
	for i := range params.Len() {
		v := params.At(i)

		p := signature.Param{Name: v.Name(), Kind: signature.PositionalOrNamed}
		if p.Name == "" || p.Name == "_" {
			p.Name = "arg" + strconv.Itoa(i)
		}

		typ := TypeString(v.Type())

		if sig.Variadic() && i == params.Len()-1 {
			p.Kind = signature.VariadicPositional

			if s, ok := v.Type().(*types.Slice); ok {
				typ = "..." + TypeString(s.Elem())
			}
		}

		m.Params = append(m.Params, p)
		m.ParamTypes = append(m.ParamTypes, typ)
	}

	results := sig.Results()
	for i := range results.Len() {
		m.Results = append(m.Results, TypeString(results.At(i).Type()))
	}

	return m
}
