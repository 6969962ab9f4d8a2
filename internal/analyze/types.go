package analyze

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"class-composer/internal/match"
	"class-composer/internal/signature"
	"class-composer/internal/typenode"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "class-composer/store"
	Name    string // e.g., "Product"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeInfo describes one exported named struct and the type node built from it.
type TypeInfo struct {
	ID          TypeID
	PkgName     string
	Node        *typenode.TypeNode
	Embeds      []TypeID     // Embedded named structs, in declaration order
	Fields      []FieldInfo  // Exported fields and embedded structs
	Methods     []MethodInfo // Methods declared on the type, sorted by name
	Constructor *MethodInfo  // Package function New<Name>, if any
}

// Name returns the package-qualified name, e.g. "store.Product".
func (t *TypeInfo) Name() string {
	return t.PkgName + "." + t.ID.Name
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string            // Go field name
	Type     string            // Field type as written in another package
	Tag      reflect.StructTag // Raw struct tag
	Embedded bool              // Whether the field is embedded (anonymous)
	Index    int               // Field index in the struct
}

// JSONName returns the JSON tag name if present, otherwise the field name.
func (f FieldInfo) JSONName() string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}

	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}

	return f.Name
}

func (f FieldInfo) String() string {
	if f.JSONName() != f.Name {
		return fmt.Sprintf("%s (json:%s)", f.Type, f.JSONName())
	}

	return f.Type
}

// MethodInfo describes a method or a constructor function.
type MethodInfo struct {
	Name            string
	Params          []signature.Param
	ParamTypes      []string // Parallel to Params
	Results         []string
	PointerReceiver bool
}

// Callable returns a describe-only callable with the method's parameters.
func (m MethodInfo) Callable() *typenode.Callable {
	return &typenode.Callable{Name: m.Name, Params: m.Params}
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all exported named structs.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// PackageInfo describes a loaded package.
type PackageInfo struct {
	Path  string
	Name  string
	Types []TypeID
}

// NewTypeGraph creates an empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// NotFoundError reports a type name that matches nothing in the graph.
type NotFoundError struct {
	Name        string
	Candidates  []string // Set when a bare name is ambiguous
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	switch {
	case len(e.Candidates) > 0:
		return fmt.Sprintf("type %s is ambiguous: %s", e.Name, strings.Join(e.Candidates, ", "))
	case len(e.Suggestions) > 0:
		return fmt.Sprintf("type %s not found (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
	default:
		return fmt.Sprintf("type %s not found", e.Name)
	}
}

// Find looks up a type by "pkg.Name", by "import/path.Name", or by a bare
// name that is unique across the graph.
func (g *TypeGraph) Find(name string) (*TypeInfo, error) {
	var bare []*TypeInfo

	for id, info := range g.Types {
		if id.String() == name || info.Name() == name {
			return info, nil
		}

		if id.Name == name {
			bare = append(bare, info)
		}
	}

	switch len(bare) {
	case 1:
		return bare[0], nil
	case 0:
		return nil, &NotFoundError{Name: name, Suggestions: match.Suggest(name, g.Names(), 3)}
	}

	candidates := make([]string, len(bare))
	for i, info := range bare {
		candidates[i] = info.Name()
	}

	sort.Strings(candidates)

	return nil, &NotFoundError{Name: name, Candidates: candidates}
}

// Nodes returns the type nodes for the given names, in order.
func (g *TypeGraph) Nodes(names ...string) ([]*typenode.TypeNode, error) {
	nodes := make([]*typenode.TypeNode, len(names))

	for i, name := range names {
		info, err := g.Find(name)
		if err != nil {
			return nil, err
		}

		nodes[i] = info.Node
	}

	return nodes, nil
}

// Names returns the package-qualified names of all types, sorted.
func (g *TypeGraph) Names() []string {
	names := make([]string, 0, len(g.Types))
	for _, info := range g.Types {
		names = append(names, info.Name())
	}

	sort.Strings(names)

	return names
}
