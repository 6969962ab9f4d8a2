package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class-composer/internal/adapt"
	"class-composer/internal/compose"
	"class-composer/internal/diagnostic"
	"class-composer/internal/signature"
	"class-composer/internal/typenode"
)

func TestParse(t *testing.T) {
	yaml := `
types:
  - name: C
    bases: [A, B]
    values:
      limit: 3
    init:
      params:
        - a
        - kw1=X
        - "*rest"
        - name: only
          kind: named
          optional: true
        - "**extra"
      set:
        z: $a
        a: "@m"
        m: .z
methods_ignored: true
compose:
  roots: [C]
  fan_out: [setup]
`

	f, err := Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, "1", f.Version)
	require.Len(t, f.Types, 1)

	td := f.Types[0]
	assert.Equal(t, StringOrArray{"A", "B"}, td.Bases)
	assert.Equal(t, 3, td.Values["limit"])

	require.NotNil(t, td.Init)
	assert.Equal(t, typenode.InitName, td.Init.Name)

	// Assignment order is kept.
	require.Len(t, td.Init.Set, 3)
	assert.Equal(t, []string{"z", "a", "m"}, []string{td.Init.Set[0].Attr, td.Init.Set[1].Attr, td.Init.Set[2].Attr})
	assert.Equal(t, "$a", td.Init.Set[0].Expr)

	sig, err := td.Init.Signature(td.Name)
	require.NoError(t, err)
	assert.Equal(t, "C.init(a, kw1=X, *rest, only=<nil>, **extra)", sig.String())

	p, ok := sig.Lookup("only")
	require.True(t, ok)
	assert.Equal(t, signature.NamedOnly, p.Kind)
	assert.False(t, p.Required())

	require.NotNil(t, f.Compose)
	assert.Equal(t, []string{"C"}, f.Compose.Roots)
	assert.Nil(t, f.Compose.Strict)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "types: [\n"},
		{name: "set is a list", yaml: "types:\n  - name: A\n    init:\n      set: [a]\n"},
		{name: "bases is a mapping", yaml: "types:\n  - name: A\n    bases: {x: 1}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	f, err := LoadFile(filepath.Join("testdata", "classes.yaml"))
	require.NoError(t, err)
	assert.Len(t, f.Types, 9)

	_, err = LoadFile(filepath.Join("testdata", "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read catalogue")
}

func TestMarshal_RoundTripKeepsOrder(t *testing.T) {
	f, err := LoadFile(filepath.Join("testdata", "classes.yaml"))
	require.NoError(t, err)

	data, err := Marshal(f)
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, f.Types[0].Init.Set, again.Types[0].Init.Set)
	assert.Equal(t, f.Types[2].Bases, again.Types[2].Bases)
}

func codes(ds []diagnostic.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Code
	}

	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		yaml         string
		wantErrors   []string
		wantWarnings []string
		suggestion   string
	}{
		{
			name:       "unknown base",
			yaml:       "types:\n  - name: Base\n  - name: A\n    bases: Basse\n",
			wantErrors: []string{"unknown_base"},
			suggestion: "Base",
		},
		{
			name:       "duplicate type",
			yaml:       "types:\n  - name: A\n  - name: A\n",
			wantErrors: []string{"duplicate_type"},
		},
		{
			name:       "cyclic bases",
			yaml:       "types:\n  - name: A\n    bases: B\n  - name: B\n    bases: A\n",
			wantErrors: []string{"cyclic_bases"},
		},
		{
			name:       "invalid signature",
			yaml:       "types:\n  - name: A\n    init:\n      params: [a=1, b]\n",
			wantErrors: []string{"invalid_signature"},
		},
		{
			name:       "unknown kind",
			yaml:       "types:\n  - name: A\n    methods:\n      - name: m\n        params: [{name: a, kind: nope}]\n",
			wantErrors: []string{"invalid_signature"},
		},
		{
			name: "unknown fallback",
			yaml: "types:\n  - name: A\n    methods:\n      - name: plain\n" +
				"      - name: m\n        decorate_with: d\n        fallback: plan\n",
			wantErrors: []string{"unknown_fallback"},
			suggestion: "plain",
		},
		{
			name:       "decorated constructor",
			yaml:       "types:\n  - name: A\n    init:\n      wraps: true\n",
			wantErrors: []string{"invalid_constructor"},
		},
		{
			name:       "unknown root",
			yaml:       "types:\n  - name: Alpha\ncompose:\n  roots: [Alph]\n",
			wantErrors: []string{"unknown_root"},
			suggestion: "Alpha",
		},
		{
			name:         "unknown fan-out name",
			yaml:         "types:\n  - name: A\n    methods:\n      - name: setup\ncompose:\n  roots: [A]\n  fan_out: [setpu, init]\n",
			wantWarnings: []string{"unknown_fan_out"},
		},
		{
			name:         "dangling references",
			yaml:         "types:\n  - name: A\n    methods:\n      - name: m\n        params: [value]\n        set: {x: $vlue, y: \"@nope\"}\n",
			wantWarnings: []string{"unknown_argument", "unknown_member"},
			suggestion:   "value",
		},
		{
			name:         "collector accepts any argument",
			yaml:         "types:\n  - name: A\n    methods:\n      - name: m\n        params: [\"**kw\"]\n        returns: $anything\n",
			wantWarnings: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			res := Validate(f)
			assert.Equal(t, tt.wantErrors, nilIfEmpty(codes(res.Errors)))
			assert.Equal(t, tt.wantWarnings, nilIfEmpty(codes(res.Warnings)))

			if tt.suggestion != "" {
				all := append(append([]diagnostic.Diagnostic{}, res.Errors...), res.Warnings...)
				require.NotEmpty(t, all)
				assert.Contains(t, all[0].Suggestions, tt.suggestion)
			}
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}

	return s
}

func TestValidate_EmptyInputs(t *testing.T) {
	assert.Equal(t, []string{"catalog_is_nil"}, codes(Validate(nil).Errors))
	assert.Equal(t, []string{"no_types"}, codes(Validate(&File{}).Errors))
}

func TestValidate_Testdata(t *testing.T) {
	f, err := LoadFile(filepath.Join("testdata", "classes.yaml"))
	require.NoError(t, err)

	res := Validate(f)
	assert.True(t, res.IsValid(), "%v", res.Error())
	assert.Empty(t, res.Warnings)
}

func loadCatalog(t *testing.T) *Catalog {
	t.Helper()

	f, err := LoadFile(filepath.Join("testdata", "classes.yaml"))
	require.NoError(t, err)

	c, err := Build(f)
	require.NoError(t, err)

	return c
}

func TestBuild_MultiMerge(t *testing.T) {
	c := loadCatalog(t)

	roots, err := c.Types(c.File().Compose.Roots...)
	require.NoError(t, err)

	merged, err := compose.Compose(roots, nil, true)
	require.NoError(t, err)

	obj, err := typenode.Instantiate(merged, adapt.Bundle{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"a1": "B.a1", "a2": "CChild.a2", "a3": "BChild.m3"}, obj.Attrs())
	assert.Equal(t, []string{
		"A.init", "C.m1",
		"B.init", "CChild.m2",
		"CChild.init", "C.init", "BChild.m3",
	}, c.Trace().Steps()[:7])

	m1, err := obj.Call("m1", adapt.Bundle{})
	require.NoError(t, err)
	assert.Equal(t, "C.m1", m1)
}

func TestBuild_InitParams(t *testing.T) {
	c := loadCatalog(t)

	roots, err := c.Types("E", "B")
	require.NoError(t, err)

	merged, err := compose.Compose(roots, nil, true)
	require.NoError(t, err)

	obj, err := typenode.Instantiate(merged, adapt.Positional("p1", "p2"))
	require.NoError(t, err)

	a1, _ := obj.Attr("a1")
	a2, _ := obj.Attr("a2")
	a3, _ := obj.Attr("a3")
	assert.Equal(t, "B.a1", a1)
	assert.Equal(t, "p2", a2)
	assert.Equal(t, "p1", a3)

	events := c.Trace().Events()
	require.NotEmpty(t, events)
	assert.Equal(t, map[string]any{"param_1": "p1", "param_2": "p2"}, events[0].Args)

	_, err = typenode.Instantiate(merged, adapt.Positional("p1"))

	var me *adapt.MissingArgumentError
	require.True(t, errors.As(err, &me), "got %v", err)
	assert.Equal(t, "E.init", me.Callable)
	assert.Equal(t, "param_2", me.Param)
}

func TestBuild_Decorators(t *testing.T) {
	t.Run("fan-out decorators from contributors", func(t *testing.T) {
		c := loadCatalog(t)

		roots, err := c.Types("L", "M", "N")
		require.NoError(t, err)

		merged, err := compose.Compose(roots, []string{"d1"}, true)
		require.NoError(t, err)

		obj, err := typenode.Instantiate(merged, adapt.Bundle{})
		require.NoError(t, err)
		c.Trace().Reset()

		ret, err := obj.Call("m1", adapt.Bundle{})
		require.NoError(t, err)
		assert.Equal(t, []any{"N.a3", "N.m2"}, ret)
		assert.Equal(t, []string{"L.d1:open", "M.d1:open", "N.m1", "N.m2", "M.d1:close", "L.d1:close"}, c.Trace().Steps())

		a1, _ := obj.Attr("a1")
		assert.Equal(t, "L.a1", a1)
	})

	t.Run("fallback runs before the method without decorators", func(t *testing.T) {
		c := loadCatalog(t)
		n, ok := c.Type("N")
		require.True(t, ok)

		obj, err := typenode.Instantiate(n, adapt.Bundle{})
		require.NoError(t, err)

		ret, err := obj.Call("m1", adapt.Bundle{})
		require.NoError(t, err)
		assert.Equal(t, []any{"N.a3", "N.m2"}, ret)
		assert.Equal(t, []string{"N.init", "N.prepare", "N.m1", "N.m2"}, c.Trace().Steps())

		p1, ok := obj.Attr("p1")
		require.True(t, ok)
		assert.Equal(t, "N.p1", p1)
	})
}

func TestBuild_RejectsInvalidCatalogue(t *testing.T) {
	f, err := Parse([]byte("types:\n  - name: A\n    bases: Missing\n"))
	require.NoError(t, err)

	_, err = Build(f)
	assert.ErrorContains(t, err, "unknown base")
}

func TestBuild_BasesDeclaredLater(t *testing.T) {
	f, err := Parse([]byte("types:\n  - name: Child\n    bases: Parent\n  - name: Parent\n    values: {v: 1}\n"))
	require.NoError(t, err)

	c, err := Build(f)
	require.NoError(t, err)

	child, ok := c.Type("Child")
	require.True(t, ok)

	parent, _ := c.Type("Parent")
	require.Len(t, child.Bases, 1)
	assert.Same(t, parent, child.Bases[0])
	assert.Equal(t, []string{"Child", "Parent"}, c.Names())
}

func TestCatalog_TypesUnknown(t *testing.T) {
	c := loadCatalog(t)

	_, err := c.Types("A", "BChlid")

	var ue *UnknownTypeError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "BChlid", ue.Name)
	assert.Contains(t, ue.Suggestions, "BChild")
	assert.Contains(t, err.Error(), "did you mean")
}

func TestTopoSort_Order(t *testing.T) {
	order, stuck, err := topoSort(3, func(i int) []int {
		switch i {
		case 0:
			return []int{2}
		case 1:
			return []int{0}
		default:
			return nil
		}
	})
	require.NoError(t, err)
	assert.Empty(t, stuck)
	assert.Equal(t, []int{2, 0, 1}, order)
}

func TestTopoSort_Cycle(t *testing.T) {
	_, stuck, err := topoSort(3, func(i int) []int {
		switch i {
		case 0:
			return []int{1}
		case 1:
			return []int{0}
		default:
			return nil
		}
	})
	require.ErrorIs(t, err, errCycle)
	assert.Equal(t, []int{0, 1}, stuck)
}

func TestTopoSort_OutOfRange(t *testing.T) {
	_, _, err := topoSort(1, func(int) []int { return []int{4} })
	assert.ErrorContains(t, err, "out of range")
}
