package compose

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class-composer/internal/adapt"
	"class-composer/internal/signature"
	"class-composer/internal/typenode"
)

func constant(v any) typenode.Func {
	return func(*typenode.Call) (any, error) {
		return v, nil
	}
}

// callSelf returns the result of calling name on the receiver without arguments.
func callSelf(c *typenode.Call, name string) (any, error) {
	return c.Self.Call(name, adapt.Bundle{})
}

func attr(t *testing.T, obj *typenode.Object, name string) any {
	t.Helper()

	v, ok := obj.Attr(name)
	require.True(t, ok, "attribute %s not set: %s", name, spew.Sdump(obj.Attrs()))

	return v
}

func call(t *testing.T, obj *typenode.Object, name string) any {
	t.Helper()

	v, err := obj.Call(name, adapt.Bundle{})
	require.NoError(t, err)

	return v
}

// samples mirrors the reference classes used by the golden merge tests.
type samples struct {
	A, B, BChild, C, CChild, D, E *typenode.TypeNode
}

func newSamples() samples {
	var s samples

	s.A = typenode.New("A").
		Method("m1", constant("A.m1")).
		Method("m2", constant("A.m2")).
		Constructor(func(c *typenode.Call) (any, error) {
			c.Set("a1", "A.a1")
			c.Set("a2", "A.a2")

			v, err := callSelf(c, "m1")
			c.Set("a3", v)

			return nil, err
		})

	s.B = typenode.New("B").
		Method("m1", constant("B.m1")).
		Constructor(func(c *typenode.Call) (any, error) {
			c.Set("a1", "B.a1")

			v, err := callSelf(c, "m2")
			c.Set("a3", v)

			return nil, err
		})

	s.BChild = typenode.New("BChild", s.B).
		Method("m1", constant("BChild.m1")).
		Method("m3", constant("BChild.m3"))

	s.C = typenode.New("C").
		Method("m1", constant("C.m1")).
		Constructor(func(c *typenode.Call) (any, error) {
			v, err := callSelf(c, "m3")
			c.Set("a3", v)

			return nil, err
		})

	s.CChild = typenode.New("CChild", s.C).
		Method("m2", constant("CChild.m2")).
		Constructor(func(c *typenode.Call) (any, error) {
			if _, err := c.SuperInit(adapt.Bundle{}); err != nil {
				return nil, err
			}

			c.Set("a2", "CChild.a2")

			return nil, nil
		})

	s.D = typenode.New("D").
		Constructor(func(c *typenode.Call) (any, error) {
			self := c.Self
			c.Set("m3", typenode.Func(func(*typenode.Call) (any, error) {
				return self.Call("m1", adapt.Bundle{})
			}))
			c.Set("m2", typenode.Func(func(*typenode.Call) (any, error) {
				return "D.m2", nil
			}))

			return nil, nil
		})

	s.E = typenode.New("E").
		Method("m2", func(c *typenode.Call) (any, error) {
			v, _ := c.Self.Attr("param_1")
			return v, nil
		}).
		Constructor(func(c *typenode.Call) (any, error) {
			c.Set("a1", c.Arg("param_1"))
			c.Set("param_1", c.Arg("param_1"))
			c.Set("a2", c.Arg("param_2"))

			return nil, nil
		}, signature.Param{Name: "param_1"}, signature.Param{Name: "param_2"})

	return s
}

func TestCompose_SimpleMerge(t *testing.T) {
	s := newSamples()

	merged, err := Compose([]*typenode.TypeNode{s.A, s.B}, nil, true)
	require.NoError(t, err)

	obj, err := typenode.Instantiate(merged, adapt.Bundle{})
	require.NoError(t, err)

	assert.Equal(t, "B.a1", attr(t, obj, "a1"))
	assert.Equal(t, "A.a2", attr(t, obj, "a2"))
	assert.Equal(t, "A.m2", attr(t, obj, "a3"), "B's constructor sees A.m2 through the composite")
	assert.Equal(t, "B.m1", call(t, obj, "m1"))
	assert.Equal(t, "A.m2", call(t, obj, "m2"))
}

func TestCompose_MultiMerge(t *testing.T) {
	s := newSamples()

	merged, err := Compose([]*typenode.TypeNode{s.A, s.BChild, s.CChild}, nil, true)
	require.NoError(t, err)

	obj, err := typenode.Instantiate(merged, adapt.Bundle{})
	require.NoError(t, err)

	assert.Equal(t, "B.a1", attr(t, obj, "a1"))
	assert.Equal(t, "CChild.a2", attr(t, obj, "a2"))
	assert.Equal(t, "BChild.m3", attr(t, obj, "a3"))
	assert.Equal(t, "C.m1", call(t, obj, "m1"), "CChild inherits m1 from C and is rightmost")
	assert.Equal(t, "CChild.m2", call(t, obj, "m2"))
}

func TestCompose_MergeWithAttributeMethods(t *testing.T) {
	s := newSamples()

	merged, err := Compose([]*typenode.TypeNode{s.D, s.CChild, s.B}, nil, true)
	require.NoError(t, err)

	obj, err := typenode.Instantiate(merged, adapt.Bundle{})
	require.NoError(t, err)

	assert.Equal(t, "B.a1", attr(t, obj, "a1"))
	assert.Equal(t, "CChild.a2", attr(t, obj, "a2"))
	assert.Equal(t, "D.m2", attr(t, obj, "a3"))
	assert.Equal(t, "B.m1", call(t, obj, "m1"))
	assert.Equal(t, "D.m2", call(t, obj, "m2"), "instance attribute shadows the type member")
}

func TestCompose_MergeWithInitParams(t *testing.T) {
	s := newSamples()

	merged, err := Compose([]*typenode.TypeNode{s.E, s.B}, nil, true)
	require.NoError(t, err)

	obj, err := typenode.Instantiate(merged, adapt.Positional("p1", "p2"))
	require.NoError(t, err)

	assert.Equal(t, "B.a1", attr(t, obj, "a1"))
	assert.Equal(t, "p2", attr(t, obj, "a2"))
	assert.Equal(t, "p1", attr(t, obj, "a3"))
	assert.Equal(t, "B.m1", call(t, obj, "m1"))
	assert.Equal(t, "p1", call(t, obj, "m2"))
}

// recorder collects constructor invocations with their adapted arguments.
type recorder struct {
	mu    sync.Mutex
	calls []string
	args  map[string]map[string]any
}

func newRecorder() *recorder {
	return &recorder{args: make(map[string]map[string]any)}
}

func (r *recorder) fn(name string) typenode.Func {
	return func(c *typenode.Call) (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.calls = append(r.calls, name)
		r.args[name] = c.Args.Map()

		return name, nil
	}
}

func abcd(rec *recorder) []*typenode.TypeNode {
	req := func(n string) signature.Param { return signature.Param{Name: n} }
	opt := func(n string) signature.Param { return signature.Param{Name: n, HasDefault: true} }

	return []*typenode.TypeNode{
		typenode.New("A").Constructor(rec.fn("A")),
		typenode.New("B").Constructor(rec.fn("B"), req("a")),
		typenode.New("C").Constructor(rec.fn("C"), req("a"), req("b"), opt("kw1")),
		typenode.New("D").Constructor(rec.fn("D"), opt("kw2")),
	}
}

func TestCompose_ConstructorFanOutAdaptsSharedBundle(t *testing.T) {
	rec := newRecorder()

	merged, err := Compose(abcd(rec), nil, true)
	require.NoError(t, err)

	_, err = typenode.Instantiate(merged, adapt.NewBundle(
		[]any{"Alpha", "Beta"},
		map[string]any{"kw1": "X", "kw2": "Y"},
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D"}, rec.calls)
	assert.Equal(t, map[string]any{}, rec.args["A"])
	assert.Equal(t, map[string]any{"a": "Alpha"}, rec.args["B"])
	assert.Equal(t, map[string]any{"a": "Alpha", "b": "Beta", "kw1": "X"}, rec.args["C"])
	assert.Equal(t, map[string]any{"kw2": "Y"}, rec.args["D"])
}

func TestCompose_LenientSkipsUnsatisfiable(t *testing.T) {
	rec := newRecorder()

	var logs bytes.Buffer

	opts := DefaultOptions()
	opts.Strict = false
	opts.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	res, err := NewComposer(opts).Compose(abcd(rec)...)
	require.NoError(t, err)

	_, err = typenode.Instantiate(res.Type, adapt.Named("kw2", "Y"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "D"}, rec.calls)
	assert.Equal(t, map[string]any{"kw2": "Y"}, rec.args["D"])
	assert.Contains(t, logs.String(), "fan-out target skipped")
	assert.Contains(t, logs.String(), "contributor=B")
	assert.Contains(t, logs.String(), "contributor=C")
}

func TestCompose_StrictReportsMissingArgument(t *testing.T) {
	rec := newRecorder()

	merged, err := Compose(abcd(rec), nil, true)
	require.NoError(t, err)

	_, err = typenode.Instantiate(merged, adapt.Named("kw2", "Y"))
	require.Error(t, err)

	var me *adapt.MissingArgumentError
	require.True(t, errors.As(err, &me), "got %v", err)
	assert.Equal(t, "B.init", me.Callable)
	assert.Equal(t, "a", me.Param)
	assert.Equal(t, []string{"A"}, rec.calls, "fan-out stops at the failing target")
}

func TestCompose_OverrideAndFanOut(t *testing.T) {
	tests := []struct {
		name      string
		fanOut    []string
		wantCalls []string
		wantRet   any
	}{
		{name: "override", wantCalls: []string{"B"}, wantRet: "B"},
		{name: "fan-out", fanOut: []string{"setup"}, wantCalls: []string{"A", "B"}, wantRet: "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			a := typenode.New("A").Method("setup", rec.fn("A"))
			b := typenode.New("B").Method("setup", rec.fn("B"))

			merged, err := Compose([]*typenode.TypeNode{a, b}, tt.fanOut, true)
			require.NoError(t, err)

			obj, err := typenode.Instantiate(merged, adapt.Bundle{})
			require.NoError(t, err)

			ret, err := obj.Call("setup", adapt.Bundle{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantRet, ret)
			assert.Equal(t, tt.wantCalls, rec.calls)
		})
	}
}

func TestCompose_FanOutSkipsContributorsLackingMember(t *testing.T) {
	rec := newRecorder()
	a := typenode.New("A").Method("setup", rec.fn("A"))
	b := typenode.New("B").Value("other", 1)
	c := typenode.New("C").Method("setup", rec.fn("C"))

	merged, err := Compose([]*typenode.TypeNode{a, b, c}, []string{"setup"}, true)
	require.NoError(t, err)

	obj, err := typenode.Instantiate(merged, adapt.Bundle{})
	require.NoError(t, err)

	_, err = obj.Call("setup", adapt.Bundle{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, rec.calls)
}

func TestCompose_FanOutLogsAbsentApartFromSkipped(t *testing.T) {
	rec := newRecorder()
	a := typenode.New("A").Method("setup", rec.fn("A"), signature.Param{Name: "x", Kind: signature.PositionalOrNamed})
	b := typenode.New("B").Value("other", 1)
	c := typenode.New("C").Method("setup", rec.fn("C"))

	var logs bytes.Buffer

	opts := DefaultOptions()
	opts.Strict = false
	opts.FanOut = []string{"setup"}
	opts.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	res, err := NewComposer(opts).Compose(a, b, c)
	require.NoError(t, err)

	obj, err := typenode.Instantiate(res.Type, adapt.Bundle{})
	require.NoError(t, err)
	logs.Reset()

	_, err = obj.Call("setup", adapt.Bundle{})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, rec.calls)

	out := logs.String()
	assert.Regexp(t, `msg="fan-out target absent" rank=\S+ member=setup contributor=B\n`, out)
	assert.Regexp(t, `msg="fan-out target skipped" rank=\S+ member=setup contributor=A missing=x\n`, out)
	assert.NotContains(t, out, "contributor=C")
}

func TestCompose_ConfigurationErrors(t *testing.T) {
	noop := constant(nil)

	tests := []struct {
		name            string
		a, b            *typenode.TypeNode
		wantContributor string
	}{
		{
			name:            "value member",
			a:               typenode.New("A").Value("setup", 1),
			b:               typenode.New("B").Method("setup", noop),
			wantContributor: "A",
		},
		{
			name:            "mixed decorator and plain",
			a:               typenode.New("A").Decorator("setup", noop),
			b:               typenode.New("B").Method("setup", noop),
			wantContributor: "A+B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose([]*typenode.TypeNode{tt.a, tt.b}, []string{"setup"}, true)
			require.Error(t, err)

			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, "setup", ce.Member)
			assert.Equal(t, tt.wantContributor, ce.Contributor)
		})
	}
}

func TestCompose_CyclicAncestorsHitDepthLimit(t *testing.T) {
	a, b := typenode.New("A"), typenode.New("B")
	a.Bases = []*typenode.TypeNode{b}
	b.Bases = []*typenode.TypeNode{a}

	c, d := typenode.New("C"), typenode.New("D")
	c.Bases = []*typenode.TypeNode{d}
	d.Bases = []*typenode.TypeNode{c}

	opts := DefaultOptions()
	opts.MaxDepth = 8

	_, err := NewComposer(opts).Compose(a, c)
	require.Error(t, err)

	var re *RecursionLimitError
	require.True(t, errors.As(err, &re), "got %v", err)
	assert.Equal(t, 8, re.Limit)
	assert.Equal(t, []string{"A+C", "B+D", "A+C"}, re.Chain[:3])
	assert.Contains(t, err.Error(), "...")
}

func TestCompose_Roots(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		_, err := Compose(nil, nil, true)
		assert.ErrorIs(t, err, ErrNoRoots)
	})

	t.Run("nil root", func(t *testing.T) {
		_, err := Compose([]*typenode.TypeNode{typenode.New("A"), nil}, nil, true)
		assert.ErrorContains(t, err, "root 1 is nil")
	})

	t.Run("single root is identity", func(t *testing.T) {
		a := typenode.New("A").Value("v", 1)

		res, err := NewComposer(DefaultOptions()).Compose(a)
		require.NoError(t, err)
		assert.Same(t, a, res.Type)
		assert.Nil(t, res.Rank.Parent)
		assert.False(t, res.Type.IsComposite())
	})
}

func TestCompose_RankTree(t *testing.T) {
	ga := typenode.New("GA").Value("g", "GA")
	pa := typenode.New("PA", ga).Value("p", "PA")
	pb := typenode.New("PB").Method("m", constant("PB.m"))
	a := typenode.New("A", pa).Method("m", constant("A.m"))
	b := typenode.New("B", pb)

	res, err := NewComposer(DefaultOptions()).Compose(a, b)
	require.NoError(t, err)

	var chain []string
	for _, r := range res.Rank.Chain() {
		chain = append(chain, r.Name())
	}

	assert.Equal(t, []string{"A+B", "PA+PB", "GA"}, chain)

	parent := res.Rank.Parent
	require.NotNil(t, parent)
	assert.Same(t, parent.Type, res.Type.Bases[0])
	assert.True(t, parent.Type.IsComposite())
	assert.Same(t, ga, parent.Parent.Type, "single-contributor rank is the contributor itself")
	assert.Equal(t, "A[A+B]", res.Type.String())

	obj, err := typenode.Instantiate(res.Type, adapt.Bundle{})
	require.NoError(t, err)

	// B inherits m from PB and is the rightmost contributor.
	assert.Equal(t, "PB.m", call(t, obj, "m"))

	g, err := obj.Get("g")
	require.NoError(t, err)
	assert.Equal(t, "GA", g)
}

func TestCompose_SharedAncestorKeepsFirstOccurrence(t *testing.T) {
	x := typenode.New("X").Value("x", 1)
	a := typenode.New("A", x)
	b := typenode.New("B", x)

	res, err := NewComposer(DefaultOptions()).Compose(a, b)
	require.NoError(t, err)

	require.NotNil(t, res.Rank.Parent)
	assert.Len(t, res.Rank.Parent.Contributors, 1)
	assert.Same(t, x, res.Rank.Parent.Type)
}

func TestComposer_ReusesRanksAcrossCalls(t *testing.T) {
	p := typenode.New("P").Method("m", constant("P.m"))
	q := typenode.New("Q").Method("m", constant("Q.m"))

	x1, y1 := typenode.New("X1", p), typenode.New("Y1", q)
	x2, y2 := typenode.New("X2", p), typenode.New("Y2", q)

	var logs bytes.Buffer

	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	composer := NewComposer(opts)

	first, err := composer.Compose(x1, y1)
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "composite rank reused")

	second, err := composer.Compose(x2, y2)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `msg="composite rank reused" rank=P+Q depth=1`)

	assert.NotSame(t, first.Type, second.Type)
	assert.Same(t, first.Rank.Parent, second.Rank.Parent)
	assert.Same(t, first.Type.Bases[0], second.Type.Bases[0], "shared ancestors get the same composite type")

	overrides := second.Diagnostics.ByCode("override")
	require.NotEmpty(t, overrides)
	assert.Equal(t, "P+Q", overrides[0].Scope, "a reused rank still reports")

	again, err := composer.Compose(x1, y1)
	require.NoError(t, err)
	assert.Same(t, first.Type, again.Type)
	assert.Equal(t, first.Diagnostics, again.Diagnostics)

	obj, err := typenode.Instantiate(again.Type, adapt.Bundle{})
	require.NoError(t, err)

	ret, err := obj.Call("m", adapt.Bundle{})
	require.NoError(t, err)
	assert.Equal(t, "Q.m", ret)
}

func TestCompose_FreshRanksPerCall(t *testing.T) {
	s := newSamples()
	roots := []*typenode.TypeNode{s.A, s.BChild, s.CChild}

	first, err := Compose(roots, nil, true)
	require.NoError(t, err)

	second, err := Compose(roots, nil, true)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.NotSame(t, first.Bases[0], second.Bases[0])
}

func TestCompose_Associative(t *testing.T) {
	build := func(rec *recorder) (a, b, c *typenode.TypeNode) {
		a = typenode.New("A").Method("setup", rec.fn("A")).Method("m", constant("A.m")).Constructor(rec.fn("A.init"))
		b = typenode.New("B").Method("setup", rec.fn("B")).Method("m", constant("B.m")).Constructor(rec.fn("B.init"))
		c = typenode.New("C").Method("setup", rec.fn("C")).Value("v", "C.v").Constructor(rec.fn("C.init"))

		return a, b, c
	}

	fanOut := []string{"setup"}

	flatRec := newRecorder()
	fa, fb, fc := build(flatRec)
	flat, err := Compose([]*typenode.TypeNode{fa, fb, fc}, fanOut, true)
	require.NoError(t, err)

	nestedRec := newRecorder()
	na, nb, nc := build(nestedRec)
	inner, err := Compose([]*typenode.TypeNode{na, nb}, fanOut, true)
	require.NoError(t, err)
	nested, err := Compose([]*typenode.TypeNode{inner, nc}, fanOut, true)
	require.NoError(t, err)

	for _, tc := range []struct {
		typ *typenode.TypeNode
		rec *recorder
	}{{flat, flatRec}, {nested, nestedRec}} {
		obj, err := typenode.Instantiate(tc.typ, adapt.Positional("x"))
		require.NoError(t, err)

		_, err = obj.Call("setup", adapt.Bundle{})
		require.NoError(t, err)

		assert.Equal(t, []string{"A.init", "B.init", "C.init", "A", "B", "C"}, tc.rec.calls)
		assert.Equal(t, "B.m", call(t, obj, "m"))

		v, err := obj.Get("v")
		require.NoError(t, err)
		assert.Equal(t, "C.v", v)
	}
}

func TestCompose_DecoratorFanOutNests(t *testing.T) {
	var trace []string

	deco := func(name string) typenode.Func {
		return func(c *typenode.Call) (any, error) {
			trace = append(trace, name+"-open")
			ret, err := c.Next(c.Bundle)
			trace = append(trace, name+"-close")

			return ret, err
		}
	}

	l := typenode.New("L").Decorator("d1", deco("L"))
	m := typenode.New("M").Decorator("d1", deco("M"))

	res, err := NewComposer(Options{FanOut: []string{"d1"}, Strict: true}).Compose(l, m)
	require.NoError(t, err)

	member, ok := res.Type.Own("d1")
	require.True(t, ok)
	require.True(t, member.Callable.Wraps)

	obj, err := typenode.Instantiate(res.Type, adapt.Bundle{})
	require.NoError(t, err)

	ret, err := typenode.InvokeWrapped(member.Callable, obj, adapt.Bundle{}, func(adapt.Bundle) (any, error) {
		trace = append(trace, "target")
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", ret)
	assert.Equal(t, []string{"L-open", "M-open", "target", "M-close", "L-close"}, trace)

	trace = nil
	_, err = obj.Call("d1", adapt.Bundle{})
	require.NoError(t, err)
	assert.Equal(t, []string{"L-open", "M-open", "M-close", "L-close"}, trace, "direct call has a no-op innermost step")
}

func TestCompose_Diagnostics(t *testing.T) {
	a := typenode.New("A").Method("m1", constant(nil)).Method("setup", constant(nil))
	b := typenode.New("B").Method("m1", constant(nil))

	res, err := NewComposer(Options{FanOut: []string{"setupp", "init"}, Strict: true}).Compose(a, b)
	require.NoError(t, err)

	overrides := res.Diagnostics.ByCode("override")
	require.Len(t, overrides, 1)
	assert.Equal(t, "A+B", overrides[0].Scope)
	assert.Equal(t, "m1", overrides[0].Member)
	assert.Contains(t, overrides[0].Message, "resolved from B")

	unused := res.Diagnostics.ByCode("fan_out_unused")
	require.Len(t, unused, 1, "init is implicit and never reported")
	assert.Equal(t, "setupp", unused[0].Member)
	assert.Equal(t, []string{"setup"}, unused[0].Suggestions)
	assert.True(t, res.Diagnostics.IsValid())
}

func TestCompose_ConcurrentCallsShareInputs(t *testing.T) {
	s := newSamples()
	roots := []*typenode.TypeNode{s.A, s.BChild, s.CChild}

	var wg sync.WaitGroup

	errs := make(chan error, 16)

	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			merged, err := Compose(roots, []string{"m2"}, false)
			if err != nil {
				errs <- err
				return
			}

			if _, err := typenode.Instantiate(merged, adapt.Bundle{}); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
