package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class-composer/internal/analyze"
	"class-composer/internal/catalog"
	"class-composer/internal/compose"
	"class-composer/internal/diagnostic"
	"class-composer/internal/signature"
	"class-composer/internal/typenode"
)

func noop(*typenode.Call) (any, error) { return nil, nil }

func composed(t *testing.T) *compose.Result {
	t.Helper()

	pa := typenode.New("PA").Value("p", "PA.p")
	a := typenode.New("A", pa).Value("x", 1).Method("m", noop).Constructor(noop)
	b := typenode.New("B").Method("m", noop).Method("setup", noop).Constructor(noop)

	opts := compose.DefaultOptions()
	opts.FanOut = []string{"setup"}

	res, err := compose.NewComposer(opts).Compose(a, b)
	require.NoError(t, err)

	return res
}

func TestPrinter_Plan(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewPrinter(&buf, false).Plan(composed(t)))

	out := buf.String()
	assert.Contains(t, out, "composite A[A+B]\n")
	assert.Contains(t, out, "rank 0  A+B\n")
	assert.Contains(t, out, "rank 1  PA  (as is)\n")
	assert.Regexp(t, `(?m)^  m +method +B +resolved from B, shadowing A$`, out)
	assert.Regexp(t, `(?m)^  setup +method +fan-out +invokes B\.setup in order$`, out)
	assert.Regexp(t, `(?m)^  x +value 1 +A\b`, out)
	assert.Regexp(t, `(?m)^  init +constructor +fan-out +invokes A\.init, B\.init in order$`, out)
	assert.Regexp(t, `(?m)^  p +value PA\.p +PA\b`, out)
	assert.NotContains(t, out, "\x1b[")
}

func TestPrinter_Color(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewPrinter(&buf, true).Plan(composed(t)))
	assert.Contains(t, buf.String(), "\x1b[1mcomposite\x1b[0m")
	assert.Contains(t, buf.String(), "\x1b[36mrank 0  A+B\x1b[0m")
}

func TestPrinter_Diagnostics(t *testing.T) {
	var d diagnostic.Diagnostics
	d.AddError("unknown_base", "unknown base Basse", "B", "", "Base")
	d.AddWarning("fan_out_unused", "no contributor defines setupp", "A+B", "setupp", "setup")
	d.AddInfo("override", "resolved from B, shadowing A", "A+B", "m")

	var buf bytes.Buffer
	NewPrinter(&buf, false).Diagnostics(d, false)

	assert.Equal(t,
		"error: [B]: [unknown_base] unknown base Basse (did you mean Base?)\n"+
			"warning: [A+B] setupp: [fan_out_unused] no contributor defines setupp (did you mean setup?)\n",
		buf.String())

	buf.Reset()
	NewPrinter(&buf, false).Diagnostics(d, true)
	assert.Contains(t, buf.String(), "info: [A+B] m: [override] resolved from B, shadowing A\n")
}

func TestPrinter_Dump(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Dump(composed(t).Rank)

	out := buf.String()
	assert.Contains(t, out, `"A+B"`)
	assert.Contains(t, out, `"PA"`)
	assert.Contains(t, out, `"method from fan-out"`)
	assert.NotContains(t, out, "0xc", "pointer addresses are disabled")
}

func TestPrinter_Trace(t *testing.T) {
	events := []catalog.Event{
		{Type: "L", Member: "d1", Phase: catalog.PhaseOpen},
		{Type: "N", Member: "m1", Phase: catalog.PhaseCall, Args: map[string]any{"b": 2, "a": "x"}},
		{Type: "L", Member: "d1", Phase: catalog.PhaseClose},
		{Type: "N", Member: "plain", Phase: catalog.PhaseCall},
	}

	var buf bytes.Buffer
	NewPrinter(&buf, false).Trace(events)

	assert.Equal(t,
		"  1  L.d1 {\n"+
			"  2    N.m1(a=\"x\", b=2)\n"+
			"  3  } L.d1\n"+
			"  4  N.plain\n",
		buf.String())
}

func TestPrinter_ResultAndAttributes(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf, false)
	p.Result("m1", []string{"N.item1"})
	require.NoError(t, p.Attributes(map[string]any{"b": "B.b", "a": 1}))

	assert.Equal(t, "result m1 = [N.item1]\nattributes\n  a  1\n  b  B.b\n", buf.String())
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "short", shorten("short"))

	long := shorten(bytes.Repeat([]byte("x"), 100))
	assert.Len(t, long, maxValueWidth)
	assert.Equal(t, "...", long[len(long)-3:])
}

func TestPrinter_Types(t *testing.T) {
	entity := typenode.New("store.Entity")
	info := &analyze.TypeInfo{
		ID:      analyze.TypeID{PkgPath: "class-composer/store", Name: "Product"},
		PkgName: "store",
		Node:    typenode.New("store.Product", entity),
		Embeds:  []analyze.TypeID{{PkgPath: "class-composer/store", Name: "Entity"}},
		Fields: []analyze.FieldInfo{
			{Name: "Entity", Type: "store.Entity", Embedded: true},
			{Name: "SKU", Type: "string", Tag: `json:"sku"`},
		},
		Constructor: &analyze.MethodInfo{
			Name:       typenode.InitName,
			Params:     []signature.Param{{Name: "id"}},
			ParamTypes: []string{"int64"},
			Results:    []string{"*store.Product"},
		},
		Methods: []analyze.MethodInfo{{Name: "Describe", Results: []string{"string"}, PointerReceiver: true}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, false).Types([]*analyze.TypeInfo{info}))

	out := buf.String()
	assert.Contains(t, out, "store.Product embeds store.Entity\n")
	assert.Regexp(t, `(?m)^  field +SKU +string \(json:sku\)$`, out)
	assert.Regexp(t, `(?m)^  constructor +NewProduct +init\(id int64\) \*store\.Product$`, out)
	assert.Regexp(t, `(?m)^  method +Describe +Describe\(\) string  \[pointer\]$`, out)
	assert.NotContains(t, out, "field  Entity")
}
