package wavelog_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	wl "github.com/db47h/wavelog"
	"github.com/db47h/wavelog/internal/hdl"
	"github.com/db47h/wavelog/sim"
	"github.com/pkg/errors"
)

const fixtureDesign = `module top;
  wire [7:4] w;
  logic [3:0] b;
  signal v : [3:0];
  wire [3:0] mem [2];
  tri pull en;
  wire dead;
  wire [2:0] p = w[6:4];
  wire [2:0] q = w[4:6];
  wire bit = w[6];
  wire [3:0] c = w & ~b;
  wire [3:0] c2 = w & ~b;
  logic [3:0] chain = c ^ b;
  wire [39:0] wide = {10{b}};
  const [3:0] k = 4'b1010;
endmodule
`

var fixtureInputs = []string{"top.w", "top.b", "top.v", "top.mem", "top.en"}

type fixture struct {
	t   *testing.T
	d   *sim.Design
	c   *sim.Circuit
	s   *wl.Session
	in  map[string]wl.Vector
	log bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, d: sim.NewDesign(), in: make(map[string]wl.Vector)}
	f.d.Optimize = true
	if err := hdl.Read(f.d, "fixture", fixtureDesign); err != nil {
		t.Fatal(err)
	}
	for _, n := range fixtureInputs {
		if err := f.d.Drive(f.h(n), func() wl.Vector { return f.in[n] }); err != nil {
			t.Fatal(err)
		}
	}
	var err error
	if f.c, err = sim.NewCircuit(1, 2, f.d); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(f.c.Dispose)
	// let inputs settle to 0 before logging starts.
	f.c.Step()
	l := slog.New(slog.NewTextHandler(&f.log, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if f.s, err = wl.Init(f.c, &wl.Config{Logger: l}); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) h(name string) wl.Handle {
	f.t.Helper()
	h, ok := f.d.Lookup(name)
	if !ok {
		f.t.Fatalf("no object %s", name)
	}
	return h
}

// step sets the value of an input and runs one simulation step.
//
func (f *fixture) step(name string, u uint64) {
	f.t.Helper()
	info, _ := f.c.Info(f.h(name))
	f.in[name] = wl.FromUint64(info.Width(), u)
	f.c.Step()
}

func counter(n *int) wl.Func {
	return func(interface{}, uint32, uint32) { *n++ }
}

func TestInit(t *testing.T) {
	f := newFixture(t)
	if f.s.State() != wl.Initialized {
		t.Errorf("got state %v", f.s.State())
	}
	if _, err := wl.Init(f.c, nil); errors.Cause(err) != wl.ErrAttached {
		t.Errorf("second Init: expected ErrAttached, got %v", err)
	}
	if _, err := wl.Init(nil, nil); errors.Cause(err) != wl.ErrUnavailable {
		t.Errorf("nil kernel: expected ErrUnavailable, got %v", err)
	}

	d := sim.NewDesign()
	d.NoFastLog = true
	if err := hdl.Read(d, "nofast", "wire a;"); err != nil {
		t.Fatal(err)
	}
	c, err := sim.NewCircuit(1, 2, d)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()
	if _, err := wl.Init(c, nil); errors.Cause(err) != wl.ErrUnavailable {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestSession_Classify(t *testing.T) {
	f := newFixture(t)
	data := []struct {
		name  string
		class wl.Class
		kind  wl.ValueKind
		size  int
	}{
		{"top.w", wl.Primary, wl.TwoState, 1},
		{"top.b", wl.Primary, wl.FourState, 1},
		{"top.v", wl.Primary, wl.ForeignValue, 4},
		{"top.mem", wl.Primary, wl.KindNone, 0},
		{"top.dead", wl.Unavailable, wl.KindNone, 0},
		{"top.p", wl.Secondary, wl.TwoState, 1},
		{"top.chain", wl.Secondary, wl.FourState, 1},
		{"top.wide", wl.Secondary, wl.TwoState, 2},
		{"top.k", wl.Literal, wl.TwoState, 1},
	}
	for _, td := range data {
		h := f.h(td.name)
		for i := 0; i < 2; i++ {
			if c := f.s.Classify(h); c != td.class {
				t.Errorf("%s: expected %v, got %v", td.name, td.class, c)
			}
		}
		if k, sz := f.s.ValueKind(h); k != td.kind || sz != td.size {
			t.Errorf("%s: expected %v/%d, got %v/%d", td.name, td.kind, td.size, k, sz)
		}
	}
	n := f.s.Registered()
	if c := f.s.Classify(0); c != wl.Unavailable {
		t.Errorf("Classify(0): got %v", c)
	}
	if c := f.s.Classify(^wl.Handle(0)); c != wl.Unavailable {
		t.Errorf("Classify(bad handle): got %v", c)
	}
	if f.s.Registered() != n {
		t.Errorf("unknown handles added to the registry")
	}
}

func TestSession_MapExpr(t *testing.T) {
	f := newFixture(t)
	w, b := f.h("top.w"), f.h("top.b")

	n, alias := f.s.MapExpr(f.h("top.bit"))
	if bs, ok := n.(*wl.BitSelect); !ok || alias || bs.Handle() != w || bs.Offset() != 2 {
		t.Errorf("top.bit: got %#v, %v", n, alias)
	}

	p, alias := f.s.MapExpr(f.h("top.p"))
	ps, ok := p.(*wl.PartSelect)
	if !ok || alias || ps.Lsb() != 0 || ps.Msb() != 2 || ps.Width() != 3 {
		t.Fatalf("top.p: got %#v, %v", p, alias)
	}
	q, alias := f.s.MapExpr(f.h("top.q"))
	if q != p || !alias {
		t.Errorf("top.q: expected alias of top.p, got %#v, %v", q, alias)
	}
	if a, ok := f.s.AliasOf(f.h("top.q")); !ok || a != f.h("top.p") {
		t.Errorf("AliasOf(top.q): got %v, %v", a, ok)
	}
	if _, ok := f.s.AliasOf(f.h("top.p")); ok {
		t.Error("canonical secondary reported as alias")
	}
	// cached
	if q2, alias := f.s.MapExpr(f.h("top.q")); q2 != p || !alias {
		t.Error("second MapExpr(top.q) returned a different result")
	}

	c, _ := f.s.MapExpr(f.h("top.c"))
	c2, alias := f.s.MapExpr(f.h("top.c2"))
	if c2 != c || !alias {
		t.Error("top.c2 is not an alias of top.c")
	}

	chain, alias := f.s.MapExpr(f.h("top.chain"))
	in, ok := chain.(*wl.Infix)
	if !ok || alias || in.Op() != wl.OpBitXor {
		t.Fatalf("top.chain: got %#v", chain)
	}
	if ts := wl.Terminals(chain); len(ts) != 2 || ts[0] != f.h("top.c") || ts[1] != b {
		t.Errorf("top.chain terminals: got %v", ts)
	}
	if f.s.Classify(in.Lhs().(*wl.VarRef).Handle()) != wl.Secondary {
		t.Error("chained terminal is not secondary")
	}

	if n, _ := f.s.MapExpr(w); n != nil {
		t.Errorf("MapExpr(primary): got %#v", n)
	}
	if !strings.Contains(f.log.String(), "MapExpr: precondition violation") {
		t.Errorf("no warning logged:\n%s", f.log.String())
	}
}

func TestSession_SetCallback(t *testing.T) {
	f := newFixture(t)
	w := f.h("top.w")
	var n1, n2 int
	var hi, lo uint32
	var data interface{}
	fn := func(ud interface{}, high, low uint32) {
		n1++
		data, hi, lo = ud, high, low
	}

	f.s.Start()
	loc := f.s.SetCallback(w, fn, "w1")
	if loc == nil {
		t.Fatal("nil location")
	}
	if f.s.SetCallback(w, counter(&n2), "w2") != nil {
		t.Error("second Verilog callback accepted")
	}
	if f.s.SetCallback(f.h("top.p"), fn, nil) != nil {
		t.Error("callback accepted for a secondary")
	}
	if f.s.SetCallback(f.h("top.dead"), fn, nil) != nil {
		t.Error("callback accepted for an unavailable object")
	}
	if f.s.SetCallback(f.h("top.mem"), fn, nil) != nil {
		t.Error("callback accepted for a composite object")
	}
	if f.s.SetCallback(f.h("top.b"), nil, nil) != nil {
		t.Error("nil callback accepted")
	}
	f.s.Finalize()
	if f.s.State() != wl.Finalized {
		t.Errorf("got state %v", f.s.State())
	}

	f.step("top.w", 5)
	if n1 != 1 || n2 != 0 {
		t.Fatalf("expected 1 and 0 calls, got %d and %d", n1, n2)
	}
	if data != "w1" || hi != 0 || lo != uint32(f.c.Steps()) {
		t.Errorf("got callback args %v, %d, %d", data, hi, lo)
	}
	if v := loc.Load().String(); v != "0101" {
		t.Errorf("location: expected 0101, got %s", v)
	}
	f.c.Step()
	if n1 != 1 {
		t.Errorf("callback fired without value change")
	}
	if ud := f.s.UserData(w); ud != "w1" {
		t.Errorf("user data: got %v", ud)
	}
}

func TestSession_SetCallback_vhdl(t *testing.T) {
	f := newFixture(t)
	v := f.h("top.v")
	var n1, n2 int
	f.s.Start()
	l1 := f.s.SetCallback(v, counter(&n1), 1)
	l2 := f.s.SetCallback(v, counter(&n2), 2)
	f.s.Finalize()
	if l1 == nil || l2 == nil {
		t.Fatal("nil location for VHDL object")
	}
	if l1.Kind() != wl.ForeignValue || l1.Size() != 4 {
		t.Errorf("got %v/%d", l1.Kind(), l1.Size())
	}
	f.step("top.v", 3)
	if n1 != 1 || n2 != 1 {
		t.Errorf("expected 1 call each, got %d and %d", n1, n2)
	}
	if b := l1.Bytes(); b[0] != wl.Std1 || b[2] != wl.Std0 {
		t.Errorf("got buffer %v", b)
	}
}

func TestSession_SetCallback_literal(t *testing.T) {
	f := newFixture(t)
	k := f.h("top.k")
	n := 0
	f.s.Start()
	loc := f.s.SetCallback(k, counter(&n), "ignored")
	f.s.Finalize()
	if loc == nil || loc.Aval()[0] != 0xa {
		t.Fatalf("bad literal location %v", loc)
	}
	for i := 0; i < 4; i++ {
		f.step("top.w", uint64(i))
	}
	if n != 0 {
		t.Errorf("literal callback fired %d times", n)
	}
	if ud := f.s.UserData(k); ud != nil {
		t.Errorf("literal user data set to %v", ud)
	}
}

func TestSession_SetCallback_outsideBracket(t *testing.T) {
	f := newFixture(t)
	w := f.h("top.w")
	n := 0
	loc := f.s.SetCallback(w, counter(&n), "x")
	if loc == nil {
		t.Fatal("nil location outside bracket")
	}
	f.step("top.w", 1)
	if n != 0 {
		t.Error("callback installed outside Start/Finalize")
	}
	if v := loc.Load().String(); v != "0001" {
		t.Errorf("location not live: got %s", v)
	}
	if f.s.UserData(w) != "x" {
		t.Error("user data not set")
	}
	// w has no subscription: it can still get one in a bracket.
	f.s.Start()
	if f.s.SetCallback(w, counter(&n), "y") == nil {
		t.Error("SetCallback failed after a call outside bracket")
	}
	f.s.Finalize()
	f.step("top.w", 2)
	if n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
	// now w has a subscription: a conflicting call outside a bracket is a
	// no-op.
	n2 := 0
	if f.s.SetCallback(w, counter(&n2), "z") != nil {
		t.Error("conflicting SetCallback outside bracket returned a location")
	}
	if ud := f.s.UserData(w); ud != "y" {
		t.Errorf("user data: expected y, got %v", ud)
	}
	f.step("top.w", 3)
	if n != 2 || n2 != 0 {
		t.Errorf("expected 2 and 0 calls, got %d and %d", n, n2)
	}
}

func TestSession_RemoveCallback(t *testing.T) {
	f := newFixture(t)
	b := f.h("top.b")
	n := 0
	f.s.Start()
	f.s.SetCallback(b, counter(&n), nil)
	f.s.Finalize()
	f.step("top.b", 1)
	if !f.s.RemoveCallback(b) {
		t.Fatal("RemoveCallback returned false")
	}
	if f.s.RemoveCallback(b) {
		t.Error("second RemoveCallback returned true")
	}
	f.step("top.b", 2)
	if n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
	// pending subscriptions are removed too.
	f.s.Start()
	f.s.SetCallback(b, counter(&n), nil)
	if !f.s.RemoveCallback(b) {
		t.Error("RemoveCallback of a pending callback returned false")
	}
	f.s.Finalize()
	f.step("top.b", 3)
	if n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
	if f.s.Classify(b) != wl.Primary {
		t.Error("classification lost")
	}
}

func TestSession_SetStrengthCallback(t *testing.T) {
	f := newFixture(t)
	en := f.h("top.en")
	f.s.Start()
	loc := f.s.SetStrengthCallback(en, counter(new(int)), nil)
	if f.s.SetStrengthCallback(f.h("top.w"), counter(new(int)), nil) != nil {
		t.Error("strength callback accepted for an object without strength")
	}
	f.s.Finalize()
	if loc == nil {
		t.Fatal("nil location")
	}
	f.step("top.en", 1)
	if sv := loc.ValAndStrength(0); sv != (wl.StrengthVal{Logic: wl.L1, S0: wl.HighZ, S1: wl.Pull}) {
		t.Errorf("got %+v", sv)
	}
}

func TestSession_SetCallbackForSecondary(t *testing.T) {
	f := newFixture(t)
	c := f.h("top.c")
	n := 0
	f.s.Start()
	loc := f.s.SetCallbackForSecondary(c, counter(&n), nil)
	if f.s.SetCallbackForSecondary(f.h("top.w"), counter(&n), nil) != nil {
		t.Error("SetCallbackForSecondary accepted a primary")
	}
	f.s.Finalize()
	if loc == nil {
		t.Fatal("nil location")
	}
	f.in["top.b"] = wl.FromUint64(4, 0)
	f.step("top.w", 0xf)
	if n != 1 || loc.Load().String() != "1111" {
		t.Errorf("got %d calls, value %s", n, loc.Load())
	}
}

func TestSession_UserData(t *testing.T) {
	f := newFixture(t)
	if !f.s.SetUserData(f.h("top.c"), 42) || f.s.UserData(f.h("top.c")) != 42 {
		t.Error("user data not set on secondary")
	}
	if f.s.SetUserData(f.h("top.dead"), 1) {
		t.Error("user data set on unavailable object")
	}
	if f.s.SetUserData(0, 1) || f.s.UserData(0) != nil {
		t.Error("user data set on unknown handle")
	}
}

func TestSession_Cleanup(t *testing.T) {
	f := newFixture(t)
	w := f.h("top.w")
	n := 0
	f.s.Start()
	f.s.SetCallback(w, counter(&n), nil)
	f.s.Finalize()
	f.s.MapExpr(f.h("top.c"))

	f.s.Cleanup()
	if f.s.State() != wl.CleanedUp || f.s.Registered() != 0 {
		t.Fatalf("state %v, %d objects registered", f.s.State(), f.s.Registered())
	}
	if c := f.s.Classify(f.h("top.b")); c != wl.Unavailable {
		t.Errorf("Classify after Cleanup: got %v", c)
	}
	if f.s.SetCallback(f.h("top.b"), counter(&n), nil) != nil {
		t.Error("SetCallback after Cleanup returned a location")
	}
	if n, _ := f.s.MapExpr(f.h("top.c")); n != nil {
		t.Error("MapExpr after Cleanup returned a tree")
	}
	if f.s.RemoveCallback(w) {
		t.Error("RemoveCallback after Cleanup returned true")
	}
	f.s.Start()
	if f.s.State() != wl.CleanedUp {
		t.Errorf("Start after Cleanup changed state to %v", f.s.State())
	}
	if f.s.Registered() != 0 {
		t.Errorf("registry grew after Cleanup: %d", f.s.Registered())
	}
	f.step("top.w", 3)
	if n != 1 {
		t.Errorf("armed callback: expected 1 call, got %d", n)
	}
	if !strings.Contains(f.log.String(), "Classify called after Cleanup") {
		t.Errorf("no warning logged:\n%s", f.log.String())
	}
}

func TestSession_Cleanup_pending(t *testing.T) {
	f := newFixture(t)
	n := 0
	f.s.Start()
	f.s.SetCallback(f.h("top.w"), counter(&n), nil)
	f.s.Cleanup()
	f.s.Finalize()
	f.step("top.w", 1)
	if n != 0 {
		t.Error("pending callback armed after Cleanup")
	}
}

// Start/Finalize brackets can be repeated and only arm what was set since
// the last Start.
//
func TestSession_brackets(t *testing.T) {
	f := newFixture(t)
	var nw, nb int
	f.s.Start()
	f.s.SetCallback(f.h("top.w"), counter(&nw), nil)
	f.s.Finalize()
	f.s.Start()
	f.s.SetCallback(f.h("top.b"), counter(&nb), nil)
	f.s.Finalize()
	f.s.Finalize() // ignored

	f.step("top.w", 1)
	f.step("top.b", 1)
	if nw != 1 || nb != 1 {
		t.Errorf("expected 1 call each, got %d and %d", nw, nb)
	}
	if !strings.Contains(f.log.String(), "Finalize called in state finalized") {
		t.Errorf("no warning logged:\n%s", f.log.String())
	}
}
