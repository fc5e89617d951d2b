package wavelog_test

import (
	"fmt"

	wl "github.com/db47h/wavelog"
	"github.com/db47h/wavelog/internal/hdl"
	"github.com/db47h/wavelog/recon"
	"github.com/db47h/wavelog/sim"
)

func ExampleSession_MapExpr() {
	d := sim.NewDesign()
	d.Optimize = true
	err := hdl.Read(d, "example", `
		module top;
		  wire [3:0] a;
		  wire [3:0] b;
		  wire [3:0] c = a & ~b;
		  wire [1:0] hi = c[3:2];
		  wire [3:0] d = a & ~b;
		  const [1:0] k = 2'b10;
		  wire dead;
		endmodule`)
	if err != nil {
		panic(err)
	}
	// a and b need a driver, or the optimizer removes them.
	for _, n := range []string{"top.a", "top.b"} {
		h, _ := d.Lookup(n)
		d.DriveUint64(h, func() uint64 { return 0 })
	}
	c, err := sim.NewCircuit(1, 2, d)
	if err != nil {
		panic(err)
	}
	defer c.Dispose()

	s, err := wl.Init(c, nil)
	if err != nil {
		panic(err)
	}
	defer s.Cleanup()

	for _, h := range d.Objects()[1:] {
		class := s.Classify(h)
		if class != wl.Secondary {
			fmt.Printf("%s: %v\n", d.Name(h), class)
			continue
		}
		n, alias := s.MapExpr(h)
		if alias {
			a, _ := s.AliasOf(h)
			fmt.Printf("%s: alias of %s\n", d.Name(h), d.Name(a))
			continue
		}
		fmt.Printf("%s = %s\n", d.Name(h), recon.String(n, d.Name))
	}
	// Output:
	// top.a: primary
	// top.b: primary
	// top.c = (top.a & ~top.b)
	// top.hi = top.c[2:3]
	// top.d: alias of top.c
	// top.k: literal
	// top.dead: unavailable
}
