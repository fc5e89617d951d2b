package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	wl "github.com/db47h/wavelog"
	"github.com/pkg/errors"
)

const testDesign = `module top;
  wire [3:0] a;
  logic [3:0] b;
  wire [3:0] c = a & ~b;
  wire [3:0] c2 = a & ~b;
  const [1:0] k = 2'b10;
endmodule
`

func row(name string, c wl.Class) string {
	return fmt.Sprintf("%-24s %-11v %v/%d", name, c, wl.TwoState, 1)
}

func Test_run(t *testing.T) {
	var buf bytes.Buffer
	cfg := config{Optimize: true, Cycles: 2, Seed: 1, SPC: 4, Materialize: true}
	if err := run(&cfg, "test.v", testDesign, &printer{w: &buf}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{
		row("top.a", wl.Primary),
		row("top.c", wl.Secondary),
		row("top.k", wl.Literal),
		"top.c = (top.a & ~top.b)",
		"top.c2 = (top.a & ~top.b)  (alias of top.c)",
		"(reconstructed)",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output does not contain %q:\n%s", s, out)
		}
	}
}

func Test_run_noFastLog(t *testing.T) {
	var buf bytes.Buffer
	cfg := config{NoFastLog: true, Cycles: 1, SPC: 4}
	err := run(&cfg, "test.v", testDesign, &printer{w: &buf})
	if errors.Cause(err) != wl.ErrUnavailable {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func Test_printer(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf, width: 8}
	p.printf("%s", "0123456789")
	p.printf("%-6s", "ab")
	p.printf("%s", "éééééééé")
	p.printf("%s", "ééééééééé")
	if s := buf.String(); s != "0123456…\nab\néééééééé\nééééééé…\n" {
		t.Errorf("got %q", s)
	}
}
