// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command wavelog simulates a design with random stimulus and logs value
// changes through a fast logging session. Values of secondary objects, those
// the optimizer folded away, are reconstructed from their map expressions
// after every clock cycle.
//
// Usage:
//
//	wavelog [flags] design.v
//
// Settings can also be read from a TOML file given with -config. Flags given
// on the command line override the file's settings:
//
//	optimize = true
//	cycles = 16
//	seed = 42
//
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	wl "github.com/db47h/wavelog"
	"github.com/db47h/wavelog/internal/hdl"
	"github.com/db47h/wavelog/recon"
	"github.com/db47h/wavelog/sim"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

type config struct {
	Optimize    bool  `toml:"optimize"`
	NoFastLog   bool  `toml:"no_fast_log"`
	Materialize bool  `toml:"materialize"`
	XZ          bool  `toml:"xz"`
	Cycles      int   `toml:"cycles"`
	Seed        int64 `toml:"seed"`
	Workers     int   `toml:"workers"`
	SPC         uint  `toml:"steps_per_cycle"`
	Verbose     bool  `toml:"verbose"`
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("wavelog: ")

	cfg := config{Cycles: 8, Seed: 1, SPC: 4}
	var cfgFile string
	flag.StringVar(&cfgFile, "config", "", "read settings from TOML `file`")
	flag.BoolVar(&cfg.Optimize, "O", cfg.Optimize, "enable the optimizer")
	flag.BoolVar(&cfg.NoFastLog, "nofastlog", cfg.NoFastLog, "disable fast logging in the simulator")
	flag.BoolVar(&cfg.Materialize, "materialize", cfg.Materialize, "also ask the simulator to materialize secondary objects")
	flag.BoolVar(&cfg.XZ, "xz", cfg.XZ, "include x and z bits in random stimulus")
	flag.IntVar(&cfg.Cycles, "cycles", cfg.Cycles, "number of clock cycles to simulate")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random stimulus seed")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of simulation goroutines (0 for GOMAXPROCS)")
	flag.UintVar(&cfg.SPC, "spc", cfg.SPC, "simulation steps per clock cycle")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "log session events to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] design.v\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if cfgFile != "" {
		if _, err := toml.DecodeFile(cfgFile, &cfg); err != nil {
			log.Fatal(err)
		}
		// command line flags take precedence.
		flag.Parse()
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	name := flag.Arg(0)
	var src []byte
	var err error
	if name == "-" {
		src, err = io.ReadAll(os.Stdin)
	} else {
		src, err = os.ReadFile(name)
	}
	if err != nil {
		log.Fatal(err)
	}
	if err = run(&cfg, name, string(src), newPrinter(os.Stdout)); err != nil {
		if errors.Cause(err) == wl.ErrUnavailable {
			log.Fatal(err, " (try without -nofastlog)")
		}
		log.Fatal(err)
	}
}

func run(cfg *config, name, src string, out *printer) error {
	d := sim.NewDesign()
	d.Optimize, d.NoFastLog = cfg.Optimize, cfg.NoFastLog
	if err := hdl.Read(d, name, src); err != nil {
		return err
	}
	bench, err := sim.NewBench(d, cfg.Seed)
	if err != nil {
		return err
	}
	bench.XZ = cfg.XZ
	c, err := sim.NewCircuit(cfg.Workers, cfg.SPC, d)
	if err != nil {
		return err
	}
	defer c.Dispose()

	var lc wl.Config
	if cfg.Verbose {
		lc.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	s, err := wl.Init(c, &lc)
	if err != nil {
		return err
	}
	defer s.Cleanup()

	rec := recon.NewRecorder(s)
	rec.OnChange = func(h wl.Handle, t uint64) {
		v, err := rec.Value(h)
		if err != nil {
			out.printf("%8d  %-24s %v", t, d.Name(h), err)
			return
		}
		out.printf("%8d  %-24s %s", t, d.Name(h), v)
	}

	out.printf("%-24s %-11s %s", "OBJECT", "CLASS", "VALUE")
	var secondaries []wl.Handle
	s.Start()
	for _, h := range d.Objects() {
		class := s.Classify(h)
		kind, size := s.ValueKind(h)
		note := ""
		switch class {
		case wl.Primary, wl.Literal:
			if !rec.Subscribe(h) {
				note = " (no fast callback)"
			}
		case wl.Secondary:
			secondaries = append(secondaries, h)
		}
		out.printf("%-24s %-11v %v/%d%s", d.Name(h), class, kind, size, note)
	}
	s.Finalize()

	if len(secondaries) > 0 {
		out.printf("")
		for _, h := range secondaries {
			n, alias := s.MapExpr(h)
			line := d.Name(h) + " = " + recon.String(n, d.Name)
			if alias {
				a, _ := s.AliasOf(h)
				line += "  (alias of " + d.Name(a) + ")"
			}
			out.printf("%s", line)
		}
	}
	if cfg.Materialize && len(secondaries) > 0 {
		s.Start()
		for _, h := range secondaries {
			rec.SubscribeSecondary(h)
		}
		s.Finalize()
	}

	out.printf("")
	res := rec.Resolver()
	for i := 0; i < cfg.Cycles; i++ {
		bench.Randomize()
		c.TickTock()
		for _, h := range secondaries {
			v, err := res.Value(h)
			if err != nil {
				out.printf("%8d  %-24s %v", c.Steps(), d.Name(h), err)
				continue
			}
			out.printf("%8d  %-24s %s (reconstructed)", c.Steps(), d.Name(h), v)
		}
	}
	return nil
}

// printer writes lines to a writer, truncated to the terminal's width.
//
type printer struct {
	w     io.Writer
	width int
}

func newPrinter(f *os.File) *printer {
	p := &printer{w: f}
	if fd := int(f.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			p.width = w
		}
	}
	return p
}

func (p *printer) printf(format string, args ...interface{}) {
	s := strings.TrimRight(fmt.Sprintf(format, args...), " ")
	if p.width > 0 && utf8.RuneCountInString(s) > p.width {
		n := 0
		for i := range s {
			if n == p.width-1 {
				s = s[:i] + "…"
				break
			}
			n++
		}
	}
	fmt.Fprintln(p.w, s)
}
