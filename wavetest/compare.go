// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package wavetest provides utility functions for testing fast logging
// clients against simulated circuits.
//
package wavetest

import (
	"testing"
	"time"

	wl "github.com/db47h/wavelog"
	"github.com/db47h/wavelog/recon"
	"github.com/db47h/wavelog/sim"
)

// CompareReconstruction builds a circuit from d, drives its undriven objects
// with random values for the given number of clock cycles and checks after
// every cycle that the value of every Secondary object, as reconstructed from
// its map expression, is the value computed by the simulator.
//
func CompareReconstruction(t *testing.T, d *sim.Design, cycles int, seed int64) {
	t.Helper()

	bench, err := sim.NewBench(d, seed)
	if err != nil {
		t.Fatal(err)
	}
	bench.XZ = true
	c, err := sim.NewCircuit(0, 4, d)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()
	s, err := wl.Init(c, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Cleanup()

	rec := recon.NewRecorder(s)
	var secondaries []wl.Handle
	s.Start()
	for _, h := range d.Objects() {
		switch s.Classify(h) {
		case wl.Primary, wl.Literal:
			rec.Subscribe(h)
		case wl.Secondary:
			secondaries = append(secondaries, h)
		}
	}
	s.Finalize()
	if len(secondaries) == 0 {
		t.Log("no secondary objects")
	}
	res := rec.Resolver()

	start := time.Now()
	for i := 0; i < cycles; i++ {
		bench.Randomize()
		c.TickTock()
		for _, h := range secondaries {
			got, err := res.Value(h)
			if err != nil {
				t.Fatalf("%s: %v", d.Name(h), err)
			}
			exp, err := c.Value(h)
			if err != nil {
				t.Fatalf("%s: %v", d.Name(h), err)
			}
			if !got.Equal(exp) {
				n, _ := s.MapExpr(h)
				t.Fatalf("step %d: %s\n%s = %s\nExpected %s\nGot %s",
					c.Steps(), bench.Values(), d.Name(h), recon.String(n, d.Name), exp, got)
			}
		}
	}

	elapsed := time.Since(start)
	ticks := c.Steps() / uint64(c.SPC())
	t.Logf("%d objects, %d secondary. %d steps in %v. %d clock ticks => %.2f Hz",
		len(d.Objects()), len(secondaries), c.Steps(), elapsed, ticks, float64(ticks)/(float64(elapsed)/float64(time.Second)))
}
