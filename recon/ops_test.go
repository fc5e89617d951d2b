package recon_test

import (
	"testing"
	"testing/quick"

	wl "github.com/db47h/wavelog"
	"github.com/db47h/wavelog/recon"
)

func vec(s string) wl.Vector {
	v, err := wl.ParseVector(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestOps(t *testing.T) {
	data := []struct {
		name string
		f    func() wl.Vector
		exp  string
	}{
		{"not", func() wl.Vector { return recon.Not(vec("01xz")) }, "10xx"},
		{"buf", func() wl.Vector { return recon.Buf(vec("01xz")) }, "01xx"},
		{"and", func() wl.Vector { return recon.And(vec("0000_1111_xxxx_zzzz"), vec("01xz_01xz_01xz_01xz")) }, "0000_01xx_0xxx_0xxx"},
		{"or", func() wl.Vector { return recon.Or(vec("0000_1111_xxxx_zzzz"), vec("01xz_01xz_01xz_01xz")) }, "01xx_1111_x1xx_x1xx"},
		{"xor", func() wl.Vector { return recon.Xor(vec("0000_1111_xxxx_zzzz"), vec("01xz_01xz_01xz_01xz")) }, "01xx_10xx_xxxx_xxxx"},
		{"zext", func() wl.Vector { return recon.Or(vec("1"), vec("1000")) }, "1001"},
		{"replicate", func() wl.Vector { return recon.Replicate(3, vec("1z")) }, "1z1z1z"},
		{"replicate0", func() wl.Vector { return recon.Replicate(0, vec("1")) }, ""},
		{"concat", func() wl.Vector { return recon.Concat(vec("10"), vec("x"), vec("0z1")) }, "10x0z1"},
		{"select1", func() wl.Vector { return recon.Select(vec("0100"), vec("1100"), vec("0")) }, "1100"},
		{"select0", func() wl.Vector { return recon.Select(vec("0"), vec("11"), vec("0101")) }, "0101"},
		{"selectx", func() wl.Vector { return recon.Select(vec("x0"), vec("1z10"), vec("1z01")) }, "1xxx"},
		{"slice", func() wl.Vector { return recon.Slice(vec("1100"), 1, 2) }, "10"},
		{"slice_rev", func() wl.Vector { return recon.Slice(vec("1100"), 3, 2) }, "11"},
		{"slice_oob", func() wl.Vector { return recon.Slice(vec("11"), 1, 3) }, "xx1"},
		{"twostate", func() wl.Vector { return recon.TwoState(vec("1xz0")) }, "1000"},
		{"truncate", func() wl.Vector { return recon.Resize(vec("1011"), 2) }, "11"},
	}
	for _, td := range data {
		exp := ""
		if td.exp != "" {
			exp = vec(td.exp).String()
		}
		if got := td.f().String(); got != exp {
			t.Errorf("%s: expected %s, got %s", td.name, exp, got)
		}
	}
}

// 2-state vectors follow boolean algebra.
//
func TestOps_boolean(t *testing.T) {
	v := func(u uint64) wl.Vector { return wl.FromUint64(64, u) }
	f := func(a, b uint64) bool {
		x, y := v(a), v(b)
		return recon.Not(recon.Not(x)).Equal(x) &&
			recon.Not(recon.And(x, y)).Equal(recon.Or(recon.Not(x), recon.Not(y))) &&
			recon.Xor(x, y).Equal(v(a^b)) &&
			recon.Buf(x).Equal(x)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
