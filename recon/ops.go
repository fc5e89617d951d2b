// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package recon

import (
	wl "github.com/db47h/wavelog"
)

// truth tables, indexed by wl.Logic (0, 1, x, z).
//
var (
	notTable = [4]wl.Logic{wl.L1, wl.L0, wl.LX, wl.LX}
	bufTable = [4]wl.Logic{wl.L0, wl.L1, wl.LX, wl.LX}
	andTable = [4][4]wl.Logic{
		{wl.L0, wl.L0, wl.L0, wl.L0},
		{wl.L0, wl.L1, wl.LX, wl.LX},
		{wl.L0, wl.LX, wl.LX, wl.LX},
		{wl.L0, wl.LX, wl.LX, wl.LX},
	}
	orTable = [4][4]wl.Logic{
		{wl.L0, wl.L1, wl.LX, wl.LX},
		{wl.L1, wl.L1, wl.L1, wl.L1},
		{wl.LX, wl.L1, wl.LX, wl.LX},
		{wl.LX, wl.L1, wl.LX, wl.LX},
	}
	xorTable = [4][4]wl.Logic{
		{wl.L0, wl.L1, wl.LX, wl.LX},
		{wl.L1, wl.L0, wl.LX, wl.LX},
		{wl.LX, wl.LX, wl.LX, wl.LX},
		{wl.LX, wl.LX, wl.LX, wl.LX},
	}
)

func unary(t *[4]wl.Logic, a wl.Vector) wl.Vector {
	r := make(wl.Vector, len(a))
	for i, l := range a {
		r[i] = t[l&3]
	}
	return r
}

// binary applies t bitwise. The narrower operand is zero extended.
//
func binary(t *[4][4]wl.Logic, a, b wl.Vector) wl.Vector {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	a, b = Resize(a, n), Resize(b, n)
	r := make(wl.Vector, n)
	for i := range r {
		r[i] = t[a[i]&3][b[i]&3]
	}
	return r
}

// Not returns ~a.
//
func Not(a wl.Vector) wl.Vector { return unary(&notTable, a) }

// Buf returns a through a Verilog buf primitive: z inputs yield x.
//
func Buf(a wl.Vector) wl.Vector { return unary(&bufTable, a) }

// And returns a & b.
//
func And(a, b wl.Vector) wl.Vector { return binary(&andTable, a, b) }

// Or returns a | b.
//
func Or(a, b wl.Vector) wl.Vector { return binary(&orTable, a, b) }

// Xor returns a ^ b.
//
func Xor(a, b wl.Vector) wl.Vector { return binary(&xorTable, a, b) }

// Replicate returns {n{a}}.
//
func Replicate(n int, a wl.Vector) wl.Vector {
	if n < 0 {
		n = 0
	}
	r := make(wl.Vector, 0, n*len(a))
	for i := 0; i < n; i++ {
		r = append(r, a...)
	}
	return r
}

// Concat returns {xs[0], xs[1], ...}: xs[0] ends up in the most significant
// bits.
//
func Concat(xs ...wl.Vector) wl.Vector {
	var r wl.Vector
	for i := len(xs) - 1; i >= 0; i-- {
		r = append(r, xs[i]...)
	}
	return r
}

// Select returns cond ? t : f. A condition is true if any of its bits is 1
// and false if all bits are 0. Otherwise bits that differ between t and f
// are x.
//
func Select(cond, t, f wl.Vector) wl.Vector {
	c := wl.L0
	for _, l := range cond {
		if l == wl.L1 {
			c = wl.L1
			break
		}
		if l != wl.L0 {
			c = wl.LX
		}
	}
	n := len(t)
	if len(f) > n {
		n = len(f)
	}
	switch c {
	case wl.L1:
		return Resize(t, n)
	case wl.L0:
		return Resize(f, n)
	}
	t, f = Resize(t, n), Resize(f, n)
	r := make(wl.Vector, n)
	for i := range r {
		if t[i] == f[i] && t[i] != wl.LZ {
			r[i] = t[i]
		} else {
			r[i] = wl.LX
		}
	}
	return r
}

// Slice returns bits lsb to msb (inclusive) of v. Bits out of range are x.
//
func Slice(v wl.Vector, lsb, msb int) wl.Vector {
	if msb < lsb {
		lsb, msb = msb, lsb
	}
	r := make(wl.Vector, msb-lsb+1)
	for i := range r {
		if j := lsb + i; j >= 0 && j < len(v) {
			r[i] = v[j]
		} else {
			r[i] = wl.LX
		}
	}
	return r
}

// Resize zero extends or truncates v to n bits. It returns v itself if
// len(v) == n.
//
func Resize(v wl.Vector, n int) wl.Vector {
	if len(v) == n {
		return v
	}
	r := make(wl.Vector, n)
	copy(r, v)
	return r
}

// TwoState returns v with x and z bits set to 0, as stored by 2-state
// objects.
//
func TwoState(v wl.Vector) wl.Vector {
	r := make(wl.Vector, len(v))
	for i, l := range v {
		if l == wl.L1 {
			r[i] = wl.L1
		}
	}
	return r
}
