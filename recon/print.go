// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package recon

import (
	"strconv"
	"strings"

	wl "github.com/db47h/wavelog"
)

// String returns a Verilog like rendition of n. name returns the name of
// terminal objects; if nil, handles are printed instead.
//
// Bit and part selects print physical offsets, lsb first: p[lsb:msb].
//
func String(n wl.Node, name func(wl.Handle) string) string {
	if name == nil {
		name = wl.Handle.String
	}
	var b strings.Builder
	write(&b, n, name)
	return b.String()
}

func write(b *strings.Builder, n wl.Node, name func(wl.Handle) string) {
	switch n := n.(type) {
	case *wl.VarRef:
		b.WriteString(name(n.Handle()))
	case *wl.BitSelect:
		b.WriteString(name(n.Handle()))
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(n.Offset()))
		b.WriteByte(']')
	case *wl.PartSelect:
		b.WriteString(name(n.Handle()))
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(n.Lsb()))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(n.Msb()))
		b.WriteByte(']')
	case *wl.Prefix:
		if n.Op() == wl.OpBitBuf {
			b.WriteString("buf(")
			write(b, n.Operand(), name)
			b.WriteByte(')')
			return
		}
		b.WriteByte('~')
		write(b, n.Operand(), name)
	case *wl.Infix:
		b.WriteByte('(')
		write(b, n.Lhs(), name)
		b.WriteByte(' ')
		b.WriteString(n.Op().String())
		b.WriteByte(' ')
		write(b, n.Rhs(), name)
		b.WriteByte(')')
	case *wl.Replicate:
		b.WriteByte('{')
		b.WriteString(strconv.Itoa(n.Count()))
		b.WriteByte('{')
		write(b, n.Operand(), name)
		b.WriteString("}}")
	case *wl.Concat:
		b.WriteByte('{')
		for i := 0; i < n.Len(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			write(b, n.Operand(i), name)
		}
		b.WriteByte('}')
	case *wl.Ternary:
		b.WriteByte('(')
		write(b, n.Cond(), name)
		b.WriteString(" ? ")
		write(b, n.Then(), name)
		b.WriteString(" : ")
		write(b, n.Else(), name)
		b.WriteByte(')')
	case *wl.Const:
		b.WriteString(strconv.Itoa(n.Width()))
		b.WriteString("'b")
		b.WriteString(n.Value().String())
	case nil:
		b.WriteString("<nil>")
	default:
		b.WriteString("<unexpected map expression " + n.Op().String() + ">")
	}
}
