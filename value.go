// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wavelog

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Logic is a 4-state logic value.
//
type Logic uint8

// Logic values.
//
const (
	L0 Logic = iota
	L1
	LX // unknown
	LZ // high impedance
)

func (l Logic) String() string {
	if l > LZ {
		return "?"
	}
	return "01xz"[l : l+1]
}

// A Vector is a logic vector. Index 0 is the bit at the object's declared low
// bound (physical offset 0).
//
type Vector []Logic

// MakeVector returns a new vector of the given width with all bits set to l.
//
func MakeVector(width int, l Logic) Vector {
	v := make(Vector, width)
	if l != L0 {
		for i := range v {
			v[i] = l
		}
	}
	return v
}

// FromUint64 returns the width lower bits of u as a Vector. Bit 0 is lsb.
//
func FromUint64(width int, u uint64) Vector {
	v := make(Vector, width)
	for bit := range v {
		if bit < 64 && u&(1<<uint(bit)) != 0 {
			v[bit] = L1
		}
	}
	return v
}

// Uint64 returns v as an uint64. The second return value is false if v
// contains X or Z bits or does not fit in 64 bits.
//
func (v Vector) Uint64() (uint64, bool) {
	var u uint64
	for bit, l := range v {
		switch l {
		case L0:
		case L1:
			if bit >= 64 {
				return u, false
			}
			u |= 1 << uint(bit)
		default:
			return u, false
		}
	}
	return u, true
}

// Equal returns true if v and w are identical.
//
func (v Vector) Equal(w Vector) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}
	return true
}

// Copy returns a copy of v.
//
func (v Vector) Copy() Vector {
	return append(Vector(nil), v...)
}

// String returns v msb first, like "10xz".
//
func (v Vector) String() string {
	var b strings.Builder
	b.Grow(len(v))
	for i := len(v) - 1; i >= 0; i-- {
		b.WriteString(v[i].String())
	}
	return b.String()
}

// ParseVector parses a string of 0, 1, x and z characters, msb first.
// Underscores are ignored.
//
func ParseVector(s string) (Vector, error) {
	v := make(Vector, 0, len(s))
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '0':
			v = append(v, L0)
		case '1':
			v = append(v, L1)
		case 'x', 'X':
			v = append(v, LX)
		case 'z', 'Z', '?':
			v = append(v, LZ)
		case '_':
		default:
			return nil, errors.Errorf("invalid logic value %q in %q", s[i], s)
		}
	}
	if len(v) == 0 {
		return nil, errors.Errorf("empty vector %q", s)
	}
	return v, nil
}

// ValueKind describes how to interpret a value Location.
//
type ValueKind uint8

// Value location kinds.
//
const (
	KindNone     ValueKind = iota
	TwoState             // aval words only
	FourState            // aval/bval word pairs
	ForeignValue         // VHDL value buffer, one std_ulogic byte per bit
)

var kindNames = [...]string{
	KindNone:     "none",
	TwoState:     "2-state",
	FourState:    "4-state",
	ForeignValue: "vhdl",
}

func (k ValueKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "ValueKind(" + strconv.Itoa(int(k)) + ")"
}

// size returns the location size for width bits: 32 bit words for TwoState
// and FourState, bytes for ForeignValue.
//
func (k ValueKind) size(width int) int {
	switch k {
	case TwoState, FourState:
		return (width + 31) / 32
	case ForeignValue:
		return width
	}
	return 0
}

// std_ulogic positions in a VHDL value buffer.
//
const (
	StdU byte = iota
	StdX
	Std0
	Std1
	StdZ
	StdW
	StdL
	StdH
	StdDash
)

// Strength is a drive strength, weakest first.
//
type Strength uint8

// Drive strengths.
//
const (
	HighZ Strength = iota
	Small
	Medium
	Weak
	Large
	Pull
	Strong
	Supply
)

var strengthNames = [...]string{"highz", "small", "medium", "weak", "large", "pull", "strong", "supply"}

func (s Strength) String() string {
	if int(s) < len(strengthNames) {
		return strengthNames[s]
	}
	return "Strength(" + strconv.Itoa(int(s)) + ")"
}

// StrengthVal is a logic value together with its 0 and 1 drive strengths.
//
type StrengthVal struct {
	Logic  Logic
	S0, S1 Strength
}

// A Location is a value buffer owned by the kernel. Locations returned by
// fast callback setup are updated in place by the kernel before callbacks are
// invoked.
//
type Location struct {
	kind  ValueKind
	width int
	aval  []uint32
	bval  []uint32
	buf   []byte
	str   []Strength
}

// NewLocation returns a new location of the given kind and width. All bits
// start at 0. If strength is true, the location also holds per-bit drive
// strengths.
//
// Locations are allocated by kernels; clients only read them.
//
func NewLocation(kind ValueKind, width int, strength bool) *Location {
	l := &Location{kind: kind, width: width}
	switch kind {
	case TwoState:
		l.aval = make([]uint32, kind.size(width))
	case FourState:
		l.aval = make([]uint32, kind.size(width))
		l.bval = make([]uint32, kind.size(width))
	case ForeignValue:
		l.buf = make([]byte, width)
		for i := range l.buf {
			l.buf[i] = Std0
		}
	default:
		panic("invalid location kind " + kind.String())
	}
	if strength {
		l.str = make([]Strength, width)
	}
	return l
}

// Kind returns the location's kind.
//
func (l *Location) Kind() ValueKind { return l.kind }

// Width returns the bit width of the value.
//
func (l *Location) Width() int { return l.width }

// Size returns the size of the location in 32 bit words for TwoState and
// FourState, and in bytes for ForeignValue.
//
func (l *Location) Size() int { return l.kind.size(l.width) }

// Aval returns the aval words of a TwoState or FourState location.
//
func (l *Location) Aval() []uint32 { return l.aval }

// Bval returns the bval words of a FourState location.
//
func (l *Location) Bval() []uint32 { return l.bval }

// Bytes returns the value buffer of a ForeignValue location.
//
func (l *Location) Bytes() []byte { return l.buf }

func (l *Location) get(i int) Logic {
	switch l.kind {
	case ForeignValue:
		switch l.buf[i] {
		case Std0, StdL:
			return L0
		case Std1, StdH:
			return L1
		case StdZ:
			return LZ
		}
		return LX
	case TwoState:
		return Logic(l.aval[i/32] >> uint(i%32) & 1)
	}
	w, m := i/32, uint(i%32)
	a, b := l.aval[w]>>m&1, l.bval[w]>>m&1
	switch {
	case b == 0:
		return Logic(a)
	case a == 0:
		return LZ
	}
	return LX
}

func (l *Location) set(i int, v Logic) {
	switch l.kind {
	case ForeignValue:
		l.buf[i] = [...]byte{Std0, Std1, StdX, StdZ}[v&3]
		return
	case TwoState:
		if v != L1 {
			v = L0
		}
	}
	w, m := i/32, uint32(1)<<uint(i%32)
	// aval/bval encoding: 0 = 00, 1 = 10, z = 01, x = 11 (bval, aval)
	a, b := v == L1 || v == LX, v == LX || v == LZ
	if a {
		l.aval[w] |= m
	} else {
		l.aval[w] &^= m
	}
	if l.bval == nil {
		return
	}
	if b {
		l.bval[w] |= m
	} else {
		l.bval[w] &^= m
	}
}

// Load decodes the location's value.
//
func (l *Location) Load() Vector {
	v := make(Vector, l.width)
	for i := range v {
		v[i] = l.get(i)
	}
	return v
}

// Store encodes v into the location and returns true if the stored value
// changed. Bits beyond len(v) are set to 0; X and Z are stored as 0 in
// TwoState locations.
//
func (l *Location) Store(v Vector) bool {
	changed := false
	for i := 0; i < l.width; i++ {
		n := L0
		if i < len(v) {
			n = v[i]
		}
		if l.kind == TwoState && n != L1 {
			n = L0
		}
		if l.get(i) != n {
			l.set(i, n)
			changed = true
		}
	}
	return changed
}

// SetStrength sets the drive strength of all bits. It is a no-op for
// locations allocated without strength.
//
func (l *Location) SetStrength(s Strength) {
	for i := range l.str {
		l.str[i] = s
	}
}

// ValAndStrength returns the value and drive strengths of a bit in a
// location returned by SetStrengthCallback. Locations without strength report
// a strong drive.
//
func (l *Location) ValAndStrength(bit int) StrengthVal {
	s := Strong
	if l.str != nil {
		s = l.str[bit]
	}
	v := l.get(bit)
	switch v {
	case L0:
		return StrengthVal{v, s, HighZ}
	case L1:
		return StrengthVal{v, HighZ, s}
	case LX:
		return StrengthVal{v, s, s}
	}
	return StrengthVal{v, HighZ, HighZ}
}
