// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hdl

import (
	"strings"
	"unicode"

	wl "github.com/db47h/wavelog"
	"github.com/db47h/wavelog/internal/lex"
	"github.com/pkg/errors"
)

// Tokens
const (
	EOF lex.Type = lex.EOF
	Raw lex.Type = iota
	Ident
	Int
	Literal
	Punct
	Error
)

const puncts = "[]{}(),:;=~&|^?"

// maxInt bounds integers in design descriptions: indices, widths and
// replication counts.
//
const maxInt = 1 << 24

// Lexer returns a new lexer for design descriptions.
//
func Lexer(input string) lex.Interface {
	return lex.New(strings.NewReader(input), lexInit)
}

func lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == lex.EOF:
		return lexEOF
	case unicode.IsSpace(r):
		l.AcceptWhile(unicode.IsSpace)
	case r == '/' && l.Peek() == '/':
		l.AcceptWhile(func(r rune) bool { return r != '\n' })
	case unicode.IsLetter(r) || r == '_':
		return lexIdent
	case '0' <= r && r <= '9':
		return lexNumber
	case strings.ContainsRune(puncts, r):
		l.Emit(Punct, r)
	default:
		l.Emit(Raw, r)
		return lexEOF
	}
	return nil
}

// lexNumber lexes unsized decimal integers and sized literals like 4'b10xz,
// 8'hff or 6'd42.
//
func lexNumber(l *lex.Lexer) lex.StateFn {
	i := int(l.Current() - '0')
	r := l.Next()
	for '0' <= r && r <= '9' {
		if i = i*10 + int(r-'0'); i > maxInt {
			l.Emit(Error, "integer too large")
			return lexEOF
		}
		r = l.Next()
	}
	if r != '\'' {
		l.Backup()
		l.Emit(Int, i)
		return nil
	}
	base := unicode.ToLower(l.Next())
	var digits strings.Builder
	r = l.Next()
	for strings.ContainsRune("0123456789abcdefABCDEFxXzZ_", r) {
		if r != '_' {
			digits.WriteRune(unicode.ToLower(r))
		}
		r = l.Next()
	}
	l.Backup()
	v, err := literal(i, base, digits.String())
	if err != nil {
		l.Emit(Error, err.Error())
		return lexEOF
	}
	l.Emit(Literal, v)
	return nil
}

func lexIdent(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.Grow(8)
	buf.WriteRune(l.Current())
	r := l.Next()
	for unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' {
		buf.WriteRune(r)
		r = l.Next()
	}
	l.Backup()
	l.Emit(Ident, buf.String())
	return nil
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *lex.Lexer) lex.StateFn {
	l.Emit(lex.EOF, "end of input")
	return lexEOF
}

// literal decodes the digits of a sized literal. Values wider than the given
// width are truncated, narrower values are zero extended.
//
func literal(width int, base rune, digits string) (wl.Vector, error) {
	if width <= 0 || width > maxInt {
		return nil, errors.Errorf("invalid literal width %d", width)
	}
	if digits == "" {
		return nil, errors.Errorf("missing digits in literal")
	}
	var bits int
	switch base {
	case 'b':
		bits = 1
	case 'o':
		bits = 3
	case 'h':
		bits = 4
	case 'd':
		var u uint64
		for _, r := range digits {
			if r < '0' || r > '9' {
				return nil, errors.Errorf("invalid decimal digit %q", r)
			}
			u = u*10 + uint64(r-'0')
		}
		return wl.FromUint64(width, u), nil
	default:
		return nil, errors.Errorf("invalid literal base %q", base)
	}
	v := make(wl.Vector, width)
	pos := 0
	for i := len(digits) - 1; i >= 0 && pos < width; i-- {
		var d wl.Vector
		switch r := rune(digits[i]); {
		case r == 'x':
			d = wl.MakeVector(bits, wl.LX)
		case r == 'z':
			d = wl.MakeVector(bits, wl.LZ)
		default:
			n := strings.IndexRune("0123456789abcdef", r)
			if n < 0 || n >= 1<<uint(bits) {
				return nil, errors.Errorf("invalid digit %q for base %q", r, base)
			}
			d = wl.FromUint64(bits, uint64(n))
		}
		pos += copy(v[pos:], d)
	}
	return v, nil
}
