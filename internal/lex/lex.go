// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lex provides a state function based lexer.
//
// A lexer is driven by state functions. Each state function consumes input
// with Next, emits tokens with Emit and returns the next state function. A
// state function returning nil resets the lexer to its initial state.
//
package lex

import (
	"fmt"
	"io"
)

// EOF is returned by Next at end of input. It is also the type of the End Of
// File token.
//
const EOF = -1

// Type is a token type. Types < 0 are reserved.
//
type Type int

// Pos is a rune offset in the input.
//
type Pos int

// Item is a lexical token.
//
type Item struct {
	Type  Type
	Pos   Pos
	Value interface{}
}

func (i *Item) String() string {
	switch v := i.Value.(type) {
	case string:
		return v
	case rune:
		return string(v)
	}
	return fmt.Sprint(i.Value)
}

// A StateFn is a state function.
//
type StateFn func(l *Lexer) StateFn

// Interface is implemented by lexers.
//
type Interface interface {
	// Lex returns the next token.
	Lex() Item
}

// Lexer is a state function based lexer.
//
type Lexer struct {
	in    []rune
	pos   Pos // position of the next rune
	start Pos // start of the current token
	cur   rune
	init  StateFn
	state StateFn
	items []Item
	err   error
}

// New returns a new lexer reading from r. init is the initial state
// function.
//
func New(r io.Reader, init StateFn) *Lexer {
	b, err := io.ReadAll(r)
	return &Lexer{in: []rune(string(b)), init: init, err: err}
}

// Lex implements Interface. Read errors are reported as EOF items with the
// error as Value.
//
func (l *Lexer) Lex() Item {
	if l.err != nil {
		return Item{Type: EOF, Value: l.err}
	}
	for len(l.items) == 0 {
		if l.state == nil {
			l.state = l.init
			l.start = l.pos
		}
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

// Next returns the next rune in the input, or EOF.
//
func (l *Lexer) Next() rune {
	if int(l.pos) >= len(l.in) {
		l.cur = EOF
		l.pos = Pos(len(l.in)) + 1
		return EOF
	}
	l.cur = l.in[l.pos]
	l.pos++
	return l.cur
}

// Peek returns the next rune without consuming it.
//
func (l *Lexer) Peek() rune {
	if int(l.pos) >= len(l.in) {
		return EOF
	}
	return l.in[l.pos]
}

// Backup reverts the last call to Next. It can be called only once per call
// to Next.
//
func (l *Lexer) Backup() {
	l.pos--
	if p := int(l.pos) - 1; p >= 0 && p < len(l.in) {
		l.cur = l.in[p]
	}
}

// Current returns the last rune returned by Next.
//
func (l *Lexer) Current() rune { return l.cur }

// Pos returns the position of the last rune returned by Next.
//
func (l *Lexer) Pos() Pos { return l.pos - 1 }

// Emit emits a token of type t starting at the beginning of the current
// token. The next token starts after the last rune returned by Next.
//
func (l *Lexer) Emit(t Type, value interface{}) {
	start := l.start
	if int(start) > len(l.in) {
		start = Pos(len(l.in))
	}
	l.items = append(l.items, Item{t, start, value})
	l.start = l.pos
}

// AcceptWhile consumes runes while f returns true.
//
func (l *Lexer) AcceptWhile(f func(rune) bool) {
	for r := l.Next(); r != EOF && f(r); r = l.Next() {
	}
	l.Backup()
}
