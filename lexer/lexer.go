// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lexer turns duh source text into a token stream, the external
// collaborator that feeds package parser.
package lexer

import (
	"unicode"

	"github.com/pkg/errors"

	"github.com/mhorod/duh/internal/token"
)

// Error reports a lexical error at a source location.
type Error struct {
	Span token.Span
	Msg  string
}

func (e *Error) Error() string {
	return e.Span.String() + ": " + e.Msg
}

// multiCharOperators are the operators longer than one character; they
// are tried before single-character operators so the longest match wins.
var multiCharOperators = []string{"==", "!=", "<=", ">=", "<<", ">>", "++", "--"}

// Lex tokenizes source text from file (used only for error spans) and
// returns the resulting token stream, terminated by a KindEOF token.
func Lex(file, src string) ([]token.Token, error) {
	l := &lexState{file: file, src: []rune(src)}
	var tokens []token.Token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
		if t.Kind == token.KindEOF {
			return tokens, nil
		}
	}
}

type lexState struct {
	file string
	src  []rune
	pos  int
	line int
	col  int
}

func (l *lexState) span() token.Span {
	return token.Span{File: l.file, Line: l.line + 1, Col: l.col + 1}
}

func (l *lexState) peek() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *lexState) peekAt(offset int) (rune, bool) {
	if l.pos+offset >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos+offset], true
}

func (l *lexState) advance() {
	c, ok := l.peek()
	if !ok {
		return
	}
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *lexState) skipSpaceAndComments() {
	for {
		c, ok := l.peek()
		if !ok {
			return
		}
		if unicode.IsSpace(c) {
			l.advance()
			continue
		}
		if c == '/' {
			if n, ok := l.peekAt(1); ok && n == '/' {
				for {
					c, ok := l.peek()
					if !ok || c == '\n' {
						break
					}
					l.advance()
				}
				continue
			}
		}
		return
	}
}

func isIdentStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

func isIdentCont(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}

func isLiteralStart(c rune) bool {
	return unicode.IsDigit(c)
}

func isLiteralCont(c rune) bool {
	return unicode.IsDigit(c) || c == 'x' || c == 'o' || c == 'b' ||
		(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (l *lexState) next() (token.Token, error) {
	l.skipSpaceAndComments()
	sp := l.span()
	c, ok := l.peek()
	if !ok {
		return token.Token{Kind: token.KindEOF, Span: sp}, nil
	}

	// Negative literal: '-' immediately followed by a digit is lexed as
	// one literal token, matching duh/lang.py's literal_to_value which
	// accepts a leading '-'.
	if c == '-' {
		if n, ok := l.peekAt(1); ok && unicode.IsDigit(n) {
			return l.lexLiteral(sp), nil
		}
	}

	if isLiteralStart(c) {
		return l.lexLiteral(sp), nil
	}

	if isIdentStart(c) {
		start := l.pos
		for {
			c, ok := l.peek()
			if !ok || !isIdentCont(c) {
				break
			}
			l.advance()
		}
		text := string(l.src[start:l.pos])
		if kw, ok := token.Keywords[text]; ok {
			return token.Token{Kind: token.KindKeyword, Text: text, Keyword: kw, Span: sp}, nil
		}
		return token.Token{Kind: token.KindIdentifier, Text: text, Span: sp}, nil
	}

	for _, op := range multiCharOperators {
		if l.matches(op) {
			for range op {
				l.advance()
			}
			return token.Token{Kind: token.KindOperator, Text: op, Op: token.Operators[op], Span: sp}, nil
		}
	}

	text := string(c)
	if op, ok := token.Operators[text]; ok {
		l.advance()
		return token.Token{Kind: token.KindOperator, Text: text, Op: op, Span: sp}, nil
	}
	if sym, ok := token.Symbols[text]; ok {
		l.advance()
		return token.Token{Kind: token.KindSymbol, Text: text, Symbol: sym, Span: sp}, nil
	}

	return token.Token{}, errors.WithStack(&Error{Span: sp, Msg: "unexpected character " + strconvQuote(c)})
}

func (l *lexState) matches(s string) bool {
	for i, want := range s {
		got, ok := l.peekAt(i)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func (l *lexState) lexLiteral(sp token.Span) token.Token {
	start := l.pos
	if c, ok := l.peek(); ok && c == '-' {
		l.advance()
	}
	for {
		c, ok := l.peek()
		if !ok || !isLiteralCont(c) {
			break
		}
		l.advance()
	}
	text := string(l.src[start:l.pos])
	value, _ := token.ParseLiteral(text)
	return token.Token{Kind: token.KindLiteral, Text: text, Value: value, Span: sp}
}

func strconvQuote(c rune) string {
	return "'" + string(c) + "'"
}
