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

// Package parser builds an ast.Program from a token stream produced by
// package lexer, the external collaborator pair grounded on duh/parser.py.
package parser

import (
	"github.com/pkg/errors"

	"github.com/mhorod/duh/ast"
	"github.com/mhorod/duh/internal/token"
)

// ErrUnexpectedToken is returned when the parser encounters a token that
// cannot begin or continue the construct it is parsing.
var ErrUnexpectedToken = errors.New("unexpected token")

// ErrUnexpectedEOF is returned when the token stream ends before a
// construct is complete.
var ErrUnexpectedEOF = errors.New("unexpected end of input")

// Parse consumes tokens (as produced by lexer.Lex, including the
// trailing KindEOF token) and returns the parsed program.
func Parse(tokens []token.Token) (*ast.Program, error) {
	p := &parser{tokens: tokens}
	stmts, err := p.statements(func(t token.Token) bool { return t.Kind == token.KindEOF })
	if err != nil {
		return nil, err
	}
	return &ast.Program{Statements: stmts}, nil
}

type parser struct {
	tokens []token.Token
	pos    int
}

func (p *parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *parser) atEOF() bool {
	return p.peek().Kind == token.KindEOF
}

func (p *parser) advance() token.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expectSymbol(sym token.Symbol) (token.Token, error) {
	t := p.peek()
	if t.Kind == token.KindEOF {
		return t, errors.Wrapf(ErrUnexpectedEOF, "expected %q", sym)
	}
	if t.Kind != token.KindSymbol || t.Symbol != sym {
		return t, errors.Wrapf(ErrUnexpectedToken, "at %s: expected %q, got %q", t.Span, sym, t.Text)
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(kw token.Keyword) (token.Token, error) {
	t := p.peek()
	if t.Kind == token.KindEOF {
		return t, errors.Wrapf(ErrUnexpectedEOF, "expected %q", kw)
	}
	if t.Kind != token.KindKeyword || t.Keyword != kw {
		return t, errors.Wrapf(ErrUnexpectedToken, "at %s: expected %q, got %q", t.Span, kw, t.Text)
	}
	return p.advance(), nil
}

func (p *parser) expectIdentifier() (token.Token, error) {
	t := p.peek()
	if t.Kind == token.KindEOF {
		return t, errors.Wrap(ErrUnexpectedEOF, "expected identifier")
	}
	if t.Kind != token.KindIdentifier {
		return t, errors.Wrapf(ErrUnexpectedToken, "at %s: expected identifier, got %q", t.Span, t.Text)
	}
	return p.advance(), nil
}

// statements parses zero or more statements until stop reports true for
// the lookahead token.
func (p *parser) statements(stop func(token.Token) bool) ([]ast.Node, error) {
	var stmts []ast.Node
	for !stop(p.peek()) {
		if p.atEOF() {
			return nil, errors.Wrap(ErrUnexpectedEOF, "in statement list")
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func (p *parser) block() (*ast.Block, error) {
	if _, err := p.expectSymbol(token.LeftBrace); err != nil {
		return nil, err
	}
	stmts, err := p.statements(func(t token.Token) bool {
		return t.Kind == token.KindSymbol && t.Symbol == token.RightBrace
	})
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(token.RightBrace); err != nil {
		return nil, err
	}
	return &ast.Block{Statements: stmts}, nil
}

// statement dispatches on the leading token the way duh/parser.py's
// keyword_to_parser table does: a fixed set of keyword-led statement
// forms, else an expression statement terminated by ';'.
func (p *parser) statement() (ast.Node, error) {
	t := p.peek()
	if t.Kind == token.KindKeyword {
		switch t.Keyword {
		case token.Var:
			return p.varDecl()
		case token.Cell:
			return p.cellDecl()
		case token.If:
			return p.ifStatement()
		case token.While:
			return p.whileStatement()
		case token.Print:
			return p.printStatement()
		}
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(token.Semicolon); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) varDecl() (ast.Node, error) {
	if _, err := p.expectKeyword(token.Var); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(token.Semicolon); err != nil {
		return nil, err
	}
	return &ast.VarDecl{Name: name.Text}, nil
}

func (p *parser) cellDecl() (ast.Node, error) {
	if _, err := p.expectKeyword(token.Cell); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(token.Colon); err != nil {
		return nil, err
	}
	addrTok := p.peek()
	if addrTok.Kind != token.KindLiteral {
		return nil, errors.Wrapf(ErrUnexpectedToken, "at %s: expected cell address literal, got %q", addrTok.Span, addrTok.Text)
	}
	p.advance()
	if _, err := p.expectSymbol(token.Semicolon); err != nil {
		return nil, err
	}
	return &ast.CellDecl{Name: name.Text, Address: int(addrTok.Value)}, nil
}

func (p *parser) ifStatement() (ast.Node, error) {
	if _, err := p.expectKeyword(token.If); err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(token.LeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(token.RightParen); err != nil {
		return nil, err
	}
	thenBlock, err := p.block()
	if err != nil {
		return nil, err
	}
	node := &ast.If{Condition: cond, Then: thenBlock}
	if t := p.peek(); t.Kind == token.KindKeyword && t.Keyword == token.Else {
		p.advance()
		elseBlock, err := p.block()
		if err != nil {
			return nil, err
		}
		node.Else = elseBlock
	}
	return node, nil
}

func (p *parser) whileStatement() (ast.Node, error) {
	if _, err := p.expectKeyword(token.While); err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(token.LeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(token.RightParen); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.While{Condition: cond, Body: body}, nil
}

func (p *parser) printStatement() (ast.Node, error) {
	if _, err := p.expectKeyword(token.Print); err != nil {
		return nil, err
	}
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectSymbol(token.Semicolon); err != nil {
		return nil, err
	}
	return &ast.Print{Value: value}, nil
}

// binaryPrecedence groups operators from loosest to tightest binding, in
// the same grouping duh/parser.py uses: assignment, then equality, then
// relational, then additive, then bitwise, then shift.
var binaryPrecedence = [][]token.Operator{
	{token.Assign},
	{token.Eq, token.Neq},
	{token.Lt, token.Leq, token.Gt, token.Geq},
	{token.Add, token.Sub},
	{token.And, token.Or, token.Xor},
	{token.Shl, token.Shr},
}

func (p *parser) expression() (ast.Node, error) {
	return p.binary(0)
}

func (p *parser) binary(level int) (ast.Node, error) {
	if level >= len(binaryPrecedence) {
		return p.unary()
	}
	left, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.Kind != token.KindOperator {
			return left, nil
		}
		matched := false
		for _, op := range binaryPrecedence[level] {
			if t.Op == op {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
		p.advance()
		right, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Expression{Op: t.Op, Args: []ast.Node{left, right}}
	}
}

func (p *parser) unary() (ast.Node, error) {
	t := p.peek()
	if t.Kind == token.KindOperator && token.IsUnary(t.Op) {
		p.advance()
		arg, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Expression{Op: t.Op, Args: []ast.Node{arg}}, nil
	}
	return p.primary()
}

func (p *parser) primary() (ast.Node, error) {
	t := p.peek()
	switch {
	case t.Kind == token.KindLiteral:
		p.advance()
		return &ast.Literal{Value: t.Value}, nil
	case t.Kind == token.KindIdentifier:
		p.advance()
		return &ast.Identifier{Name: t.Text}, nil
	case t.Kind == token.KindSymbol && t.Symbol == token.LeftParen:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectSymbol(token.RightParen); err != nil {
			return nil, err
		}
		return inner, nil
	case t.Kind == token.KindEOF:
		return nil, errors.Wrap(ErrUnexpectedEOF, "expected expression")
	default:
		return nil, errors.Wrapf(ErrUnexpectedToken, "at %s: expected expression, got %q", t.Span, t.Text)
	}
}
