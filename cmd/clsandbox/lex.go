package main

import (
	"fmt"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Token categories of the sandbox reader.
const (
	tokLParen int = iota + 1
	tokRParen
	tokQuote
	tokInt
	tokDouble
	tokString
	tokChar
	tokBool
	tokIdent
)

var tokenNames = map[int]string{
	tokLParen: "(",
	tokRParen: ")",
	tokQuote:  "'",
	tokInt:    "INT",
	tokDouble: "DOUBLE",
	tokString: "STRING",
	tokChar:   "CHAR",
	tokBool:   "BOOL",
	tokIdent:  "ID",
}

// Span is the column range (x…y) a token covers in its input line.
type Span [2]int

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}

type token struct {
	typ    int
	lexeme string
	span   Span
}

func (t token) String() string {
	return fmt.Sprintf("%s %q @%v", tokenNames[t.typ], t.lexeme, t.span)
}

// lexer wraps a compiled lexmachine DFA.
type lexer struct {
	lm *lexmachine.Lexer
}

func newLexer() (*lexer, error) {
	lm := lexmachine.NewLexer()
	lm.Add([]byte(`;[^\n]*`), skip)
	lm.Add([]byte(`( |\t|\n|\r)+`), skip)
	lm.Add([]byte(`\(`), makeToken(tokLParen))
	lm.Add([]byte(`\)`), makeToken(tokRParen))
	lm.Add([]byte(`'`), makeToken(tokQuote))
	lm.Add([]byte(`\-?[0-9]+\.[0-9]+`), makeToken(tokDouble))
	lm.Add([]byte(`\-?[0-9]+`), makeToken(tokInt))
	lm.Add([]byte(`"[^"]*"`), makeToken(tokString))
	lm.Add([]byte(`#\\.`), makeToken(tokChar))
	lm.Add([]byte(`#t|#f`), makeToken(tokBool))
	lm.Add([]byte(`[a-zA-Z!$%&\*/:<=>\?\^_~\+\-][a-zA-Z0-9!$%&\*/:<=>\?\^_~\+\-\.]*`), makeToken(tokIdent))
	if err := lm.Compile(); err != nil {
		tracer().Errorf("error compiling DFA: %v", err)
		return nil, err
	}
	return &lexer{lm: lm}, nil
}

// tokenize splits a line of input into tokens.
func (lx *lexer) tokenize(line string) ([]token, error) {
	s, err := lx.lm.Scanner([]byte(line))
	if err != nil {
		return nil, err
	}
	var tokens []token
	for tok, err, eof := s.Next(); !eof; tok, err, eof = s.Next() {
		if err != nil {
			if ui, is := err.(*machines.UnconsumedInput); is {
				return nil, fmt.Errorf("unexpected input at column %d", ui.FailTC+1)
			}
			return nil, err
		}
		t := tok.(*lexmachine.Token)
		tokens = append(tokens, token{
			typ:    t.Type,
			lexeme: string(t.Lexeme),
			span:   Span{t.StartColumn, t.EndColumn},
		})
	}
	tracer().Debugf("%d tokens", len(tokens))
	return tokens, nil
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}
