package scanner_test

import (
	"testing"

	"github.com/mna/lumen/lang/scanner"
	"github.com/mna/lumen/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, source string) []token.Token {
	t.Helper()
	s := scanner.New(source)
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "(){},.-+;*!!====>>=<<==/")
	kinds := make([]token.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	require.Equal(t, []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.COMMA,
		token.DOT, token.MINUS, token.PLUS, token.SEMICOLON, token.STAR,
		token.BANG, token.BANG_EQ, token.EQ_EQ, token.EQ, token.GT, token.GT_EQ,
		token.LT, token.LT_EQ, token.EQ, token.SLASH, token.EOF,
	}, kinds)
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(t, "123 1.5 1.")
	require.Equal(t, "123", toks[0].Lexeme)
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, "1.5", toks[1].Lexeme)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	// trailing dot without a following digit is NOT part of the number
	require.Equal(t, "1", toks[2].Lexeme)
	require.Equal(t, token.DOT, toks[3].Kind)
}

func TestScanStringLiteral(t *testing.T) {
	toks := scanAll(t, `"hello world"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello world", toks[0].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"oops`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}

func TestScanIdentifiersAndKeywords(t *testing.T) {
	toks := scanAll(t, "fun foo_bar2 var nil true false and or if else for while return print class super this")
	want := []token.Kind{
		token.FUN, token.IDENT, token.VAR, token.NIL, token.TRUE, token.FALSE,
		token.AND, token.OR, token.IF, token.ELSE, token.FOR, token.WHILE,
		token.RETURN, token.PRINT, token.CLASS, token.SUPER, token.THIS, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, tok := range toks {
		require.Equalf(t, want[i], tok.Kind, "token %d (%q)", i, tok.Lexeme)
	}
}

func TestScanSkipsLineCommentsAndTracksLines(t *testing.T) {
	toks := scanAll(t, "1 // a comment\n2")
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, "1", toks[0].Lexeme)
	require.Equal(t, 2, toks[1].Line)
	require.Equal(t, "2", toks[1].Lexeme)
}

func TestScanIllegalCharacter(t *testing.T) {
	toks := scanAll(t, "@")
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}
