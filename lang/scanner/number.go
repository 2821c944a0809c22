package scanner

import "github.com/mna/lumen/lang/token"

// number scans an integer or <digits>.<digits> float literal. The trailing
// dot is only consumed when followed by at least one digit, so that "1.foo"
// scans as NUMBER("1") DOT IDENT("foo") rather than a malformed number.
func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}

	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume the '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	return s.make(token.NUMBER)
}

// identifier scans a run of [A-Za-z0-9_] starting at an already-consumed
// leading letter or underscore, then classifies it as a keyword or a plain
// identifier.
func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	lit := s.source[s.start:s.current]
	return token.Token{Kind: token.LookupIdent(lit), Lexeme: lit, Line: s.line}
}
