package scanner

import "github.com/mna/loxvm/lang/token"

// number scans an integer or floating point literal: digits, optionally
// followed by a '.' and at least one more digit. The lexeme is kept as
// decimal text; the compiler parses it with strconv.ParseFloat.
func (s *Scanner) number() Token {
	for isDigit(s.peek()) {
		s.current++
	}

	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.current++ // consume the '.'
		for isDigit(s.peek()) {
			s.current++
		}
	}

	return s.make(token.NUMBER)
}
