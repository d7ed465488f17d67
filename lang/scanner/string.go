package scanner

import "github.com/mna/loxvm/lang/token"

// string scans a double-quoted string literal. Newlines are permitted
// inside the literal and count toward the line number. The lexeme
// returned still includes the surrounding quotes; the compiler strips
// them when interning the constant.
func (s *Scanner) string() Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.current++
	}

	if s.atEnd() {
		return s.errorf("Unterminated string.")
	}

	s.current++ // consume the closing quote
	return s.make(token.STRING)
}
