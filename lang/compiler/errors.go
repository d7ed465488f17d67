package compiler

import (
	"fmt"
	"strings"
)

// CompileError is the terminal status the host sees from Compile after
// one or more scan/parse failures. It aggregates every message the
// parser recovered from via panic-mode synchronization, each already
// formatted at its offending token.
type CompileError struct {
	Messages []string
}

func (e *CompileError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// formatError renders a single parse error in the `[line N] Error at
// 'LEXEME': MESSAGE` form, or `[line N] Error at end: MESSAGE` at EOF.
func formatError(line int, lexeme string, atEnd bool, message string) string {
	if atEnd {
		return fmt.Sprintf("[line %d] Error at end: %s", line, message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", line, lexeme, message)
}
