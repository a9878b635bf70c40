package lexer

import "fmt"

// TokenizerError reports a scanning failure: an illegal character, an
// unterminated string literal, or an unterminated block comment.
type TokenizerError struct {
	Message string
	Offset  int
	Line    int
	Column  int
}

func (e *TokenizerError) Error() string {
	return fmt.Sprintf("%s at offset %d (line %d, column %d)", e.Message, e.Offset, e.Line, e.Column)
}
