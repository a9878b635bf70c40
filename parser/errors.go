// Package parser implements the recursive-descent clause parsers and the
// statement dispatcher: each parse function consumes a token slice starting
// at an index and returns a typed AST node plus the new index.
package parser

import (
	"fmt"

	"github.com/freeeve/sqlast/token"
)

// UnexpectedToken is the dominant parser error class: a required keyword or
// symbol was missing at the given token index.
type UnexpectedToken struct {
	Index    int
	Position token.Pos
	Expected string
	Found    string
}

func (e *UnexpectedToken) Error() string {
	return fmt.Sprintf("expected %s but found %q at token %d (offset %d)", e.Expected, e.Found, e.Index, e.Position.Offset)
}

// UnexpectedEnd means the parser ran out of tokens while more were required.
type UnexpectedEnd struct {
	Expected string
}

func (e *UnexpectedEnd) Error() string {
	return fmt.Sprintf("expected %s but reached the end of input", e.Expected)
}

// UnsupportedStatement means the dispatcher saw an unrecognized leading
// keyword.
type UnsupportedStatement struct {
	Index    int
	Position token.Pos
	Lead     string
}

func (e *UnsupportedStatement) Error() string {
	return fmt.Sprintf("unsupported statement starting with %q at token %d (offset %d)", e.Lead, e.Index, e.Position.Offset)
}

// TrailingTokens means a statement parser completed without consuming every
// token allocated to its statement.
type TrailingTokens struct {
	Index    int
	Position token.Pos
}

func (e *TrailingTokens) Error() string {
	return fmt.Sprintf("trailing tokens starting at token %d (offset %d)", e.Index, e.Position.Offset)
}

// SemanticShape covers narrow structural errors caught while parsing, e.g.
// an empty column-alias list with an unclosed paren.
type SemanticShape struct {
	Index   int
	Message string
}

func (e *SemanticShape) Error() string {
	return fmt.Sprintf("%s at token %d", e.Message, e.Index)
}
