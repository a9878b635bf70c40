// Package lexer implements the SQL tokenizer: a string scanner, a
// keyword-trie-backed word reader, a fixed-order reader manager, and the
// statement-slicing/comment-attachment pass that turns raw SQL text into a
// positioned token stream per statement.
package lexer

import (
	"strings"

	"github.com/freeeve/sqlast/token"
)

// Scanner is the primitive cursor over the input: whitespace/comment
// skipping plus line/column bookkeeping, updated incrementally as bytes are
// consumed so no position ever requires a full rescan from the start.
type Scanner struct {
	input     string
	pos       int
	line      int
	lineStart int // byte offset of the current line's first column
}

// NewScanner creates a scanner positioned at the start of input.
func NewScanner(input string) *Scanner {
	return &Scanner{input: input, line: 1, lineStart: 0}
}

// Len reports the input length.
func (s *Scanner) Len() int { return len(s.input) }

// Pos returns the current byte offset.
func (s *Scanner) Pos() int { return s.pos }

// AtEOF reports whether the cursor has reached the end of input.
func (s *Scanner) AtEOF() bool { return s.pos >= len(s.input) }

// Peek returns the byte at the cursor without consuming it, or 0 at EOF.
func (s *Scanner) Peek() byte {
	if s.AtEOF() {
		return 0
	}
	return s.input[s.pos]
}

// PeekAt returns the byte offset bytes ahead of the cursor, or 0 past EOF.
func (s *Scanner) PeekAt(offset int) byte {
	i := s.pos + offset
	if i >= len(s.input) {
		return 0
	}
	return s.input[i]
}

// position returns the current Pos for the cursor.
func (s *Scanner) position() token.Pos {
	return token.Pos{Offset: s.pos, Line: s.line, Column: s.pos - s.lineStart + 1}
}

// advance consumes n bytes, tracking newlines as it goes.
func (s *Scanner) advance(n int) {
	for i := 0; i < n && !s.AtEOF(); i++ {
		if s.input[s.pos] == '\n' {
			s.line++
			s.lineStart = s.pos + 1
		}
		s.pos++
	}
}

// Checkpoint/Restore let a reader try a tentative parse and back off
// without leaving any trace in the scanner state.
type Checkpoint struct {
	pos       int
	line      int
	lineStart int
}

func (s *Scanner) Mark() Checkpoint {
	return Checkpoint{pos: s.pos, line: s.line, lineStart: s.lineStart}
}

func (s *Scanner) Restore(c Checkpoint) {
	s.pos, s.line, s.lineStart = c.pos, c.line, c.lineStart
}

// ReadWhitespaceAndComments consumes a run of whitespace interleaved with
// line comments ("--" and the MySQL-style "#") and nested block comments
// ("/* … */"), returning the comment bodies (delimiters stripped, trimmed)
// in source order.
func (s *Scanner) ReadWhitespaceAndComments() []string {
	var comments []string
	for !s.AtEOF() {
		switch c := s.Peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.advance(1)
		case c == '-' && s.PeekAt(1) == '-':
			comments = append(comments, s.readLineComment(2))
		case c == '#':
			comments = append(comments, s.readLineComment(1))
		case c == '/' && s.PeekAt(1) == '*':
			comments = append(comments, s.readBlockComment())
		default:
			return comments
		}
	}
	return comments
}

func (s *Scanner) readLineComment(markerLen int) string {
	s.advance(markerLen)
	start := s.pos
	for !s.AtEOF() && s.Peek() != '\n' {
		s.advance(1)
	}
	return strings.TrimSpace(s.input[start:s.pos])
}

func (s *Scanner) readBlockComment() string {
	s.advance(2) // "/*"
	start := s.pos
	depth := 1
	for !s.AtEOF() && depth > 0 {
		if s.Peek() == '/' && s.PeekAt(1) == '*' {
			depth++
			s.advance(2)
			continue
		}
		if s.Peek() == '*' && s.PeekAt(1) == '/' {
			depth--
			if depth == 0 {
				end := s.pos
				s.advance(2)
				return strings.TrimSpace(s.input[start:end])
			}
			s.advance(2)
			continue
		}
		s.advance(1)
	}
	// Unterminated: return what we have; the caller surfaces a TokenizerError.
	return strings.TrimSpace(s.input[start:s.pos])
}

// TryReadRegularIdentifier reads [A-Za-z_][A-Za-z0-9_$]* at the cursor
// without consuming anything on failure.
func (s *Scanner) TryReadRegularIdentifier() (string, bool) {
	if s.AtEOF() || !isIdentStart(s.Peek()) {
		return "", false
	}
	start := s.pos
	s.advance(1)
	for !s.AtEOF() && isIdentPart(s.Peek()) {
		s.advance(1)
	}
	return s.input[start:s.pos], true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '$'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
