package lexer

import "github.com/freeeve/sqlast/token"

// readerOrder is the Reader Manager's fixed dispatch order. This ordering is
// load-bearing: literals must precede symbols/operators (so "1.0" and ".5"
// parse as literals, not as "." plus a number; a sign such as the "+" in "+3"
// is still read as an operator), and types must precede functions
// (so "numeric(10,2)" does not become a call to "numeric").
var readerOrder = []reader{
	readEscapedIdentifier,
	readParameter,
	readStringSpecifier,
	readLiteral,
	readSymbol,
	readCommand,
	readOperator,
	readType,
	readFunction,
	readIdentifier,
}

// ReaderManager drives readerOrder over a Scanner, producing one token at a
// time from the current position.
type ReaderManager struct {
	scanner *Scanner
}

// NewReaderManager wraps a scanner for ordered token dispatch.
func NewReaderManager(s *Scanner) *ReaderManager {
	return &ReaderManager{scanner: s}
}

// Next tries each reader in order and returns the first match. Returns
// ok=false only at EOF; an unrecognized byte yields an Illegal token so
// callers can surface a TokenizerError with a position.
func (m *ReaderManager) Next() (token.Token, bool) {
	if m.scanner.AtEOF() {
		return token.Token{}, false
	}
	for _, r := range readerOrder {
		if tok, ok := r(m.scanner); ok {
			return tok, true
		}
	}
	start := m.scanner.position()
	bad := m.scanner.Peek()
	m.scanner.advance(1)
	return token.Token{Kind: token.Illegal, Value: string(bad), Start: start, End: m.scanner.position()}, true
}

// GetMaxPosition reports the scanner's current byte offset, the position up
// to which tokenization has progressed.
func (m *ReaderManager) GetMaxPosition() int { return m.scanner.Pos() }
