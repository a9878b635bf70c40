package lexer

import (
	"strings"

	"github.com/freeeve/sqlast/token"
)

// keywordTrie is the single shared Keyword Trie (component B) used by both
// the command reader and the operator reader; it is read-only after
// construction so sharing it across concurrent tokenizations is safe.
var keywordTrie = token.NewTrie()

// reader is a pure function (input position -> token | none) that reports
// its new end position through the scanner it was handed. Readers never
// leave the scanner advanced on a miss.
type reader func(s *Scanner) (token.Token, bool)

// readEscapedIdentifier recognizes "x", `x`, and [x] escaped identifiers.
// Must run first: none of the later readers understand these delimiters.
func readEscapedIdentifier(s *Scanner) (token.Token, bool) {
	start := s.position()
	switch s.Peek() {
	case '"':
		return readDelimited(s, '"', '"', start)
	case '`':
		return readDelimited(s, '`', '`', start)
	case '[':
		// A bracket escapes an identifier only when its contents read like
		// a name ([A-Za-z_]...); "[1]" and other subscript expressions are
		// left for the symbol reader to hand to the array-subscript parser.
		if s.PeekAt(1) != 0 && isIdentStart(s.PeekAt(1)) {
			if tok, ok := readDelimited(s, '[', ']', start); ok {
				return tok, true
			}
		}
		return token.Token{}, false
	}
	return token.Token{}, false
}

func readDelimited(s *Scanner, open, close byte, start token.Pos) (token.Token, bool) {
	if s.Peek() != open {
		return token.Token{}, false
	}
	mark := s.Mark()
	s.advance(1)
	var sb strings.Builder
	for !s.AtEOF() {
		c := s.Peek()
		if c == close {
			// doubled delimiter is an escaped literal close char
			if s.PeekAt(1) == close {
				sb.WriteByte(close)
				s.advance(2)
				continue
			}
			s.advance(1)
			end := s.position()
			return token.Token{Kind: token.Identifier, Value: sb.String(), Start: start, End: end}, true
		}
		sb.WriteByte(c)
		s.advance(1)
	}
	// Unterminated: back off, let the caller surface an error elsewhere.
	s.Restore(mark)
	return token.Token{}, false
}

// readParameter recognizes :name, $1, and ? parameter placeholders.
func readParameter(s *Scanner) (token.Token, bool) {
	start := s.position()
	switch {
	case s.Peek() == ':' && s.PeekAt(1) == ':':
		return token.Token{}, false // handled by the operator reader (DCOLON)
	case s.Peek() == ':' && isIdentStart(s.PeekAt(1)):
		s.advance(1)
		name, _ := s.TryReadRegularIdentifier()
		return token.Token{Kind: token.Parameter, Value: ":" + name, Start: start, End: s.position()}, true
	case s.Peek() == '$' && isDigit(s.PeekAt(1)):
		mark := s.Mark()
		s.advance(1)
		for !s.AtEOF() && isDigit(s.Peek()) {
			s.advance(1)
		}
		return token.Token{Kind: token.Parameter, Value: s.input[mark.pos:s.pos], Start: start, End: s.position()}, true
	case s.Peek() == '?':
		s.advance(1)
		return token.Token{Kind: token.Parameter, Value: "?", Start: start, End: s.position()}, true
	}
	return token.Token{}, false
}

// readStringSpecifier recognizes dialect-specific prefixed strings:
// E'…' (Postgres escape string), B'…'/X'…' (bit/hex strings).
func readStringSpecifier(s *Scanner) (token.Token, bool) {
	start := s.position()
	c := s.Peek()
	if c != 'E' && c != 'e' && c != 'B' && c != 'b' && c != 'X' && c != 'x' {
		return token.Token{}, false
	}
	if s.PeekAt(1) != '\'' {
		return token.Token{}, false
	}
	mark := s.Mark()
	prefix := string(c)
	s.advance(1)
	body, ok := scanQuotedBody(s, '\'', c == 'E' || c == 'e')
	if !ok {
		s.Restore(mark)
		return token.Token{}, false
	}
	return token.Token{Kind: token.StringSpecifier | token.Literal, Value: prefix + body, Start: start, End: s.position()}, true
}

// scanQuotedBody consumes a '…' run, honoring doubled-quote escapes (and,
// when backslash is true, backslash escapes as in E'…'), and returns the raw
// source text including the surrounding quotes.
func scanQuotedBody(s *Scanner, quote byte, backslash bool) (string, bool) {
	if s.Peek() != quote {
		return "", false
	}
	start := s.pos
	s.advance(1)
	for !s.AtEOF() {
		if s.Peek() == quote {
			if s.PeekAt(1) == quote {
				s.advance(2)
				continue
			}
			s.advance(1)
			return s.input[start:s.pos], true
		}
		if backslash && s.Peek() == '\\' && s.PeekAt(1) != 0 {
			s.advance(2)
			continue
		}
		s.advance(1)
	}
	return "", false
}

// readLiteral recognizes numeric and string literals. It must run before
// the symbol/operator readers so "1.0" and ".5" parse as literals. A leading
// sign is not part of a literal: "+3" is the operator "+" followed by "3".
func readLiteral(s *Scanner) (token.Token, bool) {
	start := s.position()
	switch {
	case s.Peek() == '\'':
		if body, ok := scanQuotedBody(s, '\'', false); ok {
			return token.Token{Kind: token.Literal, Value: body, Start: start, End: s.position()}, true
		}
		return token.Token{}, false
	case isDigit(s.Peek()):
		return readNumber(s, start)
	case s.Peek() == '.' && isDigit(s.PeekAt(1)):
		return readNumber(s, start)
	}
	return token.Token{}, false
}

func readNumber(s *Scanner, start token.Pos) (token.Token, bool) {
	mark := s.Mark()
	for !s.AtEOF() && isDigit(s.Peek()) {
		s.advance(1)
	}
	if s.Peek() == '.' && isDigit(s.PeekAt(1)) || (s.Peek() == '.' && s.pos > mark.pos) {
		s.advance(1)
		for !s.AtEOF() && isDigit(s.Peek()) {
			s.advance(1)
		}
	}
	if s.Peek() == 'e' || s.Peek() == 'E' {
		expMark := s.Mark()
		s.advance(1)
		if s.Peek() == '+' || s.Peek() == '-' {
			s.advance(1)
		}
		if isDigit(s.Peek()) {
			for !s.AtEOF() && isDigit(s.Peek()) {
				s.advance(1)
			}
		} else {
			s.Restore(expMark)
		}
	}
	return token.Token{Kind: token.Literal, Value: s.input[mark.pos:s.pos], Start: start, End: s.position()}, true
}

// readSymbol recognizes the fixed single-character structural symbols.
func readSymbol(s *Scanner) (token.Token, bool) {
	start := s.position()
	c := s.Peek()
	var kind token.Kind
	switch c {
	case '(':
		kind = token.OpenParen
	case ')':
		kind = token.CloseParen
	case '[':
		kind = token.OpenBracket
	case ']':
		kind = token.CloseBracket
	case ',':
		kind = token.Comma
	case '.':
		kind = token.Dot
	case ';':
		kind = token.Semicolon
	default:
		return token.Token{}, false
	}
	s.advance(1)
	return token.Token{Kind: kind, Value: string(c), Start: start, End: s.position()}, true
}

// peekWord peeks a single identifier-shaped word without consuming it,
// returning the word so trie-driven readers can try-and-rewind.
func peekWord(s *Scanner) (string, bool) {
	if !isIdentStart(s.Peek()) {
		return "", false
	}
	i := s.pos + 1
	for i < len(s.input) && isIdentPart(s.input[i]) {
		i++
	}
	return s.input[s.pos:i], true
}

// matchPhrase runs the shared trie over the word stream starting at the
// scanner's current position, backtracking to the last partial-or-final
// checkpoint per the trie's stateful-walk contract. It only accepts a
// match whose category is in wanted; otherwise the scanner is left
// untouched so the next reader gets a try.
func matchPhrase(s *Scanner, wanted token.Category) (phraseText string, start, end token.Pos, ok bool) {
	start = s.position()
	mark := s.Mark()
	walk := keywordTrie.NewWalk()
	var words []string
	var lastGoodPos Checkpoint

	for {
		word, hasWord := peekWord(s)
		if !hasWord {
			break
		}
		wordMark := s.Mark()
		s.advance(len(word))
		status := walk.Push(word)
		if status == token.NoMatch {
			s.Restore(wordMark)
			break
		}
		words = append(words, word)
		if status == token.PartialOrFinal || status == token.Final {
			lastGoodPos = s.Mark()
		}
		if status == token.Final {
			break
		}
		// Only continue matching across whitespace/comments if another
		// word can extend the phrase; skip-and-retry, rewinding on failure.
		skipMark := s.Mark()
		s.ReadWhitespaceAndComments()
		if s.AtEOF() {
			s.Restore(skipMark)
			break
		}
		if _, has := peekWord(s); !has {
			s.Restore(skipMark)
			break
		}
	}

	count, cat, hasCheckpoint := walk.Checkpoint()
	if !hasCheckpoint || cat != wanted {
		s.Restore(mark)
		return "", start, start, false
	}
	s.Restore(lastGoodPos)
	phraseText = token.MatchedPhrase(words, count)
	return phraseText, start, s.position(), true
}

// readCommand recognizes multi-word structural keywords via the trie,
// yielding a lower-cased, single-spaced Command token.
func readCommand(s *Scanner) (token.Token, bool) {
	phraseText, start, end, ok := matchPhrase(s, token.CategoryCommand)
	if !ok {
		return token.Token{}, false
	}
	return token.Token{Kind: token.Command, Value: phraseText, Start: start, End: end}, true
}

var symbolicOperators = []string{
	"->>", "#>>", "::", "||", "<>", "!=", "<=", ">=", "->", "#>",
	"?|", "?&", "<<", ">>",
	"+", "-", "*", "/", "%", "=", "<", ">", "~", "^", "&", "|", "@", "?",
}

// readOperator recognizes symbolic operators and word-form operators,
// resolving "is not", "not in", "not between", "not like", "is null", and
// "is not null" via the shared trie.
func readOperator(s *Scanner) (token.Token, bool) {
	start := s.position()
	if isIdentStart(s.Peek()) {
		phraseText, pstart, pend, ok := matchPhrase(s, token.CategoryOperator)
		if ok {
			return token.Token{Kind: token.Operator, Value: phraseText, Start: pstart, End: pend}, true
		}
		return token.Token{}, false
	}
	for _, op := range symbolicOperators {
		if strings.HasPrefix(s.input[s.pos:], op) {
			s.advance(len(op))
			return token.Token{Kind: token.Operator, Value: op, Start: start, End: s.position()}, true
		}
	}
	return token.Token{}, false
}

// readType recognizes multi-word type phrases via the trie, and single-word
// type names optionally followed by a parenthesized precision/scale, e.g.
// "numeric(10,2)" or "varchar(255)". Must run before the function reader.
func readType(s *Scanner) (token.Token, bool) {
	start := s.position()
	if phraseText, pstart, pend, ok := matchPhrase(s, token.CategoryType); ok {
		return token.Token{Kind: token.Type, Value: phraseText, Start: pstart, End: pend}, true
	}
	word, ok := peekWord(s)
	if !ok || !token.IsSingleWordType(word) {
		return token.Token{}, false
	}
	s.advance(len(word))
	// The type value itself is just the name; the parser reads an optional
	// trailing "(precision, scale)" separately.
	return token.Token{Kind: token.Type, Value: strings.ToLower(word), Start: start, End: s.position()}, true
}

// readFunction recognizes a plain identifier immediately followed by "(":
// the classification as a call only; the parser resolves argument/alias
// ambiguity.
func readFunction(s *Scanner) (token.Token, bool) {
	start := s.position()
	word, ok := peekWord(s)
	if !ok {
		return token.Token{}, false
	}
	mark := s.Mark()
	s.advance(len(word))
	lookaheadMark := s.Mark()
	s.ReadWhitespaceAndComments()
	if s.Peek() != '(' {
		s.Restore(mark)
		return token.Token{}, false
	}
	s.Restore(lookaheadMark)
	return token.Token{Kind: token.Function | token.Identifier, Value: word, Start: start, End: s.position()}, true
}

// readIdentifier is the reader of last resort: any remaining identifier
// shape becomes a plain Identifier token.
func readIdentifier(s *Scanner) (token.Token, bool) {
	start := s.position()
	word, ok := s.TryReadRegularIdentifier()
	if !ok {
		return token.Token{}, false
	}
	return token.Token{Kind: token.Identifier, Value: word, Start: start, End: s.position()}, true
}
