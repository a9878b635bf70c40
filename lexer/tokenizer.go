package lexer

import "github.com/freeeve/sqlast/token"

// Options controls tokenization behavior.
type Options struct {
	// PreserveFormatting, when true, records the literal whitespace/comment
	// span following each token on Token.FollowingWhitespace so the source
	// can be regenerated exactly.
	PreserveFormatting bool
}

// Statement is the token slice between two top-level unquoted semicolons
// (or between an end and the start/end of input). Empty is true for a bare
// ";" with no tokens between it and the previous boundary.
type Statement struct {
	Tokens []token.Token
	Empty  bool
}

type gapRecord struct {
	afterIndex int // index into toks of the token preceding the gap
	comments   []string
	raw        string
}

// Tokenize drives the scanner and reader manager to produce one Statement
// per semicolon-delimited segment, with comments attached to tokens per the
// positional routing rules.
func Tokenize(text string, opts Options) ([]Statement, error) {
	s := NewScanner(text)
	mgr := NewReaderManager(s)

	var statements []Statement
	var carry []string // leading comments of an empty segment, carried to the next non-empty one

	for {
		leading := s.ReadWhitespaceAndComments()
		if s.AtEOF() {
			if len(carry) > 0 || len(leading) > 0 {
				// Comments after the final ";" attach as After comments to
				// the last token of the nearest earlier statement that has
				// tokens, and an empty trailing statement marks the segment.
				// When no earlier statement has tokens the text is not kept.
				rest := append(append([]string{}, carry...), leading...)
				for i := len(statements) - 1; i >= 0; i-- {
					if n := len(statements[i].Tokens); n > 0 {
						attachComment(&statements[i].Tokens[n-1], token.After, rest)
						break
					}
				}
				statements = append(statements, Statement{Empty: true})
			}
			break
		}
		if s.Peek() == ';' {
			s.advance(1)
			carry = append(carry, leading...)
			statements = append(statements, Statement{Empty: true})
			continue
		}

		prefix := append(append([]string{}, carry...), leading...)
		carry = nil

		toks, gaps, trailingCarry, err := scanStatementBody(s, mgr, opts)
		if err != nil {
			return statements, err
		}
		if len(toks) > 0 {
			attachComment(&toks[0], token.Before, prefix)
		}
		routeComments(toks, gaps)
		statements = append(statements, Statement{Tokens: toks})
		carry = trailingCarry
	}
	return statements, nil
}

// scanStatementBody reads tokens until a top-level ';' or EOF, recording the
// inter-token gaps for later comment routing.
func scanStatementBody(s *Scanner, mgr *ReaderManager, opts Options) ([]token.Token, []gapRecord, []string, error) {
	var toks []token.Token
	var gaps []gapRecord

	for {
		tok, ok := mgr.Next()
		if !ok {
			return toks, gaps, nil, nil
		}
		if tok.Kind == token.Illegal {
			return toks, gaps, nil, &TokenizerError{
				Message: "invalid character " + tok.Value,
				Offset:  tok.Start.Offset, Line: tok.Start.Line, Column: tok.Start.Column,
			}
		}
		toks = append(toks, tok)

		gapStart := s.Mark()
		gap := s.ReadWhitespaceAndComments()
		if opts.PreserveFormatting {
			toks[len(toks)-1].FollowingWhitespace = s.input[gapStart.pos:s.pos]
		}
		if s.AtEOF() {
			if len(gap) > 0 {
				gaps = append(gaps, gapRecord{afterIndex: len(toks) - 1, comments: gap})
			}
			return toks, gaps, nil, nil
		}
		if s.Peek() == ';' {
			s.advance(1)
			return toks, gaps, gap, nil
		}
		if len(gap) > 0 {
			gaps = append(gaps, gapRecord{afterIndex: len(toks) - 1, comments: gap})
		}
	}
}

// routeComments applies the positional comment-attachment rules: comments
// after SELECT move to the first real select item; comments after a comma
// move to the following list item; comments after a set operator move to
// the next SELECT/VALUES keyword. All other gaps attach to the preceding
// token as trailing (After) comments.
func routeComments(toks []token.Token, gaps []gapRecord) {
	for _, g := range gaps {
		i := g.afterIndex
		if i >= len(toks)-1 {
			attachComment(&toks[i], token.After, g.comments)
			continue
		}
		switch {
		case isCommandValue(toks[i], "select"):
			target := firstSelectItemIndex(toks, i+1)
			attachComment(&toks[target], token.Before, g.comments)
		case toks[i].Kind.Has(token.Comma):
			attachComment(&toks[i+1], token.Before, g.comments)
		case isSetOperator(toks[i]):
			attachComment(&toks[i+1], token.Before, g.comments)
		default:
			attachComment(&toks[i], token.After, g.comments)
		}
	}
}

func isCommandValue(t token.Token, value string) bool {
	return t.Kind.Has(token.Command) && t.Value == value
}

func isSetOperator(t token.Token) bool {
	if !t.Kind.Has(token.Command) {
		return false
	}
	switch t.Value {
	case "union", "union all", "intersect", "intersect all", "except", "except all":
		return true
	}
	return false
}

// firstSelectItemIndex skips DISTINCT/DISTINCT ON hints to find the first
// token that begins a real select-list item.
func firstSelectItemIndex(toks []token.Token, from int) int {
	i := from
	for i < len(toks)-1 && toks[i].Kind.Has(token.Command) && (toks[i].Value == "distinct" || toks[i].Value == "distinct on") {
		i++
	}
	return i
}

func attachComment(t *token.Token, pos token.CommentPlacement, texts []string) {
	for _, text := range texts {
		t.AddComment(pos, text)
	}
}
