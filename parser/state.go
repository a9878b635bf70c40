package parser

import "github.com/freeeve/sqlast/token"

// at returns the token at index i, or the zero Token with ok=false past the
// end of toks.
func at(toks []token.Token, i int) (token.Token, bool) {
	if i < 0 || i >= len(toks) {
		return token.Token{}, false
	}
	return toks[i], true
}

// isCommand reports whether toks[i] is a Command token with the given
// canonical (already lower-cased, single-spaced) value.
func isCommand(toks []token.Token, i int, value string) bool {
	t, ok := at(toks, i)
	return ok && t.Kind.Has(token.Command) && t.Value == value
}

// isCommandAny reports whether toks[i] is a Command token matching any of
// the given canonical values.
func isCommandAny(toks []token.Token, i int, values ...string) bool {
	t, ok := at(toks, i)
	if !ok || !t.Kind.Has(token.Command) {
		return false
	}
	for _, v := range values {
		if t.Value == v {
			return true
		}
	}
	return false
}

// isOperator reports whether toks[i] is an Operator token with the given
// canonical value.
func isOperator(toks []token.Token, i int, value string) bool {
	t, ok := at(toks, i)
	return ok && t.Kind.Has(token.Operator) && t.Value == value
}

func isKind(toks []token.Token, i int, k token.Kind) bool {
	t, ok := at(toks, i)
	return ok && t.Kind.Has(k)
}

// expectCommand consumes toks[i] if it is the named command, else errors.
func expectCommand(toks []token.Token, i int, value string) (int, error) {
	if isCommand(toks, i, value) {
		return i + 1, nil
	}
	return i, unexpected(toks, i, value)
}

func expectKind(toks []token.Token, i int, k token.Kind, what string) (int, error) {
	if isKind(toks, i, k) {
		return i + 1, nil
	}
	return i, unexpected(toks, i, what)
}

func unexpected(toks []token.Token, i int, expected string) error {
	t, ok := at(toks, i)
	if !ok {
		return &UnexpectedEnd{Expected: expected}
	}
	return &UnexpectedToken{Index: i, Position: t.Start, Expected: expected, Found: t.Value}
}

// requireMore errors with UnexpectedEnd if toks has no token at i.
func requireMore(toks []token.Token, i int, expected string) error {
	if _, ok := at(toks, i); !ok {
		return &UnexpectedEnd{Expected: expected}
	}
	return nil
}

// posAt returns the Pos of toks[i], or the end-of-input position implied by
// the last token when i is out of range.
func posAt(toks []token.Token, i int) token.Pos {
	if t, ok := at(toks, i); ok {
		return t.Start
	}
	if len(toks) > 0 {
		return toks[len(toks)-1].End
	}
	return token.Pos{}
}
