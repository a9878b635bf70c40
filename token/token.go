// Package token defines the lexeme model for the SQL tokenizer: a bit-set
// token kind (a lexeme can wear more than one hat depending on context),
// source positions, and the positioned-comment records attached to a token
// during tokenization.
package token

import "strings"

// Kind is a bit-set over the roles a lexeme can play. Unlike a single enum
// value, a bit-set lets one token satisfy more than one role test at once —
// an alias candidate, for instance, is both Identifier and Function.
type Kind uint32

const (
	Identifier Kind = 1 << iota
	Literal
	Operator
	OpenParen
	CloseParen
	OpenBracket
	CloseBracket
	Comma
	Dot
	Semicolon
	Command
	Function
	Type
	Parameter
	StringSpecifier
	EOF
	Illegal
)

var kindNames = []struct {
	bit  Kind
	name string
}{
	{Identifier, "Identifier"},
	{Literal, "Literal"},
	{Operator, "Operator"},
	{OpenParen, "OpenParen"},
	{CloseParen, "CloseParen"},
	{OpenBracket, "OpenBracket"},
	{CloseBracket, "CloseBracket"},
	{Comma, "Comma"},
	{Dot, "Dot"},
	{Semicolon, "Semicolon"},
	{Command, "Command"},
	{Function, "Function"},
	{Type, "Type"},
	{Parameter, "Parameter"},
	{StringSpecifier, "StringSpecifier"},
	{EOF, "EOF"},
	{Illegal, "Illegal"},
}

// Has reports whether k carries every bit set in mask.
func (k Kind) Has(mask Kind) bool { return k&mask == mask }

// Any reports whether k shares any bit with mask.
func (k Kind) Any(mask Kind) bool { return k&mask != 0 }

func (k Kind) String() string {
	var parts []string
	for _, kn := range kindNames {
		if k.Any(kn.bit) {
			parts = append(parts, kn.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// Pos is a single point in the source: a 0-based byte offset plus the
// 1-based line/column it resolves to.
type Pos struct {
	Offset int
	Line   int
	Column int
}

// IsValid reports whether the position was ever resolved against a source.
func (p Pos) IsValid() bool { return p.Line > 0 }

// CommentPlacement records whether a comment block attaches before or after
// the token that owns it.
type CommentPlacement int

const (
	Before CommentPlacement = iota
	After
)

func (p CommentPlacement) String() string {
	if p == Before {
		return "before"
	}
	return "after"
}

// Comment is one positioned comment block. Text is the comment body with
// delimiters stripped and trimmed; multiple line comments that run
// back-to-back are folded into one block in source order.
type Comment struct {
	Position CommentPlacement
	Text     string
}

// Token is a single lexeme: its role bit-set, canonical text, source span,
// and any comments routed onto it during tokenization. Commands (including
// multi-word ones) are stored lower-cased with internal runs of whitespace
// collapsed to a single space, e.g. "group by", "insert into".
type Token struct {
	Kind     Kind
	Value    string
	Start    Pos
	End      Pos
	Comments []Comment

	// FollowingWhitespace is the literal whitespace/comment span between
	// this token and the next, captured only when Tokenize is called with
	// Options.PreserveFormatting so the source can be regenerated exactly.
	FollowingWhitespace string
}

// Is reports whether the token carries every bit in mask.
func (t Token) Is(mask Kind) bool { return t.Kind.Has(mask) }

// CanonicalEqual reports whether two tokens carry the same role and text,
// ignoring position and comments — used by idempotence checks that re-lex
// the canonical text of a prior token stream.
func (t Token) CanonicalEqual(other Token) bool {
	return t.Kind == other.Kind && t.Value == other.Value
}

// Before returns the comment texts attached before this token, in order.
func (t Token) Before() []string { return t.texts(Before) }

// After returns the comment texts attached after this token, in order.
func (t Token) After() []string { return t.texts(After) }

func (t Token) texts(pos CommentPlacement) []string {
	var out []string
	for _, c := range t.Comments {
		if c.Position == pos {
			out = append(out, c.Text)
		}
	}
	return out
}

// AddComment appends a positioned comment, preserving source order among
// blocks that share the same placement.
func (t *Token) AddComment(pos CommentPlacement, text string) {
	t.Comments = append(t.Comments, Comment{Position: pos, Text: text})
}
