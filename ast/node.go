// Package ast defines the abstract syntax tree produced by the parser:
// statements, clauses, value expressions, and table sources. Every node
// owns its children exclusively — siblings never share substructure, and a
// column referenced twice in source text produces two distinct nodes.
// Nodes are built and mutated only while parsing (to attach comments and
// flags); once returned to the caller they are frozen in all but name.
package ast

import "github.com/freeeve/sqlast/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// Statement is a top-level SQL statement.
type Statement interface {
	Node
	statementNode()
}

// Value is a value expression: literals, column references, operators,
// function calls, subqueries used as values, and so on.
type Value interface {
	Node
	valueNode()
}

// Source is a FROM-clause data source: a table, a parenthesized source, or
// a subquery.
type Source interface {
	Node
	sourceNode()
}

// Clause is a syntactic clause of a statement (WHERE, GROUP BY, WINDOW…).
type Clause interface {
	Node
	clauseNode()
}

// Commented is implemented by every node that can carry positioned
// comments; comments attached to the token a node was built from migrate
// here and are exclusively owned by the node from that point on.
type Commented struct {
	Comments []token.Comment
}

// AddComment appends one positioned comment, preserving source order
// within the same placement.
func (c *Commented) AddComment(pos token.CommentPlacement, text string) {
	c.Comments = append(c.Comments, token.Comment{Position: pos, Text: text})
}

// Before returns the comment texts attached before this node.
func (c *Commented) Before() []string { return c.texts(token.Before) }

// After returns the comment texts attached after this node.
func (c *Commented) After() []string { return c.texts(token.After) }

func (c *Commented) texts(pos token.CommentPlacement) []string {
	var out []string
	for _, cm := range c.Comments {
		if cm.Position == pos {
			out = append(out, cm.Text)
		}
	}
	return out
}

// Span is the embeddable start/end position pair shared by every concrete
// node type. It is exported so parser code outside this package can
// construct nodes directly.
type Span struct {
	StartPos token.Pos
	EndPos   token.Pos
}

func (s Span) Pos() token.Pos { return s.StartPos }
func (s Span) End() token.Pos { return s.EndPos }

// NewSpan builds a Span from a start and end position.
func NewSpan(start, end token.Pos) Span { return Span{StartPos: start, EndPos: end} }
