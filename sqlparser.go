// Package sqlast is a recursive-descent parser for a PostgreSQL-leaning
// superset of SQL. It tokenizes source text into a positioned token stream
// and parses that stream into a typed AST without touching database/sql or
// any network connection: the package is a pure text-to-tree transform.
//
// Basic usage:
//
//	stmt, err := sqlast.Parse("SELECT * FROM users WHERE id = 1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(sqlast.String(stmt))
package sqlast

import (
	"github.com/freeeve/sqlast/ast"
	"github.com/freeeve/sqlast/format"
	"github.com/freeeve/sqlast/lexer"
	"github.com/freeeve/sqlast/parser"
	"github.com/freeeve/sqlast/token"
	"github.com/freeeve/sqlast/visitor"
)

// Mode selects how many statements ParseWithOptions expects to find.
type Mode int

const (
	// Single requires exactly one non-empty statement; a second one
	// produces a trailing-statement error.
	Single Mode = iota
	// Multiple allows any number of statements; ParseWithOptions still
	// returns only the first.
	Multiple
)

// Options controls parsing and tokenization.
type Options struct {
	Mode Mode
	// SkipEmptyStatements drops bare ";" segments before they reach the
	// caller. DefaultOptions sets this true.
	SkipEmptyStatements bool
	// PreserveFormatting, forwarded to the tokenizer, keeps each token's
	// literal following whitespace/comment span so the source can be
	// regenerated byte-for-byte.
	PreserveFormatting bool
}

// DefaultOptions is Single mode with empty statements skipped.
var DefaultOptions = Options{Mode: Single, SkipEmptyStatements: true}

// Parse parses exactly one statement out of text under DefaultOptions.
// The parser draws hot-path nodes and slices from internal pools; for
// maximum performance when parsing many queries, call Repool(stmt) when
// done with the statement (optional, see Repool).
func Parse(text string) (ast.Statement, error) {
	return ParseWithOptions(text, DefaultOptions)
}

// ParseWithOptions parses text under opts and returns the first statement.
// In Single mode, a second non-empty statement after the first is reported
// as a trailing-tokens error even though the first statement parsed fine.
func ParseWithOptions(text string, opts Options) (ast.Statement, error) {
	stmts, err := tokenizeStatements(text, opts)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, &parser.UnexpectedEnd{Expected: "a statement"}
	}
	first, err := parseStatementSlice(stmts[0])
	if err != nil {
		return nil, err
	}
	if opts.Mode == Single && len(stmts) > 1 {
		return first, &parser.TrailingTokens{Index: 0}
	}
	return first, nil
}

// ParseAll parses every non-empty statement in text under DefaultOptions
// (with Mode forced to Multiple) and returns one AST per statement, in
// source order.
func ParseAll(text string) ([]ast.Statement, error) {
	return ParseManyWithOptions(text, Options{Mode: Multiple, SkipEmptyStatements: true})
}

// ParseMany is an alias for ParseAll kept for symmetry with the external
// interface contract's parseMany name.
func ParseMany(text string) ([]ast.Statement, error) { return ParseAll(text) }

// ParseManyWithOptions parses every non-empty statement in text under opts.
func ParseManyWithOptions(text string, opts Options) ([]ast.Statement, error) {
	stmts, err := tokenizeStatements(text, opts)
	if err != nil {
		return nil, err
	}
	out := make([]ast.Statement, 0, len(stmts))
	for _, s := range stmts {
		stmt, err := parseStatementSlice(s)
		if err != nil {
			return out, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func tokenizeStatements(text string, opts Options) ([]lexer.Statement, error) {
	all, err := lexer.Tokenize(text, lexer.Options{PreserveFormatting: opts.PreserveFormatting})
	if err != nil {
		return nil, err
	}
	if !opts.SkipEmptyStatements {
		return all, nil
	}
	out := all[:0:0]
	for _, s := range all {
		if s.Empty {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func parseStatementSlice(s lexer.Statement) (ast.Statement, error) {
	stmt, idx, err := parser.ParseStatement(s.Tokens, 0)
	if err != nil {
		return nil, err
	}
	if idx < len(s.Tokens) {
		t := s.Tokens[idx]
		return stmt, &parser.TrailingTokens{Index: idx, Position: t.Start}
	}
	return stmt, nil
}

// Tokenize exposes the tokenizer directly: one Statement per semicolon
// segment, each carrying its own token slice and positioned comments.
func Tokenize(text string, opts Options) ([]lexer.Statement, error) {
	return lexer.Tokenize(text, lexer.Options{PreserveFormatting: opts.PreserveFormatting})
}

// ParseSelect, ParseInsert, ParseUpdate, ParseDelete, ParseMerge, and
// ParseCreateTable each parse text as exactly that statement kind,
// bypassing the dispatcher's lead-keyword matching. Useful when the caller
// already knows what it is feeding in, e.g. a CTE or view body extracted by
// some other tool.
func ParseSelect(text string) (ast.SelectQuery, error) {
	toks, err := soleStatementTokens(text)
	if err != nil {
		return nil, err
	}
	q, idx, err := parser.ParseSelect(toks, 0)
	if err != nil {
		return nil, err
	}
	return q, trailingCheck(toks, idx)
}

func ParseInsert(text string) (*ast.InsertQuery, error) {
	toks, err := soleStatementTokens(text)
	if err != nil {
		return nil, err
	}
	q, idx, err := parser.ParseInsert(toks, 0)
	if err != nil {
		return nil, err
	}
	return q, trailingCheck(toks, idx)
}

func ParseUpdate(text string) (*ast.UpdateQuery, error) {
	toks, err := soleStatementTokens(text)
	if err != nil {
		return nil, err
	}
	q, idx, err := parser.ParseUpdate(toks, 0)
	if err != nil {
		return nil, err
	}
	return q, trailingCheck(toks, idx)
}

func ParseDelete(text string) (*ast.DeleteQuery, error) {
	toks, err := soleStatementTokens(text)
	if err != nil {
		return nil, err
	}
	q, idx, err := parser.ParseDelete(toks, 0)
	if err != nil {
		return nil, err
	}
	return q, trailingCheck(toks, idx)
}

func ParseMerge(text string) (*ast.MergeQuery, error) {
	toks, err := soleStatementTokens(text)
	if err != nil {
		return nil, err
	}
	q, idx, err := parser.ParseMerge(toks, 0)
	if err != nil {
		return nil, err
	}
	return q, trailingCheck(toks, idx)
}

func ParseCreateTable(text string) (*ast.CreateTableQuery, error) {
	toks, err := soleStatementTokens(text)
	if err != nil {
		return nil, err
	}
	q, idx, err := parser.ParseCreateTable(toks, 0)
	if err != nil {
		return nil, err
	}
	return q, trailingCheck(toks, idx)
}

func soleStatementTokens(text string) ([]token.Token, error) {
	stmts, err := tokenizeStatements(text, DefaultOptions)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, &parser.UnexpectedEnd{Expected: "a statement"}
	}
	return stmts[0].Tokens, nil
}

func trailingCheck(toks []token.Token, idx int) error {
	if idx < len(toks) {
		return &parser.TrailingTokens{Index: idx, Position: toks[idx].Start}
	}
	return nil
}

// AnalyzeResult is the non-throwing outcome of Analyze: Error is nil iff
// Success is true, in which case AST holds the parsed statement.
type AnalyzeResult struct {
	Success         bool
	AST             ast.Statement
	Error           error
	ErrorPosition   token.Pos
	RemainingTokens int
}

// Analyze parses text and never returns a Go error itself; every failure is
// captured in the returned AnalyzeResult, with ErrorPosition translated from
// the failing token's index to its character offset/line/column.
func Analyze(text string) AnalyzeResult {
	stmts, err := tokenizeStatements(text, DefaultOptions)
	if err != nil {
		return AnalyzeResult{Success: false, Error: err}
	}
	if len(stmts) == 0 {
		return AnalyzeResult{Success: false, Error: &parser.UnexpectedEnd{Expected: "a statement"}}
	}
	toks := stmts[0].Tokens
	stmt, idx, err := parser.ParseStatement(toks, 0)
	if err != nil {
		return AnalyzeResult{Success: false, Error: err, ErrorPosition: positionAt(toks, idx)}
	}
	if idx < len(toks) {
		return AnalyzeResult{
			Success:         false,
			Error:           &parser.TrailingTokens{Index: idx, Position: toks[idx].Start},
			ErrorPosition:   toks[idx].Start,
			RemainingTokens: len(toks) - idx,
		}
	}
	return AnalyzeResult{Success: true, AST: stmt}
}

func positionAt(toks []token.Token, idx int) token.Pos {
	if idx >= 0 && idx < len(toks) {
		return toks[idx].Start
	}
	if len(toks) > 0 {
		return toks[len(toks)-1].End
	}
	return token.Pos{}
}

// Repool returns an AST's pooled nodes and slices to the internal pools for
// reuse by later calls to Parse/ParseAll. This is optional — if not called,
// the nodes are simply garbage collected like any other value — but
// calling it after a statement is done being used reduces allocations when
// parsing many queries.
//
// Example:
//
//	stmt, err := sqlast.Parse(sql)
//	if err != nil {
//	    return err
//	}
//	defer sqlast.Repool(stmt)
//	// ... use stmt ...
func Repool(stmt ast.Statement) {
	ast.ReleaseAST(stmt)
}

// String formats an AST node back to SQL.
func String(node ast.Node) string {
	return format.String(node)
}

// Walk traverses the AST calling fn for each node. If fn returns false, the
// node's children are not visited.
func Walk(node ast.Node, fn func(ast.Node) bool) {
	visitor.WalkFunc(node, fn)
}

// Rewrite traverses the AST allowing node replacement. fn is called in
// post-order (children first, then parent); return the replacement node or
// the original to keep it.
func Rewrite(node ast.Node, fn func(ast.Node) ast.Node) ast.Node {
	return visitor.Rewrite(node, fn)
}
