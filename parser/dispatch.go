package parser

import (
	"github.com/freeeve/sqlast/ast"
	"github.com/freeeve/sqlast/token"
)

// ParseStatement dispatches on the leading keyword(s) of toks[idx:] to the
// clause parser that owns that statement shape, and returns the parsed
// statement along with the index just past its last consumed token. Callers
// are responsible for checking that index lands at the end of the
// statement's token slice; a dispatch that stops short is a trailing-tokens
// error, not this function's concern.
func ParseStatement(toks []token.Token, idx int) (ast.Statement, int, error) {
	if _, ok := at(toks, idx); !ok {
		return nil, idx, &UnexpectedEnd{Expected: "a statement"}
	}
	switch {
	case isCommandAny(toks, idx, "with", "with recursive"):
		return parseStatementWithLeadingWith(toks, idx)
	case isCommand(toks, idx, "select"):
		return parseSelectQuery(toks, idx)
	case isCommand(toks, idx, "values"):
		return parseValuesQuery(toks, idx)
	case isCommand(toks, idx, "insert into"):
		return parseInsert(toks, idx)
	case isCommand(toks, idx, "update"):
		return parseUpdate(toks, idx)
	case isCommand(toks, idx, "delete from"):
		return parseDelete(toks, idx)
	case isCommandAny(toks, idx, "merge into", "merge"):
		return parseMerge(toks, idx)
	case isCommandAny(toks, idx, "create table", "create temporary table", "create temp table", "create table if not exists"):
		return parseCreateTable(toks, idx)
	case isCommandAny(toks, idx, "drop table", "drop table if exists"):
		return parseDropTable(toks, idx)
	case isCommandAny(toks, idx, "drop index", "drop index if exists"):
		return parseDropIndex(toks, idx)
	case isCommandAny(toks, idx, "drop schema", "drop schema if exists"):
		return parseDropSchema(toks, idx)
	case isCommand(toks, idx, "alter table"):
		return parseAlterTable(toks, idx)
	case isCommandAny(toks, idx, "create unique index", "create index"):
		return parseCreateIndex(toks, idx)
	case isCommand(toks, idx, "analyze"):
		return parseAnalyze(toks, idx)
	case isCommandAny(toks, idx, "explain", "explain analyze"):
		return parseExplain(toks, idx)
	case isCommand(toks, idx, "create sequence"):
		return parseCreateSequence(toks, idx)
	case isCommand(toks, idx, "alter sequence"):
		return parseAlterSequence(toks, idx)
	case isCommand(toks, idx, "drop sequence"):
		return parseDropSequence(toks, idx)
	case isCommand(toks, idx, "cluster"):
		return parseCluster(toks, idx)
	case isCommand(toks, idx, "reindex"):
		return parseReindex(toks, idx)
	default:
		t, _ := at(toks, idx)
		return nil, idx, &UnsupportedStatement{Index: idx, Position: t.Start, Lead: t.Value}
	}
}

// ParseSelect, ParseInsert, ParseUpdate, ParseDelete, ParseMerge, and
// ParseCreateTable expose the dedicated per-kind parsers named in the
// external interface contract, bypassing ParseStatement's lead-keyword
// dispatch for callers that already know what they are feeding in.
func ParseSelect(toks []token.Token, idx int) (ast.SelectQuery, int, error) {
	return parseSelectQuery(toks, idx)
}

func ParseInsert(toks []token.Token, idx int) (*ast.InsertQuery, int, error) {
	return parseInsert(toks, idx)
}

func ParseUpdate(toks []token.Token, idx int) (*ast.UpdateQuery, int, error) {
	return parseUpdate(toks, idx)
}

func ParseDelete(toks []token.Token, idx int) (*ast.DeleteQuery, int, error) {
	return parseDelete(toks, idx)
}

func ParseMerge(toks []token.Token, idx int) (*ast.MergeQuery, int, error) {
	return parseMerge(toks, idx)
}

func ParseCreateTable(toks []token.Token, idx int) (*ast.CreateTableQuery, int, error) {
	return parseCreateTable(toks, idx)
}

// parseStatementWithLeadingWith resolves what kind of statement a leading
// WITH clause belongs to by looking past it: INSERT/UPDATE/DELETE/MERGE take
// the already-parsed WithClause directly, everything else falls through to
// parseSelectQuery, which re-parses the WITH clause as part of the SELECT or
// VALUES set-operation chain it prefixes.
func parseStatementWithLeadingWith(toks []token.Token, idx int) (ast.Statement, int, error) {
	_, widx, err := parseWithClause(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	switch {
	case isCommand(toks, widx, "insert into"):
		w, nidx, err := parseWithClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		return parseInsertWith(toks, nidx, w)
	case isCommand(toks, widx, "update"):
		w, nidx, err := parseWithClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		return parseUpdateWith(toks, nidx, w)
	case isCommand(toks, widx, "delete from"):
		w, nidx, err := parseWithClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		return parseDeleteWith(toks, nidx, w)
	case isCommandAny(toks, widx, "merge into", "merge"):
		w, nidx, err := parseWithClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		return parseMergeWith(toks, nidx, w)
	default:
		return parseSelectQuery(toks, idx)
	}
}
