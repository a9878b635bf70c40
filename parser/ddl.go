package parser

import (
	"strings"

	"github.com/freeeve/sqlast/ast"
	"github.com/freeeve/sqlast/token"
)

// parseCreateTable parses "CREATE [TEMPORARY] TABLE [IF NOT EXISTS] name
// (coldefs…)" and the "CREATE TABLE … AS SELECT …" variant.
func parseCreateTable(toks []token.Token, idx int) (*ast.CreateTableQuery, int, error) {
	start := posAt(toks, idx)
	temporary := false
	ifNotExists := false
	switch {
	case isCommand(toks, idx, "create table if not exists"):
		idx++
		ifNotExists = true
	case isCommand(toks, idx, "create temporary table"):
		idx++
		temporary = true
	case isCommand(toks, idx, "create temp table"):
		idx++
		temporary = true
	case isCommand(toks, idx, "create table"):
		idx++
	default:
		return nil, idx, unexpected(toks, idx, "CREATE TABLE")
	}
	if !ifNotExists && isCommand(toks, idx, "if not exists") {
		idx++
		ifNotExists = true
	}
	table, idx, err := parseTableSource(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	q := &ast.CreateTableQuery{Name: table, Temporary: temporary, IfNotExists: ifNotExists}
	if isCommand(toks, idx, "as") {
		idx++
		sel, nidx, err := parseSelectQuery(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		q.As = sel
		idx = nidx
	} else {
		cols, nidx, err := parseColumnDefList(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		q.Columns = cols
		idx = nidx
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

func parseColumnDefList(toks []token.Token, idx int) ([]*ast.ColumnDef, int, error) {
	idx, err := expectKind(toks, idx, token.OpenParen, "(")
	if err != nil {
		return nil, idx, err
	}
	var cols []*ast.ColumnDef
	for {
		cd, nidx, err := parseColumnDefOrConstraint(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		cols = append(cols, cd)
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	idx, err = expectKind(toks, idx, token.CloseParen, ")")
	if err != nil {
		return nil, idx, err
	}
	return cols, idx, nil
}

// parseColumnDefOrConstraint parses one entry of a CREATE TABLE column list:
// either "name type [constraints…]" or a table-level constraint such as
// "PRIMARY KEY (…)" or "CHECK (…)", which is kept as raw text since the
// grammar here models columns, not constraint structure.
func parseColumnDefOrConstraint(toks []token.Token, idx int) (*ast.ColumnDef, int, error) {
	if isTableConstraintLead(toks, idx) {
		start := idx
		idx, err := skipBalancedUntilBoundary(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		return &ast.ColumnDef{Constraints: []string{joinTokenText(toks[start:idx])}}, idx, nil
	}
	t, ok := at(toks, idx)
	if !ok || !t.Kind.Has(token.Identifier) {
		return nil, idx, unexpected(toks, idx, "a column name or table constraint")
	}
	cd := &ast.ColumnDef{Name: t.Value}
	idx++
	typ, idx, err := parseTypeValue(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	cd.Type = typ
	constraints, idx, err := parseColumnConstraints(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	cd.Constraints = constraints
	return cd, idx, nil
}

func isTableConstraintLead(toks []token.Token, idx int) bool {
	if isCommandAny(toks, idx, "primary key", "unique", "foreign key", "check") {
		return true
	}
	t, ok := at(toks, idx)
	return ok && t.Kind.Has(token.Identifier) && strings.ToLower(t.Value) == "constraint"
}

func isColumnConstraintLead(t token.Token) bool {
	if t.Kind.Has(token.Command) {
		switch t.Value {
		case "not null", "primary key", "unique", "references", "check":
			return true
		}
		return false
	}
	if t.Kind.Has(token.Identifier) {
		switch strings.ToLower(t.Value) {
		case "default", "constraint", "collate":
			return true
		}
	}
	return false
}

// parseColumnConstraints collects the raw text of each constraint clause
// following a column's type, up to the next comma or the column list's
// closing paren.
func parseColumnConstraints(toks []token.Token, idx int) ([]string, int, error) {
	var constraints []string
	for {
		t, ok := at(toks, idx)
		if !ok || t.Kind.Has(token.Comma) || t.Kind.Has(token.CloseParen) {
			break
		}
		unitStart := idx
		idx++
		depth := 0
		for {
			t2, ok := at(toks, idx)
			if !ok {
				break
			}
			if t2.Kind.Has(token.CloseParen) {
				if depth == 0 {
					break
				}
				depth--
				idx++
				continue
			}
			if t2.Kind.Has(token.Comma) && depth == 0 {
				break
			}
			if t2.Kind.Has(token.OpenParen) {
				depth++
				idx++
				continue
			}
			if depth == 0 && isColumnConstraintLead(t2) {
				break
			}
			idx++
		}
		constraints = append(constraints, joinTokenText(toks[unitStart:idx]))
	}
	return constraints, idx, nil
}

// skipBalancedUntilBoundary advances idx to the next top-level comma or
// close-paren, treating nested parens as opaque.
func skipBalancedUntilBoundary(toks []token.Token, idx int) (int, error) {
	depth := 0
	for {
		t, ok := at(toks, idx)
		if !ok {
			return idx, &UnexpectedEnd{Expected: ")"}
		}
		if t.Kind.Has(token.CloseParen) {
			if depth == 0 {
				return idx, nil
			}
			depth--
		} else if t.Kind.Has(token.OpenParen) {
			depth++
		} else if t.Kind.Has(token.Comma) && depth == 0 {
			return idx, nil
		}
		idx++
	}
}

// parseDropTable parses "DROP TABLE [IF EXISTS] name, … [CASCADE|RESTRICT]".
func parseDropTable(toks []token.Token, idx int) (*ast.DropTableQuery, int, error) {
	start := posAt(toks, idx)
	ifExists := false
	switch {
	case isCommand(toks, idx, "drop table if exists"):
		idx++
		ifExists = true
	case isCommand(toks, idx, "drop table"):
		idx++
	default:
		return nil, idx, unexpected(toks, idx, "DROP TABLE")
	}
	if !ifExists && isCommand(toks, idx, "if exists") {
		idx++
		ifExists = true
	}
	var names []*ast.TableSource
	for {
		t, nidx, err := parseTableSource(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		names = append(names, t)
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	q := &ast.DropTableQuery{Names: names, IfExists: ifExists}
	if isCommand(toks, idx, "cascade") {
		idx++
		q.Cascade = true
	} else if isCommand(toks, idx, "restrict") {
		idx++
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

// parseDropIndex parses "DROP INDEX [IF EXISTS] name, …".
func parseDropIndex(toks []token.Token, idx int) (*ast.DropIndexQuery, int, error) {
	start := posAt(toks, idx)
	ifExists := false
	switch {
	case isCommand(toks, idx, "drop index if exists"):
		idx++
		ifExists = true
	case isCommand(toks, idx, "drop index"):
		idx++
	default:
		return nil, idx, unexpected(toks, idx, "DROP INDEX")
	}
	if !ifExists && isCommand(toks, idx, "if exists") {
		idx++
		ifExists = true
	}
	q := &ast.DropIndexQuery{IfExists: ifExists}
	for {
		t, ok := at(toks, idx)
		if !ok || !t.Kind.Has(token.Identifier) {
			return nil, idx, unexpected(toks, idx, "an index name")
		}
		q.Names = append(q.Names, t.Value)
		idx++
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

// parseDropSchema parses "DROP SCHEMA [IF EXISTS] name [CASCADE|RESTRICT]".
func parseDropSchema(toks []token.Token, idx int) (*ast.DropSchemaQuery, int, error) {
	start := posAt(toks, idx)
	ifExists := false
	switch {
	case isCommand(toks, idx, "drop schema if exists"):
		idx++
		ifExists = true
	case isCommand(toks, idx, "drop schema"):
		idx++
	default:
		return nil, idx, unexpected(toks, idx, "DROP SCHEMA")
	}
	if !ifExists && isCommand(toks, idx, "if exists") {
		idx++
		ifExists = true
	}
	t, ok := at(toks, idx)
	if !ok || !t.Kind.Has(token.Identifier) {
		return nil, idx, unexpected(toks, idx, "a schema name")
	}
	q := &ast.DropSchemaQuery{Name: t.Value, IfExists: ifExists}
	idx++
	if isCommand(toks, idx, "cascade") {
		idx++
		q.Cascade = true
	} else if isCommand(toks, idx, "restrict") {
		idx++
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

// parseCreateIndex parses "CREATE [UNIQUE] INDEX [IF NOT EXISTS] name ON
// table [USING method] (cols…) [WHERE predicate]".
func parseCreateIndex(toks []token.Token, idx int) (*ast.CreateIndexQuery, int, error) {
	start := posAt(toks, idx)
	unique := false
	switch {
	case isCommand(toks, idx, "create unique index"):
		idx++
		unique = true
	case isCommand(toks, idx, "create index"):
		idx++
	default:
		return nil, idx, unexpected(toks, idx, "CREATE INDEX")
	}
	ifNotExists := false
	if isCommand(toks, idx, "if not exists") {
		idx++
		ifNotExists = true
	}
	t, ok := at(toks, idx)
	if !ok || !t.Kind.Has(token.Identifier) {
		return nil, idx, unexpected(toks, idx, "an index name")
	}
	q := &ast.CreateIndexQuery{Name: t.Value, Unique: unique, IfNotExists: ifNotExists}
	idx++
	idx, err := expectCommand(toks, idx, "on")
	if err != nil {
		return nil, idx, err
	}
	table, idx, err := parseTableSource(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	q.Table = table
	if isCommand(toks, idx, "using") {
		idx++
		mt, ok := at(toks, idx)
		if ok && (mt.Kind.Has(token.Identifier) || mt.Kind.Has(token.Function)) {
			q.Using = mt.Value
			idx++
		}
	}
	idx, err = expectKind(toks, idx, token.OpenParen, "(")
	if err != nil {
		return nil, idx, err
	}
	for {
		colStart := idx
		depth := 0
		for {
			ct, ok := at(toks, idx)
			if !ok {
				return nil, idx, &UnexpectedEnd{Expected: ")"}
			}
			if depth == 0 && (ct.Kind.Has(token.Comma) || ct.Kind.Has(token.CloseParen)) {
				break
			}
			if ct.Kind.Has(token.OpenParen) {
				depth++
			} else if ct.Kind.Has(token.CloseParen) {
				depth--
			}
			idx++
		}
		if idx == colStart {
			return nil, idx, unexpected(toks, idx, "a column or expression")
		}
		q.Columns = append(q.Columns, joinTokenText(toks[colStart:idx]))
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	idx, err = expectKind(toks, idx, token.CloseParen, ")")
	if err != nil {
		return nil, idx, err
	}
	if isCommand(toks, idx, "where") {
		idx++
		cond, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		q.Where = cond
		idx = nidx
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

// parseAlterTable parses "ALTER TABLE name action, …". A lone "DROP
// CONSTRAINT" action is returned as its own DropConstraintQuery rather than a
// one-element AlterTableQuery, since that form has dedicated AST support.
func parseAlterTable(toks []token.Token, idx int) (ast.Statement, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "alter table")
	if err != nil {
		return nil, idx, err
	}
	target, idx, err := parseTableSource(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	if isCommand(toks, idx, "drop constraint") {
		idx++
		ifExists := false
		if isCommand(toks, idx, "if exists") {
			idx++
			ifExists = true
		}
		t, ok := at(toks, idx)
		if !ok || !t.Kind.Has(token.Identifier) {
			return nil, idx, unexpected(toks, idx, "a constraint name")
		}
		q := &ast.DropConstraintQuery{Table: target, ConstraintName: t.Value, IfExists: ifExists}
		idx++
		q.Span = spanAt(start, posAt(toks, idx))
		return q, idx, nil
	}
	var actions []*ast.AlterTableAction
	for {
		a, nidx, err := parseAlterTableAction(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		actions = append(actions, a)
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	q := &ast.AlterTableQuery{Table: target, Actions: actions}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

func parseAlterTableAction(toks []token.Token, idx int) (*ast.AlterTableAction, int, error) {
	kind := "other"
	switch {
	case isCommand(toks, idx, "add column"):
		kind = "add column"
		idx++
	case isCommand(toks, idx, "drop column"):
		kind = "drop column"
		idx++
	case isCommand(toks, idx, "rename to"):
		kind = "rename to"
		idx++
	case isCommand(toks, idx, "rename column"):
		kind = "rename column"
		idx++
	}
	rawStart := idx
	// An action runs to a top-level comma, an unmatched ")", or the end of
	// the statement.
	for depth := 0; ; idx++ {
		t, ok := at(toks, idx)
		if !ok {
			if depth > 0 {
				return nil, idx, &UnexpectedEnd{Expected: ")"}
			}
			break
		}
		if t.Kind.Has(token.OpenParen) {
			depth++
		} else if t.Kind.Has(token.CloseParen) || (t.Kind.Has(token.Comma) && depth == 0) {
			if depth == 0 {
				break
			}
			depth--
		}
	}
	if idx == rawStart {
		return nil, idx, unexpected(toks, idx, "an ALTER TABLE action")
	}
	return &ast.AlterTableAction{Kind: kind, Raw: joinTokenText(toks[rawStart:idx])}, idx, nil
}

// parseAnalyze parses "ANALYZE [table [(cols…)]]".
func parseAnalyze(toks []token.Token, idx int) (*ast.AnalyzeQuery, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "analyze")
	if err != nil {
		return nil, idx, err
	}
	q := &ast.AnalyzeQuery{}
	if t, ok := at(toks, idx); ok && t.Kind.Has(token.Identifier) {
		table, nidx, err := parseTableSource(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		q.Table = table
		idx = nidx
		if isKind(toks, idx, token.OpenParen) {
			idx++
			for {
				ct, ok := at(toks, idx)
				if !ok || !ct.Kind.Has(token.Identifier) {
					return nil, idx, unexpected(toks, idx, "a column name")
				}
				q.Columns = append(q.Columns, ct.Value)
				idx++
				if isKind(toks, idx, token.Comma) {
					idx++
					continue
				}
				break
			}
			idx, err = expectKind(toks, idx, token.CloseParen, ")")
			if err != nil {
				return nil, idx, err
			}
		}
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

// parseExplain parses "EXPLAIN [ANALYZE] [(options…)] statement".
func parseExplain(toks []token.Token, idx int) (*ast.ExplainQuery, int, error) {
	start := posAt(toks, idx)
	analyzeFlag := false
	switch {
	case isCommand(toks, idx, "explain analyze"):
		idx++
		analyzeFlag = true
	case isCommand(toks, idx, "explain"):
		idx++
	default:
		return nil, idx, unexpected(toks, idx, "EXPLAIN")
	}
	q := &ast.ExplainQuery{Analyze: analyzeFlag}
	if isKind(toks, idx, token.OpenParen) {
		idx++
		for {
			t, ok := at(toks, idx)
			if !ok {
				return nil, idx, &UnexpectedEnd{Expected: ")"}
			}
			opt := t.Value
			idx++
			if t2, ok := at(toks, idx); ok && !t2.Kind.Has(token.Comma) && !t2.Kind.Has(token.CloseParen) {
				opt = opt + " " + t2.Value
				idx++
			}
			q.Options = append(q.Options, opt)
			if isKind(toks, idx, token.Comma) {
				idx++
				continue
			}
			break
		}
		var err error
		idx, err = expectKind(toks, idx, token.CloseParen, ")")
		if err != nil {
			return nil, idx, err
		}
	}
	target, nidx, err := ParseStatement(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	q.Target = target
	idx = nidx
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

// parseCreateSequence parses "CREATE SEQUENCE [IF NOT EXISTS] name
// [options…]".
func parseCreateSequence(toks []token.Token, idx int) (*ast.CreateSequenceQuery, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "create sequence")
	if err != nil {
		return nil, idx, err
	}
	ifNotExists := false
	if isCommand(toks, idx, "if not exists") {
		idx++
		ifNotExists = true
	}
	t, ok := at(toks, idx)
	if !ok || !t.Kind.Has(token.Identifier) {
		return nil, idx, unexpected(toks, idx, "a sequence name")
	}
	q := &ast.CreateSequenceQuery{Name: t.Value, IfNotExists: ifNotExists}
	idx++
	opts, idx, err := parseSequenceOptions(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	q.Options = opts
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

// parseAlterSequence parses "ALTER SEQUENCE [IF EXISTS] name [options…]".
func parseAlterSequence(toks []token.Token, idx int) (*ast.AlterSequenceQuery, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "alter sequence")
	if err != nil {
		return nil, idx, err
	}
	ifExists := false
	if isCommand(toks, idx, "if exists") {
		idx++
		ifExists = true
	}
	t, ok := at(toks, idx)
	if !ok || !t.Kind.Has(token.Identifier) {
		return nil, idx, unexpected(toks, idx, "a sequence name")
	}
	q := &ast.AlterSequenceQuery{Name: t.Value, IfExists: ifExists}
	idx++
	opts, idx, err := parseSequenceOptions(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	q.Options = opts
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

// parseDropSequence parses "DROP SEQUENCE [IF EXISTS] name, …".
func parseDropSequence(toks []token.Token, idx int) (*ast.DropSequenceQuery, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "drop sequence")
	if err != nil {
		return nil, idx, err
	}
	ifExists := false
	if isCommand(toks, idx, "if exists") {
		idx++
		ifExists = true
	}
	q := &ast.DropSequenceQuery{IfExists: ifExists}
	for {
		t, ok := at(toks, idx)
		if !ok || !t.Kind.Has(token.Identifier) {
			return nil, idx, unexpected(toks, idx, "a sequence name")
		}
		q.Names = append(q.Names, t.Value)
		idx++
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

// sequenceOptionKeywords are the recognized lead words of a CREATE/ALTER
// SEQUENCE option. Most arrive as plain identifiers; "as" (and the connective
// "with") are keyword-trie commands. All are matched here by lower-cased text.
var sequenceOptionKeywords = map[string]bool{
	"as": true, "increment": true, "minvalue": true, "maxvalue": true,
	"no": true, "start": true, "cache": true, "cycle": true, "owned": true,
	"restart": true,
}

// parseSequenceOptions greedily consumes "KEYWORD [BY|WITH] value"-shaped
// clauses until a token outside the option vocabulary ends the statement.
func parseSequenceOptions(toks []token.Token, idx int) (map[string]string, int, error) {
	var opts map[string]string
	for {
		t, ok := at(toks, idx)
		if !ok || !(t.Kind.Has(token.Identifier) || t.Kind.Has(token.Function) || t.Kind.Has(token.Command)) {
			break
		}
		key := strings.ToLower(t.Value)
		if !sequenceOptionKeywords[key] {
			break
		}
		idx++
		if key == "no" {
			nt, ok := at(toks, idx)
			if !ok {
				return nil, idx, &UnexpectedEnd{Expected: "MINVALUE, MAXVALUE, or CYCLE"}
			}
			key = key + " " + strings.ToLower(nt.Value)
			idx++
		}
		if ft, ok := at(toks, idx); ok && (ft.Kind.Has(token.Identifier) || ft.Kind.Has(token.Command)) {
			low := strings.ToLower(ft.Value)
			if low == "by" || low == "with" {
				idx++
			}
		}
		value := ""
		if vt, ok := at(toks, idx); ok && !isSequenceOptionBoundary(vt) {
			value = vt.Value
			idx++
			if key == "owned" && value == "by" {
				// "OWNED BY" leaves "by" consumed above; read the column ref next.
				nt, ok := at(toks, idx)
				if ok {
					value = nt.Value
					idx++
				}
			}
		}
		if opts == nil {
			opts = map[string]string{}
		}
		opts[key] = value
	}
	return opts, idx, nil
}

func isSequenceOptionBoundary(t token.Token) bool {
	if t.Kind.Has(token.Identifier) || t.Kind.Has(token.Function) || t.Kind.Has(token.Command) {
		return sequenceOptionKeywords[strings.ToLower(t.Value)]
	}
	return false
}

// parseCluster parses "CLUSTER [table [USING index]]".
func parseCluster(toks []token.Token, idx int) (*ast.ClusterQuery, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "cluster")
	if err != nil {
		return nil, idx, err
	}
	q := &ast.ClusterQuery{}
	if t, ok := at(toks, idx); ok && t.Kind.Has(token.Identifier) {
		table, nidx, err := parseTableSource(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		q.Table = table
		idx = nidx
		if isCommand(toks, idx, "using") {
			idx++
			it, ok := at(toks, idx)
			if !ok || !it.Kind.Has(token.Identifier) {
				return nil, idx, unexpected(toks, idx, "an index name")
			}
			q.Index = it.Value
			idx++
		}
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

var reindexKinds = map[string]bool{"index": true, "table": true, "schema": true, "database": true}

// parseReindex parses "REINDEX {INDEX|TABLE|SCHEMA|DATABASE} name".
func parseReindex(toks []token.Token, idx int) (*ast.ReindexQuery, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "reindex")
	if err != nil {
		return nil, idx, err
	}
	q := &ast.ReindexQuery{}
	t, ok := at(toks, idx)
	if ok && (t.Kind.Has(token.Identifier) || t.Kind.Has(token.Type)) && reindexKinds[strings.ToLower(t.Value)] {
		q.Kind = strings.ToLower(t.Value)
		idx++
	}
	nt, ok := at(toks, idx)
	if !ok || !nt.Kind.Has(token.Identifier) {
		return nil, idx, unexpected(toks, idx, "a name")
	}
	q.Name = nt.Value
	idx++
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}
