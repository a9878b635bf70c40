package parser

import (
	"github.com/freeeve/sqlast/ast"
	"github.com/freeeve/sqlast/token"
)

// parseInsert parses "[WITH …] INSERT INTO target [(cols)] {VALUES … |
// SELECT …} [RETURNING …]". The leading WITH, if any, has already been
// consumed by the caller in the top-level dispatch path but not inside a
// CTE body, so this also accepts a bare INSERT for that case.
func parseInsert(toks []token.Token, idx int) (*ast.InsertQuery, int, error) {
	return parseInsertWith(toks, idx, nil)
}

func parseInsertWith(toks []token.Token, idx int, with *ast.WithClause) (*ast.InsertQuery, int, error) {
	start := posAt(toks, idx)
	if with != nil {
		start = with.Pos()
	}
	icStart := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "insert into")
	if err != nil {
		return nil, idx, err
	}
	target, idx, err := parseTableSource(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	ic := &ast.InsertClause{Target: target}
	if isKind(toks, idx, token.OpenParen) {
		idx++
		ic.Columns = []string{}
		for {
			t, ok := at(toks, idx)
			if !ok || !t.Kind.Has(token.Identifier) {
				return nil, idx, unexpected(toks, idx, "a column name")
			}
			ic.Columns = append(ic.Columns, t.Value)
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
	ic.Span = spanAt(icStart, posAt(toks, idx))

	q := &ast.InsertQuery{With: with, Insert: ic}

	if isCommand(toks, idx, "default values") {
		idx++
	} else if isCommand(toks, idx, "values") {
		vq, nidx, err := parseValuesQuery(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		q.Values = vq
		idx = nidx
	} else {
		sel, nidx, err := parseSelectQuery(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		q.Select = sel
		idx = nidx
	}

	if isCommand(toks, idx, "on conflict") {
		idx, err = skipOnConflict(toks, idx)
		if err != nil {
			return nil, idx, err
		}
	}

	if isCommand(toks, idx, "returning") {
		rc, nidx, err := parseReturningClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		q.Returning = rc
		idx = nidx
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

// skipOnConflict consumes an "ON CONFLICT [(cols)] {DO NOTHING | DO UPDATE
// SET …}" clause. The clause is recognized and its tokens consumed so the
// statement terminates cleanly, but its structure is not retained on the
// AST node: upsert targets are dialect-specific enough that modeling them
// precisely is left to a future revision.
func skipOnConflict(toks []token.Token, idx int) (int, error) {
	idx++ // "on conflict"
	if isKind(toks, idx, token.OpenParen) {
		idx++
		depth := 1
		for depth > 0 {
			t, ok := at(toks, idx)
			if !ok {
				return idx, &UnexpectedEnd{Expected: ")"}
			}
			if t.Kind.Has(token.OpenParen) {
				depth++
			} else if t.Kind.Has(token.CloseParen) {
				depth--
			}
			idx++
		}
	}
	if isCommand(toks, idx, "do nothing") {
		return idx + 1, nil
	}
	if isCommand(toks, idx, "do update") {
		idx++
		idx, err := expectCommand(toks, idx, "set")
		if err != nil {
			return idx, err
		}
		_, idx, err = parseAssignments(toks, idx)
		if err != nil {
			return idx, err
		}
		if isCommand(toks, idx, "where") {
			idx++
			_, nidx, err := ParseValue(toks, idx, true, true)
			if err != nil {
				return idx, err
			}
			idx = nidx
		}
		return idx, nil
	}
	return idx, unexpected(toks, idx, "DO NOTHING or DO UPDATE")
}

func parseReturningClause(toks []token.Token, idx int) (*ast.ReturningClause, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "returning")
	if err != nil {
		return nil, idx, err
	}
	rc := &ast.ReturningClause{}
	for {
		item, nidx, err := parseSelectItem(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		rc.Items = append(rc.Items, item)
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	rc.Span = spanAt(start, posAt(toks, idx))
	return rc, idx, nil
}

// parseUpdate parses "[WITH …] UPDATE target SET … [FROM …] [WHERE …]
// [RETURNING …]".
func parseUpdate(toks []token.Token, idx int) (*ast.UpdateQuery, int, error) {
	return parseUpdateWith(toks, idx, nil)
}

func parseUpdateWith(toks []token.Token, idx int, with *ast.WithClause) (*ast.UpdateQuery, int, error) {
	start := posAt(toks, idx)
	if with != nil {
		start = with.Pos()
	}
	ucStart := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "update")
	if err != nil {
		return nil, idx, err
	}
	target, idx, err := parseSourceExpression(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	uc := &ast.UpdateClause{Target: target, Span: spanAt(ucStart, posAt(toks, idx))}

	idx, err = expectCommand(toks, idx, "set")
	if err != nil {
		return nil, idx, err
	}
	sc, idx, err := parseAssignments(toks, idx)
	if err != nil {
		return nil, idx, err
	}

	q := &ast.UpdateQuery{With: with, Update: uc, Set: sc}

	if isCommand(toks, idx, "from") {
		fc, nidx, err := parseFromClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		q.From = fc
		idx = nidx
	}
	if isCommand(toks, idx, "where") {
		idx++
		cond, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		q.Where = &ast.WhereClause{Condition: cond, Span: spanAt(posAt(toks, idx), posAt(toks, nidx))}
		idx = nidx
	}
	if isCommand(toks, idx, "returning") {
		rc, nidx, err := parseReturningClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		q.Returning = rc
		idx = nidx
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

func parseAssignments(toks []token.Token, idx int) (*ast.SetClause, int, error) {
	start := posAt(toks, idx)
	sc := &ast.SetClause{}
	for {
		a, nidx, err := parseAssignment(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		sc.Assignments = append(sc.Assignments, a)
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	sc.Span = spanAt(start, posAt(toks, idx))
	return sc, idx, nil
}

func parseAssignment(toks []token.Token, idx int) (*ast.Assignment, int, error) {
	a := &ast.Assignment{}
	if isKind(toks, idx, token.OpenParen) {
		idx++
		for {
			t, ok := at(toks, idx)
			if !ok || !t.Kind.Has(token.Identifier) {
				return nil, idx, unexpected(toks, idx, "a column name")
			}
			a.Columns = append(a.Columns, t.Value)
			idx++
			if isKind(toks, idx, token.Comma) {
				idx++
				continue
			}
			break
		}
		idx, err := expectKind(toks, idx, token.CloseParen, ")")
		if err != nil {
			return nil, idx, err
		}
		if !isOperator(toks, idx, "=") {
			return nil, idx, unexpected(toks, idx, "=")
		}
		idx++
		v, nidx, err := ParseValue(toks, idx, false, false)
		if err != nil {
			return nil, idx, err
		}
		a.Value = v
		return a, nidx, nil
	}
	t, ok := at(toks, idx)
	if !ok || !t.Kind.Has(token.Identifier) {
		return nil, idx, unexpected(toks, idx, "a column name")
	}
	a.Columns = []string{t.Value}
	idx++
	if !isOperator(toks, idx, "=") {
		return nil, idx, unexpected(toks, idx, "=")
	}
	idx++
	v, idx, err := ParseValue(toks, idx, false, false)
	if err != nil {
		return nil, idx, err
	}
	a.Value = v
	return a, idx, nil
}

// parseDelete parses "[WITH …] DELETE FROM target [USING …] [WHERE …]
// [RETURNING …]".
func parseDelete(toks []token.Token, idx int) (*ast.DeleteQuery, int, error) {
	return parseDeleteWith(toks, idx, nil)
}

func parseDeleteWith(toks []token.Token, idx int, with *ast.WithClause) (*ast.DeleteQuery, int, error) {
	start := posAt(toks, idx)
	if with != nil {
		start = with.Pos()
	}
	dcStart := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "delete from")
	if err != nil {
		return nil, idx, err
	}
	target, idx, err := parseSourceExpression(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	dc := &ast.DeleteClause{Target: target, Span: spanAt(dcStart, posAt(toks, idx))}
	q := &ast.DeleteQuery{With: with, Delete: dc}

	if isCommand(toks, idx, "using") {
		ustart := posAt(toks, idx)
		idx++
		var sources []*ast.SourceExpression
		for {
			s, nidx, err := parseSourceExpression(toks, idx)
			if err != nil {
				return nil, idx, err
			}
			idx = nidx
			sources = append(sources, s)
			if isKind(toks, idx, token.Comma) {
				idx++
				continue
			}
			break
		}
		q.Using = &ast.UsingClause{Sources: sources, Span: spanAt(ustart, posAt(toks, idx))}
	}
	if isCommand(toks, idx, "where") {
		idx++
		cond, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		q.Where = &ast.WhereClause{Condition: cond, Span: spanAt(posAt(toks, idx), posAt(toks, nidx))}
		idx = nidx
	}
	if isCommand(toks, idx, "returning") {
		rc, nidx, err := parseReturningClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		q.Returning = rc
		idx = nidx
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}
