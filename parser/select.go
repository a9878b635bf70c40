package parser

import (
	"github.com/freeeve/sqlast/ast"
	"github.com/freeeve/sqlast/token"
)

// parseSelectQuery parses the SELECT core, including an optional leading
// WITH clause and any chain of set operations (UNION/INTERSECT/EXCEPT),
// which are left-associative.
func parseSelectQuery(toks []token.Token, idx int) (ast.SelectQuery, int, error) {
	var with *ast.WithClause
	if isCommandAny(toks, idx, "with", "with recursive") {
		w, nidx, err := parseWithClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		with = w
		idx = nidx
	}

	left, idx, err := parseSelectOperand(toks, idx, with)
	if err != nil {
		return nil, idx, err
	}

	for isCommandAny(toks, idx, "union", "union all", "intersect", "intersect all", "except", "except all") {
		op, all := setOperatorOf(toks[idx].Value)
		start := left.Pos()
		idx++
		right, nidx, err := parseSelectOperand(toks, idx, nil)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		left = &ast.BinarySelectQuery{Operator: op, All: all, Left: left, Right: right, Span: spanAt(start, posAt(toks, idx))}
	}
	return left, idx, nil
}

func setOperatorOf(value string) (ast.SetOperator, bool) {
	switch value {
	case "union":
		return ast.SetUnion, false
	case "union all":
		return ast.SetUnion, true
	case "intersect":
		return ast.SetIntersect, false
	case "intersect all":
		return ast.SetIntersect, true
	case "except":
		return ast.SetExcept, false
	case "except all":
		return ast.SetExcept, true
	}
	return ast.SetUnion, false
}

// parseSelectOperand parses one operand of a set-operation chain: a simple
// SELECT, a VALUES list, or a parenthesized operand. with is attached to the
// operand only when this is the first (leftmost) operand of the chain.
func parseSelectOperand(toks []token.Token, idx int, with *ast.WithClause) (ast.SelectQuery, int, error) {
	if isKind(toks, idx, token.OpenParen) {
		start := posAt(toks, idx)
		idx++
		inner, nidx, err := parseSelectQuery(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		idx, err = expectKind(toks, idx, token.CloseParen, ")")
		if err != nil {
			return nil, idx, err
		}
		_ = start
		return inner, idx, nil
	}
	if isCommand(toks, idx, "values") {
		return parseValuesQuery(toks, idx)
	}
	return parseSimpleSelect(toks, idx, with)
}

func parseValuesQuery(toks []token.Token, idx int) (*ast.ValuesQuery, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "values")
	if err != nil {
		return nil, idx, err
	}
	q := &ast.ValuesQuery{}
	for {
		idx, err = expectKind(toks, idx, token.OpenParen, "(")
		if err != nil {
			return nil, idx, err
		}
		var row []ast.Value
		for {
			v, nidx, err := ParseValue(toks, idx, true, true)
			if err != nil {
				return nil, idx, err
			}
			idx = nidx
			row = append(row, v)
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
		q.Rows = append(q.Rows, row)
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

func parseSimpleSelect(toks []token.Token, idx int, with *ast.WithClause) (*ast.SimpleSelect, int, error) {
	start := posAt(toks, idx)
	if with != nil {
		start = with.Pos()
	}
	sel := ast.GetSimpleSelect()
	sel.With = with

	selectClause, idx, err := parseSelectClause(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	sel.Select = selectClause

	if isCommand(toks, idx, "from") {
		from, nidx, err := parseFromClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		sel.From = from
		idx = nidx
	}
	if isCommand(toks, idx, "where") {
		idx++
		cond, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		sel.Where = &ast.WhereClause{Condition: cond, Span: spanAt(posAt(toks, idx), posAt(toks, nidx))}
		idx = nidx
	}
	if isCommand(toks, idx, "group by") {
		gstart := posAt(toks, idx)
		idx++
		items := *ast.GetValueSlice()
		for {
			v, nidx, err := ParseValue(toks, idx, true, true)
			if err != nil {
				return nil, idx, err
			}
			idx = nidx
			items = append(items, v)
			if isKind(toks, idx, token.Comma) {
				idx++
				continue
			}
			break
		}
		sel.GroupBy = &ast.GroupByClause{Items: items, Span: spanAt(gstart, posAt(toks, idx))}
	}
	if isCommand(toks, idx, "having") {
		hstart := posAt(toks, idx)
		idx++
		cond, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		sel.Having = &ast.HavingClause{Condition: cond, Span: spanAt(hstart, posAt(toks, nidx))}
		idx = nidx
	}
	if isCommand(toks, idx, "window") {
		w, nidx, err := parseWindowClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		sel.Window = w
		idx = nidx
	}
	if isCommand(toks, idx, "order by") {
		ob, nidx, err := parseOrderByClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		sel.OrderBy = ob
		idx = nidx
	}
	if isCommand(toks, idx, "limit") {
		lstart := posAt(toks, idx)
		idx++
		if isOperator(toks, idx, "all") {
			idx++
			sel.Limit = &ast.LimitClause{Span: spanAt(lstart, posAt(toks, idx))}
		} else {
			v, nidx, err := ParseValue(toks, idx, false, false)
			if err != nil {
				return nil, idx, err
			}
			sel.Limit = &ast.LimitClause{Count: v, Span: spanAt(lstart, posAt(toks, nidx))}
			idx = nidx
		}
	}
	if isCommand(toks, idx, "offset") {
		ostart := posAt(toks, idx)
		idx++
		v, nidx, err := ParseValue(toks, idx, false, false)
		if err != nil {
			return nil, idx, err
		}
		sel.Offset = &ast.OffsetClause{Count: v, Span: spanAt(ostart, posAt(toks, nidx))}
		idx = nidx
		if isCommandAny(toks, idx, "row", "rows") {
			idx++
		}
	}
	if isCommandAny(toks, idx, "fetch first", "fetch next") {
		fstart := posAt(toks, idx)
		idx++
		v, nidx, err := ParseValue(toks, idx, false, false)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		if isCommandAny(toks, idx, "row", "rows") {
			idx++
		}
		withTies := false
		if isCommand(toks, idx, "only") {
			idx++
		} else if isCommand(toks, idx, "with ties") {
			idx++
			withTies = true
		}
		sel.Fetch = &ast.FetchClause{Count: v, WithTies: withTies, Span: spanAt(fstart, posAt(toks, idx))}
	}
	if isCommandAny(toks, idx, "for update", "for share", "for no key update", "for key share") {
		fc, nidx, err := parseForClause(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		sel.For = fc
		idx = nidx
	}
	sel.Span = spanAt(start, posAt(toks, idx))
	return sel, idx, nil
}

func parseWithClause(toks []token.Token, idx int) (*ast.WithClause, int, error) {
	start := posAt(toks, idx)
	recursive := toks[idx].Value == "with recursive"
	idx++
	w := &ast.WithClause{Recursive: recursive}
	for {
		ct, nidx, err := parseCommonTable(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		w.Tables = append(w.Tables, ct)
		idx = nidx
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	w.Span = spanAt(start, posAt(toks, idx))
	return w, idx, nil
}

func parseCommonTable(toks []token.Token, idx int) (*ast.CommonTable, int, error) {
	t, ok := at(toks, idx)
	if !ok || !t.Kind.Has(token.Identifier) {
		return nil, idx, unexpected(toks, idx, "a common table name")
	}
	ct := &ast.CommonTable{Alias: t.Value}
	idx++
	if isKind(toks, idx, token.OpenParen) {
		idx++
		for {
			nt, ok := at(toks, idx)
			if !ok || !nt.Kind.Has(token.Identifier) {
				return nil, idx, unexpected(toks, idx, "a column alias")
			}
			ct.ColumnAliases = append(ct.ColumnAliases, nt.Value)
			idx++
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
	idx, err := expectCommand(toks, idx, "as")
	if err != nil {
		return nil, idx, err
	}
	if isCommand(toks, idx, "materialized") {
		idx++
		ct.Materialized = ast.MaterializedTrue
	} else if isCommand(toks, idx, "not materialized") {
		idx++
		ct.Materialized = ast.MaterializedFalse
	}
	idx, err = expectKind(toks, idx, token.OpenParen, "(")
	if err != nil {
		return nil, idx, err
	}
	stmt, nidx, err := parseCTEBody(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	idx = nidx
	ct.Query = stmt
	idx, err = expectKind(toks, idx, token.CloseParen, ")")
	if err != nil {
		return nil, idx, err
	}
	return ct, idx, nil
}

// parseCTEBody parses whatever statement a WITH table's body holds: usually
// a SELECT, but INSERT/UPDATE/DELETE are legal as a data-modifying CTE.
func parseCTEBody(toks []token.Token, idx int) (ast.Statement, int, error) {
	if isCommand(toks, idx, "insert into") {
		return parseInsert(toks, idx)
	}
	if isCommand(toks, idx, "update") {
		return parseUpdate(toks, idx)
	}
	if isCommand(toks, idx, "delete from") {
		return parseDelete(toks, idx)
	}
	return parseSelectQuery(toks, idx)
}

func parseSelectClause(toks []token.Token, idx int) (*ast.SelectClause, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "select")
	if err != nil {
		return nil, idx, err
	}
	sc := &ast.SelectClause{}
	if isCommand(toks, idx, "distinct") {
		idx++
		sc.Distinct = true
	} else if isCommand(toks, idx, "distinct on") {
		idx++
		sc.Distinct = true
		idx, err = expectKind(toks, idx, token.OpenParen, "(")
		if err != nil {
			return nil, idx, err
		}
		for {
			v, nidx, err := ParseValue(toks, idx, true, true)
			if err != nil {
				return nil, idx, err
			}
			idx = nidx
			sc.DistinctOn = append(sc.DistinctOn, v)
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
	} else if isOperator(toks, idx, "all") {
		idx++
	}
	sc.Items = *ast.GetSelectItemSlice()
	for {
		item, nidx, err := parseSelectItem(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		sc.Items = append(sc.Items, item)
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	sc.Span = spanAt(start, posAt(toks, idx))
	return sc, idx, nil
}

func parseSelectItem(toks []token.Token, idx int) (ast.SelectItem, int, error) {
	if isOperator(toks, idx, "*") {
		idx++
		return ast.SelectItem{Star: true}, idx, nil
	}
	v, idx, err := ParseValue(toks, idx, true, true)
	if err != nil {
		return ast.SelectItem{}, idx, err
	}
	if cr, ok := v.(*ast.ColumnReference); ok && cr.Star {
		item := ast.SelectItem{Expr: v, Star: true}
		return item, idx, nil
	}
	item := ast.SelectItem{Expr: v}
	if isCommand(toks, idx, "as") {
		idx++
		t, ok := at(toks, idx)
		if !ok {
			return ast.SelectItem{}, idx, &UnexpectedEnd{Expected: "a column alias"}
		}
		item.Alias = t.Value
		idx++
	} else if t, ok := at(toks, idx); ok && t.Kind.Has(token.Identifier) {
		item.Alias = t.Value
		idx++
	}
	return item, idx, nil
}

func parseFromClause(toks []token.Token, idx int) (*ast.FromClause, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "from")
	if err != nil {
		return nil, idx, err
	}
	src, idx, err := parseSourceExpression(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	fc := &ast.FromClause{Source: src}
	for {
		if isKind(toks, idx, token.Comma) {
			idx++
			rhs, nidx, err := parseSourceExpression(toks, idx)
			if err != nil {
				return nil, idx, err
			}
			idx = nidx
			fc.Joins = append(fc.Joins, &ast.JoinClause{Type: ast.JoinCross, Source: rhs, Span: spanAt(rhs.Pos(), rhs.End())})
			continue
		}
		jt, ok := peekJoinType(toks, idx)
		if !ok {
			break
		}
		jstart := posAt(toks, idx)
		idx = skipJoinKeyword(toks, idx)
		rhs, nidx, err := parseSourceExpression(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		jc := &ast.JoinClause{Type: jt, Source: rhs}
		if isCommand(toks, idx, "on") {
			idx++
			cond, nidx2, err := ParseValue(toks, idx, true, true)
			if err != nil {
				return nil, idx, err
			}
			jc.On = cond
			idx = nidx2
		} else if isCommand(toks, idx, "using") {
			idx++
			idx, err = expectKind(toks, idx, token.OpenParen, "(")
			if err != nil {
				return nil, idx, err
			}
			for {
				t, ok := at(toks, idx)
				if !ok || !t.Kind.Has(token.Identifier) {
					return nil, idx, unexpected(toks, idx, "a column name")
				}
				jc.Using = append(jc.Using, t.Value)
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
		jc.Span = spanAt(jstart, posAt(toks, idx))
		fc.Joins = append(fc.Joins, jc)
	}
	fc.Span = spanAt(start, posAt(toks, idx))
	return fc, idx, nil
}

func peekJoinType(toks []token.Token, idx int) (ast.JoinType, bool) {
	t, ok := at(toks, idx)
	if !ok || !t.Kind.Has(token.Command) {
		return 0, false
	}
	switch t.Value {
	case "join", "inner join":
		return ast.JoinInner, true
	case "left join", "left outer join":
		return ast.JoinLeft, true
	case "right join", "right outer join":
		return ast.JoinRight, true
	case "full join", "full outer join":
		return ast.JoinFull, true
	case "cross join":
		return ast.JoinCross, true
	case "natural join", "natural inner join":
		return ast.JoinNatural, true
	case "natural left join":
		return ast.JoinLeft, true
	case "natural right join":
		return ast.JoinRight, true
	}
	return 0, false
}

func skipJoinKeyword(toks []token.Token, idx int) int { return idx + 1 }

func parseSourceExpression(toks []token.Token, idx int) (*ast.SourceExpression, int, error) {
	start := posAt(toks, idx)
	se := &ast.SourceExpression{}
	if isCommand(toks, idx, "lateral") {
		idx++
		se.Lateral = true
	}
	src, idx, err := parseSource(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	se.Datasource = src
	if isCommand(toks, idx, "with ordinality") {
		idx++
		se.WithOrdinality = true
	}
	alias, nidx, hasAlias, err := tryParseSourceAlias(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	if hasAlias {
		se.Alias = alias
		idx = nidx
	}
	se.Span = spanAt(start, posAt(toks, idx))
	return se, idx, nil
}

func tryParseSourceAlias(toks []token.Token, idx int) (*ast.SourceAliasExpression, int, bool, error) {
	explicit := false
	if isCommand(toks, idx, "as") {
		idx++
		explicit = true
	}
	t, ok := at(toks, idx)
	if !ok || !t.Kind.Has(token.Identifier) {
		if explicit {
			return nil, idx, false, unexpected(toks, idx, "an alias")
		}
		return nil, idx, false, nil
	}
	if !explicit && reservedAfterSource(t.Value, toks, idx) {
		return nil, idx, false, nil
	}
	alias := &ast.SourceAliasExpression{Alias: t.Value}
	idx++
	if isKind(toks, idx, token.OpenParen) {
		idx++
		for {
			nt, ok := at(toks, idx)
			if !ok || !nt.Kind.Has(token.Identifier) {
				return nil, idx, false, unexpected(toks, idx, "a column alias")
			}
			alias.ColumnAliases = append(alias.ColumnAliases, nt.Value)
			idx++
			if isKind(toks, idx, token.Comma) {
				idx++
				continue
			}
			break
		}
		var err error
		idx, err = expectKind(toks, idx, token.CloseParen, ")")
		if err != nil {
			return nil, idx, false, err
		}
	}
	return alias, idx, true, nil
}

// reservedAfterSource reports whether an identifier-shaped token immediately
// after a source is actually a clause keyword the lexer failed to classify
// as a Command (defensive; readCommand ordinarily claims these first).
func reservedAfterSource(value string, toks []token.Token, idx int) bool {
	return false
}

func parseSource(toks []token.Token, idx int) (ast.Source, int, error) {
	if isKind(toks, idx, token.OpenParen) {
		start := posAt(toks, idx)
		idx++
		if isCommandAny(toks, idx, "select", "values", "with", "with recursive") {
			q, nidx, err := parseSelectQuery(toks, idx)
			if err != nil {
				return nil, idx, err
			}
			idx = nidx
			idx, err = expectKind(toks, idx, token.CloseParen, ")")
			if err != nil {
				return nil, idx, err
			}
			return &ast.SubQuerySource{Query: q, Span: spanAt(start, posAt(toks, idx))}, idx, nil
		}
		inner, idx2, err := parseSourceOrJoin(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = idx2
		idx, err = expectKind(toks, idx, token.CloseParen, ")")
		if err != nil {
			return nil, idx, err
		}
		return &ast.ParenSource{Inner: inner, Span: spanAt(start, posAt(toks, idx))}, idx, nil
	}
	return parseTableSource(toks, idx)
}

// parseSourceOrJoin parses the single source expression inside a
// parenthesized FROM item such as "(t1 AS x)". A join chain or a comma list
// inside the parentheses ("(t1 JOIN t2 ON …)", "(t1, t2)") is not parsed:
// only the first source is consumed, and the caller then reports the
// missing ")".
func parseSourceOrJoin(toks []token.Token, idx int) (ast.Source, int, error) {
	return parseSourceExpression(toks, idx)
}

func parseTableSource(toks []token.Token, idx int) (*ast.TableSource, int, error) {
	start := posAt(toks, idx)
	ns, name, _, nidx, err := qualifiedName(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	ts := ast.GetTableSource()
	ts.Namespaces = ns
	ts.Name = name
	ts.Span = spanAt(start, posAt(toks, nidx))
	return ts, nidx, nil
}

func parseWindowClause(toks []token.Token, idx int) (*ast.WindowClause, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "window")
	if err != nil {
		return nil, idx, err
	}
	wc := &ast.WindowClause{}
	for {
		t, ok := at(toks, idx)
		if !ok || !t.Kind.Has(token.Identifier) {
			return nil, idx, unexpected(toks, idx, "a window name")
		}
		name := t.Value
		idx++
		idx, err = expectCommand(toks, idx, "as")
		if err != nil {
			return nil, idx, err
		}
		spec, nidx, err := parseWindowSpecOrName(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		wc.Defs = append(wc.Defs, &ast.WindowDef{Name: name, Spec: spec})
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	wc.Span = spanAt(start, posAt(toks, idx))
	return wc, idx, nil
}

func parseOrderByClause(toks []token.Token, idx int) (*ast.OrderByClause, int, error) {
	start := posAt(toks, idx)
	idx, err := expectCommand(toks, idx, "order by")
	if err != nil {
		return nil, idx, err
	}
	items, idx, err := parseOrderByItems(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	return &ast.OrderByClause{Items: items, Span: spanAt(start, posAt(toks, idx))}, idx, nil
}

// parseOrderByItems parses a comma-separated "expr [ASC|DESC] [NULLS
// FIRST|NULLS LAST]" list. The caller has already consumed the ORDER BY
// keyword.
func parseOrderByItems(toks []token.Token, idx int) ([]*ast.OrderByItem, int, error) {
	items := *ast.GetOrderByItemSlice()
	for {
		v, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		item := ast.GetOrderByItem()
		item.Expr = v
		if isCommandAny(toks, idx, "asc", "desc") {
			item.Direction = toks[idx].Value
			idx++
		}
		if isCommandAny(toks, idx, "nulls first", "nulls last") {
			if toks[idx].Value == "nulls first" {
				item.Nulls = "first"
			} else {
				item.Nulls = "last"
			}
			idx++
		}
		items = append(items, item)
		if isKind(toks, idx, token.Comma) {
			idx++
			continue
		}
		break
	}
	return items, idx, nil
}

func parseForClause(toks []token.Token, idx int) (*ast.ForClause, int, error) {
	start := posAt(toks, idx)
	fc := &ast.ForClause{}
	switch toks[idx].Value {
	case "for update":
		fc.Mode = ast.LockUpdate
	case "for share":
		fc.Mode = ast.LockShare
	case "for no key update":
		fc.Mode = ast.LockNoKeyUpdate
	case "for key share":
		fc.Mode = ast.LockKeyShare
	}
	idx++
	if isCommand(toks, idx, "of") {
		idx++
		for {
			t, ok := at(toks, idx)
			if !ok || !t.Kind.Has(token.Identifier) {
				return nil, idx, unexpected(toks, idx, "a table name")
			}
			fc.Of = append(fc.Of, t.Value)
			idx++
			if isKind(toks, idx, token.Comma) {
				idx++
				continue
			}
			break
		}
	}
	if isCommand(toks, idx, "nowait") {
		idx++
		fc.NoWait = true
	} else if isCommand(toks, idx, "skip locked") {
		idx++
		fc.SkipLocked = true
	}
	fc.Span = spanAt(start, posAt(toks, idx))
	return fc, idx, nil
}
