package parser

import (
	"strconv"
	"strings"

	"github.com/freeeve/sqlast/ast"
	"github.com/freeeve/sqlast/token"
)

// ParseValue is the value/expression parser's entry point. allowAnd/allowOr
// gate the OR and AND precedence levels; BETWEEN's upper bound is parsed
// with both disabled so "a BETWEEN 1 AND 2 OR x" builds
// OR(BETWEEN(a,1,2), x) rather than swallowing the OR into the range.
func ParseValue(toks []token.Token, idx int, allowAnd, allowOr bool) (ast.Value, int, error) {
	return parseOr(toks, idx, allowAnd, allowOr)
}

func parseOr(toks []token.Token, idx int, allowAnd, allowOr bool) (ast.Value, int, error) {
	left, idx, err := parseAnd(toks, idx, allowAnd)
	if err != nil {
		return nil, idx, err
	}
	if !allowOr {
		return left, idx, nil
	}
	for isOperator(toks, idx, "or") {
		idx++
		right, nidx, err := parseAnd(toks, idx, allowAnd)
		if err != nil {
			return nil, idx, err
		}
		left = binOf(left, right, "or")
		idx = nidx
	}
	return left, idx, nil
}

func parseAnd(toks []token.Token, idx int, allowAnd bool) (ast.Value, int, error) {
	left, idx, err := parseNot(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	if !allowAnd {
		return left, idx, nil
	}
	for isOperator(toks, idx, "and") {
		idx++
		right, nidx, err := parseNot(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		left = binOf(left, right, "and")
		idx = nidx
	}
	return left, idx, nil
}

func parseNot(toks []token.Token, idx int) (ast.Value, int, error) {
	if isOperator(toks, idx, "not") {
		start := posAt(toks, idx)
		idx++
		operand, nidx, err := parseNot(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		u := ast.GetUnaryExpression()
		u.Operator = "not"
		u.Operand = operand
		u.Span = spanAt(start, posAt(toks, nidx))
		return u, nidx, nil
	}
	return parseComparison(toks, idx)
}

var compareOps = map[string]bool{
	"=": true, "<>": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

func parseComparison(toks []token.Token, idx int) (ast.Value, int, error) {
	left, idx, err := parseConcat(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	t, ok := at(toks, idx)
	if !ok || !t.Kind.Has(token.Operator) {
		return left, idx, nil
	}
	start := left.Pos()
	switch {
	case compareOps[t.Value]:
		idx++
		right, nidx, err := parseConcat(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		bin := ast.GetBinaryExpression()
		bin.Operator = t.Value
		bin.Left = left
		bin.Right = right
		bin.Span = spanAt(start, posAt(toks, nidx))
		return bin, nidx, nil
	case t.Value == "is null" || t.Value == "is not null" || t.Value == "isnull" || t.Value == "notnull":
		idx++
		return &ast.UnaryExpression{Operator: t.Value, Operand: left, Span: spanAt(start, posAt(toks, idx))}, idx, nil
	case t.Value == "is" || t.Value == "is not" || t.Value == "is distinct from" || t.Value == "is not distinct from":
		idx++
		right, nidx, err := parseConcat(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		return &ast.BinaryExpression{Operator: t.Value, Left: left, Right: right, Span: spanAt(start, posAt(toks, nidx))}, nidx, nil
	case t.Value == "like" || t.Value == "not like" || t.Value == "ilike" || t.Value == "not ilike" ||
		t.Value == "similar to" || t.Value == "not similar to":
		idx++
		right, nidx, err := parseConcat(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		bin := &ast.BinaryExpression{Operator: t.Value, Left: left, Right: right, Span: spanAt(start, posAt(toks, idx))}
		if isOperator(toks, idx, "escape") {
			idx++
			esc, nidx2, err := parseConcat(toks, idx)
			if err != nil {
				return nil, idx, err
			}
			idx = nidx2
			return &ast.BinaryExpression{Operator: t.Value + " escape", Left: bin, Right: esc, Span: spanAt(start, posAt(toks, idx))}, idx, nil
		}
		return bin, idx, nil
	case t.Value == "in" || t.Value == "not in":
		idx++
		right, nidx, err := parseInList(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		return &ast.BinaryExpression{Operator: t.Value, Left: left, Right: right, Span: spanAt(start, posAt(toks, nidx))}, nidx, nil
	case t.Value == "between" || t.Value == "not between":
		negated := t.Value == "not between"
		idx++
		low, idx2, err := parseConcat(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = idx2
		if !isOperator(toks, idx, "and") {
			return nil, idx, unexpected(toks, idx, "AND")
		}
		idx++
		high, idx3, err := parseConcat(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = idx3
		return &ast.BetweenExpression{Operand: left, Negated: negated, Low: low, High: high, Span: spanAt(start, posAt(toks, idx))}, idx, nil
	}
	return left, idx, nil
}

// parseInList parses the "(" … ")" right-hand side of IN/NOT IN: either a
// parenthesized subquery or a comma-separated value list.
func parseInList(toks []token.Token, idx int) (ast.Value, int, error) {
	start := posAt(toks, idx)
	nidx, err := expectKind(toks, idx, token.OpenParen, "(")
	if err != nil {
		return nil, idx, err
	}
	idx = nidx
	if isCommandAny(toks, idx, "select", "values", "with", "with recursive") {
		q, nidx2, err := parseSelectQuery(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx2
		idx, err = expectKind(toks, idx, token.CloseParen, ")")
		if err != nil {
			return nil, idx, err
		}
		return &ast.InlineQuery{Query: q, Span: spanAt(start, posAt(toks, idx))}, idx, nil
	}
	var items []ast.Value
	for {
		v, nidx2, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx2
		items = append(items, v)
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
	return &ast.TupleExpression{Elements: items, Span: spanAt(start, posAt(toks, idx))}, idx, nil
}

func parseConcat(toks []token.Token, idx int) (ast.Value, int, error) {
	left, idx, err := parseAdditive(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	for isOperator(toks, idx, "||") {
		idx++
		right, nidx, err := parseAdditive(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		left = binOf(left, right, "||")
		idx = nidx
	}
	return left, idx, nil
}

func parseAdditive(toks []token.Token, idx int) (ast.Value, int, error) {
	left, idx, err := parseMultiplicative(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	for isOperator(toks, idx, "+") || isOperator(toks, idx, "-") {
		op := toks[idx].Value
		idx++
		right, nidx, err := parseMultiplicative(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		left = binOf(left, right, op)
		idx = nidx
	}
	return left, idx, nil
}

func parseMultiplicative(toks []token.Token, idx int) (ast.Value, int, error) {
	left, idx, err := parseUnarySign(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	for isOperator(toks, idx, "*") || isOperator(toks, idx, "/") || isOperator(toks, idx, "%") {
		op := toks[idx].Value
		idx++
		right, nidx, err := parseUnarySign(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		left = binOf(left, right, op)
		idx = nidx
	}
	return left, idx, nil
}

func parseUnarySign(toks []token.Token, idx int) (ast.Value, int, error) {
	if isOperator(toks, idx, "+") || isOperator(toks, idx, "-") {
		start := posAt(toks, idx)
		op := toks[idx].Value
		idx++
		operand, nidx, err := parseUnarySign(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		return &ast.UnaryExpression{Operator: op, Operand: operand, Span: spanAt(start, posAt(toks, nidx))}, nidx, nil
	}
	return parseCast(toks, idx)
}

func parseCast(toks []token.Token, idx int) (ast.Value, int, error) {
	left, idx, err := parseMember(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	for isOperator(toks, idx, "::") {
		start := left.Pos()
		idx++
		typ, nidx, err := parseTypeValue(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		left = &ast.CastExpression{Operand: left, Type: typ, Span: spanAt(start, posAt(toks, nidx))}
		idx = nidx
	}
	return left, idx, nil
}

func parseMember(toks []token.Token, idx int) (ast.Value, int, error) {
	left, idx, err := parsePrimary(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	for {
		if isKind(toks, idx, token.OpenBracket) {
			start := left.Pos()
			idx++
			index, nidx, err := ParseValue(toks, idx, true, true)
			if err != nil {
				return nil, idx, err
			}
			idx = nidx
			idx, err = expectKind(toks, idx, token.CloseBracket, "]")
			if err != nil {
				return nil, idx, err
			}
			left = &ast.BinaryExpression{Operator: "[]", Left: left, Right: index, Span: spanAt(start, posAt(toks, idx))}
			continue
		}
		break
	}
	return left, idx, nil
}

func binOf(left, right ast.Value, op string) ast.Value {
	bin := ast.GetBinaryExpression()
	bin.Operator = op
	bin.Left = left
	bin.Right = right
	bin.Span = spanAt(left.Pos(), right.End())
	return bin
}

func spanAt(start, end token.Pos) ast.Span { return ast.NewSpan(start, end) }

// parsePrimary parses literals, parameters, column references, parenthesized
// expressions/subqueries, function calls, CASE, CAST, EXTRACT, SUBSTRING,
// OVERLAY, TRIM, and array constructors.
func parsePrimary(toks []token.Token, idx int) (ast.Value, int, error) {
	t, ok := at(toks, idx)
	if !ok {
		return nil, idx, &UnexpectedEnd{Expected: "a value expression"}
	}

	switch {
	case t.Kind.Has(token.Literal):
		return parseLiteral(toks, idx)
	case t.Kind.Has(token.Parameter):
		idx++
		return &ast.ParameterExpression{Raw: t.Value, Span: spanAt(t.Start, t.End)}, idx, nil
	case isKind(toks, idx, token.OpenParen):
		return parseParenOrTuple(toks, idx)
	case isCommand(toks, idx, "case"):
		return parseCase(toks, idx)
	case isCommand(toks, idx, "cast"):
		return parseCastCall(toks, idx)
	case isCommand(toks, idx, "extract"):
		return parseExtract(toks, idx)
	case isCommand(toks, idx, "substring"):
		return parseSubstring(toks, idx)
	case isCommand(toks, idx, "overlay"):
		return parseOverlay(toks, idx)
	case isCommand(toks, idx, "trim"):
		return parseTrim(toks, idx)
	case isCommand(toks, idx, "array"):
		return parseArray(toks, idx)
	case t.Kind.Has(token.Type):
		return parseTypeLiteral(toks, idx)
	case (t.Kind.Has(token.Function) || t.Kind.Has(token.Identifier)) && strings.EqualFold(t.Value, "exists") && isKind(toks, idx+1, token.OpenParen):
		operand, nidx, err := parseParenOrTuple(toks, idx+1)
		if err != nil {
			return nil, idx, err
		}
		return &ast.UnaryExpression{Operator: "exists", Operand: operand, Span: spanAt(t.Start, posAt(toks, nidx))}, nidx, nil
	case t.Kind.Has(token.Operator) && isKind(toks, idx+1, token.OpenParen) &&
		(strings.EqualFold(t.Value, "any") || strings.EqualFold(t.Value, "all") || strings.EqualFold(t.Value, "some")):
		return parseCallTail(toks, idx+1, t.Start, nil, strings.ToLower(t.Value))
	case t.Kind.Has(token.Function) || t.Kind.Has(token.Identifier):
		return parseNameOrCall(toks, idx)
	}
	return nil, idx, unexpected(toks, idx, "a value expression")
}

func parseLiteral(toks []token.Token, idx int) (ast.Value, int, error) {
	t := toks[idx]
	kind := ast.LiteralString
	switch {
	case t.Kind.Has(token.StringSpecifier):
		kind = ast.LiteralBlob
	case isNumericLiteral(t.Value):
		kind = ast.LiteralNumber
	}
	lit := ast.GetLiteralValue()
	lit.Raw = t.Value
	lit.Kind = kind
	lit.Span = spanAt(t.Start, t.End)
	return lit, idx + 1, nil
}

func isNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func parseParenOrTuple(toks []token.Token, idx int) (ast.Value, int, error) {
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
		return &ast.InlineQuery{Query: q, Span: spanAt(start, posAt(toks, idx))}, idx, nil
	}
	var items []ast.Value
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
	idx, err := expectKind(toks, idx, token.CloseParen, ")")
	if err != nil {
		return nil, idx, err
	}
	if len(items) == 1 {
		return &ast.ParenExpression{Inner: items[0], Span: spanAt(start, posAt(toks, idx))}, idx, nil
	}
	return &ast.TupleExpression{Elements: items, Span: spanAt(start, posAt(toks, idx))}, idx, nil
}

// qualifiedName reads "ns.ns.name" (or "ns.ns.*"), returning the namespace
// segments and the final name/star.
func qualifiedName(toks []token.Token, idx int) ([]string, string, bool, int, error) {
	t, ok := at(toks, idx)
	if !ok || !(t.Kind.Has(token.Identifier) || t.Kind.Has(token.Function)) {
		return nil, "", false, idx, unexpected(toks, idx, "an identifier")
	}
	var parts []string
	parts = append(parts, t.Value)
	idx++
	for isKind(toks, idx, token.Dot) {
		idx++
		if isOperator(toks, idx, "*") {
			idx++
			return parts, "", true, idx, nil
		}
		nt, ok := at(toks, idx)
		if !ok || !(nt.Kind.Has(token.Identifier) || nt.Kind.Has(token.Function)) {
			return nil, "", false, idx, unexpected(toks, idx, "an identifier")
		}
		parts = append(parts, nt.Value)
		idx++
	}
	name := parts[len(parts)-1]
	ns := parts[:len(parts)-1]
	return ns, name, false, idx, nil
}

func parseNameOrCall(toks []token.Token, idx int) (ast.Value, int, error) {
	start := posAt(toks, idx)
	lastTokBeforeName := idx
	ns, name, star, nidx, err := qualifiedName(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	idx = nidx
	if star {
		col := ast.GetColumnReference()
		col.Namespaces = ns
		col.Name = name
		col.Star = true
		col.Span = spanAt(start, posAt(toks, idx))
		return col, idx, nil
	}
	wasFunction := toks[idx-1].Kind.Has(token.Function)
	_ = lastTokBeforeName
	if !wasFunction || !isKind(toks, idx, token.OpenParen) {
		col := ast.GetColumnReference()
		col.Namespaces = ns
		col.Name = name
		col.Span = spanAt(start, posAt(toks, idx))
		return col, idx, nil
	}
	return parseCallTail(toks, idx, start, ns, name)
}

// parseCallTail parses the "(args) [WITHIN GROUP] [FILTER] [WITH
// ORDINALITY] [OVER]" tail of a function call whose name has already been
// consumed.
func parseCallTail(toks []token.Token, idx int, start token.Pos, ns []string, name string) (ast.Value, int, error) {
	idx++ // consume "("
	call := ast.GetFunctionCall()
	call.Namespaces = ns
	call.Name = name

	if isOperator(toks, idx, "*") {
		idx++
		call.StarArg = true
	} else if !isKind(toks, idx, token.CloseParen) {
		if isCommand(toks, idx, "distinct") {
			idx++
			call.Distinct = true
		}
		if call.Args == nil {
			call.Args = *ast.GetValueSlice()
		}
		for {
			v, nidx, err := ParseValue(toks, idx, true, true)
			if err != nil {
				return nil, idx, err
			}
			idx = nidx
			call.Args = append(call.Args, v)
			if isKind(toks, idx, token.Comma) {
				idx++
				continue
			}
			break
		}
		if token.IsAggregateWithInternalOrderBy(name) && isCommand(toks, idx, "order by") {
			items, nidx, err := parseOrderByItems(toks, idx+1)
			if err != nil {
				return nil, idx, err
			}
			call.InternalOrderBy = items
			idx = nidx
		}
	}
	nidx, err := expectKind(toks, idx, token.CloseParen, ")")
	if err != nil {
		return nil, idx, err
	}
	idx = nidx

	if isCommand(toks, idx, "within group") {
		idx++
		idx, err = expectKind(toks, idx, token.OpenParen, "(")
		if err != nil {
			return nil, idx, err
		}
		idx, err = expectCommand(toks, idx, "order by")
		if err != nil {
			return nil, idx, err
		}
		items, nidx2, err := parseOrderByItems(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		call.WithinGroup = items
		idx = nidx2
		idx, err = expectKind(toks, idx, token.CloseParen, ")")
		if err != nil {
			return nil, idx, err
		}
	}
	if isCommand(toks, idx, "filter") {
		idx++
		idx, err = expectKind(toks, idx, token.OpenParen, "(")
		if err != nil {
			return nil, idx, err
		}
		idx, err = expectCommand(toks, idx, "where")
		if err != nil {
			return nil, idx, err
		}
		cond, nidx2, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		call.Filter = cond
		idx = nidx2
		idx, err = expectKind(toks, idx, token.CloseParen, ")")
		if err != nil {
			return nil, idx, err
		}
	}
	if isCommand(toks, idx, "with ordinality") {
		idx++
		call.WithOrdinality = true
	}
	if isCommand(toks, idx, "over") {
		idx++
		spec, nidx2, err := parseWindowSpecOrName(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		call.Over = spec
		idx = nidx2
	}
	call.Span = spanAt(start, posAt(toks, idx))
	return call, idx, nil
}

func parseWindowSpecOrName(toks []token.Token, idx int) (*ast.WindowSpec, int, error) {
	start := posAt(toks, idx)
	if isKind(toks, idx, token.Identifier) {
		name := toks[idx].Value
		idx++
		return &ast.WindowSpec{Name: name, Span: spanAt(start, posAt(toks, idx))}, idx, nil
	}
	idx, err := expectKind(toks, idx, token.OpenParen, "(")
	if err != nil {
		return nil, idx, err
	}
	spec := &ast.WindowSpec{}
	if isCommand(toks, idx, "partition by") {
		idx++
		for {
			v, nidx, err := ParseValue(toks, idx, true, true)
			if err != nil {
				return nil, idx, err
			}
			idx = nidx
			spec.PartitionBy = append(spec.PartitionBy, v)
			if isKind(toks, idx, token.Comma) {
				idx++
				continue
			}
			break
		}
	}
	if isCommand(toks, idx, "order by") {
		idx++
		items, nidx, err := parseOrderByItems(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		spec.OrderBy = items
		idx = nidx
	}
	frameStart := idx
	for !isKind(toks, idx, token.CloseParen) {
		if _, ok := at(toks, idx); !ok {
			return nil, idx, &UnexpectedEnd{Expected: ")"}
		}
		idx++
	}
	if idx > frameStart {
		spec.Frame = joinTokenText(toks[frameStart:idx])
	}
	idx, err = expectKind(toks, idx, token.CloseParen, ")")
	if err != nil {
		return nil, idx, err
	}
	spec.Span = spanAt(start, posAt(toks, idx))
	return spec, idx, nil
}

func joinTokenText(toks []token.Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Value
	}
	return strings.Join(parts, " ")
}

func parseCase(toks []token.Token, idx int) (ast.Value, int, error) {
	start := posAt(toks, idx)
	idx++
	c := &ast.CaseExpression{}
	if !isCommand(toks, idx, "when") {
		v, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		c.Switch = v
		idx = nidx
	}
	for isCommand(toks, idx, "when") {
		idx++
		cond, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx
		idx, err = expectCommand(toks, idx, "then")
		if err != nil {
			return nil, idx, err
		}
		result, nidx2, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		idx = nidx2
		c.Whens = append(c.Whens, &ast.CaseWhen{Condition: cond, Result: result})
	}
	if isCommand(toks, idx, "else") {
		idx++
		v, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		c.Else = v
		idx = nidx
	}
	idx, err := expectCommand(toks, idx, "end")
	if err != nil {
		return nil, idx, err
	}
	c.Span = spanAt(start, posAt(toks, idx))
	return c, idx, nil
}

func parseCastCall(toks []token.Token, idx int) (ast.Value, int, error) {
	start := posAt(toks, idx)
	idx++
	idx, err := expectKind(toks, idx, token.OpenParen, "(")
	if err != nil {
		return nil, idx, err
	}
	operand, idx2, err := ParseValue(toks, idx, true, true)
	if err != nil {
		return nil, idx, err
	}
	idx = idx2
	idx, err = expectCommand(toks, idx, "as")
	if err != nil {
		return nil, idx, err
	}
	typ, idx3, err := parseTypeValue(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	idx = idx3
	idx, err = expectKind(toks, idx, token.CloseParen, ")")
	if err != nil {
		return nil, idx, err
	}
	return &ast.CastExpression{Operand: operand, Type: typ, Span: spanAt(start, posAt(toks, idx))}, idx, nil
}

func parseExtract(toks []token.Token, idx int) (ast.Value, int, error) {
	start := posAt(toks, idx)
	idx++
	idx, err := expectKind(toks, idx, token.OpenParen, "(")
	if err != nil {
		return nil, idx, err
	}
	t, ok := at(toks, idx)
	if !ok {
		return nil, idx, &UnexpectedEnd{Expected: "a date/time field"}
	}
	field := t.Value
	idx++
	idx, err = expectCommand(toks, idx, "from")
	if err != nil {
		return nil, idx, err
	}
	subject, idx2, err := ParseValue(toks, idx, true, true)
	if err != nil {
		return nil, idx, err
	}
	idx = idx2
	idx, err = expectKind(toks, idx, token.CloseParen, ")")
	if err != nil {
		return nil, idx, err
	}
	return &ast.FunctionCall{Name: "extract", SpecialForm: &ast.SpecialFunctionArgs{Field: field, Subject: subject}, Span: spanAt(start, posAt(toks, idx))}, idx, nil
}

func parseSubstring(toks []token.Token, idx int) (ast.Value, int, error) {
	start := posAt(toks, idx)
	idx++
	idx, err := expectKind(toks, idx, token.OpenParen, "(")
	if err != nil {
		return nil, idx, err
	}
	subject, idx2, err := ParseValue(toks, idx, true, true)
	if err != nil {
		return nil, idx, err
	}
	idx = idx2
	sf := &ast.SpecialFunctionArgs{Subject: subject}
	if isCommand(toks, idx, "from") {
		idx++
		from, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		sf.From = from
		idx = nidx
	}
	if isCommand(toks, idx, "for") {
		idx++
		forVal, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		sf.For = forVal
		idx = nidx
	}
	idx, err = expectKind(toks, idx, token.CloseParen, ")")
	if err != nil {
		return nil, idx, err
	}
	return &ast.FunctionCall{Name: "substring", SpecialForm: sf, Span: spanAt(start, posAt(toks, idx))}, idx, nil
}

func parseOverlay(toks []token.Token, idx int) (ast.Value, int, error) {
	start := posAt(toks, idx)
	idx++
	idx, err := expectKind(toks, idx, token.OpenParen, "(")
	if err != nil {
		return nil, idx, err
	}
	subject, idx2, err := ParseValue(toks, idx, true, true)
	if err != nil {
		return nil, idx, err
	}
	idx = idx2
	idx, err = expectCommand(toks, idx, "placing")
	if err != nil {
		return nil, idx, err
	}
	replace, idx3, err := ParseValue(toks, idx, true, true)
	if err != nil {
		return nil, idx, err
	}
	idx = idx3
	idx, err = expectCommand(toks, idx, "from")
	if err != nil {
		return nil, idx, err
	}
	from, idx4, err := ParseValue(toks, idx, true, true)
	if err != nil {
		return nil, idx, err
	}
	idx = idx4
	sf := &ast.SpecialFunctionArgs{Subject: subject, Replace: replace, From: from}
	if isCommand(toks, idx, "for") {
		idx++
		forVal, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		sf.For = forVal
		idx = nidx
	}
	idx, err = expectKind(toks, idx, token.CloseParen, ")")
	if err != nil {
		return nil, idx, err
	}
	return &ast.FunctionCall{Name: "overlay", SpecialForm: sf, Span: spanAt(start, posAt(toks, idx))}, idx, nil
}

func parseTrim(toks []token.Token, idx int) (ast.Value, int, error) {
	start := posAt(toks, idx)
	idx++
	idx, err := expectKind(toks, idx, token.OpenParen, "(")
	if err != nil {
		return nil, idx, err
	}
	sf := &ast.SpecialFunctionArgs{}
	if isCommandAny(toks, idx, "leading", "trailing", "both") {
		sf.TrimSpec = toks[idx].Value
		idx++
	}
	first, idx2, err := ParseValue(toks, idx, true, true)
	if err != nil {
		return nil, idx, err
	}
	idx = idx2
	if isCommand(toks, idx, "from") {
		idx++
		subject, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		sf.Subject = subject
		sf.Replace = first // the trim character set, reusing Replace for "what to trim"
		idx = nidx
	} else {
		sf.Subject = first
	}
	idx, err = expectKind(toks, idx, token.CloseParen, ")")
	if err != nil {
		return nil, idx, err
	}
	return &ast.FunctionCall{Name: "trim", SpecialForm: sf, Span: spanAt(start, posAt(toks, idx))}, idx, nil
}

func parseArray(toks []token.Token, idx int) (ast.Value, int, error) {
	start := posAt(toks, idx)
	idx++
	if isKind(toks, idx, token.OpenBracket) {
		idx++
		var items []ast.Value
		if !isKind(toks, idx, token.CloseBracket) {
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
		}
		idx, err := expectKind(toks, idx, token.CloseBracket, "]")
		if err != nil {
			return nil, idx, err
		}
		return &ast.ArrayExpression{Elements: items, Span: spanAt(start, posAt(toks, idx))}, idx, nil
	}
	idx, err := expectKind(toks, idx, token.OpenParen, "(")
	if err != nil {
		return nil, idx, err
	}
	q, idx2, err := parseSelectQuery(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	idx = idx2
	idx, err = expectKind(toks, idx, token.CloseParen, ")")
	if err != nil {
		return nil, idx, err
	}
	return &ast.ArrayQueryExpression{Query: q, Span: spanAt(start, posAt(toks, idx))}, idx, nil
}

// parseTypeValue reads a type name with an optional "(args)" precision/scale
// list and an optional trailing "[]" array marker.
func parseTypeValue(toks []token.Token, idx int) (*ast.TypeValue, int, error) {
	start := posAt(toks, idx)
	t, ok := at(toks, idx)
	if !ok || !(t.Kind.Has(token.Type) || t.Kind.Has(token.Identifier)) {
		return nil, idx, unexpected(toks, idx, "a type name")
	}
	typ := &ast.TypeValue{Name: strings.ToLower(t.Value)}
	idx++
	if isKind(toks, idx, token.OpenParen) {
		idx++
		for {
			v, nidx, err := ParseValue(toks, idx, true, true)
			if err != nil {
				return nil, idx, err
			}
			idx = nidx
			typ.Args = append(typ.Args, v)
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
	if isKind(toks, idx, token.OpenBracket) && isKind(toks, idx+1, token.CloseBracket) {
		idx += 2
		typ.IsArray = true
	}
	typ.Span = spanAt(start, posAt(toks, idx))
	return typ, idx, nil
}

func parseTypeLiteral(toks []token.Token, idx int) (ast.Value, int, error) {
	typ, idx, err := parseTypeValue(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	return typ, idx, nil
}
