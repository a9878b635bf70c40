package parser

import (
	"github.com/freeeve/sqlast/ast"
	"github.com/freeeve/sqlast/token"
)

// parseMerge parses "[WITH …] MERGE INTO target USING source ON cond WHEN
// [NOT] MATCHED [AND cond] THEN action …".
func parseMerge(toks []token.Token, idx int) (*ast.MergeQuery, int, error) {
	return parseMergeWith(toks, idx, nil)
}

func parseMergeWith(toks []token.Token, idx int, with *ast.WithClause) (*ast.MergeQuery, int, error) {
	start := posAt(toks, idx)
	if with != nil {
		start = with.Pos()
	}
	idx, err := expectCommand(toks, idx, "merge into")
	if err != nil {
		return nil, idx, err
	}
	target, idx, err := parseSourceExpression(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	idx, err = expectCommand(toks, idx, "using")
	if err != nil {
		return nil, idx, err
	}
	source, idx, err := parseSourceExpression(toks, idx)
	if err != nil {
		return nil, idx, err
	}
	idx, err = expectCommand(toks, idx, "on")
	if err != nil {
		return nil, idx, err
	}
	on, idx, err := ParseValue(toks, idx, true, true)
	if err != nil {
		return nil, idx, err
	}
	q := &ast.MergeQuery{With: with, Target: target, Using: source, On: on}
	for isCommandAny(toks, idx, "when matched", "when not matched") {
		w, nidx, err := parseMergeWhen(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		q.Whens = append(q.Whens, w)
		idx = nidx
	}
	q.Span = spanAt(start, posAt(toks, idx))
	return q, idx, nil
}

func parseMergeWhen(toks []token.Token, idx int) (*ast.MergeWhenClause, int, error) {
	matched := toks[idx].Value == "when matched"
	idx++
	w := &ast.MergeWhenClause{Matched: matched}
	if isOperator(toks, idx, "and") {
		idx++
		cond, nidx, err := ParseValue(toks, idx, true, true)
		if err != nil {
			return nil, idx, err
		}
		w.Condition = cond
		idx = nidx
	}
	idx, err := expectCommand(toks, idx, "then")
	if err != nil {
		return nil, idx, err
	}
	switch {
	case isCommand(toks, idx, "update"):
		idx++
		idx, err = expectCommand(toks, idx, "set")
		if err != nil {
			return nil, idx, err
		}
		sc, nidx, err := parseAssignments(toks, idx)
		if err != nil {
			return nil, idx, err
		}
		w.UpdateSet = sc
		idx = nidx
	case isCommand(toks, idx, "delete from"), isCommand(toks, idx, "delete"):
		idx++
		w.Delete = true
	case isCommand(toks, idx, "insert into"), isCommandAny(toks, idx, "insert"):
		idx++
		if isKind(toks, idx, token.OpenParen) {
			idx++
			for {
				t, ok := at(toks, idx)
				if !ok || !t.Kind.Has(token.Identifier) {
					return nil, idx, unexpected(toks, idx, "a column name")
				}
				w.InsertColumns = append(w.InsertColumns, t.Value)
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
		idx, err = expectCommand(toks, idx, "values")
		if err != nil {
			return nil, idx, err
		}
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
			w.InsertValues = append(w.InsertValues, v)
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
	default:
		return nil, idx, unexpected(toks, idx, "UPDATE, DELETE, or INSERT")
	}
	return w, idx, nil
}
