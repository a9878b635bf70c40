// Package visitor provides AST traversal and rewriting utilities.
package visitor

import "github.com/freeeve/sqlast/ast"

// Visitor is the interface for AST traversal.
type Visitor interface {
	Visit(node ast.Node) Visitor
}

// Walk traverses an AST in depth-first order.
func Walk(v Visitor, node ast.Node) {
	if node == nil || isNilNode(node) {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}
	walkChildren(v, node)
}

func walkChildren(v Visitor, node ast.Node) {
	switch n := node.(type) {
	case *ast.SimpleSelect:
		walkWith(v, n.With)
		Walk(v, n.Select)
		if n.From != nil {
			Walk(v, n.From)
		}
		if n.Where != nil {
			Walk(v, n.Where)
		}
		if n.GroupBy != nil {
			Walk(v, n.GroupBy)
		}
		if n.Having != nil {
			Walk(v, n.Having)
		}
		if n.Window != nil {
			Walk(v, n.Window)
		}
		if n.OrderBy != nil {
			Walk(v, n.OrderBy)
		}
		if n.Limit != nil {
			Walk(v, n.Limit)
		}
		if n.Offset != nil {
			Walk(v, n.Offset)
		}
		if n.Fetch != nil {
			Walk(v, n.Fetch)
		}
		if n.For != nil {
			Walk(v, n.For)
		}

	case *ast.BinarySelectQuery:
		Walk(v, n.Left)
		Walk(v, n.Right)

	case *ast.ValuesQuery:
		for _, row := range n.Rows {
			for _, val := range row {
				Walk(v, val)
			}
		}

	case *ast.InsertQuery:
		walkWith(v, n.With)
		Walk(v, n.Insert)
		if n.Values != nil {
			Walk(v, n.Values)
		}
		if n.Select != nil {
			Walk(v, n.Select)
		}
		if n.Returning != nil {
			Walk(v, n.Returning)
		}

	case *ast.UpdateQuery:
		walkWith(v, n.With)
		Walk(v, n.Update)
		Walk(v, n.Set)
		if n.From != nil {
			Walk(v, n.From)
		}
		if n.Where != nil {
			Walk(v, n.Where)
		}
		if n.Returning != nil {
			Walk(v, n.Returning)
		}

	case *ast.DeleteQuery:
		walkWith(v, n.With)
		Walk(v, n.Delete)
		if n.Using != nil {
			Walk(v, n.Using)
		}
		if n.Where != nil {
			Walk(v, n.Where)
		}
		if n.Returning != nil {
			Walk(v, n.Returning)
		}

	case *ast.MergeQuery:
		walkWith(v, n.With)
		Walk(v, n.Target)
		Walk(v, n.Using)
		if n.On != nil {
			Walk(v, n.On)
		}
		for _, w := range n.Whens {
			if w.Condition != nil {
				Walk(v, w.Condition)
			}
			if w.UpdateSet != nil {
				Walk(v, w.UpdateSet)
			}
			for _, val := range w.InsertValues {
				Walk(v, val)
			}
		}

	case *ast.CreateTableQuery:
		Walk(v, n.Name)
		if n.As != nil {
			Walk(v, n.As)
		}
		for _, col := range n.Columns {
			if col.Type != nil {
				for _, a := range col.Type.Args {
					Walk(v, a)
				}
			}
		}

	case *ast.DropTableQuery:
		for _, t := range n.Names {
			Walk(v, t)
		}

	case *ast.DropIndexQuery, *ast.DropSchemaQuery, *ast.DropSequenceQuery:
		// No child nodes: names are plain strings.

	case *ast.DropConstraintQuery:
		Walk(v, n.Table)

	case *ast.CreateIndexQuery:
		Walk(v, n.Table)
		if n.Where != nil {
			Walk(v, n.Where)
		}

	case *ast.AlterTableQuery:
		Walk(v, n.Table)

	case *ast.AnalyzeQuery:
		if n.Table != nil {
			Walk(v, n.Table)
		}

	case *ast.ExplainQuery:
		Walk(v, n.Target)

	case *ast.ClusterQuery:
		if n.Table != nil {
			Walk(v, n.Table)
		}

	case *ast.CreateSequenceQuery, *ast.AlterSequenceQuery, *ast.ReindexQuery:
		// Leaf statements with no AST-valued children.

	case *ast.ColumnReference, *ast.LiteralValue, *ast.ParameterExpression,
		*ast.RawString, *ast.IdentifierString, *ast.TypeValue:
		// Leaf values.

	case *ast.BinaryExpression:
		Walk(v, n.Left)
		Walk(v, n.Right)

	case *ast.UnaryExpression:
		Walk(v, n.Operand)

	case *ast.ParenExpression:
		Walk(v, n.Inner)

	case *ast.BetweenExpression:
		Walk(v, n.Operand)
		Walk(v, n.Low)
		Walk(v, n.High)

	case *ast.CastExpression:
		Walk(v, n.Operand)

	case *ast.FunctionCall:
		for _, a := range n.Args {
			Walk(v, a)
		}
		for _, ob := range n.InternalOrderBy {
			Walk(v, ob.Expr)
		}
		for _, ob := range n.WithinGroup {
			Walk(v, ob.Expr)
		}
		if n.Filter != nil {
			Walk(v, n.Filter)
		}
		if n.Over != nil {
			walkWindowSpec(v, n.Over)
		}
		if n.SpecialForm != nil {
			s := n.SpecialForm
			if s.Subject != nil {
				Walk(v, s.Subject)
			}
			if s.Replace != nil {
				Walk(v, s.Replace)
			}
			if s.From != nil {
				Walk(v, s.From)
			}
			if s.For != nil {
				Walk(v, s.For)
			}
		}

	case *ast.CaseExpression:
		if n.Switch != nil {
			Walk(v, n.Switch)
		}
		for _, w := range n.Whens {
			Walk(v, w.Condition)
			Walk(v, w.Result)
		}
		if n.Else != nil {
			Walk(v, n.Else)
		}

	case *ast.InlineQuery:
		Walk(v, n.Query)

	case *ast.ArrayExpression:
		for _, e := range n.Elements {
			Walk(v, e)
		}

	case *ast.ArrayQueryExpression:
		Walk(v, n.Query)

	case *ast.TupleExpression:
		for _, e := range n.Elements {
			Walk(v, e)
		}

	case *ast.ValueList:
		for _, e := range n.Items {
			Walk(v, e)
		}

	case *ast.TableSource:
		// Leaf source.

	case *ast.SubQuerySource:
		Walk(v, n.Query)

	case *ast.ParenSource:
		Walk(v, n.Inner)

	case *ast.SourceExpression:
		Walk(v, n.Datasource)

	case *ast.JoinClause:
		Walk(v, n.Source)
		if n.On != nil {
			Walk(v, n.On)
		}

	case *ast.FromClause:
		Walk(v, n.Source)
		for _, j := range n.Joins {
			Walk(v, j)
		}

	case *ast.SelectClause:
		for _, dv := range n.DistinctOn {
			Walk(v, dv)
		}
		for _, item := range n.Items {
			if item.Expr != nil {
				Walk(v, item.Expr)
			}
		}

	case *ast.WhereClause:
		Walk(v, n.Condition)

	case *ast.GroupByClause:
		for _, item := range n.Items {
			Walk(v, item)
		}

	case *ast.HavingClause:
		Walk(v, n.Condition)

	case *ast.WindowClause:
		for _, def := range n.Defs {
			walkWindowSpec(v, def.Spec)
		}

	case *ast.OrderByClause:
		for _, item := range n.Items {
			Walk(v, item.Expr)
		}

	case *ast.LimitClause:
		if n.Count != nil {
			Walk(v, n.Count)
		}

	case *ast.OffsetClause:
		Walk(v, n.Count)

	case *ast.FetchClause:
		Walk(v, n.Count)

	case *ast.ForClause:
		// Table names are plain strings.

	case *ast.WithClause:
		for _, ct := range n.Tables {
			Walk(v, ct.Query)
		}

	case *ast.ReturningClause:
		for _, item := range n.Items {
			if item.Expr != nil {
				Walk(v, item.Expr)
			}
		}

	case *ast.UsingClause:
		for _, s := range n.Sources {
			Walk(v, s)
		}

	case *ast.SetClause:
		for _, a := range n.Assignments {
			Walk(v, a.Value)
		}

	case *ast.InsertClause:
		Walk(v, n.Target)

	case *ast.UpdateClause:
		Walk(v, n.Target)

	case *ast.DeleteClause:
		Walk(v, n.Target)
	}
}

func walkWith(v Visitor, w *ast.WithClause) {
	if w != nil {
		Walk(v, w)
	}
}

func walkWindowSpec(v Visitor, spec *ast.WindowSpec) {
	if spec == nil {
		return
	}
	for _, p := range spec.PartitionBy {
		Walk(v, p)
	}
	for _, ob := range spec.OrderBy {
		Walk(v, ob.Expr)
	}
}

// isNilNode reports whether node holds a typed nil pointer, which would
// otherwise satisfy the node != nil check on the interface but panic on
// dereference inside walkChildren.
func isNilNode(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.SimpleSelect:
		return n == nil
	case *ast.BinarySelectQuery:
		return n == nil
	case *ast.ValuesQuery:
		return n == nil
	case *ast.InsertQuery:
		return n == nil
	case *ast.UpdateQuery:
		return n == nil
	case *ast.DeleteQuery:
		return n == nil
	case *ast.MergeQuery:
		return n == nil
	}
	return false
}

// WalkFunc is a convenience wrapper that calls a function for each node.
func WalkFunc(node ast.Node, fn func(ast.Node) bool) {
	Walk(&funcVisitor{fn: fn}, node)
}

type funcVisitor struct {
	fn func(ast.Node) bool
}

func (v *funcVisitor) Visit(node ast.Node) Visitor {
	if v.fn(node) {
		return v
	}
	return nil
}

// Inspect calls f for each node in the AST. If f returns false, children are
// not visited.
func Inspect(node ast.Node, f func(ast.Node) bool) {
	WalkFunc(node, f)
}
