package visitor

import "github.com/freeeve/sqlast/ast"

// ApplyFunc is called for each node during rewriting.
// Return the replacement node or the original to keep it.
type ApplyFunc func(ast.Node) ast.Node

// Rewrite traverses the AST and allows modifying nodes.
// The function is called in post-order (children first, then parent).
func Rewrite(node ast.Node, f ApplyFunc) ast.Node {
	if node == nil {
		return nil
	}
	rewriteChildren(node, f)
	return f(node)
}

func rewriteChildren(node ast.Node, f ApplyFunc) {
	switch n := node.(type) {
	case *ast.SimpleSelect:
		rewriteWith(n.With, f)
		if result := Rewrite(n.Select, f); result != nil {
			n.Select = result.(*ast.SelectClause)
		}
		if n.From != nil {
			if result := Rewrite(n.From, f); result != nil {
				n.From = result.(*ast.FromClause)
			}
		}
		if n.Where != nil {
			if result := Rewrite(n.Where, f); result != nil {
				n.Where = result.(*ast.WhereClause)
			}
		}
		if n.GroupBy != nil {
			if result := Rewrite(n.GroupBy, f); result != nil {
				n.GroupBy = result.(*ast.GroupByClause)
			}
		}
		if n.Having != nil {
			if result := Rewrite(n.Having, f); result != nil {
				n.Having = result.(*ast.HavingClause)
			}
		}
		if n.Window != nil {
			if result := Rewrite(n.Window, f); result != nil {
				n.Window = result.(*ast.WindowClause)
			}
		}
		if n.OrderBy != nil {
			if result := Rewrite(n.OrderBy, f); result != nil {
				n.OrderBy = result.(*ast.OrderByClause)
			}
		}
		if n.Limit != nil {
			if result := Rewrite(n.Limit, f); result != nil {
				n.Limit = result.(*ast.LimitClause)
			}
		}
		if n.Offset != nil {
			if result := Rewrite(n.Offset, f); result != nil {
				n.Offset = result.(*ast.OffsetClause)
			}
		}
		if n.Fetch != nil {
			if result := Rewrite(n.Fetch, f); result != nil {
				n.Fetch = result.(*ast.FetchClause)
			}
		}
		if n.For != nil {
			if result := Rewrite(n.For, f); result != nil {
				n.For = result.(*ast.ForClause)
			}
		}

	case *ast.BinarySelectQuery:
		if result := Rewrite(n.Left, f); result != nil {
			n.Left = result.(ast.SelectQuery)
		}
		if result := Rewrite(n.Right, f); result != nil {
			n.Right = result.(ast.SelectQuery)
		}

	case *ast.ValuesQuery:
		for i, row := range n.Rows {
			for j, val := range row {
				if result := Rewrite(val, f); result != nil {
					n.Rows[i][j] = result.(ast.Value)
				}
			}
		}

	case *ast.InsertQuery:
		rewriteWith(n.With, f)
		if result := Rewrite(n.Insert, f); result != nil {
			n.Insert = result.(*ast.InsertClause)
		}
		if n.Values != nil {
			if result := Rewrite(n.Values, f); result != nil {
				n.Values = result.(*ast.ValuesQuery)
			}
		}
		if n.Select != nil {
			if result := Rewrite(n.Select, f); result != nil {
				n.Select = result.(ast.SelectQuery)
			}
		}
		if n.Returning != nil {
			if result := Rewrite(n.Returning, f); result != nil {
				n.Returning = result.(*ast.ReturningClause)
			}
		}

	case *ast.UpdateQuery:
		rewriteWith(n.With, f)
		if result := Rewrite(n.Update, f); result != nil {
			n.Update = result.(*ast.UpdateClause)
		}
		if result := Rewrite(n.Set, f); result != nil {
			n.Set = result.(*ast.SetClause)
		}
		if n.From != nil {
			if result := Rewrite(n.From, f); result != nil {
				n.From = result.(*ast.FromClause)
			}
		}
		if n.Where != nil {
			if result := Rewrite(n.Where, f); result != nil {
				n.Where = result.(*ast.WhereClause)
			}
		}
		if n.Returning != nil {
			if result := Rewrite(n.Returning, f); result != nil {
				n.Returning = result.(*ast.ReturningClause)
			}
		}

	case *ast.DeleteQuery:
		rewriteWith(n.With, f)
		if result := Rewrite(n.Delete, f); result != nil {
			n.Delete = result.(*ast.DeleteClause)
		}
		if n.Using != nil {
			if result := Rewrite(n.Using, f); result != nil {
				n.Using = result.(*ast.UsingClause)
			}
		}
		if n.Where != nil {
			if result := Rewrite(n.Where, f); result != nil {
				n.Where = result.(*ast.WhereClause)
			}
		}
		if n.Returning != nil {
			if result := Rewrite(n.Returning, f); result != nil {
				n.Returning = result.(*ast.ReturningClause)
			}
		}

	case *ast.MergeQuery:
		rewriteWith(n.With, f)
		if result := Rewrite(n.Target, f); result != nil {
			n.Target = result.(*ast.SourceExpression)
		}
		if result := Rewrite(n.Using, f); result != nil {
			n.Using = result.(*ast.SourceExpression)
		}
		if n.On != nil {
			if result := Rewrite(n.On, f); result != nil {
				n.On = result.(ast.Value)
			}
		}
		for _, w := range n.Whens {
			if w.Condition != nil {
				if result := Rewrite(w.Condition, f); result != nil {
					w.Condition = result.(ast.Value)
				}
			}
			if w.UpdateSet != nil {
				if result := Rewrite(w.UpdateSet, f); result != nil {
					w.UpdateSet = result.(*ast.SetClause)
				}
			}
			for i, val := range w.InsertValues {
				if result := Rewrite(val, f); result != nil {
					w.InsertValues[i] = result.(ast.Value)
				}
			}
		}

	case *ast.CreateTableQuery:
		if result := Rewrite(n.Name, f); result != nil {
			n.Name = result.(*ast.TableSource)
		}
		if n.As != nil {
			if result := Rewrite(n.As, f); result != nil {
				n.As = result.(ast.SelectQuery)
			}
		}
		for _, col := range n.Columns {
			if col.Type == nil {
				continue
			}
			for i, a := range col.Type.Args {
				if result := Rewrite(a, f); result != nil {
					col.Type.Args[i] = result.(ast.Value)
				}
			}
		}

	case *ast.DropTableQuery:
		for i, t := range n.Names {
			if result := Rewrite(t, f); result != nil {
				n.Names[i] = result.(*ast.TableSource)
			}
		}

	case *ast.DropConstraintQuery:
		if result := Rewrite(n.Table, f); result != nil {
			n.Table = result.(*ast.TableSource)
		}

	case *ast.CreateIndexQuery:
		if result := Rewrite(n.Table, f); result != nil {
			n.Table = result.(*ast.TableSource)
		}
		if n.Where != nil {
			if result := Rewrite(n.Where, f); result != nil {
				n.Where = result.(ast.Value)
			}
		}

	case *ast.AlterTableQuery:
		if result := Rewrite(n.Table, f); result != nil {
			n.Table = result.(*ast.TableSource)
		}

	case *ast.AnalyzeQuery:
		if n.Table != nil {
			if result := Rewrite(n.Table, f); result != nil {
				n.Table = result.(*ast.TableSource)
			}
		}

	case *ast.ExplainQuery:
		if result := Rewrite(n.Target, f); result != nil {
			n.Target = result.(ast.Statement)
		}

	case *ast.ClusterQuery:
		if n.Table != nil {
			if result := Rewrite(n.Table, f); result != nil {
				n.Table = result.(*ast.TableSource)
			}
		}

	case *ast.BinaryExpression:
		if result := Rewrite(n.Left, f); result != nil {
			n.Left = result.(ast.Value)
		}
		if result := Rewrite(n.Right, f); result != nil {
			n.Right = result.(ast.Value)
		}

	case *ast.UnaryExpression:
		if result := Rewrite(n.Operand, f); result != nil {
			n.Operand = result.(ast.Value)
		}

	case *ast.ParenExpression:
		if result := Rewrite(n.Inner, f); result != nil {
			n.Inner = result.(ast.Value)
		}

	case *ast.BetweenExpression:
		if result := Rewrite(n.Operand, f); result != nil {
			n.Operand = result.(ast.Value)
		}
		if result := Rewrite(n.Low, f); result != nil {
			n.Low = result.(ast.Value)
		}
		if result := Rewrite(n.High, f); result != nil {
			n.High = result.(ast.Value)
		}

	case *ast.CastExpression:
		if result := Rewrite(n.Operand, f); result != nil {
			n.Operand = result.(ast.Value)
		}

	case *ast.FunctionCall:
		for i, a := range n.Args {
			if result := Rewrite(a, f); result != nil {
				n.Args[i] = result.(ast.Value)
			}
		}
		for _, ob := range n.InternalOrderBy {
			if result := Rewrite(ob.Expr, f); result != nil {
				ob.Expr = result.(ast.Value)
			}
		}
		for _, ob := range n.WithinGroup {
			if result := Rewrite(ob.Expr, f); result != nil {
				ob.Expr = result.(ast.Value)
			}
		}
		if n.Filter != nil {
			if result := Rewrite(n.Filter, f); result != nil {
				n.Filter = result.(ast.Value)
			}
		}
		if n.Over != nil {
			rewriteWindowSpec(n.Over, f)
		}
		if n.SpecialForm != nil {
			s := n.SpecialForm
			if s.Subject != nil {
				if result := Rewrite(s.Subject, f); result != nil {
					s.Subject = result.(ast.Value)
				}
			}
			if s.Replace != nil {
				if result := Rewrite(s.Replace, f); result != nil {
					s.Replace = result.(ast.Value)
				}
			}
			if s.From != nil {
				if result := Rewrite(s.From, f); result != nil {
					s.From = result.(ast.Value)
				}
			}
			if s.For != nil {
				if result := Rewrite(s.For, f); result != nil {
					s.For = result.(ast.Value)
				}
			}
		}

	case *ast.CaseExpression:
		if n.Switch != nil {
			if result := Rewrite(n.Switch, f); result != nil {
				n.Switch = result.(ast.Value)
			}
		}
		for _, w := range n.Whens {
			if result := Rewrite(w.Condition, f); result != nil {
				w.Condition = result.(ast.Value)
			}
			if result := Rewrite(w.Result, f); result != nil {
				w.Result = result.(ast.Value)
			}
		}
		if n.Else != nil {
			if result := Rewrite(n.Else, f); result != nil {
				n.Else = result.(ast.Value)
			}
		}

	case *ast.InlineQuery:
		if result := Rewrite(n.Query, f); result != nil {
			n.Query = result.(ast.Statement)
		}

	case *ast.ArrayExpression:
		for i, e := range n.Elements {
			if result := Rewrite(e, f); result != nil {
				n.Elements[i] = result.(ast.Value)
			}
		}

	case *ast.ArrayQueryExpression:
		if result := Rewrite(n.Query, f); result != nil {
			n.Query = result.(ast.Statement)
		}

	case *ast.TupleExpression:
		for i, e := range n.Elements {
			if result := Rewrite(e, f); result != nil {
				n.Elements[i] = result.(ast.Value)
			}
		}

	case *ast.ValueList:
		for i, e := range n.Items {
			if result := Rewrite(e, f); result != nil {
				n.Items[i] = result.(ast.Value)
			}
		}

	case *ast.SubQuerySource:
		if result := Rewrite(n.Query, f); result != nil {
			n.Query = result.(ast.Statement)
		}

	case *ast.ParenSource:
		if result := Rewrite(n.Inner, f); result != nil {
			n.Inner = result.(ast.Source)
		}

	case *ast.SourceExpression:
		if result := Rewrite(n.Datasource, f); result != nil {
			n.Datasource = result.(ast.Source)
		}

	case *ast.JoinClause:
		if result := Rewrite(n.Source, f); result != nil {
			n.Source = result.(*ast.SourceExpression)
		}
		if n.On != nil {
			if result := Rewrite(n.On, f); result != nil {
				n.On = result.(ast.Value)
			}
		}

	case *ast.FromClause:
		if result := Rewrite(n.Source, f); result != nil {
			n.Source = result.(*ast.SourceExpression)
		}
		for i, j := range n.Joins {
			if result := Rewrite(j, f); result != nil {
				n.Joins[i] = result.(*ast.JoinClause)
			}
		}

	case *ast.SelectClause:
		for i, dv := range n.DistinctOn {
			if result := Rewrite(dv, f); result != nil {
				n.DistinctOn[i] = result.(ast.Value)
			}
		}
		for i := range n.Items {
			if n.Items[i].Expr == nil {
				continue
			}
			if result := Rewrite(n.Items[i].Expr, f); result != nil {
				n.Items[i].Expr = result.(ast.Value)
			}
		}

	case *ast.WhereClause:
		if result := Rewrite(n.Condition, f); result != nil {
			n.Condition = result.(ast.Value)
		}

	case *ast.GroupByClause:
		for i, item := range n.Items {
			if result := Rewrite(item, f); result != nil {
				n.Items[i] = result.(ast.Value)
			}
		}

	case *ast.HavingClause:
		if result := Rewrite(n.Condition, f); result != nil {
			n.Condition = result.(ast.Value)
		}

	case *ast.WindowClause:
		for _, def := range n.Defs {
			rewriteWindowSpec(def.Spec, f)
		}

	case *ast.OrderByClause:
		for _, item := range n.Items {
			if result := Rewrite(item.Expr, f); result != nil {
				item.Expr = result.(ast.Value)
			}
		}

	case *ast.LimitClause:
		if n.Count != nil {
			if result := Rewrite(n.Count, f); result != nil {
				n.Count = result.(ast.Value)
			}
		}

	case *ast.OffsetClause:
		if result := Rewrite(n.Count, f); result != nil {
			n.Count = result.(ast.Value)
		}

	case *ast.FetchClause:
		if result := Rewrite(n.Count, f); result != nil {
			n.Count = result.(ast.Value)
		}

	case *ast.WithClause:
		for _, ct := range n.Tables {
			if result := Rewrite(ct.Query, f); result != nil {
				ct.Query = result.(ast.Statement)
			}
		}

	case *ast.ReturningClause:
		for i := range n.Items {
			if n.Items[i].Expr == nil {
				continue
			}
			if result := Rewrite(n.Items[i].Expr, f); result != nil {
				n.Items[i].Expr = result.(ast.Value)
			}
		}

	case *ast.UsingClause:
		for i, s := range n.Sources {
			if result := Rewrite(s, f); result != nil {
				n.Sources[i] = result.(*ast.SourceExpression)
			}
		}

	case *ast.SetClause:
		for _, a := range n.Assignments {
			if result := Rewrite(a.Value, f); result != nil {
				a.Value = result.(ast.Value)
			}
		}

	case *ast.InsertClause:
		if result := Rewrite(n.Target, f); result != nil {
			n.Target = result.(*ast.TableSource)
		}

	case *ast.UpdateClause:
		if result := Rewrite(n.Target, f); result != nil {
			n.Target = result.(ast.Source)
		}

	case *ast.DeleteClause:
		if result := Rewrite(n.Target, f); result != nil {
			n.Target = result.(*ast.SourceExpression)
		}
	}
}

func rewriteWith(w *ast.WithClause, f ApplyFunc) {
	if w == nil {
		return
	}
	Rewrite(w, f)
}

func rewriteWindowSpec(spec *ast.WindowSpec, f ApplyFunc) {
	if spec == nil {
		return
	}
	for i, p := range spec.PartitionBy {
		if result := Rewrite(p, f); result != nil {
			spec.PartitionBy[i] = result.(ast.Value)
		}
	}
	for _, ob := range spec.OrderBy {
		if result := Rewrite(ob.Expr, f); result != nil {
			ob.Expr = result.(ast.Value)
		}
	}
}

// RewriteExpr is a convenience wrapper for rewriting only value expressions.
func RewriteExpr(val ast.Value, f func(ast.Value) ast.Value) ast.Value {
	result := Rewrite(val, func(n ast.Node) ast.Node {
		if v, ok := n.(ast.Value); ok {
			return f(v)
		}
		return n
	})
	if result == nil {
		return nil
	}
	return result.(ast.Value)
}
