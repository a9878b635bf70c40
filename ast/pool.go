package ast

import (
	"reflect"
	"sync"
)

// isNil reports whether a Node interface value holds a nil pointer, since a
// non-nil interface can still wrap a nil *T.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Node pools for reducing allocations during parsing.
// Use Get* functions to obtain nodes and slices, and the Release* functions
// (or ReleaseAST)
// to return an entire parsed tree once the caller is done with it.

// Slice pools for the slice shapes the parser allocates most: SELECT item
// lists, generic value lists (GROUP BY, DISTINCT ON, function args, array/
// tuple elements), and ORDER BY item lists.
var (
	selectItemSlicePool = sync.Pool{
		New: func() any {
			s := make([]SelectItem, 0, 8)
			return &s
		},
	}
	valueSlicePool = sync.Pool{
		New: func() any {
			s := make([]Value, 0, 4)
			return &s
		},
	}
	orderByItemSlicePool = sync.Pool{
		New: func() any {
			s := make([]*OrderByItem, 0, 4)
			return &s
		},
	}
)

// GetSelectItemSlice returns a []SelectItem from the pool.
func GetSelectItemSlice() *[]SelectItem {
	return selectItemSlicePool.Get().(*[]SelectItem)
}

// ReleaseSelectItemSlice returns a []SelectItem to the pool.
func ReleaseSelectItemSlice(s *[]SelectItem) {
	*s = (*s)[:0]
	selectItemSlicePool.Put(s)
}

// GetValueSlice returns a []Value from the pool.
func GetValueSlice() *[]Value {
	return valueSlicePool.Get().(*[]Value)
}

// ReleaseValueSlice returns a []Value to the pool.
func ReleaseValueSlice(s *[]Value) {
	*s = (*s)[:0]
	valueSlicePool.Put(s)
}

// GetOrderByItemSlice returns a []*OrderByItem from the pool.
func GetOrderByItemSlice() *[]*OrderByItem {
	return orderByItemSlicePool.Get().(*[]*OrderByItem)
}

// ReleaseOrderByItemSlice returns a []*OrderByItem to the pool.
func ReleaseOrderByItemSlice(s *[]*OrderByItem) {
	*s = (*s)[:0]
	orderByItemSlicePool.Put(s)
}

// Node pools for the value/statement shapes the parser allocates most
// often: one per SELECT item (ColumnReference, LiteralValue), one per
// binary/unary operator, one per function call, one per ORDER BY item, one
// per plain table reference, and the SimpleSelect statement node itself.
var (
	columnReferencePool = sync.Pool{
		New: func() any { return &ColumnReference{} },
	}
	literalValuePool = sync.Pool{
		New: func() any { return &LiteralValue{} },
	}
	binaryExpressionPool = sync.Pool{
		New: func() any { return &BinaryExpression{} },
	}
	unaryExpressionPool = sync.Pool{
		New: func() any { return &UnaryExpression{} },
	}
	functionCallPool = sync.Pool{
		New: func() any { return &FunctionCall{} },
	}
	orderByItemPool = sync.Pool{
		New: func() any { return &OrderByItem{} },
	}
	tableSourcePool = sync.Pool{
		New: func() any { return &TableSource{} },
	}
	simpleSelectPool = sync.Pool{
		New: func() any { return &SimpleSelect{} },
	}
)

// GetColumnReference returns a ColumnReference from the pool.
func GetColumnReference() *ColumnReference {
	return columnReferencePool.Get().(*ColumnReference)
}

// ReleaseColumnReference returns a ColumnReference to the pool.
func ReleaseColumnReference(c *ColumnReference) {
	*c = ColumnReference{}
	columnReferencePool.Put(c)
}

// GetLiteralValue returns a LiteralValue from the pool.
func GetLiteralValue() *LiteralValue {
	return literalValuePool.Get().(*LiteralValue)
}

// ReleaseLiteralValue returns a LiteralValue to the pool.
func ReleaseLiteralValue(l *LiteralValue) {
	*l = LiteralValue{}
	literalValuePool.Put(l)
}

// GetBinaryExpression returns a BinaryExpression from the pool.
func GetBinaryExpression() *BinaryExpression {
	return binaryExpressionPool.Get().(*BinaryExpression)
}

// ReleaseBinaryExpression returns a BinaryExpression to the pool.
func ReleaseBinaryExpression(b *BinaryExpression) {
	*b = BinaryExpression{}
	binaryExpressionPool.Put(b)
}

// GetUnaryExpression returns a UnaryExpression from the pool.
func GetUnaryExpression() *UnaryExpression {
	return unaryExpressionPool.Get().(*UnaryExpression)
}

// ReleaseUnaryExpression returns a UnaryExpression to the pool.
func ReleaseUnaryExpression(u *UnaryExpression) {
	*u = UnaryExpression{}
	unaryExpressionPool.Put(u)
}

// GetFunctionCall returns a FunctionCall from the pool.
func GetFunctionCall() *FunctionCall {
	return functionCallPool.Get().(*FunctionCall)
}

// ReleaseFunctionCall returns a FunctionCall to the pool.
func ReleaseFunctionCall(f *FunctionCall) {
	*f = FunctionCall{}
	functionCallPool.Put(f)
}

// GetOrderByItem returns an OrderByItem from the pool.
func GetOrderByItem() *OrderByItem {
	return orderByItemPool.Get().(*OrderByItem)
}

// ReleaseOrderByItem returns an OrderByItem to the pool.
func ReleaseOrderByItem(o *OrderByItem) {
	*o = OrderByItem{}
	orderByItemPool.Put(o)
}

// GetTableSource returns a TableSource from the pool.
func GetTableSource() *TableSource {
	return tableSourcePool.Get().(*TableSource)
}

// ReleaseTableSource returns a TableSource to the pool.
func ReleaseTableSource(t *TableSource) {
	*t = TableSource{}
	tableSourcePool.Put(t)
}

// GetSimpleSelect returns a SimpleSelect from the pool.
func GetSimpleSelect() *SimpleSelect {
	return simpleSelectPool.Get().(*SimpleSelect)
}

// ReleaseSimpleSelect returns a SimpleSelect to the pool.
func ReleaseSimpleSelect(s *SimpleSelect) {
	*s = SimpleSelect{}
	simpleSelectPool.Put(s)
}

// ReleaseAST recursively returns every pooled node and slice reachable from
// node to its pool. Call this once a caller is done with a parsed
// statement; skipping it is safe, since unreleased nodes are simply
// collected by the garbage collector as usual. Value and source kinds with
// no dedicated pool above (parenthesized, BETWEEN, CAST and CASE
// expressions, inline and array subqueries, array/tuple/value lists,
// subquery, paren and aliased sources) are still walked so their pooled
// descendants are released; they just aren't themselves returned to a
// pool. Other statement kinds (set-operation and VALUES queries,
// INSERT/UPDATE/DELETE, MERGE, DDL) are not walked, so pooled nodes beneath
// them are left to the garbage collector.
func ReleaseAST(node Node) {
	if isNil(node) {
		return
	}

	switch n := node.(type) {
	case *SimpleSelect:
		if n.With != nil {
			for _, ct := range n.With.Tables {
				ReleaseAST(ct.Query)
			}
		}
		if n.Select != nil {
			for _, item := range n.Select.Items {
				ReleaseAST(item.Expr)
			}
			if cap(n.Select.Items) > 0 {
				items := n.Select.Items[:0]
				ReleaseSelectItemSlice(&items)
			}
			for _, v := range n.Select.DistinctOn {
				ReleaseAST(v)
			}
			if cap(n.Select.DistinctOn) > 0 {
				don := n.Select.DistinctOn[:0]
				ReleaseValueSlice(&don)
			}
		}
		if n.From != nil {
			ReleaseAST(n.From.Source)
			for _, j := range n.From.Joins {
				ReleaseAST(j.Source)
				ReleaseAST(j.On)
			}
		}
		if n.Where != nil {
			ReleaseAST(n.Where.Condition)
		}
		if n.GroupBy != nil {
			for _, v := range n.GroupBy.Items {
				ReleaseAST(v)
			}
			if cap(n.GroupBy.Items) > 0 {
				items := n.GroupBy.Items[:0]
				ReleaseValueSlice(&items)
			}
		}
		if n.Having != nil {
			ReleaseAST(n.Having.Condition)
		}
		if n.Window != nil {
			for _, def := range n.Window.Defs {
				releaseWindowSpec(def.Spec)
			}
		}
		if n.OrderBy != nil {
			for _, item := range n.OrderBy.Items {
				ReleaseAST(item.Expr)
				ReleaseOrderByItem(item)
			}
			if cap(n.OrderBy.Items) > 0 {
				items := n.OrderBy.Items[:0]
				ReleaseOrderByItemSlice(&items)
			}
		}
		if n.Limit != nil {
			ReleaseAST(n.Limit.Count)
		}
		if n.Offset != nil {
			ReleaseAST(n.Offset.Count)
		}
		if n.Fetch != nil {
			ReleaseAST(n.Fetch.Count)
		}
		ReleaseSimpleSelect(n)

	case *ColumnReference:
		ReleaseColumnReference(n)

	case *LiteralValue:
		ReleaseLiteralValue(n)

	case *BinaryExpression:
		ReleaseAST(n.Left)
		ReleaseAST(n.Right)
		ReleaseBinaryExpression(n)

	case *UnaryExpression:
		ReleaseAST(n.Operand)
		ReleaseUnaryExpression(n)

	case *ParenExpression:
		ReleaseAST(n.Inner)

	case *BetweenExpression:
		ReleaseAST(n.Operand)
		ReleaseAST(n.Low)
		ReleaseAST(n.High)

	case *CastExpression:
		ReleaseAST(n.Operand)

	case *FunctionCall:
		for _, arg := range n.Args {
			ReleaseAST(arg)
		}
		if cap(n.Args) > 0 {
			args := n.Args[:0]
			ReleaseValueSlice(&args)
		}
		ReleaseAST(n.Filter)
		for _, ob := range n.InternalOrderBy {
			ReleaseAST(ob.Expr)
			ReleaseOrderByItem(ob)
		}
		for _, ob := range n.WithinGroup {
			ReleaseAST(ob.Expr)
			ReleaseOrderByItem(ob)
		}
		releaseWindowSpec(n.Over)
		if n.SpecialForm != nil {
			ReleaseAST(n.SpecialForm.Subject)
			ReleaseAST(n.SpecialForm.Replace)
			ReleaseAST(n.SpecialForm.From)
			ReleaseAST(n.SpecialForm.For)
		}
		ReleaseFunctionCall(n)

	case *CaseExpression:
		ReleaseAST(n.Switch)
		for _, w := range n.Whens {
			ReleaseAST(w.Condition)
			ReleaseAST(w.Result)
		}
		ReleaseAST(n.Else)

	case *InlineQuery:
		ReleaseAST(n.Query)

	case *ArrayQueryExpression:
		ReleaseAST(n.Query)

	case *ArrayExpression:
		for _, v := range n.Elements {
			ReleaseAST(v)
		}
		if cap(n.Elements) > 0 {
			els := n.Elements[:0]
			ReleaseValueSlice(&els)
		}

	case *TupleExpression:
		for _, v := range n.Elements {
			ReleaseAST(v)
		}
		if cap(n.Elements) > 0 {
			els := n.Elements[:0]
			ReleaseValueSlice(&els)
		}

	case *ValueList:
		for _, v := range n.Items {
			ReleaseAST(v)
		}
		if cap(n.Items) > 0 {
			items := n.Items[:0]
			ReleaseValueSlice(&items)
		}

	case *TableSource:
		ReleaseTableSource(n)

	case *SubQuerySource:
		ReleaseAST(n.Query)

	case *ParenSource:
		ReleaseAST(n.Inner)

	case *SourceExpression:
		ReleaseAST(n.Datasource)
	}
}

func releaseWindowSpec(w *WindowSpec) {
	if w == nil {
		return
	}
	for _, v := range w.PartitionBy {
		ReleaseAST(v)
	}
	for _, ob := range w.OrderBy {
		ReleaseAST(ob.Expr)
		ReleaseOrderByItem(ob)
	}
}
