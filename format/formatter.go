// Package format provides SQL generation from AST nodes. It is a
// best-effort round-trip writer, not a pretty-printer: it exists mainly so
// callers (and the module's round-trip tests) have a way to turn a rewritten AST
// back into text, not to reproduce the source byte-for-byte.
package format

import (
	"bytes"
	"strings"

	"github.com/freeeve/sqlast/ast"
)

// Options controls formatting behavior.
type Options struct {
	Uppercase bool   // Uppercase keywords
	Indent    string // Indentation string (unused for single-line output)
}

// DefaultOptions are the default formatting options.
var DefaultOptions = Options{
	Uppercase: true,
	Indent:    "  ",
}

// Formatter generates SQL from AST nodes.
type Formatter struct {
	buf  bytes.Buffer
	opts Options
}

// New creates a new formatter with the given options.
func New(opts Options) *Formatter {
	return &Formatter{opts: opts}
}

// String formats an AST node to a SQL string.
func String(node ast.Node) string {
	f := New(DefaultOptions)
	f.Format(node)
	return f.String()
}

// Format formats a node to the internal buffer.
func (f *Formatter) Format(node ast.Node) {
	if node == nil || isNilNode(node) {
		return
	}

	switch n := node.(type) {
	case *ast.SimpleSelect:
		f.formatSimpleSelect(n)
	case *ast.BinarySelectQuery:
		f.formatBinarySelect(n)
	case *ast.ValuesQuery:
		f.formatValuesQuery(n)
	case *ast.InsertQuery:
		f.formatInsert(n)
	case *ast.UpdateQuery:
		f.formatUpdate(n)
	case *ast.DeleteQuery:
		f.formatDelete(n)
	case *ast.MergeQuery:
		f.formatMerge(n)
	case *ast.CreateTableQuery:
		f.formatCreateTable(n)
	case *ast.DropTableQuery:
		f.formatDropTable(n)
	case *ast.DropIndexQuery:
		f.formatDropIndex(n)
	case *ast.DropSchemaQuery:
		f.formatDropSchema(n)
	case *ast.DropConstraintQuery:
		f.formatDropConstraint(n)
	case *ast.CreateIndexQuery:
		f.formatCreateIndex(n)
	case *ast.AlterTableQuery:
		f.formatAlterTable(n)
	case *ast.AnalyzeQuery:
		f.formatAnalyze(n)
	case *ast.ExplainQuery:
		f.formatExplain(n)
	case *ast.CreateSequenceQuery:
		f.formatCreateSequence(n)
	case *ast.AlterSequenceQuery:
		f.formatAlterSequence(n)
	case *ast.DropSequenceQuery:
		f.formatDropSequence(n)
	case *ast.ClusterQuery:
		f.formatCluster(n)
	case *ast.ReindexQuery:
		f.formatReindex(n)

	case *ast.ColumnReference:
		f.formatColumnReference(n)
	case *ast.LiteralValue:
		f.write(n.Raw)
	case *ast.ParameterExpression:
		f.write(n.Raw)
	case *ast.BinaryExpression:
		f.formatBinaryExpression(n)
	case *ast.UnaryExpression:
		f.formatUnaryExpression(n)
	case *ast.ParenExpression:
		f.write("(")
		f.Format(n.Inner)
		f.write(")")
	case *ast.BetweenExpression:
		f.formatBetween(n)
	case *ast.TypeValue:
		f.formatTypeValue(n)
	case *ast.CastExpression:
		f.Format(n.Operand)
		f.write("::")
		f.formatTypeValue(n.Type)
	case *ast.FunctionCall:
		f.formatFunctionCall(n)
	case *ast.CaseExpression:
		f.formatCaseExpression(n)
	case *ast.InlineQuery:
		f.write("(")
		f.Format(n.Query)
		f.write(")")
	case *ast.ArrayExpression:
		f.writeKeyword("ARRAY")
		f.write("[")
		f.formatValueList(n.Elements)
		f.write("]")
	case *ast.ArrayQueryExpression:
		f.writeKeyword("ARRAY")
		f.write("(")
		f.Format(n.Query)
		f.write(")")
	case *ast.TupleExpression:
		f.write("(")
		f.formatValueList(n.Elements)
		f.write(")")
	case *ast.ValueList:
		f.formatValueList(n.Items)
	case *ast.RawString:
		f.write(n.Text)
	case *ast.IdentifierString:
		f.writeIdent(n.Name)

	case *ast.TableSource:
		f.formatTableSource(n)
	case *ast.SubQuerySource:
		f.write("(")
		f.Format(n.Query)
		f.write(")")
	case *ast.ParenSource:
		f.write("(")
		f.Format(n.Inner)
		f.write(")")
	case *ast.SourceExpression:
		f.formatSourceExpression(n)
	case *ast.JoinClause:
		f.formatJoinClause(n)
	case *ast.FromClause:
		f.formatFromClause(n)

	case *ast.SelectClause:
		f.formatSelectClause(n)
	case *ast.WhereClause:
		f.Format(n.Condition)
	case *ast.GroupByClause:
		f.formatValueList(n.Items)
	case *ast.HavingClause:
		f.Format(n.Condition)
	case *ast.WindowClause:
		f.formatWindowClause(n)
	case *ast.OrderByClause:
		f.formatOrderByItems(n.Items)
	case *ast.LimitClause:
		if n.Count != nil {
			f.Format(n.Count)
		} else {
			f.writeKeyword("ALL")
		}
	case *ast.OffsetClause:
		f.Format(n.Count)
	case *ast.FetchClause:
		f.formatFetchClause(n)
	case *ast.ForClause:
		f.formatForClause(n)
	case *ast.WithClause:
		f.formatWithClause(n)
	case *ast.ReturningClause:
		f.formatSelectItems(n.Items)
	case *ast.UsingClause:
		f.formatUsingClause(n)
	case *ast.SetClause:
		f.formatSetClause(n)
	case *ast.InsertClause:
		f.formatInsertClause(n)
	case *ast.UpdateClause:
		f.Format(n.Target)
	case *ast.DeleteClause:
		f.Format(n.Target)
	}
}

func (f *Formatter) String() string {
	return f.buf.String()
}

func (f *Formatter) write(s string) {
	f.buf.WriteString(s)
}

func (f *Formatter) writeKeyword(kw string) {
	if f.opts.Uppercase {
		f.buf.WriteString(strings.ToUpper(kw))
	} else {
		f.buf.WriteString(strings.ToLower(kw))
	}
}

func (f *Formatter) writeIdent(id string) {
	if needsQuoting(id) {
		f.buf.WriteByte('"')
		f.buf.WriteString(strings.ReplaceAll(id, `"`, `""`))
		f.buf.WriteByte('"')
	} else {
		f.buf.WriteString(id)
	}
}

func (f *Formatter) writeQualifiedName(namespaces []string, name string) {
	for _, ns := range namespaces {
		f.writeIdent(ns)
		f.write(".")
	}
	f.writeIdent(name)
}

// writeFuncName writes a function name. Unlike writeIdent, it doesn't quote
// keywords since many SQL functions have keyword names (ANY, ALL, COUNT, etc.)
func (f *Formatter) writeFuncName(name string) {
	if needsQuotingNonKeyword(name) {
		f.buf.WriteByte('"')
		f.buf.WriteString(strings.ReplaceAll(name, `"`, `""`))
		f.buf.WriteByte('"')
	} else {
		f.buf.WriteString(name)
	}
}

func (f *Formatter) formatSimpleSelect(s *ast.SimpleSelect) {
	if s.With != nil {
		f.Format(s.With)
		f.write(" ")
	}
	f.Format(s.Select)
	if s.From != nil {
		f.write(" ")
		f.writeKeyword("FROM")
		f.write(" ")
		f.Format(s.From)
	}
	if s.Where != nil {
		f.write(" ")
		f.writeKeyword("WHERE")
		f.write(" ")
		f.Format(s.Where)
	}
	if s.GroupBy != nil {
		f.write(" ")
		f.writeKeyword("GROUP BY")
		f.write(" ")
		f.Format(s.GroupBy)
	}
	if s.Having != nil {
		f.write(" ")
		f.writeKeyword("HAVING")
		f.write(" ")
		f.Format(s.Having)
	}
	if s.Window != nil {
		f.write(" ")
		f.Format(s.Window)
	}
	if s.OrderBy != nil {
		f.write(" ")
		f.writeKeyword("ORDER BY")
		f.write(" ")
		f.Format(s.OrderBy)
	}
	if s.Limit != nil {
		f.write(" ")
		f.writeKeyword("LIMIT")
		f.write(" ")
		f.Format(s.Limit)
	}
	if s.Offset != nil {
		f.write(" ")
		f.writeKeyword("OFFSET")
		f.write(" ")
		f.Format(s.Offset)
	}
	if s.Fetch != nil {
		f.write(" ")
		f.Format(s.Fetch)
	}
	if s.For != nil {
		f.write(" ")
		f.Format(s.For)
	}
}

func (f *Formatter) formatBinarySelect(s *ast.BinarySelectQuery) {
	f.Format(s.Left)
	f.write(" ")
	switch s.Operator {
	case ast.SetIntersect:
		f.writeKeyword("INTERSECT")
	case ast.SetExcept:
		f.writeKeyword("EXCEPT")
	default:
		f.writeKeyword("UNION")
	}
	if s.All {
		f.write(" ")
		f.writeKeyword("ALL")
	}
	f.write(" ")
	f.Format(s.Right)
}

func (f *Formatter) formatValuesQuery(s *ast.ValuesQuery) {
	f.writeKeyword("VALUES")
	f.write(" ")
	for i, row := range s.Rows {
		if i > 0 {
			f.write(", ")
		}
		f.write("(")
		f.formatValueList(row)
		f.write(")")
	}
}

func (f *Formatter) formatSelectClause(s *ast.SelectClause) {
	f.writeKeyword("SELECT")
	if s.Distinct {
		f.write(" ")
		f.writeKeyword("DISTINCT")
		if len(s.DistinctOn) > 0 {
			f.write(" ")
			f.writeKeyword("ON")
			f.write(" (")
			f.formatValueList(s.DistinctOn)
			f.write(")")
		}
	}
	f.write(" ")
	f.formatSelectItems(s.Items)
}

func (f *Formatter) formatSelectItems(items []ast.SelectItem) {
	for i, item := range items {
		if i > 0 {
			f.write(", ")
		}
		if item.Star {
			f.write("*")
			continue
		}
		f.Format(item.Expr)
		if item.Alias != "" {
			f.write(" ")
			f.writeKeyword("AS")
			f.write(" ")
			f.writeIdent(item.Alias)
		}
	}
}

func (f *Formatter) formatWithClause(w *ast.WithClause) {
	f.writeKeyword("WITH")
	if w.Recursive {
		f.write(" ")
		f.writeKeyword("RECURSIVE")
	}
	f.write(" ")
	for i, cte := range w.Tables {
		if i > 0 {
			f.write(", ")
		}
		f.writeIdent(cte.Alias)
		if len(cte.ColumnAliases) > 0 {
			f.write(" (")
			for j, col := range cte.ColumnAliases {
				if j > 0 {
					f.write(", ")
				}
				f.writeIdent(col)
			}
			f.write(")")
		}
		f.write(" ")
		f.writeKeyword("AS")
		f.write(" ")
		switch cte.Materialized {
		case ast.MaterializedTrue:
			f.writeKeyword("MATERIALIZED")
			f.write(" ")
		case ast.MaterializedFalse:
			f.writeKeyword("NOT MATERIALIZED")
			f.write(" ")
		}
		f.write("(")
		f.Format(cte.Query)
		f.write(")")
	}
}

func (f *Formatter) formatInsertClause(c *ast.InsertClause) {
	f.writeKeyword("INTO")
	f.write(" ")
	f.Format(c.Target)
	if c.Columns != nil {
		f.write(" (")
		for i, col := range c.Columns {
			if i > 0 {
				f.write(", ")
			}
			f.writeIdent(col)
		}
		f.write(")")
	}
}

func (f *Formatter) formatInsert(s *ast.InsertQuery) {
	if s.With != nil {
		f.Format(s.With)
		f.write(" ")
	}
	f.writeKeyword("INSERT")
	f.write(" ")
	f.Format(s.Insert)
	if s.Values != nil {
		f.write(" ")
		f.Format(s.Values)
	}
	if s.Select != nil {
		f.write(" ")
		f.Format(s.Select)
	}
	if s.Returning != nil {
		f.write(" ")
		f.writeKeyword("RETURNING")
		f.write(" ")
		f.Format(s.Returning)
	}
}

func (f *Formatter) formatSetClause(c *ast.SetClause) {
	f.writeKeyword("SET")
	f.write(" ")
	for i, a := range c.Assignments {
		if i > 0 {
			f.write(", ")
		}
		if len(a.Columns) > 1 {
			f.write("(")
			for j, col := range a.Columns {
				if j > 0 {
					f.write(", ")
				}
				f.writeIdent(col)
			}
			f.write(")")
		} else if len(a.Columns) == 1 {
			f.writeIdent(a.Columns[0])
		}
		f.write(" = ")
		f.Format(a.Value)
	}
}

func (f *Formatter) formatUpdate(s *ast.UpdateQuery) {
	if s.With != nil {
		f.Format(s.With)
		f.write(" ")
	}
	f.writeKeyword("UPDATE")
	f.write(" ")
	f.Format(s.Update)
	f.write(" ")
	f.Format(s.Set)
	if s.From != nil {
		f.write(" ")
		f.writeKeyword("FROM")
		f.write(" ")
		f.Format(s.From)
	}
	if s.Where != nil {
		f.write(" ")
		f.writeKeyword("WHERE")
		f.write(" ")
		f.Format(s.Where)
	}
	if s.Returning != nil {
		f.write(" ")
		f.writeKeyword("RETURNING")
		f.write(" ")
		f.Format(s.Returning)
	}
}

func (f *Formatter) formatUsingClause(c *ast.UsingClause) {
	for i, src := range c.Sources {
		if i > 0 {
			f.write(", ")
		}
		f.Format(src)
	}
}

func (f *Formatter) formatDelete(s *ast.DeleteQuery) {
	if s.With != nil {
		f.Format(s.With)
		f.write(" ")
	}
	f.writeKeyword("DELETE FROM")
	f.write(" ")
	f.Format(s.Delete)
	if s.Using != nil {
		f.write(" ")
		f.writeKeyword("USING")
		f.write(" ")
		f.Format(s.Using)
	}
	if s.Where != nil {
		f.write(" ")
		f.writeKeyword("WHERE")
		f.write(" ")
		f.Format(s.Where)
	}
	if s.Returning != nil {
		f.write(" ")
		f.writeKeyword("RETURNING")
		f.write(" ")
		f.Format(s.Returning)
	}
}

func (f *Formatter) formatMerge(s *ast.MergeQuery) {
	if s.With != nil {
		f.Format(s.With)
		f.write(" ")
	}
	f.writeKeyword("MERGE INTO")
	f.write(" ")
	f.Format(s.Target)
	f.write(" ")
	f.writeKeyword("USING")
	f.write(" ")
	f.Format(s.Using)
	f.write(" ")
	f.writeKeyword("ON")
	f.write(" ")
	f.Format(s.On)
	for _, w := range s.Whens {
		f.write(" ")
		f.writeKeyword("WHEN")
		f.write(" ")
		if !w.Matched {
			f.writeKeyword("NOT")
			f.write(" ")
		}
		f.writeKeyword("MATCHED")
		if w.Condition != nil {
			f.write(" ")
			f.writeKeyword("AND")
			f.write(" ")
			f.Format(w.Condition)
		}
		f.write(" ")
		f.writeKeyword("THEN")
		f.write(" ")
		switch {
		case w.Delete:
			f.writeKeyword("DELETE")
		case w.UpdateSet != nil:
			f.writeKeyword("UPDATE")
			f.write(" ")
			f.Format(w.UpdateSet)
		default:
			f.writeKeyword("INSERT")
			if len(w.InsertColumns) > 0 {
				f.write(" (")
				for i, col := range w.InsertColumns {
					if i > 0 {
						f.write(", ")
					}
					f.writeIdent(col)
				}
				f.write(")")
			}
			f.write(" ")
			f.writeKeyword("VALUES")
			f.write(" (")
			f.formatValueList(w.InsertValues)
			f.write(")")
		}
	}
}

func (f *Formatter) formatTableSource(t *ast.TableSource) {
	f.writeQualifiedName(t.Namespaces, t.Name)
}

func (f *Formatter) formatSourceExpression(s *ast.SourceExpression) {
	if s.Lateral {
		f.writeKeyword("LATERAL")
		f.write(" ")
	}
	f.Format(s.Datasource)
	if s.WithOrdinality {
		f.write(" ")
		f.writeKeyword("WITH ORDINALITY")
	}
	if s.Alias != nil {
		f.write(" ")
		f.writeIdent(s.Alias.Alias)
		if len(s.Alias.ColumnAliases) > 0 {
			f.write(" (")
			for i, col := range s.Alias.ColumnAliases {
				if i > 0 {
					f.write(", ")
				}
				f.writeIdent(col)
			}
			f.write(")")
		}
	}
}

func (f *Formatter) formatJoinClause(j *ast.JoinClause) {
	if j.Type != ast.JoinInner {
		f.writeKeyword(strings.ToUpper(j.Type.String()))
		f.write(" ")
	}
	f.writeKeyword("JOIN")
	f.write(" ")
	f.Format(j.Source)
	if j.On != nil {
		f.write(" ")
		f.writeKeyword("ON")
		f.write(" ")
		f.Format(j.On)
	}
	if len(j.Using) > 0 {
		f.write(" ")
		f.writeKeyword("USING")
		f.write(" (")
		for i, col := range j.Using {
			if i > 0 {
				f.write(", ")
			}
			f.writeIdent(col)
		}
		f.write(")")
	}
}

func (f *Formatter) formatFromClause(c *ast.FromClause) {
	f.Format(c.Source)
	for _, j := range c.Joins {
		f.write(" ")
		f.Format(j)
	}
}

func (f *Formatter) formatOrderByItems(items []*ast.OrderByItem) {
	for i, item := range items {
		if i > 0 {
			f.write(", ")
		}
		f.Format(item.Expr)
		if item.Direction != "" {
			f.write(" ")
			f.writeKeyword(item.Direction)
		}
		if item.Nulls != "" {
			f.write(" ")
			f.writeKeyword("NULLS")
			f.write(" ")
			f.writeKeyword(item.Nulls)
		}
	}
}

func (f *Formatter) formatWindowClause(w *ast.WindowClause) {
	f.writeKeyword("WINDOW")
	f.write(" ")
	for i, def := range w.Defs {
		if i > 0 {
			f.write(", ")
		}
		f.writeIdent(def.Name)
		f.write(" ")
		f.writeKeyword("AS")
		f.write(" (")
		f.formatWindowSpecBody(def.Spec)
		f.write(")")
	}
}

func (f *Formatter) formatWindowSpecBody(spec *ast.WindowSpec) {
	wrote := false
	if spec.Name != "" {
		f.writeIdent(spec.Name)
		wrote = true
	}
	if len(spec.PartitionBy) > 0 {
		if wrote {
			f.write(" ")
		}
		f.writeKeyword("PARTITION BY")
		f.write(" ")
		f.formatValueList(spec.PartitionBy)
		wrote = true
	}
	if len(spec.OrderBy) > 0 {
		if wrote {
			f.write(" ")
		}
		f.writeKeyword("ORDER BY")
		f.write(" ")
		f.formatOrderByItems(spec.OrderBy)
		wrote = true
	}
	if spec.Frame != "" {
		if wrote {
			f.write(" ")
		}
		f.write(spec.Frame)
	}
}

func (f *Formatter) formatFetchClause(c *ast.FetchClause) {
	f.writeKeyword("FETCH FIRST")
	f.write(" ")
	f.Format(c.Count)
	f.write(" ")
	f.writeKeyword("ROWS")
	f.write(" ")
	if c.WithTies {
		f.writeKeyword("WITH TIES")
	} else {
		f.writeKeyword("ONLY")
	}
}

func (f *Formatter) formatForClause(c *ast.ForClause) {
	f.writeKeyword("FOR")
	f.write(" ")
	switch c.Mode {
	case ast.LockShare:
		f.writeKeyword("SHARE")
	case ast.LockNoKeyUpdate:
		f.writeKeyword("NO KEY UPDATE")
	case ast.LockKeyShare:
		f.writeKeyword("KEY SHARE")
	default:
		f.writeKeyword("UPDATE")
	}
	if len(c.Of) > 0 {
		f.write(" ")
		f.writeKeyword("OF")
		f.write(" ")
		for i, name := range c.Of {
			if i > 0 {
				f.write(", ")
			}
			f.writeIdent(name)
		}
	}
	if c.NoWait {
		f.write(" ")
		f.writeKeyword("NOWAIT")
	}
	if c.SkipLocked {
		f.write(" ")
		f.writeKeyword("SKIP LOCKED")
	}
}

func (f *Formatter) formatValueList(vals []ast.Value) {
	for i, v := range vals {
		if i > 0 {
			f.write(", ")
		}
		f.Format(v)
	}
}

func (f *Formatter) formatColumnReference(c *ast.ColumnReference) {
	for _, ns := range c.Namespaces {
		f.writeIdent(ns)
		f.write(".")
	}
	if c.Star {
		f.write("*")
		return
	}
	f.writeIdent(c.Name)
}

func (f *Formatter) formatBinaryExpression(e *ast.BinaryExpression) {
	if strings.HasSuffix(e.Operator, " escape") {
		f.Format(e.Left)
		f.write(" ")
		f.writeKeyword("ESCAPE")
		f.write(" ")
		f.Format(e.Right)
		return
	}
	f.Format(e.Left)
	f.write(" ")
	f.writeKeyword(e.Operator)
	f.write(" ")
	f.Format(e.Right)
}

func (f *Formatter) formatUnaryExpression(e *ast.UnaryExpression) {
	switch e.Operator {
	case "-", "+":
		f.writeKeyword(e.Operator)
		f.Format(e.Operand)
	case "is null", "is not null", "isnull", "notnull":
		f.Format(e.Operand)
		f.write(" ")
		f.writeKeyword(e.Operator)
	default:
		f.writeKeyword(e.Operator)
		f.write(" ")
		f.Format(e.Operand)
	}
}

func (f *Formatter) formatBetween(e *ast.BetweenExpression) {
	f.Format(e.Operand)
	f.write(" ")
	if e.Negated {
		f.writeKeyword("NOT")
		f.write(" ")
	}
	f.writeKeyword("BETWEEN")
	f.write(" ")
	f.Format(e.Low)
	f.write(" ")
	f.writeKeyword("AND")
	f.write(" ")
	f.Format(e.High)
}

func (f *Formatter) formatTypeValue(t *ast.TypeValue) {
	if t == nil {
		return
	}
	f.writeKeyword(t.Name)
	if len(t.Args) > 0 {
		f.write("(")
		f.formatValueList(t.Args)
		f.write(")")
	}
	if t.IsArray {
		f.write("[]")
	}
}

func (f *Formatter) formatFunctionCall(e *ast.FunctionCall) {
	for _, ns := range e.Namespaces {
		f.writeIdent(ns)
		f.write(".")
	}
	f.writeFuncName(e.Name)
	f.write("(")
	if e.SpecialForm != nil {
		f.formatSpecialForm(e)
	} else {
		if e.Distinct {
			f.writeKeyword("DISTINCT")
			f.write(" ")
		}
		if e.StarArg {
			f.write("*")
		} else {
			f.formatValueList(e.Args)
		}
		if len(e.InternalOrderBy) > 0 {
			f.write(" ")
			f.writeKeyword("ORDER BY")
			f.write(" ")
			f.formatOrderByItems(e.InternalOrderBy)
		}
		if e.WithOrdinality {
			f.write(" ")
			f.writeKeyword("WITH ORDINALITY")
		}
	}
	f.write(")")
	if len(e.WithinGroup) > 0 {
		f.write(" ")
		f.writeKeyword("WITHIN GROUP")
		f.write(" (")
		f.writeKeyword("ORDER BY")
		f.write(" ")
		f.formatOrderByItems(e.WithinGroup)
		f.write(")")
	}
	if e.Filter != nil {
		f.write(" ")
		f.writeKeyword("FILTER")
		f.write(" (")
		f.writeKeyword("WHERE")
		f.write(" ")
		f.Format(e.Filter)
		f.write(")")
	}
	if e.Over != nil {
		f.write(" ")
		f.writeKeyword("OVER")
		f.write(" (")
		f.formatWindowSpecBody(e.Over)
		f.write(")")
	}
}

func (f *Formatter) formatSpecialForm(e *ast.FunctionCall) {
	s := e.SpecialForm
	switch strings.ToLower(e.Name) {
	case "extract":
		f.writeKeyword(s.Field)
		f.write(" ")
		f.writeKeyword("FROM")
		f.write(" ")
		f.Format(s.Subject)
	case "trim":
		if s.TrimSpec != "" {
			f.writeKeyword(s.TrimSpec)
			f.write(" ")
		}
		if s.Replace != nil {
			f.Format(s.Replace)
			f.write(" ")
			f.writeKeyword("FROM")
			f.write(" ")
		}
		f.Format(s.Subject)
	case "overlay":
		f.Format(s.Subject)
		f.write(" ")
		f.writeKeyword("PLACING")
		f.write(" ")
		f.Format(s.Replace)
		f.write(" ")
		f.writeKeyword("FROM")
		f.write(" ")
		f.Format(s.From)
		if s.For != nil {
			f.write(" ")
			f.writeKeyword("FOR")
			f.write(" ")
			f.Format(s.For)
		}
	default: // substring
		f.Format(s.Subject)
		if s.From != nil {
			f.write(" ")
			f.writeKeyword("FROM")
			f.write(" ")
			f.Format(s.From)
		}
		if s.For != nil {
			f.write(" ")
			f.writeKeyword("FOR")
			f.write(" ")
			f.Format(s.For)
		}
	}
}

func (f *Formatter) formatCaseExpression(e *ast.CaseExpression) {
	f.writeKeyword("CASE")
	if e.Switch != nil {
		f.write(" ")
		f.Format(e.Switch)
	}
	for _, w := range e.Whens {
		f.write(" ")
		f.writeKeyword("WHEN")
		f.write(" ")
		f.Format(w.Condition)
		f.write(" ")
		f.writeKeyword("THEN")
		f.write(" ")
		f.Format(w.Result)
	}
	if e.Else != nil {
		f.write(" ")
		f.writeKeyword("ELSE")
		f.write(" ")
		f.Format(e.Else)
	}
	f.write(" ")
	f.writeKeyword("END")
}

func (f *Formatter) formatColumnDef(col *ast.ColumnDef) {
	if col.Name != "" {
		f.writeIdent(col.Name)
		f.write(" ")
		f.formatTypeValue(col.Type)
	}
	for i, c := range col.Constraints {
		if col.Name != "" || i > 0 {
			f.write(" ")
		}
		f.write(c)
	}
}

func (f *Formatter) formatCreateTable(s *ast.CreateTableQuery) {
	f.writeKeyword("CREATE")
	f.write(" ")
	if s.Temporary {
		f.writeKeyword("TEMPORARY")
		f.write(" ")
	}
	f.writeKeyword("TABLE")
	f.write(" ")
	if s.IfNotExists {
		f.writeKeyword("IF NOT EXISTS")
		f.write(" ")
	}
	f.Format(s.Name)
	if s.As != nil {
		f.write(" ")
		f.writeKeyword("AS")
		f.write(" ")
		f.Format(s.As)
		return
	}
	f.write(" (")
	for i, col := range s.Columns {
		if i > 0 {
			f.write(", ")
		}
		f.formatColumnDef(col)
	}
	f.write(")")
}

func (f *Formatter) formatDropTable(s *ast.DropTableQuery) {
	f.writeKeyword("DROP TABLE")
	f.write(" ")
	if s.IfExists {
		f.writeKeyword("IF EXISTS")
		f.write(" ")
	}
	for i, t := range s.Names {
		if i > 0 {
			f.write(", ")
		}
		f.Format(t)
	}
	if s.Cascade {
		f.write(" ")
		f.writeKeyword("CASCADE")
	}
}

func (f *Formatter) formatDropIndex(s *ast.DropIndexQuery) {
	f.writeKeyword("DROP INDEX")
	f.write(" ")
	if s.IfExists {
		f.writeKeyword("IF EXISTS")
		f.write(" ")
	}
	for i, n := range s.Names {
		if i > 0 {
			f.write(", ")
		}
		f.writeIdent(n)
	}
}

func (f *Formatter) formatDropSchema(s *ast.DropSchemaQuery) {
	f.writeKeyword("DROP SCHEMA")
	f.write(" ")
	if s.IfExists {
		f.writeKeyword("IF EXISTS")
		f.write(" ")
	}
	f.writeIdent(s.Name)
	if s.Cascade {
		f.write(" ")
		f.writeKeyword("CASCADE")
	}
}

func (f *Formatter) formatDropConstraint(s *ast.DropConstraintQuery) {
	f.writeKeyword("ALTER TABLE")
	f.write(" ")
	f.Format(s.Table)
	f.write(" ")
	f.writeKeyword("DROP CONSTRAINT")
	f.write(" ")
	if s.IfExists {
		f.writeKeyword("IF EXISTS")
		f.write(" ")
	}
	f.writeIdent(s.ConstraintName)
}

func (f *Formatter) formatCreateIndex(s *ast.CreateIndexQuery) {
	f.writeKeyword("CREATE")
	f.write(" ")
	if s.Unique {
		f.writeKeyword("UNIQUE")
		f.write(" ")
	}
	f.writeKeyword("INDEX")
	f.write(" ")
	if s.IfNotExists {
		f.writeKeyword("IF NOT EXISTS")
		f.write(" ")
	}
	if s.Name != "" {
		f.writeIdent(s.Name)
		f.write(" ")
	}
	f.writeKeyword("ON")
	f.write(" ")
	f.Format(s.Table)
	if s.Using != "" {
		f.write(" ")
		f.writeKeyword("USING")
		f.write(" ")
		f.writeKeyword(s.Using)
	}
	f.write(" (")
	for i, c := range s.Columns {
		if i > 0 {
			f.write(", ")
		}
		f.write(c)
	}
	f.write(")")
	if s.Where != nil {
		f.write(" ")
		f.writeKeyword("WHERE")
		f.write(" ")
		f.Format(s.Where)
	}
}

func (f *Formatter) formatAlterTable(s *ast.AlterTableQuery) {
	f.writeKeyword("ALTER TABLE")
	f.write(" ")
	f.Format(s.Table)
	for i, a := range s.Actions {
		if i > 0 {
			f.write(",")
		}
		f.write(" ")
		f.write(a.Raw)
	}
}

func (f *Formatter) formatAnalyze(s *ast.AnalyzeQuery) {
	f.writeKeyword("ANALYZE")
	if s.Table != nil {
		f.write(" ")
		f.Format(s.Table)
		if len(s.Columns) > 0 {
			f.write(" (")
			for i, c := range s.Columns {
				if i > 0 {
					f.write(", ")
				}
				f.writeIdent(c)
			}
			f.write(")")
		}
	}
}

func (f *Formatter) formatExplain(s *ast.ExplainQuery) {
	f.writeKeyword("EXPLAIN")
	if s.Analyze {
		f.write(" ")
		f.writeKeyword("ANALYZE")
	}
	if len(s.Options) > 0 {
		f.write(" (")
		f.write(strings.Join(s.Options, ", "))
		f.write(")")
	}
	f.write(" ")
	f.Format(s.Target)
}

func (f *Formatter) formatSequenceOptions(opts map[string]string) {
	for k, v := range opts {
		f.write(" ")
		f.writeKeyword(k)
		if v != "" {
			f.write(" ")
			f.write(v)
		}
	}
}

func (f *Formatter) formatCreateSequence(s *ast.CreateSequenceQuery) {
	f.writeKeyword("CREATE SEQUENCE")
	f.write(" ")
	if s.IfNotExists {
		f.writeKeyword("IF NOT EXISTS")
		f.write(" ")
	}
	f.writeIdent(s.Name)
	f.formatSequenceOptions(s.Options)
}

func (f *Formatter) formatAlterSequence(s *ast.AlterSequenceQuery) {
	f.writeKeyword("ALTER SEQUENCE")
	f.write(" ")
	if s.IfExists {
		f.writeKeyword("IF EXISTS")
		f.write(" ")
	}
	f.writeIdent(s.Name)
	f.formatSequenceOptions(s.Options)
}

func (f *Formatter) formatDropSequence(s *ast.DropSequenceQuery) {
	f.writeKeyword("DROP SEQUENCE")
	f.write(" ")
	if s.IfExists {
		f.writeKeyword("IF EXISTS")
		f.write(" ")
	}
	for i, n := range s.Names {
		if i > 0 {
			f.write(", ")
		}
		f.writeIdent(n)
	}
}

func (f *Formatter) formatCluster(s *ast.ClusterQuery) {
	f.writeKeyword("CLUSTER")
	if s.Table != nil {
		f.write(" ")
		f.Format(s.Table)
		if s.Index != "" {
			f.write(" ")
			f.writeKeyword("USING")
			f.write(" ")
			f.writeIdent(s.Index)
		}
	}
}

func (f *Formatter) formatReindex(s *ast.ReindexQuery) {
	f.writeKeyword("REINDEX")
	f.write(" ")
	f.writeKeyword(s.Kind)
	f.write(" ")
	f.writeIdent(s.Name)
}

// isNilNode guards against typed-nil interface values reaching the big
// switch in Format, which would otherwise dereference a nil pointer inside
// one of the formatX helpers.
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
	case *ast.TypeValue:
		return n == nil
	}
	return false
}

var reservedWords = map[string]bool{
	"select": true, "from": true, "where": true, "insert": true, "update": true,
	"delete": true, "create": true, "drop": true, "alter": true, "table": true,
	"index": true, "into": true, "values": true, "and": true, "or": true,
	"not": true, "null": true, "is": true, "in": true, "like": true,
	"between": true, "join": true, "on": true, "as": true, "group": true,
	"order": true, "by": true, "having": true, "limit": true, "offset": true,
	"union": true, "all": true, "distinct": true, "case": true, "when": true,
	"then": true, "else": true, "end": true, "cast": true, "with": true,
	"merge": true, "using": true, "returning": true, "primary": true,
	"key": true, "foreign": true, "references": true, "default": true,
	"check": true, "unique": true, "constraint": true, "analyze": true,
	"explain": true, "sequence": true, "cluster": true, "reindex": true,
}

func needsQuoting(id string) bool {
	if needsQuotingNonKeyword(id) {
		return true
	}
	return reservedWords[strings.ToLower(id)]
}

// needsQuotingNonKeyword checks if an identifier needs quoting for non-keyword
// reasons (empty, special characters, etc.)
func needsQuotingNonKeyword(id string) bool {
	if len(id) == 0 {
		return true
	}
	ch := id[0]
	if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_') {
		return true
	}
	for i := 1; i < len(id); i++ {
		ch := id[i]
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') || ch == '_' || ch == '$') {
			return true
		}
	}
	return false
}
