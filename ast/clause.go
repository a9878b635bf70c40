package ast

// SelectClause is the SELECT keyword plus its item list, DISTINCT
// qualifier, and any dialect hints carried through as raw text.
type SelectClause struct {
	Span
	Commented
	Items      []SelectItem
	Distinct   bool
	DistinctOn []Value
	Hints      []string
}

func (*SelectClause) clauseNode() {}

// SelectItem is one projected expression, with an optional alias.
type SelectItem struct {
	Commented
	Expr  Value
	Alias string
	Star  bool // a bare "*" or "t.*" item
}

// WhereClause wraps the WHERE condition.
type WhereClause struct {
	Span
	Commented
	Condition Value
}

func (*WhereClause) clauseNode() {}

// GroupByClause is the GROUP BY expression list.
type GroupByClause struct {
	Span
	Commented
	Items []Value
}

func (*GroupByClause) clauseNode() {}

// HavingClause wraps the HAVING condition.
type HavingClause struct {
	Span
	Commented
	Condition Value
}

func (*HavingClause) clauseNode() {}

// WindowDef is one named "name AS (spec)" entry of a WINDOW clause.
type WindowDef struct {
	Commented
	Name string
	Spec *WindowSpec
}

// WindowClause is the WINDOW w AS (...), ... clause.
type WindowClause struct {
	Span
	Commented
	Defs []*WindowDef
}

func (*WindowClause) clauseNode() {}

// OrderByClause is the ORDER BY item list.
type OrderByClause struct {
	Span
	Commented
	Items []*OrderByItem
}

func (*OrderByClause) clauseNode() {}

// LimitClause wraps the LIMIT row count (nil means LIMIT ALL).
type LimitClause struct {
	Span
	Commented
	Count Value
}

func (*LimitClause) clauseNode() {}

// OffsetClause wraps the OFFSET row count.
type OffsetClause struct {
	Span
	Commented
	Count Value
}

func (*OffsetClause) clauseNode() {}

// FetchClause is "FETCH {FIRST|NEXT} n {ROW|ROWS} {ONLY|WITH TIES}".
type FetchClause struct {
	Span
	Commented
	Count    Value
	WithTies bool
}

func (*FetchClause) clauseNode() {}

// LockMode enumerates the FOR-clause locking strengths.
type LockMode int

const (
	LockUpdate LockMode = iota
	LockShare
	LockNoKeyUpdate
	LockKeyShare
)

// ForClause is the row-locking clause ("FOR UPDATE", "FOR SHARE", …).
type ForClause struct {
	Span
	Commented
	Mode    LockMode
	Of      []string
	NoWait  bool
	SkipLocked bool
}

func (*ForClause) clauseNode() {}

// MaterializedHint represents the tri-state MATERIALIZED annotation on a
// CTE: the source may say nothing, MATERIALIZED, or NOT MATERIALIZED.
type MaterializedHint int

const (
	MaterializedUnspecified MaterializedHint = iota
	MaterializedTrue
	MaterializedFalse
)

// CommonTable is one "alias [(cols)] AS [[NOT] MATERIALIZED] (query)" entry
// of a WITH clause.
type CommonTable struct {
	Commented
	Alias         string
	ColumnAliases []string
	Materialized  MaterializedHint
	Query         Statement
}

// WithClause is the WITH [RECURSIVE] cte, … prefix of a statement.
type WithClause struct {
	Span
	Commented
	Recursive bool
	Tables    []*CommonTable
}

func (*WithClause) clauseNode() {}

// ReturningClause is the RETURNING projection list.
type ReturningClause struct {
	Span
	Commented
	Items []SelectItem
}

func (*ReturningClause) clauseNode() {}

// UsingClause is DELETE's "USING source, …". A JOIN's "USING (cols)" is
// not a UsingClause; its column names are kept on JoinClause.Using.
type UsingClause struct {
	Span
	Commented
	Sources []*SourceExpression
}

func (*UsingClause) clauseNode() {}

// Assignment is one "col = expr" or "(col, …) = (expr, …)" entry of a SET
// clause.
type Assignment struct {
	Commented
	Columns []string // len 1 for a plain "col = expr"
	Value   Value     // RHS; a TupleExpression/InlineQuery for multi-column form
}

// SetClause is UPDATE's SET assignment list.
type SetClause struct {
	Span
	Commented
	Assignments []*Assignment
}

func (*SetClause) clauseNode() {}

// InsertClause is the "INSERT INTO target [(cols)]" head of an InsertQuery.
// Columns is distinguished from a nil (absent) list by being non-nil but
// possibly empty.
type InsertClause struct {
	Span
	Commented
	Target  *TableSource
	Columns []string
}

func (*InsertClause) clauseNode() {}

// UpdateClause is the "UPDATE target" head of an UpdateQuery.
type UpdateClause struct {
	Span
	Commented
	Target Source
}

func (*UpdateClause) clauseNode() {}

// DeleteClause is the "DELETE FROM target" head of a DeleteQuery.
type DeleteClause struct {
	Span
	Commented
	Target *SourceExpression
}

func (*DeleteClause) clauseNode() {}
