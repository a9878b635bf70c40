package sqlast

import (
	"strings"
	"testing"

	"github.com/freeeve/sqlast/ast"
)

func TestParseAndFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"simple select", "SELECT * FROM users"},
		{"select with where", "SELECT id, name FROM users WHERE status = 'active'"},
		{"select with join", "SELECT a.id, b.name FROM a JOIN b ON a.id = b.a_id"},
		{"select with multiple joins", "SELECT * FROM a LEFT JOIN b ON a.id = b.a_id RIGHT JOIN c ON b.id = c.b_id"},
		{"select with subquery", "SELECT * FROM users WHERE id IN (SELECT user_id FROM orders)"},
		{"insert", "INSERT INTO users (id, name) VALUES (1, 'test')"},
		{"update", "UPDATE users SET name = 'new' WHERE id = 1"},
		{"delete", "DELETE FROM users WHERE id = 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}

			formatted := String(stmt)
			if formatted == "" {
				t.Fatal("Formatted output is empty")
			}

			stmt2, err := Parse(formatted)
			if err != nil {
				t.Fatalf("Re-parse error: %v\nFormatted: %s", err, formatted)
			}

			formatted2 := String(stmt2)
			if formatted != formatted2 {
				t.Errorf("Round-trip mismatch:\nFirst:  %s\nSecond: %s", formatted, formatted2)
			}
		})
	}
}

func TestWalkCollectsColumns(t *testing.T) {
	stmt, err := Parse("SELECT a.id, b.name FROM users a JOIN orders b ON a.id = b.user_id WHERE a.status = 'active'")
	if err != nil {
		t.Fatal(err)
	}

	var columns []string
	Walk(stmt, func(node ast.Node) bool {
		if col, ok := node.(*ast.ColumnReference); ok {
			columns = append(columns, col.Name)
		}
		return true
	})

	expected := []string{"id", "name", "id", "user_id", "status"}
	if len(columns) != len(expected) {
		t.Errorf("Expected %d columns, got %d: %v", len(expected), len(columns), columns)
	}
}

func TestRewriteQualifiesColumns(t *testing.T) {
	stmt, err := Parse("SELECT id, name FROM users WHERE status = 'active'")
	if err != nil {
		t.Fatal(err)
	}

	rewritten := Rewrite(stmt, func(node ast.Node) ast.Node {
		if col, ok := node.(*ast.ColumnReference); ok && len(col.Namespaces) == 0 {
			return &ast.ColumnReference{Span: col.Span, Namespaces: []string{"u"}, Name: col.Name}
		}
		return node
	})

	formatted := String(rewritten)
	if !strings.Contains(formatted, "u.id") || !strings.Contains(formatted, "u.name") {
		t.Errorf("expected qualified columns, got %s", formatted)
	}
}

func extractTables(stmt ast.Statement) []string {
	var tables []string
	seen := make(map[string]bool)
	Walk(stmt, func(node ast.Node) bool {
		if _, ok := node.(*ast.ColumnReference); ok {
			return false
		}
		if tn, ok := node.(*ast.TableSource); ok {
			if !seen[tn.Name] {
				tables = append(tables, tn.Name)
				seen[tn.Name] = true
			}
		}
		return true
	})
	return tables
}

func TestExtractTables(t *testing.T) {
	stmt, err := Parse("SELECT * FROM users u JOIN orders o ON u.id = o.user_id WHERE EXISTS (SELECT 1 FROM items)")
	if err != nil {
		t.Fatal(err)
	}

	tables := extractTables(stmt)
	if len(tables) != 3 {
		t.Errorf("Expected 3 tables, got %d: %v", len(tables), tables)
	}
}

func TestComplexQueries(t *testing.T) {
	queries := []string{
		`WITH active AS (SELECT id FROM users WHERE status = 'active') SELECT * FROM active`,
		`SELECT id, COUNT(*) as cnt FROM orders GROUP BY id HAVING COUNT(*) > 5`,
		`SELECT ROW_NUMBER() OVER (PARTITION BY type ORDER BY created_at DESC) FROM items`,
		`SELECT CASE WHEN status = 1 THEN 'active' ELSE 'inactive' END FROM users`,
		`SELECT * FROM users WHERE name LIKE '%test%' ESCAPE '\'`,
		`SELECT * FROM users WHERE created_at BETWEEN '2024-01-01' AND '2024-12-31'`,
		`SELECT COALESCE(name, 'unknown') FROM users`,
		`SELECT CAST(price AS INT) FROM products`,
		`SELECT a || ' ' || b FROM names`,
		`SELECT * FROM users FOR UPDATE`,
		`SELECT * FROM users LIMIT 10 OFFSET 20`,
	}

	for _, q := range queries {
		name := q
		if len(name) > 30 {
			name = name[:30]
		}
		t.Run(name, func(t *testing.T) {
			stmt, err := Parse(q)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if String(stmt) == "" {
				t.Error("Empty formatted output")
			}
		})
	}
}

func TestDDL(t *testing.T) {
	queries := []string{
		`CREATE TABLE users (id INT PRIMARY KEY, name VARCHAR(255) NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS items (id INT, price DECIMAL(10,2))`,
		`ALTER TABLE users ADD COLUMN email VARCHAR(255)`,
		`ALTER TABLE users DROP COLUMN IF EXISTS temp`,
		`DROP TABLE IF EXISTS old_users CASCADE`,
		`CREATE UNIQUE INDEX idx_email ON users (email)`,
		`DROP INDEX IF EXISTS idx_old`,
		`ANALYZE users`,
		`EXPLAIN SELECT * FROM users`,
		`CREATE SEQUENCE seq_orders START WITH 1 INCREMENT BY 1`,
		`DROP SEQUENCE IF EXISTS seq_orders`,
		`CLUSTER users USING idx_email`,
		`REINDEX TABLE users`,
	}

	for _, q := range queries {
		name := q
		if len(name) > 30 {
			name = name[:30]
		}
		t.Run(name, func(t *testing.T) {
			stmt, err := Parse(q)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if String(stmt) == "" {
				t.Error("Empty formatted output")
			}
		})
	}
}

func TestPostgresFeatures(t *testing.T) {
	queries := []struct {
		name  string
		query string
	}{
		{"cast operator", "SELECT a::int FROM t"},
		{"returning", "INSERT INTO users (name) VALUES ('test') RETURNING id"},
		{"on conflict", "INSERT INTO users (id, name) VALUES (1, 'test') ON CONFLICT (id) DO NOTHING"},
		{"array literal", "SELECT ARRAY[1, 2, 3]"},
		{"cte", "WITH t AS (SELECT 1) SELECT * FROM t"},
		{"window", "SELECT SUM(x) OVER (PARTITION BY y) FROM t"},
		{"exists", "SELECT * FROM t WHERE EXISTS (SELECT 1 FROM u)"},
	}

	for _, tc := range queries {
		t.Run(tc.name, func(t *testing.T) {
			stmt, err := Parse(tc.query)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if String(stmt) == "" {
				t.Error("Empty formatted output")
			}
		})
	}
}

func TestMultiLevelIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCols int
	}{
		{"simple column", "SELECT a FROM t", 1},
		{"two-level column", "SELECT t.a FROM t", 1},
		{"three-level column", "SELECT schema.table.column FROM schema.table", 1},
		{"four-level column", "SELECT catalog.schema.table.column FROM catalog.schema.table", 1},
		{"mixed levels", "SELECT a, t.b, s.t.c, cat.s.t.d FROM t", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}

			sel, ok := stmt.(*ast.SimpleSelect)
			if !ok {
				t.Fatalf("Expected SimpleSelect, got %T", stmt)
			}
			if len(sel.Select.Items) != tt.wantCols {
				t.Errorf("Expected %d columns, got %d", tt.wantCols, len(sel.Select.Items))
			}

			formatted := String(stmt)
			stmt2, err := Parse(formatted)
			if err != nil {
				t.Fatalf("Re-parse error: %v\nFormatted: %s", err, formatted)
			}
			formatted2 := String(stmt2)
			if formatted != formatted2 {
				t.Errorf("Round-trip mismatch:\nFirst:  %s\nSecond: %s", formatted, formatted2)
			}
		})
	}
}

func TestMultiLevelIdentifierParts(t *testing.T) {
	stmt, err := Parse("SELECT catalog.schema.table.column FROM db")
	if err != nil {
		t.Fatal(err)
	}

	sel := stmt.(*ast.SimpleSelect)
	col := sel.Select.Items[0].Expr.(*ast.ColumnReference)

	if len(col.Namespaces) != 3 {
		t.Fatalf("Expected 3 namespace parts, got %d: %v", len(col.Namespaces), col.Namespaces)
	}
	if col.Name != "column" {
		t.Errorf("Name = %q, want %q", col.Name, "column")
	}
	if col.Namespaces[2] != "table" || col.Namespaces[1] != "schema" || col.Namespaces[0] != "catalog" {
		t.Errorf("Namespaces = %v", col.Namespaces)
	}
}

func TestMultiLevelTableName(t *testing.T) {
	stmt, err := Parse("SELECT * FROM catalog.schema.table")
	if err != nil {
		t.Fatal(err)
	}

	sel := stmt.(*ast.SimpleSelect)
	ts, ok := sel.From.Source.Datasource.(*ast.TableSource)
	if !ok {
		t.Fatalf("unexpected From datasource type: %T", sel.From.Source.Datasource)
	}

	if len(ts.Namespaces) != 2 {
		t.Fatalf("Expected 2 namespace parts, got %d: %v", len(ts.Namespaces), ts.Namespaces)
	}
	if ts.Name != "table" {
		t.Errorf("Name = %q, want %q", ts.Name, "table")
	}
	if ts.Namespaces[0] != "catalog" || ts.Namespaces[1] != "schema" {
		t.Errorf("Namespaces = %v", ts.Namespaces)
	}
}

func BenchmarkParseFormat(b *testing.B) {
	query := `SELECT u.id, u.name, COUNT(o.id) as order_count
FROM users u
LEFT JOIN orders o ON u.id = o.user_id
WHERE u.status = 'active'
  AND u.created_at BETWEEN '2024-01-01' AND '2024-12-31'
GROUP BY u.id, u.name
HAVING COUNT(o.id) > 5
ORDER BY order_count DESC
LIMIT 100`

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		stmt, _ := Parse(query)
		_ = String(stmt)
	}
}

func BenchmarkWalk(b *testing.B) {
	stmt, _ := Parse(`SELECT u.id, u.name, COUNT(o.id) as order_count
FROM users u
LEFT JOIN orders o ON u.id = o.user_id
WHERE u.status = 'active'
GROUP BY u.id, u.name
ORDER BY order_count DESC`)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		Walk(stmt, func(node ast.Node) bool {
			return true
		})
	}
}
