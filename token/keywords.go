package token

// Category classifies which reader owns a keyword phrase once the trie has
// matched it. The same trie walk serves every word-based reader; readers
// accept a match only when its category is theirs, and otherwise decline
// (leaving the position untouched) so the next reader in the manager's
// fixed order gets a turn.
type Category int

const (
	CategoryCommand Category = iota
	CategoryOperator
	CategoryType
)

// phrase is one entry of the keyword vocabulary: its words (already split on
// spaces) and the category the matched token should carry.
type phrase struct {
	words    []string
	category Category
}

// commandPhrases covers clause-introducing and DDL keywords, including the
// multi-word forms that must be recognized as a single Command token so
// downstream clause parsers never have to re-split them.
var commandPhrases = []string{
	"select", "from", "where", "group by", "having", "order by", "limit",
	"offset", "fetch", "window", "with", "with recursive", "values",
	"distinct", "distinct on", "union", "union all", "intersect",
	"intersect all", "except", "except all",
	"insert into", "update", "delete from", "set", "returning", "default values",
	"on conflict", "do nothing", "do update", "merge into", "merge",
	"when matched", "when not matched", "using",
	"create table", "create temporary table", "create temp table",
	"create table if not exists", "create unique index", "create index",
	"drop table", "drop table if exists", "drop index", "drop index if exists",
	"drop schema", "drop schema if exists", "drop constraint",
	"alter table", "add column", "drop column", "rename to", "rename column",
	"if exists", "if not exists", "not materialized", "materialized",
	"cascade", "restrict", "with ordinality", "within group",
	"filter", "over", "partition by", "nulls first", "nulls last",
	"for update", "for share", "for no key update", "for key share",
	"no key update", "key share", "analyze", "explain", "explain analyze",
	"create sequence", "alter sequence", "drop sequence", "cluster", "reindex",
	"asc", "desc", "of", "delete", "insert",
	"as", "lateral", "join", "cross join", "inner join", "left join", "right join",
	"full join", "left outer join", "right outer join", "full outer join",
	"natural join", "natural inner join", "natural left join", "natural right join",
	"on", "check", "primary key", "foreign key", "references",
	"not null", "unique", "case", "when", "then", "else", "end", "cast",
	"extract", "substring", "overlay", "trim", "placing", "both", "leading",
	"trailing", "array", "fetch first", "fetch next", "with ties", "row",
	"rows", "only", "nowait", "skip locked",
}

// operatorPhrases are the word-form operators, including the multi-word
// variants that the operator reader must resolve via the same trie.
var operatorPhrases = []string{
	"and", "or", "xor", "not", "is", "is not", "is null", "is not null",
	"isnull", "notnull", "is distinct from", "is not distinct from",
	"in", "not in", "like", "not like", "ilike", "not ilike",
	"similar to", "not similar to", "between", "not between", "any", "all",
	"some", "escape", "collate",
}

// typePhrases are multi-word type names; these must be recognized ahead of
// the function reader so "timestamp with time zone" and "double precision"
// do not get mistaken for a call.
var typePhrases = []string{
	"timestamp with time zone", "timestamp without time zone",
	"time with time zone", "time without time zone",
	"double precision", "character varying", "bit varying",
	"character large object", "national character", "national character varying",
}

var allPhrases []phrase

func init() {
	for _, s := range commandPhrases {
		allPhrases = append(allPhrases, phrase{words: splitWords(s), category: CategoryCommand})
	}
	for _, s := range operatorPhrases {
		allPhrases = append(allPhrases, phrase{words: splitWords(s), category: CategoryOperator})
	}
	for _, s := range typePhrases {
		allPhrases = append(allPhrases, phrase{words: splitWords(s), category: CategoryType})
	}
}

func splitWords(s string) []string {
	var words []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if i > start {
				words = append(words, s[start:i])
			}
			start = i + 1
		}
	}
	return words
}

// singleWordTypes are type names that never take a multi-word phrase, used
// by the type reader to recognize "numeric(10,2)"-style names before the
// function reader would otherwise claim them as a call.
var singleWordTypes = map[string]bool{
	"int": true, "integer": true, "smallint": true, "bigint": true,
	"tinyint": true, "mediumint": true, "real": true, "double": true,
	"float": true, "decimal": true, "numeric": true, "char": true,
	"varchar": true, "text": true, "blob": true, "binary": true,
	"varbinary": true, "date": true, "time": true, "datetime": true,
	"timestamp": true, "timestamptz": true, "timetz": true, "year": true,
	"boolean": true, "bool": true, "json": true, "jsonb": true, "uuid": true,
	"serial": true, "bigserial": true, "smallserial": true, "bit": true,
	"money": true, "xml": true, "interval": true, "inet": true, "cidr": true,
	"macaddr": true, "point": true, "polygon": true, "box": true, "circle": true,
	"line": true, "lseg": true, "path": true,
}

// aggregateFunctionsWithInternalOrderBy lists the functions for which a
// trailing "ORDER BY …" before the closing paren belongs to the call itself
// rather than to an enclosing clause.
var aggregateFunctionsWithInternalOrderBy = map[string]bool{
	"string_agg": true, "array_agg": true, "json_agg": true,
	"jsonb_agg": true, "json_object_agg": true, "jsonb_object_agg": true,
	"xmlagg": true,
}

// IsAggregateWithInternalOrderBy reports whether fn (already lower-cased)
// recognizes an internal ORDER BY before its closing parenthesis.
func IsAggregateWithInternalOrderBy(fn string) bool {
	return aggregateFunctionsWithInternalOrderBy[lower(fn)]
}

// IsSingleWordType reports whether word names a type on its own.
func IsSingleWordType(word string) bool {
	return singleWordTypes[lower(word)]
}

func lower(s string) string {
	if isLowercase(s) {
		return s
	}
	buf := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 32
		}
		buf[i] = c
	}
	return string(buf)
}

func isLowercase(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			return false
		}
	}
	return true
}
