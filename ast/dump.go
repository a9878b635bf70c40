package ast

import "github.com/alecthomas/repr"

// Dump renders a node as an indented Go-literal-like representation of its
// full tree, for test failure messages and ad-hoc inspection. It is not
// used by the parser or formatter; it exists purely as a debugging aid in
// the style of repr.Println(doc) calls elsewhere in the example corpus.
func Dump(node Node) string {
	return repr.String(node)
}
