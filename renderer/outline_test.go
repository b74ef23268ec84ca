package renderer

import (
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// outline is the structure of a rendered markdown document.
type outline struct {
	headings []string
	tables   [][][]string // rows of cells, header row first
	aligns   [][]east.Alignment
	text     []string // paragraphs
}

// table returns the table following the heading, failing the test if there is none.
func (o outline) table(t *testing.T, i int) [][]string {
	t.Helper()
	if i >= len(o.tables) {
		t.Fatalf("document has %d tables, want at least %d", len(o.tables), i+1)
	}
	return o.tables[i]
}

// cell finds the row whose first cell is key and returns its column col.
func cell(t *testing.T, table [][]string, key string, col int) string {
	t.Helper()
	for _, row := range table {
		if len(row) > col && row[0] == key {
			return row[col]
		}
	}
	t.Fatalf("no row %q in table %v", key, table)
	return ""
}

// nodeText concatenates the text segments below n.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(src))
				if t.SoftLineBreak() {
					b.WriteByte(' ')
				}
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func parse(t *testing.T, doc string) outline {
	t.Helper()
	src := []byte(doc)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(src))

	var o outline
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			o.headings = append(o.headings, nodeText(n, src))
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			o.text = append(o.text, nodeText(n, src))
			return ast.WalkSkipChildren, nil
		case *east.Table:
			var rows [][]string
			for r := n.FirstChild(); r != nil; r = r.NextSibling() {
				var cells []string
				for c := r.FirstChild(); c != nil; c = c.NextSibling() {
					cells = append(cells, nodeText(c, src))
				}
				rows = append(rows, cells)
			}
			o.tables = append(o.tables, rows)
			o.aligns = append(o.aligns, n.Alignments)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("walk markdown: %v", err)
	}
	return o
}
