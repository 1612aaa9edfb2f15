// Package markdown flattens the markdown chat models like to reply with into
// plain text for the terminal.
package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// ToPlainText drops markdown markup (emphasis, headings, links, code
// fences) and keeps the text. List items keep a "- " or "N. " prefix.
func ToPlainText(md string) string {
	source := []byte(md)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var b strings.Builder
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(source))
				if node.HardLineBreak() {
					b.WriteByte('\n')
				} else if node.SoftLineBreak() {
					b.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				b.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				b.Write(node.Label(source))
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(source))
				}
				b.WriteByte('\n')
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML, *ast.HTMLBlock, *ast.ThematicBreak:
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if entering {
				b.WriteString(itemPrefix(node))
			}
		case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
			if !entering {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(blankLinesRe.ReplaceAllString(b.String(), "\n\n"))
}

func itemPrefix(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "- "
	}
	n := list.Start
	for sib := item.PreviousSibling(); sib != nil; sib = sib.PreviousSibling() {
		n++
	}
	return strconv.Itoa(n) + ". "
}
