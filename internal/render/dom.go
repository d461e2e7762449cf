// Package render turns view state into HTML. Pages are built as
// golang.org/x/net/html node trees; backend strings only ever become text
// nodes or attribute values, so they are escaped on output.
package render

import (
	"bytes"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StylesheetPath and LiveScriptPath are the static assets pages link to.
const (
	StylesheetPath = "/ui/static/style.css"
	LiveScriptPath = "/ui/static/live.js"
)

func el(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func add(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c != nil {
			parent.AppendChild(c)
		}
	}
	return parent
}

func textEl(a atom.Atom, s string, attrs ...html.Attribute) *html.Node {
	return add(el(a, attrs...), text(s))
}

func alert(id, msg string) *html.Node {
	if msg == "" {
		return nil
	}
	return textEl(atom.P, msg, attr("id", id), attr("class", "error"), attr("role", "alert"))
}

func document(title string, scripts []string, body ...*html.Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	head := add(el(atom.Head),
		el(atom.Meta, attr("charset", "utf-8")),
		el(atom.Meta, attr("name", "viewport"), attr("content", "width=device-width, initial-scale=1")),
		textEl(atom.Title, title),
		el(atom.Link, attr("rel", "stylesheet"), attr("href", StylesheetPath)),
	)
	for _, src := range scripts {
		head.AppendChild(el(atom.Script, attr("src", src), attr("defer", "")))
	}
	root := add(el(atom.Html, attr("lang", "sv")), head, add(el(atom.Body), body...))
	doc.AppendChild(root)
	return doc
}

// Write serialises n to w.
func Write(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// String serialises nodes back to back.
func String(nodes ...*html.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
