package upstream

import (
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// A small selector toolkit over x/net/html. The host pages are matched by
// tag, class and id, which is all the extractors need.

type matcher func(*html.Node) bool

func parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

func isElement(n *html.Node) bool { return n != nil && n.Type == html.ElementNode }

func tag(a atom.Atom) matcher {
	return func(n *html.Node) bool { return isElement(n) && n.DataAtom == a }
}

func classed(a atom.Atom, classes ...string) matcher {
	return func(n *html.Node) bool {
		if !isElement(n) || (a != 0 && n.DataAtom != a) {
			return false
		}
		for _, c := range classes {
			if !hasClass(n, c) {
				return false
			}
		}
		return true
	}
}

func withID(id string) matcher {
	return func(n *html.Node) bool { return isElement(n) && attr(n, "id") == id }
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

// find returns the first descendant of n matching m, in document order.
func find(n *html.Node, m matcher) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m(c) {
			return c
		}
		if f := find(c, m); f != nil {
			return f
		}
	}
	return nil
}

// findAll returns every descendant of n matching m, in document order.
func findAll(n *html.Node, m matcher) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if m(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// children returns the element children of n matching m.
func children(n *html.Node, m matcher) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m(c) {
			out = append(out, c)
		}
	}
	return out
}

// closest walks up from n to the first ancestor matching m.
func closest(n *html.Node, m matcher) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if m(p) {
			return p
		}
	}
	return nil
}

// text is the trimmed text content of n.
func text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		if p.Type == html.TextNode {
			b.WriteString(p.Data)
		}
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
