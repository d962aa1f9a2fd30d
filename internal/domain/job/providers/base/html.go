package base

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// ParseHTML parses a full document or a fragment
func ParseHTML(body []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(body))
}

// FindAll returns every element below n, in document order, matching pred
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.ElementNode && pred(cur) {
			out = append(out, cur)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// FindFirst is FindAll stopping at the first match
func FindFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// ByClass matches elements carrying class cls
func ByClass(cls string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return HasClass(n, cls)
	}
}

// ByTag matches elements named tag
func ByTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return strings.EqualFold(n.Data, tag)
	}
}

// ByAttr matches elements whose attribute key equals val
func ByAttr(key, val string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		v, ok := Attr(n, key)
		return ok && v == val
	}
}

// HasClass reports whether cls is one of n's classes
func HasClass(n *html.Node, cls string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == cls {
			return true
		}
	}
	return false
}

// Attr returns the value of attribute key
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// Text returns the whitespace-collapsed text content of n
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		switch cur.Type {
		case html.TextNode:
			b.WriteString(cur.Data)
			b.WriteByte(' ')
		case html.ElementNode:
			switch cur.Data {
			case "script", "style", "noscript":
				return
			case "br", "p", "li", "div":
				b.WriteByte(' ')
			}
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// StripHTML turns an HTML snippet, as found in API descriptions, into text
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := ParseHTML([]byte(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return Text(doc)
}
