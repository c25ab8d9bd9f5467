package assets

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InjectHead parses an HTML document and appends <link> and <script> tags
// for the given styles and scripts to its <head>. The html package always
// materializes a head element for text/html input, so documents without an
// explicit head still receive the tags.
func InjectHead(doc []byte, styles, scripts []Record) ([]byte, error) {
	if len(styles) == 0 && len(scripts) == 0 {
		return doc, nil
	}

	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, err
	}

	head := findElement(root, atom.Head)
	if head != nil {
		for _, style := range styles {
			head.AppendChild(&html.Node{
				Type:     html.ElementNode,
				Data:     "link",
				DataAtom: atom.Link,
				Attr: []html.Attribute{
					{Key: "rel", Val: "stylesheet"},
					{Key: "href", Val: style.URL()},
				},
			})
		}
		for _, script := range scripts {
			head.AppendChild(&html.Node{
				Type:     html.ElementNode,
				Data:     "script",
				DataAtom: atom.Script,
				Attr: []html.Attribute{
					{Key: "src", Val: script.URL()},
					{Key: "type", Val: "module"},
				},
			})
		}
	}

	var buf strings.Builder
	if err := html.Render(&buf, root); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
