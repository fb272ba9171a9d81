package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// stripRemoteResources removes references the print tab could never load.
// Images with a network or file source are replaced by their alt text, and
// links keep their text but lose the href.
func stripRemoteResources(fragment string) (string, error) {
	if !strings.Contains(fragment, "<img") && !strings.Contains(fragment, "<a ") {
		return fragment, nil
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", err
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	stripNode(container)

	var buf strings.Builder
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func stripNode(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			switch c.DataAtom {
			case atom.Img:
				if isExternal(attr(c, "src")) {
					replaceWithText(c, attr(c, "alt"))
				}
			case atom.A:
				removeAttr(c, "href")
			}
		}
		stripNode(c)
		c = next
	}
}

// isExternal reports whether src points outside the document. Data URIs
// are the only sources that render without a fetch.
func isExternal(src string) bool {
	return !strings.HasPrefix(strings.ToLower(strings.TrimSpace(src)), "data:")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

func replaceWithText(n *html.Node, text string) {
	parent := n.Parent
	if parent == nil {
		return
	}
	if text != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n)
	}
	parent.RemoveChild(n)
}
