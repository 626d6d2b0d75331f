package application

import (
	"bytes"
	"fmt"
	"regexp"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/frankhjung/blogspot-publishing/publish/domain"
)

// documentShellRegex detects markup that carries a full document shell. The
// parser alone cannot be used for this because it synthesizes <html> and
// <body> elements around any fragment it is given.
var documentShellRegex = regexp.MustCompile(`(?i)<\s*(!doctype|html|head|body)[\s>]`)

// NormalizeHTML reduces a full HTML document to the fragment the destination
// template can host: every internal <style> block outside the body, in
// document order, followed by the inner HTML of <body>. The surrounding
// shell is discarded because the blog template supplies its own. Input that
// is already a fragment is returned unchanged.
func NormalizeHTML(input []byte) ([]byte, error) {
	if !documentShellRegex.Match(input) {
		return input, nil
	}

	doc, err := html.Parse(bytes.NewReader(input))
	if err != nil {
		return nil, &domain.RenderError{Source: "rendered HTML", Err: fmt.Errorf("parse document: %w", err)}
	}

	body := findElement(doc, atom.Body)
	if body == nil {
		return input, nil
	}

	var buf bytes.Buffer
	for _, style := range collectStyles(doc, body) {
		if err := html.Render(&buf, style); err != nil {
			return nil, &domain.RenderError{Source: "rendered HTML", Err: err}
		}
		buf.WriteByte('\n')
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return nil, &domain.RenderError{Source: "rendered HTML", Err: err}
		}
	}

	return bytes.TrimSpace(buf.Bytes()), nil
}

// findElement returns the first element with the given tag, depth first.
func findElement(n *html.Node, tag atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// collectStyles gathers every <style> element that is not inside body. Style
// elements inside body stay where they are and render with the body content.
func collectStyles(n *html.Node, body *html.Node) []*html.Node {
	if n == body {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == atom.Style {
		return []*html.Node{n}
	}
	var styles []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		styles = append(styles, collectStyles(c, body)...)
	}
	return styles
}
