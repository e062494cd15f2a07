package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

var ErrMissingAnchor = errors.New("missing structural anchor")

// MissingAnchorError means the node an extraction starts from is not in the
// markup: the id is wrong or the site layout changed.
type MissingAnchorError struct {
	Anchor string
}

func (e *MissingAnchorError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingAnchor, e.Anchor)
}

func (e *MissingAnchorError) Is(target error) bool {
	return target == ErrMissingAnchor
}

// Parse loads rendered markup into a node tree.
func Parse(markup string) (*html.Node, error) {
	doc, err := htmlquery.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Anchor returns the first node matching expr or a MissingAnchorError.
func Anchor(top *html.Node, expr string) (*html.Node, error) {
	n, err := htmlquery.Query(top, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	if n == nil {
		return nil, &MissingAnchorError{Anchor: expr}
	}
	return n, nil
}

// One returns the first node matching expr, or nil.
func One(top *html.Node, expr string) *html.Node {
	if top == nil {
		return nil
	}
	n, err := htmlquery.Query(top, expr)
	if err != nil {
		return nil
	}
	return n
}

// All returns every node matching expr in document order.
func All(top *html.Node, expr string) []*html.Node {
	if top == nil {
		return nil
	}
	nodes, err := htmlquery.QueryAll(top, expr)
	if err != nil {
		return nil
	}
	return nodes
}

// Text is the trimmed inner text of the first match, "" when absent.
func Text(top *html.Node, expr string) string {
	return NodeText(One(top, expr))
}

func NodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(n))
}

// Attr is the trimmed attribute value of the first match, "" when absent.
func Attr(top *html.Node, expr, name string) string {
	return NodeAttr(One(top, expr), name)
}

func NodeAttr(n *html.Node, name string) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.SelectAttr(n, name))
}

// Texts is the trimmed inner text of every match, blanks removed.
func Texts(top *html.Node, expr string) []string {
	nodes := All(top, expr)
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if t := NodeText(n); t != "" {
			out = append(out, t)
		}
	}
	return out
}
