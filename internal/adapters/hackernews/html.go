package hackernews

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bnema/hnglance/internal/domain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	storyRowClass   = "athing"
	commentClass    = "commtext"
	replyBlockClass = "reply"
)

// extractStoryIDs returns the ids of the story rows of a listing page in page order.
func extractStoryIDs(r io.Reader, limit int) ([]domain.ItemID, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var ids []domain.ItemID
	walk(doc, func(n *html.Node) bool {
		if limit > 0 && len(ids) >= limit {
			return false
		}
		if n.Type != html.ElementNode || n.DataAtom != atom.Tr || !hasClass(n, storyRowClass) {
			return true
		}
		raw := attr(n, "id")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && id > 0 {
			ids = append(ids, domain.ItemID(id))
		}
		return false
	})

	return ids, nil
}

func extractComments(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var comments []string
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || !hasClass(n, commentClass) {
			return true
		}
		if text := strings.TrimSpace(collectText(n)); text != "" {
			comments = append(comments, text)
		}
		return false
	})

	return comments, nil
}

// walk visits nodes depth first; returning false skips the node's children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && hasClass(n, replyBlockClass):
			return
		case n.Type == html.ElementNode && n.DataAtom == atom.P:
			sb.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
