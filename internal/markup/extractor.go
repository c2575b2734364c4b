package markup

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
)

// ExtractBlocks parses one psalm page and returns its normalized stanza blocks
// in document order. A page without a block starting with "1" yields nil.
func ExtractBlocks(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryIngestion, "failed to parse HTML").Fatal().Build()
	}

	start := findRunStart(doc)
	if start == nil {
		return nil, nil
	}

	blocks := []string{Normalize(textContent(start))}
	for sib := start.NextSibling; sib != nil; sib = sib.NextSibling {
		if isPre(sib) {
			blocks = append(blocks, Normalize(textContent(sib)))
		}
	}
	return blocks, nil
}

// findRunStart returns the first <pre> in document order whose trimmed text starts with "1".
func findRunStart(n *html.Node) *html.Node {
	if isPre(n) && startsRun(textContent(n)) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findRunStart(c); found != nil {
			return found
		}
	}
	return nil
}

func startsRun(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "1")
}

func isPre(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Pre
}

// textContent concatenates every text node below n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Br {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
