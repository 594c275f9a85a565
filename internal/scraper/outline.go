package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockBoundary
)

// textBlock is one paragraph-level unit of a page in reading order.
// Loose inline content between block elements becomes a paragraph with an empty tag.
type textBlock struct {
	kind blockKind
	tag  string
	text string
	sel  *goquery.Selection
}

var (
	skippedTags = map[string]bool{
		"script": true, "style": true, "noscript": true, "head": true,
		"nav": true, "form": true, "select": true, "iframe": true,
	}
	headingTags = map[string]bool{
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	}
	paragraphTags = map[string]bool{
		"p": true, "blockquote": true, "li": true, "dd": true, "dt": true, "pre": true,
	}
	inlineTags = map[string]bool{
		"a": true, "abbr": true, "b": true, "br": true, "cite": true, "em": true,
		"font": true, "i": true, "img": true, "q": true, "small": true, "span": true,
		"strong": true, "sub": true, "sup": true, "u": true,
	}
)

// outliner flattens a document into text blocks
type outliner struct {
	doc        *goquery.Document
	normalizer *TextNormalizer
	crossRef   cascadia.Selector

	blocks []textBlock
	inline []*html.Node
}

func newOutline(doc *goquery.Document, normalizer *TextNormalizer, crossRef cascadia.Selector) []textBlock {
	o := &outliner{doc: doc, normalizer: normalizer, crossRef: crossRef}
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	for _, n := range root.Nodes {
		o.walk(n)
	}
	o.flush()
	return o.blocks
}

func (o *outliner) walk(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			o.inline = append(o.inline, c)
		case c.Type != html.ElementNode, skippedTags[c.Data]:
			continue
		case o.crossRef.Match(c):
			o.flush()
			o.blocks = append(o.blocks, textBlock{kind: blockBoundary, tag: c.Data})
		case headingTags[c.Data]:
			o.flush()
			sel := o.doc.FindNodes(c)
			o.blocks = append(o.blocks, textBlock{kind: blockHeading, tag: c.Data, text: o.normalizer.Text(sel), sel: sel})
		case paragraphTags[c.Data]:
			o.flush()
			sel := o.doc.FindNodes(c)
			if text := o.normalizer.ParagraphText(sel); text != "" {
				o.blocks = append(o.blocks, textBlock{kind: blockParagraph, tag: c.Data, text: text, sel: sel})
			}
		case inlineTags[c.Data]:
			o.inline = append(o.inline, c)
		default:
			o.flush()
			o.walk(c)
			o.flush()
		}
	}
}

// flush turns the pending inline run into one implicit paragraph
func (o *outliner) flush() {
	if len(o.inline) == 0 {
		return
	}
	nodes := o.inline
	o.inline = nil

	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, n); err != nil {
			return
		}
	}
	text := o.normalizer.CleanPreserveParagraphs(b.String())
	if text == "" {
		return
	}
	o.blocks = append(o.blocks, textBlock{kind: blockParagraph, text: text, sel: o.doc.FindNodes(nodes...)})
}

// emphasisText returns the text of the bold or emphasized elements of a block
func (b textBlock) emphasisText() []string {
	if b.sel == nil {
		return nil
	}
	var out []string
	b.sel.Find("strong, b, em").AddSelection(b.sel.Filter("strong, b, em")).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}
