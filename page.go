package v2md

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Page is a fetched HTML document ready for querying. The raw body is kept
// for the substring checks some pages are judged by.
type Page struct {
	doc  *goquery.Document
	body string
}

// NewPage parses an HTML string.
func NewPage(body string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, NewParseError("解析HTML字符串失败", err)
	}
	return &Page{doc: doc, body: body}, nil
}

// Body returns the raw document text.
func (p *Page) Body() string {
	return p.body
}

// Contains reports whether the raw document contains substr.
func (p *Page) Contains(substr string) bool {
	return strings.Contains(p.body, substr)
}

// Find selects with a precompiled selector.
func (p *Page) Find(sel cascadia.Selector) *goquery.Selection {
	return p.doc.FindMatcher(sel)
}

// Root returns the document node for XPath queries.
func (p *Page) Root() *html.Node {
	if len(p.doc.Nodes) == 0 {
		return nil
	}
	return p.doc.Nodes[0]
}

// within selects descendants of s with a precompiled selector.
func within(s *goquery.Selection, sel cascadia.Selector) *goquery.Selection {
	return s.FindMatcher(sel)
}

// attr returns an attribute trimmed, or "".
func attr(s *goquery.Selection, name string) string {
	return strings.TrimSpace(s.AttrOr(name, ""))
}

// text returns the trimmed text content.
func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

// innerHTML serializes the children of the first node, unmodified. A missing
// node or a render failure yields "".
func innerHTML(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	content, err := s.First().Html()
	if err != nil {
		return ""
	}
	return content
}

// ownText concatenates the direct text children of the first node, leaving
// out the text of child elements.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.First().Contents().Each(func(_ int, c *goquery.Selection) {
		if len(c.Nodes) > 0 && c.Nodes[0].Type == html.TextNode {
			b.WriteString(c.Nodes[0].Data)
		}
	})
	return b.String()
}

// pageInput reads the pager control; missing attributes fall back to def.
func pageInput(p *Page, def int) (curr, last int) {
	input := p.Find(pageInputSel).First()
	curr, last = def, def
	if v := attr(input, "value"); v != "" {
		curr = ParseInt(v)
	}
	if v := attr(input, "max"); v != "" {
		last = ParseInt(v)
	}
	return curr, last
}

var (
	pageInputSel = cascadia.MustCompile(".page_input")
	onceInputSel = cascadia.MustCompile("input[name='once']")
	problemSel   = cascadia.MustCompile(".problem > ul > li")
)

// ParseOnce reads the hidden once field of the page's form.
func ParseOnce(p *Page) string {
	return attr(p.Find(onceInputSel).First(), "value")
}

// ParseProblems lists the problems a rejected form submission reports.
func ParseProblems(p *Page) []string {
	problems := []string{}
	p.Find(problemSel).Each(func(_ int, li *goquery.Selection) {
		problems = append(problems, text(li))
	})
	return problems
}
