package jobposting

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

const maxDescriptionRunes = 8000

// ParseHTML extracts a job title and description from a job page. JSON-LD
// JobPosting data wins over meta tags, which win over visible page text.
func ParseHTML(r io.Reader, pageURL string) (Posting, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Posting{}, err
	}

	p := Posting{URL: pageURL}

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title, desc := fromJSONLD(s.Text())
		if title == "" && desc == "" {
			return true
		}
		p.Title, p.Description = title, desc
		return false
	})

	if p.Title == "" {
		p.Title = firstNonEmpty(
			attr(doc, `meta[property="og:title"]`, "content"),
			text(doc, "h1"),
			text(doc, "title"),
		)
	}
	if p.Description == "" {
		p.Description = firstNonEmpty(
			bodyText(doc),
			attr(doc, `meta[property="og:description"]`, "content"),
			attr(doc, `meta[name="description"]`, "content"),
		)
	}

	p.Title = collapse(p.Title)
	p.Description = truncateRunes(collapse(p.Description), maxDescriptionRunes)
	if p.Title == "" && p.Description == "" {
		return Posting{}, ErrNoContent
	}
	return p, nil
}

func fromJSONLD(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if !gjson.Valid(raw) {
		return "", ""
	}
	res := gjson.Parse(raw)

	var candidates []gjson.Result
	switch {
	case res.IsArray():
		candidates = res.Array()
	case res.Get("@graph").IsArray():
		candidates = res.Get("@graph").Array()
	default:
		candidates = []gjson.Result{res}
	}

	for _, c := range candidates {
		if !strings.EqualFold(c.Get("@type").String(), "JobPosting") {
			continue
		}
		desc := c.Get("description").String()
		if strings.Contains(desc, "<") {
			if d, err := goquery.NewDocumentFromReader(strings.NewReader(desc)); err == nil {
				desc = blockText(d.Selection)
			}
		}
		return c.Get("title").String(), desc
	}
	return "", ""
}

func bodyText(doc *goquery.Document) string {
	root := doc.Find("main, article, [role=main]").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}
	root = root.Clone()
	root.Find("script, style, noscript, nav, header, footer, svg").Remove()
	return blockText(root)
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// blockText is Selection.Text with a line break around block elements, so
// adjacent paragraphs and list items do not run together.
func blockText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

func attr(doc *goquery.Document, selector, name string) string {
	v, _ := doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

func text(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
