package report

// htmlreader.go extracts the first <table> from an HTML export. The upstream
// system wraps these exports with banner lines that are not valid markup, so
// the discard indices run against the raw file lines before parsing, same as
// the original cleaning step.

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// readHTMLTable parses the cleaned HTML and converts the first table into a
// Table using the same header combination and rectangle rules as delimited
// exports. Cell positions inside the markup are not meaningful to users, so
// row diagnostics carry the table row ordinal instead of a file line.
func readHTMLTable(lines []rawLine, p Profile) (*Table, error) {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.text)
		b.WriteByte('\n')
	}

	doc, err := html.Parse(strings.NewReader(b.String()))
	if err != nil {
		return nil, newParseError(p.Key, 0, "invalid HTML: %v", err)
	}

	table := findElement(doc, "table")
	if table == nil {
		return nil, newParseError(p.Key, 0, "no <table> found in HTML export")
	}

	var records [][]string
	collectRows(table, &records)
	if len(records) == 0 {
		return nil, newParseError(p.Key, 0, "HTML table has no rows")
	}

	headerRows := p.Cleaning.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}
	if len(records) < headerRows {
		return nil, newParseError(p.Key, 0, "expected %d header rows, table has %d rows", headerRows, len(records))
	}

	headers := records[:headerRows]
	headerWidth := 0
	for _, h := range headers {
		if len(h) > headerWidth {
			headerWidth = len(h)
		}
	}

	rows := make([]RawRow, 0, len(records)-headerRows)
	for i, cells := range records[headerRows:] {
		if isEmptyCells(cells) {
			continue
		}
		rows = append(rows, RawRow{Line: headerRows + i + 1, Cells: cells})
	}

	return buildTable(p, headers, headerWidth, rows)
}

// findElement walks the node tree depth-first for the first element with the
// given tag name.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// collectRows appends one record per <tr>, expanding colspan so group header
// labels repeat across the columns they span.
func collectRows(n *html.Node, records *[][]string) {
	if n.Type == html.ElementNode && n.Data == "tr" {
		var cells []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
				continue
			}
			text := strings.TrimSpace(collapseSpace(textContent(c)))
			for i := 0; i < colspan(c); i++ {
				cells = append(cells, text)
			}
		}
		*records = append(*records, cells)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectRows(c, records)
	}
}

func colspan(n *html.Node) int {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, "colspan") {
			if v, err := strconv.Atoi(strings.TrimSpace(a.Val)); err == nil && v > 1 {
				return v
			}
		}
	}
	return 1
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
