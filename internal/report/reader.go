package report

// reader.go turns a raw export blob into a Table of compound-keyed rows.
//
// SAP downloads arrive in legacy encodings with banner and footer lines the
// parser must never see. The cleaning profile says which line indices to
// drop and how many header rows to combine; both differ per report type and
// are configuration, not logic.

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// replacementChar substitutes undecodable byte sequences.
const replacementChar = '�'

// ReadExport decodes, cleans and parses one export according to the profile.
// The only fatal condition is a row set that cannot be reconciled into a
// rectangle; encoding trouble is substituted and counted, never raised.
func ReadExport(data []byte, p Profile) (*Table, error) {
	text, anomalies := decode(data, p.Cleaning.Charset)

	lines := splitLines(text)
	lines = discardLines(lines, p.Cleaning.DiscardLines)

	var (
		table *Table
		err   error
	)
	switch p.Format {
	case FormatHTML:
		table, err = readHTMLTable(lines, p)
	default:
		table, err = readDelimited(lines, p)
	}
	if err != nil {
		return nil, err
	}

	// Some exports end with a grand-total row that must not be classified.
	if p.DropLastDataRow && len(table.Rows) > 0 {
		table.Rows = table.Rows[:len(table.Rows)-1]
	}

	table.EncodingAnomalies = anomalies
	return table, nil
}

// decode converts raw bytes to a UTF-8 string, substituting anything the
// named charset cannot represent. Latin-1 is the default because that is
// what the upstream system emits for .dat downloads.
func decode(data []byte, charset string) (string, int) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "utf-8", "utf8":
		return sanitizeUTF8(data)
	case "windows-1252", "cp1252":
		decoded, _ := charmap.Windows1252.NewDecoder().Bytes(data)
		return countReplacements(decoded)
	default: // latin1 / iso-8859-1
		decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
		return countReplacements(decoded)
	}
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement rune
// and counts how many substitutions were made.
func sanitizeUTF8(data []byte) (string, int) {
	if utf8.Valid(data) {
		return string(data), 0
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	anomalies := 0

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(replacementChar)
			anomalies++
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.String(), anomalies
}

func countReplacements(data []byte) (string, int) {
	s := string(data)
	return s, strings.Count(s, string(replacementChar))
}

// rawLine keeps the original 1-based line number through cleaning so parse
// diagnostics point at the file the user actually uploaded.
type rawLine struct {
	num  int
	text string
}

func splitLines(text string) []rawLine {
	parts := strings.Split(text, "\n")
	// A trailing newline produces one empty phantom line; drop it.
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}

	lines := make([]rawLine, len(parts))
	for i, p := range parts {
		lines[i] = rawLine{num: i + 1, text: strings.TrimSuffix(p, "\r")}
	}
	return lines
}

// discardLines removes the configured line indices. Negative indices count
// from the end; indices past the end of a short file are skipped silently.
func discardLines(lines []rawLine, discard []int) []rawLine {
	if len(discard) == 0 {
		return lines
	}

	drop := make(map[int]bool, len(discard))
	for _, idx := range discard {
		if idx < 0 {
			idx += len(lines)
		}
		if idx >= 0 && idx < len(lines) {
			drop[idx] = true
		}
	}

	kept := make([]rawLine, 0, len(lines))
	for i, l := range lines {
		if !drop[i] {
			kept = append(kept, l)
		}
	}
	return kept
}

// readDelimited parses a cleaned delimited export. SAP .dat downloads are
// plain separator-joined text without quoting, so a per-line split is exact
// and preserves original line numbers.
func readDelimited(lines []rawLine, p Profile) (*Table, error) {
	delim := p.Cleaning.Delimiter
	if delim == "" {
		delim = "\t"
	}

	type record struct {
		line  int
		cells []string
	}
	records := make([]record, 0, len(lines))
	for _, l := range lines {
		cells := strings.Split(l.text, delim)
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		records = append(records, record{line: l.num, cells: cells})
	}

	headerRows := p.Cleaning.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}
	if len(records) < headerRows {
		return nil, newParseError(p.Key, 0, "expected %d header rows, file has %d lines after cleaning", headerRows, len(records))
	}

	headers := make([][]string, headerRows)
	headerWidth := 0
	for i := 0; i < headerRows; i++ {
		headers[i] = records[i].cells
		if len(headers[i]) > headerWidth {
			headerWidth = len(headers[i])
		}
	}

	rows := make([]RawRow, 0, len(records)-headerRows)
	for _, rec := range records[headerRows:] {
		if isEmptyCells(rec.cells) {
			continue
		}
		rows = append(rows, RawRow{Line: rec.line, Cells: rec.cells})
	}

	return buildTable(p, headers, headerWidth, rows)
}

// buildTable reconciles headers and data rows into a rectangle. The modal
// data-row width is the shape; when fewer than half the rows agree with it,
// the cleaning profile could not make the file rectangular and the whole
// export is rejected.
func buildTable(p Profile, headers [][]string, headerWidth int, rows []RawRow) (*Table, error) {
	width := headerWidth
	if len(rows) > 0 {
		modal, matching, offender := modalWidth(rows)
		if matching*2 < len(rows) {
			return nil, newParseError(p.Key, offender,
				"inconsistent column counts: only %d of %d rows have %d columns", matching, len(rows), modal)
		}
		if modal > width {
			width = modal
		}
	}

	for i := range rows {
		rows[i].Cells = fitWidth(rows[i].Cells, width)
	}

	return &Table{
		Columns: combineHeaders(headers, width),
		Rows:    rows,
	}, nil
}

// modalWidth returns the most common row width, how many rows have it, and
// the line number of the first row that does not.
func modalWidth(rows []RawRow) (modal, matching, offender int) {
	counts := make(map[int]int)
	for _, r := range rows {
		counts[len(r.Cells)]++
	}
	for w, n := range counts {
		if n > matching || (n == matching && w > modal) {
			modal, matching = w, n
		}
	}
	for _, r := range rows {
		if len(r.Cells) != modal {
			offender = r.Line
			break
		}
	}
	return modal, matching, offender
}

func fitWidth(cells []string, width int) []string {
	if len(cells) == width {
		return cells
	}
	if len(cells) > width {
		return cells[:width]
	}
	padded := make([]string, width)
	copy(padded, cells)
	return padded
}

// combineHeaders builds one compound key per column by joining the non-empty
// header fragments top-down. Group labels on non-final header rows span
// rightward until the next label appears, the way SAP prints a group heading
// only above its first column.
func combineHeaders(headers [][]string, width int) []ColumnKey {
	keys := make([]ColumnKey, width)
	last := len(headers) - 1

	for r, row := range headers {
		carry := ""
		for c := 0; c < width; c++ {
			frag := ""
			if c < len(row) {
				frag = strings.TrimSpace(row[c])
			}
			if r < last {
				if frag != "" {
					carry = frag
				} else {
					frag = carry
				}
			}
			if frag != "" {
				keys[c] = append(keys[c], frag)
			}
		}
	}

	for c := range keys {
		if len(keys[c]) == 0 {
			keys[c] = ColumnKey{fmt.Sprintf("Column_%d", c+1)}
		}
	}
	return keys
}

func isEmptyCells(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
