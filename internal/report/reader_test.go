package report

import (
	"errors"
	"strings"
	"testing"
)

func datProfile() Profile {
	return Profile{
		Key:          "budget_report",
		Format:       FormatDAT,
		ObjectColumn: "Object",
		Cleaning: CleaningProfile{
			DiscardLines: []int{0, 1, 4, -1},
			HeaderRows:   2,
			Delimiter:    "\t",
			Charset:      "latin1",
		},
	}
}

func TestReadExport_DelimitedCleaning(t *testing.T) {
	lines := []string{
		"Budget Report: All Projects",          // 0: banner, discarded
		"",                                     // 1: discarded
		"\tBudget\t\tActual",                   // 2: group header row
		"Object\tTotal\tUsed\tTotal",           // 3: column header row
		"--------------------------------",     // 4: rule line, discarded
		"6* NL-C-001\t5000\t1000\t750",         // 5: data
		"7** NL-C-001-01\t2500\t400\t300",      // 6: data
		"End of report",                        // -1: footer, discarded
	}
	data := []byte(strings.Join(lines, "\n") + "\n")

	table, err := ReadExport(data, datProfile())
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}

	wantCols := []string{"Object", "Budget - Total", "Budget - Used", "Actual - Total"}
	if len(table.Columns) != len(wantCols) {
		t.Fatalf("got %d columns %v, want %d", len(table.Columns), table.Columns, len(wantCols))
	}
	for i, want := range wantCols {
		if got := table.Columns[i].String(); got != want {
			t.Errorf("column %d = %q, want %q", i, got, want)
		}
	}

	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	if table.Rows[0].Line != 6 || table.Rows[1].Line != 7 {
		t.Errorf("row lines = %d, %d; want original file lines 6, 7", table.Rows[0].Line, table.Rows[1].Line)
	}
	if got := table.Rows[0].Cells[0]; got != "6* NL-C-001" {
		t.Errorf("row 0 cell 0 = %q, want %q", got, "6* NL-C-001")
	}
	if table.EncodingAnomalies != 0 {
		t.Errorf("EncodingAnomalies = %d, want 0", table.EncodingAnomalies)
	}
}

func TestReadExport_Latin1Decoding(t *testing.T) {
	p := datProfile()
	p.Cleaning.DiscardLines = nil
	p.Cleaning.HeaderRows = 1

	// 0xE9 is é in ISO 8859-1 and invalid as standalone UTF-8.
	data := []byte("Object\tName\nNL-C-001\tCaf\xe9 block\n")

	table, err := ReadExport(data, p)
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	if got := table.Rows[0].Cells[1]; got != "Café block" {
		t.Errorf("decoded cell = %q, want %q", got, "Café block")
	}
	if table.EncodingAnomalies != 0 {
		t.Errorf("EncodingAnomalies = %d, want 0", table.EncodingAnomalies)
	}
}

func TestReadExport_UTF8AnomaliesCounted(t *testing.T) {
	p := datProfile()
	p.Cleaning.DiscardLines = nil
	p.Cleaning.HeaderRows = 1
	p.Cleaning.Charset = "utf-8"

	data := []byte("Object\tName\nNL-C-001\tbad \xff\xfe bytes\n")

	table, err := ReadExport(data, p)
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	if table.EncodingAnomalies != 2 {
		t.Errorf("EncodingAnomalies = %d, want 2", table.EncodingAnomalies)
	}
}

func TestReadExport_ShortFileToleratesDiscardIndices(t *testing.T) {
	p := datProfile()
	p.Cleaning.DiscardLines = []int{0, 1, 4, 17, -1}
	p.Cleaning.HeaderRows = 1

	// Only five lines; index 17 is off the end and must be skipped, the
	// others still apply.
	lines := []string{
		"banner",           // 0: discarded
		"",                 // 1: discarded
		"Object\tAmount",   // header
		"NL-C-001\t100",    // data
		"footer",           // -1: discarded (index 4, also named directly)
	}
	data := []byte(strings.Join(lines, "\n"))

	table, err := ReadExport(data, p)
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(table.Rows))
	}
	if got := table.Rows[0].Cells[0]; got != "NL-C-001" {
		t.Errorf("row 0 cell 0 = %q", got)
	}
}

func TestReadExport_DropLastDataRow(t *testing.T) {
	p := datProfile()
	p.Cleaning.DiscardLines = nil
	p.Cleaning.HeaderRows = 1
	p.DropLastDataRow = true

	data := []byte("Object\tAmount\nNL-C-001\t100\nNL-C-002\t200\nTotal\t300\n")

	table, err := ReadExport(data, p)
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2 after dropping totals row", len(table.Rows))
	}
	if got := table.Rows[1].Cells[0]; got != "NL-C-002" {
		t.Errorf("last kept row code = %q, want %q", got, "NL-C-002")
	}
}

func TestReadExport_RaggedMinorityIsPadded(t *testing.T) {
	p := datProfile()
	p.Cleaning.DiscardLines = nil
	p.Cleaning.HeaderRows = 1

	data := []byte(strings.Join([]string{
		"Object\tBudget\tActual",
		"NL-C-001\t100\t50",
		"NL-C-002\t200", // short row, minority
		"NL-C-003\t300\t150",
	}, "\n"))

	table, err := ReadExport(data, p)
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	for i, row := range table.Rows {
		if len(row.Cells) != 3 {
			t.Errorf("row %d has %d cells, want 3", i, len(row.Cells))
		}
	}
	if got := table.Rows[1].Cells[2]; got != "" {
		t.Errorf("padded cell = %q, want empty", got)
	}
}

func TestReadExport_MajorityInconsistencyFails(t *testing.T) {
	p := datProfile()
	p.Cleaning.DiscardLines = nil
	p.Cleaning.HeaderRows = 1

	data := []byte(strings.Join([]string{
		"Object\tBudget\tActual",
		"NL-C-001\t100",
		"NL-C-002\t200\t90\t10",
		"NL-C-003\t300\t150",
		"NL-C-004\t400\t1\t2\t3\t4",
	}, "\n"))

	_, err := ReadExport(data, p)
	if err == nil {
		t.Fatal("ReadExport succeeded, want parse error")
	}
	if !errors.Is(err, ErrParse) {
		t.Errorf("error %v does not wrap ErrParse", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %T is not *ParseError", err)
	}
	if pe.Report != p.Key {
		t.Errorf("ParseError.Report = %q, want %q", pe.Report, p.Key)
	}
}

func TestReadExport_TooFewHeaderRows(t *testing.T) {
	p := datProfile()
	p.Cleaning.DiscardLines = nil

	_, err := ReadExport([]byte("only one line"), p)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestReadExport_BlankDataLinesSkipped(t *testing.T) {
	p := datProfile()
	p.Cleaning.DiscardLines = nil
	p.Cleaning.HeaderRows = 1

	data := []byte("Object\tAmount\n\nNL-C-001\t100\n\t\n")

	table, err := ReadExport(data, p)
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(table.Rows))
	}
}

func TestReadExport_MissingHeaderFragmentsGetPlaceholders(t *testing.T) {
	p := datProfile()
	p.Cleaning.DiscardLines = nil
	p.Cleaning.HeaderRows = 1

	data := []byte("Object\t\t\nNL-C-001\t100\t50\n")

	table, err := ReadExport(data, p)
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	want := []string{"Object", "Column_2", "Column_3"}
	for i, w := range want {
		if got := table.Columns[i].String(); got != w {
			t.Errorf("column %d = %q, want %q", i, got, w)
		}
	}
}

func TestReadExport_HTMLTable(t *testing.T) {
	p := Profile{
		Key:    "budget_variance",
		Format: FormatHTML,
		Cleaning: CleaningProfile{
			DiscardLines: []int{0, 1},
			HeaderRows:   2,
			Charset:      "utf-8",
		},
		DropLastDataRow: true,
	}

	doc := strings.Join([]string{
		"Budget Variance Report",
		"Generated 2026-04-01",
		"<html><body><table>",
		"<tr><th>WBS Element</th><th colspan=\"2\">Budget</th></tr>",
		"<tr><th></th><th>Planned</th><th>Actual</th></tr>",
		"<tr><td>NL-C-001</td><td>5000</td><td>4200</td></tr>",
		"<tr><td>NL-C-002</td><td>1000</td><td>1300</td></tr>",
		"<tr><td>Total</td><td>6000</td><td>5500</td></tr>",
		"</table></body></html>",
	}, "\n")

	table, err := ReadExport([]byte(doc), p)
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}

	wantCols := []string{"WBS Element", "Budget - Planned", "Budget - Actual"}
	for i, w := range wantCols {
		if got := table.Columns[i].String(); got != w {
			t.Errorf("column %d = %q, want %q", i, got, w)
		}
	}

	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2 (totals row dropped)", len(table.Rows))
	}
	if got := table.Rows[0].Cells[0]; got != "NL-C-001" {
		t.Errorf("row 0 code = %q", got)
	}
	if got := table.Rows[1].Cells[1]; got != "1000" {
		t.Errorf("row 1 planned = %q", got)
	}
}

func TestReadExport_HTMLWithoutTable(t *testing.T) {
	p := Profile{
		Key:      "budget_variance",
		Format:   FormatHTML,
		Cleaning: CleaningProfile{Charset: "utf-8", HeaderRows: 1},
	}

	_, err := ReadExport([]byte("<html><body><p>nothing here</p></body></html>"), p)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}
