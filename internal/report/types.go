// Package report implements the SAP export processing pipeline: cleaning and
// decoding raw exports, classifying WBS codes by hierarchy, enriching codes
// with catalog descriptions, and rendering amounts as Indian-grouped currency
// strings. This package has no database or CLI dependencies; the catalog is
// supplied through the DescriptionMapper interface.
package report

import (
	"context"
	"strings"
)

// Format identifies the physical shape of an export file.
type Format string

const (
	// FormatDAT is a delimited text export (SAP .dat download).
	FormatDAT Format = "dat"
	// FormatHTML is an HTML table export.
	FormatHTML Format = "html"
)

// CleaningProfile describes how a raw export is cleaned before parsing.
// Each report type ships its own profile; the indices are configuration,
// not logic.
type CleaningProfile struct {
	// DiscardLines are zero-based line indices removed from the raw file
	// before parsing. Negative values count from the end (-1 is the last
	// line). Indices beyond the file length are skipped silently.
	DiscardLines []int

	// HeaderRows is the number of leading records combined into compound
	// column keys. SAP exports typically carry two header rows.
	HeaderRows int

	// Delimiter is the field separator for FormatDAT files. Defaults to tab.
	Delimiter string

	// Charset names the input encoding: "latin1" (default), "windows-1252"
	// or "utf-8". Undecodable sequences are substituted, never fatal.
	Charset string
}

// Profile is the per-report-type configuration consumed by the Assembler.
type Profile struct {
	Key      string
	Label    string
	Format   Format
	Cleaning CleaningProfile

	// CodeColumn selects the column holding the WBS code. It is matched
	// case-insensitively against each compound key and its fragments.
	CodeColumn string

	// ObjectColumn, when set, names a column whose cells hold a level
	// marker and the WBS code as whitespace-separated tokens
	// (e.g. "6* PRJ NL-C-001-01"). The code is the last token and the
	// level the first; CodeColumn is ignored in that case.
	ObjectColumn string

	// CodeColumnIndex selects the code column by position when neither
	// CodeColumn nor ObjectColumn is set. HTML exports address the code
	// column positionally because their header labels vary.
	CodeColumnIndex int

	// NumericColumns selects the columns rendered as currency. When empty,
	// every column not matched by the code/object selection and not named
	// like a text column (level, description, id, wbs, object, name) is
	// treated as numeric.
	NumericColumns []string

	// DropLastDataRow removes the trailing data row after parsing. HTML
	// variance exports carry a grand-total row the pipeline must not
	// classify.
	DropLastDataRow bool
}

// ColumnKey is a compound column identifier built from the header rows,
// ordered top level first. Empty fragments are omitted.
type ColumnKey []string

// String joins the key fragments for display and matching.
func (k ColumnKey) String() string {
	return strings.Join(k, " - ")
}

// Matches reports whether rule matches this key, comparing case-insensitively
// against the joined key and against each fragment.
func (k ColumnKey) Matches(rule string) bool {
	if rule == "" {
		return false
	}
	if strings.EqualFold(k.String(), rule) {
		return true
	}
	for _, part := range k {
		if strings.EqualFold(part, rule) {
			return true
		}
	}
	return false
}

// RawRow is one cleaned data record. Cells are positional and align with the
// owning Table's Columns. Rows are immutable once the reader returns them.
type RawRow struct {
	// Line is the 1-based line number in the original file, for diagnostics.
	Line  int
	Cells []string
}

// Table is the reader's output: compound column keys plus cleaned rows.
type Table struct {
	Columns []ColumnKey
	Rows    []RawRow

	// EncodingAnomalies counts byte sequences substituted during decoding.
	EncodingAnomalies int
}

// RowKind tags a row by its code's position in the WBS hierarchy.
type RowKind string

const (
	// KindSummary marks rows whose code has at least one child in the set.
	KindSummary RowKind = "summary"
	// KindLeaf marks rows whose code has no children (transaction rows).
	KindLeaf RowKind = "leaf"
)

// CellRole declares how a cell is interpreted downstream.
type CellRole int

const (
	RoleText CellRole = iota
	RoleCode
	RoleNumeric
)

// Cell is a single output cell: the raw value and, for numeric cells, its
// formatted currency rendering.
type Cell struct {
	Key     ColumnKey
	Role    CellRole
	Raw     string
	Display string
}

// OutputRow is the assembled result for one input record.
type OutputRow struct {
	Kind        RowKind
	Code        string
	Level       string
	Description string
	Cells       []Cell
}

// Classification partitions a code set into summary and leaf members.
// The two slices are disjoint, preserve first-seen input order, and together
// cover the de-duplicated input.
type Classification struct {
	Summary []string
	Leaf    []string
}

// IsSummary reports whether code landed in the summary partition.
func (c Classification) IsSummary(code string) bool {
	for _, s := range c.Summary {
		if s == code {
			return true
		}
	}
	return false
}

// Catalog status strings surfaced in diagnostics. They mirror the catalog
// session states without importing it.
const (
	CatalogAvailable   = "available"
	CatalogUnavailable = "unavailable"

	ReasonSourceMissing = "source-missing"
	ReasonNotImported   = "not-imported"
)

// MapOutcome is what a DescriptionMapper returns for a batch of codes.
// Mapping never fails: with an unavailable catalog every description is blank
// and the status/reason explain why.
type MapOutcome struct {
	// Descriptions holds a description per mapped code. Codes missing from
	// the catalog are absent from the map.
	Descriptions map[string]string

	Status string
	Reason string

	Mapped   int
	Unmapped int
	Total    int
}

// DescriptionMapper resolves WBS codes to human-readable descriptions.
// Implementations must be safe for concurrent use and must not fail the
// pipeline; degraded catalogs are reported through the outcome.
type DescriptionMapper interface {
	Map(ctx context.Context, codes []string) MapOutcome
}

// Summary is the per-run diagnostic emitted alongside the output rows.
// It is advisory: presentation layers show it as a banner or log line.
type Summary struct {
	RunID      string
	Report     string
	TotalRows  int
	TotalCodes int

	Mapped        int
	Unmapped      int
	CatalogStatus string
	CatalogReason string

	EncodingAnomalies int
	FormatFallbacks   int
}

// Result is the assembler's complete output for one export.
type Result struct {
	Rows    []OutputRow
	Summary Summary
}
