package report

// assemble.go sequences the pipeline for one export: read and clean, extract
// the distinct code set, classify it once, map descriptions once, then join
// everything back onto the rows. Classification and descriptions are computed
// per distinct code, never per row, so rows sharing a code always agree.

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/nlconnect/wbsreports/internal/logging"
)

// levelMarker matches the hierarchy-level token SAP prints ahead of a WBS
// code in object cells: one to five asterisks, optionally led by a digit
// ("**", "6*").
var levelMarker = regexp.MustCompile(`^\d?\*{1,5}$`)

// textColumnHints mark columns that are never currency even when the profile
// does not list numeric columns explicitly.
var textColumnHints = []string{"level", "description", "id", "wbs", "object", "name", "sl no"}

// Assembler runs the full pipeline for a single report type. One Assembler
// may serve concurrent runs; it holds no per-run state.
type Assembler struct {
	Profile  Profile
	Mapper   DescriptionMapper
	Currency CurrencyFormatter
}

// NewAssembler wires a pipeline for the given profile and catalog mapper.
func NewAssembler(p Profile, mapper DescriptionMapper) *Assembler {
	return &Assembler{
		Profile:  p,
		Mapper:   mapper,
		Currency: NewCurrencyFormatter(),
	}
}

// Run processes one raw export end to end. The only error it can return is
// a ParseError from the reader; classification, mapping and formatting are
// total and degrade into the diagnostics instead of failing.
func (a *Assembler) Run(ctx context.Context, data []byte) (*Result, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)

	table, err := ReadExport(data, a.Profile)
	if err != nil {
		return nil, err
	}

	roles, codeIdx := a.resolveColumns(table.Columns)

	// Distinct codes in first-seen order.
	codes := make([]string, 0, len(table.Rows))
	rowCodes := make([]string, len(table.Rows))
	rowLevels := make([]string, len(table.Rows))
	seen := make(map[string]bool)
	for i, row := range table.Rows {
		code, level := extractCode(row.Cells, codeIdx, a.Profile.ObjectColumn != "")
		rowCodes[i], rowLevels[i] = code, level
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	classification := Classify(codes)
	kinds := make(map[string]RowKind, len(codes))
	for _, c := range classification.Summary {
		kinds[c] = KindSummary
	}
	for _, c := range classification.Leaf {
		kinds[c] = KindLeaf
	}

	outcome := a.Mapper.Map(ctx, codes)

	fallbacks := 0
	rows := make([]OutputRow, len(table.Rows))
	for i, raw := range table.Rows {
		out := OutputRow{
			Kind:        KindLeaf,
			Code:        rowCodes[i],
			Level:       rowLevels[i],
			Description: outcome.Descriptions[rowCodes[i]],
			Cells:       make([]Cell, len(raw.Cells)),
		}
		if kind, ok := kinds[out.Code]; ok {
			out.Kind = kind
		}

		for j, value := range raw.Cells {
			cell := Cell{Key: table.Columns[j], Role: roles[j], Raw: value, Display: value}
			switch roles[j] {
			case RoleNumeric:
				display, ok := a.Currency.Format(value)
				if !ok {
					fallbacks++
				}
				cell.Display = display
			case RoleCode:
				cell.Display = out.Code
			}
			out.Cells[j] = cell
		}
		rows[i] = out
	}

	return &Result{
		Rows: rows,
		Summary: Summary{
			RunID:             runID,
			Report:            a.Profile.Key,
			TotalRows:         len(rows),
			TotalCodes:        len(codes),
			Mapped:            outcome.Mapped,
			Unmapped:          outcome.Unmapped,
			CatalogStatus:     outcome.Status,
			CatalogReason:     outcome.Reason,
			EncodingAnomalies: table.EncodingAnomalies,
			FormatFallbacks:   fallbacks,
		},
	}, nil
}

// resolveColumns assigns a role to every column. The code column comes from
// the profile's object/code selection; numeric columns come from the
// profile list or, when the list is empty, from excluding text-like names
// the way the original reports did.
func (a *Assembler) resolveColumns(columns []ColumnKey) (roles []CellRole, codeIdx int) {
	roles = make([]CellRole, len(columns))
	codeIdx = -1

	codeRule := a.Profile.CodeColumn
	if a.Profile.ObjectColumn != "" {
		codeRule = a.Profile.ObjectColumn
	}

	if codeRule == "" {
		if idx := a.Profile.CodeColumnIndex; idx >= 0 && idx < len(columns) {
			codeIdx = idx
			roles[idx] = RoleCode
		}
	} else {
		for i, key := range columns {
			if codeIdx < 0 && key.Matches(codeRule) {
				codeIdx = i
				roles[i] = RoleCode
			}
		}
	}

	for i, key := range columns {
		if i == codeIdx {
			continue
		}
		if len(a.Profile.NumericColumns) > 0 {
			for _, rule := range a.Profile.NumericColumns {
				if key.Matches(rule) {
					roles[i] = RoleNumeric
					break
				}
			}
			continue
		}
		if !looksTextual(key) {
			roles[i] = RoleNumeric
		}
	}
	return roles, codeIdx
}

func looksTextual(key ColumnKey) bool {
	joined := strings.ToLower(key.String())
	for _, hint := range textColumnHints {
		if strings.Contains(joined, hint) {
			return true
		}
	}
	return false
}

// extractCode pulls the WBS code (and, for object cells, the level marker)
// out of a row. Object cells hold whitespace-separated tokens with the code
// last; plain code cells are used verbatim.
func extractCode(cells []string, codeIdx int, objectCell bool) (code, level string) {
	if codeIdx < 0 || codeIdx >= len(cells) {
		return "", ""
	}
	value := strings.TrimSpace(cells[codeIdx])
	if value == "" {
		return "", ""
	}
	if !objectCell {
		return value, ""
	}

	tokens := strings.Fields(value)
	code = tokens[len(tokens)-1]
	if len(tokens) > 1 && levelMarker.MatchString(tokens[0]) {
		level = tokens[0]
	}
	return code, level
}
