package catalog

// importer.go materializes the master workbook (WBS_NAMES.XLSX, columns
// "WBS_element" and "Name") into the catalog store. A .csv master with the
// same columns is accepted as well.

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportMaster reads the master file, replaces the store contents and
// returns the number of imported entries. Rows with a blank code or name
// are skipped, matching how the master data was imported upstream.
func ImportMaster(ctx context.Context, store Store, path string) (int64, error) {
	var (
		entries []Entry
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		entries, err = readMasterCSV(path)
	default:
		entries, err = readMasterXLSX(path)
	}
	if err != nil {
		return 0, err
	}

	count, err := store.Replace(ctx, entries)
	if err != nil {
		return 0, err
	}

	slog.Info("catalog import completed", "file", filepath.Base(path), "entries", count)
	return count, nil
}

func readMasterXLSX(path string) ([]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open master workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read master sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("master workbook sheet %q is empty", sheet)
	}

	return entriesFromRows(rows)
}

func readMasterCSV(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open master file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read master file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("master file is empty")
	}

	return entriesFromRows(rows)
}

// entriesFromRows locates the WBS_element and Name columns in the header
// row and collects the non-blank entries beneath them.
func entriesFromRows(rows [][]string) ([]Entry, error) {
	codeCol, nameCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "wbs_element", "wbs element":
			codeCol = i
		case "name":
			nameCol = i
		}
	}
	if codeCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf(`master file must contain "WBS_element" and "Name" columns`)
	}

	var entries []Entry
	for _, row := range rows[1:] {
		if codeCol >= len(row) || nameCol >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[codeCol])
		name := strings.TrimSpace(row[nameCol])
		if code == "" || name == "" {
			continue
		}
		entries = append(entries, Entry{Code: code, Name: name})
	}
	return entries, nil
}
