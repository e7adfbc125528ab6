package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nlconnect/wbsreports/internal/catalog"
	"github.com/nlconnect/wbsreports/internal/config"
	"github.com/nlconnect/wbsreports/internal/report"
)

var (
	processReportType string
	processOut        string
)

var processCmd = &cobra.Command{
	Use:   "process <export-file>",
	Short: "Process one SAP export into classified, formatted report rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processReportType, "report", "r", "", "report type (e.g. budget_report)")
	processCmd.Flags().StringVarP(&processOut, "out", "o", "", "output CSV file (default: stdout)")
	_ = processCmd.MarkFlagRequired("report")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	profiles, err := config.LoadProfiles(cfg.Report.ProfilesFile)
	if err != nil {
		return err
	}
	profile, ok := profiles[processReportType]
	if !ok {
		return fmt.Errorf("unknown report type %q (known: %s)", processReportType, strings.Join(profileKeys(profiles), ", "))
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	if int64(len(data)) > cfg.Report.MaxFileSize {
		return fmt.Errorf("export exceeds %d byte limit", cfg.Report.MaxFileSize)
	}

	pool, err := openPool(ctx)
	if err != nil {
		// Descriptions are an enrichment; a dead database must not block
		// report generation.
		slog.Warn("catalog database unreachable, continuing without descriptions", "error", err)
	}
	var store catalog.Store
	if pool != nil {
		defer pool.Close()
		store = catalog.NewPGStore(pool)
	}
	session := catalog.NewSession(store, cfg.Catalog.MasterFile)

	asm := report.NewAssembler(profile, session)
	asm.Currency = report.CurrencyFormatter{
		Symbol:           cfg.Report.CurrencySymbol,
		SignBeforeSymbol: cfg.Report.SignBeforeSymbol,
	}

	result, err := asm.Run(ctx, data)
	if err != nil {
		return err
	}

	if err := writeOutput(result, processOut); err != nil {
		return err
	}

	s := result.Summary
	logger := slog.With("run_id", s.RunID, "report", s.Report)
	logger.Info("report processed",
		"rows", s.TotalRows,
		"codes", s.TotalCodes,
		"mapped", s.Mapped,
		"unmapped", s.Unmapped,
		"encoding_anomalies", s.EncodingAnomalies,
		"format_fallbacks", s.FormatFallbacks,
	)
	if s.CatalogStatus != report.CatalogAvailable {
		logger.Warn("catalog degraded, output has blank descriptions", "reason", s.CatalogReason)
	}
	return nil
}

// writeOutput renders the result as CSV: row kind, level, code and
// description first, then every non-code column with its formatted display
// value.
func writeOutput(result *report.Result, path string) error {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{"Kind", "Level", "WBS Code", "Description"}
	var valueCols []int
	if len(result.Rows) > 0 {
		for i, cell := range result.Rows[0].Cells {
			if cell.Role == report.RoleCode {
				continue
			}
			valueCols = append(valueCols, i)
			header = append(header, cell.Key.String())
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range result.Rows {
		record := []string{string(row.Kind), row.Level, row.Code, row.Description}
		for _, i := range valueCols {
			record = append(record, row.Cells[i].Display)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func profileKeys(profiles map[string]report.Profile) []string {
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
