package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nlconnect/wbsreports/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the WBS reference catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [master-file]",
	Short: "Import the master workbook into the catalog",
	Long: `Import replaces the catalog contents with the entries from the master
workbook (WBS_NAMES.XLSX with "WBS_element" and "Name" columns, or an
equivalent CSV). Without an argument the configured master file is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogImport,
}

var catalogStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog availability",
	Args:  cobra.NoArgs,
	RunE:  runCatalogStatus,
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd, catalogStatusCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path := cfg.Catalog.MasterFile
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("master file %s: %w", path, err)
	}

	pool, err := openPool(ctx)
	if err != nil {
		return fmt.Errorf("connect catalog database: %w", err)
	}
	if pool == nil {
		return fmt.Errorf("catalog import requires DATABASE_URL to be set")
	}
	defer pool.Close()

	store := catalog.NewPGStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	count, err := catalog.ImportMaster(ctx, store, path)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d WBS elements from %s\n", count, path)
	return nil
}

func runCatalogStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pool, err := openPool(ctx)
	if err != nil {
		slog.Warn("catalog database unreachable", "error", err)
	}
	var store catalog.Store
	if pool != nil {
		defer pool.Close()
		store = catalog.NewPGStore(pool)
	}

	session := catalog.NewSession(store, cfg.Catalog.MasterFile)
	state, reason := session.Status(ctx)

	switch state {
	case catalog.StateAvailable:
		fmt.Println("Catalog: available")
	default:
		fmt.Printf("Catalog: %s (%s)\n", state, reason)
		switch reason {
		case catalog.ReasonNotImported:
			fmt.Printf("Master file found at %s. Run `wbsreports catalog import` to load it.\n", cfg.Catalog.MasterFile)
		case catalog.ReasonSourceMissing:
			fmt.Printf("Master file not found at %s. Place WBS_NAMES.XLSX there, then run `wbsreports catalog import`.\n", cfg.Catalog.MasterFile)
		}
	}
	return nil
}
