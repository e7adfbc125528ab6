// Command wbsreports processes SAP project-system exports into classified,
// description-enriched, currency-formatted report data, and manages the WBS
// reference catalog the pipeline maps descriptions from.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nlconnect/wbsreports/internal/config"
	"github.com/nlconnect/wbsreports/internal/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "wbsreports",
	Short: "SAP WBS budget report processing",
	Long: `wbsreports cleans SAP exports (delimited .dat and HTML table downloads),
classifies WBS codes into summary and transaction elements, enriches them
with descriptions from the reference catalog, and renders amounts in Indian
currency grouping.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file if it exists (Overload overwrites existing env vars)
		_ = godotenv.Overload()

		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c

		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

func main() {
	rootCmd.AddCommand(processCmd, catalogCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// openPool dials the catalog database. Returns nil without error when no
// database is configured; the pipeline then runs in degraded mode.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if cfg.Database.URL == "" {
		return nil, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
