// Command heatmap_loader decodes tar1090 heatmap binary files from a
// directory tree and bulk-loads the per-aircraft positions into a
// database.
//
// Usage:
//
//	heatmap_loader [flags] <directory>
//
// The directory either contains YYYY-MM-DD subdirectories of
// half-hour files named 0-47, or is itself such a partition. Every
// flag can also be set through the environment with a HEATMAP_ prefix
// (e.g. HEATMAP_CONNECTION_STRING); flags win over the environment.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"heatmap_loader/internal/batch"
	"heatmap_loader/internal/heatmap"
	"heatmap_loader/internal/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "heatmap_loader: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("heatmap_loader", pflag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: heatmap_loader [flags] <directory>")
		fmt.Fprintln(os.Stderr, "")
		flags.PrintDefaults()
	}

	flags.StringP("connection-string", "c", "", "PostgreSQL connection string (sink=postgres)")
	flags.String("sink", "postgres", "Where records go: postgres, clickhouse, sqlite, nats or none")
	flags.String("sqlite-path", "heatmap.db", "SQLite database file (sink=sqlite)")
	flags.String("nats-url", "", "NATS server URL (sink=nats)")
	flags.Bool("cleanup-files", false, "Delete processed files after successful insertion")
	flags.Bool("skip-finalize", false, "Skip index creation and promotion into the adsb table")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("expected exactly one directory argument")
	}
	root := flags.Arg(0)

	viper.SetEnvPrefix("HEATMAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "heatmap_loader",
	})
	if viper.GetBool("verbose") {
		logger.SetLevel(log.DebugLevel)
	}

	logger.Info("starting ADS-B heatmap processing", "dir", root)
	ctx := context.Background()

	var (
		loader storage.Loader
		pg     *storage.PostgresDB
	)
	switch sink := viper.GetString("sink"); sink {
	case "postgres":
		db, err := storage.OpenPostgres(ctx, viper.GetString("connection-string"))
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.CreateStaging(ctx); err != nil {
			return err
		}
		loader = db
		pg = db

	case "clickhouse":
		cfg := storage.DefaultClickHouseConfig()
		if v := viper.GetString("clickhouse-host"); v != "" {
			cfg.Host = v
		}
		if v := viper.GetInt("clickhouse-port"); v != 0 {
			cfg.Port = v
		}
		if v := viper.GetString("clickhouse-database"); v != "" {
			cfg.Database = v
		}
		if v := viper.GetString("clickhouse-user"); v != "" {
			cfg.User = v
		}
		if v := viper.GetString("clickhouse-password"); v != "" {
			cfg.Password = v
		}
		db, err := storage.OpenClickHouse(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.CreateSchema(ctx); err != nil {
			return err
		}
		loader = db

	case "sqlite":
		db, err := storage.OpenSQLite(viper.GetString("sqlite-path"))
		if err != nil {
			return err
		}
		defer db.Close()
		loader = db

	case "nats":
		pub, err := storage.OpenNATS(viper.GetString("nats-url"))
		if err != nil {
			return err
		}
		defer pub.Close()
		loader = pub

	case "none":
		loader = &storage.Memory{}

	default:
		return fmt.Errorf("unknown sink %q", sink)
	}

	pipe := heatmap.NewPipeline(logger)
	orch := batch.NewOrchestrator(loader, pipe, logger)

	total, err := orch.Run(ctx, root, viper.GetBool("cleanup-files"))
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}
	if total == 0 {
		logger.Warn("no records were processed")
		return nil
	}
	logger.Info("processed records", "total", total)

	if pg != nil {
		if viper.GetBool("skip-finalize") {
			logger.Info("skipping finalization step as requested")
			return nil
		}
		logger.Info("creating indexes and finalizing data")
		if err := pg.Finalize(ctx); err != nil {
			return fmt.Errorf("finalize: %w", err)
		}
		if err := pg.DropStaging(ctx); err != nil {
			return fmt.Errorf("drop staging: %w", err)
		}
		logger.Info("data insertion completed successfully")
	}

	return nil
}
