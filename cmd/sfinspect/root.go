package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/sfinspect"
	"github.com/nao1215/sfinspect/internal/config"
	"github.com/nao1215/sfinspect/internal/logging"
	"github.com/nao1215/sfinspect/internal/shell"
	"github.com/nao1215/sfinspect/mirror"
)

type rootOptions struct {
	logLevel  string
	logFormat string
	sheet     string
	sql       bool
	envFile   string
	timeout   time.Duration
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "sfinspect [flags] FILE...",
		Short: "Search restaurant inspection results by name or zip code",
		Long: `sfinspect loads restaurant inspection files (CSV, XLSX or Parquet,
optionally compressed) and answers queries about them:

  name KEYWORD   restaurants whose name contains KEYWORD
  zip KEYWORD    restaurants whose zip code contains KEYWORD
  quit           leave the program

Settings are read from SFINSPECT_* environment variables and an optional
.env file. Flags take precedence over both.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd.Context(), cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text, json")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "XLSX sheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&opts.sql, "sql", false, "Copy the data into in-memory SQLite and enable the sql command")
	cmd.Flags().DurationVar(&opts.timeout, "load-timeout", 0, "Give up loading after this long, 0 for no limit")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Read settings from this file instead of ./.env")

	return cmd
}

func runRoot(ctx context.Context, cmd *cobra.Command, opts rootOptions, paths []string) error {
	cfg, err := loadConfig(cmd.Flags(), opts)
	if err != nil {
		return err
	}

	logger := logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	logger.Debug("configuration loaded", "config", cfg.String())

	dir, report, err := load(ctx, cfg, logger, paths)
	if err != nil {
		return err
	}

	shellOpts := []shell.Option{
		shell.WithReport(report),
		shell.WithLogger(logger),
	}
	if cfg.SQL.Enabled {
		m, err := mirror.New(ctx, dir)
		if err != nil {
			return fmt.Errorf("failed to build SQL mirror: %w", err)
		}
		defer func() {
			if err := m.Close(); err != nil {
				logger.Warn("failed to close SQL mirror", "error", err)
			}
		}()
		logger.Info("SQL mirror ready", "establishments", dir.Len(), "inspections", dir.InspectionCount())
		shellOpts = append(shellOpts, shell.WithSQL(m))
	}

	return shell.New(dir, shellOpts...).Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}

// load reads every path into one directory within the configured time limit
func load(ctx context.Context, cfg *config.Config, logger *slog.Logger, paths []string) (*sfinspect.Directory, sfinspect.LoadReport, error) {
	if cfg.Input.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Input.LoadTimeout)
		defer cancel()
	}

	builder, err := sfinspect.NewBuilder().
		AddPaths(paths...).
		SetLogger(logger).
		SetSheet(cfg.Input.Sheet).
		Build(ctx)
	if err != nil {
		return nil, sfinspect.LoadReport{}, err
	}
	return builder.Load(ctx)
}

// loadConfig reads the environment and applies the flags the user set
func loadConfig(flags *pflag.FlagSet, opts rootOptions) (*config.Config, error) {
	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}

	cfg, err := config.Read(envFiles...)
	if err != nil {
		return nil, err
	}

	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = opts.logFormat
	}
	if flags.Changed("sheet") {
		cfg.Input.Sheet = opts.sheet
	}
	if flags.Changed("sql") {
		cfg.SQL.Enabled = opts.sql
	}
	if flags.Changed("load-timeout") {
		cfg.Input.LoadTimeout = opts.timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

var _ shell.Querier = (*mirror.Mirror)(nil)
