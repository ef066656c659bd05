package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jqgen/internal/config"
	"jqgen/internal/errs"
	"jqgen/internal/feasibility"
	"jqgen/internal/runner"
	"jqgen/internal/util"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

type options struct {
	configPath    string
	seed          int64
	workers       int
	output        string
	workbook      string
	overwrite     bool
	queryBaseName string
	collection    string
	matrix        string
	print         bool
	printOnly     bool
	archive       bool
	verbose       bool
	logFile       string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "jqgen",
		Short:         "Generate SQL query templates for JSON document collections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	bindFlags(root, opts)

	root.AddCommand(
		&cobra.Command{
			Use:   "schema [SCHEMA_CONFIG QUERY_CONFIG]",
			Short: "Compose templates from a schema description and a query config, then expand them",
			Args:  cobra.RangeArgs(0, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, opts, config.ModeSchema, args)
			},
		},
		&cobra.Command{
			Use:   "standalone [STANDALONE_CONFIG]",
			Short: "Expand a standalone template config",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, opts, config.ModeStandalone, args)
			},
		},
		&cobra.Command{
			Use:   "matrix",
			Short: "Print the feasibility matrix",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(cmd, opts)
				if err != nil {
					return err
				}
				var m *feasibility.Matrix
				if cfg.MatrixFile == "" {
					m, err = feasibility.DefaultMatrix()
				} else {
					m, err = feasibility.LoadMatrix(cfg.MatrixFile)
				}
				if err != nil {
					return err
				}
				m.WriteTables(cmd.OutOrStdout())
				return nil
			},
		},
	)
	return root
}

func bindFlags(cmd *cobra.Command, opts *options) {
	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "run-config", "", "path to the run config file (YAML)")
	f.Int64Var(&opts.seed, "seed", 1, "random seed")
	f.IntVar(&opts.workers, "workers", 1, "number of templates built in parallel")
	f.StringVarP(&opts.output, "output", "o", "output", "output directory")
	f.StringVarP(&opts.workbook, "workbook", "w", "", "workbook name below the output directory")
	f.BoolVar(&opts.overwrite, "overwrite", false, "replace an existing workbook")
	f.StringVar(&opts.queryBaseName, "query-base-name", "query", "base name of the generated files")
	f.StringVar(&opts.collection, "collection-name", "", "collection name overriding the query config")
	f.StringVar(&opts.matrix, "matrix", "", "feasibility matrix file (defaults to the built-in matrix)")
	f.BoolVar(&opts.print, "print", false, "print generated queries")
	f.BoolVar(&opts.printOnly, "print-only", false, "only print the queries, do not write files")
	f.BoolVar(&opts.archive, "archive", false, "pack the queries into queries.tar.zst")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	f.StringVar(&opts.logFile, "log-file", "", "also write logs to this file")
}

func run(cmd *cobra.Command, opts *options, mode config.Mode, args []string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	cfg.Mode = mode
	switch {
	case mode == config.ModeSchema && len(args) == 2:
		cfg.SchemaFile, cfg.QueryFile = args[0], args[1]
	case mode == config.ModeSchema && len(args) == 1:
		return errs.Configf(args[0], "schema needs both SCHEMA_CONFIG and QUERY_CONFIG")
	case mode == config.ModeStandalone && len(args) == 1:
		cfg.StandaloneFile = args[0]
	}

	closer, err := util.SetupLogging(cfg.Logging.LogFile, cfg.Logging.Verbose)
	if err != nil {
		return err
	}
	if closer != nil {
		defer util.CloseWithErr(closer, "log file")
	}
	if data, err := yaml.Marshal(&cfg); err == nil {
		util.Detailf("config:\n%s", string(data))
	}

	r, err := runner.New(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()
	return r.Run(ctx)
}

// loadConfig reads the run config file and applies the flags set on the command line.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("output") {
		cfg.OutputDir = opts.output
	}
	if flags.Changed("workbook") {
		cfg.Workbook = opts.workbook
	}
	if flags.Changed("overwrite") {
		cfg.Overwrite = opts.overwrite
	}
	if flags.Changed("query-base-name") {
		cfg.QueryBaseName = opts.queryBaseName
	}
	if flags.Changed("collection-name") {
		cfg.Collection = opts.collection
	}
	if flags.Changed("matrix") {
		cfg.MatrixFile = opts.matrix
	}
	if flags.Changed("print") {
		cfg.PrintQueries = opts.print
	}
	if flags.Changed("print-only") {
		cfg.PrintOnly = opts.printOnly
	}
	if flags.Changed("archive") {
		cfg.Archive = opts.archive
	}
	if flags.Changed("verbose") {
		cfg.Logging.Verbose = opts.verbose
	}
	if flags.Changed("log-file") {
		cfg.Logging.LogFile = opts.logFile
	}
	return config.Normalize(cfg), nil
}
