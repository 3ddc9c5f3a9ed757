// Package main contains the cli implementation of the tool. It uses
// cobra package for cli tool implementation.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/spf13/cobra"

	"sqlsift/internal/analyzer"
	"sqlsift/internal/catalog"
	"sqlsift/internal/config"
	"sqlsift/internal/dialect"
	_ "sqlsift/internal/dialect/mysql"
	_ "sqlsift/internal/dialect/postgresql"
	_ "sqlsift/internal/dialect/sqlite"
	"sqlsift/internal/diag"
	"sqlsift/internal/ingest/mysql"
	"sqlsift/internal/output"
	"sqlsift/internal/schemabuild"
	"sqlsift/internal/suppress"
)

type analyzeFlags struct {
	schemaFile string
	configFile string
	dialect    string
	format     string
	maxErrors  int
	disabled   []string
	workers    int
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "sqlsift",
		Short: "Connectionless SQL static analyzer",
	}

	rootCmd.AddCommand(analyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func analyzeCmd() *cobra.Command {
	flags := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze <query.sql> [query.sql ...]",
		Short: "Analyze query files against a schema",
		Long: `Analyze parses one or more DDL statements into a schema catalog, then
checks each query file against it without ever connecting to a live
database.

Examples:
  sqlsift analyze --schema schema.sql query.sql
  sqlsift analyze --schema schema.sql --dialect mysql --format json *.sql
  sqlsift analyze --schema schema.sql --config sqlsift.toml query.sql`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runAnalyze(args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.schemaFile, "schema", "", "Path to a DDL schema file (required)")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to an optional TOML config file")
	cmd.Flags().StringVar(&flags.dialect, "dialect", "", "SQL dialect: postgresql, mysql, or sqlite (overrides config)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Output format: text or json")
	cmd.Flags().IntVar(&flags.maxErrors, "max-errors", 0, "Stop reporting after N diagnostics (0 means unlimited)")
	cmd.Flags().StringSliceVar(&flags.disabled, "disable", nil, "Diagnostic codes to suppress (e.g. E0006)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Bounded worker pool size (0 means number of CPUs)")

	return cmd
}

func runAnalyze(files []string, flags *analyzeFlags) error {
	if flags.schemaFile == "" {
		return fmt.Errorf("--schema is required")
	}

	cfg := config.Default()
	if flags.configFile != "" {
		loaded, err := config.Load(flags.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyFlagOverrides(&cfg, flags)

	dialectName, err := cfg.DialectName()
	if err != nil {
		return err
	}
	predicates, err := dialect.Get(dialectName)
	if err != nil {
		return err
	}

	schemaSQL, err := os.ReadFile(flags.schemaFile)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	db, buildDiags, err := buildCatalog(string(schemaSQL), predicates)
	if err != nil {
		return fmt.Errorf("failed to parse schema: %w", err)
	}

	results := analyzeFiles(files, db, predicates, cfg, flags.workers)

	all := append([]diag.Diagnostic{}, buildDiags...)
	for _, r := range results {
		if r.err != nil {
			return r.err
		}
		all = append(all, r.diags...)
	}

	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}
	rendered, err := formatter.Format(all)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(rendered)

	if hasError(all) {
		os.Exit(1)
	}
	return nil
}

func applyFlagOverrides(cfg *config.AnalyzerConfig, flags *analyzeFlags) {
	if flags.dialect != "" {
		cfg.Dialect = flags.dialect
	}
	if flags.maxErrors != 0 {
		cfg.MaxErrors = flags.maxErrors
	}
	if len(flags.disabled) != 0 {
		cfg.DisabledRules = append(cfg.DisabledRules, flags.disabled...)
	}
}

// buildCatalog parses schemaSQL into a catalog.Database. It builds its
// own Ingester to back CREATE VIEW body inference; query files are
// parsed separately by each worker in analyzeFiles.
func buildCatalog(schemaSQL string, d dialect.Predicates) (*catalog.Database, []diag.Diagnostic, error) {
	ing := mysql.NewIngester()
	stmts, err := ing.ParseDDL(schemaSQL)
	if err != nil {
		return nil, nil, err
	}

	db, buildDiags := schemabuild.Build(stmts, d, ing)
	return db, buildDiags, nil
}

type fileResult struct {
	file  string
	diags []diag.Diagnostic
	err   error
}

// analyzeFiles runs Analyzer over each query file with a bounded
// worker pool (sync.WaitGroup + buffered channel), one Ingester per
// goroutine against the shared, read-only catalog.
func analyzeFiles(files []string, db *catalog.Database, d dialect.Predicates, cfg config.AnalyzerConfig, requested int) []fileResult {
	workers := requested
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if len(files) < workers {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	type job struct {
		idx  int
		file string
	}
	jobs := make(chan job, len(files))
	results := make([]fileResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ing := mysql.NewIngester()
			for j := range jobs {
				results[j.idx] = analyzeOne(ing, j.file, db, d, cfg)
			}
		}()
	}
	for i, f := range files {
		jobs <- job{idx: i, file: f}
	}
	close(jobs)
	wg.Wait()

	return results
}

func analyzeOne(ing *mysql.Ingester, file string, db *catalog.Database, d dialect.Predicates, cfg config.AnalyzerConfig) fileResult {
	raw, err := os.ReadFile(file)
	if err != nil {
		return fileResult{file: file, err: fmt.Errorf("failed to read %s: %w", file, err)}
	}

	stmts, err := ing.ParseQuery(string(raw))
	if err != nil {
		return fileResult{file: file, diags: []diag.Diagnostic{{
			Code:     diag.ParseError,
			Severity: diag.SeverityError,
			Span:     diag.Span{File: file},
			Message:  err.Error(),
		}}}
	}

	diags := analyzer.Analyze(context.Background(), db, file, stmts, analyzer.Options{
		Dialect:       d,
		DisabledRules: cfg.DisabledRuleSet(),
		MaxErrors:     cfg.MaxErrors,
		Suppressions:  suppress.Build(string(raw)),
	})
	return fileResult{file: file, diags: diags}
}

func hasError(diags []diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}
