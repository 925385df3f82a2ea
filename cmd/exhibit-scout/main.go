package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiConfig "exhibit_scout/pkg/api/config"
	"exhibit_scout/pkg/api/harvest"
	"exhibit_scout/pkg/core/filing"
	"exhibit_scout/pkg/core/pipeline"
	"exhibit_scout/pkg/core/roster"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	var opts appOptions

	rootCmd := &cobra.Command{
		Use:   "exhibit-scout",
		Short: "Find and download licensing exhibits from EDGAR filings",
		Long: `exhibit-scout walks the exhibit index of 10-K, 10-Q, 8-K, S-1 and S-1/A
filings, picks out exhibits whose description mentions a licensing or
transfer keyword, and saves them under
  {output}/{entity}/{year}/{form}/{accession}/{exhibit}.html

Every saved exhibit is recorded in a CSV manifest. Exhibits that have no
downloadable link are listed in the filing folder's extras.txt.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env", nil, ".env files to load (default .env)")
	rootCmd.PersistentFlags().StringVarP(&opts.outputDir, "output", "o", "", "exhibit output directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "mirror the log to stderr")

	rootCmd.AddCommand(runCmd(&opts))
	rootCmd.AddCommand(filingCmd(&opts))
	rootCmd.AddCommand(serveCmd(&opts))
	rootCmd.AddCommand(rosterCmd(&opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func runCmd(opts *appOptions) *cobra.Command {
	var (
		rosterDir string
		workers   int
		report    bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every filing in a roster directory",
		Long: `Process every filing listed in the roster directory's
CIK##########.json and CIK##########-submissions-NNN.json files.

Example:
  exhibit-scout run --roster ./companies
  exhibit-scout run -c scout.yaml --workers 4 --report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("roster") {
				a.cfg.Paths.RosterDir = rosterDir
			}
			if cmd.Flags().Changed("workers") {
				a.cfg.Runner.Workers = workers
			}
			if cmd.Flags().Changed("report") {
				a.cfg.Runner.Report = report
			}

			start := time.Now()
			a.logger.Printf("[INFO] Started at %s", start.Format(time.RFC3339))
			runner := &pipeline.Runner{
				Processor: a.processor,
				RosterDir: a.cfg.Paths.RosterDir,
				Forms:     a.cfg.Matching.FormSet(),
				Workers:   a.cfg.Runner.Workers,
				RunID:     a.runID,
				Logger:    a.logger,
			}
			summary, runErr := runner.Run(cmd.Context())
			a.logger.Printf("[INFO] Time taken is %v", time.Since(start))
			if summary.RunID == "" {
				return runErr
			}

			pipeline.PrintSummary(cmd.OutOrStdout(), summary)
			if a.cfg.Runner.Report {
				if err := pipeline.WriteReport(a.cfg.Paths.OutputDir, summary); err != nil {
					a.logger.Printf("[ERROR] %v", err)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", a.cfg.Paths.OutputDir)
				}
			}
			return runErr
		},
	}
	cmd.Flags().StringVarP(&rosterDir, "roster", "r", "", "roster directory (overrides config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "entities processed in parallel")
	cmd.Flags().BoolVar(&report, "report", false, "write report.md and report.html to the output directory")
	return cmd
}

func filingCmd(opts *appOptions) *cobra.Command {
	var req harvest.FilingRequest
	cmd := &cobra.Command{
		Use:   "filing",
		Short: "Process a single filing",
		Long: `Process one filing without a roster.

Example:
  exhibit-scout filing --cik 320193 --name "Apple Inc." \
    --accession 0000320193-20-000096 --form 10-K --date 2020-10-30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := req.Filing()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.processor.Process(cmd.Context(), f)
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !res.Completed() {
				return fmt.Errorf("filing %s stopped at %s: %w", f.Accession, res.Reached, res.Err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.CIK, "cik", "", "entity CIK")
	cmd.Flags().StringVar(&req.Name, "name", "", "entity name used for the output folder")
	cmd.Flags().StringVar(&req.Accession, "accession", "", "accession number, e.g. 0000320193-20-000096")
	cmd.Flags().StringVar(&req.FormType, "form", "", "form type (10-K, 10-Q, 8-K, S-1, S-1/A)")
	cmd.Flags().StringVar(&req.FilingDate, "date", "", "filing date "+filing.DateLayout)
	cmd.MarkFlagRequired("cik")
	cmd.MarkFlagRequired("accession")
	cmd.MarkFlagRequired("form")
	cmd.MarkFlagRequired("date")
	return cmd
}

func serveCmd(opts *appOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the single-filing HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			defer a.Close()

			mux := http.NewServeMux()
			harvest.NewHandler(a.processor).Register(mux)
			mux.HandleFunc("/api/config", apiConfig.NewHandler(a.cfg, a.keywords).HandleConfig)

			srv := &http.Server{Addr: addr, Handler: mux}
			go func() {
				<-cmd.Context().Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "API server starting on %s...\n", addr)
			fmt.Fprintln(cmd.OutOrStdout(), "  - POST /api/filings")
			fmt.Fprintln(cmd.OutOrStdout(), "  - GET  /api/filings/recent")
			fmt.Fprintln(cmd.OutOrStdout(), "  - GET  /api/config")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func rosterCmd(opts *appOptions) *cobra.Command {
	var (
		ciks    []string
		tickers []string
		dir     string
	)
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Download submissions metadata into the roster directory",
		Long: `Download CIK##########.json and its CIK##########-submissions-NNN.json
overflow files for each entity.

Example:
  exhibit-scout roster --cik 320193 --ticker MSFT`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ciks) == 0 && len(tickers) == 0 {
				return fmt.Errorf("at least one --cik or --ticker is required")
			}
			a, err := newApp(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if dir == "" {
				dir = a.cfg.Paths.RosterDir
			}
			for _, t := range tickers {
				cik, err := roster.LookupCIK(cmd.Context(), a.client, "", t)
				if err != nil {
					return err
				}
				ciks = append(ciks, cik)
			}

			syncer := &roster.Syncer{Getter: a.client, BaseURL: a.cfg.Archive.SubmissionsURL, Dir: dir, Logger: a.logger}
			for _, cik := range ciks {
				files, err := syncer.Sync(cmd.Context(), cik)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "CIK %s: %d files written to %s\n", cik, len(files), dir)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&ciks, "cik", nil, "entity CIKs")
	cmd.Flags().StringSliceVar(&tickers, "ticker", nil, "ticker symbols resolved to CIKs")
	cmd.Flags().StringVarP(&dir, "roster", "r", "", "roster directory (overrides config)")
	return cmd
}
