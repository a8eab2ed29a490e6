package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/claims-triage/internal/analysis"
	"github.com/Veraticus/claims-triage/internal/cli"
	"github.com/Veraticus/claims-triage/internal/config"
	"github.com/Veraticus/claims-triage/internal/export"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/rules"
	"github.com/Veraticus/claims-triage/internal/service"
	"github.com/Veraticus/claims-triage/internal/sheets"
	"github.com/Veraticus/claims-triage/internal/tui"
	"github.com/Veraticus/claims-triage/internal/tui/themes"
)

func analyzeCmd() *cobra.Command {
	var (
		client      string
		sortKey     string
		category    string
		limit       int
		ascending   bool
		interactive bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <report.xlsx|report.csv>",
		Short: "Classify, score and queue a claims report",
		Long: `Analyze a claims report with a client's rules.

Every row is categorized by the client's edit rules, then note rules, then the
default category. Actionable claims are scored and listed as a work queue.`,
		Example: `  # Show the top of the queue
  triage analyze --client "Acme Health" report.xlsx

  # Browse the queue interactively
  triage analyze --client "Acme Health" report.xlsx --interactive

  # Only billing errors, oldest first
  triage analyze -c 3 report.csv --category "Billing Error" --sort age`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			key, err := analysis.ParseSortKey(sortKey)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cfg, result, err := runAnalysis(ctx, store, client, args[0])
			if err != nil {
				return err
			}

			if interactive {
				return tui.Run(ctx, result.Claims, result.Metrics, tui.Options{
					Title:     cfg.Name + " work queue",
					Theme:     themes.ByName(viper.GetString("ui.theme")),
					Category:  category,
					SortKey:   key,
					Ascending: ascending,
				})
			}

			queue := analysis.WorkQueue(result.Claims, analysis.QueueOptions{
				Category:  category,
				SortKey:   key,
				Ascending: ascending,
			})
			summary := analysis.Summarize(result)

			if asJSON {
				if limit > 0 && len(queue) > limit {
					queue = queue[:limit]
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Summary analysis.Summary       `json:"summary"`
					Queue   []model.ProcessedClaim `json:"queue"`
				}{summary, queue})
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(cfg.Name))
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSummary(summary))
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderQueue(queue, limit))
			return nil
		},
	}

	cmd.Flags().StringVarP(&client, "client", "c", "", "client configuration name or ID")
	cmd.Flags().StringVarP(&sortKey, "sort", "s", "", "sort column (priorityScore, category, team_name, claimId, age, netPayment, providerName)")
	cmd.Flags().StringVar(&category, "category", "", "only show one category")
	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "maximum queue rows to print (0 for all)")
	cmd.Flags().BoolVar(&ascending, "ascending", false, "sort ascending instead of descending")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the queue in a terminal UI")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary and queue as JSON")
	_ = cmd.MarkFlagRequired("client")

	return cmd
}

// runAnalysis loads a client's rules and report and runs the analysis pipeline.
func runAnalysis(ctx context.Context, store service.Storage, clientRef, path string) (*model.ClientConfig, analysis.Result, error) {
	cfg, err := resolveClient(ctx, store, clientRef)
	if err != nil {
		return nil, analysis.Result{}, err
	}

	weights, err := config.LoadScoringWeights()
	if err != nil {
		return nil, analysis.Result{}, err
	}

	sheet, err := loadSheet(path)
	if err != nil {
		return nil, analysis.Result{}, err
	}

	rs, err := rules.Load(ctx, store, cfg.ID)
	if err != nil {
		return nil, analysis.Result{}, err
	}

	result := analysis.New(weights, slog.Default()).Analyze(sheet.Rows, cfg.Mapping, rs)
	slog.Info("Analyzed report",
		"client", cfg.Name,
		"claims", result.Metrics.TotalClaims,
		"edit_rules", len(rs.EditRules),
		"note_rules", len(rs.NoteRules))

	return cfg, result, nil
}

func exportCmd() *cobra.Command {
	var (
		client   string
		xlsxPath string
		toSheets bool
	)

	cmd := &cobra.Command{
		Use:   "export <report.xlsx|report.csv>",
		Short: "Publish a work queue to a workbook or Google Sheets",
		Long: `Analyze a claims report and publish the full prioritized work queue.

Use --xlsx to write a local workbook, --sheets to update the configured
Google Sheets spreadsheet, or both.`,
		Example: `  triage export --client "Acme Health" report.xlsx --xlsx queue.xlsx
  triage export --client "Acme Health" report.xlsx --sheets`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if xlsxPath == "" && !toSheets {
				return fmt.Errorf("nothing to export to: pass --xlsx and/or --sheets")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cfg, result, err := runAnalysis(ctx, store, client, args[0])
			if err != nil {
				return err
			}
			queue := analysis.WorkQueue(result.Claims, analysis.QueueOptions{})

			writers, err := exportWriters(ctx, xlsxPath, toSheets)
			if err != nil {
				return err
			}
			if err := publishQueue(ctx, writers, queue, result.Metrics); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Exported %d queued claims for %s", len(queue), cfg.Name)))
			if xlsxPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  Workbook: %s\n", xlsxPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&client, "client", "c", "", "client configuration name or ID")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the queue to this .xlsx file")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "write the queue to Google Sheets")
	_ = cmd.MarkFlagRequired("client")

	return cmd
}

func exportWriters(ctx context.Context, xlsxPath string, toSheets bool) ([]service.WorkQueueWriter, error) {
	var writers []service.WorkQueueWriter
	if xlsxPath != "" {
		writers = append(writers, export.NewFileWriter(config.ExpandPath(xlsxPath), slog.Default()))
	}
	if toSheets {
		sheetsCfg, err := config.LoadSheetsConfig()
		if err != nil {
			return nil, fmt.Errorf("google sheets is not configured (run 'triage auth sheets'): %w", err)
		}
		w, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	return writers, nil
}

// publishQueue hands the queue to each writer in turn, stopping at the first failure.
func publishQueue(ctx context.Context, writers []service.WorkQueueWriter, queue []model.ProcessedClaim, metrics model.Metrics) error {
	for i, w := range writers {
		if err := w.Write(ctx, queue, metrics); err != nil {
			return fmt.Errorf("export %d of %d failed: %w", i+1, len(writers), err)
		}
	}
	return nil
}
