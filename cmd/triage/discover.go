package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claims-triage/internal/cli"
	"github.com/Veraticus/claims-triage/internal/discovery"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/rules"
	"github.com/Veraticus/claims-triage/internal/service"
)

func discoverCmd() *cobra.Command {
	var client string

	cmd := &cobra.Command{
		Use:   "discover <report.xlsx|report.csv>",
		Short: "List edit codes and notes no rule covers yet",
		Long: `Scan the actionable rows of a claims report for edit codes and note texts
that none of the client's rules match. Use 'triage triage' to assign them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			_, found, err := runDiscovery(ctx, store, client, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderDiscovery(found))
			return nil
		},
	}

	cmd.Flags().StringVarP(&client, "client", "c", "", "client configuration name or ID")
	_ = cmd.MarkFlagRequired("client")

	return cmd
}

func runDiscovery(ctx context.Context, store service.Storage, clientRef, path string) (*model.ClientConfig, discovery.Result, error) {
	cfg, err := resolveClient(ctx, store, clientRef)
	if err != nil {
		return nil, discovery.Result{}, err
	}
	if err := discovery.CheckMapping(cfg.Mapping); err != nil {
		return nil, discovery.Result{}, err
	}

	sheet, err := loadSheet(path)
	if err != nil {
		return nil, discovery.Result{}, err
	}

	rs, err := rules.Load(ctx, store, cfg.ID)
	if err != nil {
		return nil, discovery.Result{}, err
	}

	found := discovery.Discover(sheet.Rows, cfg.Mapping, rules.Texts(rs.EditRules), rules.Texts(rs.NoteRules))
	slog.Info("Discovered uncovered values",
		"client", cfg.Name,
		"edits", len(found.Edits),
		"notes", len(found.Notes))

	return cfg, found, nil
}

func triageCmd() *cobra.Command {
	var (
		client string
		only   string
	)

	cmd := &cobra.Command{
		Use:   "triage <report.xlsx|report.csv>",
		Short: "Interactively turn uncovered values into rules",
		Long: `Discover the edit codes and notes no rule covers yet and assign each one a
category. Assignments are saved as rules when each rule type is finished;
values you skip will be offered again next time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var types []model.RuleType
			switch only {
			case "":
				types = []model.RuleType{model.RuleTypeEdit, model.RuleTypeNote}
			default:
				t, err := parseRuleType(only)
				if err != nil {
					return err
				}
				types = []model.RuleType{t}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cfg, found, err := runDiscovery(ctx, store, client, args[0])
			if err != nil {
				return err
			}
			if found.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Every value in this report is already covered by a rule."))
				return nil
			}

			categories, err := store.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			prompter := cli.NewTriagePrompter(os.Stdin, cmd.OutOrStdout())
			for _, t := range types {
				items := found.Edits
				if t == model.RuleTypeNote {
					items = found.Notes
				}
				if len(items) == 0 {
					continue
				}

				stopped, err := triageQueue(ctx, store, prompter, cfg.ID, discovery.NewQueue(t, items), categories)
				if err != nil || stopped {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&client, "client", "c", "", "client configuration name or ID")
	cmd.Flags().StringVar(&only, "type", "", "only triage one rule type (edit or note)")
	_ = cmd.MarkFlagRequired("client")

	return cmd
}

// triageQueue runs one prompt session and saves its assignments. It reports
// whether the user asked to stop.
func triageQueue(ctx context.Context, store service.RuleStore, prompter *cli.TriagePrompter, clientID int,
	q *discovery.Queue, categories []model.Category,
) (bool, error) {
	handler := cli.NewInterruptHandler(os.Stdout)
	sessionCtx := handler.HandleInterrupts(ctx, func() int { return q.Len() - q.Pending() })

	stats, err := prompter.Triage(sessionCtx, q, categories)
	if handler.WasInterrupted() {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if assignments := q.Assignments(); len(assignments) > 0 {
		if err := store.UpsertRules(ctx, clientID, q.RuleType(), assignments); err != nil {
			return false, fmt.Errorf("failed to save %s rules: %w", q.RuleType(), err)
		}
		slog.Info("Saved rules", "type", q.RuleType(), "count", len(assignments))
	}

	prompter.ShowCompletion(q.RuleType(), stats)
	return stats.Stopped, nil
}
