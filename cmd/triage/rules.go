package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claims-triage/internal/cli"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and prune classification rules",
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(deleteRuleCmd())
	cmd.AddCommand(allRulesCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	var (
		client   string
		ruleType string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cfg, err := resolveClient(ctx, store, client)
			if err != nil {
				return err
			}

			types := []model.RuleType{model.RuleTypeEdit, model.RuleTypeNote}
			if ruleType != "" {
				t, err := parseRuleType(ruleType)
				if err != nil {
					return err
				}
				types = []model.RuleType{t}
			}

			for _, t := range types {
				rules, err := store.ListRules(ctx, cfg.ID, t)
				if err != nil {
					return fmt.Errorf("failed to list %s rules: %w", t, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("%s %s rules (%d)", cfg.Name, t, len(rules))))
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRules(rules))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&client, "client", "c", "", "client configuration name or ID")
	cmd.Flags().StringVar(&ruleType, "type", "", "only list one rule type (edit or note)")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func addRuleCmd() *cobra.Command {
	var (
		client   string
		ruleType string
		category string
	)

	cmd := &cobra.Command{
		Use:     "add <text>",
		Short:   "Add or repoint a single rule",
		Example: `  triage rules add --client "Acme Health" --type note --category Escalation "appeal"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := parseRuleType(ruleType)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cfg, err := resolveClient(ctx, store, client)
			if err != nil {
				return err
			}
			cat, err := resolveCategory(ctx, store, category)
			if err != nil {
				return err
			}

			text := args[0]
			if err := store.UpsertRules(ctx, cfg.ID, t, []service.RuleAssignment{{Text: text, CategoryID: cat.ID}}); err != nil {
				return fmt.Errorf("failed to save rule: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s rule %q → %s", t, text, cat.Name)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&client, "client", "c", "", "client configuration name or ID")
	cmd.Flags().StringVar(&ruleType, "type", "", "rule type (edit or note)")
	cmd.Flags().StringVar(&category, "category", "", "category name or ID")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func deleteRuleCmd() *cobra.Command {
	var (
		client   string
		ruleType string
	)

	cmd := &cobra.Command{
		Use:   "delete <text>",
		Short: "Delete one rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := parseRuleType(ruleType)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cfg, err := resolveClient(ctx, store, client)
			if err != nil {
				return err
			}
			if err := store.DeleteRule(ctx, cfg.ID, t, args[0]); err != nil {
				return fmt.Errorf("failed to delete %s rule %q: %w", t, args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s rule %q", t, args[0])))
			return nil
		},
	}

	cmd.Flags().StringVarP(&client, "client", "c", "", "client configuration name or ID")
	cmd.Flags().StringVar(&ruleType, "type", "", "rule type (edit or note)")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func allRulesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Dump every rule across all clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rs, err := store.ListAllRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rs)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("Edit rules (%d)", len(rs.EditRules))))
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRules(rs.EditRules))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("Note rules (%d)", len(rs.NoteRules))))
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRules(rs.NoteRules))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
