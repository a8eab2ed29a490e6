package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claims-triage/internal/cli"
)

func teamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Manage operational teams",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			teams, err := store.ListTeams(ctx)
			if err != nil {
				return fmt.Errorf("failed to list teams: %w", err)
			}
			if len(teams) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No teams found. Use 'triage teams add' to create one."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTeams(teams))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			team, err := store.CreateTeam(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to create team: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created team %q (ID: %d)", team.Name, team.ID)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a team that owns no categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			team, err := resolveTeam(ctx, store, args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteTeam(ctx, team.ID); err != nil {
				return fmt.Errorf("failed to delete team %q: %w", team.Name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted team %q", team.Name)))
			return nil
		},
	})

	return cmd
}

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage claim categories",
		Long:  `List, add, and delete the claim categories rules assign claims to.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}
			if len(categories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No categories found. Use 'triage categories add' to create one."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCategories(categories))
			return nil
		},
	})

	var (
		team string
		l1   bool
	)
	add := &cobra.Command{
		Use:     "add <name>",
		Short:   "Add a category owned by a team",
		Example: `  triage categories add "Billing Error" --team Billing --l1-monitor`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			owner, err := resolveTeam(ctx, store, team)
			if err != nil {
				return err
			}
			category, err := store.CreateCategory(ctx, args[0], owner.ID, l1)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Created category %q for %s (ID: %d)", category.Name, category.TeamName, category.ID)))
			return nil
		},
	}
	add.Flags().StringVar(&team, "team", "", "owning team name or ID")
	add.Flags().BoolVar(&l1, "l1-monitor", false, "send claims in this category to the L1 monitor")
	_ = add.MarkFlagRequired("team")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a category and the rules that use it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := resolveCategory(ctx, store, args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteCategory(ctx, category.ID); err != nil {
				return fmt.Errorf("failed to delete category %q: %w", category.Name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %q", category.Name)))
			return nil
		},
	})

	return cmd
}
