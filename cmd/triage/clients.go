package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claims-triage/internal/cli"
	"github.com/Veraticus/claims-triage/internal/clientconfig"
	"github.com/Veraticus/claims-triage/internal/config"
)

func clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage client configurations",
		Long: `List, apply, export, and delete client configurations.

A client configuration maps the logical claim fields onto the column headers
of one client's reports, lists the teams that work the client and carries its
edit and note rules. 'apply' and 'export' use a YAML file:

  name: Acme Health
  columns:
    claimId: "Claim #"
    state: State
    edit: Edit
    notes: Notes
  teams: [Billing, Escalations]
  rules:
    edit:
      - {text: E100, category: Billing Error}
    note:
      - {text: urgent, category: Escalation}`,
	}

	cmd.AddCommand(listClientsCmd())
	cmd.AddCommand(showClientCmd())
	cmd.AddCommand(applyClientCmd())
	cmd.AddCommand(exportClientCmd())
	cmd.AddCommand(setClientTeamsCmd())
	cmd.AddCommand(deleteClientCmd())

	return cmd
}

func listClientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List client configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			configs, err := store.ListClientConfigs(ctx)
			if err != nil {
				return fmt.Errorf("failed to list client configurations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderClients(configs))
			return nil
		},
	}
}

func showClientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name|id>",
		Short: "Print a client configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cfg, err := resolveClient(ctx, store, args[0])
			if err != nil {
				return err
			}
			f, err := clientconfig.Export(ctx, store, cfg.ID)
			if err != nil {
				return err
			}
			data, err := clientconfig.Marshal(f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func applyClientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <client.yaml>",
		Short: "Create or update a client from a YAML file",
		Long: `Create or update the client named in the file. Its team associations are
replaced by the file's teams and its rules are upserted; existing rules that
the file does not mention are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := clientconfig.Load(config.ExpandPath(args[0]))
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			res, err := clientconfig.Apply(ctx, store, f, slog.Default())
			if err != nil {
				return err
			}

			verb := "Updated"
			if res.Created {
				verb = "Created"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s client %q (ID: %d)", verb, res.Config.Name, res.Config.ID)))
			fmt.Fprintf(cmd.OutOrStdout(), "  Teams: %d, edit rules: %d, note rules: %d\n",
				len(res.Config.TeamIDs), res.EditRules, res.NoteRules)
			return nil
		},
	}
}

func exportClientCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <name|id>",
		Short: "Write a client configuration to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cfg, err := resolveClient(ctx, store, args[0])
			if err != nil {
				return err
			}
			f, err := clientconfig.Export(ctx, store, cfg.ID)
			if err != nil {
				return err
			}
			data, err := clientconfig.Marshal(f)
			if err != nil {
				return err
			}
			if output == "" {
				output = cfg.Name + ".yaml"
			}
			if err := os.WriteFile(config.ExpandPath(output), data, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %s", output)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <client name>.yaml)")
	return cmd
}

func setClientTeamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-teams <client> [team...]",
		Short: "Replace the teams that work a client",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cfg, err := resolveClient(ctx, store, args[0])
			if err != nil {
				return err
			}
			ids := make([]int, 0, len(args)-1)
			for _, ref := range args[1:] {
				team, err := resolveTeam(ctx, store, ref)
				if err != nil {
					return err
				}
				ids = append(ids, team.ID)
			}
			if err := store.SetClientTeams(ctx, cfg.ID, ids); err != nil {
				return fmt.Errorf("failed to save teams for %q: %w", cfg.Name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s is now worked by %d team(s)", cfg.Name, len(ids))))
			return nil
		},
	}
}

func deleteClientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a client configuration and its rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cfg, err := resolveClient(ctx, store, args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteClientConfig(ctx, cfg.ID); err != nil {
				return fmt.Errorf("failed to delete client %q: %w", cfg.Name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted client %q", cfg.Name)))
			return nil
		},
	}
}
