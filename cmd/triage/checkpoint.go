package main

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claims-triage/internal/cli"
	"github.com/Veraticus/claims-triage/internal/storage"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete database checkpoints.

Checkpoints snapshot the local rule database before risky changes such as a
large 'clients apply' or a triage session. They require the sqlite driver.`,
		Example: `  triage checkpoint create --tag before-acme-import
  triage checkpoint list
  triage checkpoint restore before-acme-import`,
	}

	cmd.AddCommand(createCheckpointCmd())
	cmd.AddCommand(listCheckpointsCmd())
	cmd.AddCommand(restoreCheckpointCmd())
	cmd.AddCommand(deleteCheckpointCmd())

	return cmd
}

// withCheckpoints opens the local database and hands its checkpoint manager to fn.
func withCheckpoints(cmd *cobra.Command, fn func(*storage.CheckpointManager) error) error {
	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sqlite, err := sqliteStore(store)
	if err != nil {
		return err
	}
	manager, err := sqlite.NewCheckpointManager()
	if err != nil {
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return fn(manager)
}

func createCheckpointCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCheckpoints(cmd, func(m *storage.CheckpointManager) error {
				info, err := m.Create(cmd.Context(), tag, description)
				if err != nil {
					return fmt.Errorf("failed to create checkpoint: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Created checkpoint %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(info.ID),
					formatFileSize(info.FileSize))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "checkpoint name (generated from the time if empty)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what the checkpoint is for")
	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCheckpoints(cmd, func(m *storage.CheckpointManager) error {
				checkpoints, err := m.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list checkpoints: %w", err)
				}
				if len(checkpoints) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.SubtitleStyle.Render("No checkpoints found."))
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, strings.Join([]string{
					cli.BoldStyle.Render("NAME"),
					cli.BoldStyle.Render("CREATED"),
					cli.BoldStyle.Render("SIZE"),
					cli.BoldStyle.Render("RULES"),
					cli.BoldStyle.Render("CLIENTS"),
					cli.BoldStyle.Render("DESCRIPTION"),
				}, "\t"))
				for _, cp := range checkpoints {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
						cli.InfoStyle.Render(cp.ID),
						formatRelativeTime(cp.CreatedAt),
						formatFileSize(cp.FileSize),
						cp.RowCounts["edit_rules"]+cp.RowCounts["note_rules"],
						cp.RowCounts["client_configs"],
						cp.Description)
				}
				return w.Flush()
			})
		},
	}
}

func restoreCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Replace the database with a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			sqlite, err := sqliteStore(store)
			if err != nil {
				_ = store.Close()
				return err
			}
			path := sqlite.Path()
			// RestoreCheckpoint needs the database closed.
			if err := store.Close(); err != nil {
				return fmt.Errorf("failed to close database: %w", err)
			}

			if !force && !confirm(cmd, fmt.Sprintf("This will replace %s with checkpoint %s.", path, id)) {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtitleStyle.Render("Restore canceled."))
				return nil
			}

			if err := storage.RestoreCheckpoint(path, id); err != nil {
				return fmt.Errorf("failed to restore checkpoint: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Restored from checkpoint %s\n",
				cli.SuccessStyle.Render(cli.SuccessIcon), cli.InfoStyle.Render(id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func deleteCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !force && !confirm(cmd, fmt.Sprintf("This will permanently delete checkpoint %s.", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtitleStyle.Render("Deletion canceled."))
				return nil
			}
			return withCheckpoints(cmd, func(m *storage.CheckpointManager) error {
				if err := m.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete checkpoint: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted checkpoint %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon), cli.InfoStyle.Render(id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func confirm(cmd *cobra.Command, warning string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\nContinue? (y/N) ", cli.WarningStyle.Render(cli.WarningIcon), warning)
	response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(response)), "y")
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
