package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"autotodo/internal/storage"
)

func newStorageCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Storage diagnostics and backup",
	}
	cmd.AddCommand(newStorageInfoCmd(app))
	cmd.AddCommand(newStorageBackupCmd(app))
	cmd.AddCommand(newStorageRestoreCmd(app))
	return cmd
}

func newStorageInfoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show backend availability, fallback state and guard risk",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			info := core.Manager.Info()
			info["guard"] = core.Guard.Info()
			return writeOut(cmd, app, info)
		},
	}
}

func newStorageBackupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write a backup of the todos slot now",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			core.Guard.BackupNow(context.Background())
			fmt.Fprintln(cmd.OutOrStdout(), "backup written")
			return nil
		},
	}
}

func newStorageRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore the todos slot from the most recent backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			payload, ok := core.Guard.Restore(context.Background())
			if !ok {
				return fmt.Errorf("no backup available")
			}
			if !core.Manager.Set(storage.SlotTodos, payload) {
				return fmt.Errorf("restore write rejected")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "restored")
			return nil
		},
	}
}
