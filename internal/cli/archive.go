package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a todo (kept, but hidden from the active view)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setArchived(cmd, app, args[0], true)
		},
	}
}

func newUnarchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive <id>",
		Short: "Return an archived todo to the active view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setArchived(cmd, app, args[0], false)
		},
	}
}

func setArchived(cmd *cobra.Command, app *App, arg string, archived bool) error {
	core, err := openCore(app)
	if err != nil {
		return err
	}
	defer core.Close()

	id, err := resolveID(core.Store, arg)
	if err != nil {
		return err
	}
	t, _ := core.Store.SetArchived(id, archived)
	if app.JSON {
		return writeOut(cmd, app, t)
	}
	verb := "archived"
	if !archived {
		verb = "unarchived"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, t.ID)
	return nil
}

func newArchiveDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive-done",
		Short: "Archive every completed todo",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			n := core.Store.ArchiveAllCompleted()
			if app.JSON {
				return writeOut(cmd, app, map[string]int{"archived": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %d\n", n)
			return nil
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all todos and stored state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			core.Manager.Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
