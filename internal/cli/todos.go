package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"autotodo/internal/format"
)

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>...",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			t, err := core.Store.Add(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if app.JSON {
				return writeOut(cmd, app, t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", t.ID)
			return nil
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	var search string
	var archived bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			todos := core.Store.Filter(search, archived)
			if app.JSON {
				return writeOut(cmd, app, todos)
			}
			return format.WriteTodoTable(cmd.OutOrStdout(), todos)
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Filter by search term (all words must match)")
	cmd.Flags().BoolVar(&archived, "archived", false, "Include archived todos")
	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle completion of a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			id, err := resolveID(core.Store, args[0])
			if err != nil {
				return err
			}
			t, _ := core.Store.ToggleComplete(id)
			if app.JSON {
				return writeOut(cmd, app, t)
			}
			state := "pending"
			if t.Completed {
				state = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", t.ID, state)
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text>...",
		Short: "Replace a todo's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			id, err := resolveID(core.Store, args[0])
			if err != nil {
				return err
			}
			t, err := core.Store.Update(id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if app.JSON {
				return writeOut(cmd, app, t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", t.ID)
			return nil
		},
	}
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			id, err := resolveID(core.Store, args[0])
			if err != nil {
				return err
			}
			core.Store.Delete(id)
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}

func newMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <index>",
		Short: "Move a todo to a position (0-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			id, err := resolveID(core.Store, args[0])
			if err != nil {
				return err
			}
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index: %s", args[1])
			}
			return core.Store.Reorder(id, idx)
		},
	}
}

func newStatsCmd(app *App) *cobra.Command {
	var archived bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show collection counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			st := core.Store.Stats(archived)
			if app.JSON {
				return writeOut(cmd, app, st)
			}
			return format.WriteStats(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "Count the archived scope as well")
	return cmd
}
