package cli

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"autotodo/internal/controller"
	"autotodo/internal/format"
	"autotodo/internal/shortcut"
)

func newKeysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Show the keyboard shortcut table",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			d := shortcut.NewDispatcher()
			c := controller.New(controller.Opts{
				Store:      core.Store,
				Storage:    core.Manager,
				Dispatcher: d,
			})
			c.Init()

			if app.JSON {
				return writeOut(cmd, app, d.Stats())
			}

			md := format.ShortcutMarkdown(d.Entries())
			style := "light"
			if c.Theme() == controller.ThemeDark {
				style = "dark"
			}
			r, err := glamour.NewTermRenderer(
				// Avoid WithAutoStyle(): it can block waiting on terminal queries.
				glamour.WithStandardStyle(style),
				glamour.WithWordWrap(80),
			)
			if err != nil {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			out, err := r.Render(md)
			if err != nil {
				// Plain markdown still reads fine.
				out = md
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
