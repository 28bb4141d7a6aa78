package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"autotodo/internal/storage"
)

func newThemeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme [light|dark]",
		Short: "Show or set the persisted theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(app)
			if err != nil {
				return err
			}
			defer core.Close()

			if len(args) == 0 {
				v, ok := core.Manager.Get(storage.SlotTheme)
				if !ok {
					v = "(system preference)"
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}
			switch args[0] {
			case "light", "dark":
				core.Manager.Set(storage.SlotTheme, args[0])
				fmt.Fprintln(cmd.OutOrStdout(), args[0])
				return nil
			default:
				return fmt.Errorf("invalid theme: %s (expected light|dark)", args[0])
			}
		},
	}
	return cmd
}
