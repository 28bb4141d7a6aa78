package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"autotodo/internal/config"
	"autotodo/internal/format"
	"autotodo/internal/storage"
	"autotodo/internal/todo"
	"autotodo/internal/tui"
)

type App struct {
	DataDir string
	JSON    bool
	Pretty  bool

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "autotodo",
		Short:        "Local todo list with resilient storage",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  autotodo

  # Scriptable commands
  autotodo add "Buy groceries"
  autotodo list --search "groceries"
  autotodo done 3f2a
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		app.cfg = cfg
		// CLI runs are one-shot; keep the logger quiet unless asked.
		if strings.TrimSpace(os.Getenv("AUTOTODO_DEBUG")) != "" {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.WarnLevel)
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.DataDir, "dir", envOr("AUTOTODO_DIR", ""), "Path to data dir (default: platform config dir)")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "JSON output")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newArchiveCmd(app))
	cmd.AddCommand(newUnarchiveCmd(app))
	cmd.AddCommand(newArchiveDoneCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newClearCmd(app))
	cmd.AddCommand(newThemeCmd(app))
	cmd.AddCommand(newStorageCmd(app))
	cmd.AddCommand(newKeysCmd(app))

	return cmd
}

func runTUI(app *App) error {
	core, err := openCore(app)
	if err != nil {
		return err
	}
	defer core.Close()
	return tui.Run(core.Store, core.Manager, core.Guard, tui.Options{
		Debounce: time.Duration(app.cfg.DebounceMs) * time.Millisecond,
		Theme:    app.cfg.Theme,
	})
}

// Core bundles the wired subsystems a command needs.
type Core struct {
	Store   *todo.Store
	Manager *storage.Manager
	Guard   *storage.Guard

	backup storage.BackupStore
	cancel context.CancelFunc
}

func (c *Core) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.backup != nil {
		_ = c.backup.Close()
	}
}

func openCore(app *App) (*Core, error) {
	dir := app.DataDir
	if dir == "" {
		dir = app.cfg.DataDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	manager := storage.DefaultManager(filepath.Join(dir, "kv"))
	if manager.Detector().Restricted() {
		fmt.Fprintln(os.Stderr, "warning: storage quota looks restricted; falling back to lower tiers under pressure")
	}

	ctx, cancel := context.WithCancel(context.Background())

	// The durable backup store is optional: without it the guard keeps the
	// backup under a distinct primary slot.
	backup, err := storage.OpenBackupStore(ctx, dir)
	if err != nil {
		log.Warn("backup store unavailable", "err", err)
		backup = nil
	}
	guard := storage.NewGuard(manager, storage.GuardOpts{
		Backup: backup,
		Notify: func(msg string) { fmt.Fprintln(os.Stderr, msg) },
	})
	guard.Start(ctx, app.cfg.GuardInterval)

	st := todo.NewStore(manager, guard)
	st.Load(ctx)

	return &Core{Store: st, Manager: manager, Guard: guard, backup: backup, cancel: cancel}, nil
}

// resolveID accepts a full id or a unique prefix (listings show truncated
// ids).
func resolveID(st *todo.Store, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("empty id")
	}
	if _, ok := st.Get(arg); ok {
		return arg, nil
	}
	var match string
	for _, t := range st.All() {
		if strings.HasPrefix(t.ID, arg) {
			if match != "" {
				return "", fmt.Errorf("ambiguous id prefix: %s", arg)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("todo not found: %s", arg)
	}
	return match, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.Pretty)
}
