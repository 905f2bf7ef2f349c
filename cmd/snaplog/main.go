package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"snaplog-go/internal/app"
	"snaplog-go/internal/config"
	"snaplog-go/internal/core"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Serve", "CascadeRevert").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.New(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "snaplog",
	Short: "Versioned change log and revert engine for agent-edited projects",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitProjectDir string

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		if configInitProjectDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("determining working directory: %w", err)
			}
			configInitProjectDir = wd
		}

		cfg := config.NewConfig(configInitProjectDir, defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Project Dir: %s\n", cfg.ProjectDir)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Project Dir:  %s\n", cfg.ProjectDir)
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Server Addr:  %s\n", cfg.Server.Addr)
		fmt.Printf("Database:     %s\n", cfg.Database.Type)
		fmt.Printf("Backups:      %s", cfg.Backups.Type)
		if cfg.Backups.Passphrase != "" {
			fmt.Printf(" (encrypted)")
		}
		fmt.Println()
		return nil
	},
}

// serve command

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Serve")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return a.Serve(ctx)
	},
}

// snapshots command

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List all snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListSnapshots")
		if err != nil {
			return err
		}
		defer a.Close()

		summaries, err := a.Service().ListSnapshots()
		if err != nil {
			return err
		}

		for _, sm := range summaries {
			ts := time.UnixMilli(sm.Timestamp).UTC().Format(time.RFC3339)
			fmt.Printf("%s  %s  %3d change(s)  %s\n", sm.ID, ts, sm.ChangeCount, sm.Label)
		}
		return nil
	},
}

// show command

var showCmd = &cobra.Command{
	Use:   "show <snapshot-id>",
	Short: "Show full metadata for one snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ShowSnapshot")
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.Service().GetSnapshot(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Snapshot: %s\n", snap.ID)
		fmt.Printf("Time:     %s\n", time.UnixMilli(snap.Timestamp).UTC().Format(time.RFC3339))
		fmt.Printf("Label:    %s\n", snap.Label)
		if snap.SessionID != "" {
			fmt.Printf("Session:  %s\n", snap.SessionID)
		}
		fmt.Println("Changes:")
		for _, ch := range snap.Changes {
			fmt.Printf("  %-6s  %s\n", ch.Action, ch.Path)
		}
		return nil
	},
}

// record command

var (
	recordLabel   string
	recordSession string
)

var recordCmd = &cobra.Command{
	Use:   "record <path>...",
	Short: "Record a snapshot of the given files before mutating them",
	Long: `Record captures the current content of the given project-absolute paths
as a snapshot. Files that exist are recorded as edits with their current
content backed up; files that do not exist yet are recorded as creates.
Run it before applying a mutation you may want to undo.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RecordSnapshot")
		if err != nil {
			return err
		}
		defer a.Close()

		changes := make([]core.ChangeInput, 0, len(args))
		for _, raw := range args {
			fp, err := core.NewFilePath(raw)
			if err != nil {
				return err
			}
			exists, err := a.Workspace().Exists(fp)
			if err != nil {
				return err
			}
			if !exists {
				changes = append(changes, core.ChangeInput{Path: fp.String(), Action: core.ActionCreate})
				continue
			}
			content, err := a.Workspace().ReadFile(fp)
			if err != nil {
				return err
			}
			changes = append(changes, core.ChangeInput{Path: fp.String(), Action: core.ActionEdit, Before: content})
		}

		snap, err := a.Service().CreateSnapshot(recordLabel, recordSession, changes)
		if err != nil {
			return err
		}

		fmt.Printf("Recorded snapshot %s (%d change(s))\n", snap.ID, len(snap.Changes))
		return nil
	},
}

// revert commands

var revertCmd = &cobra.Command{
	Use:   "revert <snapshot-id>",
	Short: "Undo every change recorded in one snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RevertSnapshot")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().RevertSnapshot(args[0]); err != nil {
			return err
		}
		fmt.Printf("Reverted snapshot %s\n", args[0])
		return nil
	},
}

var revertFileCmd = &cobra.Command{
	Use:   "revert-file <snapshot-id> <path>",
	Short: "Undo the recorded change for one file in one snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RevertFile")
		if err != nil {
			return err
		}
		defer a.Close()

		ch, err := a.Service().RevertPath(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Reverted %s (%s)\n", ch.Path, ch.Action)
		return nil
	},
}

var cascadeYes bool

var cascadeCmd = &cobra.Command{
	Use:   "cascade <snapshot-id>...",
	Short: "Revert multiple snapshots together, newest first",
	Long: `Cascade reverts the given snapshots as one unit. Ids must be ordered
newest first. Files touched by more than one snapshot are restored to the
state before the earliest included change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cascadeYes && term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Printf("Revert %d snapshot(s)? [y/N] ", len(args))
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading confirmation: %w", err)
			}
			if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		a, err := newApp("CascadeRevert")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Service().CascadeRevert(args)
		if err != nil {
			return err
		}

		for _, r := range result.Reverted {
			fmt.Printf("reverted  %-6s  %s  (snapshot %s)\n", r.Action, r.Path, r.SnapshotID)
		}
		for _, f := range result.Failed {
			fmt.Printf("FAILED    %-6s  %s  (snapshot %s): %s\n", f.Action, f.Path, f.SnapshotID, f.Error)
		}
		for _, id := range result.MissingSnapshots {
			fmt.Printf("missing snapshot: %s\n", id)
		}
		return nil
	},
}

// pending command

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Show the pending-change ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListPending")
		if err != nil {
			return err
		}
		defer a.Close()

		pending, err := a.Service().PendingChanges()
		if err != nil {
			return err
		}

		if len(pending) == 0 {
			fmt.Println("No pending changes.")
			return nil
		}
		for path, ch := range pending {
			fmt.Printf("%-9s %-6s %s", ch.Status, ch.Action, path)
			if ch.SnapshotID != "" {
				fmt.Printf("  (snapshot %s)", ch.SnapshotID)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configListCmd)
	configInitCmd.Flags().StringVar(&configInitProjectDir, "project-dir", "", "workspace root (default: current directory)")

	recordCmd.Flags().StringVar(&recordLabel, "label", "", "human-readable snapshot label")
	recordCmd.Flags().StringVar(&recordSession, "session", "", "session id grouping snapshots from one conversation")

	cascadeCmd.Flags().BoolVarP(&cascadeYes, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(configCmd, serveCmd, snapshotsCmd, showCmd, recordCmd, revertCmd, revertFileCmd, cascadeCmd, pendingCmd)
}
