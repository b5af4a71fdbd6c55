package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/listly/listly-backend/internal/export"
	"github.com/listly/listly-backend/internal/logging"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Fail projects stuck in running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		n, err := app.Sweeper.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		logging.L().Info("sweep finished", zap.Int("failed", n))
		fmt.Fprintf(cmd.OutOrStdout(), "%d stale project(s) failed\n", n)
		return nil
	},
}

var exportOpts struct {
	user   string
	format string
	out    string
}

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Export a project's items to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportOpts.user, "user", "u", "", "owner firebase uid (required)")
	f.StringVarP(&exportOpts.format, "format", "f", "csv", "csv, json or xlsx")
	f.StringVarP(&exportOpts.out, "out", "o", ".", "output directory")
	_ = exportCmd.MarkFlagRequired("user")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportOpts.format)
	if err != nil {
		return err
	}

	app, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	file, err := app.Exports.Export(cmd.Context(), exportOpts.user, args[0], format)
	if err != nil {
		return err
	}

	path := filepath.Join(exportOpts.out, file.Name)
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d item(s) to %s\n", file.Items, path)
	return nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		app.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
		return nil
	},
}
