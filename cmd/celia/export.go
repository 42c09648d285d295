package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minicelia/celia/internal/config"
	"github.com/minicelia/celia/internal/export"
	"github.com/minicelia/celia/internal/store"
	"github.com/minicelia/celia/internal/types"
	"github.com/spf13/cobra"
)

var (
	exportOutDir     string
	exportExpediente string
)

// exportFormats is the render order when no format argument is given.
var exportFormats = []string{"md", "doc", "json", "chat", "pdf"}

var exportCmd = &cobra.Command{
	Use:   "export [format]",
	Short: "Write export files from the persisted session snapshot",
	Long: "Restore the last saved session snapshot and write export files " +
		"without running the server. Formats: md, doc, json, chat, pdf. " +
		"With no argument all formats are written.",
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOutDir, "out", "",
		"Output directory (overrides config and CELIA_EXPORT_DIR)")
	exportCmd.Flags().StringVar(&exportExpediente, "expediente", "",
		"Expediente identifier for the PDF naming and identity box")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	outDir := exportOutDir
	if outDir == "" {
		outDir = cfg.Export.Dir
	}

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	payload, savedAt, err := db.LoadSnapshot(cmd.Context())
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	var snap types.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	formats := exportFormats
	if len(args) == 1 {
		formats = []string{args[0]}
	}

	// The CLI operates on the local database directly, so every format is
	// available without the privileged bearer key.
	engine := export.NewEngine(exportExpediente)
	for _, format := range formats {
		file, err := engine.Render(format, snap, true)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		path := filepath.Join(outDir, file.Name)
		if err := os.WriteFile(path, file.Content, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "snapshot from %s exported to %s\n",
		savedAt.Format("2006-01-02 15:04"), outDir)
	return nil
}
