package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"crinf-backoffice/internal/snapshot"
	"crinf-backoffice/internal/supabase"
)

var snapshotOut string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Full-state backup documents",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the database to a backup document",
	Long: `Reads every collection and the site configuration from DATABASE_URL
and writes one backup document. Without --out the file is named
<SNAPSHOT_PREFIX>_<unix-millis>.json in the current directory.`,
	Args: cobra.NoArgs,
	RunE: runSnapshotExport,
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the database contents with a backup document",
	Long: `Parses the document first; a malformed document changes nothing.
All collections and the configuration are then written in one transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshotImport,
}

var snapshotInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the version, timestamp and record counts of a backup document",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotInspect,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotExportCmd, snapshotImportCmd, snapshotInspectCmd)

	snapshotExportCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "output path")
}

func openDatabase() (*supabase.DatabaseClient, error) {
	dbURL := viper.GetString("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return supabase.NewDatabaseClient(dbURL)
}

func runSnapshotExport(cmd *cobra.Command, args []string) error {
	client, err := openDatabase()
	if err != nil {
		return err
	}
	defer client.Close()

	db, cfg, err := client.LoadState(cmd.Context())
	if err != nil {
		return err
	}

	codec := snapshot.NewCodec()
	data, err := codec.Export(db, cfg)
	if err != nil {
		return err
	}

	out := snapshotOut
	if out == "" {
		out = snapshot.Filename(viper.GetString("SNAPSHOT_PREFIX"), codec.Now())
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	logger.Info("snapshot exported", zap.String("path", out), zap.Any("collections", db.Counts()))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runSnapshotImport(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}

	client, err := openDatabase()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.SaveState(cmd.Context(), doc.Database, doc.Config); err != nil {
		return err
	}

	logger.Info("snapshot imported", zap.String("path", args[0]), zap.String("version", doc.Version))
	return printCounts(cmd, doc)
}

func runSnapshotInspect(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	return printCounts(cmd, doc)
}

func readDocument(path string) (*snapshot.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := snapshot.NewCodec().Import(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

func printCounts(cmd *cobra.Command, doc *snapshot.Document) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "version:   %s\n", doc.Version)
	fmt.Fprintf(w, "timestamp: %s\n", doc.Timestamp)

	counts := doc.Database.Counts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-22s %d\n", name, counts[name])
	}
	return nil
}
