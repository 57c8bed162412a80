package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crinf-backoffice/internal/snapshot"
	"crinf-backoffice/internal/spreadsheet"
)

var (
	productsSnapshot string
	productsOut      string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Product spreadsheet tools",
}

var productsImportCmd = &cobra.Command{
	Use:   "import <xlsx>",
	Short: "Merge a product spreadsheet into a backup document",
	Long: `Reads the first sheet of the workbook and appends its products to the
backup document given by --snapshot. Products whose ID is already in the
document are skipped. The document is rewritten in place unless --out is set.

Example:
  backoffice products import produtos.xlsx --snapshot backup_crinf_1700000000000.json`,
	Args: cobra.ExactArgs(1),
	RunE: runProductsImport,
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsImportCmd)

	productsImportCmd.Flags().StringVar(&productsSnapshot, "snapshot", "", "backup document to merge into (required)")
	productsImportCmd.Flags().StringVarP(&productsOut, "out", "o", "", "output path (default: overwrite --snapshot)")
	_ = productsImportCmd.MarkFlagRequired("snapshot")
}

func runProductsImport(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(productsSnapshot)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	result, err := spreadsheet.ImportProducts(f, spreadsheet.ExistingIDs(doc.Database.Products))
	if err != nil {
		return err
	}
	for _, rowErr := range result.Errors {
		logger.Warn("row ignored", zap.String("reason", rowErr))
	}

	doc.Database.Products = append(doc.Database.Products, result.Added...)
	data, err := snapshot.NewCodec().Export(doc.Database, doc.Config)
	if err != nil {
		return err
	}

	out := productsOut
	if out == "" {
		out = productsSnapshot
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added %d, skipped %d\n", len(result.Added), result.Skipped)
	return nil
}
