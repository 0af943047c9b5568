package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var scanNoSearch bool

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Scan a card image and print the result as JSON",
	Long: `Run the scan pipeline on a local image file without starting the server.

Examples:
  cardscan scan charizard.jpg              # OCR, extraction and eBay search
  cardscan scan charizard.jpg --no-search  # OCR and extraction only`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		image, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var out any
		if scanNoSearch {
			lines, extraction, err := a.scanner.Extract(ctx, image)
			if err != nil {
				return err
			}
			out = map[string]any{
				"text":          lines,
				"cardName":      extraction.ItemName,
				"cardSetNumber": extraction.SetNumber,
			}
		} else {
			result, err := a.scanner.Scan(ctx, image)
			if err != nil {
				return err
			}
			out = result
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanNoSearch, "no-search", false, "Skip the eBay search")

	rootCmd.AddCommand(scanCmd)
}
