package main

import (
	"github.com/spf13/cobra"

	httpDelivery "github.com/cardscan/backend/internal/delivery/http"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cardscan",
	Short: "Trading card scanner backed by Tesseract OCR and eBay search",
	Long: `CardScan reads a photo of a trading card, guesses the card name and
set number from the recognized text and looks up matching eBay listings.

Configuration is read from config.yaml (., ./config, /etc/cardscan/) or the
file given with --config, and from CARDSCAN_* environment variables.`,
	Version:      httpDelivery.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or /etc/cardscan/config.yaml)",
	)

	rootCmd.AddCommand(versionCmd)
}
