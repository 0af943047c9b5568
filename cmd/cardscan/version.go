package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	httpDelivery "github.com/cardscan/backend/internal/delivery/http"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cardscan %s\n", httpDelivery.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "  Go: %s\n", runtime.Version())
	},
}
