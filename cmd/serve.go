package cmd

import (
	"github.com/nguyentranbao-ct/price-extractor/internal/app"
	"github.com/nguyentranbao-ct/price-extractor/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	app.Invoke(server.StartServer).Run()
	return nil
}
