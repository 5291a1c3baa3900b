package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/price-extractor/internal/app"
	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	"github.com/nguyentranbao-ct/price-extractor/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var extractFlags struct {
	storeName string
	location  string
}

var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Extract and store the products of one image, printing the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractFlags.storeName, "store-name", "", "store name saved with every record")
	extractCmd.Flags().StringVar(&extractFlags.location, "location", "", "location saved with every record")
}

func runExtract(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("image file %s is empty", imagePath)
	}

	var extraction usecase.ExtractionUsecase
	application := app.New(fx.Populate(&extraction))
	if err := application.Err(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := application.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = application.Stop(context.Background()) }()

	metadata := models.Metadata{"original_filename": filepath.Base(imagePath)}
	if extractFlags.storeName != "" {
		metadata["store_name"] = extractFlags.storeName
	}
	if extractFlags.location != "" {
		metadata["location"] = extractFlags.location
	}

	res, err := extraction.Run(ctx, models.ExtractionInput{
		Image:     data,
		ImagePath: &imagePath,
		Metadata:  metadata,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res.ToResponse())
}
