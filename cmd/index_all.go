package cmd

import (
	"context"
	"fmt"

	"github.com/dsarkar/galleria/internal/client"
	"github.com/dsarkar/galleria/internal/media"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var indexAllCmd = &cobra.Command{
	Use:   "index-all",
	Short: "Index faces in every stored image",
	Long: `Re-index faces in every image in the gallery.

Useful after indexing was skipped or failed at upload time, or after the
face collection was recreated. Images are processed one at a time; a
failed image is reported and the run continues.

Note: re-running indexes already-indexed images again, which can create
duplicate face records in the collection.`,
	RunE: runIndexAll,
}

func init() {
	rootCmd.AddCommand(indexAllCmd)
	indexAllCmd.Flags().Bool("remote", false, "Run the scan server-side in a single call instead of per image")
}

func runIndexAll(cmd *cobra.Command, args []string) error {
	api, err := client.New(serverURL)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if mustGetBool(cmd, "remote") {
		result, err := api.IndexAll(ctx)
		if err != nil {
			return fmt.Errorf("server-side indexing failed: %w", err)
		}
		printIndexSummary(result.Indexed, result.TotalImages, result.TotalFaces)
		for _, item := range result.Details {
			if !item.Success {
				fmt.Printf("Failed: %s: %s\n", item.FileName, item.Error)
			}
		}
		return nil
	}

	items, err := api.ListMedia(ctx)
	if err != nil {
		return fmt.Errorf("listing media: %w", err)
	}

	var images []media.Object
	for _, item := range items {
		if media.Indexable(item.Key) {
			images = append(images, item)
		}
	}
	if len(images) == 0 {
		fmt.Println("No indexable images in the gallery.")
		return nil
	}

	bar := progressbar.NewOptions(len(images),
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	indexed := 0
	totalFaces := 0
	var failures []string
	for _, img := range images {
		result, err := api.IndexFace(ctx, img.Key, img.FileName)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", img.FileName, err))
		} else {
			indexed++
			totalFaces += result.FacesIndexed
		}
		bar.Add(1)
	}
	fmt.Println()

	for _, failure := range failures {
		fmt.Printf("Failed: %s\n", failure)
	}
	printIndexSummary(indexed, len(images), totalFaces)
	return nil
}

func printIndexSummary(indexed, total, faces int) {
	fmt.Printf("\nIndexed %d of %d image(s), %d face(s) found\n", indexed, total, faces)
}
