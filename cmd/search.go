package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/dsarkar/galleria/internal/client"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <probe-image>",
	Short: "Search the gallery by face",
	Long: `Search the gallery for media containing faces from a probe image.

The probe is matched against the face collection and the gallery is
filtered down to entries the matched faces were indexed from. Finding
nothing is a normal outcome, not an error.

Example:
  galleria search selfie.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	probe, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("cannot read probe image: %w", err)
	}

	api, err := client.New(serverURL)
	if err != nil {
		return err
	}
	gallery := client.NewGallery(api)
	ctx := context.Background()

	if err := gallery.Refresh(ctx); err != nil {
		return err
	}
	total := len(gallery.All())

	if err := gallery.SearchByFace(ctx, probe); err != nil {
		return fmt.Errorf("face search failed: %w", err)
	}

	matched := gallery.Items()
	if len(matched) == 0 {
		fmt.Printf("No matching faces found in %d gallery item(s).\n", total)
		return nil
	}

	fmt.Printf("Matched %d of %d gallery item(s):\n\n", len(matched), total)
	for _, item := range matched {
		fmt.Printf("  %-40s %s\n", item.FileName, item.Type)
	}
	return nil
}
