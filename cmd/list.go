package cmd

import (
	"context"
	"fmt"

	"github.com/dsarkar/galleria/internal/client"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the media catalog",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	api, err := client.New(serverURL)
	if err != nil {
		return err
	}

	items, err := api.ListMedia(context.Background())
	if err != nil {
		return fmt.Errorf("listing media: %w", err)
	}
	if len(items) == 0 {
		fmt.Println("The gallery is empty.")
		return nil
	}

	for _, item := range items {
		fmt.Printf("  %-40s %-7s %10d  %s\n",
			item.FileName, item.Type, item.Size, item.LastModified.Format("2006-01-02 15:04"))
	}
	fmt.Printf("\n%d item(s)\n", len(items))
	return nil
}
