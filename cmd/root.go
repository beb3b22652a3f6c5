package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "galleria",
	Short: "A face-indexed media gallery with direct-to-storage uploads",
	Long: `Galleria serves a media gallery backed by S3-compatible object storage.
Uploads go directly to storage via presigned URLs, faces in uploaded images
are indexed into a recognition collection, and the gallery can be filtered
by searching with a probe photo.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Galleria server URL for client commands")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
