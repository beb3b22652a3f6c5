package cmd

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsarkar/galleria/internal/client"
	"github.com/dsarkar/galleria/internal/media"
	"github.com/dsarkar/galleria/internal/uploader"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <folder-path> [folder-path...]",
	Short: "Upload media files to the gallery",
	Long: `Upload media files from one or more folders to the gallery.

Each file gets a presigned credential from the server and is transferred
directly to object storage; images are face-indexed right after the
transfer. By default only files in the specified folders are uploaded
(non-recursive). Use -r to search recursively in subdirectories.

Example:
  galleria upload /path/to/photos
  galleria upload /path/to/folder1 /path/to/folder2
  galleria upload -r /path/to/photos  # recursive search`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolP("recursive", "r", false, "Search for media files recursively in subdirectories")
}

// isMediaFile checks if a file has a supported image or video extension.
func isMediaFile(name string) bool {
	return media.Classify(name) != media.TypeUnknown
}

// contentTypeFor guesses the MIME type from the file extension.
func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// collectMediaFiles gathers media file paths from the given folders.
func collectMediaFiles(folderPaths []string, recursive bool) ([]string, error) {
	var filePaths []string
	for _, folderPath := range folderPaths {
		info, err := os.Stat(folderPath)
		if err != nil {
			return nil, fmt.Errorf("cannot access folder %s: %w", folderPath, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", folderPath)
		}

		if recursive {
			err := filepath.WalkDir(folderPath, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isMediaFile(d.Name()) {
					filePaths = append(filePaths, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("cannot walk folder %s: %w", folderPath, err)
			}
		} else {
			entries, err := os.ReadDir(folderPath)
			if err != nil {
				return nil, fmt.Errorf("cannot read folder %s: %w", folderPath, err)
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				if isMediaFile(entry.Name()) {
					filePaths = append(filePaths, filepath.Join(folderPath, entry.Name()))
				}
			}
		}
	}
	return filePaths, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	recursive := mustGetBool(cmd, "recursive")

	filePaths, err := collectMediaFiles(args, recursive)
	if err != nil {
		return err
	}
	if len(filePaths) == 0 {
		fmt.Println("No media files found in the specified folders.")
		return nil
	}

	fmt.Printf("Found %d file(s) to upload from %d folder(s)\n\n", len(filePaths), len(args))

	api, err := client.New(serverURL)
	if err != nil {
		return err
	}
	coordinator := uploader.NewCoordinator(api)

	bar := progressbar.NewOptions(len(filePaths),
		progressbar.OptionSetDescription("Uploading"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
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

	// Upload files one by one. Transfers are sequential on purpose so a slow
	// link degrades gracefully instead of saturating.
	ctx := context.Background()
	var failures []string
	for _, filePath := range filePaths {
		fileName := filepath.Base(filePath)

		result, err := uploadOne(ctx, coordinator, filePath, fileName)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", fileName, err))
		} else if result.Status == uploader.StatusError {
			failures = append(failures, fmt.Sprintf("%s: %v", fileName, result.Err))
		}
		bar.Add(1)
	}
	fmt.Println()

	for _, failure := range failures {
		fmt.Printf("Failed: %s\n", failure)
	}
	if len(failures) == len(filePaths) {
		return fmt.Errorf("no files were uploaded successfully")
	}
	fmt.Printf("\nUploaded %d of %d file(s)\n", len(filePaths)-len(failures), len(filePaths))
	return nil
}

// uploadOne runs the full credential, transfer and indexing flow for one file.
func uploadOne(ctx context.Context, coordinator *uploader.Coordinator, filePath, fileName string) (uploader.Task, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return uploader.Task{}, fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return uploader.Task{}, fmt.Errorf("cannot stat file: %w", err)
	}

	task := uploader.NewTask(fileName, contentTypeFor(fileName), info.Size())
	return coordinator.Upload(ctx, task, f), nil
}
