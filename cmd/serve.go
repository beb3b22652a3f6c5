package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dsarkar/galleria/internal/ai"
	"github.com/dsarkar/galleria/internal/config"
	"github.com/dsarkar/galleria/internal/faces"
	"github.com/dsarkar/galleria/internal/resume"
	"github.com/dsarkar/galleria/internal/storage"
	"github.com/dsarkar/galleria/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the galleria server",
	Long: `Start the galleria API server.
The server issues upload credentials, lists the media catalog, indexes
faces, answers face searches and tailors the embedded resume. Subsystems
without configuration are disabled individually; their endpoints fail
while the rest keep working.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// buildServices constructs the configured subsystems. A subsystem without
// configuration stays nil and prints a warning once at startup.
func buildServices(ctx context.Context, cfg *config.Config) (web.Services, error) {
	var services web.Services

	store, err := storage.New(cfg.Storage)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		fmt.Println("Warning: media storage not configured, upload and listing disabled")
	case err != nil:
		return services, fmt.Errorf("initializing media storage: %w", err)
	default:
		services.Store = store
		fmt.Printf("Media storage ready (bucket %s)\n", store.Bucket())
	}

	if cfg.Faces.Configured() {
		faceClient, err := faces.NewClient(cfg.Faces.URL, cfg.Faces.APIKey, cfg.Faces.CollectionID)
		if err != nil {
			return services, fmt.Errorf("initializing face client: %w", err)
		}
		services.Searcher = faceClient
		if store != nil {
			services.Indexer = faces.NewIndexer(store, faceClient)
		}
		fmt.Printf("Face recognition ready (collection %s)\n", faceClient.Collection())
	} else {
		fmt.Println("Warning: face recognition not configured, indexing and search disabled")
	}

	provider, err := buildAIProvider(ctx, cfg.AI)
	if err != nil {
		return services, err
	}
	if provider != nil {
		services.Resume = resume.NewService(provider)
		fmt.Printf("Resume tailoring ready (%s)\n", provider.Name())
	} else {
		fmt.Println("Warning: no AI provider configured, resume tailoring disabled")
	}

	return services, nil
}

// buildAIProvider picks the tailoring provider from config. A nil provider
// with nil error means none is configured.
func buildAIProvider(ctx context.Context, cfg config.AIConfig) (ai.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("AI_PROVIDER is gemini but GEMINI_API_KEY is not set")
		}
		provider, err := ai.NewGeminiProvider(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("initializing Gemini provider: %w", err)
		}
		return provider, nil
	case "openai", "":
		if cfg.OpenAIToken == "" {
			if cfg.Provider == "openai" {
				return nil, errors.New("AI_PROVIDER is openai but OPENAI_TOKEN is not set")
			}
			return nil, nil
		}
		return ai.NewOpenAIProvider(cfg.OpenAIToken), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(port, host, services)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting galleria API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
