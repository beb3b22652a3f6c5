package config

import (
	"os"
	"strconv"
)

type Config struct {
	Storage StorageConfig
	Faces   FacesConfig
	AI      AIConfig
}

type StorageConfig struct {
	Endpoint  string // S3-compatible endpoint (e.g. s3.ap-south-1.amazonaws.com)
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string // destination bucket for the uploads/ namespace
	UseSSL    bool
}

// Configured reports whether the storage layer has enough configuration to
// mint credentials. Missing values fail the operation, not the process.
func (c *StorageConfig) Configured() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

type FacesConfig struct {
	URL          string // base URL of the face recognition service
	APIKey       string
	CollectionID string // must be provisioned out-of-band before indexing works
}

func (c *FacesConfig) Configured() bool {
	return c.URL != "" && c.CollectionID != ""
}

type AIConfig struct {
	Provider     string // "openai" (default) or "gemini"
	OpenAIToken  string
	GeminiAPIKey string
}

// envBool reads an environment variable and parses it as a boolean.
// Returns the default value if the env var is unset or invalid.
func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Storage: StorageConfig{
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			Region:    os.Getenv("STORAGE_REGION"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:    os.Getenv("MEDIA_BUCKET_NAME"),
			UseSSL:    envBool("STORAGE_USE_SSL", true),
		},
		Faces: FacesConfig{
			URL:          os.Getenv("FACE_API_URL"),
			APIKey:       os.Getenv("FACE_API_KEY"),
			CollectionID: os.Getenv("FACE_COLLECTION_ID"),
		},
		AI: AIConfig{
			Provider:     os.Getenv("AI_PROVIDER"),
			OpenAIToken:  os.Getenv("OPENAI_TOKEN"),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		},
	}
}
