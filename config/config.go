package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
// Every credential is optional: a missing one switches the matching component
// onto its degrade path instead of failing startup.
type Config struct {
	// Server Configuration
	ServerAddress string `mapstructure:"SERVER_ADDRESS"` // e.g., ":8080"

	// AI Configuration
	OpenAIKey     string `mapstructure:"OPENAI_API_KEY"`  // API key for OpenAI
	OpenAIModelID string `mapstructure:"OPENAI_MODEL_ID"` // e.g., "gpt-4o"

	// Source Hosting Configuration
	GitHubToken string `mapstructure:"GITHUB_TOKEN"` // Token with repo scope
	GitHubOwner string `mapstructure:"GITHUB_OWNER"` // Optional owner hint; resolved via the API when empty

	// Deployment Platform Configuration
	VercelToken     string `mapstructure:"VERCEL_TOKEN"`      // API token for Vercel
	VercelProjectID string `mapstructure:"VERCEL_PROJECT_ID"` // Target project for repository-based deploys
}

// configKeys lists every recognized key so AutomaticEnv picks up values that
// exist only in the environment.
var configKeys = []string{
	"SERVER_ADDRESS",
	"OPENAI_API_KEY",
	"OPENAI_MODEL_ID",
	"GITHUB_TOKEN",
	"GITHUB_OWNER",
	"VERCEL_TOKEN",
	"VERCEL_PROJECT_ID",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)     // Path to look for the config file in
	viper.SetConfigName("config") // Name of config file (without extension)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv() // Read environment variables that match keys
	for _, key := range configKeys {
		if err := viper.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind env key %s: %w", key, err)
		}
	}
	viper.SetDefault("SERVER_ADDRESS", ":8080")

	// Attempt to read the config file
	err = viper.ReadInConfig()
	if err != nil {
		// If config file not found, log it but continue if env vars might be set
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file ('config.yaml') not found in specified path, relying solely on environment variables.")
		} else {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Printf("Using configuration file: %s", viper.ConfigFileUsed())
	}

	// Unmarshal the configuration into the Config struct
	err = viper.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Absent credentials are a supported configuration; just make the
	// degrade behavior visible in the logs.
	if config.OpenAIKey == "" {
		log.Println("WARN: OPENAI_API_KEY is not set. Generation will use the fallback site template.")
	}
	if config.GitHubToken == "" {
		log.Println("WARN: GITHUB_TOKEN is not set. Publishing will be skipped and a placeholder repository used.")
	}
	if config.VercelToken == "" {
		log.Println("WARN: VERCEL_TOKEN is not set. Deployments will return mock URLs.")
	}

	return
}
