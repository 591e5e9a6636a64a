package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cvmatch/cv-match/internal/analysis"
	"github.com/cvmatch/cv-match/internal/provider/gemini"
	"github.com/cvmatch/cv-match/internal/scoring"
	"github.com/cvmatch/cv-match/internal/secrets"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "cv-match"
)

type Config struct {
	AI       *AIConfig       `mapstructure:"ai"`
	Analysis *AnalysisConfig `mapstructure:"analysis"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey          string `mapstructure:"api-key"`
	APIKeyFile      string `mapstructure:"api-key-file"`
	EmbeddingModel  string `mapstructure:"embedding-model"`
	GenerationModel string `mapstructure:"generation-model"`
	Dimensions      int    `mapstructure:"dimensions"`
	TimeoutSeconds  int    `mapstructure:"timeout-seconds"`
	MaxRetries      int    `mapstructure:"max-retries"`
	BackoffStepMs   int    `mapstructure:"backoff-step-ms"`
	BatchSize       int    `mapstructure:"batch-size"`
	BatchDelayMs    int    `mapstructure:"batch-delay-ms"`
	MaxLogLength    int    `mapstructure:"max-log-length"`
}

type AnalysisConfig struct {
	CacheTTLMinutes int `mapstructure:"cache-ttl-minutes"`
	CacheSize       int `mapstructure:"cache-size"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-match is a cli for AI-assisted resume analysis and resume-to-job matching",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-match.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// All settings have defaults except the API key, which can come
		// from the environment. An explicitly named config must exist.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Analysis == nil {
		config.Analysis = &AnalysisConfig{}
	}

	return config, nil
}

// getScoringWeights decodes the scoring.weights config section, falling back
// to the documented defaults when the section is absent.
func getScoringWeights() (scoring.Weights, error) {
	weights := scoring.DefaultWeights()

	raw := viper.GetStringMap("scoring.weights")
	if len(raw) == 0 {
		return weights, nil
	}

	if err := mapstructure.Decode(raw, &weights); err != nil {
		return weights, fmt.Errorf("decoding scoring weights: %w", err)
	}
	if err := weights.Validate(); err != nil {
		return weights, fmt.Errorf("scoring weights: %w", err)
	}

	return weights, nil
}

func newProviderClient(ctx context.Context, config *Config, logger *zap.Logger) (*gemini.Client, error) {
	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.AI.Gemini.APIKey,
		File:  config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	cfg := gemini.Config{
		EmbeddingModel:  config.AI.Gemini.EmbeddingModel,
		GenerationModel: config.AI.Gemini.GenerationModel,
		Dimensions:      config.AI.Gemini.Dimensions,
		Timeout:         time.Duration(config.AI.Gemini.TimeoutSeconds) * time.Second,
		MaxRetries:      config.AI.Gemini.MaxRetries,
		BackoffStep:     time.Duration(config.AI.Gemini.BackoffStepMs) * time.Millisecond,
		BatchSize:       config.AI.Gemini.BatchSize,
		BatchDelay:      time.Duration(config.AI.Gemini.BatchDelayMs) * time.Millisecond,
		MaxLogLength:    config.AI.Gemini.MaxLogLength,
	}

	return gemini.NewClient(ctx, apiKey, cfg, logger)
}

func newAnalysisEngine(ctx context.Context, config *Config, logger *zap.Logger) (*analysis.Engine, error) {
	client, err := newProviderClient(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	cfg := analysis.Config{
		CacheTTL:  time.Duration(config.Analysis.CacheTTLMinutes) * time.Minute,
		CacheSize: config.Analysis.CacheSize,
	}

	return analysis.NewEngine(client, client, cfg, logger), nil
}
