package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-insight"
)

type Config struct {
	Resume *ResumeConfig `mapstructure:"resume"`
	AI     *AIConfig     `mapstructure:"ai"`
	Report *ReportConfig `mapstructure:"report"`
}

type ResumeConfig struct {
	File string `mapstructure:"file"`
}

type AIConfig struct {
	// Providers lists enabled providers in priority order.
	Providers          []string       `mapstructure:"providers"`
	ReturnMode         string         `mapstructure:"return-mode"`
	DisableFallback    bool           `mapstructure:"disable-fallback"`
	RateLimitPerMinute int            `mapstructure:"rate-limit-per-minute"`
	DisableCache       bool           `mapstructure:"disable-cache"`
	Gemini             *GeminiConfig  `mapstructure:"gemini"`
	Mistral            *MistralConfig `mapstructure:"mistral"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type MistralConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type ReportConfig struct {
	Title string `mapstructure:"title"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-insight is a cli for extracting structured data from resume text with AI providers and a regex fallback",
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
	if err := viper.BindEnv("ai.mistral.api-key-file", "MISTRAL_API_KEY_FILE"); err != nil {
		log.Fatalf("binding MISTRAL_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-insight.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// The run command works from flags and env alone.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
