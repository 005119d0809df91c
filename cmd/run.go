package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spigell/resume-insight/internal/ai"
	"github.com/spigell/resume-insight/internal/ai/gemini"
	"github.com/spigell/resume-insight/internal/ai/mistral"
	"github.com/spigell/resume-insight/internal/logger"
	"github.com/spigell/resume-insight/internal/parsing"
	"github.com/spigell/resume-insight/internal/report"
	"github.com/spigell/resume-insight/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptPrintJSON  = "Print JSON"
	PromptSaveReport = "Save report"
	PromptExit       = "Exit"

	defaultRateLimit = 60
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptPrintJSON, PromptSaveReport, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run [resume-file]",
	Short: "Parse a resume file into structured data",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "print the result as JSON and exit without prompting")
}

// run is the main command for the cli.
func run(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		config = &Config{}
	}

	logger.Info("starting the resume-insight", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	text, err := readResume(config, args)
	if err != nil {
		logger.Fatal(
			"reading resume text",
			zap.Error(err),
			zap.String("hint", "pass a file argument or set the 'resume.file' key in the configuration file"),
		)
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}

	providers := buildProviders(ctx, config.AI, logger)
	if len(providers) == 0 {
		logger.Warn("no AI providers available, every parse will use the regex fallback")
	}

	rateLimit := config.AI.RateLimitPerMinute
	if rateLimit == 0 {
		rateLimit = defaultRateLimit
	}

	orch := ai.NewOrchestrator(ai.Config{
		Name:               "ResumeParser",
		ReturnMode:         ai.ReturnMode(config.AI.ReturnMode),
		PromptTemplate:     parsing.PromptTemplate,
		DisableFallback:    config.AI.DisableFallback,
		RateLimitPerMinute: rateLimit,
		CacheEnabled:       !config.AI.DisableCache,
	}, providers, logger)

	agent := parsing.New(orch, logger)

	result := agent.Parse(ctx, text)

	logger.Info("parsing finished",
		zap.Bool("success", result.Success),
		zap.String("method", result.Method),
		zap.String("provider", result.Provider),
	)

	autoApprove := cmd.Flag("auto-approve").Value.String() == "true"

	for {
		action := PromptPrintJSON
		if !autoApprove {
			var err error
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handleAction(action, result, config, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if autoApprove {
			return
		}
	}
}

func handleAction(action string, result *parsing.ParseResult, config *Config, logger *zap.Logger) error {
	switch action {
	case PromptPrintJSON:
		pretty, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Println(string(pretty))
		return nil
	case PromptSaveReport:
		title := ""
		if config.Report != nil {
			title = config.Report.Title
		}

		// Export failures never invalidate the parse result.
		if filename, err := report.SaveText(result, title); err != nil {
			logger.Warn("saving text report", zap.Error(err))
		} else {
			logger.Info("saved text report", zap.String("filename", filename))
		}

		if filename, err := report.DumpJSON(result); err != nil {
			logger.Warn("dumping result to file", zap.Error(err))
		} else {
			logger.Info("dumped result to file", zap.String("filename", filename))
		}
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func readResume(config *Config, args []string) (string, error) {
	file := ""
	if len(args) > 0 {
		file = strings.TrimSpace(args[0])
	}
	if file == "" && config.Resume != nil {
		file = strings.TrimSpace(config.Resume.File)
	}

	if file == "" {
		return "", errors.New("resume file is not configured")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading resume file %q: %w", file, err)
	}

	return string(data), nil
}

// buildProviders assembles enabled providers in priority order. A provider
// that fails to construct is skipped with a warning instead of aborting the
// run.
func buildProviders(ctx context.Context, cfg *AIConfig, logger *zap.Logger) []ai.Provider {
	names := cfg.Providers
	if len(names) == 0 {
		names = []string{ai.ProviderGemini, ai.ProviderMistral}
	}

	providers := make([]ai.Provider, 0, len(names))
	for _, name := range names {
		provider, err := buildProvider(ctx, name, cfg, logger)
		if err != nil {
			logger.Warn("skipping AI provider", zap.String("provider", name), zap.Error(err))
			continue
		}
		providers = append(providers, provider)
	}

	return providers
}

func buildProvider(ctx context.Context, name string, cfg *AIConfig, logger *zap.Logger) (ai.Provider, error) {
	switch strings.TrimSpace(strings.ToLower(name)) {
	case ai.ProviderGemini:
		geminiCfg := cfg.Gemini
		if geminiCfg == nil {
			geminiCfg = &GeminiConfig{}
		}

		apiKey, err := loadAPIKey("gemini api key", geminiCfg.APIKeyFile, "ai.gemini.api-key-file")
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		return gemini.New(ctx, gemini.Config{
			APIKey:     apiKey,
			Model:      geminiCfg.Model,
			MaxRetries: geminiCfg.MaxRetries,
		}, logger)
	case ai.ProviderMistral:
		mistralCfg := cfg.Mistral
		if mistralCfg == nil {
			mistralCfg = &MistralConfig{}
		}

		apiKey, err := loadAPIKey("mistral api key", mistralCfg.APIKeyFile, "ai.mistral.api-key-file")
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.mistral.api-key-file or MISTRAL_API_KEY_FILE)", err)
		}

		return mistral.New(mistral.Config{
			APIKey:     apiKey,
			Model:      mistralCfg.Model,
			MaxRetries: mistralCfg.MaxRetries,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
}

func loadAPIKey(name, file, viperKey string) (string, error) {
	if strings.TrimSpace(file) == "" {
		file = strings.TrimSpace(viper.GetString(viperKey))
	}

	return secrets.Load(secrets.Source{
		Name: name,
		File: file,
	})
}
