package config

const (
	defaultOutputDir          = "~/distill"
	defaultLogDir             = "~/.local/share/distill/logs"
	defaultDataDir            = "~/.local/share/distill"
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "google/gemini-3-flash-preview"
	defaultLLMReferer         = "https://github.com/distill"
	defaultLLMTitle           = "Distill"
	defaultLLMTimeoutSeconds  = 60
	defaultTemperature        = 0.4
	defaultMaxTokens          = 2048
	defaultExtractionTimeout  = 30
	defaultExtractionAgent    = "Distill/0.1"
	defaultMaxBodyKiB         = 4096
	defaultMaxPDFPages        = 200
	defaultMaxAttempts        = 3
	defaultRetryWaitSeconds   = 2
	defaultSaveWorkers        = 4
	defaultMaxSteps           = 64
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultNotifyTimeout      = 10
	defaultLedgerEnabled      = true
	defaultLedgerDatabaseName = "runs.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			DataDir:   defaultDataDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Generation: Generation{
			Temperature: defaultTemperature,
			MaxTokens:   defaultMaxTokens,
		},
		Extraction: Extraction{
			RequestTimeout: defaultExtractionTimeout,
			UserAgent:      defaultExtractionAgent,
			MaxBodyKiB:     defaultMaxBodyKiB,
			MaxPDFPages:    defaultMaxPDFPages,
		},
		Workflow: Workflow{
			MaxAttempts:      defaultMaxAttempts,
			RetryWaitSeconds: defaultRetryWaitSeconds,
			SaveWorkers:      defaultSaveWorkers,
			MaxSteps:         defaultMaxSteps,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Ledger: Ledger{
			Enabled: defaultLedgerEnabled,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Runs:           true,
			Errors:         true,
		},
	}
}
