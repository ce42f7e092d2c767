package config

import (
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}

	if strings.TrimSpace(c.LLM.APIKey) == "" {
		if key, ok := os.LookupEnv("DISTILL_LLM_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(key)
		}
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}

	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = defaultMaxTokens
	}

	if c.Extraction.RequestTimeout <= 0 {
		c.Extraction.RequestTimeout = defaultExtractionTimeout
	}
	if strings.TrimSpace(c.Extraction.UserAgent) == "" {
		c.Extraction.UserAgent = defaultExtractionAgent
	}
	if c.Extraction.MaxBodyKiB <= 0 {
		c.Extraction.MaxBodyKiB = defaultMaxBodyKiB
	}
	if c.Extraction.MaxPDFPages <= 0 {
		c.Extraction.MaxPDFPages = defaultMaxPDFPages
	}

	if c.Workflow.MaxAttempts <= 0 {
		c.Workflow.MaxAttempts = defaultMaxAttempts
	}
	if c.Workflow.RetryWaitSeconds < 0 {
		c.Workflow.RetryWaitSeconds = defaultRetryWaitSeconds
	}
	if c.Workflow.SaveWorkers <= 0 {
		c.Workflow.SaveWorkers = defaultSaveWorkers
	}
	if c.Workflow.MaxSteps <= 0 {
		c.Workflow.MaxSteps = defaultMaxSteps
	}

	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}

	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = filepath.Join(c.Paths.DataDir, defaultLedgerDatabaseName)
	} else {
		if c.Ledger.Path, err = expandPath(c.Ledger.Path); err != nil {
			return err
		}
	}

	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}

	return nil
}
