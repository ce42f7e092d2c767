package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return errors.New("generation.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.MaxAttempts < 1 {
		return errors.New("workflow.max_attempts must be at least 1")
	}
	if c.Workflow.SaveWorkers < 1 {
		return errors.New("workflow.save_workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// RequireAPIKey reports a configuration error when no LLM API key is
// available. Commands that never touch the backend skip this check.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.LLM.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/distill/config.toml"
	}
	return fmt.Errorf("llm.api_key is required. Set DISTILL_LLM_API_KEY env var or edit %s (create with 'distill config init')", defaultPath)
}
